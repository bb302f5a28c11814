package layout

// Sized is implemented by anything that knows its own Layout. It is the
// type-erased view of a Value: a []Sized can hold values of any type.
type Sized interface {
	Layout() Layout
}

// Value pairs a value with the Layout of its type. The Value owns its copy
// of the value; callers that need to share it use Ptr.
type Value[T any] struct {
	v      T
	layout Layout
}

// NewValue moves v into a new Value.
func NewValue[T any](v T) (*Value[T], error) {
	l, err := Of[T]()
	if err != nil {
		return nil, err
	}
	return &Value[T]{v: v, layout: l}, nil
}

// Get returns a copy of the wrapped value.
func (v *Value[T]) Get() T {
	return v.v
}

// Ptr returns a pointer to the wrapped value.
func (v *Value[T]) Ptr() *T {
	return &v.v
}

// Layout returns the Layout of T.
func (v *Value[T]) Layout() Layout {
	return v.layout
}

// StructOf lays out the items in order as the fields of a struct.
func StructOf(items ...Sized) (Layout, []uintptr, error) {
	fields := make([]Layout, len(items))
	for i, it := range items {
		fields[i] = it.Layout()
	}
	return Struct(fields...)
}
