package structure

import "fmt"

// Number is any integer or floating point component type.
type Number interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Vec3 is an immutable (x, y, z) triple.
type Vec3[T Number] struct {
	e [3]T
}

func NewVec3[T Number](x, y, z T) Vec3[T] {
	return Vec3[T]{e: [3]T{x, y, z}}
}

// Origin is the zero coordinate.
var Origin = NewVec3[int32](0, 0, 0)

func (v Vec3[T]) X() T { return v.e[0] }
func (v Vec3[T]) Y() T { return v.e[1] }
func (v Vec3[T]) Z() T { return v.e[2] }

func (v Vec3[T]) String() string {
	return fmt.Sprintf("(%v, %v, %v)", v.e[0], v.e[1], v.e[2])
}
