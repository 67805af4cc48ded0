// Package ndarray provides a small N-dimensional, row-major array used to hold
// label volumes, intensity images and derived masks.
package ndarray

import (
	"fmt"
)

// Range is a half-open index interval [Start, Stop) along one axis.
type Range struct {
	Start int
	Stop  int
}

// Len returns the number of indices covered by the range, never negative.
func (r Range) Len() int {
	if r.Stop <= r.Start {
		return 0
	}
	return r.Stop - r.Start
}

// Array is an N-dimensional array stored as a flat slice in row-major order,
// so the last axis varies fastest.
type Array[T any] struct {
	shape   []int
	strides []int
	data    []T
}

// New allocates a zeroed array with the given shape.
func New[T any](shape ...int) (*Array[T], error) {
	size, err := volume(shape)
	if err != nil {
		return nil, err
	}
	return &Array[T]{
		shape:   append([]int(nil), shape...),
		strides: strides(shape),
		data:    make([]T, size),
	}, nil
}

// FromData wraps data with the given shape. The slice is not copied.
func FromData[T any](data []T, shape ...int) (*Array[T], error) {
	size, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if len(data) != size {
		return nil, fmt.Errorf("data length %d does not match shape %v (%d elements)", len(data), shape, size)
	}
	return &Array[T]{
		shape:   append([]int(nil), shape...),
		strides: strides(shape),
		data:    data,
	}, nil
}

func volume(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("shape must have at least one axis")
	}
	size := 1
	for axis, n := range shape {
		if n < 0 {
			return 0, fmt.Errorf("axis %d has negative length %d", axis, n)
		}
		size *= n
	}
	return size, nil
}

func strides(shape []int) []int {
	s := make([]int, len(shape))
	step := 1
	for axis := len(shape) - 1; axis >= 0; axis-- {
		s[axis] = step
		step *= shape[axis]
	}
	return s
}

// Shape returns a copy of the array's extent along each axis.
func (a *Array[T]) Shape() []int {
	return append([]int(nil), a.shape...)
}

// NumDims returns the number of axes.
func (a *Array[T]) NumDims() int {
	return len(a.shape)
}

// Len returns the total number of elements.
func (a *Array[T]) Len() int {
	return len(a.data)
}

// Data exposes the underlying flat storage.
func (a *Array[T]) Data() []T {
	return a.data
}

func (a *Array[T]) offset(idx []int) int {
	if len(idx) != len(a.shape) {
		panic(fmt.Sprintf("ndarray: %d indices for %d-dimensional array", len(idx), len(a.shape)))
	}
	off := 0
	for axis, i := range idx {
		if i < 0 || i >= a.shape[axis] {
			panic(fmt.Sprintf("ndarray: index %d out of range [0,%d) on axis %d", i, a.shape[axis], axis))
		}
		off += i * a.strides[axis]
	}
	return off
}

// At returns the element at the given multi-index. It panics on an invalid index,
// like slice indexing does.
func (a *Array[T]) At(idx ...int) T {
	return a.data[a.offset(idx)]
}

// Set stores v at the given multi-index.
func (a *Array[T]) Set(v T, idx ...int) {
	a.data[a.offset(idx)] = v
}

// Unravel converts a flat offset into a multi-index, writing into dst when it
// has the right length.
func (a *Array[T]) Unravel(flat int, dst []int) []int {
	if len(dst) != len(a.shape) {
		dst = make([]int, len(a.shape))
	}
	for axis, stride := range a.strides {
		dst[axis] = flat / stride
		flat %= stride
	}
	return dst
}

// Crop copies the sub-array addressed by ranges, one per axis. Stop values past
// the array's extent are clamped to it and a start at or past the extent yields
// an empty axis, so a padded box may safely overrun the far edge.
func (a *Array[T]) Crop(ranges []Range) (*Array[T], error) {
	if len(ranges) != len(a.shape) {
		return nil, fmt.Errorf("crop has %d ranges for %d-dimensional array", len(ranges), len(a.shape))
	}

	clamped := make([]Range, len(ranges))
	outShape := make([]int, len(ranges))
	for axis, r := range ranges {
		if r.Start < 0 {
			return nil, fmt.Errorf("crop start %d on axis %d is negative", r.Start, axis)
		}
		c := Range{Start: min(r.Start, a.shape[axis]), Stop: min(r.Stop, a.shape[axis])}
		if c.Stop < c.Start {
			c.Stop = c.Start
		}
		clamped[axis] = c
		outShape[axis] = c.Len()
	}

	out, err := New[T](outShape...)
	if err != nil {
		return nil, err
	}
	if out.Len() == 0 {
		return out, nil
	}

	// Copy contiguous runs along the last axis.
	last := len(outShape) - 1
	run := outShape[last]
	src := make([]int, len(outShape))
	for dst := 0; dst < out.Len(); dst += run {
		rel := out.Unravel(dst, nil)
		for axis := range rel {
			src[axis] = clamped[axis].Start + rel[axis]
		}
		off := a.offset(src)
		copy(out.data[dst:dst+run], a.data[off:off+run])
	}
	return out, nil
}

// Equal returns a boolean mask that is true wherever a holds value.
func Equal[T comparable](a *Array[T], value T) *Array[bool] {
	mask := make([]bool, len(a.data))
	for i, v := range a.data {
		mask[i] = v == value
	}
	return &Array[bool]{
		shape:   a.Shape(),
		strides: append([]int(nil), a.strides...),
		data:    mask,
	}
}
