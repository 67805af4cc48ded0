// Package regionprops measures labeled objects in a volume: their tight
// bounding boxes, sizes and centroids, and the padded boxes used for review crops.
package regionprops

import (
	"errors"
	"fmt"
	"sort"

	"gonum.org/v1/gonum/floats"

	"labelreview/internal/models"
	"labelreview/pkg/ndarray"
)

// ErrNegativePadding is returned when a padding below zero is requested
var ErrNegativePadding = errors.New("padding must be non-negative")

// Region describes one labeled object
type Region struct {
	// Label is the object id
	Label uint64

	// Min is the first index the object occupies on each axis
	Min []int

	// Max is one past the last index the object occupies on each axis
	Max []int

	// Area is the number of voxels carrying the label
	Area int

	// Centroid is the mean voxel coordinate
	Centroid []float64
}

// Box returns the region's tight bounding box
func (r Region) Box() models.BoundingBox {
	box := make(models.BoundingBox, len(r.Min))
	for axis := range r.Min {
		box[axis] = models.Interval{Start: r.Min[axis], Stop: r.Max[axis]}
	}
	return box
}

// Pad grows the tight box by padding on both ends of every axis. The lower end
// is clamped at zero; the upper end is left as is and cropping clamps it to the
// array extent.
func (r Region) Pad(padding int) models.BoundingBox {
	box := make(models.BoundingBox, len(r.Min))
	for axis := range r.Min {
		box[axis] = models.Interval{
			Start: max(0, r.Min[axis]-padding),
			Stop:  r.Max[axis] + padding,
		}
	}
	return box
}

type accumulator struct {
	min, max []int
	sums     []float64
	area     int
}

// Regions measures every distinct non-zero label in the volume. Regions are
// returned sorted by label.
func Regions(volume *ndarray.Array[uint64]) []Region {
	ndim := volume.NumDims()
	acc := make(map[uint64]*accumulator)
	idx := make([]int, ndim)
	coord := make([]float64, ndim)

	for flat, lbl := range volume.Data() {
		if lbl == 0 {
			continue
		}
		idx = volume.Unravel(flat, idx)

		a, ok := acc[lbl]
		if !ok {
			a = &accumulator{
				min:  append([]int(nil), idx...),
				max:  make([]int, ndim),
				sums: make([]float64, ndim),
			}
			acc[lbl] = a
		}
		for axis, i := range idx {
			if i < a.min[axis] {
				a.min[axis] = i
			}
			if i+1 > a.max[axis] {
				a.max[axis] = i + 1
			}
			coord[axis] = float64(i)
		}
		floats.Add(a.sums, coord)
		a.area++
	}

	regions := make([]Region, 0, len(acc))
	for lbl, a := range acc {
		floats.Scale(1/float64(a.area), a.sums)
		regions = append(regions, Region{
			Label:    lbl,
			Min:      a.min,
			Max:      a.max,
			Area:     a.area,
			Centroid: a.sums,
		})
	}
	sort.Slice(regions, func(i, j int) bool {
		return regions[i].Label < regions[j].Label
	})
	return regions
}

// Select measures the requested labels that occur in the volume, keyed by
// label. Requested labels absent from the volume are left out.
func Select(volume *ndarray.Array[uint64], labels []uint64) map[uint64]Region {
	wanted := make(map[uint64]struct{}, len(labels))
	for _, lbl := range labels {
		wanted[lbl] = struct{}{}
	}

	found := make(map[uint64]Region, len(labels))
	for _, reg := range Regions(volume) {
		if _, ok := wanted[reg.Label]; ok {
			found[reg.Label] = reg
		}
	}
	return found
}

// PadAll returns the padded box of every region
func PadAll(regions map[uint64]Region, padding int) (map[uint64]models.BoundingBox, error) {
	if padding < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativePadding, padding)
	}
	boxes := make(map[uint64]models.BoundingBox, len(regions))
	for lbl, reg := range regions {
		boxes[lbl] = reg.Pad(padding)
	}
	return boxes, nil
}

// BoundingBoxes returns the padded bounding box of every requested label that
// occurs in the volume. Requested labels absent from the volume are left out.
func BoundingBoxes(volume *ndarray.Array[uint64], labels []uint64, padding int) (map[uint64]models.BoundingBox, error) {
	if padding < 0 {
		return nil, fmt.Errorf("%w: got %d", ErrNegativePadding, padding)
	}
	return PadAll(Select(volume, labels), padding)
}
