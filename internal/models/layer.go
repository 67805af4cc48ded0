package models

import (
	"labelreview/pkg/ndarray"
)

// LayerKind tells the display how a layer's data should be drawn
type LayerKind int

const (
	// LabelsLayer holds integer object ids (or a boolean mask)
	LabelsLayer LayerKind = iota

	// ImageLayer holds intensities
	ImageLayer
)

func (k LayerKind) String() string {
	switch k {
	case LabelsLayer:
		return "labels"
	case ImageLayer:
		return "image"
	default:
		return "unknown"
	}
}

// ParseLayerKind maps a config string to a LayerKind
func ParseLayerKind(s string) (LayerKind, bool) {
	switch s {
	case "labels", "label":
		return LabelsLayer, true
	case "image":
		return ImageLayer, true
	default:
		return 0, false
	}
}

// Layer is one named array shown to the reviewer
type Layer struct {
	// Name is the display name; names are unique within a set of layers
	Name string

	// Kind selects labels or image rendering
	Kind LayerKind

	// Exactly one of Labels, Image or Mask is set.
	// Labels carries object ids of a labels layer
	Labels *ndarray.Array[uint64]

	// Image carries intensities of an image layer
	Image *ndarray.Array[float64]

	// Mask carries the synthesized highlight of the label under review
	Mask *ndarray.Array[bool]
}

// Shape returns the extent of whichever array the layer holds
func (l Layer) Shape() []int {
	switch {
	case l.Labels != nil:
		return l.Labels.Shape()
	case l.Image != nil:
		return l.Image.Shape()
	case l.Mask != nil:
		return l.Mask.Shape()
	default:
		return nil
	}
}

// Interval is a half-open index range [Start, Stop) along one axis
type Interval = ndarray.Range

// BoundingBox holds one Interval per axis of a volume
type BoundingBox []Interval

// Equal reports whether two boxes cover the same intervals
func (b BoundingBox) Equal(o BoundingBox) bool {
	if len(b) != len(o) {
		return false
	}
	for i := range b {
		if b[i] != o[i] {
			return false
		}
	}
	return true
}
