package review

import (
	"fmt"

	"labelreview/internal/models"
	"labelreview/pkg/labellist"
	"labelreview/pkg/ndarray"
	"labelreview/pkg/regionprops"
)

// Plan is everything needed to start a session from a label list file
type Plan struct {
	// Labels in review order
	Labels []uint64

	// Boxes holds the padded box of every listed label found in the volume
	Boxes map[uint64]models.BoundingBox

	// Regions holds the measurements behind Boxes
	Regions map[uint64]regionprops.Region

	// ResultPath is where verdicts are written
	ResultPath string
}

// Prepare reads the label list and computes padded boxes against volume. Any
// error leaves nothing behind.
func Prepare(listPath string, volume *ndarray.Array[uint64], padding int) (*Plan, error) {
	labels, err := labellist.Read(listPath)
	if err != nil {
		return nil, err
	}

	regions := regionprops.Select(volume, labels)
	boxes, err := regionprops.PadAll(regions, padding)
	if err != nil {
		return nil, fmt.Errorf("failed to compute bounding boxes: %w", err)
	}

	return &Plan{
		Labels:     labels,
		Boxes:      boxes,
		Regions:    regions,
		ResultPath: labellist.ResultPath(listPath),
	}, nil
}

// Missing lists labels that were requested but have no box, in list order
func (p *Plan) Missing() []uint64 {
	var missing []uint64
	for _, lbl := range p.Labels {
		if _, ok := p.Boxes[lbl]; !ok {
			missing = append(missing, lbl)
		}
	}
	return missing
}
