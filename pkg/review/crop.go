package review

import (
	"fmt"

	"labelreview/internal/models"
	"labelreview/pkg/ndarray"
)

// HighlightLayerName names the mask of the label under review
const HighlightLayerName = "highlighted label"

// ComposeCrop crops every layer to box and appends a mask layer that is true
// where volume equals label. Source layers are not modified.
func ComposeCrop(box models.BoundingBox, layers []models.Layer, volume *ndarray.Array[uint64], label uint64) ([]models.Layer, error) {
	if volume == nil {
		return nil, fmt.Errorf("no label volume")
	}

	out := make([]models.Layer, 0, len(layers)+1)
	names := make(map[string]struct{}, len(layers))
	for _, layer := range layers {
		cropped, err := cropLayer(layer, box)
		if err != nil {
			return nil, fmt.Errorf("layer %q: %w", layer.Name, err)
		}
		out = append(out, cropped)
		names[layer.Name] = struct{}{}
	}

	region, err := volume.Crop(box)
	if err != nil {
		return nil, fmt.Errorf("label volume: %w", err)
	}
	out = append(out, models.Layer{
		Name: uniqueName(HighlightLayerName, names),
		Kind: models.LabelsLayer,
		Mask: ndarray.Equal(region, label),
	})
	return out, nil
}

func cropLayer(layer models.Layer, box models.BoundingBox) (models.Layer, error) {
	out := models.Layer{Name: layer.Name, Kind: layer.Kind}
	var err error
	switch {
	case layer.Labels != nil:
		out.Labels, err = layer.Labels.Crop(box)
	case layer.Image != nil:
		out.Image, err = layer.Image.Crop(box)
	case layer.Mask != nil:
		out.Mask, err = layer.Mask.Crop(box)
	default:
		err = fmt.Errorf("layer has no data")
	}
	return out, err
}

func uniqueName(name string, taken map[string]struct{}) string {
	if _, ok := taken[name]; !ok {
		return name
	}
	for i := 1; ; i++ {
		candidate := fmt.Sprintf("%s [%d]", name, i)
		if _, ok := taken[candidate]; !ok {
			return candidate
		}
	}
}
