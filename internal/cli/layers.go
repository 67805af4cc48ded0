package cli

import (
	"errors"
	"fmt"

	"labelreview/internal/models"
	"labelreview/pkg/config"
	"labelreview/pkg/review"
	"labelreview/pkg/volumeio"
)

// workspace is the loaded layers plus the labels layer boxes come from
type workspace struct {
	layers []models.Layer
	source models.Layer
}

func loadLayers(cfg *config.Config) ([]models.Layer, error) {
	layers := make([]models.Layer, 0, len(cfg.Layers))
	for _, lc := range cfg.Layers {
		layer, err := volumeio.LoadLayer(lc)
		if err != nil {
			return nil, err
		}
		if cfg.Output.Verbose {
			fmt.Printf("Loaded %s layer %q with shape %v\n", layer.Kind, layer.Name, layer.Shape())
		}
		layers = append(layers, layer)
	}
	return layers, nil
}

// loadWorkspace loads every layer and picks the labels layer, defaulting to the
// first one configured
func loadWorkspace(cfg *config.Config) (*workspace, error) {
	if len(cfg.LabelsLayerNames()) == 0 {
		return nil, usageError{errors.New("no labels layer configured")}
	}
	layers, err := loadLayers(cfg)
	if err != nil {
		return nil, err
	}

	name := cfg.Review.LabelsLayer
	if name == "" {
		name = cfg.LabelsLayerNames()[0]
	}
	for _, l := range layers {
		if l.Name == name {
			return &workspace{layers: layers, source: l}, nil
		}
	}
	return nil, usageError{fmt.Errorf("labels layer %q not found", name)}
}

// prepare loads the workspace and plans a review of the configured label list
func prepare(cfg *config.Config) (*workspace, *review.Plan, error) {
	if cfg.Review.LabelList == "" {
		return nil, nil, usageError{errors.New("no label list given, use --list or review.labelList")}
	}
	ws, err := loadWorkspace(cfg)
	if err != nil {
		return nil, nil, err
	}
	plan, err := review.Prepare(cfg.Review.LabelList, ws.source.Labels, cfg.Review.Padding)
	if err != nil {
		return nil, nil, err
	}
	return ws, plan, nil
}
