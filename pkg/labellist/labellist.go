// Package labellist reads the YAML list of labels to review and writes the
// reviewer's verdicts next to it.
package labellist

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"labelreview/internal/fileutil"
	"labelreview/internal/models"
)

// ResultSuffix is inserted before the extension of the label list to name the
// verdict file
const ResultSuffix = "_res"

// Read loads a label list from a YAML file
func Read(path string) ([]uint64, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("error opening label list: %w", err)
	}
	defer f.Close()

	labels, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("error parsing label list %s: %w", path, err)
	}
	return labels, nil
}

// Parse decodes a YAML sequence of non-negative integer label ids. An empty
// document is an empty list.
func Parse(r io.Reader) ([]uint64, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []uint64{}, nil
	}

	var labels []uint64
	if err := yaml.Unmarshal(data, &labels); err != nil {
		return nil, err
	}
	if labels == nil {
		labels = []uint64{}
	}
	return labels, nil
}

// ResultPath derives the verdict file path from the label list path by
// inserting ResultSuffix before the extension
func ResultPath(listPath string) string {
	ext := filepath.Ext(listPath)
	if ext == "" {
		return listPath + ResultSuffix + ".yaml"
	}
	return strings.TrimSuffix(listPath, ext) + ResultSuffix + ext
}

// VerdictSink persists the complete verdict map
type VerdictSink interface {
	SaveVerdicts(verdicts map[uint64]models.Verdict) error
}

// FileSink rewrites a YAML verdict file on every save
type FileSink struct {
	Path string
}

// NewFileSink returns a sink writing to path
func NewFileSink(path string) *FileSink {
	return &FileSink{Path: path}
}

// SaveVerdicts replaces the file's content with the full verdict map. The map
// is written to a temporary file in the same directory and renamed over the
// target, so a reader never sees a partial file.
func (s *FileSink) SaveVerdicts(verdicts map[uint64]models.Verdict) error {
	plain := make(map[uint64]int, len(verdicts))
	for lbl, v := range verdicts {
		plain[lbl] = int(v)
	}

	data, err := yaml.Marshal(plain)
	if err != nil {
		return fmt.Errorf("error marshaling verdicts: %w", err)
	}

	if err := fileutil.WriteAtomic(s.Path, data, 0644); err != nil {
		return fmt.Errorf("error saving verdicts: %w", err)
	}
	return nil
}

// ReadVerdicts loads a verdict file written by FileSink
func ReadVerdicts(path string) (map[uint64]models.Verdict, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading verdict file: %w", err)
	}

	var plain map[uint64]int
	if err := yaml.Unmarshal(data, &plain); err != nil {
		return nil, fmt.Errorf("error parsing verdict file %s: %w", path, err)
	}

	verdicts := make(map[uint64]models.Verdict, len(plain))
	for lbl, code := range plain {
		v := models.Verdict(code)
		if !v.Valid() {
			return nil, fmt.Errorf("label %d has invalid verdict %d", lbl, code)
		}
		verdicts[lbl] = v
	}
	return verdicts, nil
}

// Summary counts verdicts by code
type Summary struct {
	Total  int
	Counts map[models.Verdict]int
}

// Summarize tallies a verdict map
func Summarize(verdicts map[uint64]models.Verdict) Summary {
	s := Summary{Counts: make(map[models.Verdict]int, len(models.Verdicts))}
	for _, v := range verdicts {
		s.Counts[v]++
		s.Total++
	}
	return s
}
