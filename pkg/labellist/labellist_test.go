package labellist

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"labelreview/internal/models"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    []uint64
		wantErr bool
	}{
		{name: "block sequence", input: "- 3\n- 7\n- 12\n", want: []uint64{3, 7, 12}},
		{name: "flow sequence", input: "[5, 1, 9]", want: []uint64{5, 1, 9}},
		{name: "empty document", input: "", want: []uint64{}},
		{name: "empty sequence", input: "[]", want: []uint64{}},
		{name: "negative id", input: "- -4\n", wantErr: true},
		{name: "not a sequence", input: "a: 1\n", wantErr: true},
		{name: "string id", input: "- abc\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(strings.NewReader(tt.input))
			if tt.wantErr {
				if err == nil {
					t.Errorf("Expected error, got %v", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestReadMissingFile(t *testing.T) {
	if _, err := Read(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestReadKeepsOrder(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.yaml")
	if err := os.WriteFile(path, []byte("- 9\n- 2\n- 5\n"), 0644); err != nil {
		t.Fatalf("Failed to write list: %v", err)
	}
	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read failed: %v", err)
	}
	if !reflect.DeepEqual(got, []uint64{9, 2, 5}) {
		t.Errorf("Expected [9 2 5], got %v", got)
	}
}

func TestResultPath(t *testing.T) {
	tests := map[string]string{
		"labels.yaml":             "labels_res.yaml",
		"/data/run.1/labels.yaml": "/data/run.1/labels_res.yaml",
		"data/labels.yml":         "data/labels_res.yml",
		"labels":                  "labels_res.yaml",
	}
	for in, want := range tests {
		if got := ResultPath(in); got != want {
			t.Errorf("ResultPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestFileSinkOverwrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "labels_res.yaml")
	sink := NewFileSink(path)

	if err := sink.SaveVerdicts(map[uint64]models.Verdict{3: models.NeedsImprovement}); err != nil {
		t.Fatalf("First save failed: %v", err)
	}
	full := map[uint64]models.Verdict{3: models.NeedsImprovement, 7: models.Perfect}
	if err := sink.SaveVerdicts(full); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read verdict file: %v", err)
	}
	var raw map[uint64]int
	if err := yaml.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Verdict file is not valid YAML: %v", err)
	}
	if !reflect.DeepEqual(raw, map[uint64]int{3: 2, 7: 1}) {
		t.Errorf("Expected {3:2 7:1}, got %v", raw)
	}

	got, err := ReadVerdicts(path)
	if err != nil {
		t.Fatalf("ReadVerdicts failed: %v", err)
	}
	if !reflect.DeepEqual(got, full) {
		t.Errorf("Expected %v, got %v", full, got)
	}

	// No temporary files may be left behind
	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 {
		t.Errorf("Expected only the verdict file in %s, found %d entries", dir, len(entries))
	}
}

func TestFileSinkWriteFailure(t *testing.T) {
	sink := NewFileSink(filepath.Join(t.TempDir(), "missing", "labels_res.yaml"))
	if err := sink.SaveVerdicts(map[uint64]models.Verdict{1: models.Wrong}); err == nil {
		t.Error("Expected error writing into a missing directory")
	}
}

func TestReadVerdictsRejectsBadCode(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad_res.yaml")
	if err := os.WriteFile(path, []byte("3: 5\n"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}
	if _, err := ReadVerdicts(path); err == nil {
		t.Error("Expected error for verdict code 5")
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(map[uint64]models.Verdict{
		1: models.Perfect,
		2: models.Perfect,
		3: models.Wrong,
	})
	if s.Total != 3 {
		t.Errorf("Expected total 3, got %d", s.Total)
	}
	if s.Counts[models.Perfect] != 2 || s.Counts[models.Wrong] != 1 || s.Counts[models.NeedsImprovement] != 0 {
		t.Errorf("Unexpected counts %v", s.Counts)
	}
}
