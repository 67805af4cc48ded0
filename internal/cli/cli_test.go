package cli

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"labelreview/pkg/config"
)

// resetFlags restores every flag to its default so tests do not leak into
// each other through the shared command tree
func resetFlags() {
	reset := func(f *pflag.Flag) {
		f.Value.Set(f.DefValue)
		f.Changed = false
	}
	rootCmd.PersistentFlags().VisitAll(reset)
	for _, c := range rootCmd.Commands() {
		c.Flags().VisitAll(reset)
	}
}

// execute runs the CLI with args and returns exit code and stdout
func execute(t *testing.T, args ...string) (int, string) {
	t.Helper()
	resetFlags()

	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	defer rootCmd.SetOut(nil)
	defer rootCmd.SetErr(nil)

	code := run(args)
	if code != ExitSuccess {
		t.Logf("stderr: %s", errOut.String())
	}
	return code, out.String()
}

// fixture writes a 10x10 segmentation with labels 3 and 7, a raw image, a
// label list and a config file. It returns the config path.
func fixture(t *testing.T, list string) string {
	t.Helper()
	dir := t.TempDir()

	seg := image.NewGray16(image.Rect(0, 0, 10, 10))
	raw := image.NewGray16(image.Rect(0, 0, 10, 10))
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			raw.SetGray16(x, y, color.Gray16{Y: uint16(x * 6000)})
			switch {
			case x < 2 && y < 2:
				seg.SetGray16(x, y, color.Gray16{Y: 3})
			case x == 5 && y == 5:
				seg.SetGray16(x, y, color.Gray16{Y: 7})
			}
		}
	}
	writePNG(t, filepath.Join(dir, "seg.png"), seg)
	writePNG(t, filepath.Join(dir, "raw.png"), raw)

	listPath := filepath.Join(dir, "labels.yaml")
	if err := os.WriteFile(listPath, []byte(list), 0644); err != nil {
		t.Fatalf("Failed to write list: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Review.LabelList = listPath
	cfg.Review.LabelsLayer = "seg"
	cfg.Review.Padding = 1
	cfg.Output.Verbose = false
	cfg.Layers = []config.LayerConfig{
		{Name: "raw", Kind: "image", Path: filepath.Join(dir, "raw.png")},
		{Name: "seg", Kind: "labels", Path: filepath.Join(dir, "seg.png")},
	}
	cfgPath := filepath.Join(dir, "labelreview.yaml")
	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		t.Fatalf("Failed to save config: %v", err)
	}
	return cfgPath
}

func writePNG(t *testing.T, path string, img image.Image) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("Failed to create %s: %v", path, err)
	}
	defer f.Close()
	if err := png.Encode(f, img); err != nil {
		t.Fatalf("Failed to encode %s: %v", path, err)
	}
}

func TestBoxesCommand(t *testing.T) {
	cfgPath := fixture(t, "- 3\n- 7\n- 99\n")

	code, out := execute(t, "boxes", "--config", cfgPath)
	if code != ExitSuccess {
		t.Fatalf("Expected exit 0, got %d", code)
	}

	var report boxReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Output is not YAML: %v\n%s", err, out)
	}
	if len(report.Boxes) != 2 {
		t.Fatalf("Expected 2 boxes, got %d", len(report.Boxes))
	}
	if report.Boxes[0].Label != 3 || report.Boxes[0].Box[0] != [2]int{0, 3} {
		t.Errorf("Unexpected box for label 3: %+v", report.Boxes[0])
	}
	if report.Boxes[1].Label != 7 || report.Boxes[1].Box[1] != [2]int{4, 7} {
		t.Errorf("Unexpected box for label 7: %+v", report.Boxes[1])
	}
	if report.Boxes[0].Area != 4 || !reflect.DeepEqual(report.Boxes[0].Centroid, []float64{0.5, 0.5}) {
		t.Errorf("Expected area 4 centroid [0.5 0.5] for label 3, got %+v", report.Boxes[0])
	}
	if report.Boxes[1].Area != 1 || !reflect.DeepEqual(report.Boxes[1].Centroid, []float64{5, 5}) {
		t.Errorf("Expected area 1 centroid [5 5] for label 7, got %+v", report.Boxes[1])
	}
	if len(report.Missing) != 1 || report.Missing[0] != 99 {
		t.Errorf("Expected label 99 missing, got %v", report.Missing)
	}
}

func TestBoxesPaddingFlag(t *testing.T) {
	cfgPath := fixture(t, "- 7\n")

	code, out := execute(t, "boxes", "--config", cfgPath, "--padding", "3")
	if code != ExitSuccess {
		t.Fatalf("Expected exit 0, got %d", code)
	}
	var report boxReport
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("Output is not YAML: %v", err)
	}
	if report.Padding != 3 || report.Boxes[0].Box[0] != [2]int{2, 9} {
		t.Errorf("Expected padding 3 box [2 9], got %+v", report)
	}
}

func TestExportCommand(t *testing.T) {
	cfgPath := fixture(t, "- 3\n- 7\n")
	outDir := filepath.Join(t.TempDir(), "crops")

	code, out := execute(t, "export", "--config", cfgPath, "--out", outDir)
	if code != ExitSuccess {
		t.Fatalf("Expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "Wrote 2 crops") {
		t.Errorf("Unexpected output %q", out)
	}
	for _, lbl := range []int{3, 7} {
		path := filepath.Join(outDir, fmt.Sprintf("label_%d.png", lbl))
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Missing crop for label %d: %v", lbl, err)
		}
		img, err := png.Decode(f)
		f.Close()
		if err != nil {
			t.Fatalf("Crop for label %d is not a PNG: %v", lbl, err)
		}
		if img.Bounds().Dx() != 3 || img.Bounds().Dy() != 3 {
			t.Errorf("Expected 3x3 crop for label %d, got %v", lbl, img.Bounds())
		}
	}
}

func TestSummaryCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels_res.yaml")
	if err := os.WriteFile(path, []byte("3: 2\n7: 1\n9: 2\n"), 0644); err != nil {
		t.Fatalf("Failed to write results: %v", err)
	}

	code, out := execute(t, "summary", path)
	if code != ExitSuccess {
		t.Fatalf("Expected exit 0, got %d", code)
	}
	if !strings.Contains(out, "3 labels judged") {
		t.Errorf("Expected total in output, got %q", out)
	}
	if !strings.Contains(out, "Needs improvement") || !strings.Contains(out, "66.7%") {
		t.Errorf("Expected needs-improvement share in output, got %q", out)
	}
}

func TestInitConfigCommand(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labelreview.yaml")

	code, _ := execute(t, "init-config", "--config", path)
	if code != ExitSuccess {
		t.Fatalf("Expected exit 0, got %d", code)
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		t.Fatalf("Created config does not load: %v", err)
	}
	if cfg.Review.Padding != 18 {
		t.Errorf("Expected default padding, got %d", cfg.Review.Padding)
	}
}

func TestExitCodes(t *testing.T) {
	cfgPath := fixture(t, "- 3\n")
	missingList := filepath.Join(t.TempDir(), "absent.yaml")

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"version", []string{"version"}, ExitSuccess},
		{"unknown command", []string{"frobnicate"}, ExitUsageError},
		{"unknown flag", []string{"boxes", "--nope"}, ExitUsageError},
		{"extra argument", []string{"boxes", "--config", cfgPath, "extra"}, ExitUsageError},
		{"negative padding", []string{"boxes", "--config", cfgPath, "--padding=-2"}, ExitUsageError},
		{"unknown labels layer", []string{"boxes", "--config", cfgPath, "--labels-layer", "raw"}, ExitUsageError},
		{"missing list file", []string{"boxes", "--config", cfgPath, "--list", missingList}, ExitRuntimeError},
		{"missing result file", []string{"summary", missingList}, ExitRuntimeError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if code, _ := execute(t, tt.args...); code != tt.want {
				t.Errorf("Expected exit %d, got %d", tt.want, code)
			}
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"review": false, "boxes": false, "export": false, "summary": false, "init-config": false, "version": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("Command %q is not registered", name)
		}
	}
}
