// Package volumeio loads label volumes and intensity images from image files or
// directories of numbered slices.
package volumeio

import (
	"fmt"
	"image"
	"image/color"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"

	"labelreview/internal/models"
	"labelreview/pkg/config"
	"labelreview/pkg/ndarray"
)

var sliceExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".tif":  true,
	".tiff": true,
	".bmp":  true,
}

// LoadLayer loads the layer described by a config entry
func LoadLayer(lc config.LayerConfig) (models.Layer, error) {
	kind, ok := models.ParseLayerKind(lc.Kind)
	if !ok {
		return models.Layer{}, fmt.Errorf("layer %q has unknown kind %q", lc.Name, lc.Kind)
	}

	layer := models.Layer{Name: lc.Name, Kind: kind}
	var err error
	switch kind {
	case models.LabelsLayer:
		layer.Labels, err = LoadLabels(lc.Path)
	case models.ImageLayer:
		layer.Image, err = LoadImage(lc.Path)
	}
	if err != nil {
		return models.Layer{}, fmt.Errorf("failed to load layer %q: %w", lc.Name, err)
	}
	return layer, nil
}

// LoadLabels reads label ids from a 2D image or a directory of slices.
// Gray images give their gray value, paletted images their palette index and
// color images their packed 24-bit RGB value.
func LoadLabels(path string) (*ndarray.Array[uint64], error) {
	return load(path, labelValue)
}

// LoadImage reads intensities scaled to [0, 1]
func LoadImage(path string) (*ndarray.Array[float64], error) {
	return load(path, func(img image.Image, x, y int) float64 {
		g := color.Gray16Model.Convert(img.At(x, y)).(color.Gray16)
		return float64(g.Y) / 65535.0
	})
}

func labelValue(img image.Image, x, y int) uint64 {
	switch im := img.(type) {
	case *image.Gray16:
		return uint64(im.Gray16At(x, y).Y)
	case *image.Gray:
		return uint64(im.GrayAt(x, y).Y)
	case *image.Paletted:
		return uint64(im.ColorIndexAt(x, y))
	default:
		r, g, b, _ := img.At(x, y).RGBA()
		return uint64(r>>8)<<16 | uint64(g>>8)<<8 | uint64(b>>8)
	}
}

func load[T any](path string, value func(image.Image, int, int) T) (*ndarray.Array[T], error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	if !info.IsDir() {
		img, err := loadImage(path)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		arr, err := ndarray.New[T](b.Dy(), b.Dx())
		if err != nil {
			return nil, err
		}
		fill(arr.Data(), img, value)
		return arr, nil
	}

	files, err := sliceFiles(path)
	if err != nil {
		return nil, err
	}

	var arr *ndarray.Array[T]
	var width, height int
	for z, name := range files {
		img, err := loadImage(filepath.Join(path, name))
		if err != nil {
			return nil, fmt.Errorf("failed to load slice %s: %w", name, err)
		}

		// All slices must share the first slice's dimensions
		b := img.Bounds()
		if arr == nil {
			width, height = b.Dx(), b.Dy()
			arr, err = ndarray.New[T](len(files), height, width)
			if err != nil {
				return nil, err
			}
		} else if b.Dx() != width || b.Dy() != height {
			return nil, fmt.Errorf("slice %s is %dx%d, expected %dx%d", name, b.Dx(), b.Dy(), width, height)
		}

		size := width * height
		fill(arr.Data()[z*size:(z+1)*size], img, value)
	}
	return arr, nil
}

// sliceFiles lists image files in dir ordered by the number in their names
func sliceFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if sliceExtensions[strings.ToLower(filepath.Ext(e.Name()))] {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no image slices found in %s", dir)
	}

	sort.SliceStable(files, func(i, j int) bool {
		ni, nj := extractNumber(files[i]), extractNumber(files[j])
		if ni != nj {
			return ni < nj
		}
		return files[i] < files[j]
	})
	return files, nil
}

// extractNumber extracts the numeric part from a filename
func extractNumber(filename string) int {
	base := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	var digits strings.Builder
	for _, c := range base {
		if c >= '0' && c <= '9' {
			digits.WriteRune(c)
		}
	}
	if digits.Len() == 0 {
		return 0
	}
	num, err := strconv.Atoi(digits.String())
	if err != nil {
		return 0
	}
	return num
}

func loadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return img, nil
}

func fill[T any](dst []T, img image.Image, value func(image.Image, int, int) T) {
	b := img.Bounds()
	w := b.Dx()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			dst[(y-b.Min.Y)*w+(x-b.Min.X)] = value(img, x, y)
		}
	}
}
