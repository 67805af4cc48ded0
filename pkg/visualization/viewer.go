package visualization

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"gonum.org/v1/gonum/floats"

	"labelreview/internal/models"
)

// Viewer composites cropped layers into a single picture of one plane. Axes
// before the last two are flattened into the plane index, so a 3D crop has one
// plane per z and a 2D crop has exactly one.
type Viewer struct {
	// LabelOpacity is the alpha applied to labels layers
	LabelOpacity float64

	// HighlightOpacity is the alpha applied to mask layers
	HighlightOpacity float64

	// HighlightColor paints true mask pixels
	HighlightColor color.RGBA
}

// NewViewer creates a viewer with the given layer opacities
func NewViewer(labelOpacity, highlightOpacity float64) *Viewer {
	return &Viewer{
		LabelOpacity:     labelOpacity,
		HighlightOpacity: highlightOpacity,
		HighlightColor:   color.RGBA{R: 255, G: 220, B: 0, A: 255},
	}
}

// planeGeometry splits a shape into the number of planes and the plane size
func planeGeometry(shape []int) (planes, height, width int) {
	switch len(shape) {
	case 0:
		return 0, 0, 0
	case 1:
		return 1, 1, shape[0]
	}
	planes = 1
	for _, n := range shape[:len(shape)-2] {
		planes *= n
	}
	return planes, shape[len(shape)-2], shape[len(shape)-1]
}

// Planes returns how many planes the layers can be shown at, which is the
// smallest count among them
func Planes(layers []models.Layer) int {
	n := -1
	for _, l := range layers {
		p, _, _ := planeGeometry(l.Shape())
		if n < 0 || p < n {
			n = p
		}
	}
	return max(n, 0)
}

// Render draws the given plane of every layer, bottom to top
func (v *Viewer) Render(layers []models.Layer, plane int) (*image.RGBA, error) {
	if len(layers) == 0 {
		return nil, fmt.Errorf("no layers to render")
	}

	_, height, width := planeGeometry(layers[0].Shape())
	out := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(out, out.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	for _, layer := range layers {
		planes, h, w := planeGeometry(layer.Shape())
		if h != height || w != width {
			return nil, fmt.Errorf("layer %q plane is %dx%d, expected %dx%d", layer.Name, w, h, width, height)
		}
		if plane < 0 || plane >= planes {
			return nil, fmt.Errorf("plane %d out of range for layer %q (%d planes)", plane, layer.Name, planes)
		}

		img, err := v.layerImage(layer, plane, width, height)
		if err != nil {
			return nil, err
		}
		draw.Draw(out, out.Bounds(), img, image.Point{}, draw.Over)
	}
	return out, nil
}

func (v *Viewer) layerImage(layer models.Layer, plane, width, height int) (image.Image, error) {
	size := width * height
	lo, hi := plane*size, (plane+1)*size

	switch {
	case layer.Image != nil:
		return grayImage(layer.Image.Data()[lo:hi], width, height), nil

	case layer.Labels != nil:
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		alpha := uint8(math.Round(v.LabelOpacity * 255))
		for i, lbl := range layer.Labels.Data()[lo:hi] {
			if lbl == 0 {
				continue
			}
			c := LabelColor(lbl)
			c.A = alpha
			img.SetNRGBA(i%width, i/width, c)
		}
		return img, nil

	case layer.Mask != nil:
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		c := color.NRGBA{
			R: v.HighlightColor.R,
			G: v.HighlightColor.G,
			B: v.HighlightColor.B,
			A: uint8(math.Round(v.HighlightOpacity * 255)),
		}
		for i, on := range layer.Mask.Data()[lo:hi] {
			if on {
				img.SetNRGBA(i%width, i/width, c)
			}
		}
		return img, nil
	}
	return nil, fmt.Errorf("layer %q has no data", layer.Name)
}

// grayImage maps the plane's value range onto 0..255
func grayImage(values []float64, width, height int) *image.Gray {
	img := image.NewGray(image.Rect(0, 0, width, height))
	if len(values) == 0 {
		return img
	}

	lo, hi := floats.Min(values), floats.Max(values)
	span := hi - lo
	for i, val := range values {
		var g uint8
		if span > 0 {
			g = uint8(math.Round((val - lo) / span * 255))
		}
		img.SetGray(i%width, i/width, color.Gray{Y: g})
	}
	return img
}

// LabelColor returns a stable, saturated color for a label id
func LabelColor(label uint64) color.NRGBA {
	// Golden-ratio hue steps keep neighboring ids apart
	hue := math.Mod(float64(label)*0.618033988749895, 1)
	r, g, b := hsvToRGB(hue, 0.75, 0.95)
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}

func hsvToRGB(h, s, v float64) (uint8, uint8, uint8) {
	i := math.Floor(h * 6)
	f := h*6 - i
	p := v * (1 - s)
	q := v * (1 - f*s)
	t := v * (1 - (1-f)*s)

	var r, g, b float64
	switch int(i) % 6 {
	case 0:
		r, g, b = v, t, p
	case 1:
		r, g, b = q, v, p
	case 2:
		r, g, b = p, v, t
	case 3:
		r, g, b = p, q, v
	case 4:
		r, g, b = t, p, v
	default:
		r, g, b = v, p, q
	}
	return uint8(math.Round(r * 255)), uint8(math.Round(g * 255)), uint8(math.Round(b * 255))
}

// SavePNG writes a rendered plane to filename
func (v *Viewer) SavePNG(img image.Image, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	return png.Encode(file, img)
}
