package ui

import (
	"fmt"
	"log"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"labelreview/internal/models"
	"labelreview/pkg/config"
	"labelreview/pkg/visualization"
)

// ReviewWindow is a secondary window showing the crop around one label. It
// implements review.Display.
type ReviewWindow struct {
	app    fyne.App
	cfg    *config.Config
	viewer *visualization.Viewer

	win         fyne.Window
	image       *canvas.Image
	status      *widget.Label
	layerNames  *widget.Label
	planeLabel  *widget.Label
	planeSlider *widget.Slider

	layers    []models.Layer
	plane     int
	onVerdict func(models.Verdict)

	// OnClosed is called when the reviewer closes the window. It is not
	// called for Close.
	OnClosed func()
}

// NewReviewWindow prepares a review window; nothing is shown until Open
func NewReviewWindow(a fyne.App, cfg *config.Config) *ReviewWindow {
	return &ReviewWindow{
		app:    a,
		cfg:    cfg,
		viewer: visualization.NewViewer(cfg.Display.LabelOpacity, cfg.Display.HighlightOpacity),
		plane:  -1,
	}
}

func (w *ReviewWindow) Open() error {
	win := w.app.NewWindow("Label review")
	win.Resize(fyne.NewSize(w.cfg.Display.Width, w.cfg.Display.Height))
	win.SetOnClosed(func() {
		if w.win != win {
			return
		}
		w.win = nil
		if w.OnClosed != nil {
			w.OnClosed()
		}
	})
	w.win = win

	w.image = canvas.NewImageFromImage(nil)
	w.image.FillMode = canvas.ImageFillContain
	w.image.ScaleMode = canvas.ImageScalePixels
	w.image.SetMinSize(fyne.NewSize(400, 400))

	w.status = widget.NewLabel("")
	w.status.TextStyle = fyne.TextStyle{Monospace: true}
	w.layerNames = widget.NewLabel("")
	w.layerNames.Wrapping = fyne.TextWrapWord

	w.planeLabel = widget.NewLabel("Plane: -")
	w.planeSlider = widget.NewSlider(0, 0)
	w.planeSlider.Step = 1
	w.planeSlider.OnChanged = func(v float64) {
		w.plane = int(v)
		w.redraw()
	}

	buttons := container.NewGridWithColumns(len(models.Verdicts))
	for _, v := range models.Verdicts {
		buttons.Add(widget.NewButton(fmt.Sprintf("%c: %s", v.Key(), v), func() {
			w.dispatch(v)
		}))
	}

	w.win.Canvas().SetOnTypedRune(func(r rune) {
		if v, ok := models.VerdictForKey(r); ok {
			w.dispatch(v)
		}
	})

	sidebar := container.NewVBox(
		widget.NewLabelWithStyle("Layers", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		w.layerNames,
		widget.NewSeparator(),
		w.status,
	)
	bottom := container.NewVBox(
		container.NewBorder(nil, nil, w.planeLabel, nil, w.planeSlider),
		buttons,
	)

	split := container.NewHSplit(
		container.NewPadded(w.image),
		container.NewPadded(sidebar),
	)
	split.SetOffset(0.75)

	w.win.SetContent(container.NewBorder(nil, bottom, nil, nil, split))
	w.win.Show()
	return nil
}

func (w *ReviewWindow) Close() error {
	if w.win == nil {
		return fmt.Errorf("review window is not open")
	}
	win := w.win
	w.win = nil
	win.Close()
	return nil
}

func (w *ReviewWindow) ClearLayers() {
	w.layers = nil
	w.plane = -1
	w.redraw()
}

func (w *ReviewWindow) AddLayer(layer models.Layer) {
	w.layers = append(w.layers, layer)

	// A new crop starts at its middle plane
	n := visualization.Planes(w.layers)
	if w.plane < 0 || w.plane >= n {
		w.plane = n / 2
	}
	if w.planeSlider != nil {
		w.planeSlider.Max = float64(max(n-1, 0))
		w.planeSlider.Value = float64(w.plane)
		w.planeSlider.Refresh()
	}
	w.redraw()
}

func (w *ReviewWindow) ShowStatus(text string) {
	if w.status != nil {
		w.status.SetText(text)
	}
}

func (w *ReviewWindow) BindVerdictKeys(handler func(models.Verdict)) {
	w.onVerdict = handler
}

func (w *ReviewWindow) dispatch(v models.Verdict) {
	if w.onVerdict != nil {
		w.onVerdict(v)
	}
}

func (w *ReviewWindow) redraw() {
	if w.win == nil {
		return
	}

	names := make([]string, len(w.layers))
	for i, l := range w.layers {
		names[i] = fmt.Sprintf("%s (%s)", l.Name, l.Kind)
	}
	w.layerNames.SetText(strings.Join(names, "\n"))

	if len(w.layers) == 0 || w.plane < 0 {
		w.planeLabel.SetText("Plane: -")
		w.image.Image = nil
		w.image.Refresh()
		return
	}

	img, err := w.viewer.Render(w.layers, w.plane)
	if err != nil {
		log.Printf("Warning: failed to render crop: %v", err)
		return
	}
	w.planeLabel.SetText(fmt.Sprintf("Plane: %d/%d", w.plane+1, visualization.Planes(w.layers)))
	w.image.Image = img
	w.image.Refresh()
}
