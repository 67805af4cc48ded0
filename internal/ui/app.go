// Package ui hosts the fyne windows: a control panel to start a review and the
// review window that shows each label's crop.
package ui

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"labelreview/internal/models"
	"labelreview/pkg/config"
	"labelreview/pkg/labellist"
	"labelreview/pkg/review"
)

// ReviewApp is the control panel window
type ReviewApp struct {
	fyneApp fyne.App
	mainWin fyne.Window

	config *config.Config
	layers []models.Layer

	listEntry    *widget.Entry
	layerSelect  *widget.Select
	paddingLabel *widget.Label
	statusLabel  *widget.Label

	session   *review.Session
	reviewWin *ReviewWindow
}

// CreateApp builds the control panel for already loaded layers
func CreateApp(cfg *config.Config, layers []models.Layer) *ReviewApp {
	return newReviewApp(app.New(), cfg, layers)
}

func newReviewApp(a fyne.App, cfg *config.Config, layers []models.Layer) *ReviewApp {
	w := a.NewWindow("Validate labels")
	w.Resize(fyne.NewSize(420, 320))

	return &ReviewApp{
		fyneApp: a,
		mainWin: w,
		config:  cfg,
		layers:  layers,
	}
}

// Run shows the control panel and blocks until the application quits
func (a *ReviewApp) Run() {
	a.mainWin.SetContent(a.buildContent())
	a.mainWin.CenterOnScreen()
	a.mainWin.ShowAndRun()
}

func (a *ReviewApp) buildContent() fyne.CanvasObject {
	a.listEntry = widget.NewEntry()
	a.listEntry.SetPlaceHolder("labels.yaml")
	a.listEntry.SetText(a.config.Review.LabelList)

	browse := widget.NewButtonWithIcon("", theme.FolderOpenIcon(), func() {
		dialog.ShowFileOpen(func(r fyne.URIReadCloser, err error) {
			if err != nil {
				dialog.ShowError(err, a.mainWin)
				return
			}
			if r == nil {
				return
			}
			defer r.Close()
			a.listEntry.SetText(r.URI().Path())
		}, a.mainWin)
	})

	names := a.labelsLayerNames()
	a.layerSelect = widget.NewSelect(names, func(name string) {
		a.config.Review.LabelsLayer = name
	})
	switch {
	case a.config.Review.LabelsLayer != "":
		a.layerSelect.SetSelected(a.config.Review.LabelsLayer)
	case len(names) > 0:
		a.layerSelect.SetSelected(names[0])
	}

	a.paddingLabel = widget.NewLabel("")
	padding := widget.NewSlider(float64(a.config.Review.MinPadding), float64(a.config.Review.MaxPadding))
	padding.Step = 1
	padding.OnChanged = func(v float64) {
		a.config.Review.Padding = int(v)
		a.paddingLabel.SetText("Bbox offset: " + strconv.Itoa(a.config.Review.Padding))
	}
	padding.SetValue(float64(a.config.Review.Padding))
	a.paddingLabel.SetText("Bbox offset: " + strconv.Itoa(a.config.Review.Padding))

	a.statusLabel = widget.NewLabel("")
	a.statusLabel.Wrapping = fyne.TextWrapWord

	return container.NewPadded(container.NewVBox(
		widget.NewLabelWithStyle("Configuration", fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
		widget.NewSeparator(),
		widget.NewLabel("Label list:"),
		container.NewBorder(nil, nil, nil, browse, a.listEntry),
		widget.NewLabel("Labels layer:"),
		a.layerSelect,
		a.paddingLabel,
		padding,
		widget.NewSeparator(),
		widget.NewButtonWithIcon("Start review", theme.MediaPlayIcon(), a.StartReview),
		a.statusLabel,
	))
}

func (a *ReviewApp) labelsLayerNames() []string {
	var names []string
	for _, l := range a.layers {
		if l.Kind == models.LabelsLayer && l.Labels != nil {
			names = append(names, l.Name)
		}
	}
	return names
}

func (a *ReviewApp) labelsLayer(name string) (models.Layer, bool) {
	for _, l := range a.layers {
		if l.Name == name && l.Labels != nil {
			return l, true
		}
	}
	return models.Layer{}, false
}

// StartReview reads the label list and opens a review window
func (a *ReviewApp) StartReview() {
	if a.session != nil && a.session.State() == review.Reviewing {
		dialog.ShowInformation("Review running", "Finish the current review first.", a.mainWin)
		return
	}

	listPath := a.listEntry.Text
	if listPath == "" {
		dialog.ShowError(errors.New("choose a label list file"), a.mainWin)
		return
	}
	source, ok := a.labelsLayer(a.layerSelect.Selected)
	if !ok {
		dialog.ShowError(errors.New("choose a labels layer"), a.mainWin)
		return
	}

	plan, err := review.Prepare(listPath, source.Labels, a.config.Review.Padding)
	if err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}
	if missing := plan.Missing(); len(missing) > 0 {
		log.Printf("Warning: %d listed labels are not in layer %q: %v", len(missing), source.Name, missing)
	}
	if a.config.Output.Verbose {
		fmt.Printf("Reviewing %d labels from %s, verdicts go to %s\n", len(plan.Labels), listPath, plan.ResultPath)
	}

	win := NewReviewWindow(a.fyneApp, a.config)
	s := review.NewSession(review.Params{
		Volume:  source.Labels,
		Layers:  a.layers,
		Display: win,
		Sink:    labellist.NewFileSink(plan.ResultPath),
		OnFinish: func() {
			a.statusLabel.SetText("Verdicts saved to " + plan.ResultPath)
			dialog.ShowInformation("Review finished", review.EndOfListMessage, a.mainWin)
		},
		OnError: func(err error) {
			dialog.ShowError(err, a.mainWin)
		},
	})
	win.OnClosed = func() {
		if err := s.Stop(); err != nil {
			dialog.ShowError(err, a.mainWin)
		}
		a.statusLabel.SetText(fmt.Sprintf("Review stopped at label %d/%d", s.Position()+1, s.Len()))
	}

	a.session = s
	a.reviewWin = win
	if err := s.Start(plan.Labels, plan.Boxes); err != nil {
		dialog.ShowError(err, a.mainWin)
		return
	}
	a.statusLabel.SetText(fmt.Sprintf("Reviewing %d labels", len(plan.Labels)))
}
