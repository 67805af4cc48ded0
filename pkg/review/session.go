// Package review drives a label review: it walks a list of label ids, shows the
// cropped neighborhood of each one and records the reviewer's verdicts.
package review

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"labelreview/internal/models"
	"labelreview/pkg/labellist"
	"labelreview/pkg/ndarray"
)

var (
	// ErrOutOfRange is returned when an operation needs a current label but
	// the session is not reviewing
	ErrOutOfRange = errors.New("no current label")

	// ErrInvalidVerdict is returned for verdict codes outside 1..3
	ErrInvalidVerdict = errors.New("invalid verdict")

	// ErrLabelNotFound is returned when the current label has no bounding box
	ErrLabelNotFound = errors.New("label not found in volume")

	// ErrAlreadyStarted is returned when Start is called twice
	ErrAlreadyStarted = errors.New("review already started")
)

// EndOfListMessage is shown once every label has been judged
const EndOfListMessage = "End of label list reached!"

// State is the lifecycle stage of a Session
type State int

const (
	NotStarted State = iota
	Reviewing
	Finished
	// Stopped means the review was abandoned before the last label
	Stopped
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case Reviewing:
		return "reviewing"
	case Finished:
		return "finished"
	case Stopped:
		return "stopped"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Display is the surface a session shows crops on. Implementations are driven
// from a single goroutine.
type Display interface {
	// Open makes the surface visible
	Open() error

	// Close releases the surface
	Close() error

	// ClearLayers removes every displayed layer
	ClearLayers()

	// AddLayer shows one more layer on top of the current ones
	AddLayer(layer models.Layer)

	// ShowStatus replaces the status text
	ShowStatus(text string)

	// BindVerdictKeys routes the three verdict keys to handler
	BindVerdictKeys(handler func(models.Verdict))
}

// Params configures a Session
type Params struct {
	// Volume is the labels layer the boxes were computed from
	Volume *ndarray.Array[uint64]

	// Layers are cropped and shown for every label, in order
	Layers []models.Layer

	// Display shows the crops
	Display Display

	// Sink persists verdicts after each one is recorded
	Sink labellist.VerdictSink

	// OnFinish is called once the last label has been judged
	OnFinish func()

	// OnError receives errors from key presses, which have no caller to
	// return to. Defaults to logging.
	OnError func(error)
}

// Session holds the state of one review
type Session struct {
	params Params

	labels   []uint64
	boxes    map[uint64]models.BoundingBox
	position int
	state    State
	verdicts map[uint64]models.Verdict
}

// NewSession creates a session that has not started yet
func NewSession(params Params) *Session {
	if params.OnError == nil {
		params.OnError = func(err error) {
			log.Printf("Review error: %v", err)
		}
	}
	return &Session{
		params:   params,
		verdicts: make(map[uint64]models.Verdict),
	}
}

// Start opens the display and shows the first label. An empty list finishes
// the session immediately.
func (s *Session) Start(labels []uint64, boxes map[uint64]models.BoundingBox) error {
	if s.state != NotStarted {
		return ErrAlreadyStarted
	}

	s.labels = append([]uint64(nil), labels...)
	s.boxes = boxes
	s.position = 0
	s.verdicts = make(map[uint64]models.Verdict)

	if err := s.params.Display.Open(); err != nil {
		return fmt.Errorf("failed to open display: %w", err)
	}
	s.params.Display.BindVerdictKeys(s.handleKey)

	if len(s.labels) == 0 {
		s.finish()
		return nil
	}

	s.state = Reviewing
	return s.show()
}

// State returns the lifecycle stage
func (s *Session) State() State {
	return s.state
}

// Position returns the index of the current label in the list
func (s *Session) Position() int {
	return s.position
}

// Len returns the number of labels in the list
func (s *Session) Len() int {
	return len(s.labels)
}

// CurrentLabel returns the label under review
func (s *Session) CurrentLabel() (uint64, error) {
	if s.state != Reviewing {
		return 0, fmt.Errorf("%w: session is %s", ErrOutOfRange, s.state)
	}
	return s.labels[s.position], nil
}

// Verdicts returns a copy of the verdicts recorded so far
func (s *Session) Verdicts() map[uint64]models.Verdict {
	out := make(map[uint64]models.Verdict, len(s.verdicts))
	for lbl, v := range s.verdicts {
		out[lbl] = v
	}
	return out
}

// Advance moves to the next label, finishing the session after the last one
func (s *Session) Advance() error {
	if s.state != Reviewing {
		return fmt.Errorf("%w: session is %s", ErrOutOfRange, s.state)
	}

	s.position++
	if s.position == len(s.labels) {
		s.finish()
		return nil
	}
	return s.show()
}

// RecordVerdict stores v for the current label, saves every verdict and
// advances. If saving fails the verdict stays in memory, the position does not
// move and Flush or another RecordVerdict can retry.
func (s *Session) RecordVerdict(v models.Verdict) error {
	if s.state != Reviewing {
		return fmt.Errorf("%w: session is %s", ErrOutOfRange, s.state)
	}
	if !v.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidVerdict, int(v))
	}

	lbl := s.labels[s.position]
	s.verdicts[lbl] = v

	if err := s.Flush(); err != nil {
		return err
	}
	return s.Advance()
}

// Flush writes the in-memory verdicts to the sink
func (s *Session) Flush() error {
	if s.params.Sink == nil {
		return nil
	}
	if err := s.params.Sink.SaveVerdicts(s.Verdicts()); err != nil {
		return fmt.Errorf("failed to save verdicts: %w", err)
	}
	return nil
}

// Stop abandons a running review, for instance when the reviewer closes the
// display. The display is not touched. Verdicts recorded so far are saved
// again so a write that failed earlier gets another try.
func (s *Session) Stop() error {
	if s.state != Reviewing {
		return fmt.Errorf("%w: session is %s", ErrOutOfRange, s.state)
	}
	s.state = Stopped
	log.Printf("Review stopped at label %d of %d", s.position+1, len(s.labels))
	return s.Flush()
}

func (s *Session) handleKey(v models.Verdict) {
	if err := s.RecordVerdict(v); err != nil {
		s.params.OnError(err)
	}
}

// show replaces the displayed layers with the crop around the current label
func (s *Session) show() error {
	d := s.params.Display
	d.ClearLayers()

	lbl := s.labels[s.position]
	box, ok := s.boxes[lbl]
	if !ok {
		d.ShowStatus(s.statusText(fmt.Sprintf("label %d not found in volume", lbl)))
		return fmt.Errorf("%w: label %d has no bounding box", ErrLabelNotFound, lbl)
	}

	layers, err := ComposeCrop(box, s.params.Layers, s.params.Volume, lbl)
	if err != nil {
		return fmt.Errorf("failed to crop label %d: %w", lbl, err)
	}
	for _, layer := range layers {
		d.AddLayer(layer)
	}
	d.ShowStatus(s.statusText(fmt.Sprintf("label %d", lbl)))
	return nil
}

func (s *Session) finish() {
	s.state = Finished
	log.Println(EndOfListMessage)

	d := s.params.Display
	d.ClearLayers()
	d.ShowStatus(EndOfListMessage)
	if err := d.Close(); err != nil {
		log.Printf("Warning: failed to close display: %v", err)
	}
	if s.params.OnFinish != nil {
		s.params.OnFinish()
	}
}

func (s *Session) statusText(line string) string {
	var b strings.Builder
	b.WriteString("press on keyboard:\n")
	for _, v := range models.Verdicts {
		fmt.Fprintf(&b, "%c: %s\n", v.Key(), v)
	}
	fmt.Fprintf(&b, "\n%s (%d/%d)", line, s.position+1, len(s.labels))
	return b.String()
}
