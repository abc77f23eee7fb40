// Package session sequences the lifecycle of a text-entry session and
// keeps the model, alphabet, colours and view consistent with the
// parameter store.
package session

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"sync/atomic"

	"github.com/yoanbernabeu/zoomtype/alphabet"
	"github.com/yoanbernabeu/zoomtype/config"
	"github.com/yoanbernabeu/zoomtype/event"
	"github.com/yoanbernabeu/zoomtype/lm"
	"github.com/yoanbernabeu/zoomtype/nav"
)

const (
	// ContextWindow is how many trailing runes SetContext compares. Changes
	// confined to earlier text go unnoticed.
	ContextWindow = 6
	// maxContext bounds the context kept from edit events.
	maxContext = 20

	initialContext = ". "
)

// Options configures a Session. Only Params is required.
type Options struct {
	Params     *config.Store
	Catalog    *alphabet.Catalog
	Dispatcher *event.Dispatcher
	Logger     *log.Logger

	Sink        TrainingSink
	NewView     ViewFactory
	NewActivity ActivityLoggerFactory
	// SnapshotPath locates a saved model for an alphabet. When a snapshot
	// loads, the training files are not read.
	SnapshotPath func(alphabetID string) string
}

// Session owns the navigation model, the alphabet, the colour scheme
// and the view. All methods except ScheduleRetrain must be called from the
// goroutine driving NewFrame.
type Session struct {
	params       *config.Store
	catalog      *alphabet.Catalog
	events       *event.Dispatcher
	logger       *log.Logger
	sink         TrainingSink
	newView      ViewFactory
	newActivity  ActivityLoggerFactory
	snapshotPath func(string) string

	alphabet *alphabet.Alphabet
	colours  *alphabet.ColourScheme
	model    *nav.Model
	view     View
	screen   Screen
	editbox  Editbox
	input    Filter
	activity ActivityLogger

	context  string
	buffer   TrainingBuffer
	controls []func(*nav.Model)
	retrain  atomic.Bool

	reactions   map[config.Param]func()
	dropInput   func()
	unsubscribe []func()
}

// New creates a session. Call Realize before driving frames.
func New(opts Options) *Session {
	s := &Session{
		params:       opts.Params,
		catalog:      opts.Catalog,
		events:       opts.Dispatcher,
		logger:       opts.Logger,
		sink:         opts.Sink,
		newView:      opts.NewView,
		newActivity:  opts.NewActivity,
		snapshotPath: opts.SnapshotPath,
		context:      initialContext,
	}
	if s.params == nil {
		s.params = config.NewStore()
	}
	if s.catalog == nil {
		s.catalog = alphabet.NewCatalog()
	}
	if s.events == nil {
		s.events = event.NewDispatcher()
	}
	if s.logger == nil {
		s.logger = log.Default()
	}
	s.reactions = s.buildReactions()

	s.unsubscribe = append(s.unsubscribe,
		s.params.Subscribe(func(p config.Param) {
			s.events.Publish(event.ParameterChanged{Param: p})
		}),
		s.events.Register(s),
	)
	return s
}

func (s *Session) buildReactions() map[config.Param]func() {
	redraw := s.RequestFullRedraw
	return map[config.Param]func(){
		config.BoolColourMode: func() {
			s.Start()
			redraw()
		},
		config.BoolOutlineMode: redraw,
		config.LongOrientation: func() {
			s.deriveOrientation()
			redraw()
		},
		config.StringAlphabetID: func() {
			s.swapAlphabet(s.params.GetString(config.StringAlphabetID))
			s.deriveOrientation()
			s.Start()
			redraw()
		},
		config.StringColourID: func() {
			s.ChangeColours(s.params.GetString(config.StringColourID))
			redraw()
		},
		config.LongLanguageModelID: func() {
			s.CreateModel()
			s.Start()
			redraw()
		},
		config.LongLineWidth: redraw,
		config.LongFontSize:  redraw,
		config.BoolMousePosMode: func() {
			if s.params.GetBool(config.BoolPaused) {
				if s.params.GetBool(config.BoolMousePosMode) {
					s.params.SetLong(config.LongMousePosBox, 1)
				} else {
					s.params.SetLong(config.LongMousePosBox, -1)
				}
			}
			redraw()
		},
	}
}

// Realize loads the configured colours and alphabet and creates the
// activity logger. It completes construction once the store holds its
// final values.
func (s *Session) Realize() {
	s.ChangeColours(s.params.GetString(config.StringColourID))
	s.swapAlphabet(s.params.GetString(config.StringAlphabetID))
	s.deriveOrientation()

	level := s.params.GetLong(config.LongUserLogLevel)
	if level > 0 && s.newActivity != nil && s.activity == nil {
		activity, err := s.newActivity(level, s.alphabet)
		if err != nil {
			s.logger.Printf("Warning: failed to create activity log: %v", err)
			return
		}
		s.activity = activity
	}
}

// HandleEvent reacts to parameter changes, edits and control actions.
func (s *Session) HandleEvent(e event.Event) {
	switch ev := e.(type) {
	case event.ParameterChanged:
		if react, ok := s.reactions[ev.Param]; ok {
			react()
		}
		return
	case event.EditInserted:
		s.context = lastRunes(s.context+ev.Text, maxContext)
		s.buffer.Append(ev.Text)
	case event.EditDeleted:
		n := len([]rune(ev.Text))
		s.context = dropRunes(s.context, n)
		s.buffer.Delete(n)
	case event.Control:
		switch ev.ID {
		case nav.ControlStop:
			s.PauseAt(0, 0)
		case nav.ControlPause:
			s.Halt()
		}
	}
	if s.editbox != nil {
		s.editbox.HandleEvent(e)
	}
}

func (s *Session) deriveOrientation() {
	o := s.params.GetLong(config.LongOrientation)
	if o == config.OrientationAlphabetDefault {
		o = s.AlphabetOrientation()
	}
	s.params.SetLong(config.LongRealOrientation, o)
}

// Start pauses and rebuilds the root from the current context.
func (s *Session) Start() {
	s.PauseAt(0, 0)
	if s.model != nil {
		s.model.Start()
	}
	if s.view != nil {
		s.view.ResetAccumulators()
	}
}

// PauseAt stops navigation, leaving the pointer at (x, y).
func (s *Session) PauseAt(x, y int64) {
	s.params.SetBool(config.BoolPaused, true)
	if s.params.GetBool(config.BoolMousePosMode) {
		s.params.SetLong(config.LongMousePosBox, 1)
	}
	s.RequestFullRedraw()
	s.events.Publish(event.Stopped{})
	if s.activity != nil {
		s.activity.StopWriting(s.GetNats())
	}
}

// Halt pauses without ending the trial and restarts the speed ramp on
// resumption.
func (s *Session) Halt() {
	s.params.SetBool(config.BoolPaused, true)
	if s.params.GetBool(config.BoolMousePosMode) {
		s.params.SetLong(config.LongMousePosBox, 1)
	}
	if s.model != nil {
		s.model.Halt()
	}
}

// Unpause resumes navigation at time t (ms).
func (s *Session) Unpause(t int64) {
	s.params.SetBool(config.BoolPaused, false)
	if s.model != nil {
		s.model.ResetFramerate(t)
	}
	if s.view != nil {
		s.view.ResetAccumulators()
	}
	s.params.SetLong(config.LongMousePosBox, -1)
	s.events.Publish(event.Started{})
	s.ResetNats()
	if s.activity != nil {
		s.activity.StartWriting()
	}
}

// ChangeAlphabet selects the alphabet id. Selecting a new id goes through
// the store so every listener sees it; re-selecting the current id
// rebuilds in place.
func (s *Session) ChangeAlphabet(id string) {
	if s.params.GetString(config.StringAlphabetID) != id {
		s.params.SetString(config.StringAlphabetID, id)
		return
	}
	s.swapAlphabet(id)
}

// swapAlphabet replaces the alphabet and its model while BoolTraining is
// held. An unknown id leaves the current alphabet in place.
func (s *Session) swapAlphabet(id string) {
	s.WriteTrainFileFull()
	s.params.SetBool(config.BoolTraining, true)

	info, err := s.catalog.Info(id)
	if err != nil {
		s.logger.Printf("Warning: alphabet %q not loaded: %v", id, err)
		s.params.SetBool(config.BoolTraining, false)
		return
	}
	a := alphabet.New(info)
	s.alphabet = a
	if s.activity != nil {
		s.activity.SetAlphabet(a)
	}

	s.params.SetString(config.StringTrainFile, a.TrainingFile())
	if gm := a.GameModeFile(); gm != "" {
		s.params.SetString(config.StringGameTextFile, gm)
	}

	// The old model must be gone before its training file is re-read.
	s.model = nil
	s.view = nil
	s.CreateModel()

	if a.Palette() != "" && s.params.GetBool(config.BoolPaletteChange) {
		s.params.SetString(config.StringColourID, a.Palette())
	}

	s.params.SetBool(config.BoolTraining, false)
	s.Start()
}

// ChangeColours loads the colour scheme id. Unknown ids are ignored.
func (s *Session) ChangeColours(id string) {
	cs, err := s.catalog.ColourScheme(id)
	if err != nil {
		s.logger.Printf("Warning: colour scheme %q not loaded: %v", id, err)
		return
	}
	s.colours = cs
	if s.screen != nil {
		s.screen.SetColourScheme(cs)
	}
}

// ChangeLanguageModel switches the model kind and rebuilds when it differs.
func (s *Session) ChangeLanguageModel(kind int64) {
	if kind == s.params.GetLong(config.LongLanguageModelID) {
		return
	}
	s.params.SetLong(config.LongLanguageModelID, kind)
}

// CreateModel builds a fresh model for the current alphabet and trains it
// from the system and user training files. A saved snapshot stands in for
// the text it was trained on, so only what was appended since is read.
// A kind of -1 disables models.
func (s *Session) CreateModel() {
	kind := s.params.GetLong(config.LongLanguageModelID)
	if kind == -1 || s.alphabet == nil {
		return
	}
	s.model = nil

	a := s.alphabet
	lang := lm.New(kind, a.NumberSymbols(),
		int(s.params.GetLong(config.LongLMOrder)),
		int(s.params.GetLong(config.LongUniform)))
	m := nav.New(lang, a, s.params)
	m.Controls().RegisterDefaults()
	for _, apply := range s.controls {
		apply(m)
	}
	m.SetContext(s.context)
	s.model = m

	learned := s.loadSnapshot(lang)
	name := a.TrainingFile()
	for _, loc := range []config.Param{config.StringSystemLoc, config.StringUserLoc} {
		if dir := s.params.GetString(loc); dir != "" && name != "" {
			path := filepath.Join(dir, name)
			s.trainFileFrom(path, learned[SourceKey(path)])
		}
	}

	if id := s.params.GetLong(config.LongViewID); id != -1 {
		s.ChangeView(id)
	}
}

// loadSnapshot fills lang from the alphabet's snapshot and returns what
// the snapshot has already learned. The result is empty when no snapshot
// was used.
func (s *Session) loadSnapshot(lang lm.Model) lm.Sources {
	ppm, ok := lang.(*lm.PPM)
	if !ok || s.snapshotPath == nil {
		return lm.Sources{}
	}
	path := s.snapshotPath(s.alphabet.ID())
	if path == "" {
		return lm.Sources{}
	}
	learned, err := lm.NewGOBStore(path).LoadSources(context.Background(), ppm, s.alphabet.ID())
	if err != nil {
		s.logger.Printf("Warning: model snapshot %s ignored: %v", path, err)
		return lm.Sources{}
	}
	return learned
}

// ChangeView selects view id and builds it once a screen and a model
// exist.
func (s *Session) ChangeView(id int64) {
	s.params.SetLong(config.LongViewID, id)
	if s.screen == nil || s.model == nil || s.newView == nil {
		return
	}
	s.view = s.newView(id, s.screen, s.model)
}

// ChangeScreen binds a new drawing surface.
func (s *Session) ChangeScreen(screen Screen) {
	s.screen = screen
	if s.colours != nil {
		screen.SetColourScheme(s.colours)
	}
	if s.view != nil {
		s.view.ChangeScreen(screen)
	} else if id := s.params.GetLong(config.LongViewID); id != -1 {
		s.ChangeView(id)
	}
	s.redraw()
}

// ChangeEditbox binds a new editbox, clears it and starts over.
func (s *Session) ChangeEditbox(e Editbox) {
	s.editbox = e
	e.Reset()
	s.CreateModel()
	s.Start()
	s.redraw()
}

// SetInput replaces the input filter. Filters that handle events receive
// every event from the dispatcher.
func (s *Session) SetInput(f Filter) {
	if s.dropInput != nil {
		s.dropInput()
		s.dropInput = nil
	}
	s.input = f
	if h, ok := f.(event.Handler); ok {
		s.dropInput = s.events.Register(h)
	}
}

// NewFrame advances the session to time t (ms). Buffered training text
// past PartialFlushThreshold is written out a chunk at a time.
func (s *Session) NewFrame(t int64) {
	if s.retrain.CompareAndSwap(true, false) {
		s.retrainModel()
	}

	if s.params.GetBool(config.BoolRedraw) {
		s.redraw()
		s.params.SetBool(config.BoolRedraw, false)
	}

	x, y := s.target(t)
	if s.params.GetBool(config.BoolPaused) || s.params.GetBool(config.BoolTraining) {
		s.render(x, y, false)
	} else {
		s.tapOn(t, x, y)
	}
	for s.sink != nil && s.buffer.Len() > PartialFlushThreshold {
		s.WriteTrainFilePartial()
	}

	if s.params.GetBool(config.BoolMousePosMode) && s.view != nil && s.view.HandleStartOnMouse(t) {
		s.Unpause(t)
	}
}

func (s *Session) target(t int64) (int64, int64) {
	if s.input == nil {
		return nav.CrossX, nav.CrossY
	}
	return s.input.Target(t)
}

func (s *Session) tapOn(t, x, y int64) {
	if s.model == nil {
		return
	}
	res := s.model.AdvanceFrame(t, x, y)
	if s.activity != nil {
		if res.Deleted > 0 {
			s.activity.DeleteSymbols(res.Deleted)
		}
		if len(res.Committed) > 0 {
			s.activity.AddSymbols(res.Committed)
		}
	}
	for _, sym := range res.Removed {
		s.events.Publish(event.EditDeleted{Text: s.alphabet.Text(sym), Symbol: int(sym)})
	}
	for _, sym := range res.Committed {
		s.events.Publish(event.EditInserted{Text: s.alphabet.Text(sym), Symbol: int(sym)})
	}
	for _, id := range res.Controls {
		s.events.Publish(event.Control{ID: id})
	}
	s.render(x, y, true)
}

func (s *Session) render(x, y int64, force bool) {
	if s.view == nil {
		return
	}
	changed := s.view.Render(x, y, force)
	if s.input != nil && s.screen != nil {
		s.input.Decorate(s.screen)
	}
	if changed || force {
		s.view.Display()
	}
}

func (s *Session) redraw() {
	x, y := s.target(0)
	s.render(x, y, true)
}

// RequestFullRedraw schedules a full redraw for the next frame.
func (s *Session) RequestFullRedraw() {
	s.params.SetBool(config.BoolRedraw, true)
}

// ScheduleRetrain asks the frame goroutine to rebuild the model from its
// training files. Safe to call from any goroutine.
func (s *Session) ScheduleRetrain() {
	s.retrain.Store(true)
}

func (s *Session) retrainModel() {
	if s.alphabet == nil {
		return
	}
	s.logger.Printf("Retraining %s model", s.alphabet.ID())
	s.CreateModel()
	s.Start()
	s.RequestFullRedraw()
}

// SetContext tells the session the text before the insertion point
// changed. Only a change inside the trailing ContextWindow runes
// restarts navigation.
func (s *Session) SetContext(text string) {
	if lastRunes(text, ContextWindow) == lastRunes(s.context, ContextWindow) {
		return
	}
	if s.model != nil && s.model.ContextSensitive() {
		s.model.SetContext(text)
		s.PauseAt(0, 0)
	}
	s.context = lastRunes(text, maxContext)
	s.WriteTrainFileFull()
}

// Context returns the recent text the session knows about.
func (s *Session) Context() string { return s.context }

// RegisterNode adds a control node; it survives model rebuilds.
func (s *Session) RegisterNode(id int, label string, colour int) {
	s.addControl(func(m *nav.Model) { m.RegisterControlNode(id, label, colour) })
}

// ConnectNode links control nodes; see nav.ControlGraph.Connect.
func (s *Session) ConnectNode(child, parent, after int) {
	s.addControl(func(m *nav.Model) { m.ConnectControlNode(child, parent, after) })
}

func (s *Session) addControl(apply func(*nav.Model)) {
	s.controls = append(s.controls, apply)
	if s.model != nil {
		apply(s.model)
	}
}

func (s *Session) GetNats() float64 {
	if s.model == nil {
		return 0
	}
	return s.model.Nats()
}

func (s *Session) ResetNats() {
	if s.model != nil {
		s.model.ResetNats()
	}
}

// TrainFile trains the model from path. A missing file is logged and
// skipped.
func (s *Session) TrainFile(path string) {
	s.trainFileFrom(path, 0)
}

func (s *Session) trainFileFrom(path string, offset int64) {
	if path == "" || s.model == nil {
		return
	}
	n, _, err := TrainPathFrom(path, offset, s.alphabet, s.model.Trainer())
	if err != nil {
		s.logger.Printf("Training file %s not used: %v", path, err)
		return
	}
	s.logger.Printf("Trained on %d symbols from %s", n, path)
}

// WriteTrainFileFull writes the whole training buffer to the sink.
func (s *Session) WriteTrainFileFull() {
	s.writeTraining(s.buffer.TakeAll())
}

// WriteTrainFilePartial writes the first PartialFlushSize buffered runes.
func (s *Session) WriteTrainFilePartial() {
	s.writeTraining(s.buffer.TakePartial())
}

func (s *Session) writeTraining(text string) {
	if s.sink == nil || text == "" {
		return
	}
	if err := s.sink.WriteTraining(text); err != nil {
		s.logger.Printf("Warning: failed to save training text: %v", err)
	}
}

// Buffer exposes the pending training text.
func (s *Session) Buffer() *TrainingBuffer { return &s.buffer }

// KeyDown forwards a switch press to the input filter.
func (s *Session) KeyDown(t int64, id int) {
	if s.input != nil {
		s.input.KeyDown(t, id)
	}
}

func (s *Session) KeyUp(t int64, id int) {
	if s.input != nil {
		s.input.KeyUp(t, id)
	}
}

// Close flushes pending training text, writes the activity log and
// detaches from the store and dispatcher.
func (s *Session) Close() error {
	var errs []error
	if s.sink != nil {
		if text := s.buffer.TakeAll(); text != "" {
			if err := s.sink.WriteTraining(text); err != nil {
				errs = append(errs, fmt.Errorf("failed to save training text: %w", err))
			}
		}
	}
	if s.activity != nil {
		if err := s.activity.OutputFile(); err != nil {
			errs = append(errs, fmt.Errorf("failed to write activity log: %w", err))
		}
	}
	if s.dropInput != nil {
		s.dropInput()
		s.dropInput = nil
	}
	for _, unsubscribe := range s.unsubscribe {
		unsubscribe()
	}
	s.unsubscribe = nil
	return errors.Join(errs...)
}

func lastRunes(text string, n int) string {
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[len(r)-n:])
}

func dropRunes(text string, n int) string {
	r := []rune(text)
	if n >= len(r) {
		return ""
	}
	return string(r[:len(r)-n])
}
