package widget

import (
	"context"
	"errors"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
	"github.com/secmon-lab/storevoice/pkg/utils/async"
	"github.com/secmon-lab/storevoice/pkg/utils/errutil"
	"github.com/secmon-lab/storevoice/pkg/utils/logging"
)

const eventBuffer = 64

// Controller drives a Machine: it feeds events from ports and timers into it on a single goroutine
// and executes the returned commands against the ports.
type Controller struct {
	machine     *Machine
	clock       Clock
	recognizer  Recognizer
	synthesizer Synthesizer
	recorder    Recorder
	client      TurnClient
	uploader    VoiceUploader
	store       LocalStore
	presenter   Presenter

	agentID types.AgentID
	userID  string
	memory  *model.Memory

	events chan Event
	done   chan struct{}
	queue  []Event
	timers map[TimerKind]Timer
}

type ControllerOption func(*Controller)

// WithClock replaces the wall clock
func WithClock(clock Clock) ControllerOption {
	return func(c *Controller) {
		c.clock = clock
	}
}

// WithRecording wires the recorder and uploader used for consented turns
func WithRecording(recorder Recorder, uploader VoiceUploader) ControllerOption {
	return func(c *Controller) {
		c.recorder = recorder
		c.uploader = uploader
	}
}

// WithAgentID binds turns to an agent
func WithAgentID(id types.AgentID) ControllerOption {
	return func(c *Controller) {
		c.agentID = id
	}
}

// WithPresenter sets the output renderer
func WithPresenter(p Presenter) ControllerOption {
	return func(c *Controller) {
		c.presenter = p
	}
}

// NewController loads the local mirror and consent from store and prepares the machine
func NewController(ctx context.Context, cfg Config, recognizer Recognizer, synthesizer Synthesizer, client TurnClient, store LocalStore, opts ...ControllerOption) (*Controller, error) {
	c := &Controller{
		clock:       RealClock,
		recognizer:  recognizer,
		synthesizer: synthesizer,
		client:      client,
		store:       store,
		presenter:   nopPresenter{},
		events:      make(chan Event, eventBuffer),
		done:        make(chan struct{}),
		timers:      make(map[TimerKind]Timer),
	}
	for _, opt := range opts {
		opt(c)
	}

	userID, err := store.UserID()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load client user id")
	}
	c.userID = userID

	mem, err := store.LoadMemory()
	if err != nil {
		errutil.Handle(ctx, goerr.Wrap(err, "failed to load local memory"), "local memory unreadable, starting empty")
		mem = nil
	}
	c.memory = mem

	if cfg.RecordingEnabled {
		consent, err := store.LoadConsent(c.agentID)
		if err != nil {
			errutil.Handle(ctx, goerr.Wrap(err, "failed to load consent"), "consent unreadable, asking again")
			consent = types.ConsentStatusUnknown
		}
		cfg.Consent = consent
	}
	if c.recorder == nil {
		cfg.RecordingEnabled = false
	}

	c.machine = NewMachine(cfg, c.clock.Now)
	return c, nil
}

// State returns the machine state. Only meaningful when Run is not executing concurrently.
func (c *Controller) State() State {
	return c.machine.State()
}

// Tap presses the microphone button
func (c *Controller) Tap() {
	c.Emit(EventTap{})
}

// AnswerConsent answers the recording consent prompt
func (c *Controller) AnswerConsent(accepted bool) {
	c.Emit(EventConsentAnswer{Accepted: accepted})
}

// Emit delivers an event to the loop. It is safe to call from any goroutine and drops the
// event once Run has returned.
func (c *Controller) Emit(ev Event) {
	select {
	case c.events <- ev:
	case <-c.done:
	}
}

// Run processes events until ctx is canceled
func (c *Controller) Run(ctx context.Context) error {
	defer close(c.done)
	defer c.shutdown()

	c.execute(ctx, c.machine.Start())

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-c.events:
			c.dispatch(ctx, ev)
		}
	}
}

// dispatch handles ev and any events raised synchronously while executing its commands
func (c *Controller) dispatch(ctx context.Context, ev Event) {
	c.queue = append(c.queue, ev)
	for len(c.queue) > 0 {
		next := c.queue[0]
		c.queue = c.queue[1:]
		c.execute(ctx, c.machine.Handle(next))
	}
}

func (c *Controller) execute(ctx context.Context, cmds []Command) {
	logger := logging.From(ctx)

	for _, cmd := range cmds {
		switch cmd := cmd.(type) {
		case CmdStateChanged:
			logger.Debug("widget state changed", slog.String("from", cmd.From.String()), slog.String("to", cmd.To.String()))
			c.presenter.StateChanged(cmd.From, cmd.To)

		case CmdCancelSpeech:
			c.synthesizer.Cancel()

		case CmdStartRecognition:
			if err := c.recognizer.Start(ctx, c.Emit); err != nil {
				if errors.Is(err, ErrRecognizerUnsupported) {
					c.queue = append(c.queue, EventRecognizerUnsupported{})
				} else {
					logger.Warn("failed to start recognition", logging.ErrAttr(err))
					c.queue = append(c.queue, EventRecognitionError{Code: "start-failed"})
				}
			}

		case CmdStopRecognition:
			c.recognizer.Stop()

		case CmdStartTimer:
			c.startTimer(cmd)

		case CmdSubmitTurn:
			c.presenter.Transcript(cmd.Text)
			c.submit(ctx, cmd.Text)

		case CmdSpeak:
			c.presenter.Reply(cmd.Text)
			c.speak(ctx, cmd)

		case CmdNotice:
			c.presenter.Notice(cmd.Text)

		case CmdPromptConsent:
			c.presenter.PromptConsent()

		case CmdPersistConsent:
			if err := c.store.SaveConsent(c.agentID, cmd.Status); err != nil {
				errutil.Handle(ctx, goerr.Wrap(err, "failed to save consent"), "consent not persisted")
			}

		case CmdPersistMemory:
			c.memory = cmd.Memory
			if err := c.store.SaveMemory(cmd.Memory); err != nil {
				errutil.Handle(ctx, goerr.Wrap(err, "failed to save local memory"), "local memory not persisted")
			}

		case CmdStartRecording:
			if err := c.recorder.Start(ctx); err != nil {
				logger.Warn("failed to start recorder", logging.ErrAttr(err))
			}

		case CmdDiscardRecording:
			c.recorder.Discard()

		case CmdFinishRecording:
			c.finishRecording(ctx, cmd)
		}
	}
}

func (c *Controller) startTimer(cmd CmdStartTimer) {
	if t, ok := c.timers[cmd.Kind]; ok {
		t.Stop()
	}
	ev := EventTimer{Kind: cmd.Kind, Gen: cmd.Gen}
	c.timers[cmd.Kind] = c.clock.AfterFunc(cmd.After, func() {
		c.Emit(ev)
	})
}

func (c *Controller) submit(ctx context.Context, text string) {
	req := &TurnRequest{
		Message: text,
		Memory:  c.memory,
		AgentID: c.agentID,
	}

	go func() {
		resp, err := c.client.Send(ctx, req)
		ev := EventReply{Err: err}
		if err == nil && resp != nil {
			ev.Reply = resp.Reply
			ev.Memory = resp.Memory
		} else if err == nil {
			ev.Err = goerr.New("empty turn response")
		}
		if ev.Err != nil {
			logging.From(ctx).Warn("turn failed", logging.ErrAttr(ev.Err))
		}
		c.Emit(ev)
	}()
}

func (c *Controller) speak(ctx context.Context, cmd CmdSpeak) {
	go func() {
		err := c.synthesizer.Speak(ctx, cmd.Text)
		if err != nil {
			logging.From(ctx).Warn("speech synthesis failed", logging.ErrAttr(err))
		}
		c.Emit(EventSpeechDone{UtteranceID: cmd.UtteranceID, Err: err})
	}()
}

func (c *Controller) finishRecording(ctx context.Context, cmd CmdFinishRecording) {
	audio, err := c.recorder.Stop()
	if err != nil {
		logging.From(ctx).Warn("failed to stop recorder", logging.ErrAttr(err))
		return
	}
	if len(audio) == 0 || c.uploader == nil {
		return
	}

	rec := &Recording{
		Audio:        audio,
		StoreID:      c.agentID,
		UserID:       c.userID,
		Transcript:   cmd.Transcript,
		AIResponse:   cmd.Reply,
		ConsentGiven: true,
	}
	async.Dispatch(ctx, "voice_upload", func(ctx context.Context) error {
		return c.uploader.Upload(ctx, rec)
	})
}

func (c *Controller) shutdown() {
	for _, t := range c.timers {
		t.Stop()
	}
	c.recognizer.Stop()
	c.synthesizer.Cancel()
	if c.recorder != nil {
		c.recorder.Discard()
	}
}

type nopPresenter struct{}

func (nopPresenter) StateChanged(from, to State) {}
func (nopPresenter) Notice(text string)          {}
func (nopPresenter) Transcript(text string)      {}
func (nopPresenter) Reply(text string)           {}
func (nopPresenter) PromptConsent()              {}
