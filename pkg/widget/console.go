package widget

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
)

// ConsoleRecognizer treats typed lines as final speech fragments. Lines fed while recognition is
// stopped are held until the next Start.
type ConsoleRecognizer struct {
	mu      sync.Mutex
	emit    func(Event)
	pending []string
}

var _ Recognizer = &ConsoleRecognizer{}

func NewConsoleRecognizer() *ConsoleRecognizer {
	return &ConsoleRecognizer{}
}

func (r *ConsoleRecognizer) Start(ctx context.Context, emit func(Event)) error {
	r.mu.Lock()
	r.emit = emit
	pending := r.pending
	r.pending = nil
	r.mu.Unlock()

	for _, text := range pending {
		emit(EventFragment{Text: text, Final: true})
	}
	return nil
}

func (r *ConsoleRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emit = nil
	r.pending = nil
}

// Feed delivers one typed line
func (r *ConsoleRecognizer) Feed(text string) {
	r.mu.Lock()
	emit := r.emit
	if emit == nil {
		r.pending = append(r.pending, text)
	}
	r.mu.Unlock()

	if emit != nil {
		emit(EventFragment{Text: text, Final: true})
	}
}

// ConsoleSynthesizer prints replies and holds Speak for a reading-time delay so barge-in can be tried
type ConsoleSynthesizer struct {
	out      io.Writer
	perRune  time.Duration
	maxDelay time.Duration

	mu     sync.Mutex
	cancel chan struct{}
}

var _ Synthesizer = &ConsoleSynthesizer{}

// NewConsoleSynthesizer creates a synthesizer. speed scales the reading rate; values <= 0 mean 1.
func NewConsoleSynthesizer(out io.Writer, speed float64) *ConsoleSynthesizer {
	if speed <= 0 {
		speed = 1
	}
	return &ConsoleSynthesizer{
		out:      out,
		perRune:  time.Duration(float64(40*time.Millisecond) / speed),
		maxDelay: 8 * time.Second,
	}
}

func (s *ConsoleSynthesizer) Speak(ctx context.Context, text string) error {
	done := make(chan struct{})
	s.mu.Lock()
	if s.cancel != nil {
		close(s.cancel)
	}
	s.cancel = done
	s.mu.Unlock()

	color.New(color.FgCyan).Fprintf(s.out, "🔊 %s\n", text)

	delay := min(time.Duration(len([]rune(text)))*s.perRune, s.maxDelay)
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-timer.C:
	case <-done:
		return nil
	case <-ctx.Done():
		return goerr.Wrap(ctx.Err(), "speech interrupted")
	}

	s.mu.Lock()
	if s.cancel == done {
		s.cancel = nil
	}
	s.mu.Unlock()
	return nil
}

func (s *ConsoleSynthesizer) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		close(s.cancel)
		s.cancel = nil
	}
}

// ConsolePresenter renders widget output with colors and tracks what the input loop should do
type ConsolePresenter struct {
	out           io.Writer
	state         atomic.Int32
	consentPrompt atomic.Bool
}

var _ Presenter = &ConsolePresenter{}

func NewConsolePresenter(out io.Writer) *ConsolePresenter {
	return &ConsolePresenter{out: out}
}

func (p *ConsolePresenter) State() State {
	return State(p.state.Load())
}

func (p *ConsolePresenter) StateChanged(from, to State) {
	p.state.Store(int32(to))
	color.New(color.FgHiBlack).Fprintf(p.out, "[%s]\n", to)
}

func (p *ConsolePresenter) Notice(text string) {
	color.New(color.FgYellow).Fprintln(p.out, text)
}

func (p *ConsolePresenter) Transcript(text string) {
	color.New(color.FgGreen).Fprintf(p.out, "🎤 %s\n", text)
}

func (p *ConsolePresenter) Reply(text string) {}

func (p *ConsolePresenter) PromptConsent() {
	p.consentPrompt.Store(true)
	color.New(color.FgMagenta, color.Bold).Fprintln(p.out, "This store records voice conversations to improve service. Allow recording? [y/n]")
}

// RunConsole routes lines from in to the controller until in is exhausted or ctx ends. An empty line
// taps the microphone; text typed while idle starts listening and is heard as speech.
func RunConsole(ctx context.Context, ctrl *Controller, in io.Reader, rec *ConsoleRecognizer, pres *ConsolePresenter) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return goerr.Wrap(err, "failed to read console input")
					}
				default:
				}
				return nil
			}
			routeLine(ctrl, strings.TrimSpace(line), rec, pres)
		}
	}
}

func routeLine(ctrl *Controller, line string, rec *ConsoleRecognizer, pres *ConsolePresenter) {
	if pres.consentPrompt.Load() {
		switch strings.ToLower(line) {
		case "y", "yes":
			pres.consentPrompt.Store(false)
			ctrl.AnswerConsent(true)
		case "n", "no":
			pres.consentPrompt.Store(false)
			ctrl.AnswerConsent(false)
		default:
			fmt.Fprintln(pres.out, "Please answer y or n")
		}
		return
	}

	if line == "" {
		ctrl.Tap()
		return
	}

	switch pres.State() {
	case StateIdle, StateSpeaking:
		ctrl.Tap()
	}
	rec.Feed(line)
}

// SampleRecorder stands in for a microphone recorder on the console: each recording is the content
// of a fixed audio file.
type SampleRecorder struct {
	path string

	mu     sync.Mutex
	active bool
}

var _ Recorder = &SampleRecorder{}

func NewSampleRecorder(path string) *SampleRecorder {
	return &SampleRecorder{path: path}
}

func (r *SampleRecorder) Start(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = true
	return nil
}

func (r *SampleRecorder) Stop() ([]byte, error) {
	r.mu.Lock()
	active := r.active
	r.active = false
	r.mu.Unlock()

	if !active {
		return nil, nil
	}
	// #nosec G304 - path is provided by the operator
	audio, err := os.ReadFile(r.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read sample audio", goerr.V("path", r.path))
	}
	return audio, nil
}

func (r *SampleRecorder) Discard() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.active = false
}
