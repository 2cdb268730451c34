package widget

import (
	"errors"
	"strings"
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

const (
	DefaultSilenceTimeout     = 1800 * time.Millisecond
	DefaultStartupDelay       = 800 * time.Millisecond
	DefaultInactivityInterval = 60 * time.Second
	DefaultInactivityTimeout  = 10 * time.Minute
	DefaultMinTranscript      = 2

	// RetryReply is spoken when a turn fails for any reason other than quota
	RetryReply = "Sorry, please try again."
	// UnsupportedNotice is shown when speech recognition is not available
	UnsupportedNotice = "Speech recognition not supported."
)

// Config tunes the state machine. Zero durations fall back to the defaults.
type Config struct {
	HandsFree          bool
	SilenceTimeout     time.Duration
	StartupDelay       time.Duration
	InactivityInterval time.Duration
	InactivityTimeout  time.Duration
	MinTranscript      int

	// RecordingEnabled is the agent's voice recording switch
	RecordingEnabled bool
	// Consent is the persisted answer to the recording prompt
	Consent types.ConsentStatus
}

func (c Config) withDefaults() Config {
	if c.SilenceTimeout <= 0 {
		c.SilenceTimeout = DefaultSilenceTimeout
	}
	if c.StartupDelay <= 0 {
		c.StartupDelay = DefaultStartupDelay
	}
	if c.InactivityInterval <= 0 {
		c.InactivityInterval = DefaultInactivityInterval
	}
	if c.InactivityTimeout <= 0 {
		c.InactivityTimeout = DefaultInactivityTimeout
	}
	if c.MinTranscript <= 0 {
		c.MinTranscript = DefaultMinTranscript
	}
	return c
}

// Machine is the speak/listen state machine. It performs no I/O: Handle only returns the commands the
// caller must execute. It is not safe for concurrent use.
type Machine struct {
	cfg Config
	now func() time.Time

	state   State
	consent types.ConsentStatus

	final   string
	interim string

	silenceGen    uint64
	autoListenGen uint64
	utterance     uint64
	lastSpeechAt  time.Time

	awaitingConsent bool
	recording       bool
	turnText        string
	replyText       string
}

// NewMachine creates a machine in StateIdle. now supplies the time for inactivity tracking.
func NewMachine(cfg Config, now func() time.Time) *Machine {
	cfg = cfg.withDefaults()
	return &Machine{
		cfg:     cfg,
		now:     now,
		state:   StateIdle,
		consent: cfg.Consent,
	}
}

func (m *Machine) State() State {
	return m.state
}

// Start returns the commands arming the startup timers
func (m *Machine) Start() []Command {
	cmds := []Command{CmdStartTimer{Kind: TimerInactivity, After: m.cfg.InactivityInterval}}
	if m.cfg.HandsFree {
		m.autoListenGen++
		cmds = append(cmds, CmdStartTimer{Kind: TimerAutoListen, Gen: m.autoListenGen, After: m.cfg.StartupDelay})
	}
	return cmds
}

// Handle applies ev and returns the resulting commands
func (m *Machine) Handle(ev Event) []Command {
	switch e := ev.(type) {
	case EventRecognizerUnsupported:
		cmds := m.dropRecording()
		return append(cmds, m.toIdle(CmdNotice{Text: UnsupportedNotice})...)
	case EventConsentAnswer:
		return m.onConsent(e)
	case EventTimer:
		if e.Kind == TimerInactivity {
			return m.onInactivityCheck()
		}
	}

	switch m.state {
	case StateIdle:
		return m.handleIdle(ev)
	case StateListening:
		return m.handleListening(ev)
	case StateProcessing:
		return m.handleProcessing(ev)
	case StateSpeaking:
		return m.handleSpeaking(ev)
	}
	return nil
}

func (m *Machine) handleIdle(ev Event) []Command {
	switch e := ev.(type) {
	case EventTap:
		if m.awaitingConsent {
			return nil
		}
		return m.enterListening()
	case EventTimer:
		if e.Kind == TimerAutoListen && e.Gen == m.autoListenGen && m.cfg.HandsFree && !m.awaitingConsent {
			return m.enterListening()
		}
	}
	return nil
}

func (m *Machine) handleListening(ev Event) []Command {
	switch e := ev.(type) {
	case EventFragment:
		m.lastSpeechAt = m.now()
		if e.Final {
			m.final = strings.TrimSpace(m.final + " " + e.Text)
			m.interim = ""
		} else {
			m.interim = e.Text
		}
		m.silenceGen++
		return []Command{CmdStartTimer{Kind: TimerSilence, Gen: m.silenceGen, After: m.cfg.SilenceTimeout}}

	case EventTimer:
		if e.Kind == TimerSilence && e.Gen == m.silenceGen && m.transcriptReady() {
			return m.submit()
		}

	case EventTap:
		if m.transcriptReady() {
			return m.submit()
		}
		return m.abandon()

	case EventRecognitionEnd:
		if m.transcriptReady() {
			return m.submit()
		}
		return m.abandon()

	case EventRecognitionError:
		if e.Code == RecognitionErrorNoSpeech {
			return nil
		}
		cmds := []Command{CmdStopRecognition{}}
		cmds = append(cmds, m.dropRecording()...)
		return append(cmds, m.toIdle(CmdNotice{Text: "Speech recognition error: " + e.Code})...)
	}
	return nil
}

func (m *Machine) handleProcessing(ev Event) []Command {
	e, ok := ev.(EventReply)
	if !ok {
		return nil
	}

	var cmds []Command
	reply := e.Reply
	if e.Err != nil {
		reply = RetryReply
		var quota *QuotaError
		if errors.As(e.Err, &quota) && quota.Message != "" {
			reply = quota.Message
		}
		cmds = append(cmds, m.dropRecording()...)
	} else if e.Memory != nil {
		cmds = append(cmds, CmdPersistMemory{Memory: e.Memory})
	}

	m.replyText = reply
	m.utterance++
	cmds = append(cmds, m.setState(StateSpeaking)...)
	return append(cmds, CmdSpeak{UtteranceID: m.utterance, Text: reply})
}

func (m *Machine) handleSpeaking(ev Event) []Command {
	switch e := ev.(type) {
	case EventSpeechDone:
		if e.UtteranceID != m.utterance {
			return nil
		}
		var cmds []Command
		if m.recording {
			m.recording = false
			cmds = append(cmds, CmdFinishRecording{Transcript: m.turnText, Reply: m.replyText})
		}
		if m.cfg.HandsFree {
			return append(cmds, m.enterListening()...)
		}
		return append(cmds, m.setState(StateIdle)...)

	case EventTap:
		// Barge-in
		cmds := m.dropRecording()
		return append(cmds, m.enterListening()...)
	}
	return nil
}

func (m *Machine) onConsent(e EventConsentAnswer) []Command {
	if !m.awaitingConsent {
		return nil
	}
	m.awaitingConsent = false
	m.consent = types.ConsentFromAnswer(e.Accepted)

	cmds := []Command{CmdPersistConsent{Status: m.consent}}
	if e.Accepted && m.state == StateIdle {
		cmds = append(cmds, m.enterListening()...)
	}
	return cmds
}

func (m *Machine) onInactivityCheck() []Command {
	cmds := []Command{CmdStartTimer{Kind: TimerInactivity, After: m.cfg.InactivityInterval}}
	if m.state == StateListening && m.now().Sub(m.lastSpeechAt) > m.cfg.InactivityTimeout {
		cmds = append(cmds, CmdStopRecognition{})
		cmds = append(cmds, m.dropRecording()...)
		cmds = append(cmds, m.toIdle()...)
	}
	return cmds
}

// enterListening cancels speech before starting capture. With recording enabled and no accepted
// consent on record, the consent prompt is shown instead, including after a decline.
func (m *Machine) enterListening() []Command {
	if m.cfg.RecordingEnabled && !m.consent.Accepted() {
		m.awaitingConsent = true
		if m.state != StateIdle {
			return append(m.setState(StateIdle), CmdCancelSpeech{}, CmdPromptConsent{})
		}
		return []Command{CmdPromptConsent{}}
	}

	m.final = ""
	m.interim = ""
	m.turnText = ""
	m.replyText = ""
	m.silenceGen++
	m.lastSpeechAt = m.now()

	cmds := []Command{CmdCancelSpeech{}}
	cmds = append(cmds, m.setState(StateListening)...)
	cmds = append(cmds, CmdStartRecognition{})
	if m.cfg.RecordingEnabled && m.consent.Accepted() {
		m.recording = true
		cmds = append(cmds, CmdStartRecording{})
	}
	return cmds
}

func (m *Machine) submit() []Command {
	m.turnText = m.transcript()
	m.silenceGen++

	cmds := []Command{CmdStopRecognition{}}
	cmds = append(cmds, m.setState(StateProcessing)...)
	return append(cmds, CmdSubmitTurn{Text: m.turnText})
}

func (m *Machine) abandon() []Command {
	cmds := []Command{CmdStopRecognition{}}
	cmds = append(cmds, m.dropRecording()...)
	return append(cmds, m.toIdle()...)
}

func (m *Machine) dropRecording() []Command {
	if !m.recording {
		return nil
	}
	m.recording = false
	return []Command{CmdDiscardRecording{}}
}

func (m *Machine) toIdle(extra ...Command) []Command {
	m.silenceGen++
	m.final = ""
	m.interim = ""
	return append(m.setState(StateIdle), extra...)
}

func (m *Machine) setState(to State) []Command {
	if m.state == to {
		return nil
	}
	from := m.state
	m.state = to
	return []Command{CmdStateChanged{From: from, To: to}}
}

func (m *Machine) transcript() string {
	return strings.TrimSpace(m.final + " " + m.interim)
}

// transcriptReady reports whether finalized text alone meets the minimum length
func (m *Machine) transcriptReady() bool {
	return len([]rune(m.final)) >= m.cfg.MinTranscript
}
