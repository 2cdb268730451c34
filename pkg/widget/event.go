package widget

import (
	"github.com/secmon-lab/storevoice/pkg/domain/model"
)

// Event is an input to Machine.Handle
type Event interface {
	isEvent()
}

// TimerKind identifies which timer fired
type TimerKind int

const (
	TimerSilence TimerKind = iota
	TimerAutoListen
	TimerInactivity
)

// RecognitionErrorNoSpeech is the recognizer error code for a session without speech
const RecognitionErrorNoSpeech = "no-speech"

type (
	// EventTap is the microphone button
	EventTap struct{}

	// EventTimer is a timer set by CmdStartTimer firing. Gen tags which arming it belongs to.
	EventTimer struct {
		Kind TimerKind
		Gen  uint64
	}

	// EventFragment is a partial or final recognition result
	EventFragment struct {
		Text  string
		Final bool
	}

	// EventRecognitionEnd is the recognizer stopping on its own
	EventRecognitionEnd struct{}

	// EventRecognitionError is a recognizer failure identified by Code
	EventRecognitionError struct {
		Code string
	}

	// EventRecognizerUnsupported is raised when speech recognition cannot start at all
	EventRecognizerUnsupported struct{}

	// EventReply is the result of a submitted turn
	EventReply struct {
		Reply  string
		Memory *model.Memory
		Err    error
	}

	// EventSpeechDone is playback of an utterance completing, successfully or not
	EventSpeechDone struct {
		UtteranceID uint64
		Err         error
	}

	// EventConsentAnswer is the user's answer to the recording consent prompt
	EventConsentAnswer struct {
		Accepted bool
	}
)

func (EventTap) isEvent()                   {}
func (EventTimer) isEvent()                 {}
func (EventFragment) isEvent()              {}
func (EventRecognitionEnd) isEvent()        {}
func (EventRecognitionError) isEvent()      {}
func (EventRecognizerUnsupported) isEvent() {}
func (EventReply) isEvent()                 {}
func (EventSpeechDone) isEvent()            {}
func (EventConsentAnswer) isEvent()         {}
