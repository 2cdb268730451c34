package widget

import (
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

// Command is an effect requested by Machine.Handle. Commands are executed in order.
type Command interface {
	isCommand()
}

type (
	CmdStateChanged struct {
		From State
		To   State
	}

	CmdCancelSpeech     struct{}
	CmdStartRecognition struct{}
	CmdStopRecognition  struct{}
	CmdStartRecording   struct{}
	CmdDiscardRecording struct{}
	CmdPromptConsent    struct{}

	CmdStartTimer struct {
		Kind  TimerKind
		Gen   uint64
		After time.Duration
	}

	CmdSubmitTurn struct {
		Text string
	}

	CmdSpeak struct {
		UtteranceID uint64
		Text        string
	}

	CmdNotice struct {
		Text string
	}

	CmdPersistConsent struct {
		Status types.ConsentStatus
	}

	CmdPersistMemory struct {
		Memory *model.Memory
	}

	// CmdFinishRecording stops the recorder and uploads the audio with the turn text
	CmdFinishRecording struct {
		Transcript string
		Reply      string
	}
)

func (CmdStateChanged) isCommand()     {}
func (CmdCancelSpeech) isCommand()     {}
func (CmdStartRecognition) isCommand() {}
func (CmdStopRecognition) isCommand()  {}
func (CmdStartRecording) isCommand()   {}
func (CmdDiscardRecording) isCommand() {}
func (CmdPromptConsent) isCommand()    {}
func (CmdStartTimer) isCommand()       {}
func (CmdSubmitTurn) isCommand()       {}
func (CmdSpeak) isCommand()            {}
func (CmdNotice) isCommand()           {}
func (CmdPersistConsent) isCommand()   {}
func (CmdPersistMemory) isCommand()    {}
func (CmdFinishRecording) isCommand()  {}
