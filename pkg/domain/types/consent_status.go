package types

// ConsentStatus is the recorded answer to the voice recording consent prompt.
// The zero value means the user has never been asked. Only an accepted status permits
// recording; a declined one is asked again.
type ConsentStatus string

const (
	ConsentStatusUnknown  ConsentStatus = ""
	ConsentStatusAccepted ConsentStatus = "accepted"
	ConsentStatusDeclined ConsentStatus = "declined"
)

// Accepted reports whether recording is permitted
func (s ConsentStatus) Accepted() bool {
	return s == ConsentStatusAccepted
}

// ConsentFromAnswer converts a prompt answer into a status
func ConsentFromAnswer(accepted bool) ConsentStatus {
	if accepted {
		return ConsentStatusAccepted
	}
	return ConsentStatusDeclined
}
