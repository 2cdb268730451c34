package mail

var (
	StripTags    = stripTags
	BuildMessage = buildMessage
)
