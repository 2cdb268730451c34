package types

// VoiceTone is the speaking tone configured for an agent
type VoiceTone string

const (
	VoiceToneNeutral      VoiceTone = "neutral"
	VoiceToneFriendly     VoiceTone = "friendly"
	VoiceToneProfessional VoiceTone = "professional"
	VoiceToneWarm         VoiceTone = "warm"
)

// EmotionStyle is the emotional register of synthesized replies
type EmotionStyle string

const (
	EmotionStyleCalm         EmotionStyle = "calm"
	EmotionStyleEnthusiastic EmotionStyle = "enthusiastic"
	EmotionStyleSupportive   EmotionStyle = "supportive"
	EmotionStyleFormal       EmotionStyle = "formal"
)

// VoiceTexture describes the synthesized voice quality
type VoiceTexture string

const (
	VoiceTextureSmooth         VoiceTexture = "smooth"
	VoiceTextureClear          VoiceTexture = "clear"
	VoiceTextureConversational VoiceTexture = "conversational"
)

// ResponseLength is the preferred reply verbosity
type ResponseLength string

const (
	ResponseLengthBrief    ResponseLength = "brief"
	ResponseLengthNormal   ResponseLength = "normal"
	ResponseLengthDetailed ResponseLength = "detailed"
)

// Language is the primary recognition/synthesis language of a store
type Language string

const (
	LanguageArabic  Language = "ar"
	LanguageEnglish Language = "en"
	LanguageAuto    Language = "auto"
)

// IsValid checks if the language is supported
func (l Language) IsValid() bool {
	switch l {
	case LanguageArabic, LanguageEnglish, LanguageAuto:
		return true
	default:
		return false
	}
}

// BCP47 returns the recognition locale for the language. Auto falls back to English.
func (l Language) BCP47() string {
	if l == LanguageArabic {
		return "ar-SA"
	}
	return "en-US"
}
