package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

// DefaultPolicy is applied to agents created without an explicit policy
const DefaultPolicy = "Be helpful, friendly, and professional."

// DefaultUsageLimit is the turn quota of a newly created agent
const DefaultUsageLimit = 1000

// VoiceSettings tunes recognition and synthesis for an agent
type VoiceSettings struct {
	Tone            types.VoiceTone      `json:"tone" firestore:"tone" toml:"tone"`
	Speed           float64              `json:"speed" firestore:"speed" toml:"speed"`
	Temperature     float64              `json:"temperature" firestore:"temperature" toml:"temperature"`
	EmotionStyle    types.EmotionStyle   `json:"emotionStyle" firestore:"emotionStyle" toml:"emotion_style"`
	VoiceTexture    types.VoiceTexture   `json:"voiceTexture" firestore:"voiceTexture" toml:"voice_texture"`
	ResponseLength  types.ResponseLength `json:"responseLength" firestore:"responseLength" toml:"response_length"`
	PrimaryLanguage types.Language       `json:"primaryLanguage" firestore:"primaryLanguage" toml:"primary_language"`
}

// DefaultVoiceSettings returns the settings used when an agent has none
func DefaultVoiceSettings() VoiceSettings {
	return VoiceSettings{
		Tone:            types.VoiceToneFriendly,
		Speed:           1,
		Temperature:     0.7,
		EmotionStyle:    types.EmotionStyleSupportive,
		VoiceTexture:    types.VoiceTextureClear,
		ResponseLength:  types.ResponseLengthNormal,
		PrimaryLanguage: types.LanguageAuto,
	}
}

// WooCommerceConfig holds REST API credentials of a store's catalog
type WooCommerceConfig struct {
	SiteURL        string `json:"siteUrl" firestore:"siteUrl" toml:"site_url"`
	ConsumerKey    string `json:"consumerKey" firestore:"consumerKey" toml:"consumer_key"`
	ConsumerSecret string `json:"consumerSecret" firestore:"consumerSecret" toml:"consumer_secret" masq:"secret"`
	Enabled        bool   `json:"enabled" firestore:"enabled" toml:"enabled"`
}

// Usable reports whether catalog lookups can be attempted
func (w *WooCommerceConfig) Usable() bool {
	return w != nil && w.Enabled && w.SiteURL != "" && w.ConsumerKey != "" && w.ConsumerSecret != ""
}

// SMTPConfig holds outgoing mail settings of a store
type SMTPConfig struct {
	Host      string `json:"host" firestore:"host" toml:"host"`
	Port      int    `json:"port" firestore:"port" toml:"port"`
	User      string `json:"user" firestore:"user" toml:"user"`
	Password  string `json:"password" firestore:"password" toml:"password" masq:"secret"`
	TLS       bool   `json:"tls" firestore:"tls" toml:"tls"`
	FromEmail string `json:"fromEmail" firestore:"fromEmail" toml:"from_email"`
	FromName  string `json:"fromName" firestore:"fromName" toml:"from_name"`
}

// Usable reports whether mail can be sent with this configuration
func (s *SMTPConfig) Usable() bool {
	return s != nil && s.Host != "" && s.FromEmail != ""
}

// Agent is the per-store configuration record owned by the dashboard
type Agent struct {
	ID                    types.AgentID      `json:"id" firestore:"id" toml:"id"`
	Name                  string             `json:"name" firestore:"name" toml:"name"`
	StoreName             string             `json:"storeName" firestore:"storeName" toml:"store_name"`
	StoreURL              string             `json:"storeUrl" firestore:"storeUrl" toml:"store_url"`
	StoreDesc             string             `json:"storeDesc" firestore:"storeDesc" toml:"store_desc"`
	CustomInstructions    string             `json:"customInstructions" firestore:"customInstructions" toml:"custom_instructions"`
	Policy                string             `json:"policy" firestore:"policy" toml:"policy"`
	UsageLimit            int                `json:"usageLimit" firestore:"usageLimit" toml:"usage_limit"`
	UsedCount             int                `json:"usedCount" firestore:"usedCount" toml:"used_count"`
	CreatedAt             time.Time          `json:"createdAt" firestore:"createdAt" toml:"-"`
	LastActiveAt          *time.Time         `json:"lastActiveAt,omitempty" firestore:"lastActiveAt,omitempty" toml:"-"`
	VoiceSettings         *VoiceSettings     `json:"voiceSettings,omitempty" firestore:"voiceSettings,omitempty" toml:"voice_settings"`
	WooCommerce           *WooCommerceConfig `json:"woocommerce,omitempty" firestore:"woocommerce,omitempty" toml:"woocommerce"`
	SMTP                  *SMTPConfig        `json:"smtp,omitempty" firestore:"smtp,omitempty" toml:"smtp"`
	VoiceRecordingEnabled bool               `json:"voiceRecordingEnabled,omitempty" firestore:"voiceRecordingEnabled" toml:"voice_recording_enabled"`
	VoiceUploadToken      string             `json:"voiceUploadToken,omitempty" firestore:"voiceUploadToken,omitempty" toml:"voice_upload_token" masq:"secret"`
}

// QuotaExceeded reports whether the agent has used up its turn quota
func (a *Agent) QuotaExceeded() bool {
	return a.UsedCount >= a.UsageLimit
}

// EffectiveVoiceSettings returns the agent's voice settings or the defaults
func (a *Agent) EffectiveVoiceSettings() VoiceSettings {
	if a.VoiceSettings == nil {
		return DefaultVoiceSettings()
	}
	return *a.VoiceSettings
}

// DisplayName is the store name shown by the widget
func (a *Agent) DisplayName() string {
	if a.StoreName != "" {
		return a.StoreName
	}
	return a.Name
}

// SiteContext derives the prompt context for the agent's store
func (a *Agent) SiteContext() *AgentContext {
	name := strings.TrimSpace(a.Name)
	place := a.StoreName
	if place == "" {
		place = name
	}
	if place == "" {
		place = "this place"
	}

	storeName := place
	if name != "" {
		storeName = fmt.Sprintf("%s for %s", name, place)
	}

	desc := a.StoreDesc
	if desc == "" {
		desc = fmt.Sprintf("You work at %s. Help customers and answer their questions.", place)
	}

	return &AgentContext{
		StoreName:          storeName,
		Description:        desc,
		CustomInstructions: a.CustomInstructions,
		Policy:             a.Policy,
	}
}

// AgentContext is the store identity injected into the system instruction
type AgentContext struct {
	StoreName          string `json:"siteName"`
	Description        string `json:"siteDesc"`
	CustomInstructions string `json:"customInstructions"`
	Policy             string `json:"policy"`
}

// Clone returns a deep copy of the agent
func (a *Agent) Clone() *Agent {
	c := *a
	if a.LastActiveAt != nil {
		t := *a.LastActiveAt
		c.LastActiveAt = &t
	}
	if a.VoiceSettings != nil {
		vs := *a.VoiceSettings
		c.VoiceSettings = &vs
	}
	if a.WooCommerce != nil {
		wc := *a.WooCommerce
		c.WooCommerce = &wc
	}
	if a.SMTP != nil {
		s := *a.SMTP
		c.SMTP = &s
	}
	return &c
}
