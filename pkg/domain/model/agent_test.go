package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/storevoice/pkg/domain/model"
	"github.com/secmon-lab/storevoice/pkg/domain/types"
)

func TestAgentQuotaExceeded(t *testing.T) {
	tests := []struct {
		name     string
		limit    int
		used     int
		expected bool
	}{
		{name: "below limit", limit: 5, used: 4, expected: false},
		{name: "at limit", limit: 5, used: 5, expected: true},
		{name: "above limit", limit: 5, used: 7, expected: true},
		{name: "zero limit", limit: 0, used: 0, expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := &model.Agent{UsageLimit: tt.limit, UsedCount: tt.used}
			gt.Value(t, a.QuotaExceeded()).Equal(tt.expected)
		})
	}
}

func TestAgentSiteContext(t *testing.T) {
	t.Run("name and store", func(t *testing.T) {
		a := &model.Agent{Name: "Nora", StoreName: "Gadget Hub", Policy: "No refunds after 30 days."}
		ctx := a.SiteContext()
		gt.Value(t, ctx.StoreName).Equal("Nora for Gadget Hub")
		gt.Value(t, ctx.Description).Equal("You work at Gadget Hub. Help customers and answer their questions.")
		gt.Value(t, ctx.Policy).Equal("No refunds after 30 days.")
	})

	t.Run("name only", func(t *testing.T) {
		a := &model.Agent{Name: "Nora", StoreDesc: "Shoes."}
		ctx := a.SiteContext()
		gt.Value(t, ctx.StoreName).Equal("Nora for Nora")
		gt.Value(t, ctx.Description).Equal("Shoes.")
	})

	t.Run("nothing set", func(t *testing.T) {
		a := &model.Agent{}
		gt.Value(t, a.SiteContext().StoreName).Equal("this place")
	})
}

func TestAgentVoiceSettings(t *testing.T) {
	a := &model.Agent{}
	vs := a.EffectiveVoiceSettings()
	gt.Value(t, vs.Tone).Equal(types.VoiceToneFriendly)
	gt.Value(t, vs.Speed).Equal(1.0)
	gt.Value(t, vs.Temperature).Equal(0.7)
	gt.Value(t, vs.PrimaryLanguage).Equal(types.LanguageAuto)

	custom := model.VoiceSettings{Tone: types.VoiceToneWarm, PrimaryLanguage: types.LanguageArabic}
	a.VoiceSettings = &custom
	gt.Value(t, a.EffectiveVoiceSettings().Tone).Equal(types.VoiceToneWarm)
}

func TestTrimRetention(t *testing.T) {
	s := make([]int, 12)
	for i := range s {
		s[i] = i
	}
	gt.Array(t, model.TrimRetention(s, 12, 5)).Length(12)

	trimmed := model.TrimRetention(s, 10, 5)
	gt.Array(t, trimmed).Length(5).Required()
	gt.Value(t, trimmed[0]).Equal(7)
	gt.Value(t, trimmed[4]).Equal(11)
}

func TestVoiceSession(t *testing.T) {
	gt.Value(t, model.VoiceBlobPath("store-1", "user-2", "sess-3")).
		Equal("stores/store-1/users/user-2/voice/sess-3.webm")

	s := &model.VoiceSession{UserID: "U-ABC", Transcript: "Where is my Order", AIResponse: "It ships today"}
	gt.Bool(t, s.Matches("order")).True()
	gt.Bool(t, s.Matches("SHIPS")).True()
	gt.Bool(t, s.Matches("u-abc")).True()
	gt.Bool(t, s.Matches("refund")).False()
	gt.Bool(t, s.Matches("  ")).True()
}
