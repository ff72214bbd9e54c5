package consistency_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/browserscan/trustscore/internal/consistency"
	"github.com/browserscan/trustscore/internal/model"
)

func TestCheckTimezone(t *testing.T) {
	tests := []struct {
		name     string
		ip       string
		client   string
		want     model.Status
		evidence string
	}{
		{"exact", "Europe/Berlin", "Europe/Berlin", model.StatusPass, "matches"},
		{"same region", "Europe/Berlin", "Europe/Paris", model.StatusWarn, "similar region"},
		{"different region", "America/New_York", "Asia/Shanghai", model.StatusFail, "timezone mismatch"},
		{"missing ip", "", "Europe/Berlin", model.StatusWarn, "unable to determine"},
		{"missing client", "Europe/Berlin", "  ", model.StatusWarn, "unable to determine"},
		{"whitespace tolerated", " Asia/Tokyo ", "Asia/Tokyo", model.StatusPass, "matches"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := consistency.CheckTimezone(tt.ip, tt.client)
			assert.Equal(t, tt.want, got.Status)
			assert.Contains(t, got.Evidence, tt.evidence)
		})
	}
}

func TestCheckLanguage(t *testing.T) {
	tests := []struct {
		name      string
		country   string
		languages []string
		want      model.Status
	}{
		{"primary match", "DE", []string{"de-DE", "en-US"}, model.StatusPass},
		{"primary match lowercase country", "br", []string{"pt-BR"}, model.StatusPass},
		{"secondary match", "FR", []string{"de-DE", "fr-FR"}, model.StatusWarn},
		{"english abroad", "JP", []string{"en-US"}, model.StatusWarn},
		{"english at home", "US", []string{"en-US"}, model.StatusPass},
		{"hard mismatch", "JP", []string{"ru-RU"}, model.StatusFail},
		{"no languages", "DE", nil, model.StatusWarn},
		{"blank languages", "DE", []string{"", " "}, model.StatusWarn},
		{"unknown country, english", "ZZ", []string{"en"}, model.StatusWarn},
		{"unknown country, other", "ZZ", []string{"de"}, model.StatusFail},
		{"missing country", "", []string{"de"}, model.StatusWarn},
		{"underscore tag", "ES", []string{"es_ES"}, model.StatusPass},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := consistency.CheckLanguage(tt.country, tt.languages)
			assert.Equal(t, tt.want, got.Status, got.Evidence)
			assert.NotEmpty(t, got.Evidence)
		})
	}
}

func TestCheckLanguage_SecondaryEvidence(t *testing.T) {
	got := consistency.CheckLanguage("FR", []string{"de-DE", "fr-FR"})
	assert.Contains(t, got.Evidence, "secondary match found")
}

func TestExpectedLanguages(t *testing.T) {
	assert.Equal(t, []string{"en", "fr"}, consistency.ExpectedLanguages("ca"))
	assert.Nil(t, consistency.ExpectedLanguages("ZZ"))
}

func TestCheckOS(t *testing.T) {
	tests := []struct {
		name     string
		os       string
		renderer string
		want     model.Status
	}{
		{"apple on windows", "Windows NT 10.0", "ANGLE (Apple, ANGLE Metal Renderer: Apple M4)", model.StatusFail},
		{"apple on linux", "Linux x86_64", "Apple GPU", model.StatusFail},
		{"apple on mac", "macOS", "Apple M2 Pro", model.StatusPass},
		{"apple on iphone", "iPhone; CPU iPhone OS 17_0 like Mac OS X", "Apple GPU", model.StatusPass},
		{"mac unusual gpu", "Mac OS X 10_15_7", "Mali-G78", model.StatusWarn},
		{"mac intel", "Mac OS X 10_15_7", "Intel Iris OpenGL Engine", model.StatusPass},
		{"nvidia on android", "Android 14", "NVIDIA GeForce RTX 4090", model.StatusFail},
		{"nvidia on ios", "iOS 17", "NVIDIA GeForce GTX 1080", model.StatusFail},
		{"adreno on android", "Android 14", "Adreno (TM) 740", model.StatusPass},
		{"nvidia on windows", "Windows", "ANGLE (NVIDIA, NVIDIA GeForce RTX 3080 Direct3D11)", model.StatusPass},
		{"apple on ipados", "iPadOS 17.4", "Apple GPU", model.StatusPass},
		{"apple on kaios", "KaiOS 3.1", "Apple GPU", model.StatusFail},
		{"nvidia on kaios", "KaiOS 3.1", "NVIDIA GeForce GTX 1080", model.StatusPass},
		{"missing os", "", "Apple M1", model.StatusWarn},
		{"missing renderer", "Windows", "", model.StatusWarn},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := consistency.CheckOS(tt.os, tt.renderer)
			assert.Equal(t, tt.want, got.Status, got.Evidence)
		})
	}
}

func TestCheckOS_KaiOSIsNotIOS(t *testing.T) {
	got := consistency.CheckOS("KaiOS", "Apple GPU")

	assert.Equal(t, model.StatusFail, got.Status)
	assert.Equal(t, "Apple Silicon GPU reported on KaiOS", got.Evidence)
}

func TestCheckOS_AppleSiliconOnWindowsEvidence(t *testing.T) {
	got := consistency.CheckOS("Windows NT 10.0", "ANGLE (Apple, ANGLE Metal Renderer: Apple M4)")

	assert.Equal(t, model.StatusFail, got.Status)
	assert.Contains(t, got.Evidence, "Apple Silicon")
	assert.Contains(t, got.Evidence, "Windows")
}
