package speech

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/joewaine/best-self-ai/internal"
)

const DefaultElevenLabsBaseURL = "https://api.elevenlabs.io/v1"

// VoicePreset is a named ElevenLabs voice the frontend can pick from.
type VoicePreset struct {
	Name        string `json:"name"`
	ID          string `json:"id"`
	Description string `json:"description"`
}

// Presets mirror the curated voice list from the ElevenLabs voice library.
var voicePresets = []VoicePreset{
	{"rachel", "21m00Tcm4TlvDq8ikWAM", "Calm, warm female"},
	{"drew", "29vD33N1CtxCmqQRPOHJ", "Confident male"},
	{"clyde", "2EiwWnXFnvU5JabPnv8n", "Middle-aged male, warm"},
	{"paul", "5Q0t7uMcjvnagumLfvZi", "News anchor style"},
	{"domi", "AZnzlk1XvdvUeBnXmlld", "Young female, energetic"},
	{"dave", "CYw3kZ02Hs0563khs1Fj", "British male, conversational"},
	{"fin", "D38z5RcWu1voky8WS1ja", "Irish male, friendly"},
	{"sarah", "EXAVITQu4vr4xnSDxMaL", "Soft female"},
	{"antoni", "ErXwobaYiN019PkySvjV", "Young male, friendly"},
	{"josh", "TxGEqnHWrfWFTfGW9XjX", "Deep male"},
	{"arnold", "VR6AewLTigWG4xSOukaG", "Crisp male"},
	{"adam", "pNInz6obpgDQGcFmaJgB", "Deep male, narration"},
	{"sam", "yoZ06aMxZJJ28mfd3POQ", "Young male, dynamic"},
}

const DefaultVoice = "rachel"

type ElevenLabs struct {
	BaseURL    string
	APIKey     string
	HTTPClient *http.Client
	logger     internal.Logger
}

func NewElevenLabs(apiKey string, logger internal.Logger) *ElevenLabs {
	return &ElevenLabs{
		BaseURL:    DefaultElevenLabsBaseURL,
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}
}

// Voices lists the available presets.
func (e *ElevenLabs) Voices() []VoicePreset {
	out := make([]VoicePreset, len(voicePresets))
	copy(out, voicePresets)
	return out
}

// ResolveVoice maps a preset name to its voice ID, defaulting when the name
// is unknown or empty.
func ResolveVoice(name string) string {
	for _, p := range voicePresets {
		if p.Name == name {
			return p.ID
		}
	}
	for _, p := range voicePresets {
		if p.Name == DefaultVoice {
			return p.ID
		}
	}
	return ""
}

type synthesizeRequest struct {
	Text          string        `json:"text"`
	ModelID       string        `json:"model_id"`
	VoiceSettings voiceSettings `json:"voice_settings"`
}

type voiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize renders text to MP3 audio with the given preset name.
func (e *ElevenLabs) Synthesize(ctx context.Context, text, voice string) ([]byte, error) {
	if e.APIKey == "" {
		return nil, fmt.Errorf("missing ELEVENLABS_API_KEY")
	}
	voiceID := ResolveVoice(voice)
	payload, err := json.Marshal(synthesizeRequest{
		Text:    text,
		ModelID: "eleven_turbo_v2_5",
		VoiceSettings: voiceSettings{
			Stability:       0.5,
			SimilarityBoost: 0.75,
		},
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.BaseURL+"/text-to-speech/"+voiceID, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("xi-api-key", e.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := e.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		e.logger.Warnf("elevenlabs: synthesis returned %d", resp.StatusCode)
		return nil, fmt.Errorf("elevenlabs error %d: %s", resp.StatusCode, body)
	}
	return io.ReadAll(resp.Body)
}
