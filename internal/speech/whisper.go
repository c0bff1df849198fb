// Package speech covers both directions of the voice pipeline:
// speech-to-text through OpenAI Whisper and text-to-speech through
// ElevenLabs.
package speech

import (
	"bytes"
	"context"
	"errors"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

var ErrEmptyTranscript = errors.New("empty transcript (whisper produced no text)")

type Transcriber struct {
	client *openai.Client
}

func NewTranscriber(apiKey string) *Transcriber {
	return &Transcriber{client: openai.NewClient(apiKey)}
}

// Transcribe converts an uploaded audio blob to text with whisper-1.
func (t *Transcriber) Transcribe(ctx context.Context, audio []byte, filename string) (string, error) {
	if filename == "" {
		filename = "audio.webm"
	}
	resp, err := t.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: filename,
		Reader:   bytes.NewReader(audio),
		Language: "en",
	})
	if err != nil {
		return "", err
	}
	transcript := strings.TrimSpace(resp.Text)
	if transcript == "" {
		return "", ErrEmptyTranscript
	}
	return transcript, nil
}
