package speech

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joewaine/best-self-ai/internal"
)

const rachelID = "21m00Tcm4TlvDq8ikWAM"

func TestResolveVoice(t *testing.T) {
	assert.Equal(t, "TxGEqnHWrfWFTfGW9XjX", ResolveVoice("josh"))
	assert.Equal(t, rachelID, ResolveVoice(""))
	assert.Equal(t, rachelID, ResolveVoice("no-such-voice"))
}

func TestSynthesizeSendsVoiceAndSettings(t *testing.T) {
	var captured synthesizeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text-to-speech/"+rachelID, r.URL.Path)
		assert.Equal(t, "el-key", r.Header.Get("xi-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.Write([]byte("mp3-bytes"))
	}))
	defer srv.Close()

	e := NewElevenLabs("el-key", internal.NopLogger{})
	e.BaseURL = srv.URL

	audio, err := e.Synthesize(context.Background(), "good morning", "unknown-voice")
	require.NoError(t, err)
	assert.Equal(t, []byte("mp3-bytes"), audio)

	assert.Equal(t, "good morning", captured.Text)
	assert.Equal(t, "eleven_turbo_v2_5", captured.ModelID)
	assert.Equal(t, 0.5, captured.VoiceSettings.Stability)
	assert.Equal(t, 0.75, captured.VoiceSettings.SimilarityBoost)
}

func TestSynthesizeFailureStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	e := NewElevenLabs("el-key", internal.NopLogger{})
	e.BaseURL = srv.URL

	_, err := e.Synthesize(context.Background(), "hi", "rachel")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestSynthesizeRequiresAPIKey(t *testing.T) {
	e := NewElevenLabs("", internal.NopLogger{})
	_, err := e.Synthesize(context.Background(), "hi", "rachel")
	require.Error(t, err)
}

func TestVoicesReturnsCopy(t *testing.T) {
	e := NewElevenLabs("el-key", internal.NopLogger{})
	voices := e.Voices()
	require.NotEmpty(t, voices)
	voices[0].Name = "mutated"
	assert.Equal(t, DefaultVoice, e.Voices()[0].Name)
}
