package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joewaine/best-self-ai/internal"
)

func newTestAIClient(srv *httptest.Server) *Client {
	c := NewClient("test-key", "claude-sonnet-4-5", internal.NopLogger{})
	c.BaseURL = srv.URL
	return c
}

func TestCoachSendsHistoryAndContext(t *testing.T) {
	var captured messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, "2023-06-01", r.Header.Get("anthropic-version"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"  Take it easy today.  "}]}`)
	}))
	defer srv.Close()

	reply, err := newTestAIClient(srv).Coach(context.Background(), CoachInput{
		Transcript:  "how should I train today?",
		OuraContext: map[string]int{"readiness": 82},
		Username:    "Joe",
		History: []internal.Message{
			{Role: internal.RoleUser, Content: "hello"},
			{Role: internal.RoleAssistant, Content: "hi Joe"},
			{Role: internal.RoleSystem, Content: "internal note"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "Take it easy today.", reply, "reply is whitespace-trimmed")

	assert.Equal(t, "claude-sonnet-4-5", captured.Model)
	assert.Equal(t, coachMaxTokens, captured.MaxTokens)
	assert.Contains(t, captured.System, "Joe's voice coach")
	assert.Contains(t, captured.System, `"readiness": 82`)

	// History replays user and assistant turns only, transcript goes last.
	require.Len(t, captured.Messages, 3)
	assert.Equal(t, "user", captured.Messages[0].Role)
	assert.Equal(t, "assistant", captured.Messages[1].Role)
	assert.Equal(t, "how should I train today?", captured.Messages[2].Content)
}

func TestCoachWithoutContextOrUsername(t *testing.T) {
	var captured messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"ok"}]}`)
	}))
	defer srv.Close()

	_, err := newTestAIClient(srv).Coach(context.Background(), CoachInput{Transcript: "hi"})
	require.NoError(t, err)
	assert.Contains(t, captured.System, "friend's voice coach")
	assert.Contains(t, captured.System, "{}")
}

func TestCoachPropagatesAPIFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		fmt.Fprint(w, `{"error":{"type":"overloaded_error"}}`)
	}))
	defer srv.Close()

	_, err := newTestAIClient(srv).Coach(context.Background(), CoachInput{Transcript: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "claude error 500")
}

func TestCoachRequiresAPIKey(t *testing.T) {
	c := NewClient("", "claude-sonnet-4-5", internal.NopLogger{})
	_, err := c.Coach(context.Background(), CoachInput{Transcript: "hi"})
	require.Error(t, err)
}

func TestGenerateTitle(t *testing.T) {
	var captured messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		fmt.Fprint(w, `{"content":[{"type":"text","text":"Morning Training Plan"}]}`)
	}))
	defer srv.Close()

	title, err := newTestAIClient(srv).GenerateTitle(context.Background(), "morning briefing", "here it is")
	require.NoError(t, err)
	assert.Equal(t, "Morning Training Plan", title)
	assert.Equal(t, titleMaxTokens, captured.MaxTokens)
}

func TestGenerateTitleFallsBackOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	title, err := newTestAIClient(srv).GenerateTitle(context.Background(), "a", "b")
	require.NoError(t, err, "title generation never fails the pipeline")
	assert.Equal(t, "New conversation", title)
}

func TestGenerateTitleTruncatesLongOutput(t *testing.T) {
	long := strings.Repeat("x", 80)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"content":[{"type":"text","text":"%s"}]}`, long)
	}))
	defer srv.Close()

	title, err := newTestAIClient(srv).GenerateTitle(context.Background(), "a", "b")
	require.NoError(t, err)
	assert.Len(t, title, 50)
	assert.True(t, strings.HasSuffix(title, "..."))
}
