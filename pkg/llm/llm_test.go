package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, reply string, capture *[]map[string]interface{}) *OpenAIClient {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req struct {
			Model    string                   `json:"model"`
			Messages []map[string]interface{} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, DefaultModel, req.Model)
		if capture != nil {
			*capture = req.Messages
		}

		json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []map[string]interface{}{
				{"message": map[string]interface{}{"role": "assistant", "content": reply}},
			},
		})
	}))
	t.Cleanup(server.Close)

	return NewOpenAIClient(&Config{
		APIKey:  "test-key",
		BaseURL: server.URL + "/v1",
	})
}

func TestOpenAIClientChat(t *testing.T) {
	client := newChatServer(t, "  hello  ", nil)

	reply, err := client.Chat(context.Background(), []Message{
		{Role: RoleUser, Content: "hi"},
	})
	require.NoError(t, err)
	assert.Equal(t, "hello", reply)
}

func TestOpenAIClientChatFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error": {"message": "overloaded"}}`, http.StatusServiceUnavailable)
	}))
	t.Cleanup(server.Close)

	client := NewOpenAIClient(&Config{APIKey: "k", BaseURL: server.URL + "/v1"})
	_, err := client.Chat(context.Background(), []Message{{Role: RoleUser, Content: "hi"}})
	assert.Error(t, err)
}

func TestSynthesizePromptGrounding(t *testing.T) {
	var messages []map[string]interface{}
	reply := `{"answer": "The committee approved the motion.", "cited_sources": ["cab_minutes_2021.pdf"]}`
	client := newChatServer(t, reply, &messages)

	answer, err := Synthesize(context.Background(), client,
		"What did the committee decide?", "CAB minutes: the motion was approved.",
		[]string{"cab_minutes_2021.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "The committee approved the motion.", answer.Answer)
	assert.Equal(t, []string{"cab_minutes_2021.pdf"}, answer.CitedSources)

	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0]["role"])
	assert.Equal(t, answerSystemPrompt, messages[0]["content"])

	prompt := messages[1]["content"].(string)
	assert.Contains(t, prompt, "Use ONLY the context below")
	assert.Contains(t, prompt, "CAB minutes: the motion was approved.")
	assert.Contains(t, prompt, "Question: What did the committee decide?")
	assert.Contains(t, prompt, "source documents: cab_minutes_2021.pdf.")
	assert.Contains(t, prompt, `"cited_sources"`)
}

func TestSynthesizeEmptyContext(t *testing.T) {
	// No server: an empty context must not reach the model at all.
	answer, err := Synthesize(context.Background(), nil, "anything?", "   ", nil)
	require.NoError(t, err)
	assert.Equal(t, FallbackAnswer, answer.Answer)
	assert.Empty(t, answer.CitedSources)
}

func TestSynthesizePlainTextReply(t *testing.T) {
	// A model that ignores the JSON instruction still yields an answer.
	client := newChatServer(t, "Approved in 2022.", nil)

	answer, err := Synthesize(context.Background(), client,
		"When was it approved?", "resolution_2022.pdf: approved in 2022.",
		[]string{"resolution_2022.pdf"})
	require.NoError(t, err)
	assert.Equal(t, "Approved in 2022.", answer.Answer)
	assert.Empty(t, answer.CitedSources)
}

func TestParseStructuredAnswerRepairsJSON(t *testing.T) {
	// Single quotes and a trailing comma, the usual model mistakes.
	got := parseStructuredAnswer(`{'answer': 'Quorum was met.', 'cited_sources': ['minutes.pdf',]}`)
	assert.Equal(t, "Quorum was met.", got.Answer)
	assert.Equal(t, []string{"minutes.pdf"}, got.CitedSources)
}

func TestParseStructuredAnswerPlainTextFallback(t *testing.T) {
	got := parseStructuredAnswer("The senate did not vote on this.")
	assert.Equal(t, "The senate did not vote on this.", got.Answer)
	assert.Empty(t, got.CitedSources)
}

func TestConvertMessages(t *testing.T) {
	converted := convertMessages([]Message{
		{Role: RoleSystem, Content: "s"},
		{Role: RoleUser, Content: "u"},
		{Role: RoleAssistant, Content: "a"},
	})
	require.Len(t, converted, 3)
	assert.Equal(t, "system", converted[0].Role)
	assert.Equal(t, "user", converted[1].Role)
	assert.Equal(t, "assistant", converted[2].Role)

	var roles []string
	for _, m := range converted {
		roles = append(roles, m.Role)
	}
	assert.Equal(t, "system,user,assistant", strings.Join(roles, ","))
}
