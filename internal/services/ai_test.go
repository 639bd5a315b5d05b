package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yukikurage/taskhub-api/internal/models"
)

func newFakeCompletionServer(t *testing.T, content string) *httptest.Server {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)

		var req openai.ChatCompletionRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Len(t, req.Messages, 1)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{
			Choices: []openai.ChatCompletionChoice{
				{Message: openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content}},
			},
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func newTestAIService(server *httptest.Server) *AIService {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = server.URL + "/v1"
	return NewAIServiceWithConfig(cfg)
}

func TestAIService_DraftTasks(t *testing.T) {
	content := "```json\n" + `[
  {"title": "Order steel beams", "description": "for level 2", "due_date": "2025-10-28T23:59:59Z", "priority": "high", "department": "civil"},
  {"title": "  ", "description": "dropped"},
  {"title": "Call inspector", "description": "", "due_date": "next week", "priority": "whenever", "department": "unknown"}
]` + "\n```"
	svc := newTestAIService(newFakeCompletionServer(t, content))

	drafts, err := svc.DraftTasks(context.Background(), "We need steel beams by the 28th and someone should call the inspector.")
	require.NoError(t, err)
	require.Len(t, drafts, 2)

	assert.Equal(t, "Order steel beams", drafts[0].Title)
	assert.Equal(t, models.TaskPriorityHigh, drafts[0].Priority)
	require.NotNil(t, drafts[0].Department)
	assert.Equal(t, models.DepartmentCivil, *drafts[0].Department)
	require.NotNil(t, drafts[0].DueDate)
	assert.Equal(t, 2025, drafts[0].DueDate.Year())

	assert.Equal(t, models.TaskPriorityMedium, drafts[1].Priority)
	assert.Nil(t, drafts[1].Department)
	assert.Nil(t, drafts[1].DueDate)
}

func TestAIService_DraftTasksErrors(t *testing.T) {
	_, err := NewAIService("").DraftTasks(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrAIServiceNotConfigured)

	svc := newTestAIService(newFakeCompletionServer(t, "not json"))
	_, err = svc.DraftTasks(context.Background(), "anything")
	assert.ErrorIs(t, err, ErrAIResponse)

	_, err = svc.DraftTasks(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrDraftTextRequired)
}

func TestStripCodeFence(t *testing.T) {
	assert.Equal(t, "[]", stripCodeFence("```json\n[]\n```"))
	assert.Equal(t, "[]", stripCodeFence("  []  "))
}
