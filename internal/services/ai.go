package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"github.com/yukikurage/taskhub-api/internal/constants"
	"github.com/yukikurage/taskhub-api/internal/models"
)

var (
	ErrAIServiceNotConfigured = errors.New("task drafting is not configured")
	ErrDraftTextRequired      = errors.New("text is required")
	ErrAIResponse             = errors.New("failed to read drafting response")
)

type AIService struct {
	client *openai.Client
	model  string
	now    func() time.Time
}

// TaskDraft is a suggested task extracted from free text. Drafts are never
// persisted by the service.
type TaskDraft struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	DueDate     *time.Time          `json:"dueDate"`
	Priority    models.TaskPriority `json:"priority"`
	Department  *models.Department  `json:"department"`
}

// NewAIService returns a service backed by the OpenAI API. An empty key
// yields a service that reports ErrAIServiceNotConfigured.
func NewAIService(apiKey string) *AIService {
	if apiKey == "" {
		return &AIService{now: time.Now}
	}
	return NewAIServiceWithConfig(openai.DefaultConfig(apiKey))
}

func NewAIServiceWithConfig(cfg openai.ClientConfig) *AIService {
	return &AIService{
		client: openai.NewClientWithConfig(cfg),
		model:  openai.GPT4o,
		now:    time.Now,
	}
}

// Configured reports whether drafting requests can be served.
func (s *AIService) Configured() bool {
	return s != nil && s.client != nil
}

type rawDraft struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	DueDate     *string `json:"due_date"`
	Priority    string  `json:"priority"`
	Department  string  `json:"department"`
}

// DraftTasks asks the model to extract tasks from text.
func (s *AIService) DraftTasks(ctx context.Context, text string) ([]TaskDraft, error) {
	if !s.Configured() {
		return nil, ErrAIServiceNotConfigured
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrDraftTextRequired
	}

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleUser,
					Content: draftPrompt(s.now(), text),
				},
			},
			Temperature: 0.3,
		},
	)
	if err != nil {
		return nil, fmt.Errorf("OpenAI API error: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices returned", ErrAIResponse)
	}

	return parseDrafts(resp.Choices[0].Message.Content)
}

func draftPrompt(now time.Time, text string) string {
	departments := make([]string, len(models.Departments))
	for i, d := range models.Departments {
		departments[i] = string(d)
	}
	priorities := make([]string, len(models.TaskPriorities))
	for i, p := range models.TaskPriorities {
		priorities[i] = string(p)
	}

	return fmt.Sprintf(`You extract actionable tasks for a construction and engineering team from the text below.

Current time: %s

Text:
%s

Reply with a JSON array of tasks in this shape:
[
  {
    "title": "short task title",
    "description": "task details",
    "due_date": "deadline in ISO8601, e.g. 2025-10-28T23:59:59Z, or null when none is stated",
    "priority": "one of %s",
    "department": "one of %s, or empty when unclear"
  }
]

Rules:
- Return [] when the text contains no tasks
- Convert relative dates such as "tomorrow" or "next week" into concrete timestamps
- Return JSON only, without any explanation`,
		now.Format(time.RFC3339), text, strings.Join(priorities, ", "), strings.Join(departments, ", "))
}

func parseDrafts(content string) ([]TaskDraft, error) {
	content = stripCodeFence(content)

	var raw []rawDraft
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrAIResponse, err)
	}

	drafts := make([]TaskDraft, 0, len(raw))
	for _, r := range raw {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}

		draft := TaskDraft{
			Title:       title,
			Description: strings.TrimSpace(r.Description),
			Priority:    models.TaskPriorityMedium,
		}
		if p := models.TaskPriority(strings.ToUpper(strings.TrimSpace(r.Priority))); p.Valid() {
			draft.Priority = p
		}
		if d := models.Department(strings.ToUpper(strings.TrimSpace(r.Department))); d.Valid() {
			draft.Department = &d
		}
		if r.DueDate != nil {
			if due, err := time.Parse(time.RFC3339, strings.TrimSpace(*r.DueDate)); err == nil {
				draft.DueDate = &due
			}
		}

		drafts = append(drafts, draft)
		if len(drafts) == constants.MaxAIGeneratedTasks {
			break
		}
	}
	return drafts, nil
}

// stripCodeFence removes a surrounding markdown code fence.
func stripCodeFence(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	content = strings.TrimPrefix(content, "```")
	if i := strings.IndexByte(content, '\n'); i >= 0 {
		content = content[i+1:]
	}
	content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	return strings.TrimSpace(content)
}
