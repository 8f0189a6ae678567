package ai

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/sashabaranov/go-openai"

	"github.com/hray3182/daybook/internal/planner"
)

type Client struct {
	client *openai.Client
	model  string
}

func New(apiKey, baseURL, model string) *Client {
	config := openai.DefaultConfig(apiKey)
	config.BaseURL = baseURL

	return &Client{
		client: openai.NewClientWithConfig(config),
		model:  model,
	}
}

// Feedback is the model's review of one day.
type Feedback struct {
	Summary    string   `json:"summary"`
	WentWell   []string `json:"went_well"`
	Improve    []string `json:"improve"`
	Score      int      `json:"score"`
	RawContent string   `json:"-"`
}

const feedbackSystemPrompt = `You are the reflection coach of Daybook, a daily planner.
The user shares one day: what they planned, what they actually did, when they woke up and
went to sleep, their mood and a short reflection.

Compare the plan with what happened. Be concrete and kind, refer to actual times and titles,
and keep each point to one sentence. Reply in the language of the reflection when there is one.

Fields:
- summary: two or three sentences about the day
- went_well: up to three things that went well
- improve: up to three small, actionable suggestions for tomorrow
- score: how closely the day followed the plan, 0 to 100`

// JSON Schema for structured output
var feedbackSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"summary": {
			"type": "string",
			"description": "Short overview of the day"
		},
		"went_well": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Things that went well"
		},
		"improve": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Suggestions for tomorrow"
		},
		"score": {
			"type": "integer",
			"minimum": 0,
			"maximum": 100,
			"description": "How closely the day followed the plan"
		}
	},
	"required": ["summary", "went_well", "improve", "score"],
	"additionalProperties": false
}`)

// Feedback asks the model to review view.
func (c *Client) Feedback(ctx context.Context, view *planner.DayView) (*Feedback, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: feedbackSystemPrompt,
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: BuildDayPrompt(view),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONSchema,
			JSONSchema: &openai.ChatCompletionResponseFormatJSONSchema{
				Name:   "day_feedback",
				Schema: feedbackSchema,
				Strict: true,
			},
		},
		Temperature: 0.4,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to call AI API: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("no response from AI")
	}

	content := resp.Choices[0].Message.Content
	feedback := &Feedback{RawContent: content}

	if err := json.Unmarshal([]byte(content), feedback); err != nil {
		return nil, fmt.Errorf("failed to parse AI response: %w", err)
	}

	return feedback, nil
}
