// Package genai produces revised workout schemas from an LLM. The model is
// asked for strict JSON in the shape store.WorkoutSchema understands, with
// sets as positional [weight, reps, duration, distance, rest_time] arrays.
package genai

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"liftlog/api/internal/store"
)

// Request carries everything needed to revise (or freshly generate) a
// workout. Workout may be nil when there is no current tree to start from.
type Request struct {
	Workout      *store.Workout
	Instructions string
}

type OpenAI struct {
	client *openai.Client
	model  string
}

func NewOpenAI(apiKey, model string) *OpenAI {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &OpenAI{client: openai.NewClient(apiKey), model: model}
}

// Model reports the model name used for generation, recorded on each staged
// revision.
func (g *OpenAI) Model() string {
	return g.model
}

func (g *OpenAI) ReviseWorkout(ctx context.Context, req Request) (store.WorkoutSchema, error) {
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildUserPrompt(req)},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Temperature: 0.4,
	})
	if err != nil {
		return store.WorkoutSchema{}, fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return store.WorkoutSchema{}, fmt.Errorf("no completion choices returned")
	}

	schema, err := ParseSchema(resp.Choices[0].Message.Content)
	if err != nil {
		return store.WorkoutSchema{}, fmt.Errorf("parse completion: %w", err)
	}
	return schema, nil
}
