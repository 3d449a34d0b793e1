package analysis

import (
	"context"
	"errors"
	"regexp"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

// OpenAI analyzes messages through the OpenAI chat API.
type OpenAI struct {
	client *openai.Client
}

// NewOpenAI builds the OpenAI analyzer. An empty or implausible key
// yields an unavailable analyzer rather than an error; callers fall
// back to the local analyzer.
func NewOpenAI(apiKey string) *OpenAI {
	if apiKey == "" || !strings.HasPrefix(apiKey, "sk-") {
		return &OpenAI{}
	}
	return &OpenAI{client: openai.NewClient(apiKey)}
}

// Available reports whether the client was configured with a key.
func (o *OpenAI) Available() bool { return o.client != nil }

var numberedPartRe = regexp.MustCompile(`(?m)^\s*\d+\.\s+`)

// Analyze asks the model for the three-part reading and splits the
// numbered response into its parts.
func (o *OpenAI) Analyze(ctx context.Context, content, emotion string) (models.Analysis, error) {
	if o.client == nil {
		return models.Analysis{}, errors.Join(models.ErrServiceUnavailable, errors.New("openai client not configured"))
	}

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: openai.GPT3Dot5Turbo,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: "You are an assistant specialized in the emotional analysis of messages. You provide relevant analyses and reply suggestions adapted to the emotional tone.",
			},
			{
				Role:    openai.ChatMessageRoleUser,
				Content: analysisPrompt(content, emotion),
			},
		},
		Temperature: 0.7,
		MaxTokens:   500,
	})
	if err != nil {
		return models.Analysis{}, errors.Join(models.ErrServiceUnavailable, err)
	}
	if len(resp.Choices) == 0 {
		return models.Analysis{}, errors.Join(models.ErrServiceUnavailable, errors.New("empty completion"))
	}

	var parts []string
	for _, p := range numberedPartRe.Split(resp.Choices[0].Message.Content, -1) {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}

	result := models.Analysis{
		EmotionalIntent:    "Emotional intent not detected",
		Summary:            "Summary not available",
		SuggestionForReply: "Reply suggestion not available",
	}
	if len(parts) > 0 {
		result.EmotionalIntent = parts[0]
	}
	if len(parts) > 1 {
		result.Summary = parts[1]
	}
	if len(parts) > 2 {
		result.SuggestionForReply = parts[2]
	}
	return result, nil
}
