// Package analysis reads the emotional intent of a message. The real
// implementation calls an external model; Fallback produces a
// deterministic local reading with the same contract so callers never
// see the external service fail.
package analysis

import (
	"context"
	"fmt"
	"strings"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

// Analyzer is the message-analysis capability. Core code depends only
// on this interface.
type Analyzer interface {
	Available() bool
	Analyze(ctx context.Context, content, emotion string) (models.Analysis, error)
}

// Fallback is the deterministic local analyzer.
type Fallback struct{}

// Available always reports true; the fallback has no dependencies.
func (Fallback) Available() bool { return true }

// Analyze produces an emotion-keyed reading adjusted by simple content
// signals: length, questions, and a few keyword families.
func (Fallback) Analyze(_ context.Context, content, emotion string) (models.Analysis, error) {
	var intent, summary, suggestion string

	switch emotion {
	case models.FilterLove:
		intent = "The sender seems to express deep affection or attachment."
		summary = "This message carries a sincere expression of positive feelings."
		suggestion = "You could reply with gratitude and share your own feelings if you are comfortable."
	case models.FilterAnger:
		intent = "The sender seems frustrated or angry about a situation."
		summary = "This message expresses discontent or frustration."
		suggestion = "You could respond with empathy while staying calm, and offer a constructive discussion."
	case models.FilterAdmiration:
		intent = "The sender seems to admire you or value your qualities."
		summary = "This message expresses respect and admiration."
		suggestion = "You could thank the sender for their kind words."
	case models.FilterRegret:
		intent = "The sender seems to express remorse or apologies."
		summary = "This message carries feelings of regret or nostalgia."
		suggestion = "You could respond with understanding and, if appropriate, offer forgiveness or support."
	case models.FilterJoy:
		intent = "The sender seems happy and enthusiastic."
		summary = "This message expresses joy and enthusiasm."
		suggestion = "You could share their joy and reply in an equally upbeat tone."
	case models.FilterSadness:
		intent = "The sender seems sad or melancholic."
		summary = "This message expresses sadness or melancholy."
		suggestion = "You could offer support and empathy, and perhaps propose your help."
	default:
		intent = "The emotional intent is not clearly defined."
		summary = "This message has a neutral or mixed tone."
		suggestion = "You could reply in a balanced way, mirroring the tone of the message."
	}

	switch n := len(content); {
	case n < 50:
		summary += " (short and concise message)"
	case n > 200:
		summary += " (detailed and elaborate message)"
	}

	if strings.Contains(content, "?") {
		suggestion += " Don't forget to answer the questions asked."
	}

	lower := strings.ToLower(content)
	if strings.Contains(lower, "thank") {
		intent += " There is an expression of gratitude in this message."
	}
	if strings.Contains(lower, "sorry") || strings.Contains(lower, "apolog") || strings.Contains(lower, "forgive") {
		intent += " The sender offers apologies or expresses regrets."
	}
	if strings.Contains(lower, "urgent") || strings.Contains(lower, "quickly") || strings.Contains(lower, "asap") {
		summary += " A prompt reply seems to be expected."
	}

	return models.Analysis{
		EmotionalIntent:    intent,
		Summary:            summary,
		SuggestionForReply: suggestion,
	}, nil
}

func analysisPrompt(content, emotion string) string {
	return fmt.Sprintf(`Analyze this message sent with the emotion %q:

%q

Reply with:
1. An analysis of the sender's emotional intent (max 2 sentences)
2. A short summary of the message (max 2 sentences)
3. A reply suggestion fitting the emotion and content (max 3 sentences)

Be precise and adapt your analysis to the indicated emotion.`, emotion, content)
}
