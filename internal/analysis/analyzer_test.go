package analysis

import (
	"context"
	"strings"
	"testing"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

func TestFallbackAlwaysAvailable(t *testing.T) {
	t.Parallel()

	if !(Fallback{}).Available() {
		t.Error("fallback reported unavailable")
	}
}

func TestFallbackEmotionKeyedReading(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	emotions := []string{
		models.FilterLove,
		models.FilterAnger,
		models.FilterAdmiration,
		models.FilterRegret,
		models.FilterJoy,
		models.FilterSadness,
		models.FilterNeutral,
	}

	seen := map[string]bool{}
	for _, emotion := range emotions {
		result, err := Fallback{}.Analyze(ctx, "a message of reasonable length here", emotion)
		if err != nil {
			t.Fatalf("Analyze(%q): %v", emotion, err)
		}
		if result.EmotionalIntent == "" || result.Summary == "" || result.SuggestionForReply == "" {
			t.Errorf("Analyze(%q) returned empty parts: %+v", emotion, result)
		}
		if seen[result.EmotionalIntent] {
			t.Errorf("emotion %q shares an intent with another emotion", emotion)
		}
		seen[result.EmotionalIntent] = true
	}
}

func TestFallbackContentSignals(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	short, _ := Fallback{}.Analyze(ctx, "hey you", models.FilterNeutral)
	if !strings.Contains(short.Summary, "short") {
		t.Errorf("short message not flagged: %q", short.Summary)
	}

	long, _ := Fallback{}.Analyze(ctx, strings.Repeat("a long and winding story ", 10), models.FilterNeutral)
	if !strings.Contains(long.Summary, "detailed") {
		t.Errorf("long message not flagged: %q", long.Summary)
	}

	question, _ := Fallback{}.Analyze(ctx, "will you ever forgive me?", models.FilterRegret)
	if !strings.Contains(question.SuggestionForReply, "questions") {
		t.Errorf("question not flagged: %q", question.SuggestionForReply)
	}
	if !strings.Contains(question.EmotionalIntent, "apologies") {
		t.Errorf("apology keyword not flagged: %q", question.EmotionalIntent)
	}

	urgent, _ := Fallback{}.Analyze(ctx, "please reply quickly, this matters", models.FilterNeutral)
	if !strings.Contains(urgent.Summary, "prompt reply") {
		t.Errorf("urgency not flagged: %q", urgent.Summary)
	}

	thanks, _ := Fallback{}.Analyze(ctx, "thank you for everything", models.FilterLove)
	if !strings.Contains(thanks.EmotionalIntent, "gratitude") {
		t.Errorf("gratitude not flagged: %q", thanks.EmotionalIntent)
	}
}

func TestFallbackDeterministic(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	a, _ := Fallback{}.Analyze(ctx, "the same message", models.FilterJoy)
	b, _ := Fallback{}.Analyze(ctx, "the same message", models.FilterJoy)
	if a != b {
		t.Errorf("same input produced different readings: %+v vs %+v", a, b)
	}
}

func TestNewOpenAIRejectsImplausibleKeys(t *testing.T) {
	t.Parallel()

	if NewOpenAI("").Available() {
		t.Error("empty key produced an available analyzer")
	}
	if NewOpenAI("not-a-key").Available() {
		t.Error("implausible key produced an available analyzer")
	}
	if !NewOpenAI("sk-test123").Available() {
		t.Error("plausible key produced an unavailable analyzer")
	}
}
