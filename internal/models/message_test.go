package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestNormalizeRiddle(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		question string
		answer   string
		want     *Riddle
	}{
		{
			name: "json encoded string",
			raw:  `"{\"question\":\"Who am I\",\"answer\":\"a friend\"}"`,
			want: &Riddle{Question: "Who am I", Answer: "a friend"},
		},
		{
			name: "object",
			raw:  `{"question":"Who am I","answer":"a friend"}`,
			want: &Riddle{Question: "Who am I", Answer: "a friend"},
		},
		{
			name:     "separate fields",
			question: "Who am I",
			answer:   "a friend",
			want:     &Riddle{Question: "Who am I", Answer: "a friend"},
		},
		{
			name:     "malformed encoded string yields no riddle",
			raw:      `"not a riddle"`,
			question: "ignored",
			answer:   "ignored",
			want:     nil,
		},
		{
			name:     "incomplete object falls back to fields",
			raw:      `{"question":"Who am I","answer":""}`,
			question: "Where do I live",
			answer:   "next door",
			want:     &Riddle{Question: "Where do I live", Answer: "next door"},
		},
		{
			name:     "null raw falls back to fields",
			raw:      `null`,
			question: "Who am I",
			answer:   "a friend",
			want:     &Riddle{Question: "Who am I", Answer: "a friend"},
		},
		{
			name:   "half riddle is no riddle",
			answer: "a friend",
			want:   nil,
		},
		{
			name:     "whitespace is trimmed",
			question: "  Who am I  ",
			answer:   "  a friend  ",
			want:     &Riddle{Question: "Who am I", Answer: "a friend"},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var raw json.RawMessage
			if tt.raw != "" {
				raw = json.RawMessage(tt.raw)
			}
			got := NormalizeRiddle(raw, tt.question, tt.answer)
			switch {
			case got == nil && tt.want != nil:
				t.Fatalf("got nil, want %+v", tt.want)
			case got != nil && tt.want == nil:
				t.Fatalf("got %+v, want nil", got)
			case got != nil && *got != *tt.want:
				t.Fatalf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNormalizeEmotionalFilter(t *testing.T) {
	t.Parallel()

	if got := NormalizeEmotionalFilter("love"); got != FilterLove {
		t.Errorf("valid filter changed to %q", got)
	}
	if got := NormalizeEmotionalFilter("euphoria"); got != FilterNeutral {
		t.Errorf("unknown filter = %q, want neutral", got)
	}
	if got := NormalizeEmotionalFilter(""); got != FilterNeutral {
		t.Errorf("empty filter = %q, want neutral", got)
	}
}

func TestNormalizeVoiceFilter(t *testing.T) {
	t.Parallel()

	if got := NormalizeVoiceFilter("robot"); got != VoiceRobot {
		t.Errorf("valid filter changed to %q", got)
	}
	if got := NormalizeVoiceFilter("chipmunk"); got != VoiceNormal {
		t.Errorf("unknown filter = %q, want normal", got)
	}
}

func TestNormalizeScheduled(t *testing.T) {
	t.Parallel()

	now := time.Now()

	future := NormalizeScheduled(now.Add(time.Hour), now)
	if !future.IsScheduled {
		t.Error("future date did not schedule")
	}
	if !future.RevealDate.Equal(now.Add(time.Hour)) {
		t.Errorf("reveal date = %v", future.RevealDate)
	}

	past := NormalizeScheduled(now.Add(-time.Hour), now)
	if past.IsScheduled {
		t.Error("past date scheduled")
	}

	same := NormalizeScheduled(now, now)
	if same.IsScheduled {
		t.Error("present date scheduled, want strictly future")
	}

	zero := NormalizeScheduled(time.Time{}, now)
	if zero.IsScheduled {
		t.Error("zero date scheduled")
	}
}

func TestScheduledReleased(t *testing.T) {
	t.Parallel()

	now := time.Now()

	if !(Scheduled{}).Released(now) {
		t.Error("unscheduled message hidden")
	}

	pending := Scheduled{IsScheduled: true, RevealDate: now.Add(time.Minute)}
	if pending.Released(now) {
		t.Error("message visible before its reveal date")
	}
	if !pending.Released(now.Add(time.Minute)) {
		t.Error("message hidden at its reveal date")
	}
	if !pending.Released(now.Add(2 * time.Minute)) {
		t.Error("message hidden after its reveal date")
	}
}

func TestNormalizeRevealCondition(t *testing.T) {
	t.Parallel()

	if got := NormalizeRevealCondition("riddle", nil); got == nil {
		t.Fatal("valid type rejected")
	} else {
		if got.Completed {
			t.Error("new condition marked completed")
		}
		if got.Details == nil {
			t.Error("nil details not defaulted")
		}
	}

	if got := NormalizeRevealCondition("bribe", nil); got != nil {
		t.Errorf("unknown type accepted: %+v", got)
	}
	if got := NormalizeRevealCondition("", nil); got != nil {
		t.Errorf("empty type accepted: %+v", got)
	}
}

func TestUsedHintTypes(t *testing.T) {
	t.Parallel()

	msg := &Message{
		Clues: Clues{
			DiscoveredHints: []Hint{
				{Type: "letter_first", Value: "A"},
				{Type: "length", Value: "5 characters"},
			},
		},
	}

	got := msg.UsedHintTypes()
	if len(got) != 2 || got[0] != "letter_first" || got[1] != "length" {
		t.Errorf("UsedHintTypes = %v", got)
	}
}

func TestKeysForMethod(t *testing.T) {
	t.Parallel()

	tests := []struct {
		method string
		want   int
	}{
		{EarnAdView, 1},
		{EarnSocialShare, 2},
		{EarnReferral, 3},
		{EarnPremiumPurchase, 10},
		{"lottery", 0},
	}
	for _, tt := range tests {
		if got := KeysForMethod(tt.method); got != tt.want {
			t.Errorf("KeysForMethod(%q) = %d, want %d", tt.method, got, tt.want)
		}
	}
}
