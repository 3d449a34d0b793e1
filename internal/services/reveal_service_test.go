package services

import (
	"errors"
	"testing"

	"github.com/Charles-Louisin/mystik-backend/internal/hints"
	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

func TestRiddleAnswerError(t *testing.T) {
	t.Parallel()

	riddle := &models.Riddle{Question: "what crows at dawn?", Answer: "Rooster"}

	tests := []struct {
		name    string
		answer  string
		wantErr error
	}{
		{name: "correct", answer: "rooster", wantErr: nil},
		{name: "correct with spacing", answer: "  ROOSTER ", wantErr: nil},
		{name: "wrong", answer: "hen", wantErr: models.ErrIncorrectAnswer},
		{name: "empty", answer: "", wantErr: models.ErrInvalidRequest},
		{name: "blank", answer: "   ", wantErr: models.ErrInvalidRequest},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := riddleAnswerError(riddle, tt.answer)
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("riddleAnswerError(%q) = %v", tt.answer, err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("riddleAnswerError(%q) = %v, want %v", tt.answer, err, tt.wantErr)
			}
		})
	}
}

func TestRiddleResultCarriesStats(t *testing.T) {
	t.Parallel()

	msg := &models.Message{
		Sender: models.Sender{Nickname: "charles"},
		Clues: models.Clues{
			DiscoveredHints: []models.Hint{
				{Type: "length", Value: "7 letters"},
			},
		},
	}
	reward := models.Hint{Type: "letter_first", Value: "C"}

	got := riddleResult(msg, reward)
	if !got.Correct {
		t.Error("result not marked correct")
	}
	if got.Hint == nil || got.Hint.Type != "letter_first" {
		t.Errorf("hint = %+v", got.Hint)
	}
	if got.Stats.Used != 1 {
		t.Errorf("stats.used = %d, want 1", got.Stats.Used)
	}
	if got.Stats.Total <= got.Stats.Used {
		t.Errorf("stats.total = %d, want more than used", got.Stats.Total)
	}
	if got.Stats.Remaining != got.Stats.Total-got.Stats.Used {
		t.Errorf("stats.remaining = %d with total %d used %d",
			got.Stats.Remaining, got.Stats.Total, got.Stats.Used)
	}
}

func TestRiddleResultStatsAfterNameDiscovered(t *testing.T) {
	t.Parallel()

	msg := &models.Message{
		Sender: models.Sender{Nickname: "charles", IdentityRevealed: true, NameDiscovered: true},
		Clues: models.Clues{
			DiscoveredHints: []models.Hint{
				{Type: "length", Value: "7 letters"},
			},
		},
	}
	marker := models.Hint{Type: hints.TypeRiddleSuccess, Value: "Riddle solved"}

	got := riddleResult(msg, marker)
	if got.Stats.Remaining != 0 {
		t.Errorf("stats.remaining = %d after name discovery", got.Stats.Remaining)
	}
}
