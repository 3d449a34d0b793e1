package hints

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

func catalogTypes(src Source, used []string) []string {
	pool := Catalog(src, used)
	types := make([]string, 0, len(pool))
	for _, h := range pool {
		types = append(types, h.Type)
	}
	sort.Strings(types)
	return types
}

func TestCatalogTwoWordNickname(t *testing.T) {
	t.Parallel()

	src := Source{Nickname: "Ana Belle"}
	want := []string{
		"first_letter_first_word",
		"first_letter_last_word",
		"initials",
		"last_letter_first_word",
		"last_letter_last_word",
		"length",
		"letter_1",
		"letter_2",
		"letter_3",
		"letter_4",
		"letter_first",
		"letter_last",
		"word_0_length",
		"word_1_length",
	}

	got := catalogTypes(src, nil)
	if len(got) != len(want) {
		t.Fatalf("catalog has %d types, want %d: %v", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("catalog types = %v, want %v", got, want)
		}
	}
}

func TestCatalogLetterCaps(t *testing.T) {
	t.Parallel()

	// "Bob" has 3 runes: at most ceil(3*0.7)=3 letter hints, at most
	// floor(3*0.5)=1 interior position.
	src := Source{Nickname: "Bob"}
	letters := 0
	interior := 0
	for _, h := range Catalog(src, nil) {
		if isLetterType(h.Type) {
			letters++
			if isInteriorType(h.Type) {
				interior++
			}
		}
	}
	if letters > MaxLetterHints(3) {
		t.Errorf("offered %d letter hints, cap is %d", letters, MaxLetterHints(3))
	}
	if interior > MaxInteriorHints(3) {
		t.Errorf("offered %d interior hints, cap is %d", interior, MaxInteriorHints(3))
	}
}

func TestCatalogUsedCountsAgainstCaps(t *testing.T) {
	t.Parallel()

	src := Source{Nickname: "Charlie"} // 7 runes: 5 letters max, 3 interior
	used := []string{"letter_first", "letter_last", "letter_1", "letter_2", "letter_3"}

	for _, h := range Catalog(src, used) {
		if isLetterType(h.Type) {
			t.Errorf("letter hint %q offered past the cap", h.Type)
		}
	}
}

func TestCatalogExcludesUsedTypes(t *testing.T) {
	t.Parallel()

	src := Source{
		Nickname: "Charlie",
		Country:  "France",
		City:     "Paris",
	}
	used := []string{"location_country", "length"}

	for _, h := range Catalog(src, used) {
		if h.Type == "location_country" || h.Type == "length" {
			t.Errorf("used type %q offered again", h.Type)
		}
	}
}

func TestCatalogSurfaceClues(t *testing.T) {
	t.Parallel()

	src := Source{
		Country:   "Cameroon",
		City:      "Yaounde",
		Hint:      "we met at school",
		Emoji:     "🎭",
		HasRiddle: true,
	}
	want := []string{
		TypeEmoji,
		TypeLocationCity,
		TypeLocationCountry,
		TypeRiddle,
		TypeSenderHint,
	}

	got := catalogTypes(src, nil)
	if len(got) != len(want) {
		t.Fatalf("catalog types = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("catalog types = %v, want %v", got, want)
		}
	}
}

func TestDrawEmptyPool(t *testing.T) {
	t.Parallel()

	rng := rand.New(rand.NewSource(1))
	if _, ok := Draw(Source{}, nil, rng); ok {
		t.Error("Draw returned a hint from an empty pool")
	}
}

func TestDrawReturnsEligibleHint(t *testing.T) {
	t.Parallel()

	src := Source{Nickname: "Marie", Country: "France"}
	rng := rand.New(rand.NewSource(42))
	used := []string{"letter_first"}

	for i := 0; i < 50; i++ {
		h, ok := Draw(src, used, rng)
		if !ok {
			t.Fatal("Draw found no hint in a non-empty pool")
		}
		if h.Type == "letter_first" {
			t.Fatal("Draw returned a used type")
		}
	}
}

func TestDrawPreferredHonorsRequest(t *testing.T) {
	t.Parallel()

	src := Source{Nickname: "Marie", Country: "France"}
	rng := rand.New(rand.NewSource(7))

	h, ok := DrawPreferred(src, nil, TypeLocationCountry, rng)
	if !ok {
		t.Fatal("DrawPreferred found no hint")
	}
	if h.Type != TypeLocationCountry {
		t.Errorf("DrawPreferred type = %q, want %q", h.Type, TypeLocationCountry)
	}
	if h.Value != "France" {
		t.Errorf("DrawPreferred value = %q, want France", h.Value)
	}
}

func TestDrawPreferredIneligibleRequestFallsBack(t *testing.T) {
	t.Parallel()

	src := Source{Nickname: "Marie"}
	rng := rand.New(rand.NewSource(7))

	h, ok := DrawPreferred(src, nil, TypeLocationCountry, rng)
	if !ok {
		t.Fatal("DrawPreferred found no hint")
	}
	if h.Type == TypeLocationCountry {
		t.Error("DrawPreferred returned a type the source cannot derive")
	}
}

func TestStats(t *testing.T) {
	t.Parallel()

	src := Source{Nickname: "Marie", Country: "France"}
	total := Total(src)

	tests := []struct {
		name           string
		used           int
		nameDiscovered bool
		want           models.HintStats
	}{
		{
			name: "nothing used",
			used: 0,
			want: models.HintStats{Total: total, Used: 0, Remaining: total},
		},
		{
			name: "near exhaustion is floored",
			used: total,
			want: models.HintStats{Total: total + 2, Used: total, Remaining: 2},
		},
		{
			name:           "name discovered zeroes remaining",
			used:           3,
			nameDiscovered: true,
			want:           models.HintStats{Total: total, Used: 3, Remaining: 0},
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Stats(src, tt.used, tt.nameDiscovered)
			if got != tt.want {
				t.Errorf("Stats(%d, %v) = %+v, want %+v", tt.used, tt.nameDiscovered, got, tt.want)
			}
		})
	}
}

func TestPreviewPoolRiddleTeasers(t *testing.T) {
	t.Parallel()

	src := Source{Nickname: "Marie", Emoji: "🎭"}
	riddle := &models.Riddle{Question: "Who sings at dawn", Answer: "rooster"}

	types := map[string]models.Hint{}
	for _, h := range PreviewPool(src, riddle) {
		types[h.Type] = h
	}

	if h, ok := types[TypeRiddleFirstWord]; !ok || h.Value != "Who" {
		t.Errorf("riddle_first_word = %+v, want value Who", h)
	}
	if h, ok := types[TypeRiddleAnswerFirst]; !ok || h.Value != "R" {
		t.Errorf("riddle_answer_first_letter = %+v, want value R", h)
	}
	if h, ok := types[TypeRiddleAnswerLast]; !ok || h.Value != "R" {
		t.Errorf("riddle_answer_last_letter = %+v, want value R", h)
	}
	if h, ok := types[TypeRiddleAnswerLength]; !ok || h.Value != "7 letters" {
		t.Errorf("riddle_answer_length = %+v, want value 7 letters", h)
	}
}

func TestPreviewPoolWithoutRiddle(t *testing.T) {
	t.Parallel()

	pool := PreviewPool(Source{Nickname: "Marie"}, nil)
	for _, h := range pool {
		switch h.Type {
		case TypeRiddleFirstWord, TypeRiddleAnswerFirst, TypeRiddleAnswerLast, TypeRiddleAnswerLength:
			t.Errorf("riddle teaser %q offered without a riddle", h.Type)
		}
	}
}

func TestFromMessage(t *testing.T) {
	t.Parallel()

	msg := &models.Message{
		Sender: models.Sender{
			Nickname: "Marie",
			Location: models.Location{Country: "France", City: "Lyon"},
		},
		Clues: models.Clues{
			Hint:   "old friend",
			Emoji:  "🎭",
			Riddle: &models.Riddle{Question: "q", Answer: "a"},
		},
	}

	src := FromMessage(msg)
	want := Source{
		Nickname:  "Marie",
		Country:   "France",
		City:      "Lyon",
		Hint:      "old friend",
		Emoji:     "🎭",
		HasRiddle: true,
	}
	if src != want {
		t.Errorf("FromMessage = %+v, want %+v", src, want)
	}
}
