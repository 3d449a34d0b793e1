// Package hints derives identity hints from a message's sender data.
// Everything here is pure: the catalog is recomputed from scratch on
// every call and no state is cached between draws.
package hints

import (
	"fmt"
	"math"
	"math/rand"
	"regexp"
	"strings"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

// Hint type identifiers. letter_<i> types for interior positions are
// generated dynamically.
const (
	TypeLetterFirst        = "letter_first"
	TypeLetterLast         = "letter_last"
	TypeLength             = "length"
	TypeInitials           = "initials"
	TypeFirstLetterFirst   = "first_letter_first_word"
	TypeLastLetterFirst    = "last_letter_first_word"
	TypeFirstLetterLast    = "first_letter_last_word"
	TypeLastLetterLast     = "last_letter_last_word"
	TypeSpecialChars       = "special_chars"
	TypeHasDigits          = "has_digits"
	TypeLocationCountry    = "location_country"
	TypeLocationCity       = "location_city"
	TypeSenderHint         = "sender_hint"
	TypeEmoji              = "emoji"
	TypeRiddle             = "riddle"
	TypeNameDiscovered     = "name_discovered"
	TypeRiddleSuccess      = "riddle_success"
	TypeAllUsed            = "all_used"
	TypeNoHints            = "no_hints"
	TypeRiddleFirstWord    = "riddle_first_word"
	TypeRiddleAnswerFirst  = "riddle_answer_first_letter"
	TypeRiddleAnswerLast   = "riddle_answer_last_letter"
	TypeRiddleAnswerLength = "riddle_answer_length"
)

var (
	specialCharRe = regexp.MustCompile(`[^a-zA-Z0-9\s]`)
	digitRe       = regexp.MustCompile(`\d`)
)

// Source holds the sender facts the catalog derives hints from.
type Source struct {
	Nickname  string
	Country   string
	City      string
	Hint      string
	Emoji     string
	HasRiddle bool
}

// FromMessage extracts the catalog source from a message.
func FromMessage(m *models.Message) Source {
	return Source{
		Nickname:  m.Sender.Nickname,
		Country:   m.Sender.Location.Country,
		City:      m.Sender.Location.City,
		Hint:      m.Clues.Hint,
		Emoji:     m.Clues.Emoji,
		HasRiddle: m.Clues.Riddle != nil,
	}
}

// MaxLetterHints is the lifetime cap on letter-type hints for a
// nickname of n runes: at most ceil(n*0.7) letters may ever be exposed.
func MaxLetterHints(n int) int {
	return int(math.Ceil(float64(n) * 0.7))
}

// MaxInteriorHints caps interior positions at floor(n*0.5).
func MaxInteriorHints(n int) int {
	return n / 2
}

func isLetterType(t string) bool {
	return strings.HasPrefix(t, "letter_")
}

func isInteriorType(t string) bool {
	return isLetterType(t) && t != TypeLetterFirst && t != TypeLetterLast
}

// Catalog enumerates every hint type currently derivable from src,
// excluding types in used and respecting the letter caps. The result is
// ordered deterministically; callers wanting "a" hint draw uniformly
// from it.
func Catalog(src Source, used []string) []models.Hint {
	usedSet := make(map[string]bool, len(used))
	usedLetters := 0
	usedInterior := 0
	for _, t := range used {
		if usedSet[t] {
			continue
		}
		usedSet[t] = true
		if isLetterType(t) {
			usedLetters++
			if isInteriorType(t) {
				usedInterior++
			}
		}
	}

	var pool []models.Hint
	nickname := strings.TrimSpace(src.Nickname)
	runes := []rune(nickname)
	n := len(runes)

	if n > 0 {
		letterBudget := MaxLetterHints(n) - usedLetters
		interiorBudget := MaxInteriorHints(n) - usedInterior

		offer := func(h models.Hint, interior bool) {
			if usedSet[h.Type] || letterBudget <= 0 {
				return
			}
			if interior {
				if interiorBudget <= 0 {
					return
				}
				interiorBudget--
			}
			letterBudget--
			pool = append(pool, h)
		}

		offer(models.Hint{
			Type:        TypeLetterFirst,
			Value:       strings.ToUpper(string(runes[0])),
			Description: "First letter of the nickname",
		}, false)
		if n > 1 {
			offer(models.Hint{
				Type:        TypeLetterLast,
				Value:       strings.ToUpper(string(runes[n-1])),
				Description: "Last letter of the nickname",
			}, false)
		}
		for i := 1; i < n-1; i++ {
			offer(models.Hint{
				Type:        fmt.Sprintf("letter_%d", i),
				Value:       strings.ToUpper(string(runes[i])),
				Description: fmt.Sprintf("Letter at position %d", i+1),
			}, true)
		}

		if !usedSet[TypeLength] {
			pool = append(pool, models.Hint{
				Type:        TypeLength,
				Value:       fmt.Sprintf("%d characters", n),
				Description: "Nickname length",
			})
		}

		words := strings.Fields(nickname)
		if len(words) > 1 {
			for i, w := range words {
				t := fmt.Sprintf("word_%d_length", i)
				if !usedSet[t] {
					pool = append(pool, models.Hint{
						Type:        t,
						Value:       fmt.Sprintf("Word %d: %d letters", i+1, len([]rune(w))),
						Description: fmt.Sprintf("Length of word %d", i+1),
					})
				}
			}
			if !usedSet[TypeInitials] {
				var b strings.Builder
				for _, w := range words {
					b.WriteString(strings.ToUpper(string([]rune(w)[0])))
				}
				pool = append(pool, models.Hint{
					Type:        TypeInitials,
					Value:       b.String(),
					Description: "Initials of each word",
				})
			}
			first := []rune(words[0])
			last := []rune(words[len(words)-1])
			composites := []struct {
				t, v, d string
			}{
				{TypeFirstLetterFirst, string(first[0]), "First letter of the first word"},
				{TypeLastLetterFirst, string(first[len(first)-1]), "Last letter of the first word"},
				{TypeFirstLetterLast, string(last[0]), "First letter of the last word"},
				{TypeLastLetterLast, string(last[len(last)-1]), "Last letter of the last word"},
			}
			for _, c := range composites {
				if !usedSet[c.t] {
					pool = append(pool, models.Hint{
						Type:        c.t,
						Value:       strings.ToUpper(c.v),
						Description: c.d,
					})
				}
			}
		}

		if specialCharRe.MatchString(nickname) && !usedSet[TypeSpecialChars] {
			pool = append(pool, models.Hint{
				Type:        TypeSpecialChars,
				Value:       "Contains special characters",
				Description: "Special characters",
			})
		}
		if digitRe.MatchString(nickname) && !usedSet[TypeHasDigits] {
			pool = append(pool, models.Hint{
				Type:        TypeHasDigits,
				Value:       "Contains digits",
				Description: "Presence of digits",
			})
		}
	}

	if src.Country != "" && !usedSet[TypeLocationCountry] {
		pool = append(pool, models.Hint{
			Type:        TypeLocationCountry,
			Value:       src.Country,
			Description: "Country",
		})
	}
	if src.City != "" && !usedSet[TypeLocationCity] {
		pool = append(pool, models.Hint{
			Type:        TypeLocationCity,
			Value:       src.City,
			Description: "City",
		})
	}
	if src.Hint != "" && !usedSet[TypeSenderHint] {
		pool = append(pool, models.Hint{
			Type:        TypeSenderHint,
			Value:       src.Hint,
			Description: "Hint left by the sender",
		})
	}
	if src.Emoji != "" && !usedSet[TypeEmoji] {
		pool = append(pool, models.Hint{
			Type:        TypeEmoji,
			Value:       src.Emoji,
			Description: "Emoji left by the sender",
		})
	}
	if src.HasRiddle && !usedSet[TypeRiddle] {
		pool = append(pool, models.Hint{
			Type:        TypeRiddle,
			Value:       "The sender left a riddle",
			Description: "Riddle available",
		})
	}

	return pool
}

// Draw picks one hint uniformly at random from the eligible pool. The
// second return value is false when the pool is empty.
func Draw(src Source, used []string, rng *rand.Rand) (models.Hint, bool) {
	pool := Catalog(src, used)
	if len(pool) == 0 {
		return models.Hint{}, false
	}
	return pool[rng.Intn(len(pool))], true
}

// DrawPreferred behaves like Draw but returns the hint of the requested
// type when it is still eligible.
func DrawPreferred(src Source, used []string, requested string, rng *rand.Rand) (models.Hint, bool) {
	pool := Catalog(src, used)
	if len(pool) == 0 {
		return models.Hint{}, false
	}
	if requested != "" {
		for _, h := range pool {
			if h.Type == requested {
				return h, true
			}
		}
	}
	return pool[rng.Intn(len(pool))], true
}

// Total is the full catalog size for a message with nothing disclosed.
func Total(src Source) int {
	return len(Catalog(src, nil))
}

// Stats computes disclosure progress. While the name is undiscovered
// the total is floored to used+2 so remaining never reads zero
// prematurely; once discovered, remaining is forced to zero.
func Stats(src Source, used int, nameDiscovered bool) models.HintStats {
	total := Total(src)
	if total < used {
		total = used
	}
	if nameDiscovered {
		return models.HintStats{Total: total, Used: used, Remaining: 0}
	}
	if total < used+2 {
		total = used + 2
	}
	return models.HintStats{Total: total, Used: used, Remaining: total - used}
}

// PreviewPool is the free, non-persisted hint pool served without
// charging a key: surface clues plus riddle-derived teasers.
func PreviewPool(src Source, riddle *models.Riddle) []models.Hint {
	var pool []models.Hint
	runes := []rune(strings.TrimSpace(src.Nickname))
	if len(runes) > 0 {
		pool = append(pool, models.Hint{
			Type:        TypeLetterFirst,
			Value:       strings.ToUpper(string(runes[0])),
			Description: "First letter of the nickname",
		})
	}
	if len(runes) > 1 {
		pool = append(pool, models.Hint{
			Type:        TypeLetterLast,
			Value:       strings.ToUpper(string(runes[len(runes)-1])),
			Description: "Last letter of the nickname",
		})
	}
	if src.Emoji != "" {
		pool = append(pool, models.Hint{Type: TypeEmoji, Value: src.Emoji, Description: "Emoji left by the sender"})
	}
	if src.Hint != "" {
		pool = append(pool, models.Hint{Type: TypeSenderHint, Value: src.Hint, Description: "Hint left by the sender"})
	}
	if riddle != nil {
		if words := strings.Fields(riddle.Question); len(words) > 0 {
			pool = append(pool, models.Hint{
				Type:        TypeRiddleFirstWord,
				Value:       words[0],
				Description: "First word of the riddle",
			})
		}
		answer := []rune(riddle.Answer)
		if len(answer) > 0 {
			pool = append(pool, models.Hint{
				Type:        TypeRiddleAnswerFirst,
				Value:       strings.ToUpper(string(answer[0])),
				Description: "First letter of the riddle answer",
			})
			pool = append(pool, models.Hint{
				Type:        TypeRiddleAnswerLength,
				Value:       fmt.Sprintf("%d letters", len(answer)),
				Description: "Length of the riddle answer",
			})
		}
		if len(answer) > 1 {
			pool = append(pool, models.Hint{
				Type:        TypeRiddleAnswerLast,
				Value:       strings.ToUpper(string(answer[len(answer)-1])),
				Description: "Last letter of the riddle answer",
			})
		}
	}
	return pool
}
