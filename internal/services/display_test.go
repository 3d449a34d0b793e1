package services

import (
	"reflect"
	"testing"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

func TestDecorate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sender      models.Sender
		wantDisplay string
		wantStatus  string
	}{
		{
			name:        "anonymous",
			sender:      models.Sender{Nickname: "SecretFan"},
			wantDisplay: models.DefaultNickname,
			wantStatus:  models.StatusAnonymous,
		},
		{
			name: "identity revealed unregistered sender shows pseudonym",
			sender: models.Sender{
				Nickname:         "SecretFan",
				IdentityRevealed: true,
			},
			wantDisplay: "SecretFan",
			wantStatus:  models.StatusNicknameOnly,
		},
		{
			name: "identity revealed registered sender stays masked",
			sender: models.Sender{
				Nickname:         "charles",
				IdentityRevealed: true,
				RealUser:         true,
				UserID:           "u1",
			},
			wantDisplay: models.MaskedNickname,
			wantStatus:  models.StatusNicknameOnly,
		},
		{
			name: "name discovered shows everything",
			sender: models.Sender{
				Nickname:         "charles",
				IdentityRevealed: true,
				NameDiscovered:   true,
				RealUser:         true,
			},
			wantDisplay: "charles",
			wantStatus:  models.StatusFullyRevealed,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := decorate(models.Message{Sender: tt.sender})
			if got.DisplayNickname != tt.wantDisplay {
				t.Errorf("display = %q, want %q", got.DisplayNickname, tt.wantDisplay)
			}
			if got.RevelationStatus != tt.wantStatus {
				t.Errorf("status = %q, want %q", got.RevelationStatus, tt.wantStatus)
			}
			if got.IsRegisteredUser != tt.sender.RealUser {
				t.Errorf("isRegisteredUser = %v", got.IsRegisteredUser)
			}
		})
	}
}

func TestSenderRevealHidesNicknameUntilRevealed(t *testing.T) {
	t.Parallel()

	hidden := senderReveal(&models.Message{
		Sender: models.Sender{Nickname: "SecretFan"},
	})
	if hidden.Nickname != "" {
		t.Errorf("unrevealed sender exposed nickname %q", hidden.Nickname)
	}
	if hidden.DisplayNickname != models.DefaultNickname {
		t.Errorf("display = %q", hidden.DisplayNickname)
	}

	revealed := senderReveal(&models.Message{
		Sender: models.Sender{Nickname: "SecretFan", IdentityRevealed: true},
	})
	if revealed.Nickname != "SecretFan" {
		t.Errorf("revealed sender nickname = %q", revealed.Nickname)
	}
}

func TestMergeUsed(t *testing.T) {
	t.Parallel()

	got := mergeUsed(
		[]string{"letter_first", "length"},
		[]string{"length", "", "emoji"},
	)
	want := []string{"letter_first", "length", "emoji"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("mergeUsed = %v, want %v", got, want)
	}
}

func TestFirstLetter(t *testing.T) {
	t.Parallel()

	if got := firstLetter("ana"); got != "A" {
		t.Errorf("firstLetter(ana) = %q", got)
	}
	if got := firstLetter("éric"); got != "É" {
		t.Errorf("firstLetter(éric) = %q", got)
	}
	if got := firstLetter(""); got != "" {
		t.Errorf("firstLetter(empty) = %q", got)
	}
}

func TestEmotionTrait(t *testing.T) {
	t.Parallel()

	seen := map[string]bool{}
	for _, emotion := range []string{
		models.FilterLove,
		models.FilterAnger,
		models.FilterAdmiration,
		models.FilterRegret,
		models.FilterJoy,
		models.FilterSadness,
		models.FilterNeutral,
	} {
		trait := emotionTrait(emotion)
		if trait == "" {
			t.Errorf("emotionTrait(%q) is empty", emotion)
		}
		if seen[trait] {
			t.Errorf("emotionTrait(%q) duplicates another trait", emotion)
		}
		seen[trait] = true
	}
}
