package utils

import "testing"

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	valid := []string{"bob", "charles_99", "A_very_long_username_under_30"}
	for _, u := range valid {
		if err := ValidateUsername(u); err != nil {
			t.Errorf("ValidateUsername(%q) = %v", u, err)
		}
	}

	invalid := []string{"ab", "", "user name", "name!", "this_username_is_way_too_long_to_pass"}
	for _, u := range invalid {
		if err := ValidateUsername(u); err == nil {
			t.Errorf("ValidateUsername(%q) accepted", u)
		}
	}
}

func TestValidateContent(t *testing.T) {
	t.Parallel()

	if err := ValidateContent("hello there"); err != nil {
		t.Errorf("valid content rejected: %v", err)
	}
	if err := ValidateContent("hi"); err == nil {
		t.Error("short content accepted")
	}
	if err := ValidateContent("   hey   "); err == nil {
		t.Error("padding counted toward minimum length")
	}
}

func TestAnswersMatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		submitted string
		stored    string
		want      bool
	}{
		{" Blanc ", "blanc", true},
		{"BLANC", "blanc", true},
		{"blanc", "blanc", true},
		{"noir", "blanc", false},
		{"", "blanc", false},
	}
	for _, tt := range tests {
		if got := AnswersMatch(tt.submitted, tt.stored); got != tt.want {
			t.Errorf("AnswersMatch(%q, %q) = %v, want %v", tt.submitted, tt.stored, got, tt.want)
		}
	}
}

func TestGuessMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		guess    string
		username string
		want     bool
	}{
		{"charles", "Charles", true},
		{"Jean Pierre", "jeanpierre", true},
		{"charl", "Charles", true},
		{"charles_99", "charles", true},
		{"marie", "Charles", false},
		{"", "Charles", false},
		{"charles", "", false},
	}
	for _, tt := range tests {
		if got := GuessMatches(tt.guess, tt.username); got != tt.want {
			t.Errorf("GuessMatches(%q, %q) = %v, want %v", tt.guess, tt.username, got, tt.want)
		}
	}
}
