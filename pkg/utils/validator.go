package utils

import (
	"errors"
	"regexp"
	"strings"
)

var usernameRegex = regexp.MustCompile(`^[a-zA-Z0-9_]{3,30}$`)

// ValidateUsername validates username format
func ValidateUsername(username string) error {
	if len(username) < 3 || len(username) > 30 {
		return errors.New("username must be between 3 and 30 characters")
	}
	if !usernameRegex.MatchString(username) {
		return errors.New("username can only contain letters, numbers, and underscores")
	}
	return nil
}

// ValidatePassword validates password format
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return errors.New("password must be at least 6 characters")
	}
	return nil
}

// ValidateContent enforces the minimum message length after trimming.
func ValidateContent(content string) error {
	if len(strings.TrimSpace(content)) < 5 {
		return errors.New("message must contain at least 5 characters")
	}
	return nil
}

// NormalizeAnswer prepares a riddle answer for comparison: trimmed and
// lowercased.
func NormalizeAnswer(answer string) string {
	return strings.ToLower(strings.TrimSpace(answer))
}

// AnswersMatch compares a submitted riddle answer against the stored
// one, case-insensitively and ignoring surrounding whitespace.
func AnswersMatch(submitted, stored string) bool {
	return NormalizeAnswer(submitted) == NormalizeAnswer(stored)
}

var spaceRe = regexp.MustCompile(`\s+`)

// NormalizeGuess prepares a username guess for comparison: trimmed,
// lowercased, interior spaces removed.
func NormalizeGuess(username string) string {
	return spaceRe.ReplaceAllString(strings.ToLower(strings.TrimSpace(username)), "")
}

// GuessMatches reports whether a guess matches a username, exactly or
// by substring containment in either direction. Both sides are
// normalized first.
func GuessMatches(guess, username string) bool {
	g := NormalizeGuess(guess)
	u := NormalizeGuess(username)
	if g == "" || u == "" {
		return false
	}
	return g == u || strings.Contains(u, g) || strings.Contains(g, u)
}
