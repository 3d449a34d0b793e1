package models

import (
	"encoding/json"
	"strings"
	"time"
)

// Emotional filters a sender may attach to a message. Anything outside
// this set is coerced to FilterNeutral before persistence.
const (
	FilterLove       = "love"
	FilterAnger      = "anger"
	FilterAdmiration = "admiration"
	FilterRegret     = "regret"
	FilterJoy        = "joy"
	FilterSadness    = "sadness"
	FilterNeutral    = "neutral"
)

var validEmotionalFilters = map[string]bool{
	FilterLove:       true,
	FilterAnger:      true,
	FilterAdmiration: true,
	FilterRegret:     true,
	FilterJoy:        true,
	FilterSadness:    true,
	FilterNeutral:    true,
}

// Reveal condition types.
const (
	RevealRiddle    = "riddle"
	RevealMinigame  = "minigame"
	RevealChallenge = "challenge"
	RevealPayment   = "payment"
	RevealKey       = "key"
	RevealNone      = "none"
)

var validRevealConditionTypes = map[string]bool{
	RevealRiddle:    true,
	RevealMinigame:  true,
	RevealChallenge: true,
	RevealPayment:   true,
	RevealKey:       true,
	RevealNone:      true,
}

// Voice filters applied to audio attachments.
const (
	VoiceNormal    = "normal"
	VoiceRobot     = "robot"
	VoiceDeep      = "deep"
	VoiceHigh      = "high"
	VoiceAlien     = "alien"
	VoiceAnonymous = "anonymous"
)

var validVoiceFilters = map[string]bool{
	VoiceNormal:    true,
	VoiceRobot:     true,
	VoiceDeep:      true,
	VoiceHigh:      true,
	VoiceAlien:     true,
	VoiceAnonymous: true,
}

// DefaultNickname is used when a sender leaves the nickname blank.
const DefaultNickname = "Anonymous"

// MaskedNickname is shown while the identity is revealed but the name
// has not been discovered yet.
const MaskedNickname = "Hidden name"

// Location is a coarse sender location, country and city only.
type Location struct {
	Country string `firestore:"country" json:"country"`
	City    string `firestore:"city" json:"city"`
}

// PartialInfo holds the fragments of sender identity that are safe to
// expose without any reveal.
type PartialInfo struct {
	FirstLetter string `firestore:"firstLetter" json:"firstLetter"`
}

// Sender is the embedded sender record of a message.
type Sender struct {
	Nickname         string      `firestore:"nickname" json:"nickname"`
	IPAddress        string      `firestore:"ipAddress" json:"-"`
	Location         Location    `firestore:"location" json:"location"`
	IdentityRevealed bool        `firestore:"identityRevealed" json:"identityRevealed"`
	NameDiscovered   bool        `firestore:"nameDiscovered" json:"nameDiscovered"`
	UserID           string      `firestore:"userId" json:"userId,omitempty"`
	RealUser         bool        `firestore:"realUser" json:"realUser"`
	PartialInfo      PartialInfo `firestore:"partialInfo" json:"partialInfo"`
}

// Riddle is a sender-authored question/answer pair gating one reveal
// path. Both sides are always non-empty; a half riddle is no riddle.
type Riddle struct {
	Question string `firestore:"question" json:"question"`
	Answer   string `firestore:"answer" json:"answer"`
}

// Hint is one disclosed fragment of sender identity. Entries are
// appended to a message's discoveredHints in discovery order and a type
// value never appears twice for the same message.
type Hint struct {
	Type        string `firestore:"type" json:"type"`
	Value       string `firestore:"value" json:"value"`
	Description string `firestore:"description" json:"description"`
}

// HintStats summarizes hint progress for one message.
type HintStats struct {
	Total     int `json:"total"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// Clues groups everything a recipient can use to narrow down the sender.
type Clues struct {
	Hint            string  `firestore:"hint" json:"hint,omitempty"`
	Emoji           string  `firestore:"emoji" json:"emoji,omitempty"`
	Riddle          *Riddle `firestore:"riddle" json:"riddle,omitempty"`
	DiscoveredHints []Hint  `firestore:"discoveredHints" json:"discoveredHints"`
}

// RevealCondition optionally attaches a condition the sender set for
// revealing their identity.
type RevealCondition struct {
	Type      string            `firestore:"type" json:"type"`
	Details   map[string]string `firestore:"details" json:"details,omitempty"`
	Completed bool              `firestore:"completed" json:"completed"`
}

// Scheduled delays a message's visibility in the recipient inbox.
type Scheduled struct {
	IsScheduled bool      `firestore:"isScheduled" json:"isScheduled"`
	RevealDate  time.Time `firestore:"revealDate" json:"revealDate,omitempty"`
}

// Analysis is the AI (or fallback) reading of a message.
type Analysis struct {
	EmotionalIntent    string `firestore:"emotionalIntent" json:"emotionalIntent"`
	Summary            string `firestore:"summary" json:"summary"`
	SuggestionForReply string `firestore:"suggestionForReply" json:"suggestionForReply"`
}

// Message is one anonymous message. Created on send, mutated by
// reveal/hint/analysis/like actions, never hard-deleted.
type Message struct {
	MessageID        string           `firestore:"messageId" json:"messageId"`
	Recipient        string           `firestore:"recipient" json:"recipient"`
	RecipientLink    string           `firestore:"recipientLink" json:"recipientLink"`
	Content          string           `firestore:"content" json:"content"`
	EmotionalFilter  string           `firestore:"emotionalFilter" json:"emotionalFilter"`
	Sender           Sender           `firestore:"sender" json:"sender"`
	Clues            Clues            `firestore:"clues" json:"clues"`
	RevealCondition  *RevealCondition `firestore:"revealCondition" json:"revealCondition,omitempty"`
	Scheduled        Scheduled        `firestore:"scheduled" json:"scheduled"`
	CustomMask       string           `firestore:"customMask" json:"customMask,omitempty"`
	IsPublic         bool             `firestore:"isPublic" json:"isPublic"`
	Likes            int              `firestore:"likes" json:"likes"`
	Read             bool             `firestore:"read" json:"read"`
	AIAnalysis       *Analysis        `firestore:"aiAnalysis" json:"aiAnalysis,omitempty"`
	HasVoiceMessage  bool             `firestore:"hasVoiceMessage" json:"hasVoiceMessage"`
	VoiceMessagePath string           `firestore:"voiceMessagePath" json:"-"`
	VoiceFilter      string           `firestore:"voiceFilter" json:"voiceFilter"`
	CreatedAt        time.Time        `firestore:"createdAt" json:"createdAt"`
}

// UsedHintTypes returns the types already recorded in discoveredHints.
func (m *Message) UsedHintTypes() []string {
	types := make([]string, 0, len(m.Clues.DiscoveredHints))
	for _, h := range m.Clues.DiscoveredHints {
		types = append(types, h.Type)
	}
	return types
}

// NormalizeEmotionalFilter coerces an arbitrary filter value to a valid
// one, defaulting to neutral.
func NormalizeEmotionalFilter(filter string) string {
	if validEmotionalFilters[filter] {
		return filter
	}
	return FilterNeutral
}

// NormalizeVoiceFilter coerces an arbitrary voice filter to a valid one.
func NormalizeVoiceFilter(filter string) string {
	if validVoiceFilters[filter] {
		return filter
	}
	return VoiceNormal
}

// NormalizeRevealCondition validates a reveal condition payload. An
// unknown type yields nil rather than an error.
func NormalizeRevealCondition(condType string, details map[string]string) *RevealCondition {
	if condType == "" || !validRevealConditionTypes[condType] {
		return nil
	}
	if details == nil {
		details = map[string]string{}
	}
	return &RevealCondition{Type: condType, Details: details, Completed: false}
}

// Released reports whether the message is visible in the inbox at the
// given instant. Unscheduled messages always are; scheduled ones become
// visible from the reveal date onward, boundary included.
func (s Scheduled) Released(now time.Time) bool {
	return !s.IsScheduled || !s.RevealDate.After(now)
}

// NormalizeScheduled enables scheduling only for dates strictly in the
// future; past or zero dates silently disable it.
func NormalizeScheduled(revealDate time.Time, now time.Time) Scheduled {
	if revealDate.After(now) {
		return Scheduled{IsScheduled: true, RevealDate: revealDate}
	}
	return Scheduled{}
}

// NormalizeRiddle builds the canonical riddle shape from the three
// accepted input forms, in priority order: a JSON-encoded string, an
// object, or separate question/answer fields. Malformed input yields no
// riddle, never an error.
func NormalizeRiddle(raw json.RawMessage, question, answer string) *Riddle {
	if len(raw) > 0 && string(raw) != "null" {
		var encoded string
		if err := json.Unmarshal(raw, &encoded); err == nil {
			var r Riddle
			if err := json.Unmarshal([]byte(encoded), &r); err == nil {
				return validRiddle(r.Question, r.Answer)
			}
			return nil
		}
		var r Riddle
		if err := json.Unmarshal(raw, &r); err == nil {
			if v := validRiddle(r.Question, r.Answer); v != nil {
				return v
			}
		}
	}
	return validRiddle(question, answer)
}

func validRiddle(question, answer string) *Riddle {
	question = strings.TrimSpace(question)
	answer = strings.TrimSpace(answer)
	if question == "" || answer == "" {
		return nil
	}
	return &Riddle{Question: question, Answer: answer}
}

// SendMessageRequest is the message creation payload. The riddle may
// arrive in any of the three accepted shapes.
type SendMessageRequest struct {
	RecipientLink   string            `json:"recipientLink" binding:"required"`
	Content         string            `json:"content" binding:"required"`
	Nickname        string            `json:"nickname"`
	Hint            string            `json:"hint"`
	Emoji           string            `json:"emoji"`
	Riddle          json.RawMessage   `json:"riddle"`
	RiddleQuestion  string            `json:"riddleQuestion"`
	RiddleAnswer    string            `json:"riddleAnswer"`
	EmotionalFilter string            `json:"emotionalFilter"`
	RevealType      string            `json:"revealConditionType"`
	RevealDetails   map[string]string `json:"revealConditionDetails"`
	ScheduledDate   string            `json:"scheduledDate"`
	CustomMask      string            `json:"customMask"`
	Country         string            `json:"country"`
	City            string            `json:"city"`
	RealUserID      string            `json:"realUserId"`
	SendAsUser      bool              `json:"sendAsAuthenticated"`
	VoiceFilter     string            `json:"voiceFilter"`
}

// SendMessageResponse summarizes what was stored for the sender.
type SendMessageResponse struct {
	MessageID string             `json:"messageId"`
	Success   bool               `json:"success"`
	Details   SendMessageDetails `json:"details"`
}

type SendMessageDetails struct {
	EmotionalFilter string `json:"emotionalFilter"`
	HasEmoji        bool   `json:"hasEmoji"`
	HasHint         bool   `json:"hasHint"`
	HasRiddle       bool   `json:"hasRiddle"`
	HasVoiceMessage bool   `json:"hasVoiceMessage"`
	VoiceFilter     string `json:"voiceFilter,omitempty"`
}

// Revelation status values decorating inbox listings.
const (
	StatusAnonymous     = "anonymous"
	StatusNicknameOnly  = "nickname_only"
	StatusFullyRevealed = "fully_revealed"
)

// InboxMessage is a received message decorated for display.
type InboxMessage struct {
	Message
	DisplayNickname  string `json:"displayNickname"`
	RevelationStatus string `json:"revelationStatus"`
	IsRegisteredUser bool   `json:"isRegisteredUser"`
}

// RevealRequest selects a reveal method, with the riddle answer when
// the method requires one.
type RevealRequest struct {
	Method string `json:"method" binding:"required"`
	Answer string `json:"answer"`
}

// SenderReveal is what a reveal attempt exposes about the sender.
type SenderReveal struct {
	Nickname         string   `json:"nickname,omitempty"`
	DisplayNickname  string   `json:"displayNickname"`
	Location         Location `json:"location"`
	IdentityRevealed bool     `json:"identityRevealed"`
	NameDiscovered   bool     `json:"nameDiscovered"`
}

// RevealPartialRequest asks for one partial-info hint, optionally of a
// specific type. UsedHintTypes carries client-side state merged with the
// persisted ledger.
type RevealPartialRequest struct {
	Type          string   `json:"type"`
	UsedHintTypes []string `json:"usedHintTypes"`
}

// CheckRiddleRequest submits a riddle answer for verification.
type CheckRiddleRequest struct {
	Answer string `json:"answer" binding:"required"`
}

// GetHintRequest spends a key on one random hint draw.
type GetHintRequest struct {
	UsedHintTypes []string `json:"usedHintTypes"`
}

// CheckGuessRequest submits a username guess for the sender.
type CheckGuessRequest struct {
	Username string `json:"username" binding:"required"`
}

// EarnKeyRequest names the key-earning method.
type EarnKeyRequest struct {
	Method string `json:"method" binding:"required"`
}
