package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/Charles-Louisin/mystik-backend/internal/hints"
	"github.com/Charles-Louisin/mystik-backend/internal/models"
	"github.com/Charles-Louisin/mystik-backend/internal/repository"
	"github.com/Charles-Louisin/mystik-backend/pkg/utils"
)

// Key costs of the paid disclosure paths.
const (
	revealKeyCost = 1
	hintKeyCost   = 1
)

// Reveal methods accepted by RevealIdentity.
const (
	MethodKey    = "key"
	MethodRiddle = "riddle"
)

type RevealService struct {
	revealRepo  *repository.RevealRepository
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	notifier    *NotificationService

	mu  sync.Mutex
	rng *rand.Rand
}

func NewRevealService() *RevealService {
	return &RevealService{
		revealRepo:  repository.NewRevealRepository(),
		messageRepo: repository.NewMessageRepository(),
		userRepo:    repository.NewUserRepository(),
		notifier:    NewNotificationService(),
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// RevealResult is the outcome of a reveal attempt.
type RevealResult struct {
	Sender        models.SenderReveal `json:"sender"`
	Charged       bool                `json:"charged"`
	KeysRemaining int                 `json:"keysRemaining"`
}

// RevealIdentity executes one reveal attempt. The key method debits a
// key unless the identity is already revealed; the riddle method
// verifies the answer against the sender's riddle.
func (s *RevealService) RevealIdentity(ctx context.Context, messageID, recipientID string, req *models.RevealRequest) (*RevealResult, error) {
	switch req.Method {
	case MethodKey:
		return s.revealWithKey(ctx, messageID, recipientID)
	case MethodRiddle:
		return s.revealWithRiddle(ctx, messageID, recipientID, req.Answer)
	default:
		return nil, fmt.Errorf("%w: unknown reveal method %q", models.ErrInvalidRequest, req.Method)
	}
}

func (s *RevealService) revealWithKey(ctx context.Context, messageID, recipientID string) (*RevealResult, error) {
	msg, charged, err := s.revealRepo.RevealWithKey(ctx, messageID, recipientID, recipientID, revealKeyCost)
	if err != nil {
		return nil, err
	}

	if charged {
		s.notifyIfRegistered(ctx, msg)
	}
	return s.revealResult(ctx, msg, recipientID, charged)
}

func (s *RevealService) revealWithRiddle(ctx context.Context, messageID, recipientID, answer string) (*RevealResult, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}
	if msg.Clues.Riddle == nil {
		return nil, fmt.Errorf("%w: message has no riddle", models.ErrInvalidRequest)
	}
	if msg.Sender.IdentityRevealed {
		return s.revealResult(ctx, msg, recipientID, false)
	}
	if err := riddleAnswerError(msg.Clues.Riddle, answer); err != nil {
		return nil, err
	}

	updated, err := s.revealRepo.SetRevealFlags(ctx, messageID, recipientID, true, false)
	if err != nil {
		return nil, err
	}
	s.notifyIfRegistered(ctx, updated)
	return s.revealResult(ctx, updated, recipientID, false)
}

func (s *RevealService) revealResult(ctx context.Context, msg *models.Message, recipientID string, charged bool) (*RevealResult, error) {
	keys := 0
	if user, err := s.userRepo.GetUserByID(ctx, recipientID); err == nil {
		keys = user.RevealKeys
	}
	return &RevealResult{
		Sender:        senderReveal(msg),
		Charged:       charged,
		KeysRemaining: keys,
	}, nil
}

// HintResult is one disclosed hint plus progress stats.
type HintResult struct {
	Hint    models.Hint      `json:"hint"`
	Charged bool             `json:"charged"`
	Stats   models.HintStats `json:"stats"`
}

// RevealPartial discloses one partial-info hint, preferring the
// requested type, debiting one key. When every derivable hint is
// already disclosed it returns the all_used sentinel without charging.
func (s *RevealService) RevealPartial(ctx context.Context, messageID, recipientID string, req *models.RevealPartialRequest) (*HintResult, error) {
	return s.grantCharged(ctx, messageID, recipientID, req.Type, req.UsedHintTypes)
}

// GetHint spends one key on a uniformly random hint draw. A message
// from a fully anonymous sender with no derivable facts yields the
// no_hints sentinel free of charge.
func (s *RevealService) GetHint(ctx context.Context, messageID, recipientID string, req *models.GetHintRequest) (*HintResult, error) {
	return s.grantCharged(ctx, messageID, recipientID, "", req.UsedHintTypes)
}

func (s *RevealService) grantCharged(ctx context.Context, messageID, recipientID, requested string, clientUsed []string) (*HintResult, error) {
	draw := func(msg *models.Message, used []string) (models.Hint, bool) {
		src := hints.FromMessage(msg)
		if msg.Sender.Nickname == models.DefaultNickname {
			src.Nickname = ""
		}
		merged := mergeUsed(used, clientUsed)
		s.mu.Lock()
		defer s.mu.Unlock()
		return hints.DrawPreferred(src, merged, requested, s.rng)
	}

	hint, msg, err := s.revealRepo.GrantHintCharged(ctx, messageID, recipientID, recipientID, hintKeyCost, draw)
	if errors.Is(err, models.ErrNoHintsAvailable) {
		return s.exhaustedResult(ctx, messageID, recipientID)
	}
	if err != nil {
		return nil, err
	}

	return &HintResult{
		Hint:    hint,
		Charged: true,
		Stats:   s.statsFor(msg),
	}, nil
}

// exhaustedResult distinguishes "nothing left" from "nothing to begin
// with" and answers with the matching sentinel, never a charge.
func (s *RevealService) exhaustedResult(ctx context.Context, messageID, recipientID string) (*HintResult, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}

	src := hints.FromMessage(msg)
	if msg.Sender.Nickname == models.DefaultNickname {
		src.Nickname = ""
	}
	sentinel := models.Hint{
		Type:        hints.TypeAllUsed,
		Value:       "All hints have been discovered",
		Description: "Nothing left to reveal",
	}
	if hints.Total(src) == 0 {
		sentinel = models.Hint{
			Type:        hints.TypeNoHints,
			Value:       "This sender left no trace",
			Description: "No hints available",
		}
	}
	return &HintResult{
		Hint:    sentinel,
		Charged: false,
		Stats:   s.statsFor(msg),
	}, nil
}

// PreviewHint serves one free hint from the surface pool. Nothing is
// persisted and no key is spent.
func (s *RevealService) PreviewHint(ctx context.Context, messageID, recipientID string) (*models.Hint, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}

	src := hints.FromMessage(msg)
	if msg.Sender.Nickname == models.DefaultNickname {
		src.Nickname = ""
	}
	pool := hints.PreviewPool(src, msg.Clues.Riddle)
	if len(pool) == 0 {
		return &models.Hint{
			Type:        hints.TypeNoHints,
			Value:       "This sender left no trace",
			Description: "No hints available",
		}, nil
	}

	s.mu.Lock()
	hint := pool[s.rng.Intn(len(pool))]
	s.mu.Unlock()
	return &hint, nil
}

// HintLedger is the full disclosure history of one message.
type HintLedger struct {
	Hints []models.Hint    `json:"hints"`
	Stats models.HintStats `json:"stats"`
}

// ListHints returns the persisted ledger in discovery order, with a
// synthetic terminal entry once the name has been discovered.
func (s *RevealService) ListHints(ctx context.Context, messageID, recipientID string) (*HintLedger, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}

	ledger := make([]models.Hint, len(msg.Clues.DiscoveredHints))
	copy(ledger, msg.Clues.DiscoveredHints)
	if msg.Sender.NameDiscovered {
		ledger = append(ledger, models.Hint{
			Type:        hints.TypeNameDiscovered,
			Value:       msg.Sender.Nickname,
			Description: "Name discovered",
		})
	}

	return &HintLedger{
		Hints: ledger,
		Stats: s.statsFor(msg),
	}, nil
}

// RiddleResult reports a correct riddle verification, its reward, and
// the disclosure progress after the reward is recorded.
type RiddleResult struct {
	Correct bool             `json:"correct"`
	Hint    *models.Hint     `json:"hint,omitempty"`
	Stats   models.HintStats `json:"hintStats"`
}

// CheckRiddle verifies a riddle answer without changing the reveal
// state. A correct answer earns one free hint, recorded in the ledger;
// with the pool exhausted the reward is a success marker that is not
// persisted. A wrong answer fails with ErrIncorrectAnswer and mutates
// nothing.
func (s *RevealService) CheckRiddle(ctx context.Context, messageID, recipientID string, req *models.CheckRiddleRequest) (*RiddleResult, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}
	if msg.Clues.Riddle == nil {
		return nil, fmt.Errorf("%w: message has no riddle", models.ErrInvalidRequest)
	}
	if err := riddleAnswerError(msg.Clues.Riddle, req.Answer); err != nil {
		return nil, err
	}

	src := hints.FromMessage(msg)
	if msg.Sender.Nickname == models.DefaultNickname {
		src.Nickname = ""
	}
	s.mu.Lock()
	reward, ok := hints.Draw(src, msg.UsedHintTypes(), s.rng)
	s.mu.Unlock()
	if !ok {
		return riddleResult(msg, models.Hint{
			Type:        hints.TypeRiddleSuccess,
			Value:       "Riddle solved",
			Description: "No undiscovered hints remain",
		}), nil
	}

	updated, _, err := s.revealRepo.GrantHint(ctx, messageID, recipientID, reward)
	if err != nil {
		return nil, err
	}
	return riddleResult(updated, reward), nil
}

// riddleAnswerError validates a submitted riddle answer. A blank answer
// is a malformed request, not a wrong guess.
func riddleAnswerError(riddle *models.Riddle, answer string) error {
	if strings.TrimSpace(answer) == "" {
		return fmt.Errorf("%w: an answer is required", models.ErrInvalidRequest)
	}
	if !utils.AnswersMatch(answer, riddle.Answer) {
		return models.ErrIncorrectAnswer
	}
	return nil
}

// riddleResult pairs a correct-answer reward with the stats the given
// message state yields.
func riddleResult(msg *models.Message, hint models.Hint) *RiddleResult {
	src := hints.FromMessage(msg)
	if msg.Sender.Nickname == models.DefaultNickname {
		src.Nickname = ""
	}
	return &RiddleResult{
		Correct: true,
		Hint:    &hint,
		Stats:   hints.Stats(src, len(msg.Clues.DiscoveredHints), msg.Sender.NameDiscovered),
	}
}

// GuessResult reports a correct sender-name guess.
type GuessResult struct {
	Correct bool                 `json:"correct"`
	Sender  *models.SenderReveal `json:"sender,omitempty"`
}

// CheckUserGuess verifies a guess of the sender's name. The guess is
// resolved to an account, exact match first and substring containment
// as the fuzzy fallback; it counts only when the resolved account is
// the message's registered sender. Correct guesses mark the name
// discovered; anything else fails with ErrIncorrectAnswer.
func (s *RevealService) CheckUserGuess(ctx context.Context, messageID, recipientID string, req *models.CheckGuessRequest) (*GuessResult, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}
	if !msg.Sender.RealUser || msg.Sender.UserID == "" {
		return nil, models.ErrIncorrectAnswer
	}

	guessed, err := s.resolveGuess(ctx, req.Username)
	if err != nil {
		return nil, err
	}
	if guessed == nil || guessed.UserID != msg.Sender.UserID {
		return nil, models.ErrIncorrectAnswer
	}

	updated, err := s.revealRepo.SetRevealFlags(ctx, messageID, recipientID, true, true)
	if err != nil {
		return nil, err
	}
	s.notifyIfRegistered(ctx, updated)

	reveal := senderReveal(updated)
	return &GuessResult{Correct: true, Sender: &reveal}, nil
}

// resolveGuess maps a guessed name to an account: an exact normalized
// username match wins, otherwise the first containment match.
func (s *RevealService) resolveGuess(ctx context.Context, guess string) (*models.User, error) {
	normalized := utils.NormalizeGuess(guess)
	if normalized == "" {
		return nil, nil
	}

	users, err := s.userRepo.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	var fuzzy *models.User
	for _, user := range users {
		if utils.NormalizeGuess(user.Username) == normalized {
			return user, nil
		}
		if fuzzy == nil && utils.GuessMatches(guess, user.Username) {
			fuzzy = user
		}
	}
	return fuzzy, nil
}

// MarkNameDiscovered records a client-confirmed discovery, e.g. after a
// completed reveal condition. Discovery implies the identity flag.
func (s *RevealService) MarkNameDiscovered(ctx context.Context, messageID, recipientID string) (*models.SenderReveal, error) {
	updated, err := s.revealRepo.SetRevealFlags(ctx, messageID, recipientID, true, true)
	if err != nil {
		return nil, err
	}
	reveal := senderReveal(updated)
	return &reveal, nil
}

// NotifySender pushes a reveal notification to the sender of a message
// the recipient owns. Reports whether a registered sender was there to
// notify; delivery itself stays best-effort.
func (s *RevealService) NotifySender(ctx context.Context, messageID, recipientID string) (bool, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return false, err
	}
	if !msg.Sender.RealUser || msg.Sender.UserID == "" {
		return false, nil
	}
	s.notifier.NotifySenderRevealed(ctx, msg.Sender.UserID, msg.MessageID)
	return true, nil
}

func (s *RevealService) statsFor(msg *models.Message) models.HintStats {
	src := hints.FromMessage(msg)
	if msg.Sender.Nickname == models.DefaultNickname {
		src.Nickname = ""
	}
	return hints.Stats(src, len(msg.Clues.DiscoveredHints), msg.Sender.NameDiscovered)
}

func (s *RevealService) notifyIfRegistered(ctx context.Context, msg *models.Message) {
	if msg.Sender.RealUser && msg.Sender.UserID != "" {
		s.notifier.NotifySenderRevealed(ctx, msg.Sender.UserID, msg.MessageID)
	}
}

// senderReveal maps the sender record to its post-reveal view.
func senderReveal(msg *models.Message) models.SenderReveal {
	display := models.DefaultNickname
	switch {
	case msg.Sender.NameDiscovered:
		display = msg.Sender.Nickname
	case msg.Sender.IdentityRevealed:
		if msg.Sender.RealUser {
			display = models.MaskedNickname
		} else {
			display = msg.Sender.Nickname
		}
	}

	reveal := models.SenderReveal{
		DisplayNickname:  display,
		Location:         msg.Sender.Location,
		IdentityRevealed: msg.Sender.IdentityRevealed,
		NameDiscovered:   msg.Sender.NameDiscovered,
	}
	if msg.Sender.IdentityRevealed {
		reveal.Nickname = msg.Sender.Nickname
	}
	return reveal
}

// mergeUsed unions the persisted ledger with client-reported types.
func mergeUsed(persisted, client []string) []string {
	seen := make(map[string]bool, len(persisted)+len(client))
	merged := make([]string, 0, len(persisted)+len(client))
	for _, lists := range [][]string{persisted, client} {
		for _, t := range lists {
			if t == "" || seen[t] {
				continue
			}
			seen[t] = true
			merged = append(merged, t)
		}
	}
	return merged
}
