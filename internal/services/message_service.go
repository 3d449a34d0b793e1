package services

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/Charles-Louisin/mystik-backend/internal/analysis"
	"github.com/Charles-Louisin/mystik-backend/internal/config"
	"github.com/Charles-Louisin/mystik-backend/internal/models"
	"github.com/Charles-Louisin/mystik-backend/internal/repository"
	"github.com/Charles-Louisin/mystik-backend/pkg/utils"
)

const publicFeedLimit = 20

type MessageService struct {
	messageRepo *repository.MessageRepository
	userRepo    *repository.UserRepository
	notifier    *NotificationService
	analyzer    analysis.Analyzer
	fallback    analysis.Analyzer
}

func NewMessageService() *MessageService {
	var analyzer analysis.Analyzer
	if ai := analysis.NewOpenAI(config.OpenAIKey()); ai.Available() {
		analyzer = ai
	}
	return &MessageService{
		messageRepo: repository.NewMessageRepository(),
		userRepo:    repository.NewUserRepository(),
		notifier:    NewNotificationService(),
		analyzer:    analyzer,
		fallback:    analysis.Fallback{},
	}
}

// Send stores a new anonymous message for the recipient behind the
// unique link. senderUserID is empty for unauthenticated senders;
// voicePath points at an already processed audio file, empty when the
// message is text only.
func (s *MessageService) Send(ctx context.Context, req *models.SendMessageRequest, senderUserID, ipAddress, voicePath string) (*models.SendMessageResponse, error) {
	if err := utils.ValidateContent(req.Content); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidRequest, err.Error())
	}

	recipient, err := s.userRepo.GetUserByUniqueLink(ctx, normalizeLink(req.RecipientLink))
	if err != nil {
		return nil, err
	}

	nickname := strings.TrimSpace(req.Nickname)
	if nickname == "" {
		nickname = models.DefaultNickname
	}

	sender := models.Sender{
		Nickname:  nickname,
		IPAddress: ipAddress,
		Location: models.Location{
			Country: strings.TrimSpace(req.Country),
			City:    strings.TrimSpace(req.City),
		},
	}
	if nickname != models.DefaultNickname {
		sender.PartialInfo.FirstLetter = firstLetter(nickname)
	}
	// A claimed sender identity must match the authenticated subject;
	// claims without a token are dropped rather than trusted.
	if req.RealUserID != "" && senderUserID != "" && req.RealUserID != senderUserID {
		return nil, fmt.Errorf("%w: claimed sender does not match the authenticated user", models.ErrInvalidRequest)
	}
	if (req.SendAsUser || req.RealUserID != "") && senderUserID != "" {
		sender.UserID = senderUserID
		sender.RealUser = true
	}

	riddle := models.NormalizeRiddle(req.Riddle, req.RiddleQuestion, req.RiddleAnswer)
	scheduled := models.Scheduled{}
	if req.ScheduledDate != "" {
		if revealDate, err := time.Parse(time.RFC3339, req.ScheduledDate); err == nil {
			scheduled = models.NormalizeScheduled(revealDate, time.Now())
		}
	}

	voiceFilter := ""
	if voicePath != "" {
		voiceFilter = models.NormalizeVoiceFilter(req.VoiceFilter)
	}

	msg := &models.Message{
		Recipient:       recipient.UserID,
		RecipientLink:   recipient.UniqueLink,
		Content:         strings.TrimSpace(req.Content),
		EmotionalFilter: models.NormalizeEmotionalFilter(req.EmotionalFilter),
		Sender:          sender,
		Clues: models.Clues{
			Hint:            strings.TrimSpace(req.Hint),
			Emoji:           strings.TrimSpace(req.Emoji),
			Riddle:          riddle,
			DiscoveredHints: []models.Hint{},
		},
		RevealCondition:  models.NormalizeRevealCondition(req.RevealType, req.RevealDetails),
		Scheduled:        scheduled,
		CustomMask:       req.CustomMask,
		HasVoiceMessage:  voicePath != "",
		VoiceMessagePath: voicePath,
		VoiceFilter:      voiceFilter,
		CreatedAt:        time.Now(),
	}

	messageID, err := s.messageRepo.Create(ctx, msg)
	if err != nil {
		return nil, err
	}

	if !scheduled.IsScheduled {
		s.notifier.NotifyNewMessage(ctx, recipient.UserID, messageID)
	}

	return &models.SendMessageResponse{
		MessageID: messageID,
		Success:   true,
		Details: models.SendMessageDetails{
			EmotionalFilter: msg.EmotionalFilter,
			HasEmoji:        msg.Clues.Emoji != "",
			HasHint:         msg.Clues.Hint != "",
			HasRiddle:       riddle != nil,
			HasVoiceMessage: msg.HasVoiceMessage,
			VoiceFilter:     voiceFilter,
		},
	}, nil
}

// ListReceived returns the recipient's visible inbox, decorated with
// the nickname appropriate to each message's reveal state.
func (s *MessageService) ListReceived(ctx context.Context, recipientID string) ([]models.InboxMessage, error) {
	messages, err := s.messageRepo.ListReceived(ctx, recipientID, time.Now())
	if err != nil {
		return nil, err
	}

	inbox := make([]models.InboxMessage, 0, len(messages))
	for _, msg := range messages {
		inbox = append(inbox, decorate(msg))
	}
	return inbox, nil
}

// Get returns one message the recipient owns, decorated.
func (s *MessageService) Get(ctx context.Context, messageID, recipientID string) (*models.InboxMessage, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}
	decorated := decorate(*msg)
	return &decorated, nil
}

// ScheduledCount reports how many messages are still waiting for their
// reveal date.
func (s *MessageService) ScheduledCount(ctx context.Context, recipientID string) (int, error) {
	messages, err := s.messageRepo.ListScheduled(ctx, recipientID, time.Now())
	if err != nil {
		return 0, err
	}
	return len(messages), nil
}

// ListScheduled returns pending scheduled messages, soonest first.
// Sender identity stays hidden even from the recipient.
func (s *MessageService) ListScheduled(ctx context.Context, recipientID string) ([]models.InboxMessage, error) {
	messages, err := s.messageRepo.ListScheduled(ctx, recipientID, time.Now())
	if err != nil {
		return nil, err
	}

	inbox := make([]models.InboxMessage, 0, len(messages))
	for _, msg := range messages {
		inbox = append(inbox, decorate(msg))
	}
	return inbox, nil
}

// MarkRead flags a message as read.
func (s *MessageService) MarkRead(ctx context.Context, messageID, recipientID string) error {
	_, err := s.messageRepo.MarkRead(ctx, messageID, recipientID)
	return err
}

// Analyze returns the AI reading of a message, computing and persisting
// it on first request. The fallback analyzer covers the unconfigured
// and unavailable cases so the endpoint always answers.
func (s *MessageService) Analyze(ctx context.Context, messageID, recipientID string) (*models.Analysis, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}
	if msg.AIAnalysis != nil {
		return msg.AIAnalysis, nil
	}

	result, err := s.analyze(ctx, msg.Content, msg.EmotionalFilter)
	if err != nil {
		return nil, err
	}
	if _, err := s.messageRepo.SetAnalysis(ctx, messageID, recipientID, result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (s *MessageService) analyze(ctx context.Context, content, emotion string) (models.Analysis, error) {
	if s.analyzer != nil && s.analyzer.Available() {
		result, err := s.analyzer.Analyze(ctx, content, emotion)
		if err == nil {
			return result, nil
		}
		log.Printf("analysis fell back: %v", err)
	}
	return s.fallback.Analyze(ctx, content, emotion)
}

// MakePublic publishes a received message to the public feed and
// records it on the recipient's profile.
func (s *MessageService) MakePublic(ctx context.Context, messageID, recipientID string) (*models.InboxMessage, error) {
	msg, err := s.messageRepo.MakePublic(ctx, messageID, recipientID)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.AddPublicMessage(ctx, recipientID, messageID); err != nil {
		log.Printf("failed to record public message on profile: %v", err)
	}
	decorated := decorate(*msg)
	return &decorated, nil
}

// Like bumps the like counter of a public message and returns the new
// count.
func (s *MessageService) Like(ctx context.Context, messageID string) (int, error) {
	return s.messageRepo.IncrementLikes(ctx, messageID)
}

// ListPublic returns the public feed, best first. Sender identity is
// always masked regardless of reveal state.
func (s *MessageService) ListPublic(ctx context.Context) ([]models.InboxMessage, error) {
	messages, err := s.messageRepo.ListPublic(ctx, publicFeedLimit)
	if err != nil {
		return nil, err
	}

	feed := make([]models.InboxMessage, 0, len(messages))
	for _, msg := range messages {
		msg.Sender = models.Sender{Nickname: models.DefaultNickname}
		feed = append(feed, models.InboxMessage{
			Message:          msg,
			DisplayNickname:  models.DefaultNickname,
			RevelationStatus: models.StatusAnonymous,
		})
	}
	return feed, nil
}

// EmotionalRadar tallies the emotional filters of the visible inbox,
// the data behind the client-side radar chart.
func (s *MessageService) EmotionalRadar(ctx context.Context, recipientID string) (map[string]int, error) {
	messages, err := s.messageRepo.ListReceived(ctx, recipientID, time.Now())
	if err != nil {
		return nil, err
	}

	radar := map[string]int{
		models.FilterLove:       0,
		models.FilterAnger:      0,
		models.FilterAdmiration: 0,
		models.FilterRegret:     0,
		models.FilterJoy:        0,
		models.FilterSadness:    0,
		models.FilterNeutral:    0,
	}
	for _, msg := range messages {
		radar[models.NormalizeEmotionalFilter(msg.EmotionalFilter)]++
	}
	return radar, nil
}

// AddFavorite bookmarks a message on the recipient's profile.
func (s *MessageService) AddFavorite(ctx context.Context, messageID, recipientID string) error {
	if _, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID); err != nil {
		return err
	}
	return s.userRepo.AddFavorite(ctx, recipientID, messageID)
}

// RemoveFavorite removes a bookmark.
func (s *MessageService) RemoveFavorite(ctx context.Context, messageID, recipientID string) error {
	return s.userRepo.RemoveFavorite(ctx, recipientID, messageID)
}

// VoicePath returns the stored audio path for a message the recipient
// owns.
func (s *MessageService) VoicePath(ctx context.Context, messageID, recipientID string) (string, error) {
	msg, err := s.messageRepo.GetForRecipient(ctx, messageID, recipientID)
	if err != nil {
		return "", err
	}
	if !msg.HasVoiceMessage || msg.VoiceMessagePath == "" {
		return "", models.ErrNotFound
	}
	return msg.VoiceMessagePath, nil
}

// decorate computes the display nickname and revelation status for one
// message. A registered sender's username stays masked until the name
// is discovered; the pseudonym shows once the identity is revealed.
func decorate(msg models.Message) models.InboxMessage {
	display := models.DefaultNickname
	status := models.StatusAnonymous
	switch {
	case msg.Sender.NameDiscovered:
		display = msg.Sender.Nickname
		status = models.StatusFullyRevealed
	case msg.Sender.IdentityRevealed:
		status = models.StatusNicknameOnly
		if msg.Sender.RealUser {
			display = models.MaskedNickname
		} else {
			display = msg.Sender.Nickname
		}
	}
	return models.InboxMessage{
		Message:          msg,
		DisplayNickname:  display,
		RevelationStatus: status,
		IsRegisteredUser: msg.Sender.RealUser,
	}
}

func firstLetter(s string) string {
	for _, r := range s {
		return strings.ToUpper(string(r))
	}
	return ""
}
