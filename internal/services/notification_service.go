package services

import (
	"context"
	"fmt"
	"log"

	"firebase.google.com/go/messaging"

	"github.com/Charles-Louisin/mystik-backend/internal/config"
	"github.com/Charles-Louisin/mystik-backend/internal/repository"
)

// NotificationService delivers FCM pushes. Every delivery is
// best-effort: a missing token or a send failure is logged, never
// surfaced to the caller.
type NotificationService struct {
	userRepo *repository.UserRepository
}

func NewNotificationService() *NotificationService {
	return &NotificationService{
		userRepo: repository.NewUserRepository(),
	}
}

// NotifyNewMessage tells a recipient a new anonymous message arrived.
func (s *NotificationService) NotifyNewMessage(ctx context.Context, recipientID, messageID string) {
	s.push(ctx, recipientID, "New message",
		"Someone sent you an anonymous message",
		map[string]string{
			"type":      "new_message",
			"messageId": messageID,
		})
}

// NotifySenderRevealed tells a registered sender their identity was
// uncovered on one of their messages.
func (s *NotificationService) NotifySenderRevealed(ctx context.Context, senderUserID, messageID string) {
	s.push(ctx, senderUserID, "Identity revealed",
		"The recipient discovered who sent your message",
		map[string]string{
			"type":      "identity_revealed",
			"messageId": messageID,
		})
}

func (s *NotificationService) push(ctx context.Context, userID, title, body string, data map[string]string) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		log.Printf("push skipped, user %s: %v", userID, err)
		return
	}
	if user.FCMToken == "" {
		log.Printf("push skipped, user %s has no FCM token", userID)
		return
	}

	if err := s.sendFCM(ctx, user.FCMToken, title, body, data); err != nil {
		log.Printf("failed to push to %s: %v", userID, err)
	}
}

func (s *NotificationService) sendFCM(ctx context.Context, fcmToken, title, body string, data map[string]string) error {
	client := config.MessagingClient
	if client == nil {
		return fmt.Errorf("messaging client not initialized")
	}

	message := &messaging.Message{
		Token: fcmToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}

	_, err := client.Send(ctx, message)
	if err != nil {
		return fmt.Errorf("failed to send FCM: %w", err)
	}
	return nil
}
