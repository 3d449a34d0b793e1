package repository

import (
	"context"
	"sort"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Charles-Louisin/mystik-backend/internal/config"
	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

const messagesCollection = "messages"

type MessageRepository struct {
	client *firestore.Client
}

func NewMessageRepository() *MessageRepository {
	return &MessageRepository{
		client: config.FirestoreClient,
	}
}

// Create persists a new message and assigns its document ID.
func (r *MessageRepository) Create(ctx context.Context, msg *models.Message) (string, error) {
	ref := r.client.Collection(messagesCollection).NewDoc()
	msg.MessageID = ref.ID
	if _, err := ref.Set(ctx, msg); err != nil {
		return "", err
	}
	return ref.ID, nil
}

// GetByID retrieves a message without an ownership check. Used only by
// the public voice-message and like paths.
func (r *MessageRepository) GetByID(ctx context.Context, messageID string) (*models.Message, error) {
	doc, err := r.client.Collection(messagesCollection).Doc(messageID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var msg models.Message
	if err := doc.DataTo(&msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// GetForRecipient retrieves a message owned by the given recipient. A
// message owned by someone else is reported as not found.
func (r *MessageRepository) GetForRecipient(ctx context.Context, messageID, recipientID string) (*models.Message, error) {
	msg, err := r.GetByID(ctx, messageID)
	if err != nil {
		return nil, err
	}
	if msg.Recipient != recipientID {
		return nil, models.ErrNotFound
	}
	return msg, nil
}

// ListReceived returns the recipient's inbox, newest first, excluding
// scheduled messages whose reveal date has not passed. Firestore cannot
// express the disjunction in one query, so two queries are merged.
func (r *MessageRepository) ListReceived(ctx context.Context, recipientID string, now time.Time) ([]models.Message, error) {
	unscheduled := r.client.Collection(messagesCollection).
		Where("recipient", "==", recipientID).
		Where("scheduled.isScheduled", "==", false).
		Documents(ctx)
	released := r.client.Collection(messagesCollection).
		Where("recipient", "==", recipientID).
		Where("scheduled.isScheduled", "==", true).
		Where("scheduled.revealDate", "<=", now).
		Documents(ctx)

	var messages []models.Message
	for _, iter := range []*firestore.DocumentIterator{unscheduled, released} {
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				break
			}
			if err != nil {
				return nil, err
			}

			var msg models.Message
			if err := doc.DataTo(&msg); err != nil {
				continue
			}
			if !msg.Scheduled.Released(now) {
				continue
			}
			messages = append(messages, msg)
		}
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].CreatedAt.After(messages[j].CreatedAt)
	})
	return messages, nil
}

// ListByRecipient returns every message for a recipient, scheduled or
// not. Used for emotional-profile generation.
func (r *MessageRepository) ListByRecipient(ctx context.Context, recipientID string) ([]models.Message, error) {
	iter := r.client.Collection(messagesCollection).
		Where("recipient", "==", recipientID).
		Documents(ctx)

	var messages []models.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var msg models.Message
		if err := doc.DataTo(&msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// ListScheduled returns messages still waiting for their reveal date,
// soonest first.
func (r *MessageRepository) ListScheduled(ctx context.Context, recipientID string, now time.Time) ([]models.Message, error) {
	iter := r.client.Collection(messagesCollection).
		Where("recipient", "==", recipientID).
		Where("scheduled.isScheduled", "==", true).
		Where("scheduled.revealDate", ">", now).
		Documents(ctx)

	var messages []models.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var msg models.Message
		if err := doc.DataTo(&msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}

	sort.Slice(messages, func(i, j int) bool {
		return messages[i].Scheduled.RevealDate.Before(messages[j].Scheduled.RevealDate)
	})
	return messages, nil
}

// ListPublic returns the top public messages by likes then recency.
func (r *MessageRepository) ListPublic(ctx context.Context, limit int) ([]models.Message, error) {
	iter := r.client.Collection(messagesCollection).
		Where("isPublic", "==", true).
		OrderBy("likes", firestore.Desc).
		OrderBy("createdAt", firestore.Desc).
		Limit(limit).
		Documents(ctx)

	var messages []models.Message
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var msg models.Message
		if err := doc.DataTo(&msg); err != nil {
			continue
		}
		messages = append(messages, msg)
	}
	return messages, nil
}

// updateOwned applies updates to a message inside a transaction,
// conditioned on the recipient owning it, and returns the updated
// message.
func (r *MessageRepository) updateOwned(ctx context.Context, messageID, recipientID string, updates []firestore.Update) (*models.Message, error) {
	ref := r.client.Collection(messagesCollection).Doc(messageID)
	var updated models.Message
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}

		if err := doc.DataTo(&updated); err != nil {
			return err
		}
		if updated.Recipient != recipientID {
			return models.ErrNotFound
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return nil, err
	}
	applyLocal(&updated, updates)
	return &updated, nil
}

// applyLocal mirrors the committed field updates onto the in-memory
// copy so callers get the post-update view without a second read.
func applyLocal(msg *models.Message, updates []firestore.Update) {
	for _, u := range updates {
		switch u.Path {
		case "read":
			msg.Read = u.Value.(bool)
		case "isPublic":
			msg.IsPublic = u.Value.(bool)
		case "sender.identityRevealed":
			msg.Sender.IdentityRevealed = u.Value.(bool)
		case "sender.nameDiscovered":
			msg.Sender.NameDiscovered = u.Value.(bool)
		case "aiAnalysis":
			a := u.Value.(models.Analysis)
			msg.AIAnalysis = &a
		}
	}
}

// MarkRead marks a message read.
func (r *MessageRepository) MarkRead(ctx context.Context, messageID, recipientID string) (*models.Message, error) {
	return r.updateOwned(ctx, messageID, recipientID, []firestore.Update{
		{Path: "read", Value: true},
	})
}

// MakePublic flips the public flag.
func (r *MessageRepository) MakePublic(ctx context.Context, messageID, recipientID string) (*models.Message, error) {
	return r.updateOwned(ctx, messageID, recipientID, []firestore.Update{
		{Path: "isPublic", Value: true},
	})
}

// SetAnalysis persists the AI analysis result.
func (r *MessageRepository) SetAnalysis(ctx context.Context, messageID, recipientID string, analysis models.Analysis) (*models.Message, error) {
	return r.updateOwned(ctx, messageID, recipientID, []firestore.Update{
		{Path: "aiAnalysis", Value: analysis},
	})
}

// IncrementLikes atomically bumps the like counter of a public message
// and returns the new count.
func (r *MessageRepository) IncrementLikes(ctx context.Context, messageID string) (int, error) {
	ref := r.client.Collection(messagesCollection).Doc(messageID)
	likes := 0
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}

		var msg models.Message
		if err := doc.DataTo(&msg); err != nil {
			return err
		}
		if !msg.IsPublic {
			return models.ErrNotFound
		}
		likes = msg.Likes + 1
		return tx.Update(ref, []firestore.Update{
			{Path: "likes", Value: likes},
		})
	})
	if err != nil {
		return 0, err
	}
	return likes, nil
}
