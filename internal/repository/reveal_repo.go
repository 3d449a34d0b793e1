package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Charles-Louisin/mystik-backend/internal/config"
	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

// DrawFunc selects the hint to grant for a message, given the hint
// types already consumed. It reports false when no eligible hint
// remains.
type DrawFunc func(msg *models.Message, used []string) (models.Hint, bool)

// RevealRepository groups the mutations that pair a message-state
// change with a key debit. Each operation runs in one transaction so a
// debit never commits without its matching grant.
type RevealRepository struct {
	client *firestore.Client
}

func NewRevealRepository() *RevealRepository {
	return &RevealRepository{
		client: config.FirestoreClient,
	}
}

func (r *RevealRepository) getMessage(tx *firestore.Transaction, ref *firestore.DocumentRef, recipientID string) (*models.Message, error) {
	doc, err := tx.Get(ref)
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
	if msg.Recipient != recipientID {
		return nil, models.ErrNotFound
	}
	return &msg, nil
}

func (r *RevealRepository) getBalance(tx *firestore.Transaction, ref *firestore.DocumentRef) (int, error) {
	doc, err := tx.Get(ref)
	if status.Code(err) == codes.NotFound {
		return 0, models.ErrNotFound
	}
	if err != nil {
		return 0, err
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return 0, err
	}
	return user.RevealKeys, nil
}

// RevealWithKey debits cost keys and marks the sender identity
// revealed, atomically. An already revealed message is returned as-is
// without any charge; the second return value reports whether a debit
// happened.
func (r *RevealRepository) RevealWithKey(ctx context.Context, messageID, recipientID, userID string, cost int) (*models.Message, bool, error) {
	msgRef := r.client.Collection(messagesCollection).Doc(messageID)
	userRef := r.client.Collection(usersCollection).Doc(userID)

	var result *models.Message
	charged := false
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		msg, err := r.getMessage(tx, msgRef, recipientID)
		if err != nil {
			return err
		}
		if msg.Sender.IdentityRevealed {
			result = msg
			charged = false
			return nil
		}

		balance, err := r.getBalance(tx, userRef)
		if err != nil {
			return err
		}
		if balance < cost {
			return models.ErrInsufficientBalance
		}

		if err := tx.Update(userRef, []firestore.Update{
			{Path: "revealKeys", Value: balance - cost},
		}); err != nil {
			return err
		}
		if err := tx.Update(msgRef, []firestore.Update{
			{Path: "sender.identityRevealed", Value: true},
		}); err != nil {
			return err
		}

		msg.Sender.IdentityRevealed = true
		result = msg
		charged = true
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, charged, nil
}

// SetRevealFlags sets the disclosure flags without any charge. Used
// for riddle-based reveals and name discovery. Discovery implies the
// identity flag so the two never diverge.
func (r *RevealRepository) SetRevealFlags(ctx context.Context, messageID, recipientID string, identity, name bool) (*models.Message, error) {
	msgRef := r.client.Collection(messagesCollection).Doc(messageID)

	var result *models.Message
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		msg, err := r.getMessage(tx, msgRef, recipientID)
		if err != nil {
			return err
		}

		if name {
			identity = true
		}
		updates := []firestore.Update{}
		if identity && !msg.Sender.IdentityRevealed {
			updates = append(updates, firestore.Update{Path: "sender.identityRevealed", Value: true})
			msg.Sender.IdentityRevealed = true
		}
		if name && !msg.Sender.NameDiscovered {
			updates = append(updates, firestore.Update{Path: "sender.nameDiscovered", Value: true})
			msg.Sender.NameDiscovered = true
		}
		result = msg
		if len(updates) == 0 {
			return nil
		}
		return tx.Update(msgRef, updates)
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// GrantHint appends a hint to the message ledger without charging.
// A hint type already present is not duplicated; the second return
// value reports whether the hint was recorded.
func (r *RevealRepository) GrantHint(ctx context.Context, messageID, recipientID string, hint models.Hint) (*models.Message, bool, error) {
	msgRef := r.client.Collection(messagesCollection).Doc(messageID)

	var result *models.Message
	granted := false
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		msg, err := r.getMessage(tx, msgRef, recipientID)
		if err != nil {
			return err
		}
		result = msg
		granted = false
		for _, h := range msg.Clues.DiscoveredHints {
			if h.Type == hint.Type {
				return nil
			}
		}

		msg.Clues.DiscoveredHints = append(msg.Clues.DiscoveredHints, hint)
		granted = true
		return tx.Update(msgRef, []firestore.Update{
			{Path: "clues.discoveredHints", Value: msg.Clues.DiscoveredHints},
		})
	})
	if err != nil {
		return nil, false, err
	}
	return result, granted, nil
}

// GrantHintCharged draws a hint and debits cost keys in one
// transaction. The draw sees the persisted ledger, so a concurrent
// grant cannot produce a duplicate type. When the draw finds no
// eligible hint the transaction aborts with ErrNoHintsAvailable before
// any debit.
func (r *RevealRepository) GrantHintCharged(ctx context.Context, messageID, recipientID, userID string, cost int, draw DrawFunc) (models.Hint, *models.Message, error) {
	msgRef := r.client.Collection(messagesCollection).Doc(messageID)
	userRef := r.client.Collection(usersCollection).Doc(userID)

	var (
		result *models.Message
		hint   models.Hint
	)
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		msg, err := r.getMessage(tx, msgRef, recipientID)
		if err != nil {
			return err
		}

		drawn, ok := draw(msg, msg.UsedHintTypes())
		if !ok {
			return models.ErrNoHintsAvailable
		}

		balance, err := r.getBalance(tx, userRef)
		if err != nil {
			return err
		}
		if balance < cost {
			return models.ErrInsufficientBalance
		}

		msg.Clues.DiscoveredHints = append(msg.Clues.DiscoveredHints, drawn)
		if err := tx.Update(userRef, []firestore.Update{
			{Path: "revealKeys", Value: balance - cost},
		}); err != nil {
			return err
		}
		if err := tx.Update(msgRef, []firestore.Update{
			{Path: "clues.discoveredHints", Value: msg.Clues.DiscoveredHints},
		}); err != nil {
			return err
		}

		hint = drawn
		result = msg
		return nil
	})
	if err != nil {
		return models.Hint{}, nil, err
	}
	return hint, result, nil
}
