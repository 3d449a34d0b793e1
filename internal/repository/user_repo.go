package repository

import (
	"context"
	"strings"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Charles-Louisin/mystik-backend/internal/config"
	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

const usersCollection = "users"

type UserRepository struct {
	client *firestore.Client
}

func NewUserRepository() *UserRepository {
	return &UserRepository{
		client: config.FirestoreClient,
	}
}

// CreateUser creates a new user in Firestore
func (r *UserRepository) CreateUser(ctx context.Context, user *models.User) error {
	_, err := r.client.Collection(usersCollection).Doc(user.UserID).Set(ctx, user)
	return err
}

// GetUserByID retrieves a user by their ID
func (r *UserRepository) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	doc, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *UserRepository) getByField(ctx context.Context, field, value string) (*models.User, error) {
	iter := r.client.Collection(usersCollection).Where(field, "==", value).Limit(1).Documents(ctx)
	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByUsername retrieves a user by their username
func (r *UserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.getByField(ctx, "username", username)
}

// GetUserByPhone retrieves a user by their phone number
func (r *UserRepository) GetUserByPhone(ctx context.Context, phone string) (*models.User, error) {
	return r.getByField(ctx, "phoneNumber", phone)
}

// GetUserByUniqueLink resolves a public @username link to its owner.
func (r *UserRepository) GetUserByUniqueLink(ctx context.Context, uniqueLink string) (*models.User, error) {
	return r.getByField(ctx, "uniqueLink", uniqueLink)
}

// ListUsers returns every user. Backs the in-Go search filter; fine for
// the current user base, swap for a search index if it grows.
func (r *UserRepository) ListUsers(ctx context.Context) ([]*models.User, error) {
	iter := r.client.Collection(usersCollection).Documents(ctx)

	var users []*models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, err
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			continue
		}
		users = append(users, &user)
	}
	return users, nil
}

// SearchUsers matches username or uniqueLink case-insensitively.
// Firestore has no case-insensitive queries, so filtering happens here,
// as with the rest of the user scans.
func (r *UserRepository) SearchUsers(ctx context.Context, query string, limit int) ([]models.UserSearchResult, error) {
	if len(strings.TrimSpace(query)) < 2 {
		return []models.UserSearchResult{}, nil
	}

	users, err := r.ListUsers(ctx)
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	results := []models.UserSearchResult{}
	for _, user := range users {
		if strings.Contains(strings.ToLower(user.Username), queryLower) ||
			strings.Contains(strings.ToLower(user.UniqueLink), queryLower) {
			results = append(results, models.UserSearchResult{
				Username:     user.Username,
				UniqueLink:   user.UniqueLink,
				ProfileImage: user.ProfileImage,
			})
			if len(results) >= limit {
				break
			}
		}
	}
	return results, nil
}

// CreditKeys adds n keys, appends the achievement audit entry, and
// optionally flips premium. Returns the new balance.
func (r *UserRepository) CreditKeys(ctx context.Context, userID string, n int, achievement models.Achievement, setPremium bool) (int, error) {
	ref := r.client.Collection(usersCollection).Doc(userID)
	newBalance := 0
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			return err
		}
		newBalance = user.RevealKeys + n
		updates := []firestore.Update{
			{Path: "revealKeys", Value: newBalance},
			{Path: "achievements", Value: firestore.ArrayUnion(achievement)},
		}
		if setPremium {
			updates = append(updates, firestore.Update{Path: "premium", Value: true})
		}
		return tx.Update(ref, updates)
	})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// UpdateFCMToken updates the user's FCM token
func (r *UserRepository) UpdateFCMToken(ctx context.Context, userID, fcmToken string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "fcmToken", Value: fcmToken},
	})
	return err
}

// UpdateProfile applies the non-empty profile fields.
func (r *UserRepository) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) error {
	var updates []firestore.Update
	if req.ProfileImage != "" {
		updates = append(updates, firestore.Update{Path: "profileImage", Value: req.ProfileImage})
	}
	if req.PhoneNumber != "" {
		updates = append(updates, firestore.Update{Path: "phoneNumber", Value: req.PhoneNumber})
	}
	if req.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: *req.Location})
	}
	if len(updates) == 0 {
		return nil
	}
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, updates)
	return err
}

// SetPremium sets the premium flag.
func (r *UserRepository) SetPremium(ctx context.Context, userID string, premium bool) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "premium", Value: premium},
	})
	return err
}

// SetEmotionalProfile replaces the emotional profile.
func (r *UserRepository) SetEmotionalProfile(ctx context.Context, userID string, profile models.EmotionalProfile) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "emotionalProfile", Value: profile},
	})
	return err
}

// SetEmotionalRadar toggles the radar setting.
func (r *UserRepository) SetEmotionalRadar(ctx context.Context, userID string, radar models.EmotionalRadar) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "localEmotionalRadar", Value: radar},
	})
	return err
}

// AddMask appends a custom mask.
func (r *UserRepository) AddMask(ctx context.Context, userID string, mask models.CustomMask) ([]models.CustomMask, error) {
	return r.updateMasks(ctx, userID, func(masks []models.CustomMask) ([]models.CustomMask, error) {
		return append(masks, mask), nil
	})
}

// ActivateMask marks one mask active and all others inactive.
func (r *UserRepository) ActivateMask(ctx context.Context, userID, maskID string) ([]models.CustomMask, error) {
	return r.updateMasks(ctx, userID, func(masks []models.CustomMask) ([]models.CustomMask, error) {
		found := false
		for i := range masks {
			masks[i].Active = masks[i].MaskID == maskID
			if masks[i].Active {
				found = true
			}
		}
		if !found {
			return nil, models.ErrNotFound
		}
		return masks, nil
	})
}

// DeleteMask removes a mask.
func (r *UserRepository) DeleteMask(ctx context.Context, userID, maskID string) ([]models.CustomMask, error) {
	return r.updateMasks(ctx, userID, func(masks []models.CustomMask) ([]models.CustomMask, error) {
		kept := masks[:0]
		for _, m := range masks {
			if m.MaskID != maskID {
				kept = append(kept, m)
			}
		}
		return kept, nil
	})
}

func (r *UserRepository) updateMasks(ctx context.Context, userID string, mutate func([]models.CustomMask) ([]models.CustomMask, error)) ([]models.CustomMask, error) {
	ref := r.client.Collection(usersCollection).Doc(userID)
	var result []models.CustomMask
	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		doc, err := tx.Get(ref)
		if status.Code(err) == codes.NotFound {
			return models.ErrNotFound
		}
		if err != nil {
			return err
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			return err
		}
		masks, err := mutate(user.CustomMasks)
		if err != nil {
			return err
		}
		if masks == nil {
			masks = []models.CustomMask{}
		}
		result = masks
		return tx.Update(ref, []firestore.Update{
			{Path: "customMasks", Value: masks},
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// AddFavorite adds a message reference to the favorites list.
func (r *UserRepository) AddFavorite(ctx context.Context, userID, messageID string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "favoriteMessages", Value: firestore.ArrayUnion(messageID)},
	})
	return err
}

// RemoveFavorite removes a message reference from the favorites list.
func (r *UserRepository) RemoveFavorite(ctx context.Context, userID, messageID string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "favoriteMessages", Value: firestore.ArrayRemove(messageID)},
	})
	return err
}

// AddPublicMessage records a message made public by this user.
func (r *UserRepository) AddPublicMessage(ctx context.Context, userID, messageID string) error {
	_, err := r.client.Collection(usersCollection).Doc(userID).Update(ctx, []firestore.Update{
		{Path: "publicMessages", Value: firestore.ArrayUnion(messageID)},
	})
	return err
}
