package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
	"github.com/Charles-Louisin/mystik-backend/internal/repository"
)

const searchLimit = 10

type UserService struct {
	userRepo    *repository.UserRepository
	messageRepo *repository.MessageRepository
}

func NewUserService() *UserService {
	return &UserService{
		userRepo:    repository.NewUserRepository(),
		messageRepo: repository.NewMessageRepository(),
	}
}

// Profile returns the authenticated user's full account.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.userRepo.GetUserByID(ctx, userID)
}

// UpdateProfile applies the provided profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, req *models.UpdateProfileRequest) (*models.User, error) {
	if err := s.userRepo.UpdateProfile(ctx, userID, req); err != nil {
		return nil, err
	}
	return s.userRepo.GetUserByID(ctx, userID)
}

// UpdateFCMToken registers a device token for push delivery.
func (s *UserService) UpdateFCMToken(ctx context.Context, userID, fcmToken string) error {
	if fcmToken == "" {
		return fmt.Errorf("%w: fcm token cannot be empty", models.ErrInvalidRequest)
	}
	return s.userRepo.UpdateFCMToken(ctx, userID, fcmToken)
}

// PublicByLink resolves a unique link to the public profile behind it.
// Links are stored with a leading @; bare usernames are accepted too.
func (s *UserService) PublicByLink(ctx context.Context, uniqueLink string) (*models.PublicProfile, error) {
	user, err := s.userRepo.GetUserByUniqueLink(ctx, normalizeLink(uniqueLink))
	if err != nil {
		return nil, err
	}
	return &models.PublicProfile{
		UniqueLink:       user.UniqueLink,
		ProfileImage:     user.ProfileImage,
		EmotionalProfile: user.EmotionalProfile,
	}, nil
}

// LinkExists reports whether a unique link resolves to an account.
func (s *UserService) LinkExists(ctx context.Context, uniqueLink string) (bool, error) {
	_, err := s.userRepo.GetUserByUniqueLink(ctx, normalizeLink(uniqueLink))
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Masks returns the user's custom masks.
func (s *UserService) Masks(ctx context.Context, userID string) ([]models.CustomMask, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.CustomMasks == nil {
		return []models.CustomMask{}, nil
	}
	return user.CustomMasks, nil
}

// EmotionalProfile returns the stored profile without recomputing it.
func (s *UserService) EmotionalProfile(ctx context.Context, userID string) (*models.EmotionalProfile, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &user.EmotionalProfile, nil
}

// Search finds users by username or link fragment.
func (s *UserService) Search(ctx context.Context, query string) ([]models.UserSearchResult, error) {
	return s.userRepo.SearchUsers(ctx, query, searchLimit)
}

// AddMask creates a custom mask. Premium masks require a premium
// account.
func (s *UserService) AddMask(ctx context.Context, userID string, req *models.AddMaskRequest) ([]models.CustomMask, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.IsPremium && !user.Premium {
		return nil, fmt.Errorf("%w: premium masks require a premium account", models.ErrUnauthorized)
	}

	mask := models.CustomMask{
		MaskID:    generateMaskID(),
		Name:      req.Name,
		ImageURL:  req.ImageURL,
		IsPremium: req.IsPremium,
		Active:    len(user.CustomMasks) == 0,
	}
	return s.userRepo.AddMask(ctx, userID, mask)
}

// ActivateMask makes one mask active and deactivates the rest.
func (s *UserService) ActivateMask(ctx context.Context, userID, maskID string) ([]models.CustomMask, error) {
	return s.userRepo.ActivateMask(ctx, userID, maskID)
}

// DeleteMask removes a mask.
func (s *UserService) DeleteMask(ctx context.Context, userID, maskID string) ([]models.CustomMask, error) {
	return s.userRepo.DeleteMask(ctx, userID, maskID)
}

// SetPremium flips the premium flag directly, the payment itself is
// handled outside this service.
func (s *UserService) SetPremium(ctx context.Context, userID string, premium bool) error {
	return s.userRepo.SetPremium(ctx, userID, premium)
}

// SetEmotionalRadar toggles the opt-in radar.
func (s *UserService) SetEmotionalRadar(ctx context.Context, userID string, enabled bool) error {
	return s.userRepo.SetEmotionalRadar(ctx, userID, models.EmotionalRadar{
		Enabled:     enabled,
		LastUpdated: time.Now(),
	})
}

// GenerateEmotionalProfile derives profile traits from the emotional
// filters of every message the user has received, most frequent first,
// and persists the result.
func (s *UserService) GenerateEmotionalProfile(ctx context.Context, userID string) (*models.EmotionalProfile, error) {
	messages, err := s.messageRepo.ListByRecipient(ctx, userID)
	if err != nil {
		return nil, err
	}

	counts := map[string]int{}
	for _, msg := range messages {
		counts[models.NormalizeEmotionalFilter(msg.EmotionalFilter)]++
	}

	type emotionCount struct {
		emotion string
		count   int
	}
	ranked := make([]emotionCount, 0, len(counts))
	for emotion, count := range counts {
		ranked = append(ranked, emotionCount{emotion, count})
	}
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].emotion < ranked[j].emotion
	})

	traits := []string{}
	for i, r := range ranked {
		if i == 3 {
			break
		}
		traits = append(traits, emotionTrait(r.emotion))
	}

	profile := models.EmotionalProfile{
		Traits:      traits,
		LastUpdated: time.Now(),
	}
	if err := s.userRepo.SetEmotionalProfile(ctx, userID, profile); err != nil {
		return nil, err
	}
	return &profile, nil
}

func emotionTrait(emotion string) string {
	switch emotion {
	case models.FilterLove:
		return "deeply appreciated"
	case models.FilterJoy:
		return "brings joy to others"
	case models.FilterAdmiration:
		return "widely admired"
	case models.FilterAnger:
		return "stirs strong reactions"
	case models.FilterRegret:
		return "missed by someone"
	case models.FilterSadness:
		return "confided in"
	default:
		return "keeps people curious"
	}
}

func normalizeLink(link string) string {
	link = strings.TrimSpace(link)
	if link != "" && !strings.HasPrefix(link, "@") {
		link = "@" + link
	}
	return link
}

func generateMaskID() string {
	b := make([]byte, 8)
	rand.Read(b)
	return "mask_" + base64.RawURLEncoding.EncodeToString(b)
}
