package services

import (
	"context"
	"fmt"
	"time"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
	"github.com/Charles-Louisin/mystik-backend/internal/repository"
)

type KeyService struct {
	userRepo *repository.UserRepository
}

func NewKeyService() *KeyService {
	return &KeyService{
		userRepo: repository.NewUserRepository(),
	}
}

// EarnResult reports a successful key credit.
type EarnResult struct {
	KeysEarned int  `json:"keysEarned"`
	RevealKeys int  `json:"revealKeys"`
	Premium    bool `json:"premium"`
}

// Earn credits the keys a method awards and logs the achievement. A
// premium purchase also flips the premium flag.
func (s *KeyService) Earn(ctx context.Context, userID string, req *models.EarnKeyRequest) (*EarnResult, error) {
	keys := models.KeysForMethod(req.Method)
	if keys == 0 {
		return nil, fmt.Errorf("%w: unknown earning method %q", models.ErrInvalidRequest, req.Method)
	}

	achievement := models.Achievement{
		Type: req.Method,
		Date: time.Now(),
		Details: map[string]string{
			"keysEarned": fmt.Sprintf("%d", keys),
		},
	}
	premium := req.Method == models.EarnPremiumPurchase

	balance, err := s.userRepo.CreditKeys(ctx, userID, keys, achievement, premium)
	if err != nil {
		return nil, err
	}

	return &EarnResult{
		KeysEarned: keys,
		RevealKeys: balance,
		Premium:    premium,
	}, nil
}

// Balance returns the current key balance.
func (s *KeyService) Balance(ctx context.Context, userID string) (int, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return user.RevealKeys, nil
}
