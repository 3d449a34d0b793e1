package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/Charles-Louisin/mystik-backend/internal/config"
	"github.com/Charles-Louisin/mystik-backend/internal/models"
	"github.com/Charles-Louisin/mystik-backend/internal/repository"
	"github.com/Charles-Louisin/mystik-backend/pkg/utils"
)

const tokenLifetime = 7 * 24 * time.Hour

type AuthService struct {
	userRepo *repository.UserRepository
}

func NewAuthService() *AuthService {
	return &AuthService{
		userRepo: repository.NewUserRepository(),
	}
}

// Register creates a new user account and returns a signed token.
func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	if err := utils.ValidateUsername(req.Username); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidRequest, err.Error())
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", models.ErrInvalidRequest, err.Error())
	}

	phone := strings.TrimSpace(req.Phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone number is required", models.ErrInvalidRequest)
	}

	// Check uniqueness of both identifiers
	if existing, _ := s.userRepo.GetUserByUsername(ctx, req.Username); existing != nil {
		return nil, fmt.Errorf("%w: username already taken", models.ErrInvalidRequest)
	}
	if existing, _ := s.userRepo.GetUserByPhone(ctx, phone); existing != nil {
		return nil, fmt.Errorf("%w: phone number already registered", models.ErrInvalidRequest)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	userID := generateUserID()
	user := &models.User{
		UserID:       userID,
		Username:     req.Username,
		PhoneNumber:  phone,
		PasswordHash: string(hashedPassword),
		UniqueLink:   generateUniqueLink(req.Username),
		RevealKeys:   0,
		CreatedAt:    time.Now(),
	}

	if err := s.userRepo.CreateUser(ctx, user); err != nil {
		return nil, err
	}

	token, err := signToken(userID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  toAuthUser(user),
	}, nil
}

// Login authenticates a user by phone number and password.
func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	user, err := s.userRepo.GetUserByPhone(ctx, strings.TrimSpace(req.Phone))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid phone number or password", models.ErrUnauthorized)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: invalid phone number or password", models.ErrUnauthorized)
	}

	token, err := signToken(user.UserID)
	if err != nil {
		return nil, err
	}

	return &models.AuthResponse{
		Token: token,
		User:  toAuthUser(user),
	}, nil
}

// Me returns the authenticated user's account.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.AuthUser, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u := toAuthUser(user)
	return &u, nil
}

// CheckUsername reports whether a username is free.
func (s *AuthService) CheckUsername(ctx context.Context, username string) (bool, error) {
	if err := utils.ValidateUsername(username); err != nil {
		return false, fmt.Errorf("%w: %s", models.ErrInvalidRequest, err.Error())
	}
	existing, _ := s.userRepo.GetUserByUsername(ctx, username)
	return existing == nil, nil
}

// CheckPhone reports whether a phone number is free.
func (s *AuthService) CheckPhone(ctx context.Context, phone string) (bool, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return false, fmt.Errorf("%w: phone number is required", models.ErrInvalidRequest)
	}
	existing, _ := s.userRepo.GetUserByPhone(ctx, phone)
	return existing == nil, nil
}

// ParseToken validates a signed token and returns the user ID it
// carries.
func ParseToken(tokenString string) (string, error) {
	secret, err := config.JWTSecret()
	if err != nil {
		return "", err
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return "", models.ErrUnauthorized
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", models.ErrUnauthorized
	}
	userID, _ := claims["userId"].(string)
	if userID == "" {
		return "", models.ErrUnauthorized
	}
	return userID, nil
}

func signToken(userID string) (string, error) {
	secret, err := config.JWTSecret()
	if err != nil {
		return "", err
	}

	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": userID,
		"iat":    now.Unix(),
		"exp":    now.Add(tokenLifetime).Unix(),
	})
	return token.SignedString(secret)
}

func toAuthUser(user *models.User) models.AuthUser {
	return models.AuthUser{
		UserID:     user.UserID,
		Username:   user.Username,
		Phone:      user.PhoneNumber,
		UniqueLink: user.UniqueLink,
		RevealKeys: user.RevealKeys,
		Premium:    user.Premium,
	}
}

// Helper functions

func generateUserID() string {
	b := make([]byte, 16)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}

func generateUniqueLink(username string) string {
	return "@" + username
}
