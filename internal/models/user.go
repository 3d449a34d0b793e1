package models

import "time"

// Key-earning methods and the keys each one awards.
const (
	EarnAdView          = "ad_view"
	EarnReferral        = "referral"
	EarnSocialShare     = "social_share"
	EarnPremiumPurchase = "premium_purchase"
)

// KeysForMethod returns the number of reveal keys a method awards, or 0
// for an unknown method.
func KeysForMethod(method string) int {
	switch method {
	case EarnAdView:
		return 1
	case EarnReferral:
		return 3
	case EarnSocialShare:
		return 2
	case EarnPremiumPurchase:
		return 10
	default:
		return 0
	}
}

// Achievement is one entry of the key-earning audit log.
type Achievement struct {
	Type    string            `firestore:"type" json:"type"`
	Date    time.Time         `firestore:"date" json:"date"`
	Details map[string]string `firestore:"details" json:"details,omitempty"`
}

// CustomMask is a user-owned avatar mask. At most one is active.
type CustomMask struct {
	MaskID    string `firestore:"maskId" json:"maskId"`
	Name      string `firestore:"name" json:"name"`
	ImageURL  string `firestore:"imageUrl" json:"imageUrl"`
	IsPremium bool   `firestore:"isPremium" json:"isPremium"`
	Active    bool   `firestore:"active" json:"active"`
}

// EmotionalProfile aggregates the emotional tone of received messages.
type EmotionalProfile struct {
	Traits      []string  `firestore:"traits" json:"traits"`
	LastUpdated time.Time `firestore:"lastUpdated" json:"lastUpdated"`
}

// EmotionalRadar is the opt-in local emotion sampling setting.
type EmotionalRadar struct {
	Enabled     bool      `firestore:"enabled" json:"enabled"`
	LastUpdated time.Time `firestore:"lastUpdated" json:"lastUpdated"`
}

// User is a registered account. RevealKeys never goes negative; debits
// are checked and applied in one transactional step.
type User struct {
	UserID           string           `firestore:"userId" json:"userId"`
	Username         string           `firestore:"username" json:"username"`
	PhoneNumber      string           `firestore:"phoneNumber" json:"phoneNumber"`
	PasswordHash     string           `firestore:"passwordHash" json:"-"`
	UniqueLink       string           `firestore:"uniqueLink" json:"uniqueLink"`
	ProfileImage     string           `firestore:"profileImage" json:"profileImage,omitempty"`
	Location         Location         `firestore:"location" json:"location"`
	RevealKeys       int              `firestore:"revealKeys" json:"revealKeys"`
	Premium          bool             `firestore:"premium" json:"premium"`
	FCMToken         string           `firestore:"fcmToken" json:"-"`
	CustomMasks      []CustomMask     `firestore:"customMasks" json:"customMasks"`
	FavoriteMessages []string         `firestore:"favoriteMessages" json:"favoriteMessages"`
	PublicMessages   []string         `firestore:"publicMessages" json:"publicMessages"`
	Achievements     []Achievement    `firestore:"achievements" json:"achievements"`
	EmotionalProfile EmotionalProfile `firestore:"emotionalProfile" json:"emotionalProfile"`
	EmotionalRadar   EmotionalRadar   `firestore:"localEmotionalRadar" json:"localEmotionalRadar"`
	CreatedAt        time.Time        `firestore:"createdAt" json:"createdAt"`
}

// RegisterRequest is the registration payload.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=30"`
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest authenticates by phone number.
type LoginRequest struct {
	Phone    string `json:"phone" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AuthResponse carries the signed token and the public user fields.
type AuthResponse struct {
	Token string   `json:"token"`
	User  AuthUser `json:"user"`
}

type AuthUser struct {
	UserID     string `json:"id"`
	Username   string `json:"username"`
	Phone      string `json:"phoneNumber"`
	UniqueLink string `json:"uniqueLink"`
	RevealKeys int    `json:"revealKeys"`
	Premium    bool   `json:"premium"`
}

// UpdateProfileRequest carries optional profile updates.
type UpdateProfileRequest struct {
	ProfileImage string    `json:"profileImage"`
	PhoneNumber  string    `json:"phoneNumber"`
	Location     *Location `json:"location"`
}

// UpdateFCMTokenRequest registers a device token for push delivery.
type UpdateFCMTokenRequest struct {
	FCMToken string `json:"fcmToken" binding:"required"`
}

// AddMaskRequest creates a custom mask.
type AddMaskRequest struct {
	Name      string `json:"name" binding:"required"`
	ImageURL  string `json:"imageUrl" binding:"required"`
	IsPremium bool   `json:"isPremium"`
}

// EmotionalProfileRequest sets the profile traits directly.
type EmotionalProfileRequest struct {
	Traits []string `json:"traits" binding:"required"`
}

// EmotionalRadarRequest toggles the radar.
type EmotionalRadarRequest struct {
	Enabled *bool `json:"enabled" binding:"required"`
}

// PremiumRequest flips the premium flag.
type PremiumRequest struct {
	Premium bool `json:"premium"`
}

// PublicProfile is the subset of a user visible through a public link.
type PublicProfile struct {
	UniqueLink       string           `json:"uniqueLink"`
	ProfileImage     string           `json:"profileImage,omitempty"`
	EmotionalProfile EmotionalProfile `json:"emotionalProfile"`
}

// UserSearchResult is one row of a public user search.
type UserSearchResult struct {
	Username     string `json:"username"`
	UniqueLink   string `json:"uniqueLink"`
	ProfileImage string `json:"profileImage,omitempty"`
}
