package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
	"github.com/Charles-Louisin/mystik-backend/internal/services"
)

type UserHandler struct {
	userService *services.UserService
	keyService  *services.KeyService
}

func NewUserHandler() *UserHandler {
	return &UserHandler{
		userService: services.NewUserService(),
		keyService:  services.NewKeyService(),
	}
}

// Profile returns the authenticated user's account
func (h *UserHandler) Profile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	user, err := h.userService.Profile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateProfile applies profile field updates
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.userService.UpdateProfile(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// UpdateFCMToken registers a device token
func (h *UserHandler) UpdateFCMToken(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.UpdateFCMTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.UpdateFCMToken(c.Request.Context(), userID, req.FCMToken); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// PublicByLink resolves a unique link to a public profile
func (h *UserHandler) PublicByLink(c *gin.Context) {
	profile, err := h.userService.PublicByLink(c.Request.Context(), c.Param("link"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"profile": profile})
}

// CheckLink reports whether a unique link resolves to an account
func (h *UserHandler) CheckLink(c *gin.Context) {
	exists, err := h.userService.LinkExists(c.Request.Context(), c.Param("link"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"exists": exists})
}

// ListMasks returns the user's custom masks
func (h *UserHandler) ListMasks(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	masks, err := h.userService.Masks(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"masks": masks})
}

// GetEmotionalProfile returns the stored emotional profile
func (h *UserHandler) GetEmotionalProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.userService.EmotionalProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"emotionalProfile": profile})
}

// Search finds users by name or link fragment
func (h *UserHandler) Search(c *gin.Context) {
	results, err := h.userService.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": results})
}

// AddMask creates a custom mask
func (h *UserHandler) AddMask(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.AddMaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	masks, err := h.userService.AddMask(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"masks": masks})
}

// ActivateMask makes one mask active
func (h *UserHandler) ActivateMask(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	masks, err := h.userService.ActivateMask(c.Request.Context(), userID, c.Param("maskId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"masks": masks})
}

// DeleteMask removes a mask
func (h *UserHandler) DeleteMask(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	masks, err := h.userService.DeleteMask(c.Request.Context(), userID, c.Param("maskId"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"masks": masks})
}

// SetPremium flips the premium flag
func (h *UserHandler) SetPremium(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.PremiumRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.SetPremium(c.Request.Context(), userID, req.Premium); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"premium": req.Premium})
}

// EarnKeys credits keys for an earning method
func (h *UserHandler) EarnKeys(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.EarnKeyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.keyService.Earn(c.Request.Context(), userID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// KeyBalance returns the current key balance
func (h *UserHandler) KeyBalance(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	balance, err := h.keyService.Balance(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"revealKeys": balance})
}

// GenerateEmotionalProfile recomputes the emotional profile
func (h *UserHandler) GenerateEmotionalProfile(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	profile, err := h.userService.GenerateEmotionalProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"emotionalProfile": profile})
}

// SetEmotionalRadar toggles the opt-in radar
func (h *UserHandler) SetEmotionalRadar(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req models.EmotionalRadarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.userService.SetEmotionalRadar(c.Request.Context(), userID, *req.Enabled); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"enabled": *req.Enabled})
}
