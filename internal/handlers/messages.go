package handlers

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Charles-Louisin/mystik-backend/internal/config"
	"github.com/Charles-Louisin/mystik-backend/internal/models"
	"github.com/Charles-Louisin/mystik-backend/internal/services"
	"github.com/Charles-Louisin/mystik-backend/internal/voice"
)

const maxVoiceUploadBytes = 10 << 20

type MessageHandler struct {
	messageService *services.MessageService
}

func NewMessageHandler() *MessageHandler {
	return &MessageHandler{
		messageService: services.NewMessageService(),
	}
}

// Send stores a new anonymous text message
func (h *MessageHandler) Send(c *gin.Context) {
	var req models.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.messageService.Send(c.Request.Context(), &req, c.GetString("userID"), c.ClientIP(), "")
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// SendVoice stores a new message with an audio attachment. The request
// is multipart: the message fields come as form values, the audio under
// the "audio" field.
func (h *MessageHandler) SendVoice(c *gin.Context) {
	file, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file is required"})
		return
	}
	if file.Size > maxVoiceUploadBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "audio file too large"})
		return
	}
	contentType := file.Header.Get("Content-Type")
	if !voice.IsAudioMimeType(contentType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unsupported audio type"})
		return
	}

	req := voiceRequestFromForm(c)

	raw := filepath.Join(os.TempDir(), "voice_raw_"+randomName()+filepath.Ext(file.Filename))
	if err := c.SaveUploadedFile(file, raw); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to store audio"})
		return
	}
	defer os.Remove(raw)

	filter := models.NormalizeVoiceFilter(req.VoiceFilter)
	processed := filepath.Join(config.UploadDir(), "voice_"+randomName()+".m4a")
	if err := voice.Process(c.Request.Context(), raw, processed, filter); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process audio"})
		return
	}

	resp, err := h.messageService.Send(c.Request.Context(), req, c.GetString("userID"), c.ClientIP(), processed)
	if err != nil {
		os.Remove(processed)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// StreamVoice serves the processed audio of a received message
func (h *MessageHandler) StreamVoice(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	path, err := h.messageService.VoicePath(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	uploadDir, err := filepath.Abs(config.UploadDir())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	abs, err := filepath.Abs(path)
	if err != nil || !strings.HasPrefix(abs, uploadDir+string(filepath.Separator)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.Header("Content-Type", voice.AudioMimeType(abs))
	c.File(abs)
}

// StreamVoiceByFilename serves a stored audio file directly. The name
// is server-generated; anything resolving outside the upload directory
// is rejected.
func (h *MessageHandler) StreamVoiceByFilename(c *gin.Context) {
	name := filepath.Base(c.Param("filename"))
	if name == "." || name == string(filepath.Separator) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	uploadDir, err := filepath.Abs(config.UploadDir())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	abs := filepath.Join(uploadDir, name)
	if !strings.HasPrefix(abs, uploadDir+string(filepath.Separator)) {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	if _, err := os.Stat(abs); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}

	c.Header("Content-Type", voice.AudioMimeType(abs))
	c.File(abs)
}

// EmotionalRadar tallies the emotions of the visible inbox
func (h *MessageHandler) EmotionalRadar(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	radar, err := h.messageService.EmotionalRadar(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"radar": radar})
}

// ListReceived returns the visible inbox
func (h *MessageHandler) ListReceived(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	messages, err := h.messageService.ListReceived(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// Get returns one received message
func (h *MessageHandler) Get(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	message, err := h.messageService.Get(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// ScheduledCount returns how many messages are still locked
func (h *MessageHandler) ScheduledCount(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	count, err := h.messageService.ScheduledCount(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

// ListScheduled returns pending scheduled messages
func (h *MessageHandler) ListScheduled(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	messages, err := h.messageService.ListScheduled(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// MarkRead flags a message as read
func (h *MessageHandler) MarkRead(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.messageService.MarkRead(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// Analyze returns the AI reading of a message
func (h *MessageHandler) Analyze(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	analysis, err := h.messageService.Analyze(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

// MakePublic publishes a message to the public feed
func (h *MessageHandler) MakePublic(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	message, err := h.messageService.MakePublic(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": message})
}

// Like bumps a public message's like counter
func (h *MessageHandler) Like(c *gin.Context) {
	likes, err := h.messageService.Like(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"likes": likes})
}

// ListPublic returns the public feed
func (h *MessageHandler) ListPublic(c *gin.Context) {
	messages, err := h.messageService.ListPublic(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": messages})
}

// AddFavorite bookmarks a message
func (h *MessageHandler) AddFavorite(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.messageService.AddFavorite(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

// RemoveFavorite removes a bookmark
func (h *MessageHandler) RemoveFavorite(c *gin.Context) {
	userID := c.GetString("userID")
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.messageService.RemoveFavorite(c.Request.Context(), c.Param("id"), userID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func voiceRequestFromForm(c *gin.Context) *models.SendMessageRequest {
	req := &models.SendMessageRequest{
		RecipientLink:   c.PostForm("recipientLink"),
		Content:         c.PostForm("content"),
		Nickname:        c.PostForm("nickname"),
		Hint:            c.PostForm("hint"),
		Emoji:           c.PostForm("emoji"),
		RiddleQuestion:  c.PostForm("riddleQuestion"),
		RiddleAnswer:    c.PostForm("riddleAnswer"),
		EmotionalFilter: c.PostForm("emotionalFilter"),
		ScheduledDate:   c.PostForm("scheduledDate"),
		CustomMask:      c.PostForm("customMask"),
		Country:         c.PostForm("country"),
		City:            c.PostForm("city"),
		VoiceFilter:     c.PostForm("voiceFilter"),
	}
	if raw := c.PostForm("riddle"); raw != "" {
		req.Riddle = json.RawMessage(raw)
	}
	req.SendAsUser = c.PostForm("sendAsAuthenticated") == "true"
	return req
}

func randomName() string {
	b := make([]byte, 8)
	rand.Read(b)
	return hex.EncodeToString(b)
}
