package voice

import (
	"path/filepath"
	"strings"
)

var audioMimeTypes = map[string]bool{
	"audio/wav":                true,
	"audio/x-wav":              true,
	"audio/wave":               true,
	"audio/mpeg":               true,
	"audio/mp3":                true,
	"audio/mp4":                true,
	"audio/aac":                true,
	"audio/ogg":                true,
	"audio/webm":               true,
	"audio/flac":               true,
	"audio/x-m4a":              true,
	"video/webm":               true,
	"video/mp4":                true,
	"application/octet-stream": true,
}

// IsAudioMimeType reports whether an uploaded file's content type is an
// accepted audio container. Browsers record voice notes under a few
// video containers too.
func IsAudioMimeType(mimeType string) bool {
	mimeType = strings.ToLower(strings.TrimSpace(mimeType))
	if audioMimeTypes[mimeType] {
		return true
	}
	return strings.HasPrefix(mimeType, "audio/")
}

// AudioMimeType maps a stored filename to a Content-Type for streaming.
func AudioMimeType(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".mp3":
		return "audio/mpeg"
	case ".ogg":
		return "audio/ogg"
	case ".webm":
		return "audio/webm"
	case ".m4a", ".mp4", ".aac":
		return "audio/mp4"
	case ".flac":
		return "audio/flac"
	default:
		return "audio/wav"
	}
}
