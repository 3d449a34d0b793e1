package voice

import (
	"strings"
	"testing"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

func TestFilterArgs(t *testing.T) {
	t.Parallel()

	filters := []string{
		models.VoiceRobot,
		models.VoiceDeep,
		models.VoiceHigh,
		models.VoiceAlien,
		models.VoiceAnonymous,
	}
	for _, f := range filters {
		args := FilterArgs(f)
		if len(args) != 2 || args[0] != "-af" {
			t.Errorf("FilterArgs(%q) = %v, want an -af pair", f, args)
		}
		if !strings.Contains(args[1], "aresample=44100") {
			t.Errorf("FilterArgs(%q) does not resample: %q", f, args[1])
		}
	}
}

func TestFilterArgsNormalReencodes(t *testing.T) {
	t.Parallel()

	args := FilterArgs(models.VoiceNormal)
	if len(args) == 0 || args[0] == "-af" {
		t.Errorf("normal filter applied an effect: %v", args)
	}
}

func TestIsAudioMimeType(t *testing.T) {
	t.Parallel()

	accepted := []string{
		"audio/wav",
		"AUDIO/MPEG",
		" audio/ogg ",
		"audio/x-unknown-codec",
		"video/webm",
		"application/octet-stream",
	}
	for _, m := range accepted {
		if !IsAudioMimeType(m) {
			t.Errorf("IsAudioMimeType(%q) = false", m)
		}
	}

	rejected := []string{"text/plain", "image/png", "video/quicktime", ""}
	for _, m := range rejected {
		if IsAudioMimeType(m) {
			t.Errorf("IsAudioMimeType(%q) = true", m)
		}
	}
}

func TestAudioMimeType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		filename string
		want     string
	}{
		{"voice_abc.m4a", "audio/mp4"},
		{"song.MP3", "audio/mpeg"},
		{"note.ogg", "audio/ogg"},
		{"clip.webm", "audio/webm"},
		{"raw.flac", "audio/flac"},
		{"unknown.bin", "audio/wav"},
	}
	for _, tt := range tests {
		if got := AudioMimeType(tt.filename); got != tt.want {
			t.Errorf("AudioMimeType(%q) = %q, want %q", tt.filename, got, tt.want)
		}
	}
}
