// Package voice applies anonymizing filters to audio attachments by
// shelling out to ffmpeg. When ffmpeg is missing or fails, the input is
// copied through unchanged so a send never fails on audio processing.
package voice

import (
	"context"
	"io"
	"log"
	"os"
	"os/exec"

	"github.com/Charles-Louisin/mystik-backend/internal/models"
)

// FilterArgs returns the ffmpeg audio-filter arguments for a voice
// filter. The normal filter re-encodes without effects.
func FilterArgs(filter string) []string {
	switch filter {
	case models.VoiceRobot:
		return []string{"-af", "aecho=0.8:0.88:60:0.4,asetrate=44100*0.9,atempo=1.1,aresample=44100"}
	case models.VoiceDeep:
		return []string{"-af", "asetrate=44100*0.8,atempo=1.25,aresample=44100"}
	case models.VoiceHigh:
		return []string{"-af", "asetrate=44100*1.4,atempo=0.7,aresample=44100"}
	case models.VoiceAlien:
		return []string{"-af", "aecho=0.8:0.88:60:0.6,asetrate=44100*1.3,atempo=0.75,aresample=44100,vibrato=5:0.5"}
	case models.VoiceAnonymous:
		return []string{"-af", "rubberband=pitch=1.5,chorus=0.5:0.9:50|60|40:0.4|0.32|0.3:0.25|0.4|0.3:2|2.3|1.3,asetrate=44100*0.95,atempo=1.1,aresample=44100"}
	default:
		return []string{"-c:a", "aac", "-b:a", "128k"}
	}
}

// Process applies the filter to inputPath, writing outputPath. Any
// processing failure degrades to a raw copy of the input.
func Process(ctx context.Context, inputPath, outputPath, filter string) error {
	if _, err := exec.LookPath("ffmpeg"); err != nil {
		log.Println("ffmpeg not found, storing audio unprocessed")
		return copyFile(inputPath, outputPath)
	}

	args := append([]string{"-i", inputPath}, FilterArgs(models.NormalizeVoiceFilter(filter))...)
	args = append(args, outputPath)
	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		log.Printf("ffmpeg failed for filter %q: %v: %s", filter, err, out)
		return copyFile(inputPath, outputPath)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
