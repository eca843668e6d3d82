package testsupport

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
)

// BeatmapFields holds the metadata written by WriteBeatmap.
type BeatmapFields struct {
	FormatVersion int
	Title         string
	// TitleUnicode is omitted from the file when nil.
	TitleUnicode *string
	Artist       string
	Version      string
}

// Unicode returns a pointer for BeatmapFields.TitleUnicode.
func Unicode(value string) *string {
	return &value
}

// WriteBeatmap writes a minimal .osu file under dir and returns its path.
func WriteBeatmap(t testing.TB, dir, name string, fields BeatmapFields) string {
	t.Helper()

	version := fields.FormatVersion
	if version == 0 {
		version = 14
	}
	var sb strings.Builder
	sb.WriteString("osu file format v")
	sb.WriteString(strconv.Itoa(version))
	sb.WriteString("\n\n[General]\nAudioFilename: audio.mp3\n\n[Metadata]\n")
	sb.WriteString("Title:" + fields.Title + "\n")
	if fields.TitleUnicode != nil {
		sb.WriteString("TitleUnicode:" + *fields.TitleUnicode + "\n")
	}
	sb.WriteString("Artist:" + fields.Artist + "\n")
	sb.WriteString("Creator:tester\n")
	sb.WriteString("Version:" + fields.Version + "\n")
	sb.WriteString("\n[Difficulty]\nHPDrainRate:5\n")

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
