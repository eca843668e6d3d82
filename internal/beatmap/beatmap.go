package beatmap

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"titlemark/internal/markers"
)

const (
	formatHeaderPrefix = "osu file format v"
	metadataSection    = "[Metadata]"
	maxLineBytes       = 1 << 20
)

var (
	// ErrNotBeatmap indicates the stream does not start with an osu! file format header.
	ErrNotBeatmap = errors.New("not an osu! beatmap")
	// ErrNoMetadata indicates the beatmap has no [Metadata] section or no Title key.
	ErrNoMetadata = errors.New("beatmap has no title metadata")
)

// Beatmap captures the metadata fields of a single difficulty.
type Beatmap struct {
	Path          string
	FormatVersion int
	Title         string
	TitleUnicode  markers.Optional
	Artist        string
	ArtistUnicode markers.Optional
	Creator       string
	Version       string
	BeatmapID     int
	BeatmapSetID  int
}

// Record returns the title fields checked by the marker validator.
func (b *Beatmap) Record() markers.Record {
	return markers.Record{Romanized: b.Title, Unicode: b.TitleUnicode}
}

// Load opens and parses the beatmap at path.
func Load(path string) (*Beatmap, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open beatmap: %w", err)
	}
	defer file.Close()

	bm, err := Parse(file)
	if err != nil {
		return nil, fmt.Errorf("parse beatmap %s: %w", path, err)
	}
	bm.Path = path
	return bm, nil
}

// Parse decodes a beatmap stream.
func Parse(r io.Reader) (*Beatmap, error) {
	decoded := transform.NewReader(r, unicode.BOMOverride(unicode.UTF8.NewDecoder()))
	scanner := bufio.NewScanner(decoded)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	bm := &Beatmap{}
	sawHeader := false
	inMetadata := false
	sawMetadata := false
	sawTitle := false

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}

		if !sawHeader {
			version, err := parseHeader(line)
			if err != nil {
				return nil, err
			}
			bm.FormatVersion = version
			sawHeader = true
			continue
		}

		if strings.HasPrefix(line, "[") && strings.HasSuffix(line, "]") {
			if inMetadata {
				break
			}
			inMetadata = line == metadataSection
			sawMetadata = sawMetadata || inMetadata
			continue
		}
		if !inMetadata {
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		value = strings.TrimSpace(value)
		switch strings.TrimSpace(key) {
		case "Title":
			bm.Title = value
			sawTitle = true
		case "TitleUnicode":
			bm.TitleUnicode = markers.Some(value)
		case "Artist":
			bm.Artist = value
		case "ArtistUnicode":
			bm.ArtistUnicode = markers.Some(value)
		case "Creator":
			bm.Creator = value
		case "Version":
			bm.Version = value
		case "BeatmapID":
			bm.BeatmapID = parseID(value)
		case "BeatmapSetID":
			bm.BeatmapSetID = parseID(value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read beatmap: %w", err)
	}

	if !sawHeader {
		return nil, ErrNotBeatmap
	}
	if !sawMetadata || !sawTitle {
		return nil, ErrNoMetadata
	}
	return bm, nil
}

func parseHeader(line string) (int, error) {
	rest, ok := strings.CutPrefix(line, formatHeaderPrefix)
	if !ok {
		return 0, fmt.Errorf("%w: unexpected header %q", ErrNotBeatmap, truncate(line, 40))
	}
	version, err := strconv.Atoi(strings.TrimSpace(rest))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid format version %q", ErrNotBeatmap, rest)
	}
	return version, nil
}

// parseID accepts the -1 used by unsubmitted maps; anything non-numeric reads as 0.
func parseID(value string) int {
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0
	}
	return id
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit]) + "..."
}

// DisplayName renders "Artist - Title [Version]" for logs and reports.
func (b *Beatmap) DisplayName() string {
	var sb strings.Builder
	if b.Artist != "" {
		sb.WriteString(b.Artist)
		sb.WriteString(" - ")
	}
	sb.WriteString(b.Title)
	if b.Version != "" {
		sb.WriteString(" [")
		sb.WriteString(b.Version)
		sb.WriteString("]")
	}
	return sb.String()
}
