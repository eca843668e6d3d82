package check

import (
	"encoding/json"
	"time"

	"titlemark/internal/beatmap"
	"titlemark/internal/markers"
)

// Summary identifies the difficulty a result belongs to.
type Summary struct {
	Artist       string `json:"artist"`
	Title        string `json:"title"`
	Difficulty   string `json:"difficulty"`
	BeatmapSetID int    `json:"beatmapset_id,omitempty"`
}

func summarize(bm *beatmap.Beatmap) Summary {
	return Summary{
		Artist:       bm.Artist,
		Title:        bm.Title,
		Difficulty:   bm.Version,
		BeatmapSetID: bm.BeatmapSetID,
	}
}

// FileResult is the outcome for a single beatmap file.
type FileResult struct {
	Path       string              `json:"path"`
	Beatmap    Summary             `json:"beatmap"`
	Violations []markers.Violation `json:"violations,omitempty"`
	Err        error               `json:"-"`
}

// MarshalJSON adds the parse error as a string.
func (f FileResult) MarshalJSON() ([]byte, error) {
	type plain FileResult
	out := struct {
		plain
		Error string `json:"error,omitempty"`
	}{plain: plain(f)}
	if f.Err != nil {
		out.Error = f.Err.Error()
	}
	return json.Marshal(out)
}

// Report collects the results of one run.
type Report struct {
	ID         string       `json:"id"`
	StartedAt  time.Time    `json:"started_at"`
	FinishedAt time.Time    `json:"finished_at"`
	Files      []FileResult `json:"files"`
}

// Diagnostic is a unique violation message and the files that produced it.
type Diagnostic struct {
	Violation markers.Violation `json:"violation"`
	Message   string            `json:"message"`
	Files     []string          `json:"files"`
}

// ViolationCount returns the total number of violations across files.
func (r *Report) ViolationCount() int {
	total := 0
	for _, f := range r.Files {
		total += len(f.Violations)
	}
	return total
}

// FailedCount returns how many files could not be parsed.
func (r *Report) FailedCount() int {
	failed := 0
	for _, f := range r.Files {
		if f.Err != nil {
			failed++
		}
	}
	return failed
}

// Clean reports whether the run found no violations and no unreadable files.
func (r *Report) Clean() bool {
	return r.ViolationCount() == 0 && r.FailedCount() == 0
}

// Diagnostics merges identical violations. Difficulties of one beatmapset
// usually share metadata, so the same message would otherwise repeat per file.
// Order follows the first file that produced each message.
func (r *Report) Diagnostics() []Diagnostic {
	index := make(map[string]int)
	var out []Diagnostic
	for _, f := range r.Files {
		for _, v := range f.Violations {
			msg := v.Message()
			if i, ok := index[msg]; ok {
				out[i].Files = append(out[i].Files, f.Path)
				continue
			}
			index[msg] = len(out)
			out = append(out, Diagnostic{Violation: v, Message: msg, Files: []string{f.Path}})
		}
	}
	return out
}
