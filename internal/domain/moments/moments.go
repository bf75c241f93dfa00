// Package moments decodes key-moment records out of free-form language-model
// output. The model is asked for a bare JSON array but is not guaranteed to
// return one, so decoding is an untrusted-input parse: locate an array-shaped
// substring inside surrounding prose, then unmarshal it. "No array found" and
// "array is not valid JSON" are distinct failures.
package moments

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/avelichko/podcut/internal/types"
)

// ErrNoJSONArray reports that no array-shaped substring was present in the
// model output at all.
var ErrNoJSONArray = errors.New("no JSON array found in model output")

var arrayRE = regexp.MustCompile(`(?s)\[\s*\{.*?\}\s*\]`)

// ExtractJSONArray returns the first JSON-array-shaped substring of s.
// Markdown code fences around the payload are tolerated.
func ExtractJSONArray(s string) (string, error) {
	t := strings.TrimSpace(s)
	if strings.HasPrefix(t, "```") {
		if i := strings.Index(t, "\n"); i >= 0 {
			t = t[i+1:]
		}
		if j := strings.LastIndex(t, "```"); j >= 0 {
			t = t[:j]
		}
		t = strings.TrimSpace(t)
	}
	m := arrayRE.FindString(t)
	if m == "" {
		return "", ErrNoJSONArray
	}
	return m, nil
}

// DecodeKeywordMoments parses keyword-style moments out of raw model output.
// It either returns well-formed records or fails; records missing keywords or
// a script are rejected as a whole rather than returned partially filled.
func DecodeKeywordMoments(raw string) ([]types.KeywordMoment, error) {
	arr, err := ExtractJSONArray(raw)
	if err != nil {
		return nil, err
	}
	var out []types.KeywordMoment
	if err := json.Unmarshal([]byte(arr), &out); err != nil {
		return nil, fmt.Errorf("invalid JSON array in model output: %w", err)
	}
	for i, m := range out {
		if len(m.Keywords) == 0 || strings.TrimSpace(m.Script) == "" {
			return nil, fmt.Errorf("moment %d is missing keywords or script", i)
		}
	}
	return out, nil
}

// DecodeTimedMoments parses timestamp-style moments out of raw model output.
// Records missing a required field are dropped; surviving records have their
// duration normalized by NormalizeWindow.
func DecodeTimedMoments(raw string) ([]types.TimedMoment, error) {
	arr, err := ExtractJSONArray(raw)
	if err != nil {
		return nil, err
	}
	var decoded []struct {
		Title       *string  `json:"title"`
		Start       *float64 `json:"start"`
		End         *float64 `json:"end"`
		Description string   `json:"description"`
	}
	if err := json.Unmarshal([]byte(arr), &decoded); err != nil {
		return nil, fmt.Errorf("invalid JSON array in model output: %w", err)
	}
	out := make([]types.TimedMoment, 0, len(decoded))
	for _, d := range decoded {
		if d.Title == nil || d.Start == nil || d.End == nil {
			continue
		}
		m := types.TimedMoment{
			Title:       *d.Title,
			Start:       *d.Start,
			End:         *d.End,
			Description: d.Description,
		}
		NormalizeWindow(&m)
		out = append(out, m)
	}
	return out, nil
}

// NormalizeWindow forces a moment's duration to exactly 30s when it falls
// outside the acceptable [25,35]s band. Durations inside the band, bounds
// included, are left untouched.
func NormalizeWindow(m *types.TimedMoment) {
	d := m.End - m.Start
	if d > 35 || d < 25 {
		m.End = m.Start + 30
	}
}

// TranscriptText joins segment texts with newlines, the form the keyword and
// summary prompts expect.
func TranscriptText(tr types.Transcript) string {
	parts := make([]string, 0, len(tr.Segments))
	for _, s := range tr.Segments {
		parts = append(parts, s.Text)
	}
	return strings.Join(parts, "\n")
}

// TimedTranscriptText renders each segment as "[start-end] text" with times
// rounded to whole seconds, the form the timestamp prompt expects.
func TimedTranscriptText(tr types.Transcript) string {
	parts := make([]string, 0, len(tr.Segments))
	for _, s := range tr.Segments {
		parts = append(parts, fmt.Sprintf("[%.0f-%.0f] %s", s.Start, s.End, s.Text))
	}
	return strings.Join(parts, "\n")
}
