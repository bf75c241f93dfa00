// Package captions turns narration scripts and transcript segments into
// short timed text chunks and renders them as ASS subtitle events for the
// clip compositor to burn in.
package captions

import (
	"strings"
	"time"

	"github.com/avelichko/podcut/internal/types"
)

// Chunk is one caption display interval, clip-local. Chunks produced for a
// script or segment are sequential, non-overlapping and contiguous.
type Chunk struct {
	Text  string
	Start time.Duration
	Dur   time.Duration
}

// SlidingWindow chunks a narration script with a trailing 4-word window:
// chunk i shows words [i-3..i]. N words produce N chunks that evenly divide
// total, so the last caption lands exactly on the narration's end.
func SlidingWindow(script string, total time.Duration) []Chunk {
	words := strings.Fields(script)
	if len(words) == 0 || total <= 0 {
		return nil
	}
	per := total / time.Duration(len(words))
	out := make([]Chunk, 0, len(words))
	for i := range words {
		lo := i - 3
		if lo < 0 {
			lo = 0
		}
		out = append(out, Chunk{
			Text:  strings.Join(words[lo:i+1], " "),
			Start: time.Duration(i) * per,
			Dur:   per,
		})
	}
	// Integer division leaves a remainder; stretch the final chunk so the
	// chunks still partition the full duration.
	out[len(out)-1].Dur = total - out[len(out)-1].Start
	return out
}

// Group splits words into fixed-size runs of at most size words each,
// producing ceil(len(words)/size) runs.
func Group(words []string, size int) []string {
	if len(words) == 0 || size <= 0 {
		return nil
	}
	if len(words) <= size {
		return []string{strings.Join(words, " ")}
	}
	out := make([]string, 0, (len(words)+size-1)/size)
	for i := 0; i < len(words); i += size {
		hi := i + size
		if hi > len(words) {
			hi = len(words)
		}
		out = append(out, strings.Join(words[i:hi], " "))
	}
	return out
}

// SegmentChunks chunks one transcript segment into <=4-word captions spread
// evenly across the segment's own duration, with start offsets rebased to
// the sub-clip that begins at clipStart.
func SegmentChunks(seg types.Segment, clipStart time.Duration) []Chunk {
	groups := Group(strings.Fields(seg.Text), 4)
	if len(groups) == 0 {
		return nil
	}
	segStart := dur(seg.Start)
	segDur := dur(seg.End) - segStart
	if segDur <= 0 {
		return nil
	}
	per := segDur / time.Duration(len(groups))
	out := make([]Chunk, 0, len(groups))
	for k, g := range groups {
		out = append(out, Chunk{
			Text:  g,
			Start: segStart - clipStart + time.Duration(k)*per,
			Dur:   per,
		})
	}
	out[len(out)-1].Dur = segDur - time.Duration(len(groups)-1)*per
	return out
}

// FilterSegments keeps segments whose [start,end] lies fully inside the
// [start,end] window, in transcript order.
func FilterSegments(segs []types.Segment, start, end float64) []types.Segment {
	var out []types.Segment
	for _, s := range segs {
		if s.Start >= start && s.End <= end {
			out = append(out, s)
		}
	}
	return out
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
