package ports

import (
	"context"
	"time"

	"github.com/avelichko/podcut/internal/types"
)

// Fetcher downloads remote source media into the job's scratch directory.
type Fetcher interface {
	// DownloadAudio fetches the whole body at once.
	DownloadAudio(ctx context.Context, url, dest string) error
	// DownloadVideo streams the body to disk in chunks.
	DownloadVideo(ctx context.Context, url, dest string) error
}

// ASR transcribes a local 16kHz mono WAV file. When words is true the
// transcript carries per-word timestamps.
type ASR interface {
	Transcribe(ctx context.Context, wavPath, scratchDir string, words bool) (types.Transcript, error)
}

// MomentSource asks the hosted language model about a transcript.
type MomentSource interface {
	KeywordMoments(ctx context.Context, transcript string) ([]types.KeywordMoment, error)
	TimedMoments(ctx context.Context, transcript string) ([]types.TimedMoment, error)
	Summarize(ctx context.Context, transcript string) (string, error)
}

// ImageGenerator produces a single still image for a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt, outPath string) error
}

// SpeechSynth converts narration text to a spoken audio file.
type SpeechSynth interface {
	Synthesize(ctx context.Context, text, outPath string) error
}

// StockProvider searches third-party footage by keyword. found is false when
// the search has no result; callers treat that as a skip, not an error.
type StockProvider interface {
	FetchClip(ctx context.Context, keyword, outPath string) (found bool, err error)
}

// Uploader pushes a finished local clip to the media CDN and returns its
// public URL.
type Uploader interface {
	Upload(ctx context.Context, path string) (string, error)
}

// VideoTool is the compositing surface backed by ffmpeg.
type VideoTool interface {
	ExtractAudioMono16k(ctx context.Context, in, outWav string) error
	ProbeDuration(ctx context.Context, in string) (time.Duration, error)
	// TrimScale cuts in down to dur from its start and scales it to the
	// vertical output resolution, dropping audio.
	TrimScale(ctx context.Context, in, out string, dur time.Duration) error
	// StillClip turns a still image into a video of the given duration at
	// the vertical output resolution.
	StillClip(ctx context.Context, image, out string, dur time.Duration) error
	Concat(ctx context.Context, parts []string, out string) error
	// CaptionAudioMux burns the ASS captions into video, replaces its audio
	// track with audio and caps the output at dur.
	CaptionAudioMux(ctx context.Context, video, assPath, audio, out string, dur time.Duration) error
	// SubClip extracts [start,end] from in, keeping original audio and
	// burning assPath when non-empty.
	SubClip(ctx context.Context, in string, start, end time.Duration, assPath, out string) error
}
