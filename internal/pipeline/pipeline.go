// Package pipeline sequences the batch jobs behind each HTTP endpoint:
// fetch media, transcribe, extract key moments, then render, upload and
// clean up one clip per moment. Jobs are strictly sequential; a failed
// moment is skipped, a failed fetch/transcribe/extract fails the job.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"github.com/avelichko/podcut/internal/domain/captions"
	"github.com/avelichko/podcut/internal/domain/moments"
	"github.com/avelichko/podcut/internal/ports"
	"github.com/avelichko/podcut/internal/types"
)

type Deps struct {
	Fetcher  ports.Fetcher
	Video    ports.VideoTool
	ASR      ports.ASR
	Moments  ports.MomentSource
	Images   ports.ImageGenerator
	TTS      ports.SpeechSynth
	Stock    ports.StockProvider
	Uploader ports.Uploader
}

type Pipeline struct {
	d       Deps
	workDir string
	log     *slog.Logger
}

// New returns a pipeline that keeps all job scratch files under
// workDir/jobs/<uuid>, so concurrent requests never share paths.
func New(d Deps, workDir string, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{d: d, workDir: workDir, log: log}
}

// visual is one rendered backdrop source for a narrated moment: either a
// downloaded stock clip or a generated still image.
type visual struct {
	path  string
	still bool
}

type visualFn func(ctx context.Context, jobDir string, idx int, m types.KeywordMoment) ([]visual, error)

// ProcessPodcast turns an audio podcast into stock-footage key-moment clips
// and returns the uploaded clip URLs.
func (p *Pipeline) ProcessPodcast(ctx context.Context, audioURL string) ([]string, error) {
	return p.processAudio(ctx, audioURL, p.stockVisuals)
}

// ProcessAIPodcast is ProcessPodcast with AI-generated stills in place of
// stock footage.
func (p *Pipeline) ProcessAIPodcast(ctx context.Context, audioURL string) ([]string, error) {
	return p.processAudio(ctx, audioURL, p.aiVisuals)
}

func (p *Pipeline) processAudio(ctx context.Context, audioURL string, visuals visualFn) ([]string, error) {
	jobDir, err := p.newJobDir()
	if err != nil {
		return nil, err
	}
	defer p.cleanup(jobDir)

	audioPath := filepath.Join(jobDir, "input_audio.mp3")
	if err := p.d.Fetcher.DownloadAudio(ctx, audioURL, audioPath); err != nil {
		return nil, fmt.Errorf("download audio: %w", err)
	}

	tr, err := p.transcribe(ctx, jobDir, audioPath, false)
	if err != nil {
		return nil, err
	}

	ms, err := p.d.Moments.KeywordMoments(ctx, moments.TranscriptText(tr))
	if err != nil {
		return nil, fmt.Errorf("extract key moments: %w", err)
	}

	urls := make([]string, 0, len(ms))
	for idx, m := range ms {
		u, err := p.renderNarratedMoment(ctx, jobDir, idx, m, visuals)
		if err != nil {
			p.log.Warn("skipping key moment", "moment", idx, "err", err)
			continue
		}
		p.log.Info("uploaded key moment clip", "moment", idx, "url", u)
		urls = append(urls, u)
	}
	return urls, nil
}

// renderNarratedMoment builds one clip: synthesized narration sets the total
// duration, visuals are stretched to equal shares of it, and a sliding-window
// caption track is burned on top.
func (p *Pipeline) renderNarratedMoment(ctx context.Context, jobDir string, idx int, m types.KeywordMoment, visuals visualFn) (string, error) {
	speech := filepath.Join(jobDir, fmt.Sprintf("speech_%d.mp3", idx))
	if err := p.d.TTS.Synthesize(ctx, m.Script, speech); err != nil {
		return "", fmt.Errorf("synthesize narration: %w", err)
	}
	total, err := p.d.Video.ProbeDuration(ctx, speech)
	if err != nil {
		return "", fmt.Errorf("probe narration duration: %w", err)
	}
	if total <= 0 {
		return "", errors.New("narration has zero duration")
	}

	vis, err := visuals(ctx, jobDir, idx, m)
	if err != nil {
		return "", err
	}

	share := total / time.Duration(len(vis))
	parts := make([]string, 0, len(vis))
	for i, v := range vis {
		part := filepath.Join(jobDir, fmt.Sprintf("part_%d_%d.mp4", idx, i))
		if v.still {
			err = p.d.Video.StillClip(ctx, v.path, part, share)
		} else {
			err = p.d.Video.TrimScale(ctx, v.path, part, share)
		}
		if err != nil {
			return "", fmt.Errorf("prepare visual %d: %w", i, err)
		}
		parts = append(parts, part)
	}

	base := filepath.Join(jobDir, fmt.Sprintf("base_%d.mp4", idx))
	if err := p.d.Video.Concat(ctx, parts, base); err != nil {
		return "", err
	}

	assPath := filepath.Join(jobDir, fmt.Sprintf("captions_%d.ass", idx))
	chunks := captions.SlidingWindow(m.Script, total)
	if err := os.WriteFile(assPath, []byte(captions.RenderCenterASS(chunks)), 0o644); err != nil {
		return "", err
	}

	out := filepath.Join(jobDir, fmt.Sprintf("keymoment_%d.mp4", idx))
	if err := p.d.Video.CaptionAudioMux(ctx, base, assPath, speech, out, total); err != nil {
		return "", err
	}

	u, err := p.d.Uploader.Upload(ctx, out)
	if err != nil {
		return "", fmt.Errorf("upload clip: %w", err)
	}
	// The uploaded copy is authoritative; drop the local file right away
	// instead of waiting for final cleanup.
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		p.log.Warn("could not remove uploaded clip", "path", out, "err", err)
	}
	return u, nil
}

func (p *Pipeline) stockVisuals(ctx context.Context, jobDir string, idx int, m types.KeywordMoment) ([]visual, error) {
	var vis []visual
	for _, kw := range m.Keywords {
		raw := filepath.Join(jobDir, fmt.Sprintf("stock_%d_%s.mp4", idx, normalizePathSegment(kw)))
		found, err := p.d.Stock.FetchClip(ctx, kw, raw)
		if err != nil {
			p.log.Warn("stock fetch failed", "keyword", kw, "err", err)
			continue
		}
		if !found {
			p.log.Info("no stock footage for keyword", "keyword", kw)
			continue
		}
		vis = append(vis, visual{path: raw})
	}
	if len(vis) == 0 {
		return nil, errors.New("no stock clips found")
	}
	return vis, nil
}

func (p *Pipeline) aiVisuals(ctx context.Context, jobDir string, idx int, m types.KeywordMoment) ([]visual, error) {
	var vis []visual
	for i, kw := range m.Keywords {
		img := filepath.Join(jobDir, fmt.Sprintf("ai_image_%d_%d.png", idx, i))
		prompt := fmt.Sprintf("A vertical 9:16 cinematic photograph themed around %q, inspired by this narration: %s", kw, m.Script)
		if err := p.d.Images.GenerateImage(ctx, prompt, img); err != nil {
			p.log.Warn("image generation failed", "keyword", kw, "err", err)
			continue
		}
		vis = append(vis, visual{path: img, still: true})
	}
	if len(vis) == 0 {
		return nil, errors.New("no images generated")
	}
	return vis, nil
}

// ProcessVideoPodcast cuts timestamp-style key moments straight out of the
// source video, with transcript captions rebased to each sub-clip.
func (p *Pipeline) ProcessVideoPodcast(ctx context.Context, videoURL string) ([]types.ClipRecord, error) {
	jobDir, err := p.newJobDir()
	if err != nil {
		return nil, err
	}
	defer p.cleanup(jobDir)

	videoPath := filepath.Join(jobDir, "input_video.mp4")
	if err := p.d.Fetcher.DownloadVideo(ctx, videoURL, videoPath); err != nil {
		return nil, fmt.Errorf("download video: %w", err)
	}

	tr, err := p.transcribe(ctx, jobDir, videoPath, true)
	if err != nil {
		return nil, err
	}

	ms, err := p.d.Moments.TimedMoments(ctx, moments.TimedTranscriptText(tr))
	if err != nil {
		return nil, fmt.Errorf("extract key moments: %w", err)
	}

	records := make([]types.ClipRecord, 0, len(ms))
	for idx, m := range ms {
		rec, err := p.renderTimedMoment(ctx, jobDir, videoPath, idx, m, tr)
		if err != nil {
			p.log.Warn("skipping key moment", "moment", idx, "title", m.Title, "err", err)
			continue
		}
		p.log.Info("uploaded video clip", "moment", idx, "url", rec.URL)
		records = append(records, rec)
	}
	return records, nil
}

func (p *Pipeline) renderTimedMoment(ctx context.Context, jobDir, videoPath string, idx int, m types.TimedMoment, tr types.Transcript) (types.ClipRecord, error) {
	start := dur(m.Start)
	end := dur(m.End)

	var chunks []captions.Chunk
	for _, seg := range captions.FilterSegments(tr.Segments, m.Start, m.End) {
		chunks = append(chunks, captions.SegmentChunks(seg, start)...)
	}
	assPath := ""
	if len(chunks) > 0 {
		assPath = filepath.Join(jobDir, fmt.Sprintf("clip_captions_%d.ass", idx))
		if err := os.WriteFile(assPath, []byte(captions.RenderBottomASS(chunks)), 0o644); err != nil {
			return types.ClipRecord{}, err
		}
	}

	out := filepath.Join(jobDir, fmt.Sprintf("clip_%d.mp4", idx+1))
	if err := p.d.Video.SubClip(ctx, videoPath, start, end, assPath, out); err != nil {
		return types.ClipRecord{}, err
	}

	u, err := p.d.Uploader.Upload(ctx, out)
	if err != nil {
		return types.ClipRecord{}, fmt.Errorf("upload clip: %w", err)
	}
	if err := os.Remove(out); err != nil && !os.IsNotExist(err) {
		p.log.Warn("could not remove uploaded clip", "path", out, "err", err)
	}

	return types.ClipRecord{
		URL:         u,
		Title:       m.Title,
		Description: m.Description,
		StartSec:    m.Start,
		EndSec:      m.End,
	}, nil
}

// AbstractSummary transcribes the podcast at podcastURL and returns a
// markdown summary. Whether the URL is audio or video is inferred from its
// guessed MIME type; unknown types are treated as audio.
func (p *Pipeline) AbstractSummary(ctx context.Context, podcastURL string) (string, error) {
	jobDir, err := p.newJobDir()
	if err != nil {
		return "", err
	}
	defer p.cleanup(jobDir)

	var mediaPath string
	if isVideoURL(podcastURL) {
		mediaPath = filepath.Join(jobDir, "input_video.mp4")
		err = p.d.Fetcher.DownloadVideo(ctx, podcastURL, mediaPath)
	} else {
		mediaPath = filepath.Join(jobDir, "input_audio.mp3")
		err = p.d.Fetcher.DownloadAudio(ctx, podcastURL, mediaPath)
	}
	if err != nil {
		return "", fmt.Errorf("download podcast: %w", err)
	}

	tr, err := p.transcribe(ctx, jobDir, mediaPath, false)
	if err != nil {
		return "", err
	}

	summary, err := p.d.Moments.Summarize(ctx, moments.TranscriptText(tr))
	if err != nil {
		return "", fmt.Errorf("summarize transcript: %w", err)
	}
	return summary, nil
}

func (p *Pipeline) transcribe(ctx context.Context, jobDir, mediaPath string, words bool) (types.Transcript, error) {
	wav := filepath.Join(jobDir, "audio.wav")
	if err := p.d.Video.ExtractAudioMono16k(ctx, mediaPath, wav); err != nil {
		return types.Transcript{}, err
	}
	tr, err := p.d.ASR.Transcribe(ctx, wav, jobDir, words)
	if err != nil {
		return types.Transcript{}, fmt.Errorf("transcribe: %w", err)
	}
	return tr, nil
}

func (p *Pipeline) newJobDir() (string, error) {
	dir := filepath.Join(p.workDir, "jobs", uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create job dir: %w", err)
	}
	return dir, nil
}

// cleanup removes the whole job scratch directory. It runs on every exit
// path, success or failure, so no completed request leaves orphans behind.
func (p *Pipeline) cleanup(jobDir string) {
	if err := os.RemoveAll(jobDir); err != nil {
		p.log.Warn("job cleanup failed", "dir", jobDir, "err", err)
	}
}

// isVideoURL guesses the media kind from the URL path's extension.
func isVideoURL(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return false
	}
	mt := mime.TypeByExtension(path.Ext(u.Path))
	return strings.HasPrefix(mt, "video/")
}

func normalizePathSegment(s string) string {
	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		default:
			if !prevDash {
				b.WriteByte('-')
				prevDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}

func dur(sec float64) time.Duration { return time.Duration(sec * float64(time.Second)) }
