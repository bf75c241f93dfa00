package pipeline

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/avelichko/podcut/internal/types"
)

type fakeFetcher struct {
	audioURLs []string
	videoURLs []string
	err       error
}

func (f *fakeFetcher) DownloadAudio(_ context.Context, url, dest string) error {
	f.audioURLs = append(f.audioURLs, url)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("audio"), 0o644)
}

func (f *fakeFetcher) DownloadVideo(_ context.Context, url, dest string) error {
	f.videoURLs = append(f.videoURLs, url)
	if f.err != nil {
		return f.err
	}
	return os.WriteFile(dest, []byte("video"), 0o644)
}

type fakeVideo struct {
	duration   time.Duration
	stillCalls int
	trimCalls  int
	concatLens []int
	subClips   []string
	muxCalls   int
}

func touch(path string) error { return os.WriteFile(path, []byte("x"), 0o644) }

func (f *fakeVideo) ExtractAudioMono16k(_ context.Context, _, outWav string) error {
	return touch(outWav)
}

func (f *fakeVideo) ProbeDuration(_ context.Context, _ string) (time.Duration, error) {
	return f.duration, nil
}

func (f *fakeVideo) TrimScale(_ context.Context, _, out string, _ time.Duration) error {
	f.trimCalls++
	return touch(out)
}

func (f *fakeVideo) StillClip(_ context.Context, _, out string, _ time.Duration) error {
	f.stillCalls++
	return touch(out)
}

func (f *fakeVideo) Concat(_ context.Context, parts []string, out string) error {
	f.concatLens = append(f.concatLens, len(parts))
	return touch(out)
}

func (f *fakeVideo) CaptionAudioMux(_ context.Context, _, _, _, out string, _ time.Duration) error {
	f.muxCalls++
	return touch(out)
}

func (f *fakeVideo) SubClip(_ context.Context, _ string, _, _ time.Duration, _, out string) error {
	f.subClips = append(f.subClips, filepath.Base(out))
	return touch(out)
}

type fakeASR struct {
	tr        types.Transcript
	wordsFlag bool
}

func (f *fakeASR) Transcribe(_ context.Context, _, _ string, words bool) (types.Transcript, error) {
	f.wordsFlag = words
	return f.tr, nil
}

type fakeMoments struct {
	keyword []types.KeywordMoment
	timed   []types.TimedMoment
	summary string
	prompt  string
}

func (f *fakeMoments) KeywordMoments(_ context.Context, transcript string) ([]types.KeywordMoment, error) {
	f.prompt = transcript
	return f.keyword, nil
}

func (f *fakeMoments) TimedMoments(_ context.Context, transcript string) ([]types.TimedMoment, error) {
	f.prompt = transcript
	return f.timed, nil
}

func (f *fakeMoments) Summarize(_ context.Context, transcript string) (string, error) {
	f.prompt = transcript
	return f.summary, nil
}

type fakeImages struct {
	prompts []string
	err     error
}

func (f *fakeImages) GenerateImage(_ context.Context, prompt, outPath string) error {
	f.prompts = append(f.prompts, prompt)
	if f.err != nil {
		return f.err
	}
	return touch(outPath)
}

type fakeTTS struct {
	texts []string
}

func (f *fakeTTS) Synthesize(_ context.Context, text, outPath string) error {
	f.texts = append(f.texts, text)
	return touch(outPath)
}

// fakeStock serves only the keywords in have.
type fakeStock struct {
	have     map[string]bool
	keywords []string
}

func (f *fakeStock) FetchClip(_ context.Context, keyword, outPath string) (bool, error) {
	f.keywords = append(f.keywords, keyword)
	if !f.have[keyword] {
		return false, nil
	}
	return true, touch(outPath)
}

type fakeUploader struct {
	paths []string
	urls  []string
}

func (f *fakeUploader) Upload(_ context.Context, path string) (string, error) {
	f.paths = append(f.paths, filepath.Base(path))
	u := "https://cdn.example/" + filepath.Base(path)
	f.urls = append(f.urls, u)
	return u, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func oneSegmentTranscript() types.Transcript {
	return types.Transcript{Segments: []types.Segment{{Start: 0, End: 5, Text: "hello world"}}}
}

func assertNoJobLeftovers(t *testing.T, workDir string) {
	t.Helper()
	entries, err := os.ReadDir(filepath.Join(workDir, "jobs"))
	if err != nil {
		if os.IsNotExist(err) {
			return
		}
		t.Fatalf("read jobs dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("job scratch dirs left behind: %v", entries)
	}
}

func TestProcessPodcast(t *testing.T) {
	workDir := t.TempDir()
	fetcher := &fakeFetcher{}
	video := &fakeVideo{duration: 8 * time.Second}
	asr := &fakeASR{tr: oneSegmentTranscript()}
	llm := &fakeMoments{keyword: []types.KeywordMoment{
		{Keywords: []string{"nature"}, Script: "I saw a tree"},
	}}
	tts := &fakeTTS{}
	stock := &fakeStock{have: map[string]bool{"nature": true}}
	up := &fakeUploader{}

	p := New(Deps{
		Fetcher: fetcher, Video: video, ASR: asr, Moments: llm,
		Images: &fakeImages{}, TTS: tts, Stock: stock, Uploader: up,
	}, workDir, testLogger())

	urls, err := p.ProcessPodcast(context.Background(), "https://host/podcast.mp3")
	if err != nil {
		t.Fatalf("ProcessPodcast: %v", err)
	}
	if len(urls) != 1 || urls[0] != up.urls[0] {
		t.Fatalf("unexpected urls: %v", urls)
	}
	if len(fetcher.audioURLs) != 1 || fetcher.audioURLs[0] != "https://host/podcast.mp3" {
		t.Fatalf("unexpected downloads: %v", fetcher.audioURLs)
	}
	if asr.wordsFlag {
		t.Fatal("audio transcription must not request word timestamps")
	}
	if llm.prompt != "hello world" {
		t.Fatalf("moment extraction saw transcript %q", llm.prompt)
	}
	if len(stock.keywords) != 1 || stock.keywords[0] != "nature" {
		t.Fatalf("unexpected stock lookups: %v", stock.keywords)
	}
	if len(tts.texts) != 1 || tts.texts[0] != "I saw a tree" {
		t.Fatalf("unexpected narration: %v", tts.texts)
	}
	if video.trimCalls != 1 || video.stillCalls != 0 {
		t.Fatalf("expected one trimmed stock part, got trim=%d still=%d", video.trimCalls, video.stillCalls)
	}
	if video.muxCalls != 1 {
		t.Fatalf("expected one caption mux, got %d", video.muxCalls)
	}
	assertNoJobLeftovers(t, workDir)
}

func TestProcessPodcast_SkipsMomentWithoutStock(t *testing.T) {
	workDir := t.TempDir()
	stock := &fakeStock{have: map[string]bool{"ocean": true}}
	up := &fakeUploader{}
	llm := &fakeMoments{keyword: []types.KeywordMoment{
		{Keywords: []string{"unfindable"}, Script: "first script"},
		{Keywords: []string{"ocean"}, Script: "second script"},
	}}

	p := New(Deps{
		Fetcher: &fakeFetcher{}, Video: &fakeVideo{duration: 6 * time.Second},
		ASR: &fakeASR{tr: oneSegmentTranscript()}, Moments: llm,
		Images: &fakeImages{}, TTS: &fakeTTS{}, Stock: stock, Uploader: up,
	}, workDir, testLogger())

	urls, err := p.ProcessPodcast(context.Background(), "https://host/a.mp3")
	if err != nil {
		t.Fatalf("ProcessPodcast: %v", err)
	}
	if len(urls) != 1 {
		t.Fatalf("expected the surviving moment only, got %v", urls)
	}
	if len(up.paths) != 1 || up.paths[0] != "keymoment_1.mp4" {
		t.Fatalf("unexpected uploads: %v", up.paths)
	}
	assertNoJobLeftovers(t, workDir)
}

func TestProcessPodcast_DownloadFailureCleansUp(t *testing.T) {
	workDir := t.TempDir()
	p := New(Deps{
		Fetcher: &fakeFetcher{err: errors.New("boom")},
		Video:   &fakeVideo{}, ASR: &fakeASR{}, Moments: &fakeMoments{},
		Images: &fakeImages{}, TTS: &fakeTTS{}, Stock: &fakeStock{}, Uploader: &fakeUploader{},
	}, workDir, testLogger())

	if _, err := p.ProcessPodcast(context.Background(), "https://host/a.mp3"); err == nil {
		t.Fatal("expected download error")
	}
	assertNoJobLeftovers(t, workDir)
}

func TestProcessAIPodcast(t *testing.T) {
	workDir := t.TempDir()
	images := &fakeImages{}
	video := &fakeVideo{duration: 10 * time.Second}
	llm := &fakeMoments{keyword: []types.KeywordMoment{
		{Keywords: []string{"forest", "river"}, Script: "a walk outside"},
	}}

	p := New(Deps{
		Fetcher: &fakeFetcher{}, Video: video,
		ASR: &fakeASR{tr: oneSegmentTranscript()}, Moments: llm,
		Images: images, TTS: &fakeTTS{}, Stock: &fakeStock{}, Uploader: &fakeUploader{},
	}, workDir, testLogger())

	urls, err := p.ProcessAIPodcast(context.Background(), "https://host/a.mp3")
	if err != nil {
		t.Fatalf("ProcessAIPodcast: %v", err)
	}
	if len(urls) != 1 {
		t.Fatalf("expected one clip, got %v", urls)
	}
	if len(images.prompts) != 2 {
		t.Fatalf("expected one image per keyword, got %v", images.prompts)
	}
	if video.stillCalls != 2 || video.trimCalls != 0 {
		t.Fatalf("expected still-image parts only, got still=%d trim=%d", video.stillCalls, video.trimCalls)
	}
	if len(video.concatLens) != 1 || video.concatLens[0] != 2 {
		t.Fatalf("expected concat of 2 parts, got %v", video.concatLens)
	}
	assertNoJobLeftovers(t, workDir)
}

func TestProcessVideoPodcast(t *testing.T) {
	workDir := t.TempDir()
	video := &fakeVideo{duration: time.Hour}
	asr := &fakeASR{tr: types.Transcript{Segments: []types.Segment{
		{Start: 12, End: 18, Text: "something worth clipping"},
	}}}
	llm := &fakeMoments{timed: []types.TimedMoment{
		{Title: "The big reveal", Start: 10, End: 40, Description: "the host reveals it"},
	}}
	up := &fakeUploader{}

	p := New(Deps{
		Fetcher: &fakeFetcher{}, Video: video, ASR: asr, Moments: llm,
		Images: &fakeImages{}, TTS: &fakeTTS{}, Stock: &fakeStock{}, Uploader: up,
	}, workDir, testLogger())

	recs, err := p.ProcessVideoPodcast(context.Background(), "https://host/show.mp4")
	if err != nil {
		t.Fatalf("ProcessVideoPodcast: %v", err)
	}
	if !asr.wordsFlag {
		t.Fatal("video transcription must request word timestamps")
	}
	if len(recs) != 1 {
		t.Fatalf("expected one record, got %v", recs)
	}
	r := recs[0]
	if r.Title != "The big reveal" || r.Description != "the host reveals it" {
		t.Fatalf("unexpected record: %+v", r)
	}
	if r.StartSec != 10 || r.EndSec != 40 {
		t.Fatalf("unexpected window: %+v", r)
	}
	if r.URL != up.urls[0] {
		t.Fatalf("record url %q, want %q", r.URL, up.urls[0])
	}
	if len(video.subClips) != 1 || video.subClips[0] != "clip_1.mp4" {
		t.Fatalf("unexpected sub-clips: %v", video.subClips)
	}
	assertNoJobLeftovers(t, workDir)
}

func TestAbstractSummary(t *testing.T) {
	tests := []struct {
		name      string
		url       string
		wantVideo bool
	}{
		{"audio", "https://host/show.mp3", false},
		{"video", "https://host/show.mp4", true},
		{"unknownExtension", "https://host/stream", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fetcher := &fakeFetcher{}
			llm := &fakeMoments{summary: "## Summary\n- point"}
			p := New(Deps{
				Fetcher: fetcher, Video: &fakeVideo{},
				ASR: &fakeASR{tr: oneSegmentTranscript()}, Moments: llm,
				Images: &fakeImages{}, TTS: &fakeTTS{}, Stock: &fakeStock{}, Uploader: &fakeUploader{},
			}, t.TempDir(), testLogger())

			got, err := p.AbstractSummary(context.Background(), tt.url)
			if err != nil {
				t.Fatalf("AbstractSummary: %v", err)
			}
			if got != "## Summary\n- point" {
				t.Fatalf("unexpected summary: %q", got)
			}
			if tt.wantVideo && len(fetcher.videoURLs) != 1 {
				t.Fatalf("expected video download, got audio=%v video=%v", fetcher.audioURLs, fetcher.videoURLs)
			}
			if !tt.wantVideo && len(fetcher.audioURLs) != 1 {
				t.Fatalf("expected audio download, got audio=%v video=%v", fetcher.audioURLs, fetcher.videoURLs)
			}
		})
	}
}

func TestIsVideoURL(t *testing.T) {
	tests := []struct {
		url  string
		want bool
	}{
		{"https://host/episode.mp4", true},
		{"https://host/episode.webm", true},
		{"https://host/episode.mp3", false},
		{"https://host/episode.wav", false},
		{"https://host/episode.mp4?sig=abc", true},
		{"https://host/stream", false},
	}
	for _, tt := range tests {
		if got := isVideoURL(tt.url); got != tt.want {
			t.Errorf("isVideoURL(%q) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestNormalizePathSegment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Mountain Hiking", "mountain-hiking"},
		{"  spaced  out  ", "spaced-out"},
		{"C++ & Go!", "c-go"},
		{"already-clean", "already-clean"},
	}
	for _, tt := range tests {
		if got := normalizePathSegment(tt.in); got != tt.want {
			t.Errorf("normalizePathSegment(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
