package ffmpeg

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/avelichko/podcut/internal/domain/captions"
)

type Adapter struct {
	ffmpeg  string
	ffprobe string
}

func New(ffmpegPath, ffprobePath string) *Adapter {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}
	return &Adapter{ffmpeg: ffmpegPath, ffprobe: ffprobePath}
}

func (a *Adapter) ExtractAudioMono16k(ctx context.Context, in, outWav string) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", in,
		"-vn",
		"-ac", "1",
		"-ar", "16000",
		"-f", "wav",
		outWav,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg extract audio: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) ProbeDuration(ctx context.Context, in string) (time.Duration, error) {
	cmd := exec.CommandContext(ctx, a.ffprobe,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		in,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return 0, fmt.Errorf("ffprobe duration: %w\n%s", err, string(b))
	}
	s := strings.TrimSpace(string(b))
	sec, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse duration %q: %w", s, err)
	}
	return time.Duration(sec * float64(time.Second)), nil
}

func (a *Adapter) TrimScale(ctx context.Context, in, out string, dur time.Duration) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", in,
		"-t", fmtSeconds(dur),
		"-vf", scaleFilter(),
		"-an",
		"-r", "24",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg trim clip: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) StillClip(ctx context.Context, image, out string, dur time.Duration) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-loop", "1",
		"-i", image,
		"-t", fmtSeconds(dur),
		"-vf", scaleFilter(),
		"-r", "24",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-pix_fmt", "yuv420p",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg still clip: %w\n%s", err, string(b))
	}
	return nil
}

// Concat joins same-codec parts with the concat demuxer. The list file lives
// next to the output and is removed after the run.
func (a *Adapter) Concat(ctx context.Context, parts []string, out string) error {
	if len(parts) == 0 {
		return fmt.Errorf("concat: no input parts")
	}
	listPath := out + ".txt"
	if err := os.WriteFile(listPath, []byte(concatList(parts)), 0o644); err != nil {
		return err
	}
	defer os.Remove(listPath)

	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listPath,
		"-c", "copy",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg concat: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) CaptionAudioMux(ctx context.Context, video, assPath, audio, out string, dur time.Duration) error {
	cmd := exec.CommandContext(ctx, a.ffmpeg,
		"-y",
		"-i", video,
		"-i", audio,
		"-vf", "subtitles="+escapeFilterPath(assPath),
		"-map", "0:v",
		"-map", "1:a",
		"-t", fmtSeconds(dur),
		"-r", "24",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		"-b:a", "192k",
		out,
	)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg caption mux: %w\n%s", err, string(b))
	}
	return nil
}

func (a *Adapter) SubClip(ctx context.Context, in string, start, end time.Duration, assPath, out string) error {
	args := []string{
		"-y",
		"-ss", fmtSeconds(start),
		"-to", fmtSeconds(end),
		"-i", in,
	}
	if assPath != "" {
		args = append(args, "-vf", "subtitles="+escapeFilterPath(assPath))
	}
	args = append(args,
		"-r", "24",
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-c:a", "aac",
		"-b:a", "192k",
		out,
	)
	cmd := exec.CommandContext(ctx, a.ffmpeg, args...)
	b, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("ffmpeg sub clip: %w\n%s", err, string(b))
	}
	return nil
}

// scaleFilter letterboxes arbitrary inputs onto the fixed vertical canvas.
func scaleFilter() string {
	w, h := captions.PlayResX, captions.PlayResY
	return fmt.Sprintf(
		"scale=%d:%d:force_original_aspect_ratio=decrease,pad=%d:%d:(ow-iw)/2:(oh-ih)/2,setsar=1",
		w, h, w, h,
	)
}

func concatList(parts []string) string {
	var b strings.Builder
	for _, p := range parts {
		abs := p
		if a, err := filepath.Abs(p); err == nil {
			abs = a
		}
		b.WriteString("file '")
		b.WriteString(strings.ReplaceAll(abs, "'", `'\''`))
		b.WriteString("'\n")
	}
	return b.String()
}

func fmtSeconds(d time.Duration) string {
	sec := float64(d) / float64(time.Second)
	return strconv.FormatFloat(sec, 'f', 3, 64)
}

func escapeFilterPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "\\\\")
	p = strings.ReplaceAll(p, ":", "\\:")
	return p
}
