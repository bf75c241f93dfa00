package ffmpeg

import (
	"strings"
	"testing"
	"time"
)

func TestFmtSeconds(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{0, "0.000"},
		{time.Second, "1.000"},
		{1500 * time.Millisecond, "1.500"},
		{30*time.Second + 250*time.Millisecond, "30.250"},
	}
	for _, tt := range tests {
		if got := fmtSeconds(tt.d); got != tt.want {
			t.Errorf("fmtSeconds(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestEscapeFilterPath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/tmp/jobs/abc/captions_0.ass", "/tmp/jobs/abc/captions_0.ass"},
		{`C:\work\captions.ass`, `C\:\\work\\captions.ass`},
	}
	for _, tt := range tests {
		if got := escapeFilterPath(tt.in); got != tt.want {
			t.Errorf("escapeFilterPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConcatList(t *testing.T) {
	got := concatList([]string{"/a/part_0.mp4", "/a/part_1.mp4"})
	want := "file '/a/part_0.mp4'\nfile '/a/part_1.mp4'\n"
	if got != want {
		t.Fatalf("concatList = %q, want %q", got, want)
	}
}

func TestConcatList_EscapesQuotes(t *testing.T) {
	got := concatList([]string{"/a/it's.mp4"})
	if !strings.Contains(got, `file '/a/it'\''s.mp4'`) {
		t.Fatalf("quote not escaped: %q", got)
	}
}

func TestScaleFilter_VerticalCanvas(t *testing.T) {
	f := scaleFilter()
	for _, want := range []string{"scale=432:768", "pad=432:768", "setsar=1"} {
		if !strings.Contains(f, want) {
			t.Errorf("scale filter missing %q: %s", want, f)
		}
	}
}
