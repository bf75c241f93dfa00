// Package gtts synthesizes narration speech through the Google Translate
// text-to-speech endpoint. The endpoint caps query text at ~100 characters,
// so longer scripts are split on word boundaries and the returned MP3 parts
// are concatenated in order.
package gtts

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://translate.google.com"
	maxChunkLen    = 100
)

type Adapter struct {
	lang    string
	baseURL string
	client  *http.Client
}

func New(lang, baseURL string) *Adapter {
	if lang == "" {
		lang = "en"
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{lang: lang, baseURL: baseURL, client: &http.Client{Timeout: time.Minute}}
}

func (a *Adapter) Synthesize(ctx context.Context, text, outPath string) error {
	chunks := chunkText(text, maxChunkLen)
	if len(chunks) == 0 {
		return fmt.Errorf("synthesize: empty text")
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	for i, chunk := range chunks {
		if err := a.fetchChunk(ctx, chunk, i, len(chunks), f); err != nil {
			f.Close()
			return err
		}
	}
	return f.Close()
}

func (a *Adapter) fetchChunk(ctx context.Context, text string, idx, total int, w io.Writer) error {
	q := url.Values{}
	q.Set("ie", "UTF-8")
	q.Set("client", "tw-ob")
	q.Set("tl", a.lang)
	q.Set("q", text)
	q.Set("idx", strconv.Itoa(idx))
	q.Set("total", strconv.Itoa(total))
	q.Set("textlen", strconv.Itoa(len(text)))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/translate_tts?"+q.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("tts status %d for chunk %d/%d", resp.StatusCode, idx+1, total)
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("tts read chunk %d/%d: %w", idx+1, total, err)
	}
	return nil
}

// chunkText splits text into runs of at most limit characters without
// breaking words. A single word longer than limit becomes its own chunk.
func chunkText(text string, limit int) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	var out []string
	cur := words[0]
	for _, w := range words[1:] {
		if len(cur)+1+len(w) > limit {
			out = append(out, cur)
			cur = w
			continue
		}
		cur += " " + w
	}
	return append(out, cur)
}
