// Package pexels queries the Pexels video-search API for portrait stock
// footage by keyword.
package pexels

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"
)

const defaultBaseURL = "https://api.pexels.com"

type Adapter struct {
	key     string
	baseURL string
	client  *http.Client
}

func New(apiKey, baseURL string) *Adapter {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Adapter{key: apiKey, baseURL: baseURL, client: &http.Client{Timeout: 2 * time.Minute}}
}

// FetchClip searches one portrait clip for keyword and downloads it to
// outPath. found is false when the search has no result; callers skip the
// keyword rather than fail the moment.
func (a *Adapter) FetchClip(ctx context.Context, keyword, outPath string) (bool, error) {
	link, err := a.search(ctx, keyword)
	if err != nil {
		return false, err
	}
	if link == "" {
		return false, nil
	}
	if err := a.download(ctx, link, outPath); err != nil {
		return false, err
	}
	return true, nil
}

func (a *Adapter) search(ctx context.Context, keyword string) (string, error) {
	q := url.Values{}
	q.Set("query", keyword)
	q.Set("orientation", "portrait")
	q.Set("per_page", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.baseURL+"/videos/search?"+q.Encode(), nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", a.key)

	resp, err := a.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rb, _ := io.ReadAll(io.LimitReader(resp.Body, 400))
		return "", fmt.Errorf("pexels status %d: %s", resp.StatusCode, string(rb))
	}

	var out struct {
		Videos []struct {
			VideoFiles []struct {
				Link string `json:"link"`
			} `json:"video_files"`
		} `json:"videos"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode pexels response: %w", err)
	}
	if len(out.Videos) == 0 || len(out.Videos[0].VideoFiles) == 0 {
		return "", nil
	}
	return out.Videos[0].VideoFiles[0].Link, nil
}

func (a *Adapter) download(ctx context.Context, link, outPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, link, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("pexels download status %d", resp.StatusCode)
	}

	f, err := os.Create(outPath)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, resp.Body); err != nil {
		f.Close()
		return fmt.Errorf("save stock clip: %w", err)
	}
	return f.Close()
}
