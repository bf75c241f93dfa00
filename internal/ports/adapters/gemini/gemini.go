// Package gemini adapts Vertex AI generative models: Gemini for key-moment
// extraction and summaries, Imagen for still-image generation. Credentials
// are explicit construction-time configuration; nothing here mutates
// process-wide environment state.
package gemini

import (
	"context"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/auth/credentials"
	"google.golang.org/genai"

	"github.com/avelichko/podcut/internal/domain/moments"
	"github.com/avelichko/podcut/internal/types"
)

type Config struct {
	Project  string
	Location string
	// CredentialsJSON is the decoded service-account key.
	CredentialsJSON []byte
	TextModel       string
	ImageModel      string
}

type Adapter struct {
	client     *genai.Client
	textModel  string
	imageModel string
}

func New(ctx context.Context, cfg Config) (*Adapter, error) {
	if cfg.TextModel == "" {
		cfg.TextModel = "gemini-2.5-flash"
	}
	if cfg.ImageModel == "" {
		cfg.ImageModel = "imagen-4.0-generate-preview-06-06"
	}

	creds, err := credentials.DetectDefault(&credentials.DetectOptions{
		CredentialsJSON: cfg.CredentialsJSON,
		Scopes:          []string{"https://www.googleapis.com/auth/cloud-platform"},
	})
	if err != nil {
		return nil, fmt.Errorf("gemini credentials: %w", err)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		Backend:     genai.BackendVertexAI,
		Project:     cfg.Project,
		Location:    cfg.Location,
		Credentials: creds,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Adapter{client: client, textModel: cfg.TextModel, imageModel: cfg.ImageModel}, nil
}

func (a *Adapter) KeywordMoments(ctx context.Context, transcript string) ([]types.KeywordMoment, error) {
	raw, err := a.generate(ctx, keywordPrompt+transcript)
	if err != nil {
		return nil, err
	}
	return moments.DecodeKeywordMoments(raw)
}

func (a *Adapter) TimedMoments(ctx context.Context, transcript string) ([]types.TimedMoment, error) {
	raw, err := a.generate(ctx, timedPrompt+transcript)
	if err != nil {
		return nil, err
	}
	return moments.DecodeTimedMoments(raw)
}

func (a *Adapter) Summarize(ctx context.Context, transcript string) (string, error) {
	raw, err := a.generate(ctx, summaryPrompt+transcript)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(raw), nil
}

func (a *Adapter) GenerateImage(ctx context.Context, prompt, outPath string) error {
	resp, err := a.client.Models.GenerateImages(ctx, a.imageModel, prompt, &genai.GenerateImagesConfig{
		NumberOfImages: 1,
		AspectRatio:    "9:16",
	})
	if err != nil {
		return fmt.Errorf("generate image: %w", err)
	}
	if len(resp.GeneratedImages) == 0 || resp.GeneratedImages[0].Image == nil {
		return fmt.Errorf("generate image: empty response")
	}
	return os.WriteFile(outPath, resp.GeneratedImages[0].Image.ImageBytes, 0o644)
}

func (a *Adapter) generate(ctx context.Context, prompt string) (string, error) {
	result, err := a.client.Models.GenerateContent(ctx, a.textModel, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", fmt.Errorf("empty response from model")
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part.Text != "" {
			b.WriteString(part.Text)
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", fmt.Errorf("empty response from model")
	}
	return b.String(), nil
}
