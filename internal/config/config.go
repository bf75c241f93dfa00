// Package config loads the service configuration: a YAML file for paths and
// tool settings, environment variables for credentials. Secrets never come
// from the YAML file and are handed to collaborators at construction time
// rather than through process-wide side effects.
package config

import (
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Whisper    WhisperConfig    `yaml:"whisper"`
	FFmpeg     FFmpegConfig     `yaml:"ffmpeg"`
	Gemini     GeminiConfig     `yaml:"gemini"`
	TTS        TTSConfig        `yaml:"tts"`
	Pexels     PexelsConfig     `yaml:"pexels"`
	Cloudinary CloudinaryConfig `yaml:"cloudinary"`
}

type ServerConfig struct {
	Addr    string `yaml:"addr"`
	WorkDir string `yaml:"work_dir"`
}

type WhisperConfig struct {
	BinaryPath string `yaml:"binary_path"`
	ModelPath  string `yaml:"model_path"`
}

type FFmpegConfig struct {
	FFmpegPath  string `yaml:"ffmpeg_path"`
	FFprobePath string `yaml:"ffprobe_path"`
}

type GeminiConfig struct {
	TextModel  string `yaml:"text_model"`
	ImageModel string `yaml:"image_model"`

	// From env, not YAML.
	Project         string `yaml:"-"`
	Location        string `yaml:"-"`
	CredentialsJSON []byte `yaml:"-"`
}

type TTSConfig struct {
	Language string `yaml:"language"`
}

type PexelsConfig struct {
	// APIKey comes from env, not YAML.
	APIKey string `yaml:"-"`
}

type CloudinaryConfig struct {
	Folder string `yaml:"folder"`

	// From env, not YAML.
	CloudName string `yaml:"-"`
	APIKey    string `yaml:"-"`
	APISecret string `yaml:"-"`
}

// Load reads the YAML file at path, overlays environment credentials and
// validates the result.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r, overlays environment
// credentials and validates the result. Useful in tests where configs are
// built from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if err := cfg.overlayEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) overlayEnv() error {
	if b64 := os.Getenv("GOOGLE_CREDENTIALS_JSON_BASE64"); b64 != "" {
		raw, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return fmt.Errorf("decode GOOGLE_CREDENTIALS_JSON_BASE64: %w", err)
		}
		c.Gemini.CredentialsJSON = raw
	}
	c.Gemini.Project = os.Getenv("GCP_PROJECT_ID")
	c.Gemini.Location = os.Getenv("LOCATION")
	c.Pexels.APIKey = os.Getenv("PEXELS_API_KEY")
	c.Cloudinary.CloudName = os.Getenv("CLOUDINARY_CLOUD_NAME")
	c.Cloudinary.APIKey = os.Getenv("CLOUDINARY_API_KEY")
	c.Cloudinary.APISecret = os.Getenv("CLOUDINARY_API_SECRET")
	return nil
}

// Validate applies defaults and checks that everything a job needs is set.
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.WorkDir == "" {
		c.Server.WorkDir = ".cache"
	}
	if c.Whisper.BinaryPath == "" {
		c.Whisper.BinaryPath = ".cache/bin/whisper.cpp"
	}
	if c.Whisper.ModelPath == "" {
		return fmt.Errorf("whisper.model_path is required")
	}
	if c.FFmpeg.FFmpegPath == "" {
		c.FFmpeg.FFmpegPath = "ffmpeg"
	}
	if c.FFmpeg.FFprobePath == "" {
		c.FFmpeg.FFprobePath = "ffprobe"
	}
	if c.Gemini.TextModel == "" {
		c.Gemini.TextModel = "gemini-2.5-flash"
	}
	if c.Gemini.ImageModel == "" {
		c.Gemini.ImageModel = "imagen-4.0-generate-preview-06-06"
	}
	if c.TTS.Language == "" {
		c.TTS.Language = "en"
	}
	if c.Cloudinary.Folder == "" {
		c.Cloudinary.Folder = "key_moments"
	}

	if len(c.Gemini.CredentialsJSON) == 0 {
		return fmt.Errorf("GOOGLE_CREDENTIALS_JSON_BASE64 is required")
	}
	if c.Gemini.Project == "" {
		return fmt.Errorf("GCP_PROJECT_ID is required")
	}
	if c.Gemini.Location == "" {
		return fmt.Errorf("LOCATION is required")
	}
	if c.Pexels.APIKey == "" {
		return fmt.Errorf("PEXELS_API_KEY is required")
	}
	if c.Cloudinary.CloudName == "" || c.Cloudinary.APIKey == "" || c.Cloudinary.APISecret == "" {
		return fmt.Errorf("CLOUDINARY_CLOUD_NAME, CLOUDINARY_API_KEY and CLOUDINARY_API_SECRET are required")
	}
	return nil
}
