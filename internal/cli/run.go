package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/avelichko/podcut/internal/config"
	"github.com/avelichko/podcut/internal/fetch"
	"github.com/avelichko/podcut/internal/pipeline"
	"github.com/avelichko/podcut/internal/ports"
	"github.com/avelichko/podcut/internal/ports/adapters/cloudinary"
	"github.com/avelichko/podcut/internal/ports/adapters/ffmpeg"
	"github.com/avelichko/podcut/internal/ports/adapters/gemini"
	"github.com/avelichko/podcut/internal/ports/adapters/gtts"
	"github.com/avelichko/podcut/internal/ports/adapters/pexels"
	"github.com/avelichko/podcut/internal/ports/adapters/whispercpp"
	"github.com/avelichko/podcut/internal/server"
)

func run(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	addrOverride, _ := cmd.Flags().GetString("addr")

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if addrOverride != "" {
		cfg.Server.Addr = addrOverride
	}

	log := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(log)

	// adapters
	video := ffmpeg.New(cfg.FFmpeg.FFmpegPath, cfg.FFmpeg.FFprobePath)
	asr := whispercpp.New(cfg.Whisper.BinaryPath, cfg.Whisper.ModelPath)
	llm, err := gemini.New(context.Background(), gemini.Config{
		Project:         cfg.Gemini.Project,
		Location:        cfg.Gemini.Location,
		CredentialsJSON: cfg.Gemini.CredentialsJSON,
		TextModel:       cfg.Gemini.TextModel,
		ImageModel:      cfg.Gemini.ImageModel,
	})
	if err != nil {
		return err
	}
	up, err := cloudinary.New(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
		cfg.Cloudinary.Folder,
	)
	if err != nil {
		return err
	}

	pipe := pipeline.New(pipeline.Deps{
		Fetcher:  fetch.New(),
		Video:    video,
		ASR:      asr,
		Moments:  llm,
		Images:   llm,
		TTS:      gtts.New(cfg.TTS.Language, ""),
		Stock:    pexels.New(cfg.Pexels.APIKey, ""),
		Uploader: up,
	}, cfg.Server.WorkDir, log)

	srv := server.New(pipe, log)
	log.Info("listening", "addr", cfg.Server.Addr)
	if err := http.ListenAndServe(cfg.Server.Addr, srv.Handler()); err != nil {
		return fmt.Errorf("http server: %w", err)
	}
	return nil
}

// ensure adapters implement ports
var _ ports.VideoTool = (*ffmpeg.Adapter)(nil)
var _ ports.ASR = (*whispercpp.Adapter)(nil)
var _ ports.MomentSource = (*gemini.Adapter)(nil)
var _ ports.ImageGenerator = (*gemini.Adapter)(nil)
var _ ports.SpeechSynth = (*gtts.Adapter)(nil)
var _ ports.StockProvider = (*pexels.Adapter)(nil)
var _ ports.Uploader = (*cloudinary.Adapter)(nil)
var _ ports.Fetcher = (*fetch.Client)(nil)
var _ server.Jobs = (*pipeline.Pipeline)(nil)
