package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storyreel/internal/ai/component"
	"storyreel/internal/config"
	"storyreel/internal/pipeline"
	"storyreel/internal/pkg/ffmpeg"
	"storyreel/internal/pkg/storage"
	"storyreel/internal/pkg/storage/storagefactory"
	"storyreel/internal/provider"
	"storyreel/internal/scene"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a vertical video from a narrated MP3",
	Long: `Generate runs the full pipeline: builds a healed scene timeline from
the audio (grouped or direct mode), generates one image per scene, and
assembles a vertical slideshow video with the original narration.`,
	RunE: runGenerate,
}

var (
	generateAudio   string
	generateProject string
)

func init() {
	rootCmd.AddCommand(generateCmd)

	flags := generateCmd.Flags()

	flags.StringVarP(&generateAudio, "audio", "a", "", "narrated MP3 file (required)")
	flags.StringVarP(&generateProject, "project", "p", "", "project name (default: audio file name)")
	flags.String("mode", "grouped", "scene source mode (grouped/direct)")
	flags.String("concept", "", "overall video concept woven into prompts")
	flags.Duration("max-scene-duration", 8*time.Second, "target upper bound for a single scene")
	flags.Int("workers", 1, "concurrent image generations (1 = sequential)")

	_ = generateCmd.MarkFlagRequired("audio")

	_ = viper.BindPFlag("pipeline.mode", flags.Lookup("mode"))
	_ = viper.BindPFlag("pipeline.concept", flags.Lookup("concept"))
	_ = viper.BindPFlag("pipeline.max_scene_duration", flags.Lookup("max-scene-duration"))
	_ = viper.BindPFlag("image.workers", flags.Lookup("workers"))
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cfg := GetConfig()
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	projectName := generateProject
	if projectName == "" {
		projectName = strings.TrimSuffix(filepath.Base(generateAudio), filepath.Ext(generateAudio))
	}

	p, err := buildPipeline(cmd.Context(), cfg)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	videoPath, err := p.Run(ctx, generateAudio, projectName, cfg.Pipeline.Mode)
	if err != nil {
		return err
	}

	fmt.Println(videoPath)
	return nil
}

// buildPipeline 按配置装配整条流水线
func buildPipeline(ctx context.Context, cfg *config.Config) (*pipeline.Pipeline, error) {
	chatModel, err := component.NewChatModel(ctx, &cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create chat model: %w", err)
	}

	llm := provider.NewEinoLLM(chatModel)
	analyzer := provider.NewEinoAudioAnalyzer(chatModel)
	transcriber := provider.NewWhisperTranscriber(
		cfg.AudioAPIKey(), cfg.Audio.BaseURL, cfg.Audio.Model, cfg.Audio.Language)

	imageProvider, err := buildImageProvider(cfg)
	if err != nil {
		return nil, err
	}
	fallback := provider.NewPlaceholderImage(cfg.Video.Width, cfg.Video.Height, cfg.Image.FontPath)

	workers := cfg.Image.Workers
	if workers > 1 {
		// 并发生成时画面连贯性提示会失效，提醒一下
		log.Info().Int("workers", workers).Msg("并发生成图片，场景间连贯性提示关闭")
	}
	materializer := pipeline.NewMaterializer(imageProvider, fallback,
		pipeline.WithWorkers(workers),
		pipeline.WithRateLimit(cfg.Image.RateLimitPerMin),
		pipeline.WithRetryPolicy(pipeline.RetryPolicy{
			MaxAttempts: cfg.Image.MaxRetries,
			Delay:       cfg.Image.RetryDelay,
		}),
		pipeline.WithAspectRatio(cfg.Image.AspectRatio),
		pipeline.WithConcept(cfg.Pipeline.Concept),
	)

	var store storage.Storage
	if cfg.Storage.Type == string(storage.StorageTypeOSS) {
		store, err = storagefactory.New(&cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("create storage: %w", err)
		}
	}

	ffmpegClient := ffmpeg.NewClient()
	assembler := pipeline.NewAssembler(ffmpegClient, store,
		cfg.Video.Width, cfg.Video.Height, cfg.Video.FPS)

	return pipeline.New(pipeline.Options{
		Grouped:         scene.NewGroupedSource(llm, transcriber, cfg.Pipeline.MaxSceneDuration),
		Direct:          scene.NewDirectSource(analyzer),
		Analyzer:        analyzer,
		Materializer:    materializer,
		Assembler:       assembler,
		FFmpeg:          ffmpegClient,
		ProjectsDir:     cfg.Pipeline.ProjectsDir,
		PartitionWindow: time.Duration(cfg.Audio.ChunkSecs) * time.Second,
		Concept:         cfg.Pipeline.Concept,
	}), nil
}

// buildImageProvider 按配置选择图片生成后端
func buildImageProvider(cfg *config.Config) (scene.ImageProvider, error) {
	switch cfg.Image.Provider {
	case "ark", "":
		return provider.NewArkImage(cfg.ImageAPIKey(), cfg.Image.BaseURL, cfg.Image.Model, cfg.Image.Size)
	case "openai":
		return provider.NewOpenAIImage(cfg.ImageAPIKey(), cfg.Image.BaseURL, cfg.Image.Model, cfg.Image.Size)
	case "placeholder":
		return provider.NewPlaceholderImage(cfg.Video.Width, cfg.Video.Height, cfg.Image.FontPath), nil
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", cfg.Image.Provider)
	}
}
