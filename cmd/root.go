package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"storyreel/internal/config"
	"storyreel/internal/pkg/logger"
)

var (
	cfgFile string
	cfg     *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "storyreel",
	Short: "StoryReel - narrated audio to vertical video",
	Long: `StoryReel turns a narrated MP3 story into a vertical slideshow video.
It builds a healed scene timeline from the audio, generates one image per
scene, and assembles the result with the original narration.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "",
		"config file (default: ./configs/config.yaml)")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
}

func initConfig() {
	// .env 里通常放各家 API Key，找不到就跳过
	_ = godotenv.Load()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		viper.AddConfigPath("./configs")
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME/.storyreel")
	}

	// 环境变量设置
	viper.SetEnvPrefix("STORYREEL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 设置默认值
	setDefaults()

	// 读取配置文件
	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			fmt.Fprintln(os.Stderr, "No config file found, using defaults and environment variables")
		} else {
			fmt.Fprintf(os.Stderr, "Failed to read config: %v\n", err)
			os.Exit(1)
		}
	}

	// 反序列化到结构体
	cfg = &config.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to unmarshal config: %v\n", err)
		os.Exit(1)
	}

	// 初始化日志
	if err := logger.Init(&cfg.Log); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to init logger: %v\n", err)
		os.Exit(1)
	}

	log.Debug().Str("config_file", viper.ConfigFileUsed()).Msg("configuration loaded")
}

func setDefaults() {
	// AI
	viper.SetDefault("ai.provider", "openai")
	viper.SetDefault("ai.model", "gpt-4o")
	viper.SetDefault("ai.options.temperature", 0.7)
	viper.SetDefault("ai.options.max_tokens", 4096)
	viper.SetDefault("ai.options.top_p", 1.0)

	// Audio
	viper.SetDefault("audio.model", "whisper-1")
	viper.SetDefault("audio.chunk_secs", 0)

	// Image
	viper.SetDefault("image.provider", "ark")
	viper.SetDefault("image.size", "720x1280")
	viper.SetDefault("image.aspect_ratio", "9:16 vertical")
	viper.SetDefault("image.max_retries", 3)
	viper.SetDefault("image.retry_delay", "2s")
	viper.SetDefault("image.workers", 1)
	viper.SetDefault("image.rate_limit_per_min", 0)

	// Pipeline
	viper.SetDefault("pipeline.mode", "grouped")
	viper.SetDefault("pipeline.projects_dir", "./projects")
	viper.SetDefault("pipeline.max_scene_duration", "8s")

	// Video
	viper.SetDefault("video.width", 540)
	viper.SetDefault("video.height", 960)
	viper.SetDefault("video.fps", 30)

	// Log
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "console")
	viper.SetDefault("log.output", "stdout")
	viper.SetDefault("log.time_format", "RFC3339")

	// Storage
	viper.SetDefault("storage.type", "local")
	viper.SetDefault("storage.local.base_path", "./data/storage")
}

// GetConfig returns the global configuration
func GetConfig() *config.Config {
	return cfg
}
