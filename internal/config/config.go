package config

import (
	"errors"
	"time"
)

// Config 应用配置根结构
type Config struct {
	AI       AIConfig       `mapstructure:"ai"`
	Audio    AudioConfig    `mapstructure:"audio"`
	Image    ImageConfig    `mapstructure:"image"`
	Pipeline PipelineConfig `mapstructure:"pipeline"`
	Video    VideoConfig    `mapstructure:"video"`
	Log      LogConfig      `mapstructure:"log"`
	Storage  StorageConfig  `mapstructure:"storage"`
}

// AIConfig 文本模型配置（用于场景分组与场景描述）
type AIConfig struct {
	Provider string          `mapstructure:"provider"` // openai, azure, ark
	APIKey   string          `mapstructure:"api_key"`
	Model    string          `mapstructure:"model"`
	BaseURL  string          `mapstructure:"base_url"`
	Options  AIOptionsConfig `mapstructure:"options"`
}

// AIOptionsConfig 模型参数
type AIOptionsConfig struct {
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	TopP        float64 `mapstructure:"top_p"`
}

// AudioConfig 语音识别配置
type AudioConfig struct {
	APIKey    string `mapstructure:"api_key"`    // 识别服务 API Key（为空时复用 ai.api_key）
	BaseURL   string `mapstructure:"base_url"`   // 识别服务地址（可选，用于兼容 API）
	Model     string `mapstructure:"model"`      // 识别模型（默认: whisper-1）
	Language  string `mapstructure:"language"`   // 语言提示（如 vi、en，可为空）
	ChunkSecs int    `mapstructure:"chunk_secs"` // 长音频切块时长（秒）
}

// ImageConfig 图片生成配置
type ImageConfig struct {
	Provider       string        `mapstructure:"provider"`          // ark, openai, placeholder
	APIKey         string        `mapstructure:"api_key"`           // 为空时复用 ai.api_key
	BaseURL        string        `mapstructure:"base_url"`
	Model          string        `mapstructure:"model"`
	Size           string        `mapstructure:"size"`              // 如 720x1280（竖屏）
	AspectRatio    string        `mapstructure:"aspect_ratio"`      // 提示词中的画幅约束
	MaxRetries     int           `mapstructure:"max_retries"`       // 每张图片最大尝试次数
	RetryDelay     time.Duration `mapstructure:"retry_delay"`       // 重试间隔
	Workers        int           `mapstructure:"workers"`           // 并发生成数（1 为串行）
	RateLimitPerMin int          `mapstructure:"rate_limit_per_min"` // 每分钟请求上限（0 不限）
	FontPath       string        `mapstructure:"font_path"`         // 占位图字体文件（可选）
}

// PipelineConfig 流水线配置
type PipelineConfig struct {
	Mode            string        `mapstructure:"mode"`              // grouped, direct
	ProjectsDir     string        `mapstructure:"projects_dir"`      // 项目根目录
	MaxSceneDuration time.Duration `mapstructure:"max_scene_duration"` // 单个场景目标最大时长
	Concept         string        `mapstructure:"concept"`           // 全局概念提示词（可选）
}

// VideoConfig 输出视频配置
type VideoConfig struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
	FPS    int `mapstructure:"fps"`
}

// LogConfig 日志配置 (Zerolog)
type LogConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	Output     string `mapstructure:"output"`
	FilePath   string `mapstructure:"file_path"`
	TimeFormat string `mapstructure:"time_format"`
}

// StorageConfig 存储配置
type StorageConfig struct {
	Type  string       `mapstructure:"type"` // local, oss
	Local *LocalConfig `mapstructure:"local,omitempty"`
	OSS   *OSSConfig   `mapstructure:"oss,omitempty"`
}

// LocalConfig 本地文件系统配置
type LocalConfig struct {
	BasePath string `mapstructure:"base_path"`
}

// OSSConfig 阿里云OSS配置
type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	Bucket          string `mapstructure:"bucket"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
}

// ImageAPIKey 图片生成使用的 API Key（回落到 ai.api_key）
func (c *Config) ImageAPIKey() string {
	if c.Image.APIKey != "" {
		return c.Image.APIKey
	}
	return c.AI.APIKey
}

// AudioAPIKey 语音识别使用的 API Key（回落到 ai.api_key）
func (c *Config) AudioAPIKey() string {
	if c.Audio.APIKey != "" {
		return c.Audio.APIKey
	}
	return c.AI.APIKey
}

// Validate 验证配置有效性
func (c *Config) Validate() error {
	validModes := map[string]bool{"grouped": true, "direct": true}
	if !validModes[c.Pipeline.Mode] {
		return errors.New("invalid pipeline mode, must be grouped/direct")
	}

	if c.Pipeline.MaxSceneDuration <= 0 {
		return errors.New("pipeline.max_scene_duration must be positive")
	}

	if c.Video.Width <= 0 || c.Video.Height <= 0 || c.Video.FPS <= 0 {
		return errors.New("video width/height/fps must be positive")
	}

	if c.Image.MaxRetries <= 0 {
		return errors.New("image.max_retries must be at least 1")
	}

	if c.Image.Workers <= 0 {
		return errors.New("image.workers must be at least 1")
	}

	return nil
}
