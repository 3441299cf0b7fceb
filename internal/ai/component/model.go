package component

import (
	"context"
	"fmt"

	arkext "github.com/cloudwego/eino-ext/components/model/ark"
	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"

	"storyreel/internal/config"
)

// NewChatModel 创建 ChatModel
// 场景分组与音频理解共用同一个实例，按 provider 选择后端: openai, azure, ark
func NewChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	switch cfg.Provider {
	case "openai", "azure", "":
		return newOpenAIChatModel(ctx, cfg, cfg.Provider == "azure")
	case "ark":
		return newArkChatModel(ctx, cfg)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.Provider)
	}
}

// float32Ptr 把配置里的模型参数转成 SDK 需要的指针，非正值视为未设置
func float32Ptr(v float64) *float32 {
	if v <= 0 {
		return nil
	}
	f := float32(v)
	return &f
}

func intPtr(v int) *int {
	if v <= 0 {
		return nil
	}
	return &v
}

// newOpenAIChatModel 创建 OpenAI / Azure OpenAI ChatModel
// 两者共用 eino-ext 的 openai 模块，仅 ByAzure 开关不同
func newOpenAIChatModel(ctx context.Context, cfg *config.AIConfig, byAzure bool) (model.ChatModel, error) {
	modelCfg := &openai.ChatModelConfig{
		Model:       cfg.Model,
		APIKey:      cfg.APIKey,
		ByAzure:     byAzure,
		Temperature: float32Ptr(cfg.Options.Temperature),
		MaxTokens:   intPtr(cfg.Options.MaxTokens),
		TopP:        float32Ptr(cfg.Options.TopP),
	}

	// Base URL (Azure 必填；OpenAI 可选，用于代理或兼容 API)
	if cfg.BaseURL != "" {
		modelCfg.BaseURL = cfg.BaseURL
	}

	return openai.NewChatModel(ctx, modelCfg)
}

// newArkChatModel 创建火山引擎 Ark ChatModel
func newArkChatModel(ctx context.Context, cfg *config.AIConfig) (model.ChatModel, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = "doubao-seed-1-6-flash-250615" // 默认模型
	}

	modelCfg := &arkext.ChatModelConfig{
		Model:       modelName,
		APIKey:      cfg.APIKey,
		BaseURL:     baseURL,
		Temperature: float32Ptr(cfg.Options.Temperature),
		MaxTokens:   intPtr(cfg.Options.MaxTokens),
		TopP:        float32Ptr(cfg.Options.TopP),
	}

	return arkext.NewChatModel(ctx, modelCfg)
}
