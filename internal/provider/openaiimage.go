package provider

import (
	"context"
	"encoding/base64"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIImage OpenAI 图片生成提供者
// 实现了 scene.ImageProvider 接口
type OpenAIImage struct {
	client *openai.Client
	model  string
	size   string
}

// NewOpenAIImage 创建 OpenAI 图片生成提供者
func NewOpenAIImage(apiKey, baseURL, model, size string) (*OpenAIImage, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("openai image api key is required")
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.CreateImageModelDallE3
	}
	if size == "" {
		size = openai.CreateImageSize1024x1792
	}
	return &OpenAIImage{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
		size:   size,
	}, nil
}

// GenerateImage 生成图片并返回解码后的图片字节
func (p *OpenAIImage) GenerateImage(ctx context.Context, prompt, _ string) ([]byte, error) {
	resp, err := p.client.CreateImage(ctx, openai.ImageRequest{
		Model:          p.model,
		Prompt:         prompt,
		Size:           p.size,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
		N:              1,
	})
	if err != nil {
		return nil, fmt.Errorf("openai image generation: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no image data in response")
	}

	imageData, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}
	return imageData, nil
}
