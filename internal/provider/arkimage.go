package provider

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/volcengine/volcengine-go-sdk/service/arkruntime"
	arkmodel "github.com/volcengine/volcengine-go-sdk/service/arkruntime/model"
)

// ArkImage 火山引擎 Ark 图片生成提供者
// 实现了 scene.ImageProvider 接口
type ArkImage struct {
	client *arkruntime.Client
	model  string
	size   string
}

// NewArkImage 创建 Ark 图片生成提供者
func NewArkImage(apiKey, baseURL, model, size string) (*ArkImage, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("ark image api key is required")
	}
	if baseURL == "" {
		baseURL = "https://ark.cn-beijing.volces.com/api/v3"
	}
	if model == "" {
		model = "doubao-seedream-3-0-t2i-250415"
	}
	if size == "" {
		size = "720x1280"
	}

	client := arkruntime.NewClientWithApiKey(apiKey, arkruntime.WithBaseUrl(baseURL))
	return &ArkImage{
		client: client,
		model:  model,
		size:   size,
	}, nil
}

// GenerateImage 生成图片并返回解码后的图片字节
func (p *ArkImage) GenerateImage(ctx context.Context, prompt, _ string) ([]byte, error) {
	size := p.size
	responseFormat := "b64_json"
	watermark := false

	input := arkmodel.GenerateImagesRequest{
		Model:          p.model,
		Prompt:         prompt,
		Size:           &size,
		ResponseFormat: &responseFormat,
		Watermark:      &watermark,
	}

	output, err := p.client.GenerateImages(ctx, input)
	if err != nil {
		log.Error().Err(err).Msg("failed to call Ark GenerateImages API")
		return nil, fmt.Errorf("Ark GenerateImages API call failed: %w", err)
	}

	if len(output.Data) == 0 {
		return nil, fmt.Errorf("no image data in response")
	}
	first := output.Data[0]
	if first.B64Json == nil {
		return nil, fmt.Errorf("no b64_json in response data")
	}

	imageData, err := base64.StdEncoding.DecodeString(*first.B64Json)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 image data: %w", err)
	}
	return imageData, nil
}
