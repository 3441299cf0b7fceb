package provider

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoAudioAnalyzer 多模态音频分析提供者
// 把整段音频以 data URL 形式随提示词一并发给支持音频输入的 ChatModel
// 实现了 scene.AudioAnalyzer 接口
type EinoAudioAnalyzer struct {
	chatModel model.ChatModel
}

// NewEinoAudioAnalyzer 创建多模态音频分析提供者
func NewEinoAudioAnalyzer(chatModel model.ChatModel) *EinoAudioAnalyzer {
	return &EinoAudioAnalyzer{
		chatModel: chatModel,
	}
}

// audioMIMEType 根据扩展名推断 MIME 类型
func audioMIMEType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".wav":
		return "audio/wav"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	default:
		return "audio/mpeg"
	}
}

// AnalyzeAudio 分析音频并返回模型文本回复
func (p *EinoAudioAnalyzer) AnalyzeAudio(ctx context.Context, audioPath, prompt string) (string, error) {
	if p.chatModel == nil {
		return "", fmt.Errorf("chatModel is required")
	}

	data, err := os.ReadFile(audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to read audio file: %w", err)
	}

	mime := audioMIMEType(audioPath)
	dataURL := fmt.Sprintf("data:%s;base64,%s", mime, base64.StdEncoding.EncodeToString(data))

	messages := []*schema.Message{
		{
			Role: schema.User,
			MultiContent: []schema.ChatMessagePart{
				{
					Type: schema.ChatMessagePartTypeText,
					Text: prompt,
				},
				{
					Type: schema.ChatMessagePartTypeAudioURL,
					AudioURL: &schema.ChatMessageAudioURL{
						URL:      dataURL,
						MIMEType: mime,
					},
				},
			},
		},
	}

	response, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to analyze audio: %w", err)
	}

	content := response.Content
	if content == "" {
		return "", fmt.Errorf("empty response from chat model")
	}

	return content, nil
}
