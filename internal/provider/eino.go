package provider

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// EinoLLM Eino 封装的 LLM 提供者
// 使用 ai/component 封装的 ChatModel（openai/azure/ark 任一后端）
// 实现了 scene.LLMProvider 接口
type EinoLLM struct {
	chatModel model.ChatModel
}

// NewEinoLLM 创建基于 Eino 的 LLM 提供者
func NewEinoLLM(chatModel model.ChatModel) *EinoLLM {
	return &EinoLLM{
		chatModel: chatModel,
	}
}

// Generate 根据提示词生成文本
func (p *EinoLLM) Generate(ctx context.Context, prompt string) (string, error) {
	if p.chatModel == nil {
		return "", fmt.Errorf("chatModel is required")
	}

	messages := []*schema.Message{
		schema.UserMessage(prompt),
	}

	response, err := p.chatModel.Generate(ctx, messages)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	content := response.Content
	if content == "" {
		return "", fmt.Errorf("empty response from chat model")
	}

	return content, nil
}
