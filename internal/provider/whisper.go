package provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/pemistahl/lingua-go"
	"github.com/rs/zerolog/log"
	openai "github.com/sashabaranov/go-openai"

	"storyreel/internal/pkg/subtitle"
	"storyreel/internal/pkg/timeline"
)

// WhisperTranscriber 基于 OpenAI Whisper 的语音识别提供者
// 使用 verbose_json 格式取得逐句时间戳
// 实现了 scene.Transcriber 接口
type WhisperTranscriber struct {
	client   *openai.Client
	model    string
	language string
}

// NewWhisperTranscriber 创建 Whisper 语音识别提供者
// language 为空时由 Whisper 自动检测
func NewWhisperTranscriber(apiKey, baseURL, model, language string) *WhisperTranscriber {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = openai.Whisper1
	}
	return &WhisperTranscriber{
		client:   openai.NewClientWithConfig(cfg),
		model:    model,
		language: language,
	}
}

// Transcribe 转写音频并返回带毫秒时间戳的片段列表
// 文本为空的片段跳过，下标重排为从 1 开始的连续序列
func (t *WhisperTranscriber) Transcribe(ctx context.Context, audioPath string) ([]subtitle.Segment, error) {
	req := openai.AudioRequest{
		Model:    t.model,
		FilePath: audioPath,
		Format:   openai.AudioResponseFormatVerboseJSON,
	}
	if t.language != "" {
		req.Language = t.language
	}

	resp, err := t.client.CreateTranscription(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("whisper transcription: %w", err)
	}

	segments := make([]subtitle.Segment, 0, len(resp.Segments))
	for _, seg := range resp.Segments {
		text := strings.TrimSpace(seg.Text)
		if text == "" {
			continue
		}
		segments = append(segments, subtitle.Segment{
			Index: len(segments) + 1,
			Start: timeline.FromNumber(seg.Start),
			End:   timeline.FromNumber(seg.End),
			Text:  text,
		})
	}

	if len(segments) > 0 {
		logDetectedLanguage(segments)
	}
	return segments, nil
}

// logDetectedLanguage 对转写全文做语种检测并记录日志
func logDetectedLanguage(segments []subtitle.Segment) {
	var sb strings.Builder
	for _, seg := range segments {
		sb.WriteString(seg.Text)
		sb.WriteString(" ")
	}

	detector := lingua.NewLanguageDetectorBuilder().FromAllLanguages().Build()
	if language, ok := detector.DetectLanguageOf(strings.TrimSpace(sb.String())); ok {
		log.Info().Str("language", language.String()).Msg("转写语种检测结果")
	}
}
