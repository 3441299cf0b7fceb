// Package scene 将外部模型返回的粗糙场景候选转化为可驱动视频合成的时间轴
//
// 两种来源：
//   - direct: 外部能力直接从音频返回带自报时间戳的场景（时间戳不可信）
//   - grouped: 先本地识别出逐句字幕，再让外部能力按下标分组（时间戳由
//     字幕真值推导，不会漂移）
//
// 两种来源最终都经过 timeline.Heal 统一修复
package scene

import (
	"context"

	"storyreel/internal/pkg/subtitle"
)

// LLMProvider 文本生成能力
type LLMProvider interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// AudioAnalyzer 音频理解能力：给定音频文件，返回模型的文本回复
type AudioAnalyzer interface {
	AnalyzeAudio(ctx context.Context, audioPath, prompt string) (string, error)
}

// Transcriber 语音识别能力：给定音频文件，返回有序字幕段
type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) ([]subtitle.Segment, error)
}

// ImageProvider 图片生成能力
type ImageProvider interface {
	GenerateImage(ctx context.Context, prompt, filename string) ([]byte, error)
}
