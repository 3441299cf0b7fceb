package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"storyreel/internal/pkg/timeline"
)

// DirectSource 直推式场景来源
// 单次外部调用从整段音频返回场景列表，时间戳为模型自报值，
// 需要经过单位规范化、交换修复与统一的时间轴修复
type DirectSource struct {
	analyzer AudioAnalyzer
}

// NewDirectSource 创建直推式场景来源
func NewDirectSource(analyzer AudioAnalyzer) *DirectSource {
	return &DirectSource{analyzer: analyzer}
}

// directPrompt 音频分析提示词
// 要求模型返回 [{script, from, to, scene}] JSON 数组，时间戳为十进制秒或 MM:SS.mmm
func directPrompt(concept string) string {
	conceptContext := ""
	if concept != "" {
		conceptContext = fmt.Sprintf(
			"\nIMPORTANT: The overall video concept is: %s\nIncorporate this concept into every scene description while matching the audio content.\n",
			concept,
		)
	}

	return fmt.Sprintf(`Analyze this narrated audio story and create a detailed script breakdown.

For each segment of the story, provide:
1. The exact script/dialogue spoken
2. Start time (in format MM:SS.mmm or just seconds as decimal)
3. End time (in format MM:SS.mmm or just seconds as decimal)
4. Scene description (what should be shown visually)
%s
Return the response as a valid JSON array with this structure:
[
  {
    "script": "the dialogue or narration",
    "from": 0.0,
    "to": 3.23,
    "scene": "detailed scene description for visual generation"
  }
]

Important:
- Be precise with timestamps
- Ensure timestamps are continuous and don't overlap
- Make scene descriptions vivid and detailed for image generation
- Describe lighting, mood, and atmosphere

Return ONLY the JSON array, no other text.`, conceptContext)
}

// Scenes 分析音频并返回修复后的场景时间轴
func (s *DirectSource) Scenes(ctx context.Context, audioPath, concept string) ([]timeline.Scene, error) {
	raw, err := s.analyzer.AnalyzeAudio(ctx, audioPath, directPrompt(concept))
	if err != nil {
		return nil, fmt.Errorf("analyze audio: %w", err)
	}

	candidates, err := ParseDirectCandidates(raw)
	if err != nil {
		return nil, err
	}

	// 无字幕真值可用，锚点取候选本身的覆盖范围
	return timeline.Heal(candidates, timeline.AnchorOf(candidates), nil)
}

// ParseDirectCandidates 解析直推式回复为场景候选
// 逐条校验：必填字段、时间戳规范化、from/to 颠倒时交换挽救、
// 仍不合法时 to = from + 最小时长。坏条目丢弃（警告），全部丢弃才算失败
func ParseDirectCandidates(raw string) ([]timeline.Scene, error) {
	text := StripCodeFence(raw)

	var items []map[string]any
	dec := json.NewDecoder(strings.NewReader(text))
	dec.UseNumber()
	if err := dec.Decode(&items); err != nil {
		return nil, fmt.Errorf("parse scene list JSON: %w", err)
	}

	candidates := make([]timeline.Scene, 0, len(items))
	for i, item := range items {
		script, okScript := item["script"].(string)
		desc, okScene := item["scene"].(string)
		if !okScript || !okScene || script == "" || desc == "" {
			log.Warn().Int("item", i).Msg("丢弃场景候选：缺少 script/scene 字段")
			continue
		}

		from, err := timeline.ParseRaw(item["from"])
		if err != nil {
			log.Warn().Int("item", i).Err(err).Msg("丢弃场景候选：from 无法解析")
			continue
		}
		to, err := timeline.ParseRaw(item["to"])
		if err != nil {
			log.Warn().Int("item", i).Err(err).Msg("丢弃场景候选：to 无法解析")
			continue
		}

		// 颠倒的时间戳交换挽救，不丢弃
		if from > to {
			log.Warn().Int("item", i).Msg("场景候选 from/to 颠倒，交换")
			from, to = to, from
		}
		if from == to {
			to = from + timeline.MinSceneDuration
		}

		candidates = append(candidates, timeline.Scene{
			Script:      script,
			Description: desc,
			Span:        timeline.Span{Start: from, End: to},
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no valid scene candidates in model response")
	}
	return candidates, nil
}
