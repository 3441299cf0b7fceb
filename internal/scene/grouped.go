package scene

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"storyreel/internal/pkg/subtitle"
	"storyreel/internal/pkg/timeline"
)

// GroupedSource 分组式场景来源
// 先用语音识别取得逐句转写真值，再让模型把句子下标分组成场景，
// 场景时间跨度由转写片段派生，不信任模型自报的时间戳
type GroupedSource struct {
	llm         LLMProvider
	transcriber Transcriber
	maxScene    time.Duration
}

// NewGroupedSource 创建分组式场景来源
func NewGroupedSource(llm LLMProvider, transcriber Transcriber, maxScene time.Duration) *GroupedSource {
	return &GroupedSource{llm: llm, transcriber: transcriber, maxScene: maxScene}
}

// transcriptEntry 提示词里的转写片段，下标从 1 开始
type transcriptEntry struct {
	Index   int    `json:"index"`
	StartMs int64  `json:"start_ms"`
	EndMs   int64  `json:"end_ms"`
	Text    string `json:"text"`
}

// groupTuple 模型返回的分组条目，引用转写片段的闭区间下标
type groupTuple struct {
	StartIndex int    `json:"start_index"`
	EndIndex   int    `json:"end_index"`
	Script     string `json:"script"`
	Scene      string `json:"scene"`
}

// groupedPrompt 分组提示词
func groupedPrompt(segments []subtitle.Segment, maxScene time.Duration, concept string) (string, error) {
	entries := make([]transcriptEntry, 0, len(segments))
	for _, seg := range segments {
		entries = append(entries, transcriptEntry{
			Index:   seg.Index,
			StartMs: int64(seg.Start),
			EndMs:   int64(seg.End),
			Text:    seg.Text,
		})
	}
	payload, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal transcript payload: %w", err)
	}

	conceptContext := ""
	if concept != "" {
		conceptContext = fmt.Sprintf(
			"\nIMPORTANT: The overall video concept is: %s\nIncorporate this concept into every scene description.\n",
			concept,
		)
	}

	return fmt.Sprintf(`You are given the transcript of a narrated story, split into numbered segments with exact timestamps (milliseconds).

Group consecutive segments into visual scenes. Each scene must:
- Cover one or more CONSECUTIVE segments (reference them by index)
- Last no longer than %.0f seconds
- Have a vivid, detailed visual description (lighting, mood, atmosphere) for image generation
%s
Transcript segments:
%s

Return a valid JSON array with this structure:
[
  {
    "start_index": 1,
    "end_index": 3,
    "script": "the combined narration of these segments",
    "scene": "detailed scene description for visual generation"
  }
]

Important:
- Indexes are 1-based and inclusive on both ends
- Every segment must belong to exactly one scene, in order
- Return ONLY the JSON array, no other text.`, maxScene.Seconds(), conceptContext, payload), nil
}

// Scenes 转写音频、分组并返回修复后的场景时间轴
func (s *GroupedSource) Scenes(ctx context.Context, audioPath, concept string) ([]timeline.Scene, []subtitle.Segment, error) {
	segments, err := s.transcriber.Transcribe(ctx, audioPath)
	if err != nil {
		return nil, nil, fmt.Errorf("transcribe audio: %w", err)
	}
	if len(segments) == 0 {
		return nil, nil, fmt.Errorf("transcription produced no segments")
	}

	prompt, err := groupedPrompt(segments, s.maxScene, concept)
	if err != nil {
		return nil, nil, err
	}
	raw, err := s.llm.Generate(ctx, prompt)
	if err != nil {
		return nil, nil, fmt.Errorf("group transcript segments: %w", err)
	}

	candidates, err := ParseGroupedCandidates(raw, segments)
	if err != nil {
		return nil, nil, err
	}

	anchor, err := subtitle.Span(segments)
	if err != nil {
		return nil, nil, err
	}
	healed, err := timeline.Heal(candidates, anchor, nil)
	if err != nil {
		return nil, nil, err
	}
	return healed, segments, nil
}

// ParseGroupedCandidates 解析分组回复并由转写片段派生场景时间跨度
// 下标越界或颠倒的条目丢弃（警告），全部丢弃才算失败
func ParseGroupedCandidates(raw string, segments []subtitle.Segment) ([]timeline.Scene, error) {
	text := StripCodeFence(raw)

	var tuples []groupTuple
	if err := json.NewDecoder(strings.NewReader(text)).Decode(&tuples); err != nil {
		return nil, fmt.Errorf("parse scene group JSON: %w", err)
	}

	candidates := make([]timeline.Scene, 0, len(tuples))
	for i, t := range tuples {
		if t.Script == "" || t.Scene == "" {
			log.Warn().Int("item", i).Msg("丢弃场景分组：缺少 script/scene 字段")
			continue
		}
		if t.StartIndex < 1 || t.EndIndex > len(segments) || t.StartIndex > t.EndIndex {
			log.Warn().Int("item", i).
				Int("start_index", t.StartIndex).
				Int("end_index", t.EndIndex).
				Int("segments", len(segments)).
				Msg("丢弃场景分组：下标越界或颠倒")
			continue
		}

		// 时间跨度取自转写真值，而非模型自报
		candidates = append(candidates, timeline.Scene{
			Script:      t.Script,
			Description: t.Scene,
			Span: timeline.Span{
				Start: segments[t.StartIndex-1].Start,
				End:   segments[t.EndIndex-1].End,
			},
		})
	}

	if len(candidates) == 0 {
		return nil, fmt.Errorf("no valid scene groups in model response")
	}
	return candidates, nil
}
