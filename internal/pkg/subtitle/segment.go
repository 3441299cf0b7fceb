package subtitle

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"storyreel/internal/pkg/timeline"
)

// Segment 语音识别产出的一条字幕段
// index 从 1 开始、连续且与时间顺序一致；创建后不再修改
type Segment struct {
	Index int             `json:"index"`
	Start timeline.Millis `json:"start_ms"`
	End   timeline.Millis `json:"end_ms"`
	Text  string          `json:"text"`
}

// Duration 段时长（毫秒）
func (s Segment) Duration() timeline.Millis {
	if s.End < s.Start {
		return 0
	}
	return s.End - s.Start
}

// Span 整个字幕列表覆盖的区间：[首段起点, 末段终点]
// 作为场景时间轴修复的真值锚点
func Span(segments []Segment) (timeline.Span, error) {
	if len(segments) == 0 {
		return timeline.Span{}, fmt.Errorf("empty transcript")
	}
	return timeline.Span{
		Start: segments[0].Start,
		End:   segments[len(segments)-1].End,
	}, nil
}

// FormatTimestamp 格式化为 SRT 时间戳 HH:MM:SS,mmm
func FormatTimestamp(ms timeline.Millis) string {
	totalSeconds := ms / 1000
	millis := ms % 1000
	hours := totalSeconds / 3600
	minutes := (totalSeconds % 3600) / 60
	seconds := totalSeconds % 60
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, millis)
}

// FormatSRT 渲染整个字幕列表为 SRT 文本
func FormatSRT(segments []Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		fmt.Fprintf(&b, "%d\n", seg.Index)
		fmt.Fprintf(&b, "%s --> %s\n", FormatTimestamp(seg.Start), FormatTimestamp(seg.End))
		b.WriteString(seg.Text)
		b.WriteString("\n\n")
	}
	return b.String()
}

// WriteSRT 保存 SRT 文件（供人工检查，后续流程不再读取）
func WriteSRT(segments []Segment, path string) error {
	if err := os.WriteFile(path, []byte(FormatSRT(segments)), 0o644); err != nil {
		return fmt.Errorf("write srt: %w", err)
	}
	return nil
}

// WriteJSON 保存字幕 JSON 文件（供人工检查，后续流程不再读取）
func WriteJSON(segments []Segment, path string) error {
	type entry struct {
		Index      int             `json:"index"`
		StartMS    timeline.Millis `json:"start_ms"`
		EndMS      timeline.Millis `json:"end_ms"`
		DurationMS timeline.Millis `json:"duration_ms"`
		Text       string          `json:"text"`
	}

	entries := make([]entry, len(segments))
	for i, seg := range segments {
		entries[i] = entry{
			Index:      seg.Index,
			StartMS:    seg.Start,
			EndMS:      seg.End,
			DurationMS: seg.Duration(),
			Text:       seg.Text,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal subtitles: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write subtitles json: %w", err)
	}
	return nil
}
