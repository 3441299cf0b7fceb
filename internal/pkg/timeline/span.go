package timeline

// MinSceneDuration 场景最小时长（毫秒）
// 修复阶段任何 end <= start 的场景会被强制为 start + MinSceneDuration
const MinSceneDuration Millis = 10

// Span 毫秒区间，Start < End
type Span struct {
	Start Millis `json:"from"`
	End   Millis `json:"to"`
}

// Duration 区间时长（毫秒）
func (s Span) Duration() Millis {
	return s.End - s.Start
}

// StartSeconds 起点（秒）
func (s Span) StartSeconds() float64 {
	return s.Start.Seconds()
}

// EndSeconds 终点（秒）
func (s Span) EndSeconds() float64 {
	return s.End.Seconds()
}

// DurationSeconds 时长（秒）
func (s Span) DurationSeconds() float64 {
	return s.Duration().Seconds()
}

// Scene 输出视频的时间单元：一段文案、一条画面描述和一个毫秒区间
type Scene struct {
	Script      string `json:"script"`
	Description string `json:"scene"`
	Span
}
