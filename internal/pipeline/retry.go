package pipeline

import "time"

// RetryState 单张图片生成的重试状态
type RetryState int

const (
	// StateAttempting 仍在尝试远端生成
	StateAttempting RetryState = iota
	// StateSucceeded 远端生成成功
	StateSucceeded
	// StateFellBack 重试耗尽，改用占位图
	StateFellBack
)

// RetryPolicy 重试策略：固定次数、固定间隔
type RetryPolicy struct {
	MaxAttempts int           // 最大尝试次数（含首次）
	Delay       time.Duration // 相邻两次尝试之间的固定等待
}

// DefaultRetryPolicy 默认策略：3 次尝试，间隔 2 秒
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, Delay: 2 * time.Second}
}

// Decision 一次尝试结束后的决定
type Decision struct {
	State RetryState
	// Wait 为下一次尝试前需要等待的时长，仅在 State 为 StateAttempting 且
	// 已经历至少一次失败时非零
	Wait time.Duration
}

// Decide 根据第 attempt 次（从 1 开始）尝试的结果给出下一步决定
// 纯函数，便于单独测试重试与兜底的边界
func (p RetryPolicy) Decide(attempt int, err error) Decision {
	if err == nil {
		return Decision{State: StateSucceeded}
	}
	if attempt >= p.MaxAttempts {
		return Decision{State: StateFellBack}
	}
	return Decision{State: StateAttempting, Wait: p.Delay}
}
