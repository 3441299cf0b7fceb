package timeline

import (
	"fmt"
	"sort"

	"github.com/rs/zerolog/log"
)

// BoundaryPolicy 边界冲突解决策略
// 输入前一个已输出场景的终点与当前候选区间，返回修正后的区间
// 策略只负责起点，终点的最小时长兜底由驱动循环统一处理
type BoundaryPolicy func(prevEnd Millis, s Span) Span

// LeftAligned 默认策略：无论间隙还是重叠，当前场景起点一律对齐到前一场景终点
// 前一个场景的边界始终优先，保证确定性且无需回溯
func LeftAligned(prevEnd Millis, s Span) Span {
	s.Start = prevEnd
	return s
}

// AnchorOf 候选列表的兜底锚点：[最小起点, 最大终点]
// 在没有转写文本提供真值锚点时使用
func AnchorOf(candidates []Scene) Span {
	if len(candidates) == 0 {
		return Span{}
	}
	anchor := candidates[0].Span
	for _, c := range candidates[1:] {
		if c.Start < anchor.Start {
			anchor.Start = c.Start
		}
		if c.End > anchor.End {
			anchor.End = c.End
		}
	}
	return anchor
}

// Heal 将无序、可能重叠或有间隙的候选场景修复为严格连续的时间轴
//
// 结果满足：
//   - 按起点升序排列
//   - 相邻场景首尾相接（无间隙、无重叠）
//   - 首场景起点与末场景终点分别等于锚点两端
//   - 每个场景时长至少 MinSceneDuration
//
// 贪心单趟从左到右处理，O(n log n)（排序占主导），再次运行于自身输出是恒等操作
func Heal(candidates []Scene, anchor Span, policy BoundaryPolicy) ([]Scene, error) {
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no scene candidates to heal")
	}
	if anchor.End <= anchor.Start {
		return nil, fmt.Errorf("invalid anchor span: [%d, %d]", anchor.Start, anchor.End)
	}
	if policy == nil {
		policy = LeftAligned
	}

	// 稳定排序：起点相同保持输入顺序
	sorted := make([]Scene, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	healed := make([]Scene, 0, len(sorted))

	// 首场景：起点对齐锚点起点
	first := sorted[0]
	if first.Start != anchor.Start {
		log.Debug().
			Int64("from", int64(first.Start)).
			Int64("to", int64(anchor.Start)).
			Msg("aligning first scene start to anchor")
		first.Start = anchor.Start
	}
	if first.End <= first.Start {
		first.End = first.Start + MinSceneDuration
	}
	healed = append(healed, first)

	for _, c := range sorted[1:] {
		prev := healed[len(healed)-1]

		switch {
		case c.Start > prev.End:
			log.Debug().
				Int64("gap_ms", int64(c.Start-prev.End)).
				Int("scene", len(healed)+1).
				Msg("healing gap")
			c.Span = policy(prev.End, c.Span)
		case c.Start < prev.End:
			log.Debug().
				Int64("overlap_ms", int64(prev.End-c.Start)).
				Int("scene", len(healed)+1).
				Msg("healing overlap")
			c.Span = policy(prev.End, c.Span)
		}

		// 大幅前移可能吞掉过短的候选，强制最小时长
		if c.End <= c.Start {
			c.End = c.Start + MinSceneDuration
		}

		healed = append(healed, c)
	}

	// 尾部延伸：末场景终点补齐到锚点终点
	last := &healed[len(healed)-1]
	if last.End < anchor.End {
		log.Debug().
			Int64("extend_ms", int64(anchor.End-last.End)).
			Msg("extending last scene to anchor end")
		last.End = anchor.End
	}

	return healed, nil
}
