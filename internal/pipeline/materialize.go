package pipeline

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"storyreel/internal/pkg/timeline"
	"storyreel/internal/scene"
)

// Materializer 把修复后的场景时间轴物化为一组图片
// 远端生成失败时按策略重试，重试耗尽后落到占位图，绝不让单张图
// 拖垮整个流水线
type Materializer struct {
	provider    scene.ImageProvider
	fallback    scene.ImageProvider
	policy      RetryPolicy
	workers     int
	limiter     *rate.Limiter
	style       string
	concept     string
	aspectRatio string
}

// MaterializerOption Materializer 选项
type MaterializerOption func(*Materializer)

// WithWorkers 设置并发工作数，小于等于 1 时串行
func WithWorkers(n int) MaterializerOption {
	return func(m *Materializer) {
		if n > 0 {
			m.workers = n
		}
	}
}

// WithRateLimit 设置每分钟请求数上限，0 表示不限流
func WithRateLimit(perMinute int) MaterializerOption {
	return func(m *Materializer) {
		if perMinute > 0 {
			m.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
		}
	}
}

// WithRetryPolicy 覆盖默认重试策略
func WithRetryPolicy(p RetryPolicy) MaterializerOption {
	return func(m *Materializer) { m.policy = p }
}

// WithStyle 设置整体画风描述，拼进每条提示词
func WithStyle(style string) MaterializerOption {
	return func(m *Materializer) { m.style = style }
}

// WithConcept 设置整体视频概念，拼进每条提示词
func WithConcept(concept string) MaterializerOption {
	return func(m *Materializer) { m.concept = concept }
}

// WithAspectRatio 覆盖提示词里的画幅约束（默认 9:16 vertical）
func WithAspectRatio(ratio string) MaterializerOption {
	return func(m *Materializer) {
		if ratio != "" {
			m.aspectRatio = ratio
		}
	}
}

// NewMaterializer 创建图片物化器
func NewMaterializer(provider, fallback scene.ImageProvider, opts ...MaterializerOption) *Materializer {
	m := &Materializer{
		provider:    provider,
		fallback:    fallback,
		policy:      DefaultRetryPolicy(),
		workers:     1,
		aspectRatio: "9:16 vertical",
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// buildPrompt 拼装单个场景的图片提示词
// prevHint 仅在串行模式下传入上一张图的场景描述，用于画面风格连贯
func (m *Materializer) buildPrompt(index, total int, description, prevHint string) string {
	prompt := fmt.Sprintf("Scene %d of %d, %s format: %s", index, total, m.aspectRatio, description)
	if m.style != "" {
		prompt += fmt.Sprintf("\nArt style: %s", m.style)
	}
	if m.concept != "" {
		prompt += fmt.Sprintf("\nOverall concept: %s", m.concept)
	}
	if prevHint != "" {
		prompt += fmt.Sprintf("\nKeep visual continuity with the previous scene: %s", prevHint)
	}
	return prompt
}

// generateOne 生成单张图片，重试耗尽后落占位图
func (m *Materializer) generateOne(ctx context.Context, index int, prompt, path string) (ImageRecord, error) {
	record := ImageRecord{SceneIndex: index, Path: path, Prompt: prompt}
	filename := fmt.Sprintf("scene_%03d.png", index)

	var data []byte
	for attempt := 1; ; attempt++ {
		if m.limiter != nil {
			if err := m.limiter.Wait(ctx); err != nil {
				return record, err
			}
		}

		var err error
		data, err = m.provider.GenerateImage(ctx, prompt, filename)
		record.Attempts = attempt

		d := m.policy.Decide(attempt, err)
		if d.State == StateSucceeded {
			break
		}
		if d.State == StateFellBack {
			log.Warn().Int("scene", index).Err(err).
				Int("attempts", attempt).
				Msg("远端图片生成重试耗尽，改用占位图")
			record.Fallback = true
			data, _ = m.fallback.GenerateImage(ctx, prompt, filename)
			break
		}

		log.Warn().Int("scene", index).Int("attempt", attempt).Err(err).
			Msg("图片生成失败，稍后重试")
		select {
		case <-ctx.Done():
			return record, ctx.Err()
		case <-time.After(d.Wait):
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return record, fmt.Errorf("write scene image: %w", err)
	}
	return record, nil
}

// Materialize 为每个场景生成图片，返回按场景序号排序的元数据
func (m *Materializer) Materialize(ctx context.Context, project *Project, scenes []timeline.Scene) ([]ImageRecord, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("no scenes to materialize")
	}

	records := make([]ImageRecord, len(scenes))

	if m.workers <= 1 {
		// 串行模式下可以把上一张图的描述作为连贯性提示
		prevHint := ""
		for i, sc := range scenes {
			index := i + 1
			prompt := m.buildPrompt(index, len(scenes), sc.Description, prevHint)
			record, err := m.generateOne(ctx, index, prompt, project.ImagePath(index))
			if err != nil {
				return nil, err
			}
			records[i] = record
			prevHint = sc.Description
		}
	} else {
		// 并发模式下生成顺序不确定，连贯性提示关闭
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(m.workers)
		for i, sc := range scenes {
			i, sc := i, sc
			g.Go(func() error {
				index := i + 1
				prompt := m.buildPrompt(index, len(scenes), sc.Description, "")
				record, err := m.generateOne(gctx, index, prompt, project.ImagePath(index))
				if err != nil {
					return err
				}
				records[i] = record
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	sort.Slice(records, func(i, j int) bool { return records[i].SceneIndex < records[j].SceneIndex })

	log.Info().Int("scenes", len(records)).Msg("场景图片物化完成")
	return records, nil
}
