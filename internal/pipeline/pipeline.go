// Package pipeline 串起从旁白音频到成品竖屏视频的全部阶段：
// 场景时间轴构建、图片物化、视频合成与产物归档
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"storyreel/internal/pkg/ffmpeg"
	"storyreel/internal/pkg/subtitle"
	"storyreel/internal/pkg/timeline"
	"storyreel/internal/scene"
)

// 场景来源模式
const (
	ModeGrouped = "grouped" // 识别 + 分组
	ModeDirect  = "direct"  // 音频直推
)

// Pipeline 视频生成流水线
type Pipeline struct {
	grouped      *scene.GroupedSource
	direct       *scene.DirectSource
	analyzer     scene.AudioAnalyzer
	materializer *Materializer
	assembler    *Assembler
	ffmpeg       *ffmpeg.Client

	projectsDir     string
	partitionWindow timeline.Millis // >0 时 direct 模式按窗口切分音频
	concept         string
}

// Options Pipeline 的装配参数
type Options struct {
	Grouped      *scene.GroupedSource
	Direct       *scene.DirectSource
	Analyzer     scene.AudioAnalyzer
	Materializer *Materializer
	Assembler    *Assembler
	FFmpeg       *ffmpeg.Client

	ProjectsDir     string
	PartitionWindow time.Duration
	Concept         string
}

// New 创建流水线
func New(opts Options) *Pipeline {
	return &Pipeline{
		grouped:         opts.Grouped,
		direct:          opts.Direct,
		analyzer:        opts.Analyzer,
		materializer:    opts.Materializer,
		assembler:       opts.Assembler,
		ffmpeg:          opts.FFmpeg,
		projectsDir:     opts.ProjectsDir,
		partitionWindow: timeline.Millis(opts.PartitionWindow.Milliseconds()),
		concept:         opts.Concept,
	}
}

// ValidateAudio 校验输入音频：必须存在且为 .mp3
func ValidateAudio(audioPath string) error {
	if strings.ToLower(filepath.Ext(audioPath)) != ".mp3" {
		return fmt.Errorf("unsupported audio format %q, expected .mp3", filepath.Ext(audioPath))
	}
	info, err := os.Stat(audioPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("audio file not found: %s", audioPath)
		}
		return fmt.Errorf("stat audio file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("audio path is a directory: %s", audioPath)
	}
	return nil
}

// Run 执行完整流水线，返回最终视频路径
func (p *Pipeline) Run(ctx context.Context, audioPath, projectName, mode string) (string, error) {
	if err := ValidateAudio(audioPath); err != nil {
		return "", err
	}

	project, err := NewProject(p.projectsDir, projectName)
	if err != nil {
		return "", err
	}

	var (
		scenes   []timeline.Scene
		segments []subtitle.Segment
	)
	switch mode {
	case ModeGrouped, "":
		scenes, segments, err = p.grouped.Scenes(ctx, audioPath, p.concept)
	case ModeDirect:
		if p.partitionWindow > 0 {
			scenes, err = p.partitionedScenes(ctx, audioPath, project)
		} else {
			scenes, err = p.direct.Scenes(ctx, audioPath, p.concept)
		}
	default:
		return "", fmt.Errorf("unknown pipeline mode: %s", mode)
	}
	if err != nil {
		return "", err
	}

	scriptsPath, err := project.SaveScripts(scenes)
	if err != nil {
		return "", err
	}
	log.Info().Str("path", scriptsPath).Int("scenes", len(scenes)).Msg("场景时间轴已持久化")

	if len(segments) > 0 {
		if err := p.saveSubtitles(project, segments); err != nil {
			return "", err
		}
	}

	records, err := p.materializer.Materialize(ctx, project, scenes)
	if err != nil {
		return "", err
	}
	if _, err := project.SaveImageMetadata(records); err != nil {
		return "", err
	}

	videoPath, err := p.assembler.Assemble(ctx, project, scenes, records, audioPath)
	if err != nil {
		return "", err
	}

	log.Info().Str("video", videoPath).Msg("视频生成完成")
	return videoPath, nil
}

// partitionedScenes 分片直推：先按固定窗口切分音频，再逐片请求画面描述
// 场景时间跨度取分片窗口的真值，不采用模型自报时间
func (p *Pipeline) partitionedScenes(ctx context.Context, audioPath string, project *Project) ([]timeline.Scene, error) {
	partitions, err := p.ffmpeg.SplitAudio(ctx, audioPath, project.PartitionsDir(), p.partitionWindow)
	if err != nil {
		return nil, fmt.Errorf("split audio: %w", err)
	}
	if len(partitions) == 0 {
		return nil, fmt.Errorf("audio produced no partitions")
	}

	prompt := partitionPrompt(p.concept)
	candidates := make([]timeline.Scene, 0, len(partitions))
	for _, part := range partitions {
		desc, err := p.analyzer.AnalyzeAudio(ctx, part.Path, prompt)
		if err != nil {
			log.Warn().Int("partition", part.Index).Err(err).Msg("分片描述失败，跳过该分片")
			continue
		}
		candidates = append(candidates, timeline.Scene{
			Description: strings.TrimSpace(desc),
			Span:        timeline.Span{Start: part.Start, End: part.End},
		})
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("no partition produced a scene description")
	}

	anchor := timeline.Span{Start: partitions[0].Start, End: partitions[len(partitions)-1].End}
	return timeline.Heal(candidates, anchor, nil)
}

// partitionPrompt 分片画面描述提示词
func partitionPrompt(concept string) string {
	conceptContext := ""
	if concept != "" {
		conceptContext = fmt.Sprintf("\nThe overall video concept is: %s\n", concept)
	}
	return fmt.Sprintf(`Listen to this audio clip from a narrated story and describe the single visual scene that best matches it.
%s
Describe lighting, mood, and atmosphere in vivid detail for image generation.
Return ONLY the scene description, no other text.`, conceptContext)
}

// saveSubtitles 把转写结果以 SRT 和 JSON 两种格式落盘
func (p *Pipeline) saveSubtitles(project *Project, segments []subtitle.Segment) error {
	srtPath := filepath.Join(project.ScriptsDir(), "transcript.srt")
	if err := subtitle.WriteSRT(segments, srtPath); err != nil {
		return err
	}
	jsonPath := filepath.Join(project.ScriptsDir(), "transcript.json")
	if err := subtitle.WriteJSON(segments, jsonPath); err != nil {
		return err
	}
	log.Info().Str("srt", srtPath).Str("json", jsonPath).Msg("字幕产物已持久化")
	return nil
}
