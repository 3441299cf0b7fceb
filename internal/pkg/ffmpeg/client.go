package ffmpeg

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"storyreel/internal/pkg/timeline"
)

// Client FFmpeg 客户端
// 用于封装 FFmpeg 命令调用
type Client struct {
	ffmpegPath  string // FFmpeg 可执行文件路径（默认: ffmpeg）
	ffprobePath string // FFprobe 可执行文件路径（默认: ffprobe）
}

// NewClient 创建 FFmpeg 客户端
func NewClient() *Client {
	ffmpegPath := os.Getenv("FFMPEG_PATH")
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}

	ffprobePath := os.Getenv("FFPROBE_PATH")
	if ffprobePath == "" {
		ffprobePath = "ffprobe"
	}

	return &Client{
		ffmpegPath:  ffmpegPath,
		ffprobePath: ffprobePath,
	}
}

// AudioInfo 音频信息
type AudioInfo struct {
	Duration timeline.Millis // 时长（毫秒）
}

// probeFormat ffprobe -of json 输出的 format 节
type probeFormat struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
}

// GetAudioInfo 获取音频信息
func (c *Client) GetAudioInfo(ctx context.Context, audioPath string) (*AudioInfo, error) {
	cmd := exec.CommandContext(ctx, c.ffprobePath,
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "json",
		audioPath,
	)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffprobe failed: %w", err)
	}

	var probed probeFormat
	if err := json.Unmarshal(output, &probed); err != nil {
		return nil, fmt.Errorf("parse ffprobe output: %w", err)
	}
	seconds, err := strconv.ParseFloat(strings.TrimSpace(probed.Format.Duration), 64)
	if err != nil {
		return nil, fmt.Errorf("parse audio duration %q: %w", probed.Format.Duration, err)
	}

	return &AudioInfo{Duration: timeline.FromNumber(seconds)}, nil
}

// Partition 音频分片元数据
type Partition struct {
	Index int             // 分片序号，从 0 开始
	Path  string          // 分片文件路径
	Start timeline.Millis // 分片在原音频中的起点
	End   timeline.Millis // 分片在原音频中的终点
}

// SplitAudio 按固定窗口切分音频
// 最后一个分片覆盖余下的尾巴，可能短于窗口
func (c *Client) SplitAudio(ctx context.Context, audioPath, outputDir string, window timeline.Millis) ([]Partition, error) {
	if window <= 0 {
		return nil, fmt.Errorf("invalid partition window: %d", window)
	}

	info, err := c.GetAudioInfo(ctx, audioPath)
	if err != nil {
		return nil, err
	}
	total := info.Duration
	if total <= 0 {
		return nil, fmt.Errorf("audio has no duration: %s", audioPath)
	}

	base := strings.TrimSuffix(filepath.Base(audioPath), filepath.Ext(audioPath))
	var partitions []Partition
	for start := timeline.Millis(0); start < total; start += window {
		end := start + window
		if end > total {
			end = total
		}
		idx := len(partitions)
		chunkPath := filepath.Join(outputDir, fmt.Sprintf("%s_part_%03d%s", base, idx, filepath.Ext(audioPath)))

		args := []string{
			"-y",
			"-i", audioPath,
			"-ss", fmt.Sprintf("%.3f", start.Seconds()),
			"-t", fmt.Sprintf("%.3f", (end - start).Seconds()),
			"-c", "copy",
			chunkPath,
		}
		cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
		cmd.Stderr = os.Stderr
		if err := cmd.Run(); err != nil {
			return nil, fmt.Errorf("ffmpeg split audio failed: %w", err)
		}

		partitions = append(partitions, Partition{
			Index: idx,
			Path:  chunkPath,
			Start: start,
			End:   end,
		})
	}

	log.Info().
		Str("audio", audioPath).
		Int("partitions", len(partitions)).
		Float64("window_secs", window.Seconds()).
		Msg("音频切分完成")

	return partitions, nil
}

// Slide 幻灯片条目：一张图和它的展示时长
type Slide struct {
	ImagePath string
	Duration  timeline.Millis
}

// ConcatList 渲染 concat demuxer 清单内容
// 末尾重复最后一张图是 concat demuxer 的要求，否则最后一条 duration 被忽略
func ConcatList(slides []Slide) string {
	var sb strings.Builder
	for _, s := range slides {
		fmt.Fprintf(&sb, "file '%s'\n", s.ImagePath)
		fmt.Fprintf(&sb, "duration %.3f\n", s.Duration.Seconds())
	}
	if len(slides) > 0 {
		fmt.Fprintf(&sb, "file '%s'\n", slides[len(slides)-1].ImagePath)
	}
	return sb.String()
}

// absSlides 返回图片路径转为绝对路径的副本，不改动入参
func absSlides(slides []Slide) ([]Slide, error) {
	out := make([]Slide, len(slides))
	copy(out, slides)
	for i := range out {
		abs, err := filepath.Abs(out[i].ImagePath)
		if err != nil {
			return nil, fmt.Errorf("get absolute path: %w", err)
		}
		out[i].ImagePath = abs
	}
	return out, nil
}

// CreateSlideshow 把按时长排好的图片序列和旁白音频合成为视频
// 使用 concat demuxer，-shortest 保证画面不拖过音频
func (c *Client) CreateSlideshow(ctx context.Context, slides []Slide, audioPath, outputPath string, width, height, fps int) error {
	if len(slides) == 0 {
		return fmt.Errorf("no slides to assemble")
	}

	resolved, err := absSlides(slides)
	if err != nil {
		return err
	}

	concatListFile := filepath.Join(filepath.Dir(outputPath), "concat_list.txt")
	if err := os.WriteFile(concatListFile, []byte(ConcatList(resolved)), 0o644); err != nil {
		return fmt.Errorf("write concat list file: %w", err)
	}
	defer os.Remove(concatListFile)

	vf := fmt.Sprintf("scale=%d:%d:force_original_aspect_ratio=increase,crop=%d:%d,setsar=1",
		width, height, width, height)

	args := []string{
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", concatListFile,
		"-i", audioPath,
		"-vf", vf,
		"-r", fmt.Sprintf("%d", fps),
		"-c:v", "libx264",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "160k",
		"-shortest",
		"-movflags", "+faststart",
		outputPath,
	}

	cmd := exec.CommandContext(ctx, c.ffmpegPath, args...)
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("ffmpeg slideshow failed: %w", err)
	}

	log.Info().
		Int("slides", len(slides)).
		Str("audio", audioPath).
		Str("output", outputPath).
		Msg("幻灯片视频合成成功")

	return nil
}
