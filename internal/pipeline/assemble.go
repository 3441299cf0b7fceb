package pipeline

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/rs/zerolog/log"

	"storyreel/internal/pkg/ffmpeg"
	"storyreel/internal/pkg/id"
	"storyreel/internal/pkg/storage"
	"storyreel/internal/pkg/timeline"
)

// Assembler 把场景图片序列与旁白音频合成为最终视频
type Assembler struct {
	ffmpeg  *ffmpeg.Client
	storage storage.Storage // 可选，非空时把成品归档
	width   int
	height  int
	fps     int
}

// NewAssembler 创建视频合成器
// store 传 nil 表示成品只留在本地项目目录
func NewAssembler(client *ffmpeg.Client, store storage.Storage, width, height, fps int) *Assembler {
	return &Assembler{
		ffmpeg:  client,
		storage: store,
		width:   width,
		height:  height,
		fps:     fps,
	}
}

// Assemble 合成最终视频，返回本地路径
// 场景时长取自修复后的时间轴，逐张映射为 concat 清单里的展示时长
func (a *Assembler) Assemble(ctx context.Context, project *Project, scenes []timeline.Scene, records []ImageRecord, audioPath string) (string, error) {
	if len(scenes) != len(records) {
		return "", fmt.Errorf("scene/image count mismatch: %d vs %d", len(scenes), len(records))
	}

	slides := make([]ffmpeg.Slide, 0, len(scenes))
	for i, sc := range scenes {
		slides = append(slides, ffmpeg.Slide{
			ImagePath: records[i].Path,
			Duration:  sc.Duration(),
		})
	}

	outputPath := project.FinalVideoPath()
	if err := a.ffmpeg.CreateSlideshow(ctx, slides, audioPath, outputPath, a.width, a.height, a.fps); err != nil {
		return "", err
	}

	if a.storage != nil {
		if err := a.publish(ctx, project, outputPath); err != nil {
			// 归档失败不作废本地成品
			log.Warn().Err(err).Msg("成品归档失败，本地文件保留")
		}
	}

	return outputPath, nil
}

// publish 把成品上传到配置的存储后端
func (a *Assembler) publish(ctx context.Context, project *Project, videoPath string) error {
	file, err := os.Open(videoPath)
	if err != nil {
		return fmt.Errorf("open final video: %w", err)
	}
	defer file.Close()

	key, err := a.archiveKey(ctx, project)
	if err != nil {
		return err
	}
	url, err := a.storage.Upload(ctx, key, file, "video/mp4")
	if err != nil {
		return fmt.Errorf("upload final video: %w", err)
	}

	log.Info().Str("url", url).Str("backend", a.storage.GetStorageType()).Msg("成品归档完成")
	return nil
}

// archiveKey 成品对象键
// 首选固定名，已被历史成品占用时换带短 ID 的键，避免覆盖
func (a *Assembler) archiveKey(ctx context.Context, project *Project) (string, error) {
	key := path.Join("videos", project.Name, project.Name+"_final.mp4")
	exists, err := a.storage.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("check archive key: %w", err)
	}
	if !exists {
		return key, nil
	}
	return path.Join("videos", project.Name, fmt.Sprintf("%s_%s.mp4", project.Name, id.Short())), nil
}
