package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"storyreel/internal/pkg/timeline"
)

// Project 一次生成任务的工作目录
// 所有产物都落在 <projectsDir>/<name>/ 下的固定子目录里
type Project struct {
	Name string
	Root string
}

// 子目录名
const (
	dirPartitions = "partitions"
	dirImages     = "images"
	dirScripts    = "scripts"
	dirOutput     = "output"
	dirLogs       = "logs"
)

// NewProject 创建（或复用）项目目录及其子目录
func NewProject(projectsDir, name string) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name is required")
	}
	root := filepath.Join(projectsDir, name)
	for _, dir := range []string{dirPartitions, dirImages, dirScripts, dirOutput, dirLogs} {
		if err := os.MkdirAll(filepath.Join(root, dir), 0755); err != nil {
			return nil, fmt.Errorf("create project directory: %w", err)
		}
	}
	return &Project{Name: name, Root: root}, nil
}

// PartitionsDir 音频分片目录
func (p *Project) PartitionsDir() string { return filepath.Join(p.Root, dirPartitions) }

// ImagesDir 场景图片目录
func (p *Project) ImagesDir() string { return filepath.Join(p.Root, dirImages) }

// ScriptsDir 脚本与字幕产物目录
func (p *Project) ScriptsDir() string { return filepath.Join(p.Root, dirScripts) }

// OutputDir 最终视频输出目录
func (p *Project) OutputDir() string { return filepath.Join(p.Root, dirOutput) }

// LogsDir 运行日志目录
func (p *Project) LogsDir() string { return filepath.Join(p.Root, dirLogs) }

// ImagePath 第 index 个场景（从 1 开始）的图片路径
func (p *Project) ImagePath(index int) string {
	return filepath.Join(p.ImagesDir(), fmt.Sprintf("scene_%03d.png", index))
}

// FinalVideoPath 最终视频路径
func (p *Project) FinalVideoPath() string {
	return filepath.Join(p.OutputDir(), p.Name+"_final.mp4")
}

// scriptEntry scripts.json 里一条场景记录
// 同时携带毫秒与秒两种表示，后续工具无需再换算
type scriptEntry struct {
	Script          string  `json:"script"`
	Scene           string  `json:"scene"`
	From            int64   `json:"from"`
	To              int64   `json:"to"`
	Duration        int64   `json:"duration"`
	FromSeconds     float64 `json:"from_seconds"`
	ToSeconds       float64 `json:"to_seconds"`
	DurationSeconds float64 `json:"duration_seconds"`
}

// SaveScripts 持久化修复后的场景时间轴
func (p *Project) SaveScripts(scenes []timeline.Scene) (string, error) {
	entries := make([]scriptEntry, 0, len(scenes))
	for _, s := range scenes {
		entries = append(entries, scriptEntry{
			Script:          s.Script,
			Scene:           s.Description,
			From:            int64(s.Start),
			To:              int64(s.End),
			Duration:        int64(s.Duration()),
			FromSeconds:     s.StartSeconds(),
			ToSeconds:       s.EndSeconds(),
			DurationSeconds: s.DurationSeconds(),
		})
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal scripts: %w", err)
	}
	path := filepath.Join(p.ScriptsDir(), "scripts.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write scripts: %w", err)
	}
	return path, nil
}

// LoadScripts 读取先前持久化的场景时间轴
func (p *Project) LoadScripts() ([]timeline.Scene, error) {
	data, err := os.ReadFile(filepath.Join(p.ScriptsDir(), "scripts.json"))
	if err != nil {
		return nil, fmt.Errorf("read scripts: %w", err)
	}
	var entries []scriptEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse scripts: %w", err)
	}

	scenes := make([]timeline.Scene, 0, len(entries))
	for _, e := range entries {
		scenes = append(scenes, timeline.Scene{
			Script:      e.Script,
			Description: e.Scene,
			Span: timeline.Span{
				Start: timeline.Millis(e.From),
				End:   timeline.Millis(e.To),
			},
		})
	}
	return scenes, nil
}

// ImageRecord 一张场景图片的生成结果元数据
type ImageRecord struct {
	SceneIndex int    `json:"scene_index"`
	Path       string `json:"path"`
	Prompt     string `json:"prompt"`
	Attempts   int    `json:"attempts"`
	Fallback   bool   `json:"fallback"`
}

// SaveImageMetadata 持久化图片生成元数据
func (p *Project) SaveImageMetadata(records []ImageRecord) (string, error) {
	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal image metadata: %w", err)
	}
	path := filepath.Join(p.ImagesDir(), "images_metadata.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write image metadata: %w", err)
	}
	return path, nil
}
