package pipeline

import (
	"os"
	"path/filepath"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"storyreel/internal/pkg/timeline"
)

func TestProject(t *testing.T) {
	Convey("测试项目目录与产物持久化", t, func() {
		project, err := NewProject(t.TempDir(), "my_story")
		So(err, ShouldBeNil)

		Convey("固定子目录全部创建", func() {
			for _, dir := range []string{
				project.PartitionsDir(),
				project.ImagesDir(),
				project.ScriptsDir(),
				project.OutputDir(),
				project.LogsDir(),
			} {
				info, err := os.Stat(dir)
				So(err, ShouldBeNil)
				So(info.IsDir(), ShouldBeTrue)
			}
		})

		Convey("图片与成品命名", func() {
			So(filepath.Base(project.ImagePath(3)), ShouldEqual, "scene_003.png")
			So(filepath.Base(project.FinalVideoPath()), ShouldEqual, "my_story_final.mp4")
		})

		Convey("场景时间轴写读往返", func() {
			scenes := []timeline.Scene{
				{Script: "a", Description: "s1", Span: timeline.Span{Start: 0, End: 3230}},
				{Script: "b", Description: "s2", Span: timeline.Span{Start: 3230, End: 7500}},
			}
			_, err := project.SaveScripts(scenes)
			So(err, ShouldBeNil)

			loaded, err := project.LoadScripts()
			So(err, ShouldBeNil)
			So(loaded, ShouldResemble, scenes)
		})

		Convey("空项目名报错", func() {
			_, err := NewProject(t.TempDir(), "")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestValidateAudio(t *testing.T) {
	Convey("测试输入音频校验", t, func() {
		Convey("存在的 mp3 通过", func() {
			path := filepath.Join(t.TempDir(), "story.mp3")
			So(os.WriteFile(path, []byte("x"), 0o644), ShouldBeNil)
			So(ValidateAudio(path), ShouldBeNil)
		})

		Convey("扩展名不是 mp3 时报错", func() {
			path := filepath.Join(t.TempDir(), "story.wav")
			So(os.WriteFile(path, []byte("x"), 0o644), ShouldBeNil)
			So(ValidateAudio(path), ShouldNotBeNil)
		})

		Convey("文件不存在时报错", func() {
			So(ValidateAudio("/nonexistent/story.mp3"), ShouldNotBeNil)
		})
	})
}
