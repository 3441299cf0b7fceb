package ffmpeg

import (
	"encoding/json"
	"path/filepath"
	"strconv"
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"storyreel/internal/pkg/timeline"
)

func TestConcatList(t *testing.T) {
	Convey("测试 concat 清单渲染", t, func() {
		Convey("每张图一行 file 一行 duration，末尾重复最后一张图", func() {
			slides := []Slide{
				{ImagePath: "/tmp/scene_001.png", Duration: 3230},
				{ImagePath: "/tmp/scene_002.png", Duration: 4270},
			}
			got := ConcatList(slides)
			want := "file '/tmp/scene_001.png'\n" +
				"duration 3.230\n" +
				"file '/tmp/scene_002.png'\n" +
				"duration 4.270\n" +
				"file '/tmp/scene_002.png'\n"
			So(got, ShouldEqual, want)
		})

		Convey("空清单返回空串", func() {
			So(ConcatList(nil), ShouldEqual, "")
		})
	})
}

func TestAbsSlides(t *testing.T) {
	Convey("测试幻灯片路径归一化", t, func() {
		slides := []Slide{
			{ImagePath: "scenes/scene_001.png", Duration: 3230},
			{ImagePath: "scenes/scene_002.png", Duration: 4270},
		}

		resolved, err := absSlides(slides)
		So(err, ShouldBeNil)

		Convey("返回的路径是绝对路径，时长不变", func() {
			So(len(resolved), ShouldEqual, 2)
			for i, s := range resolved {
				So(filepath.IsAbs(s.ImagePath), ShouldBeTrue)
				So(s.Duration, ShouldEqual, slides[i].Duration)
			}
		})

		Convey("入参切片不被改动", func() {
			So(slides[0].ImagePath, ShouldEqual, "scenes/scene_001.png")
			So(slides[1].ImagePath, ShouldEqual, "scenes/scene_002.png")
		})
	})
}

func TestProbeFormatParsing(t *testing.T) {
	Convey("测试 ffprobe 输出解析", t, func() {
		raw := []byte(`{"format": {"filename": "story.mp3", "duration": "83.450000"}}`)

		var probed probeFormat
		err := json.Unmarshal(raw, &probed)
		So(err, ShouldBeNil)

		seconds, err := strconv.ParseFloat(probed.Format.Duration, 64)
		So(err, ShouldBeNil)
		So(timeline.FromNumber(seconds), ShouldEqual, timeline.Millis(83450))
	})
}
