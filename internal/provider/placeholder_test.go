package provider

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	. "github.com/smartystreets/goconvey/convey"
)

func TestTruncateRunes(t *testing.T) {
	Convey("测试文案截断", t, func() {
		Convey("短文案原样返回", func() {
			So(truncateRunes("一只小狐狸", 120), ShouldEqual, "一只小狐狸")
		})

		Convey("中文长文案按字符截断，不产生无效 UTF-8", func() {
			long := strings.Repeat("森林里的小狐狸在月光下奔跑", 20)
			got := truncateRunes(long, 120)
			So(utf8.ValidString(got), ShouldBeTrue)
			So(utf8.RuneCountInString(got), ShouldEqual, 123)
			So(strings.HasSuffix(got, "..."), ShouldBeTrue)
		})

		Convey("边界长度不加省略号", func() {
			s := strings.Repeat("狐", 120)
			So(truncateRunes(s, 120), ShouldEqual, s)
		})
	})
}

func TestPlaceholderImage(t *testing.T) {
	Convey("测试占位图生成", t, func() {
		p := NewPlaceholderImage(120, 160, "")

		Convey("长中文提示词也能产出合法 PNG", func() {
			prompt := strings.Repeat("夜色中的森林与小狐狸，", 30)
			data, err := p.GenerateImage(context.Background(), prompt, "scene_001.png")
			So(err, ShouldBeNil)
			So(bytes.HasPrefix(data, []byte("\x89PNG")), ShouldBeTrue)
		})
	})
}
