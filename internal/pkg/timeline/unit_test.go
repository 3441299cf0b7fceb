package timeline

import (
	"encoding/json"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestParseClock(t *testing.T) {
	Convey("ParseClock 能解析分:秒格式时间", t, func() {
		Convey("带毫秒的格式", func() {
			ms, err := ParseClock("01:23.450")
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(83450))
		})

		Convey("不带毫秒的格式", func() {
			ms, err := ParseClock("2:05")
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(125000))
		})

		Convey("毫秒位按整数取值，不右补零", func() {
			ms, err := ParseClock("0:07.5")
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(7005))
		})

		Convey("毫秒位超过3位时截断", func() {
			ms, err := ParseClock("0:01.123999")
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(1123))
		})

		Convey("非法输入应返回错误", func() {
			for _, s := range []string{"", "abc", "1:xx", "1:75", "-1:10", "1:10."} {
				_, err := ParseClock(s)
				So(err, ShouldNotBeNil)
			}
		})
	})
}

func TestFromNumber(t *testing.T) {
	Convey("FromNumber 按数量级推断单位", t, func() {
		Convey("小数值视为秒", func() {
			So(FromNumber(83.45), ShouldEqual, Millis(83450))
			So(FromNumber(0), ShouldEqual, Millis(0))
			So(FromNumber(3.0), ShouldEqual, Millis(3000))
		})

		Convey("大数值视为毫秒", func() {
			So(FromNumber(83450000), ShouldEqual, Millis(83450000))
			So(FromNumber(100000), ShouldEqual, Millis(100000))
		})

		Convey("阈值以下的临界值仍按秒处理", func() {
			So(FromNumber(99999), ShouldEqual, Millis(99999000))
		})
	})
}

func TestParseRaw(t *testing.T) {
	Convey("ParseRaw 在边界处做一次性单位规范化", t, func() {
		Convey("时间字符串", func() {
			ms, err := ParseRaw("01:23.450")
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(83450))
		})

		Convey("数字字符串按数量级推断", func() {
			ms, err := ParseRaw("83.45")
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(83450))
		})

		Convey("浮点数按秒处理", func() {
			ms, err := ParseRaw(83.45)
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(83450))
		})

		Convey("大数值浮点按毫秒处理", func() {
			ms, err := ParseRaw(float64(83450000))
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(83450000))
		})

		Convey("带小数点的字面量是秒", func() {
			ms, err := ParseRaw(json.Number("3.5"))
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(3500))
		})

		Convey("整数字面量已是毫秒，保持不变", func() {
			ms, err := ParseRaw(json.Number("83450"))
			So(err, ShouldBeNil)
			So(ms, ShouldEqual, Millis(83450))
		})

		Convey("负值一律拒绝，绝不输出负毫秒", func() {
			for _, v := range []any{-3.5, "-3.5", json.Number("-3.5"), json.Number("-83450"), -5, int64(-5)} {
				ms, err := ParseRaw(v)
				So(err, ShouldNotBeNil)
				So(ms, ShouldEqual, Millis(0))
			}
		})

		Convey("非法值返回错误", func() {
			_, err := ParseRaw("not a time")
			So(err, ShouldNotBeNil)
			_, err = ParseRaw(nil)
			So(err, ShouldNotBeNil)
			_, err = ParseRaw([]string{"x"})
			So(err, ShouldNotBeNil)
		})
	})
}
