package scene

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"storyreel/internal/pkg/subtitle"
	"storyreel/internal/pkg/timeline"
)

func TestStripCodeFence(t *testing.T) {
	Convey("测试剥离代码围栏", t, func() {
		Convey("json 围栏", func() {
			So(StripCodeFence("```json\n[1]\n```"), ShouldEqual, "[1]")
		})
		Convey("裸围栏", func() {
			So(StripCodeFence("```\n[1]\n```"), ShouldEqual, "[1]")
		})
		Convey("无围栏原样返回", func() {
			So(StripCodeFence("  [1]  "), ShouldEqual, "[1]")
		})
	})
}

func TestParseDirectCandidates(t *testing.T) {
	Convey("测试直推式场景解析", t, func() {
		Convey("正常解析，秒与时钟格式均规范化为毫秒", func() {
			raw := "```json\n" + `[
  {"script": "a", "from": 0.0, "to": 3.23, "scene": "s1"},
  {"script": "b", "from": "0:03.230", "to": "0:07.500", "scene": "s2"}
]` + "\n```"
			got, err := ParseDirectCandidates(raw)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].Start, ShouldEqual, timeline.Millis(0))
			So(got[0].End, ShouldEqual, timeline.Millis(3230))
			So(got[1].Start, ShouldEqual, timeline.Millis(3230))
			So(got[1].End, ShouldEqual, timeline.Millis(7500))
		})

		Convey("from/to 颠倒时交换挽救", func() {
			raw := `[{"script": "a", "from": 5.0, "to": 2.0, "scene": "s"}]`
			got, err := ParseDirectCandidates(raw)
			So(err, ShouldBeNil)
			So(got[0].Start, ShouldEqual, timeline.Millis(2000))
			So(got[0].End, ShouldEqual, timeline.Millis(5000))
		})

		Convey("from 等于 to 时补最小时长", func() {
			raw := `[{"script": "a", "from": 2.0, "to": 2.0, "scene": "s"}]`
			got, err := ParseDirectCandidates(raw)
			So(err, ShouldBeNil)
			So(got[0].End, ShouldEqual, got[0].Start+timeline.MinSceneDuration)
		})

		Convey("坏条目丢弃但解析继续", func() {
			raw := `[
  {"script": "a", "from": 0.0, "to": 2.0, "scene": "s1"},
  {"script": "", "from": 2.0, "to": 4.0, "scene": "s2"},
  {"script": "c", "from": "bad", "to": 6.0, "scene": "s3"},
  {"script": "d", "from": 4.0, "to": 6.0, "scene": "s4"}
]`
			got, err := ParseDirectCandidates(raw)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].Script, ShouldEqual, "a")
			So(got[1].Script, ShouldEqual, "d")
		})

		Convey("负时间戳的候选丢弃，不会进入时间轴", func() {
			raw := `[
  {"script": "a", "from": -1.2, "to": 2.0, "scene": "s1"},
  {"script": "b", "from": 0.0, "to": 2.0, "scene": "s2"}
]`
			got, err := ParseDirectCandidates(raw)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 1)
			So(got[0].Script, ShouldEqual, "b")
			So(got[0].Start, ShouldBeGreaterThanOrEqualTo, timeline.Millis(0))
		})

		Convey("全部丢弃时报错", func() {
			raw := `[{"script": "", "from": 0, "to": 1, "scene": ""}]`
			_, err := ParseDirectCandidates(raw)
			So(err, ShouldNotBeNil)
		})

		Convey("非法 JSON 报错", func() {
			_, err := ParseDirectCandidates("not json")
			So(err, ShouldNotBeNil)
		})
	})
}

func TestParseGroupedCandidates(t *testing.T) {
	segs := []subtitle.Segment{
		{Index: 1, Start: 0, End: 2000, Text: "one"},
		{Index: 2, Start: 2000, End: 4500, Text: "two"},
		{Index: 3, Start: 4500, End: 7000, Text: "three"},
		{Index: 4, Start: 7000, End: 9000, Text: "four"},
		{Index: 5, Start: 9000, End: 12000, Text: "five"},
	}

	Convey("测试分组式场景解析", t, func() {
		Convey("时间跨度由转写片段派生", func() {
			raw := `[
  {"start_index": 1, "end_index": 2, "script": "one two", "scene": "s1"},
  {"start_index": 3, "end_index": 5, "script": "three four five", "scene": "s2"}
]`
			got, err := ParseGroupedCandidates(raw, segs)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].Start, ShouldEqual, timeline.Millis(0))
			So(got[0].End, ShouldEqual, timeline.Millis(4500))
			So(got[1].Start, ShouldEqual, timeline.Millis(4500))
			So(got[1].End, ShouldEqual, timeline.Millis(12000))
		})

		Convey("下标越界或颠倒的分组丢弃，其余存活", func() {
			raw := `[
  {"start_index": 1, "end_index": 1, "script": "a", "scene": "s1"},
  {"start_index": 0, "end_index": 2, "script": "b", "scene": "s2"},
  {"start_index": 3, "end_index": 2, "script": "c", "scene": "s3"},
  {"start_index": 4, "end_index": 9, "script": "d", "scene": "s4"},
  {"start_index": 4, "end_index": 5, "script": "e", "scene": "s5"}
]`
			got, err := ParseGroupedCandidates(raw, segs)
			So(err, ShouldBeNil)
			So(len(got), ShouldEqual, 2)
			So(got[0].Script, ShouldEqual, "a")
			So(got[1].Script, ShouldEqual, "e")
		})

		Convey("全部丢弃时报错", func() {
			raw := `[{"start_index": 0, "end_index": 99, "script": "a", "scene": "s"}]`
			_, err := ParseGroupedCandidates(raw, segs)
			So(err, ShouldNotBeNil)
		})
	})
}
