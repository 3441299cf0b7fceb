package pipeline

import (
	"fmt"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestRetryPolicy(t *testing.T) {
	Convey("测试图片生成重试策略", t, func() {
		policy := DefaultRetryPolicy()
		errBoom := fmt.Errorf("boom")

		Convey("成功立即终止", func() {
			d := policy.Decide(1, nil)
			So(d.State, ShouldEqual, StateSucceeded)
			So(d.Wait, ShouldEqual, time.Duration(0))
		})

		Convey("失败后继续尝试并等待固定间隔", func() {
			d := policy.Decide(1, errBoom)
			So(d.State, ShouldEqual, StateAttempting)
			So(d.Wait, ShouldEqual, 2*time.Second)

			d = policy.Decide(2, errBoom)
			So(d.State, ShouldEqual, StateAttempting)
		})

		Convey("第三次仍失败则兜底", func() {
			d := policy.Decide(3, errBoom)
			So(d.State, ShouldEqual, StateFellBack)
		})

		Convey("最后一次成功仍算成功", func() {
			d := policy.Decide(3, nil)
			So(d.State, ShouldEqual, StateSucceeded)
		})
	})
}
