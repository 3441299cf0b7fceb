package pipeline

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"storyreel/internal/pkg/timeline"
)

// fakeImageProvider 可编排失败次数的图片提供者
type fakeImageProvider struct {
	mu        sync.Mutex
	calls     int
	failFirst int // 前 N 次调用返回错误
	payload   []byte
}

func (f *fakeImageProvider) GenerateImage(_ context.Context, _, _ string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failFirst {
		return nil, fmt.Errorf("synthetic failure %d", f.calls)
	}
	return f.payload, nil
}

func testScenes(n int) []timeline.Scene {
	scenes := make([]timeline.Scene, 0, n)
	for i := 0; i < n; i++ {
		start := timeline.Millis(i * 1000)
		scenes = append(scenes, timeline.Scene{
			Script:      fmt.Sprintf("line %d", i+1),
			Description: fmt.Sprintf("scene %d", i+1),
			Span:        timeline.Span{Start: start, End: start + 1000},
		})
	}
	return scenes
}

func testProject(t *testing.T) *Project {
	t.Helper()
	p, err := NewProject(t.TempDir(), "demo")
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestMaterialize(t *testing.T) {
	fastRetry := RetryPolicy{MaxAttempts: 3, Delay: time.Millisecond}

	Convey("测试场景图片物化", t, func() {
		fallback := &fakeImageProvider{payload: []byte("placeholder")}

		Convey("全部成功，元数据按场景序号排序", func() {
			provider := &fakeImageProvider{payload: []byte("png")}
			m := NewMaterializer(provider, fallback, WithRetryPolicy(fastRetry), WithWorkers(4))
			project := testProject(t)

			records, err := m.Materialize(context.Background(), project, testScenes(5))
			So(err, ShouldBeNil)
			So(len(records), ShouldEqual, 5)
			for i, r := range records {
				So(r.SceneIndex, ShouldEqual, i+1)
				So(r.Fallback, ShouldBeFalse)
				data, err := os.ReadFile(r.Path)
				So(err, ShouldBeNil)
				So(string(data), ShouldEqual, "png")
			}
		})

		Convey("瞬时失败在重试内恢复", func() {
			provider := &fakeImageProvider{payload: []byte("png"), failFirst: 2}
			m := NewMaterializer(provider, fallback, WithRetryPolicy(fastRetry))
			project := testProject(t)

			records, err := m.Materialize(context.Background(), project, testScenes(1))
			So(err, ShouldBeNil)
			So(records[0].Fallback, ShouldBeFalse)
			So(records[0].Attempts, ShouldEqual, 3)
		})

		Convey("重试耗尽落占位图，流水线不中断", func() {
			provider := &fakeImageProvider{failFirst: 100}
			m := NewMaterializer(provider, fallback, WithRetryPolicy(fastRetry))
			project := testProject(t)

			records, err := m.Materialize(context.Background(), project, testScenes(2))
			So(err, ShouldBeNil)
			So(records[0].Fallback, ShouldBeTrue)
			So(records[1].Fallback, ShouldBeTrue)
			data, err := os.ReadFile(records[0].Path)
			So(err, ShouldBeNil)
			So(string(data), ShouldEqual, "placeholder")
		})

		Convey("空场景列表报错", func() {
			provider := &fakeImageProvider{payload: []byte("png")}
			m := NewMaterializer(provider, fallback)
			project := testProject(t)

			_, err := m.Materialize(context.Background(), project, nil)
			So(err, ShouldNotBeNil)
		})

		Convey("提示词携带序号、比例与概念", func() {
			m := NewMaterializer(nil, nil, WithConcept("noir city"), WithStyle("watercolor"))
			prompt := m.buildPrompt(2, 7, "a rainy street", "")
			So(prompt, ShouldContainSubstring, "Scene 2 of 7")
			So(prompt, ShouldContainSubstring, "9:16 vertical")
			So(prompt, ShouldContainSubstring, "a rainy street")
			So(prompt, ShouldContainSubstring, "watercolor")
			So(prompt, ShouldContainSubstring, "noir city")
		})

		Convey("串行模式才有连贯性提示", func() {
			m := NewMaterializer(nil, nil)
			withHint := m.buildPrompt(2, 3, "b", "previous scene a")
			So(withHint, ShouldContainSubstring, "previous scene a")
			withoutHint := m.buildPrompt(2, 3, "b", "")
			So(withoutHint, ShouldNotContainSubstring, "previous scene")
		})
	})
}
