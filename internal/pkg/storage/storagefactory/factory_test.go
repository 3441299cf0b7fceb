package storagefactory

import (
	"testing"

	. "github.com/smartystreets/goconvey/convey"

	"storyreel/internal/config"
	"storyreel/internal/pkg/storage"
)

func TestNew(t *testing.T) {
	Convey("测试存储工厂", t, func() {
		Convey("默认创建本地存储", func() {
			s, err := New(&config.StorageConfig{
				Type:  "local",
				Local: &config.LocalConfig{BasePath: t.TempDir()},
			})
			So(err, ShouldBeNil)
			So(s.GetStorageType(), ShouldEqual, string(storage.StorageTypeLocal))
		})

		Convey("类型为空时回落到本地存储", func() {
			s, err := New(&config.StorageConfig{
				Local: &config.LocalConfig{BasePath: t.TempDir()},
			})
			So(err, ShouldBeNil)
			So(s.GetStorageType(), ShouldEqual, string(storage.StorageTypeLocal))
		})

		Convey("oss 类型缺配置时报错", func() {
			_, err := New(&config.StorageConfig{Type: "oss"})
			So(err, ShouldNotBeNil)
		})

		Convey("未知类型报错", func() {
			_, err := New(&config.StorageConfig{Type: "s3"})
			So(err, ShouldNotBeNil)
		})
	})
}
