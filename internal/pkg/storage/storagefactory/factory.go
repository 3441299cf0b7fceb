package storagefactory

import (
	"fmt"

	"storyreel/internal/config"
	"storyreel/internal/pkg/storage"
	"storyreel/internal/pkg/storage/local"
	"storyreel/internal/pkg/storage/oss"
)

// New 根据配置创建存储实例
func New(cfg *config.StorageConfig) (storage.Storage, error) {
	switch storage.StorageType(cfg.Type) {
	case storage.StorageTypeLocal, "":
		basePath := "./data/storage"
		if cfg.Local != nil && cfg.Local.BasePath != "" {
			basePath = cfg.Local.BasePath
		}
		return local.NewLocalStorage(basePath)

	case storage.StorageTypeOSS:
		if cfg.OSS == nil {
			return nil, fmt.Errorf("oss storage config is required")
		}
		return oss.NewOSSStorage(
			cfg.OSS.Endpoint,
			cfg.OSS.Bucket,
			cfg.OSS.AccessKeyID,
			cfg.OSS.AccessKeySecret,
		)

	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}
