package storage

import (
	"context"
	"io"
)

// Storage 成品归档接口
// 流水线只做单向归档：上传成品前探测键是否已被占用，不回读、不删除
type Storage interface {
	// Upload 上传文件，返回可访问的 URL
	Upload(ctx context.Context, key string, data io.Reader, contentType string) (string, error)

	// Exists 检查文件是否存在
	Exists(ctx context.Context, key string) (bool, error)

	// GetStorageType 获取存储类型
	GetStorageType() string
}

// StorageType 存储类型
type StorageType string

const (
	StorageTypeLocal StorageType = "local" // 本地文件系统
	StorageTypeOSS   StorageType = "oss"   // 阿里云OSS
)
