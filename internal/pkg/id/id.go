package id

import (
	"github.com/google/uuid"
)

// New 生成新的UUID（string格式）
func New() string {
	return uuid.New().String()
}

// Short 生成短ID（UUID前8位），用于文件名等人类可读场景
func Short() string {
	return uuid.New().String()[:8]
}
