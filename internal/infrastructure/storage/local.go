// Package storage 提供上传文件的本地磁盘存储
package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"readrecall-api/internal/config"
	apperrors "readrecall-api/pkg/errors"
)

// LocalStore 本地磁盘文件存储
type LocalStore struct {
	dir string
}

// NewLocalStore 创建本地存储，目录不存在时创建
func NewLocalStore(cfg *config.StorageConfig) (*LocalStore, error) {
	dir := cfg.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload dir: %w", err)
	}
	return &LocalStore{dir: dir}, nil
}

// Save 保存上传内容，返回存储路径
// 文件名使用随机 UUID 加原始扩展名，避免用户文件名冲突。
func (s *LocalStore) Save(ctx context.Context, src io.Reader, originalName string) (string, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	name := uuid.NewString() + ext
	path := filepath.Join(s.dir, name)

	dst, err := os.Create(path)
	if err != nil {
		return "", apperrors.Wrap(err, apperrors.CodeStorageError, "failed to create file")
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		os.Remove(path)
		return "", apperrors.Wrap(err, apperrors.CodeStorageError, "failed to write file")
	}
	return path, nil
}

// Remove 删除存储的文件，文件不存在时视为成功
func (s *LocalStore) Remove(ctx context.Context, path string) error {
	if path == "" {
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return apperrors.Wrap(err, apperrors.CodeStorageError, "failed to remove file")
	}
	return nil
}
