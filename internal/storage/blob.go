package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// BlobStore 上传文件的落盘抽象。Save 返回可入库的相对路径；
// Delete 尽力而为，调用方决定失败是否致命。
type BlobStore interface {
	Save(data []byte, dir, ext string) (string, error)
	Delete(path string) error
}

// LocalStore 本地文件系统实现，按 日期目录+uuid文件名 存放，路径永不复用
type LocalStore struct {
	Root string
}

func NewLocalStore(root string) *LocalStore {
	if root == "" {
		root = "uploads"
	}
	return &LocalStore{Root: root}
}

func (s *LocalStore) Save(data []byte, dir, ext string) (string, error) {
	now := time.Now()
	datePath := filepath.Join(now.Format("2006"), now.Format("01"), now.Format("02"))
	rel := filepath.Join(dir, datePath, uuid.New().String()+ext)

	full := filepath.Join(s.Root, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
		return "", fmt.Errorf("mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0644); err != nil {
		return "", fmt.Errorf("write blob: %w", err)
	}
	return filepath.ToSlash(rel), nil
}

func (s *LocalStore) Delete(path string) error {
	if path == "" {
		return nil
	}
	full := filepath.Join(s.Root, filepath.FromSlash(path))
	if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
