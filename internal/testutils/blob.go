package testutils

import (
	"errors"
	"fmt"
	"sync"
)

// MemBlobStore 内存 blob 存储，记录保存和删除轨迹供断言
type MemBlobStore struct {
	mu      sync.Mutex
	seq     int
	Files   map[string][]byte
	Deleted []string
	// SaveErrAt 第 N 次（1 起）Save 返回错误，0 表示不注错
	SaveErrAt int
	saveCalls int
}

func NewMemBlobStore() *MemBlobStore {
	return &MemBlobStore{Files: make(map[string][]byte)}
}

func (m *MemBlobStore) Save(data []byte, dir, ext string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveCalls++
	if m.SaveErrAt > 0 && m.saveCalls == m.SaveErrAt {
		return "", errors.New("save failed")
	}
	m.seq++
	path := fmt.Sprintf("%s/blob_%d%s", dir, m.seq, ext)
	m.Files[path] = data
	return path, nil
}

func (m *MemBlobStore) Delete(path string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deleted = append(m.Deleted, path)
	delete(m.Files, path)
	return nil
}

// Count 当前存活 blob 数
func (m *MemBlobStore) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Files)
}
