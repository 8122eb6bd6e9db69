package api

import (
	"crypto/rand"
	"encoding/base64"
	"sync"
	"time"
)

// DownloadTTL 导出文件的下载有效期
const DownloadTTL = 10 * time.Minute

type download struct {
	filePath  string
	filename  string
	expiresAt time.Time
}

// DownloadStore 一次性下载令牌
type DownloadStore struct {
	mu    sync.Mutex
	items map[string]download
	now   func() time.Time
}

// NewDownloadStore 创建令牌表
func NewDownloadStore() *DownloadStore {
	return &DownloadStore{
		items: make(map[string]download),
		now:   time.Now,
	}
}

func (s *DownloadStore) put(filePath, filename string, ttl time.Duration) (token string, expiresAt time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removeFiles(s.purgeExpiredLocked(now)...)

	token = newRandomToken(24)
	expiresAt = now.Add(ttl)
	s.items[token] = download{
		filePath:  filePath,
		filename:  filename,
		expiresAt: expiresAt,
	}
	return token, expiresAt
}

func (s *DownloadStore) get(token string) (download, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.items[token]
	if !ok {
		return download{}, false
	}
	if s.now().After(v.expiresAt) {
		delete(s.items, token)
		return download{}, false
	}
	return v, true
}

func (s *DownloadStore) delete(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, token)
}

// Len 未过期的令牌数
func (s *DownloadStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	now := s.now()
	for _, v := range s.items {
		if !now.After(v.expiresAt) {
			n++
		}
	}
	return n
}

// PurgeExpired 移除过期令牌，返回其文件路径（由调用方删除文件）
func (s *DownloadStore) PurgeExpired() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.purgeExpiredLocked(s.now())
}

func (s *DownloadStore) purgeExpiredLocked(now time.Time) []string {
	var paths []string
	for k, v := range s.items {
		if now.After(v.expiresAt) {
			paths = append(paths, v.filePath)
			delete(s.items, k)
		}
	}
	return paths
}

func newRandomToken(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
