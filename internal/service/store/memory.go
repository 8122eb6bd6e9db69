package store

import (
	"encoding/json"
	"errors"
	"sort"
	"sync"
	"time"

	"findash/internal/model"
	persist "findash/internal/store"
)

// MemoryStore 内存会话数据存储，进程退出即丢失
// 看板以 JSON 形式保存，读取时得到独立副本。
type MemoryStore struct {
	mu         sync.RWMutex
	uploads    map[string]map[string]model.Upload
	dashboards map[string]map[string][]byte
	formulas   map[string]json.RawMessage
	now        func() time.Time
}

var _ persist.UserData = (*MemoryStore)(nil)

// NewMemoryStore 创建内存存储
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		uploads:    make(map[string]map[string]model.Upload),
		dashboards: make(map[string]map[string][]byte),
		formulas:   make(map[string]json.RawMessage),
		now:        time.Now,
	}
}

// SaveUpload 记录上传；同类文件覆盖旧记录
func (s *MemoryStore) SaveUpload(u model.Upload) error {
	if u.CreatedAt == "" {
		u.CreatedAt = s.now().UTC().Format(time.RFC3339)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.uploads[u.UserID] == nil {
		s.uploads[u.UserID] = make(map[string]model.Upload)
	}
	s.uploads[u.UserID][u.Kind] = u
	return nil
}

// GetUpload 获取用户某类文件的最近上传
func (s *MemoryStore) GetUpload(userID, kind string) (model.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.uploads[userID][kind]
	if !ok {
		return model.Upload{}, persist.ErrNotFound
	}
	return u, nil
}

// ListUploads 用户全部上传，按类型排序
func (s *MemoryStore) ListUploads(userID string) ([]model.Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.Upload, 0, len(s.uploads[userID]))
	for _, u := range s.uploads[userID] {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out, nil
}

// DeleteUploads 删除指定类型（为空时全部）
func (s *MemoryStore) DeleteUploads(userID string, kinds ...string) ([]model.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Upload{}
	for kind, u := range s.uploads[userID] {
		if len(kinds) > 0 && !contains(kinds, kind) {
			continue
		}
		out = append(out, u)
		delete(s.uploads[userID], kind)
	}
	return out, nil
}

// PurgeUploads 清理早于 before 的上传记录
func (s *MemoryStore) PurgeUploads(before time.Time) ([]model.Upload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []model.Upload{}
	for _, byKind := range s.uploads {
		for kind, u := range byKind {
			created, err := time.Parse(time.RFC3339, u.CreatedAt)
			if err != nil || !created.Before(before) {
				continue
			}
			out = append(out, u)
			delete(byKind, kind)
		}
	}
	return out, nil
}

// SaveDashboard 保存用户最近一次生成的看板
func (s *MemoryStore) SaveDashboard(userID string, d *model.Dashboard) error {
	if d == nil {
		return errors.New("dashboard is nil")
	}
	data, err := json.Marshal(d)
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.dashboards[userID] == nil {
		s.dashboards[userID] = make(map[string][]byte)
	}
	s.dashboards[userID][d.Kind] = data
	return nil
}

// GetDashboard 读取用户某类看板
func (s *MemoryStore) GetDashboard(userID, kind string) (*model.Dashboard, error) {
	s.mu.RLock()
	data, ok := s.dashboards[userID][kind]
	s.mu.RUnlock()
	if !ok {
		return nil, persist.ErrNotFound
	}
	var d model.Dashboard
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDashboards 删除指定类型（为空时全部）
func (s *MemoryStore) DeleteDashboards(userID string, kinds ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(kinds) == 0 {
		delete(s.dashboards, userID)
		return nil
	}
	for _, k := range kinds {
		delete(s.dashboards[userID], k)
	}
	return nil
}

// SaveFormulas 原样保存自定义公式
func (s *MemoryStore) SaveFormulas(userID string, formulas json.RawMessage) error {
	if !json.Valid(formulas) {
		return errors.New("formulas must be valid JSON")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.formulas[userID] = append(json.RawMessage{}, formulas...)
	return nil
}

// GetFormulas 读取自定义公式
func (s *MemoryStore) GetFormulas(userID string) (json.RawMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	f, ok := s.formulas[userID]
	if !ok {
		return nil, persist.ErrNotFound
	}
	return append(json.RawMessage{}, f...), nil
}

// Count 保存了任何数据的用户数
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := map[string]struct{}{}
	for u := range s.uploads {
		users[u] = struct{}{}
	}
	for u := range s.dashboards {
		users[u] = struct{}{}
	}
	for u := range s.formulas {
		users[u] = struct{}{}
	}
	return len(users)
}

// Clear 清空全部数据
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.uploads = make(map[string]map[string]model.Upload)
	s.dashboards = make(map[string]map[string][]byte)
	s.formulas = make(map[string]json.RawMessage)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
