package workspace

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"sync"
	"time"

	"findash/internal/model"
	persist "findash/internal/store"
)

// Workspace 基于 JSON 文件的会话数据存储
//
//	<root>/<user>/uploads.json
//	<root>/<user>/formulas.json
//	<root>/<user>/dashboards/<kind>.json
//
// 同一用户的写入串行执行，文件以原子重命名落盘。
type Workspace struct {
	root  string
	locks sync.Map
	now   func() time.Time
}

var _ persist.UserData = (*Workspace)(nil)

// ErrInvalidUser 用户标识不能用作目录名
var ErrInvalidUser = errors.New("invalid user id")

var userIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// ValidUserID 用户标识只允许字母、数字、下划线和连字符
func ValidUserID(id string) bool {
	return userIDPattern.MatchString(id)
}

// New 创建工作区，root 不存在时自动创建
func New(root string) (*Workspace, error) {
	if root == "" {
		return nil, errors.New("workspace root is required")
	}
	if err := ensureDir(root); err != nil {
		return nil, fmt.Errorf("failed to create workspace: %w", err)
	}
	return &Workspace{root: root, now: time.Now}, nil
}

// Root 工作区根目录
func (w *Workspace) Root() string {
	return w.root
}

func (w *Workspace) lock(userID string) func() {
	v, _ := w.locks.LoadOrStore(userID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}

func (w *Workspace) userDir(userID string) (string, error) {
	if !userIDPattern.MatchString(userID) {
		return "", fmt.Errorf("%w: %q", ErrInvalidUser, userID)
	}
	return filepath.Join(w.root, userID), nil
}

func (w *Workspace) uploadsPath(userID string) (string, error) {
	dir, err := w.userDir(userID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "uploads.json"), nil
}

func (w *Workspace) dashboardPath(userID, kind string) (string, error) {
	dir, err := w.userDir(userID)
	if err != nil {
		return "", err
	}
	if !userIDPattern.MatchString(kind) {
		return "", fmt.Errorf("invalid dashboard kind %q", kind)
	}
	return filepath.Join(dir, "dashboards", kind+".json"), nil
}

func (w *Workspace) formulasPath(userID string) (string, error) {
	dir, err := w.userDir(userID)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "formulas.json"), nil
}

func (w *Workspace) readUploads(path string) (map[string]model.Upload, error) {
	uploads := map[string]model.Upload{}
	if err := readJSON(path, &uploads); err != nil && !errors.Is(err, persist.ErrNotFound) {
		return nil, err
	}
	return uploads, nil
}

// SaveUpload 记录上传；同类文件覆盖旧记录
func (w *Workspace) SaveUpload(u model.Upload) error {
	path, err := w.uploadsPath(u.UserID)
	if err != nil {
		return err
	}
	if u.CreatedAt == "" {
		u.CreatedAt = w.now().UTC().Format(time.RFC3339)
	}
	defer w.lock(u.UserID)()

	uploads, err := w.readUploads(path)
	if err != nil {
		return err
	}
	uploads[u.Kind] = u
	return writeJSONAtomic(path, uploads)
}

// GetUpload 用户某类文件的最近上传
func (w *Workspace) GetUpload(userID, kind string) (model.Upload, error) {
	path, err := w.uploadsPath(userID)
	if err != nil {
		return model.Upload{}, err
	}
	defer w.lock(userID)()

	uploads, err := w.readUploads(path)
	if err != nil {
		return model.Upload{}, err
	}
	u, ok := uploads[kind]
	if !ok {
		return model.Upload{}, persist.ErrNotFound
	}
	return u, nil
}

// ListUploads 用户全部上传，按类型排序
func (w *Workspace) ListUploads(userID string) ([]model.Upload, error) {
	path, err := w.uploadsPath(userID)
	if err != nil {
		return nil, err
	}
	defer w.lock(userID)()

	uploads, err := w.readUploads(path)
	if err != nil {
		return nil, err
	}
	return sortedUploads(uploads), nil
}

// DeleteUploads 删除指定类型（为空时全部）
func (w *Workspace) DeleteUploads(userID string, kinds ...string) ([]model.Upload, error) {
	path, err := w.uploadsPath(userID)
	if err != nil {
		return nil, err
	}
	defer w.lock(userID)()

	uploads, err := w.readUploads(path)
	if err != nil {
		return nil, err
	}
	removed := map[string]model.Upload{}
	for kind, u := range uploads {
		if len(kinds) > 0 && !contains(kinds, kind) {
			continue
		}
		removed[kind] = u
		delete(uploads, kind)
	}
	if len(removed) == 0 {
		return []model.Upload{}, nil
	}
	return sortedUploads(removed), writeJSONAtomic(path, uploads)
}

// PurgeUploads 遍历所有用户，清理早于 before 的上传记录
func (w *Workspace) PurgeUploads(before time.Time) ([]model.Upload, error) {
	entries, err := os.ReadDir(w.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list workspace: %w", err)
	}
	out := []model.Upload{}
	for _, e := range entries {
		if !e.IsDir() || !userIDPattern.MatchString(e.Name()) {
			continue
		}
		purged, err := w.purgeUser(e.Name(), before)
		if err != nil {
			return out, err
		}
		out = append(out, purged...)
	}
	return out, nil
}

func (w *Workspace) purgeUser(userID string, before time.Time) ([]model.Upload, error) {
	path, err := w.uploadsPath(userID)
	if err != nil {
		return nil, err
	}
	defer w.lock(userID)()

	if !fileExists(path) {
		return nil, nil
	}
	uploads, err := w.readUploads(path)
	if err != nil {
		return nil, err
	}
	var out []model.Upload
	for kind, u := range uploads {
		created, err := time.Parse(time.RFC3339, u.CreatedAt)
		if err != nil || !created.Before(before) {
			continue
		}
		out = append(out, u)
		delete(uploads, kind)
	}
	if len(out) == 0 {
		return nil, nil
	}
	return out, writeJSONAtomic(path, uploads)
}

// SaveDashboard 保存用户最近一次生成的看板
func (w *Workspace) SaveDashboard(userID string, d *model.Dashboard) error {
	if d == nil {
		return errors.New("dashboard is nil")
	}
	path, err := w.dashboardPath(userID, d.Kind)
	if err != nil {
		return err
	}
	defer w.lock(userID)()
	return writeJSONAtomic(path, d)
}

// GetDashboard 读取用户某类看板
func (w *Workspace) GetDashboard(userID, kind string) (*model.Dashboard, error) {
	path, err := w.dashboardPath(userID, kind)
	if err != nil {
		return nil, err
	}
	defer w.lock(userID)()

	var d model.Dashboard
	if err := readJSON(path, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// DeleteDashboards 删除指定类型（为空时全部）
func (w *Workspace) DeleteDashboards(userID string, kinds ...string) error {
	dir, err := w.userDir(userID)
	if err != nil {
		return err
	}
	defer w.lock(userID)()

	if len(kinds) == 0 {
		return os.RemoveAll(filepath.Join(dir, "dashboards"))
	}
	for _, k := range kinds {
		path, err := w.dashboardPath(userID, k)
		if err != nil {
			return err
		}
		if err := removeFile(path); err != nil {
			return err
		}
	}
	return nil
}

// SaveFormulas 原样保存自定义公式
func (w *Workspace) SaveFormulas(userID string, formulas json.RawMessage) error {
	if !json.Valid(formulas) {
		return errors.New("formulas must be valid JSON")
	}
	path, err := w.formulasPath(userID)
	if err != nil {
		return err
	}
	defer w.lock(userID)()
	return writeJSONAtomic(path, formulas)
}

// GetFormulas 读取自定义公式
func (w *Workspace) GetFormulas(userID string) (json.RawMessage, error) {
	path, err := w.formulasPath(userID)
	if err != nil {
		return nil, err
	}
	defer w.lock(userID)()

	var raw json.RawMessage
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func sortedUploads(m map[string]model.Upload) []model.Upload {
	out := make([]model.Upload, 0, len(m))
	for _, u := range m {
		out = append(out, u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Kind < out[j].Kind })
	return out
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
