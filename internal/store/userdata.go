package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"findash/internal/model"
)

// UserData 按用户保存的会话数据：最近上传、最近看板、自定义公式
// 同一用户的并发写入以最后一次为准。
type UserData interface {
	SaveUpload(u model.Upload) error
	GetUpload(userID, kind string) (model.Upload, error)
	ListUploads(userID string) ([]model.Upload, error)
	DeleteUploads(userID string, kinds ...string) ([]model.Upload, error)
	// PurgeUploads 删除早于 before 的上传记录并返回它们（由调用方删除文件）
	PurgeUploads(before time.Time) ([]model.Upload, error)

	SaveDashboard(userID string, d *model.Dashboard) error
	GetDashboard(userID, kind string) (*model.Dashboard, error)
	DeleteDashboards(userID string, kinds ...string) error

	SaveFormulas(userID string, formulas json.RawMessage) error
	GetFormulas(userID string) (json.RawMessage, error)
}

var _ UserData = (*Store)(nil)

// SaveUpload 记录上传；同类文件覆盖旧记录
func (s *Store) SaveUpload(u model.Upload) error {
	if u.CreatedAt == "" {
		u.CreatedAt = timestamp(time.Now())
	}
	_, err := s.db.Exec(`
		INSERT INTO uploads (user_id, kind, filename, path, size, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id, kind) DO UPDATE SET
			filename = excluded.filename,
			path = excluded.path,
			size = excluded.size,
			created_at = excluded.created_at
	`, u.UserID, u.Kind, u.Filename, u.Path, u.Size, u.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	return nil
}

// GetUpload 某用户某类文件的最近一次上传
func (s *Store) GetUpload(userID, kind string) (model.Upload, error) {
	var u model.Upload
	err := s.db.QueryRow(`
		SELECT user_id, kind, filename, path, size, created_at
		FROM uploads WHERE user_id = ? AND kind = ?
	`, userID, kind).Scan(&u.UserID, &u.Kind, &u.Filename, &u.Path, &u.Size, &u.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Upload{}, ErrNotFound
	}
	if err != nil {
		return model.Upload{}, fmt.Errorf("failed to query upload: %w", err)
	}
	return u, nil
}

// ListUploads 某用户的全部上传，按类型排序
func (s *Store) ListUploads(userID string) ([]model.Upload, error) {
	return s.queryUploads(`WHERE user_id = ? ORDER BY kind`, userID)
}

// DeleteUploads 删除指定类型（为空时全部）的上传记录
func (s *Store) DeleteUploads(userID string, kinds ...string) ([]model.Upload, error) {
	where, args := kindFilter(userID, kinds)
	var out []model.Upload
	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		out, err = queryUploadsTx(tx, where, args...)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM uploads `+where, args...); err != nil {
			return fmt.Errorf("failed to delete uploads: %w", err)
		}
		return nil
	})
	return out, err
}

// PurgeUploads 清理过期上传记录
func (s *Store) PurgeUploads(before time.Time) ([]model.Upload, error) {
	cutoff := timestamp(before)
	var out []model.Upload
	err := s.withTx(func(tx *sql.Tx) error {
		var err error
		out, err = queryUploadsTx(tx, `WHERE created_at < ?`, cutoff)
		if err != nil {
			return err
		}
		if _, err := tx.Exec(`DELETE FROM uploads WHERE created_at < ?`, cutoff); err != nil {
			return fmt.Errorf("failed to purge uploads: %w", err)
		}
		return nil
	})
	return out, err
}

type queryer interface {
	Query(query string, args ...any) (*sql.Rows, error)
}

func (s *Store) queryUploads(where string, args ...any) ([]model.Upload, error) {
	return queryUploadsTx(s.db, where, args...)
}

func queryUploadsTx(q queryer, where string, args ...any) ([]model.Upload, error) {
	rows, err := q.Query(`SELECT user_id, kind, filename, path, size, created_at FROM uploads `+where, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query uploads: %w", err)
	}
	defer rows.Close()

	out := []model.Upload{}
	for rows.Next() {
		var u model.Upload
		if err := rows.Scan(&u.UserID, &u.Kind, &u.Filename, &u.Path, &u.Size, &u.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan upload: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// kindFilter user_id 条件加可选的类型列表
func kindFilter(userID string, kinds []string) (string, []any) {
	args := []any{userID}
	if len(kinds) == 0 {
		return `WHERE user_id = ?`, args
	}
	marks := make([]string, len(kinds))
	for i, k := range kinds {
		marks[i] = "?"
		args = append(args, k)
	}
	return `WHERE user_id = ? AND kind IN (` + strings.Join(marks, ",") + `)`, args
}

// SaveDashboard 保存用户最近一次生成的看板（按 Kind 区分）
func (s *Store) SaveDashboard(userID string, d *model.Dashboard) error {
	if d == nil {
		return errors.New("dashboard is nil")
	}
	payload, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("failed to encode dashboard: %w", err)
	}
	_, err = s.db.Exec(`
		INSERT INTO dashboards (user_id, kind, payload, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id, kind) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, userID, d.Kind, string(payload), timestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save dashboard: %w", err)
	}
	return nil
}

// GetDashboard 读取用户某类看板
func (s *Store) GetDashboard(userID, kind string) (*model.Dashboard, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM dashboards WHERE user_id = ? AND kind = ?`, userID, kind).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query dashboard: %w", err)
	}
	var d model.Dashboard
	if err := json.Unmarshal([]byte(payload), &d); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard: %w", err)
	}
	return &d, nil
}

// DeleteDashboards 删除指定类型（为空时全部）的看板
func (s *Store) DeleteDashboards(userID string, kinds ...string) error {
	where, args := kindFilter(userID, kinds)
	if _, err := s.db.Exec(`DELETE FROM dashboards `+where, args...); err != nil {
		return fmt.Errorf("failed to delete dashboards: %w", err)
	}
	return nil
}

// SaveFormulas 原样保存自定义公式
func (s *Store) SaveFormulas(userID string, formulas json.RawMessage) error {
	if !json.Valid(formulas) {
		return errors.New("formulas must be valid JSON")
	}
	_, err := s.db.Exec(`
		INSERT INTO formulas (user_id, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at
	`, userID, string(formulas), timestamp(time.Now()))
	if err != nil {
		return fmt.Errorf("failed to save formulas: %w", err)
	}
	return nil
}

// GetFormulas 读取自定义公式
func (s *Store) GetFormulas(userID string) (json.RawMessage, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM formulas WHERE user_id = ?`, userID).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query formulas: %w", err)
	}
	return json.RawMessage(payload), nil
}
