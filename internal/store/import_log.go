package store

import (
	"database/sql"
	"errors"
	"fmt"

	"findash/internal/model"
)

// CreateImportLog 创建处理日志，返回 import_log_id
func (s *Store) CreateImportLog(userID, filename, kind string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_logs (user_id, filename, kind, status)
		VALUES (?, ?, ?, ?)
	`, userID, filename, kind, model.ImportStatusProcessing)
	if err != nil {
		return 0, fmt.Errorf("failed to create import log: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get import log id: %w", err)
	}
	return id, nil
}

// UpdateImportLog 完成处理日志更新
func (s *Store) UpdateImportLog(id int64, totalSheets, processedSheets, missingSheets int, status, errorMessage string) error {
	_, err := s.db.Exec(`
		UPDATE import_logs SET
			total_sheets = ?,
			processed_sheets = ?,
			missing_sheets = ?,
			status = ?,
			error_message = ?,
			completed_at = strftime('%Y-%m-%dT%H:%M:%SZ', 'now')
		WHERE id = ?
	`, totalSheets, processedSheets, missingSheets, status, errorMessage, id)
	if err != nil {
		return fmt.Errorf("failed to update import log: %w", err)
	}
	return nil
}

const importLogColumns = `id, user_id, filename, kind, status, total_sheets, processed_sheets,
	missing_sheets, error_message, created_at, completed_at`

func scanImportLog(row interface{ Scan(...any) error }) (*model.ImportLog, error) {
	var (
		l         model.ImportLog
		completed sql.NullString
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Filename, &l.Kind, &l.Status, &l.TotalSheets,
		&l.ProcessedSheets, &l.MissingSheets, &l.ErrorMessage, &l.CreatedAt, &completed); err != nil {
		return nil, err
	}
	l.CompletedAt = completed.String
	return &l, nil
}

// LastImportLog 最近一次处理；userID 为空时不区分用户
func (s *Store) LastImportLog(userID string) (*model.ImportLog, error) {
	query := `SELECT ` + importLogColumns + ` FROM import_logs`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY id DESC LIMIT 1`

	l, err := scanImportLog(s.db.QueryRow(query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query import log: %w", err)
	}
	return l, nil
}

// ListImportLogs 按时间倒序列出某用户的处理日志
func (s *Store) ListImportLogs(userID string, limit int) ([]model.ImportLog, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`SELECT `+importLogColumns+` FROM import_logs
		WHERE user_id = ? ORDER BY id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query import logs: %w", err)
	}
	defer rows.Close()

	out := []model.ImportLog{}
	for rows.Next() {
		l, err := scanImportLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan import log: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}
