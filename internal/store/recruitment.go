package store

import (
	"database/sql"
	"fmt"
	"sort"

	"findash/internal/model"
	"findash/internal/parser"
)

// ListEmployment 用工类型数据，按自然月排序
func (s *Store) ListEmployment() ([]model.EmploymentMonth, error) {
	rows, err := s.db.Query(`
		SELECT id, month, w2, c2c, employment_1099, referral, total_billables, created_at
		FROM employment_data
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query employment data: %w", err)
	}
	defer rows.Close()

	out := []model.EmploymentMonth{}
	for rows.Next() {
		var m model.EmploymentMonth
		if err := rows.Scan(&m.ID, &m.Month, &m.W2, &m.C2C, &m.Employment1099, &m.Referral,
			&m.TotalBillables, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan employment data: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employment data failed: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return monthLess(out[i].Month, out[j].Month) })
	return out, nil
}

// ListPlacement 入离职数据，按自然月排序
func (s *Store) ListPlacement() ([]model.PlacementMonth, error) {
	rows, err := s.db.Query(`
		SELECT id, month, new_placements, terminations, net_placements, net_billables, created_at
		FROM placement_data
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query placement data: %w", err)
	}
	defer rows.Close()

	out := []model.PlacementMonth{}
	for rows.Next() {
		var m model.PlacementMonth
		if err := rows.Scan(&m.ID, &m.Month, &m.NewPlacements, &m.Terminations, &m.NetPlacements,
			&m.NetBillables, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan placement data: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate placement data failed: %w", err)
	}
	sort.SliceStable(out, func(i, j int) bool { return monthLess(out[i].Month, out[j].Month) })
	return out, nil
}

// ListMargin 毛利数据，按写入顺序
func (s *Store) ListMargin() ([]model.MarginRecord, error) {
	rows, err := s.db.Query(`
		SELECT id, company_type, year_2024, year_2025, total, created_at
		FROM margin_data ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query margin data: %w", err)
	}
	defer rows.Close()

	out := []model.MarginRecord{}
	for rows.Next() {
		var m model.MarginRecord
		if err := rows.Scan(&m.ID, &m.CompanyType, &m.Year2024, &m.Year2025, &m.Total, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan margin data: %w", err)
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

const upsertEmployment = `
	INSERT INTO employment_data (month, w2, c2c, employment_1099, referral, total_billables)
	VALUES (?, ?, ?, ?, ?, ?)
	ON CONFLICT(month) DO UPDATE SET
		w2 = excluded.w2,
		c2c = excluded.c2c,
		employment_1099 = excluded.employment_1099,
		referral = excluded.referral,
		total_billables = excluded.total_billables
`

const upsertPlacement = `
	INSERT INTO placement_data (month, new_placements, terminations, net_placements, net_billables)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(month) DO UPDATE SET
		new_placements = excluded.new_placements,
		terminations = excluded.terminations,
		net_placements = excluded.net_placements,
		net_billables = excluded.net_billables
`

const insertMargin = `
	INSERT INTO margin_data (company_type, year_2024, year_2025, total) VALUES (?, ?, ?, ?)
`

func execEmployment(tx *sql.Tx, m model.EmploymentMonth) error {
	if _, err := tx.Exec(upsertEmployment, m.Month, m.W2, m.C2C, m.Employment1099, m.Referral, m.TotalBillables); err != nil {
		return fmt.Errorf("failed to save employment %s: %w", m.Month, err)
	}
	return nil
}

func execPlacement(tx *sql.Tx, m model.PlacementMonth) error {
	if _, err := tx.Exec(upsertPlacement, m.Month, m.NewPlacements, m.Terminations, m.NetPlacements, m.NetBillables); err != nil {
		return fmt.Errorf("failed to save placement %s: %w", m.Month, err)
	}
	return nil
}

// AddMonth 新增或覆盖某月的用工与入离职数据
func (s *Store) AddMonth(emp model.EmploymentMonth, pl model.PlacementMonth) error {
	return s.withTx(func(tx *sql.Tx) error {
		if err := execEmployment(tx, emp); err != nil {
			return err
		}
		return execPlacement(tx, pl)
	})
}

// ReplaceRecruitment 用导入结果整体替换招聘数据
// margin 为 nil 时保留现有毛利数据（报表中没有毛利工作表）。
func (s *Store) ReplaceRecruitment(emp []model.EmploymentMonth, pl []model.PlacementMonth, margin []model.MarginRecord) error {
	return s.withTx(func(tx *sql.Tx) error {
		if _, err := tx.Exec(`DELETE FROM employment_data`); err != nil {
			return fmt.Errorf("failed to clear employment data: %w", err)
		}
		if _, err := tx.Exec(`DELETE FROM placement_data`); err != nil {
			return fmt.Errorf("failed to clear placement data: %w", err)
		}
		for _, m := range emp {
			if err := execEmployment(tx, m); err != nil {
				return err
			}
		}
		for _, m := range pl {
			if err := execPlacement(tx, m); err != nil {
				return err
			}
		}
		if margin == nil {
			return nil
		}
		if _, err := tx.Exec(`DELETE FROM margin_data`); err != nil {
			return fmt.Errorf("failed to clear margin data: %w", err)
		}
		for _, m := range margin {
			if _, err := tx.Exec(insertMargin, m.CompanyType, m.Year2024, m.Year2025, m.Total); err != nil {
				return fmt.Errorf("failed to save margin %s: %w", m.CompanyType, err)
			}
		}
		return nil
	})
}

// ListRecruitmentMonths 用工与入离职数据中出现过的月份，按自然月排序
func (s *Store) ListRecruitmentMonths() ([]string, error) {
	rows, err := s.db.Query(`
		SELECT month FROM employment_data
		UNION
		SELECT month FROM placement_data
	`)
	if err != nil {
		return nil, fmt.Errorf("query recruitment months failed: %w", err)
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return nil, fmt.Errorf("scan recruitment months failed: %w", err)
		}
		out = append(out, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate recruitment months failed: %w", err)
	}
	SortMonths(out)
	return out, nil
}

// RecruitmentRows 用工与入离职数据按月份全外连接
func (s *Store) RecruitmentRows() ([]model.RecruitmentRow, error) {
	emp, err := s.ListEmployment()
	if err != nil {
		return nil, err
	}
	pl, err := s.ListPlacement()
	if err != nil {
		return nil, err
	}
	return JoinRecruitment(emp, pl), nil
}

// JoinRecruitment 按月份合并，结果按自然月排序
func JoinRecruitment(emp []model.EmploymentMonth, pl []model.PlacementMonth) []model.RecruitmentRow {
	byMonth := map[string]*model.RecruitmentRow{}
	months := []string{}
	row := func(month string) *model.RecruitmentRow {
		if r, ok := byMonth[month]; ok {
			return r
		}
		r := &model.RecruitmentRow{Month: month}
		byMonth[month] = r
		months = append(months, month)
		return r
	}
	for _, e := range emp {
		r := row(e.Month)
		r.W2, r.C2C, r.Employment1099 = &e.W2, &e.C2C, &e.Employment1099
		r.Referral, r.TotalBillables = &e.Referral, &e.TotalBillables
	}
	for _, p := range pl {
		r := row(p.Month)
		r.NewPlacements, r.Terminations = &p.NewPlacements, &p.Terminations
		r.NetPlacements, r.NetBillables = &p.NetPlacements, &p.NetBillables
	}

	SortMonths(months)
	out := make([]model.RecruitmentRow, 0, len(months))
	for _, m := range months {
		out = append(out, *byMonth[m])
	}
	return out
}

// SortMonths 按自然月排序；无法解析的标签排在最后并按字母序
func SortMonths(months []string) {
	sort.SliceStable(months, func(i, j int) bool { return monthLess(months[i], months[j]) })
}

func monthLess(a, b string) bool {
	ta, oka := parser.ParseDate(a)
	tb, okb := parser.ParseDate(b)
	switch {
	case oka && okb:
		if ta.Equal(tb) {
			return a < b
		}
		return ta.Before(tb)
	case oka:
		return true
	case okb:
		return false
	}
	return a < b
}
