package model

// EmploymentMonth 当月用工类型在岗人数
type EmploymentMonth struct {
	ID             int64  `json:"id"`
	Month          string `json:"month" validate:"required"`
	W2             int    `json:"w2" validate:"gte=0"`
	C2C            int    `json:"c2c" validate:"gte=0"`
	Employment1099 int    `json:"employment_1099" validate:"gte=0"`
	Referral       int    `json:"referral" validate:"gte=0"`
	TotalBillables int    `json:"total_billables" validate:"gte=0"`
	CreatedAt      string `json:"created_at,omitempty"`
}

// PlacementMonth 当月入职/离职统计
type PlacementMonth struct {
	ID            int64  `json:"id"`
	Month         string `json:"month" validate:"required"`
	NewPlacements int    `json:"new_placements" validate:"gte=0"`
	Terminations  int    `json:"terminations" validate:"gte=0"`
	NetPlacements int    `json:"net_placements"`
	NetBillables  int    `json:"net_billables"`
	CreatedAt     string `json:"created_at,omitempty"`
}

// MarginRecord 单个公司/用工类型的毛利
type MarginRecord struct {
	ID          int64   `json:"id"`
	CompanyType string  `json:"company_type"`
	Year2024    float64 `json:"year_2024"`
	Year2025    float64 `json:"year_2025"`
	Total       float64 `json:"total"`
	CreatedAt   string  `json:"created_at,omitempty"`
}

// RecruitmentRow 按月份合并的用工与入离职数据（导出用）
// 任一侧缺失该月时对应字段为 nil。
type RecruitmentRow struct {
	Month          string `json:"month"`
	W2             *int   `json:"w2"`
	C2C            *int   `json:"c2c"`
	Employment1099 *int   `json:"employment_1099"`
	Referral       *int   `json:"referral"`
	TotalBillables *int   `json:"total_billables"`
	NewPlacements  *int   `json:"new_placements"`
	Terminations   *int   `json:"terminations"`
	NetPlacements  *int   `json:"net_placements"`
	NetBillables   *int   `json:"net_billables"`
}
