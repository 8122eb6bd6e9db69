package model

// FormatKind KPI 展示格式
type FormatKind string

const (
	FormatCurrency   FormatKind = "currency"
	FormatPercentage FormatKind = "percentage"
	FormatCount      FormatKind = "count"
)

// KPI 单个看板指标
type KPI struct {
	Key       string     `json:"key"`
	Label     string     `json:"label"`
	Value     float64    `json:"value"`
	Format    FormatKind `json:"format"`
	Display   string     `json:"display"`
	Available bool       `json:"available"`
}

// SeriesDump 原始序列的 JSON 形式
type SeriesDump struct {
	Labels []string  `json:"labels"`
	Values []float64 `json:"values"`
}

// Dashboard 单次处理的完整输出
// 只包含可直接 JSON 序列化的值，日期已转为 ISO 字符串。
type Dashboard struct {
	Kind        string                `json:"kind"`
	KPIs        []KPI                 `json:"kpis"`
	Charts      map[string]any        `json:"charts"`
	RawSeries   map[string]SeriesDump `json:"raw_series"`
	Status      map[string]bool       `json:"status"`
	Filename    string                `json:"filename,omitempty"`
	SheetNames  []string              `json:"sheet_names,omitempty"`
	Extras      map[string]any        `json:"extras,omitempty"`
	GeneratedAt string                `json:"generated_at"`
}

// Dashboard kinds
const (
	DashboardFlexible  = "flexible"
	DashboardPlacement = "placement"
	DashboardFinance   = "finance"
)

// NewDashboard 创建空看板
func NewDashboard(kind string) *Dashboard {
	return &Dashboard{
		Kind:      kind,
		KPIs:      []KPI{},
		Charts:    map[string]any{},
		RawSeries: map[string]SeriesDump{},
		Status:    map[string]bool{},
	}
}

// HasData 是否至少有一个可用指标或一个状态为真
func (d *Dashboard) HasData() bool {
	if d == nil {
		return false
	}
	for _, k := range d.KPIs {
		if k.Available {
			return true
		}
	}
	for _, v := range d.Status {
		if v {
			return true
		}
	}
	return false
}

// KPI 按 key 查找
func (d *Dashboard) KPI(key string) (KPI, bool) {
	if d == nil {
		return KPI{}, false
	}
	for _, k := range d.KPIs {
		if k.Key == key {
			return k, true
		}
	}
	return KPI{}, false
}
