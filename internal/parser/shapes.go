package parser

// MetricRule 按行标签定位一条序列
type MetricRule struct {
	Key      string
	Label    string
	LabelCol int
	Mode     MatchMode
	Columns  ColumnSpec
}

// ScanRule 收集标签含任一关键词的所有行，键为行标签
type ScanRule struct {
	LabelCol int
	Keywords []string
	Columns  ColumnSpec
}

// RecordField 记录中的一个数值字段
type RecordField struct {
	Key string
	Col int
}

// RecordRule 每个非空标签行产出一条记录
// TotalKey 对应单元格不是数值时，取其余字段之和。
type RecordRule struct {
	LabelCol   int
	Fields     []RecordField
	TotalKey   string
	SkipLabels []string
}

// CellRule 固定单元格取值（A1 引用）
type CellRule struct {
	Key string
	Ref string
}

// SheetSelector 工作表选择：名称 > 名称关键词 > 位置
type SheetSelector struct {
	Name          string
	NameContains  []string
	Position      int // 1 起；0 表示不按位置
	FallbackFirst bool
}

// SheetShape 单个工作表的提取规则
type SheetShape struct {
	ID            string
	Selector      SheetSelector
	Columns       ColumnSpec
	DefaultLabels []string
	Metrics       []MetricRule
	Scans         []ScanRule
	Records       *RecordRule
	Cells         []CellRule
}

// ReportShape 一种已知报表形态
type ReportShape struct {
	ID     string
	Sheets []SheetShape
}

// 报表形态 ID
const (
	ShapePlacementReport = "placement_report"
	ShapePlacementLegacy = "placement_legacy"
	ShapeFinanceWorkbook = "finance_workbook"
)

// 工作表 ID
const (
	SheetEmployment     = "employment_types"
	SheetPlacements     = "placement_metrics"
	SheetMargins        = "gross_margin"
	SheetAdditional     = "additional"
	SheetLegacy         = "legacy"
	SheetFinanceSummary = "summary"
	SheetDirectHire     = "direct_hire"
	SheetServices       = "services"
	SheetITStaffing     = "it_staffing"
	SheetTechgenePnL    = "techgene_pnl"
	SheetVensitiPnL     = "vensiti_pnl"
)

// DefaultMonthLabels 招聘报表与财务损益表的默认期间标签
var DefaultMonthLabels = []string{"Jan", "Feb", "Mar", "Apr", "May", "Jun", "Jul", "Aug"}

// PnLHeaders 损益表的月份表头
var PnLHeaders = []string{"Jan 25", "Feb 25", "Mar 25", "Apr 25", "May 25", "Jun 25", "Jul 25", "Aug 25"}

// Shapes 已知报表形态注册表
var Shapes = map[string]ReportShape{
	ShapePlacementReport: placementReport(),
	ShapePlacementLegacy: placementLegacy(),
	ShapeFinanceWorkbook: financeWorkbook(),
}

// Shape 按 ID 查找
func Shape(id string) (ReportShape, bool) {
	s, ok := Shapes[id]
	return s, ok
}

func exactRules(labelCol int, labels ...string) []MetricRule {
	out := make([]MetricRule, 0, len(labels))
	for _, l := range labels {
		out = append(out, MetricRule{Key: l, Label: l, LabelCol: labelCol, Mode: MatchExact})
	}
	return out
}

func containsRules(labelCol int, labels ...string) []MetricRule {
	out := make([]MetricRule, 0, len(labels))
	for _, l := range labels {
		out = append(out, MetricRule{Key: l, Label: l, LabelCol: labelCol, Mode: MatchContains})
	}
	return out
}

func placementReport() ReportShape {
	return ReportShape{
		ID: ShapePlacementReport,
		Sheets: []SheetShape{
			{
				ID:            SheetEmployment,
				Selector:      SheetSelector{Position: 1},
				Columns:       Range(4, 11),
				DefaultLabels: DefaultMonthLabels,
				Metrics:       exactRules(3, "TG W2", "TG C2C", "TG 1099", "TG Referral", "VNST W2", "VNST C2C"),
			},
			{
				ID:            SheetPlacements,
				Selector:      SheetSelector{Position: 2},
				Columns:       Range(1, 8),
				DefaultLabels: DefaultMonthLabels,
				Metrics: exactRules(0,
					"W2", "C2C", "1099", "Referral", "Total billables",
					"New Placements", "Terminations", "Net Placements", "Net billables"),
			},
			{
				ID:       SheetMargins,
				Selector: SheetSelector{NameContains: []string{"gross", "margin"}},
				Records: &RecordRule{
					LabelCol: 0,
					Fields: []RecordField{
						{Key: "year_2024", Col: 1},
						{Key: "year_2025", Col: 2},
						{Key: "total", Col: 3},
					},
					TotalKey:   "total",
					SkipLabels: []string{"2024", "2025", "total", "nan"},
				},
			},
			{
				ID:       SheetAdditional,
				Selector: SheetSelector{Position: 4},
			},
		},
	}
}

func placementLegacy() ReportShape {
	return ReportShape{
		ID: ShapePlacementLegacy,
		Sheets: []SheetShape{
			{
				ID:       SheetLegacy,
				Selector: SheetSelector{NameContains: []string{"consolidated", "data", "placement", "summary"}, FallbackFirst: true},
				Columns:  After(1),
				Metrics: containsRules(0,
					"W2", "C2C", "1099", "Referral",
					"New Placements", "Terminations", "Net Placements", "Net billables", "Total billables"),
			},
		},
	}
}

func unitSheet(id, name string, cells ...CellRule) SheetShape {
	return SheetShape{
		ID:       id,
		Selector: SheetSelector{Name: name},
		Columns:  DateHeaders(),
		Metrics: []MetricRule{
			{Key: "revenue", Label: "Revenue", LabelCol: 1, Mode: MatchContains},
			{Key: "gross_income", Label: "Gross Income", LabelCol: 0, Mode: MatchContains},
			{Key: "net_income", Label: "Net Income", LabelCol: 0, Mode: MatchContains},
		},
		Cells: cells,
	}
}

func pnlSheet(id, name string) SheetShape {
	return SheetShape{
		ID:            id,
		Selector:      SheetSelector{Name: name},
		Columns:       NamedHeaders(PnLHeaders...),
		DefaultLabels: DefaultMonthLabels,
		Metrics: []MetricRule{
			{Key: "total_income", Label: "Total Income", LabelCol: 3, Mode: MatchContains},
			{Key: "total_expense", Label: "Total Expense", LabelCol: 3, Mode: MatchContains},
			{Key: "net_income", Label: "Net Income", LabelCol: 0, Mode: MatchContains},
		},
	}
}

func financeWorkbook() ReportShape {
	return ReportShape{
		ID: ShapeFinanceWorkbook,
		Sheets: []SheetShape{
			{
				ID:       SheetFinanceSummary,
				Selector: SheetSelector{Name: "Summary of Business Units"},
				Columns:  DateHeaders(),
				Scans: []ScanRule{
					{LabelCol: 0, Keywords: []string{"revenue", "income", "expense", "profit"}},
				},
			},
			unitSheet(SheetDirectHire, "Direct Hire Net income",
				CellRule{Key: "total_revenue", Ref: "O3"},
				CellRule{Key: "gross_income", Ref: "O7"},
				CellRule{Key: "net_income", Ref: "O11"}),
			unitSheet(SheetServices, "Services Net income",
				CellRule{Key: "total_revenue", Ref: "O3"},
				CellRule{Key: "gross_income", Ref: "O7"},
				CellRule{Key: "net_income", Ref: "O12"}),
			unitSheet(SheetITStaffing, "IT Staffing Net Income",
				CellRule{Key: "total_revenue", Ref: "P7"},
				CellRule{Key: "gross_income", Ref: "P16"},
				CellRule{Key: "net_income", Ref: "P22"}),
			pnlSheet(SheetTechgenePnL, "Techgene PnL new"),
			pnlSheet(SheetVensitiPnL, "Vensiti PnL new"),
		},
	}
}
