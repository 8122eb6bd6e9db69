package excel

import (
	"strings"

	"findash/internal/model"
)

// PickSheet 按关键词优先级选择工作表；都不命中时取第一个
func PickSheet(names []string, hints []string) string {
	if len(names) == 0 {
		return ""
	}
	if name, ok := (&model.Workbook{SheetNames: names}).FindSheet(hints...); ok {
		return name
	}
	return names[0]
}

// SheetRole 工作表在已知报表中的角色
type SheetRole string

const (
	RoleUnknown          SheetRole = "unknown"
	RoleEmploymentTypes  SheetRole = "employment_types"
	RolePlacementMetrics SheetRole = "placement_metrics"
	RoleGrossMargin      SheetRole = "gross_margin"
	RoleLegacyPlacement  SheetRole = "legacy_placement"
	RoleFinanceSummary   SheetRole = "finance_summary"
	RoleUnitNetIncome    SheetRole = "unit_net_income"
	RolePnL              SheetRole = "pnl"
)

// WorkbookKind 工作簿整体类型（与 parser.Shapes 的 key 一致）
type WorkbookKind string

const (
	KindFlexible        WorkbookKind = "flexible"
	KindPlacementReport WorkbookKind = "placement_report"
	KindPlacementLegacy WorkbookKind = "placement_legacy"
	KindFinanceWorkbook WorkbookKind = "finance_workbook"
)

// SheetRecognition 单个工作表的识别结果
type SheetRecognition struct {
	SheetName     string    `json:"sheetName"`
	Role          SheetRole `json:"role"`
	Score         float64   `json:"score"`
	MissingLabels []string  `json:"missingLabels"`
}

type labelRequirement struct {
	Key   string
	Match func(label string) bool
}

type sheetRule struct {
	Role         SheetRole
	Requirements []labelRequirement
	NameBoost    func(sheetName string) float64
}

// Recognizer 按行标签词汇与表名识别工作表角色
type Recognizer struct {
	rules     []*sheetRule
	labelCols int
}

// NewRecognizer 创建识别器
func NewRecognizer() *Recognizer {
	return &Recognizer{rules: defaultSheetRules(), labelCols: 4}
}

// RecognizeWorkbook 识别每个工作表的角色
func (r *Recognizer) RecognizeWorkbook(wb *model.Workbook) map[string]SheetRecognition {
	results := make(map[string]SheetRecognition)
	if wb == nil {
		return results
	}

	for _, name := range wb.SheetNames {
		t, _ := wb.Sheet(name)
		labels := r.labels(t)
		lowerName := strings.ToLower(name)

		best := SheetRecognition{SheetName: name, Role: RoleUnknown, MissingLabels: []string{}}
		for _, rule := range r.rules {
			score, missing := scoreRule(rule, lowerName, labels)
			if score > best.Score {
				best.Role = rule.Role
				best.Score = score
				best.MissingLabels = missing
			}
		}
		if best.Score < 0.5 {
			best.Role = RoleUnknown
		}
		results[name] = best
	}
	return results
}

// DetectKind 工作簿整体类型：财务 > 招聘三表 > 旧版单表 > 灵活
func (r *Recognizer) DetectKind(wb *model.Workbook) WorkbookKind {
	roles := map[SheetRole]bool{}
	for _, rec := range r.RecognizeWorkbook(wb) {
		roles[rec.Role] = true
	}
	switch {
	case roles[RoleFinanceSummary] || roles[RolePnL] || roles[RoleUnitNetIncome]:
		return KindFinanceWorkbook
	case roles[RoleEmploymentTypes] || roles[RolePlacementMetrics]:
		return KindPlacementReport
	case roles[RoleLegacyPlacement]:
		return KindPlacementLegacy
	}
	return KindFlexible
}

// labels 前几列中出现的文本（小写、去空白）
func (r *Recognizer) labels(t *model.Table) []string {
	if t == nil {
		return []string{}
	}
	seen := map[string]struct{}{}
	out := []string{}
	add := func(c model.Cell) {
		if c.Kind != model.CellString {
			return
		}
		s := strings.ToLower(strings.TrimSpace(c.Str))
		if s == "" {
			return
		}
		if _, ok := seen[s]; ok {
			return
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	for c := 0; c < r.labelCols; c++ {
		add(t.HeaderCell(c))
		for row := 0; row < t.Len(); row++ {
			add(t.Cell(row, c))
		}
	}
	return out
}

func scoreRule(rule *sheetRule, sheetName string, labels []string) (float64, []string) {
	hit := 0
	missing := make([]string, 0, len(rule.Requirements))
	for _, req := range rule.Requirements {
		ok := false
		for _, l := range labels {
			if req.Match(l) {
				ok = true
				break
			}
		}
		if ok {
			hit++
		} else {
			missing = append(missing, req.Key)
		}
	}

	score := 0.0
	if len(rule.Requirements) > 0 {
		score = float64(hit) / float64(len(rule.Requirements))
	}
	if rule.NameBoost != nil {
		score += rule.NameBoost(sheetName)
	}
	if score > 1.0 {
		score = 1.0
	}
	return score, missing
}

func defaultSheetRules() []*sheetRule {
	reqExact := func(key string) labelRequirement {
		return labelRequirement{Key: key, Match: func(l string) bool { return l == key }}
	}
	reqContains := func(key string) labelRequirement {
		return labelRequirement{Key: key, Match: func(l string) bool { return strings.Contains(l, key) }}
	}
	boostByKeyword := func(v float64, keywords ...string) func(string) float64 {
		return func(sheetName string) float64 {
			for _, kw := range keywords {
				if strings.Contains(sheetName, kw) {
					return v
				}
			}
			return 0
		}
	}

	return []*sheetRule{
		{
			Role: RoleEmploymentTypes,
			Requirements: []labelRequirement{
				reqExact("tg w2"), reqExact("tg c2c"), reqExact("tg 1099"), reqExact("tg referral"),
			},
		},
		{
			Role: RolePlacementMetrics,
			Requirements: []labelRequirement{
				reqExact("new placements"), reqExact("terminations"), reqExact("net placements"), reqExact("total billables"),
			},
		},
		{
			Role:      RoleGrossMargin,
			NameBoost: boostByKeyword(1.0, "gross", "margin"),
		},
		{
			Role: RoleLegacyPlacement,
			Requirements: []labelRequirement{
				reqContains("w2"), reqContains("c2c"), reqContains("1099"), reqContains("referral"),
			},
			NameBoost: boostByKeyword(0.2, "placement"),
		},
		{
			Role:      RoleFinanceSummary,
			NameBoost: boostByKeyword(1.0, "summary of business units"),
		},
		{
			Role: RoleUnitNetIncome,
			Requirements: []labelRequirement{
				reqContains("revenue"), reqContains("gross income"), reqContains("net income"),
			},
			NameBoost: boostByKeyword(0.2, "net income"),
		},
		{
			Role: RolePnL,
			Requirements: []labelRequirement{
				reqContains("total income"), reqContains("total expense"), reqContains("net income"),
			},
			NameBoost: boostByKeyword(0.5, "pnl", "p&l"),
		},
	}
}
