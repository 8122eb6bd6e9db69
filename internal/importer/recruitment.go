package importer

import (
	"fmt"
	"math"
	"strings"
	"time"

	"findash/internal/model"
	"findash/internal/parser"
)

// RecruitmentData 写入招聘数据表的行
type RecruitmentData struct {
	Employment []model.EmploymentMonth `json:"employment"`
	Placement  []model.PlacementMonth  `json:"placement"`
	Margin     []model.MarginRecord    `json:"margin"`
}

// Empty 没有任何可写入的行
func (d *RecruitmentData) Empty() bool {
	return d == nil || (len(d.Employment) == 0 && len(d.Placement) == 0 && len(d.Margin) == 0)
}

// ExtractRecruitment 把招聘报表转换为按月数据行；毛利行只来自真实存在的毛利工作表
func (c *Coordinator) ExtractRecruitment(job Job, year int) (*RecruitmentData, error) {
	out := &RecruitmentData{}
	_, err := c.run(job, "recruitment_import", func(rc *runContext) (*model.Dashboard, error) {
		wb, err := c.loadWorkbook(rc, job.Path)
		if err != nil {
			return nil, err
		}
		shape, _ := parser.Shape(parser.ShapePlacementReport)
		res := parser.ExtractReport(wb, shape)
		rc.recordReport(res)
		*out = RecruitmentRows(res, year)

		d := model.NewDashboard("recruitment_import")
		d.Status["employment"] = len(out.Employment) > 0
		d.Status["placement"] = len(out.Placement) > 0
		d.Status["margin"] = len(out.Margin) > 0
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// RecruitmentRows 每个期间标签一行；月份形如 "Jan 2025"
func RecruitmentRows(res parser.ReportResult, year int) RecruitmentData {
	emp := res.Sheet(parser.SheetEmployment)
	pl := res.Sheet(parser.SheetPlacements)
	mg := res.Sheet(parser.SheetMargins)

	data := RecruitmentData{
		Employment: []model.EmploymentMonth{},
		Placement:  []model.PlacementMonth{},
		Margin:     []model.MarginRecord{},
	}

	billables, hasBillables := pl.Get("Total billables")
	if emp.HasData() || hasBillables {
		labels := emp.Labels
		if !emp.HasData() {
			labels = pl.Labels
		}
		w2 := addSeries(len(labels), emp.Values("TG W2"), emp.Values("VNST W2"))
		c2c := addSeries(len(labels), emp.Values("TG C2C"), emp.Values("VNST C2C"))
		e1099 := parser.FitWidth(emp.Values("TG 1099"), len(labels))
		referral := parser.FitWidth(emp.Values("TG Referral"), len(labels))
		total := parser.FitWidth(billables, len(labels))
		for i, label := range labels {
			data.Employment = append(data.Employment, model.EmploymentMonth{
				Month:          MonthName(label, year),
				W2:             count(w2[i]),
				C2C:            count(c2c[i]),
				Employment1099: count(e1099[i]),
				Referral:       count(referral[i]),
				TotalBillables: count(total[i]),
			})
		}
	}

	if pl.HasData() {
		n := len(pl.Labels)
		newP := parser.FitWidth(pl.Values("New Placements"), n)
		terms := parser.FitWidth(pl.Values("Terminations"), n)
		net := parser.FitWidth(pl.Values("Net Placements"), n)
		netBill := parser.FitWidth(pl.Values("Net billables"), n)
		for i, label := range pl.Labels {
			data.Placement = append(data.Placement, model.PlacementMonth{
				Month:         MonthName(label, year),
				NewPlacements: count(newP[i]),
				Terminations:  count(terms[i]),
				NetPlacements: int(math.Round(net[i])),
				NetBillables:  int(math.Round(netBill[i])),
			})
		}
	}

	if mg.HasData() {
		for _, r := range mg.Records {
			data.Margin = append(data.Margin, model.MarginRecord{
				CompanyType: r.Label,
				Year2024:    r.Values["year_2024"],
				Year2025:    r.Values["year_2025"],
				Total:       r.Values["total"],
			})
		}
	}
	return data
}

// MonthName 期间标签转为 "Jan 2025"；已含年份的标签按日期解析，无法识别时原样返回
func MonthName(label string, year int) string {
	label = strings.TrimSpace(label)
	if t, ok := parser.ParseDate(label); ok {
		return parser.MonthYearLabel(t)
	}
	if t, err := time.Parse("Jan", label); err == nil {
		return fmt.Sprintf("%s %d", t.Format("Jan"), year)
	}
	if t, err := time.Parse("January", label); err == nil {
		return fmt.Sprintf("%s %d", t.Format("Jan"), year)
	}
	return label
}

func addSeries(n int, series ...[]float64) []float64 {
	out := make([]float64, n)
	for _, s := range series {
		for i := 0; i < n && i < len(s); i++ {
			out[i] += s[i]
		}
	}
	return out
}

// count 人数不为负
func count(v float64) int {
	if v < 0 {
		return 0
	}
	return int(math.Round(v))
}
