// Package chart 把月度序列投影为前端图表结构（Chart.js 约定：type / data / options）
// 纯函数，不修改数值。
package chart

import (
	"findash/internal/model"
	"findash/internal/parser"
)

// 图表类型
const (
	TypeLine = "line"
	TypeBar  = "bar"
)

// Chart 单个图表
type Chart struct {
	Type    string  `json:"type"`
	Data    Data    `json:"data"`
	Options Options `json:"options"`
}

// Data 横轴标签与数据集
type Data struct {
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

// Dataset 一条数据序列
// BackgroundColor / BorderColor 为单个颜色或逐点颜色数组。
type Dataset struct {
	Type            string    `json:"type,omitempty"`
	Label           string    `json:"label"`
	Data            []float64 `json:"data"`
	BackgroundColor any       `json:"backgroundColor,omitempty"`
	BorderColor     any       `json:"borderColor,omitempty"`
	BorderWidth     int       `json:"borderWidth,omitempty"`
	Fill            *bool     `json:"fill,omitempty"`
	Tension         float64   `json:"tension,omitempty"`
}

// Options 展示选项
type Options struct {
	Responsive          bool            `json:"responsive"`
	MaintainAspectRatio bool            `json:"maintainAspectRatio"`
	Plugins             Plugins         `json:"plugins"`
	Scales              map[string]Axis `json:"scales,omitempty"`
}

type Plugins struct {
	Legend Legend `json:"legend"`
	Title  *Title `json:"title,omitempty"`
}

type Legend struct {
	Position string `json:"position"`
}

type Title struct {
	Display bool   `json:"display"`
	Text    string `json:"text"`
}

type Axis struct {
	Title       *Title `json:"title,omitempty"`
	BeginAtZero bool   `json:"beginAtZero,omitempty"`
}

// Series 命名序列
type Series struct {
	Label  string
	Values []float64
	Color  string
}

// New 创建带默认选项的图表；labels 为 nil 时输出空数组
func New(typ, title string, labels []string) *Chart {
	if labels == nil {
		labels = []string{}
	}
	c := &Chart{
		Type: typ,
		Data: Data{Labels: labels, Datasets: []Dataset{}},
		Options: Options{
			Responsive: true,
			Plugins:    Plugins{Legend: Legend{Position: "bottom"}},
			Scales: map[string]Axis{
				"x": {Title: &Title{Display: true, Text: "Month"}},
			},
		},
	}
	if title != "" {
		c.Options.Plugins.Title = &Title{Display: true, Text: title}
	}
	return c
}

// Empty 空图表（仍是合法结构）
func Empty(typ string) *Chart {
	return New(typ, "", nil)
}

// Add 追加数据集；nil 数据输出为空数组
func (c *Chart) Add(ds Dataset) *Chart {
	if ds.Data == nil {
		ds.Data = []float64{}
	}
	c.Data.Datasets = append(c.Data.Datasets, ds)
	return c
}

// AxisX 设置横轴标题
func (c *Chart) AxisX(title string) *Chart {
	c.Options.Scales["x"] = Axis{Title: &Title{Display: true, Text: title}}
	return c
}

// AxisY 设置纵轴标题
func (c *Chart) AxisY(title string, beginAtZero bool) *Chart {
	c.Options.Scales["y"] = Axis{Title: &Title{Display: true, Text: title}, BeginAtZero: beginAtZero}
	return c
}

// IsEmpty 没有任何数据集
func (c *Chart) IsEmpty() bool {
	return c == nil || len(c.Data.Datasets) == 0
}

func boolPtr(b bool) *bool { return &b }

// Line 折线数据集
func Line(s Series, fill bool) Dataset {
	ds := Dataset{
		Label:       s.Label,
		Data:        s.Values,
		BorderColor: s.Color,
		BorderWidth: 2,
		Fill:        boolPtr(fill),
		Tension:     0.1,
	}
	if s.Color != "" {
		ds.BackgroundColor = s.Color + "33"
	}
	return ds
}

// Bar 柱状数据集
func Bar(s Series) Dataset {
	return Dataset{
		Label:           s.Label,
		Data:            s.Values,
		BackgroundColor: s.Color,
		BorderColor:     s.Color,
		BorderWidth:     1,
	}
}

// FromSeries 由命名序列构建图表
func FromSeries(typ, title string, labels []string, series ...Series) *Chart {
	c := New(typ, title, labels)
	for _, s := range series {
		if typ == TypeBar {
			c.Add(Bar(s))
		} else {
			c.Add(Line(s, false))
		}
	}
	return c
}

// Field 从 MonthlyFrame 取值的字段描述
type Field struct {
	Key   string
	Label string
	Color string
}

// MonthLabels 月度横轴标签，如 "Jan 2025"
func MonthLabels(f *model.MonthlyFrame) []string {
	if f == nil {
		return []string{}
	}
	out := make([]string, len(f.Months))
	for i, m := range f.Months {
		out[i] = parser.MonthYearLabel(m)
	}
	return out
}

// FromFrame 按字段顺序投影 MonthlyFrame；帧中不存在的字段跳过
func FromFrame(typ, title string, f *model.MonthlyFrame, fields ...Field) *Chart {
	if f.Empty() {
		return Empty(typ)
	}
	var series []Series
	for _, fd := range fields {
		if !f.Has(fd.Key) {
			continue
		}
		series = append(series, Series{Label: fd.Label, Values: f.Values(fd.Key), Color: fd.Color})
	}
	return FromSeries(typ, title, MonthLabels(f), series...)
}
