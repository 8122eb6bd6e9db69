package chart

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"findash/internal/model"
)

// Placeholder 无法格式化的取值
const Placeholder = "—"

var (
	thousand = decimal.NewFromInt(1_000)
	million  = decimal.NewFromInt(1_000_000)
	billion  = decimal.NewFromInt(1_000_000_000)
)

// FormatMoney 按绝对值分档缩写：B（两位小数）、M（两位）、k（一位）、否则取整
// 例如 1234567 -> "$1.23M"，-2500 -> "$-2.5k"。NaN / Inf 输出占位符。
func FormatMoney(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Placeholder
	}
	d := decimal.NewFromFloat(x)
	abs := d.Abs()
	switch {
	case abs.GreaterThanOrEqual(billion):
		return "$" + group(d.Div(billion).StringFixed(2)) + "B"
	case abs.GreaterThanOrEqual(million):
		return "$" + group(d.Div(million).StringFixed(2)) + "M"
	case abs.GreaterThanOrEqual(thousand):
		return "$" + group(d.Div(thousand).StringFixed(1)) + "k"
	}
	return "$" + group(d.StringFixed(0))
}

// FormatPercent 一位小数，如 "17.5%"
func FormatPercent(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Placeholder
	}
	return decimal.NewFromFloat(x).StringFixed(1) + "%"
}

// FormatCount 取整并加千分位
func FormatCount(x float64) string {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return Placeholder
	}
	return group(decimal.NewFromFloat(x).StringFixed(0))
}

// Format 按 KPI 格式输出
func Format(kind model.FormatKind, x float64) string {
	switch kind {
	case model.FormatPercentage:
		return FormatPercent(x)
	case model.FormatCount:
		return FormatCount(x)
	}
	return FormatMoney(x)
}

// group 给整数部分加千分位
func group(s string) string {
	sign := ""
	if strings.HasPrefix(s, "-") {
		sign, s = "-", s[1:]
	}
	intPart, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, frac = s[:i], s[i:]
	}
	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + frac
}

// ToKPI 构建可用的 KPI
func ToKPI(key, label string, value float64, kind model.FormatKind) model.KPI {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return MissingKPI(key, label, kind)
	}
	return model.KPI{
		Key:       key,
		Label:     label,
		Value:     value,
		Format:    kind,
		Display:   Format(kind, value),
		Available: true,
	}
}

// MissingKPI 源数据缺失的 KPI：数值为 0，显示占位符
func MissingKPI(key, label string, kind model.FormatKind) model.KPI {
	return model.KPI{Key: key, Label: label, Format: kind, Display: Placeholder}
}
