package parser

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"findash/internal/model"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// NormalizeLabel 去除首尾空白并压缩内部空白
func NormalizeLabel(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\u00a0", " ")
	return whitespaceRe.ReplaceAllString(s, " ")
}

// CellLabel 单元格作为行标签时的文本
func CellLabel(c model.Cell) string {
	if c.Kind == model.CellDate {
		return MonthYearLabel(c.Time)
	}
	return NormalizeLabel(c.String())
}

// ContainsAny 忽略大小写的包含判断
func ContainsAny(text string, keywords []string) bool {
	lower := strings.ToLower(text)
	for _, kw := range keywords {
		if kw != "" && strings.Contains(lower, strings.ToLower(kw)) {
			return true
		}
	}
	return false
}

// ParseNumber 宽松解析数字文本：千分位、货币符号、百分号、会计负数
func ParseNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	s = strings.NewReplacer(",", "", "$", "", "%", "", " ", "", "\u00a0", "").Replace(s)
	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if neg {
		v = -v
	}
	return v, true
}

// ToFloat 数值强制转换；无法转换的单元格按 0 处理
// 调用方无法区分“缺失”与“真实为 0”。
func ToFloat(c model.Cell) float64 {
	v, _ := NumericValue(c)
	return v
}

// NumericValue 同 ToFloat，另外返回是否为有效数值
func NumericValue(c model.Cell) (float64, bool) {
	switch c.Kind {
	case model.CellNumber:
		if math.IsNaN(c.Num) || math.IsInf(c.Num, 0) {
			return 0, false
		}
		return c.Num, true
	case model.CellString:
		return ParseNumber(c.Str)
	}
	return 0, false
}

// Sum 序列求和
func Sum(vals []float64) float64 {
	total := 0.0
	for _, v := range vals {
		total += v
	}
	return total
}

// FitWidth 截断或以 0 补齐到 n 个值
func FitWidth(vals []float64, n int) []float64 {
	out := make([]float64, n)
	copy(out, vals)
	return out
}
