package insight

import (
	"math"
	"sort"
)

// 下面是纯标准库实现的统计辅助函数。
// 所有函数对空切片返回 0，调用方不需要预判长度。

func mean(vals []float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	var sum float64
	for _, v := range vals {
		sum += v
	}
	return sum / float64(len(vals))
}

func stddev(vals []float64) float64 {
	if len(vals) < 2 {
		return 0
	}
	m := mean(vals)
	var sum float64
	for _, v := range vals {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(vals)-1))
}

// quantile 线性插值分位数，q 取值 [0,1]
func quantile(vals []float64, q float64) float64 {
	if len(vals) == 0 {
		return 0
	}
	sorted := make([]float64, len(vals))
	copy(sorted, vals)
	sort.Float64s(sorted)

	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}

	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

func median(vals []float64) float64 {
	return quantile(vals, 0.5)
}

// trendPercent 首尾百分比变化，首值为 0 时返回 0
func trendPercent(first, last float64) float64 {
	if first <= 0 {
		return 0
	}
	return (last - first) / first * 100
}

// finiteOrZero 保证输出不出现 NaN / Inf
func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
