package services

import (
	"math"
	"sort"

	"csv-chart-api/pkg/models"
)

// histogramBins はスタージェスの公式で区間数を決め、等幅のヒストグラムを作成します。
func histogramBins(values []float64) []models.Bin {
	n := len(values)
	if n == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if lo == hi {
		return []models.Bin{{Lower: lo, Upper: hi, Count: n}}
	}

	k := int(math.Ceil(math.Log2(float64(n)))) + 1
	bins := make([]models.Bin, k)
	for i := range bins {
		bins[i].Lower = lerp(lo, hi, float64(i)/float64(k))
		bins[i].Upper = lerp(lo, hi, float64(i+1)/float64(k))
	}
	bins[0].Lower = lo
	bins[k-1].Upper = hi

	// 範囲が float64 を超える場合は半分に縮めて比率を求める
	offset := func(v float64) float64 { return v - lo }
	span := hi - lo
	if math.IsInf(span, 0) {
		offset = func(v float64) float64 { return v/2 - lo/2 }
		span = hi/2 - lo/2
	}
	for _, v := range values {
		pos := offset(v) / span * float64(k)
		idx := k - 1
		if pos < float64(k) {
			idx = max(int(pos), 0)
		}
		bins[idx].Count++
	}
	return bins
}

// categoryCounts counts present values in order of first appearance.
func categoryCounts(values []interface{}) []models.Category {
	index := make(map[string]int)
	var out []models.Category
	for _, v := range values {
		if v == nil {
			continue
		}
		label := formatCell(v)
		if i, ok := index[label]; ok {
			out[i].Count++
			continue
		}
		index[label] = len(out)
		out = append(out, models.Category{Label: label, Count: 1})
	}
	return out
}

// boxStats は線形補間の四分位数と1.5×IQRのひげで箱ひげ図の統計量を求めます。
func boxStats(values []float64) *models.BoxStats {
	if len(values) == 0 {
		return nil
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	stats := &models.BoxStats{
		Count:  len(sorted),
		Min:    sorted[0],
		Q1:     quantile(sorted, 0.25),
		Median: quantile(sorted, 0.5),
		Q3:     quantile(sorted, 0.75),
		Max:    sorted[len(sorted)-1],
	}

	iqr := stats.Q3 - stats.Q1
	lowerFence := stats.Q1 - 1.5*iqr
	upperFence := stats.Q3 + 1.5*iqr
	stats.LowerWhisker = stats.Q1
	stats.UpperWhisker = stats.Q3
	for _, v := range sorted {
		if v < lowerFence || v > upperFence {
			stats.Outliers = append(stats.Outliers, v)
			continue
		}
		stats.LowerWhisker = math.Min(stats.LowerWhisker, v)
		stats.UpperWhisker = math.Max(stats.UpperWhisker, v)
	}
	return stats
}

// quantile expects sorted input.
func quantile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := p * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return lerp(sorted[lo], sorted[lo+1], frac)
}

// lerp interpolates between a and b without forming b-a, which can overflow.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}
