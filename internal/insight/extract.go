package insight

import (
	"sort"
	"time"

	"github.com/searchlens/searchlens/internal/model"
)

// Extract 从一批 Record 计算统计洞察。纯函数，永不失败：
// 空输入返回全零 Bundle，缺失维度的分析直接留空。
func Extract(records []model.Record) Bundle {
	var b Bundle
	if len(records) == 0 {
		return b
	}

	b.Performance = extractPerformance(records)
	b.Trend = extractTrend(records)
	b.Content.Queries = extractQueries(records)
	b.Content.Pages = extractPages(records)
	b.Technical = extractTechnical(records)
	b.Opportunities = extractOpportunities(records, b.Performance.AvgCTR)
	b.Competitive = extractCompetitive(records)
	return b
}

func extractPerformance(records []model.Record) PerformanceMetrics {
	var m PerformanceMetrics
	ctrs := make([]float64, 0, len(records))
	positions := make([]float64, 0, len(records))
	for _, r := range records {
		m.TotalClicks += r.Clicks
		m.TotalImpressions += r.Impressions
		ctrs = append(ctrs, r.CTR)
		positions = append(positions, r.Position)
	}
	m.AvgCTR = finiteOrZero(mean(ctrs))
	m.AvgPosition = finiteOrZero(mean(positions))

	switch {
	case m.AvgCTR > ctrExcellent:
		m.CTRQuality = "Excellent"
	case m.AvgCTR > ctrGood:
		m.CTRQuality = "Good"
	default:
		m.CTRQuality = "Needs Improvement"
	}
	switch {
	case m.AvgPosition < posExcellent:
		m.PositionQuality = "Excellent"
	case m.AvgPosition < posGood:
		m.PositionQuality = "Good"
	default:
		m.PositionQuality = "Needs Improvement"
	}
	return m
}

// dailyBucket 单日汇总
type dailyBucket struct {
	day         string
	clicks      float64
	impressions float64
	ctrs        []float64
	positions   []float64
}

func extractTrend(records []model.Record) TrendMetrics {
	var t TrendMetrics

	buckets := make(map[string]*dailyBucket)
	for _, r := range records {
		day := r.Date.Format(time.DateOnly)
		db, ok := buckets[day]
		if !ok {
			db = &dailyBucket{day: day}
			buckets[day] = db
		}
		db.clicks += float64(r.Clicks)
		db.impressions += float64(r.Impressions)
		db.ctrs = append(db.ctrs, r.CTR)
		db.positions = append(db.positions, r.Position)
	}

	// 趋势至少需要两个日期分桶
	if len(buckets) < 2 {
		return t
	}

	ordered := make([]*dailyBucket, 0, len(buckets))
	for _, db := range buckets {
		ordered = append(ordered, db)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].day < ordered[j].day })

	first, last := ordered[0], ordered[len(ordered)-1]
	t.Valid = true
	t.ClickGrowth = finiteOrZero(trendPercent(first.clicks, last.clicks))
	t.ImpressionGrowth = finiteOrZero(trendPercent(first.impressions, last.impressions))
	t.CTRTrend = finiteOrZero(trendPercent(mean(first.ctrs), mean(last.ctrs)))
	t.PositionTrend = finiteOrZero(trendPercent(mean(first.positions), mean(last.positions)))

	daily := make([]float64, 0, len(ordered))
	for _, db := range ordered {
		daily = append(daily, db.clicks)
	}
	if m := mean(daily); m > 0 {
		t.Volatility = finiteOrZero(stddev(daily) / m)
	}
	return t
}

// groupBy 按 key 聚合记录，点击/展示求和，CTR/排名取均值
func groupBy(records []model.Record, key func(model.Record) string) []GroupStats {
	type acc struct {
		clicks      int64
		impressions int64
		ctrs        []float64
		positions   []float64
	}
	groups := make(map[string]*acc)
	for _, r := range records {
		k := key(r)
		if k == "" {
			continue
		}
		a, ok := groups[k]
		if !ok {
			a = &acc{}
			groups[k] = a
		}
		a.clicks += r.Clicks
		a.impressions += r.Impressions
		a.ctrs = append(a.ctrs, r.CTR)
		a.positions = append(a.positions, r.Position)
	}

	stats := make([]GroupStats, 0, len(groups))
	for k, a := range groups {
		stats = append(stats, GroupStats{
			Key:         k,
			Clicks:      a.clicks,
			Impressions: a.impressions,
			AvgCTR:      finiteOrZero(mean(a.ctrs)),
			AvgPosition: finiteOrZero(mean(a.positions)),
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Clicks != stats[j].Clicks {
			return stats[i].Clicks > stats[j].Clicks
		}
		return stats[i].Key < stats[j].Key
	})
	return stats
}

func recordStats(r model.Record, key string) GroupStats {
	return GroupStats{
		Key:         key,
		Clicks:      r.Clicks,
		Impressions: r.Impressions,
		AvgCTR:      r.CTR,
		AvgPosition: r.Position,
	}
}

func filterDim(records []model.Record, dim func(model.Record) string) []model.Record {
	out := make([]model.Record, 0, len(records))
	for _, r := range records {
		if dim(r) != "" {
			out = append(out, r)
		}
	}
	return out
}

func impressionsOf(records []model.Record) []float64 {
	vals := make([]float64, 0, len(records))
	for _, r := range records {
		vals = append(vals, float64(r.Impressions))
	}
	return vals
}

func extractQueries(records []model.Record) QueryInsights {
	var q QueryInsights
	rows := filterDim(records, func(r model.Record) string { return r.Query })
	if len(rows) == 0 {
		return q
	}

	q.TopByClicks = groupBy(rows, func(r model.Record) string { return r.Query })
	if len(q.TopByClicks) > topQueryLimit {
		q.TopByClicks = q.TopByClicks[:topQueryLimit]
	}

	impr := impressionsOf(rows)
	imprMedian := median(impr)
	imprHigh := quantile(impr, highPercentile)

	ctrs := make([]float64, 0, len(rows))
	for _, r := range rows {
		ctrs = append(ctrs, r.CTR)
	}
	ctrLow := quantile(ctrs, lowPercentile)

	// 展示量过中位数的词里挑 CTR 最高的几个
	var aboveMedian []GroupStats
	for _, r := range rows {
		if float64(r.Impressions) > imprMedian {
			aboveMedian = append(aboveMedian, recordStats(r, r.Query))
		}
	}
	sort.Slice(aboveMedian, func(i, j int) bool { return aboveMedian[i].AvgCTR > aboveMedian[j].AvgCTR })
	if len(aboveMedian) > sliceLimit {
		aboveMedian = aboveMedian[:sliceLimit]
	}
	q.TopByCTR = aboveMedian

	// 高展示低 CTR：流量大但点不动的词
	for _, r := range rows {
		if float64(r.Impressions) > imprHigh && r.CTR < ctrLow {
			q.HighImpressionLowCTR = append(q.HighImpressionLowCTR, recordStats(r, r.Query))
			if len(q.HighImpressionLowCTR) >= sliceLimit {
				break
			}
		}
	}
	return q
}

func extractPages(records []model.Record) PageInsights {
	var p PageInsights
	rows := filterDim(records, func(r model.Record) string { return r.Page })
	if len(rows) == 0 {
		return p
	}

	p.TopPerformers = groupBy(rows, func(r model.Record) string { return r.Page })
	if len(p.TopPerformers) > topPageLimit {
		p.TopPerformers = p.TopPerformers[:topPageLimit]
	}

	imprHigh := quantile(impressionsOf(rows), highPercentile)
	for _, r := range rows {
		if float64(r.Impressions) > imprHigh && r.Position > 10 {
			p.HighTrafficLowPosition = append(p.HighTrafficLowPosition, recordStats(r, r.Page))
			if len(p.HighTrafficLowPosition) >= sliceLimit {
				break
			}
		}
	}
	return p
}

func extractTechnical(records []model.Record) TechnicalInsights {
	var t TechnicalInsights
	if rows := filterDim(records, func(r model.Record) string { return r.Device }); len(rows) > 0 {
		t.Devices = groupBy(rows, func(r model.Record) string { return r.Device })
	}
	if rows := filterDim(records, func(r model.Record) string { return r.Country }); len(rows) > 0 {
		t.Countries = groupBy(rows, func(r model.Record) string { return r.Country })
		if len(t.Countries) > topCountryLimit {
			t.Countries = t.Countries[:topCountryLimit]
		}
	}
	return t
}

func extractOpportunities(records []model.Record, avgCTR float64) OpportunityAreas {
	var o OpportunityAreas

	impr := impressionsOf(records)
	imprMedian := median(impr)
	imprLow := quantile(impr, lowPercentile)

	var lagCTRs, bandPositions, standCTRs []float64
	for _, r := range records {
		if float64(r.Impressions) > imprMedian && r.CTR < avgCTR*ctrLagFactor {
			lagCTRs = append(lagCTRs, r.CTR)
		}
		if r.Position >= positionBandLow && r.Position <= positionBandHigh {
			bandPositions = append(bandPositions, r.Position)
		}
		if r.CTR > avgCTR*ctrStandFactor && float64(r.Impressions) < imprLow {
			standCTRs = append(standCTRs, r.CTR)
		}
	}

	o.CTROptimization.Count = len(lagCTRs)
	if len(lagCTRs) > 0 {
		o.CTROptimization.AvgCTR = finiteOrZero(mean(lagCTRs))
		o.CTROptimization.PotentialGain = finiteOrZero(avgCTR - o.CTROptimization.AvgCTR)
	}

	o.PositionImprovement.Count = len(bandPositions)
	if len(bandPositions) > 0 {
		o.PositionImprovement.AvgPosition = finiteOrZero(mean(bandPositions))
	}

	o.HighPotentialQuery.Count = len(standCTRs)
	if len(standCTRs) > 0 {
		o.HighPotentialQuery.AvgCTR = finiteOrZero(mean(standCTRs))
	}
	return o
}

func extractCompetitive(records []model.Record) CompetitivePosition {
	var c CompetitivePosition
	total := float64(len(records))
	if total == 0 {
		return c
	}

	var top3, firstPage float64
	var impressions, clicks int64
	for _, r := range records {
		if r.Position <= 3 {
			top3++
		}
		if r.Position <= 10 {
			firstPage++
		}
		impressions += r.Impressions
		clicks += r.Clicks
	}
	c.Top3Share = finiteOrZero(top3 / total * 100)
	c.FirstPageShare = finiteOrZero(firstPage / total * 100)
	c.VisibilityScore = float64(impressions) / 1000
	c.ClickMarketShare = float64(clicks) / 1000
	return c
}
