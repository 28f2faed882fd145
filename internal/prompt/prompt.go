package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/searchlens/searchlens/internal/insight"
	"github.com/searchlens/searchlens/internal/model"
)

// 提示词里每类明细最多列出的条数，控制 token 开销
const promptListLimit = 3

// Overview 原始数据概况，和统计洞察一起注入分析提示词
type Overview struct {
	StartDate    string
	EndDate      string
	DistinctDays int
	RowCount     int
	HasQuery     bool
	HasPage      bool
	HasCountry   bool
	HasDevice    bool
}

// Summarize 从记录集合计算数据概况
func Summarize(records []model.Record) Overview {
	var o Overview
	o.RowCount = len(records)
	if len(records) == 0 {
		return o
	}

	days := make(map[string]struct{})
	minDate, maxDate := records[0].Date, records[0].Date
	for _, r := range records {
		days[r.Date.Format(time.DateOnly)] = struct{}{}
		if r.Date.Before(minDate) {
			minDate = r.Date
		}
		if r.Date.After(maxDate) {
			maxDate = r.Date
		}
		o.HasQuery = o.HasQuery || r.Query != ""
		o.HasPage = o.HasPage || r.Page != ""
		o.HasCountry = o.HasCountry || r.Country != ""
		o.HasDevice = o.HasDevice || r.Device != ""
	}
	o.StartDate = minDate.Format(time.DateOnly)
	o.EndDate = maxDate.Format(time.DateOnly)
	o.DistinctDays = len(days)
	return o
}

func (o Overview) dimensions() string {
	dims := []string{"Clicks", "Impressions", "CTR", "Position"}
	if o.HasQuery {
		dims = append(dims, "Queries")
	}
	if o.HasPage {
		dims = append(dims, "Pages")
	}
	if o.HasDevice {
		dims = append(dims, "Devices")
	}
	if o.HasCountry {
		dims = append(dims, "Countries")
	}
	return strings.Join(dims, ", ")
}

// BuildAnalysisPrompt 组装综合分析提示词。
// 五个固定段落的标题和条数约束是下游解析器依赖的契约，不能改措辞。
func BuildAnalysisPrompt(b insight.Bundle, o Overview, siteURL string) string {
	var sb strings.Builder

	sb.WriteString("# COMPREHENSIVE SEO ANALYSIS REQUEST\n\n")
	fmt.Fprintf(&sb, "## WEBSITE: %s\n\n", siteURL)

	sb.WriteString("## DATA OVERVIEW:\n")
	fmt.Fprintf(&sb, "- Analysis Period: %s to %s (%d days)\n", o.StartDate, o.EndDate, o.DistinctDays)
	fmt.Fprintf(&sb, "- Total Data Points: %d\n", o.RowCount)
	fmt.Fprintf(&sb, "- Key Metrics Tracked: %s\n\n", o.dimensions())

	sb.WriteString("## PERFORMANCE METRICS:\n")
	fmt.Fprintf(&sb, "- Total Clicks: %d\n", b.Performance.TotalClicks)
	fmt.Fprintf(&sb, "- Total Impressions: %d\n", b.Performance.TotalImpressions)
	fmt.Fprintf(&sb, "- Average CTR: %.2f%% (%s)\n", b.Performance.AvgCTR, b.Performance.CTRQuality)
	fmt.Fprintf(&sb, "- Average Position: %.2f (%s)\n\n", b.Performance.AvgPosition, b.Performance.PositionQuality)

	sb.WriteString("## TREND ANALYSIS:\n")
	sb.WriteString(formatTrend(b.Trend))

	sb.WriteString("\n## CONTENT PERFORMANCE:\n")
	sb.WriteString(formatContent(b.Content))

	sb.WriteString("\n## TECHNICAL INSIGHTS:\n")
	sb.WriteString(formatTechnical(b.Technical))

	sb.WriteString("\n## IDENTIFIED OPPORTUNITIES:\n")
	sb.WriteString(formatOpportunities(b.Opportunities))

	sb.WriteString("\n## COMPETITIVE POSITIONING:\n")
	sb.WriteString(formatCompetitive(b.Competitive))

	sb.WriteString(analysisRequest)
	return sb.String()
}

// 分析请求正文。段落标题（EXECUTIVE SUMMARY 等）与解析器的识别逻辑一一对应。
const analysisRequest = `
## ANALYSIS REQUEST:

As an expert SEO strategist with 15+ years of experience, please provide an EXTREMELY DETAILED, data-driven analysis that includes:

### EXECUTIVE SUMMARY:
[Provide a comprehensive 3-4 paragraph executive summary covering overall performance with specific data references, key strengths, critical challenges, and strategic outlook]

### PERFORMANCE TRENDS (7-10 specific trends):
[Identify both macro and micro trends with data support: traffic growth or decline patterns, seasonality, CTR evolution, position movements, query and page shifts, device and geography variations]

### STRATEGIC OPPORTUNITIES (8-12 detailed opportunities):
[Focus on actionable opportunities: high-potential low-competition keywords, content gaps, technical optimization areas, user experience improvements, international expansion, mobile and desktop optimization]

### CRITICAL ISSUES (6-8 prioritized issues):
[Identify with root cause analysis: technical SEO problems, content quality issues, user experience barriers, competitive disadvantages, algorithm update vulnerabilities]

### COMPREHENSIVE RECOMMENDATIONS (10-15 specific actions):
[Organize by priority and timeline: immediate technical fixes, content strategy enhancements, long-term strategic initiatives, measurement improvements]

Please ensure your analysis is deeply data-driven with specific metric references, actionable, prioritized by impact, and written for an experienced SEO professional audience.
`

func formatTrend(t insight.TrendMetrics) string {
	if !t.Valid {
		return "Insufficient data for trend analysis\n"
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "- Click Trend: %+.1f%%\n", t.ClickGrowth)
	fmt.Fprintf(&sb, "- Impression Trend: %+.1f%%\n", t.ImpressionGrowth)
	fmt.Fprintf(&sb, "- CTR Trend: %+.2f%%\n", t.CTRTrend)
	fmt.Fprintf(&sb, "- Position Trend: %+.2f%%\n", t.PositionTrend)
	fmt.Fprintf(&sb, "- Volatility: %.2f\n", t.Volatility)
	return sb.String()
}

func topKeys(stats []insight.GroupStats, limit int) []string {
	keys := make([]string, 0, limit)
	for _, s := range stats {
		if len(keys) >= limit {
			break
		}
		keys = append(keys, s.Key)
	}
	return keys
}

func formatContent(c insight.ContentInsights) string {
	var sb strings.Builder
	if len(c.Queries.TopByClicks) > 0 {
		sb.WriteString("QUERY ANALYSIS:\n")
		fmt.Fprintf(&sb, "- Top queries by clicks: %s\n", strings.Join(topKeys(c.Queries.TopByClicks, promptListLimit), ", "))
	}
	if len(c.Pages.TopPerformers) > 0 {
		sb.WriteString("PAGE ANALYSIS:\n")
		fmt.Fprintf(&sb, "- Top pages: %s\n", strings.Join(topKeys(c.Pages.TopPerformers, promptListLimit), ", "))
	}
	if sb.Len() == 0 {
		return "No content data available for analysis\n"
	}
	return sb.String()
}

func formatTechnical(t insight.TechnicalInsights) string {
	var sb strings.Builder
	if len(t.Devices) > 0 {
		sb.WriteString("DEVICE PERFORMANCE:\n")
		for i, d := range t.Devices {
			if i >= promptListLimit {
				break
			}
			fmt.Fprintf(&sb, "- %s: CTR %.2f%%, Position %.1f\n", d.Key, d.AvgCTR, d.AvgPosition)
		}
	}
	if len(t.Countries) > 0 {
		sb.WriteString("GEOGRAPHIC PERFORMANCE:\n")
		for i, c := range t.Countries {
			if i >= promptListLimit {
				break
			}
			fmt.Fprintf(&sb, "- %s: %d clicks, CTR %.2f%%\n", c.Key, c.Clicks, c.AvgCTR)
		}
	}
	if sb.Len() == 0 {
		return "No technical data available for analysis\n"
	}
	return sb.String()
}

func formatOpportunities(o insight.OpportunityAreas) string {
	var sb strings.Builder
	if o.CTROptimization.Count > 0 {
		fmt.Fprintf(&sb, "- CTR Optimization: %d high-impression queries with below-average CTR\n", o.CTROptimization.Count)
	}
	if o.PositionImprovement.Count > 0 {
		fmt.Fprintf(&sb, "- Position Boost: %d queries in positions 8-20 with first-page potential\n", o.PositionImprovement.Count)
	}
	if o.HighPotentialQuery.Count > 0 {
		fmt.Fprintf(&sb, "- Volume Expansion: %d queries with excellent CTR but low volume\n", o.HighPotentialQuery.Count)
	}
	if sb.Len() == 0 {
		return "No specific opportunity areas identified\n"
	}
	return sb.String()
}

func formatCompetitive(c insight.CompetitivePosition) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "- Top 3 Position Share: %.1f%% of queries\n", c.Top3Share)
	fmt.Fprintf(&sb, "- First Page Share: %.1f%% of queries\n", c.FirstPageShare)
	fmt.Fprintf(&sb, "- Visibility Score: %.1fK impression reach\n", c.VisibilityScore)
	fmt.Fprintf(&sb, "- Click Market Share: %.1fK clicks captured\n", c.ClickMarketShare)
	return sb.String()
}
