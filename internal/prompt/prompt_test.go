package prompt

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/searchlens/internal/insight"
	"github.com/searchlens/searchlens/internal/model"
)

func day(offset int) time.Time {
	return time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestSummarize(t *testing.T) {
	records := []model.Record{
		{Date: day(2), Clicks: 10, Query: "a"},
		{Date: day(0), Clicks: 5, Device: "MOBILE"},
		{Date: day(2), Clicks: 7},
	}
	o := Summarize(records)
	assert.Equal(t, "2025-06-01", o.StartDate)
	assert.Equal(t, "2025-06-03", o.EndDate)
	assert.Equal(t, 2, o.DistinctDays)
	assert.Equal(t, 3, o.RowCount)
	assert.True(t, o.HasQuery)
	assert.True(t, o.HasDevice)
	assert.False(t, o.HasPage)
	assert.False(t, o.HasCountry)
}

func TestSummarizeEmpty(t *testing.T) {
	o := Summarize(nil)
	assert.Zero(t, o.RowCount)
	assert.Empty(t, o.StartDate)
	assert.Equal(t, "Clicks, Impressions, CTR, Position", o.dimensions())
}

func TestBuildAnalysisPromptSections(t *testing.T) {
	var b insight.Bundle
	b.Performance.TotalClicks = 1234
	b.Performance.AvgCTR = 3.21
	b.Performance.CTRQuality = "Good"
	b.Performance.PositionQuality = "Good"

	p := BuildAnalysisPrompt(b, Summarize(nil), "https://example.com")

	assert.Contains(t, p, "## WEBSITE: https://example.com")
	// 五个结构化段落请求是解析器依赖的契约
	for _, header := range []string{
		"EXECUTIVE SUMMARY",
		"PERFORMANCE TRENDS",
		"STRATEGIC OPPORTUNITIES",
		"CRITICAL ISSUES",
		"COMPREHENSIVE RECOMMENDATIONS",
	} {
		assert.Contains(t, p, header)
	}
	assert.Contains(t, p, "Total Clicks: 1234")
	assert.Contains(t, p, "Average CTR: 3.21% (Good)")
	assert.Contains(t, p, "Insufficient data for trend analysis")
}

func TestBuildAnalysisPromptCapsLists(t *testing.T) {
	var b insight.Bundle
	for _, q := range []string{"one", "two", "three", "four", "five"} {
		b.Content.Queries.TopByClicks = append(b.Content.Queries.TopByClicks, insight.GroupStats{Key: q})
	}
	p := BuildAnalysisPrompt(b, Summarize(nil), "site")

	require.Contains(t, p, "Top queries by clicks: one, two, three")
	assert.NotContains(t, p, "four")
}

func TestBuildSuggestionsPrompt(t *testing.T) {
	var b insight.Bundle
	b.Performance.AvgCTR = 4.0
	b.Opportunities.CTROptimization = insight.OpportunitySummary{Count: 7, AvgCTR: 1.2}
	b.Technical.Devices = []insight.GroupStats{
		{Key: "DESKTOP", AvgCTR: 4.5},
		{Key: "MOBILE", AvgCTR: 1.8},
	}
	analysis := model.AnalysisResult{
		Summary:       "Overall healthy profile.",
		Trends:        []string{"t1", "t2", "t3", "t4"},
		Opportunities: []string{"o1"},
	}

	p := BuildSuggestionsPrompt(b, analysis, "https://example.com")

	assert.Contains(t, p, "Overall healthy profile.")
	// 趋势最多引用前三条
	assert.Contains(t, p, "t1, t2, t3")
	assert.NotContains(t, p, "t4")
	assert.Contains(t, p, "Primary Issues: No specific issues identified")
	assert.Contains(t, p, "7 high-impression queries with below-average CTR (1.20% vs average 4.00%)")
	assert.Contains(t, p, "MOBILE has lowest CTR (1.80%)")
	// 输出格式契约
	for _, field := range []string{"CATEGORY:", "TITLE:", "DESCRIPTION:", "PRIORITY:", "IMPACT:", "IMPLEMENTATION:", "SUCCESS METRICS:"} {
		assert.Contains(t, p, field)
	}
}

func TestBuildBasicSuggestionsPrompt(t *testing.T) {
	p := BuildBasicSuggestionsPrompt(model.AnalysisResult{Summary: "s"}, "site")
	assert.Contains(t, p, "create practical suggestions")
	assert.True(t, strings.Contains(p, "CATEGORY:") && strings.Contains(p, "IMPLEMENTATION:"))
}
