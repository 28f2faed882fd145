package parse

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/searchlens/internal/insight"
)

const wellFormed = `
### EXECUTIVE SUMMARY:
The site shows steady organic growth over the period with strong branded queries.
Mobile performance lags behind desktop which suppresses the blended click-through rate.

### PERFORMANCE TRENDS (7-10 specific trends):
- Organic clicks grew 18% across the period
- Mobile impressions climbed while desktop stayed flat
* Branded queries keep a click-through rate above six percent
1. Average position improved from 12.4 to 9.8

### STRATEGIC OPPORTUNITIES (8-12 detailed opportunities):
- Rewrite meta descriptions for high-impression queries
• Target question keywords currently ranking on page two

### CRITICAL ISSUES (6-8 prioritized issues):
- Mobile click-through rate trails desktop by half

### COMPREHENSIVE RECOMMENDATIONS (10-15 specific actions):
- Add structured data to the top twenty landing pages
- Consolidate cannibalizing articles into a single hub page
`

func TestAnalysisRoundTrip(t *testing.T) {
	res := Analysis(wellFormed, insight.Bundle{})

	assert.Contains(t, res.Summary, "steady organic growth")
	require.Equal(t, []string{
		"Organic clicks grew 18% across the period",
		"Mobile impressions climbed while desktop stayed flat",
		"Branded queries keep a click-through rate above six percent",
		"Average position improved from 12.4 to 9.8",
	}, res.Trends)
	assert.Equal(t, []string{
		"Rewrite meta descriptions for high-impression queries",
		"Target question keywords currently ranking on page two",
	}, res.Opportunities)
	assert.Equal(t, []string{"Mobile click-through rate trails desktop by half"}, res.Issues)
	assert.Len(t, res.Recommendations, 2)
}

func TestAnalysisShortBulletsDropped(t *testing.T) {
	text := `
### PERFORMANCE TRENDS:
- too short
- This bullet is long enough to be kept in the result
`
	res := Analysis(text, insight.Bundle{})
	assert.Equal(t, []string{"This bullet is long enough to be kept in the result"}, res.Trends)
}

func TestAnalysisEmptyInput(t *testing.T) {
	res := Analysis("", insight.Bundle{})
	assert.NotEmpty(t, res.Summary)
	assert.NotEmpty(t, res.Trends)
	assert.NotEmpty(t, res.Opportunities)
	assert.NotEmpty(t, res.Issues)
	assert.NotEmpty(t, res.Recommendations)
}

func TestAnalysisUnstructuredInput(t *testing.T) {
	res := Analysis("The model rambled on without any of the expected structure at all.", insight.Bundle{})
	assert.NotEmpty(t, res.Summary)
	assert.NotEmpty(t, res.Trends)
	assert.NotEmpty(t, res.Issues)
}

func TestAnalysisLooseFallback(t *testing.T) {
	// 主解析认不出的标题形式（无长标签，短标签非全等），退到宽松解析
	text := `TRENDS:
- Clicks are up this month
RECOMMENDATIONS:
- Ship the new sitemap`
	res := Analysis(text, insight.Bundle{})
	assert.Contains(t, res.Trends, "Clicks are up this month")
	assert.Contains(t, res.Recommendations, "Ship the new sitemap")
}

func TestAnalysisSummaryEnrichment(t *testing.T) {
	b := insight.Bundle{}
	b.Performance.AvgCTR = 3.4
	b.Performance.CTRQuality = "Good"
	b.Performance.AvgPosition = 6.1
	b.Performance.PositionQuality = "Good"
	b.Trend.Valid = true
	b.Trend.ClickGrowth = 12.5

	text := `### EXECUTIVE SUMMARY:
Short summary.

### PERFORMANCE TRENDS:
- Clicks trending upward across all device categories
`
	res := Analysis(text, b)
	assert.Contains(t, res.Summary, "Short summary.")
	assert.Contains(t, res.Summary, "Key Data Insights:")
	assert.Contains(t, res.Summary, "+12.5%")
}

func TestAnalysisCaps(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("### PERFORMANCE TRENDS:\n")
	for i := 0; i < 15; i++ {
		sb.WriteString("- A sufficiently long trend bullet number ")
		sb.WriteString(strings.Repeat("x", i+1))
		sb.WriteString("\n")
	}
	res := Analysis(sb.String(), insight.Bundle{})
	assert.Len(t, res.Trends, maxTrends)
}

func TestFallbackAnalysis(t *testing.T) {
	b := insight.Bundle{}
	b.Performance.CTRQuality = "Good"
	b.Performance.PositionQuality = "Needs Improvement"
	b.Performance.AvgCTR = 2.8
	b.Performance.AvgPosition = 11.2
	b.Trend.ClickGrowth = -4.2

	res := FallbackAnalysis(b, "https://example.com")
	assert.Contains(t, res.Summary, "https://example.com")
	assert.Contains(t, res.Summary, "based on data patterns")
	assert.NotEmpty(t, res.Trends)
	assert.NotEmpty(t, res.Opportunities)
	assert.NotEmpty(t, res.Issues)
	assert.NotEmpty(t, res.Recommendations)
}
