package parse

import (
	"fmt"
	"strings"

	"github.com/searchlens/searchlens/internal/insight"
	"github.com/searchlens/searchlens/internal/model"
)

// 各字段完全解析不出内容时的兜底文案
const (
	placeholderSummary        = "Comprehensive analysis completed. Review detailed recommendations below."
	placeholderTrend          = "Analyze performance trends for seasonal patterns and growth opportunities"
	placeholderOpportunity    = "Focus on high-CTR, low-volume keywords for quick wins"
	placeholderIssue          = "Review technical SEO fundamentals and content quality"
	placeholderRecommendation = "Implement a comprehensive SEO tracking and optimization program"
)

// enrichSummary 摘要过短时追加数据要点，保证读者至少能看到硬指标
func enrichSummary(summary string, b insight.Bundle) string {
	if b.Performance.CTRQuality == "" && !b.Trend.Valid {
		return summary
	}
	var sb strings.Builder
	sb.WriteString(summary)
	sb.WriteString("\n\nKey Data Insights:\n")

	if b.Performance.CTRQuality != "" {
		fmt.Fprintf(&sb, "- Average Position: %.2f (%s)\n", b.Performance.AvgPosition, b.Performance.PositionQuality)
		fmt.Fprintf(&sb, "- Click-Through Rate: %.2f%% (%s)\n", b.Performance.AvgCTR, b.Performance.CTRQuality)
	}
	if b.Trend.Valid {
		fmt.Fprintf(&sb, "- Click Growth Trend: %+.1f%%\n", b.Trend.ClickGrowth)
	}
	return strings.TrimSpace(sb.String())
}

func fillPlaceholders(res *model.AnalysisResult) {
	if strings.TrimSpace(res.Summary) == "" {
		res.Summary = placeholderSummary
	}
	if len(res.Trends) == 0 {
		res.Trends = []string{placeholderTrend}
	}
	if len(res.Opportunities) == 0 {
		res.Opportunities = []string{placeholderOpportunity}
	}
	if len(res.Issues) == 0 {
		res.Issues = []string{placeholderIssue}
	}
	if len(res.Recommendations) == 0 {
		res.Recommendations = []string{placeholderRecommendation}
	}
}

// FallbackAnalysis 生成服务不可用时，直接从统计洞察合成分析结果。
// 输出是确定性的，保证绕过生成链路也能给出可用内容。
func FallbackAnalysis(b insight.Bundle, siteURL string) model.AnalysisResult {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Analysis for %s based on data patterns:\n\n", siteURL)
	if b.Performance.CTRQuality != "" {
		fmt.Fprintf(&sb, "Performance: %s CTR at %.2f%%, %s average position at %.2f\n",
			b.Performance.CTRQuality, b.Performance.AvgCTR,
			b.Performance.PositionQuality, b.Performance.AvgPosition)
	}

	trends := []string{
		fmt.Sprintf("Click trend: %+.1f%%", b.Trend.ClickGrowth),
		fmt.Sprintf("Impression trend: %+.1f%%", b.Trend.ImpressionGrowth),
		fmt.Sprintf("Position trend: %+.2f", b.Trend.PositionTrend),
	}

	opportunities := []string{
		"Optimize high-impression, low-CTR queries",
		"Improve content for queries in positions 4-10",
		"Enhance mobile user experience",
		"Expand successful content topics",
	}
	if b.Opportunities.CTROptimization.Count > 0 {
		opportunities = append(opportunities, fmt.Sprintf(
			"Lift CTR on %d lagging high-impression queries (currently %.2f%%)",
			b.Opportunities.CTROptimization.Count, b.Opportunities.CTROptimization.AvgCTR))
	}

	issues := []string{
		"Monitor CTR performance across devices",
		"Address position stagnation for key queries",
		"Improve content depth for top-performing pages",
	}

	recommendations := []string{
		"Implement structured data markup",
		"Create content clusters around top-performing topics",
		"Optimize page load speeds",
		"Enhance internal linking structure",
	}

	return model.AnalysisResult{
		Summary:         sb.String(),
		Trends:          trends,
		Opportunities:   opportunities,
		Issues:          issues,
		Recommendations: recommendations,
	}
}
