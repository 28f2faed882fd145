package prompt

import (
	"fmt"
	"strings"

	"github.com/searchlens/searchlens/internal/insight"
	"github.com/searchlens/searchlens/internal/model"
)

// BuildSuggestionsPrompt 组装建议生成提示词。
// CATEGORY/TITLE/... 的七字段格式是建议解析器的契约。
func BuildSuggestionsPrompt(b insight.Bundle, analysis model.AnalysisResult, siteURL string) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "As a senior SEO consultant, create EXTREMELY DETAILED, data-driven suggestions for %s based on comprehensive analysis.\n\n", siteURL)

	sb.WriteString("ANALYSIS CONTEXT:\n")
	sb.WriteString(analysis.Summary)
	sb.WriteString("\n\nKEY FINDINGS:\n")
	fmt.Fprintf(&sb, "- Critical Trends: %s\n", joinOrDefault(analysis.Trends, "No specific trends identified"))
	fmt.Fprintf(&sb, "- Major Opportunities: %s\n", joinOrDefault(analysis.Opportunities, "No specific opportunities identified"))
	fmt.Fprintf(&sb, "- Primary Issues: %s\n", joinOrDefault(analysis.Issues, "No specific issues identified"))

	sb.WriteString("\nDATA-DRIVEN INSIGHTS:\n")
	sb.WriteString(formatDataOpportunities(b))

	sb.WriteString(suggestionsFormat)
	return sb.String()
}

func joinOrDefault(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	if len(items) > promptListLimit {
		items = items[:promptListLimit]
	}
	return strings.Join(items, ", ")
}

// formatDataOpportunities 把数据层面识别出的机会写成要点，
// 让模型的建议落在真实数据模式上而不是泛泛而谈。
func formatDataOpportunities(b insight.Bundle) string {
	var lines []string

	if o := b.Opportunities.CTROptimization; o.Count > 0 {
		lines = append(lines, fmt.Sprintf("CTR Optimization: %d high-impression queries with below-average CTR (%.2f%% vs average %.2f%%)",
			o.Count, o.AvgCTR, b.Performance.AvgCTR))
	}
	if o := b.Opportunities.PositionImprovement; o.Count > 0 {
		lines = append(lines, fmt.Sprintf("Position Boost: %d queries in positions 8-20 with potential for first-page ranking", o.Count))
	}
	if o := b.Opportunities.HighPotentialQuery; o.Count > 0 {
		lines = append(lines, fmt.Sprintf("Volume Expansion: %d queries with excellent CTR (%.2f%%) but low impression volume",
			o.Count, o.AvgCTR))
	}
	if d, ok := worstDevice(b.Technical.Devices); ok {
		lines = append(lines, fmt.Sprintf("Device Optimization: %s has lowest CTR (%.2f%%) needing UX improvements", d.Key, d.AvgCTR))
	}

	if len(lines) == 0 {
		return "No specific data patterns identified for opportunity targeting\n"
	}
	var sb strings.Builder
	for _, l := range lines {
		fmt.Fprintf(&sb, "- %s\n", l)
	}
	return sb.String()
}

func worstDevice(devices []insight.GroupStats) (insight.GroupStats, bool) {
	if len(devices) < 2 {
		return insight.GroupStats{}, false
	}
	worst := devices[0]
	for _, d := range devices[1:] {
		if d.AvgCTR < worst.AvgCTR {
			worst = d
		}
	}
	return worst, true
}

// BuildBasicSuggestionsPrompt 精简版建议提示词，
// 详细版生成失败后降级使用，输出格式仍满足解析契约。
func BuildBasicSuggestionsPrompt(analysis model.AnalysisResult, siteURL string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Based on the SEO analysis for %s, create practical suggestions:\n\n", siteURL)
	fmt.Fprintf(&sb, "ANALYSIS: %s\n", analysis.Summary)
	sb.WriteString(`
Create 5-6 suggestions in this format:

CATEGORY: [SEO, Content, Technical]
TITLE: [Action title]
DESCRIPTION: [What to do]
PRIORITY: [high/medium/low]
IMPACT: [high/medium/low]
IMPLEMENTATION: [Basic steps]
`)
	return sb.String()
}

const suggestionsFormat = `
Create 8-12 EXTREMELY DETAILED suggestions following this EXACT format:

CATEGORY: [Technical SEO, Content Strategy, On-Page SEO, Off-Page SEO, User Experience, Performance Optimization]
TITLE: [Specific, action-oriented title reflecting the core recommendation]
DESCRIPTION: [Comprehensive 3-5 sentence explanation of what this is, why it matters, and the expected impact. Include specific data points where relevant.]
PRIORITY: [critical/high/medium/low - based on potential impact and effort]
IMPACT: [transformational/high/medium/low - estimated performance improvement]
IMPLEMENTATION: [Step-by-step implementation guide with specific actions, tools needed, timeline, and success metrics. Should be 5-7 detailed steps.]
SUCCESS METRICS: [3-5 specific KPIs to track progress and measure success]

Focus on highly specific, actionable recommendations with data-driven prioritization, comprehensive implementation details, and clear success measurement. Make these suggestions so detailed that an SEO specialist could immediately implement them without additional research.
`
