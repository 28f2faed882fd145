// Package parse 把模型返回的自由文本还原为结构化结果。
// 解析永不硬失败：识别不出结构时逐级降级，最终保证每个字段非空。
package parse

import (
	"regexp"
	"strings"

	"github.com/searchlens/searchlens/internal/insight"
	"github.com/searchlens/searchlens/internal/model"
)

// 各列表字段的上限
const (
	maxTrends          = 10
	maxOpportunities   = 12
	maxIssues          = 8
	maxRecommendations = 15

	// 短于该长度的要点视为噪声碎片丢弃
	minBulletLen = 10

	// 摘要短于该长度时追加数据补充
	minSummaryLen = 200
)

// section 解析器当前所处的段落
type section int

const (
	secNone section = iota
	secSummary
	secTrends
	secOpportunities
	secIssues
	secRecommendations
)

// sectionHeaders 段落识别表：长标签用包含匹配，短标签用全等匹配
var sectionHeaders = []struct {
	sec   section
	long  string
	short string
}{
	{secSummary, "EXECUTIVE SUMMARY", "SUMMARY"},
	{secTrends, "PERFORMANCE TRENDS", "TRENDS"},
	{secOpportunities, "STRATEGIC OPPORTUNITIES", "OPPORTUNITIES"},
	{secIssues, "CRITICAL ISSUES", "ISSUES"},
	{secRecommendations, "COMPREHENSIVE RECOMMENDATIONS", "RECOMMENDATIONS"},
}

var bulletMarker = regexp.MustCompile(`^[-•*\d]+\.?\s*`)

// Analysis 解析综合分析文本。结构化解析失败时先退到宽松解析，
// 再退到固定占位文案；摘要过短时用统计洞察补全。
func Analysis(text string, b insight.Bundle) model.AnalysisResult {
	res := parseSections(text)

	if isEmpty(res) {
		res = parseLoose(text)
	}

	res.Summary = strings.TrimSpace(res.Summary)
	if len(res.Summary) < minSummaryLen {
		res.Summary = enrichSummary(res.Summary, b)
	}
	fillPlaceholders(&res)

	res.Trends = capList(res.Trends, maxTrends)
	res.Opportunities = capList(res.Opportunities, maxOpportunities)
	res.Issues = capList(res.Issues, maxIssues)
	res.Recommendations = capList(res.Recommendations, maxRecommendations)
	return res
}

// parseSections 主解析：单指针状态机，按识别到的段落标题推进
func parseSections(text string) model.AnalysisResult {
	var res model.AnalysisResult
	var summary []string
	cur := secNone

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if sec, ok := matchHeader(line); ok {
			cur = sec
			continue
		}

		switch cur {
		case secSummary:
			// 摘要段逐行拼接，遇到疑似其他段落关键词的行直接丢弃
			if !containsSectionKeyword(line) {
				summary = append(summary, line)
			}
		case secTrends, secOpportunities, secIssues, secRecommendations:
			item, ok := stripBullet(line)
			if !ok || len(item) <= minBulletLen {
				continue
			}
			switch cur {
			case secTrends:
				res.Trends = append(res.Trends, item)
			case secOpportunities:
				res.Opportunities = append(res.Opportunities, item)
			case secIssues:
				res.Issues = append(res.Issues, item)
			case secRecommendations:
				res.Recommendations = append(res.Recommendations, item)
			}
		}
	}

	res.Summary = strings.Join(summary, " ")
	return res
}

func matchHeader(line string) (section, bool) {
	upper := strings.ToUpper(line)
	for _, h := range sectionHeaders {
		if strings.Contains(upper, h.long) || upper == h.short {
			return h.sec, true
		}
	}
	return secNone, false
}

func containsSectionKeyword(line string) bool {
	upper := strings.ToUpper(line)
	for _, kw := range []string{"TRENDS", "OPPORTUNITIES", "ISSUES", "RECOMMENDATIONS", "RISK", "SUCCESS"} {
		if strings.Contains(upper, kw) {
			return true
		}
	}
	return false
}

// stripBullet 识别并去掉要点标记（-、•、* 或 "1." 这类数字编号）
func stripBullet(line string) (string, bool) {
	isBullet := strings.HasPrefix(line, "- ") ||
		strings.HasPrefix(line, "• ") ||
		strings.HasPrefix(line, "* ")
	if !isBullet {
		head := line
		if len(head) > 3 {
			head = head[:3]
		}
		isBullet = line[0] >= '0' && line[0] <= '9' && strings.Contains(head, ". ")
	}
	if !isBullet {
		return "", false
	}
	return strings.TrimSpace(bulletMarker.ReplaceAllString(line, "")), true
}

// parseLoose 次级宽松解析：只认行首的段落名和 "- " 要点
func parseLoose(text string) model.AnalysisResult {
	var res model.AnalysisResult
	var summary []string
	cur := secNone

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		upper := strings.ToUpper(line)
		matched := false
		for _, h := range sectionHeaders {
			if strings.HasPrefix(upper, h.short) {
				cur = h.sec
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if strings.HasPrefix(line, "- ") {
			item := strings.TrimSpace(line[2:])
			switch cur {
			case secTrends:
				res.Trends = append(res.Trends, item)
			case secOpportunities:
				res.Opportunities = append(res.Opportunities, item)
			case secIssues:
				res.Issues = append(res.Issues, item)
			case secRecommendations:
				res.Recommendations = append(res.Recommendations, item)
			}
			continue
		}
		if cur == secSummary && !containsSectionKeyword(line) {
			summary = append(summary, line)
		}
	}

	res.Summary = strings.Join(summary, " ")
	return res
}

func isEmpty(r model.AnalysisResult) bool {
	return strings.TrimSpace(r.Summary) == "" &&
		len(r.Trends) == 0 && len(r.Opportunities) == 0 &&
		len(r.Issues) == 0 && len(r.Recommendations) == 0
}

func capList(items []string, limit int) []string {
	if len(items) > limit {
		return items[:limit]
	}
	return items
}
