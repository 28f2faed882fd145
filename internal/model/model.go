package model

import "time"

// Record 单行搜索表现数据（一行 = 一个维度组合在某天的观测值）
type Record struct {
	Date        time.Time
	Clicks      int64
	Impressions int64
	CTR         float64 // 百分比，0-100
	Position    float64
	Query       string // 可选维度，空串表示未请求该维度
	Page        string
	Country     string
	Device      string
}

// AnalysisResult 一次完整分析的结构化结果
type AnalysisResult struct {
	Summary         string
	Trends          []string
	Opportunities   []string
	Issues          []string
	Recommendations []string
}

// Suggestion 单条优化建议
type Suggestion struct {
	Category       string
	Title          string
	Description    string
	Priority       string // critical / high / medium / low
	Impact         string // transformational / high / medium / low
	Implementation string
}
