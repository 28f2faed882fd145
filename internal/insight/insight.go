package insight

// 质量分档与机会识别使用的阈值。
// 这些数值沿用运营同学长期使用的口径，属于可调参数而非业务硬约束。
const (
	ctrExcellent = 5.0 // 平均 CTR 高于该值视为优秀
	ctrGood      = 2.0
	posExcellent = 3.0 // 平均排名低于该值视为优秀
	posGood      = 7.0

	lowPercentile  = 0.3
	highPercentile = 0.8

	ctrLagFactor   = 0.7 // 低于均值 70% 视为 CTR 落后
	ctrStandFactor = 1.5 // 高于均值 150% 视为 CTR 突出

	positionBandLow  = 8.0 // 第二页排名区间下界
	positionBandHigh = 20.0

	topQueryLimit   = 10
	topPageLimit    = 8
	topCountryLimit = 10
	sliceLimit      = 5
)

// Bundle 从一批 Record 计算出的全部统计洞察。
// 所有字段在数据缺失时都退化为零值，不会因缺维度而失败。
type Bundle struct {
	Performance   PerformanceMetrics
	Trend         TrendMetrics
	Content       ContentInsights
	Technical     TechnicalInsights
	Opportunities OpportunityAreas
	Competitive   CompetitivePosition
}

// PerformanceMetrics 整体表现指标
type PerformanceMetrics struct {
	TotalClicks      int64
	TotalImpressions int64
	AvgCTR           float64
	AvgPosition      float64
	CTRQuality       string // Excellent / Good / Needs Improvement
	PositionQuality  string
}

// TrendMetrics 按日聚合后的趋势指标。
// Valid 为 false 表示不足两个日期分桶，所有趋势字段无意义。
type TrendMetrics struct {
	Valid            bool
	ClickGrowth      float64 // 首尾百分比变化
	ImpressionGrowth float64
	CTRTrend         float64
	PositionTrend    float64
	Volatility       float64 // 日点击量标准差 / 均值
}

// GroupStats 某个维度值（query/page/device/country）的聚合统计
type GroupStats struct {
	Key         string
	Clicks      int64
	Impressions int64
	AvgCTR      float64
	AvgPosition float64
}

// ContentInsights 内容维度分析
type ContentInsights struct {
	Queries QueryInsights
	Pages   PageInsights
}

// QueryInsights 查询词分析
type QueryInsights struct {
	TopByClicks          []GroupStats
	TopByCTR             []GroupStats // 展示量超过中位数且 CTR 领先的词
	HighImpressionLowCTR []GroupStats // 展示量 80 分位以上、CTR 30 分位以下
}

// PageInsights 页面分析
type PageInsights struct {
	TopPerformers          []GroupStats
	HighTrafficLowPosition []GroupStats // 展示量 80 分位以上但排名在 10 名开外
}

// TechnicalInsights 设备与地域分析
type TechnicalInsights struct {
	Devices   []GroupStats
	Countries []GroupStats
}

// OpportunitySummary 单类机会的汇总
type OpportunitySummary struct {
	Count          int
	AvgCTR         float64
	AvgPosition    float64
	PotentialGain  float64 // 与整体均值的差距，仅 CTR 类机会填写
}

// OpportunityAreas 三类固定口径的机会识别结果
type OpportunityAreas struct {
	CTROptimization     OpportunitySummary // 高展示低 CTR
	PositionImprovement OpportunitySummary // 排名 8-20
	HighPotentialQuery  OpportunitySummary // 高 CTR 低展示
}

// CompetitivePosition 竞争位置概览
type CompetitivePosition struct {
	Top3Share        float64 // 排名前 3 的记录占比（百分比）
	FirstPageShare   float64 // 排名前 10 的记录占比
	VisibilityScore  float64 // 总展示量 / 1000
	ClickMarketShare float64 // 总点击量 / 1000
}
