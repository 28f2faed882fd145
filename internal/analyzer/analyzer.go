// Package analyzer 串联统计洞察、提示词、生成网关与解析器，
// 对外暴露一次分析会话的完整生命周期。
package analyzer

import (
	"context"
	"errors"
	"fmt"

	"github.com/searchlens/searchlens/internal/insight"
	"github.com/searchlens/searchlens/internal/logger"
	"github.com/searchlens/searchlens/internal/model"
	"github.com/searchlens/searchlens/internal/parse"
	"github.com/searchlens/searchlens/internal/prompt"
)

// ErrNoData 空记录集合直接短路，不会发起任何生成调用
var ErrNoData = errors.New("no data available for analysis")

// ErrNotAvailable 网关未绑定可用模型
var ErrNotAvailable = errors.New("generation service is not available, check the API key in settings")

// Generator 生成网关能力面，便于测试注入
type Generator interface {
	Bind(ctx context.Context) error
	Available() bool
	ModelName() string
	Generate(ctx context.Context, promptText string) (string, error)
}

// GatewayFactory 按新凭证重建网关，换键时使用
type GatewayFactory func(apiKey string) Generator

// Observer 分析过程的观察者。状态文案、结果与错误都通过它回传，
// 不使用任何全局广播。
type Observer interface {
	OnStatus(status string)
	OnAnalysis(result model.AnalysisResult)
	OnSuggestions(suggestions []model.Suggestion)
	OnError(msg string)
}

// HistoryStore 可选的分析历史存储，nil 表示不落库
type HistoryStore interface {
	CreateRun(ctx context.Context, siteURL string, modelName string) (int64, error)
	SaveAnalysis(ctx context.Context, runID int64, result model.AnalysisResult) error
	SaveSuggestions(ctx context.Context, runID int64, suggestions []model.Suggestion) error
}

type nopObserver struct{}

func (nopObserver) OnStatus(string)                  {}
func (nopObserver) OnAnalysis(model.AnalysisResult)  {}
func (nopObserver) OnSuggestions([]model.Suggestion) {}
func (nopObserver) OnError(string)                   {}

// Analyzer 分析编排器。持有网关的绑定状态；
// 调用方不得在 Analyze 执行期间换键（无内部锁，按约定保证）。
type Analyzer struct {
	gateway    Generator
	newGateway GatewayFactory
	store      HistoryStore
	obs        Observer
}

// New 创建编排器。store 与 obs 均可为 nil。
func New(gateway Generator, factory GatewayFactory, store HistoryStore, obs Observer) *Analyzer {
	if obs == nil {
		obs = nopObserver{}
	}
	return &Analyzer{
		gateway:    gateway,
		newGateway: factory,
		store:      store,
		obs:        obs,
	}
}

// Init 执行初次模型绑定
func (a *Analyzer) Init(ctx context.Context) error {
	a.obs.OnStatus("Testing generation service connection...")
	if err := a.gateway.Bind(ctx); err != nil {
		a.obs.OnStatus("Failed to initialize generation service. Please check your API key.")
		a.obs.OnError(err.Error())
		return err
	}
	a.obs.OnStatus(fmt.Sprintf("Connected to %s", a.gateway.ModelName()))
	return nil
}

// Available 当前是否绑定了可用模型
func (a *Analyzer) Available() bool {
	return a.gateway != nil && a.gateway.Available()
}

// ModelName 当前绑定的模型名
func (a *Analyzer) ModelName() string {
	if a.gateway == nil {
		return ""
	}
	return a.gateway.ModelName()
}

// Status 人类可读的连接状态
func (a *Analyzer) Status() string {
	if a.Available() {
		return fmt.Sprintf("Connected to %s", a.gateway.ModelName())
	}
	return "Generation service not connected"
}

// SetAPIKey 用新凭证重建网关并重新择优绑定，可用状态随之重置
func (a *Analyzer) SetAPIKey(ctx context.Context, apiKey string) error {
	if a.newGateway == nil {
		return errors.New("gateway factory not configured")
	}
	a.gateway = a.newGateway(apiKey)
	return a.Init(ctx)
}

// Analyze 执行一次完整分析：洞察提取 → 分析提示词 → 生成 → 解析，
// 再独立跑一轮建议生成。网关层所有失败都被兜住并降级为
// 数据派生结果，只有配置错误与空输入会作为硬错误返回。
func (a *Analyzer) Analyze(ctx context.Context, records []model.Record, siteURL string) (model.AnalysisResult, []model.Suggestion, error) {
	if len(records) == 0 {
		a.obs.OnError(ErrNoData.Error())
		return model.AnalysisResult{}, nil, ErrNoData
	}
	if !a.Available() {
		a.obs.OnError(ErrNotAvailable.Error())
		return model.AnalysisResult{}, nil, ErrNotAvailable
	}

	a.obs.OnStatus("Preparing data for analysis...")
	bundle := insight.Extract(records)
	overview := prompt.Summarize(records)
	logger.Log.Infof("数据就绪: %d 行，%d 天，站点 [%s]", overview.RowCount, overview.DistinctDays, siteURL)

	result := a.runAnalysis(ctx, bundle, overview, siteURL)
	a.obs.OnAnalysis(result)

	a.obs.OnStatus("Generating detailed suggestions...")
	suggestions := a.runSuggestions(ctx, bundle, result, siteURL)
	if len(suggestions) > 0 {
		a.obs.OnSuggestions(suggestions)
	}

	a.persist(ctx, siteURL, result, suggestions)

	a.obs.OnStatus("Analysis complete!")
	return result, suggestions, nil
}

func (a *Analyzer) runAnalysis(ctx context.Context, bundle insight.Bundle, overview prompt.Overview, siteURL string) model.AnalysisResult {
	a.obs.OnStatus("Creating detailed analysis...")
	p := prompt.BuildAnalysisPrompt(bundle, overview, siteURL)

	a.obs.OnStatus("Sending comprehensive analysis request...")
	text, err := a.gateway.Generate(ctx, p)
	if err != nil || text == "" {
		// 生成链路失败不终止整个流程，退回数据派生结果
		logger.Log.Errorf("分析生成失败，使用数据兜底: %v", err)
		return parse.FallbackAnalysis(bundle, siteURL)
	}
	return parse.Analysis(text, bundle)
}

func (a *Analyzer) runSuggestions(ctx context.Context, bundle insight.Bundle, analysis model.AnalysisResult, siteURL string) []model.Suggestion {
	text, err := a.gateway.Generate(ctx, prompt.BuildSuggestionsPrompt(bundle, analysis, siteURL))
	if err == nil && text != "" {
		if suggestions := parse.Suggestions(text); len(suggestions) > 0 {
			return suggestions
		}
	}

	// 详细版失败后降级到精简提示词再试一轮
	logger.Log.Warnf("详细建议生成失败，降级重试: %v", err)
	text, err = a.gateway.Generate(ctx, prompt.BuildBasicSuggestionsPrompt(analysis, siteURL))
	if err != nil || text == "" {
		logger.Log.Errorf("建议生成失败: %v", err)
		a.obs.OnError("Suggestion generation failed")
		return nil
	}
	return parse.Suggestions(text)
}

func (a *Analyzer) persist(ctx context.Context, siteURL string, result model.AnalysisResult, suggestions []model.Suggestion) {
	if a.store == nil {
		return
	}
	runID, err := a.store.CreateRun(ctx, siteURL, a.gateway.ModelName())
	if err != nil {
		logger.Log.Errorf("无法创建运行记录: %v", err)
		return
	}
	if err := a.store.SaveAnalysis(ctx, runID, result); err != nil {
		logger.Log.Errorf("保存分析结果失败: %v", err)
	}
	if err := a.store.SaveSuggestions(ctx, runID, suggestions); err != nil {
		logger.Log.Errorf("保存建议失败: %v", err)
	}
}
