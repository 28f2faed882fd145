package analyzer

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/searchlens/searchlens/internal/model"
)

// fakeGenerator 脚本化的生成网关
type fakeGenerator struct {
	available bool
	bindErr   error
	responses []string
	errs      []error
	prompts   []string
}

func (f *fakeGenerator) Bind(ctx context.Context) error {
	if f.bindErr != nil {
		return f.bindErr
	}
	f.available = true
	return nil
}

func (f *fakeGenerator) Available() bool   { return f.available }
func (f *fakeGenerator) ModelName() string { return "fake-model" }

func (f *fakeGenerator) Generate(ctx context.Context, promptText string) (string, error) {
	i := len(f.prompts)
	f.prompts = append(f.prompts, promptText)
	if i < len(f.errs) && f.errs[i] != nil {
		return "", f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return "", errors.New("unexpected call")
}

// recordingObserver 记录回调顺序与内容
type recordingObserver struct {
	statuses    []string
	analyses    []model.AnalysisResult
	suggestions [][]model.Suggestion
	errors      []string
}

func (r *recordingObserver) OnStatus(s string)                 { r.statuses = append(r.statuses, s) }
func (r *recordingObserver) OnAnalysis(a model.AnalysisResult) { r.analyses = append(r.analyses, a) }
func (r *recordingObserver) OnError(msg string)                { r.errors = append(r.errors, msg) }

func (r *recordingObserver) OnSuggestions(s []model.Suggestion) {
	r.suggestions = append(r.suggestions, s)
}

func sampleRecords() []model.Record {
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	return []model.Record{
		{Date: base, Clicks: 120, Impressions: 4000, CTR: 3.0, Position: 6.2, Query: "best coffee maker"},
		{Date: base.AddDate(0, 0, 1), Clicks: 160, Impressions: 5200, CTR: 3.1, Position: 5.8, Query: "coffee grinder"},
	}
}

const analysisText = `
### EXECUTIVE SUMMARY:
Strong momentum with clicks accelerating through the period under review.

### PERFORMANCE TRENDS:
- Clicks accelerated through the second half of the period

### STRATEGIC OPPORTUNITIES:
- Push mid-ranking queries onto the first results page

### CRITICAL ISSUES:
- Impression growth is outpacing click growth noticeably

### COMPREHENSIVE RECOMMENDATIONS:
- Refresh titles on the highest impression landing pages
`

const suggestionsText = `
CATEGORY: On-Page SEO
TITLE: Rewrite titles for lagging queries
DESCRIPTION: Better titles lift click-through on existing rankings.
PRIORITY: high
IMPACT: high
IMPLEMENTATION: Identify pages, rewrite, measure
`

func TestAnalyzeEmptyRecords(t *testing.T) {
	gen := &fakeGenerator{available: true}
	obs := &recordingObserver{}
	a := New(gen, nil, nil, obs)

	_, _, err := a.Analyze(context.Background(), nil, "https://example.com")
	require.ErrorIs(t, err, ErrNoData)
	// 空输入短路：不得发起任何生成调用
	assert.Empty(t, gen.prompts)
	assert.NotEmpty(t, obs.errors)
}

func TestAnalyzeUnavailable(t *testing.T) {
	gen := &fakeGenerator{available: false}
	a := New(gen, nil, nil, nil)

	_, _, err := a.Analyze(context.Background(), sampleRecords(), "https://example.com")
	require.ErrorIs(t, err, ErrNotAvailable)
	assert.Empty(t, gen.prompts)
}

func TestAnalyzeHappyPath(t *testing.T) {
	gen := &fakeGenerator{
		available: true,
		responses: []string{analysisText, suggestionsText},
	}
	obs := &recordingObserver{}
	a := New(gen, nil, nil, obs)

	result, suggestions, err := a.Analyze(context.Background(), sampleRecords(), "https://example.com")
	require.NoError(t, err)

	assert.Contains(t, result.Summary, "Strong momentum")
	assert.Len(t, result.Trends, 1)
	require.Len(t, suggestions, 1)
	assert.Equal(t, "Rewrite titles for lagging queries", suggestions[0].Title)

	// 两次生成调用：分析一次，建议一次
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[0], "COMPREHENSIVE SEO ANALYSIS REQUEST")
	assert.Contains(t, gen.prompts[1], "CATEGORY:")

	require.Len(t, obs.analyses, 1)
	require.Len(t, obs.suggestions, 1)
	assert.NotEmpty(t, obs.statuses)
	assert.Equal(t, "Analysis complete!", obs.statuses[len(obs.statuses)-1])
}

func TestAnalyzeGenerationFailureFallsBack(t *testing.T) {
	boom := errors.New("rate limited")
	gen := &fakeGenerator{
		available: true,
		errs:      []error{boom, boom, boom},
	}
	obs := &recordingObserver{}
	a := New(gen, nil, nil, obs)

	result, suggestions, err := a.Analyze(context.Background(), sampleRecords(), "https://example.com")
	// 生成失败不是硬错误：分析退回数据兜底，建议为空
	require.NoError(t, err)
	assert.Contains(t, result.Summary, "based on data patterns")
	assert.NotEmpty(t, result.Recommendations)
	assert.Empty(t, suggestions)
	require.Len(t, obs.analyses, 1)
	assert.Empty(t, obs.suggestions)
}

func TestAnalyzeSuggestionsDowngrade(t *testing.T) {
	gen := &fakeGenerator{
		available: true,
		responses: []string{analysisText, "", suggestionsText},
		errs:      []error{nil, errors.New("too long")},
	}
	a := New(gen, nil, nil, nil)

	_, suggestions, err := a.Analyze(context.Background(), sampleRecords(), "https://example.com")
	require.NoError(t, err)
	require.Len(t, suggestions, 1)

	// 第三次调用应当是精简版提示词
	require.Len(t, gen.prompts, 3)
	assert.Contains(t, gen.prompts[2], "create practical suggestions")
}

func TestSetAPIKeyRebinds(t *testing.T) {
	var createdWith []string
	factory := func(apiKey string) Generator {
		createdWith = append(createdWith, apiKey)
		return &fakeGenerator{}
	}
	a := New(&fakeGenerator{available: true}, factory, nil, nil)
	require.True(t, a.Available())

	require.NoError(t, a.SetAPIKey(context.Background(), "new-key"))
	assert.Equal(t, []string{"new-key"}, createdWith)
	assert.True(t, a.Available())

	// 新凭证绑定失败时可用状态必须翻转
	factoryBad := func(apiKey string) Generator {
		return &fakeGenerator{bindErr: errors.New("invalid key")}
	}
	a = New(&fakeGenerator{available: true}, factoryBad, nil, nil)
	require.Error(t, a.SetAPIKey(context.Background(), "bad"))
	assert.False(t, a.Available())
}

// fakeStore 记录落库调用
type fakeStore struct {
	runs        int
	analyses    int
	suggestions int
	failCreate  bool
}

func (f *fakeStore) CreateRun(ctx context.Context, siteURL, modelName string) (int64, error) {
	if f.failCreate {
		return 0, errors.New("db down")
	}
	f.runs++
	return int64(f.runs), nil
}

func (f *fakeStore) SaveAnalysis(ctx context.Context, runID int64, result model.AnalysisResult) error {
	f.analyses++
	return nil
}

func (f *fakeStore) SaveSuggestions(ctx context.Context, runID int64, suggestions []model.Suggestion) error {
	f.suggestions++
	return nil
}

func TestAnalyzePersistsHistory(t *testing.T) {
	gen := &fakeGenerator{available: true, responses: []string{analysisText, suggestionsText}}
	store := &fakeStore{}
	a := New(gen, nil, store, nil)

	_, _, err := a.Analyze(context.Background(), sampleRecords(), "https://example.com")
	require.NoError(t, err)
	assert.Equal(t, 1, store.runs)
	assert.Equal(t, 1, store.analyses)
	assert.Equal(t, 1, store.suggestions)
}

func TestAnalyzeStoreFailureIsNotFatal(t *testing.T) {
	gen := &fakeGenerator{available: true, responses: []string{analysisText, suggestionsText}}
	a := New(gen, nil, &fakeStore{failCreate: true}, nil)

	_, _, err := a.Analyze(context.Background(), sampleRecords(), "https://example.com")
	assert.NoError(t, err)
}

func TestStatus(t *testing.T) {
	a := New(&fakeGenerator{available: true}, nil, nil, nil)
	assert.True(t, strings.HasPrefix(a.Status(), "Connected to"))

	a = New(&fakeGenerator{}, nil, nil, nil)
	assert.Equal(t, "Generation service not connected", a.Status())
}
