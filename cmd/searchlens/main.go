package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/searchlens/searchlens/internal/analyzer"
	"github.com/searchlens/searchlens/internal/config"
	"github.com/searchlens/searchlens/internal/gsc"
	"github.com/searchlens/searchlens/internal/insight"
	"github.com/searchlens/searchlens/internal/llm"
	"github.com/searchlens/searchlens/internal/logger"
	"github.com/searchlens/searchlens/internal/model"
	"github.com/searchlens/searchlens/internal/report"
	"github.com/searchlens/searchlens/internal/storage"
)

// bearerTransport 给每个请求带上访问令牌。
// 令牌的获取与刷新在本工具之外完成（环境变量注入）。
type bearerTransport struct {
	token string
	base  http.RoundTripper
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Header.Set("Authorization", "Bearer "+t.token)
	return t.base.RoundTrip(clone)
}

// statusObserver 把分析过程的状态流打到日志
type statusObserver struct{}

func (statusObserver) OnStatus(status string) { logger.Log.Info(status) }
func (statusObserver) OnError(msg string)     { logger.Log.Error(msg) }
func (statusObserver) OnAnalysis(result model.AnalysisResult) {
	logger.Log.Infof("分析完成: %d 条趋势, %d 条机会, %d 条问题, %d 条行动建议",
		len(result.Trends), len(result.Opportunities), len(result.Issues), len(result.Recommendations))
}
func (statusObserver) OnSuggestions(suggestions []model.Suggestion) {
	logger.Log.Infof("生成建议 %d 条", len(suggestions))
}

func main() {
	configPath := flag.String("config", "config.yaml", "配置文件路径")
	flag.Parse()

	// 1. 加载配置
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("无法加载配置文件: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	// 2. 初始化日志
	if err := logger.Init(cfg.Log.Level, cfg.Log.File); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	logger.Log.Infof("启动 Search Lens，站点 [%s]", cfg.Site.URL)

	ctx := context.Background()

	// 3. 初始化生成网关与编排器
	limiter := rate.NewLimiter(rate.Limit(float64(cfg.Concurrency.RPM)/60.0), cfg.Concurrency.QPS)
	newGateway := func(apiKey string) analyzer.Generator {
		return llm.NewGateway(llm.Config{
			BaseURL: cfg.LLM.BaseURL,
			APIKey:  apiKey,
			Limiter: limiter,
		})
	}

	var store analyzer.HistoryStore
	if cfg.DB.DSN != "" {
		pg, err := storage.NewPostgres(cfg.DB.DSN)
		if err != nil {
			logger.Log.Fatalf("历史库初始化失败: %v", err)
		}
		defer pg.Close()
		store = pg
	}

	an := analyzer.New(newGateway(cfg.LLM.APIKey), newGateway, store, statusObserver{})
	if err := an.Init(ctx); err != nil {
		logger.Log.Fatalf("生成服务初始化失败: %v", err)
	}

	// 4. 拉取搜索表现数据
	token := os.Getenv("GSC_ACCESS_TOKEN")
	if token == "" {
		logger.Log.Fatal("配置错误: 未设置 GSC_ACCESS_TOKEN")
	}
	gscClient := gsc.NewClient(&http.Client{
		Timeout:   60 * time.Second,
		Transport: &bearerTransport{token: token, base: http.DefaultTransport},
	})

	start, end := cfg.DateRange(time.Now())
	logger.Log.Infof("拉取数据: %s ~ %s", start.Format(time.DateOnly), end.Format(time.DateOnly))
	records, err := gscClient.FetchSearchAnalytics(ctx, cfg.Site.URL, start, end, nil, cfg.Site.RowLimit)
	if err != nil {
		logger.Log.Fatalf("拉取搜索数据失败: %v", err)
	}

	session := storage.NewSessionStore()
	session.SetRecords(records)
	logger.Log.Infof("拉取到 %d 行数据", len(records))

	// 5. 执行分析
	result, suggestions, err := an.Analyze(ctx, session.Records(), cfg.Site.URL)
	if err != nil {
		logger.Log.Fatalf("分析失败: %v", err)
	}
	session.SetResults(result, suggestions)

	// 6. 输出 HTML 报告
	path, err := report.WriteHTML(cfg.Report.OutputDir, report.Data{
		SiteURL:     cfg.Site.URL,
		ModelName:   an.ModelName(),
		Performance: insight.Extract(session.Records()).Performance,
		Analysis:    result,
		Suggestions: suggestions,
	})
	if err != nil {
		logger.Log.Fatalf("报告生成失败: %v", err)
	}
	logger.Log.Infof("报告已生成: %s", path)
}
