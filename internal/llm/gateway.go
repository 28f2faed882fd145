package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/cloudwego/eino-ext/components/model/openai"
	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"golang.org/x/time/rate"

	"github.com/searchlens/searchlens/internal/logger"
)

const (
	maxAttempts = 3
	retryDelay  = 2 * time.Second

	// 探测提示词：只要模型返回非空文本就认为可用
	probePrompt = "Hello, please respond with 'OK'"
)

// ErrUnavailable 未绑定可用模型时调用 Generate 返回该错误
var ErrUnavailable = errors.New("generation service unavailable: no working model bound")

// 列举模型接口失败时依次尝试的候选名单
var fallbackModels = []string{
	"gemini-1.5-pro-latest",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
	"gemini-1.0-pro",
	"gemini-pro",
}

// ModelFactory 按模型名创建聊天模型实例
type ModelFactory func(ctx context.Context, name string) (model.ChatModel, error)

// ModelLister 查询服务端可用的模型名列表
type ModelLister func(ctx context.Context) ([]string, error)

// Gateway 文本生成网关：包装底层聊天模型，提供有界重试、
// 固定退避和初始化期的模型择优绑定。
// 绑定状态只在 Bind/Rebind 期间变更，调用方不得在分析进行中换键。
type Gateway struct {
	newModel   ModelFactory
	listModels ModelLister
	limiter    *rate.Limiter
	sleep      func(time.Duration)

	bound     model.ChatModel
	boundName string
}

// Config 网关配置
type Config struct {
	BaseURL string
	APIKey  string
	Limiter *rate.Limiter
}

// NewGateway 创建指向 OpenAI 兼容端点的网关，此时尚未绑定模型，
// 需要调用 Bind 完成择优。
func NewGateway(cfg Config) *Gateway {
	factory := func(ctx context.Context, name string) (model.ChatModel, error) {
		return openai.NewChatModel(ctx, &openai.ChatModelConfig{
			BaseURL: cfg.BaseURL,
			APIKey:  cfg.APIKey,
			Model:   name,
		})
	}
	lister := func(ctx context.Context) ([]string, error) {
		return listModels(ctx, http.DefaultClient, cfg.BaseURL, cfg.APIKey)
	}
	return newGateway(factory, lister, cfg.Limiter)
}

func newGateway(factory ModelFactory, lister ModelLister, limiter *rate.Limiter) *Gateway {
	if limiter == nil {
		limiter = rate.NewLimiter(rate.Inf, 1)
	}
	return &Gateway{
		newModel:   factory,
		listModels: lister,
		limiter:    limiter,
		sleep:      time.Sleep,
	}
}

// Bind 执行模型择优：拿到候选名单后逐个用探测提示词试写，
// 第一个返回非空文本的模型成为本会话的工作模型。
// 这是"先到先得"而不是质量排序。
func (g *Gateway) Bind(ctx context.Context) error {
	g.bound = nil
	g.boundName = ""

	candidates, err := g.listModels(ctx)
	if err != nil || len(candidates) == 0 {
		if err != nil {
			logger.Log.Warnf("列举模型失败，使用内置候选名单: %v", err)
		}
		candidates = fallbackModels
	}

	for _, name := range candidates {
		cm, err := g.newModel(ctx, name)
		if err != nil {
			logger.Log.Debugf("模型 [%s] 初始化失败: %v", name, err)
			continue
		}
		resp, err := cm.Generate(ctx, []*schema.Message{{Role: schema.User, Content: probePrompt}})
		if err != nil || resp == nil || resp.Content == "" {
			logger.Log.Debugf("模型 [%s] 探测未通过: %v", name, err)
			continue
		}
		g.bound = cm
		g.boundName = name
		logger.Log.Infof("绑定工作模型: %s", name)
		return nil
	}
	return ErrUnavailable
}

// Available 是否已绑定可用模型
func (g *Gateway) Available() bool {
	return g.bound != nil
}

// ModelName 当前绑定的模型名，未绑定返回空串
func (g *Gateway) ModelName() string {
	return g.boundName
}

// Generate 发送提示词并返回生成文本。
// 最多尝试 maxAttempts 次，失败或空响应后固定退避 retryDelay 再试；
// 最后一次仍失败则把错误原样抛给调用方。
// 不区分错误类别，限流、网络抖动和硬错误一视同仁。
func (g *Gateway) Generate(ctx context.Context, promptText string) (string, error) {
	if !g.Available() {
		return "", ErrUnavailable
	}

	messages := []*schema.Message{{Role: schema.User, Content: promptText}}
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", err
		}

		resp, err := g.bound.Generate(ctx, messages)
		if err == nil && resp != nil && resp.Content != "" {
			return resp.Content, nil
		}
		if err != nil {
			lastErr = err
		} else {
			lastErr = fmt.Errorf("empty response from model %s", g.boundName)
		}
		logger.Log.Warnf("生成第 %d/%d 次尝试失败: %v", attempt, maxAttempts, lastErr)

		if attempt < maxAttempts {
			g.sleep(retryDelay)
		}
	}
	return "", lastErr
}
