package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// modelList OpenAI 兼容端点 /models 的响应
type modelList struct {
	Data []modelEntry `json:"data"`
}

type modelEntry struct {
	ID string `json:"id"`
}

// listModels 请求 {baseURL}/models 并筛出 gemini 系列模型名。
// 接口不可用时返回错误，由调用方回退到内置候选名单。
func listModels(ctx context.Context, client *http.Client, baseURL, apiKey string) ([]string, error) {
	url := strings.TrimSuffix(baseURL, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Add("Authorization", "Bearer "+apiKey)

	res, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("models api error (status %d): %s", res.StatusCode, string(body))
	}

	var list modelList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	var names []string
	for _, m := range list.Data {
		if strings.Contains(strings.ToLower(m.ID), "gemini") {
			names = append(names, m.ID)
		}
	}
	return names, nil
}
