// Package gsc Google Search Console 搜索分析客户端。
// OAuth 令牌的获取与刷新由调用方注入的 http.Client 负责，这里只管数据。
package gsc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/searchlens/searchlens/internal/model"
)

const defaultBaseURL = "https://searchconsole.googleapis.com/webmasters/v3"

// 默认请求的维度顺序，keys 数组按该顺序对齐
var defaultDimensions = []string{"date", "query", "page", "country", "device"}

const defaultRowLimit = 25000

// Client Search Console API 客户端
type Client struct {
	baseURL string
	client  *http.Client
}

// NewClient 创建客户端。httpClient 需要自带凭证（OAuth transport）。
func NewClient(httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: defaultBaseURL,
		client:  httpClient,
	}
}

// Site 站点条目
type Site struct {
	SiteURL         string `json:"siteUrl"`
	PermissionLevel string `json:"permissionLevel"`
}

type siteList struct {
	SiteEntry []Site `json:"siteEntry"`
}

// ListSites 列出当前账号可用的站点，只保留有完整读取权限的
func (c *Client) ListSites(ctx context.Context) ([]Site, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sites", nil)
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var list siteList
	if err := json.Unmarshal(body, &list); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}

	var sites []Site
	for _, s := range list.SiteEntry {
		if s.PermissionLevel == "siteOwner" || s.PermissionLevel == "siteFullUser" {
			sites = append(sites, s)
		}
	}
	return sites, nil
}

// queryRequest 搜索分析查询体
type queryRequest struct {
	StartDate  string   `json:"startDate"`
	EndDate    string   `json:"endDate"`
	Dimensions []string `json:"dimensions"`
	RowLimit   int      `json:"rowLimit"`
	DataState  string   `json:"dataState"`
}

type queryResponse struct {
	Rows []queryRow `json:"rows"`
}

type queryRow struct {
	Keys        []string `json:"keys"`
	Clicks      float64  `json:"clicks"`
	Impressions float64  `json:"impressions"`
	CTR         float64  `json:"ctr"` // API 返回 0-1 的小数
	Position    float64  `json:"position"`
}

// FetchSearchAnalytics 拉取指定站点与日期区间的搜索表现数据。
// dimensions 为空时使用默认的五个维度；rowLimit 非正时取默认值。
func (c *Client) FetchSearchAnalytics(ctx context.Context, siteURL string, start, end time.Time, dimensions []string, rowLimit int) ([]model.Record, error) {
	if len(dimensions) == 0 {
		dimensions = defaultDimensions
	}
	if rowLimit <= 0 {
		rowLimit = defaultRowLimit
	}

	payload, err := json.Marshal(queryRequest{
		StartDate:  start.Format(time.DateOnly),
		EndDate:    end.Format(time.DateOnly),
		Dimensions: dimensions,
		RowLimit:   rowLimit,
		DataState:  "all",
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request failed: %w", err)
	}

	endpoint := fmt.Sprintf("%s/sites/%s/searchAnalytics/query", c.baseURL, url.PathEscape(siteURL))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request failed: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}

	var resp queryResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("unmarshal response failed: %w", err)
	}
	return parseRows(resp.Rows, dimensions)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	res, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read body failed: %w", err)
	}
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("search console api error (status %d): %s", res.StatusCode, string(body))
	}
	return body, nil
}

// parseRows 把 API 行映射为 Record。keys 与请求维度一一对应；
// CTR 从小数换算成百分比口径。
func parseRows(rows []queryRow, dimensions []string) ([]model.Record, error) {
	records := make([]model.Record, 0, len(rows))
	for _, row := range rows {
		dims := make(map[string]string, len(dimensions))
		for i, d := range dimensions {
			if i < len(row.Keys) {
				dims[d] = row.Keys[i]
			}
		}

		var date time.Time
		if raw, ok := dims["date"]; ok && raw != "" {
			parsed, err := time.Parse(time.DateOnly, raw)
			if err != nil {
				return nil, fmt.Errorf("parse date %q failed: %w", raw, err)
			}
			date = parsed
		}

		records = append(records, model.Record{
			Date:        date,
			Clicks:      int64(row.Clicks),
			Impressions: int64(row.Impressions),
			CTR:         row.CTR * 100,
			Position:    row.Position,
			Query:       dims["query"],
			Page:        dims["page"],
			Country:     dims["country"],
			Device:      dims["device"],
		})
	}
	return records, nil
}
