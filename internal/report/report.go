// Package report 把分析结果渲染为单文件 HTML 报告。
package report

import (
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/searchlens/searchlens/internal/insight"
	"github.com/searchlens/searchlens/internal/model"
)

// Data 模板入参
type Data struct {
	SiteURL     string
	Date        string
	ModelName   string
	Performance insight.PerformanceMetrics
	Analysis    model.AnalysisResult
	Suggestions []model.Suggestion
}

// WriteHTML 在 outputDir 下生成带日期戳的报告文件，返回文件路径
func WriteHTML(outputDir string, data Data) (string, error) {
	if data.Date == "" {
		data.Date = time.Now().Format("2006-01-02")
	}

	t, err := template.New("report").Parse(htmlTpl)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(outputDir, fmt.Sprintf("report-%s.html", data.Date))

	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := t.Execute(f, data); err != nil {
		return "", err
	}
	return path, nil
}

const htmlTpl = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Search Lens | {{.SiteURL}}</title>
    <style>
        :root {
            --primary-color: #2563eb;
            --bg-color: #f8fafc;
            --card-bg: #ffffff;
            --text-main: #1e293b;
            --text-secondary: #64748b;
            --border-color: #e2e8f0;
            --accent-red: #ef4444;
            --accent-green: #22c55e;
            --accent-yellow: #eab308;
        }
        body {
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, "Helvetica Neue", Arial, sans-serif;
            background-color: var(--bg-color);
            color: var(--text-main);
            line-height: 1.6;
            margin: 0;
            padding: 20px;
        }
        .container { max-width: 800px; margin: 0 auto; }
        header { text-align: center; margin-bottom: 40px; padding: 20px 0; }
        h1 { color: var(--primary-color); margin-bottom: 4px; }
        .subtitle { color: var(--text-secondary); font-size: 0.9em; }
        .card {
            background: var(--card-bg);
            border: 1px solid var(--border-color);
            border-radius: 12px;
            padding: 20px 24px;
            margin-bottom: 20px;
        }
        .card h2 { margin-top: 0; font-size: 1.1em; color: var(--primary-color); }
        .metrics { display: flex; gap: 24px; flex-wrap: wrap; }
        .metric .value { font-size: 1.4em; font-weight: 600; }
        .metric .label { color: var(--text-secondary); font-size: 0.8em; }
        ul { padding-left: 20px; }
        .tag {
            display: inline-block;
            padding: 1px 8px;
            border-radius: 999px;
            font-size: 0.75em;
            border: 1px solid var(--border-color);
            color: var(--text-secondary);
            margin-right: 6px;
        }
        .priority-critical, .priority-high { border-color: var(--accent-red); color: var(--accent-red); }
        .priority-medium { border-color: var(--accent-yellow); color: var(--accent-yellow); }
        .priority-low { border-color: var(--accent-green); color: var(--accent-green); }
        .implementation { white-space: pre-line; color: var(--text-secondary); font-size: 0.9em; }
        .footer { text-align: center; color: var(--text-secondary); font-size: 0.8em; margin-top: 40px; }
    </style>
</head>
<body>
    <div class="container">
        <header>
            <h1>Search Performance Report</h1>
            <div class="subtitle">{{.SiteURL}} · {{.Date}}{{if .ModelName}} · {{.ModelName}}{{end}}</div>
        </header>

        <div class="card">
            <h2>Key Metrics</h2>
            <div class="metrics">
                <div class="metric"><div class="value">{{.Performance.TotalClicks}}</div><div class="label">Clicks</div></div>
                <div class="metric"><div class="value">{{.Performance.TotalImpressions}}</div><div class="label">Impressions</div></div>
                <div class="metric"><div class="value">{{printf "%.2f" .Performance.AvgCTR}}%</div><div class="label">Avg CTR ({{.Performance.CTRQuality}})</div></div>
                <div class="metric"><div class="value">{{printf "%.1f" .Performance.AvgPosition}}</div><div class="label">Avg Position ({{.Performance.PositionQuality}})</div></div>
            </div>
        </div>

        <div class="card">
            <h2>Executive Summary</h2>
            <p>{{.Analysis.Summary}}</p>
        </div>

        <div class="card">
            <h2>Performance Trends</h2>
            <ul>{{range .Analysis.Trends}}<li>{{.}}</li>{{end}}</ul>
        </div>

        <div class="card">
            <h2>Strategic Opportunities</h2>
            <ul>{{range .Analysis.Opportunities}}<li>{{.}}</li>{{end}}</ul>
        </div>

        <div class="card">
            <h2>Critical Issues</h2>
            <ul>{{range .Analysis.Issues}}<li>{{.}}</li>{{end}}</ul>
        </div>

        <div class="card">
            <h2>Recommendations</h2>
            <ul>{{range .Analysis.Recommendations}}<li>{{.}}</li>{{end}}</ul>
        </div>

        {{range .Suggestions}}
        <div class="card">
            <h2>{{.Title}}</h2>
            <div>
                <span class="tag">{{.Category}}</span>
                <span class="tag priority-{{.Priority}}">priority: {{.Priority}}</span>
                <span class="tag">impact: {{.Impact}}</span>
            </div>
            <p>{{.Description}}</p>
            {{if .Implementation}}<div class="implementation">{{.Implementation}}</div>{{end}}
        </div>
        {{end}}

        <div class="footer">
            Generated by Search Lens
        </div>
    </div>
</body>
</html>`
