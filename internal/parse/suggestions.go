package parse

import (
	"strings"

	"github.com/searchlens/searchlens/internal/model"
)

// 单次生成最多保留的建议条数
const maxSuggestions = 12

// 建议字段前缀
const (
	prefixCategory       = "CATEGORY:"
	prefixTitle          = "TITLE:"
	prefixDescription    = "DESCRIPTION:"
	prefixPriority       = "PRIORITY:"
	prefixImpact         = "IMPACT:"
	prefixImplementation = "IMPLEMENTATION:"
	prefixMetrics        = "SUCCESS METRICS:"
)

// captureMode 多行捕获状态
type captureMode int

const (
	captureNone captureMode = iota
	captureDescription
	captureImplementation
)

// Suggestions 解析建议文本。逐行状态机：
// CATEGORY: 行开启新建议并提交上一条（仅当其 TITLE 非空）；
// DESCRIPTION/IMPLEMENTATION 进入多行捕获，直到下一个已知字段前缀。
// 解析从不失败，无法识别的行按当前捕获状态处理或直接跳过。
func Suggestions(text string) []model.Suggestion {
	var (
		out     []model.Suggestion
		cur     *model.Suggestion
		mode    = captureNone
		descBuf []string
		implBuf []string
	)

	flushCapture := func() {
		if cur == nil {
			return
		}
		switch mode {
		case captureDescription:
			cur.Description = strings.Join(descBuf, " ")
		case captureImplementation:
			cur.Implementation = strings.Join(implBuf, "\n")
		}
		mode = captureNone
		descBuf = nil
		implBuf = nil
	}

	emit := func() {
		flushCapture()
		if cur != nil && cur.Title != "" {
			out = append(out, *cur)
		}
		cur = nil
	}

	for _, raw := range strings.Split(text, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, prefixCategory):
			emit()
			cur = &model.Suggestion{
				Category: strings.TrimSpace(strings.TrimPrefix(line, prefixCategory)),
				Priority: "medium",
				Impact:   "medium",
			}

		case cur == nil:
			// 还没遇到 CATEGORY: 之前的内容全部忽略

		case strings.HasPrefix(line, prefixTitle) && mode != captureImplementation:
			flushCapture()
			cur.Title = strings.TrimSpace(strings.TrimPrefix(line, prefixTitle))

		case strings.HasPrefix(line, prefixDescription) && mode != captureImplementation:
			flushCapture()
			mode = captureDescription
			if rest := strings.TrimSpace(strings.TrimPrefix(line, prefixDescription)); rest != "" {
				descBuf = append(descBuf, rest)
			}

		case strings.HasPrefix(line, prefixPriority) && mode != captureImplementation:
			flushCapture()
			cur.Priority = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, prefixPriority)))

		case strings.HasPrefix(line, prefixImpact) && mode != captureImplementation:
			flushCapture()
			cur.Impact = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(line, prefixImpact)))

		case strings.HasPrefix(line, prefixImplementation):
			flushCapture()
			mode = captureImplementation
			if rest := strings.TrimSpace(strings.TrimPrefix(line, prefixImplementation)); rest != "" {
				implBuf = append(implBuf, rest)
			}

		case strings.HasPrefix(line, prefixMetrics):
			// 成功指标并入实施步骤之后终止捕获，内容本身不单独建模
			flushCapture()

		case mode == captureDescription:
			descBuf = append(descBuf, line)

		case mode == captureImplementation:
			implBuf = append(implBuf, line)
		}
	}
	emit()

	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
