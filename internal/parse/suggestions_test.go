package parse

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const threeSuggestions = `
Here are the suggestions you asked for:

CATEGORY: Technical SEO
TITLE: Fix crawl budget waste on faceted navigation
DESCRIPTION: Faceted URLs consume a large share of crawl budget.
Blocking them will concentrate crawling on canonical pages.
PRIORITY: Critical
IMPACT: High
IMPLEMENTATION: Audit crawl logs for parameter URLs
Add disallow rules to robots.txt
Verify index coverage after two weeks
SUCCESS METRICS: crawl requests per canonical page, index coverage

CATEGORY: Content Strategy
TITLE: Build a topic cluster around the best performing guide
DESCRIPTION: One single sentence description.
PRIORITY: high
IMPACT: transformational
IMPLEMENTATION: Outline subtopics and internal links

CATEGORY: User Experience
TITLE: Reduce mobile layout shift on landing pages
PRIORITY: medium
IMPACT: medium
`

func TestSuggestionsWellFormed(t *testing.T) {
	got := Suggestions(threeSuggestions)
	require.Len(t, got, 3)

	first := got[0]
	assert.Equal(t, "Technical SEO", first.Category)
	assert.Equal(t, "Fix crawl budget waste on faceted navigation", first.Title)
	// 多行描述用空格拼接
	assert.Equal(t, "Faceted URLs consume a large share of crawl budget. Blocking them will concentrate crawling on canonical pages.", first.Description)
	assert.Equal(t, "critical", first.Priority)
	assert.Equal(t, "high", first.Impact)
	// 多行实施步骤保留换行
	assert.Equal(t, "Audit crawl logs for parameter URLs\nAdd disallow rules to robots.txt\nVerify index coverage after two weeks", first.Implementation)

	assert.Equal(t, "Build a topic cluster around the best performing guide", got[1].Title)
	assert.Equal(t, "transformational", got[1].Impact)
	assert.Equal(t, "Reduce mobile layout shift on landing pages", got[2].Title)
}

func TestSuggestionsMissingTitleDropped(t *testing.T) {
	text := `
CATEGORY: Technical SEO
DESCRIPTION: A block without a title must be discarded silently.
PRIORITY: high

CATEGORY: Content Strategy
TITLE: Keep this one
`
	got := Suggestions(text)
	require.Len(t, got, 1)
	assert.Equal(t, "Keep this one", got[0].Title)
}

func TestSuggestionsDefaults(t *testing.T) {
	got := Suggestions("CATEGORY: SEO\nTITLE: Only title and category present")
	require.Len(t, got, 1)
	assert.Equal(t, "medium", got[0].Priority)
	assert.Equal(t, "medium", got[0].Impact)
	assert.Empty(t, got[0].Description)
}

func TestSuggestionsCap(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 20; i++ {
		fmt.Fprintf(&sb, "CATEGORY: SEO\nTITLE: Suggestion number %d\n\n", i)
	}
	got := Suggestions(sb.String())
	require.Len(t, got, maxSuggestions)
	// 保留最早生成的 12 条，顺序不变
	assert.Equal(t, "Suggestion number 0", got[0].Title)
	assert.Equal(t, "Suggestion number 11", got[11].Title)
}

func TestSuggestionsEmptyInput(t *testing.T) {
	assert.Empty(t, Suggestions(""))
	assert.Empty(t, Suggestions("no recognizable field prefixes anywhere"))
}

func TestSuggestionsImplementationSwallowsFieldLikeLines(t *testing.T) {
	// 实施步骤捕获只被 SUCCESS METRICS 或新的 CATEGORY 终止
	text := `CATEGORY: SEO
TITLE: Multi step plan
IMPLEMENTATION: Step one
PRIORITY: not a real field here
Step two
SUCCESS METRICS: ignored
`
	got := Suggestions(text)
	require.Len(t, got, 1)
	assert.Equal(t, "Step one\nPRIORITY: not a real field here\nStep two", got[0].Implementation)
	assert.Equal(t, "medium", got[0].Priority)
}
