// Package storage 会话内数据存放与可选的历史落库。
package storage

import (
	"sync"
	"time"

	"github.com/searchlens/searchlens/internal/model"
)

// SessionStore 持有当前分析会话的数据：最近一次拉取的记录集合
// 与最近一次分析的结果。每次拉取整体替换旧数据。
type SessionStore struct {
	mu          sync.RWMutex
	records     []model.Record
	fetchedAt   time.Time
	analysis    *model.AnalysisResult
	suggestions []model.Suggestion
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

// SetRecords 用新拉取的数据替换当前记录集合
func (s *SessionStore) SetRecords(records []model.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = records
	s.fetchedAt = time.Now()
	// 旧结果对应旧数据，一并作废
	s.analysis = nil
	s.suggestions = nil
}

// Records 返回当前记录集合的副本
func (s *SessionStore) Records() []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Record, len(s.records))
	copy(out, s.records)
	return out
}

// FetchedAt 最近一次拉取时间，未拉取过为零值
func (s *SessionStore) FetchedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fetchedAt
}

// SetResults 记录最近一次分析输出
func (s *SessionStore) SetResults(analysis model.AnalysisResult, suggestions []model.Suggestion) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysis = &analysis
	s.suggestions = suggestions
}

// Results 最近一次分析输出，第二个返回值表示是否存在
func (s *SessionStore) Results() (model.AnalysisResult, []model.Suggestion, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.analysis == nil {
		return model.AnalysisResult{}, nil, false
	}
	suggestions := make([]model.Suggestion, len(s.suggestions))
	copy(suggestions, s.suggestions)
	return *s.analysis, suggestions, true
}
