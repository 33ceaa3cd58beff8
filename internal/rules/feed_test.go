package rules

import (
	"context"
	"runtime"
	"sync"
	"testing"

	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

type capturingDocStore struct {
	mu   sync.Mutex
	docs map[string]*model.RuleDocument
}

func newCapturingDocStore() *capturingDocStore {
	return &capturingDocStore{docs: make(map[string]*model.RuleDocument)}
}

func (s *capturingDocStore) Index(ctx context.Context, doc *model.RuleDocument) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = doc
	return nil
}

func (s *capturingDocStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

func (s *capturingDocStore) Query(ctx context.Context, q *services.RetrievalQuery) (*services.RetrievalResult, error) {
	return &services.RetrievalResult{}, nil
}

func TestFeedRunIndexesActiveRules(t *testing.T) {
	builder, _ := newTestBuilder(t)
	store := NewMemoryRuleStore()
	docs := newCapturingDocStore()

	active := validBlockRule("active rule")
	active.IsActive = true
	if _, err := store.CreateRule(active); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}

	inactive := validBlockRule("inactive rule")
	if _, err := store.CreateRule(inactive); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}

	feed, err := NewFeed(store, builder, docs, 4)
	if err != nil {
		t.Fatalf("NewFeed failed: %v", err)
	}
	defer feed.Release()

	summary, err := feed.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Total != 1 || summary.Indexed != 1 {
		t.Errorf("Expected 1 active rule indexed, got %+v", summary)
	}
	if len(docs.docs) != 1 {
		t.Errorf("Expected 1 document in store, got %d", len(docs.docs))
	}
}

func TestNewFeedDefaultsWorkersToHostCPUs(t *testing.T) {
	builder, _ := newTestBuilder(t)

	feed, err := NewFeed(NewMemoryRuleStore(), builder, newCapturingDocStore(), 0)
	if err != nil {
		t.Fatalf("NewFeed failed: %v", err)
	}
	defer feed.Release()

	if got := feed.pool.Cap(); got != runtime.NumCPU() {
		t.Errorf("Expected %d workers, got %d", runtime.NumCPU(), got)
	}
}

func TestFeedRunSkipsRulesWithoutCategoryPaths(t *testing.T) {
	builder, _ := newTestBuilder(t)
	store := NewMemoryRuleStore()
	docs := newCapturingDocStore()

	rule := validBlockRule("ghost categories")
	rule.IsActive = true
	rule.CategoryIDs = []string{"ghostCategory"}
	if _, err := store.CreateRule(rule); err != nil {
		t.Fatalf("CreateRule failed: %v", err)
	}

	feed, err := NewFeed(store, builder, docs, 2)
	if err != nil {
		t.Fatalf("NewFeed failed: %v", err)
	}
	defer feed.Release()

	summary, err := feed.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Skipped != 1 || summary.Indexed != 0 {
		t.Errorf("Expected the rule to be skipped, got %+v", summary)
	}
	if len(docs.docs) != 0 {
		t.Errorf("Expected no documents in store, got %d", len(docs.docs))
	}
}

func TestFeedRunManyRules(t *testing.T) {
	builder, _ := newTestBuilder(t)
	store := NewMemoryRuleStore()
	docs := newCapturingDocStore()

	for i := 0; i < 50; i++ {
		rule := validBlockRule("bulk rule")
		rule.IsActive = true
		if _, err := store.CreateRule(rule); err != nil {
			t.Fatalf("CreateRule failed: %v", err)
		}
	}

	feed, err := NewFeed(store, builder, docs, 8)
	if err != nil {
		t.Fatalf("NewFeed failed: %v", err)
	}
	defer feed.Release()

	summary, err := feed.Run(context.Background())
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if summary.Indexed != 50 || summary.Failed != 0 {
		t.Errorf("Expected all 50 rules indexed, got %+v", summary)
	}
	if len(docs.docs) != 50 {
		t.Errorf("Expected 50 documents in store, got %d", len(docs.docs))
	}
}
