package rules

import (
	"context"
	"errors"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"github.com/panjf2000/ants/v2"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

// FeedSummary reports the outcome of a full recompilation run.
type FeedSummary struct {
	Total   int `json:"total"`
	Indexed int `json:"indexed"`
	Skipped int `json:"skipped"` // rules whose category scope expanded to nothing
	Failed  int `json:"failed"`
}

// Feed recompiles every active rule into its document and pushes the
// documents to the retrieval store, fanning the compile work out over a
// worker pool. Per-rule failures are logged and counted; they never abort
// the run.
type Feed struct {
	store   Store
	builder *DocumentBuilder
	docs    services.DocumentStore
	pool    *ants.Pool
}

// NewFeed creates a feed with the given number of compile workers. Workers
// below one select one worker per host CPU.
func NewFeed(store Store, builder *DocumentBuilder, docs services.DocumentStore, workers int) (*Feed, error) {
	if workers < 1 {
		workers = runtime.NumCPU()
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, err
	}
	return &Feed{store: store, builder: builder, docs: docs, pool: pool}, nil
}

// Release shuts the worker pool down.
func (f *Feed) Release() {
	f.pool.Release()
}

// Run compiles and indexes all active rules. The returned summary counts
// every rule exactly once.
func (f *Feed) Run(ctx context.Context) (FeedSummary, error) {
	active := true
	ruleList, err := f.store.ListRules("", &active)
	if err != nil {
		return FeedSummary{}, err
	}

	var (
		wg      sync.WaitGroup
		indexed atomic.Int64
		skipped atomic.Int64
		failed  atomic.Int64
	)

	for _, rule := range ruleList {
		rule := rule
		wg.Add(1)
		err := f.pool.Submit(func() {
			defer wg.Done()
			f.feedRule(ctx, &rule, &indexed, &skipped, &failed)
		})
		if err != nil {
			wg.Done()
			failed.Add(1)
			log.Printf("Failed to submit rule %s for compilation: %v", rule.ID, err)
		}
	}
	wg.Wait()

	summary := FeedSummary{
		Total:   len(ruleList),
		Indexed: int(indexed.Load()),
		Skipped: int(skipped.Load()),
		Failed:  int(failed.Load()),
	}
	log.Printf("Rule feed finished: %d total, %d indexed, %d skipped, %d failed",
		summary.Total, summary.Indexed, summary.Skipped, summary.Failed)
	return summary, nil
}

func (f *Feed) feedRule(ctx context.Context, rule *model.Rule, indexed, skipped, failed *atomic.Int64) {
	doc, err := f.builder.Build(rule)
	if err != nil {
		if errors.Is(err, enginerrors.ErrNoCategoryPaths) {
			log.Printf("Skipping rule %s: no valid category data associated to it", rule.ID)
			skipped.Add(1)
			return
		}
		log.Printf("Failed to compile rule %s: %v", rule.ID, err)
		failed.Add(1)
		return
	}

	if err := f.docs.Index(ctx, doc); err != nil {
		log.Printf("Failed to index rule %s: %v", rule.ID, err)
		failed.Add(1)
		return
	}
	indexed.Add(1)
}
