// Package engine wires the rule store, the document builder, the planner
// and the applier into the two top-level flows: compile-on-save for rule
// authoring, and retrieve-and-apply for incoming search requests.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/merchstack/rule-engine/config"
	"github.com/merchstack/rule-engine/internal/applier"
	"github.com/merchstack/rule-engine/internal/boost"
	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/internal/planner"
	"github.com/merchstack/rule-engine/internal/rules"
	"github.com/merchstack/rule-engine/internal/taxonomy"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

// Registry is the combined lookup surface the engine needs: taxonomy
// entities for planning and compilation, facet definitions for apply time.
type Registry interface {
	services.TaxonomyRegistry
	services.FacetRegistry
}

// Engine is the orchestrator. All rule mutations go through it so the
// document store never drifts from the authored rules.
type Engine struct {
	settings config.Settings
	rules    rules.Store
	builder  *rules.DocumentBuilder
	docs     services.DocumentStore
	registry Registry
	planner  *planner.Planner
	applier  *applier.Applier
	boosts   *boost.MappingCache
}

// New creates an engine. boosts may be nil when no boost-mapping source is
// configured.
func New(settings config.Settings, ruleStore rules.Store, reg Registry, docs services.DocumentStore, boosts *boost.MappingCache) *Engine {
	expander := taxonomy.NewExpander(reg, settings.CategorySeparator)
	return &Engine{
		settings: settings,
		rules:    ruleStore,
		builder:  rules.NewDocumentBuilder(reg, expander),
		docs:     docs,
		registry: reg,
		planner:  planner.New(reg, settings.RetrievalRows),
		applier:  applier.New(reg),
		boosts:   boosts,
	}
}

// GetRule returns one authored rule.
func (e *Engine) GetRule(ruleID string) (model.Rule, error) {
	return e.rules.GetRule(ruleID)
}

// ListRules returns authored rules, optionally filtered by type and active
// flag.
func (e *Engine) ListRules(ruleType model.RuleType, isActive *bool) ([]model.Rule, error) {
	return e.rules.ListRules(ruleType, isActive)
}

// CreateRule persists a new rule and compiles it into the document store.
func (e *Engine) CreateRule(ctx context.Context, rule model.Rule) (model.Rule, error) {
	created, err := e.rules.CreateRule(rule)
	if err != nil {
		return model.Rule{}, err
	}
	if err := e.syncDocument(ctx, &created); err != nil {
		return model.Rule{}, err
	}
	return created, nil
}

// UpdateRule persists changes to a rule and replaces its compiled document.
func (e *Engine) UpdateRule(ctx context.Context, rule model.Rule) (model.Rule, error) {
	if err := e.rules.UpdateRule(rule); err != nil {
		return model.Rule{}, err
	}
	updated, err := e.rules.GetRule(rule.ID)
	if err != nil {
		return model.Rule{}, err
	}
	if err := e.syncDocument(ctx, &updated); err != nil {
		return model.Rule{}, err
	}
	return updated, nil
}

// DeleteRule removes a rule and its compiled document.
func (e *Engine) DeleteRule(ctx context.Context, ruleID string) error {
	if err := e.rules.DeleteRule(ruleID); err != nil {
		return err
	}
	return e.docs.Delete(ctx, ruleID)
}

// SetRuleActive toggles a rule's active flag. Deactivating removes the
// compiled document; reactivating compiles it again.
func (e *Engine) SetRuleActive(ctx context.Context, ruleID string, active bool) (model.Rule, error) {
	rule, err := e.rules.GetRule(ruleID)
	if err != nil {
		return model.Rule{}, err
	}
	if rule.IsActive == active {
		return rule, nil
	}
	rule.IsActive = active
	return e.UpdateRule(ctx, rule)
}

// syncDocument brings the document store in line with one saved rule.
// Inactive rules and rules whose category scope expands to nothing carry no
// document.
func (e *Engine) syncDocument(ctx context.Context, rule *model.Rule) error {
	if !rule.IsActive {
		return e.docs.Delete(ctx, rule.ID)
	}
	doc, err := e.builder.Build(rule)
	if err != nil {
		if errors.Is(err, enginerrors.ErrNoCategoryPaths) {
			log.Printf("Rule %s has no resolvable category paths; removing its document", rule.ID)
			return e.docs.Delete(ctx, rule.ID)
		}
		return fmt.Errorf("failed to compile rule %s: %w", rule.ID, err)
	}
	return e.docs.Index(ctx, doc)
}

// Reindex recompiles every active rule into the document store.
func (e *Engine) Reindex(ctx context.Context) (rules.FeedSummary, error) {
	feed, err := rules.NewFeed(e.rules, e.builder, e.docs, e.settings.FeedWorkers)
	if err != nil {
		return rules.FeedSummary{}, err
	}
	defer feed.Release()
	return feed.Run(ctx)
}

// SearchParams is the page context of one incoming search request.
// CategoryID, when set, is used to detect rule-driven virtual category
// pages.
type SearchParams struct {
	planner.Request
	CategoryID string
}

// ApplyRules retrieves the rule documents applicable to the request's page
// context and merges them into the outgoing search request. A context
// without a catalog id applies no rules. Store failures follow the
// configured policy: fail the request, or log and run the search without
// rules.
func (e *Engine) ApplyRules(ctx context.Context, params SearchParams, req *services.SearchRequest) (*applier.Result, error) {
	query, err := e.planner.Plan(params.Request)
	if err != nil {
		return nil, err
	}
	if query == nil {
		return &applier.Result{}, nil
	}

	docs, err := e.retrieveAll(ctx, query)
	if err != nil {
		if e.settings.StoreFailurePolicy == config.StoreFailureDegrade {
			log.Printf("Rule retrieval failed, continuing without rules: %v", err)
			return &applier.Result{}, nil
		}
		return nil, enginerrors.NewStoreUnavailableError(err)
	}

	actx := applier.Context{
		Query:        strings.ToLower(params.Query),
		CategoryPath: params.CategoryFilter,
		IsRuleBased:  e.isRuleBasedPage(params.CategoryID),
	}
	return e.applier.Apply(docs, actx, req), nil
}

// retrieveAll pages through the store until every matching document is
// loaded, so rules past the first page still apply.
func (e *Engine) retrieveAll(ctx context.Context, query *services.RetrievalQuery) ([]*model.RuleDocument, error) {
	var all []*model.RuleDocument
	for {
		res, err := e.docs.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		all = append(all, res.Documents...)
		if len(all) >= res.Total || len(res.Documents) == 0 {
			return all, nil
		}
		query.Start += query.Rows
	}
}

func (e *Engine) isRuleBasedPage(categoryID string) bool {
	if categoryID == "" {
		return false
	}
	category, err := e.registry.Category(categoryID)
	if err != nil {
		log.Printf("Failed to resolve category %s: %v", categoryID, err)
		return false
	}
	return category.Type == model.CategoryTypeRuleBased
}

// BoostMapping returns the product boost mapping for one ranking rule's
// boost id, served from the cache.
func (e *Engine) BoostMapping(ctx context.Context, boostID string) (map[string]float64, error) {
	if e.boosts == nil {
		return nil, enginerrors.NewValidationError("boost_id", "no boost mapping source is configured")
	}
	return e.boosts.Get(ctx, boostID)
}

// InvalidateBoostMapping drops one cached boost mapping so the next read
// refetches it.
func (e *Engine) InvalidateBoostMapping(boostID string) {
	if e.boosts != nil {
		e.boosts.Invalidate(boostID)
	}
}
