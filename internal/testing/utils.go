// Package testing provides utilities and helpers for testing the rule
// engine.
package testing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/merchstack/rule-engine/config"
	"github.com/merchstack/rule-engine/internal/engine"
	"github.com/merchstack/rule-engine/internal/registry"
	"github.com/merchstack/rule-engine/internal/rules"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/store"
)

// TestEnv bundles the engine with the collaborators tests need to reach
// into: the registry for seeding entities and the document store for
// asserting on compiled documents.
type TestEnv struct {
	Engine   *engine.Engine
	Registry *registry.Registry
	Docs     *store.MemoryDocumentStore
	Rules    rules.Store
}

// NewTestEnv creates an engine over in-memory collaborators, seeded with a
// minimal taxonomy: one catalog ("outdoorCatalog" on "site1") and one
// regular category ("cat1" with search token "token1").
func NewTestEnv(t *testing.T) *TestEnv {
	t.Helper()

	reg, err := registry.OpenInMemory()
	require.NoError(t, err, "Failed to open in-memory registry")
	t.Cleanup(func() { reg.Close() })

	require.NoError(t, reg.PutCatalog(&model.Catalog{
		ID:      "outdoorCatalog",
		Name:    "Outdoor",
		SiteIDs: []string{"site1"},
	}))
	require.NoError(t, reg.PutCategory(&model.Category{
		ID:             "cat1",
		Type:           model.CategoryTypeRegular,
		ParentCatalogs: []string{"outdoorCatalog"},
		SearchTokens:   []string{"token1"},
	}))

	docs := store.NewMemoryDocumentStore()
	ruleStore := rules.NewMemoryRuleStore()
	return &TestEnv{
		Engine:   engine.New(config.DefaultSettings(), ruleStore, reg, docs, nil),
		Registry: reg,
		Docs:     docs,
		Rules:    ruleStore,
	}
}

// MakeBlockRule builds a valid active block rule for tests.
func MakeBlockRule(name string, blocked ...string) model.Rule {
	return model.Rule{
		Name:            name,
		RuleType:        model.RuleTypeBlock,
		Target:          model.TargetAllPages,
		IsActive:        true,
		BlockedProducts: blocked,
	}
}

// MakeBoostRule builds a valid active boost rule for tests.
func MakeBoostRule(name, query string, boosted ...string) model.Rule {
	return model.Rule{
		Name:            name,
		RuleType:        model.RuleTypeBoost,
		Target:          model.TargetSearchPages,
		Query:           query,
		IsActive:        true,
		BoostedProducts: boosted,
	}
}

// MustCreateRule creates a rule through the engine and fails the test on
// error.
func (env *TestEnv) MustCreateRule(t *testing.T, rule model.Rule) model.Rule {
	t.Helper()
	created, err := env.Engine.CreateRule(context.Background(), rule)
	require.NoError(t, err, "Failed to create rule %q", rule.Name)
	return created
}

// AssertDocumentCount checks the number of compiled documents in the store.
func (env *TestEnv) AssertDocumentCount(t *testing.T, want int) {
	t.Helper()
	assert.Equal(t, want, env.Docs.Len(), "compiled document count")
}
