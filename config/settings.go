// Package config provides configuration for the merchandising rule engine.
package config

import (
	"fmt"
	"time"
)

// StoreFailurePolicy decides what happens to the enclosing search request
// when rule retrieval fails. Block and redirect semantics are correctness
// critical, so failing the request is the default; degrading runs the search
// without rules.
type StoreFailurePolicy string

const (
	StoreFailureFail    StoreFailurePolicy = "fail"
	StoreFailureDegrade StoreFailurePolicy = "degrade"
)

// Settings contains all configuration options for the rule engine.
type Settings struct {
	// RetrievalRows is the page size used when loading rule documents from
	// the document store.
	RetrievalRows int `json:"retrieval_rows"`

	// StoreFailurePolicy controls search behavior when the document store is
	// unavailable.
	StoreFailurePolicy StoreFailurePolicy `json:"store_failure_policy"`

	// CategorySeparator is the hierarchy separator used in category paths
	// and search tokens.
	CategorySeparator string `json:"category_separator"`

	// BoostMappingTTL bounds how long a fetched boost mapping is reused by
	// the scoring cache before it may be refreshed.
	BoostMappingTTL time.Duration `json:"boost_mapping_ttl"`

	// RuleDataDir is where the authored-rule store persists its snapshot.
	RuleDataDir string `json:"rule_data_dir"`

	// RegistryDir is the directory of the taxonomy/facet registry database.
	// Empty selects an in-memory registry.
	RegistryDir string `json:"registry_dir"`

	// FeedWorkers is the worker pool size of the rule feed. Zero picks a
	// default based on the host.
	FeedWorkers int `json:"feed_workers"`
}

// DefaultSettings returns the settings used when nothing is configured.
func DefaultSettings() Settings {
	return Settings{
		RetrievalRows:      20,
		StoreFailurePolicy: StoreFailureFail,
		CategorySeparator:  ".",
		BoostMappingTTL:    10 * time.Minute,
		RuleDataDir:        "./rule_data",
	}
}

// Validate checks the settings for values the engine cannot run with.
func (s *Settings) Validate() error {
	if s.RetrievalRows <= 0 {
		return fmt.Errorf("retrieval_rows must be positive, got %d", s.RetrievalRows)
	}
	switch s.StoreFailurePolicy {
	case StoreFailureFail, StoreFailureDegrade:
	default:
		return fmt.Errorf("unknown store_failure_policy %q", s.StoreFailurePolicy)
	}
	if s.CategorySeparator == "" {
		return fmt.Errorf("category_separator must not be empty")
	}
	if s.FeedWorkers < 0 {
		return fmt.Errorf("feed_workers must not be negative, got %d", s.FeedWorkers)
	}
	return nil
}
