package rules

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/model"
)

// Store is the authored-rule repository. Rules are the editable entities;
// their compiled documents live in the document store and are replaced
// wholesale whenever a rule is saved.
type Store interface {
	GetRule(ruleID string) (model.Rule, error)
	CreateRule(rule model.Rule) (model.Rule, error)
	UpdateRule(rule model.Rule) error
	DeleteRule(ruleID string) error
	ListRules(ruleType model.RuleType, isActive *bool) ([]model.Rule, error)
}

// MemoryRuleStore is an in-memory implementation of the Store interface
type MemoryRuleStore struct {
	rules map[string]model.Rule
	mutex sync.RWMutex
}

// NewMemoryRuleStore creates a new in-memory rule store
func NewMemoryRuleStore() *MemoryRuleStore {
	return &MemoryRuleStore{
		rules: make(map[string]model.Rule),
	}
}

// GetRule retrieves a specific rule by ID
func (s *MemoryRuleStore) GetRule(ruleID string) (model.Rule, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rule, exists := s.rules[ruleID]
	if !exists {
		return model.Rule{}, enginerrors.NewRuleNotFoundError(ruleID)
	}

	return rule, nil
}

// CreateRule creates a new rule
func (s *MemoryRuleStore) CreateRule(rule model.Rule) (model.Rule, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	// Generate ID if not provided
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	if _, exists := s.rules[rule.ID]; exists {
		return model.Rule{}, fmt.Errorf("rule with ID %s already exists", rule.ID)
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := validateRule(rule); err != nil {
		return model.Rule{}, fmt.Errorf("invalid rule: %w", err)
	}

	s.rules[rule.ID] = rule
	return rule, nil
}

// UpdateRule updates an existing rule
func (s *MemoryRuleStore) UpdateRule(rule model.Rule) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.rules[rule.ID]
	if !exists {
		return enginerrors.NewRuleNotFoundError(rule.ID)
	}

	// Preserve creation timestamp
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now()

	if err := validateRule(rule); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	s.rules[rule.ID] = rule
	return nil
}

// DeleteRule deletes a rule
func (s *MemoryRuleStore) DeleteRule(ruleID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if _, exists := s.rules[ruleID]; !exists {
		return enginerrors.NewRuleNotFoundError(ruleID)
	}

	delete(s.rules, ruleID)
	return nil
}

// ListRules lists all rules with optional filtering by type and active
// status
func (s *MemoryRuleStore) ListRules(ruleType model.RuleType, isActive *bool) ([]model.Rule, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var rules []model.Rule
	for _, rule := range s.rules {
		if ruleType != "" && rule.RuleType != ruleType {
			continue
		}
		if isActive != nil && rule.IsActive != *isActive {
			continue
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// validateRule validates a rule's structure and type-specific payload
func validateRule(rule model.Rule) error {
	if rule.Name == "" {
		return enginerrors.NewValidationError("name", "rule name cannot be empty")
	}
	if !rule.RuleType.Valid() {
		return enginerrors.NewValidationError("rule_type", fmt.Sprintf("invalid rule type '%s'", rule.RuleType))
	}
	if !rule.Target.Valid() {
		return enginerrors.NewValidationError("target", fmt.Sprintf("invalid target '%s'", rule.Target))
	}
	if !rule.SubTarget.Valid() {
		return enginerrors.NewValidationError("sub_target", fmt.Sprintf("invalid sub target '%s'", rule.SubTarget))
	}
	if rule.StartDate != nil && rule.EndDate != nil && rule.EndDate.Before(*rule.StartDate) {
		return enginerrors.NewValidationError("end_date", "end date cannot precede start date")
	}

	switch rule.RuleType {
	case model.RuleTypeFacet:
		if len(rule.FacetIDs) == 0 {
			return enginerrors.NewValidationError("facet_ids", "facet rules must reference at least one facet")
		}
		if rule.CombineMode != "" && rule.CombineMode != model.CombineModeReplace && rule.CombineMode != model.CombineModeAppend {
			return enginerrors.NewValidationError("combine_mode", fmt.Sprintf("invalid combine mode '%s'", rule.CombineMode))
		}
	case model.RuleTypeBoost:
		if len(rule.BoostedProducts) == 0 {
			return enginerrors.NewValidationError("boosted_products", "boost rules must list at least one product")
		}
	case model.RuleTypeBlock:
		if len(rule.BlockedProducts) == 0 {
			return enginerrors.NewValidationError("blocked_products", "block rules must list at least one product")
		}
	case model.RuleTypeRedirect:
		if rule.RedirectURL == "" {
			return enginerrors.NewValidationError("redirect_url", "redirect rules must have a URL")
		}
	case model.RuleTypeRanking:
		if rule.BoostBy != model.BoostByFactor && rule.BoostBy != model.BoostByAttribute {
			return enginerrors.NewValidationError("boost_by", fmt.Sprintf("invalid boost strategy '%s'", rule.BoostBy))
		}
		for i, condition := range rule.Conditions {
			if condition.NestLevel < 1 {
				return enginerrors.NewValidationError("conditions", fmt.Sprintf("condition %d: nest level must be 1 or greater", i))
			}
			if i > 0 && condition.Joiner == "" {
				return enginerrors.NewValidationError("conditions", fmt.Sprintf("condition %d: missing joiner", i))
			}
		}
	}

	return nil
}

// FileRuleStore is a file-backed implementation of the Store interface. All
// rules live in memory; every mutation rewrites the data file and rolls the
// in-memory change back if persistence fails.
type FileRuleStore struct {
	rules        map[string]model.Rule
	mutex        sync.RWMutex
	dataFilePath string
}

// NewFileRuleStore creates a new file-based rule store
func NewFileRuleStore(dataDir string) *FileRuleStore {
	store := &FileRuleStore{
		rules:        make(map[string]model.Rule),
		dataFilePath: filepath.Join(dataDir, "rules.json"),
	}

	// Load existing rules data
	if err := store.loadData(); err != nil {
		// If file doesn't exist, that's fine - we'll create it on first save
		if !os.IsNotExist(err) {
			fmt.Printf("Warning: Failed to load rules data: %v\n", err)
		}
	}

	return store
}

// GetRule retrieves a specific rule by ID
func (s *FileRuleStore) GetRule(ruleID string) (model.Rule, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	rule, exists := s.rules[ruleID]
	if !exists {
		return model.Rule{}, enginerrors.NewRuleNotFoundError(ruleID)
	}

	return rule, nil
}

// CreateRule creates a new rule
func (s *FileRuleStore) CreateRule(rule model.Rule) (model.Rule, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}

	if _, exists := s.rules[rule.ID]; exists {
		return model.Rule{}, fmt.Errorf("rule with ID %s already exists", rule.ID)
	}

	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	if err := validateRule(rule); err != nil {
		return model.Rule{}, fmt.Errorf("invalid rule: %w", err)
	}

	s.rules[rule.ID] = rule

	if err := s.saveData(); err != nil {
		// Rollback the in-memory change
		delete(s.rules, rule.ID)
		return model.Rule{}, fmt.Errorf("failed to persist rule: %w", err)
	}

	return rule, nil
}

// UpdateRule updates an existing rule
func (s *FileRuleStore) UpdateRule(rule model.Rule) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	existing, exists := s.rules[rule.ID]
	if !exists {
		return enginerrors.NewRuleNotFoundError(rule.ID)
	}

	// Preserve creation timestamp
	rule.CreatedAt = existing.CreatedAt
	rule.UpdatedAt = time.Now()

	if err := validateRule(rule); err != nil {
		return fmt.Errorf("invalid rule: %w", err)
	}

	oldRule := s.rules[rule.ID]
	s.rules[rule.ID] = rule

	if err := s.saveData(); err != nil {
		// Rollback the in-memory change
		s.rules[rule.ID] = oldRule
		return fmt.Errorf("failed to persist rule update: %w", err)
	}

	return nil
}

// DeleteRule deletes a rule
func (s *FileRuleStore) DeleteRule(ruleID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rule, exists := s.rules[ruleID]
	if !exists {
		return enginerrors.NewRuleNotFoundError(ruleID)
	}

	delete(s.rules, ruleID)

	if err := s.saveData(); err != nil {
		// Rollback the in-memory change
		s.rules[ruleID] = rule
		return fmt.Errorf("failed to persist rule deletion: %w", err)
	}

	return nil
}

// ListRules lists all rules with optional filtering by type and active
// status
func (s *FileRuleStore) ListRules(ruleType model.RuleType, isActive *bool) ([]model.Rule, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var rules []model.Rule
	for _, rule := range s.rules {
		if ruleType != "" && rule.RuleType != ruleType {
			continue
		}
		if isActive != nil && rule.IsActive != *isActive {
			continue
		}
		rules = append(rules, rule)
	}

	return rules, nil
}

// loadData loads rules from the data file
func (s *FileRuleStore) loadData() error {
	dir := filepath.Dir(s.dataFilePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	data, err := os.ReadFile(s.dataFilePath)
	if err != nil {
		return err
	}

	var rules []model.Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return fmt.Errorf("failed to parse rules data: %w", err)
	}

	s.rules = make(map[string]model.Rule)
	for _, rule := range rules {
		s.rules[rule.ID] = rule
	}

	return nil
}

// saveData saves rules to the data file
func (s *FileRuleStore) saveData() error {
	var rules []model.Rule
	for _, rule := range s.rules {
		rules = append(rules, rule)
	}

	data, err := json.MarshalIndent(rules, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal rules data: %w", err)
	}

	dir := filepath.Dir(s.dataFilePath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create data directory: %w", err)
	}

	if err := os.WriteFile(s.dataFilePath, data, 0600); err != nil {
		return fmt.Errorf("failed to write rules data: %w", err)
	}

	return nil
}
