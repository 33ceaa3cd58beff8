// Package store provides the in-memory document store used by the dev
// server and integration-style tests. It evaluates structured retrieval
// queries directly against compiled rule documents; production deployments
// substitute the real engine client behind the same interface.
package store

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/merchstack/rule-engine/internal/persistence"
	"github.com/merchstack/rule-engine/model"
	"github.com/merchstack/rule-engine/services"
)

// MemoryDocumentStore keeps rule documents keyed by document id. Index
// replaces any previous document with the same id, matching the
// replace-on-save compilation contract.
type MemoryDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]model.RuleDocument
}

// NewMemoryDocumentStore creates an empty store.
func NewMemoryDocumentStore() *MemoryDocumentStore {
	return &MemoryDocumentStore{docs: make(map[string]model.RuleDocument)}
}

// Index stores a copy of doc, replacing any document with the same id.
func (s *MemoryDocumentStore) Index(ctx context.Context, doc *model.RuleDocument) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if doc == nil || doc.ID == "" {
		return fmt.Errorf("cannot index a document without an id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs[doc.ID] = *doc
	return nil
}

// Delete removes the document with the given id. Deleting an absent id is
// not an error.
func (s *MemoryDocumentStore) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.docs, id)
	return nil
}

// Len returns the number of indexed documents.
func (s *MemoryDocumentStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}

type scoredDoc struct {
	doc   model.RuleDocument
	score float64
}

// Query evaluates every filter clause against every document, orders the
// matches by the query's sort spec and returns the page at Start/Rows
// together with the total match count. A literal query match scores 2 and a
// wildcard match scores 1, mirroring the engine's boosted-query retrieval.
func (s *MemoryDocumentStore) Query(ctx context.Context, q *services.RetrievalQuery) (*services.RetrievalResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	now := time.Now()

	s.mu.RLock()
	matched := make([]scoredDoc, 0, len(s.docs))
	for _, doc := range s.docs {
		d := doc
		if matchesAll(&d, q.Filters, now) {
			matched = append(matched, scoredDoc{doc: d, score: matchScore(&d, q.Filters)})
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, func(i, j int) bool {
		return lessBySorts(&matched[i], &matched[j], q.Sorts)
	})

	total := len(matched)
	start := q.Start
	if start < 0 {
		start = 0
	}
	if start > total {
		start = total
	}
	end := total
	if q.Rows > 0 && start+q.Rows < end {
		end = start + q.Rows
	}

	page := make([]*model.RuleDocument, 0, end-start)
	for i := start; i < end; i++ {
		d := matched[i].doc
		page = append(page, &d)
	}
	return &services.RetrievalResult{Documents: page, Total: total}, nil
}

func matchesAll(doc *model.RuleDocument, filters []services.FilterClause, now time.Time) bool {
	for _, f := range filters {
		if !f.Matches(doc, now) {
			return false
		}
	}
	return true
}

func matchScore(doc *model.RuleDocument, filters []services.FilterClause) float64 {
	for _, f := range filters {
		if tc, ok := f.(services.TargetClause); ok {
			if tc.IsSearch && doc.Query != model.Wildcard {
				return 2
			}
			return 1
		}
	}
	return 1
}

func lessBySorts(a, b *scoredDoc, sorts []services.SortClause) bool {
	for _, s := range sorts {
		var c int
		switch s.Field {
		case "sortPriority":
			c = a.doc.SortPriority - b.doc.SortPriority
		case "score":
			switch {
			case a.score < b.score:
				c = -1
			case a.score > b.score:
				c = 1
			}
		case "id":
			c = strings.Compare(a.doc.ID, b.doc.ID)
		default:
			continue
		}
		if s.Order == services.SortDesc {
			c = -c
		}
		if c != 0 {
			return c < 0
		}
	}
	return false
}

// storeSnapshot is the gob-serialized form of the store, excluding the
// mutex.
type storeSnapshot struct {
	Docs map[string]model.RuleDocument
}

// GobEncode implements gob.GobEncoder.
func (s *MemoryDocumentStore) GobEncode() ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(storeSnapshot{Docs: s.docs}); err != nil {
		return nil, fmt.Errorf("failed to gob encode document store: %w", err)
	}
	return buf.Bytes(), nil
}

// GobDecode implements gob.GobDecoder.
func (s *MemoryDocumentStore) GobDecode(data []byte) error {
	var snap storeSnapshot
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&snap); err != nil {
		return fmt.Errorf("failed to gob decode document store: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.docs = snap.Docs
	if s.docs == nil {
		s.docs = make(map[string]model.RuleDocument)
	}
	return nil
}

// Save writes an atomic snapshot of the store to filePath.
func (s *MemoryDocumentStore) Save(filePath string) error {
	return persistence.SaveSnapshot(filePath, s)
}

// Load replaces the store contents from the snapshot at filePath. A missing
// snapshot leaves the store empty and is not an error.
func (s *MemoryDocumentStore) Load(filePath string) error {
	err := persistence.LoadSnapshot(filePath, s)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
