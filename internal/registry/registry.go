// Package registry persists the taxonomy entities (categories, catalogs,
// brands) and facet definitions rules are compiled against. Entries are
// stored as JSON values under type-prefixed keys in BadgerDB.
package registry

import (
	"encoding/json"
	"fmt"
	"log"
	"os"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"

	enginerrors "github.com/merchstack/rule-engine/internal/errors"
	"github.com/merchstack/rule-engine/model"
)

const (
	categoryPrefix = "category:"
	catalogPrefix  = "catalog:"
	brandPrefix    = "brand:"
	facetPrefix    = "facet:"
)

// Registry is a BadgerDB-backed store for taxonomy entities and facet
// definitions. The zero value is not usable; construct with Open or
// OpenInMemory.
type Registry struct {
	db *badger.DB
}

// badgerLogAdapter routes BadgerDB's internal logging through the standard
// logger. Info and debug output is dropped to keep startup quiet.
type badgerLogAdapter struct{}

var _ badger.Logger = badgerLogAdapter{}

func (badgerLogAdapter) Errorf(msg string, items ...any)   { log.Printf("badger: "+msg, items...) }
func (badgerLogAdapter) Warningf(msg string, items ...any) { log.Printf("badger: "+msg, items...) }
func (badgerLogAdapter) Infof(string, ...any)              {}
func (badgerLogAdapter) Debugf(string, ...any)             {}

// Open opens (creating if necessary) a registry database in the given
// directory.
func Open(dir string) (*Registry, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, err
		}
	} else if !info.IsDir() {
		return nil, fmt.Errorf("registry path %s is not a directory", dir)
	}

	opts := badger.DefaultOptions(dir)
	return open(opts)
}

// OpenInMemory opens a registry that keeps everything in memory. Intended
// for tests.
func OpenInMemory() (*Registry, error) {
	return open(badger.DefaultOptions("").WithInMemory(true))
}

func open(opts badger.Options) (*Registry, error) {
	opts.Logger = badgerLogAdapter{}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Registry{db: db}, nil
}

// Close closes the underlying database.
func (r *Registry) Close() error {
	return r.db.Close()
}

// PutCategory stores or replaces a category.
func (r *Registry) PutCategory(category *model.Category) error {
	return r.put(categoryPrefix+category.ID, category)
}

// PutCatalog stores or replaces a catalog.
func (r *Registry) PutCatalog(catalog *model.Catalog) error {
	return r.put(catalogPrefix+catalog.ID, catalog)
}

// PutBrand stores or replaces a brand.
func (r *Registry) PutBrand(brand *model.Brand) error {
	return r.put(brandPrefix+brand.ID, brand)
}

// PutFacet stores or replaces a facet definition.
func (r *Registry) PutFacet(facet *model.Facet) error {
	return r.put(facetPrefix+facet.ID, facet)
}

// Category returns the category with the given id, or ErrEntityNotFound.
func (r *Registry) Category(id string) (*model.Category, error) {
	var category model.Category
	if err := r.get(categoryPrefix+id, &category, "category", id); err != nil {
		return nil, err
	}
	return &category, nil
}

// Catalog returns the catalog with the given id, or ErrEntityNotFound.
func (r *Registry) Catalog(id string) (*model.Catalog, error) {
	var catalog model.Catalog
	if err := r.get(catalogPrefix+id, &catalog, "catalog", id); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// Brand returns the brand with the given id, or ErrEntityNotFound.
func (r *Registry) Brand(id string) (*model.Brand, error) {
	var brand model.Brand
	if err := r.get(brandPrefix+id, &brand, "brand", id); err != nil {
		return nil, err
	}
	return &brand, nil
}

// Facet returns the facet definition with the given id, or ErrFacetNotFound.
func (r *Registry) Facet(id string) (*model.Facet, error) {
	var facet model.Facet
	err := r.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(facetPrefix + id))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &facet)
		})
	})
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, enginerrors.NewFacetNotFoundError(id)
		}
		return nil, err
	}
	return &facet, nil
}

// DeleteCategory removes a category. Deleting an absent id is not an error.
func (r *Registry) DeleteCategory(id string) error {
	return r.delete(categoryPrefix + id)
}

// DeleteCatalog removes a catalog. Deleting an absent id is not an error.
func (r *Registry) DeleteCatalog(id string) error {
	return r.delete(catalogPrefix + id)
}

// DeleteBrand removes a brand. Deleting an absent id is not an error.
func (r *Registry) DeleteBrand(id string) error {
	return r.delete(brandPrefix + id)
}

// DeleteFacet removes a facet definition. Deleting an absent id is not an
// error.
func (r *Registry) DeleteFacet(id string) error {
	return r.delete(facetPrefix + id)
}

func (r *Registry) put(key string, value any) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	return r.db.Update(func(tx *badger.Txn) error {
		return tx.Set([]byte(key), data)
	})
}

func (r *Registry) get(key string, out any, kind, id string) error {
	err := r.db.View(func(tx *badger.Txn) error {
		item, err := tx.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, out)
		})
	})
	if err == badger.ErrKeyNotFound {
		return enginerrors.NewEntityNotFoundError(kind, id)
	}
	return err
}

func (r *Registry) delete(key string) error {
	return r.db.Update(func(tx *badger.Txn) error {
		return tx.Delete([]byte(key))
	})
}
