// Package store persists R-tree pages, grounded on the teacher's
// internal/database (connection setup, pool tuning, AutoMigrate) and
// internal/repository (interface-plus-struct-behind-constructor) pair.
// A page is one more GORM model alongside the teacher's User/AudioPost
// models; the tree itself (internal/rtree) never touches *gorm.DB
// directly.
package store

import (
	"context"
	"errors"

	"gorm.io/gorm"
)

// ErrPageNotFound is returned when a page ID has no row.
var ErrPageNotFound = errors.New("store: page not found")

// Page is the GORM model backing one R-tree page: either a leaf or an
// internal node. Blob holds rtree's encoding of every entry on the page
// (compressed FPs for a leaf; child UFP keys plus child IDs for an
// internal node).
type Page struct {
	ID       string `gorm:"primaryKey;type:varchar(36)"`
	ParentID string `gorm:"index;type:varchar(36)"`
	IsLeaf   bool   `gorm:"index"`
	Blob     []byte `gorm:"type:bytea"`
	ChildIDs string `gorm:"type:text"` // Not written by rtree, which keeps child IDs inside Blob.
}

func (Page) TableName() string { return "fp_pages" }

// PageStore is the persistence boundary internal/rtree depends on. A
// production backend is GormPageStore (Postgres); the CLI and tests use
// the same implementation over SQLite.
type PageStore interface {
	Get(ctx context.Context, id string) (*Page, error)
	Put(ctx context.Context, page *Page) error
	Delete(ctx context.Context, id string) error
	ListChildren(ctx context.Context, parentID string) ([]*Page, error)
}

// gormPageStore implements PageStore over *gorm.DB.
type gormPageStore struct {
	db *gorm.DB
}

// NewGormPageStore wraps an already-opened, already-migrated *gorm.DB.
func NewGormPageStore(db *gorm.DB) PageStore {
	return &gormPageStore{db: db}
}

func (s *gormPageStore) Get(ctx context.Context, id string) (*Page, error) {
	var page Page
	err := s.db.WithContext(ctx).Where("id = ?", id).First(&page).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrPageNotFound
	}
	if err != nil {
		return nil, err
	}
	return &page, nil
}

func (s *gormPageStore) Put(ctx context.Context, page *Page) error {
	if page == nil {
		return errors.New("store: nil page")
	}
	return s.db.WithContext(ctx).Save(page).Error
}

func (s *gormPageStore) Delete(ctx context.Context, id string) error {
	return s.db.WithContext(ctx).Where("id = ?", id).Delete(&Page{}).Error
}

func (s *gormPageStore) ListChildren(ctx context.Context, parentID string) ([]*Page, error) {
	var pages []*Page
	err := s.db.WithContext(ctx).Where("parent_id = ?", parentID).Find(&pages).Error
	return pages, err
}
