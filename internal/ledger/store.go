// Package ledger holds the factory's inventory accounting state and the operations
// that mutate it. Every operation runs under one mutex so a stock check and the
// mutation that depends on it can never interleave with another operation.
package ledger

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"alkozay-factory-api/internal/model"
)

// DocumentVersion is stamped into new documents and exports.
const DocumentVersion = "5.0"

// Defaults describes the document created on first run and on reset.
type Defaults struct {
	Name       string
	Location   string
	PriceSmall decimal.Decimal
	PriceLarge decimal.Decimal
	MinSmall   int
	MinLarge   int
}

// DefaultDefaults returns the factory defaults.
func DefaultDefaults() Defaults {
	return Defaults{
		Name:       "Alkozay Water Factory",
		Location:   "Peshawar",
		PriceSmall: decimal.NewFromInt(500),
		PriceLarge: decimal.NewFromInt(300),
		MinSmall:   1000,
		MinLarge:   500,
	}
}

// NewDocument builds a zeroed document.
func NewDocument(d Defaults, now time.Time) *model.Document {
	return &model.Document{
		Meta: model.Meta{
			Name:     d.Name,
			Location: d.Location,
			Version:  DocumentVersion,
			Created:  now.UTC(),
		},
		Settings: model.Settings{
			PriceSmall: d.PriceSmall,
			PriceLarge: d.PriceLarge,
			MinSmall:   d.MinSmall,
			MinLarge:   d.MinLarge,
		},
		Imports:    []model.ImportRecord{},
		Sales:      []model.SaleRecord{},
		Activities: []model.Activity{},
	}
}

// Store owns the authoritative in-memory document.
type Store struct {
	mu       sync.Mutex
	doc      *model.Document
	ids      IDGenerator
	now      func() time.Time
	defaults Defaults
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator overrides the identity allocator.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithDefaults overrides the document used on first run and reset.
func WithDefaults(d Defaults) Option {
	return func(s *Store) { s.defaults = d }
}

// NewStore creates a store over doc. A nil doc starts from defaults.
func NewStore(doc *model.Document, opts ...Option) *Store {
	s := &Store{
		now:      time.Now,
		defaults: DefaultDefaults(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ids == nil {
		s.ids = NewSequenceIDs(s.now().UnixMilli())
	}
	if doc == nil {
		doc = NewDocument(s.defaults, s.now())
	}
	s.doc = normalize(doc)
	return s
}

func normalize(doc *model.Document) *model.Document {
	if doc.Imports == nil {
		doc.Imports = []model.ImportRecord{}
	}
	if doc.Sales == nil {
		doc.Sales = []model.SaleRecord{}
	}
	if doc.Activities == nil {
		doc.Activities = []model.Activity{}
	}
	return doc
}

func (s *Store) tx() *Tx {
	return &Tx{doc: s.doc, ids: s.ids, now: s.now}
}

// Update runs fn as one batch. If fn returns an error every change it made is
// discarded and the document is left as it was before the call.
func (s *Store) Update(fn func(tx *Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	backup := s.doc.Clone()
	if err := fn(s.tx()); err != nil {
		s.doc = backup
		return err
	}
	return nil
}

// RecordImport adds a supplier delivery.
func (s *Store) RecordImport(in ImportInput) (model.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().RecordImport(in)
}

// DeleteImport removes an import and reverses its inventory effect.
func (s *Store) DeleteImport(id int64) (model.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().DeleteImport(id)
}

// RecordSale sells packs if stock allows.
func (s *Store) RecordSale(in SaleInput) (model.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().RecordSale(in)
}

// DeleteSale removes a sale and returns its bottles to stock.
func (s *Store) DeleteSale(id int64) (model.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tx().DeleteSale(id)
}

// EditImport replaces import id with a record built from in. The old record is
// deleted first; if the replacement is rejected nothing changes.
func (s *Store) EditImport(id int64, in ImportInput) (rec model.ImportRecord, err error) {
	err = s.Update(func(tx *Tx) error {
		if _, err := tx.DeleteImport(id); err != nil {
			return err
		}
		rec, err = tx.RecordImport(in)
		return err
	})
	return rec, err
}

// EditSale replaces sale id with a sale built from in. Stock released by the old
// sale is available to the new one; if the new one is rejected nothing changes.
func (s *Store) EditSale(id int64, in SaleInput) (rec model.SaleRecord, err error) {
	err = s.Update(func(tx *Tx) error {
		if _, err := tx.DeleteSale(id); err != nil {
			return err
		}
		rec, err = tx.RecordSale(in)
		return err
	})
	return rec, err
}

// UpdateSettings merges patch into the settings and factory meta.
func (s *Store) UpdateSettings(patch model.SettingsPatch) model.Settings {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &s.doc.Settings
	if patch.PriceSmall != nil {
		st.PriceSmall = *patch.PriceSmall
	}
	if patch.PriceLarge != nil {
		st.PriceLarge = *patch.PriceLarge
	}
	if patch.MinSmall != nil {
		st.MinSmall = *patch.MinSmall
	}
	if patch.MinLarge != nil {
		st.MinLarge = *patch.MinLarge
	}
	if patch.Name != nil && *patch.Name != "" {
		s.doc.Meta.Name = *patch.Name
	}
	if patch.Location != nil && *patch.Location != "" {
		s.doc.Meta.Location = *patch.Location
	}
	return *st
}

// Reset replaces the document with fresh defaults. It refuses to run unless the
// caller has confirmed.
func (s *Store) Reset(confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = NewDocument(s.defaults, s.now())
	return nil
}

// Replace swaps in doc wholesale. The store keeps its own copy.
func (s *Store) Replace(doc *model.Document) {
	c := normalize(doc.Clone())
	s.mu.Lock()
	defer s.mu.Unlock()
	s.doc = c
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.Clone()
}

// Checkpoint stamps the save time and returns a copy to persist.
func (s *Store) Checkpoint() *model.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now().UTC()
	s.doc.Meta.LastSave = &now
	return s.doc.Clone()
}

// Import looks up an import by id.
func (s *Store) Import(id int64) (model.ImportRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfImport(s.doc.Imports, id); i >= 0 {
		return s.doc.Imports[i], nil
	}
	return model.ImportRecord{}, ErrImportNotFound
}

// Sale looks up a sale by id.
func (s *Store) Sale(id int64) (model.SaleRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := indexOfSale(s.doc.Sales, id); i >= 0 {
		return s.doc.Sales[i], nil
	}
	return model.SaleRecord{}, ErrSaleNotFound
}

// Stats computes the dashboard summary as of the store clock.
func (s *Store) Stats() model.Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ComputeStats(s.doc, s.now())
}

// Now returns the store clock reading.
func (s *Store) Now() time.Time {
	return s.now()
}
