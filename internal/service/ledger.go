package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"alkozay-factory-api/internal/backup"
	"alkozay-factory-api/internal/ledger"
	"alkozay-factory-api/internal/model"
)

// Status describes the ledger's persistence state.
type Status struct {
	Name     string          `json:"name"`
	Location string          `json:"location"`
	Version  string          `json:"version"`
	LastSave *time.Time      `json:"lastSave"`
	SizeKB   decimal.Decimal `json:"sizeKB"`
	Imports  int             `json:"imports"`
	Sales    int             `json:"sales"`
	Slots    []SlotStatus    `json:"slots"`
}

// LedgerService runs ledger operations and persists the document after every
// change.
type LedgerService struct {
	store   *ledger.Store
	persist *Persistence
	log     logrus.FieldLogger
}

// NewLedgerService creates a new ledger service.
func NewLedgerService(store *ledger.Store, persist *Persistence, log logrus.FieldLogger) *LedgerService {
	return &LedgerService{
		store:   store,
		persist: persist,
		log:     log.WithField("component", "ledger"),
	}
}

// Load restores the document from the highest-priority readable slot. When no
// slot holds a document the store is reset to defaults and saved at once.
func (s *LedgerService) Load(ctx context.Context) error {
	doc, slot, err := s.persist.Load(ctx)
	if err != nil {
		return err
	}
	if doc != nil {
		s.store.Replace(doc)
		s.log.WithFields(logrus.Fields{
			"slot":    slot,
			"imports": len(doc.Imports),
			"sales":   len(doc.Sales),
		}).Info("Ledger restored")
		return nil
	}

	s.log.Info("No saved ledger found, starting from defaults")
	if err := s.store.Reset(true); err != nil {
		return err
	}
	_, err = s.Save(ctx)
	return err
}

// Save stamps the save time and writes the document to every slot.
func (s *LedgerService) Save(ctx context.Context) (SaveResult, error) {
	return s.persist.Save(ctx, s.store.Checkpoint())
}

// saveAfter persists after a successful mutation. Storage failures are logged
// and left for the next autosave tick; the in-memory change stands.
func (s *LedgerService) saveAfter(ctx context.Context, op string) {
	if _, err := s.Save(ctx); err != nil {
		s.log.WithError(err).WithField("op", op).Error("Save after mutation failed")
	}
}

// RecordImport records a supplier delivery.
func (s *LedgerService) RecordImport(ctx context.Context, in ledger.ImportInput) (model.ImportRecord, error) {
	rec, err := s.store.RecordImport(in)
	if err != nil {
		return rec, err
	}
	s.saveAfter(ctx, "record_import")
	return rec, nil
}

// DeleteImport removes an import.
func (s *LedgerService) DeleteImport(ctx context.Context, id int64) (model.ImportRecord, error) {
	rec, err := s.store.DeleteImport(id)
	if err != nil {
		return rec, err
	}
	s.saveAfter(ctx, "delete_import")
	return rec, nil
}

// EditImport replaces an import.
func (s *LedgerService) EditImport(ctx context.Context, id int64, in ledger.ImportInput) (model.ImportRecord, error) {
	rec, err := s.store.EditImport(id, in)
	if err != nil {
		return rec, err
	}
	s.saveAfter(ctx, "edit_import")
	return rec, nil
}

// RecordSale records a sale.
func (s *LedgerService) RecordSale(ctx context.Context, in ledger.SaleInput) (model.SaleRecord, error) {
	rec, err := s.store.RecordSale(in)
	if err != nil {
		return rec, err
	}
	s.saveAfter(ctx, "record_sale")
	return rec, nil
}

// DeleteSale removes a sale.
func (s *LedgerService) DeleteSale(ctx context.Context, id int64) (model.SaleRecord, error) {
	rec, err := s.store.DeleteSale(id)
	if err != nil {
		return rec, err
	}
	s.saveAfter(ctx, "delete_sale")
	return rec, nil
}

// EditSale replaces a sale.
func (s *LedgerService) EditSale(ctx context.Context, id int64, in ledger.SaleInput) (model.SaleRecord, error) {
	rec, err := s.store.EditSale(id, in)
	if err != nil {
		return rec, err
	}
	s.saveAfter(ctx, "edit_sale")
	return rec, nil
}

// UpdateSettings merges patch into the settings.
func (s *LedgerService) UpdateSettings(ctx context.Context, patch model.SettingsPatch) model.Settings {
	st := s.store.UpdateSettings(patch)
	s.saveAfter(ctx, "update_settings")
	return st
}

// Reset wipes the ledger back to defaults.
func (s *LedgerService) Reset(ctx context.Context, confirmed bool) error {
	if err := s.store.Reset(confirmed); err != nil {
		return err
	}
	s.log.Warn("Ledger reset to defaults")
	s.saveAfter(ctx, "reset")
	return nil
}

// ExportBackup renders the current document as a backup file.
func (s *LedgerService) ExportBackup() ([]byte, string, error) {
	now := s.store.Now()
	data, err := backup.Encode(s.store.Snapshot(), now)
	if err != nil {
		return nil, "", err
	}
	return data, backup.FileName(now), nil
}

// PreviewBackup validates data and summarises it without touching the ledger.
func (s *LedgerService) PreviewBackup(data []byte) (backup.Summary, error) {
	doc, err := backup.Decode(data)
	if err != nil {
		return backup.Summary{}, err
	}
	return backup.Summarize(doc), nil
}

// RestoreBackup replaces the whole ledger with the backup in data. Validation
// happens before anything changes, and nothing changes without confirmation.
func (s *LedgerService) RestoreBackup(ctx context.Context, data []byte, confirmed bool) (backup.Summary, error) {
	doc, err := backup.Decode(data)
	if err != nil {
		return backup.Summary{}, err
	}
	summary := backup.Summarize(doc)
	if !confirmed {
		return summary, ledger.ErrNotConfirmed
	}

	s.store.Replace(doc)
	s.log.WithFields(logrus.Fields{
		"imports": summary.Imports,
		"sales":   summary.Sales,
	}).Warn("Ledger replaced from backup")
	s.saveAfter(ctx, "restore_backup")
	return summary, nil
}

// Snapshot returns a copy of the current document.
func (s *LedgerService) Snapshot() *model.Document {
	return s.store.Snapshot()
}

// Stats returns the dashboard summary.
func (s *LedgerService) Stats() model.Stats {
	return s.store.Stats()
}

// Import looks up one import.
func (s *LedgerService) Import(id int64) (model.ImportRecord, error) {
	return s.store.Import(id)
}

// Sale looks up one sale.
func (s *LedgerService) Sale(id int64) (model.SaleRecord, error) {
	return s.store.Sale(id)
}

// Now returns the ledger clock reading.
func (s *LedgerService) Now() time.Time {
	return s.store.Now()
}

// Status reports document size, last save and slot health.
func (s *LedgerService) Status() Status {
	doc := s.store.Snapshot()
	size := 0
	if data, err := json.Marshal(doc); err == nil {
		size = len(data)
	}
	return Status{
		Name:     doc.Meta.Name,
		Location: doc.Meta.Location,
		Version:  doc.Meta.Version,
		LastSave: doc.Meta.LastSave,
		SizeKB:   decimal.NewFromInt(int64(size)).Div(decimal.NewFromInt(1024)).Round(2),
		Imports:  len(doc.Imports),
		Sales:    len(doc.Sales),
		Slots:    s.persist.Status(),
	}
}

var _ Saver = (*LedgerService)(nil)
