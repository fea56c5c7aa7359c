package service

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alkozay-factory-api/internal/backup"
	"alkozay-factory-api/internal/ledger"
	"alkozay-factory-api/internal/model"
	"alkozay-factory-api/internal/repository"
)

type fixture struct {
	svc *LedgerService
	mem *repository.MemoryStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	log, _ := test.NewNullLogger()
	mem := repository.NewMemoryStore()
	p := NewPersistence([]repository.Slot{
		{Key: "alkozay_main_data", Store: mem},
		{Key: "alkozay_session_data", Store: mem},
	}, log)
	store := ledger.NewStore(nil,
		ledger.WithClock(func() time.Time { return fixedNow }),
		ledger.WithIDGenerator(ledger.NewSequenceIDs(1000)),
	)
	return fixture{svc: NewLedgerService(store, p, log), mem: mem}
}

func (f fixture) saved(t *testing.T) *model.Document {
	t.Helper()
	data, err := f.mem.Get(context.Background(), "alkozay_main_data")
	require.NoError(t, err)
	var doc model.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	return &doc
}

func TestLoadFallsBackToDefaultsAndSaves(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Load(context.Background()))

	doc := f.saved(t)
	assert.Equal(t, "Alkozay Water Factory", doc.Meta.Name)
	assert.Equal(t, "5.0", doc.Meta.Version)
	require.NotNil(t, doc.Meta.LastSave)
	assert.True(t, fixedNow.Equal(*doc.Meta.LastSave))
}

func TestLoadRestoresSavedDocument(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	saved := newDoc()
	saved.Inventory = model.Inventory{Small: 240, Large: 60}
	data, err := MarshalDocument(saved)
	require.NoError(t, err)
	require.NoError(t, f.mem.Put(ctx, "alkozay_main_data", data))

	require.NoError(t, f.svc.Load(ctx))
	assert.Equal(t, model.Inventory{Small: 240, Large: 60}, f.svc.Snapshot().Inventory)
}

func TestMutationsPersist(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	_, err := f.svc.RecordImport(ctx, ledger.ImportInput{
		Supplier: "Khan Traders", Type: model.ImportTypeBoth,
		QtySmall: 100, QtyLarge: 50, CostPerBottle: decimal.NewFromInt(10),
	})
	require.NoError(t, err)
	assert.Equal(t, model.Inventory{Small: 100, Large: 50}, f.saved(t).Inventory)

	sale, err := f.svc.RecordSale(ctx, ledger.SaleInput{QtySmall: 2})
	require.NoError(t, err)
	assert.Equal(t, model.Inventory{Small: 76, Large: 50}, f.saved(t).Inventory)

	_, err = f.svc.DeleteSale(ctx, sale.ID)
	require.NoError(t, err)
	assert.Empty(t, f.saved(t).Sales)

	price := decimal.NewFromInt(650)
	f.svc.UpdateSettings(ctx, model.SettingsPatch{PriceSmall: &price})
	assert.True(t, f.saved(t).Settings.PriceSmall.Equal(price))
}

func TestFailedMutationDoesNotSave(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.RecordSale(context.Background(), ledger.SaleInput{QtySmall: 1})
	require.ErrorIs(t, err, ledger.ErrInsufficientStock)

	_, err = f.mem.Get(context.Background(), "alkozay_main_data")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestResetRequiresConfirmation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.RecordImport(ctx, ledger.ImportInput{
		Supplier: "Khan Traders", Type: model.ImportTypeSmall, QtySmall: 10, CostPerBottle: decimal.NewFromInt(5),
	})
	require.NoError(t, err)

	require.ErrorIs(t, f.svc.Reset(ctx, false), ledger.ErrNotConfirmed)
	assert.Len(t, f.svc.Snapshot().Imports, 1)

	require.NoError(t, f.svc.Reset(ctx, true))
	assert.Empty(t, f.svc.Snapshot().Imports)
	assert.Empty(t, f.saved(t).Imports)
}

func TestBackupRoundTrip(t *testing.T) {
	ctx := context.Background()
	src := newFixture(t)
	_, err := src.svc.RecordImport(ctx, ledger.ImportInput{
		Supplier: "Khan Traders", Type: model.ImportTypeLarge, QtyLarge: 60, CostPerBottle: decimal.NewFromInt(8),
	})
	require.NoError(t, err)

	data, name, err := src.svc.ExportBackup()
	require.NoError(t, err)
	assert.Equal(t, "alkozay_backup_2024-03-15.json", name)

	dst := newFixture(t)
	summary, err := dst.svc.PreviewBackup(data)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Imports)
	assert.Equal(t, 0, summary.Sales)
	assert.Empty(t, dst.svc.Snapshot().Imports, "preview must not change the ledger")

	_, err = dst.svc.RestoreBackup(ctx, data, false)
	require.ErrorIs(t, err, ledger.ErrNotConfirmed)
	assert.Empty(t, dst.svc.Snapshot().Imports)

	_, err = dst.svc.RestoreBackup(ctx, data, true)
	require.NoError(t, err)
	assert.Equal(t, model.Inventory{Small: 0, Large: 60}, dst.svc.Snapshot().Inventory)
	assert.Len(t, dst.saved(t).Imports, 1)
}

func TestRestoreRejectsBackupWithoutSales(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	_, err := f.svc.RecordImport(ctx, ledger.ImportInput{
		Supplier: "Khan Traders", Type: model.ImportTypeSmall, QtySmall: 10, CostPerBottle: decimal.NewFromInt(5),
	})
	require.NoError(t, err)
	before := f.svc.Snapshot()

	bad := []byte(`{"meta":{"name":"x"},"settings":{},"inventory":{"small":0,"large":0},"imports":[]}`)
	_, err = f.svc.RestoreBackup(ctx, bad, true)
	require.ErrorIs(t, err, backup.ErrInvalidBackup)
	assert.Equal(t, before, f.svc.Snapshot())
}

func TestStatus(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.svc.Load(context.Background()))

	st := f.svc.Status()
	assert.Equal(t, "Alkozay Water Factory", st.Name)
	require.NotNil(t, st.LastSave)
	assert.True(t, st.SizeKB.IsPositive())
	require.Len(t, st.Slots, 2)
	assert.True(t, st.Slots[0].Healthy)
}
