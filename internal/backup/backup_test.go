package backup

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alkozay-factory-api/internal/model"
)

var exportedAt = time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

func sampleDocument() *model.Document {
	saved := time.Date(2024, 3, 14, 18, 30, 0, 0, time.UTC)
	return &model.Document{
		Meta: model.Meta{
			Name:     "Alkozay Water Factory",
			Location: "Peshawar",
			Version:  "5.0",
			Created:  time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
			LastSave: &saved,
		},
		Settings: model.Settings{
			PriceSmall: decimal.NewFromInt(500),
			PriceLarge: decimal.NewFromInt(300),
			MinSmall:   1000,
			MinLarge:   500,
		},
		Inventory: model.Inventory{Small: 76, Large: 50},
		Imports: []model.ImportRecord{{
			ID: 1710496800000, Date: saved, Supplier: "Khan Traders", Type: model.ImportTypeBoth,
			QtySmall: 100, QtyLarge: 50, CostPerBottle: decimal.NewFromInt(10), Total: decimal.NewFromInt(1500),
		}},
		Sales: []model.SaleRecord{{
			ID: 1710496800001, Date: saved, QtySmall: 2, Note: "shop", Total: decimal.NewFromInt(1000),
		}},
		BottlesData: model.BottlesData{ImportedSmall: 100, ImportedLarge: 50, SoldSmall: 24},
		Activities:  []model.Activity{{Type: model.ActivitySale, Description: "Sold 2 packs", Timestamp: saved}},
	}
}

func TestEncodeStampsExportInfo(t *testing.T) {
	data, err := Encode(sampleDocument(), exportedAt)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(data, &raw))
	for _, key := range []string{"meta", "settings", "inventory", "imports", "sales", "bottlesData", "activities", "exportInfo"} {
		assert.Contains(t, raw, key)
	}

	var info ExportInfo
	require.NoError(t, json.Unmarshal(raw["exportInfo"], &info))
	assert.Equal(t, ExportType, info.ExportType)
	assert.Equal(t, "5.0", info.Version)
	assert.True(t, exportedAt.Equal(info.ExportedAt))

	assert.JSONEq(t, `{"small":76,"large":50}`, string(raw["inventory"]))
}

func TestEncodeDecode(t *testing.T) {
	doc := sampleDocument()
	data, err := Encode(doc, exportedAt)
	require.NoError(t, err)

	got, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, doc.Inventory, got.Inventory)
	assert.Equal(t, doc.BottlesData, got.BottlesData)
	require.Len(t, got.Imports, 1)
	assert.Equal(t, int64(1710496800000), got.Imports[0].ID)
	assert.True(t, got.Imports[0].Total.Equal(decimal.NewFromInt(1500)))
	require.Len(t, got.Sales, 1)
	assert.Equal(t, "shop", got.Sales[0].Note)
}

func TestDecodeAcceptsNumericIDsAndPlainNumbers(t *testing.T) {
	data := []byte(`{
		"meta": {"name": "Old Factory", "location": "Peshawar", "version": "5.0", "created": "2023-05-01T08:00:00.000Z", "lastSave": null},
		"settings": {"priceSmall": 500, "priceLarge": 300, "minSmall": 1000, "minLarge": 500},
		"inventory": {"small": 12, "large": 0},
		"imports": [],
		"sales": [{"id": 1683000000000, "date": "2023-05-02T09:00:00.000Z", "qs": 1, "ql": 0, "note": "", "total": 500}],
		"bottlesData": {"importedS": 24, "importedL": 0, "soldS": 12, "soldL": 0},
		"activities": []
	}`)

	doc, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, "Old Factory", doc.Meta.Name)
	assert.Nil(t, doc.Meta.LastSave)
	assert.True(t, doc.Settings.PriceSmall.Equal(decimal.NewFromInt(500)))
	require.Len(t, doc.Sales, 1)
	assert.Equal(t, int64(1683000000000), doc.Sales[0].ID)
}

func TestDecodeRejectsIncompleteDocuments(t *testing.T) {
	valid := map[string]any{
		"meta":      map[string]any{"name": "x"},
		"settings":  map[string]any{},
		"inventory": map[string]any{"small": 0, "large": 0},
		"imports":   []any{},
		"sales":     []any{},
	}

	tests := []struct {
		name   string
		mutate func(m map[string]any)
	}{
		{"missing sales", func(m map[string]any) { delete(m, "sales") }},
		{"missing meta", func(m map[string]any) { delete(m, "meta") }},
		{"null settings", func(m map[string]any) { m["settings"] = nil }},
		{"null inventory", func(m map[string]any) { m["inventory"] = nil }},
		{"imports not array", func(m map[string]any) { m["imports"] = map[string]any{} }},
		{"sales not array", func(m map[string]any) { m["sales"] = "none" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := make(map[string]any, len(valid))
			for k, v := range valid {
				m[k] = v
			}
			tt.mutate(m)
			data, err := json.Marshal(m)
			require.NoError(t, err)

			_, err = Decode(data)
			assert.ErrorIs(t, err, ErrInvalidBackup)
		})
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "null", "[]", "not json", `{"meta":`} {
		_, err := Decode([]byte(in))
		assert.ErrorIs(t, err, ErrInvalidBackup, in)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleDocument())
	assert.Equal(t, Summary{Name: "Alkozay Water Factory", Imports: 1, Sales: 1, LastSave: "2024-03-14"}, s)

	doc := sampleDocument()
	doc.Meta.LastSave = nil
	assert.Equal(t, "Unknown", Summarize(doc).LastSave)
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "alkozay_backup_2024-03-15.json", FileName(exportedAt))
}
