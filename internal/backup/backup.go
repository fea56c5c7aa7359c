// Package backup encodes and decodes portable ledger backups.
package backup

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"alkozay-factory-api/internal/model"
)

const (
	// ExportType identifies backups written by this service.
	ExportType = "Alkozay Factory Backup"
	// ExportVersion is the backup format version.
	ExportVersion = "5.0"
)

// ErrInvalidBackup is returned when a backup is not a usable ledger document.
var ErrInvalidBackup = errors.New("invalid backup file")

// requiredSections must be present and non-null in an imported backup.
var requiredSections = []string{"meta", "settings", "inventory", "imports", "sales"}

// ExportInfo stamps an exported document.
type ExportInfo struct {
	ExportedAt time.Time `json:"exportedAt"`
	ExportType string    `json:"exportType"`
	Version    string    `json:"version"`
}

// Export is a ledger document plus its export stamp.
type Export struct {
	model.Document
	ExportInfo ExportInfo `json:"exportInfo"`
}

// Summary is shown to the operator before a backup replaces the ledger.
type Summary struct {
	Name     string `json:"name"`
	Imports  int    `json:"imports"`
	Sales    int    `json:"sales"`
	LastSave string `json:"lastSave"`
}

// Encode renders doc as an indented backup stamped with now.
func Encode(doc *model.Document, now time.Time) ([]byte, error) {
	exp := Export{
		Document: *doc,
		ExportInfo: ExportInfo{
			ExportedAt: now.UTC(),
			ExportType: ExportType,
			Version:    ExportVersion,
		},
	}
	data, err := json.MarshalIndent(exp, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// Decode validates data and returns the ledger document it holds. Any export
// stamp is dropped.
func Decode(data []byte) (*model.Document, error) {
	var sections map[string]json.RawMessage
	if err := json.Unmarshal(data, &sections); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	if sections == nil {
		return nil, fmt.Errorf("%w: document is null", ErrInvalidBackup)
	}

	for _, name := range requiredSections {
		raw, ok := sections[name]
		if !ok || isNull(raw) {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidBackup, name)
		}
	}
	for _, name := range []string{"imports", "sales"} {
		if !isArray(sections[name]) {
			return nil, fmt.Errorf("%w: %s must be an array", ErrInvalidBackup, name)
		}
	}

	var doc model.Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBackup, err)
	}
	return doc.Clone(), nil
}

// Summarize describes doc for the import confirmation.
func Summarize(doc *model.Document) Summary {
	lastSave := "Unknown"
	if doc.Meta.LastSave != nil {
		lastSave = doc.Meta.LastSave.UTC().Format(time.DateOnly)
	}
	return Summary{
		Name:     doc.Meta.Name,
		Imports:  len(doc.Imports),
		Sales:    len(doc.Sales),
		LastSave: lastSave,
	}
}

// FileName returns the download name for a backup taken at now.
func FileName(now time.Time) string {
	return "alkozay_backup_" + now.UTC().Format(time.DateOnly) + ".json"
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
