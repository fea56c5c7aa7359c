package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"alkozay-factory-api/internal/model"
	"alkozay-factory-api/internal/repository"
)

// ErrNoSlotWritten is returned by Save when every slot failed.
var ErrNoSlotWritten = errors.New("no storage slot could be written")

// SaveResult reports the outcome of one replicated save.
type SaveResult struct {
	Written []string          `json:"written"`
	Failed  map[string]string `json:"failed,omitempty"`
	Bytes   int               `json:"bytes"`
	At      time.Time         `json:"at"`
}

// SlotStatus is the health of one slot as of the last save.
type SlotStatus struct {
	Name      string     `json:"name"`
	Healthy   bool       `json:"healthy"`
	LastError string     `json:"lastError,omitempty"`
	LastWrite *time.Time `json:"lastWrite,omitempty"`
}

// Persistence replicates the ledger document across redundant storage slots.
type Persistence struct {
	slots  []repository.Slot
	log    logrus.FieldLogger
	mu     sync.Mutex
	status map[string]SlotStatus
}

// NewPersistence creates a persistence layer over slots, in load priority order.
func NewPersistence(slots []repository.Slot, log logrus.FieldLogger) *Persistence {
	status := make(map[string]SlotStatus, len(slots))
	for _, s := range slots {
		status[s.Name()] = SlotStatus{Name: s.Name(), Healthy: true}
	}
	return &Persistence{
		slots:  slots,
		log:    log.WithField("component", "persistence"),
		status: status,
	}
}

// MarshalDocument renders doc the way it is stored in every slot.
func MarshalDocument(doc *model.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// Save writes doc to every slot concurrently. A failing slot never stops the
// others; Save only fails when no slot was written. Write times are taken from
// the document's LastSave stamp when it has one.
func (p *Persistence) Save(ctx context.Context, doc *model.Document) (SaveResult, error) {
	data, err := MarshalDocument(doc)
	if err != nil {
		return SaveResult{}, fmt.Errorf("failed to encode document: %w", err)
	}

	errs := make([]error, len(p.slots))
	var g errgroup.Group
	for i, slot := range p.slots {
		i, slot := i, slot
		g.Go(func() error {
			errs[i] = slot.Store.Put(ctx, slot.Key, data)
			return nil
		})
	}
	_ = g.Wait()

	now := time.Now().UTC()
	if doc.Meta.LastSave != nil {
		now = doc.Meta.LastSave.UTC()
	}
	result := SaveResult{Bytes: len(data), At: now}

	p.mu.Lock()
	for i, slot := range p.slots {
		name := slot.Name()
		st := p.status[name]
		st.Name = name
		if errs[i] != nil {
			if result.Failed == nil {
				result.Failed = make(map[string]string)
			}
			result.Failed[name] = errs[i].Error()
			st.Healthy = false
			st.LastError = errs[i].Error()
			p.log.WithError(errs[i]).WithField("slot", name).Warn("Slot write failed")
		} else {
			result.Written = append(result.Written, name)
			st.Healthy = true
			st.LastError = ""
			at := now
			st.LastWrite = &at
		}
		p.status[name] = st
	}
	p.mu.Unlock()

	if len(result.Written) == 0 {
		p.log.Error("Document could not be written to any slot")
		return result, ErrNoSlotWritten
	}
	p.log.WithFields(logrus.Fields{
		"written": len(result.Written),
		"failed":  len(result.Failed),
		"bytes":   result.Bytes,
	}).Debug("Document saved")
	return result, nil
}

// Load returns the first parseable, non-null document found in slot priority
// order, or nil when no slot holds one.
func (p *Persistence) Load(ctx context.Context) (*model.Document, string, error) {
	for _, slot := range p.slots {
		entry := p.log.WithField("slot", slot.Name())

		data, err := slot.Store.Get(ctx, slot.Key)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			entry.WithError(err).Warn("Slot read failed, trying next")
			continue
		}
		if len(bytes.TrimSpace(data)) == 0 || bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
			continue
		}

		var doc model.Document
		if err := json.Unmarshal(data, &doc); err != nil {
			entry.WithError(err).Warn("Slot holds unreadable data, trying next")
			continue
		}
		entry.Info("Document loaded")
		return doc.Clone(), slot.Name(), nil
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}
	return nil, "", nil
}

// Status returns the health of every slot in priority order.
func (p *Persistence) Status() []SlotStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]SlotStatus, 0, len(p.slots))
	for _, s := range p.slots {
		st := p.status[s.Name()]
		if st.LastWrite != nil {
			at := *st.LastWrite
			st.LastWrite = &at
		}
		out = append(out, st)
	}
	return out
}
