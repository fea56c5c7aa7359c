package service

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Saver persists the current ledger state.
type Saver interface {
	Save(ctx context.Context) (SaveResult, error)
}

// AutoSaveConfig holds configuration for the autosave scheduler.
type AutoSaveConfig struct {
	// Interval is how often the document is written. Default: 2 seconds
	Interval time.Duration

	// SaveTimeout bounds a single save across all slots. Default: 10 seconds
	SaveTimeout time.Duration
}

// DefaultAutoSaveConfig returns default autosave configuration.
func DefaultAutoSaveConfig() AutoSaveConfig {
	return AutoSaveConfig{
		Interval:    2 * time.Second,
		SaveTimeout: 10 * time.Second,
	}
}

// AutoSaver periodically writes the full document and performs a final save
// when stopped.
type AutoSaver struct {
	saver     Saver
	config    AutoSaveConfig
	log       logrus.FieldLogger
	ticker    *time.Ticker
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
	isRunning bool
	mu        sync.Mutex
}

// NewAutoSaver creates a new autosave scheduler.
func NewAutoSaver(saver Saver, config AutoSaveConfig, log logrus.FieldLogger) *AutoSaver {
	defaults := DefaultAutoSaveConfig()
	if config.Interval <= 0 {
		config.Interval = defaults.Interval
	}
	if config.SaveTimeout <= 0 {
		config.SaveTimeout = defaults.SaveTimeout
	}

	return &AutoSaver{
		saver:  saver,
		config: config,
		log:    log.WithField("component", "autosave"),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Start begins the autosave loop.
func (a *AutoSaver) Start() {
	a.mu.Lock()
	if a.isRunning {
		a.mu.Unlock()
		return
	}
	a.isRunning = true
	a.ticker = time.NewTicker(a.config.Interval)
	a.mu.Unlock()

	a.log.WithField("interval", a.config.Interval.String()).Info("Autosave started")

	go a.run()
}

// run is the main autosave loop.
func (a *AutoSaver) run() {
	defer close(a.doneCh)
	for {
		select {
		case <-a.ticker.C:
			a.runSave()
		case <-a.stopCh:
			return
		}
	}
}

func (a *AutoSaver) runSave() {
	ctx, cancel := context.WithTimeout(context.Background(), a.config.SaveTimeout)
	defer cancel()

	if _, err := a.saver.Save(ctx); err != nil {
		a.log.WithError(err).Error("Autosave failed")
	}
}

// Stop halts the loop and writes the document one last time.
func (a *AutoSaver) Stop(ctx context.Context) error {
	var err error
	a.stopOnce.Do(func() {
		a.mu.Lock()
		running := a.isRunning
		if a.ticker != nil {
			a.ticker.Stop()
		}
		close(a.stopCh)
		a.isRunning = false
		a.mu.Unlock()

		if running {
			<-a.doneCh
		}
		_, err = a.saver.Save(ctx)
		if err != nil {
			a.log.WithError(err).Error("Final save failed")
			return
		}
		a.log.Info("Autosave stopped after final save")
	})
	return err
}
