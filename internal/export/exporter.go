// Package export ships records of broadcast transactions to a webhook in
// batches
package export

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/config"
	"github.com/yourorg/swapkit-go/internal/core"
	"github.com/yourorg/swapkit-go/internal/security"
	"github.com/yourorg/swapkit-go/internal/types"
)

// maxPendingBatches bounds how many failed batches are kept for retry
const maxPendingBatches = 10

// Signature headers set when a signer is configured
const (
	HeaderSignature = "X-Swapkit-Signature"
	HeaderSigner    = "X-Swapkit-Signer"
)

// TxRecord is one exported transaction
type TxRecord struct {
	ID          string      `json:"id"`
	Kind        string      `json:"kind"`
	Chain       types.Chain `json:"chain"`
	TxHash      string      `json:"tx_hash"`
	ExplorerURL string      `json:"explorer_url,omitempty"`
	Plugin      string      `json:"plugin,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
}

// Status is a snapshot of the exporter state
type Status struct {
	Enabled    bool       `json:"enabled"`
	BatchSize  int        `json:"batch_size"`
	Interval   string     `json:"interval"`
	Pending    int        `json:"pending"`
	Exported   int        `json:"exported"`
	Failed     int        `json:"failed_batches"`
	LastExport *time.Time `json:"last_export,omitempty"`
}

// Exporter batches TxRecords and posts them to the configured webhook
type Exporter struct {
	cfg    config.ExportConfig
	client *retryablehttp.Client
	signer *security.Signer
	now    func() time.Time

	mu         sync.Mutex
	batch      []TxRecord
	lastExport time.Time
	exported   int
	failed     int

	cancel   context.CancelFunc
	done     chan struct{}
	inflight sync.WaitGroup
}

// Option configures an Exporter
type Option func(*Exporter)

// WithHTTPClient replaces the retrying webhook client
func WithHTTPClient(c *retryablehttp.Client) Option {
	return func(e *Exporter) {
		e.client = c
	}
}

// WithSigner signs every webhook body with signer
func WithSigner(signer *security.Signer) Option {
	return func(e *Exporter) {
		e.signer = signer
	}
}

// New creates an exporter. A disabled exporter accepts and drops records.
func New(cfg config.ExportConfig, opts ...Option) *Exporter {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.Interval <= 0 {
		cfg.Interval = time.Minute
	}

	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.RetryWaitMin = 500 * time.Millisecond
	client.RetryWaitMax = 3 * time.Second
	client.HTTPClient.Timeout = 10 * time.Second
	client.Logger = nil

	e := &Exporter{
		cfg:    cfg,
		client: client,
		now:    time.Now,
		batch:  make([]TxRecord, 0, cfg.BatchSize),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Start runs the periodic export until Stop is called
func (e *Exporter) Start(ctx context.Context) {
	if !e.cfg.Enabled {
		return
	}
	ctx, e.cancel = context.WithCancel(ctx)
	e.done = make(chan struct{})

	go func() {
		defer close(e.done)
		ticker := time.NewTicker(e.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := e.Flush(ctx); err != nil {
					logrus.WithError(err).Error("Failed to export transactions")
				}
			case <-ctx.Done():
				return
			}
		}
	}()
	logrus.WithFields(logrus.Fields{
		"interval":   e.cfg.Interval,
		"batch_size": e.cfg.BatchSize,
	}).Info("Transaction exporter started")
}

// Handle queues ev for export. A full batch is exported right away.
func (e *Exporter) Handle(ev core.TxEvent) {
	if !e.cfg.Enabled {
		return
	}

	e.mu.Lock()
	e.batch = append(e.batch, TxRecord{
		ID:          uuid.NewString(),
		Kind:        ev.Kind,
		Chain:       ev.Chain,
		TxHash:      ev.TxHash,
		ExplorerURL: ev.ExplorerURL,
		Plugin:      string(ev.Plugin),
		CreatedAt:   e.now().UTC(),
	})
	full := len(e.batch) >= e.cfg.BatchSize
	e.mu.Unlock()

	if full {
		e.inflight.Add(1)
		go func() {
			defer e.inflight.Done()
			if err := e.Flush(context.Background()); err != nil {
				logrus.WithError(err).Error("Failed to export transactions")
			}
		}()
	}
}

// Flush exports everything queued. Records of a failed export are queued
// again, up to a bounded backlog.
func (e *Exporter) Flush(ctx context.Context) error {
	e.mu.Lock()
	if len(e.batch) == 0 {
		e.mu.Unlock()
		return nil
	}
	records := e.batch
	e.batch = make([]TxRecord, 0, e.cfg.BatchSize)
	e.mu.Unlock()

	err := e.post(ctx, records)

	e.mu.Lock()
	defer e.mu.Unlock()
	if err != nil {
		e.failed++
		backlog := append(records, e.batch...)
		if limit := e.cfg.BatchSize * maxPendingBatches; len(backlog) > limit {
			logrus.WithField("dropped", len(backlog)-limit).Warn("Export backlog full, dropping oldest transactions")
			backlog = backlog[len(backlog)-limit:]
		}
		e.batch = backlog
		return err
	}
	e.exported += len(records)
	e.lastExport = e.now()
	logrus.WithField("count", len(records)).Info("Exported transactions")
	return nil
}

func (e *Exporter) post(ctx context.Context, records []TxRecord) error {
	payload := struct {
		Transactions []TxRecord `json:"transactions"`
		ExportTime   string     `json:"export_time"`
		Count        int        `json:"count"`
	}{
		Transactions: records,
		ExportTime:   e.now().UTC().Format(time.RFC3339),
		Count:        len(records),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal transactions: %w", err)
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, e.cfg.WebhookURL, body)
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if e.cfg.WebhookAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.cfg.WebhookAPIKey)
	}
	if e.signer != nil {
		sig, err := e.signer.Sign(body)
		if err != nil {
			return err
		}
		req.Header.Set(HeaderSignature, sig)
		req.Header.Set(HeaderSigner, e.signer.Address())
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned error status: %d", resp.StatusCode)
	}
	return nil
}

// Stop ends the periodic export, waits for exports of full batches still in
// flight and flushes what is left
func (e *Exporter) Stop(ctx context.Context) error {
	if e.cancel != nil {
		e.cancel()
		<-e.done
	}
	if !e.cfg.Enabled {
		return nil
	}

	drained := make(chan struct{})
	go func() {
		e.inflight.Wait()
		close(drained)
	}()
	select {
	case <-drained:
	case <-ctx.Done():
		return fmt.Errorf("waiting for in-flight exports: %w", ctx.Err())
	}
	return e.Flush(ctx)
}

// Status returns the current exporter state
func (e *Exporter) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := Status{
		Enabled:   e.cfg.Enabled,
		BatchSize: e.cfg.BatchSize,
		Interval:  e.cfg.Interval.String(),
		Pending:   len(e.batch),
		Exported:  e.exported,
		Failed:    e.failed,
	}
	if !e.lastExport.IsZero() {
		last := e.lastExport
		s.LastExport = &last
	}
	return s
}
