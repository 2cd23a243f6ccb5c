package export

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yourorg/swapkit-go/internal/config"
	"github.com/yourorg/swapkit-go/internal/core"
	"github.com/yourorg/swapkit-go/internal/security"
	"github.com/yourorg/swapkit-go/internal/types"
)

type webhookPayload struct {
	Transactions []TxRecord `json:"transactions"`
	Count        int        `json:"count"`
}

type webhook struct {
	mu       sync.Mutex
	status   int
	auth     []string
	payloads []webhookPayload
	received chan struct{}
}

func newWebhook(t *testing.T) (*webhook, *httptest.Server) {
	t.Helper()
	wh := &webhook{status: http.StatusOK, received: make(chan struct{}, 10)}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var p webhookPayload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))

		wh.mu.Lock()
		wh.auth = append(wh.auth, r.Header.Get("Authorization"))
		wh.payloads = append(wh.payloads, p)
		status := wh.status
		wh.mu.Unlock()

		w.WriteHeader(status)
		wh.received <- struct{}{}
	}))
	t.Cleanup(srv.Close)
	return wh, srv
}

func noRetry() Option {
	c := retryablehttp.NewClient()
	c.RetryMax = 0
	c.Logger = nil
	return WithHTTPClient(c)
}

func swapEvent(hash string) core.TxEvent {
	return core.TxEvent{Kind: "swap", Chain: types.ChainBitcoin, TxHash: hash, Plugin: "thorchain"}
}

func TestExporter_FlushPostsBatch(t *testing.T) {
	wh, srv := newWebhook(t)
	e := New(config.ExportConfig{Enabled: true, WebhookURL: srv.URL, WebhookAPIKey: "secret", BatchSize: 10}, noRetry())

	e.Handle(swapEvent("a"))
	e.Handle(swapEvent("b"))
	assert.Equal(t, 2, e.Status().Pending)

	require.NoError(t, e.Flush(context.Background()))

	wh.mu.Lock()
	defer wh.mu.Unlock()
	require.Len(t, wh.payloads, 1)
	assert.Equal(t, 2, wh.payloads[0].Count)
	assert.Equal(t, "a", wh.payloads[0].Transactions[0].TxHash)
	assert.Equal(t, "thorchain", wh.payloads[0].Transactions[0].Plugin)
	assert.NotEmpty(t, wh.payloads[0].Transactions[0].ID)
	assert.NotEqual(t, wh.payloads[0].Transactions[0].ID, wh.payloads[0].Transactions[1].ID)
	assert.Equal(t, "Bearer secret", wh.auth[0])

	status := e.Status()
	assert.Zero(t, status.Pending)
	assert.Equal(t, 2, status.Exported)
	assert.NotNil(t, status.LastExport)
}

func TestExporter_FullBatchExportsImmediately(t *testing.T) {
	wh, srv := newWebhook(t)
	e := New(config.ExportConfig{Enabled: true, WebhookURL: srv.URL, BatchSize: 2}, noRetry())

	e.Handle(swapEvent("a"))
	e.Handle(swapEvent("b"))

	select {
	case <-wh.received:
	case <-time.After(2 * time.Second):
		t.Fatal("full batch was not exported")
	}
	wh.mu.Lock()
	assert.Equal(t, 2, wh.payloads[0].Count)
	wh.mu.Unlock()
}

func TestExporter_FailedExportRequeues(t *testing.T) {
	wh, srv := newWebhook(t)
	wh.status = http.StatusBadRequest
	e := New(config.ExportConfig{Enabled: true, WebhookURL: srv.URL, BatchSize: 10}, noRetry())

	e.Handle(swapEvent("a"))
	err := e.Flush(context.Background())
	assert.ErrorContains(t, err, "error status: 400")

	status := e.Status()
	assert.Equal(t, 1, status.Pending)
	assert.Equal(t, 1, status.Failed)

	wh.mu.Lock()
	wh.status = http.StatusOK
	wh.mu.Unlock()
	require.NoError(t, e.Flush(context.Background()))
	assert.Zero(t, e.Status().Pending)
}

func TestExporter_StopFlushesRemaining(t *testing.T) {
	wh, srv := newWebhook(t)
	e := New(config.ExportConfig{Enabled: true, WebhookURL: srv.URL, BatchSize: 10, Interval: time.Hour}, noRetry())
	e.Start(context.Background())

	e.Handle(swapEvent("a"))
	require.NoError(t, e.Stop(context.Background()))

	wh.mu.Lock()
	defer wh.mu.Unlock()
	require.Len(t, wh.payloads, 1)
}

func TestExporter_Disabled(t *testing.T) {
	e := New(config.ExportConfig{})
	e.Start(context.Background())
	e.Handle(swapEvent("a"))

	assert.Zero(t, e.Status().Pending)
	assert.False(t, e.Status().Enabled)
	assert.NoError(t, e.Stop(context.Background()))
}

func TestExporter_SignsPayload(t *testing.T) {
	signer, err := security.NewSigner("b71c71a67e1177ad4e901695e1b4b9ee17ae16c6668d313eac2f96dbcda3f291")
	require.NoError(t, err)

	var (
		body   []byte
		header http.Header
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ = io.ReadAll(r.Body)
		header = r.Header.Clone()
	}))
	defer srv.Close()

	e := New(config.ExportConfig{Enabled: true, WebhookURL: srv.URL}, noRetry(), WithSigner(signer))
	e.Handle(swapEvent("a"))
	require.NoError(t, e.Flush(context.Background()))

	assert.Equal(t, signer.Address(), header.Get(HeaderSigner))
	ok, err := security.Verify(body, header.Get(HeaderSignature), header.Get(HeaderSigner))
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestExporter_StopWaitsForInFlightExport(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer srv.Close()

	e := New(config.ExportConfig{Enabled: true, WebhookURL: srv.URL, BatchSize: 2, Interval: time.Hour}, noRetry())
	e.Start(context.Background())
	e.Handle(swapEvent("a"))
	e.Handle(swapEvent("b"))

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("full batch was not exported")
	}

	stopped := make(chan error, 1)
	go func() { stopped <- e.Stop(context.Background()) }()

	select {
	case <-stopped:
		t.Fatal("Stop returned while an export was in flight")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case err := <-stopped:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Stop did not return")
	}
	assert.Equal(t, 2, e.Status().Exported)
}

func TestExporter_StopHonoursContext(t *testing.T) {
	started := make(chan struct{})
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
	}))
	defer srv.Close()
	defer close(release)

	e := New(config.ExportConfig{Enabled: true, WebhookURL: srv.URL, BatchSize: 1}, noRetry())
	e.Handle(swapEvent("a"))
	<-started

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := e.Stop(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
