// Package thornode provides a client for the THORNode and MAYANode REST APIs
package thornode

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"github.com/yourorg/swapkit-go/internal/apperr"
	"github.com/yourorg/swapkit-go/internal/circuitbreaker"
	"github.com/yourorg/swapkit-go/internal/metrics"
	"github.com/yourorg/swapkit-go/internal/otel"
	"github.com/yourorg/swapkit-go/internal/types"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/time/rate"
)

// Network selects the node API family
type Network string

const (
	NetworkThorchain Network = "thorchain"
	NetworkMayachain Network = "mayachain"
)

var baseURLs = map[Network][2]string{
	NetworkThorchain: {"https://thornode.ninerealms.com", "https://stagenet-thornode.ninerealms.com"},
	NetworkMayachain: {"https://mayanode.mayachain.info", "https://stagenet.mayanode.mayachain.info"},
}

// BaseURL returns the public node endpoint of network
func BaseURL(network Network, stagenet bool) string {
	urls, ok := baseURLs[network]
	if !ok {
		return ""
	}
	if stagenet {
		return urls[1]
	}
	return urls[0]
}

// InboundAddress is one entry of the inbound_addresses listing
type InboundAddress struct {
	Chain                types.Chain `json:"chain"`
	PubKey               string      `json:"pub_key"`
	Address              string      `json:"address"`
	Router               string      `json:"router"`
	Halted               bool        `json:"halted"`
	GlobalTradingPaused  bool        `json:"global_trading_paused"`
	ChainTradingPaused   bool        `json:"chain_trading_paused"`
	ChainLpActionsPaused bool        `json:"chain_lp_actions_paused"`
	GasRate              string      `json:"gas_rate"`
	GasRateUnits         string      `json:"gas_rate_units"`
	OutboundTxSize       string      `json:"outbound_tx_size"`
	OutboundFee          string      `json:"outbound_fee"`
	DustThreshold        string      `json:"dust_threshold"`
}

// Client talks to a THORNode or MAYANode
type Client struct {
	baseURL string
	network Network
	http    *retryablehttp.Client
	limiter *rate.Limiter
	breaker *circuitbreaker.CircuitBreaker
	metrics *metrics.Metrics
	timeout time.Duration
}

// Option configures a Client
type Option func(*Client)

// WithRetry sets the retry budget and backoff bounds
func WithRetry(max int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.http.RetryMax = max
		c.http.RetryWaitMin = waitMin
		c.http.RetryWaitMax = waitMax
	}
}

// WithRateLimit throttles outbound requests
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBreaker guards requests with cb
func WithBreaker(cb *circuitbreaker.CircuitBreaker) Option {
	return func(c *Client) {
		c.breaker = cb
	}
}

// WithMetrics records request outcomes in m
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithTimeout bounds every request including retries
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// newRetryClient creates a new HTTP client with retry capabilities
func newRetryClient() *retryablehttp.Client {
	c := retryablehttp.NewClient()
	c.RetryMax = 3
	c.RetryWaitMin = 500 * time.Millisecond
	c.RetryWaitMax = 3 * time.Second
	c.Logger = nil
	return c
}

// NewClient creates a client for network. An empty baseURL selects the
// public mainnet endpoint.
func NewClient(baseURL string, network Network, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = BaseURL(network, false)
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		network: network,
		http:    newRetryClient(),
		timeout: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Network returns the API family the client talks to
func (c *Client) Network() Network {
	return c.network
}

// Breaker returns the circuit breaker guarding the client, if any
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.breaker
}

// InboundAddresses returns the current inbound vaults and routers
func (c *Client) InboundAddresses(ctx context.Context) ([]InboundAddress, error) {
	var out []InboundAddress
	if err := c.get(ctx, "inbound_addresses", &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Mimir returns the node's mimir key/value overrides
func (c *Client) Mimir(ctx context.Context) (map[string]int64, error) {
	out := map[string]int64{}
	if err := c.get(ctx, "mimir", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, out interface{}) (err error) {
	url := fmt.Sprintf("%s/%s/%s", c.baseURL, c.network, endpoint)

	ctx, span := otel.Tracer().Start(ctx, "thornode."+endpoint, trace.WithAttributes(
		attribute.String("network", string(c.network)),
		attribute.String("url", url),
	))
	defer span.End()

	status := "ok"
	defer func() {
		if err != nil {
			otel.RecordError(ctx, err)
		}
		c.metrics.NodeRequest(string(c.network), endpoint, status)
	}()

	if c.breaker != nil {
		if err := c.breaker.Allow(); err != nil {
			status = "rejected"
			return apperr.Wrap(apperr.KeyNodeRequestFailed, err)
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			status = "throttled"
			if c.breaker != nil {
				c.breaker.Release()
			}
			return apperr.Wrap(apperr.KeyNodeRequestFailed, err)
		}
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	if err := c.do(ctx, url, out); err != nil {
		status = "error"
		if c.breaker != nil {
			c.breaker.RecordFailure(err)
		}
		logrus.WithError(err).WithFields(logrus.Fields{
			"network":  c.network,
			"endpoint": endpoint,
		}).Warn("Node request failed")
		return apperr.Wrap(apperr.KeyNodeRequestFailed, err)
	}

	if c.breaker != nil {
		c.breaker.RecordSuccess()
	}
	return nil
}

func (c *Client) do(ctx context.Context, url string, out interface{}) error {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("GET %s: unexpected status %d: %s", url, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
