package orbex

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/orbexchain/orbex-go/pkg/keys"
	"github.com/orbexchain/orbex-go/pkg/log"
	"github.com/orbexchain/orbex-go/pkg/tx"
)

// ErrAccountStateUnavailable is returned when the gateway cannot serve the
// account state for the session address, e.g. because the agent has not been
// bound yet.
var ErrAccountStateUnavailable = errors.New("account state unavailable")

const gatewayTimeout = 30 * time.Second

// gatewayOKCode is the code the gateway sets on successful responses.
const gatewayOKCode = "0"

// baseResp is the envelope every gateway response carries.
type baseResp struct {
	Code string `json:"code"`
	Msg  string `json:"msg"`
}

func (r baseResp) ok() bool {
	return r.Code == gatewayOKCode
}

type accountInfoResponse struct {
	baseResp
	Data struct {
		AccountNumber string `json:"accountNumber"`
		Sequence      string `json:"sequence"`
	} `json:"data"`
}

// SubmitRequest is a signed transaction submission. The gateway routes it by
// type URL and cross-checks the echoed account number before relaying to the
// ledger.
type SubmitRequest struct {
	TypeURL       string `json:"typeUrl"`
	RawTx         string `json:"rawTx"`
	AccountNumber uint64 `json:"accountNumber"`
}

type submitResponse struct {
	baseResp
	Data struct {
		TxHash     string `json:"txHash"`
		RawTx      string `json:"rawTx"`
		ResultData string `json:"resultData"`
	} `json:"data"`
}

// Gateway is the HTTP client for the venue gateway. It implements
// AccountStateProvider.
type Gateway struct {
	baseURL    string
	httpClient *http.Client
	lg         log.Logger
	metrics    *Metrics
}

// NewGateway builds a gateway client for the given HTTP base URL.
func NewGateway(baseURL string, lg log.Logger) *Gateway {
	if lg == nil {
		lg = log.NewNoopLogger()
	}
	return &Gateway{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: gatewayTimeout},
		lg:         lg.NewSystem("gateway"),
	}
}

// AccountState fetches the account number and next ordered sequence for a
// bech32 address. Failures wrap ErrAccountStateUnavailable.
func (g *Gateway) AccountState(ctx context.Context, address string) (AccountState, error) {
	state, err := g.accountState(ctx, address)
	g.metrics.recordAccountLookup(err)
	return state, err
}

func (g *Gateway) accountState(ctx context.Context, address string) (AccountState, error) {
	var result accountInfoResponse
	if err := g.get(ctx, accountInfoPath, map[string]string{"address": address}, &result); err != nil {
		return AccountState{}, fmt.Errorf("%w: %w", ErrAccountStateUnavailable, err)
	}
	if !result.ok() {
		return AccountState{}, fmt.Errorf("%w: gateway code %s: %s", ErrAccountStateUnavailable, result.Code, result.Msg)
	}

	accountNumber, err := strconv.ParseUint(result.Data.AccountNumber, 10, 64)
	if err != nil {
		return AccountState{}, fmt.Errorf("%w: malformed account number %q", ErrAccountStateUnavailable, result.Data.AccountNumber)
	}
	sequence, err := strconv.ParseUint(result.Data.Sequence, 10, 64)
	if err != nil {
		return AccountState{}, fmt.Errorf("%w: malformed sequence %q", ErrAccountStateUnavailable, result.Data.Sequence)
	}
	return AccountState{AccountNumber: accountNumber, Sequence: sequence}, nil
}

// SubmitRawTx posts a signed transaction and returns the transaction hash
// reported by the gateway.
func (g *Gateway) SubmitRawTx(ctx context.Context, req SubmitRequest) (string, error) {
	var result submitResponse
	if err := g.post(ctx, sendTransactionPath, req, &result); err != nil {
		return "", err
	}
	if !result.ok() {
		return "", fmt.Errorf("gateway rejected transaction: code %s: %s", result.Code, result.Msg)
	}

	g.lg.Debug("transaction submitted", "typeURL", req.TypeURL, "txHash", result.Data.TxHash)
	return result.Data.TxHash, nil
}

func (g *Gateway) get(ctx context.Context, path string, params map[string]string, result interface{}) error {
	u, err := url.Parse(g.baseURL + path)
	if err != nil {
		return fmt.Errorf("failed to parse URL: %w", err)
	}
	q := u.Query()
	for k, v := range params {
		q.Set(k, v)
	}
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create GET request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	return g.do(req, result)
}

func (g *Gateway) post(ctx context.Context, path string, data interface{}, result interface{}) error {
	body, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal request data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create POST request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	return g.do(req, result)
}

func (g *Gateway) do(req *http.Request, result interface{}) error {
	resp, err := g.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("gateway request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read gateway response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("gateway returned HTTP %d: %s", resp.StatusCode, body)
	}
	if err := json.Unmarshal(body, result); err != nil {
		return fmt.Errorf("failed to unmarshal gateway response: %w, body: %s", err, body)
	}
	return nil
}

// Client is the top-level SDK handle: a signing session plus the gateway
// transport and optional market stream.
type Client struct {
	cfg     Config
	session *SigningSession
	gateway *Gateway
	metrics *Metrics
	lg      log.Logger

	wsMu sync.Mutex
	ws   *MarketStream
}

// Option customizes a Client.
type Option func(*Client)

// WithLogger replaces the default logger.
func WithLogger(lg log.Logger) Option {
	return func(c *Client) { c.lg = lg }
}

// WithMetrics attaches Prometheus metrics. Without this option the client
// records nothing.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHTTPClient replaces the gateway HTTP client, e.g. to add a proxy.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.gateway.httpClient = hc }
}

// NewClient validates the config, derives the session identity from the
// configured private key, and wires the gateway as the session's
// account-state provider.
func NewClient(cfg Config, opts ...Option) (*Client, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	priv, err := keys.NewPrivateKeyFromHex(cfg.PrivateKeyHex)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	c := &Client{
		cfg: cfg,
		lg:  log.NewLogger("orbex"),
	}
	c.gateway = NewGateway(cfg.GatewayURL, nil)
	for _, opt := range opts {
		opt(c)
	}
	c.gateway.lg = c.lg.NewSystem("gateway")
	c.gateway.metrics = c.metrics

	c.session, err = NewSigningSession(priv, c.gateway, SessionParams{
		HRP:             cfg.AccountHRP,
		ChainID:         cfg.ChainID,
		GasLimit:        cfg.GasLimit,
		UnorderedWindow: cfg.UnorderedWindow,
	}, c.lg)
	if err != nil {
		priv.Zero()
		return nil, err
	}

	c.lg.Info("client initialized", "address", c.session.Address(), "chainID", cfg.ChainID)
	return c, nil
}

// Address is the agent address of this client, bech32-encoded.
func (c *Client) Address() string {
	return c.session.Address()
}

// Session exposes the signing session for callers that assemble their own
// envelopes.
func (c *Client) Session() *SigningSession {
	return c.session
}

// SignAndSubmit wraps payload under typeURL, signs it with the session, and
// submits it through the gateway. It returns the transaction hash.
func (c *Client) SignAndSubmit(ctx context.Context, typeURL string, payload []byte, opts SignOptions) (string, error) {
	signed, err := c.session.SignTx(ctx, []tx.Envelope{tx.Wrap(payload, typeURL)}, opts)
	if err != nil {
		return "", err
	}
	c.metrics.recordTxSigned(typeURL, signed.Unordered)

	txHash, err := c.gateway.SubmitRawTx(ctx, SubmitRequest{
		TypeURL:       typeURL,
		RawTx:         signed.Raw.Base64(),
		AccountNumber: signed.AccountNumber,
	})
	c.metrics.recordTxSubmitted(typeURL, err)
	if err != nil {
		return "", err
	}
	return txHash, nil
}

// MarketStream returns the shared market stream, dialing it on first use.
func (c *Client) MarketStream(ctx context.Context) (*MarketStream, error) {
	if c.cfg.WebsocketURL == "" {
		return nil, errors.New("websocket URL is not configured")
	}

	c.wsMu.Lock()
	defer c.wsMu.Unlock()
	if c.ws != nil {
		return c.ws, nil
	}

	ws := NewMarketStream(c.cfg.WebsocketURL, c.lg, c.metrics)
	if err := ws.Dial(ctx); err != nil {
		return nil, err
	}
	c.ws = ws
	return c.ws, nil
}

// Close shuts down the market stream, if any, and wipes the session key.
func (c *Client) Close() error {
	c.wsMu.Lock()
	ws := c.ws
	c.ws = nil
	c.wsMu.Unlock()

	var err error
	if ws != nil {
		err = ws.Close()
	}
	c.session.Close()
	return err
}
