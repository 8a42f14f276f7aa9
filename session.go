package orbex

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/orbexchain/orbex-go/pkg/keys"
	"github.com/orbexchain/orbex-go/pkg/log"
	"github.com/orbexchain/orbex-go/pkg/tx"
)

// AccountState is the venue's view of a signer: the stable account number
// assigned at registration and the next expected ordered sequence.
type AccountState struct {
	AccountNumber uint64
	Sequence      uint64
}

// AccountStateProvider resolves the account state for a bech32 address.
// The gateway client implements it; tests substitute their own.
type AccountStateProvider interface {
	AccountState(ctx context.Context, address string) (AccountState, error)
}

var (
	// ErrSessionClosed is returned by SignTx after Close.
	ErrSessionClosed = errors.New("signing session is closed")
	// ErrTimeoutConflict is returned when a timeout height is combined with
	// unordered mode. Unordered transactions expire by timestamp only.
	ErrTimeoutConflict = errors.New("timeout height applies to ordered transactions only")
)

// SignOptions select the replay-protection mode and optional body fields of
// a single transaction.
type SignOptions struct {
	Memo          string
	TimeoutHeight uint64
	// GasLimit overrides the session gas limit for this transaction.
	GasLimit uint64
	Fees     []tx.Coin
	// Unordered selects nonce-window replay protection: sequence stays zero
	// and the transaction expires UnorderedWindow after signing.
	Unordered       bool
	UnorderedWindow time.Duration
}

// SignedTx is a signed transaction together with the account coordinates it
// was signed under, which the gateway wants echoed on submission.
type SignedTx struct {
	Raw           tx.Raw
	AccountNumber uint64
	Sequence      uint64
	Unordered     bool
}

// SessionParams are the immutable parameters of a SigningSession.
type SessionParams struct {
	HRP     string
	ChainID string
	// GasLimit is the default per-transaction gas limit. Zero means the
	// package default.
	GasLimit uint64
	// UnorderedWindow is the default validity window for unordered
	// transactions. Zero means the package default.
	UnorderedWindow time.Duration
}

// SigningSession owns a private key for the duration of a client's life and
// turns envelopes into signed transactions. Identity, chain ID, and the
// account-state provider are fixed at construction; the only mutable state
// is the cached account number and the closed flag.
//
// Ordered transactions are serialized within the session: the fresh sequence
// fetch and the signing that consumes it happen under one mutex, so two
// concurrent ordered SignTx calls can never sign with the same sequence.
// Unordered transactions take no such lock.
type SigningSession struct {
	priv     *keys.PrivateKey
	pub      keys.PublicKey
	address  string
	chainID  string
	provider AccountStateProvider
	gasLimit uint64
	window   time.Duration
	lg       log.Logger
	now      func() time.Time

	mu            sync.RWMutex
	accountNumber *uint64
	closed        bool

	orderedMu sync.Mutex
}

// NewSigningSession builds a session around priv. The session takes
// ownership of the key; Close wipes it.
func NewSigningSession(priv *keys.PrivateKey, provider AccountStateProvider, params SessionParams, lg log.Logger) (*SigningSession, error) {
	if params.HRP == "" {
		params.HRP = AccountHRP
	}
	if params.ChainID == "" {
		return nil, errors.New("chain ID cannot be empty")
	}
	if provider == nil {
		return nil, errors.New("account state provider cannot be nil")
	}
	if params.GasLimit == 0 {
		params.GasLimit = defaultGasLimit
	}
	if params.UnorderedWindow == 0 {
		params.UnorderedWindow = defaultUnorderedWindow * time.Second
	}
	if lg == nil {
		lg = log.NewNoopLogger()
	}

	address, err := priv.Address().Bech32(params.HRP)
	if err != nil {
		return nil, fmt.Errorf("failed to derive session address: %w", err)
	}

	return &SigningSession{
		priv:     priv,
		pub:      priv.PublicKey(),
		address:  address,
		chainID:  params.ChainID,
		provider: provider,
		gasLimit: params.GasLimit,
		window:   params.UnorderedWindow,
		lg:       lg.NewSystem("session").With("address", address),
		now:      time.Now,
	}, nil
}

// Address is the session identity as a bech32 string.
func (s *SigningSession) Address() string {
	return s.address
}

// PublicKey is the session's compressed public key.
func (s *SigningSession) PublicKey() keys.PublicKey {
	return s.pub
}

// ChainID is the ledger this session signs for.
func (s *SigningSession) ChainID() string {
	return s.chainID
}

// SignTx assembles and signs a transaction carrying the given envelopes.
//
// Ordered mode fetches a fresh sequence from the provider for every call and
// holds the session's ordered mutex across fetch and sign. Unordered mode
// signs with sequence zero and a timeout timestamp at now plus the window.
func (s *SigningSession) SignTx(ctx context.Context, envelopes []tx.Envelope, opts SignOptions) (SignedTx, error) {
	if s.isClosed() {
		return SignedTx{}, ErrSessionClosed
	}
	if len(envelopes) == 0 {
		return SignedTx{}, errors.New("transaction carries no envelopes")
	}
	if opts.Unordered && opts.TimeoutHeight != 0 {
		return SignedTx{}, ErrTimeoutConflict
	}

	if opts.Unordered {
		accountNumber, err := s.resolveAccountNumber(ctx)
		if err != nil {
			return SignedTx{}, err
		}
		window := opts.UnorderedWindow
		if window == 0 {
			window = s.window
		}
		timeoutNs := s.now().Add(window).UnixNano()
		return s.assemble(envelopes, opts, accountNumber, 0, timeoutNs)
	}

	s.orderedMu.Lock()
	defer s.orderedMu.Unlock()

	state, err := s.provider.AccountState(ctx, s.address)
	if err != nil {
		return SignedTx{}, fmt.Errorf("failed to fetch account state: %w", err)
	}
	s.storeAccountNumber(state.AccountNumber)

	return s.assemble(envelopes, opts, state.AccountNumber, state.Sequence, 0)
}

func (s *SigningSession) assemble(envelopes []tx.Envelope, opts SignOptions, accountNumber, sequence uint64, timeoutNs int64) (SignedTx, error) {
	gasLimit := opts.GasLimit
	if gasLimit == 0 {
		gasLimit = s.gasLimit
	}

	body := tx.NewBody(envelopes, tx.BodyParams{
		Memo:               opts.Memo,
		TimeoutHeight:      opts.TimeoutHeight,
		Unordered:          opts.Unordered,
		TimeoutTimestampNs: timeoutNs,
	})
	authInfo := tx.NewAuthInfo(s.pub, sequence, gasLimit, opts.Fees...)
	doc := tx.NewSignDoc(body, authInfo, s.chainID, accountNumber)

	raw, err := tx.Sign(doc, s.priv)
	if err != nil {
		return SignedTx{}, fmt.Errorf("failed to sign transaction: %w", err)
	}

	s.lg.Debug("signed transaction",
		"accountNumber", accountNumber,
		"sequence", sequence,
		"unordered", opts.Unordered,
		"envelopes", len(envelopes))

	return SignedTx{
		Raw:           raw,
		AccountNumber: accountNumber,
		Sequence:      sequence,
		Unordered:     opts.Unordered,
	}, nil
}

// resolveAccountNumber returns the cached account number, fetching it from
// the provider on first use.
func (s *SigningSession) resolveAccountNumber(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	cached := s.accountNumber
	s.mu.RUnlock()
	if cached != nil {
		return *cached, nil
	}

	state, err := s.provider.AccountState(ctx, s.address)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch account state: %w", err)
	}
	s.storeAccountNumber(state.AccountNumber)
	return state.AccountNumber, nil
}

func (s *SigningSession) storeAccountNumber(n uint64) {
	s.mu.Lock()
	s.accountNumber = &n
	s.mu.Unlock()
}

// InvalidateAccountNumber drops the cached account number so the next
// transaction fetches it again. Call it after the gateway reports an
// account-number mismatch, e.g. when the account was re-registered.
func (s *SigningSession) InvalidateAccountNumber() {
	s.mu.Lock()
	s.accountNumber = nil
	s.mu.Unlock()
}

func (s *SigningSession) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close wipes the private key. The session is unusable afterwards.
func (s *SigningSession) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	s.priv.Zero()
}
