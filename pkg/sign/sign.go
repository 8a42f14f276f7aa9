package sign

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/orbexchain/orbex-go/pkg/keys"
)

// CompactSignatureSize is the exact length of a transaction signature:
// 32 bytes of big-endian r followed by 32 bytes of big-endian s.
const CompactSignatureSize = 64

var (
	// ErrNoBackend is returned when every signing backend was excluded at
	// build time. This is fatal; there is nothing to retry.
	ErrNoBackend = errors.New("sign: no signing backend compiled in")
	// ErrSignatureLength is returned when a backend yields something other
	// than a 64-byte compact signature. It indicates a backend bug and is
	// never retried.
	ErrSignatureLength = errors.New("sign: invalid signature length")
)

// Backend is a single secp256k1 signing implementation. Implementations
// must return exactly 64 bytes, r||s big-endian, with s normalized to the
// lower half of the curve order.
type Backend interface {
	// Name identifies the backend in errors and logs.
	Name() string
	// SignDigest signs a pre-computed 32-byte digest.
	SignDigest(digest [32]byte, priv *keys.PrivateKey) ([]byte, error)
}

type registeredBackend struct {
	priority int
	backend  Backend
}

var (
	backendsMu sync.Mutex
	backends   []registeredBackend

	resolveOnce sync.Once
	active      Backend
)

// registerBackend is called from backend init functions. Lower priority
// wins; the order is fixed at link time by which files are compiled in.
func registerBackend(priority int, b Backend) {
	backendsMu.Lock()
	defer backendsMu.Unlock()
	backends = append(backends, registeredBackend{priority: priority, backend: b})
}

// ActiveBackend resolves the signing backend. The first registered backend
// by priority is selected exactly once for the lifetime of the process; the
// chain never falls back per call, so every signature in a session comes
// from the same implementation.
func ActiveBackend() (Backend, error) {
	resolveOnce.Do(func() {
		backendsMu.Lock()
		defer backendsMu.Unlock()
		active = resolveBackend(backends)
	})
	if active == nil {
		return nil, ErrNoBackend
	}
	return active, nil
}

func resolveBackend(candidates []registeredBackend) Backend {
	if len(candidates) == 0 {
		return nil
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].priority < candidates[j].priority
	})
	return candidates[0].backend
}

// SignHash signs a pre-computed 32-byte digest with the active backend and
// validates the compact form before returning it.
func SignHash(digest [32]byte, priv *keys.PrivateKey) ([]byte, error) {
	b, err := ActiveBackend()
	if err != nil {
		return nil, err
	}
	return signWith(b, digest, priv)
}

func signWith(b Backend, digest [32]byte, priv *keys.PrivateKey) ([]byte, error) {
	sig, err := b.SignDigest(digest, priv)
	if err != nil {
		return nil, fmt.Errorf("backend %s: %w", b.Name(), err)
	}
	if len(sig) != CompactSignatureSize {
		return nil, fmt.Errorf("%w: backend %s produced %d bytes, expected %d",
			ErrSignatureLength, b.Name(), len(sig), CompactSignatureSize)
	}
	return sig, nil
}

// SignMessage hashes the message with SHA-256 and signs the digest.
func SignMessage(message []byte, priv *keys.PrivateKey) ([]byte, error) {
	return SignHash(sha256.Sum256(message), priv)
}
