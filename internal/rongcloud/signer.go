package rongcloud

import (
	"crypto/rand"
	"crypto/sha1" // #nosec G505 -- the RongCloud signature scheme is defined over SHA-1.
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"io"
	"math/big"
	"strconv"
	"time"
)

// nonceLimit bounds nonces to 14 decimal digits.
var nonceLimit = big.NewInt(100_000_000_000_000)

// Stamp is the per-request authentication triple.
type Stamp struct {
	Nonce     string
	Timestamp string
	Signature string
}

// SignerOption customises a Signer.
type SignerOption func(*Signer)

// WithSignerClock overrides the clock used for timestamps.
func WithSignerClock(now func() time.Time) SignerOption {
	return func(s *Signer) {
		if now != nil {
			s.now = now
		}
	}
}

// WithSignerRandom overrides the nonce source. It must be cryptographically
// secure outside of tests.
func WithSignerRandom(r io.Reader) SignerOption {
	return func(s *Signer) {
		if r != nil {
			s.random = r
		}
	}
}

// Signer produces fresh stamps. It holds no mutable state and is safe for
// concurrent use as long as its random source is.
type Signer struct {
	now    func() time.Time
	random io.Reader
}

// NewSigner returns a signer reading crypto/rand and the system clock.
func NewSigner(opts ...SignerOption) *Signer {
	s := &Signer{now: time.Now, random: rand.Reader}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Sign draws a new nonce, reads the clock and signs both with secret.
func (s *Signer) Sign(secret string) (Stamp, error) {
	n, err := rand.Int(s.random, nonceLimit)
	if err != nil {
		return Stamp{}, fmt.Errorf("%w: %w", ErrEntropy, err)
	}
	nonce := n.String()
	timestamp := strconv.FormatInt(s.now().Unix(), 10)
	return Stamp{
		Nonce:     nonce,
		Timestamp: timestamp,
		Signature: Digest(secret, nonce, timestamp),
	}, nil
}

// Digest returns the lowercase hex SHA-1 of secret, nonce and timestamp
// concatenated without separators.
func Digest(secret, nonce, timestamp string) string {
	h := sha1.New() // #nosec G401
	io.WriteString(h, secret)
	io.WriteString(h, nonce)
	io.WriteString(h, timestamp)
	return hex.EncodeToString(h.Sum(nil))
}

// Verify reports whether stamp carries a signature derived from secret.
func Verify(secret string, stamp Stamp) bool {
	expected := Digest(secret, stamp.Nonce, stamp.Timestamp)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(stamp.Signature)) == 1
}
