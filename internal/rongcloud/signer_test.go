package rongcloud_test

import (
	"bytes"
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"strconv"
	"testing"
	"testing/iotest"
	"time"

	"github.com/yangxing-star/rongyun/internal/rongcloud"
)

func sha1Hex(s string) string {
	sum := sha1.Sum([]byte(s))
	return hex.EncodeToString(sum[:])
}

func TestDigestConcatenatesWithoutSeparators(t *testing.T) {
	got := rongcloud.Digest("secret", "12345", "1700000000")
	if want := sha1Hex("secret123451700000000"); got != want {
		t.Fatalf("expected %s, got %s", want, got)
	}
	if got != rongcloud.Digest("secret", "12345", "1700000000") {
		t.Fatalf("expected digest to be deterministic")
	}
}

func TestDigestChangesWithEveryInput(t *testing.T) {
	base := rongcloud.Digest("secret", "12345", "1700000000")
	variants := map[string]string{
		"secret":    rongcloud.Digest("secreT", "12345", "1700000000"),
		"nonce":     rongcloud.Digest("secret", "12346", "1700000000"),
		"timestamp": rongcloud.Digest("secret", "12345", "1700000001"),
	}
	for field, digest := range variants {
		if digest == base {
			t.Fatalf("expected digest to change with %s", field)
		}
	}
}

func TestSignUsesClockAndRandomSource(t *testing.T) {
	fixed := time.Unix(1700000000, 0)
	entropy := bytes.Repeat([]byte{0x01, 0x23, 0x45, 0x67}, 8)

	first := rongcloud.NewSigner(
		rongcloud.WithSignerClock(func() time.Time { return fixed }),
		rongcloud.WithSignerRandom(bytes.NewReader(entropy)),
	)
	second := rongcloud.NewSigner(
		rongcloud.WithSignerClock(func() time.Time { return fixed }),
		rongcloud.WithSignerRandom(bytes.NewReader(entropy)),
	)

	a, err := first.Sign("secret")
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}
	b, err := second.Sign("secret")
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}
	if a != b {
		t.Fatalf("expected identical stamps for identical inputs, got %+v and %+v", a, b)
	}
	if a.Timestamp != "1700000000" {
		t.Fatalf("expected unix seconds timestamp, got %s", a.Timestamp)
	}
	if a.Signature != sha1Hex("secret"+a.Nonce+a.Timestamp) {
		t.Fatalf("signature does not match nonce and timestamp")
	}
	if !rongcloud.Verify("secret", a) {
		t.Fatalf("expected stamp to verify")
	}
}

func TestSignDrawsFreshNonces(t *testing.T) {
	signer := rongcloud.NewSigner()
	seen := make(map[string]struct{})
	for i := 0; i < 64; i++ {
		stamp, err := signer.Sign("secret")
		if err != nil {
			t.Fatalf("unexpected sign error: %v", err)
		}
		n, err := strconv.ParseUint(stamp.Nonce, 10, 64)
		if err != nil {
			t.Fatalf("nonce %q is not a decimal integer", stamp.Nonce)
		}
		if n >= 100_000_000_000_000 {
			t.Fatalf("nonce %d out of range", n)
		}
		if _, dup := seen[stamp.Nonce]; dup {
			t.Fatalf("nonce %s repeated", stamp.Nonce)
		}
		seen[stamp.Nonce] = struct{}{}
	}
}

func TestSignFailsWithoutEntropy(t *testing.T) {
	cause := errors.New("device gone")
	signer := rongcloud.NewSigner(rongcloud.WithSignerRandom(iotest.ErrReader(cause)))
	_, err := signer.Sign("secret")
	if !errors.Is(err, rongcloud.ErrEntropy) {
		t.Fatalf("expected entropy error, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected random source error in chain, got %v", err)
	}
}

func TestVerifyRejectsTamperedStamp(t *testing.T) {
	stamp, err := rongcloud.NewSigner().Sign("secret")
	if err != nil {
		t.Fatalf("unexpected sign error: %v", err)
	}
	if rongcloud.Verify("other", stamp) {
		t.Fatalf("expected wrong secret to fail")
	}
	stamp.Timestamp += "0"
	if rongcloud.Verify("secret", stamp) {
		t.Fatalf("expected modified timestamp to fail")
	}
}
