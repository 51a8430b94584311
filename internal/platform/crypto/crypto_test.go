package crypto

import (
	"bytes"
	"encoding/hex"
	"testing"
)

func TestSealOpenRoundTrip(t *testing.T) {
	key := hex.EncodeToString(bytes.Repeat([]byte{0xAB}, 32))
	keeper, err := New(key)
	if err != nil {
		t.Fatalf("new keeper: %v", err)
	}
	if !keeper.Configured() {
		t.Fatal("expected keeper to be configured")
	}

	sealed, err := keeper.Seal([]byte("JBSWY3DPEHPK3PXP"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if bytes.Contains(sealed, []byte("JBSWY3DP")) {
		t.Fatal("sealed output contains plaintext")
	}

	plain, err := keeper.Open(sealed)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if string(plain) != "JBSWY3DPEHPK3PXP" {
		t.Fatalf("unexpected plaintext %q", plain)
	}
}

func TestUnconfiguredKeeperPassesThrough(t *testing.T) {
	keeper, err := New("")
	if err != nil {
		t.Fatalf("new keeper: %v", err)
	}
	if keeper.Configured() {
		t.Fatal("empty key must not configure keeper")
	}
	sealed, err := keeper.Seal([]byte("plain"))
	if err != nil {
		t.Fatalf("seal: %v", err)
	}
	if string(sealed) != "plain" {
		t.Fatalf("expected passthrough, got %q", sealed)
	}
}

func TestRejectsShortKey(t *testing.T) {
	if _, err := New("too-short"); err == nil {
		t.Fatal("expected error for short key")
	}
}

func TestOpenRejectsTruncatedCiphertext(t *testing.T) {
	key := hex.EncodeToString(bytes.Repeat([]byte{0x01}, 32))
	keeper, err := New(key)
	if err != nil {
		t.Fatalf("new keeper: %v", err)
	}
	if _, err := keeper.Open([]byte{0x01, 0x02}); err == nil {
		t.Fatal("expected error for truncated ciphertext")
	}
}
