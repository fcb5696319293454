package otp

import (
	"strings"
	"testing"
)

func testKey() []byte {
	key := make([]byte, 32)
	for i := range key {
		key[i] = byte(i)
	}
	return key
}

func TestFingerprinterDeterminism(t *testing.T) {
	f, err := NewFingerprinter(testKey())
	if err != nil {
		t.Fatalf("NewFingerprinter returned error: %v", err)
	}

	first := f.Email("student@university.az")
	second := f.Email("student@university.az")
	if first != second {
		t.Fatalf("same email produced different fingerprints: %s vs %s", first, second)
	}
}

func TestFingerprinterNormalizesEmail(t *testing.T) {
	f, err := NewFingerprinter(testKey())
	if err != nil {
		t.Fatalf("NewFingerprinter returned error: %v", err)
	}

	if f.Email("  Student@University.az ") != f.Email("student@university.az") {
		t.Fatal("expected case and whitespace variants to fingerprint identically")
	}
}

func TestFingerprinterDistinctInputs(t *testing.T) {
	f, err := NewFingerprinter(testKey())
	if err != nil {
		t.Fatalf("NewFingerprinter returned error: %v", err)
	}

	if f.Email("a@example.com") == f.Email("b@example.com") {
		t.Fatal("different emails produced the same fingerprint")
	}
	if f.Code("123456") == f.Code("123457") {
		t.Fatal("different codes produced the same fingerprint")
	}
}

func TestFingerprinterKeyValidation(t *testing.T) {
	if _, err := NewFingerprinter([]byte("too short")); err == nil {
		t.Fatal("expected error for short key, got no error")
	}
	if _, err := NewFingerprinter([]byte(strings.Repeat("x", 65))); err == nil {
		t.Fatal("expected error for oversized key, got no error")
	}
}
