package id

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestGenerate(t *testing.T) {
	gen := NewGenerator()

	id1 := gen.Generate()
	id2 := gen.Generate()

	if id1.String() == id2.String() {
		t.Error("Generated IDs should be unique")
	}
	if len(id1.String()) != 26 {
		t.Errorf("ULID should be 26 characters, got %d", len(id1.String()))
	}
}

func TestNewCycleID(t *testing.T) {
	for _, prefix := range []string{SyncPrefix, PagePrefix, ClearPrefix} {
		id := NewCycleID(prefix)
		if !strings.HasPrefix(id.String(), prefix+"_") {
			t.Errorf("ID should start with %q, got %s", prefix+"_", id)
		}
	}
}

func TestDeterministicGenerator(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	entropy := bytes.Repeat([]byte{0x42}, 64)

	a := NewGeneratorWithEntropy(bytes.NewReader(entropy), func() time.Time { return fixed })
	b := NewGeneratorWithEntropy(bytes.NewReader(entropy), func() time.Time { return fixed })

	if a.Generate() != b.Generate() {
		t.Error("same entropy and clock should produce the same ULID")
	}
}

func TestTimestamp(t *testing.T) {
	fixed := time.UnixMilli(1700000000123)
	gen := NewGeneratorWithEntropy(bytes.NewReader(bytes.Repeat([]byte{1}, 32)), func() time.Time { return fixed })

	got, err := Timestamp(gen.GenerateWithPrefix(SyncPrefix))
	if err != nil {
		t.Fatalf("Timestamp failed: %v", err)
	}
	if !got.Equal(fixed) {
		t.Errorf("Timestamp = %v, want %v", got, fixed)
	}

	if _, err := Timestamp("sync_not-a-ulid"); err == nil {
		t.Error("expected error for invalid id")
	}
}
