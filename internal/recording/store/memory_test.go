package store

import (
	"bytes"
	"context"
	"testing"
)

func TestMemoryStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	in := []Segment{
		{Data: []byte("prompt one audio"), ContentType: "audio/webm"},
		{Data: []byte("prompt two audio"), ContentType: "audio/webm"},
		{Data: []byte("prompt three audio"), ContentType: "audio/mp4"},
	}
	if err := s.ReplaceAll(ctx, "sess-1", in); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	out, err := s.ReadAll(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(out) != len(in) {
		t.Fatalf("got %d segments, want %d", len(out), len(in))
	}
	for i := range in {
		if !bytes.Equal(out[i].Data, in[i].Data) {
			t.Errorf("segment %d data mismatch", i)
		}
		if out[i].ContentType != in[i].ContentType {
			t.Errorf("segment %d content type = %q, want %q", i, out[i].ContentType, in[i].ContentType)
		}
	}
}

func TestMemoryStoreReplaceShrinksSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	big := []Segment{
		{Data: []byte("a")}, {Data: []byte("b")}, {Data: []byte("c")},
	}
	if err := s.ReplaceAll(ctx, "sess-1", big); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	small := []Segment{{Data: []byte("only")}}
	if err := s.ReplaceAll(ctx, "sess-1", small); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	out, err := s.ReadAll(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("got %d segments after shrink, want 1", len(out))
	}
	if string(out[0].Data) != "only" {
		t.Errorf("segment data = %q", out[0].Data)
	}
}

func TestMemoryStoreSessionsAreDisjoint(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.ReplaceAll(ctx, "sess-a", []Segment{{Data: []byte("a")}}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if err := s.ReplaceAll(ctx, "sess-b", []Segment{{Data: []byte("b1")}, {Data: []byte("b2")}}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	outA, _ := s.ReadAll(ctx, "sess-a")
	outB, _ := s.ReadAll(ctx, "sess-b")
	if len(outA) != 1 || len(outB) != 2 {
		t.Fatalf("got %d/%d segments, want 1/2", len(outA), len(outB))
	}
}

func TestMemoryStoreClear(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.ReplaceAll(ctx, "sess-1", []Segment{{Data: []byte("x")}}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}
	if err := s.Clear(ctx, "sess-1"); err != nil {
		t.Fatalf("Clear: %v", err)
	}

	out, err := s.ReadAll(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ReadAll after clear: %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("got %d segments after clear, want 0", len(out))
	}
}

func TestMemoryStoreClearUnknownSession(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Clear(context.Background(), "never-seen"); err != nil {
		t.Fatalf("Clear on unknown session: %v", err)
	}
}

func TestMemoryStoreReadDetachesData(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if err := s.ReplaceAll(ctx, "sess-1", []Segment{{Data: []byte("original"), ContentType: "audio/webm"}}); err != nil {
		t.Fatalf("ReplaceAll: %v", err)
	}

	first, err := s.ReadAll(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	copy(first[0].Data, "clobber!")

	second, err := s.ReadAll(ctx, "sess-1")
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(second[0].Data) != "original" {
		t.Fatalf("stored segment = %q after caller mutation, want %q", second[0].Data, "original")
	}
}

func TestSessionKeyScopesByOwner(t *testing.T) {
	if SessionKey("user-a", "sess-1") == SessionKey("user-b", "sess-1") {
		t.Fatal("same session id under different owners must map to different keys")
	}
	if SessionKey("user-a", "sess-1") != SessionKey("user-a", "sess-1") {
		t.Fatal("key derivation must be stable")
	}
}

func TestSegmentKeyOrdering(t *testing.T) {
	// Zero-padded keys keep lexicographic order equal to ordinal order.
	prev := segmentKey(0)
	for i := 1; i < 120; i++ {
		k := segmentKey(i)
		if k <= prev {
			t.Fatalf("segmentKey(%d) = %q not after %q", i, k, prev)
		}
		prev = k
	}
}
