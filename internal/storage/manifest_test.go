package storage

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestManifest(t *testing.T) *Manifest {
	t.Helper()
	m, err := OpenManifest(filepath.Join(t.TempDir(), "manifest.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { m.Close() })
	return m
}

func TestManifest_PutGet(t *testing.T) {
	m := openTestManifest(t)
	ctx := context.Background()

	rec := SourceRecord{
		Path:       "/data/cleaned/dlug.csv",
		Domain:     "finanse_publiczne",
		Hash:       "abc123",
		ChunkCount: 7,
	}
	if err := m.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := m.Get(ctx, rec.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got == nil {
		t.Fatal("expected a record")
	}
	if got.Domain != rec.Domain || got.Hash != rec.Hash || got.ChunkCount != rec.ChunkCount {
		t.Errorf("got %+v, want %+v", got, rec)
	}
	if got.IngestedAt.IsZero() {
		t.Error("ingested_at should be set")
	}
}

func TestManifest_GetMissing(t *testing.T) {
	m := openTestManifest(t)

	got, err := m.Get(context.Background(), "/nonexistent.csv")
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown path, got %+v", got)
	}
}

func TestManifest_PutReplaces(t *testing.T) {
	m := openTestManifest(t)
	ctx := context.Background()

	rec := SourceRecord{Path: "/data/a.csv", Domain: "infrastruktura", Hash: "v1", ChunkCount: 3}
	if err := m.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}
	rec.Hash = "v2"
	rec.ChunkCount = 5
	if err := m.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}

	got, err := m.Get(ctx, rec.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got.Hash != "v2" || got.ChunkCount != 5 {
		t.Errorf("record not replaced: %+v", got)
	}

	records, err := m.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Errorf("got %d records, want 1", len(records))
	}
}

func TestManifest_CountByDomain(t *testing.T) {
	m := openTestManifest(t)
	ctx := context.Background()

	for _, rec := range []SourceRecord{
		{Path: "/a.csv", Domain: "finanse_publiczne", Hash: "h1", ChunkCount: 1},
		{Path: "/b.csv", Domain: "finanse_publiczne", Hash: "h2", ChunkCount: 1},
		{Path: "/c.xlsx", Domain: "infrastruktura", Hash: "h3", ChunkCount: 1},
	} {
		if err := m.Put(ctx, rec); err != nil {
			t.Fatal(err)
		}
	}

	counts, err := m.CountByDomain(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if counts["finanse_publiczne"] != 2 || counts["infrastruktura"] != 1 {
		t.Errorf("counts = %v", counts)
	}
}

func TestManifest_Delete(t *testing.T) {
	m := openTestManifest(t)
	ctx := context.Background()

	rec := SourceRecord{Path: "/a.csv", Domain: "d", Hash: "h", ChunkCount: 1}
	if err := m.Put(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if err := m.Delete(ctx, rec.Path); err != nil {
		t.Fatal(err)
	}
	got, err := m.Get(ctx, rec.Path)
	if err != nil {
		t.Fatal(err)
	}
	if got != nil {
		t.Error("record should be gone after delete")
	}
}
