package persist

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/blockfs-go/blockfs/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Params{BlockSize: 64, SuperBlockSize: 32, SuperBlockCount: 4})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.FileAt(0)
	_ = s.Create(h)
	if err := s.Resize(h, 500); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := Save(&buf, s); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(&buf)
	if err != nil {
		t.Fatal(err)
	}

	if got, want := loaded.Params(), s.Params(); got != want {
		t.Fatalf("Params mismatch after round trip: %+v vs %+v", got, want)
	}
	if got, want := loaded.Payload(), s.Payload(); got != want {
		t.Fatalf("Payload mismatch after round trip: %d vs %d", got, want)
	}
	lh, err := loaded.FileAt(0)
	if err != nil {
		t.Fatal(err)
	}
	size, err := loaded.Size(lh)
	if err != nil {
		t.Fatal(err)
	}
	if size != 500 {
		t.Fatalf("Size after round trip = %d, want 500", size)
	}
	if got, want := loaded.Header().VolumeID(), s.Header().VolumeID(); got != want {
		t.Fatalf("VolumeID changed across round trip: %v vs %v", got, want)
	}
}

func TestSaveFileLoadFileAndVolumeTag(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.FileAt(0)
	_ = s.Create(h)
	_ = s.Resize(h, 1000)

	path := filepath.Join(t.TempDir(), "snapshot.bfs")
	if err := SaveFile(path, s); err != nil {
		t.Fatal(err)
	}

	id, err := VolumeIDOf(path)
	if err != nil {
		t.Fatal(err)
	}
	if id != s.Header().VolumeID().String() {
		t.Fatalf("tagged volume id = %q, want %q", id, s.Header().VolumeID().String())
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := loaded.Payload(), s.Payload(); got != want {
		t.Fatalf("Payload mismatch after file round trip: %d vs %d", got, want)
	}
}
