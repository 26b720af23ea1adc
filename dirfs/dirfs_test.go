package dirfs

import (
	"testing"

	"github.com/blockfs-go/blockfs/store"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	s, err := store.New(store.Params{BlockSize: 64, SuperBlockSize: 32, SuperBlockCount: 4, DescriptorCount: 64})
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	return s
}

func TestMkdirSetsDirFlagAndName(t *testing.T) {
	s := newTestStore(t)
	root, _ := s.FileAt(1)
	if err := Mkdir(s, root, "etc"); err != nil {
		t.Fatal(err)
	}
	desc, err := s.Descriptor(root)
	if err != nil {
		t.Fatal(err)
	}
	if desc.Flags()&store.FlagDR == 0 {
		t.Fatalf("expected DR flag to be set after Mkdir")
	}
	if !desc.Exists() {
		t.Fatalf("expected EX flag to be set after Mkdir")
	}
}

func TestLinkAndList(t *testing.T) {
	s := newTestStore(t)
	root, _ := s.FileAt(1)
	if err := Mkdir(s, root, ""); err != nil {
		t.Fatal(err)
	}

	var children []store.Handle
	for i := uint64(2); i < 6; i++ {
		h, err := s.FileAt(i)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Create(h); err != nil {
			t.Fatal(err)
		}
		if err := Link(s, root, h); err != nil {
			t.Fatal(err)
		}
		children = append(children, h)
	}

	got, err := List(s, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(children) {
		t.Fatalf("List returned %d entries, want %d", len(got), len(children))
	}
	for i, h := range got {
		if h.Index() != children[i].Index() {
			t.Fatalf("entry %d = %d, want %d", i, h.Index(), children[i].Index())
		}
	}
}

func TestListEmptyDirectory(t *testing.T) {
	s := newTestStore(t)
	root, _ := s.FileAt(1)
	if err := Mkdir(s, root, ""); err != nil {
		t.Fatal(err)
	}
	got, err := List(s, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 0 {
		t.Fatalf("List on empty directory = %d entries, want 0", len(got))
	}
}

func TestListRejectsNonDirectory(t *testing.T) {
	s := newTestStore(t)
	h, _ := s.FileAt(0)
	if err := s.Create(h); err != nil {
		t.Fatal(err)
	}
	if _, err := List(s, h); err == nil {
		t.Fatalf("expected error listing a non-directory")
	}
}

func TestLinkGrowsAcrossBlocks(t *testing.T) {
	s := newTestStore(t)
	root, _ := s.FileAt(1)
	if err := Mkdir(s, root, ""); err != nil {
		t.Fatal(err)
	}
	// BlockSize=64 gives 8 slots per block; link more than one block's
	// worth of children to exercise the grow-on-full path.
	const n = 20
	for i := uint64(2); i < 2+n; i++ {
		h, err := s.FileAt(i)
		if err != nil {
			t.Fatal(err)
		}
		if err := s.Create(h); err != nil {
			t.Fatal(err)
		}
		if err := Link(s, root, h); err != nil {
			t.Fatal(err)
		}
	}
	got, err := List(s, root)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != n {
		t.Fatalf("List returned %d entries, want %d", len(got), n)
	}
}
