package vm

import (
	"bytes"
	"testing"
)

func TestMemoryResizeGrowsOnly(t *testing.T) {
	m := newMemory()
	m.Resize(32)
	if m.Len() != 32 {
		t.Fatalf("Len() = %d, want 32", m.Len())
	}
	m.Resize(16)
	if m.Len() != 32 {
		t.Errorf("Resize(16) after Resize(32) shrank memory: Len() = %d, want 32", m.Len())
	}
	m.Resize(64)
	if m.Len() != 64 {
		t.Errorf("Len() = %d, want 64", m.Len())
	}
}

func TestMemorySetAndGetCopy(t *testing.T) {
	m := newMemory()
	m.Resize(64)
	m.Set(0, 4, []byte{0xde, 0xad, 0xbe, 0xef})

	got := m.GetCopy(0, 4)
	if !bytes.Equal(got, []byte{0xde, 0xad, 0xbe, 0xef}) {
		t.Errorf("GetCopy = %x, want deadbeef", got)
	}

	// GetCopy must be independent of the backing store.
	got[0] = 0x00
	if m.store[0] != 0xde {
		t.Error("GetCopy returned a view into the store instead of a copy")
	}
}

func TestMemorySet32(t *testing.T) {
	m := newMemory()
	m.Resize(32)
	m.Set32(0, newWordFromBigUint64(0x42))

	got := m.GetCopy(0, 32)
	if got[31] != 0x42 {
		t.Errorf("Set32 last byte = %x, want 0x42", got[31])
	}
	for i := 0; i < 31; i++ {
		if got[i] != 0 {
			t.Errorf("Set32 byte %d = %x, want 0 (left-padded)", i, got[i])
		}
	}
}

func TestMemoryGetPtrIsLiveView(t *testing.T) {
	m := newMemory()
	m.Resize(32)
	m.Set(0, 1, []byte{0x01})

	ptr := m.GetPtr(0, 1)
	ptr[0] = 0xff
	if m.store[0] != 0xff {
		t.Error("GetPtr did not return a live view into the backing store")
	}
}

func TestToWordSize(t *testing.T) {
	cases := []struct{ size, want uint64 }{
		{0, 0},
		{1, 1},
		{32, 1},
		{33, 2},
		{64, 2},
	}
	for _, c := range cases {
		if got := toWordSize(c.size); got != c.want {
			t.Errorf("toWordSize(%d) = %d, want %d", c.size, got, c.want)
		}
	}
}

func newWordFromBigUint64(v uint64) *Word {
	return newWord().SetUint64(v)
}
