package state

import (
	"testing"

	"github.com/ethforge/corevm/types"
)

func TestAccessListAddAddressReportsPriorPresence(t *testing.T) {
	al := newAccessList()
	addr := types.BytesToAddress([]byte{0x01})

	if present := al.AddAddress(addr); present {
		t.Error("first AddAddress should report not previously present")
	}
	if present := al.AddAddress(addr); !present {
		t.Error("second AddAddress should report already present")
	}
	if !al.ContainsAddress(addr) {
		t.Error("address should be warm after AddAddress")
	}
}

func TestAccessListAddSlotImpliesAddress(t *testing.T) {
	al := newAccessList()
	addr := types.BytesToAddress([]byte{0x02})
	slot := types.BytesToHash([]byte{0x01})

	addrPresent, slotPresent := al.AddSlot(addr, slot)
	if addrPresent || slotPresent {
		t.Error("first AddSlot should report neither address nor slot previously present")
	}

	addrOK, slotOK := al.ContainsSlot(addr, slot)
	if !addrOK || !slotOK {
		t.Error("address and slot should both be warm after AddSlot")
	}

	addrPresent, slotPresent = al.AddSlot(addr, slot)
	if !addrPresent || !slotPresent {
		t.Error("repeat AddSlot should report both already present")
	}
}

func TestAccessListDeleteUndoesInsertOrder(t *testing.T) {
	al := newAccessList()
	addr := types.BytesToAddress([]byte{0x03})
	slot := types.BytesToHash([]byte{0x01})

	al.AddSlot(addr, slot)
	al.DeleteSlot(addr, slot)
	if addrOK, slotOK := al.ContainsSlot(addr, slot); !addrOK || slotOK {
		t.Error("after DeleteSlot, address should stay warm but slot should be cold")
	}

	al.DeleteAddress(addr)
	if al.ContainsAddress(addr) {
		t.Error("address should be cold after DeleteAddress")
	}
}

func TestAccessListCopyIsIndependent(t *testing.T) {
	al := newAccessList()
	addr := types.BytesToAddress([]byte{0x04})
	slot := types.BytesToHash([]byte{0x01})
	al.AddSlot(addr, slot)

	cp := al.Copy()
	otherSlot := types.BytesToHash([]byte{0x02})
	cp.AddSlot(addr, otherSlot)

	if _, slotOK := al.ContainsSlot(addr, otherSlot); slotOK {
		t.Error("mutating the copy must not affect the original access list")
	}
	if _, slotOK := cp.ContainsSlot(addr, slot); !slotOK {
		t.Error("copy should retain slots present at copy time")
	}
}
