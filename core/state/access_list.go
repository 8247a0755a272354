package state

import "github.com/ethforge/corevm/types"

// accessList tracks the EIP-2929 warm set: addresses and storage slots that
// have been accessed during the current transaction and therefore qualify
// for the cheaper "warm" gas cost on subsequent access. It must be
// revertible like any other piece of state, which is why MemoryStateDB
// journals every insertion instead of mutating this structure directly from
// the interpreter.
type accessList struct {
	addresses map[types.Address]int // address -> index into slots, or -1 if only the address is warm
	slots     []map[types.Hash]struct{}
}

func newAccessList() *accessList {
	return &accessList{addresses: make(map[types.Address]int)}
}

// ContainsAddress reports whether the address is in the warm set.
func (al *accessList) ContainsAddress(addr types.Address) bool {
	_, ok := al.addresses[addr]
	return ok
}

// Contains reports whether the address and, if present, the slot are warm.
func (al *accessList) Contains(addr types.Address, slot types.Hash) (addressPresent, slotPresent bool) {
	idx, ok := al.addresses[addr]
	if !ok {
		return false, false
	}
	if idx < 0 {
		return true, false
	}
	_, slotPresent = al.slots[idx][slot]
	return true, slotPresent
}

func (al *accessList) ContainsSlot(addr types.Address, slot types.Hash) (addressPresent, slotPresent bool) {
	return al.Contains(addr, slot)
}

// AddAddress marks addr as warm. Returns true if it was already warm.
func (al *accessList) AddAddress(addr types.Address) (addrPresent bool) {
	if _, present := al.addresses[addr]; present {
		return true
	}
	al.addresses[addr] = -1
	return false
}

// AddSlot marks addr and slot as warm, creating the address entry if
// necessary. Returns whether the address and slot were already present.
func (al *accessList) AddSlot(addr types.Address, slot types.Hash) (addrPresent, slotPresent bool) {
	idx, addrPresent := al.addresses[addr]
	if !addrPresent || idx < 0 {
		al.slots = append(al.slots, map[types.Hash]struct{}{})
		idx = len(al.slots) - 1
		al.addresses[addr] = idx
	}
	if _, slotPresent = al.slots[idx][slot]; slotPresent {
		return addrPresent, true
	}
	al.slots[idx][slot] = struct{}{}
	return addrPresent, false
}

// DeleteSlot removes a slot from the warm set, used only to undo a journal
// entry; it must be called in reverse insertion order so the last slot
// added is the one removed.
func (al *accessList) DeleteSlot(addr types.Address, slot types.Hash) {
	idx, ok := al.addresses[addr]
	if !ok || idx < 0 {
		return
	}
	delete(al.slots[idx], slot)
}

// DeleteAddress removes an address from the warm set, used only to undo a
// journal entry for an address that had no warm slots recorded under it.
func (al *accessList) DeleteAddress(addr types.Address) {
	delete(al.addresses, addr)
}

// Copy returns a deep copy, used by MemoryStateDB.Copy for parallel
// transaction execution over independent world views.
func (al *accessList) Copy() *accessList {
	cp := &accessList{
		addresses: make(map[types.Address]int, len(al.addresses)),
		slots:     make([]map[types.Hash]struct{}, len(al.slots)),
	}
	for addr, idx := range al.addresses {
		cp.addresses[addr] = idx
	}
	for i, s := range al.slots {
		m := make(map[types.Hash]struct{}, len(s))
		for k := range s {
			m[k] = struct{}{}
		}
		cp.slots[i] = m
	}
	return cp
}
