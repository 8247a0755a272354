package vm

import "fmt"

// forkOrder lists every fork this module knows by name, oldest first, in
// the order `cmd/t8n`'s `--state.fork` flag and the environment
// configuration's `fork` field (spec §6) accept. Each fork implies every
// rule flag of the forks before it, matching the teacher's flattened
// ForkRules struct rather than an enum with fallthrough.
var forkOrder = []string{
	"Frontier", "Homestead", "TangerineWhistle", "SpuriousDragon",
	"Byzantium", "Constantinople", "Petersburg", "Istanbul",
	"Berlin", "London", "Paris", "Shanghai", "Cancun", "Prague", "Glamsterdam",
}

// RulesForFork returns the ForkRules for a named fork, or an error if name
// is not one forkOrder recognizes. Matching is case-sensitive and exact, by
// design: a CLI boundary that silently fell back to some default fork on a
// typo would produce confusing results for the caller.
func RulesForFork(name string) (ForkRules, error) {
	idx := -1
	for i, n := range forkOrder {
		if n == name {
			idx = i
			break
		}
	}
	if idx == -1 {
		return ForkRules{}, fmt.Errorf("vm: unknown fork %q", name)
	}

	var r ForkRules
	set := func(i int, apply func(*ForkRules)) {
		if idx >= i {
			apply(&r)
		}
	}
	set(1, func(r *ForkRules) { r.IsHomestead = true })
	set(2, func(r *ForkRules) { r.IsEIP150 = true })
	set(3, func(r *ForkRules) { r.IsEIP158 = true })
	set(4, func(r *ForkRules) { r.IsByzantium = true })
	set(5, func(r *ForkRules) { r.IsConstantinople = true })
	set(6, func(r *ForkRules) { r.IsPetersburg = true })
	set(7, func(r *ForkRules) { r.IsIstanbul = true })
	set(8, func(r *ForkRules) { r.IsBerlin = true })
	set(9, func(r *ForkRules) { r.IsLondon = true })
	set(10, func(r *ForkRules) { r.IsMerge = true })
	set(11, func(r *ForkRules) { r.IsShanghai = true })
	set(12, func(r *ForkRules) { r.IsCancun = true })
	set(13, func(r *ForkRules) { r.IsPrague = true })
	set(14, func(r *ForkRules) { r.IsGlamsterdam = true })
	return r, nil
}
