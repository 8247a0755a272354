package vm

import "testing"

func TestRulesForForkUnknownName(t *testing.T) {
	if _, err := RulesForFork("Homestead "); err == nil {
		t.Error("trailing whitespace should not match, expected error")
	}
	if _, err := RulesForFork("homestead"); err == nil {
		t.Error("fork names are case-sensitive, expected error for lowercase")
	}
}

func TestRulesForForkFrontierHasNoFlags(t *testing.T) {
	r, err := RulesForFork("Frontier")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r != (ForkRules{}) {
		t.Errorf("Frontier rules = %+v, want all-zero", r)
	}
}

func TestRulesForForkCumulative(t *testing.T) {
	r, err := RulesForFork("London")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !(r.IsHomestead && r.IsEIP150 && r.IsEIP158 && r.IsByzantium &&
		r.IsConstantinople && r.IsPetersburg && r.IsIstanbul && r.IsBerlin && r.IsLondon) {
		t.Errorf("London rules should carry every earlier fork's flags: %+v", r)
	}
	if r.IsMerge || r.IsShanghai || r.IsCancun || r.IsPrague || r.IsGlamsterdam {
		t.Errorf("London rules must not carry later fork flags: %+v", r)
	}
}

func TestRulesForForkGlamsterdamSetsEveryFlag(t *testing.T) {
	r, err := RulesForFork("Glamsterdam")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := ForkRules{
		IsHomestead: true, IsEIP150: true, IsEIP158: true, IsByzantium: true,
		IsConstantinople: true, IsPetersburg: true, IsIstanbul: true, IsBerlin: true,
		IsLondon: true, IsMerge: true, IsShanghai: true, IsCancun: true,
		IsPrague: true, IsGlamsterdam: true,
	}
	if r != want {
		t.Errorf("Glamsterdam rules = %+v, want %+v", r, want)
	}
}
