package diffx

import "testing"

func TestDiff_IdenticalStrings(t *testing.T) {
	a, b := Diff("hello world", "hello world")
	if a != "" || b != "" {
		t.Errorf("Diff(identical) = (%q, %q), want (\"\", \"\")", a, b)
	}
}

func TestDiff_IsolatesVariableToken(t *testing.T) {
	aOnly, bOnly := Diff("missing: rand1abc here", "missing: rand2xyz here")
	if aOnly != "rand1abc" {
		t.Errorf("aOnly = %q, want %q", aOnly, "rand1abc")
	}
	if bOnly != "rand2xyz" {
		t.Errorf("bOnly = %q, want %q", bOnly, "rand2xyz")
	}
}

func TestDiff_SwapIsConsistent(t *testing.T) {
	a := "the page you requested was not found here"
	b := "the file you requested was not located there"

	aOnly, bOnly := Diff(a, b)
	bOnly2, aOnly2 := Diff(b, a)

	if aOnly != aOnly2 || bOnly != bOnly2 {
		t.Errorf("Diff not swap-consistent: (%q,%q) vs swapped (%q,%q)", aOnly, bOnly, aOnly2, bOnly2)
	}
}

func TestDiff_EmptyInputs(t *testing.T) {
	a, b := Diff("", "")
	if a != "" || b != "" {
		t.Errorf("Diff(\"\", \"\") = (%q, %q)", a, b)
	}

	a, b = Diff("only in a", "")
	if a != "only in a" || b != "" {
		t.Errorf("Diff with empty b = (%q, %q)", a, b)
	}
}
