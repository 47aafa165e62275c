package semver

import "testing"

func TestParseValid(t *testing.T) {
	v, err := Parse("1.2.3")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if v.Major != 1 || v.Minor != 2 || v.Patch != 3 {
		t.Errorf("unexpected parse result: %+v", v)
	}
}

func TestParseInvalid(t *testing.T) {
	invalid := []string{"1.2", "1.2.3.4", "a.b.c", "1.2.-3", "1.2.", ""}
	for _, s := range invalid {
		if _, err := Parse(s); err == nil {
			t.Errorf("expected Parse(%q) to fail", s)
		}
	}
}

func TestParseToStringRoundTrip(t *testing.T) {
	inputs := []string{"0.0.0", "1.2.3", "10.20.30"}
	for _, s := range inputs {
		v, err := Parse(s)
		if err != nil {
			t.Fatalf("Parse(%q): %v", s, err)
		}
		if v.String() != s {
			t.Errorf("round trip failed: %q -> %q", s, v.String())
		}
	}
}

func TestCompare(t *testing.T) {
	a, _ := Parse("1.2.3")
	b, _ := Parse("1.3.0")
	c, _ := Parse("1.2.3")
	if a.Compare(b) >= 0 {
		t.Error("expected a < b")
	}
	if b.Compare(a) <= 0 {
		t.Error("expected b > a")
	}
	if !a.Equal(c) {
		t.Error("expected a == c")
	}
	if !a.Less(b) {
		t.Error("expected a.Less(b)")
	}
}
