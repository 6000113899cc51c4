package urlx

import "testing"

func TestNormalizedPath(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"http://h/a/b/c.php?x=1", "http://h/a/b/"},
		{"http://h/a/b/", "http://h/a/b/"},
		{"http://h/", "http://h/"},
		{"http://h", "http://h/"},
	}
	for _, c := range cases {
		tgt, err := Parse(c.raw)
		if err != nil {
			t.Fatalf("Parse(%q): %v", c.raw, err)
		}
		if got := tgt.NormalizedPath(); got != c.want {
			t.Errorf("NormalizedPath(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestDomainPath(t *testing.T) {
	tgt, err := Parse("http://h/adm/login?x=1#frag")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tgt.DomainPath(), "http://h/adm/login"; got != want {
		t.Errorf("DomainPath() = %q, want %q", got, want)
	}
}

func TestLastSegment(t *testing.T) {
	tgt, err := Parse("http://h/a/b/missing.html")
	if err != nil {
		t.Fatal(err)
	}
	if got, want := tgt.LastSegment(), "missing.html"; got != want {
		t.Errorf("LastSegment() = %q, want %q", got, want)
	}
}

func TestWithPath(t *testing.T) {
	tgt, err := Parse("http://h/a/b/?q=1")
	if err != nil {
		t.Fatal(err)
	}
	probe := tgt.WithPath("/a/b/xyz123")
	if got, want := probe.URL().String(), "http://h/a/b/xyz123"; got != want {
		t.Errorf("WithPath URL = %q, want %q", got, want)
	}
}
