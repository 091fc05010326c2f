package slug

import "testing"

func TestMake(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Acme Plumbing", "acme-plumbing"},
		{"  Café  Crème  ", "cafe-creme"},
		{"Björk & Sons, Ltd.", "bjork-sons-ltd"},
		{"---", "site"},
		{"", "site"},
		{"Already-Slugged-123", "already-slugged-123"},
	}
	for _, tc := range cases {
		if got := Make(tc.in); got != tc.want {
			t.Errorf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
