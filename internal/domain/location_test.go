package domain

import "testing"

func TestNormalizeLocationValue(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"  Dhaka  ", "dhaka"},
		{"MIRPUR", "mirpur"},
		{"GULSHAN-1", "gulshan-1"},
		{"", ""},
		{"   ", ""},
	}
	for _, tc := range cases {
		if got := NormalizeLocationValue(tc.in); got != tc.want {
			t.Errorf("NormalizeLocationValue(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestLocationNormalize(t *testing.T) {
	got := Location{Country: " BD ", City: "Dhaka", Area: " Mirpur "}.Normalize()
	want := Location{Country: "bd", City: "dhaka", Area: "mirpur"}
	if got != want {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}
