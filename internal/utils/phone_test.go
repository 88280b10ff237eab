package utils

import "testing"

func TestMaskPhone(t *testing.T) {
	cases := map[string]string{
		"+15551234567": "***4567",
		"919800000001": "***0001",
		"1234":         "****",
		"":             "",
	}
	for in, want := range cases {
		if got := MaskPhone(in); got != want {
			t.Fatalf("MaskPhone(%q) = %q; want %q", in, got, want)
		}
	}
}
