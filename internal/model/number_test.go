package model

import "testing"

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want Number
	}{
		{"0", Int(0)},
		{"1470912225", Int(1470912225)},
		{"-5", Int(-5)},
		{"+7", Int(7)},
		{"  42", Int(42)},
		{"12abc", Int(12)},
		{"3.9", Int(3)},
		{"", NaN},
		{"abc", NaN},
		{"-", NaN},
		{" ", NaN},
		{"99999999999999999999999", Int(1<<63 - 1)},
	}
	for _, tc := range cases {
		if got := ParseNumber(tc.in); got != tc.want {
			t.Errorf("ParseNumber(%q) = %+v, want %+v", tc.in, got, tc.want)
		}
	}
}

func TestNumberTruthyAndString(t *testing.T) {
	if Int(0).Truthy() || NaN.Truthy() {
		t.Fatal("zero and NaN must be falsy")
	}
	if !Int(7).Truthy() || !Int(-1).Truthy() {
		t.Fatal("nonzero must be truthy")
	}
	if got := NaN.String(); got != "NaN" {
		t.Fatalf("NaN.String() = %q", got)
	}
	if got := Int(-42).String(); got != "-42" {
		t.Fatalf("Int(-42).String() = %q", got)
	}
}
