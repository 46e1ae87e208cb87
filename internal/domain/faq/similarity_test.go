package faq

import "testing"

func TestScore(t *testing.T) {
	cases := []struct {
		name string
		a    string
		b    string
		want float64
	}{
		{name: "identical token sets", a: "a b c", b: "a b c", want: 1.0},
		{name: "reordered tokens", a: "funcionamento horario", b: "horario funcionamento", want: 1.0},
		{name: "partial overlap", a: "a b c", b: "a b c d e", want: 0.6},
		{name: "disjoint", a: "a b", b: "c d", want: 0.0},
		{name: "both empty", a: "", b: "", want: 0.0},
		{name: "one empty", a: "a b", b: "", want: 0.0},
	}

	for _, tc := range cases {
		if got := Score(tc.a, tc.b); got != tc.want {
			t.Fatalf("%s: expected %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestScoreDuplicateTokensCollapse(t *testing.T) {
	// token sets, not bags: repeats contribute once
	if got := Score("a a a b", "a b"); got != 1.0 {
		t.Fatalf("expected 1.0 got %v", got)
	}
}
