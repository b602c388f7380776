package format

import "testing"

func TestNumber(t *testing.T) {
	cases := map[float64]string{
		30:              "30",
		0:               "0",
		0.5:             "0.50",
		1.875:           "1.88",
		59.999999:       "60.00",
		2.0000000000001: "2",
	}
	for in, want := range cases {
		if got := Number(in); got != want {
			t.Fatalf("Number(%v): got %q want %q", in, got, want)
		}
	}
}

func TestProbability(t *testing.T) {
	cases := map[float64]string{
		0.1:   "10%",
		1:     "100%",
		0.125: "12.5%",
		0.333: "33.3%",
	}
	for in, want := range cases {
		if got := Probability(in); got != want {
			t.Fatalf("Probability(%v): got %q want %q", in, got, want)
		}
	}
}

func TestDuration(t *testing.T) {
	cases := map[int]string{3600: "1h", 86400: "24h", 0: "0h", 300: "300s", 5400: "5400s"}
	for in, want := range cases {
		if got := Duration(in); got != want {
			t.Fatalf("Duration(%d): got %q want %q", in, got, want)
		}
	}
}
