package team

import "testing"

func TestNormalizeName(t *testing.T) {
	t.Parallel()

	cases := []struct {
		in   string
		want string
	}{
		{in: "  Arsenal ", want: "Arsenal"},
		{in: "Real   Madrid", want: "Real Madrid"},
		// "e" followed by a combining acute accent composes to a single rune.
		{in: "Atle\u0301tico", want: "Atl\u00e9tico"},
		{in: "   ", want: ""},
	}

	for _, tc := range cases {
		if got := NormalizeName(tc.in); got != tc.want {
			t.Fatalf("NormalizeName(%q): got=%q want=%q", tc.in, got, tc.want)
		}
	}
}

func TestNewDerivesSlugID(t *testing.T) {
	t.Parallel()

	got := New(" Manchester  City ")
	if got.Name != "Manchester City" {
		t.Fatalf("unexpected name: %q", got.Name)
	}
	if got.ID != "manchester-city" {
		t.Fatalf("unexpected id: %q", got.ID)
	}
}

func TestStatusFor(t *testing.T) {
	t.Parallel()

	if got := StatusFor(4, 5); got != StatusProvisional {
		t.Fatalf("4 matches: got=%s want=%s", got, StatusProvisional)
	}
	if got := StatusFor(5, 5); got != StatusEstablished {
		t.Fatalf("5 matches: got=%s want=%s", got, StatusEstablished)
	}
	if StatusProvisional.Label() != "Provisional" || StatusEstablished.Label() != "Established" {
		t.Fatalf("unexpected labels")
	}
}

func TestFindIDCollision(t *testing.T) {
	t.Parallel()

	if _, clash := FindIDCollision([]string{"Arsenal", "Chelsea", "Arsenal"}); clash {
		t.Fatalf("repeated names are the same team")
	}

	got, clash := FindIDCollision([]string{"Arsenal", "São Paulo", "Sao Paulo"})
	if !clash {
		t.Fatalf("expected accent variants to collide")
	}
	if got.ID != "sao-paulo" || got.First != "São Paulo" || got.Second != "Sao Paulo" {
		t.Fatalf("unexpected collision: %+v", got)
	}
}
