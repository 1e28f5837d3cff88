package money

import "testing"

func TestFormat(t *testing.T) {
	cases := map[int64]string{
		0:      "0.00 €",
		5:      "0.05 €",
		5999:   "59.99 €",
		123400: "1234.00 €",
		-250:   "-2.50 €",
	}
	for cents, want := range cases {
		if got := Format(cents); got != want {
			t.Fatalf("Format(%d): expected %q, got %q", cents, want, got)
		}
	}
}

func TestAmount(t *testing.T) {
	if got := Amount(11998); got != "119.98" {
		t.Fatalf("expected 119.98, got %q", got)
	}
	if !FromCents(150).Equal(FromCents(15).Mul(FromCents(1000))) {
		t.Fatal("expected 1.50 == 0.15 * 10.00")
	}
}
