package slug_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"catalog/pkg/slug"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		title string
		want  string
	}{
		{name: "simple word", title: "Shoes", want: "shoes"},
		{name: "multiple words", title: "Running Shoes", want: "running-shoes"},
		{name: "punctuation collapses", title: "Laptop 15.6\" Display", want: "laptop-15-6-display"},
		{name: "leading and trailing junk", title: "  --Winter Jacket!  ", want: "winter-jacket"},
		{name: "consecutive separators", title: "T -- Shirt", want: "t-shirt"},
		{name: "digits kept", title: "USB 30 Hub", want: "usb-30-hub"},
		{name: "already slug shaped", title: "wireless-earbuds", want: "wireless-earbuds"},
		{name: "only junk", title: "!!!", want: ""},
		{name: "empty", title: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, slug.Make(tt.title))
		})
	}
}

func TestMakeCharset(t *testing.T) {
	titles := []string{
		"Premium Over-Ear Headphones (2024)",
		"Café au Lait Mug",
		"100% Cotton T-Shirt",
		"   spaced   out   ",
	}

	for _, title := range titles {
		got := slug.Make(title)

		for _, r := range got {
			ok := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '-'
			assert.True(t, ok, "unexpected rune %q in slug %q", r, got)
		}
		if got != "" {
			assert.NotEqual(t, byte('-'), got[0], "leading hyphen in %q", got)
			assert.NotEqual(t, byte('-'), got[len(got)-1], "trailing hyphen in %q", got)
		}
	}
}
