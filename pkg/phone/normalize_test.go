package phone

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"plain digits pass through", "6281234567890", "6281234567890"},
		{"strips spaces and hyphens", "+62 812-3456-7890", "+6281234567890"},
		{"strips parentheses", "(0812) 3456 7890", "081234567890"},
		{"strips dots", "0812.3456.7890", "081234567890"},
		{"keeps leading plus", "+62-812", "+62812"},
		{"empty stays empty", "", ""},
		{"letters dropped", "call 0812", "0812"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.in))
		})
	}
}

// TestNormalize_NoCountryCodeCanonicalization documents the known false
// negative: a local 0-prefixed form and its +62 international form do not
// normalize to the same key. Punctuation-only stripping is intentional.
func TestNormalize_NoCountryCodeCanonicalization(t *testing.T) {
	local := Normalize("0812-3456-7890")
	intl := Normalize("+62 812-3456-7890")
	assert.NotEqual(t, local, intl)
}
