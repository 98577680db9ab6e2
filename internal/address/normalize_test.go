package address

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

var testAliases = []string{
	"Carp", "Stittsville", "Gloucester", "Manotick", "Nepean", "Greely", "North Gower",
	"Kanata", "Metcalfe", "Dunrobin", "Vars", "Kinburn",
}

func TestClean_EndToEndExample(t *testing.T) {
	n := New("Ottawa", testAliases)
	assert.Equal(t, "123 Main St, Ottawa,", n.Clean("123 Main St, Carp, K0A 1L0"))
}

func TestClean_EverySuburbReplaced(t *testing.T) {
	n := New("Ottawa", testAliases)
	for _, suburb := range testAliases {
		got := n.Clean("10 Some Rd, " + suburb + ", ON")
		assert.Contains(t, got, "Ottawa", "suburb=%s", suburb)
		assert.NotContains(t, got, suburb, "suburb=%s", suburb)
	}
}

func TestReplaceAliases_CaseSensitive(t *testing.T) {
	got := ReplaceAliases("5 Elm St, kanata", "Ottawa", testAliases)
	assert.Equal(t, "5 Elm St, kanata", got)
}

func TestReplaceAliases_Substring(t *testing.T) {
	// Literal substring matching also rewrites street names sharing a suburb name.
	got := ReplaceAliases("7 Carp Rd, Carp", "Ottawa", testAliases)
	assert.Equal(t, "7 Ottawa Rd, Ottawa", got)
}

func TestRemovePostalCode(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"123 Main St, Ottawa, K0A 1L0", "123 Main St, Ottawa,"},
		{"K1P 5N2 88 Bank St", "88 Bank St"},
		{"1 Queen St, Toronto, m5a 1a1", "1 Queen St, Toronto,"},
		{"no postal here", "no postal here"},
		{"K1P5N2 stays without the space", "K1P5N2 stays without the space"},
	}
	for _, tt := range tests {
		got := RemovePostalCode(tt.in)
		assert.Equal(t, tt.want, got, "in=%q", tt.in)
		assert.False(t, postalCodeRegexp.MatchString(got), "in=%q", tt.in)
	}
}

func TestRemoveUnit(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"#4 88 Bank St", "88 Bank St"},
		{"#PH2 88 Bank St", "88 Bank St"},
		{"Apt 12 5 Elm St", "5 Elm St"},
		{"Suite 300 100 Queen St", "100 Queen St"},
		{"  5 Elm St  ", "5 Elm St"},
		{"5 Elm St", "5 Elm St"},
	}
	for _, tt := range tests {
		got := RemoveUnit(tt.in)
		assert.Equal(t, tt.want, got, "in=%q", tt.in)
		assert.Equal(t, strings.TrimSpace(got), got)
	}
}

func TestClean_AllTransforms(t *testing.T) {
	n := New("Ottawa", testAliases)
	got := n.Clean("Suite 200 45 Main St, Kanata, K2K 2X3")
	assert.Equal(t, "45 Main St, Ottawa,", got)
}

func TestClean_EmptyPassesThrough(t *testing.T) {
	n := New("Ottawa", testAliases)
	assert.Equal(t, "", n.Clean(""))
	assert.Equal(t, "", n.Clean("K0A 1L0"))
}

func TestClean_Deterministic(t *testing.T) {
	n := New("Ottawa", testAliases)
	in := "#7 20 Main St, Stittsville, K2S 1A1"
	assert.Equal(t, n.Clean(in), n.Clean(in))

	reversed := make([]string, len(testAliases))
	for i, a := range testAliases {
		reversed[len(testAliases)-1-i] = a
	}
	assert.Equal(t, n.Clean(in), New("Ottawa", reversed).Clean(in))
}

func TestNew_SkipsEmptyAliases(t *testing.T) {
	n := New("Ottawa", []string{"", "Kanata"})
	assert.Equal(t, []string{"Kanata"}, n.Aliases())
	assert.Equal(t, "Ottawa", n.City())
	assert.Equal(t, "1 A St, Ottawa", n.Clean("1 A St, Kanata"))
}
