// Package address cleans free-text listing addresses before geocoding.
//
// Cleaning is heuristic: suburb names are replaced wherever they occur, so a
// street that shares a suburb's name is rewritten too.
package address

import (
	"regexp"
	"strings"
)

var (
	// postalCodeRegexp matches a Canadian postal code such as "K0A 1L0".
	postalCodeRegexp = regexp.MustCompile(`\b[A-Za-z]\d[A-Za-z] \d[A-Za-z]\d\b`)
	// unitRegexp matches "#12", "Apt 4B" or "Suite 300" with surrounding spaces.
	unitRegexp = regexp.MustCompile(`\s*#\w+\s*|\s*(?:Apt|Suite)\s*\w+\s*`)
)

// Normalizer rewrites suburb aliases to a canonical city and strips postal
// codes and unit designators.
type Normalizer struct {
	city    string
	aliases []string
}

// New creates a Normalizer that folds each alias into city.
func New(city string, aliases []string) *Normalizer {
	a := make([]string, 0, len(aliases))
	for _, alias := range aliases {
		if alias == "" {
			continue
		}
		a = append(a, alias)
	}
	return &Normalizer{city: city, aliases: a}
}

// City returns the canonical city name.
func (n *Normalizer) City() string { return n.city }

// Aliases returns the suburb names replaced by the canonical city.
func (n *Normalizer) Aliases() []string {
	out := make([]string, len(n.aliases))
	copy(out, n.aliases)
	return out
}

// Clean applies alias replacement, postal code removal and unit removal, in
// that order.
func (n *Normalizer) Clean(addr string) string {
	addr = ReplaceAliases(addr, n.city, n.aliases)
	addr = RemovePostalCode(addr)
	return RemoveUnit(addr)
}

// ReplaceAliases replaces every case-sensitive occurrence of each alias with city.
func ReplaceAliases(addr, city string, aliases []string) string {
	for _, alias := range aliases {
		addr = strings.ReplaceAll(addr, alias, city)
	}
	return addr
}

// RemovePostalCode strips Canadian postal codes and trims the result.
func RemovePostalCode(addr string) string {
	return strings.TrimSpace(postalCodeRegexp.ReplaceAllString(addr, ""))
}

// RemoveUnit strips "#unit", "Apt unit" and "Suite unit" fragments and trims
// the result.
func RemoveUnit(addr string) string {
	return strings.TrimSpace(unitRegexp.ReplaceAllString(addr, ""))
}
