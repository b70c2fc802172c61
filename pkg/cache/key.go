package cache

import (
	"strings"

	"propertydata/pkg/domain"
)

// streetTypes maps the street type abbreviations used on Australian listings
// to the full word.
var streetTypes = map[string]string{ //nolint: gochecknoglobals
	"st":   "street",
	"pl":   "place",
	"rd":   "road",
	"ave":  "avenue",
	"av":   "avenue",
	"cres": "crescent",
	"ct":   "court",
	"dr":   "drive",
	"hwy":  "highway",
	"pde":  "parade",
	"tce":  "terrace",
	"ln":   "lane",
	"cl":   "close",
	"blvd": "boulevard",
	"cct":  "circuit",
	"gr":   "grove",
	"sq":   "square",
}

var punctuation = strings.NewReplacer(",", " ", ".", " ", "#", " ", "/", " ") //nolint: gochecknoglobals

// NormalizeAddress returns the canonical form of addr used in cache keys.
//
// The rules are:
//   - lower-case every component and trim it
//   - replace the punctuation characters , . # / with spaces
//   - collapse runs of whitespace into one space
//   - expand street type abbreviations in the address line, except for the
//     first token which is the house or unit number
//   - join the components with "|"
//
// "6 English Pl., Kew vic 3101" and "6  english place, KEW VIC 3101" normalize
// to the same string.
func NormalizeAddress(addr domain.Address) string {
	line := strings.Fields(clean(addr.Line))
	for i := 1; i < len(line); i++ {
		if full, ok := streetTypes[line[i]]; ok {
			line[i] = full
		}
	}

	return strings.Join([]string{
		strings.Join(line, " "),
		clean(addr.Suburb),
		clean(addr.State),
		clean(addr.Postcode),
	}, "|")
}

// Key returns the cache key of the page for addr on source.
func Key(addr domain.Address, source domain.Source) string {
	return string(source) + ":" + NormalizeAddress(addr)
}

func clean(s string) string {
	return strings.Join(strings.Fields(punctuation.Replace(strings.ToLower(s))), " ")
}
