package domain

import (
	"regexp"
	"strings"

	"propertydata/pkg/serrors"
)

// Address identifies a property. It is compared and passed by value.
type Address struct {
	Line     string `json:"line"`
	Suburb   string `json:"suburb"`
	State    string `json:"state"`
	Postcode string `json:"postcode"`
}

// String renders the address the way listing sites print it:
// "6 English Place, Kew VIC 3101".
func (a Address) String() string {
	tail := strings.TrimSpace(strings.Join(nonEmpty(a.Suburb, a.State, a.Postcode), " "))
	if tail == "" {
		return strings.TrimSpace(a.Line)
	}

	return strings.TrimSpace(a.Line) + ", " + tail
}

// Slug renders the address as a lowercase dash separated token suitable for
// listing URLs, e.g. "6-english-place-kew-vic-3101".
func (a Address) Slug() string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(a.String()), "-")

	return strings.Trim(s, "-")
}

// Validate checks that every component is present and that state and postcode
// are well formed.
func (a Address) Validate() error {
	switch {
	case strings.TrimSpace(a.Line) == "":
		return serrors.With(serrors.ErrBadRequest, "address line is required")
	case strings.TrimSpace(a.Suburb) == "":
		return serrors.With(serrors.ErrBadRequest, "suburb is required")
	case !isState(a.State):
		return serrors.With(serrors.ErrBadRequest, "unknown state %q", a.State)
	case !postcode.MatchString(strings.TrimSpace(a.Postcode)):
		return serrors.With(serrors.ErrBadRequest, "invalid postcode %q", a.Postcode)
	}

	return nil
}

// ParseAddress is the inverse of Address.String. The part after the last comma
// must end with "<STATE> <POSTCODE>"; everything between the comma and the
// state is the suburb.
func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)
	idx := strings.LastIndex(s, ",")
	if idx < 0 {
		return Address{}, serrors.With(serrors.ErrBadRequest, "address %q has no comma before the suburb", s)
	}

	tokens := strings.Fields(s[idx+1:])
	if len(tokens) < 3 { //nolint: mnd
		return Address{}, serrors.With(serrors.ErrBadRequest, "address %q must end with suburb, state and postcode", s)
	}

	n := len(tokens)
	addr := Address{
		Line:     strings.Join(strings.Fields(s[:idx]), " "),
		Suburb:   strings.Join(tokens[:n-2], " "),
		State:    strings.ToUpper(tokens[n-2]),
		Postcode: tokens[n-1],
	}
	if err := addr.Validate(); err != nil {
		return Address{}, err
	}

	return addr, nil
}

var (
	nonAlnum = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	postcode = regexp.MustCompile(`^\d{4}$`)
)

// States lists the Australian state and territory codes accepted in addresses.
var States = []string{"ACT", "NSW", "NT", "QLD", "SA", "TAS", "VIC", "WA"} //nolint: gochecknoglobals

func isState(s string) bool {
	s = strings.TrimSpace(s)
	for _, st := range States {
		if strings.EqualFold(st, s) {
			return true
		}
	}

	return false
}

func nonEmpty(parts ...string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}

	return out
}
