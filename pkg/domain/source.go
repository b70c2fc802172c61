package domain

import "propertydata/pkg/serrors"

// Source identifies one external provider of property pages. The set is
// closed: code that dispatches on a Source switches over every constant and
// returns an error from its default branch.
type Source string

const (
	SourcePropertyValue Source = "propertyvalue.com"
	SourceDomain        Source = "domain.com"
	SourceCoreLogic     Source = "corelogic"
	SourceRealEstate    Source = "realestate.com"
)

// Sources returns every known source in default priority order.
func Sources() []Source {
	return []Source{SourcePropertyValue, SourceDomain, SourceCoreLogic, SourceRealEstate}
}

// Valid reports whether s is one of the known sources.
func (s Source) Valid() bool {
	switch s {
	case SourcePropertyValue, SourceDomain, SourceCoreLogic, SourceRealEstate:
		return true
	default:
		return false
	}
}

func (s Source) String() string { return string(s) }

// ParseSource converts a tag into a Source, rejecting unknown tags.
func ParseSource(tag string) (Source, error) {
	s := Source(tag)
	if !s.Valid() {
		return "", serrors.With(serrors.ErrBadRequest, "unknown source %q", tag)
	}

	return s, nil
}
