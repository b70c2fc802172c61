package parse

import (
	"math"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"

	"propertydata/pkg/domain"
)

// Value extractors. Each turns one candidate text into a typed value or
// reports false; none of them look at anything but their argument.

var (
	yearRe    = regexp.MustCompile(`\b(1[789]\d{2}|20\d{2})\b`)
	integerRe = regexp.MustCompile(`\d[\d,]*`)
	moneyRe   = regexp.MustCompile(`(?i)\$\s*(\d[\d,]*(?:\.\d+)?)\s*(k|m|mil|million|b|bn|billion)?\b`)
	plainRe   = regexp.MustCompile(`(?i)\b(\d[\d,]*(?:\.\d+)?)\s*(k|m|mil|million|b|bn|billion)?\b`)
	areaRe    = regexp.MustCompile(
		`(?i)(\d[\d,]*(?:\.\d+)?)\s*(m²|m2|sqm|sq\.?\s?m|square\s+met(?:re|er)s?|hectares?|ha|acres?|ac)`)
	distanceRe = regexp.MustCompile(`(?i)(\d+(?:\.\d+)?)\s*(km|m)\b`)
	dayMonRe   = regexp.MustCompile(`(?i)\b(\d{1,2})(?:st|nd|rd|th)?\s+(jan|feb|mar|apr|may|jun|jul|aug|sep|oct|nov|dec)[a-z]*\.?,?\s+(\d{4})\b`) //nolint: lll
	isoDateRe  = regexp.MustCompile(`\b(\d{4})-(\d{2})-(\d{2})\b`)
	auDateRe   = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`)
)

// Year accepts the first four digit year between 1700 and 2099.
func Year(s string) (int, bool) {
	m := yearRe.FindString(s)
	if m == "" {
		return 0, false
	}
	y, err := strconv.Atoi(m)

	return y, err == nil
}

// Integer accepts the first run of digits, ignoring thousands separators.
func Integer(s string) (int, bool) {
	m := integerRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(strings.ReplaceAll(m, ",", ""))

	return n, err == nil
}

// Money accepts the first dollar amount, honouring k, m and b suffixes:
// "$1.2m" is 1200000. Without a dollar sign the first number is used.
func Money(s string) (int64, bool) {
	amounts := moneyAmounts(s)
	if len(amounts) == 0 {
		if m := plainRe.FindStringSubmatch(s); m != nil {
			if v, ok := amount(m[1], m[2]); ok {
				return v, true
			}
		}

		return 0, false
	}

	return amounts[0], true
}

func moneyAmounts(s string) []int64 {
	var out []int64
	for _, m := range moneyRe.FindAllStringSubmatch(s, -1) {
		if v, ok := amount(m[1], m[2]); ok {
			out = append(out, v)
		}
	}

	return out
}

func amount(num, suffix string) (int64, bool) {
	f, err := strconv.ParseFloat(strings.ReplaceAll(num, ",", ""), 64)
	if err != nil || f <= 0 {
		return 0, false
	}

	switch strings.ToLower(suffix) {
	case "k":
		f *= 1e3
	case "m", "mil", "million":
		f *= 1e6
	case "b", "bn", "billion":
		f *= 1e9
	}

	return int64(math.Round(f)), true
}

// Area accepts "650m²", "650 sqm", "0.4 ha" or "1.5 acres" and normalizes
// the unit to m², ha or ac.
func Area(s string) (domain.Area, bool) {
	m := areaRe.FindStringSubmatch(s)
	if m == nil {
		return domain.Area{}, false
	}

	v, err := strconv.ParseFloat(strings.ReplaceAll(m[1], ",", ""), 64)
	if err != nil || v <= 0 {
		return domain.Area{}, false
	}

	unit := strings.ToLower(m[2])
	switch {
	case strings.HasPrefix(unit, "ha") || strings.HasPrefix(unit, "hectare"):
		unit = domain.UnitHectares
	case strings.HasPrefix(unit, "ac"):
		unit = domain.UnitAcres
	default:
		unit = domain.UnitSquareMetres
	}

	return domain.Area{Value: v, Unit: unit}, true
}

// Text accepts any non-blank text, whitespace collapsed.
func Text(s string) (string, bool) {
	s = CollapseSpace(s)

	return s, s != ""
}

// OneOf returns an extractor accepting text equal to, or containing as a
// whole word, one of allowed. Matching ignores case; allowed values are tried
// in order and returned as given.
func OneOf(allowed ...string) func(string) (string, bool) {
	return func(s string) (string, bool) {
		lower := strings.ToLower(CollapseSpace(s))
		for _, a := range allowed {
			if lower == strings.ToLower(a) {
				return a, true
			}
		}

		words := strings.FieldsFunc(lower, func(r rune) bool {
			return !('a' <= r && r <= 'z') && !('0' <= r && r <= '9')
		})
		for _, a := range allowed {
			if slices.Contains(words, strings.ToLower(a)) {
				return a, true
			}
		}

		return "", false
	}
}

// ValueRange accepts one to three dollar amounts, e.g. "$1.2m - $1.4m".
// Two amounts are low and high with the midpoint as mid; one amount is all
// three.
func ValueRange(s string) (domain.ValueEstimate, bool) {
	amounts := moneyAmounts(s)
	if len(amounts) == 0 || len(amounts) > 3 {
		return domain.ValueEstimate{}, false
	}
	slices.Sort(amounts)

	switch len(amounts) {
	case 1:
		return domain.ValueEstimate{Low: amounts[0], Mid: amounts[0], High: amounts[0]}, true
	case 2: //nolint: mnd
		return domain.ValueEstimate{Low: amounts[0], Mid: (amounts[0] + amounts[1]) / 2, High: amounts[1]}, true
	default:
		return domain.ValueEstimate{Low: amounts[0], Mid: amounts[1], High: amounts[2]}, true
	}
}

// Sale accepts a price with an optional date, e.g.
// "$1,250,000 on 12 Mar 2021" or "Sold 12/03/2021 for $1.25m".
func Sale(s string) (domain.Sale, bool) {
	amounts := moneyAmounts(s)
	if len(amounts) == 0 {
		return domain.Sale{}, false
	}

	return domain.Sale{Price: amounts[0], Date: Date(s)}, true
}

// Date finds the first day-month-year date in s and formats it as
// 2006-01-02, or returns "". Numeric dates are read day first.
func Date(s string) string {
	if m := isoDateRe.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("2006-01-02", m[0]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if m := dayMonRe.FindStringSubmatch(s); m != nil {
		mon := strings.ToUpper(m[2][:1]) + strings.ToLower(m[2][1:3])
		if t, err := time.Parse("2 Jan 2006", m[1]+" "+mon+" "+m[3]); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if m := auDateRe.FindStringSubmatch(s); m != nil {
		if t, err := time.Parse("2/1/2006", m[1]+"/"+m[2]+"/"+m[3]); err == nil {
			return t.Format("2006-01-02")
		}
	}

	return ""
}

// Schools accepts one school per line as produced by ListItems, e.g.
// "Kew Primary School | Primary | 0.4 km". The first segment is the name; a
// segment naming a school level sets the type, otherwise it is inferred from
// the name.
func Schools(s string) ([]domain.School, bool) {
	var out []domain.School
	for _, line := range strings.Split(s, "\n") {
		if school, ok := parseSchool(line); ok {
			out = append(out, school)
		}
	}

	return out, len(out) > 0
}

var segmentSplitter = strings.NewReplacer(" | ", "\x00", " - ", "\x00", " • ", "\x00", " · ", "\x00") //nolint: gochecknoglobals

func parseSchool(line string) (domain.School, bool) {
	segments := strings.Split(segmentSplitter.Replace(CollapseSpace(line)), "\x00")
	name := strings.TrimSpace(distanceRe.ReplaceAllString(segments[0], ""))
	if len([]rune(name)) < 2 { //nolint: mnd
		return domain.School{}, false
	}

	school := domain.School{Name: name}
	for _, seg := range segments[1:] {
		if t, ok := schoolLevel(seg); ok && school.Type == "" {
			school.Type = t
		}
	}
	if school.Type == "" {
		school.Type, _ = schoolLevel(name)
	}

	if m := distanceRe.FindStringSubmatch(line); m != nil {
		if d, err := strconv.ParseFloat(m[1], 64); err == nil {
			if strings.EqualFold(m[2], "m") {
				d /= 1000
			}
			school.Distance = &d
		}
	}

	return school, true
}

func schoolLevel(s string) (string, bool) {
	lower := strings.ToLower(s)
	switch {
	case strings.Contains(lower, "combined"), strings.Contains(lower, "p-12"), strings.Contains(lower, "k-12"):
		return "combined", true
	case strings.Contains(lower, "primary"):
		return "primary", true
	case strings.Contains(lower, "secondary"), strings.Contains(lower, "high school"):
		return "secondary", true
	default:
		return "", false
	}
}
