package sources

import (
	"regexp"

	"propertydata/pkg/domain"
	"propertydata/pkg/parse"
	"propertydata/pkg/serrors"
)

// profile is what can be parsed out of one source's page, one optional
// config per record field.
type profile struct {
	YearBuilt      *parse.Config[int]
	LandArea       *parse.Config[domain.Area]
	FloorArea      *parse.Config[domain.Area]
	Bedrooms       *parse.Config[int]
	Bathrooms      *parse.Config[int]
	CarSpaces      *parse.Config[int]
	PropertyType   *parse.Config[string]
	EstimatedValue *parse.Config[domain.ValueEstimate]
	LastSale       *parse.Config[domain.Sale]
	NearbySchools  *parse.Config[[]domain.School]
	Zoning         *parse.Config[string]
	CouncilArea    *parse.Config[string]
}

func (p profile) configs() []parse.FieldConfig {
	var out []parse.FieldConfig
	out = bind(out, domain.FieldYearBuilt, p.YearBuilt)
	out = bind(out, domain.FieldLandArea, p.LandArea)
	out = bind(out, domain.FieldFloorArea, p.FloorArea)
	out = bind(out, domain.FieldBedrooms, p.Bedrooms)
	out = bind(out, domain.FieldBathrooms, p.Bathrooms)
	out = bind(out, domain.FieldCarSpaces, p.CarSpaces)
	out = bind(out, domain.FieldPropertyType, p.PropertyType)
	out = bind(out, domain.FieldEstimatedValue, p.EstimatedValue)
	out = bind(out, domain.FieldLastSale, p.LastSale)
	out = bind(out, domain.FieldNearbySchools, p.NearbySchools)
	out = bind(out, domain.FieldZoning, p.Zoning)
	out = bind(out, domain.FieldCouncilArea, p.CouncilArea)

	return out
}

func bind[T any](out []parse.FieldConfig, f domain.Field, cfg *parse.Config[T]) []parse.FieldConfig {
	if cfg == nil {
		return out
	}

	return append(out, parse.Field(f, *cfg))
}

// profileFor returns the per-field configs used in the field waterfalls.
// realestate.com is only read by the whole-record tier.
func profileFor(source domain.Source) (profile, error) {
	switch source {
	case domain.SourcePropertyValue:
		return propertyValue, nil
	case domain.SourceDomain:
		return domainCom, nil
	case domain.SourceCoreLogic:
		return coreLogic, nil
	case domain.SourceRealEstate:
		return profile{}, nil
	default:
		return profile{}, serrors.With(serrors.ErrBadRequest, "unknown source %q", source)
	}
}

// fallbackProfileFor returns the whole-page configs used by the
// whole-record tier. They lean on text patterns, which survive layout
// changes that break selectors.
func fallbackProfileFor(source domain.Source) (profile, error) {
	switch source {
	case domain.SourceRealEstate:
		return realEstate, nil
	case domain.SourcePropertyValue, domain.SourceDomain, domain.SourceCoreLogic:
		return summary, nil
	default:
		return profile{}, serrors.With(serrors.ErrBadRequest, "unknown source %q", source)
	}
}

const areaValue = `([\d.,]+\s*(?:m²|m2|sqm|sq\.?\s?m|ha|hectares?|acres?))`

var propertyType = parse.OneOf( //nolint: gochecknoglobals
	"house", "townhouse", "apartment", "unit", "villa", "duplex", "studio", "acreage", "land", "rural")

func re(s string) []*regexp.Regexp { return []*regexp.Regexp{regexp.MustCompile(s)} }

func patterns(s ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, 0, len(s))
	for _, p := range s {
		out = append(out, regexp.MustCompile(p))
	}

	return out
}

func schoolList(name string, selectors ...string) parse.Strategy {
	return parse.Strategy{Name: name, Selectors: selectors, Text: parse.ListItems}
}

//nolint: gochecknoglobals, lll
var propertyValue = profile{
	YearBuilt: &parse.Config[int]{
		Strategies: []parse.Strategy{
			{Name: "attribute", Selectors: []string{`[data-testid="year-built"]`, `.property-attributes .year-built`}},
			parse.Labeled("attribute table", "Year Built"),
		},
		Extract:  parse.Year,
		Patterns: patterns(`(?i)year built:?\s*(\d{4})`, `(?i)built in (\d{4})`),
	},
	LandArea: &parse.Config[domain.Area]{
		Strategies: []parse.Strategy{
			{Name: "attribute", Selectors: []string{`[data-testid="land-size"]`, `.property-attributes .land-size`}},
			parse.Labeled("attribute table", "Land Size"),
		},
		Extract:  parse.Area,
		Patterns: re(`(?i)land size:?\s*` + areaValue),
	},
	FloorArea: &parse.Config[domain.Area]{
		Strategies: []parse.Strategy{
			{Name: "attribute", Selectors: []string{`[data-testid="floor-size"]`, `.property-attributes .floor-size`}},
			parse.Labeled("attribute table", "Floor Size"),
		},
		Extract:  parse.Area,
		Patterns: re(`(?i)floor (?:size|area):?\s*` + areaValue),
	},
	Bedrooms: &parse.Config[int]{
		Strategies: []parse.Strategy{
			{Name: "feature", Selectors: []string{`[data-testid="bedrooms"]`, `.property-features .beds`}},
			parse.Labeled("attribute table", "Bedrooms"),
		},
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*bed(?:room)?s?\b`),
	},
	Bathrooms: &parse.Config[int]{
		Strategies: []parse.Strategy{
			{Name: "feature", Selectors: []string{`[data-testid="bathrooms"]`, `.property-features .baths`}},
			parse.Labeled("attribute table", "Bathrooms"),
		},
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*bath(?:room)?s?\b`),
	},
	CarSpaces: &parse.Config[int]{
		Strategies: []parse.Strategy{
			{Name: "feature", Selectors: []string{`[data-testid="car-spaces"]`, `.property-features .cars`}},
			parse.Labeled("attribute table", "Car Spaces"),
		},
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*(?:car(?:\s*spaces?)?|parking)\b`),
	},
	PropertyType: &parse.Config[string]{
		Strategies: []parse.Strategy{
			{Name: "attribute", Selectors: []string{`[data-testid="property-type"]`}},
			parse.Labeled("attribute table", "Property Type"),
		},
		Extract: propertyType,
	},
	EstimatedValue: &parse.Config[domain.ValueEstimate]{
		Strategies: []parse.Strategy{
			{Name: "estimate", Selectors: []string{`[data-testid="estimate-range"]`, `.estimate .range`}},
		},
		Extract:  parse.ValueRange,
		Patterns: re(`(?i)estimated value:?\s*(\$[\d.,]+\s*[kmb]?\s*(?:-|to|–)\s*\$[\d.,]+\s*[kmb]?)`),
	},
	LastSale: &parse.Config[domain.Sale]{
		Strategies: []parse.Strategy{
			{Name: "sales history", Selectors: []string{`[data-testid="last-sold"]`, `.sales-history li:first-child`}},
			parse.Labeled("attribute table", "Last Sold"),
		},
		Extract:  parse.Sale,
		Patterns: re(`(?i)last sold:?\s*(\$[\d.,]+\s*[kmb]?(?:\s*(?:on|in)\s*[\w ,/]{4,30}\d{4})?)`),
	},
	NearbySchools: &parse.Config[[]domain.School]{
		Strategies: []parse.Strategy{schoolList("schools list", `#nearby-schools ul`, `.nearby-schools`)},
		Extract:    parse.Schools,
	},
	Zoning: &parse.Config[string]{
		Strategies: []parse.Strategy{parse.Labeled("attribute table", "Zoning")},
		Extract:    parse.Text,
	},
	CouncilArea: &parse.Config[string]{
		Strategies: []parse.Strategy{parse.Labeled("attribute table", "Council")},
		Extract:    parse.Text,
		Patterns:   re(`(?i:local government area):?\s*([A-Z][\w ]{1,60}?(?:City|Shire|Council))`),
	},
}

//nolint: gochecknoglobals, lll
var domainCom = profile{
	YearBuilt: &parse.Config[int]{
		Strategies: []parse.Strategy{parse.Labeled("property details", "Year built")},
		Extract:    parse.Year,
	},
	LandArea: &parse.Config[domain.Area]{
		Strategies: []parse.Strategy{
			{Name: "feature", Selectors: []string{`[data-testid="property-features-feature"]:has([data-testid="land-size"])`, `[data-testid="land-size"]`}},
			parse.Labeled("property details", "Land size"),
		},
		Extract:  parse.Area,
		Patterns: re(`(?i)land (?:size|area):?\s*` + areaValue),
	},
	FloorArea: &parse.Config[domain.Area]{
		Strategies: []parse.Strategy{parse.Labeled("property details", "Floor area")},
		Extract:    parse.Area,
	},
	Bedrooms: &parse.Config[int]{
		Strategies: []parse.Strategy{
			{Name: "feature", Selectors: []string{`[data-testid="property-features-feature"]:containsOwn("Bed")`, `[data-testid="beds"]`}},
		},
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*beds?\b`),
	},
	Bathrooms: &parse.Config[int]{
		Strategies: []parse.Strategy{
			{Name: "feature", Selectors: []string{`[data-testid="property-features-feature"]:containsOwn("Bath")`, `[data-testid="baths"]`}},
		},
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*baths?\b`),
	},
	CarSpaces: &parse.Config[int]{
		Strategies: []parse.Strategy{
			{Name: "feature", Selectors: []string{`[data-testid="property-features-feature"]:containsOwn("Parking")`, `[data-testid="parking"]`}},
		},
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*parking\b`),
	},
	PropertyType: &parse.Config[string]{
		Strategies: []parse.Strategy{
			{Name: "summary", Selectors: []string{`[data-testid="property-type"]`, `.property-summary .type`}},
		},
		Extract: propertyType,
	},
	EstimatedValue: &parse.Config[domain.ValueEstimate]{
		Strategies: []parse.Strategy{
			{Name: "price estimate", Selectors: []string{`[data-testid="price-estimate"]`, `.price-estimate__range`}},
		},
		Extract:  parse.ValueRange,
		Patterns: re(`(?i)(?:price|value) estimate:?\s*(\$[\d.,]+\s*[kmb]?\s*(?:-|to|–)\s*\$[\d.,]+\s*[kmb]?)`),
	},
	LastSale: &parse.Config[domain.Sale]{
		Strategies: []parse.Strategy{
			{Name: "timeline", Selectors: []string{`[data-testid="property-timeline-item"]:first-child`}},
		},
		Extract: parse.Sale,
	},
	NearbySchools: &parse.Config[[]domain.School]{
		Strategies: []parse.Strategy{schoolList("school catchment", `[data-testid="school-catchment"] ul`, `[data-testid="schools"]`)},
		Extract:    parse.Schools,
	},
}

//nolint: gochecknoglobals
var coreLogic = profile{
	YearBuilt: &parse.Config[int]{
		Strategies: []parse.Strategy{parse.Labeled("report table", "Year Built")},
		Extract:    parse.Year,
	},
	LandArea: &parse.Config[domain.Area]{
		Strategies: []parse.Strategy{parse.Labeled("report table", "Land Area")},
		Extract:    parse.Area,
	},
	FloorArea: &parse.Config[domain.Area]{
		Strategies: []parse.Strategy{parse.Labeled("report table", "Floor Area")},
		Extract:    parse.Area,
	},
	PropertyType: &parse.Config[string]{
		Strategies: []parse.Strategy{parse.Labeled("report table", "Property Type")},
		Extract:    propertyType,
	},
	EstimatedValue: &parse.Config[domain.ValueEstimate]{
		Strategies: []parse.Strategy{
			{Name: "avm", Selectors: []string{`.avm-range`, `#estimated-value`}},
			parse.Labeled("report table", "Estimated Value"),
		},
		Extract: parse.ValueRange,
	},
	LastSale: &parse.Config[domain.Sale]{
		Strategies: []parse.Strategy{parse.Labeled("report table", "Last Sale")},
		Extract:    parse.Sale,
	},
	Zoning: &parse.Config[string]{
		Strategies: []parse.Strategy{parse.Labeled("report table", "Zoning")},
		Extract:    parse.Text,
		Patterns:   re(`(?i:zon(?:e|ing)):?\s*([A-Z]{2,4}\d{1,2})\b`),
	},
	CouncilArea: &parse.Config[string]{
		Strategies: []parse.Strategy{parse.Labeled("report table", "Local Government Area")},
		Extract:    parse.Text,
	},
}

//nolint: gochecknoglobals
var realEstate = profile{
	YearBuilt: &parse.Config[int]{
		Extract:  parse.Year,
		Patterns: patterns(`(?i)year built:?\s*(\d{4})`, `(?i)built in (\d{4})`),
	},
	LandArea: &parse.Config[domain.Area]{
		Strategies: []parse.Strategy{{Name: "land size", Selectors: []string{`.property-size-group .land-size`}}},
		Extract:    parse.Area,
		Patterns:   re(`(?i)land(?: size)?:?\s*` + areaValue),
	},
	FloorArea: &parse.Config[domain.Area]{
		Extract:  parse.Area,
		Patterns: re(`(?i)floor(?: area| size)?:?\s*` + areaValue),
	},
	Bedrooms: &parse.Config[int]{
		Strategies: []parse.Strategy{{Name: "features", Selectors: []string{`[aria-label$="bedrooms"]`}}},
		Extract:    parse.Integer,
		Patterns:   re(`(?i)(\d{1,2})\s*bed(?:room)?s?\b`),
	},
	Bathrooms: &parse.Config[int]{
		Strategies: []parse.Strategy{{Name: "features", Selectors: []string{`[aria-label$="bathrooms"]`}}},
		Extract:    parse.Integer,
		Patterns:   re(`(?i)(\d{1,2})\s*bath(?:room)?s?\b`),
	},
	CarSpaces: &parse.Config[int]{
		Strategies: []parse.Strategy{{Name: "features", Selectors: []string{`[aria-label$="car spaces"]`}}},
		Extract:    parse.Integer,
		Patterns:   re(`(?i)(\d{1,2})\s*car\s*spaces?\b`),
	},
	PropertyType: &parse.Config[string]{
		Strategies: []parse.Strategy{{Name: "summary", Selectors: []string{`.property-info__property-type`}}},
		Extract:    propertyType,
	},
	LastSale: &parse.Config[domain.Sale]{
		Extract:  parse.Sale,
		Patterns: re(`(?i)sold for\s*(\$[\d.,]+\s*[kmb]?(?:\s*(?:on|in)\s*[\w ,/]{4,30}\d{4})?)`),
	},
}

//nolint: gochecknoglobals
var summary = profile{
	YearBuilt: &parse.Config[int]{
		Extract:  parse.Year,
		Patterns: patterns(`(?i)year built:?\s*(\d{4})`, `(?i)built in (\d{4})`, `(?i)built circa (\d{4})`),
	},
	LandArea: &parse.Config[domain.Area]{
		Extract:  parse.Area,
		Patterns: re(`(?i)land(?: size| area)?:?\s*` + areaValue),
	},
	FloorArea: &parse.Config[domain.Area]{
		Extract:  parse.Area,
		Patterns: re(`(?i)(?:floor|building)(?: size| area)?:?\s*` + areaValue),
	},
	Bedrooms: &parse.Config[int]{
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*bed(?:room)?s?\b`),
	},
	Bathrooms: &parse.Config[int]{
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*bath(?:room)?s?\b`),
	},
	CarSpaces: &parse.Config[int]{
		Extract:  parse.Integer,
		Patterns: re(`(?i)(\d{1,2})\s*(?:car(?:\s*spaces?)?|parking|garage)\b`),
	},
	Zoning: &parse.Config[string]{
		Extract:  parse.Text,
		Patterns: re(`(?i:zon(?:e|ing)):?\s*([A-Z]{2,4}\d{1,2})\b`),
	},
}
