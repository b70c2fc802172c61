package domain

// Record is the assembled property report. Every member is independently
// nullable: a nil pointer or nil slice means no source produced the value, and
// renders as null in JSON.
type Record struct {
	YearBuilt      *int           `json:"yearBuilt"      validate:"omitempty,gte=1788,lte=2100"`
	LandArea       *Area          `json:"landArea"`
	FloorArea      *Area          `json:"floorArea"`
	Bedrooms       *int           `json:"bedrooms"       validate:"omitempty,gte=0,lte=50"`
	Bathrooms      *int           `json:"bathrooms"      validate:"omitempty,gte=0,lte=50"`
	CarSpaces      *int           `json:"carSpaces"      validate:"omitempty,gte=0,lte=50"`
	PropertyType   *string        `json:"propertyType"   validate:"omitempty,oneof=house unit apartment townhouse villa land acreage duplex studio rural"` //nolint: lll
	EstimatedValue *ValueEstimate `json:"estimatedValue"`
	LastSale       *Sale          `json:"lastSale"`
	NearbySchools  []School       `json:"nearbySchools"  validate:"omitempty,max=50,dive"`
	Zoning         *string        `json:"zoning"         validate:"omitempty,min=1,max=64"`
	CouncilArea    *string        `json:"councilArea"    validate:"omitempty,min=2,max=128"`
}

// Area is a land or floor area in one of the units listing sites publish.
type Area struct {
	Value float64 `json:"value" validate:"gt=0"`
	Unit  string  `json:"unit"  validate:"oneof=m² ha ac"`
}

// Area units.
const (
	UnitSquareMetres = "m²"
	UnitHectares     = "ha"
	UnitAcres        = "ac"
)

// ValueEstimate is an automated valuation range in whole dollars.
type ValueEstimate struct {
	Low  int64 `json:"low"  validate:"gt=0"`
	Mid  int64 `json:"mid"  validate:"gtefield=Low"`
	High int64 `json:"high" validate:"gtefield=Mid"`
}

// Sale is the most recent recorded sale. Date is formatted 2006-01-02 and may
// be empty when the site only published a price.
type Sale struct {
	Price int64  `json:"price" validate:"gt=0"`
	Date  string `json:"date"  validate:"omitempty,datetime=2006-01-02"`
}

// School is one school listed near the property. Distance is in kilometres.
type School struct {
	Name     string   `json:"name"     validate:"required,min=2,max=128"`
	Type     string   `json:"type"     validate:"omitempty,oneof=primary secondary combined"`
	Distance *float64 `json:"distance" validate:"omitempty,gte=0"`
}

// Ptr returns a pointer to v. It keeps record literals in tests and parse
// configs short.
func Ptr[T any](v T) *T { return &v }
