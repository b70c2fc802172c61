package domain

import (
	"fmt"
	"reflect"
	"strings"

	"propertydata/pkg/serrors"
)

// Field names one Record member. Its value is the member's JSON name.
type Field string

const (
	FieldYearBuilt      Field = "yearBuilt"
	FieldLandArea       Field = "landArea"
	FieldFloorArea      Field = "floorArea"
	FieldBedrooms       Field = "bedrooms"
	FieldBathrooms      Field = "bathrooms"
	FieldCarSpaces      Field = "carSpaces"
	FieldPropertyType   Field = "propertyType"
	FieldEstimatedValue Field = "estimatedValue"
	FieldLastSale       Field = "lastSale"
	FieldNearbySchools  Field = "nearbySchools"
	FieldZoning         Field = "zoning"
	FieldCouncilArea    Field = "councilArea"
)

// Fields returns every field in Record declaration order.
func Fields() []Field {
	out := make([]Field, len(recordFields))
	for i, rf := range recordFields {
		out[i] = rf.field
	}

	return out
}

func (f Field) String() string { return string(f) }

// Valid reports whether f names a Record member.
func (f Field) Valid() bool {
	_, ok := fieldIndex[f]

	return ok
}

// ParseField converts a JSON member name into a Field.
func ParseField(name string) (Field, error) {
	f := Field(name)
	if !f.Valid() {
		return "", serrors.With(serrors.ErrBadRequest, "unknown field %q", name)
	}

	return f, nil
}

type recordField struct {
	field Field
	index int
	// typ is the value type stored for the field: the pointer's element type
	// for pointer members, the slice type itself for slice members.
	typ reflect.Type
}

var (
	recordFields []recordField        //nolint: gochecknoglobals
	fieldIndex   map[Field]recordField //nolint: gochecknoglobals
)

func init() { //nolint: gochecknoinits
	rt := reflect.TypeFor[Record]()
	fieldIndex = make(map[Field]recordField, rt.NumField())
	for i := range rt.NumField() {
		sf := rt.Field(i)
		name, _, _ := strings.Cut(sf.Tag.Get("json"), ",")
		typ := sf.Type
		if typ.Kind() == reflect.Pointer {
			typ = typ.Elem()
		}
		rf := recordField{field: Field(name), index: i, typ: typ}
		recordFields = append(recordFields, rf)
		fieldIndex[rf.field] = rf
	}
}

// FieldType returns the Go type of values stored in f, or nil for an unknown
// field. For example FieldYearBuilt is int and FieldNearbySchools is []School.
func FieldType(f Field) reflect.Type {
	rf, ok := fieldIndex[f]
	if !ok {
		return nil
	}

	return rf.typ
}

// Get returns the value of f in rec, dereferenced. ok is false when the field
// is missing.
func Get(rec Record, f Field) (any, bool) {
	rf, ok := fieldIndex[f]
	if !ok || isMissing(reflect.ValueOf(rec).Field(rf.index)) {
		return nil, false
	}

	v := reflect.ValueOf(rec).Field(rf.index)
	if v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	return v.Interface(), true
}

// Set stores value into f. value must have exactly the field's type; a
// mismatch is reported as ErrValidation and leaves rec untouched.
func Set(rec *Record, f Field, value any) error {
	rf, ok := fieldIndex[f]
	if !ok {
		return serrors.With(serrors.ErrBadRequest, "unknown field %q", f)
	}

	v := reflect.ValueOf(value)
	if !v.IsValid() || v.Type() != rf.typ {
		return serrors.With(serrors.ErrValidation, "field %s expects %s, got %T", f, rf.typ, value)
	}

	dst := reflect.ValueOf(rec).Elem().Field(rf.index)
	if dst.Kind() == reflect.Pointer {
		p := reflect.New(rf.typ)
		p.Elem().Set(v)
		dst.Set(p)

		return nil
	}
	dst.Set(v)

	return nil
}

// Unset clears f in rec.
func Unset(rec *Record, f Field) {
	if rf, ok := fieldIndex[f]; ok {
		dst := reflect.ValueOf(rec).Elem().Field(rf.index)
		dst.SetZero()
	}
}

// IsMissing reports whether f holds no usable value: a nil pointer, a pointer
// to an empty string or an empty slice.
func IsMissing(rec Record, f Field) bool {
	rf, ok := fieldIndex[f]
	if !ok {
		return true
	}

	return isMissing(reflect.ValueOf(rec).Field(rf.index))
}

// Missing lists the missing fields of rec in declaration order.
func Missing(rec Record) []Field {
	var out []Field
	for _, rf := range recordFields {
		if IsMissing(rec, rf.field) {
			out = append(out, rf.field)
		}
	}

	return out
}

// Only returns a record holding just f copied from rec.
func Only(rec Record, f Field) Record {
	var out Record
	if rf, ok := fieldIndex[f]; ok {
		reflect.ValueOf(&out).Elem().Field(rf.index).Set(reflect.ValueOf(rec).Field(rf.index))
	}

	return out
}

func isMissing(v reflect.Value) bool {
	switch v.Kind() { //nolint: exhaustive
	case reflect.Pointer:
		if v.IsNil() {
			return true
		}
		if e := v.Elem(); e.Kind() == reflect.String {
			return strings.TrimSpace(e.String()) == ""
		}

		return false
	case reflect.Slice:
		return v.Len() == 0
	default:
		panic(fmt.Sprintf("domain: unexpected record member kind %s", v.Kind()))
	}
}
