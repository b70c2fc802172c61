package domain_test

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/stretchr/testify/require"

	"propertydata/pkg/domain"
	"propertydata/pkg/serrors"
)

var kew = domain.Address{Line: "6 English Place", Suburb: "Kew", State: "VIC", Postcode: "3101"}

func TestAddressString(t *testing.T) {
	require.Equal(t, "6 English Place, Kew VIC 3101", kew.String())
	require.Equal(t, "6-english-place-kew-vic-3101", kew.Slug())
	require.Equal(t, "Unit 4", domain.Address{Line: " Unit 4 "}.String())
}

func TestParseAddress(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    domain.Address
		wantErr bool
	}{
		{name: "round trip", input: kew.String(), want: kew},
		{
			name:  "multi word suburb and lower case state",
			input: " 12  Station St ,  Box Hill vic 3128 ",
			want:  domain.Address{Line: "12 Station St", Suburb: "Box Hill", State: "VIC", Postcode: "3128"},
		},
		{
			name:  "unit with comma in line",
			input: "Unit 2, 10 Smith Rd, Richmond VIC 3121",
			want:  domain.Address{Line: "Unit 2, 10 Smith Rd", Suburb: "Richmond", State: "VIC", Postcode: "3121"},
		},
		{name: "no comma", input: "6 English Place Kew VIC 3101", wantErr: true},
		{name: "missing postcode", input: "6 English Place, Kew VIC", wantErr: true},
		{name: "unknown state", input: "6 English Place, Kew XYZ 3101", wantErr: true},
		{name: "bad postcode", input: "6 English Place, Kew VIC 31O1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := domain.ParseAddress(tt.input)
			if tt.wantErr {
				require.ErrorIs(t, err, serrors.ErrBadRequest)

				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestSources(t *testing.T) {
	for _, s := range domain.Sources() {
		require.True(t, s.Valid(), s)
		parsed, err := domain.ParseSource(string(s))
		require.NoError(t, err)
		require.Equal(t, s, parsed)
	}

	_, err := domain.ParseSource("zillow.com")
	require.ErrorIs(t, err, serrors.ErrBadRequest)
}

func TestFieldTableMatchesRecord(t *testing.T) {
	want := []domain.Field{
		domain.FieldYearBuilt, domain.FieldLandArea, domain.FieldFloorArea,
		domain.FieldBedrooms, domain.FieldBathrooms, domain.FieldCarSpaces,
		domain.FieldPropertyType, domain.FieldEstimatedValue, domain.FieldLastSale,
		domain.FieldNearbySchools, domain.FieldZoning, domain.FieldCouncilArea,
	}
	require.Equal(t, want, domain.Fields())

	require.Equal(t, reflect.TypeFor[int](), domain.FieldType(domain.FieldYearBuilt))
	require.Equal(t, reflect.TypeFor[domain.Area](), domain.FieldType(domain.FieldLandArea))
	require.Equal(t, reflect.TypeFor[[]domain.School](), domain.FieldType(domain.FieldNearbySchools))
	require.Nil(t, domain.FieldType("pool"))
}

func TestSetGet(t *testing.T) {
	var rec domain.Record

	require.NoError(t, domain.Set(&rec, domain.FieldYearBuilt, 1985))
	require.NoError(t, domain.Set(&rec, domain.FieldLandArea, domain.Area{Value: 650, Unit: domain.UnitSquareMetres}))
	require.NoError(t, domain.Set(&rec, domain.FieldNearbySchools, []domain.School{{Name: "Kew Primary School"}}))

	v, ok := domain.Get(rec, domain.FieldYearBuilt)
	require.True(t, ok)
	require.Equal(t, 1985, v)
	require.Equal(t, 1985, *rec.YearBuilt)
	require.Equal(t, domain.Area{Value: 650, Unit: "m²"}, *rec.LandArea)
	require.Len(t, rec.NearbySchools, 1)

	err := domain.Set(&rec, domain.FieldYearBuilt, "1985")
	require.ErrorIs(t, err, serrors.ErrValidation)
	require.Equal(t, 1985, *rec.YearBuilt, "a rejected set must not touch the record")

	require.ErrorIs(t, domain.Set(&rec, domain.FieldYearBuilt, nil), serrors.ErrValidation)
	require.ErrorIs(t, domain.Set(&rec, "pool", true), serrors.ErrBadRequest)

	domain.Unset(&rec, domain.FieldYearBuilt)
	_, ok = domain.Get(rec, domain.FieldYearBuilt)
	require.False(t, ok)
}

func TestMissing(t *testing.T) {
	rec := domain.Record{
		YearBuilt:     domain.Ptr(1985),
		PropertyType:  domain.Ptr("  "),
		NearbySchools: []domain.School{},
		Zoning:        domain.Ptr("GRZ1"),
	}

	missing := domain.Missing(rec)
	require.NotContains(t, missing, domain.FieldYearBuilt)
	require.NotContains(t, missing, domain.FieldZoning)
	require.Contains(t, missing, domain.FieldPropertyType, "blank strings count as missing")
	require.Contains(t, missing, domain.FieldNearbySchools, "empty slices count as missing")
	require.Len(t, missing, len(domain.Fields())-2)

	only := domain.Only(rec, domain.FieldZoning)
	require.Equal(t, domain.Record{Zoning: domain.Ptr("GRZ1")}, only)
}

func TestRecordJSONRendersAbsentFieldsAsNull(t *testing.T) {
	raw, err := json.Marshal(domain.Record{YearBuilt: domain.Ptr(1985)})
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(raw, &m))
	require.Len(t, m, len(domain.Fields()))
	require.InDelta(t, 1985, m["yearBuilt"], 0)
	require.Nil(t, m["landArea"])
	require.Contains(t, m, "landArea")
}
