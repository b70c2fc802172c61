package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"propertydata/pkg/domain"
)

// renderRecord prints rec as a two column table, one row per field.
func renderRecord(w io.Writer, addr domain.Address, rec domain.Record) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle(addr.String())
	t.AppendHeader(table.Row{"Field", "Value"})

	for _, f := range domain.Fields() {
		v, ok := domain.Get(rec, f)
		if !ok {
			t.AppendRow(table.Row{f, text.FgHiBlack.Sprint("-")})

			continue
		}
		t.AppendRow(table.Row{f, formatValue(v)})
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func formatValue(v any) string {
	switch v := v.(type) {
	case domain.Area:
		return strconv.FormatFloat(v.Value, 'f', -1, 64) + " " + v.Unit
	case domain.ValueEstimate:
		return fmt.Sprintf("%s (%s to %s)", dollars(v.Mid), dollars(v.Low), dollars(v.High))
	case domain.Sale:
		if v.Date == "" {
			return dollars(v.Price)
		}

		return dollars(v.Price) + " on " + v.Date
	case []domain.School:
		lines := make([]string, 0, len(v))
		for _, s := range v {
			line := s.Name
			if s.Type != "" {
				line += " (" + s.Type + ")"
			}
			if s.Distance != nil {
				line += ", " + strconv.FormatFloat(*s.Distance, 'f', -1, 64) + " km"
			}
			lines = append(lines, line)
		}

		return strings.Join(lines, "\n")
	default:
		return fmt.Sprint(v)
	}
}

// dollars formats n with thousands separators, e.g. $1,250,000.
func dollars(n int64) string {
	if n < 0 {
		return "-" + dollars(-n)
	}
	s := strconv.FormatInt(n, 10)

	var b strings.Builder
	b.WriteByte('$')
	for i, r := range s {
		if i > 0 && (len(s)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	return b.String()
}
