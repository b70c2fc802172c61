package v1handler

import (
	"net/http"
	"net/url"

	"propertydata/pkg/controller"
	"propertydata/pkg/domain"
)

// ReportResponse is the body of a successful report request.
type ReportResponse struct {
	Address string        `json:"address"`
	Record  domain.Record `json:"record"`
}

// AddressFromQuery reads an address either from a single "address" parameter
// or from its "line", "suburb", "state" and "postcode" parts.
func AddressFromQuery(q url.Values) (domain.Address, error) {
	if s := q.Get("address"); s != "" {
		return domain.ParseAddress(s) //nolint: wrapcheck
	}

	addr := domain.Address{
		Line:     q.Get("line"),
		Suburb:   q.Get("suburb"),
		State:    q.Get("state"),
		Postcode: q.Get("postcode"),
	}
	if err := addr.Validate(); err != nil {
		return domain.Address{}, err //nolint: wrapcheck
	}

	return addr, nil
}

// GetReport builds the record of the requested address.
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	addr, err := AddressFromQuery(r.URL.Query())
	if err != nil {
		h.writeError(ctx, w, err)

		return
	}

	rec, err := h.deps.Reports.Build(ctx, addr)
	if err != nil {
		h.writeError(ctx, w, err)

		return
	}

	controller.WriteJSON(ctx, w, http.StatusOK, ReportResponse{Address: addr.String(), Record: rec})
}
