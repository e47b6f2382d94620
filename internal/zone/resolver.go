// Package zone maps customer addresses to delivery zones.
package zone

import (
	"strings"

	"orderdesk/internal/model"

	"github.com/google/uuid"
)

// Status describes the outcome of a zone resolution.
type Status string

const (
	// StatusResolved means exactly one zone applies.
	StatusResolved Status = "resolved"
	// StatusAmbiguous means several zones apply and the customer must pick one.
	StatusAmbiguous Status = "ambiguous"
	// StatusNotFound means no zone serves the postal code.
	StatusNotFound Status = "not_found"
)

// Resolution is the result of resolving a postal code and city.
type Resolution struct {
	Status     Status               `json:"status"`
	PostalCode string               `json:"postalCode"`
	Zone       *model.DeliveryZone  `json:"zone,omitempty"`
	Candidates []model.DeliveryZone `json:"candidates,omitempty"`
}

// Resolved reports whether a single zone was selected.
func (r Resolution) Resolved() bool {
	return r.Status == StatusResolved && r.Zone != nil
}

// Select applies a manual choice among the candidates of an ambiguous
// resolution. Choosing a zone that is not a candidate fails with ErrZoneMismatch.
func (r Resolution) Select(zoneID uuid.UUID) (Resolution, error) {
	for i := range r.Candidates {
		if r.Candidates[i].ID == zoneID {
			z := r.Candidates[i]
			return Resolution{
				Status:     StatusResolved,
				PostalCode: r.PostalCode,
				Zone:       &z,
				Candidates: r.Candidates,
			}, nil
		}
	}
	return r, model.ErrZoneMismatch
}

// Err returns the blocking error for an unresolved result, or nil.
func (r Resolution) Err() error {
	switch r.Status {
	case StatusResolved:
		return nil
	case StatusAmbiguous:
		return model.ErrZoneAmbiguous
	default:
		return model.NewNoZoneForPostalCodeError(r.PostalCode)
	}
}

// Resolve finds the delivery zone for postalCode. When several zones share the
// postal code, city narrows them down only if it matches exactly one zone;
// otherwise the result is ambiguous and no zone is chosen.
// An empty match returns a NO_ZONE_FOR_POSTAL_CODE domain error alongside
// the not-found resolution.
func Resolve(postalCode, city string, zones []model.DeliveryZone) (Resolution, error) {
	code := normalize(postalCode)
	res := Resolution{PostalCode: strings.TrimSpace(postalCode)}

	var candidates []model.DeliveryZone
	for _, z := range zones {
		if servesPostalCode(z, code) {
			candidates = append(candidates, z)
		}
	}

	switch len(candidates) {
	case 0:
		res.Status = StatusNotFound
		return res, res.Err()
	case 1:
		res.Status = StatusResolved
		res.Zone = &candidates[0]
		res.Candidates = candidates
		return res, nil
	}

	res.Candidates = candidates
	res.Status = StatusAmbiguous

	needle := normalize(city)
	if needle == "" {
		return res, nil
	}

	var match *model.DeliveryZone
	matches := 0
	for i := range candidates {
		if matchesCity(candidates[i], needle) {
			match = &candidates[i]
			matches++
		}
	}
	if matches == 1 {
		res.Status = StatusResolved
		res.Zone = match
	}
	return res, nil
}

func servesPostalCode(z model.DeliveryZone, code string) bool {
	if code == "" {
		return false
	}
	for _, pc := range z.PostalCodes {
		if normalize(pc) == code {
			return true
		}
	}
	return false
}

func matchesCity(z model.DeliveryZone, city string) bool {
	if strings.Contains(normalize(z.Name), city) {
		return true
	}
	return z.Area != "" && strings.Contains(normalize(z.Area), city)
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
