// Package api contains API contract definitions for the Asia Cup analytics service.
// Version v1 represents the current stable API version.
package api

import (
	"asiacup/pkg/contracts/domain"
)

// FilterRequest is the wire form of a dashboard selection.
//
// A nil dimension means "not specified" and defaults to every available value.
// A present but empty list ("teams": []) is an explicit empty selection and
// matches no rows.
type FilterRequest struct {
	Years     []int    `json:"years" validate:"omitempty,dive,min=1"`
	Teams     []string `json:"teams" validate:"omitempty,dive,max=100"`
	Opponents []string `json:"opponents" validate:"omitempty,dive,max=100"`
}

// Resolve turns the request into a concrete selection, filling unspecified
// dimensions from options.
func (r FilterRequest) Resolve(options domain.FilterOptions) domain.Selection {
	sel := options.All()
	if r.Years != nil {
		sel.Years = append([]int{}, r.Years...)
	}
	if r.Teams != nil {
		sel.Teams = append([]string{}, r.Teams...)
	}
	if r.Opponents != nil {
		sel.Opponents = append([]string{}, r.Opponents...)
	}
	return sel
}

// ExportFormat is the file format of a dataset export.
type ExportFormat string

const (
	ExportCSV  ExportFormat = "csv"
	ExportXLSX ExportFormat = "xlsx"
)
