// Package quality validates translated units for structural integrity and
// register compliance.
package quality

import "time"

// Report is the outcome of validating one translated unit. Reports are
// created once per translation attempt and superseded, never mutated, on
// re-translation so the full history stays available for audit.
type Report struct {
	UnitID         string
	Attempt        int
	StructuralPass bool
	RegisterScore  float64
	Pass           bool
	Issues         []string
	CreatedAt      time.Time
}
