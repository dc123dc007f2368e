package pipeline

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/ZaguanLabs/xlate"
)

// FlaggedUnit is one validation failure listed in the batch report.
type FlaggedUnit struct {
	UnitID string
	Issues []string
}

// UnitFailure is one unit whose translation could not be obtained.
type UnitFailure struct {
	UnitID string
	Err    error
}

// Report summarizes a batch run for manual review. It is human-readable
// output, not a machine interface.
type Report struct {
	Documents int
	Rebuilt   int
	Units     int
	ByStatus  map[xlate.UnitStatus]int
	Flagged   []FlaggedUnit
	Failures  []UnitFailure
	Duration  time.Duration
}

func newReport() *Report {
	return &Report{ByStatus: make(map[xlate.UnitStatus]int)}
}

func (r *Report) addResult(res Result) {
	r.Units++
	r.ByStatus[res.Status]++

	if res.Status == xlate.StatusFlagged {
		var issues []string
		var sie *xlate.StructuralIntegrityError
		switch {
		case res.Report != nil:
			issues = res.Report.Issues
		case errors.As(res.Err, &sie):
			issues = sie.Issues
		}
		r.Flagged = append(r.Flagged, FlaggedUnit{UnitID: res.UnitID, Issues: issues})
	}
	if res.State == StateFailed && res.Err != nil {
		r.Failures = append(r.Failures, UnitFailure{UnitID: res.UnitID, Err: res.Err})
	}
}

// String renders the per-batch summary: counts by status, then the flagged
// and failed units with reasons.
func (r *Report) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "Batch: %d document(s), %d rebuilt, %d unit(s) in %s\n",
		r.Documents, r.Rebuilt, r.Units, r.Duration.Round(time.Millisecond))

	statuses := make([]string, 0, len(r.ByStatus))
	for s := range r.ByStatus {
		statuses = append(statuses, string(s))
	}
	sort.Strings(statuses)
	for _, s := range statuses {
		fmt.Fprintf(&b, "  %-20s %d\n", s, r.ByStatus[xlate.UnitStatus(s)])
	}

	if len(r.Flagged) > 0 {
		fmt.Fprintf(&b, "Flagged units (%d):\n", len(r.Flagged))
		for _, f := range r.Flagged {
			fmt.Fprintf(&b, "  %s: %s\n", f.UnitID, strings.Join(f.Issues, "; "))
		}
	}

	if len(r.Failures) > 0 {
		fmt.Fprintf(&b, "Failed units (%d):\n", len(r.Failures))
		for _, f := range r.Failures {
			fmt.Fprintf(&b, "  %s: %v\n", f.UnitID, f.Err)
		}
	}

	return b.String()
}
