// Console rendering for adjustment results: a chronological trace table
// followed by the compounded summary. Formatting only; every value comes
// straight off the engine's Result.
package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/warp/adjustment-engine/adjust"
)

// renderResult prints the per-month trace and the final amounts.
func renderResult(w io.Writer, r adjust.Result) {
	fmt.Fprintf(w, "\nCALCULATION DETAIL (last %d published months):\n", r.Coverage)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tMONTHLY RATE\tFACTOR")
	for _, c := range r.Contributions {
		mark := ""
		if c.Borderline {
			mark = " *"
		}
		fmt.Fprintf(tw, "%s\t%s%%%s\tx %s\n",
			c.Period.DisplayName(), c.RatePct().StringFixed(2), mark, c.Factor.StringFixed(4))
	}
	tw.Flush()

	if hasBorderline(r) {
		fmt.Fprintln(w, "* raw value close to the fraction/percentage detection threshold; verify upstream format")
	}
	if r.Partial() {
		fmt.Fprintf(w, "NOTE: only %d of the requested %d months are published; the adjustment covers %d months\n",
			r.Coverage, r.WindowSize, r.Coverage)
	}

	fmt.Fprintln(w, "\nRESULT:")
	fmt.Fprintf(w, "  Previous amount:  $ %s\n", r.BaseAmount.StringFixed(2))
	fmt.Fprintf(w, "  Total adjustment:   %s%%\n", r.TotalIncreasePct.StringFixed(2))
	fmt.Fprintf(w, "  --------------------------\n")
	fmt.Fprintf(w, "  NEW AMOUNT:       $ %s\n", r.NewAmount.StringFixed(2))
	fmt.Fprintln(w, "\nNote: this calculation uses the latest OFFICIAL published index values.")
	fmt.Fprintln(w, "Early in the month the previous month's value may not be published yet.")
}

func hasBorderline(r adjust.Result) bool {
	for _, c := range r.Contributions {
		if c.Borderline {
			return true
		}
	}
	return false
}
