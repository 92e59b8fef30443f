package game

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/sweeney/reaction-duel/internal/logic"
)

var buttonSides = []string{"Left", "Right"}

// WriteGreeting introduces the players and their buttons.
func WriteGreeting(w io.Writer, names ...string) {
	switch len(names) {
	case 0:
		return
	case 1:
		fmt.Fprintf(w, "Hello player %s\n", names[0])
	default:
		fmt.Fprintf(w, "Hello players %s and %s\n", names[0], names[1])
	}
	for i, name := range names {
		if i < len(buttonSides) {
			fmt.Fprintf(w, "%s will use the %s Button.\n", name, buttonSides[i])
		}
	}
}

// WriteSummary prints the end-of-game table and, when there is one, the
// fastest player.
func WriteSummary(w io.Writer, results []Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PLAYER\tROUNDS\tTOTAL\tAVERAGE\tBEST\tSTATE")
	for _, r := range results {
		state := string(r.State)
		if r.Err != nil {
			state = "FAILED: " + r.Err.Error()
		}
		fmt.Fprintf(tw, "%s\t%d/%d\t%s\t%s\t%s\t%s\n",
			r.Name, r.Rounds, r.Limit,
			formatLatency(r.Total), formatLatency(r.Average), formatLatency(r.Best),
			state)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if best, ok := Winner(results); ok {
		_, err := fmt.Fprintf(w, "Fastest: %s (average %s)\n", best.Name, formatLatency(best.Average))
		return err
	}
	return nil
}

// Winner returns the player with the lowest average among those who
// completed every round. There is no winner on a tie or when fewer than
// two players finished.
func Winner(results []Result) (Result, bool) {
	var finished []Result
	for _, r := range results {
		if r.Err == nil && r.State == logic.StateDone && r.Rounds > 0 {
			finished = append(finished, r)
		}
	}
	if len(finished) < 2 {
		return Result{}, false
	}

	best := finished[0]
	tie := false
	for _, r := range finished[1:] {
		switch {
		case r.Average < best.Average:
			best, tie = r, false
		case r.Average == best.Average:
			tie = true
		}
	}
	if tie {
		return Result{}, false
	}
	return best, true
}

func formatLatency(d time.Duration) string {
	return d.Round(time.Microsecond).String()
}
