package main

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/ngrash/tzresolve/zone"
	"github.com/ngrash/tzresolve/zonecache"
)

// now is replaced in tests.
var now = time.Now

func newAtCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "at [zone] [instant]",
		Short: "Print the local time in effect at an instant",
		Long: `Print the local time in effect at a UTC instant together with the
surrounding transitions. The instant is RFC 3339, milliseconds since the
epoch or "now", the default. An omitted zone selects the default zone.`,
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			args = append(args, "", "")
			z, err := root.zone(args[0])
			if err != nil {
				return err
			}
			at, err := parseInstant(args[1])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, "zone:", z.ID())
			fmt.Fprintln(w, "instant:", at)
			printData(w, "current", z.DataAt(at))
			printData(w, "previous", z.PreviousTransition(at))
			printData(w, "next", z.NextTransition(at))
			fmt.Fprintln(w, "daylight saving time:", z.HasDaylightTime())
			return nil
		},
	}
}

type transitionsOptions struct {
	from, to string
}

func newTransitionsCommand(root *rootOptions) *cobra.Command {
	opts := &transitionsOptions{}
	cmd := &cobra.Command{
		Use:   "transitions [zone]",
		Short: "List the transitions of a zone in a range",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			args = append(args, "")
			z, err := root.zone(args[0])
			if err != nil {
				return err
			}
			from, err := parseInstant(opts.from)
			if err != nil {
				return fmt.Errorf("--from: %w", err)
			}
			to, err := parseInstant(opts.to)
			if err != nil {
				return fmt.Errorf("--to: %w", err)
			}
			if opts.to == "" {
				to = zone.FromTime(from.Time().AddDate(1, 0, 0))
			}
			w := cmd.OutOrStdout()
			for _, d := range z.Transitions(from, to) {
				printData(w, "", d)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "start of the range, exclusive (default now)")
	cmd.Flags().StringVar(&opts.to, "to", "", "end of the range, inclusive (default one year after --from)")
	return cmd
}

type resolveOptions struct {
	gap, fold string
	flip      bool
}

func newResolveCommand(root *rootOptions) *cobra.Command {
	opts := &resolveOptions{}
	cmd := &cobra.Command{
		Use:   "resolve [zone] <local time>",
		Short: "Convert a local wall-clock time to UTC",
		Long: `Convert a local wall-clock time such as 2023-03-26T02:30 to a UTC
instant. Times skipped by a transition (gaps) and times occurring twice
(folds) are resolved as selected by --gap and --fold.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				args = []string{"", args[0]}
			}
			z, err := root.zone(args[0])
			if err != nil {
				return err
			}
			local, err := parseLocal(args[1])
			if err != nil {
				return err
			}
			p, err := opts.policy()
			if err != nil {
				return err
			}
			printState(cmd.OutOrStdout(), z.ID(), zone.ResolveLocal(z, local, p))
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.gap, "gap", "after", "offset used in gaps (before|after|none)")
	cmd.Flags().StringVar(&opts.fold, "fold", "before", "occurrence used in folds (before|after|none)")
	cmd.Flags().BoolVar(&opts.flip, "flip", false, "swap before and after at transitions of negative daylight saving time")
	return cmd
}

func (o *resolveOptions) policy() (zone.Policy, error) {
	var p zone.Policy
	switch o.gap {
	case "before":
		p |= zone.GapUseBefore
	case "after":
		p |= zone.GapUseAfter
	case "none":
	default:
		return 0, fmt.Errorf("invalid --gap %q: must be before, after or none", o.gap)
	}
	switch o.fold {
	case "before":
		p |= zone.FoldUseBefore
	case "after":
		p |= zone.FoldUseAfter
	case "none":
	default:
		return 0, fmt.Errorf("invalid --fold %q: must be before, after or none", o.fold)
	}
	if o.flip {
		p |= zone.FlipForReverseDST
	}
	return p, nil
}

func newZonesCommand(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "zones",
		Short: "List the zones in the zoneinfo directories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			seen := make(map[string]bool)
			for _, dir := range root.cfg.ZoneinfoDirs {
				ids, err := zonecache.DirSource{Dir: dir}.IDs()
				if err != nil {
					root.log.Debug("skipping zoneinfo directory", "dir", dir, "error", err)
					continue
				}
				for _, id := range ids {
					if !seen[id] {
						seen[id] = true
						fmt.Fprintln(w, id)
					}
				}
			}
			return nil
		},
	}
}

// parseInstant parses an RFC 3339 time, milliseconds since the epoch or
// "now". The empty string is now.
func parseInstant(s string) (zone.Instant, error) {
	if s == "" || s == "now" {
		return zone.FromTime(now()), nil
	}
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return zone.Instant(ms), nil
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return 0, fmt.Errorf("invalid instant %q", s)
	}
	return zone.FromTime(t), nil
}

var localLayouts = []string{
	"2006-01-02T15:04:05.999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999",
	"2006-01-02 15:04",
}

// parseLocal parses a wall-clock reading without zone.
func parseLocal(s string) (zone.Instant, error) {
	for _, layout := range localLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return zone.FromTime(t), nil
		}
	}
	return 0, fmt.Errorf("invalid local time %q: want form 2006-01-02T15:04[:05]", s)
}

func printData(w io.Writer, label string, d zone.Data) {
	if label != "" {
		fmt.Fprintf(w, "%s: ", label)
	}
	if !d.Valid() {
		fmt.Fprintln(w, "none")
		return
	}
	at := "since " + d.At.String()
	if d.At == zone.MinInstant {
		at = "from the beginning"
	}
	dst := ""
	if d.IsDST() {
		dst = " DST"
	}
	fmt.Fprintf(w, "%s %s (std %v, dst %v)%s %s\n", d.Abbreviation, d.Offset, d.StandardOffset, d.DaylightOffset, dst, at)
}

func printState(w io.Writer, id string, s zone.State) {
	fmt.Fprintln(w, "zone:", id)
	if !s.Resolved {
		fmt.Fprintln(w, "unresolved: no policy covers this skipped or repeated local time")
		return
	}
	fmt.Fprintln(w, "instant:", s.Instant)
	fmt.Fprintln(w, "offset:", s.Offset)
	fmt.Fprintln(w, "daylight saving time:", s.IsDST)
}
