package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ngrash/tzresolve/posixtz"
	"github.com/ngrash/tzresolve/zone"
)

type posixOptions struct {
	years    []int
	nameOnly bool
}

func newPosixCommand() *cobra.Command {
	opts := &posixOptions{}
	cmd := &cobra.Command{
		Use:   "posix <rule>",
		Short: "Validate a POSIX TZ rule and print its transitions",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPosix(cmd.OutOrStdout(), args[0], opts)
		},
	}
	cmd.Flags().IntSliceVar(&opts.years, "year", nil, "years to print transitions for (default the current year)")
	cmd.Flags().BoolVar(&opts.nameOnly, "allow-name-only", false, "accept a rule without offset, such as UTC")
	return cmd
}

func runPosix(w io.Writer, s string, opts *posixOptions) error {
	v := posixtz.Validate(s, !opts.nameOnly)
	if !v.Valid {
		_, err := posixtz.Parse(s)
		return err
	}
	if opts.nameOnly && !posixtz.Validate(s, true).Valid {
		fmt.Fprintln(w, "rule:", s)
		fmt.Fprintln(w, "valid: true (no offset, read as UTC+0)")
		return nil
	}

	r, err := posixtz.Parse(s)
	if err != nil {
		return err
	}
	fmt.Fprintln(w, "rule:", r)
	fmt.Fprintln(w, "valid:", v.Valid)
	fmt.Fprintln(w, "daylight saving time:", v.HasDST)

	years := opts.years
	if len(years) == 0 {
		years = []int{now().Year()}
	}
	for _, y := range years {
		fmt.Fprintf(w, "%d:\n", y)
		for _, tr := range r.Transitions(int64(y)) {
			at := zone.Instant(tr.At).String()
			if tr.Permanent {
				at = "all year"
			}
			fmt.Fprintf(w, "  %-24s %-6s %v (std %v, dst %v)\n", at, tr.Abbreviation,
				zone.Offset(tr.Offset), zone.Offset(tr.StandardOffset), zone.Offset(tr.DaylightOffset))
		}
	}
	return nil
}
