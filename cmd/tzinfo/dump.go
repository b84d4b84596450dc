package main

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ngrash/tzresolve/tzif"
	"github.com/ngrash/tzresolve/zone"
)

type dumpOptions struct {
	v1    bool
	table bool
}

func newDumpCommand() *cobra.Command {
	opts := &dumpOptions{}
	cmd := &cobra.Command{
		Use:   "dump <tzif file>",
		Short: "Print the contents of a TZif file",
		Long: `Print the headers, data blocks and footer of a TZif file, followed by
any trailing bytes and the result of validating the file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading file: %w", err)
			}
			return runDump(cmd.OutOrStdout(), args[0], b, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.v1, "v1", false, "always print v1 header and data")
	cmd.Flags().BoolVar(&opts.table, "table", false, "print the transition table built from the file")
	return cmd
}

func runDump(w io.Writer, name string, b []byte, opts *dumpOptions) error {
	r := bytes.NewReader(b)
	data, err := tzif.DecodeData(r)
	if err != nil {
		return fmt.Errorf("decoding: %w", err)
	}

	if data.Version == tzif.V1 || opts.v1 {
		printBlock(w, data.V1Header, data.V1Data)
	}
	if data.Version > tzif.V1 {
		printBlock(w, data.V2Header, data.V2Data)
		printFooter(w, data.Footer)
	}
	if r.Len() != 0 {
		fmt.Fprintln(w, "remaining data:", r.Len(), "bytes")
	}

	if err := tzif.Validate(data); err != nil {
		fmt.Fprintln(w, "invalid:")
		for _, line := range strings.Split(err.Error(), "\n") {
			fmt.Fprintln(w, " ", line)
		}
		return nil
	}
	fmt.Fprintln(w, "valid")

	if opts.table {
		tab, err := zone.FromTZif(name, data)
		if err != nil {
			return err
		}
		fmt.Fprintln(w)
		printTable(w, tab)
	}
	return nil
}

func printHeader(w io.Writer, h tzif.Header) {
	fmt.Fprintln(w, "Header")
	fmt.Fprintln(w, "  version =", h.Version)
	fmt.Fprintln(w, "  isutcnt =", h.Isutcnt)
	fmt.Fprintln(w, "  isstdcnt =", h.Isstdcnt)
	fmt.Fprintln(w, "  leapcnt =", h.Leapcnt)
	fmt.Fprintln(w, "  timecnt =", h.Timecnt)
	fmt.Fprintln(w, "  typecnt =", h.Typecnt)
	fmt.Fprintln(w, "  charcnt =", h.Charcnt)
	fmt.Fprintln(w)
}

func printBlock(w io.Writer, h tzif.Header, b tzif.DataBlock) {
	printHeader(w, h)

	fmt.Fprintln(w, "Data block", h.Version)
	fmt.Fprintf(w, "  TransitionTimes (%d) = %v\n", len(b.TransitionTimes), b.TransitionTimes)
	fmt.Fprintf(w, "  TransitionTypes (%d) = %v\n", len(b.TransitionTypes), b.TransitionTypes)
	fmt.Fprintf(w, "  LocalTimeTypes (%d) = %+v\n", len(b.LocalTimeTypes), b.LocalTimeTypes)
	fmt.Fprintf(w, "  Designations (%d) = %q\n", len(b.Designations), strings.Split(strings.TrimSuffix(string(b.Designations), "\x00"), "\x00"))
	fmt.Fprintf(w, "  LeapSeconds (%d) = %+v\n", len(b.LeapSeconds), b.LeapSeconds)
	fmt.Fprintf(w, "  StandardWallIndicators (%d) = %v\n", len(b.StandardWallIndicators), b.StandardWallIndicators)
	fmt.Fprintf(w, "  UTLocalIndicators (%d) = %v\n", len(b.UTLocalIndicators), b.UTLocalIndicators)
	fmt.Fprintln(w)
}

func printFooter(w io.Writer, f tzif.Footer) {
	fmt.Fprintln(w, "Footer")
	fmt.Fprintln(w, "  TZString =", string(f.TZString))
	fmt.Fprintln(w)
}

func printTable(w io.Writer, tab *zone.Table) {
	fmt.Fprintln(w, "Zone", tab.ID())
	fmt.Fprintln(w, "  before first transition:", formatRule(tab.PreZone()))
	rules := tab.Rules()
	for _, r := range tab.Records() {
		fmt.Fprintf(w, "  %v  %s\n", r.At, formatRule(rules[r.Rule]))
	}
	if rule, ok := tab.Posix(); ok {
		fmt.Fprintln(w, "  after last transition:", rule)
	}
}

func formatRule(r zone.TransitionRule) string {
	return fmt.Sprintf("%-6s %v (std %v, dst %v)", r.Abbreviation, r.Offset(), r.StandardOffset, r.DaylightOffset)
}
