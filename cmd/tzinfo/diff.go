package main

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/google/go-cmp/cmp"
	"github.com/spf13/cobra"

	"github.com/ngrash/tzresolve/tzif"
)

func newDiffCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <tzif file A> <tzif file B>",
		Short: "Compare the decoded contents of two TZif files",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff(cmd.OutOrStdout(), args[0], args[1])
		},
	}
}

func runDiff(w io.Writer, a, b string) error {
	adata, err := decodeFile(a)
	if err != nil {
		return err
	}
	bdata, err := decodeFile(b)
	if err != nil {
		return err
	}

	if diff := cmp.Diff(adata, bdata); diff != "" {
		fmt.Fprintln(w, "files are different: -A +B")
		fmt.Fprintln(w, diff)
	} else {
		fmt.Fprintln(w, "files are identical")
	}
	return nil
}

func decodeFile(name string) (tzif.Data, error) {
	b, err := os.ReadFile(name)
	if err != nil {
		return tzif.Data{}, err
	}
	d, err := tzif.DecodeData(bytes.NewReader(b))
	if err != nil {
		return tzif.Data{}, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}
