package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

var insertCmd = &cobra.Command{
	Use:   "insert <text-form-or-file>",
	Short: "Insert a fingerprint record into the configured PageStore-backed index",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text, err := readTextArg(args[0])
		if err != nil {
			return err
		}
		rec, err := fingerprint.Parse(text)
		if err != nil {
			return fmt.Errorf("fpctl: parse: %w", err)
		}

		ctx := cmd.Context()
		tree, err := openTree(ctx)
		if err != nil {
			return err
		}
		defer tree.Close(ctx)

		pageID, err := tree.Insert(ctx, rec)
		if err != nil {
			return fmt.Errorf("fpctl: insert: %w", err)
		}
		fmt.Println(pageID)
		return nil
	},
}
