package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdtgct/music-fingerprint/internal/extractor"
	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

var extractOut string

var extractCmd = &cobra.Command{
	Use:   "extract <wav-file>",
	Short: "Derive a fingerprint record from a WAV file",
	Long: `extract decodes a PCM WAV file and derives an FP from it, printing
the text form (or writing it to --out).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ex := extractor.NewWavExtractor()
		rec, err := ex.Extract(cmd.Context(), args[0])
		if err != nil {
			return fmt.Errorf("fpctl: extract: %w", err)
		}
		text, err := fingerprint.Format(rec)
		if err != nil {
			return fmt.Errorf("fpctl: format: %w", err)
		}
		if extractOut == "" {
			fmt.Println(text)
			return nil
		}
		return writeTextFile(extractOut, text)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractOut, "out", "", "Write the text form to this path instead of stdout")
}
