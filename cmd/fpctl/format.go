package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdtgct/music-fingerprint/internal/fingerprint"
)

var (
	formatTo   string
	formatKind string
	formatOut  string
)

var formatCmd = &cobra.Command{
	Use:   "format <input>",
	Short: "Convert a fingerprint between its binary and text forms",
	Long: `format converts a fingerprint record between the on-page binary
codec and the human-readable text form.

With --to text (the default), <input> is a path to a binary-encoded
record; --kind selects whether it decodes as an FP ("record") or a UFP
("union"), since the binary layout alone doesn't carry that bit.

With --to binary, <input> is the text form itself or a path to a file
containing it, and the encoded bytes are written to --out (stdout if
unset).`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		switch formatTo {
		case "text":
			return formatToText(args[0])
		case "binary":
			return formatToBinary(args[0])
		default:
			return fmt.Errorf("fpctl: --to must be \"text\" or \"binary\", got %q", formatTo)
		}
	},
}

func init() {
	formatCmd.Flags().StringVar(&formatTo, "to", "text", "Target form: text or binary")
	formatCmd.Flags().StringVar(&formatKind, "kind", "record", "Binary input kind when --to text: record or union")
	formatCmd.Flags().StringVar(&formatOut, "out", "", "Output path for --to binary (default stdout)")
}

func formatToText(path string) error {
	blob, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("fpctl: read %s: %w", path, err)
	}
	kind, err := parseKindFlag(formatKind)
	if err != nil {
		return err
	}
	rec, err := fingerprint.Unmarshal(blob, kind)
	if err != nil {
		return fmt.Errorf("fpctl: decode %s: %w", path, err)
	}
	text, err := fingerprint.Format(rec)
	if err != nil {
		return fmt.Errorf("fpctl: format: %w", err)
	}
	fmt.Println(text)
	return nil
}

func formatToBinary(arg string) error {
	text, err := readTextArg(arg)
	if err != nil {
		return err
	}
	rec, err := fingerprint.Parse(text)
	if err != nil {
		return fmt.Errorf("fpctl: parse: %w", err)
	}
	blob, err := fingerprint.Marshal(rec)
	if err != nil {
		return fmt.Errorf("fpctl: marshal: %w", err)
	}
	if formatOut == "" {
		_, err := os.Stdout.Write(blob)
		return err
	}
	return os.WriteFile(formatOut, blob, 0644)
}

func parseKindFlag(s string) (fingerprint.Kind, error) {
	switch s {
	case "record":
		return fingerprint.KindRecord, nil
	case "union":
		return fingerprint.KindUnion, nil
	default:
		return 0, fmt.Errorf("fpctl: --kind must be \"record\" or \"union\", got %q", s)
	}
}
