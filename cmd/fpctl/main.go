// Command fpctl is a local command-line wrapper around the fingerprint
// core: parsing and formatting the text codec, running the similarity
// predicates directly, extracting fingerprints from WAV files, and
// inserting/searching them against a PageStore-backed R-tree.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdtgct/music-fingerprint/internal/config"
	"github.com/pdtgct/music-fingerprint/internal/logger"
)

var (
	storeDSN     string
	storeBackend string
	output       string = "text" // "text" or "json"
)

var rootCmd = &cobra.Command{
	Use:   "fpctl",
	Short: "fpctl - inspect, extract and index audio fingerprints",
	Long: `fpctl is a command-line tool for working with the music fingerprint
format directly: parsing and formatting its text form, running the
match predicates, extracting fingerprints from WAV files, and
inserting/searching them in a local R-tree-backed index.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return logger.Initialize("warn", "")
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&storeDSN, "store", "fpctl.db", "PageStore DSN (sqlite file path or postgres DSN)")
	rootCmd.PersistentFlags().StringVar(&storeBackend, "backend", string(config.BackendSQLite), "PageStore backend: sqlite or postgres")
	rootCmd.PersistentFlags().StringVar(&output, "output", output, "Output format: text or json")

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(formatCmd)
	rootCmd.AddCommand(matchCmd)
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(insertCmd)
	rootCmd.AddCommand(searchCmd)
}

func storeConfig() *config.Config {
	return &config.Config{
		StoreBackend: config.StoreBackend(storeBackend),
		StoreDSN:     storeDSN,
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
