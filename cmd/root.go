// Package cmd implements the trf5-crawler command line.
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "trf5-crawler",
	Short: "Crawl case records from the TRF5 public portal",
	Long: `trf5-crawler fetches case records from the TRF5 portal by case number
or by CPF/CNPJ and stores them as structured records.

Usage:
  trf5-crawler crawl --processo 0800001-11.2020.4.05.8300
  trf5-crawler crawl --cnpj 12.345.678/0001-90 --output processos.jsonl`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
