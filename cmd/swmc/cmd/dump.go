package cmd

import (
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/swmc/pkg/export"
)

var dumpFormat string

var dumpCmd = &cobra.Command{
	Use:   "dump <file>",
	Short: "Export a microcontroller as JSON, YAML or CBOR",
	Args:  cobra.ExactArgs(1),
	RunE:  runDump,
}

func init() {
	rootCmd.AddCommand(dumpCmd)
	dumpCmd.Flags().StringVarP(&dumpFormat, "format", "f", "", "json, yaml or cbor (default from config)")
}

func runDump(cmd *cobra.Command, args []string) error {
	name := dumpFormat
	if name == "" {
		name = cfg.DumpFormat
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	_, mc, err := readFile(args[0])
	if err != nil {
		return err
	}
	return export.Encode(cmd.OutOrStdout(), export.FromMicrocontroller(mc), format)
}
