package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/swmc/pkg/datadir"
)

var lsCmd = &cobra.Command{
	Use:   "ls [folder]",
	Short: "List saved microcontrollers",
	Long: `List the .xml files in the microcontroller folder with their size,
modification time and blake3 fingerprint.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runLs,
}

func init() {
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	var dir string
	if len(args) == 1 {
		dir = args[0]
	} else {
		var err error
		if dir, err = folder(); err != nil {
			return err
		}
	}

	entries, err := datadir.NewDirLibrary(dir).List()
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		fmt.Fprintf(out, "%s  %8d  %s  %s\n", e.Fingerprint()[:16], e.Size, e.ModTime.Format("2006-01-02 15:04"), e.Name)
	}
	logger.Debug("listed", "folder", dir, "files", len(entries))
	return nil
}
