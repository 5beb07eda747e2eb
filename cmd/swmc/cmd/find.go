package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var findCmd = &cobra.Command{
	Use:   "find",
	Short: "Print the microcontroller folder",
	Long: `Print the folder the game saves microcontrollers in.

The microcontroller_dir config key and $SWMC_MICROPROCESSOR_DIR take
precedence over the platform data directory.`,
	Args: cobra.NoArgs,
	RunE: runFind,
}

func init() {
	rootCmd.AddCommand(findCmd)
}

func runFind(cmd *cobra.Command, args []string) error {
	dir, err := folder()
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), dir)
	return nil
}
