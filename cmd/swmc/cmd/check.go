package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check <file>",
	Short: "Report dangling connections and invalid ids",
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	_, mc, err := readFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	problems := 0
	for _, cerr := range mc.CheckConnections() {
		problems++
		fmt.Fprintf(out, "connection: %v\n", cerr)
	}
	if err := mc.Validate(); err != nil {
		var joined interface{ Unwrap() []error }
		if errors.As(err, &joined) {
			for _, e := range joined.Unwrap() {
				problems++
				fmt.Fprintf(out, "validate: %v\n", e)
			}
		} else {
			problems++
			fmt.Fprintf(out, "validate: %v\n", err)
		}
	}

	if problems > 0 {
		return fmt.Errorf("%s: %d problem(s)", args[0], problems)
	}
	fmt.Fprintf(out, "%s: ok\n", args[0])
	return nil
}
