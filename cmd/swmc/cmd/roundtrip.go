package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/pmezard/go-difflib/difflib"
	"github.com/spf13/cobra"

	"github.com/OpenTraceLab/swmc/pkg/datadir"
)

var roundtripAll bool

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip [file...]",
	Short: "Parse and re-emit files, reporting any difference",
	Long: `Parse each file, emit it again and compare the result with the source.
A unified diff is printed for every file that does not come back byte for byte.

With --all every .xml file in the microcontroller folder is checked.`,
	RunE: runRoundtrip,
}

func init() {
	rootCmd.AddCommand(roundtripCmd)
	roundtripCmd.Flags().BoolVar(&roundtripAll, "all", false, "check the whole microcontroller folder")
}

func runRoundtrip(cmd *cobra.Command, args []string) error {
	files := args
	if roundtripAll {
		dir, err := folder()
		if err != nil {
			return err
		}
		entries, err := datadir.NewDirLibrary(dir).List()
		if err != nil {
			return err
		}
		for _, e := range entries {
			files = append(files, filepath.Join(dir, e.Name))
		}
	}
	if len(files) == 0 {
		return fmt.Errorf("no files given (use --all for the microcontroller folder)")
	}

	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range files {
		diff, err := roundtrip(path)
		switch {
		case err != nil:
			failed++
			fmt.Fprintf(out, "FAIL %s: %v\n", path, err)
		case diff != "":
			failed++
			fmt.Fprintf(out, "DIFF %s\n%s", path, diff)
		default:
			fmt.Fprintf(out, "ok   %s\n", path)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files did not round-trip", failed, len(files))
	}
	return nil
}

// roundtrip returns the unified diff between a file and its re-emission
func roundtrip(path string) (string, error) {
	text, mc, err := readFile(path)
	if err != nil {
		return "", err
	}
	emitted, err := mc.ToText()
	if err != nil {
		return "", err
	}
	if emitted == text {
		return "", nil
	}
	logger.Debug("round trip differs", "file", path, "source_bytes", len(text), "emitted_bytes", len(emitted))
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(text),
		B:        difflib.SplitLines(emitted),
		FromFile: path,
		ToFile:   path + " (emitted)",
		Context:  3,
	})
}
