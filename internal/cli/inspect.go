package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/spyplot/pkg/npz"
)

// newInspectCmd creates the inspect command for examining matrix archives.
// It decodes the archive without rendering, which makes it a quick way to
// check that an input file is valid and to see what the renderer will get.
func newInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect [file.npz]",
		Short: "Report dimensions, nonzeros, and storage format of an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInspect(args[0])
		},
	}
	return cmd
}

// runInspect decodes the archive and prints a summary.
func runInspect(path string) error {
	info, err := npz.Stat(path)
	if err != nil {
		printError("Inspect failed: %v", err)
		return err
	}

	density := 0.0
	if info.Rows > 0 && info.Cols > 0 {
		density = float64(info.NNZ) / (float64(info.Rows) * float64(info.Cols))
	}

	printSuccess("%s", path)
	printKeyValue("format", styleHighlight.Render(info.Format))
	printKeyValue("shape", fmt.Sprintf("%d × %d", info.Rows, info.Cols))
	printKeyValue("nonzeros", fmt.Sprintf("%d", info.NNZ))
	printKeyValue("density", fmt.Sprintf("%.4f%%", density*100))
	return nil
}
