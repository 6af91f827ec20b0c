package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/drawmark/drawmark/cmd/drawmark/ui"
	"github.com/drawmark/drawmark/internal/pdf"
)

var validateCmd = &cobra.Command{
	Use:   "validate <pdf>...",
	Short: "Check that PDF files are readable before converting",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	validator := pdf.NewValidator()

	failed := 0
	for _, path := range args {
		pages, err := validator.ValidatePDFPath(path)
		if err != nil {
			ui.Error("%s: %v", path, err)
			failed++
			continue
		}
		ui.Success("%s: %d page(s)", path, pages)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d files failed validation", failed, len(args))
	}
	return nil
}
