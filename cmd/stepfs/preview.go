package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stepfs/pkg/stepfs/preview"
)

func newPreviewCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "preview [plan-file]",
		Short: "Show the preview mode of a plan",
		Long: `Replay a plan file ("-" for stdin) and print the preview mode of the
resulting tree. For static trees, --output writes the single-document preview.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := buildWorkspace(cmd.Context(), cmd, args[0])
			if err != nil {
				return err
			}

			mode := ws.PreviewMode()
			fmt.Fprintf(cmd.OutOrStdout(), "Preview mode: %s\n", mode)
			if output == "" {
				return nil
			}
			if mode != preview.ModeStatic {
				return fmt.Errorf("no static document for a %s preview", mode)
			}

			doc, ok := ws.StaticDocument()
			if !ok {
				return fmt.Errorf("no preview available (no HTML file found)")
			}
			if err := os.WriteFile(output, []byte(doc), 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote static document: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Write the static document to this file")

	return cmd
}
