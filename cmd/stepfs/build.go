package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arthur-debert/stepfs/pkg/stepfs/mount"
)

func newBuildCommand() *cobra.Command {
	var (
		format string
		output string
	)

	cmd := &cobra.Command{
		Use:   "build [plan-file]",
		Short: "Replay a plan and print the mount descriptor",
		Long: `Replay the build steps of a plan file ("-" for stdin) and print the
resulting tree as a mount descriptor in JSON or YAML.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, _, err := buildWorkspace(cmd.Context(), cmd, args[0])
			if err != nil {
				return err
			}

			var data []byte
			switch format {
			case "json":
				data, err = mount.ExportJSON(ws.MountDescriptor())
				data = append(data, '\n')
			case "yaml":
				data, err = mount.ExportYAML(ws.MountDescriptor())
			default:
				return fmt.Errorf("unknown format %q (expected json or yaml)", format)
			}
			if err != nil {
				return fmt.Errorf("failed to export mount descriptor: %w", err)
			}

			if output == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote mount descriptor: %s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json or yaml)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	return cmd
}
