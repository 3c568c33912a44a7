package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/stepfs/pkg/stepfs/tree"
)

func newFilesCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "files [plan-file]",
		Short: "List the files a plan produces",
		Long:  `Replay a plan file ("-" for stdin) and list the resulting files depth-first.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ws, result, err := buildWorkspace(cmd.Context(), cmd, args[0])
			if err != nil {
				return err
			}
			renderFilesTable(cmd.OutOrStdout(), ws.FlattenedFiles(), len(result.Applied))
			return nil
		},
	}
	return cmd
}

func renderFilesTable(w io.Writer, files []*tree.Node, applied int) {
	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Path", "Lines", "Bytes"})
	table.SetBorder(false)
	table.SetCenterSeparator("")
	table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

	total := 0
	for _, f := range files {
		content := f.Content()
		total += len(content)
		table.Append([]string{f.Path(), fmt.Sprintf("%d", lineCount(content)), fmt.Sprintf("%d", len(content))})
	}
	table.SetFooter([]string{
		fmt.Sprintf("Files %d (steps %d)", len(files), applied),
		"",
		fmt.Sprintf("%d", total),
	})
	table.Render()
}

func lineCount(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
