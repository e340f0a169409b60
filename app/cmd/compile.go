package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"uistudio/internal/domain/entity"
	"uistudio/internal/preview"
)

func newCompileCmd() *cobra.Command {
	var stackName, out string
	cmd := &cobra.Command{
		Use:   "compile [file]",
		Short: "Compile a source file into a sandboxed preview document",
		Long:  "Reads source from file, or from stdin when file is omitted or \"-\", and writes the isolated preview document to stdout or --out.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stack, err := entity.ParseTechStack(stackName)
			if err != nil {
				return err
			}

			var src []byte
			if len(args) == 0 || args[0] == "-" {
				src, err = io.ReadAll(cmd.InOrStdin())
			} else {
				src, err = os.ReadFile(args[0])
			}
			if err != nil {
				return fmt.Errorf("read source: %w", err)
			}

			doc := preview.Render(string(src), stack)
			if out == "" {
				_, err = io.WriteString(cmd.OutOrStdout(), doc)
				return err
			}
			if err := os.WriteFile(out, []byte(doc), 0o644); err != nil {
				return fmt.Errorf("write preview: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&stackName, "stack", "s", string(entity.StackHTML), "source stack: html, react, nextjs, vue, svelte")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write the document to this file")
	return cmd
}
