package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"rcrd/internal/pipewire"
)

func newDevicesCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "devices",
		Short: "List audio endpoints known to the audio server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			lister := pipewire.NewCommandLister(cfg.Tools.PWDumpBinary)
			nodes, err := pipewire.ListNodes(cmd.Context(), lister)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(nodes) == 0 {
				fmt.Fprintln(out, "No audio endpoints found")
				return nil
			}

			titler := cases.Title(language.English)
			rows := make([][]string, 0, len(nodes))
			for _, node := range nodes {
				description := node.Description
				if description == "" {
					description = node.Name
				}
				rows = append(rows, []string{
					node.Name,
					titler.String(className(node.MediaClass)),
					description,
					yesNo(node.Default),
				})
			}

			fmt.Fprintln(out, renderTable(
				[]string{"Name", "Class", "Description", "Default"},
				rows,
			))
			fmt.Fprintln(out, "Monitors are derived from sinks by appending \".monitor\".")
			return nil
		},
	}
}

// className turns "Audio/Sink" into "audio sink" for display.
func className(mediaClass string) string {
	return strings.ToLower(strings.ReplaceAll(mediaClass, "/", " "))
}
