package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewExportCommand creates the export command: dump all collections into
// one JSON document.
func NewExportCommand(opts *RootOptions) *cobra.Command {
	var outPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the full dataset as a JSON document",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, cleanup, err := openStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			doc, err := s.ExportData(cmd.Context())
			if err != nil {
				return err
			}

			data, err := json.MarshalIndent(doc, "", "  ")
			if err != nil {
				return fmt.Errorf("encode export: %w", err)
			}
			data = append(data, '\n')

			if outPath == "" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write export: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "exported %d memorials, %d groups, %d offerings to %s\n",
				len(doc.Memorials), len(doc.FamilyGroups), len(doc.VirtualOfferings), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the export to a file instead of stdout")
	return cmd
}
