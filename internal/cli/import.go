package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ofrenda/core/internal/store"
)

// NewImportCommand creates the import command. Import replaces the whole
// dataset; the command requires --yes to make that destructiveness explicit.
func NewImportCommand(opts *RootOptions) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace the dataset with an exported JSON document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirmed {
				return fmt.Errorf("import replaces all existing data; re-run with --yes to confirm")
			}

			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read import file: %w", err)
			}

			doc, err := store.ParseExportDocument(data)
			if err != nil {
				return err
			}

			s, _, cleanup, err := openStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.ImportData(cmd.Context(), doc); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d memorials, %d groups, %d offerings\n",
				len(doc.Memorials), len(doc.FamilyGroups), len(doc.VirtualOfferings))
			return nil
		},
	}

	cmd.Flags().BoolVar(&confirmed, "yes", false, "confirm replacing the existing dataset")
	return cmd
}
