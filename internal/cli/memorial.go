package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ofrenda/core/internal/validate"
)

// NewMemorialCommand groups the memorial subcommands.
func NewMemorialCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "memorial",
		Short: "Manage memorials",
	}
	cmd.AddCommand(newMemorialAddCommand(opts))
	cmd.AddCommand(newMemorialListCommand(opts))
	cmd.AddCommand(newMemorialDeleteCommand(opts))
	return cmd
}

func newMemorialAddCommand(opts *RootOptions) *cobra.Command {
	var (
		name         string
		relationship string
		birth        string
		death        string
		story        string
		level        int
	)

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a memorial",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := map[string]any{
				"name":         name,
				"relationship": relationship,
				"story":        story,
				"altarLevel":   level,
			}
			if birth != "" {
				raw["birthDate"] = birth
			}
			if death != "" {
				raw["deathDate"] = death
			}

			// The raw gate handles type/presence errors and sanitization;
			// the store re-validates on save.
			res := validate.MemorialRaw(raw)
			if !res.Valid {
				return fmt.Errorf("memorial validation failed:\n  %s", strings.Join(res.Errors, "\n  "))
			}

			s, _, cleanup, err := openStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			saved, err := s.SaveMemorial(cmd.Context(), res.Sanitized)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "added memorial %s (%s)\n", saved.Name, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "name of the remembered person (required)")
	cmd.Flags().StringVar(&relationship, "relationship", "", "relationship tag, e.g. madre, padre (required)")
	cmd.Flags().StringVar(&birth, "birth", "", "birth date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&death, "death", "", "death date (YYYY-MM-DD)")
	cmd.Flags().StringVar(&story, "story", "", "remembrance story")
	cmd.Flags().IntVar(&level, "level", 2, "altar level (1-3)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("relationship")
	return cmd
}

func newMemorialListCommand(opts *RootOptions) *cobra.Command {
	var level int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List memorials, optionally by altar level",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, cleanup, err := openStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			memorials, err := s.GetMemorials(ctx)
			if level != 0 {
				memorials, err = s.GetMemorialsByLevel(ctx, level)
			}
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), memorials)
			}
			for _, m := range memorials {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  level=%d  %s (%s)  [%s]\n",
					m.ID, m.AltarLevel, m.Name, m.Relationship, m.SyncStatus)
			}
			return nil
		},
	}

	cmd.Flags().IntVar(&level, "level", 0, "filter by altar level (1-3)")
	return cmd
}

func newMemorialDeleteCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a memorial and its offerings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, cleanup, err := openStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := s.DeleteMemorial(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted memorial %s\n", args[0])
			return nil
		},
	}
}
