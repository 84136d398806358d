package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ofrenda/core/internal/entity"
	"github.com/ofrenda/core/internal/validate"
)

// NewOfferingCommand groups the offering subcommands.
func NewOfferingCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "offering",
		Short: "Manage virtual offerings",
	}
	cmd.AddCommand(newOfferingPlaceCommand(opts))
	cmd.AddCommand(newOfferingListCommand(opts))
	return cmd
}

func newOfferingPlaceCommand(opts *RootOptions) *cobra.Command {
	var (
		typ        string
		memorialID string
		message    string
		x, y, z    float64
	)

	cmd := &cobra.Command{
		Use:   "place",
		Short: "Place a virtual offering",
		RunE: func(cmd *cobra.Command, args []string) error {
			raw := map[string]any{
				"type":       typ,
				"memorialId": memorialID,
				"message":    message,
				"position":   map[string]any{"x": x, "y": y, "z": z},
			}
			res := validate.OfferingRaw(raw)
			if !res.Valid {
				return fmt.Errorf("offering validation failed:\n  %s", strings.Join(res.Errors, "\n  "))
			}

			o := entity.NewVirtualOffering(res.Sanitized.Type, res.Sanitized.MemorialID)
			o.Position = res.Sanitized.Position
			o.Message = res.Sanitized.Message

			s, _, cleanup, err := openStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			saved, err := s.SaveOffering(cmd.Context(), o)
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), saved)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "placed %s (%s)\n", saved.Type, saved.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&typ, "type", "", "offering type, e.g. cempasuchil, vela (required)")
	cmd.Flags().StringVar(&memorialID, "memorial", "", "memorial id to attach the offering to")
	cmd.Flags().StringVar(&message, "message", "", "message left with the offering")
	cmd.Flags().Float64Var(&x, "x", 0, "x position")
	cmd.Flags().Float64Var(&y, "y", 0, "y position")
	cmd.Flags().Float64Var(&z, "z", 0, "z position")
	cmd.MarkFlagRequired("type")
	return cmd
}

func newOfferingListCommand(opts *RootOptions) *cobra.Command {
	var memorialID, typ string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List offerings, optionally by memorial or type",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, _, cleanup, err := openStore(opts)
			if err != nil {
				return err
			}
			defer cleanup()

			ctx := cmd.Context()
			offerings, err := s.GetOfferings(ctx)
			if memorialID != "" {
				offerings, err = s.GetOfferingsByMemorial(ctx, memorialID)
			} else if typ != "" {
				offerings, err = s.GetOfferingsByType(ctx, entity.OfferingType(typ))
			}
			if err != nil {
				return err
			}

			if opts.Format == "json" {
				return printJSON(cmd.OutOrStdout(), offerings)
			}
			for _, o := range offerings {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %-16s memorial=%s\n", o.ID, o.Type, o.MemorialID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&memorialID, "memorial", "", "filter by memorial id")
	cmd.Flags().StringVar(&typ, "type", "", "filter by offering type")
	return cmd
}
