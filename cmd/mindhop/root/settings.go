package root

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/ui"
)

func newSettingsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Read or change per-chore reset intervals",
	}
	cmd.AddCommand(newSettingsGetCmd(), newSettingsSetCmd())
	return cmd
}

func newSettingsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <chore>",
		Short: "Print a chore's effective reset interval in days",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(io.Discard)
			if err != nil {
				return err
			}
			defer cleanup()

			def, ok := a.Engine.Registry().FindByName(args[0])
			if !ok {
				return fmt.Errorf("chore %q: %w", args[0], chore.ErrNotFound)
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.LabelValue(def.Name, fmt.Sprintf("%d days", a.Engine.ResetDays(def))))
			return nil
		},
	}
}

func newSettingsSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <chore> <days>",
		Short: "Save a chore's reset interval",
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) != 2 {
				return errors.New("chore and days are required")
			}
			if n, err := strconv.Atoi(args[1]); err != nil || n < 0 {
				return errors.New("days must be a non-negative integer")
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(io.Discard)
			if err != nil {
				return err
			}
			defer cleanup()

			days, _ := strconv.Atoi(args[1])
			if err := a.Engine.SetResetDays(args[0], days); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render(ui.IconGear+" saved")+" "+ui.LabelValue(args[0], fmt.Sprintf("%d days", days)))
			return nil
		},
	}
}
