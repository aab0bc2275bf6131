package root

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/FrankDatema/MindHop/internal/chore"
	"github.com/FrankDatema/MindHop/internal/nfc"
	"github.com/FrankDatema/MindHop/internal/ui"
)

func newScanCmd() *cobra.Command {
	var raw bool
	cmd := &cobra.Command{
		Use:   "scan <tag>",
		Short: "Look up which chore a tag belongs to",
		Long: `Look up the chore bound to a scanned tag identifier.

With --raw the argument is taken as the tag's raw id and base64 encoded
first, the same way the reader reports it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(io.Discard)
			if err != nil {
				return err
			}
			defer cleanup()

			tag := args[0]
			if raw {
				tag = nfc.TagID([]byte(tag))
			}
			def, ok := a.Engine.Registry().FindByTag(tag)
			if !ok {
				return fmt.Errorf("tag %q: %w", tag, chore.ErrNotFound)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconTag, def.Name))
			fmt.Fprintln(out, ui.LabelValue("Tag", tag))
			fmt.Fprintln(out, ui.LabelValue("Resets every", fmt.Sprintf("%d days", a.Engine.ResetDays(def))))
			return nil
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "treat the argument as raw tag bytes")
	return cmd
}
