package root

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/FrankDatema/MindHop/internal/game"
	"github.com/FrankDatema/MindHop/internal/ui"
)

func newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show every chore with its last spawn and next reset",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, cleanup, err := openApp(io.Discard)
			if err != nil {
				return err
			}
			defer cleanup()

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, ui.Heading(ui.IconCloud, "Chores"))
			fmt.Fprintln(out, ui.LabelValue("Mode", a.Config.Spawn.Mode))
			fmt.Fprintln(out, ui.LabelValue("Storage", a.Config.Storage.Driver))
			fmt.Fprintln(out, "")
			for _, st := range a.Engine.Status() {
				fmt.Fprintln(out, statusLine(st))
			}
			return nil
		},
	}
}

func statusLine(st game.ChoreStatus) string {
	line := fmt.Sprintf("- %s %s %s", ui.Key.Render(st.Chore.Name), ui.ChoreState(st.Live, st.Due),
		ui.Muted.Render(fmt.Sprintf("(every %dd)", st.ResetDays)))
	if st.Record == nil {
		return line + " " + ui.Muted.Render("never spawned")
	}
	line += " " + ui.Muted.Render("spawned "+ui.Days(st.DaysElapsed)+" ago")
	if st.NextResetAt != nil && !st.Due {
		line += " " + ui.Muted.Render(ui.IconClock+" "+st.NextResetAt.Local().Format(time.DateTime))
	}
	return line
}
