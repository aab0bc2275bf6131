package root

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/FrankDatema/MindHop/internal/app"
	"github.com/FrankDatema/MindHop/internal/config"
	"github.com/FrankDatema/MindHop/internal/ui"
)

const Version = "0.1.0"

var configPath string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "mindhop",
		Short:         "MindHop chore clouds: spawn, pop and reset household chores",
		Long:          "MindHop keeps one cloud per household chore alive and brings each back once its reset interval has passed.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")
	cmd.PersistentFlags().StringVarP(&configPath, "config", "c", "mindhop.yml", "path to the YAML config file")

	cmd.AddCommand(
		newServeCmd(),
		newStatusCmd(),
		newSettingsCmd(),
		newScanCmd(),
		newBackupCmd(),
		newRestoreCmd(),
		newDrillCmd(),
	)
	return cmd
}

func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, ui.Bad.Render(ui.IconError+" "+err.Error()))
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	return config.LoadOrDefault(configPath)
}

// openApp wires the engine from the config; logs go to logw.
func openApp(logw io.Writer) (*app.App, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	a, err := app.New(app.Options{Config: cfg, Logger: app.NewLogger(cfg, logw)})
	if err != nil {
		return nil, nil, err
	}
	return a, func() { _ = a.Close() }, nil
}
