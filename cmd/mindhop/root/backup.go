package root

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/FrankDatema/MindHop/internal/ops"
	"github.com/FrankDatema/MindHop/internal/ui"
)

func newBackupCmd() *cobra.Command {
	var out string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Archive the data directory to a .tar.gz",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if out == "" {
				out = ops.ArchiveName("backups", time.Now())
			}
			m, err := ops.BackupDataDir(cfg.Storage.DataDir, out)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.Heading(ui.IconBox, m.Archive))
			fmt.Fprintln(w, ui.LabelValue("Files", m.Files))
			fmt.Fprintln(w, ui.LabelValue("Digest", m.Digest))
			return nil
		},
	}
	cmd.Flags().StringVar(&out, "out", "", "output archive path (default backups/mindhop-<ts>.tar.gz)")
	return cmd
}

func newRestoreCmd() *cobra.Command {
	var archive, target string
	cmd := &cobra.Command{
		Use:   "restore",
		Short: "Unpack a backup archive into a directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			if archive == "" {
				return errors.New("--archive is required")
			}
			if err := ops.RestoreDataDir(archive, target); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.Good.Render("restored")+" "+ui.Muted.Render(target))
			return nil
		},
	}
	cmd.Flags().StringVar(&archive, "archive", "", "input backup archive (.tar.gz)")
	cmd.Flags().StringVar(&target, "target-dir", "data-restored", "restore target directory")
	return cmd
}

func newDrillCmd() *cobra.Command {
	var workDir string
	cmd := &cobra.Command{
		Use:   "drill",
		Short: "Back up, restore and compare digests",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			m, restored, err := ops.Drill(cfg.Storage.DataDir, workDir, time.Now())
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintln(w, ui.LabelValue("Backup", m.Archive))
			fmt.Fprintln(w, ui.LabelValue("Restored", restored))
			fmt.Fprintln(w, ui.LabelValue("Digest", m.Digest))
			return nil
		},
	}
	cmd.Flags().StringVar(&workDir, "work-dir", os.TempDir(), "workspace for drill artifacts")
	return cmd
}
