package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"fh-go/internal/app"
	"fh-go/internal/config"
	"fh-go/internal/database/sqlc"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func main() {
	if err := app.LoadEnv(app.EnvFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file named by the defaults.
func loadConfig() (*config.Config, map[string]string, error) {
	defaults, err := app.GetDefaults()
	if err != nil {
		return nil, nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"], defaults["base_dir"])
	if err != nil {
		return nil, nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, defaults, nil
}

// newApp reads the config and creates an FHApp. The caller must defer app.Close().
// operation identifies the CLI command being run (e.g. "save", "gc").
func newApp(cmd *cobra.Command, operation string) (*app.FHApp, error) {
	cfg, _, err := loadConfig()
	if err != nil {
		return nil, err
	}

	var opts app.Options
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		opts.Console = os.Stderr
	}

	a, err := app.NewFHApp(cmd.Context(), cfg, operation, opts)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid snapshot id %q", arg)
	}
	return id, nil
}

func stdoutIsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

const timeFormat = "2006-01-02 15:04:05"

var rootCmd = &cobra.Command{
	Use:          "fh",
	Short:        "Per-file save history",
	SilenceUsage: true,
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := app.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])
		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		fmt.Println("Run 'fh db migrate' to create the history database.")
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, defaults, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Base Dir:      %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:       %s\n", cfg.LogDir)
		fmt.Printf("Log Level:     %s\n", cfg.Log.Level)
		fmt.Printf("Database:      %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		fmt.Printf("Blobs:         %s\n", cfg.Blobs.Type)
		switch cfg.Blobs.Type {
		case "filesystem":
			fmt.Printf("  Root:        %s (compress=%t)\n", cfg.Blobs.FSRoot, cfg.Blobs.Compress)
		case "s3", "minio":
			fmt.Printf("  Bucket:      %s/%s\n", cfg.Blobs.S3Bucket, cfg.Blobs.S3Prefix)
			if cfg.Blobs.S3Endpoint != "" {
				fmt.Printf("  Endpoint:    %s\n", cfg.Blobs.S3Endpoint)
			}
		}
		fmt.Printf("Max Snapshots: %d\n", cfg.Retention.MaxSnapshots)
		fmt.Printf("Fallback Enc:  %s\n", cfg.Filesystem.FallbackEncoding)
		for k := range cfg.Unknown() {
			fmt.Printf("Unknown key:   %s\n", k)
		}
		return nil
	},
}

// db command
var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Manage the history database",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := app.MigrateDatabase(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Database at schema version %d\n", st.Version)
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		st, err := app.DatabaseStatus(cfg)
		if err != nil {
			return err
		}
		fmt.Printf("Version: %d of %d\n", st.Version, st.Latest)
		if st.Dirty {
			fmt.Println("State:   dirty (a migration failed part way)")
		} else if n := st.Pending(); n > 0 {
			fmt.Printf("State:   %d pending (run 'fh db migrate')\n", n)
		} else {
			fmt.Println("State:   up to date")
		}
		return nil
	},
}

var dbBackupCmd = &cobra.Command{
	Use:   "backup DEST",
	Short: "Write a consistent copy of the database",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		if err := app.BackupDatabase(cmd.Context(), cfg, args[0]); err != nil {
			return err
		}
		fmt.Printf("Database copied to %s\n", args[0])
		return nil
	},
}

// save command
var saveCmd = &cobra.Command{
	Use:   "save PATH",
	Short: "Record the current content of a file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		recursive, _ := cmd.Flags().GetBool("recursive")
		fromStdin, _ := cmd.Flags().GetBool("stdin")

		a, err := newApp(cmd, "save")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if fromStdin {
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			snap, err := a.SaveContent(ctx, args[0], string(data))
			if err != nil {
				return err
			}
			printSaved(snap)
			return nil
		}

		info, err := os.Stat(args[0])
		if err != nil {
			return err
		}
		if info.IsDir() {
			report, err := a.SaveDir(ctx, args[0], recursive)
			if err != nil {
				return err
			}
			fmt.Printf("Saved %d, unchanged %d, skipped %d, failed %d\n",
				report.Saved, report.Unchanged, report.Skipped, report.Failed)
			return nil
		}

		snap, err := a.SaveFile(ctx, args[0])
		if err != nil {
			return err
		}
		printSaved(snap)
		return nil
	},
}

// files command
var filesCmd = &cobra.Command{
	Use:   "files",
	Short: "List tracked files",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "files")
		if err != nil {
			return err
		}
		defer a.Close()

		files, err := a.Files(cmd.Context())
		if err != nil {
			return err
		}
		if len(files) == 0 {
			fmt.Println("No tracked files.")
			return nil
		}

		for _, f := range files {
			state := "alive"
			if !f.IsAlive {
				state = "lost "
				if f.LostAt.Valid {
					state += " " + f.LostAt.Time.Local().Format(timeFormat)
				}
			}
			fmt.Printf("%-5d %s  %s\n", f.ID, state, f.Path)
		}
		return nil
	},
}

// log command
var logCmd = &cobra.Command{
	Use:   "log PATH",
	Short: "View file history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "log")
		if err != nil {
			return err
		}
		defer a.Close()

		snaps, err := a.History(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if len(snaps) == 0 {
			fmt.Println("No history.")
			return nil
		}

		for _, s := range snaps {
			fmt.Printf("#%-6d %s  %s  %+6d  %d chars\n",
				s.ID,
				s.ContentHash.Short(),
				s.CreatedAt.Local().Format(timeFormat),
				s.ChangeDelta,
				s.CharCount,
			)
		}
		return nil
	},
}

// show command
var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Print the content of a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}

		a, err := newApp(cmd, "show")
		if err != nil {
			return err
		}
		defer a.Close()

		_, text, err := a.Show(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Print(text)
		return nil
	},
}

// diff command
var diffCmd = &cobra.Command{
	Use:   "diff ID [ID2]",
	Short: "Compare a snapshot with its parent, or two snapshots",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ids := make([]int64, len(args))
		for i, arg := range args {
			id, err := parseID(arg)
			if err != nil {
				return err
			}
			ids[i] = id
		}

		color := stdoutIsTerminal()
		if cmd.Flags().Changed("color") {
			color, _ = cmd.Flags().GetBool("color")
		}

		a, err := newApp(cmd, "diff")
		if err != nil {
			return err
		}
		defer a.Close()

		ctx := cmd.Context()
		if len(ids) == 2 {
			d := a.Diff(ctx, ids[0], ids[1])
			fmt.Print(d.Unified(color))
			fmt.Println(d.Summary())
			return nil
		}

		d, err := a.SnapshotDiff(ctx, ids[0])
		if err != nil {
			return err
		}
		fmt.Print(d.Unified(color))
		fmt.Println(d.Summary())
		return nil
	},
}

// forget command
var forgetCmd = &cobra.Command{
	Use:   "forget PATH",
	Short: "Delete the whole history of a file",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "forget")
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Forget(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Printf("Forgot %s\n", args[0])
		return nil
	},
}

// refresh command
var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Re-check which tracked files still exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "refresh")
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.Refresh(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Checked %d: %d lost, %d revived, %d unknown\n",
			r.Checked, r.Lost, r.Revived, r.Ambiguous+r.Failed)
		return nil
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore ID",
	Short: "Write a snapshot back to disk",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		dest, _ := cmd.Flags().GetString("to")

		a, err := newApp(cmd, "restore")
		if err != nil {
			return err
		}
		defer a.Close()

		written, err := a.Restore(cmd.Context(), id, dest)
		if err != nil {
			return err
		}
		fmt.Printf("Restored #%d to %s\n", id, written)
		return nil
	},
}

// gc command
var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Delete blobs no snapshot references",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd, "gc")
		if err != nil {
			return err
		}
		defer a.Close()

		n, err := a.GC(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Removed %d orphaned blob(s)\n", n)
		return nil
	},
}

func printSaved(snap *sqlc.Snapshot) {
	if snap == nil {
		fmt.Println("Unchanged.")
		return
	}
	fmt.Printf("Saved #%d %s (%+d)\n", snap.ID, snap.ContentHash.Short(), snap.ChangeDelta)
}

func init() {
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Also write log records to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	// db subcommands
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(dbBackupCmd)

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(dbCmd)
	rootCmd.AddCommand(saveCmd)
	saveCmd.Flags().BoolP("recursive", "r", false, "Recurse into subdirectories")
	saveCmd.Flags().Bool("stdin", false, "Read content from stdin instead of PATH")
	rootCmd.AddCommand(filesCmd)
	rootCmd.AddCommand(logCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(diffCmd)
	diffCmd.Flags().Bool("color", false, "Colorize output (default: when stdout is a terminal)")
	rootCmd.AddCommand(forgetCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(restoreCmd)
	restoreCmd.Flags().String("to", "", "Write to this path instead of the tracked file")
	rootCmd.AddCommand(gcCmd)
}
