package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"yatube/app/config"
	"yatube/app/logging"
	"yatube/service"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const cliVersion = "1.0.0"

var (
	cfgFile string
	verbose bool
	force   bool

	cfg    *config.Config
	logger *zap.Logger

	exit = os.Exit
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "yatube",
		Short: "Yatube - a small blogging platform",
		Long: `Yatube lets people register, publish short text posts, optionally file
them under a group, and browse paginated listings of all posts, a group's
posts, or one author's posts.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			cfg, err = config.Load(cfgFile)
			if err != nil {
				return err
			}
			logger, err = logging.New(cfg.Logging, verbose)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "yatube.yaml", "config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(
		newServeCmd(),
		newDBCmd(),
		newGroupCmd(),
		newConfigCmd(),
		newVersionCmd(),
	)
	return rootCmd
}

func console(cmd *cobra.Command) service.Console {
	return service.Console{In: cmd.InOrStdin(), Out: cmd.OutOrStdout()}
}

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the web application",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return service.RunAppServer(ctx, cfg, logger)
		},
	}
}

func newDBCmd() *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the database",
	}
	dbCmd.PersistentFlags().BoolVarP(&force, "yes", "y", false, "do not ask for confirmation")

	dbCmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Initialize a new empty database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return service.InitDB(cfg.Database.Path, logger, console(cmd))
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Delete the database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return service.CleanDB(cfg.Database.Path, force, console(cmd))
			},
		},
		&cobra.Command{
			Use:   "backup",
			Short: "Create a backup of the database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				_, err := service.BackupDB(cfg.Database.Path, cfg.Database.BackupDir, logger, console(cmd))
				return err
			},
		},
		&cobra.Command{
			Use:   "restore <file>",
			Short: "Restore the database from a backup",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return service.RestoreDB(cfg.Database.Path, args[0], force, logger, console(cmd))
			},
		},
	)
	return dbCmd
}

func newGroupCmd() *cobra.Command {
	groupCmd := &cobra.Command{
		Use:   "group",
		Short: "Manage post groups",
	}

	var title, slug, description string
	createCmd := &cobra.Command{
		Use:   "create",
		Short: "Create a group",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return service.CreateGroup(cfg.Database.Path, title, slug, description, logger, console(cmd))
		},
	}
	createCmd.Flags().StringVar(&title, "title", "", "group title")
	createCmd.Flags().StringVar(&slug, "slug", "", "group slug used in URLs")
	createCmd.Flags().StringVar(&description, "description", "", "group description")
	_ = createCmd.MarkFlagRequired("title")
	_ = createCmd.MarkFlagRequired("slug")

	groupCmd.AddCommand(
		createCmd,
		&cobra.Command{
			Use:   "list",
			Short: "List groups",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return service.ListGroups(cfg.Database.Path, logger, console(cmd))
			},
		},
	)
	return groupCmd
}

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write the effective configuration to a YAML file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := cfgFile
			if len(args) == 1 {
				path = args[0]
			}
			if err := cfg.Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration written to %s\n", path)
			return nil
		},
	})
	return configCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "yatube version %s\n", cliVersion)
		},
	}
}
