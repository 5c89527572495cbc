package main

import (
	"context"
	"fmt"

	"go-wiki-store/internal/auth"
	"go-wiki-store/internal/config"
	"go-wiki-store/internal/data"
	"go-wiki-store/internal/logger"

	"github.com/casbin/casbin/v2"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs once configuration is loaded.
type app struct {
	cfg   *config.Config
	log   logger.Logger
	db    *sqlx.DB
	store *data.Store
}

func newRootCommand() (*cobra.Command, *app) {
	a := &app{}

	cmd := &cobra.Command{
		Use:           "wiki",
		Short:         "Wiki page and account store",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.open()
		},
	}

	cmd.AddCommand(newServeCommand(a))
	cmd.AddCommand(newInitDBCommand(a))
	return cmd, a
}

// execute runs cmd, then closes whatever it opened, whether or not it failed.
func execute(cmd *cobra.Command, a *app) error {
	defer a.close()
	return cmd.Execute()
}

// open loads configuration, then connects to the database.
func (a *app) open() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	a.cfg = cfg
	a.log = logger.New(cfg.Log, nil)

	a.log.Info("Connecting to the database...")
	db, err := data.NewDB(cfg.DB)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	a.store = data.NewStore(db, data.WithLogger(a.log))
	a.log.Info("Database connection successful.")
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
		a.db = nil
	}
}

// enforcer loads the policy table and makes sure the default rules exist.
func (a *app) enforcer() (*casbin.Enforcer, error) {
	e, err := auth.NewEnforcer(a.cfg.DB.Driver, a.cfg.DB.DSN, a.cfg.Auth.PolicyTable)
	if err != nil {
		return nil, err
	}
	auth.SeedDefaultPolicies(e, a.log)
	return e, nil
}

func newInitDBCommand(a *app) *cobra.Command {
	var recreate bool

	cmd := &cobra.Command{
		Use:   "init-db",
		Short: "Create the wiki tables and seed authorization policies",
		Long: `Create the users, pages and page_versions tables.

With --recreate existing tables are dropped first and all their rows are lost.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.store.CreateAll(context.Background(), recreate); err != nil {
				return fmt.Errorf("failed to create tables: %w", err)
			}
			if _, err := a.enforcer(); err != nil {
				return fmt.Errorf("failed to initialize enforcer: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Tables created.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&recreate, "recreate", false, "drop existing tables before creating them")
	return cmd
}
