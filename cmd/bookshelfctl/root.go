package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"bookshelf/backend/app/db"
	jwtutil "bookshelf/backend/app/jwt"
	"bookshelf/backend/app/repo"
	"bookshelf/backend/app/services"
	"bookshelf/backend/config"
	"bookshelf/backend/initialize"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

// env is the database handle shared by the subcommands.
type env struct {
	cfg *config.Config
	log zerolog.Logger
	gdb *gorm.DB
	sql *sql.DB
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "bookshelfctl",
		Short:         "Administer a bookshelf database",
		SilenceUsage:  true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config/config.yaml", "Path to the YAML config file")

	open := func(ctx context.Context) (*env, error) {
		cfg, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		log := initialize.NewLogger(cfg.Log, os.Stderr)
		gdb, err := db.Connect(initialize.DBConfig(cfg.DB), log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := gdb.DB()
		if err != nil {
			return nil, err
		}
		if err := sqlDB.PingContext(ctx); err != nil {
			_ = sqlDB.Close()
			return nil, fmt.Errorf("ping %s: %w", cfg.DB.Driver, err)
		}
		if err := db.Migrate(gdb.WithContext(ctx)); err != nil {
			_ = sqlDB.Close()
			return nil, err
		}
		return &env{cfg: cfg, log: log, gdb: gdb, sql: sqlDB}, nil
	}

	root.AddCommand(
		newMigrateCmd(open),
		newCreateAdminCmd(open),
		newSeedCmd(open),
	)
	return root
}

type opener func(ctx context.Context) (*env, error)

func (e *env) Close() error { return e.sql.Close() }

func (e *env) users() *services.UserService {
	signer := &jwtutil.Signer{Secret: []byte(e.cfg.JWT.Secret), Issuer: e.cfg.JWT.Issuer, ExpiresIn: e.cfg.JWT.ExpiresIn}
	return services.NewUserService(repo.NewUserRepository(e.gdb, e.cfg.DB.StatementTimeout), signer, services.UserServiceOptions{}, e.log)
}

func (e *env) books() (*repo.BookRepository, error) {
	dialect, err := repo.DialectFor(e.cfg.DB.Driver)
	if err != nil {
		return nil, err
	}
	return repo.NewBookRepository(e.sql, dialect, e.cfg.DB.StatementTimeout), nil
}

func newMigrateCmd(open opener) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the books and users tables",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := open(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()
			fmt.Fprintf(cmd.OutOrStdout(), "schema up to date (%s)\n", e.cfg.DB.Driver)
			return nil
		},
	}
}
