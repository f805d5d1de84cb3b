package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/antonio-alexander/go-employees/internal/utilities"

	_ "github.com/jackc/pgx/v5/stdlib" //registers the pgx database/sql driver
	"github.com/pressly/goose"
)

// Migrate applies the goose migrations found in dir to the database
// described by envs; repositoryType is either mysql or postgres
func Migrate(ctx context.Context, repositoryType, dir string, envs map[string]string, logger utilities.Logger) error {
	var driverName, dataSourceName string

	config := newDatabaseConfig("")
	switch repositoryType {
	default:
		return fmt.Errorf("unsupported repository type for migration: %q", repositoryType)
	case "mysql":
		config.Port = "3306"
		if err := config.configure(envs); err != nil {
			return err
		}
		driverName, dataSourceName = "mysql", config.mySqlDsn()
	case "postgres":
		config.Port = "5432"
		if err := config.configure(envs); err != nil {
			return err
		}
		driverName, dataSourceName = "pgx", config.postgresUrl()
	}
	db, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return fmt.Errorf("unable to open %s: %w", repositoryType, err)
	}
	defer db.Close()
	if err := connect(ctx, config, logger, db.PingContext); err != nil {
		return fmt.Errorf("failed to ping %s: %w", repositoryType, err)
	}
	if err := goose.SetDialect(repositoryType); err != nil {
		return err
	}
	if err := goose.Up(db, dir); err != nil {
		return fmt.Errorf("failed to apply migrations from %s: %w", dir, err)
	}
	version, err := goose.GetDBVersion(db)
	if err != nil {
		return err
	}
	logger.Info(ctx, "migrated %s to version %d", repositoryType, version)
	return nil
}
