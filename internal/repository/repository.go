package repository

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/metrics"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/cenkalti/backoff/v5"
)

const (
	operationFindAll    string = "find_all"
	operationFindById   string = "find_by_id"
	operationExistsById string = "exists_by_id"
	operationSave       string = "save"
	operationDeleteById string = "delete_by_id"
)

// Repository is the keyed store of employees, Save is an upsert:
// an employee without an id is inserted and assigned one, an employee
// with an id overwrites (or creates) the record with that id.
// DeleteById of an id that doesn't exist is a no-op.
type Repository interface {
	FindAll(ctx context.Context) ([]data.Employee, error)
	FindById(ctx context.Context, id int64) (data.Employee, bool, error)
	ExistsById(ctx context.Context, id int64) (bool, error)
	Save(ctx context.Context, employee data.Employee) (data.Employee, error)
	DeleteById(ctx context.Context, id int64) error
}

type databaseConfig struct {
	Hostname           string        `json:"hostname"`
	Port               string        `json:"port"`
	Username           string        `json:"username"`
	Password           string        `json:"password"`
	Database           string        `json:"database"`
	QueryTimeout       time.Duration `json:"query_timeout"`
	ParseTime          bool          `json:"parse_time"`
	ConnectRetries     uint          `json:"connect_retries"`
	ConnectRetryPeriod time.Duration `json:"connect_retry_period"`
}

func newDatabaseConfig(port string) databaseConfig {
	return databaseConfig{
		Port:               port,
		QueryTimeout:       10 * time.Second,
		ConnectRetries:     1,
		ConnectRetryPeriod: time.Second,
	}
}

func (c *databaseConfig) configure(envs map[string]string) error {
	if databaseHost := envs["DATABASE_HOST"]; databaseHost != "" {
		c.Hostname = databaseHost
	}
	if databasePort := envs["DATABASE_PORT"]; databasePort != "" {
		c.Port = databasePort
	}
	if database := envs["DATABASE_NAME"]; database != "" {
		c.Database = database
	}
	if username := envs["DATABASE_USER"]; username != "" {
		c.Username = username
	}
	if password := envs["DATABASE_PASSWORD"]; password != "" {
		c.Password = password
	}
	if s := envs["DATABASE_QUERY_TIMEOUT"]; s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_QUERY_TIMEOUT: %w", err)
		}
		if i > 0 {
			c.QueryTimeout = time.Duration(i) * time.Second
		}
	}
	if s := envs["DATABASE_PARSE_TIME"]; s != "" {
		c.ParseTime, _ = strconv.ParseBool(s)
	}
	if s := envs["DATABASE_CONNECT_RETRIES"]; s != "" {
		i, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_CONNECT_RETRIES: %w", err)
		}
		if i > 0 {
			c.ConnectRetries = uint(i)
		}
	}
	if s := envs["DATABASE_CONNECT_RETRY_INTERVAL"]; s != "" {
		i, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid DATABASE_CONNECT_RETRY_INTERVAL: %w", err)
		}
		if i > 0 {
			c.ConnectRetryPeriod = time.Duration(i) * time.Second
		}
	}
	return nil
}

func (c databaseConfig) mySqlDsn() string {
	return fmt.Sprintf("%s:%s@tcp(%s)/%s?parseTime=%t",
		c.Username, c.Password, net.JoinHostPort(c.Hostname, c.Port),
		c.Database, c.ParseTime)
}

func (c databaseConfig) postgresUrl() string {
	return fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable",
		c.Username, c.Password, net.JoinHostPort(c.Hostname, c.Port), c.Database)
}

// connect pings until the database answers or the retries run out
func connect(ctx context.Context, config databaseConfig, logger utilities.Logger, ping func(context.Context) error) error {
	attempt := 0
	_, err := backoff.Retry(ctx, func() (struct{}, error) {
		attempt++
		if err := ping(ctx); err != nil {
			logger.Debug(ctx, "database ping attempt %d failed: %s", attempt, err)
			return struct{}{}, err
		}
		return struct{}{}, nil
	},
		backoff.WithBackOff(backoff.NewConstantBackOff(config.ConnectRetryPeriod)),
		backoff.WithMaxTries(config.ConnectRetries),
	)
	return err
}

func observe(m *metrics.Metrics, operation string, tStart time.Time) {
	if m == nil {
		return
	}
	m.StoreQueryDuration.WithLabelValues(operation).Observe(time.Since(tStart).Seconds())
}
