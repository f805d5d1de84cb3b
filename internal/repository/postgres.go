package repository

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/metrics"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Database is the subset of a pgx pool the postgres repository uses, it's
// satisfied by *pgxpool.Pool and pgxmock
type Database interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Ping(ctx context.Context) error
	Close()
}

type postgres struct {
	sync.RWMutex
	config databaseConfig
	db     Database
	utilities.Logger
	metrics *metrics.Metrics
}

// NewPostgres creates a postgres repository, if a Database is provided as a
// parameter Open won't create a connection pool
func NewPostgres(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Pinger
	Repository
} {
	p := &postgres{
		config: newDatabaseConfig("5432"),
		Logger: utilities.NopLogger{},
	}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			p.Logger = v
		case *metrics.Metrics:
			p.metrics = v
		case Database:
			p.db = v
		}
	}
	return p
}

func (p *postgres) Configure(envs map[string]string) error {
	p.Lock()
	defer p.Unlock()

	return p.config.configure(envs)
}

func (p *postgres) Open(ctx context.Context) error {
	var (
		idleTime = 30 * time.Second
		hcPeriod = 30 * time.Second
	)

	p.Lock()
	defer p.Unlock()

	if p.db != nil {
		return nil
	}
	dbHost := net.JoinHostPort(p.config.Hostname, p.config.Port)
	poolConfig, err := pgxpool.ParseConfig(p.config.postgresUrl())
	if err != nil {
		return fmt.Errorf("failed to parse database config: %w", err)
	}
	poolConfig.MaxConnIdleTime = idleTime
	poolConfig.HealthCheckPeriod = hcPeriod
	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return fmt.Errorf("unable to create connection to PostgreSQL: %w", err)
	}
	if err := connect(ctx, p.config, p.Logger, pool.Ping); err != nil {
		pool.Close()
		return fmt.Errorf("failed to ping PostgreSQL DB: %w", err)
	}
	p.db = pool
	p.Info(ctx, "connected to postgres: %s", dbHost)
	return nil
}

func (p *postgres) Close(ctx context.Context) error {
	p.Lock()
	defer p.Unlock()

	if p.db == nil {
		return nil
	}
	p.db.Close()
	p.db = nil
	return nil
}

func (p *postgres) Ping(ctx context.Context) error {
	return p.db.Ping(ctx)
}

func (p *postgres) FindAll(ctx context.Context) ([]data.Employee, error) {
	defer observe(p.metrics, operationFindAll, time.Now())
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	query := `SELECT id, employee_name, employee_position FROM employees ORDER BY id`
	rows, err := p.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to find employees: %w", err)
	}
	defer rows.Close()
	employees := []data.Employee{}
	for rows.Next() {
		employee, err := employeeScan(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to find employees: %w", err)
	}
	return employees, nil
}

func (p *postgres) FindById(ctx context.Context, id int64) (data.Employee, bool, error) {
	defer observe(p.metrics, operationFindById, time.Now())
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	query := `SELECT id, employee_name, employee_position FROM employees WHERE id = $1`
	employee, err := employeeScan(p.db.QueryRow(ctx, query, id).Scan)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return data.Employee{}, false, nil
		}
		return data.Employee{}, false, fmt.Errorf("failed to find employee by id: %w", err)
	}
	return employee, true, nil
}

func (p *postgres) ExistsById(ctx context.Context, id int64) (bool, error) {
	var exists bool

	defer observe(p.metrics, operationExistsById, time.Now())
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	query := `SELECT EXISTS(SELECT 1 FROM employees WHERE id = $1)`
	if err := p.db.QueryRow(ctx, query, id).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check employee existence: %w", err)
	}
	return exists, nil
}

func (p *postgres) Save(ctx context.Context, employee data.Employee) (data.Employee, error) {
	defer observe(p.metrics, operationSave, time.Now())
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	if employee.Id == 0 {
		query := `INSERT INTO employees (employee_name, employee_position) VALUES ($1, $2) RETURNING id`
		if err := p.db.QueryRow(ctx, query, employee.EmployeeName,
			employee.EmployeePosition).Scan(&employee.Id); err != nil {
			return data.Employee{}, fmt.Errorf("failed to save employee: %w", err)
		}
		return employee, nil
	}
	query := `
		INSERT INTO employees (id, employee_name, employee_position)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE
		SET employee_name = EXCLUDED.employee_name, employee_position = EXCLUDED.employee_position;
	`
	if _, err := p.db.Exec(ctx, query, employee.Id, employee.EmployeeName,
		employee.EmployeePosition); err != nil {
		return data.Employee{}, fmt.Errorf("failed to save employee: %w", err)
	}
	//KIM: an explicit id doesn't advance the BIGSERIAL sequence, without
	// this the next insert without an id could collide with it
	query = `SELECT setval('employees_id_seq', GREATEST($1, (SELECT last_value FROM employees_id_seq)))`
	if _, err := p.db.Exec(ctx, query, employee.Id); err != nil {
		return data.Employee{}, fmt.Errorf("failed to advance employee id sequence: %w", err)
	}
	return employee, nil
}

func (p *postgres) DeleteById(ctx context.Context, id int64) error {
	defer observe(p.metrics, operationDeleteById, time.Now())
	ctx, cancel := context.WithTimeout(ctx, p.config.QueryTimeout)
	defer cancel()

	query := `DELETE FROM employees WHERE id = $1`
	if _, err := p.db.Exec(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}
