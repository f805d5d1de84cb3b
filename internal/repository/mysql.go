package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/metrics"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	_ "github.com/go-sql-driver/mysql" //import for driver support
)

const tableEmployees = "employees"

type mySql struct {
	sync.RWMutex
	config databaseConfig
	*sql.DB
	utilities.Logger
	metrics *metrics.Metrics
	opened  bool
}

func NewMySql(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Pinger
	Repository
} {
	m := &mySql{
		config: newDatabaseConfig("3306"),
		Logger: utilities.NopLogger{},
	}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case utilities.Logger:
			m.Logger = v
		case *metrics.Metrics:
			m.metrics = v
		}
	}
	return m
}

func (s *mySql) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	return s.config.configure(envs)
}

func (s *mySql) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	dataSourceName := s.config.mySqlDsn()
	db, err := sql.Open("mysql", dataSourceName)
	if err != nil {
		return err
	}
	if err := connect(ctx, s.config, s.Logger, db.PingContext); err != nil {
		_ = db.Close()
		return fmt.Errorf("unable to connect to mysql: %w", err)
	}
	s.DB = db
	s.opened = true
	s.Info(ctx, "connected to mysql: %s", net.JoinHostPort(s.config.Hostname, s.config.Port))
	return nil
}

func (s *mySql) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if !s.opened {
		return nil
	}
	if err := s.DB.Close(); err != nil {
		s.Error(ctx, "error while closing sql: %s", err)
	}
	s.opened = false
	return nil
}

func (s *mySql) Ping(ctx context.Context) error {
	return s.DB.PingContext(ctx)
}

func (s *mySql) FindAll(ctx context.Context) ([]data.Employee, error) {
	defer observe(s.metrics, operationFindAll, time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT id, employee_name, employee_position
		FROM %s ORDER BY id;`, tableEmployees)
	rows, err := s.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	employees := []data.Employee{}
	for rows.Next() {
		employee, err := employeeScan(rows.Scan)
		if err != nil {
			return nil, err
		}
		employees = append(employees, employee)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return employees, nil
}

func (s *mySql) FindById(ctx context.Context, id int64) (data.Employee, bool, error) {
	defer observe(s.metrics, operationFindById, time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT id, employee_name, employee_position
		FROM %s WHERE id = ?;`, tableEmployees)
	row := s.QueryRowContext(ctx, query, id)
	employee, err := employeeScan(row.Scan)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return data.Employee{}, false, nil
		}
		return data.Employee{}, false, err
	}
	return employee, true, nil
}

func (s *mySql) ExistsById(ctx context.Context, id int64) (bool, error) {
	var exists bool

	defer observe(s.metrics, operationExistsById, time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`SELECT EXISTS(SELECT 1 FROM %s WHERE id = ?);`,
		tableEmployees)
	if err := s.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (s *mySql) Save(ctx context.Context, employee data.Employee) (data.Employee, error) {
	defer observe(s.metrics, operationSave, time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	if employee.Id == 0 {
		query := fmt.Sprintf(`INSERT INTO %s (employee_name, employee_position)
			VALUES (?, ?);`, tableEmployees)
		result, err := s.ExecContext(ctx, query,
			employee.EmployeeName, employee.EmployeePosition)
		if err != nil {
			return data.Employee{}, err
		}
		id, err := result.LastInsertId()
		if err != nil {
			return data.Employee{}, err
		}
		employee.Id = id
		return employee, nil
	}
	query := fmt.Sprintf(`INSERT INTO %s (id, employee_name, employee_position)
		VALUES (?, ?, ?) ON DUPLICATE KEY UPDATE
		employee_name = VALUES(employee_name),
		employee_position = VALUES(employee_position);`, tableEmployees)
	if _, err := s.ExecContext(ctx, query, employee.Id,
		employee.EmployeeName, employee.EmployeePosition); err != nil {
		return data.Employee{}, err
	}
	return employee, nil
}

func (s *mySql) DeleteById(ctx context.Context, id int64) error {
	defer observe(s.metrics, operationDeleteById, time.Now())
	ctx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ?;`, tableEmployees)
	if _, err := s.ExecContext(ctx, query, id); err != nil {
		return err
	}
	return nil
}

func employeeScan(scanFx func(...any) error) (data.Employee, error) {
	var employee data.Employee

	if err := scanFx(
		&employee.Id,
		&employee.EmployeeName,
		&employee.EmployeePosition,
	); err != nil {
		return data.Employee{}, err
	}
	return employee, nil
}
