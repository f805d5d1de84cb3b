package logic

import (
	"context"
	"strconv"
	"sync"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/repository"
	"github.com/antonio-alexander/go-employees/internal/utilities"
)

// Logic is the employee service, it holds no state of its own; every
// operation is delegated to the repository
type Logic interface {
	EmployeesRead(ctx context.Context) ([]data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (data.Employee, bool, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (data.Employee, bool, error)
	EmployeeDelete(ctx context.Context, id int64) (bool, error)
}

type logic struct {
	sync.RWMutex
	repository.Repository
	utilities.Logger
	config struct {
		mutateDisabled bool
	}
}

func NewLogic(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Logic
} {
	l := &logic{Logger: utilities.NopLogger{}}
	for _, parameter := range parameters {
		switch v := parameter.(type) {
		case repository.Repository:
			l.Repository = v
		case utilities.Logger:
			l.Logger = v
		}
	}
	return l
}

func (l *logic) Configure(envs map[string]string) error {
	l.Lock()
	defer l.Unlock()

	if mutateDisabled, ok := envs["LOGIC_MUTATE_DISABLED"]; ok {
		l.config.mutateDisabled, _ = strconv.ParseBool(mutateDisabled)
	}
	return nil
}

func (l *logic) Open(ctx context.Context) error {
	l.RLock()
	defer l.RUnlock()

	if l.config.mutateDisabled {
		l.Info(ctx, "logic: mutation disabled")
	}
	return nil
}

func (l *logic) Close(ctx context.Context) error {
	return nil
}

func (l *logic) mutateDisabled() bool {
	l.RLock()
	defer l.RUnlock()

	return l.config.mutateDisabled
}

func (l *logic) EmployeesRead(ctx context.Context) ([]data.Employee, error) {
	return l.Repository.FindAll(ctx)
}

func (l *logic) EmployeeRead(ctx context.Context, id int64) (data.Employee, bool, error) {
	return l.Repository.FindById(ctx, id)
}

// EmployeeCreate persists the employee as a new record, any id it carries
// is ignored
func (l *logic) EmployeeCreate(ctx context.Context, employee data.Employee) (data.Employee, error) {
	if l.mutateDisabled() {
		return data.Employee{}, data.ErrMutateDisabled
	}
	employee.Id = 0
	return l.Repository.Save(ctx, employee)
}

// EmployeeUpdate overwrites the name and position of an existing employee,
// the id of the provided employee is ignored
func (l *logic) EmployeeUpdate(ctx context.Context, id int64, employeeDetails data.Employee) (data.Employee, bool, error) {
	if l.mutateDisabled() {
		return data.Employee{}, false, data.ErrMutateDisabled
	}
	employee, found, err := l.Repository.FindById(ctx, id)
	if err != nil || !found {
		return data.Employee{}, false, err
	}
	employee.EmployeeName = employeeDetails.EmployeeName
	employee.EmployeePosition = employeeDetails.EmployeePosition
	employee, err = l.Repository.Save(ctx, employee)
	if err != nil {
		return data.Employee{}, false, err
	}
	return employee, true, nil
}

// EmployeeDelete returns false if there was no employee to delete; the
// existence check and the delete aren't atomic
func (l *logic) EmployeeDelete(ctx context.Context, id int64) (bool, error) {
	if l.mutateDisabled() {
		return false, data.ErrMutateDisabled
	}
	exists, err := l.Repository.ExistsById(ctx, id)
	if err != nil || !exists {
		return false, err
	}
	if err := l.Repository.DeleteById(ctx, id); err != nil {
		return false, err
	}
	return true, nil
}
