package logic_test

import (
	"context"
	"testing"

	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/logic"
	"github.com/antonio-alexander/go-employees/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// spyRepository counts the mutations that reach the repository
type spyRepository struct {
	repository.Repository
	saves   int
	deletes int
}

func (s *spyRepository) Save(ctx context.Context, employee data.Employee) (data.Employee, error) {
	s.saves++
	return s.Repository.Save(ctx, employee)
}

func (s *spyRepository) DeleteById(ctx context.Context, id int64) error {
	s.deletes++
	return s.Repository.DeleteById(ctx, id)
}

// failingRepository fails every operation
type failingRepository struct{}

func (failingRepository) FindAll(context.Context) ([]data.Employee, error) {
	return nil, assert.AnError
}

func (failingRepository) FindById(context.Context, int64) (data.Employee, bool, error) {
	return data.Employee{}, false, assert.AnError
}

func (failingRepository) ExistsById(context.Context, int64) (bool, error) {
	return false, assert.AnError
}

func (failingRepository) Save(context.Context, data.Employee) (data.Employee, error) {
	return data.Employee{}, assert.AnError
}

func (failingRepository) DeleteById(context.Context, int64) error {
	return assert.AnError
}

func newLogicTest(t *testing.T, envs map[string]string) (logic.Logic, *spyRepository) {
	t.Helper()

	spy := &spyRepository{Repository: repository.NewMemory(
		data.Employee{EmployeeName: "John Doe", EmployeePosition: "Software Engineer"},
		data.Employee{EmployeeName: "Jane Smith", EmployeePosition: "Product Manager"},
	)}
	l := logic.NewLogic(spy)
	require.NoError(t, l.Configure(envs))
	require.NoError(t, l.Open(context.TODO()))
	t.Cleanup(func() { _ = l.Close(context.TODO()) })
	return l, spy
}

func TestEmployeesRead(t *testing.T) {
	l, _ := newLogicTest(t, nil)

	employees, err := l.EmployeesRead(context.TODO())
	require.NoError(t, err)
	assert.Len(t, employees, 2)
	assert.Equal(t, "John Doe", employees[0].EmployeeName)
	assert.Equal(t, "Jane Smith", employees[1].EmployeeName)
}

func TestEmployeesRead_Empty(t *testing.T) {
	l := logic.NewLogic(repository.NewMemory())

	employees, err := l.EmployeesRead(context.TODO())
	require.NoError(t, err)
	assert.Empty(t, employees)
}

func TestEmployeeRead(t *testing.T) {
	l, _ := newLogicTest(t, nil)

	employee, found, err := l.EmployeeRead(context.TODO(), 1)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "John Doe", employee.EmployeeName)

	_, found, err = l.EmployeeRead(context.TODO(), 99)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestEmployeeCreate(t *testing.T) {
	ctx := context.TODO()
	l, _ := newLogicTest(t, nil)

	employee := data.Employee{
		Id:               1, //ignored
		EmployeeName:     "Alice Liddell",
		EmployeePosition: "Designer",
	}
	employeeCreated, err := l.EmployeeCreate(ctx, employee)
	require.NoError(t, err)
	assert.Equal(t, int64(3), employeeCreated.Id)

	employeeRead, found, err := l.EmployeeRead(ctx, employeeCreated.Id)
	require.NoError(t, err)
	assert.True(t, found)
	employee.Id = employeeCreated.Id
	assert.Equal(t, employee, employeeRead)

	// the existing record wasn't touched
	employeeRead, _, err = l.EmployeeRead(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, "John Doe", employeeRead.EmployeeName)

	// empty fields are accepted as-is
	employeeCreated, err = l.EmployeeCreate(ctx, data.Employee{})
	require.NoError(t, err)
	assert.NotZero(t, employeeCreated.Id)
	assert.Empty(t, employeeCreated.EmployeeName)
}

func TestEmployeeUpdate(t *testing.T) {
	ctx := context.TODO()
	l, spy := newLogicTest(t, nil)

	details := data.Employee{
		Id:               42, //ignored
		EmployeeName:     "John Doe",
		EmployeePosition: "Staff Engineer",
	}
	employee, found, err := l.EmployeeUpdate(ctx, 1, details)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, int64(1), employee.Id)
	assert.Equal(t, details.EmployeeName, employee.EmployeeName)
	assert.Equal(t, details.EmployeePosition, employee.EmployeePosition)
	_, found, err = l.EmployeeRead(ctx, 42)
	require.NoError(t, err)
	assert.False(t, found)

	// unchanged values are still written
	employee, found, err = l.EmployeeUpdate(ctx, 1, details)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Staff Engineer", employee.EmployeePosition)
	assert.Equal(t, 2, spy.saves)
}

func TestEmployeeUpdate_NotFound(t *testing.T) {
	ctx := context.TODO()
	l, spy := newLogicTest(t, nil)

	employee, found, err := l.EmployeeUpdate(ctx, 99, data.Employee{
		EmployeeName:     "X",
		EmployeePosition: "Y",
	})
	require.NoError(t, err)
	assert.False(t, found)
	assert.Zero(t, employee)
	assert.Zero(t, spy.saves)

	employees, err := l.EmployeesRead(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 2)
}

func TestEmployeeDelete(t *testing.T) {
	ctx := context.TODO()
	l, spy := newLogicTest(t, nil)

	deleted, err := l.EmployeeDelete(ctx, 2)
	require.NoError(t, err)
	assert.True(t, deleted)
	_, found, err := l.EmployeeRead(ctx, 2)
	require.NoError(t, err)
	assert.False(t, found)
	employees, err := l.EmployeesRead(ctx)
	require.NoError(t, err)
	assert.Len(t, employees, 1)

	// deleting again reports that nothing was deleted
	deleted, err = l.EmployeeDelete(ctx, 2)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, spy.deletes)

	deleted, err = l.EmployeeDelete(ctx, 99)
	require.NoError(t, err)
	assert.False(t, deleted)
	assert.Equal(t, 1, spy.deletes)
}

func TestMutateDisabled(t *testing.T) {
	ctx := context.TODO()
	l, spy := newLogicTest(t, map[string]string{"LOGIC_MUTATE_DISABLED": "true"})

	_, err := l.EmployeeCreate(ctx, data.Employee{EmployeeName: "X"})
	assert.ErrorIs(t, err, data.ErrMutateDisabled)
	_, _, err = l.EmployeeUpdate(ctx, 1, data.Employee{EmployeeName: "X"})
	assert.ErrorIs(t, err, data.ErrMutateDisabled)
	_, err = l.EmployeeDelete(ctx, 1)
	assert.ErrorIs(t, err, data.ErrMutateDisabled)
	assert.Zero(t, spy.saves)
	assert.Zero(t, spy.deletes)

	// reads are still allowed
	_, found, err := l.EmployeeRead(ctx, 1)
	assert.NoError(t, err)
	assert.True(t, found)
}

func TestRepositoryErrors(t *testing.T) {
	ctx := context.TODO()
	l := logic.NewLogic(failingRepository{})

	_, err := l.EmployeesRead(ctx)
	assert.ErrorIs(t, err, assert.AnError)
	_, found, err := l.EmployeeRead(ctx, 1)
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, found)
	_, err = l.EmployeeCreate(ctx, data.Employee{})
	assert.ErrorIs(t, err, assert.AnError)
	_, found, err = l.EmployeeUpdate(ctx, 1, data.Employee{})
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, found)
	deleted, err := l.EmployeeDelete(ctx, 1)
	assert.ErrorIs(t, err, assert.AnError)
	assert.False(t, deleted)
}
