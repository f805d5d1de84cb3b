package repository_test

import (
	"context"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/repository"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var envs = map[string]string{
	"DATABASE_HOST":          "localhost",
	"DATABASE_PORT":          "3306",
	"DATABASE_NAME":          "employees",
	"DATABASE_USER":          "mysql",
	"DATABASE_PASSWORD":      "mysql",
	"DATABASE_QUERY_TIMEOUT": "10",
}

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

func testRepository(t *testing.T, repo repository.Repository) {
	ctx := context.TODO()

	// save (create) employee
	employeeName := internal.GenerateId()[:14]
	employeePosition := internal.GenerateId()[:16]
	employeeCreated, err := repo.Save(ctx, data.Employee{
		EmployeeName:     employeeName,
		EmployeePosition: employeePosition,
	})
	require.Nil(t, err)
	assert.NotZero(t, employeeCreated.Id)
	assert.Equal(t, employeeName, employeeCreated.EmployeeName)
	assert.Equal(t, employeePosition, employeeCreated.EmployeePosition)
	id := employeeCreated.Id
	defer func(id int64) {
		_ = repo.DeleteById(ctx, id)
	}(id)

	// find employee
	employeeRead, found, err := repo.FindById(ctx, id)
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, employeeCreated, employeeRead)

	// exists
	exists, err := repo.ExistsById(ctx, id)
	assert.Nil(t, err)
	assert.True(t, exists)

	// find all
	employees, err := repo.FindAll(ctx)
	assert.Nil(t, err)
	assert.Contains(t, employees, employeeCreated)

	// save (overwrite) employee
	employeeRead.EmployeeName = internal.GenerateId()[:14]
	employeeUpdated, err := repo.Save(ctx, employeeRead)
	assert.Nil(t, err)
	assert.Equal(t, id, employeeUpdated.Id)
	employeeRead, found, err = repo.FindById(ctx, id)
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, employeeUpdated, employeeRead)
	employeesAfter, err := repo.FindAll(ctx)
	assert.Nil(t, err)
	assert.Len(t, employeesAfter, len(employees))

	// delete employee
	err = repo.DeleteById(ctx, id)
	assert.Nil(t, err)
	_, found, err = repo.FindById(ctx, id)
	assert.Nil(t, err)
	assert.False(t, found)
	exists, err = repo.ExistsById(ctx, id)
	assert.Nil(t, err)
	assert.False(t, exists)

	// delete employee again
	err = repo.DeleteById(ctx, id)
	assert.Nil(t, err)
}

func TestMemory(t *testing.T) {
	testRepository(t, repository.NewMemory())
}

func TestMemoryOrder(t *testing.T) {
	ctx := context.TODO()
	repo := repository.NewMemory(
		data.Employee{EmployeeName: "John Doe", EmployeePosition: "Software Engineer"},
		data.Employee{EmployeeName: "Jane Smith", EmployeePosition: "Product Manager"},
	)

	employees, err := repo.FindAll(ctx)
	assert.Nil(t, err)
	assert.Equal(t, []data.Employee{
		{Id: 1, EmployeeName: "John Doe", EmployeePosition: "Software Engineer"},
		{Id: 2, EmployeeName: "Jane Smith", EmployeePosition: "Product Manager"},
	}, employees)

	// ids are never reused
	err = repo.DeleteById(ctx, 2)
	assert.Nil(t, err)
	employee, err := repo.Save(ctx, data.Employee{EmployeeName: "X"})
	assert.Nil(t, err)
	assert.Equal(t, int64(3), employee.Id)

	// saving an explicit id creates it
	employee, err = repo.Save(ctx, data.Employee{Id: 10, EmployeeName: "Y"})
	assert.Nil(t, err)
	assert.Equal(t, int64(10), employee.Id)
	employee, err = repo.Save(ctx, data.Employee{EmployeeName: "Z"})
	assert.Nil(t, err)
	assert.Equal(t, int64(11), employee.Id)

	employees, err = repo.FindAll(ctx)
	assert.Nil(t, err)
	assert.Len(t, employees, 4)
	assert.Equal(t, "John Doe", employees[0].EmployeeName)
	assert.Equal(t, "Z", employees[3].EmployeeName)

	// empty stores list as an empty slice
	employees, err = repository.NewMemory().FindAll(ctx)
	assert.Nil(t, err)
	assert.NotNil(t, employees)
	assert.Empty(t, employees)
}

func TestCached(t *testing.T) {
	ctx := context.TODO()
	counter := utilities.NewCounter()
	employeeCache := cache.NewMemory()
	memory := repository.NewMemory(
		data.Employee{EmployeeName: "John Doe", EmployeePosition: "Software Engineer"},
	)
	repo := repository.NewCached(memory, employeeCache, counter)

	testRepository(t, repo)

	// first read is a miss and populates the cache
	employee, found, err := repo.FindById(ctx, 1)
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, "John Doe", employee.EmployeeName)
	counter.Reset()
	employee, found, err = repo.FindById(ctx, 1)
	assert.Nil(t, err)
	assert.True(t, found)
	hits, _ := counter.Read("employee")
	assert.Equal(t, 1, hits)
	cached, err := employeeCache.EmployeeRead(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, employee, cached)

	// saving evicts so the next read sees the new value
	employee.EmployeePosition = "Staff Engineer"
	_, err = repo.Save(ctx, employee)
	assert.Nil(t, err)
	_, err = employeeCache.EmployeeRead(ctx, 1)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
	employee, _, err = repo.FindById(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, "Staff Engineer", employee.EmployeePosition)

	// deleting evicts
	err = repo.DeleteById(ctx, 1)
	assert.Nil(t, err)
	_, found, err = repo.FindById(ctx, 1)
	assert.Nil(t, err)
	assert.False(t, found)
	exists, err := repo.ExistsById(ctx, 1)
	assert.Nil(t, err)
	assert.False(t, exists)
}

// slowRepository holds the first FindById after the row has been read
// until released
type slowRepository struct {
	repository.Repository
	once     sync.Once
	read     chan struct{}
	released chan struct{}
}

func (s *slowRepository) FindById(ctx context.Context, id int64) (data.Employee, bool, error) {
	employee, found, err := s.Repository.FindById(ctx, id)
	s.once.Do(func() {
		close(s.read)
		<-s.released
	})
	return employee, found, err
}

func TestCachedReadDuringWrite(t *testing.T) {
	ctx := context.TODO()
	employeeCache := cache.NewMemory()
	slow := &slowRepository{
		Repository: repository.NewMemory(
			data.Employee{EmployeeName: "John Doe", EmployeePosition: "Software Engineer"},
		),
		read:     make(chan struct{}),
		released: make(chan struct{}),
	}
	repo := repository.NewCached(slow, employeeCache)

	// read the old row, then update it before the read completes
	done := make(chan data.Employee)
	go func() {
		employee, _, _ := repo.FindById(ctx, 1)
		done <- employee
	}()
	<-slow.read
	_, err := repo.Save(ctx, data.Employee{Id: 1, EmployeeName: "John Doe", EmployeePosition: "CTO"})
	require.Nil(t, err)
	close(slow.released)
	employee := <-done
	assert.Equal(t, "Software Engineer", employee.EmployeePosition)

	// the stale read must not have been cached
	_, err = employeeCache.EmployeeRead(ctx, 1)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
	employee, found, err := repo.FindById(ctx, 1)
	assert.Nil(t, err)
	assert.True(t, found)
	assert.Equal(t, "CTO", employee.EmployeePosition)
	employee, err = employeeCache.EmployeeRead(ctx, 1)
	assert.Nil(t, err)
	assert.Equal(t, "CTO", employee.EmployeePosition)
}

func TestCachedWithoutCache(t *testing.T) {
	memory := repository.NewMemory()
	repo := repository.NewCached(memory)
	assert.Equal(t, memory, repo)
}

func TestMySql(t *testing.T) {
	if os.Getenv("DATABASE_HOST") == "" {
		t.Skip("DATABASE_HOST not set")
	}

	ctx := context.TODO()
	repo := repository.NewMySql()
	err := repo.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure mysql")
	}
	err = repo.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open mysql")
	}
	defer func() {
		_ = repo.Close(ctx)
	}()
	testRepository(t, repo)
}
