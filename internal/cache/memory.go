package cache

import (
	"context"
	"sync"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"
)

type memoryCache struct {
	sync.RWMutex
	employees map[int64]data.Employee //map[id]employee
	utilities.Logger
}

func NewMemory(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &memoryCache{
		employees: make(map[int64]data.Employee),
		Logger:    utilities.NopLogger{},
	}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *memoryCache) Configure(envs map[string]string) error {
	return nil
}

func (c *memoryCache) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.employees = make(map[int64]data.Employee)
	return nil
}

func (c *memoryCache) Close(ctx context.Context) error {
	return nil
}

func (c *memoryCache) Clear(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.employees = make(map[int64]data.Employee)
	c.Trace(ctx, "cleared memory cache")
	return nil
}

func (c *memoryCache) EmployeeRead(ctx context.Context, id int64) (data.Employee, error) {
	c.RLock()
	defer c.RUnlock()

	employee, ok := c.employees[id]
	if !ok {
		return data.Employee{}, ErrEmployeeNotCached
	}
	return employee, nil
}

func (c *memoryCache) EmployeesWrite(ctx context.Context, employees ...data.Employee) error {
	c.Lock()
	defer c.Unlock()

	for _, employee := range employees {
		c.employees[employee.Id] = employee
	}
	return nil
}

func (c *memoryCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	c.Lock()
	defer c.Unlock()

	for _, id := range ids {
		delete(c.employees, id)
	}
	return nil
}
