package cache

import (
	"context"
	"fmt"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/antonio-alexander/go-stash"
)

type stashCache struct {
	utilities.Logger
	stash interface {
		stash.Configurer
		stash.Parameterizer
		stash.Initializer
		stash.Shutdowner
	}
	stash.Stasher
}

// NewStash wraps a go-stash implementation (memory or redis), the stash
// must be provided as a parameter
func NewStash(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	Cache
} {
	c := &stashCache{Logger: utilities.NopLogger{}}
	for _, p := range parameters {
		switch p := p.(type) {
		case utilities.Logger:
			c.Logger = p
		case interface {
			stash.Configurer
			stash.Parameterizer
			stash.Initializer
			stash.Shutdowner
			stash.Stasher
		}:
			c.stash = p
			c.Stasher = p
		}
	}
	if c.stash != nil {
		c.stash.SetParameters(parameters...)
	}
	return c
}

func (c *stashCache) Configure(envs map[string]string) error {
	if c.stash != nil {
		if err := c.stash.Configure(envs); err != nil {
			return err
		}
	}
	return nil
}

func (c *stashCache) Open(ctx context.Context) error {
	if c.stash == nil {
		return fmt.Errorf("stash cache: no stash provided")
	}
	return c.stash.Initialize()
}

func (c *stashCache) Close(ctx context.Context) error {
	if c.stash != nil {
		return c.stash.Shutdown()
	}
	return nil
}

func (c *stashCache) Clear(ctx context.Context) error {
	return c.Stasher.Clear()
}

func (c *stashCache) EmployeeRead(ctx context.Context, id int64) (data.Employee, error) {
	employee := &data.Employee{}
	if err := c.Stasher.Read(fmt.Sprint(id), employee); err != nil {
		c.Trace(ctx, "cache miss for employee (%d): %s", id, err)
		return data.Employee{}, ErrEmployeeNotCached
	}
	c.Trace(ctx, "cache hit for employee: %d", id)
	return *employee, nil
}

func (c *stashCache) EmployeesWrite(ctx context.Context, employees ...data.Employee) error {
	for _, employee := range employees {
		if _, err := c.Stasher.Write(fmt.Sprint(employee.Id), &employee); err != nil {
			c.Error(ctx, "error while writing employee (%d): %s", employee.Id, err)
			return err
		}
		c.Trace(ctx, "cached employee: %d", employee.Id)
	}
	return nil
}

func (c *stashCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	for _, id := range ids {
		//KIM: deleting a key that was never stashed isn't a failure
		if err := c.Stasher.Delete(fmt.Sprint(id)); err != nil {
			c.Trace(ctx, "unable to evict employee (%d): %s", id, err)
			continue
		}
		c.Trace(ctx, "evicted cached employee: %d", id)
	}
	return nil
}
