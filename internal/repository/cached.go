package repository

import (
	"context"
	"errors"
	"sync"

	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/metrics"
	"github.com/antonio-alexander/go-employees/internal/utilities"
)

const counterKeyEmployee string = "employee"

type cached struct {
	sync.Mutex
	generation uint64 //incremented by every write
	Repository
	cache   cache.Cache
	counter utilities.Counter
	metrics *metrics.Metrics
	utilities.Logger
}

// NewCached fronts a Repository with a Cache. Lookups by id are served from
// the cache when possible, writes evict. Cache failures are logged and the
// underlying repository is used instead. A read that overlaps a write
// doesn't populate the cache.
func NewCached(parameters ...any) Repository {
	c := &cached{Logger: utilities.NopLogger{}}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case Repository:
			c.Repository = p
		case cache.Cache:
			c.cache = p
		case utilities.Counter:
			c.counter = p
		case *metrics.Metrics:
			c.metrics = p
		case utilities.Logger:
			c.Logger = p
		}
	}
	if c.cache == nil {
		return c.Repository
	}
	return c
}

func (c *cached) hit(ctx context.Context, id int64) {
	if c.counter != nil {
		c.counter.IncrementHit(counterKeyEmployee)
	}
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues("hit").Inc()
	}
	c.Trace(ctx, "cache hit for employee: %d", id)
}

func (c *cached) miss(ctx context.Context, id int64) {
	if c.counter != nil {
		c.counter.IncrementMiss(counterKeyEmployee)
	}
	if c.metrics != nil {
		c.metrics.CacheLookups.WithLabelValues("miss").Inc()
	}
	c.Trace(ctx, "cache miss for employee: %d", id)
}

func (c *cached) read(ctx context.Context, id int64) (data.Employee, bool) {
	employee, err := c.cache.EmployeeRead(ctx, id)
	if err != nil {
		if !errors.Is(err, cache.ErrEmployeeNotCached) {
			c.Error(ctx, "error while reading employee (%d) from cache: %s", id, err)
		}
		c.miss(ctx, id)
		return data.Employee{}, false
	}
	c.hit(ctx, id)
	return employee, true
}

func (c *cached) evict(ctx context.Context, id int64) {
	c.Lock()
	defer c.Unlock()

	c.generation++
	if err := c.cache.EmployeesDelete(ctx, id); err != nil {
		c.Error(ctx, "error while deleting employee (%d) from cache: %s", id, err)
	}
}

// populate writes employee to the cache unless a write has been evicted
// since generation was read
func (c *cached) populate(ctx context.Context, generation uint64, employee data.Employee) {
	c.Lock()
	defer c.Unlock()

	if c.generation != generation {
		c.Trace(ctx, "not caching employee (%d): written during read", employee.Id)
		return
	}
	if err := c.cache.EmployeesWrite(ctx, employee); err != nil {
		c.Error(ctx, "error while writing employee (%d) to cache: %s", employee.Id, err)
	}
}

func (c *cached) currentGeneration() uint64 {
	c.Lock()
	defer c.Unlock()

	return c.generation
}

func (c *cached) FindById(ctx context.Context, id int64) (data.Employee, bool, error) {
	if employee, ok := c.read(ctx, id); ok {
		return employee, true, nil
	}
	generation := c.currentGeneration()
	employee, found, err := c.Repository.FindById(ctx, id)
	if err != nil || !found {
		return employee, found, err
	}
	c.populate(ctx, generation, employee)
	return employee, true, nil
}

func (c *cached) ExistsById(ctx context.Context, id int64) (bool, error) {
	if _, ok := c.read(ctx, id); ok {
		return true, nil
	}
	return c.Repository.ExistsById(ctx, id)
}

func (c *cached) Save(ctx context.Context, employee data.Employee) (data.Employee, error) {
	employee, err := c.Repository.Save(ctx, employee)
	if err != nil {
		return data.Employee{}, err
	}
	c.evict(ctx, employee.Id)
	return employee, nil
}

func (c *cached) DeleteById(ctx context.Context, id int64) error {
	if err := c.Repository.DeleteById(ctx, id); err != nil {
		return err
	}
	c.evict(ctx, id)
	return nil
}
