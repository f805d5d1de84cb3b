package cache_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"

	"github.com/antonio-alexander/go-stash/memory"
	"github.com/stretchr/testify/assert"
)

var envs = map[string]string{
	"REDIS_ADDRESS": "localhost",
	"REDIS_PORT":    "6379",
	"REDIS_TIMEOUT": "10",
}

func init() {
	for _, env := range os.Environ() {
		if s := strings.Split(env, "="); len(s) > 1 {
			envs[s[0]] = strings.Join(s[1:], "=")
		}
	}
}

type cacheTest struct {
	cache interface {
		internal.Configurer
		internal.Opener
		internal.Clearer
	}
	cache.Cache
}

func newCacheTest(cacheType string) *cacheTest {
	var c interface {
		internal.Configurer
		internal.Opener
		internal.Clearer
		cache.Cache
	}

	switch cacheType {
	case "memory":
		c = cache.NewMemory()
	case "redis":
		c = cache.NewRedis()
	case "stash-memory":
		c = cache.NewStash(memory.New())
	}
	return &cacheTest{
		cache: c,
		Cache: c,
	}
}

func (c *cacheTest) TestCache(t *testing.T) {
	ctx := context.TODO()

	//create employees
	employees := []data.Employee{
		{Id: 1, EmployeeName: internal.GenerateId(), EmployeePosition: internal.GenerateId()},
		{Id: 2, EmployeeName: internal.GenerateId(), EmployeePosition: internal.GenerateId()},
		{Id: 3, EmployeeName: internal.GenerateId(), EmployeePosition: internal.GenerateId()},
	}

	//clear cache
	err := c.cache.Clear(ctx)
	assert.Nil(t, err)

	// read before write
	_, err = c.EmployeeRead(ctx, employees[0].Id)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)

	// write employees
	err = c.EmployeesWrite(ctx, employees...)
	assert.Nil(t, err)

	// read employees
	for _, employee := range employees {
		employeeRead, err := c.EmployeeRead(ctx, employee.Id)
		assert.Nil(t, err)
		assert.Equal(t, employee, employeeRead)
	}

	// overwrite employee[0]
	employees[0].EmployeePosition = "Product Manager"
	err = c.EmployeesWrite(ctx, employees[0])
	assert.Nil(t, err)
	employeeRead, err := c.EmployeeRead(ctx, employees[0].Id)
	assert.Nil(t, err)
	assert.Equal(t, "Product Manager", employeeRead.EmployeePosition)

	// delete employee [1]
	err = c.EmployeesDelete(ctx, employees[1].Id)
	assert.Nil(t, err)
	_, err = c.EmployeeRead(ctx, employees[1].Id)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)

	// delete an employee that was never cached
	err = c.EmployeesDelete(ctx, 99)
	assert.Nil(t, err)

	// clear cache
	err = c.cache.Clear(ctx)
	assert.Nil(t, err)
	_, err = c.EmployeeRead(ctx, employees[2].Id)
	assert.ErrorIs(t, err, cache.ErrEmployeeNotCached)
}

func testCache(t *testing.T, cacheType string) {
	c := newCacheTest(cacheType)

	ctx := context.TODO()
	err := c.cache.Configure(envs)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to configure cache")
	}
	err = c.cache.Open(ctx)
	if !assert.Nil(t, err) {
		assert.FailNow(t, "unable to open cache")
	}
	defer func() {
		if err := c.cache.Close(ctx); err != nil {
			t.Logf("error while closing cache: %s", err)
		}
	}()
	t.Run("Cache", c.TestCache)
}

func TestCacheMemory(t *testing.T) {
	testCache(t, "memory")
}

func TestCacheStashMemory(t *testing.T) {
	testCache(t, "stash-memory")
}

func TestCacheStashWithoutStash(t *testing.T) {
	c := cache.NewStash()
	err := c.Open(context.TODO())
	assert.NotNil(t, err)
}

func TestCacheRedis(t *testing.T) {
	if os.Getenv("REDIS_ADDRESS") == "" {
		t.Skip("REDIS_ADDRESS not set")
	}
	testCache(t, "redis")
}
