package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/redis/go-redis/v9"
)

const hashKeyEmployees string = "employees"

type redisCache struct {
	redisClient *redis.Client
	config      struct {
		address  string
		port     string
		password string
		database int
		timeout  time.Duration
	}
	utilities.Logger
}

func NewRedis(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	internal.Pinger
	Cache
} {
	c := &redisCache{Logger: utilities.NopLogger{}}
	c.config.timeout = 10 * time.Second
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

func (c *redisCache) Configure(envs map[string]string) error {
	if redisAddress, ok := envs["REDIS_ADDRESS"]; ok {
		c.config.address = redisAddress
	}
	if redisPort, ok := envs["REDIS_PORT"]; ok {
		c.config.port = redisPort
	}
	if redisPassword, ok := envs["REDIS_PASSWORD"]; ok {
		c.config.password = redisPassword
	}
	if redisDatabase := envs["REDIS_DATABASE"]; redisDatabase != "" {
		i, err := strconv.ParseInt(redisDatabase, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid REDIS_DATABASE: %w", err)
		}
		c.config.database = int(i)
	}
	if redisTimeout := envs["REDIS_TIMEOUT"]; redisTimeout != "" {
		i, err := strconv.ParseInt(redisTimeout, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid REDIS_TIMEOUT: %w", err)
		}
		if i > 0 {
			c.config.timeout = time.Duration(i) * time.Second
		}
	}
	return nil
}

func (c *redisCache) Open(ctx context.Context) error {
	redisClient := redis.NewClient(&redis.Options{
		Addr:     net.JoinHostPort(c.config.address, c.config.port),
		Password: c.config.password,
		DB:       c.config.database,
	})
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		_ = redisClient.Close()
		return err
	}
	c.redisClient = redisClient
	c.Info(ctx, "connected to redis: %s", redisClient.Options().Addr)
	return nil
}

func (c *redisCache) Close(ctx context.Context) error {
	if c.redisClient == nil {
		return nil
	}
	if err := c.redisClient.Close(); err != nil {
		c.Error(ctx, "error while shutting down redis client: %s", err)
	}
	return nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	return c.redisClient.Ping(ctx).Err()
}

func (c *redisCache) Clear(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	if _, err := c.redisClient.Del(ctx, hashKeyEmployees).Result(); err != nil {
		return err
	}
	return nil
}

func (c *redisCache) EmployeeRead(ctx context.Context, id int64) (data.Employee, error) {
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	value, err := c.redisClient.HGet(ctx, hashKeyEmployees, fmt.Sprint(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return data.Employee{}, ErrEmployeeNotCached
		}
		return data.Employee{}, err
	}
	employee := data.Employee{}
	if err := employee.UnmarshalBinary([]byte(value)); err != nil {
		return data.Employee{}, err
	}
	return employee, nil
}

func (c *redisCache) EmployeesWrite(ctx context.Context, employees ...data.Employee) error {
	if len(employees) <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	values := make([]any, 0, 2*len(employees))
	for _, employee := range employees {
		bytes, err := employee.MarshalBinary()
		if err != nil {
			return err
		}
		values = append(values, fmt.Sprint(employee.Id), string(bytes))
	}
	if _, err := c.redisClient.HSet(ctx, hashKeyEmployees, values...).Result(); err != nil {
		return err
	}
	return nil
}

func (c *redisCache) EmployeesDelete(ctx context.Context, ids ...int64) error {
	if len(ids) <= 0 {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, c.config.timeout)
	defer cancel()
	fields := make([]string, 0, len(ids))
	for _, id := range ids {
		fields = append(fields, fmt.Sprint(id))
	}
	if _, err := c.redisClient.HDel(ctx, hashKeyEmployees, fields...).Result(); err != nil {
		return err
	}
	return nil
}
