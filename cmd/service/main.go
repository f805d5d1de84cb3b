package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/logic"
	"github.com/antonio-alexander/go-employees/internal/metrics"
	"github.com/antonio-alexander/go-employees/internal/repository"
	"github.com/antonio-alexander/go-employees/internal/service"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/antonio-alexander/go-stash/memory"
	"github.com/antonio-alexander/go-stash/redis"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

var (
	Version   string
	GitCommit string
	GitBranch string
)

func init() {
	if Version = data.Version; Version == "" {
		Version = "<no_version_provided>"
	}
	if GitCommit = data.GitCommit; GitCommit == "" {
		GitCommit = "<no_git_commit>"
	}
	if GitBranch = data.GitBranch; GitBranch == "" {
		GitBranch = "<no_git_branch>"
	}
}

func main() {
	pwd, _ := os.Getwd()
	args := os.Args[1:]
	envs := internal.Envs()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(pwd, args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func createRepository(envs map[string]string, parameters ...any) (interface {
	internal.Configurer
	internal.Opener
	internal.Pinger
	repository.Repository
}, error) {
	switch repositoryType := envs["REPOSITORY_TYPE"]; repositoryType {
	default:
		return nil, errors.Errorf("unsupported repository type: %s", repositoryType)
	case "", "memory":
		return repository.NewMemory(), nil
	case "mysql":
		return repository.NewMySql(parameters...), nil
	case "postgres":
		return repository.NewPostgres(parameters...), nil
	}
}

func createCache(envs map[string]string, parameters ...any) (interface {
	internal.Configurer
	internal.Opener
	internal.Clearer
	cache.Cache
}, error) {
	switch cacheType := envs["CACHE_TYPE"]; cacheType {
	default:
		return nil, errors.Errorf("unsupported cache type: %s", cacheType)
	case "":
		return nil, nil
	case "memory":
		return cache.NewMemory(parameters...), nil
	case "redis":
		return cache.NewRedis(parameters...), nil
	case "stash-memory":
		parameters = append(parameters, memory.New())
		return cache.NewStash(parameters...), nil
	case "stash-redis":
		parameters = append(parameters, redis.New())
		return cache.NewStash(parameters...), nil
	}
}

func Main(pwd string, args []string, envs map[string]string, osSignal chan os.Signal) error {
	var wg sync.WaitGroup

	//create context
	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer cancel()

	// create utilities
	logger := utilities.NewLogger()
	_ = logger.Configure(envs)
	counter := utilities.NewCounter()
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m := metrics.NewMetrics(registry)

	//print version info
	logger.Info(ctx, "server: go-employees v%s (%s) built from: %s",
		Version, GitCommit, GitBranch)

	//create repository, configure and open
	store, err := createRepository(envs, logger, m)
	if err != nil {
		return err
	}
	if err := store.Configure(envs); err != nil {
		return err
	}
	if err := store.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := store.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing repository: %s", err)
		}
	}()

	// create cache
	c, err := createCache(envs, logger)
	if err != nil {
		return err
	}
	parameters := []any{store, counter, m, logger}
	if c != nil {
		if err := c.Configure(envs); err != nil {
			return err
		}
		if err := c.Open(ctx); err != nil {
			return err
		}
		defer func() {
			if err := c.Close(context.Background()); err != nil {
				logger.Error(context.Background(), "error while closing cache: %s", err)
			}
		}()
		parameters = append(parameters, c)
	}

	//create logic, configure and open
	logic := logic.NewLogic(repository.NewCached(parameters...), logger)
	if err := logic.Configure(envs); err != nil {
		return err
	}
	if err := logic.Open(ctx); err != nil {
		return err
	}
	defer func() {
		if err := logic.Close(context.Background()); err != nil {
			logger.Error(context.Background(), "error while closing logic: %s", err)
		}
	}()

	//create service, configure and open
	serviceParameters := []any{logic, counter, m, registry, store, logger}
	if c != nil {
		serviceParameters = append(serviceParameters, c)
	}
	service := service.NewService(serviceParameters...)
	if err := service.Configure(envs); err != nil {
		return err
	}
	if err := service.Open(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	if err := service.Close(context.Background()); err != nil {
		logger.Error(context.Background(), "error while closing service: %s", err)
	}
	wg.Wait()
	return nil
}
