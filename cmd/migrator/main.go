package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/repository"
	"github.com/antonio-alexander/go-employees/internal/utilities"
)

func main() {
	pwd, _ := os.Getwd()
	envs := internal.Envs()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(pwd, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func Main(pwd string, envs map[string]string, osSignal chan os.Signal) error {
	var wg sync.WaitGroup

	ctx, cancel := internal.LaunchContext(&wg, osSignal)
	defer func() {
		cancel()
		wg.Wait()
	}()

	logger := utilities.NewLogger()
	_ = logger.Configure(envs)
	repositoryType := envs["REPOSITORY_TYPE"]
	dir := envs["MIGRATIONS_DIR"]
	if dir == "" {
		dir = filepath.Join(pwd, "migrations", repositoryType)
	}
	return repository.Migrate(ctx, repositoryType, dir, envs, logger)
}
