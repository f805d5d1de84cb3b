package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/client"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
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
	args := os.Args[1:]
	envs := internal.Envs()
	osSignal := make(chan os.Signal, 1)
	signal.Notify(osSignal, syscall.SIGINT, syscall.SIGTERM)
	if err := Main(args, envs, osSignal); err != nil {
		os.Stderr.WriteString(err.Error())
		os.Exit(1)
	}
}

func printJson(item any) error {
	bytes, err := json.MarshalIndent(item, "", " ")
	if err != nil {
		return err
	}
	fmt.Println(string(bytes))
	return nil
}

func employeeFromEnvs(envs map[string]string) data.Employee {
	return data.Employee{
		EmployeeName:     envs["EMPLOYEE_NAME"],
		EmployeePosition: envs["EMPLOYEE_POSITION"],
	}
}

func employeeIdFromEnvs(envs map[string]string) (int64, error) {
	id, err := strconv.ParseInt(envs["EMPLOYEE_ID"], 10, 64)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid EMPLOYEE_ID %q", envs["EMPLOYEE_ID"])
	}
	return id, nil
}

func Main(args []string, envs map[string]string, osSignal chan (os.Signal)) error {
	fmt.Printf("client: go-employees v%s (%s) built from: %s\n",
		Version, GitCommit, GitBranch)

	logger := utilities.NewLogger(os.Stderr)
	_ = logger.Configure(envs)

	//create client
	client := client.NewClient(logger)
	if err := client.Configure(envs); err != nil {
		return err
	}
	if err := client.Open(context.Background()); err != nil {
		return err
	}
	defer func() {
		if err := client.Close(context.Background()); err != nil {
			fmt.Printf("error while closing client: %s\n", err)
		}
	}()

	// cancel the command if a signal is received
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() {
		select {
		case <-osSignal:
			cancel()
		case <-ctx.Done():
		}
	}()
	ctx = internal.CtxWithCorrelationId(ctx, internal.GenerateId())

	// execute command
	var id int64

	command := envs["COMMAND"]
	switch command {
	case "employee_read", "employee_update", "employee_delete":
		employeeId, err := employeeIdFromEnvs(envs)
		if err != nil {
			return err
		}
		id = employeeId
	}
	switch command {
	default:
		return errors.Errorf("unsupported command: %s", command)
	case "employees_read":
		employees, err := client.EmployeesRead(ctx)
		if err != nil {
			return err
		}
		return printJson(employees)
	case "employee_read":
		employee, found, err := client.EmployeeRead(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return errors.Errorf("employee not found: %d", id)
		}
		return printJson(employee)
	case "employee_create":
		employee, err := client.EmployeeCreate(ctx, employeeFromEnvs(envs))
		if err != nil {
			return err
		}
		return printJson(employee)
	case "employee_update":
		employee, found, err := client.EmployeeUpdate(ctx, id, employeeFromEnvs(envs))
		if err != nil {
			return err
		}
		if !found {
			return errors.Errorf("employee not found: %d", id)
		}
		return printJson(employee)
	case "employee_delete":
		deleted, err := client.EmployeeDelete(ctx, id)
		if err != nil {
			return err
		}
		if !deleted {
			return errors.Errorf("employee not found: %d", id)
		}
		fmt.Printf("deleted employee: %d\n", id)
	case "cache_clear":
		return client.CacheClear(ctx)
	case "cache_counters_read":
		counters, err := client.CacheCountersRead(ctx)
		if err != nil {
			return err
		}
		return printJson(counters)
	case "cache_counters_clear":
		return client.CacheCountersClear(ctx)
	}
	return nil
}
