package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/pkg/errors"
)

type Client interface {
	EmployeesRead(ctx context.Context) ([]data.Employee, error)
	EmployeeRead(ctx context.Context, id int64) (data.Employee, bool, error)
	EmployeeCreate(ctx context.Context, employee data.Employee) (data.Employee, error)
	EmployeeUpdate(ctx context.Context, id int64, employee data.Employee) (data.Employee, bool, error)
	EmployeeDelete(ctx context.Context, id int64) (bool, error)
	CacheClear(ctx context.Context) error
	CacheCountersRead(ctx context.Context) (*data.CacheCounters, error)
	CacheCountersClear(ctx context.Context) error
}

type client struct {
	sync.RWMutex
	config struct {
		protocol   string
		address    string
		port       string
		timeout    int64
		sslCaFile  string
		sslCrtFile string
		sslKeyFile string
	}
	address string
	utilities.Logger
	*http.Client
}

func NewClient(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	Client
} {
	c := &client{
		Client: &http.Client{},
		Logger: utilities.NopLogger{},
	}
	c.config.protocol = "http"
	c.config.timeout = 10
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case utilities.Logger:
			c.Logger = p
		}
	}
	return c
}

// doRequest returns the status code and body of the response if its status
// code is one of expected (200, 201 or 204 when none are given); anything
// else is converted into an error
func (c *client) doRequest(ctx context.Context, uri, method string, item any, expected ...int) (int, []byte, error) {
	var body io.Reader

	if item != nil {
		b, err := json.Marshal(item)
		if err != nil {
			return 0, nil, err
		}
		body = bytes.NewReader(b)
	}
	request, err := http.NewRequestWithContext(ctx, method, uri, body)
	if err != nil {
		return 0, nil, err
	}
	if body != nil {
		request.Header.Add("Content-Type", "application/json")
	}
	if correlationId := internal.CorrelationIdFromCtx(ctx); correlationId != "" {
		request.Header.Add(data.HeaderCorrelationId, correlationId)
	}
	response, err := c.Do(request)
	if err != nil {
		return 0, nil, err
	}
	defer response.Body.Close()
	b, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, err
	}
	if len(expected) == 0 {
		expected = []int{http.StatusOK, http.StatusCreated, http.StatusNoContent}
	}
	if slices.Contains(expected, response.StatusCode) {
		return response.StatusCode, b, nil
	}
	e := data.Error{}
	if err := json.Unmarshal(b, &e); err != nil || e.Error == "" {
		return 0, nil, errors.Errorf("status code: %d; %s",
			response.StatusCode, string(b))
	}
	return 0, nil, errors.Errorf("status code: %d; %s", response.StatusCode, e.Error)
}

func (c *client) Configure(envs map[string]string) error {
	c.Lock()
	defer c.Unlock()

	if address, ok := envs["CLIENT_ADDRESS"]; ok {
		c.config.address = address
	}
	if port, ok := envs["CLIENT_PORT"]; ok {
		c.config.port = port
	}
	if protocol, ok := envs["CLIENT_PROTOCOL"]; ok && protocol != "" {
		c.config.protocol = protocol
	}
	if timeout, ok := envs["CLIENT_TIMEOUT"]; ok && timeout != "" {
		i, err := strconv.ParseInt(timeout, 10, 64)
		if err != nil {
			return errors.Wrap(err, "invalid CLIENT_TIMEOUT")
		}
		c.config.timeout = i
	}
	if sslCaFile, ok := envs["SSL_CA_FILE"]; ok {
		c.config.sslCaFile = sslCaFile
	}
	if sslKeyFile, ok := envs["SSL_KEY_FILE"]; ok {
		c.config.sslKeyFile = sslKeyFile
	}
	if sslCrtFile, ok := envs["SSL_CRT_FILE"]; ok {
		c.config.sslCrtFile = sslCrtFile
	}
	return nil
}

func (c *client) Open(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	switch c.config.protocol {
	default:
		return errors.Errorf("unsupported protocol: %s", c.config.protocol)
	case "http", "https":
		c.address = fmt.Sprintf("%s://%s", c.config.protocol,
			net.JoinHostPort(c.config.address, c.config.port))
	}
	c.Client.Timeout = time.Duration(c.config.timeout) * time.Second
	transport, err := getTlsConfig(c.config.sslCaFile, c.config.sslCrtFile,
		c.config.sslKeyFile)
	if err != nil {
		return err
	}
	c.Client.Transport = transport
	c.Debug(ctx, "client: using %s", c.address)
	return nil
}

func (c *client) Close(ctx context.Context) error {
	c.Lock()
	defer c.Unlock()

	c.Client.CloseIdleConnections()
	return nil
}

func (c *client) EmployeesRead(ctx context.Context) ([]data.Employee, error) {
	var employees []data.Employee

	_, bytes, err := c.doRequest(ctx, c.address+data.RouteEmployees, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(bytes, &employees); err != nil {
		return nil, errors.Wrap(err, "failed to decode employees")
	}
	return employees, nil
}

func (c *client) EmployeeRead(ctx context.Context, id int64) (data.Employee, bool, error) {
	var employee data.Employee

	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	statusCode, bytes, err := c.doRequest(ctx, uri, http.MethodGet, nil,
		http.StatusOK, http.StatusNotFound)
	if err != nil {
		return data.Employee{}, false, err
	}
	if statusCode == http.StatusNotFound {
		return data.Employee{}, false, nil
	}
	if err := json.Unmarshal(bytes, &employee); err != nil {
		return data.Employee{}, false, errors.Wrapf(err, "failed to decode employee (%d)", id)
	}
	return employee, true, nil
}

func (c *client) EmployeeCreate(ctx context.Context, employee data.Employee) (data.Employee, error) {
	_, bytes, err := c.doRequest(ctx, c.address+data.RouteEmployees, http.MethodPost, &employee,
		http.StatusCreated)
	if err != nil {
		return data.Employee{}, err
	}
	employee = data.Employee{}
	if err := json.Unmarshal(bytes, &employee); err != nil {
		return data.Employee{}, errors.Wrap(err, "failed to decode employee")
	}
	return employee, nil
}

func (c *client) EmployeeUpdate(ctx context.Context, id int64, employeeDetails data.Employee) (data.Employee, bool, error) {
	var employee data.Employee

	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	statusCode, bytes, err := c.doRequest(ctx, uri, http.MethodPut, &employeeDetails,
		http.StatusOK, http.StatusNotFound)
	if err != nil {
		return data.Employee{}, false, err
	}
	if statusCode == http.StatusNotFound {
		return data.Employee{}, false, nil
	}
	if err := json.Unmarshal(bytes, &employee); err != nil {
		return data.Employee{}, false, errors.Wrapf(err, "failed to decode employee (%d)", id)
	}
	return employee, true, nil
}

func (c *client) EmployeeDelete(ctx context.Context, id int64) (bool, error) {
	uri := fmt.Sprintf(c.address+data.RouteEmployeesIdf, id)
	statusCode, _, err := c.doRequest(ctx, uri, http.MethodDelete, nil,
		http.StatusNoContent, http.StatusNotFound)
	if err != nil {
		return false, err
	}
	return statusCode != http.StatusNotFound, nil
}

func (c *client) CacheClear(ctx context.Context) error {
	if _, _, err := c.doRequest(ctx, c.address+data.RouteCache, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}

func (c *client) CacheCountersRead(ctx context.Context) (*data.CacheCounters, error) {
	_, bytes, err := c.doRequest(ctx, c.address+data.RouteCacheCounters, http.MethodGet, nil)
	if err != nil {
		return nil, err
	}
	response := &data.CacheCounters{}
	if err := json.Unmarshal(bytes, response); err != nil {
		return nil, errors.Wrap(err, "failed to decode cache counters")
	}
	return response, nil
}

func (c *client) CacheCountersClear(ctx context.Context) error {
	if _, _, err := c.doRequest(ctx, c.address+data.RouteCacheCounters, http.MethodDelete, nil); err != nil {
		return err
	}
	return nil
}
