package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/cache"
	"github.com/antonio-alexander/go-employees/internal/data"
	"github.com/antonio-alexander/go-employees/internal/logic"
	"github.com/antonio-alexander/go-employees/internal/metrics"
	"github.com/antonio-alexander/go-employees/internal/utilities"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
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

type service struct {
	sync.RWMutex
	sync.WaitGroup
	config struct {
		address          string
		port             string
		shutdownTimeout  time.Duration
		allowedOrigins   []string
		allowedMethods   []string
		allowedHeaders   []string
		allowCredentials bool
		corsDisabled     bool
		corsDebug        bool
	}
	ctx     context.Context
	cancel  context.CancelFunc
	handler atomic.Pointer[http.Handler]
	*mux.Router
	*http.Server
	cache    internal.Clearer
	pinger   internal.Pinger
	gatherer prometheus.Gatherer
	metrics  *metrics.Metrics
	utilities.Logger
	utilities.Counter
	logic.Logic
}

// NewService creates the http front end for the employee logic, routes are
// available (via ServeHTTP) as soon as it's created; Open starts listening
func NewService(parameters ...any) interface {
	internal.Configurer
	internal.Opener
	http.Handler
} {
	router := mux.NewRouter()
	s := &service{
		Router: router,
		Logger: utilities.NopLogger{},
	}
	s.setHandler(router)
	s.config.shutdownTimeout = 30 * time.Second
	s.Server = &http.Server{Handler: s}
	for _, parameter := range parameters {
		switch p := parameter.(type) {
		case logic.Logic:
			s.Logic = p
		case interface {
			cache.Cache
			internal.Clearer
		}:
			s.cache = p
		case utilities.Counter:
			s.Counter = p
		case *metrics.Metrics:
			s.metrics = p
		case prometheus.Gatherer:
			s.gatherer = p
		case internal.Pinger:
			s.pinger = p
		case utilities.Logger:
			s.Logger = p
		}
	}
	s.buildRoutes()
	return s
}

func (s *service) launchServer() error {
	started := make(chan struct{})
	chErr := make(chan error, 1)
	s.Add(1)
	go func() {
		defer s.WaitGroup.Done()
		defer close(chErr)

		close(started)
		if err := s.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			chErr <- err
		}
	}()
	<-started
	select {
	case err := <-chErr:
		//KIM: here we're accounting for a situation where the server closes unexexpectedly
		// but quickly (within a second of starting); this allows us to respond to errors such as
		// the port being already used
		return err
	case <-time.After(time.Second):
		s.Info(s.ctx, "started server: %s", s.Server.Addr)
		return nil
	}
}

// instrument attaches a correlation id to the request context and records
// the outcome of the request
func (s *service) instrument(route string, handlerFx http.HandlerFunc) http.HandlerFunc {
	return func(writer http.ResponseWriter, request *http.Request) {
		tStart := time.Now()
		correlationId := getCorrelationId(request)
		ctx := internal.CtxWithCorrelationId(request.Context(), correlationId)
		writer.Header().Set(data.HeaderCorrelationId, correlationId)
		recorder := &statusRecorder{ResponseWriter: writer, statusCode: http.StatusOK}
		handlerFx(recorder, request.WithContext(ctx))
		elapsed := time.Since(tStart)
		if s.metrics != nil {
			s.metrics.Requests.WithLabelValues(route, strconv.Itoa(recorder.statusCode)).Inc()
			s.metrics.RequestDuration.WithLabelValues(route).Observe(elapsed.Seconds())
		}
		s.Trace(ctx, "executed %s (%d) in %v", route, recorder.statusCode, elapsed)
	}
}

func (s *service) endpointDefault(writer http.ResponseWriter, request *http.Request) {
	fmt.Fprintf(writer,
		"go-employees\n"+
			"Version: \"%s\"\n"+
			"Git Commit: \"%s\"\n"+
			"Git Branch: \"%s\"\n",
		Version, GitCommit, GitBranch)
}

func (s *service) endpointHealth(writer http.ResponseWriter, request *http.Request) {
	status := map[string]string{"database": "ok"}
	statusCode := http.StatusOK
	if s.pinger != nil {
		if err := s.pinger.Ping(request.Context()); err != nil {
			s.Error(request.Context(), "health check failed: database ping: %s", err)
			status["database"] = "unavailable"
			statusCode = http.StatusServiceUnavailable
		}
	}
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(statusCode)
	if err := json.NewEncoder(writer).Encode(status); err != nil {
		s.Error(request.Context(), "failed to write health check response: %s", err)
	}
}

func (s *service) endpointEmployeesRead(writer http.ResponseWriter, request *http.Request) {
	employees, err := s.EmployeesRead(request.Context())
	if err != nil {
		s.Error(request.Context(), "error while reading employees: %s", err)
		handleResponse(writer, http.StatusInternalServerError, err)
		return
	}
	handleResponse(writer, http.StatusOK, nil, employees)
}

func (s *service) endpointEmployeeCreate(writer http.ResponseWriter, request *http.Request) {
	employee, err := decodeEmployee(request)
	if err != nil {
		handleResponse(writer, http.StatusBadRequest, err)
		return
	}
	employee, err = s.EmployeeCreate(request.Context(), employee)
	if err != nil {
		s.Error(request.Context(), "error while creating employee: %s", err)
		handleResponse(writer, http.StatusInternalServerError, err)
		return
	}
	handleResponse(writer, http.StatusCreated, nil, employee)
	s.Debug(request.Context(), "created employee: %d", employee.Id)
}

func (s *service) endpointEmployeeRead(writer http.ResponseWriter, request *http.Request) {
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, http.StatusBadRequest, err)
		return
	}
	employee, found, err := s.EmployeeRead(request.Context(), id)
	if err != nil {
		s.Error(request.Context(), "error while reading employee (%d): %s", id, err)
		handleResponse(writer, http.StatusInternalServerError, err)
		return
	}
	if !found {
		handleResponse(writer, http.StatusNotFound, nil)
		return
	}
	handleResponse(writer, http.StatusOK, nil, employee)
}

func (s *service) endpointEmployeeUpdate(writer http.ResponseWriter, request *http.Request) {
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, http.StatusBadRequest, err)
		return
	}
	employeeDetails, err := decodeEmployee(request)
	if err != nil {
		handleResponse(writer, http.StatusBadRequest, err)
		return
	}
	employee, found, err := s.EmployeeUpdate(request.Context(), id, employeeDetails)
	if err != nil {
		s.Error(request.Context(), "error while updating employee (%d): %s", id, err)
		handleResponse(writer, http.StatusInternalServerError, err)
		return
	}
	if !found {
		handleResponse(writer, http.StatusNotFound, nil)
		return
	}
	handleResponse(writer, http.StatusOK, nil, employee)
	s.Debug(request.Context(), "updated employee: %d", id)
}

func (s *service) endpointEmployeeDelete(writer http.ResponseWriter, request *http.Request) {
	id, err := idFromPath(mux.Vars(request))
	if err != nil {
		handleResponse(writer, http.StatusBadRequest, err)
		return
	}
	deleted, err := s.EmployeeDelete(request.Context(), id)
	if err != nil {
		s.Error(request.Context(), "error while deleting employee (%d): %s", id, err)
		handleResponse(writer, http.StatusInternalServerError, err)
		return
	}
	if !deleted {
		handleResponse(writer, http.StatusNotFound, nil)
		return
	}
	handleResponse(writer, http.StatusNoContent, nil)
	s.Debug(request.Context(), "deleted employee: %d", id)
}

func (s *service) endpointCacheClear(writer http.ResponseWriter, request *http.Request) {
	if s.cache != nil {
		if err := s.cache.Clear(request.Context()); err != nil {
			handleResponse(writer, http.StatusInternalServerError, err)
			return
		}
	}
	handleResponse(writer, http.StatusNoContent, nil)
}

func (s *service) endpointCacheCountersRead(writer http.ResponseWriter, _ *http.Request) {
	if s.Counter == nil {
		handleResponse(writer, http.StatusOK, nil, &data.CacheCounters{})
		return
	}
	handleResponse(writer, http.StatusOK, nil, s.Counter.ReadAll())
}

func (s *service) endpointCacheCountersClear(writer http.ResponseWriter, _ *http.Request) {
	if s.Counter != nil {
		s.Counter.Reset()
	}
	handleResponse(writer, http.StatusNoContent, nil)
}

func methods(handlers map[string]http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		handlerFx, ok := handlers[r.Method]
		if !ok {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		handlerFx(w, r)
	}
}

func (s *service) buildRoutes() {
	s.Router.HandleFunc("/", s.endpointDefault)
	s.Router.HandleFunc("/healthz", s.endpointHealth)
	if s.gatherer != nil {
		s.Router.Handle(data.RouteMetrics, promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}
	s.Router.HandleFunc(data.RouteEmployees, methods(map[string]http.HandlerFunc{
		http.MethodGet:  s.instrument("employees_read", s.endpointEmployeesRead),
		http.MethodPost: s.instrument("employee_create", s.endpointEmployeeCreate),
	}))
	s.Router.HandleFunc(data.RouteEmployeesId, methods(map[string]http.HandlerFunc{
		http.MethodGet:    s.instrument("employee_read", s.endpointEmployeeRead),
		http.MethodPut:    s.instrument("employee_update", s.endpointEmployeeUpdate),
		http.MethodDelete: s.instrument("employee_delete", s.endpointEmployeeDelete),
	}))
	s.Router.HandleFunc(data.RouteCache, methods(map[string]http.HandlerFunc{
		http.MethodDelete: s.instrument("cache_clear", s.endpointCacheClear),
	}))
	s.Router.HandleFunc(data.RouteCacheCounters, methods(map[string]http.HandlerFunc{
		http.MethodGet:    s.instrument("cache_counters_read", s.endpointCacheCountersRead),
		http.MethodDelete: s.instrument("cache_counters_clear", s.endpointCacheCountersClear),
	}))
}

func (s *service) setHandler(handler http.Handler) {
	s.handler.Store(&handler)
}

// ServeHTTP doesn't take the service lock, Open and Close hold it while
// the server starts and drains
func (s *service) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	(*s.handler.Load()).ServeHTTP(writer, request)
}

func (s *service) Configure(envs map[string]string) error {
	s.Lock()
	defer s.Unlock()

	if address, ok := envs["SERVICE_ADDRESS"]; ok {
		s.config.address = address
	}
	if port, ok := envs["SERVICE_PORT"]; ok {
		s.config.port = port
	}
	if shutdownTimeoutString, ok := envs["SERVICE_SHUTDOWN_TIMEOUT"]; ok {
		if shutdownTimeoutInt, err := strconv.Atoi(shutdownTimeoutString); err == nil {
			if timeout := time.Duration(shutdownTimeoutInt) * time.Second; timeout > 0 {
				s.config.shutdownTimeout = timeout
			}
		}
	}
	if allowCredentialsString, ok := envs["SERVICE_CORS_ALLOW_CREDENTIALS"]; ok {
		if allowCredentials, err := strconv.ParseBool(allowCredentialsString); err == nil {
			s.config.allowCredentials = allowCredentials
		}
	}
	if allowedOrigins := envs["SERVICE_CORS_ALLOWED_ORIGINS"]; allowedOrigins != "" {
		s.config.allowedOrigins = strings.Split(allowedOrigins, ",")
	}
	if allowedMethods := envs["SERVICE_CORS_ALLOWED_METHODS"]; allowedMethods != "" {
		s.config.allowedMethods = strings.Split(allowedMethods, ",")
	}
	if allowedHeaders := envs["SERVICE_CORS_ALLOWED_HEADERS"]; allowedHeaders != "" {
		s.config.allowedHeaders = strings.Split(allowedHeaders, ",")
	}
	if corsDisabledString, ok := envs["SERVICE_CORS_DISABLED"]; ok {
		if corsDisabled, err := strconv.ParseBool(corsDisabledString); err == nil {
			s.config.corsDisabled = corsDisabled
		}
	}
	if corsDebug, ok := envs["SERVICE_CORS_DEBUG"]; ok {
		if corsDebug, err := strconv.ParseBool(corsDebug); err == nil {
			s.config.corsDebug = corsDebug
		}
	}
	var handler http.Handler = s.Router
	if !s.config.corsDisabled {
		handler = cors.New(cors.Options{
			AllowedOrigins:   s.config.allowedOrigins,
			AllowCredentials: s.config.allowCredentials,
			AllowedMethods:   s.config.allowedMethods,
			AllowedHeaders:   s.config.allowedHeaders,
			Debug:            s.config.corsDebug,
		}).Handler(s.Router)
	}
	s.setHandler(handler)
	return nil
}

func (s *service) Open(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	s.ctx, s.cancel = context.WithCancel(context.Background())
	s.Server.Addr = net.JoinHostPort(s.config.address, s.config.port)
	if err := s.launchServer(); err != nil {
		s.cancel()
		return err
	}
	return nil
}

func (s *service) Close(ctx context.Context) error {
	s.Lock()
	defer s.Unlock()

	if s.cancel == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.config.shutdownTimeout)
	defer cancel()
	if err := s.Server.Shutdown(ctx); err != nil {
		s.Error(ctx, "error while shutting down the server: %s", err)
	}
	s.cancel()
	s.Wait()
	s.cancel = nil
	return nil
}
