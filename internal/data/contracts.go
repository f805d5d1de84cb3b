package data

const (
	RouteApi            string = "/api"
	RouteEmployees      string = RouteApi + "/employees"
	RouteEmployeesId    string = RouteEmployees + "/{" + PathId + "}"
	RouteEmployeesIdf   string = RouteEmployees + "/%d"
	RouteCache          string = RouteApi + "/cache"
	RouteCacheCounters  string = RouteCache + "/counters"
	RouteMetrics        string = "/metrics"
	HeaderCorrelationId string = "Correlation-Id"
)

const PathId string = "id"

type Error struct {
	Error string `json:"error"`
}
