package service

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
)

var errBadRequest = errors.New("bad request")

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (s *statusRecorder) WriteHeader(statusCode int) {
	s.statusCode = statusCode
	s.ResponseWriter.WriteHeader(statusCode)
}

func getCorrelationId(request *http.Request) string {
	if correlationId := request.Header.Get(data.HeaderCorrelationId); correlationId != "" {
		return correlationId
	}
	return internal.GenerateId()
}

func idFromPath(pathVariables map[string]string) (int64, error) {
	id, err := strconv.ParseInt(pathVariables[data.PathId], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid id %q", errBadRequest, pathVariables[data.PathId])
	}
	return id, nil
}

func decodeEmployee(request *http.Request) (data.Employee, error) {
	var employee data.Employee

	defer request.Body.Close()
	if err := json.NewDecoder(request.Body).Decode(&employee); err != nil {
		return data.Employee{}, fmt.Errorf("%w: %s", errBadRequest, err)
	}
	return employee, nil
}

func errorStatusCode(err error) int {
	switch {
	default:
		return http.StatusInternalServerError
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, data.ErrMutateDisabled):
		return http.StatusForbidden
	}
}

// handleResponse writes item as json with the given status code; if err is
// non-nil, the error is written instead with a status code derived from it
func handleResponse(writer http.ResponseWriter, statusCode int, err error, items ...any) {
	var bytes []byte

	if err == nil {
		switch {
		default:
			bytes, err = json.Marshal(items[0])
		case len(items) <= 0:
			writer.WriteHeader(statusCode)
			return
		}
	}
	if err != nil {
		writer.Header().Set("Content-Type", "application/json; charset=utf-8")
		writer.WriteHeader(errorStatusCode(err))
		bytes, err = json.Marshal(&data.Error{Error: err.Error()})
		if err != nil {
			fmt.Printf("error handling response: %s\n", err)
			return
		}
		if _, err := writer.Write(bytes); err != nil {
			fmt.Printf("error handling response: %s\n", err)
		}
		return
	}
	writer.Header().Set("Content-Type", "application/json; charset=utf-8")
	writer.WriteHeader(statusCode)
	if _, err := writer.Write(bytes); err != nil {
		fmt.Printf("error handling response: %s\n", err)
	}
}
