package repository

import (
	"context"
	"sync"

	"github.com/antonio-alexander/go-employees/internal"
	"github.com/antonio-alexander/go-employees/internal/data"
)

type memory struct {
	sync.RWMutex
	employees map[int64]data.Employee
	order     []int64
	lastId    int64
}

// NewMemory creates a repository that only lives as long as the process,
// employees are listed in insertion order
func NewMemory(employees ...data.Employee) interface {
	internal.Configurer
	internal.Opener
	internal.Pinger
	Repository
} {
	m := &memory{employees: make(map[int64]data.Employee)}
	for _, employee := range employees {
		m.save(employee)
	}
	return m
}

func (m *memory) save(employee data.Employee) data.Employee {
	if employee.Id == 0 {
		employee.Id = m.lastId + 1
	}
	if employee.Id > m.lastId {
		m.lastId = employee.Id
	}
	if _, ok := m.employees[employee.Id]; !ok {
		m.order = append(m.order, employee.Id)
	}
	m.employees[employee.Id] = employee
	return employee
}

func (m *memory) Configure(envs map[string]string) error {
	return nil
}

func (m *memory) Open(ctx context.Context) error {
	return nil
}

func (m *memory) Close(ctx context.Context) error {
	return nil
}

func (m *memory) Ping(ctx context.Context) error {
	return nil
}

func (m *memory) FindAll(ctx context.Context) ([]data.Employee, error) {
	m.RLock()
	defer m.RUnlock()

	employees := make([]data.Employee, 0, len(m.order))
	for _, id := range m.order {
		employees = append(employees, m.employees[id])
	}
	return employees, nil
}

func (m *memory) FindById(ctx context.Context, id int64) (data.Employee, bool, error) {
	m.RLock()
	defer m.RUnlock()

	employee, ok := m.employees[id]
	return employee, ok, nil
}

func (m *memory) ExistsById(ctx context.Context, id int64) (bool, error) {
	m.RLock()
	defer m.RUnlock()

	_, ok := m.employees[id]
	return ok, nil
}

func (m *memory) Save(ctx context.Context, employee data.Employee) (data.Employee, error) {
	m.Lock()
	defer m.Unlock()

	return m.save(employee), nil
}

func (m *memory) DeleteById(ctx context.Context, id int64) error {
	m.Lock()
	defer m.Unlock()

	if _, ok := m.employees[id]; !ok {
		return nil
	}
	delete(m.employees, id)
	for i, orderedId := range m.order {
		if orderedId == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}
