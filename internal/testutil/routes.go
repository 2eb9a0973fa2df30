package testutil

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"github.com/udisondev/navsim/internal/model"
)

// MockRouteStore - in-memory хранилище маршрутов для unit тестов.
// Не требует реального PostgreSQL.
type MockRouteStore struct {
	mu     sync.RWMutex
	routes map[string]*model.Route
	err    error
}

// NewMockRouteStore создаёт хранилище с заданными маршрутами.
func NewMockRouteStore(routes ...*model.Route) *MockRouteStore {
	m := &MockRouteStore{routes: make(map[string]*model.Route)}
	for _, r := range routes {
		m.routes[r.Name] = copyRoute(r)
	}
	return m
}

// FailWith заставляет все последующие вызовы возвращать err.
func (m *MockRouteStore) FailWith(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// LoadAll возвращает копии всех маршрутов, отсортированные по имени.
func (m *MockRouteStore) LoadAll(ctx context.Context) ([]*model.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	routes := make([]*model.Route, 0, len(m.routes))
	for _, r := range m.routes {
		routes = append(routes, copyRoute(r))
	}
	slices.SortFunc(routes, func(a, b *model.Route) int {
		return strings.Compare(a.Name, b.Name)
	})
	return routes, nil
}

// Load возвращает копию маршрута по имени.
func (m *MockRouteStore) Load(ctx context.Context, name string) (*model.Route, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}

	r, ok := m.routes[name]
	if !ok {
		return nil, fmt.Errorf("route %q not found", name)
	}
	return copyRoute(r), nil
}

// Save сохраняет копию маршрута, заменяя существующий.
func (m *MockRouteStore) Save(ctx context.Context, route *model.Route) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	m.routes[route.Name] = copyRoute(route)
	return nil
}

// Delete удаляет маршрут.
func (m *MockRouteStore) Delete(ctx context.Context, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}

	if _, ok := m.routes[name]; !ok {
		return fmt.Errorf("route %q not found", name)
	}
	delete(m.routes, name)
	return nil
}

// copyRoute возвращает независимую цепочку waypoints, чтобы тесты не делили состояние.
func copyRoute(r *model.Route) *model.Route {
	return model.NewRoute(r.Name, r.Mode, r.Points())
}
