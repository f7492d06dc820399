package store

import (
	"context"
	"slices"
	"sync"

	"pharmstock/m/domain"
)

// NewMemory returns a Backend kept entirely in process memory. It is used by tests
// and by `DATABASE_DRIVER=memory`.
func NewMemory(n *Notifier) Backend {
	if n == nil {
		n = NewNotifier()
	}
	return Backend{
		Items:      &memItems{n: n, scopes: make(map[string][]domain.Item)},
		Categories: &memCategories{n: n},
		Activities: &memActivities{n: n},
		Shortages:  &memShortages{n: n},
		Notifier:   n,
	}
}

type memItems struct {
	mu     sync.Mutex
	n      *Notifier
	scopes map[string][]domain.Item
}

func (m *memItems) List(_ context.Context, scope domain.Scope) ([]domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.scopes[scope.Path()]), nil
}

func (m *memItems) Get(_ context.Context, scope domain.Scope, id string) (domain.Item, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := m.scopes[scope.Path()]
	if i := indexItem(items, id); i >= 0 {
		return items[i], nil
	}
	return domain.Item{}, ErrNotFound
}

func (m *memItems) Push(_ context.Context, scope domain.Scope, item domain.Item) (domain.Item, error) {
	item.ID = NewKey()
	item.Seq = nextSeq()
	m.mu.Lock()
	m.scopes[scope.Path()] = append(m.scopes[scope.Path()], item)
	m.mu.Unlock()
	m.n.Publish(scope.Path())
	return item, nil
}

func (m *memItems) Set(_ context.Context, scope domain.Scope, item domain.Item) error {
	m.mu.Lock()
	items := m.scopes[scope.Path()]
	if i := indexItem(items, item.ID); i >= 0 {
		item.Seq = items[i].Seq
		items[i] = item
	} else {
		item.Seq = nextSeq()
		m.scopes[scope.Path()] = append(items, item)
	}
	m.mu.Unlock()
	m.n.Publish(scope.Path())
	return nil
}

func (m *memItems) Update(_ context.Context, scope domain.Scope, id string, patch domain.ItemPatch) error {
	m.mu.Lock()
	items := m.scopes[scope.Path()]
	i := indexItem(items, id)
	if i < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	if patch.Quantity != nil {
		items[i].Quantity = *patch.Quantity
	}
	m.mu.Unlock()
	m.n.Publish(scope.Path())
	return nil
}

func (m *memItems) Remove(_ context.Context, scope domain.Scope, id string) error {
	m.mu.Lock()
	items := m.scopes[scope.Path()]
	i := indexItem(items, id)
	if i < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.scopes[scope.Path()] = slices.Delete(items, i, i+1)
	m.mu.Unlock()
	m.n.Publish(scope.Path())
	return nil
}

func (m *memItems) RemoveScope(_ context.Context, scope domain.Scope) error {
	m.mu.Lock()
	delete(m.scopes, scope.Path())
	m.mu.Unlock()
	m.n.Publish(scope.Path())
	return nil
}

func indexItem(items []domain.Item, id string) int {
	return slices.IndexFunc(items, func(it domain.Item) bool { return it.ID == id })
}

type memCategories struct {
	mu   sync.Mutex
	n    *Notifier
	list []domain.Category
}

func (m *memCategories) List(context.Context) ([]domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.list), nil
}

func (m *memCategories) Get(_ context.Context, id string) (domain.Category, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.list {
		if c.ID == id {
			return c, nil
		}
	}
	return domain.Category{}, ErrNotFound
}

func (m *memCategories) Push(_ context.Context, c domain.Category) (domain.Category, error) {
	c.ID = NewKey()
	m.mu.Lock()
	m.list = append(m.list, c)
	m.mu.Unlock()
	m.n.Publish(domain.CategoriesPath)
	return c, nil
}

func (m *memCategories) Set(_ context.Context, c domain.Category) error {
	m.mu.Lock()
	i := slices.IndexFunc(m.list, func(x domain.Category) bool { return x.ID == c.ID })
	if i >= 0 {
		m.list[i] = c
	} else {
		m.list = append(m.list, c)
	}
	m.mu.Unlock()
	m.n.Publish(domain.CategoriesPath)
	return nil
}

func (m *memCategories) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	i := slices.IndexFunc(m.list, func(x domain.Category) bool { return x.ID == id })
	if i < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.list = slices.Delete(m.list, i, i+1)
	m.mu.Unlock()
	m.n.Publish(domain.CategoriesPath)
	return nil
}

type memActivities struct {
	mu   sync.Mutex
	n    *Notifier
	list []domain.Activity
}

func (m *memActivities) Append(_ context.Context, a domain.Activity) (domain.Activity, error) {
	a.ID = NewKey()
	m.mu.Lock()
	m.list = append(m.list, a)
	m.mu.Unlock()
	m.n.Publish(domain.ActivitiesPath)
	return a, nil
}

func (m *memActivities) List(context.Context) ([]domain.Activity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.list), nil
}

type memShortages struct {
	mu   sync.Mutex
	n    *Notifier
	list []domain.Shortage
}

func (m *memShortages) List(context.Context) ([]domain.Shortage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.list), nil
}

func (m *memShortages) Get(_ context.Context, id string) (domain.Shortage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.list {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Shortage{}, ErrNotFound
}

func (m *memShortages) Push(_ context.Context, s domain.Shortage) (domain.Shortage, error) {
	s.ID = NewKey()
	m.mu.Lock()
	m.list = append(m.list, s)
	m.mu.Unlock()
	m.n.Publish(domain.ShortagesPath)
	return s, nil
}

func (m *memShortages) Remove(_ context.Context, id string) error {
	m.mu.Lock()
	i := slices.IndexFunc(m.list, func(x domain.Shortage) bool { return x.ID == id })
	if i < 0 {
		m.mu.Unlock()
		return ErrNotFound
	}
	m.list = slices.Delete(m.list, i, i+1)
	m.mu.Unlock()
	m.n.Publish(domain.ShortagesPath)
	return nil
}
