package server

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/FlavioCFOliveira/GoBANN/internal/net"
)

// model is one hosted network. mu serializes training, inference and
// weight access; handlers only TryLock it so a busy model answers 409.
type model struct {
	id  string
	net *net.Network
	mu  sync.Mutex
	hub *hub
}

// registry holds the hosted models by id.
type registry struct {
	mu     sync.RWMutex
	models map[string]*model
}

func newRegistry() *registry {
	return &registry{models: make(map[string]*model)}
}

func (r *registry) add(n *net.Network) *model {
	m := &model{id: uuid.New().String(), net: n, hub: newHub()}
	r.mu.Lock()
	r.models[m.id] = m
	r.mu.Unlock()
	return m
}

func (r *registry) get(id string) (*model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[id]
	return m, ok
}

func (r *registry) remove(id string) {
	r.mu.Lock()
	delete(r.models, id)
	r.mu.Unlock()
}

// list returns the models ordered by name, then id.
func (r *registry) list() []*model {
	r.mu.RLock()
	ms := make([]*model, 0, len(r.models))
	for _, m := range r.models {
		ms = append(ms, m)
	}
	r.mu.RUnlock()

	sort.Slice(ms, func(i, j int) bool {
		if ms[i].net.Name != ms[j].net.Name {
			return ms[i].net.Name < ms[j].net.Name
		}
		return ms[i].id < ms[j].id
	})
	return ms
}

func (r *registry) closeAll() {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, m := range r.models {
		m.hub.close()
	}
}
