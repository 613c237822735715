package identity

import (
	"strings"
	"sync"
)

// Key identifies a project inside a Map. Paths compare case-insensitively,
// the configuration qualifier compares exactly.
type Key struct {
	Path          string
	Configuration string
}

func (k Key) normalized() Key {
	return Key{Path: strings.ToLower(k.Path), Configuration: k.Configuration}
}

// Map is a concurrency-safe mapping from project keys to identities. A caller
// may pre-seed it and pass the same Map to successive loads to keep identities
// stable across them.
type Map struct {
	mu  sync.Mutex
	ids map[Key]ID
}

// NewMap creates an empty Map.
func NewMap() *Map {
	return &Map{ids: make(map[Key]ID)}
}

// Set associates key with id, replacing any previous association.
func (m *Map) Set(key Key, id ID) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	m.ids[key.normalized()] = id
}

// GetOrAdd returns the identity assigned to key, creating one labelled with
// key.Path when none exists. The check and insert are atomic, so concurrent
// callers for the same key always observe the same identity.
func (m *Map) GetOrAdd(key Key) (id ID, created bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.init()
	nk := key.normalized()
	if id, ok := m.ids[nk]; ok {
		return id, false
	}
	id = New(key.Path)
	m.ids[nk] = id
	return id, true
}

// Len returns the number of keys in the map.
func (m *Map) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.ids)
}

func (m *Map) init() {
	if m.ids == nil {
		m.ids = make(map[Key]ID)
	}
}
