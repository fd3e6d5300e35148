// Package di provides a small type-safe dependency injection container
// used to wire bounded context modules together.
package di

import (
	"fmt"
	"sync"
)

// ServiceRegistry is the read side of the container. Modules resolve
// their dependencies through it.
type ServiceRegistry interface {
	// Get returns the service registered under name, resolving its
	// factory on first use. It panics when the name is unknown.
	Get(name string) any
}

// Container is the write side of the container.
type Container interface {
	ServiceRegistry
	// Register binds an already constructed value under name.
	Register(name string, value any)
	// RegisterFactory binds a lazy singleton factory under name.
	RegisterFactory(name string, factory func(ServiceRegistry) any)
}

type entry struct {
	once    sync.Once
	value   any
	factory func(ServiceRegistry) any
}

type container struct {
	mu      sync.RWMutex
	entries map[string]*entry
}

// NewContainer creates an empty container.
func NewContainer() Container {
	return &container{entries: make(map[string]*entry)}
}

func (c *container) Register(name string, value any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := &entry{value: value}
	e.once.Do(func() {})
	c.entries[name] = e
}

func (c *container) RegisterFactory(name string, factory func(ServiceRegistry) any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[name] = &entry{factory: factory}
}

func (c *container) Get(name string) any {
	c.mu.RLock()
	e, ok := c.entries[name]
	c.mu.RUnlock()
	if !ok {
		panic(fmt.Sprintf("di: service %q not registered", name))
	}
	e.once.Do(func() {
		e.value = e.factory(c)
		e.factory = nil
	})
	return e.value
}

// Token is a typed handle to a registered service.
type Token[T any] struct {
	name string
}

// NewToken declares a token. The name must be unique across modules;
// convention is "<module>.<Service>" for public services and
// "<module>:<dependency>" for private ones.
func NewToken[T any](name string) Token[T] {
	return Token[T]{name: name}
}

// Name returns the registration name behind the token.
func (t Token[T]) Name() string { return t.name }

// RegisterToken binds a lazy singleton factory to a token.
func RegisterToken[T any](c Container, tok Token[T], factory func(ServiceRegistry) T) {
	c.RegisterFactory(tok.name, func(sr ServiceRegistry) any {
		return factory(sr)
	})
}

// GetToken resolves a token. It panics when the registered value does
// not match the token's type.
func GetToken[T any](sr ServiceRegistry, tok Token[T]) T {
	raw := sr.Get(tok.name)
	if raw == nil {
		var zero T
		return zero
	}
	v, ok := raw.(T)
	if !ok {
		panic(fmt.Sprintf("di: service %q has unexpected type %T", tok.name, raw))
	}
	return v
}
