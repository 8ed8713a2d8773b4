// Package cache provee una caché en memoria acotada en tamaño y con expiración,
// pensada para resultados de búsquedas remotas que cambian poco.
package cache

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Lookup caché LRU con TTL. Es segura para uso concurrente.
type Lookup[K comparable, V any] struct {
	lru *expirable.LRU[K, V]
}

// NewLookup crea una caché de como mucho size entradas que expiran tras ttl.
// size <= 0 usa 256; ttl <= 0 usa una hora.
func NewLookup[K comparable, V any](size int, ttl time.Duration) *Lookup[K, V] {
	if size <= 0 {
		size = 256
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Lookup[K, V]{lru: expirable.NewLRU[K, V](size, nil, ttl)}
}

// Get devuelve el valor si existe y no expiró.
func (c *Lookup[K, V]) Get(key K) (V, bool) {
	return c.lru.Get(key)
}

// Set guarda o reemplaza el valor; si la caché está llena se desaloja el menos usado.
func (c *Lookup[K, V]) Set(key K, value V) {
	c.lru.Add(key, value)
}

// Len entradas vigentes.
func (c *Lookup[K, V]) Len() int {
	return c.lru.Len()
}
