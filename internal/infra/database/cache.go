package database

import (
	"github.com/bradfitz/gomemcache/memcache"
	"github.com/redis/go-redis/v9"
)

// NewRedis opens the client backing the verification lookup cache.
func NewRedis(addr string, password string, db int) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
}

// NewMemcached opens the client backing the rendered-artifact cache.
func NewMemcached(server string) *memcache.Client {
	return memcache.New(server)
}
