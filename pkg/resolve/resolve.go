// Package resolve enriches scan results with hostnames. Lookups are
// reverse DNS with a short timeout, cached per address so repeated runs on
// the same segment stay cheap. Failures degrade to an empty hostname and
// never propagate.
package resolve

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/projectdiscovery/gcache"
)

const (
	// DefaultTimeout bounds one reverse lookup.
	DefaultTimeout = 2 * time.Second

	cacheSize       = 1024
	cacheExpiration = 10 * time.Minute
)

// LookupFunc performs a reverse lookup for addr. It matches the signature
// of net.Resolver.LookupAddr.
type LookupFunc func(ctx context.Context, addr string) ([]string, error)

// Resolver resolves optional hostnames for addresses.
type Resolver struct {
	cache   gcache.Cache[string, string]
	lookup  LookupFunc
	timeout time.Duration
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLookup replaces the reverse lookup implementation.
func WithLookup(fn LookupFunc) Option {
	return func(r *Resolver) {
		r.lookup = fn
	}
}

// WithTimeout sets the per-lookup timeout.
func WithTimeout(d time.Duration) Option {
	return func(r *Resolver) {
		r.timeout = d
	}
}

// NewResolver returns a Resolver backed by the system resolver and an LRU
// cache with expiration.
func NewResolver(opts ...Option) *Resolver {
	r := &Resolver{
		cache: gcache.New[string, string](cacheSize).
			LRU().
			Expiration(cacheExpiration).
			Build(),
		timeout: DefaultTimeout,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.lookup == nil {
		r.lookup = defaultLookup
	}
	return r
}

func defaultLookup(ctx context.Context, addr string) ([]string, error) {
	return (&net.Resolver{}).LookupAddr(ctx, addr)
}

// Resolve returns the hostname for addr, or an empty string when none is
// known. The result, including the empty one, is cached.
func (r *Resolver) Resolve(ctx context.Context, addr string) string {
	if hostname, err := r.cache.Get(addr); err == nil {
		return hostname
	}

	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var hostname string
	if names, err := r.lookup(ctx, addr); err == nil && len(names) > 0 {
		hostname = strings.TrimSuffix(names[0], ".")
	}

	_ = r.cache.Set(addr, hostname)
	return hostname
}
