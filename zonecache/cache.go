// Package zonecache loads transition tables by zone identifier and keeps a
// bounded number of them in memory.
//
// A Cache reads TZif bytes from a Source, builds a *zone.Table and keeps it
// in a least-recently-used set. Tables are immutable, so a table returned by
// the cache stays usable after it has been evicted.
package zonecache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ngrash/tzresolve/internal/logging"
	"github.com/ngrash/tzresolve/posixtz"
	"github.com/ngrash/tzresolve/zone"
)

// DefaultSize is the number of tables a Cache keeps when no size is given.
const DefaultSize = 128

// ErrUnknownZone is returned for identifiers that name neither a zone file
// nor a valid POSIX TZ rule.
var ErrUnknownZone = errors.New("unknown time zone")

// Cache is a bounded set of parsed zones. The zero value is not usable; use
// New.
type Cache struct {
	src Source
	log *slog.Logger

	mu     sync.Mutex
	tables *lru.Cache[string, *zone.Table]
}

// New returns a cache holding at most size tables read from src. If size is
// not positive, DefaultSize is used. A nil log discards log output.
func New(src Source, size int, log *slog.Logger) (*Cache, error) {
	if size <= 0 {
		size = DefaultSize
	}
	tables, err := lru.New[string, *zone.Table](size)
	if err != nil {
		return nil, fmt.Errorf("create cache: %w", err)
	}
	if log == nil {
		log = logging.Discard()
	}
	return &Cache{
		src:    src,
		log:    log.With(slog.String("component", "zonecache")),
		tables: tables,
	}, nil
}

// Get returns the cached table for id.
func (c *Cache) Get(id string) (*zone.Table, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tables.Get(id)
}

// Put adds t to the cache under id, evicting the least recently used table
// if the cache is full.
func (c *Cache) Put(id string, t *zone.Table) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables.Add(id, t)
}

// Remove drops the table for id.
func (c *Cache) Remove(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables.Remove(id)
}

// Purge drops all tables.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.tables.Purge()
}

// Len returns the number of cached tables.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tables.Len()
}

// Zone returns the table for id, reading and parsing it on a miss. The
// empty identifier and "UTC" name Coordinated Universal Time. An identifier
// with no zone file is accepted if it is a POSIX TZ rule with an offset.
//
// Concurrent calls for the same id parse the zone once.
func (c *Cache) Zone(id string) (*zone.Table, error) {
	if id == "" || id == "UTC" {
		return zone.UTC(), nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if t, ok := c.tables.Get(id); ok {
		return t, nil
	}
	c.log.LogAttrs(context.Background(), slog.LevelDebug, "cache miss", slog.String("zone", id))

	t, err := c.build(id)
	if err != nil {
		return nil, err
	}
	c.tables.Add(id, t)
	return t, nil
}

func (c *Cache) build(id string) (*zone.Table, error) {
	b, err := c.src.ReadZone(id)
	switch {
	case err == nil:
		return zone.Parse(id, b)
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read zone %q: %w", id, err)
	case posixtz.Validate(id, true).Valid:
		return zone.FromPosix(id, id)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownZone, id)
	}
}

// Load is like Zone but never fails. If id cannot be loaded, the error is
// logged and a UTC table carrying id is returned.
func (c *Cache) Load(id string) *zone.Table {
	t, err := c.Zone(id)
	if err != nil {
		c.log.LogAttrs(context.Background(), slog.LevelWarn, "falling back to UTC",
			slog.String("zone", id), slog.Any("error", err))
		return zone.UTC().WithID(id)
	}
	return t
}
