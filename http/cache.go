package http

import (
	"net/http"
	"sync"
	"time"
)

// pageCache is a process-wide response cache for anonymous GET pages. Entries
// are keyed by the request uri (including the query string, so every page of
// a listing caches separately) and are valid for a fixed time window. The
// index page uses it with a 20 second window, serving slightly stale "recent
// posts" in exchange for not hitting the database on every request.
type pageCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
}

type cacheEntry struct {
	status  int
	body    []byte
	expires time.Time
}

func newPageCache() *pageCache {
	return &pageCache{
		entries: make(map[string]cacheEntry),
	}
}

// cached wraps a GET handler with the cache for the given time window.
func (c *pageCache) cached(ttl time.Duration, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := r.URL.RequestURI()
		now := time.Now()

		c.mu.Lock()
		entry, ok := c.entries[key]
		if ok && now.After(entry.expires) {
			delete(c.entries, key)
			ok = false
		}
		c.mu.Unlock()
		if ok {
			w.WriteHeader(entry.status)
			w.Write(entry.body)
			return
		}

		rec := &recordingWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		// Only successful responses are worth keeping. Expired entries are
		// swept on every insert, so the map never holds more than the keys
		// requested within the current window.
		if rec.status == http.StatusOK {
			c.mu.Lock()
			for k, e := range c.entries {
				if now.After(e.expires) {
					delete(c.entries, k)
				}
			}
			c.entries[key] = cacheEntry{
				status:  rec.status,
				body:    rec.body,
				expires: now.Add(ttl),
			}
			c.mu.Unlock()
		}
	}
}

// recordingWriter passes the response through to the client while keeping
// a copy of the status and body for the cache.
type recordingWriter struct {
	http.ResponseWriter
	status int
	body   []byte
}

func (rw *recordingWriter) WriteHeader(status int) {
	rw.status = status
	rw.ResponseWriter.WriteHeader(status)
}

func (rw *recordingWriter) Write(b []byte) (int, error) {
	rw.body = append(rw.body, b...)
	return rw.ResponseWriter.Write(b)
}
