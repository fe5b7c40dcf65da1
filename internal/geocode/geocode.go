package geocode

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/go-resty/resty/v2"
	gocache "github.com/patrickmn/go-cache"

	"github.com/ctleads/harvester/pkg/logger"
)

const nominatimURL = "https://nominatim.openstreetmap.org/search"

// Coords is one cached geocoding result.
type Coords struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Resolver looks up coordinates for property addresses. Results are cached
// in memory and mirrored to a JSON file: the file is loaded once at
// construction and rewritten after every new lookup, so a crashed run never
// loses resolved addresses.
type Resolver struct {
	mu        sync.Mutex
	cache     *gocache.Cache
	cachePath string
	client    *resty.Client
	logger    *logger.Logger
	lastCall  time.Time
	interval  time.Duration
}

// NewResolver creates a resolver backed by the JSON cache file at cachePath.
// A missing or unreadable cache file starts the resolver empty.
func NewResolver(cachePath, userAgent string, log *logger.Logger) *Resolver {
	r := &Resolver{
		cache:     gocache.New(gocache.NoExpiration, 0),
		cachePath: cachePath,
		client: resty.New().
			SetTimeout(15 * time.Second).
			SetHeader("User-Agent", userAgent),
		logger: log,
		// Nominatim usage policy: at most one request per second.
		interval: time.Second,
	}
	r.loadCache()
	return r
}

// Lookup returns coordinates for an address within a town. The boolean is
// false when the address cannot be resolved; that is not an error.
func (r *Resolver) Lookup(address, town string) (float64, float64, bool) {
	if address == "" || town == "" {
		return 0, 0, false
	}

	key := fmt.Sprintf("%s, %s, CT", address, town)

	r.mu.Lock()
	defer r.mu.Unlock()

	if cached, found := r.cache.Get(key); found {
		coords := cached.(Coords)
		return coords.Lat, coords.Lng, true
	}

	coords, ok := r.fetch(key)
	if !ok {
		return 0, 0, false
	}

	r.cache.Set(key, coords, gocache.NoExpiration)
	r.saveCache()
	return coords.Lat, coords.Lng, true
}

// fetch queries Nominatim, honoring the one-per-second floor. Caller holds
// the mutex.
func (r *Resolver) fetch(query string) (Coords, bool) {
	if wait := r.interval - time.Since(r.lastCall); wait > 0 {
		time.Sleep(wait)
	}

	var results []struct {
		Lat string `json:"lat"`
		Lon string `json:"lon"`
	}

	resp, err := r.client.R().
		SetQueryParams(map[string]string{
			"q":      query,
			"format": "json",
			"limit":  "1",
		}).
		SetResult(&results).
		Get(nominatimURL)
	r.lastCall = time.Now()

	if err != nil {
		r.logger.Warn("Geocode request failed", "query", query, "error", err)
		return Coords{}, false
	}
	if resp.StatusCode() != 200 || len(results) == 0 {
		return Coords{}, false
	}

	lat, errLat := strconv.ParseFloat(results[0].Lat, 64)
	lng, errLng := strconv.ParseFloat(results[0].Lon, 64)
	if errLat != nil || errLng != nil {
		return Coords{}, false
	}

	return Coords{Lat: lat, Lng: lng}, true
}

func (r *Resolver) loadCache() {
	data, err := os.ReadFile(r.cachePath)
	if err != nil {
		return
	}

	entries := make(map[string]Coords)
	if err := json.Unmarshal(data, &entries); err != nil {
		r.logger.Warn("Geocode cache file unreadable, starting empty", "path", r.cachePath, "error", err)
		return
	}

	for key, coords := range entries {
		r.cache.Set(key, coords, gocache.NoExpiration)
	}
}

// saveCache rewrites the cache file. Caller holds the mutex.
func (r *Resolver) saveCache() {
	entries := make(map[string]Coords, r.cache.ItemCount())
	for key, item := range r.cache.Items() {
		entries[key] = item.Object.(Coords)
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return
	}

	if err := os.MkdirAll(filepath.Dir(r.cachePath), 0755); err != nil {
		return
	}
	if err := os.WriteFile(r.cachePath, data, 0644); err != nil {
		r.logger.Warn("Failed to persist geocode cache", "path", r.cachePath, "error", err)
	}
}
