// Package cache provides short-lived memoization of analysis results so
// repeated identical queries within a session do not trigger repeated
// billed model calls. Entries are keyed by canonicalized disease name and
// model identifier and expire automatically after a fixed TTL.
package cache

import (
	"strings"
	"time"
	"unicode"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/healthinsight/disease-insight-api/diseaseparser/entities"
	"github.com/healthinsight/disease-insight-api/interfaces"
)

// Compile-time check to ensure InsightCache implements ResponseCache
var _ interfaces.ResponseCache = (*InsightCache)(nil)

type cacheEntry struct {
	record entities.DiseaseRecord
	raw    string
}

// InsightCache is a bounded TTL cache for normalized analysis results.
// The expirable LRU provides its own locking; no further discipline is
// layered on top, and concurrent identical requests are not coalesced.
type InsightCache struct {
	lru *expirable.LRU[string, cacheEntry]
}

// New creates a cache holding at most capacity entries, each expiring
// ttl after insertion.
func New(capacity int, ttl time.Duration) *InsightCache {
	if capacity <= 0 {
		capacity = 512
	}
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InsightCache{
		lru: expirable.NewLRU[string, cacheEntry](capacity, nil, ttl),
	}
}

// Get returns the memoized record and raw payload for a disease/model
// pair, or ok=false on miss or expiry.
func (c *InsightCache) Get(disease, model string) (entities.DiseaseRecord, string, bool) {
	entry, ok := c.lru.Get(Key(disease, model))
	if !ok {
		return entities.DiseaseRecord{}, "", false
	}
	return entry.record, entry.raw, true
}

// Put memoizes a normalized record together with the raw model payload.
func (c *InsightCache) Put(disease, model string, record entities.DiseaseRecord, raw string) {
	c.lru.Add(Key(disease, model), cacheEntry{record: record, raw: raw})
}

// Clear removes every entry and returns how many were dropped.
func (c *InsightCache) Clear() int {
	n := c.lru.Len()
	c.lru.Purge()
	return n
}

// Len returns the current number of live entries.
func (c *InsightCache) Len() int {
	return c.lru.Len()
}

// Key builds the cache key for a disease/model pair. The disease name is
// folded so that case, accents and stray whitespace do not split entries:
// "Gripé " and "gripe" share one billed call.
func Key(disease, model string) string {
	return foldName(disease) + "|" + model
}

// foldTransformer decomposes to NFD, drops combining marks, recomposes.
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

func foldName(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if folded, _, err := transform.String(foldTransformer, s); err == nil {
		s = folded
	}
	return strings.Join(strings.Fields(s), " ")
}
