// Package hsscache provides the typed cache operations the HSS cache
// gateway runs against its wide-column store. Connection
// pooling, CQL dialect, and batching are the store's concern
// (internal/cachestore here); this package only knows the gateway's
// column shapes and merge semantics.
package hsscache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/sebas/cxgateway/internal/cachestore"
	"github.com/sebas/cxgateway/internal/imsdata"
	"github.com/sebas/cxgateway/internal/logging"
)

// Status is the cache-operation failure taxonomy.
type Status int

const (
	StatusOK Status = iota
	StatusNotFound
	StatusInvalidRequest
	StatusUnavailable
	StatusUnknownError
	StatusConnectionError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "OK"
	case StatusNotFound:
		return "NOT_FOUND"
	case StatusInvalidRequest:
		return "INVALID_REQUEST"
	case StatusUnavailable:
		return "UNAVAILABLE"
	case StatusUnknownError:
		return "UNKNOWN_ERROR"
	case StatusConnectionError:
		return "CONNECTION_ERROR"
	default:
		return "UNKNOWN_ERROR"
	}
}

// RegDataRecord is the cached subscription record, stored once per IMPU
// in an Implicit Registration Set.
type RegDataRecord struct {
	XML             string
	RegState        imsdata.RegState
	AssociatedIMPIs []string
	ChargingAddrs   imsdata.ChargingAddresses
	TTLRemaining    time.Duration
}

const defaultCleanupInterval = 30 * time.Second

// Cache is the in-memory, TTL-backed implementation of the subscriber
// cache. It stands in for a wide-column store (e.g. Cassandra)
// the way internal/cachestore.TTLStore stands in for any external KV
// store — swapping in a real client means satisfying the same method set
// against a different internal store, not changing any caller.
type Cache struct {
	regData       *cachestore.TTLStore[string, RegDataRecord]
	primaryByImpu *cachestore.TTLStore[string, string]
	impusByImpi   *cachestore.TTLStore[string, map[string]struct{}]
	authVectors   *cachestore.TTLStore[string, imsdata.DigestAuthVector]

	regDataGroup singleflight.Group
}

// New builds an empty cache with the default eviction sweep interval.
func New() *Cache {
	return NewWithCleanup(defaultCleanupInterval)
}

// NewWithCleanup builds an empty cache sweeping expired rows every
// cleanupInterval.
func NewWithCleanup(cleanupInterval time.Duration) *Cache {
	if cleanupInterval <= 0 {
		cleanupInterval = defaultCleanupInterval
	}
	c := &Cache{
		regData:       cachestore.NewTTLStore[string, RegDataRecord](cleanupInterval),
		primaryByImpu: cachestore.NewTTLStore[string, string](cleanupInterval),
		impusByImpi:   cachestore.NewTTLStore[string, map[string]struct{}](cleanupInterval),
		authVectors:   cachestore.NewTTLStore[string, imsdata.DigestAuthVector](cleanupInterval),
	}
	c.regData.SetOnEvict(func(impu string, _ RegDataRecord) {
		logging.Debug("hsscache", "subscription record expired", "impu", impu)
	})
	return c
}

// Close stops the background cleanup goroutines.
func (c *Cache) Close() {
	c.regData.Close()
	c.primaryByImpu.Close()
	c.impusByImpi.Close()
	c.authVectors.Close()
}

// authVectorKey derives a stable composite key for the (impi, impu)
// digest-vector sub-table: a SHA-256 digest of the concatenated
// identity pair.
func authVectorKey(impi, impu string) string {
	h := sha256.Sum256([]byte(impi + "|" + impu))
	return hex.EncodeToString(h[:])
}

// GetRegData fetches the cached record for impu. Duplicate
// concurrent calls for the same impu are collapsed into one store lookup
// via singleflight — a thundering herd of reads on a cold key should not
// become N identical store round-trips.
func (c *Cache) GetRegData(ctx context.Context, impu string) (RegDataRecord, Status, error) {
	if err := ctx.Err(); err != nil {
		return RegDataRecord{}, StatusConnectionError, err
	}
	v, err, _ := c.regDataGroup.Do(impu, func() (interface{}, error) {
		entry, ok := c.regData.GetEntry(impu)
		if !ok {
			return nil, errNotFound
		}
		rec := entry.Value
		rec.TTLRemaining = entry.TTL()
		return rec, nil
	})
	if err != nil {
		if err == errNotFound {
			return RegDataRecord{}, StatusNotFound, nil
		}
		return RegDataRecord{}, StatusUnknownError, err
	}
	return v.(RegDataRecord), StatusOK, nil
}

// GetAuthVector fetches a digest vector cached directly against (impi,
// impu), the no-HSS-configured digest path.
func (c *Cache) GetAuthVector(ctx context.Context, impi, impu string) (imsdata.DigestAuthVector, Status, error) {
	if err := ctx.Err(); err != nil {
		return imsdata.DigestAuthVector{}, StatusConnectionError, err
	}
	v, ok := c.authVectors.Get(authVectorKey(impi, impu))
	if !ok {
		return imsdata.DigestAuthVector{}, StatusNotFound, nil
	}
	return v, StatusOK, nil
}

// PutAuthVector caches a digest vector for the no-HSS-configured path.
func (c *Cache) PutAuthVector(ctx context.Context, impi, impu string, v imsdata.DigestAuthVector, ttl time.Duration) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusConnectionError, err
	}
	c.authVectors.Set(authVectorKey(impi, impu), v, ttl)
	return StatusOK, nil
}

// GetAssociatedPublicIDs returns every IMPU associated with impi.
func (c *Cache) GetAssociatedPublicIDs(ctx context.Context, impi string) ([]string, Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, StatusConnectionError, err
	}
	set, ok := c.impusByImpi.Get(impi)
	if !ok || len(set) == 0 {
		return nil, StatusNotFound, nil
	}
	return sortedKeys(set), StatusOK, nil
}

// GetAssociatedPrimaryPublicIDs resolves each impi to its associated
// IMPUs' primary (default) public identity, deduplicated.
func (c *Cache) GetAssociatedPrimaryPublicIDs(ctx context.Context, impis []string) ([]string, Status, error) {
	if err := ctx.Err(); err != nil {
		return nil, StatusConnectionError, err
	}
	seen := make(map[string]struct{})
	var out []string
	for _, impi := range impis {
		impus, ok := c.impusByImpi.Get(impi)
		if !ok {
			continue
		}
		for impu := range impus {
			primary, ok := c.primaryByImpu.Get(impu)
			if !ok {
				primary = impu
			}
			if _, dup := seen[primary]; dup {
				continue
			}
			seen[primary] = struct{}{}
			out = append(out, primary)
		}
	}
	if len(out) == 0 {
		return nil, StatusNotFound, nil
	}
	sort.Strings(out)
	return out, StatusOK, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

var errNotFound = notFoundErr{}

type notFoundErr struct{}

func (notFoundErr) Error() string { return "hsscache: not found" }
