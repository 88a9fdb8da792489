package hsstask

import (
	"context"
	"time"

	"github.com/sebas/cxgateway/internal/hsscache"
	"github.com/sebas/cxgateway/internal/imsdata"
	"github.com/sebas/cxgateway/internal/stats"
)

// TimeCache wraps a cache call with the H_cache_latency_us timer,
// recorded on both the success and failure path.
func (b *Base) TimeCache(fn func() error) error {
	timer := b.Stats.Start(stats.CacheLatencyUs)
	defer timer.Stop()
	return fn()
}

// The methods below are the timed forms of the cache operations. Handlers
// call these rather than reaching through Cache directly, so every cache
// round trip lands in H_cache_latency_us.

func (b *Base) GetRegData(ctx context.Context, impu string) (rec hsscache.RegDataRecord, status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		rec, status, err = b.Cache.GetRegData(ctx, impu)
		return err
	})
	return rec, status, err
}

func (b *Base) GetAuthVector(ctx context.Context, impi, impu string) (v imsdata.DigestAuthVector, status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		v, status, err = b.Cache.GetAuthVector(ctx, impi, impu)
		return err
	})
	return v, status, err
}

func (b *Base) GetAssociatedPublicIDs(ctx context.Context, impi string) (impus []string, status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		impus, status, err = b.Cache.GetAssociatedPublicIDs(ctx, impi)
		return err
	})
	return impus, status, err
}

func (b *Base) GetAssociatedPrimaryPublicIDs(ctx context.Context, impis []string) (primaries []string, status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		primaries, status, err = b.Cache.GetAssociatedPrimaryPublicIDs(ctx, impis)
		return err
	})
	return primaries, status, err
}

func (b *Base) PutAssociatedPublicID(ctx context.Context, impi, impu string, ttl time.Duration) (status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		status, err = b.Cache.PutAssociatedPublicID(ctx, impi, impu, ttl)
		return err
	})
	return status, err
}

func (b *Base) PutAssociatedPrivateID(ctx context.Context, irs []string, impi string, ttl time.Duration) (status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		status, err = b.Cache.PutAssociatedPrivateID(ctx, irs, impi, ttl)
		return err
	})
	return status, err
}

func (b *Base) DeletePublicIDs(ctx context.Context, irs, impis []string, timestamp time.Time) (status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		status, err = b.Cache.DeletePublicIDs(ctx, irs, impis, timestamp)
		return err
	})
	return status, err
}

func (b *Base) DissociateImplicitRegistrationSetFromImpi(ctx context.Context, irs, impis []string, timestamp time.Time) (status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		status, err = b.Cache.DissociateImplicitRegistrationSetFromImpi(ctx, irs, impis, timestamp)
		return err
	})
	return status, err
}

func (b *Base) DeleteIMPIMapping(ctx context.Context, impis []string, timestamp time.Time) (status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		status, err = b.Cache.DeleteIMPIMapping(ctx, impis, timestamp)
		return err
	})
	return status, err
}

// ExecutePut runs a PutRegData builder under the cache timer.
func (b *Base) ExecutePut(ctx context.Context, builder *hsscache.PutRegDataBuilder) (status hsscache.Status, err error) {
	_ = b.TimeCache(func() error {
		status, err = builder.Execute(ctx)
		return err
	})
	return status, err
}
