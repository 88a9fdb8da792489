package hsscache

import (
	"context"
	"time"
)

// DeletePublicIDs removes the regData rows for every IMPU in irs and
// drops those IMPUs from each impi's association set (the
// dereg-user/timeout/admin cache write). timestamp is
// accepted for parity with a tombstone-ordered wide-column store; the
// in-memory store applies deletes immediately.
func (c *Cache) DeletePublicIDs(ctx context.Context, irs []string, impis []string, timestamp time.Time) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusConnectionError, err
	}
	for _, impu := range irs {
		c.regData.Delete(impu)
		c.primaryByImpu.Delete(impu)
	}
	removeIMPUsFromIMPIs(c, impis, irs)
	return StatusOK, nil
}

// DissociateImplicitRegistrationSetFromImpi removes impis from the
// regData rows' AssociatedIMPIs for every IMPU in irs and from the
// impi→impus index, without deleting the regData rows themselves.
func (c *Cache) DissociateImplicitRegistrationSetFromImpi(ctx context.Context, irs []string, impis []string, timestamp time.Time) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusConnectionError, err
	}
	removeSet := make(map[string]struct{}, len(impis))
	for _, impi := range impis {
		removeSet[impi] = struct{}{}
	}
	for _, impu := range irs {
		entry, ok := c.regData.GetEntry(impu)
		if !ok {
			continue
		}
		rec := entry.Value
		rec.AssociatedIMPIs = filterOut(rec.AssociatedIMPIs, removeSet)
		c.regData.Set(impu, rec, entry.TTL())
	}
	removeIMPUsFromIMPIs(c, impis, irs)
	return StatusOK, nil
}

// DeleteIMPIMapping purges the impi→impus index rows entirely
// (SERVER_CHANGE/NEW_SERVER_ASSIGNED deregistrations).
func (c *Cache) DeleteIMPIMapping(ctx context.Context, impis []string, timestamp time.Time) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusConnectionError, err
	}
	for _, impi := range impis {
		c.impusByImpi.Delete(impi)
	}
	return StatusOK, nil
}

func removeIMPUsFromIMPIs(c *Cache, impis []string, impus []string) {
	for _, impi := range impis {
		entry, ok := c.impusByImpi.GetEntry(impi)
		if !ok {
			continue
		}
		set := entry.Value
		for _, impu := range impus {
			delete(set, impu)
		}
		if len(set) == 0 {
			c.impusByImpi.Delete(impi)
			continue
		}
		c.impusByImpi.Set(impi, set, entry.TTL())
	}
}

func filterOut(list []string, remove map[string]struct{}) []string {
	out := make([]string, 0, len(list))
	for _, v := range list {
		if _, skip := remove[v]; skip {
			continue
		}
		out = append(out, v)
	}
	return out
}
