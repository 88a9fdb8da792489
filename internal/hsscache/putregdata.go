package hsscache

import (
	"context"
	"time"

	"github.com/sebas/cxgateway/internal/imsdata"
)

// PutRegDataBuilder accumulates the fields of a PutRegData call. Only
// fields explicitly set are written; WithRegState(imsdata.Unchanged) is
// equivalent to not calling it at all.
type PutRegDataBuilder struct {
	cache *Cache
	irs   []string
	ttl   time.Duration

	hasXML   bool
	xml      string
	hasState bool
	state    imsdata.RegState
	hasImpis bool
	impis    []string
	hasAddrs bool
	addrs    imsdata.ChargingAddresses
}

// PutRegData begins a builder-style write covering every IMPU in irs
// (the record is duplicated per IMPU in the Implicit Registration Set).
// irs[0] is treated as the set's default public
// identity for GetAssociatedPrimaryPublicIDs purposes.
func (c *Cache) PutRegData(irs []string, ttl time.Duration) *PutRegDataBuilder {
	return &PutRegDataBuilder{cache: c, irs: irs, ttl: ttl}
}

func (b *PutRegDataBuilder) WithXML(xml string) *PutRegDataBuilder {
	b.hasXML = true
	b.xml = xml
	return b
}

func (b *PutRegDataBuilder) WithRegState(state imsdata.RegState) *PutRegDataBuilder {
	if state == imsdata.Unchanged {
		return b
	}
	b.hasState = true
	b.state = state
	return b
}

func (b *PutRegDataBuilder) WithAssociatedIMPIs(impis []string) *PutRegDataBuilder {
	b.hasImpis = true
	b.impis = impis
	return b
}

func (b *PutRegDataBuilder) WithChargingAddrs(addrs imsdata.ChargingAddresses) *PutRegDataBuilder {
	b.hasAddrs = true
	b.addrs = addrs
	return b
}

// Execute applies the accumulated fields to every IMPU in the set,
// merging with whatever is already cached for each row, and refreshes the
// impu→primary and impi→impus index tables.
func (b *PutRegDataBuilder) Execute(ctx context.Context) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusConnectionError, err
	}
	if len(b.irs) == 0 {
		return StatusInvalidRequest, nil
	}
	primary := b.irs[0]

	for _, impu := range b.irs {
		rec, _ := b.cache.regData.Get(impu)
		if b.hasXML {
			rec.XML = b.xml
		}
		if b.hasState {
			rec.RegState = b.state
		}
		if b.hasImpis {
			rec.AssociatedIMPIs = mergeIMPIs(rec.AssociatedIMPIs, b.impis)
		}
		if b.hasAddrs {
			rec.ChargingAddrs = b.addrs
		}
		b.cache.regData.Set(impu, rec, b.ttl)
		b.cache.primaryByImpu.Set(impu, primary, b.ttl)
	}

	if b.hasImpis {
		for _, impi := range b.impis {
			impus, _ := b.cache.impusByImpi.Get(impi)
			if impus == nil {
				impus = make(map[string]struct{})
			}
			for _, impu := range b.irs {
				impus[impu] = struct{}{}
			}
			b.cache.impusByImpi.Set(impi, impus, b.ttl)
		}
	}
	return StatusOK, nil
}

func mergeIMPIs(existing, add []string) []string {
	seen := make(map[string]struct{}, len(existing)+len(add))
	out := make([]string, 0, len(existing)+len(add))
	for _, v := range existing {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	for _, v := range add {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}

// PutAssociatedPublicID associates impu with impi directly, without
// touching the regData row (the digest-handler cache-warm path).
func (c *Cache) PutAssociatedPublicID(ctx context.Context, impi, impu string, ttl time.Duration) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusConnectionError, err
	}
	impus, _ := c.impusByImpi.Get(impi)
	if impus == nil {
		impus = make(map[string]struct{})
	}
	impus[impu] = struct{}{}
	c.impusByImpi.Set(impi, impus, ttl)
	return StatusOK, nil
}

// PutAssociatedPrivateID associates impi with every IMPU in irs — used to
// force a fresh SAR on new-binding detection.
func (c *Cache) PutAssociatedPrivateID(ctx context.Context, irs []string, impi string, ttl time.Duration) (Status, error) {
	if err := ctx.Err(); err != nil {
		return StatusConnectionError, err
	}
	impus, _ := c.impusByImpi.Get(impi)
	if impus == nil {
		impus = make(map[string]struct{})
	}
	for _, impu := range irs {
		impus[impu] = struct{}{}
	}
	c.impusByImpi.Set(impi, impus, ttl)

	for _, impu := range irs {
		rec, _ := c.regData.Get(impu)
		rec.AssociatedIMPIs = mergeIMPIs(rec.AssociatedIMPIs, []string{impi})
		entry, ok := c.regData.GetEntry(impu)
		rowTTL := ttl
		if ok {
			rowTTL = entry.TTL()
		}
		c.regData.Set(impu, rec, rowTTL)
	}
	return StatusOK, nil
}
