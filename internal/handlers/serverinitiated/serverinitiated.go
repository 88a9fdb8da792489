// Package serverinitiated implements the two HSS-initiated Diameter
// commands the gateway answers rather than sends: RegistrationTerminationTask
// (RTR/RTA) and PushProfileTask (PPR/PPA). Both are inbound requests and
// do not pass through diameter.Client, which only sends outbound requests:
// a Diameter transport outside this repository hands a decoded request to
// a task, and the task returns the answer to send back.
package serverinitiated

import (
	"context"
	"strings"
	"time"

	"github.com/sebas/cxgateway/internal/cxcodec"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/hsscache"
	"github.com/sebas/cxgateway/internal/hsstask"
	"github.com/sebas/cxgateway/internal/ims"
	"github.com/sebas/cxgateway/internal/logging"
	"github.com/sebas/cxgateway/internal/sprout"
)

const component = "ServerInitiated"

// RegistrationTerminationTask answers an inbound RTR.
type RegistrationTerminationTask struct {
	*hsstask.Base
	Sprout *sprout.Client
}

// NewRegistrationTerminationTask builds an RTR task over the given shared
// base and Sprout collaborator.
func NewRegistrationTerminationTask(base *hsstask.Base, sproutClient *sprout.Client) *RegistrationTerminationTask {
	return &RegistrationTerminationTask{Base: base, Sprout: sproutClient}
}

// deriveIRSFromRecord recovers the Implicit Registration Set containing impu
// from its cached XML, falling back to a single-member set (same fallback
// deriveIRS in handlers/regdata uses — duplicated here rather than shared
// across packages since each caller only has a RegDataRecord, not a raw
// XML string, to start from).
func deriveIRSFromRecord(rec hsscache.RegDataRecord, impu string) []string {
	if rec.XML == "" {
		return []string{impu}
	}
	sub, err := ims.Parse(rec.XML)
	if err != nil {
		return []string{impu}
	}
	sp := sub.ServiceProfileFor(impu)
	if sp == nil {
		return []string{impu}
	}
	ids := sp.Identities()
	if len(ids) == 0 {
		return []string{impu}
	}
	return ids
}

// Handle answers req with an RTA.
func (t *RegistrationTerminationTask) Handle(ctx context.Context, req cxcodec.RTRRequest) *diameter.Message {
	// The deregistered IMPI set is the RTR's User-Name plus every
	// Associated-Identities entry, deduplicated.
	seenIMPI := make(map[string]struct{}, 1+len(req.AssociatedIdentities))
	var impis []string
	for _, impi := range append([]string{req.IMPI}, req.AssociatedIdentities...) {
		if impi == "" {
			continue
		}
		if _, dup := seenIMPI[impi]; dup {
			continue
		}
		seenIMPI[impi] = struct{}{}
		impis = append(impis, impi)
	}

	if !req.Reason.Valid() {
		logging.Warn(component, "unrecognised deregistration reason", "reason", int32(req.Reason))
		return cxcodec.BuildRTA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.RTAUnableToComply, impis)
	}

	// Step 1: resolve the target public identities. PublicIdentities on
	// the request, if present, name the set directly; otherwise resolve
	// every impi's associated primary public identities from the cache.
	targetIMPUs := req.PublicIdentities
	if len(targetIMPUs) == 0 {
		resolved, status, err := t.GetAssociatedPrimaryPublicIDs(ctx, impis)
		if err != nil || (status != hsscache.StatusOK && status != hsscache.StatusNotFound) {
			logging.Warn(component, "GetAssociatedPrimaryPublicIDs failed", "impis", impis, "err", err)
			return cxcodec.BuildRTA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.RTAUnableToComply, impis)
		}
		if len(resolved) == 0 {
			// Nothing cached for these identities; nothing to tear down.
			return cxcodec.BuildRTA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.RTASuccess, impis)
		}
		targetIMPUs = resolved
	}

	// Step 2: read each target's cached record, sequentially, to recover
	// its registration set and the IMPIs to strip from it. An IMPU with no
	// cached data is skipped; it does not fail the whole request.
	type deregSet struct {
		irs   []string
		impis []string
	}
	var sets []deregSet
	var notifyPairs []sprout.RegistrationPair
	for _, impu := range targetIMPUs {
		rec, status, err := t.GetRegData(ctx, impu)
		if err != nil || (status != hsscache.StatusOK && status != hsscache.StatusNotFound) {
			logging.Warn(component, "GetRegData failed", "impu", impu, "err", err)
			return cxcodec.BuildRTA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.RTAUnableToComply, impis)
		}
		if status == hsscache.StatusNotFound || rec.XML == "" {
			logging.Info(component, "no cached subscription for impu, skipping", "impu", impu)
			continue
		}

		set := deregSet{irs: deriveIRSFromRecord(rec, impu), impis: impis}
		if req.Reason == cxcodec.ReasonServerChange || req.Reason == cxcodec.ReasonNewServerAssigned {
			// A server change strips every binding the cache knows about,
			// not just the ones the HSS named.
			if len(rec.AssociatedIMPIs) > 0 {
				set.impis = rec.AssociatedIMPIs
			}
		}
		sets = append(sets, set)

		if req.Reason == cxcodec.ReasonPermanentTermination {
			for _, impi := range impis {
				notifyPairs = append(notifyPairs, sprout.RegistrationPair{PrimaryIMPU: impu, IMPI: impi})
			}
		} else {
			notifyPairs = append(notifyPairs, sprout.RegistrationPair{PrimaryIMPU: impu})
		}
	}
	if len(sets) == 0 {
		return cxcodec.BuildRTA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.RTASuccess, impis)
	}

	// Step 3: notify Sprout. send-notifications is true only for the
	// reasons where the bindings die without a replacement registration
	// (REMOVE_SCSCF, SERVER_CHANGE).
	if t.Sprout != nil {
		sendNotifications := req.Reason == cxcodec.ReasonRemoveSCSCF || req.Reason == cxcodec.ReasonServerChange
		code, err := t.Sprout.NotifyDeregistration(ctx, sendNotifications, notifyPairs)
		if err != nil || code != 200 {
			logging.Warn(component, "sprout notify failed", "code", code, "err", err)
			return cxcodec.BuildRTA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.RTAUnableToComply, impis)
		}
	}

	// Step 4: cache writes. Every reason dissociates each registration set
	// from its dereg'd IMPIs; a server change additionally purges the
	// impi-to-impus index rows outright.
	now := time.Now()
	for _, set := range sets {
		if _, err := t.DissociateImplicitRegistrationSetFromImpi(ctx, set.irs, set.impis, now); err != nil {
			logging.Warn(component, "DissociateImplicitRegistrationSetFromImpi failed", "err", err)
		}
	}
	if req.Reason == cxcodec.ReasonServerChange || req.Reason == cxcodec.ReasonNewServerAssigned {
		if _, err := t.DeleteIMPIMapping(ctx, impis, now); err != nil {
			logging.Warn(component, "DeleteIMPIMapping failed", "err", err)
		}
	}

	// Step 5: RTA echoes the associated-identities list back to the HSS.
	return cxcodec.BuildRTA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.RTASuccess, impis)
}

// PushProfileTask answers an inbound PPR.
type PushProfileTask struct {
	*hsstask.Base
}

// NewPushProfileTask builds a PPR task over the given shared base.
func NewPushProfileTask(base *hsstask.Base) *PushProfileTask {
	return &PushProfileTask{base}
}

// Handle answers req with a PPA.
func (t *PushProfileTask) Handle(ctx context.Context, req cxcodec.PPRRequest) *diameter.Message {
	if !req.HasUserData && !req.HasChargingAddrs {
		// nothing to push; answer success without touching the cache.
		return cxcodec.BuildPPA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.PPASuccess)
	}

	// Step 2: derive the full IRS from the pushed XML if present,
	// otherwise (step 3) fall back to the impi's already-associated IMPUs.
	var irs []string
	if req.HasUserData {
		if sub, err := ims.Parse(req.UserData); err == nil && len(sub.ServiceProfiles) > 0 {
			var all []string
			seen := make(map[string]struct{})
			hasSIPURI := false
			for i := range sub.ServiceProfiles {
				for _, impu := range sub.ServiceProfiles[i].Identities() {
					if _, dup := seen[impu]; dup {
						continue
					}
					seen[impu] = struct{}{}
					all = append(all, impu)
					if strings.HasPrefix(impu, "sip:") || strings.HasPrefix(impu, "sips:") {
						hasSIPURI = true
					}
				}
			}
			if !hasSIPURI && len(all) > 0 {
				logging.Warn(component, "PPR user-data contains no SIP URI, caching against tel URIs", "impi", req.IMPI, "impus", all)
			}
			if len(all) > 0 {
				irs = all
			}
		}
	}
	if len(irs) == 0 {
		impus, status, err := t.GetAssociatedPublicIDs(ctx, req.IMPI)
		if err != nil || status != hsscache.StatusOK || len(impus) == 0 {
			logging.Warn(component, "GetAssociatedPublicIDs failed", "impi", req.IMPI, "err", err)
			return cxcodec.BuildPPA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.PPAUnableToComply)
		}
		irs = impus
	}

	builder := t.Cache.PutRegData(irs, t.CacheTTL())
	if req.HasUserData {
		builder = builder.WithXML(req.UserData)
	}
	if req.HasChargingAddrs {
		builder = builder.WithChargingAddrs(req.ChargingAddrs)
	}
	if _, err := t.ExecutePut(ctx, builder); err != nil {
		logging.Warn(component, "PutRegData failed", "impi", req.IMPI, "err", err)
		return cxcodec.BuildPPA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.PPAUnableToComply)
	}

	return cxcodec.BuildPPA(t.Dict, req.SessionID, req.AuthSessionState, cxcodec.PPASuccess)
}
