// Package regdata implements ImpuRegDataTask, the central
// state machine covering registration, re-registration, call, and the
// five dereg variants over PUT/GET /impu/{impu}/reg-data.
package regdata

import (
	"context"
	"time"

	"github.com/sebas/cxgateway/internal/cxcodec"
	"github.com/sebas/cxgateway/internal/cxerrors"
	"github.com/sebas/cxgateway/internal/handlers/httpresult"
	"github.com/sebas/cxgateway/internal/hsscache"
	"github.com/sebas/cxgateway/internal/hsstask"
	"github.com/sebas/cxgateway/internal/ims"
	"github.com/sebas/cxgateway/internal/imsdata"
	"github.com/sebas/cxgateway/internal/logging"
	"github.com/sebas/cxgateway/internal/stats"
)

const component = "ImpuRegData"

// Request reqtype values.
const (
	ReqTypeReg             = "reg"
	ReqTypeCall            = "call"
	ReqTypeDeregTimeout    = "dereg-timeout"
	ReqTypeDeregUser       = "dereg-user"
	ReqTypeDeregAdmin      = "dereg-admin"
	ReqTypeDeregAuthFailed = "dereg-auth-failed"
	ReqTypeDeregAuthTmout  = "dereg-auth-timeout"
)

func validReqType(t string) bool {
	switch t {
	case ReqTypeReg, ReqTypeCall, ReqTypeDeregTimeout, ReqTypeDeregUser, ReqTypeDeregAdmin, ReqTypeDeregAuthFailed, ReqTypeDeregAuthTmout:
		return true
	default:
		return false
	}
}

func isDeregType(t string) bool {
	switch t {
	case ReqTypeDeregTimeout, ReqTypeDeregUser, ReqTypeDeregAdmin, ReqTypeDeregAuthFailed, ReqTypeDeregAuthTmout:
		return true
	default:
		return false
	}
}

func isAuthDeregType(t string) bool {
	return t == ReqTypeDeregAuthFailed || t == ReqTypeDeregAuthTmout
}

// sarTypeFor maps a dereg reqtype to its Server-Assignment-Type. Only
// valid for isDeregType(t) == true.
func sarTypeFor(t string) cxcodec.ServerAssignmentType {
	switch t {
	case ReqTypeDeregTimeout:
		return cxcodec.SATTimeoutDeregistration
	case ReqTypeDeregUser:
		return cxcodec.SATUserDeregistration
	case ReqTypeDeregAdmin:
		return cxcodec.SATAdministrativeDeregistration
	case ReqTypeDeregAuthFailed:
		return cxcodec.SATAuthenticationFailure
	case ReqTypeDeregAuthTmout:
		return cxcodec.SATAuthenticationTimeout
	default:
		return 0
	}
}

// ImpuRegDataTask serves PUT/GET /impu/{impu}/reg-data.
type ImpuRegDataTask struct {
	*hsstask.Base
}

// NewImpuRegDataTask builds a reg-data task over the given shared base.
func NewImpuRegDataTask(base *hsstask.Base) *ImpuRegDataTask {
	return &ImpuRegDataTask{base}
}

// Request is the decoded PUT/GET /impu/{impu}/reg-data request.
type Request struct {
	IMPU      string
	PrivateID string
	ReqType   string // empty for GET
	IsGet     bool
}

// regState renders an imsdata.RegState as the ClearwaterRegData element
// value.
func regState(s imsdata.RegState) ims.RegistrationState {
	switch s {
	case imsdata.Registered:
		return ims.StateRegistered
	case imsdata.Unregistered:
		return ims.StateUnregistered
	default:
		return ims.StateNotRegistered
	}
}

// deriveIRS recovers the Implicit Registration Set containing impu from an
// IMSSubscription document; falling back to a single-member set keyed on
// impu itself when the document is empty, unparseable, or doesn't mention
// impu (the registration set is only known once an XML document has
// been seen for this subscriber).
func deriveIRS(xmlDoc, impu string) []string {
	if xmlDoc == "" {
		return []string{impu}
	}
	sub, err := ims.Parse(xmlDoc)
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

// Handle serves the request.
func (t *ImpuRegDataTask) Handle(ctx context.Context, req Request) httpresult.Response {
	if req.IsGet {
		return t.handleGet(ctx, req)
	}
	if !validReqType(req.ReqType) {
		return httpresult.FromError(cxerrors.New(cxerrors.InvalidRequest, nil))
	}
	return t.handlePut(ctx, req)
}

// HandleLegacyXML serves the legacy GET /impu/{impu} route:
// the raw cached IMSSubscription document, not the <ClearwaterRegData>
// envelope handleGet renders.
func (t *ImpuRegDataTask) HandleLegacyXML(ctx context.Context, impu string) httpresult.Response {
	rec, status, err := t.GetRegData(ctx, impu)
	if err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	switch status {
	case hsscache.StatusOK:
		return httpresult.XML(200, rec.XML)
	case hsscache.StatusNotFound:
		return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
	default:
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, nil))
	}
}

func (t *ImpuRegDataTask) handleGet(ctx context.Context, req Request) httpresult.Response {
	rec, status, err := t.GetRegData(ctx, req.IMPU)
	if err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	switch status {
	case hsscache.StatusOK:
		return httpresult.XML(200, ims.BuildRegDataResponse(regState(rec.RegState), rec.XML))
	case hsscache.StatusNotFound:
		return httpresult.FromError(cxerrors.New(cxerrors.NotFound, nil))
	default:
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, nil))
	}
}

func (t *ImpuRegDataTask) handlePut(ctx context.Context, req Request) httpresult.Response {
	rec, status, err := t.GetRegData(ctx, req.IMPU)
	if err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	switch status {
	case hsscache.StatusOK:
		// use rec as read
	case hsscache.StatusNotFound:
		rec = hsscache.RegDataRecord{} // continue as empty record; zero RegState is NOT_REGISTERED
	default:
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, nil))
	}

	if !t.HSSConfigured() {
		return t.handleNoHSS(ctx, req, rec)
	}
	return t.handleHSS(ctx, req, rec)
}

func (t *ImpuRegDataTask) handleNoHSS(ctx context.Context, req Request, rec hsscache.RegDataRecord) httpresult.Response {
	switch req.ReqType {
	case ReqTypeReg:
		builder := t.Cache.PutRegData([]string{req.IMPU}, 0).WithRegState(imsdata.Registered)
		if req.PrivateID != "" {
			builder = builder.WithAssociatedIMPIs([]string{req.PrivateID})
		}
		if _, err := t.ExecutePut(ctx, builder); err != nil {
			return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
		}
		return httpresult.XML(200, ims.BuildRegDataResponse(ims.StateRegistered, rec.XML))
	case ReqTypeCall:
		return httpresult.XML(200, ims.BuildRegDataResponse(regState(rec.RegState), rec.XML))
	case ReqTypeDeregAuthFailed, ReqTypeDeregAuthTmout:
		return httpresult.XML(200, ims.BuildRegDataResponse(regState(rec.RegState), rec.XML))
	default: // dereg-timeout, dereg-user, dereg-admin
		if rec.RegState != imsdata.Registered {
			return httpresult.FromError(cxerrors.New(cxerrors.InvalidRequest, nil))
		}
		if _, err := t.ExecutePut(ctx, t.Cache.PutRegData([]string{req.IMPU}, 0).WithRegState(imsdata.Unregistered)); err != nil {
			return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
		}
		return httpresult.XML(200, ims.BuildRegDataResponse(ims.StateUnregistered, rec.XML))
	}
}

func (t *ImpuRegDataTask) handleHSS(ctx context.Context, req Request, rec hsscache.RegDataRecord) httpresult.Response {
	R := t.Cfg.ReregistrationInterval
	ttl := t.CacheTTL()

	// Step 4: new-binding detection. Only reg requests look at
	// private_id; a call request never carries a binding.
	newBinding := false
	if req.ReqType == ReqTypeReg && req.PrivateID != "" && !contains(rec.AssociatedIMPIs, req.PrivateID) {
		newBinding = true
		irs := deriveIRS(rec.XML, req.IMPU)
		if _, err := t.PutAssociatedPrivateID(ctx, irs, req.PrivateID, ttl); err != nil {
			logging.Warn(component, "PutAssociatedPrivateID failed", "impu", req.IMPU, "impi", req.PrivateID, "err", err)
		}
	}

	switch req.ReqType {
	case ReqTypeReg:
		return t.handleReg(ctx, req, rec, newBinding, R, ttl)
	case ReqTypeCall:
		return t.handleCall(ctx, req, rec, ttl)
	default: // every dereg-* variant
		return t.handleDereg(ctx, req, rec, ttl)
	}
}

func (t *ImpuRegDataTask) handleReg(ctx context.Context, req Request, rec hsscache.RegDataRecord, newBinding bool, R, ttl time.Duration) httpresult.Response {
	var sarType cxcodec.ServerAssignmentType
	switch {
	case rec.RegState == imsdata.NotRegistered || rec.RegState == imsdata.Unregistered || newBinding:
		sarType = cxcodec.SATRegistration
	case rec.RegState == imsdata.Registered:
		// Records are written with TTL 2R. While at least R remains, the
		// subscriber is re-registering ahead of schedule and is served from
		// cache; once the remaining TTL drops below R, the re-registration
		// is due and warrants a fresh SAR.
		if rec.TTLRemaining >= R {
			return httpresult.XML(200, ims.BuildRegDataResponse(regState(rec.RegState), rec.XML))
		}
		sarType = cxcodec.SATReRegistration
	default:
		sarType = cxcodec.SATRegistration
	}

	saa, cxerr := t.sendSAR(ctx, req.PrivateID, req.IMPU, sarType, stats.HSSSubscriptionLatUs)
	if cxerr != nil {
		return httpresult.FromError(cxerr)
	}

	irs := deriveIRS(saa.UserData, req.IMPU)
	builder := t.Cache.PutRegData(irs, ttl).
		WithXML(saa.UserData).
		WithRegState(imsdata.Registered).
		WithChargingAddrs(saa.ChargingAddrs)
	if req.PrivateID != "" {
		builder = builder.WithAssociatedIMPIs([]string{req.PrivateID})
	}
	if _, err := t.ExecutePut(ctx, builder); err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	return httpresult.XML(200, ims.BuildRegDataResponse(ims.StateRegistered, saa.UserData))
}

func (t *ImpuRegDataTask) handleCall(ctx context.Context, req Request, rec hsscache.RegDataRecord, ttl time.Duration) httpresult.Response {
	if rec.RegState != imsdata.NotRegistered {
		return httpresult.XML(200, ims.BuildRegDataResponse(regState(rec.RegState), rec.XML))
	}

	saa, cxerr := t.sendSAR(ctx, "", req.IMPU, cxcodec.SATUnregisteredUser, stats.HSSSubscriptionLatUs)
	if cxerr != nil {
		return httpresult.FromError(cxerr)
	}

	irs := deriveIRS(saa.UserData, req.IMPU)
	builder := t.Cache.PutRegData(irs, ttl).
		WithXML(saa.UserData).
		WithRegState(imsdata.Unregistered).
		WithChargingAddrs(saa.ChargingAddrs)
	if _, err := t.ExecutePut(ctx, builder); err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	return httpresult.XML(200, ims.BuildRegDataResponse(ims.StateUnregistered, saa.UserData))
}

func (t *ImpuRegDataTask) handleDereg(ctx context.Context, req Request, rec hsscache.RegDataRecord, ttl time.Duration) httpresult.Response {
	if !isAuthDeregType(req.ReqType) && rec.RegState != imsdata.Registered {
		return httpresult.FromError(cxerrors.New(cxerrors.InvalidRequest, nil))
	}

	sarType := sarTypeFor(req.ReqType)
	if req.PrivateID == "" {
		// A dereg with no private identity cannot name the binding being
		// removed; the HSS expects UNREGISTERED_USER in that case.
		sarType = cxcodec.SATUnregisteredUser
	}
	_, cxerr := t.sendSAR(ctx, req.PrivateID, req.IMPU, sarType, stats.HSSSubscriptionLatUs)
	if cxerr != nil {
		return httpresult.FromError(cxerr)
	}

	if isAuthDeregType(req.ReqType) {
		// never write cache for auth-failed/auth-timeout
		return httpresult.XML(200, ims.BuildRegDataResponse(regState(rec.RegState), rec.XML))
	}

	irs := deriveIRS(rec.XML, req.IMPU)
	if _, err := t.DeletePublicIDs(ctx, irs, rec.AssociatedIMPIs, time.Now()); err != nil {
		logging.Warn(component, "DeletePublicIDs failed", "impu", req.IMPU, "err", err)
	}
	return httpresult.XML(200, ims.BuildRegDataResponse(ims.StateNotRegistered, rec.XML))
}

// sendSAR builds and sends a Server-Assignment-Request, classifying the
// SAA result onto the cxerrors taxonomy; TOO_BUSY additionally
// records an overload penalty.
func (t *ImpuRegDataTask) sendSAR(ctx context.Context, impi, impu string, sarType cxcodec.ServerAssignmentType, histName string) (cxcodec.SAAResult, *cxerrors.Error) {
	req := cxcodec.BuildSAR(t.Dict, t.NewSessionID(), t.Origin(), t.Destination(), impi, impu, t.Cfg.DefaultServerName, sarType)
	answer, err := t.SendDiameter(ctx, histName, req, 0)
	if err != nil {
		return cxcodec.SAAResult{}, cxerrors.New(cxerrors.UpstreamOverload, err)
	}
	saa := cxcodec.ParseSAA(t.Dict, answer)
	if cxerr := saa.Result.Classify(); cxerr != nil {
		if cxerr.Code.RecordsOverloadPenalty() {
			t.Stats.RecordPenalty(histName)
		}
		return cxcodec.SAAResult{}, cxerr
	}
	return saa, nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
