// Package lookup implements the I-CSCF lookup tasks:
// ImpiRegistrationStatusTask (UAR/UAA) and ImpuLocationInfoTask (LIR/LIA).
package lookup

import (
	"context"

	"github.com/sebas/cxgateway/internal/cxcodec"
	"github.com/sebas/cxgateway/internal/cxerrors"
	"github.com/sebas/cxgateway/internal/handlers/httpresult"
	"github.com/sebas/cxgateway/internal/hsstask"
	"github.com/sebas/cxgateway/internal/stats"
)

// icscfResponse is the shared I-CSCF JSON response shape.
type icscfResponse struct {
	ResultCode            int32   `json:"result-code"`
	SCSCF                 string  `json:"scscf,omitempty"`
	MandatoryCapabilities []int32 `json:"mandatory-capabilities"`
	OptionalCapabilities  []int32 `json:"optional-capabilities"`
}

func renderUAAResult(res cxcodec.UAAResult) icscfResponse {
	out := icscfResponse{
		ResultCode:            res.Result.Code(),
		SCSCF:                 res.ServerName,
		MandatoryCapabilities: res.Capabilities.Mandatory,
		OptionalCapabilities:  res.Capabilities.Optional,
	}
	if out.MandatoryCapabilities == nil {
		out.MandatoryCapabilities = []int32{}
	}
	if out.OptionalCapabilities == nil {
		out.OptionalCapabilities = []int32{}
	}
	return out
}

// ImpiRegistrationStatusTask serves GET /impi/{impi}/registration-status.
type ImpiRegistrationStatusTask struct {
	*hsstask.Base
}

// NewImpiRegistrationStatusTask builds a registration-status task over the
// given shared base.
func NewImpiRegistrationStatusTask(base *hsstask.Base) *ImpiRegistrationStatusTask {
	return &ImpiRegistrationStatusTask{base}
}

// RegistrationStatusRequest is the decoded GET
// /impi/{impi}/registration-status request.
type RegistrationStatusRequest struct {
	IMPI           string
	IMPU           string
	VisitedNetwork string
	AuthType       string // "", "DEREG", or "CAPAB"
}

func uarAuthType(authType string) cxcodec.UserAuthorizationType {
	switch authType {
	case "DEREG":
		return cxcodec.AuthTypeDeregistration
	case "CAPAB":
		return cxcodec.AuthTypeRegistrationAndCapab
	default:
		return cxcodec.AuthTypeRegistration
	}
}

// Handle serves the request.
func (t *ImpiRegistrationStatusTask) Handle(ctx context.Context, req RegistrationStatusRequest) httpresult.Response {
	if !t.HSSConfigured() {
		return httpresult.JSON(200, icscfResponse{
			ResultCode:            cxcodec.DiameterSuccess,
			SCSCF:                 t.Cfg.DefaultServerName,
			MandatoryCapabilities: []int32{},
			OptionalCapabilities:  []int32{},
		})
	}

	uar := cxcodec.BuildUAR(t.Dict, t.NewSessionID(), t.Origin(), t.Destination(), req.IMPI, req.IMPU, req.VisitedNetwork, uarAuthType(req.AuthType))
	answer, err := t.SendDiameter(ctx, stats.HSSSubscriptionLatUs, uar, 0)
	if err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	uaa := cxcodec.ParseUAA(t.Dict, answer)
	if cxerr := uaa.Result.Classify(); cxerr != nil {
		if cxerr.Code.RecordsOverloadPenalty() {
			t.Stats.RecordPenalty(stats.HSSSubscriptionLatUs)
		}
		return httpresult.FromError(cxerr)
	}
	return httpresult.JSON(200, renderUAAResult(uaa))
}

// ImpuLocationInfoTask serves GET /impu/{impu}/location.
type ImpuLocationInfoTask struct {
	*hsstask.Base
}

// NewImpuLocationInfoTask builds a location-info task over the given
// shared base.
func NewImpuLocationInfoTask(base *hsstask.Base) *ImpuLocationInfoTask {
	return &ImpuLocationInfoTask{base}
}

// LocationInfoRequest is the decoded GET /impu/{impu}/location request.
type LocationInfoRequest struct {
	IMPU        string
	Originating bool
	AuthType    string // "" or "CAPAB"
}

// Handle serves the request.
func (t *ImpuLocationInfoTask) Handle(ctx context.Context, req LocationInfoRequest) httpresult.Response {
	if !t.HSSConfigured() {
		return httpresult.JSON(200, icscfResponse{
			ResultCode:            cxcodec.DiameterSuccess,
			SCSCF:                 t.Cfg.DefaultServerName,
			MandatoryCapabilities: []int32{},
			OptionalCapabilities:  []int32{},
		})
	}

	capabilitiesOnly := req.AuthType == "CAPAB"
	lir := cxcodec.BuildLIR(t.Dict, t.NewSessionID(), t.Origin(), t.Destination(), req.IMPU, req.Originating, capabilitiesOnly)
	answer, err := t.SendDiameter(ctx, stats.HSSSubscriptionLatUs, lir, 0)
	if err != nil {
		return httpresult.FromError(cxerrors.New(cxerrors.UpstreamOverload, err))
	}
	lia := cxcodec.ParseLIA(t.Dict, answer)
	if cxerr := lia.Result.Classify(); cxerr != nil {
		if cxerr.Code.RecordsOverloadPenalty() {
			t.Stats.RecordPenalty(stats.HSSSubscriptionLatUs)
		}
		return httpresult.FromError(cxerr)
	}
	return httpresult.JSON(200, renderUAAResult(lia))
}
