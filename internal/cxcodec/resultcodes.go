package cxcodec

import "github.com/sebas/cxgateway/internal/cxerrors"

// Base-protocol Diameter result codes (IETF RFC 6733), carried in the
// Result-Code AVP.
const (
	DiameterSuccess        int32 = 2001
	DiameterTooBusy        int32 = 3004
	DiameterAuthRejected   int32 = 5003
	DiameterUnableToComply int32 = 5012
)

// 3GPP Cx experimental result codes (3GPP TS 29.229 §6.2), carried in the
// Experimental-Result-Code AVP nested inside Experimental-Result.
const (
	ExpFirstRegistration          int32 = 2001
	ExpSubsequentRegistration     int32 = 2002
	ExpUnregisteredService        int32 = 2003
	ExpErrorUserUnknown           int32 = 5001
	ExpErrorIdentitiesDontMatch   int32 = 5002
	ExpErrorIdentityNotRegistered int32 = 5003
	ExpErrorRoamingNotAllowed     int32 = 5004
	ExpErrorInAssignmentType      int32 = 5007
)

// HSSResult is the decoded outcome of a Cx answer: a base Result-Code, or a
// 3GPP Experimental-Result-Code, never both populated. The two are kept
// as distinct fields; the experimental one wins when present.
type HSSResult struct {
	ResultCode            int32
	ExperimentalResult    int32
	HasExperimentalResult bool
}

// Code returns the effective result code to classify: the experimental
// code when present, else the base Result-Code.
func (r HSSResult) Code() int32 {
	if r.HasExperimentalResult && r.ExperimentalResult != 0 {
		return r.ExperimentalResult
	}
	return r.ResultCode
}

// IsSuccess reports whether the result indicates the Cx exchange itself
// succeeded at the protocol level (used to decide whether to read the
// answer's payload AVPs at all).
func (r HSSResult) IsSuccess() bool {
	c := r.Code()
	return c == DiameterSuccess || c == ExpFirstRegistration ||
		c == ExpSubsequentRegistration || c == ExpUnregisteredService
}

// Classify maps a decoded HSS result onto the cxerrors taxonomy — the
// single place the HSS-result → HTTP/Diameter-result mapping tables
// live. Returns nil for a successful result.
//
// 5003 is carried by two different AVPs with two different meanings —
// the base-protocol DIAMETER_AUTHORIZATION_REJECTED and the 3GPP
// ERROR_IDENTITY_NOT_REGISTERED — so this switches on HasExperimentalResult
// rather than on the merged Code().
func (r HSSResult) Classify() *cxerrors.Error {
	if r.IsSuccess() {
		return nil
	}
	if r.HasExperimentalResult {
		switch r.ExperimentalResult {
		case ExpErrorUserUnknown, ExpErrorIdentitiesDontMatch, ExpErrorIdentityNotRegistered:
			return cxerrors.New(cxerrors.NotFound, nil)
		case ExpErrorRoamingNotAllowed:
			return cxerrors.New(cxerrors.Forbidden, nil)
		default:
			return cxerrors.New(cxerrors.UpstreamError, nil)
		}
	}
	switch r.ResultCode {
	case DiameterTooBusy:
		return cxerrors.New(cxerrors.UpstreamOverload, nil)
	case DiameterAuthRejected:
		return cxerrors.New(cxerrors.Forbidden, nil)
	default:
		return cxerrors.New(cxerrors.UpstreamError, nil)
	}
}
