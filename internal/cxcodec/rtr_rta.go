package cxcodec

import (
	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
)

// DeregistrationReasonCode mirrors the 3GPP Deregistration-Reason
// enumeration carried on RTR (3GPP TS 29.229).
type DeregistrationReasonCode int32

const (
	ReasonPermanentTermination DeregistrationReasonCode = 0
	ReasonNewServerAssigned    DeregistrationReasonCode = 1
	ReasonServerChange         DeregistrationReasonCode = 2
	ReasonRemoveSCSCF          DeregistrationReasonCode = 3
)

// Valid reports whether the code is one the gateway recognizes. An
// unrecognised reason is rejected with RTA=UNABLE_TO_COMPLY.
func (c DeregistrationReasonCode) Valid() bool {
	switch c {
	case ReasonPermanentTermination, ReasonNewServerAssigned, ReasonServerChange, ReasonRemoveSCSCF:
		return true
	default:
		return false
	}
}

// RTRRequest is the decoded Registration-Termination-Request.
type RTRRequest struct {
	SessionID            string
	AuthSessionState     int32
	Reason               DeregistrationReasonCode
	ReasonInfo           string
	IMPI                 string
	AssociatedIdentities []string
	PublicIdentities     []string
}

// ParseRTR reads an inbound Registration-Termination-Request.
func ParseRTR(dict *cxdict.Dictionary, msg *diameter.Message) RTRRequest {
	var out RTRRequest
	if a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "Session-Id")); ok {
		out.SessionID, _ = a.Str()
	}
	if a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "Auth-Session-State")); ok {
		out.AuthSessionState, _ = a.Int32()
	}
	if a, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "Deregistration-Reason")); ok {
		if rc, ok := a.Find(dict.MustLookup(cxdict.Vendor3GPP, "Reason-Code")); ok {
			if v, ok := rc.Int32(); ok {
				out.Reason = DeregistrationReasonCode(v)
			}
		}
		if ri, ok := a.Find(dict.MustLookup(cxdict.Vendor3GPP, "Reason-Info")); ok {
			out.ReasonInfo, _ = ri.Str()
		}
	}
	if a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "User-Name")); ok {
		out.IMPI, _ = a.Str()
	}
	for _, a := range msg.FindAll(dict.MustLookup(cxdict.Vendor3GPP, "Associated-Identities")) {
		if s, ok := a.Str(); ok {
			out.AssociatedIdentities = append(out.AssociatedIdentities, s)
		}
	}
	for _, a := range msg.FindAll(dict.MustLookup(cxdict.Vendor3GPP, "Public-Identity")) {
		if s, ok := a.Str(); ok {
			out.PublicIdentities = append(out.PublicIdentities, s)
		}
	}
	return out
}

// RTAResult values mirror the base protocol result used on RTA:
// SUCCESS or UNABLE_TO_COMPLY.
const (
	RTASuccess        = DiameterSuccess
	RTAUnableToComply = DiameterUnableToComply
)

// BuildRTA constructs a Registration-Termination-Answer echoing the
// associated-identities list and auth-session-state from the request.
func BuildRTA(dict *cxdict.Dictionary, sessionID string, authSessionState int32, resultCode int32, associatedIdentities []string) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdRegistrationTerm, false)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Session-Id")).SetStr(sessionID))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Result-Code")).SetI32(resultCode))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Auth-Session-State")).SetI32(authSessionState))
	for _, id := range associatedIdentities {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Associated-Identities")).SetStr(id))
	}
	return msg
}
