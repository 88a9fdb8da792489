package cxcodec

import (
	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/imsdata"
)

// PPRRequest is the decoded Push-Profile-Request.
// UserData and ChargingAddrs are independently optional.
type PPRRequest struct {
	SessionID        string
	AuthSessionState int32
	IMPI             string
	HasUserData      bool
	UserData         string
	HasChargingAddrs bool
	ChargingAddrs    imsdata.ChargingAddresses
}

// ParsePPR reads an inbound Push-Profile-Request.
func ParsePPR(dict *cxdict.Dictionary, msg *diameter.Message) PPRRequest {
	var out PPRRequest
	if a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "Session-Id")); ok {
		out.SessionID, _ = a.Str()
	}
	if a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "Auth-Session-State")); ok {
		out.AuthSessionState, _ = a.Int32()
	}
	if a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "User-Name")); ok {
		out.IMPI, _ = a.Str()
	}
	if a, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "User-Data")); ok {
		out.HasUserData = true
		out.UserData, _ = a.Str()
	}
	if _, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "Charging-Information")); ok {
		out.HasChargingAddrs = true
		out.ChargingAddrs = readChargingAddresses(dict, msg)
	}
	return out
}

// PPA result codes mirror RTA's: SUCCESS or
// UNABLE_TO_COMPLY.
const (
	PPASuccess        = DiameterSuccess
	PPAUnableToComply = DiameterUnableToComply
)

// BuildPPA constructs a Push-Profile-Answer echoing auth-session-state
// from the request.
func BuildPPA(dict *cxdict.Dictionary, sessionID string, authSessionState int32, resultCode int32) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdPushProfile, false)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Session-Id")).SetStr(sessionID))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Result-Code")).SetI32(resultCode))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Auth-Session-State")).SetI32(authSessionState))
	return msg
}

// buildSAAWithCharging and BuildPPRForTest (testsupport.go) exercise
// buildChargingInformationAVP end to end; production code never needs to
// build an SAA or PPR (those are inbound-only in this gateway's direction)
// but the test fakes do, so the builder lives in production code rather
// than being duplicated in _test.go files.
func buildSAAWithCharging(dict *cxdict.Dictionary, sessionID string, resultCode int32, userData string, addrs imsdata.ChargingAddresses) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdServerAssignment, false)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Session-Id")).SetStr(sessionID))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Result-Code")).SetI32(resultCode))
	if userData != "" {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "User-Data")).SetStr(userData))
	}
	if !addrs.IsEmpty() {
		msg.Add(buildChargingInformationAVP(dict, addrs))
	}
	return msg
}

// BuildSAAForTest exposes buildSAAWithCharging to _test.go files across
// package boundaries (handlers tests build fake HSS answers with it).
func BuildSAAForTest(dict *cxdict.Dictionary, sessionID string, resultCode int32, userData string, addrs imsdata.ChargingAddresses) *diameter.Message {
	return buildSAAWithCharging(dict, sessionID, resultCode, userData, addrs)
}
