package cxcodec

import (
	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/imsdata"
)

// ServerAssignmentType mirrors the 3GPP Server-Assignment-Type enumeration.
type ServerAssignmentType int32

const (
	SATRegistration                 ServerAssignmentType = 1
	SATReRegistration               ServerAssignmentType = 2
	SATUnregisteredUser             ServerAssignmentType = 3
	SATTimeoutDeregistration        ServerAssignmentType = 4
	SATUserDeregistration           ServerAssignmentType = 5
	SATAdministrativeDeregistration ServerAssignmentType = 8
	SATAuthenticationFailure        ServerAssignmentType = 9
	SATAuthenticationTimeout        ServerAssignmentType = 10
)

// BuildSAR constructs a Server-Assignment-Request. impi is omitted from
// the wire message when empty — a call-path SAR, or a dereg request with
// no private_id, carries no User-Name AVP — and an empty impi with a zero
// assignmentType sends SATUnregisteredUser (callers in
// internal/handlers/regdata always pass an explicit type, so this is a
// defensive fallback only).
func BuildSAR(dict *cxdict.Dictionary, sessionID string, origin Origin, dest Destination, impi, impu, serverName string, assignmentType ServerAssignmentType) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdServerAssignment, true)
	addCommonRequestHeaders(dict, msg, sessionID, origin, dest)
	if impi != "" {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "User-Name")).SetStr(impi))
	}
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Public-Identity")).SetStr(impu))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Server-Name")).SetStr(serverName))

	effectiveType := assignmentType
	if impi == "" && effectiveType == 0 {
		effectiveType = SATUnregisteredUser
	}
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Server-Assignment-Type")).SetI32(int32(effectiveType)))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "User-Data-Already-Available")).SetI32(0))
	return msg
}

// SAAResult is the decoded Server-Assignment-Answer.
type SAAResult struct {
	Result        HSSResult
	UserData      string
	ChargingAddrs imsdata.ChargingAddresses
}

// ParseSAA reads a Server-Assignment-Answer.
func ParseSAA(dict *cxdict.Dictionary, msg *diameter.Message) SAAResult {
	var out SAAResult
	out.Result = readResult(dict, msg)
	if a, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "User-Data")); ok {
		out.UserData, _ = a.Str()
	}
	out.ChargingAddrs = readChargingAddresses(dict, msg)
	return out
}

func readChargingAddresses(dict *cxdict.Dictionary, msg *diameter.Message) imsdata.ChargingAddresses {
	var addrs imsdata.ChargingAddresses
	group, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "Charging-Information"))
	if !ok {
		return addrs
	}
	if a, ok := group.Find(dict.MustLookup(cxdict.Vendor3GPP, "Primary-Charging-Collection-Function-Name")); ok {
		if s, ok := a.Str(); ok && s != "" {
			addrs.CCFs = append(addrs.CCFs, s)
		}
	}
	if a, ok := group.Find(dict.MustLookup(cxdict.Vendor3GPP, "Secondary-Charging-Collection-Function-Name")); ok {
		if s, ok := a.Str(); ok && s != "" {
			addrs.CCFs = append(addrs.CCFs, s)
		}
	}
	if a, ok := group.Find(dict.MustLookup(cxdict.Vendor3GPP, "Primary-Event-Charging-Function-Name")); ok {
		if s, ok := a.Str(); ok && s != "" {
			addrs.ECFs = append(addrs.ECFs, s)
		}
	}
	if a, ok := group.Find(dict.MustLookup(cxdict.Vendor3GPP, "Secondary-Event-Charging-Function-Name")); ok {
		if s, ok := a.Str(); ok && s != "" {
			addrs.ECFs = append(addrs.ECFs, s)
		}
	}
	return addrs
}

// buildChargingInformationAVP is the inverse of readChargingAddresses, used
// by BuildPPRForTest to attach a PPR's Charging-Information group.
func buildChargingInformationAVP(dict *cxdict.Dictionary, addrs imsdata.ChargingAddresses) *diameter.AVP {
	group := diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Charging-Information"))
	if len(addrs.CCFs) > 0 {
		group.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Primary-Charging-Collection-Function-Name")).SetStr(addrs.CCFs[0]))
	}
	if len(addrs.CCFs) > 1 {
		group.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Secondary-Charging-Collection-Function-Name")).SetStr(addrs.CCFs[1]))
	}
	if len(addrs.ECFs) > 0 {
		group.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Primary-Event-Charging-Function-Name")).SetStr(addrs.ECFs[0]))
	}
	if len(addrs.ECFs) > 1 {
		group.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Secondary-Event-Charging-Function-Name")).SetStr(addrs.ECFs[1]))
	}
	return group
}
