package cxcodec

import (
	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/imsdata"
)

// The Build*ForTest helpers construct inbound-looking answers/requests that
// only a real HSS (or, in tests, a diameter.FakeClient handler) would ever
// produce. They live here rather than in _test.go files because the
// handler packages' own tests need to script these messages through a
// FakeClient across a package boundary.

// BuildUAAForTest constructs a User-Authorization-Answer.
func BuildUAAForTest(dict *cxdict.Dictionary, sessionID string, resultCode int32, experimentalResult int32, serverName string, caps imsdata.ServerCapabilities) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdUserAuthorization, false)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Session-Id")).SetStr(sessionID))
	if resultCode != 0 {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Result-Code")).SetI32(resultCode))
	}
	if experimentalResult != 0 {
		group := diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Experimental-Result"))
		group.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Vendor-Id")).SetI32(int32(cxdict.Vendor3GPP)))
		group.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Experimental-Result-Code")).SetI32(experimentalResult))
		msg.Add(group)
	}
	if serverName != "" {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Server-Name")).SetStr(serverName))
	}
	if len(caps.Mandatory) > 0 || len(caps.Optional) > 0 {
		group := diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Server-Capabilities"))
		for _, v := range caps.Mandatory {
			group.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Mandatory-Capability")).SetI32(v))
		}
		for _, v := range caps.Optional {
			group.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Optional-Capability")).SetI32(v))
		}
		msg.Add(group)
	}
	return msg
}

// BuildLIAForTest constructs a Location-Info-Answer; same shape as UAA.
func BuildLIAForTest(dict *cxdict.Dictionary, sessionID string, resultCode int32, experimentalResult int32, serverName string, caps imsdata.ServerCapabilities) *diameter.Message {
	msg := BuildUAAForTest(dict, sessionID, resultCode, experimentalResult, serverName, caps)
	msg.CommandCode = diameter.CmdLocationInfo
	return msg
}

// BuildMAAForTest constructs a Multimedia-Auth-Answer carrying either a
// digest or an AKA vector (the caller passes the zero value of whichever
// one doesn't apply).
func BuildMAAForTest(dict *cxdict.Dictionary, sessionID string, resultCode int32, scheme string, digest imsdata.DigestAuthVector, aka imsdata.AKAAuthVector) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdMultimediaAuth, false)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Session-Id")).SetStr(sessionID))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Result-Code")).SetI32(resultCode))

	item := diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Auth-Data-Item"))
	if scheme != "" {
		item.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authentication-Scheme")).SetStr(scheme))
	}
	if digest.HA1 != "" || digest.Realm != "" {
		digestGroup := diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Digest-Authenticate"))
		digestGroup.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Digest-HA1")).SetStr(digest.HA1))
		digestGroup.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Digest-Realm")).SetStr(digest.Realm))
		if digest.QoP != "" {
			digestGroup.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Digest-QoP")).SetStr(digest.QoP))
		}
		item.Add(digestGroup)
	}
	if len(aka.Challenge) > 0 {
		item.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authenticate")).SetOctets(aka.Challenge))
		item.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authorization")).SetOctets(aka.Response))
		item.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Confidentiality-Key")).SetOctets(aka.CryptKey))
		item.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Integrity-Key")).SetOctets(aka.IntegrityKey))
	}
	msg.Add(item)
	return msg
}

// BuildRTRForTest constructs a Registration-Termination-Request.
func BuildRTRForTest(dict *cxdict.Dictionary, sessionID string, reason DeregistrationReasonCode, impi string, associated []string, publicIDs []string) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdRegistrationTerm, true)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Session-Id")).SetStr(sessionID))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Auth-Session-State")).SetI32(1))
	reasonGroup := diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Deregistration-Reason"))
	reasonGroup.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Reason-Code")).SetI32(int32(reason)))
	msg.Add(reasonGroup)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "User-Name")).SetStr(impi))
	for _, a := range associated {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Associated-Identities")).SetStr(a))
	}
	for _, p := range publicIDs {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Public-Identity")).SetStr(p))
	}
	return msg
}

// ParseRTAResultForTest reads the Result-Code AVP off an RTA/PPA answer —
// used by handler tests across the package boundary that only need to
// assert the outcome, not decode the full message.
func ParseRTAResultForTest(dict *cxdict.Dictionary, msg *diameter.Message) int32 {
	a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "Result-Code"))
	if !ok {
		return 0
	}
	v, _ := a.Int32()
	return v
}

// BuildPPRForTest constructs a Push-Profile-Request.
func BuildPPRForTest(dict *cxdict.Dictionary, sessionID, impi string, userData string, addrs *imsdata.ChargingAddresses) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdPushProfile, true)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Session-Id")).SetStr(sessionID))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Auth-Session-State")).SetI32(1))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "User-Name")).SetStr(impi))
	if userData != "" {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "User-Data")).SetStr(userData))
	}
	if addrs != nil {
		msg.Add(buildChargingInformationAVP(dict, *addrs))
	}
	return msg
}
