// Package cxcodec builds and parses Cx command AVP trees.
// Every builder takes a *cxdict.Dictionary so AVP codes are looked up
// rather than hard-coded at each call site.
package cxcodec

import (
	"encoding/base64"
	"encoding/hex"

	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/imsdata"
)

// UserAuthorizationType mirrors the 3GPP User-Authorization-Type
// enumeration used on both UAR and LIR.
type UserAuthorizationType int32

const (
	AuthTypeRegistration         UserAuthorizationType = 0
	AuthTypeDeregistration       UserAuthorizationType = 1
	AuthTypeRegistrationAndCapab UserAuthorizationType = 2
	AuthTypeCapabilitiesOnly     UserAuthorizationType = 3
)

// Origin is the Origin-Host/Origin-Realm pair every outbound request
// stamps, taken from process configuration.
type Origin struct {
	Host  string
	Realm string
}

// Destination is the Destination-Host/Destination-Realm pair every
// outbound request targets.
type Destination struct {
	Host  string
	Realm string
}

func addCommonRequestHeaders(dict *cxdict.Dictionary, msg *diameter.Message, sessionID string, origin Origin, dest Destination) {
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Session-Id")).SetStr(sessionID))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Auth-Session-State")).SetI32(1))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Origin-Host")).SetStr(origin.Host))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Origin-Realm")).SetStr(origin.Realm))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Destination-Host")).SetStr(dest.Host))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Destination-Realm")).SetStr(dest.Realm))
}

// BuildUAR constructs a User-Authorization-Request.
func BuildUAR(dict *cxdict.Dictionary, sessionID string, origin Origin, dest Destination, impi, impu, visitedNetwork string, authType UserAuthorizationType) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdUserAuthorization, true)
	addCommonRequestHeaders(dict, msg, sessionID, origin, dest)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "User-Name")).SetStr(impi))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Public-Identity")).SetStr(impu))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Visited-Network-Identifier")).SetStr(visitedNetwork))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "User-Authorization-Type")).SetI32(int32(authType)))
	return msg
}

// BuildLIR constructs a Location-Info-Request. originating
// requests Originating-Request=0; capabilitiesOnly sets
// User-Authorization-Type=3.
func BuildLIR(dict *cxdict.Dictionary, sessionID string, origin Origin, dest Destination, impu string, originating, capabilitiesOnly bool) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdLocationInfo, true)
	addCommonRequestHeaders(dict, msg, sessionID, origin, dest)
	if originating {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Originating-Request")).SetI32(0))
	}
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Public-Identity")).SetStr(impu))
	if capabilitiesOnly {
		msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "User-Authorization-Type")).SetI32(int32(AuthTypeCapabilitiesOnly)))
	}
	return msg
}

// UAAResult / LIAResult carry the fields UAA and LIA share: a result code,
// optional scscf name, and server capabilities.
type UAAResult struct {
	Result       HSSResult
	ServerName   string
	Capabilities imsdata.ServerCapabilities
}

func readServerCapabilities(dict *cxdict.Dictionary, msg *diameter.Message) imsdata.ServerCapabilities {
	var caps imsdata.ServerCapabilities
	groupCode := dict.MustLookup(cxdict.Vendor3GPP, "Server-Capabilities")
	group, ok := msg.Find(groupCode)
	if !ok {
		return caps
	}
	mandCode := dict.MustLookup(cxdict.Vendor3GPP, "Mandatory-Capability")
	for _, a := range group.FindAll(mandCode) {
		if v, ok := a.Int32(); ok {
			caps.Mandatory = append(caps.Mandatory, v)
		}
	}
	optCode := dict.MustLookup(cxdict.Vendor3GPP, "Optional-Capability")
	for _, a := range group.FindAll(optCode) {
		if v, ok := a.Int32(); ok {
			caps.Optional = append(caps.Optional, v)
		}
	}
	return caps
}

func readResult(dict *cxdict.Dictionary, msg *diameter.Message) HSSResult {
	var r HSSResult
	if a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "Result-Code")); ok {
		if v, ok := a.Int32(); ok {
			r.ResultCode = v
		}
	}
	if group, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "Experimental-Result")); ok {
		if a, ok := group.Find(dict.MustLookup(cxdict.VendorBase, "Experimental-Result-Code")); ok {
			if v, ok := a.Int32(); ok {
				r.ExperimentalResult = v
				r.HasExperimentalResult = true
			}
		}
	}
	return r
}

// ParseUAA reads a User-Authorization-Answer.
func ParseUAA(dict *cxdict.Dictionary, msg *diameter.Message) UAAResult {
	var out UAAResult
	out.Result = readResult(dict, msg)
	if a, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "Server-Name")); ok {
		out.ServerName, _ = a.Str()
	}
	out.Capabilities = readServerCapabilities(dict, msg)
	return out
}

// ParseLIA reads a Location-Info-Answer; it has the same shape as UAA.
func ParseLIA(dict *cxdict.Dictionary, msg *diameter.Message) UAAResult {
	return ParseUAA(dict, msg)
}

// EncodeBase64 and EncodeHex are small wire-format helpers used by the
// HTTP surface when rendering AKA vectors.
func EncodeBase64(b []byte) string { return base64.StdEncoding.EncodeToString(b) }
func EncodeHex(b []byte) string    { return hex.EncodeToString(b) }
