package cxcodec

import (
	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/imsdata"
)

// Auth scheme names carried in SIP-Authentication-Scheme (3GPP TS 29.229).
const (
	SchemeSIPDigest = "SIP Digest"
	SchemeAKAv1MD5  = "Digest-AKAv1-MD5"
	SchemeUnknown   = "Unknown"
)

// BuildMAR constructs a Multimedia-Auth-Request. sipAuthorization is the
// client's echoed authorization header (AKA resync); empty for a plain
// digest/AKA vector pull.
//
// impi and impu are distinct fields: User-Name always carries the IMPI
// and Public-Identity always carries the caller's actual impu. Some HSS
// frontends conflate the two and read the IMPU back out of User-Name;
// that is never correct here.
func BuildMAR(dict *cxdict.Dictionary, sessionID string, origin Origin, dest Destination, impi, impu, serverName, sipAuthScheme, sipAuthorization string) *diameter.Message {
	msg := diameter.NewMessage(diameter.CmdMultimediaAuth, true)
	addCommonRequestHeaders(dict, msg, sessionID, origin, dest)
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "User-Name")).SetStr(impi))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Public-Identity")).SetStr(impu))

	item := diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Auth-Data-Item"))
	item.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authentication-Scheme")).SetStr(sipAuthScheme))
	if sipAuthorization != "" {
		item.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authorization")).SetStr(sipAuthorization))
	}
	msg.Add(item)

	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Number-Auth-Items")).SetI32(1))
	msg.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "Server-Name")).SetStr(serverName))
	return msg
}

// MAAResult is the decoded Multimedia-Auth-Answer: the echoed scheme plus
// whichever vector the scheme implies.
type MAAResult struct {
	Result HSSResult
	Scheme string
	Digest imsdata.DigestAuthVector
	AKA    imsdata.AKAAuthVector
}

// ParseMAA reads a Multimedia-Auth-Answer, extracting both digest and AKA
// sub-AVPs opportunistically; the caller decides which is meaningful based
// on Scheme.
func ParseMAA(dict *cxdict.Dictionary, msg *diameter.Message) MAAResult {
	var out MAAResult
	out.Result = readResult(dict, msg)

	item, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Auth-Data-Item"))
	if !ok {
		return out
	}
	if a, ok := item.Find(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authentication-Scheme")); ok {
		out.Scheme, _ = a.Str()
	}

	out.Digest = readDigestVector(dict, item)
	out.AKA = readAKAVector(dict, item)
	return out
}

// readDigestVector implements the HSS-vendor compatibility fallback:
// prefer the 3GPP-scoped Digest-HA1/Realm/QoP AVPs; if a
// given one is absent, fall back to its base-protocol-scoped equivalent
// (the OpenIMSCore-style HSS case).
func readDigestVector(dict *cxdict.Dictionary, item *diameter.AVP) imsdata.DigestAuthVector {
	digestGroup, ok := item.Find(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Digest-Authenticate"))
	if !ok {
		return imsdata.DigestAuthVector{}
	}

	var v imsdata.DigestAuthVector
	if a, ok := digestGroup.Find(dict.MustLookup(cxdict.Vendor3GPP, "Digest-HA1")); ok {
		v.HA1, _ = a.Str()
	} else if a, ok := digestGroup.Find(dict.MustLookup(cxdict.VendorBase, "Digest-HA1")); ok {
		v.HA1, _ = a.Str()
	}
	if a, ok := digestGroup.Find(dict.MustLookup(cxdict.Vendor3GPP, "Digest-Realm")); ok {
		v.Realm, _ = a.Str()
	} else if a, ok := digestGroup.Find(dict.MustLookup(cxdict.VendorBase, "Digest-Realm")); ok {
		v.Realm, _ = a.Str()
	}
	if a, ok := digestGroup.Find(dict.MustLookup(cxdict.Vendor3GPP, "Digest-QoP")); ok {
		v.QoP, _ = a.Str()
	} else if a, ok := digestGroup.Find(dict.MustLookup(cxdict.VendorBase, "Digest-QoP")); ok {
		v.QoP, _ = a.Str()
	}
	return v
}

func readAKAVector(dict *cxdict.Dictionary, item *diameter.AVP) imsdata.AKAAuthVector {
	var v imsdata.AKAAuthVector
	if a, ok := item.Find(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authenticate")); ok {
		v.Challenge, _ = a.Octets()
	}
	if a, ok := item.Find(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authorization")); ok {
		if b, ok := a.Octets(); ok {
			v.Response = b
		}
	}
	if a, ok := item.Find(dict.MustLookup(cxdict.Vendor3GPP, "Confidentiality-Key")); ok {
		v.CryptKey, _ = a.Octets()
	}
	if a, ok := item.Find(dict.MustLookup(cxdict.Vendor3GPP, "Integrity-Key")); ok {
		v.IntegrityKey, _ = a.Octets()
	}
	return v
}
