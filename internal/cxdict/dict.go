// Package cxdict is the module-level AVP dictionary for the Cx reference
// point (3GPP TS 29.229). It names every Attribute-Value-Pair this gateway
// builds or parses by (vendor, name), built once at startup and passed by
// reference.
package cxdict

// VendorID identifies the AVP vendor space an AVP code lives in.
type VendorID uint32

const (
	// VendorBase is the IETF base-protocol AVP space (no vendor).
	VendorBase VendorID = 0
	// Vendor3GPP is the 3GPP vendor ID used by every Cx-specific AVP.
	Vendor3GPP VendorID = 10415
)

// AVPName is a (vendor, name) key into the dictionary, mirroring the
// source's Dictionary member-per-AVP layout without the boilerplate of one
// named field per AVP.
type AVPName struct {
	Vendor VendorID
	Name   string
}

// Code identifies an AVP's wire code point plus whether it carries the
// vendor-specific flag.
type Code struct {
	Vendor VendorID
	Code   uint32
}

// Dictionary maps every AVP this gateway knows about to its wire code.
// Constructed once at startup (Default()) and treated as immutable
// thereafter; handlers and the codec hold a read-only reference.
type Dictionary struct {
	entries map[AVPName]Code
}

// Base-protocol (RFC 6733) AVP codes used directly, or as OpenIMSCore-style
// fallbacks for AVPs 3GPP also defines in its own vendor space.
const (
	codeSessionID             = 263
	codeOriginHost            = 264
	codeOriginRealm           = 296
	codeDestinationHost       = 293
	codeDestinationRealm      = 283
	codeAuthSessionState      = 277
	codeResultCode            = 268
	codeExperimentalResult    = 297
	codeExperimentalResultCod = 298
	codeVendorSpecificAppID   = 260
	codeAuthAppID             = 258
	codeVendorID              = 266
	codeUserName              = 1
	codeDigestRealm           = 104
	codeDigestHA1             = 121
	codeDigestQoP             = 110
)

// 3GPP Cx vendor-specific AVP codes (3GPP TS 29.229 / 29.230).
const (
	code3GPPPublicIdentity           = 601
	code3GPPSIPAuthDataItem          = 612
	code3GPPSIPAuthScheme            = 608
	code3GPPSIPAuthorization         = 610
	code3GPPSIPNumberAuthItems       = 607
	code3GPPServerName               = 602
	code3GPPSIPDigestAuthenticate    = 635
	code3GPPDigestHA1                = 627
	code3GPPDigestRealm              = 104 // 3GPP reuses the base code point
	code3GPPDigestQoP                = 110 // 3GPP reuses the base code point
	code3GPPVisitedNetworkIdentifier = 600
	code3GPPServerCapabilities       = 603
	code3GPPMandatoryCapability      = 604
	code3GPPOptionalCapability       = 605
	code3GPPServerAssignmentType     = 614
	code3GPPUserAuthorizationType    = 623
	code3GPPOriginatingRequest       = 633
	code3GPPUserDataAlreadyAvail     = 624
	code3GPPUserData                 = 606
	code3GPPSIPAuthenticate          = 609
	code3GPPConfidentialityKey       = 625
	code3GPPIntegrityKey             = 626
	code3GPPChargingInformation      = 618
	code3GPPPrimaryCCFAddress        = 619
	code3GPPSecondaryCCFAddress      = 620
	code3GPPPrimaryECFAddress        = 621
	code3GPPSecondaryECFAddress      = 622
	code3GPPDeregistrationReason     = 615
	code3GPPReasonCode               = 616
	code3GPPReasonInfo               = 617
	code3GPPAssociatedIdentities     = 632
)

var defaultDictionary = &Dictionary{
	entries: map[AVPName]Code{
		{VendorBase, "Session-Id"}:                     {VendorBase, codeSessionID},
		{VendorBase, "Origin-Host"}:                    {VendorBase, codeOriginHost},
		{VendorBase, "Origin-Realm"}:                   {VendorBase, codeOriginRealm},
		{VendorBase, "Destination-Host"}:               {VendorBase, codeDestinationHost},
		{VendorBase, "Destination-Realm"}:              {VendorBase, codeDestinationRealm},
		{VendorBase, "Auth-Session-State"}:             {VendorBase, codeAuthSessionState},
		{VendorBase, "Result-Code"}:                    {VendorBase, codeResultCode},
		{VendorBase, "Experimental-Result"}:            {VendorBase, codeExperimentalResult},
		{VendorBase, "Experimental-Result-Code"}:       {VendorBase, codeExperimentalResultCod},
		{VendorBase, "Vendor-Specific-Application-Id"}: {VendorBase, codeVendorSpecificAppID},
		{VendorBase, "Auth-Application-Id"}:            {VendorBase, codeAuthAppID},
		{VendorBase, "Vendor-Id"}:                      {VendorBase, codeVendorID},
		{VendorBase, "User-Name"}:                      {VendorBase, codeUserName},
		{VendorBase, "Digest-Realm"}:                   {VendorBase, codeDigestRealm},
		{VendorBase, "Digest-HA1"}:                     {VendorBase, codeDigestHA1},
		{VendorBase, "Digest-QoP"}:                     {VendorBase, codeDigestQoP},

		{Vendor3GPP, "Public-Identity"}:                             {Vendor3GPP, code3GPPPublicIdentity},
		{Vendor3GPP, "SIP-Auth-Data-Item"}:                          {Vendor3GPP, code3GPPSIPAuthDataItem},
		{Vendor3GPP, "SIP-Authentication-Scheme"}:                   {Vendor3GPP, code3GPPSIPAuthScheme},
		{Vendor3GPP, "SIP-Authorization"}:                           {Vendor3GPP, code3GPPSIPAuthorization},
		{Vendor3GPP, "SIP-Number-Auth-Items"}:                       {Vendor3GPP, code3GPPSIPNumberAuthItems},
		{Vendor3GPP, "Server-Name"}:                                 {Vendor3GPP, code3GPPServerName},
		{Vendor3GPP, "SIP-Digest-Authenticate"}:                     {Vendor3GPP, code3GPPSIPDigestAuthenticate},
		{Vendor3GPP, "Digest-HA1"}:                                  {Vendor3GPP, code3GPPDigestHA1},
		{Vendor3GPP, "Digest-Realm"}:                                {Vendor3GPP, code3GPPDigestRealm},
		{Vendor3GPP, "Digest-QoP"}:                                  {Vendor3GPP, code3GPPDigestQoP},
		{Vendor3GPP, "Visited-Network-Identifier"}:                  {Vendor3GPP, code3GPPVisitedNetworkIdentifier},
		{Vendor3GPP, "Server-Capabilities"}:                         {Vendor3GPP, code3GPPServerCapabilities},
		{Vendor3GPP, "Mandatory-Capability"}:                        {Vendor3GPP, code3GPPMandatoryCapability},
		{Vendor3GPP, "Optional-Capability"}:                         {Vendor3GPP, code3GPPOptionalCapability},
		{Vendor3GPP, "Server-Assignment-Type"}:                      {Vendor3GPP, code3GPPServerAssignmentType},
		{Vendor3GPP, "User-Authorization-Type"}:                     {Vendor3GPP, code3GPPUserAuthorizationType},
		{Vendor3GPP, "Originating-Request"}:                         {Vendor3GPP, code3GPPOriginatingRequest},
		{Vendor3GPP, "User-Data-Already-Available"}:                 {Vendor3GPP, code3GPPUserDataAlreadyAvail},
		{Vendor3GPP, "User-Data"}:                                   {Vendor3GPP, code3GPPUserData},
		{Vendor3GPP, "SIP-Authenticate"}:                            {Vendor3GPP, code3GPPSIPAuthenticate},
		{Vendor3GPP, "Confidentiality-Key"}:                         {Vendor3GPP, code3GPPConfidentialityKey},
		{Vendor3GPP, "Integrity-Key"}:                               {Vendor3GPP, code3GPPIntegrityKey},
		{Vendor3GPP, "Charging-Information"}:                        {Vendor3GPP, code3GPPChargingInformation},
		{Vendor3GPP, "Primary-Charging-Collection-Function-Name"}:   {Vendor3GPP, code3GPPPrimaryCCFAddress},
		{Vendor3GPP, "Secondary-Charging-Collection-Function-Name"}: {Vendor3GPP, code3GPPSecondaryCCFAddress},
		{Vendor3GPP, "Primary-Event-Charging-Function-Name"}:        {Vendor3GPP, code3GPPPrimaryECFAddress},
		{Vendor3GPP, "Secondary-Event-Charging-Function-Name"}:      {Vendor3GPP, code3GPPSecondaryECFAddress},
		{Vendor3GPP, "Deregistration-Reason"}:                       {Vendor3GPP, code3GPPDeregistrationReason},
		{Vendor3GPP, "Reason-Code"}:                                 {Vendor3GPP, code3GPPReasonCode},
		{Vendor3GPP, "Reason-Info"}:                                 {Vendor3GPP, code3GPPReasonInfo},
		{Vendor3GPP, "Associated-Identities"}:                       {Vendor3GPP, code3GPPAssociatedIdentities},
	},
}

// Default returns the process-wide Cx dictionary. It is built once and is
// logically immutable; callers never mutate the returned value.
func Default() *Dictionary {
	return defaultDictionary
}

// Lookup resolves an AVP name to its wire code. The second return value is
// false if the dictionary has no entry for that (vendor, name) pair.
func (d *Dictionary) Lookup(vendor VendorID, name string) (Code, bool) {
	c, ok := d.entries[AVPName{vendor, name}]
	return c, ok
}

// MustLookup is Lookup but panics on an unknown AVP name; used only for
// names this package itself defines as constants, so a miss is a
// programming error, not a runtime condition.
func (d *Dictionary) MustLookup(vendor VendorID, name string) Code {
	c, ok := d.Lookup(vendor, name)
	if !ok {
		panic("cxdict: unknown AVP " + name)
	}
	return c
}
