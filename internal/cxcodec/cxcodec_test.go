package cxcodec

import (
	"testing"
	"time"

	"github.com/sebas/cxgateway/internal/cxdict"
	"github.com/sebas/cxgateway/internal/cxerrors"
	"github.com/sebas/cxgateway/internal/diameter"
	"github.com/sebas/cxgateway/internal/imsdata"
)

var (
	testOrigin = Origin{Host: "cxgateway.test", Realm: "test"}
	testDest   = Destination{Host: "hss.test", Realm: "test"}
)

func TestBuildUARRoundTrip(t *testing.T) {
	dict := cxdict.Default()
	msg := BuildUAR(dict, "sess;1;1", testOrigin, testDest, "impi@test", "sip:impu@test", "test.net", AuthTypeRegistration)

	if a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "User-Name")); !ok {
		t.Fatal("User-Name AVP missing")
	} else if v, _ := a.Str(); v != "impi@test" {
		t.Errorf("User-Name = %q, want impi@test", v)
	}
	if a, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "User-Authorization-Type")); !ok {
		t.Fatal("User-Authorization-Type AVP missing")
	} else if v, _ := a.Int32(); v != int32(AuthTypeRegistration) {
		t.Errorf("User-Authorization-Type = %d, want %d", v, AuthTypeRegistration)
	}
}

func TestParseUAACapabilities(t *testing.T) {
	dict := cxdict.Default()
	caps := imsdata.ServerCapabilities{Mandatory: []int32{1, 2}, Optional: []int32{3}}
	msg := BuildUAAForTest(dict, "sess;1;1", DiameterSuccess, 0, "scscf.test", caps)

	out := ParseUAA(dict, msg)
	if !out.Result.IsSuccess() {
		t.Fatalf("UAA result not success: %+v", out.Result)
	}
	if out.ServerName != "scscf.test" {
		t.Errorf("ServerName = %q, want scscf.test", out.ServerName)
	}
	if len(out.Capabilities.Mandatory) != 2 || len(out.Capabilities.Optional) != 1 {
		t.Errorf("Capabilities = %+v, want 2 mandatory, 1 optional", out.Capabilities)
	}
}

func TestMARBuildsDistinctImpiImpu(t *testing.T) {
	// Public-Identity is always set from the caller's impu, never
	// re-read from User-Name.
	dict := cxdict.Default()
	msg := BuildMAR(dict, "sess;1;1", testOrigin, testDest, "impi@test", "sip:impu@test", "scscf.test", SchemeSIPDigest, "")

	impu, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "Public-Identity"))
	if !ok {
		t.Fatal("Public-Identity AVP missing")
	}
	got, _ := impu.Str()
	if got != "sip:impu@test" {
		t.Errorf("Public-Identity = %q, want sip:impu@test (not the IMPI)", got)
	}
}

func TestParseMAADigestPrefers3GPPThenBaseFallback(t *testing.T) {
	dict := cxdict.Default()
	digest := imsdata.DigestAuthVector{HA1: "ha1value", Realm: "ims.test", QoP: "auth"}
	msg := BuildMAAForTest(dict, "sess;1;1", DiameterSuccess, SchemeSIPDigest, digest, imsdata.AKAAuthVector{})

	out := ParseMAA(dict, msg)
	if out.Scheme != SchemeSIPDigest {
		t.Errorf("Scheme = %q, want %q", out.Scheme, SchemeSIPDigest)
	}
	if out.Digest != digest {
		t.Errorf("Digest = %+v, want %+v", out.Digest, digest)
	}

	// An HSS that only populates the base-protocol-scoped digest AVPs
	// yields the same vector through the fallback.
	baseOnly := diameter.NewMessage(diameter.CmdMultimediaAuth, false)
	baseOnly.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Result-Code")).SetI32(DiameterSuccess))
	item := diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Auth-Data-Item"))
	item.Add(diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Authentication-Scheme")).SetStr(SchemeSIPDigest))
	group := diameter.NewAVP(dict.MustLookup(cxdict.Vendor3GPP, "SIP-Digest-Authenticate"))
	group.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Digest-HA1")).SetStr(digest.HA1))
	group.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Digest-Realm")).SetStr(digest.Realm))
	group.Add(diameter.NewAVP(dict.MustLookup(cxdict.VendorBase, "Digest-QoP")).SetStr(digest.QoP))
	item.Add(group)
	baseOnly.Add(item)
	if got := ParseMAA(dict, baseOnly).Digest; got != digest {
		t.Errorf("base-scoped fallback Digest = %+v, want %+v", got, digest)
	}
}

func TestParseMAAAKAVectorOctets(t *testing.T) {
	dict := cxdict.Default()
	aka := imsdata.AKAAuthVector{
		Challenge:    []byte{1, 2, 3},
		Response:     []byte{4, 5, 6},
		CryptKey:     []byte{7, 8},
		IntegrityKey: []byte{9, 10},
	}
	msg := BuildMAAForTest(dict, "sess;1;1", DiameterSuccess, SchemeAKAv1MD5, imsdata.DigestAuthVector{}, aka)

	out := ParseMAA(dict, msg)
	if string(out.AKA.Challenge) != string(aka.Challenge) {
		t.Errorf("Challenge = %v, want %v", out.AKA.Challenge, aka.Challenge)
	}
	if string(out.AKA.Response) != string(aka.Response) {
		t.Errorf("Response = %v, want %v", out.AKA.Response, aka.Response)
	}
}

func TestRTRAssociatedIdentitiesRoundTrip(t *testing.T) {
	dict := cxdict.Default()
	msg := BuildRTRForTest(dict, "sess;1;1", ReasonPermanentTermination, "impi@test",
		[]string{"impi2@test"}, []string{"sip:impu1@test", "sip:impu2@test"})

	req := ParseRTR(dict, msg)
	if req.Reason != ReasonPermanentTermination {
		t.Errorf("Reason = %d, want %d", req.Reason, ReasonPermanentTermination)
	}
	if !req.Reason.Valid() {
		t.Error("Reason.Valid() = false, want true")
	}
	if len(req.PublicIdentities) != 2 {
		t.Errorf("PublicIdentities = %v, want 2 entries", req.PublicIdentities)
	}
	if len(req.AssociatedIdentities) != 1 || req.AssociatedIdentities[0] != "impi2@test" {
		t.Errorf("AssociatedIdentities = %v, want [impi2@test]", req.AssociatedIdentities)
	}
}

func TestDeregistrationReasonCodeValid(t *testing.T) {
	cases := []struct {
		code DeregistrationReasonCode
		want bool
	}{
		{ReasonPermanentTermination, true},
		{ReasonNewServerAssigned, true},
		{ReasonServerChange, true},
		{ReasonRemoveSCSCF, true},
		{DeregistrationReasonCode(99), false},
	}
	for _, c := range cases {
		if got := c.code.Valid(); got != c.want {
			t.Errorf("DeregistrationReasonCode(%d).Valid() = %v, want %v", c.code, got, c.want)
		}
	}
}

func TestBuildRTAEchoesAssociatedIdentities(t *testing.T) {
	dict := cxdict.Default()
	msg := BuildRTA(dict, "sess;1;1", 1, RTASuccess, []string{"impi2@test"})
	if got := ParseRTAResultForTest(dict, msg); got != RTASuccess {
		t.Errorf("Result-Code = %d, want %d", got, RTASuccess)
	}
	ids := msg.FindAll(dict.MustLookup(cxdict.Vendor3GPP, "Associated-Identities"))
	if len(ids) != 1 {
		t.Fatalf("Associated-Identities count = %d, want 1", len(ids))
	}
}

func TestBuildSARImpiEmptyDefaultsToUnregisteredUser(t *testing.T) {
	dict := cxdict.Default()
	msg := BuildSAR(dict, "sess;1;1", testOrigin, testDest, "", "sip:impu@test", "scscf.test", 0)

	if _, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "User-Name")); ok {
		t.Error("User-Name AVP present, want omitted for empty impi")
	}
	a, ok := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "Server-Assignment-Type"))
	if !ok {
		t.Fatal("Server-Assignment-Type AVP missing")
	}
	if v, _ := a.Int32(); v != int32(SATUnregisteredUser) {
		t.Errorf("Server-Assignment-Type = %d, want %d", v, SATUnregisteredUser)
	}
}

func TestBuildSARExplicitTypeNotOverridden(t *testing.T) {
	dict := cxdict.Default()
	msg := BuildSAR(dict, "sess;1;1", testOrigin, testDest, "", "sip:impu@test", "scscf.test", SATTimeoutDeregistration)

	a, _ := msg.Find(dict.MustLookup(cxdict.Vendor3GPP, "Server-Assignment-Type"))
	if v, _ := a.Int32(); v != int32(SATTimeoutDeregistration) {
		t.Errorf("Server-Assignment-Type = %d, want %d (explicit type preserved)", v, SATTimeoutDeregistration)
	}
}

func TestParseSAAChargingAddresses(t *testing.T) {
	dict := cxdict.Default()
	addrs := imsdata.ChargingAddresses{CCFs: []string{"ccf1", "ccf2"}, ECFs: []string{"ecf1"}}
	msg := BuildSAAForTest(dict, "sess;1;1", DiameterSuccess, "<IMSSubscription/>", addrs)

	out := ParseSAA(dict, msg)
	if out.UserData != "<IMSSubscription/>" {
		t.Errorf("UserData = %q", out.UserData)
	}
	if len(out.ChargingAddrs.CCFs) != 2 || len(out.ChargingAddrs.ECFs) != 1 {
		t.Errorf("ChargingAddrs = %+v, want 2 CCFs, 1 ECF", out.ChargingAddrs)
	}
}

func TestParsePPRUserDataAndChargingIndependentlyOptional(t *testing.T) {
	dict := cxdict.Default()

	userDataOnly := BuildPPRForTest(dict, "sess;1;1", "impi@test", "<IMSSubscription/>", nil)
	req := ParsePPR(dict, userDataOnly)
	if !req.HasUserData || req.HasChargingAddrs {
		t.Errorf("user-data-only PPR: HasUserData=%v HasChargingAddrs=%v, want true/false", req.HasUserData, req.HasChargingAddrs)
	}

	addrs := imsdata.ChargingAddresses{CCFs: []string{"ccf1"}}
	chargingOnly := BuildPPRForTest(dict, "sess;1;1", "impi@test", "", &addrs)
	req2 := ParsePPR(dict, chargingOnly)
	if req2.HasUserData || !req2.HasChargingAddrs {
		t.Errorf("charging-only PPR: HasUserData=%v HasChargingAddrs=%v, want false/true", req2.HasUserData, req2.HasChargingAddrs)
	}
}

func TestBuildPPAEchoesAuthSessionState(t *testing.T) {
	dict := cxdict.Default()
	msg := BuildPPA(dict, "sess;1;1", 1, PPASuccess)
	a, ok := msg.Find(dict.MustLookup(cxdict.VendorBase, "Auth-Session-State"))
	if !ok {
		t.Fatal("Auth-Session-State AVP missing")
	}
	if v, _ := a.Int32(); v != 1 {
		t.Errorf("Auth-Session-State = %d, want 1", v)
	}
}

func TestHSSResultClassify(t *testing.T) {
	cases := []struct {
		name   string
		result HSSResult
		wantOK bool
	}{
		{"success", HSSResult{ResultCode: DiameterSuccess}, true},
		{"first registration", HSSResult{HasExperimentalResult: true, ExperimentalResult: ExpFirstRegistration}, true},
		{"user unknown", HSSResult{HasExperimentalResult: true, ExperimentalResult: ExpErrorUserUnknown}, false},
		{"too busy", HSSResult{ResultCode: DiameterTooBusy}, false},
		{"auth rejected", HSSResult{ResultCode: DiameterAuthRejected}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.result.Classify()
			if c.wantOK && err != nil {
				t.Errorf("Classify() = %v, want nil", err)
			}
			if !c.wantOK && err == nil {
				t.Error("Classify() = nil, want non-nil error")
			}
		})
	}
}

func TestHSSResultClassifyDistinguishes5003(t *testing.T) {
	// Result-Code 5003 (base DIAMETER_AUTHORIZATION_REJECTED) and
	// Experimental-Result-Code 5003 (ERROR_IDENTITY_NOT_REGISTERED) must
	// classify differently even though the numeric code collides.
	base := HSSResult{ResultCode: DiameterAuthRejected}
	if got := base.Classify(); got == nil || got.Code != cxerrors.Forbidden {
		t.Errorf("base 5003 Classify() = %v, want Forbidden", got)
	}

	exp := HSSResult{HasExperimentalResult: true, ExperimentalResult: ExpErrorIdentityNotRegistered}
	if got := exp.Classify(); got == nil || got.Code != cxerrors.NotFound {
		t.Errorf("experimental 5003 Classify() = %v, want NotFound (not Forbidden)", got)
	}
}

func TestSessionIDGeneratorShapeAndMonotonic(t *testing.T) {
	gen := NewSessionIDGenerator("cxgateway.test", time.Unix(1000, 0))
	first := gen.Next()
	second := gen.Next()
	if first == second {
		t.Fatal("Next() returned the same session ID twice")
	}
	wantPrefix := "cxgateway.test;1000;"
	if len(first) <= len(wantPrefix) || first[:len(wantPrefix)] != wantPrefix {
		t.Errorf("session id = %q, want prefix %q", first, wantPrefix)
	}
}
