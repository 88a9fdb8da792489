package diameter

import (
	"reflect"
	"testing"

	"github.com/sebas/cxgateway/internal/cxdict"
)

var testCode = cxdict.Code{Vendor: cxdict.Vendor3GPP, Code: 600}
var otherCode = cxdict.Code{Vendor: cxdict.VendorBase, Code: 1}

func TestAVPSetStrRoundTrip(t *testing.T) {
	a := NewAVP(testCode).SetStr("sip:alice@example.com")
	got, ok := a.Str()
	if !ok || got != "sip:alice@example.com" {
		t.Errorf("Str() = (%q, %v), want (sip:alice@example.com, true)", got, ok)
	}
	if _, ok := a.Int32(); ok {
		t.Error("Int32() ok = true on a string AVP")
	}
}

func TestAVPSetOctetsUnsetReturnsFalse(t *testing.T) {
	a := NewAVP(testCode)
	if _, ok := a.Octets(); ok {
		t.Error("Octets() ok = true on an AVP with no octet value set")
	}
	a.SetOctets([]byte{1, 2, 3})
	got, ok := a.Octets()
	if !ok || !reflect.DeepEqual(got, []byte{1, 2, 3}) {
		t.Errorf("Octets() = (%v, %v), want ([1 2 3], true)", got, ok)
	}
}

func TestAVPFindAndFindAll(t *testing.T) {
	parent := NewAVP(testCode)
	parent.Add(NewAVP(otherCode).SetStr("a"))
	parent.Add(NewAVP(otherCode).SetStr("b"))
	parent.Add(NewAVP(testCode).SetStr("c"))

	first, ok := parent.Find(otherCode)
	if !ok {
		t.Fatal("Find(otherCode) not found")
	}
	if v, _ := first.Str(); v != "a" {
		t.Errorf("Find(otherCode) = %q, want first match a", v)
	}

	all := parent.FindAll(otherCode)
	if len(all) != 2 {
		t.Fatalf("FindAll(otherCode) len = %d, want 2", len(all))
	}
}

func TestMessageFindAndFindAll(t *testing.T) {
	m := NewMessage(CmdRegistrationTerm, true)
	m.Add(NewAVP(testCode).SetStr("sip:alice@example.com"))
	m.Add(NewAVP(testCode).SetStr("sip:bob@example.com"))

	all := m.FindAll(testCode)
	if len(all) != 2 {
		t.Fatalf("FindAll(testCode) len = %d, want 2", len(all))
	}

	if _, ok := m.Find(otherCode); ok {
		t.Error("Find(otherCode) ok = true, want no such top-level AVP")
	}

	if len(m.AVPs()) != 2 {
		t.Errorf("AVPs() len = %d, want 2", len(m.AVPs()))
	}
}
