// Package diameter is the Diameter collaborator contract: a minimal AVP-tree
// message representation and a Client interface for sending Cx requests.
// Framing, peer tables, routing and session management are explicitly out
// of scope — this package only gives internal/cxcodec
// something concrete to build and parse, and gives handlers something to
// call. The real transport is plugged in at process-bootstrap time; tests
// use the in-memory FakeClient in client.go.
package diameter

import "github.com/sebas/cxgateway/internal/cxdict"

// AVP is one node in a Diameter Attribute-Value-Pair tree. Exactly one of
// the value fields is meaningful, selected by which Set/accessor was used;
// Grouped AVPs carry children instead of a scalar value.
type AVP struct {
	Code     cxdict.Code
	strVal   string
	hasStr   bool
	i32Val   int32
	hasI32   bool
	octets   []byte
	hasOctet bool
	children []*AVP
}

// NewAVP creates an empty AVP for the given dictionary code. Callers chain
// one of SetStr/SetI32/SetOctets/Add to populate it.
func NewAVP(code cxdict.Code) *AVP {
	return &AVP{Code: code}
}

// SetStr sets a UTF8String/OctetString-as-text value and returns the AVP
// for chaining.
func (a *AVP) SetStr(v string) *AVP {
	a.strVal = v
	a.hasStr = true
	return a
}

// SetI32 sets an Integer32/Enumerated value and returns the AVP for
// chaining.
func (a *AVP) SetI32(v int32) *AVP {
	a.i32Val = v
	a.hasI32 = true
	return a
}

// SetOctets sets a raw OctetString value and returns the AVP for chaining.
func (a *AVP) SetOctets(v []byte) *AVP {
	a.octets = v
	a.hasOctet = true
	return a
}

// Add appends a child AVP to a Grouped AVP and returns the parent for
// chaining.
func (a *AVP) Add(child *AVP) *AVP {
	a.children = append(a.children, child)
	return a
}

// Str returns the AVP's string value.
func (a *AVP) Str() (string, bool) {
	return a.strVal, a.hasStr
}

// Int32 returns the AVP's integer value.
func (a *AVP) Int32() (int32, bool) {
	return a.i32Val, a.hasI32
}

// Octets returns the AVP's raw octet value.
func (a *AVP) Octets() ([]byte, bool) {
	if !a.hasOctet {
		return nil, false
	}
	return a.octets, true
}

// Children returns every direct child of a Grouped AVP.
func (a *AVP) Children() []*AVP {
	return a.children
}

// Find returns the first direct child with the given code.
func (a *AVP) Find(code cxdict.Code) (*AVP, bool) {
	for _, c := range a.children {
		if c.Code == code {
			return c, true
		}
	}
	return nil, false
}

// FindAll returns every direct child with the given code, in document
// order — used for repeated AVPs like Public-Identity on RTR or
// Mandatory-Capability inside Server-Capabilities.
func (a *AVP) FindAll(code cxdict.Code) []*AVP {
	var out []*AVP
	for _, c := range a.children {
		if c.Code == code {
			out = append(out, c)
		}
	}
	return out
}

// Message is a Diameter command: a command code plus a flat or nested AVP
// tree. CommandCode identifies the Cx command (e.g. User-Authorization,
// Server-Assignment); IsRequest distinguishes request from answer for
// commands that share a code.
type Message struct {
	CommandCode uint32
	IsRequest   bool
	avps        []*AVP
}

// NewMessage creates an empty message for the given command code.
func NewMessage(commandCode uint32, isRequest bool) *Message {
	return &Message{CommandCode: commandCode, IsRequest: isRequest}
}

// Add appends a top-level AVP and returns the message for chaining.
func (m *Message) Add(avp *AVP) *Message {
	m.avps = append(m.avps, avp)
	return m
}

// Find returns the first top-level AVP with the given code.
func (m *Message) Find(code cxdict.Code) (*AVP, bool) {
	for _, a := range m.avps {
		if a.Code == code {
			return a, true
		}
	}
	return nil, false
}

// FindAll returns every top-level AVP with the given code, in document
// order.
func (m *Message) FindAll(code cxdict.Code) []*AVP {
	var out []*AVP
	for _, a := range m.avps {
		if a.Code == code {
			out = append(out, a)
		}
	}
	return out
}

// AVPs returns the top-level AVP list.
func (m *Message) AVPs() []*AVP {
	return m.avps
}
