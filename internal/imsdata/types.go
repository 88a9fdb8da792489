// Package imsdata holds the subscriber data-model types shared between the
// Cx codec, the cache operations, and the HTTP handlers, so
// neither package needs to import the other just to pass these around.
package imsdata

import "fmt"

// RegState is the registration state of an IMPU. UNCHANGED is
// a sentinel used only in the handler-to-cache direction, meaning "leave
// this field alone".
type RegState int

const (
	NotRegistered RegState = iota
	Unregistered
	Registered
	Unchanged
)

func (s RegState) String() string {
	switch s {
	case NotRegistered:
		return "NOT_REGISTERED"
	case Unregistered:
		return "UNREGISTERED"
	case Registered:
		return "REGISTERED"
	case Unchanged:
		return "UNCHANGED"
	default:
		return fmt.Sprintf("RegState(%d)", int(s))
	}
}

// DigestAuthVector is a SIP Digest authentication vector.
type DigestAuthVector struct {
	HA1   string
	Realm string
	QoP   string
}

// EffectiveQoP returns QoP, substituting "auth" for an empty value —
// the JSON surface never emits an empty qop.
func (v DigestAuthVector) EffectiveQoP() string {
	if v.QoP == "" {
		return "auth"
	}
	return v.QoP
}

// AKAAuthVector is an AKA authentication vector. On the wire the fields
// are raw octets; on the HTTP surface Challenge is base64 and the other
// three are lowercase hex.
type AKAAuthVector struct {
	Challenge    []byte
	Response     []byte
	CryptKey     []byte
	IntegrityKey []byte
}

// ServerCapabilities is the UAA/LIA server-capabilities payload.
type ServerCapabilities struct {
	Mandatory  []int32
	Optional   []int32
	ServerName string
}

// ChargingAddresses is the ordered CCF/ECF address list; the
// first entry in each list is primary.
type ChargingAddresses struct {
	CCFs []string
	ECFs []string
}

// IsEmpty reports whether no charging addresses were set at all,
// distinguishing "charging addresses absent" from "charging addresses
// present but empty lists" the way PPR handling needs to.
func (c ChargingAddresses) IsEmpty() bool {
	return len(c.CCFs) == 0 && len(c.ECFs) == 0
}
