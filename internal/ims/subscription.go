// Package ims parses IMS-Subscription XML documents (3GPP TS 29.228
// Annex C) and derives implicit registration sets from them.
package ims

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// PublicIdentity is one <PublicIdentity> entry in a <ServiceProfile>.
type PublicIdentity struct {
	Identity string `xml:"Identity"`
}

// ServiceProfile groups the public identities that are aliases of one
// another: one Implicit Registration Set.
type ServiceProfile struct {
	PublicIdentities []PublicIdentity `xml:"PublicIdentity"`
}

// Subscription is the root IMSSubscription element.
type Subscription struct {
	XMLName         xml.Name         `xml:"IMSSubscription"`
	PrivateID       string           `xml:"PrivateID"`
	ServiceProfiles []ServiceProfile `xml:"ServiceProfile"`
}

// Parse decodes an IMS-Subscription XML document.
func Parse(doc string) (*Subscription, error) {
	var sub Subscription
	if err := xml.Unmarshal([]byte(doc), &sub); err != nil {
		return nil, fmt.Errorf("ims: parse subscription: %w", err)
	}
	return &sub, nil
}

// ServiceProfileFor returns the ServiceProfile containing impu, or nil if
// impu does not appear anywhere in the document.
func (s *Subscription) ServiceProfileFor(impu string) *ServiceProfile {
	for i := range s.ServiceProfiles {
		sp := &s.ServiceProfiles[i]
		for _, pi := range sp.PublicIdentities {
			if pi.Identity == impu {
				return sp
			}
		}
	}
	return nil
}

// Identities returns every public identity in the ServiceProfile, in
// document order.
func (sp *ServiceProfile) Identities() []string {
	out := make([]string, 0, len(sp.PublicIdentities))
	for _, pi := range sp.PublicIdentities {
		out = append(out, pi.Identity)
	}
	return out
}

// DefaultPublicIdentity returns the first PublicIdentity in document
// order — the IRS's cache key.
func (sp *ServiceProfile) DefaultPublicIdentity() string {
	if len(sp.PublicIdentities) == 0 {
		return ""
	}
	return sp.PublicIdentities[0].Identity
}

// DefaultPublicIdentityFor walks every ServiceProfile and returns the
// default public identity of the one containing impu. Returns "" if impu
// is not present in the document.
func (s *Subscription) DefaultPublicIdentityFor(impu string) string {
	sp := s.ServiceProfileFor(impu)
	if sp == nil {
		return ""
	}
	return sp.DefaultPublicIdentity()
}

// HasSIPURI reports whether any identity in the profile is a sip: or
// sips: URI, as opposed to a tel: URI only. A registration set of only
// tel URIs is accepted with a warning.
func (sp *ServiceProfile) HasSIPURI() bool {
	for _, pi := range sp.PublicIdentities {
		if strings.HasPrefix(pi.Identity, "sip:") || strings.HasPrefix(pi.Identity, "sips:") {
			return true
		}
	}
	return false
}
