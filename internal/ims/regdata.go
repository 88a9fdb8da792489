package ims

import (
	"encoding/xml"
	"strings"
)

// RegistrationState mirrors the ClearwaterRegData response's
// RegistrationState element.
type RegistrationState string

const (
	StateRegistered    RegistrationState = "REGISTERED"
	StateUnregistered  RegistrationState = "UNREGISTERED"
	StateNotRegistered RegistrationState = "NOT_REGISTERED"
)

// BuildRegDataResponse renders the <ClearwaterRegData> envelope returned
// from PUT/GET /impu/{impu}/reg-data. subscriptionXML is the
// raw IMSSubscription document (its own <?xml?> declaration, if any, is
// dropped); an empty subscriptionXML produces a blank subscription body,
// matching the dereg-with-no-cached-xml case.
func BuildRegDataResponse(state RegistrationState, subscriptionXML string) string {
	var b strings.Builder
	b.WriteString("<ClearwaterRegData>\n")
	b.WriteString("\t<RegistrationState>")
	b.WriteString(string(state))
	b.WriteString("</RegistrationState>\n")
	if strings.TrimSpace(subscriptionXML) != "" {
		if root, err := parseElement(subscriptionXML); err == nil {
			b.WriteString("\t<IMSSubscription>\n")
			for _, child := range root.Children {
				writeElement(&b, child, 2)
			}
			b.WriteString("\t</IMSSubscription>\n")
		}
	}
	b.WriteString("</ClearwaterRegData>\n\n")
	return b.String()
}

// element is a generic, order-preserving XML tree node used to re-indent
// an arbitrary subscription document without committing to a fixed Go
// struct shape.
type element struct {
	Name     string
	Text     string
	Children []element
}

// parseElement decodes doc (skipping any XML declaration) into its root
// element.
func parseElement(doc string) (element, error) {
	dec := xml.NewDecoder(strings.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err != nil {
			return element{}, err
		}
		if start, ok := tok.(xml.StartElement); ok {
			return decodeElement(dec, start)
		}
	}
}

func decodeElement(dec *xml.Decoder, start xml.StartElement) (element, error) {
	el := element{Name: start.Name.Local}
	for {
		tok, err := dec.Token()
		if err != nil {
			return el, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			child, err := decodeElement(dec, t)
			if err != nil {
				return el, err
			}
			el.Children = append(el.Children, child)
		case xml.CharData:
			el.Text += string(t)
		case xml.EndElement:
			el.Text = strings.TrimSpace(el.Text)
			return el, nil
		}
	}
}

// writeElement renders el and its children at the given tab depth, one
// tag per line; a childless element with text is rendered on a single
// line.
func writeElement(b *strings.Builder, el element, depth int) {
	indent := strings.Repeat("\t", depth)
	if len(el.Children) == 0 {
		b.WriteString(indent)
		b.WriteString("<")
		b.WriteString(el.Name)
		b.WriteString(">")
		b.WriteString(el.Text)
		b.WriteString("</")
		b.WriteString(el.Name)
		b.WriteString(">\n")
		return
	}
	b.WriteString(indent)
	b.WriteString("<")
	b.WriteString(el.Name)
	b.WriteString(">\n")
	for _, child := range el.Children {
		writeElement(b, child, depth+1)
	}
	b.WriteString(indent)
	b.WriteString("</")
	b.WriteString(el.Name)
	b.WriteString(">\n")
}
