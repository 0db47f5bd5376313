package adf

import (
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
)

// Header is the fixed declaration prefix of every serialized lead.
const Header = `<?xml version="1.0" encoding="UTF-8"?><?adf version="1.0"?>`

var (
	// ErrEmptyDocument is returned when parsing input without a root element.
	ErrEmptyDocument = errors.New("adf: document has no root element")
	// ErrNilNode is returned when marshaling a nil tree.
	ErrNilNode = errors.New("adf: nil node")
)

// Boilerplate is the provider and vendor identity stamped on every lead.
type Boilerplate struct {
	Provider Provider
	Vendor   Vendor
}

// DefaultBoilerplate returns the dealership defaults.
func DefaultBoilerplate() Boilerplate {
	return Boilerplate{
		Provider: Provider{
			Name: "Dealership Website Provider",
			URL:  "http://www.example.com",
		},
		Vendor: Vendor{
			Name: "Acura",
			URL:  "http://www.example.com/",
			Contact: Contact{
				Phone:  "855-464-5522",
				Street: "Montclair Acura, 100 Bloomfield Avenue",
				City:   "Verona",
				State:  "NJ",
				Zip:    "07044",
			},
		},
	}
}

// NewProspect returns a prospect element holding requestdate, provider and
// vendor. Workflow content is appended by the caller.
func NewProspect(requestTime time.Time, b Boilerplate) *etree.Element {
	return Element("prospect",
		RequestDateNode(requestTime),
		ProviderNode(b.Provider),
		VendorNode(b.Vendor),
	)
}

// NewDocument wraps a prospect in the adf root.
func NewDocument(prospect *etree.Element) *etree.Element {
	return Element("adf", prospect)
}

// newDocument returns an empty document with the write settings every lead
// uses: explicit end tags for empty elements, and quotes and apostrophes left
// literal in text.
func newDocument() *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings.CanonicalEndTags = true
	doc.WriteSettings.CanonicalText = true
	doc.WriteSettings.CanonicalAttrVal = true
	return doc
}

// Marshal serializes a copy of root behind the fixed ADF header. Output is
// compact (no indentation) and deterministic for a given tree.
func Marshal(root *etree.Element) ([]byte, error) {
	if root == nil {
		return nil, ErrNilNode
	}
	doc := newDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	doc.CreateProcInst("adf", `version="1.0"`)
	doc.SetRoot(root.Copy())

	out, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("adf: write document: %w", err)
	}
	return out, nil
}

// MarshalString is Marshal for callers that want the email body directly.
func MarshalString(root *etree.Element) (string, error) {
	b, err := Marshal(root)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Parse reads a serialized lead back and returns its root element.
func Parse(data []byte) (*etree.Element, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, fmt.Errorf("adf: parse: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, ErrEmptyDocument
	}
	return root, nil
}
