package model

import (
	"fmt"
	"regexp"
	"strings"
)

type Hash struct {
	Algorithm HashAlgorithm `validate:"required"`
	Content   string        `validate:"required,hexadecimal"`
}

// ExternalReference points at a resource outside the document. URL may be a BomLink.
type ExternalReference struct {
	URL     string                `validate:"required"`
	Type    ExternalReferenceType `validate:"required"`
	Comment string
	Hashes  []Hash                `validate:"dive"`
}

type Property struct {
	Name  string `validate:"required"`
	Value string
}

type OrganizationalContact struct {
	Name  string
	Email string `validate:"omitempty,email"`
	Phone string
}

func (c OrganizationalContact) IsZero() bool {
	return c.Name == "" && c.Email == "" && c.Phone == ""
}

type OrganizationalEntity struct {
	Name     string
	URLs     []string                `validate:"dive,url"`
	Contacts []OrganizationalContact `validate:"dive"`
}

type Attachment struct {
	Content     string `validate:"required"`
	ContentType string
	Encoding    string `validate:"omitempty,oneof=base64"`
}

// Lifecycle is either a predefined Phase or a custom Name with optional Description.
type Lifecycle struct {
	Phase       LifecyclePhase
	Name        string
	Description string
}

func (l Lifecycle) Validate() error {
	switch {
	case l.Phase != "" && l.Name != "":
		return fmt.Errorf("lifecycle: phase %q and name %q are exclusive", l.Phase, l.Name)
	case l.Phase == "" && l.Name == "":
		return fmt.Errorf("lifecycle: one of phase or name is required")
	}
	return nil
}

type ComponentEvidence struct {
	Licenses  []License
	Copyright []string
}

func (e *ComponentEvidence) IsZero() bool {
	return e == nil || (len(e.Licenses) == 0 && len(e.Copyright) == 0)
}

const bomLinkPrefix = "urn:cdx:"

var bomLinkPattern = regexp.MustCompile(
	`^urn:cdx:[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}/[1-9][0-9]*(#.+)?$`,
)

// NewBomLinkDocument returns a BomLink that addresses a whole BOM.
func NewBomLinkDocument(serial string, version int) (string, error) {
	id, err := serialUUID(serial)
	if err != nil {
		return "", err
	}
	if version < 1 {
		return "", fmt.Errorf("bom link: version must be >= 1, got %d", version)
	}
	return fmt.Sprintf("%s%s/%d", bomLinkPrefix, id, version), nil
}

// NewBomLinkElement returns a BomLink that addresses one element of a BOM by its bom-ref.
func NewBomLinkElement(serial string, version int, ref string) (string, error) {
	doc, err := NewBomLinkDocument(serial, version)
	if err != nil {
		return "", err
	}
	if ref == "" {
		return "", fmt.Errorf("bom link: empty element reference")
	}
	return doc + "#" + escapeFragment(ref), nil
}

// IsBomLink reports whether s is a syntactically valid BomLink.
func IsBomLink(s string) bool {
	return bomLinkPattern.MatchString(s)
}

func serialUUID(serial string) (string, error) {
	if !serialNumberPattern.MatchString(serial) {
		return "", fmt.Errorf("bom link: invalid serial number %q", serial)
	}
	return strings.TrimPrefix(serial, "urn:uuid:"), nil
}

func escapeFragment(ref string) string {
	var b strings.Builder
	for _, r := range ref {
		switch {
		case r == '%' || r == '#' || r == ' ' || r < 0x20:
			fmt.Fprintf(&b, "%%%02X", r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
