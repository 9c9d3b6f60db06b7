// Package model holds the in-memory CycloneDX object graph.
//
// The types are plain attribute containers. Constructors and setters validate single
// values; Validate checks a whole graph through struct tags.
package model

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
)

var serialNumberPattern = regexp.MustCompile(
	`^urn:uuid:[0-9a-f]{8}-[0-9a-f]{4}-[1-5][0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`,
)

var (
	ErrInvalidSerialNumber = errors.New("invalid serial number")
	ErrInvalidBomVersion   = errors.New("bom version must be >= 1")
)

type Bom struct {
	Version            int    `validate:"gte=0"`
	SerialNumber       string `validate:"omitempty,serial_number"`
	Metadata           *Metadata
	Components         []*Component         `validate:"dive"`
	Services           []*Service           `validate:"dive"`
	ExternalReferences []*ExternalReference `validate:"dive"`
	Vulnerabilities    []*Vulnerability     `validate:"dive"`
	Formulation        []*Formula           `validate:"dive"`
	Properties         []Property           `validate:"dive"`
}

// NewBom returns a first-revision BOM with a random serial number.
func NewBom() *Bom {
	return &Bom{Version: 1, SerialNumber: NewSerialNumber()}
}

// NewSerialNumber returns a random RFC 4122 urn:uuid serial number.
func NewSerialNumber() string {
	return "urn:uuid:" + uuid.NewString()
}

// SerialNumberFrom derives a stable serial number from seed using a SHA-1 name-based UUID.
func SerialNumberFrom(seed string) string {
	return "urn:uuid:" + uuid.NewSHA1(uuid.NameSpaceURL, []byte(seed)).String()
}

func IsSerialNumber(s string) bool {
	return serialNumberPattern.MatchString(s)
}

func (b *Bom) SetSerialNumber(s string) error {
	if s != "" && !IsSerialNumber(s) {
		return fmt.Errorf("%w: %q", ErrInvalidSerialNumber, s)
	}
	b.SerialNumber = s
	return nil
}

func (b *Bom) SetVersion(v int) error {
	if v < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidBomVersion, v)
	}
	b.Version = v
	return nil
}

// EffectiveVersion returns Version, treating an unset counter as 1.
func (b *Bom) EffectiveVersion() int {
	if b.Version < 1 {
		return 1
	}
	return b.Version
}

type Metadata struct {
	Timestamp    *time.Time
	Lifecycles   []Lifecycle
	Tools        *Tools
	Authors      []OrganizationalContact `validate:"dive"`
	Component    *Component
	Manufacture  *OrganizationalEntity
	Manufacturer *OrganizationalEntity
	Supplier     *OrganizationalEntity
	Licenses     []License
	Properties   []Property `validate:"dive"`
}

// Tools lists what produced the BOM. Tools is the legacy representation; Components and
// Services are the structured one.
type Tools struct {
	Components []*Component `validate:"dive"`
	Services   []*Service   `validate:"dive"`
	Tools      []*Tool      `validate:"dive"`
}

func (t *Tools) IsZero() bool {
	return t == nil || (len(t.Components) == 0 && len(t.Services) == 0 && len(t.Tools) == 0)
}

type Tool struct {
	Vendor             string
	Name               string
	Version            string
	Hashes             []Hash               `validate:"dive"`
	ExternalReferences []*ExternalReference `validate:"dive"`
}

// ToolFromComponent converts a structured tool into the legacy shape.
func ToolFromComponent(c *Component) *Tool {
	t := &Tool{
		Name:               c.Name,
		Version:            c.Version,
		Hashes:             c.Hashes,
		ExternalReferences: c.ExternalReferences,
	}
	switch {
	case c.Group != "":
		t.Vendor = c.Group
	case c.Supplier != nil:
		t.Vendor = c.Supplier.Name
	case c.Manufacturer != nil:
		t.Vendor = c.Manufacturer.Name
	}
	return t
}

// ToolFromService converts a structured tool service into the legacy shape.
func ToolFromService(s *Service) *Tool {
	t := &Tool{
		Name:               s.Name,
		Version:            s.Version,
		ExternalReferences: s.ExternalReferences,
	}
	switch {
	case s.Group != "":
		t.Vendor = s.Group
	case s.Provider != nil:
		t.Vendor = s.Provider.Name
	}
	return t
}

type Formula struct {
	BomRef     BomRef
	Components []*Component `validate:"dive"`
	Services   []*Service   `validate:"dive"`
	Properties []Property   `validate:"dive"`
}

func (f *Formula) Ref() *BomRef {
	return &f.BomRef
}
