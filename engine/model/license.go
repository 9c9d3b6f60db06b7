package model

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

// License is one of *NamedLicense, *SpdxLicense or *LicenseExpression.
type License interface {
	isLicense()
	// Ack returns the acknowledgement, empty when unset.
	Ack() LicenseAcknowledgement
}

type NamedLicense struct {
	Name            string `validate:"required"`
	Text            *Attachment
	URL             string `validate:"omitempty,url"`
	Acknowledgement LicenseAcknowledgement
}

type SpdxLicense struct {
	ID              string `validate:"required,spdx_id"`
	Text            *Attachment
	URL             string `validate:"omitempty,url"`
	Acknowledgement LicenseAcknowledgement
}

type LicenseExpression struct {
	Expression      string `validate:"required"`
	Acknowledgement LicenseAcknowledgement
}

func (*NamedLicense) isLicense()      {}
func (*SpdxLicense) isLicense()       {}
func (*LicenseExpression) isLicense() {}

func (l *NamedLicense) Ack() LicenseAcknowledgement      { return l.Acknowledgement }
func (l *SpdxLicense) Ack() LicenseAcknowledgement       { return l.Acknowledgement }
func (l *LicenseExpression) Ack() LicenseAcknowledgement { return l.Acknowledgement }

var (
	ErrEmptyLicense       = errors.New("license must not be empty")
	ErrUnknownSPDXLicense = errors.New("unknown SPDX license id")
)

func NewNamedLicense(name string) (*NamedLicense, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("named license: %w", ErrEmptyLicense)
	}
	return &NamedLicense{Name: name}, nil
}

// NewSpdxLicense rejects ids outside the embedded SPDX list. Matching is case-insensitive
// and the canonical spelling is stored.
func NewSpdxLicense(id string) (*SpdxLicense, error) {
	canonical, ok := LookupSPDXLicense(id)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownSPDXLicense, id)
	}
	return &SpdxLicense{ID: canonical}, nil
}

func NewLicenseExpression(expr string) (*LicenseExpression, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return nil, fmt.Errorf("license expression: %w", ErrEmptyLicense)
	}
	return &LicenseExpression{Expression: expr}, nil
}

//go:embed spdx_licenses.txt
var spdxLicenseData string

var (
	spdxOnce  sync.Once
	spdxIndex map[string]string
	spdxIDs   []string
)

func loadSPDX() {
	spdxOnce.Do(func() {
		lines := strings.Split(spdxLicenseData, "\n")
		spdxIndex = make(map[string]string, len(lines))
		for _, line := range lines {
			id := strings.TrimSpace(line)
			if id == "" || strings.HasPrefix(id, "#") {
				continue
			}
			spdxIndex[strings.ToLower(id)] = id
			spdxIDs = append(spdxIDs, id)
		}
		sort.Strings(spdxIDs)
	})
}

// LookupSPDXLicense returns the canonical spelling of id.
func LookupSPDXLicense(id string) (string, bool) {
	loadSPDX()
	canonical, ok := spdxIndex[strings.ToLower(strings.TrimSpace(id))]
	return canonical, ok
}

// IsSPDXLicenseID reports whether id is an embedded SPDX identifier in canonical spelling.
func IsSPDXLicenseID(id string) bool {
	loadSPDX()
	canonical, ok := spdxIndex[strings.ToLower(id)]
	return ok && canonical == id
}

// SPDXLicenseIDs returns the sorted embedded SPDX identifiers.
func SPDXLicenseIDs() []string {
	loadSPDX()
	out := make([]string, len(spdxIDs))
	copy(out, spdxIDs)
	return out
}
