package model

import (
	"errors"
	"fmt"
	"strings"
)

var ErrEmptyName = errors.New("name is required")

type Component struct {
	Type               ComponentType `validate:"required"`
	MimeType           string
	BomRef             BomRef
	Supplier           *OrganizationalEntity
	Manufacturer       *OrganizationalEntity
	Authors            []OrganizationalContact `validate:"dive"`
	Author             string
	Publisher          string
	Group              string
	Name               string `validate:"required"`
	Version            string
	Description        string
	Scope              ComponentScope `validate:"omitempty,oneof=required optional excluded"`
	Hashes             []Hash         `validate:"dive"`
	Licenses           []License
	Copyright          string
	CPE                string
	PURL               string
	OmniborIDs         []string
	SWHIDs             []string
	ExternalReferences []*ExternalReference `validate:"dive"`
	Modified           bool
	Properties         []Property   `validate:"dive"`
	Components         []*Component `validate:"dive"`
	Evidence           *ComponentEvidence
	Dependencies       []*BomRef
}

func NewComponent(typ ComponentType, name string) (*Component, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("component: %w", ErrEmptyName)
	}
	if typ == "" {
		typ = ComponentTypeLibrary
	}
	return &Component{Type: typ, Name: name}, nil
}

func (c *Component) Ref() *BomRef {
	return &c.BomRef
}

// DependsOn records dependency edges from c to every target.
func (c *Component) DependsOn(targets ...Referenceable) {
	c.Dependencies = append(c.Dependencies, refsOf(targets)...)
}

type Service struct {
	BomRef             BomRef
	Provider           *OrganizationalEntity
	Group              string
	Name               string `validate:"required"`
	Version            string
	Description        string
	Endpoints          []string `validate:"dive,url"`
	Authenticated      *bool
	XTrustBoundary     *bool
	Licenses           []License
	ExternalReferences []*ExternalReference `validate:"dive"`
	Properties         []Property           `validate:"dive"`
	Services           []*Service           `validate:"dive"`
	Dependencies       []*BomRef
}

func NewService(name string) (*Service, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("service: %w", ErrEmptyName)
	}
	return &Service{Name: name}, nil
}

func (s *Service) Ref() *BomRef {
	return &s.BomRef
}

func (s *Service) DependsOn(targets ...Referenceable) {
	s.Dependencies = append(s.Dependencies, refsOf(targets)...)
}
