package model

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

func structValidator() *validator.Validate {
	validateOnce.Do(func() {
		v := validator.New()
		if err := RegisterCustomValidators(v); err != nil {
			panic(fmt.Sprintf("model: register validators: %v", err))
		}
		validate = v
	})
	return validate
}

// RegisterCustomValidators registers the CycloneDX specific tags on v.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("serial_number", validateSerialNumber); err != nil {
		return err
	}
	return v.RegisterValidation("spdx_id", validateSPDXID)
}

func validateSerialNumber(fl validator.FieldLevel) bool {
	return IsSerialNumber(fl.Field().String())
}

func validateSPDXID(fl validator.FieldLevel) bool {
	return IsSPDXLicenseID(fl.Field().String())
}

// Validate checks v (a model value or pointer) against its struct tags and the license
// and lifecycle rules that tags cannot express.
func Validate(v any) error {
	if err := structValidator().Struct(v); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on %q", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("model validation failed: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("model validation failed: %w", err)
	}
	if b, ok := v.(*Bom); ok {
		return validateBomExtras(b)
	}
	return nil
}

func validateBomExtras(b *Bom) error {
	if b.Metadata != nil {
		for i, l := range b.Metadata.Lifecycles {
			if err := l.Validate(); err != nil {
				return fmt.Errorf("metadata.lifecycles[%d]: %w", i, err)
			}
		}
		if err := ValidateLicenses(b.Metadata.Licenses); err != nil {
			return fmt.Errorf("metadata.licenses: %w", err)
		}
	}
	var err error
	WalkComponents(b, func(c *Component) bool {
		if lerr := ValidateLicenses(c.Licenses); lerr != nil {
			err = fmt.Errorf("component %q licenses: %w", c.Name, lerr)
			return false
		}
		return true
	})
	return err
}

// ValidateLicenses checks every license variant's own struct tags.
func ValidateLicenses(licenses []License) error {
	for i, l := range licenses {
		if l == nil {
			return fmt.Errorf("license[%d] is nil", i)
		}
		if err := structValidator().Struct(l); err != nil {
			return fmt.Errorf("license[%d]: %w", i, err)
		}
	}
	return nil
}

// WalkComponents visits every component of b depth-first: the metadata component, then
// top-level components, then formulation components. Returning false stops the walk.
func WalkComponents(b *Bom, fn func(*Component) bool) {
	var walk func([]*Component) bool
	walk = func(cs []*Component) bool {
		for _, c := range cs {
			if c == nil {
				continue
			}
			if !fn(c) || !walk(c.Components) {
				return false
			}
		}
		return true
	}
	if b.Metadata != nil && b.Metadata.Component != nil {
		if !walk([]*Component{b.Metadata.Component}) {
			return
		}
	}
	if !walk(b.Components) {
		return
	}
	for _, f := range b.Formulation {
		if f != nil && !walk(f.Components) {
			return
		}
	}
}
