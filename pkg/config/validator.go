package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/compozy/bomkit/engine/spec"
)

// RegisterCustomValidators registers the spec_version and bom_format tags.
func RegisterCustomValidators(v *validator.Validate) error {
	if err := v.RegisterValidation("spec_version", validateSpecVersion); err != nil {
		return err
	}
	return v.RegisterValidation("bom_format", validateBomFormat)
}

func validateSpecVersion(fl validator.FieldLevel) bool {
	_, err := spec.ParseVersion(fl.Field().String())
	return err == nil
}

func validateBomFormat(fl validator.FieldLevel) bool {
	_, err := spec.ParseFormat(fl.Field().String())
	return err == nil
}

// checkFormatSupported rejects combinations such as JSON for 1.0 and 1.1.
func checkFormatSupported(version, format string) error {
	v, err := spec.ParseVersion(version)
	if err != nil {
		return err
	}
	f, err := spec.ParseFormat(format)
	if err != nil {
		return err
	}
	if !spec.SupportsFormat(v, f) {
		return fmt.Errorf("CycloneDX %s does not support the %s format", v, f)
	}
	return nil
}
