package domain

import (
	"bytes"
	"encoding/json"
	"regexp"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

var licenseKeyRegex = regexp.MustCompile(`^0x[0-9a-fA-F]{8}$`)

// ValidateLicenseKey checks the syntactic shape of a license key.
func ValidateLicenseKey(key string) error {
	if !licenseKeyRegex.MatchString(key) {
		return ValidationErrorf("license key %q is not a valid key", key)
	}
	return nil
}

// ValidateExpires requires a requested expiration date to be strictly later
// than today. The cap policy runs after this check, inside the core.
func ValidateExpires(expires time.Time, today time.Time) error {
	if !DateOf(expires).After(DateOf(today)) {
		return ValidationErrorf("expires must be a future date")
	}
	return nil
}

// ValidateExtraParams checks the request's extra_params against the script's
// schema. A script without a schema accepts anything, including nothing; a
// script with a schema requires conforming params.
func ValidateExtraParams(script Script, params map[string]any) error {
	if script.ExtraParamsSchema == nil {
		return nil
	}
	if params == nil {
		return ValidationErrorf("extra_params is required for %s", script.Name)
	}

	rawSchema, err := json.Marshal(script.ExtraParamsSchema)
	if err != nil {
		return ValidationErrorf("unusable extra_params_schema for %s", script.Name)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("extra_params_schema.json", bytes.NewReader(rawSchema)); err != nil {
		return ValidationErrorf("unusable extra_params_schema for %s", script.Name)
	}
	schema, err := compiler.Compile("extra_params_schema.json")
	if err != nil {
		return ValidationErrorf("unusable extra_params_schema for %s", script.Name)
	}

	// Round-trip so numbers land as float64, the shape the validator expects.
	rawParams, err := json.Marshal(params)
	if err != nil {
		return ValidationErrorf("invalid extra_params for %s", script.Name)
	}
	var instance any
	if err := json.Unmarshal(rawParams, &instance); err != nil {
		return ValidationErrorf("invalid extra_params for %s", script.Name)
	}

	if err := schema.Validate(instance); err != nil {
		return ValidationErrorf("invalid extra_params for %s: %v", script.Name, err)
	}
	return nil
}
