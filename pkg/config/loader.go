package config

import (
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	// Report YAML field names instead of Go field names
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks struct constraints and cross-field rules
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return formatValidationError(err)
	}
	return validateConfig(c)
}

// validateConfig performs the checks struct tags cannot express
func validateConfig(cfg *Config) error {
	if len(cfg.Inputs.DomainMatchFiles()) == 0 {
		return fmt.Errorf("inputs: at least one of smart_domain_matches_file or pfam_domain_matches_file must be set")
	}

	if cfg.Sampling.PairCap <= 0 {
		return fmt.Errorf("sampling: pair_cap must be positive, got %d", cfg.Sampling.PairCap)
	}
	if cfg.Sampling.InstancesPerType <= 0 {
		return fmt.Errorf("sampling: instances_per_type must be positive, got %d", cfg.Sampling.InstancesPerType)
	}

	if err := ValidateReplicateLabels(cfg.Replicates); err != nil {
		return err
	}

	return nil
}

// ValidateReplicateLabels checks that labels are unique and usable as file names
func ValidateReplicateLabels(labels []string) error {
	seen := make(map[string]bool, len(labels))
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("replicates: label cannot be empty")
		}
		if strings.ContainsAny(label, `/\`) || label == "." || label == ".." {
			return fmt.Errorf("replicates: label %q must not contain path separators", label)
		}
		if seen[label] {
			return fmt.Errorf("replicates: duplicate label %s", label)
		}
		seen[label] = true
	}
	return nil
}

func formatValidationError(err error) error {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}

	// Report the first failing field
	for _, e := range validationErrs {
		field := strings.TrimPrefix(e.Namespace(), "Config.")
		switch e.Tag() {
		case "required":
			return fmt.Errorf("%s: field is required", field)
		case "oneof":
			return fmt.Errorf("%s: must be one of [%s], got %v", field, e.Param(), e.Value())
		case "gte":
			return fmt.Errorf("%s: must be at least %s", field, e.Param())
		default:
			return fmt.Errorf("%s: validation failed (%s)", field, e.Tag())
		}
	}
	return err
}
