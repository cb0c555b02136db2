// Package config provides checkers for configuration file validation.
package config

import (
	"context"
	"fmt"

	"github.com/cockroachdb/errors"

	internalconfig "github.com/smykla-skalski/realms-launcher/internal/config"
	"github.com/smykla-skalski/realms-launcher/internal/doctor"
)

// Fix IDs offered by the config checkers.
const (
	FixCreateGlobalConfig = "create_global_config"
	FixConfigPermissions  = "fix_config_permissions"
)

const (
	globalCheckName      = "Global config valid"
	permissionsCheckName = "Config file permissions secure"
)

// GlobalChecker checks the validity of the merged configuration
type GlobalChecker struct {
	loader *internalconfig.KoanfLoader
}

// NewGlobalChecker creates a new global config checker
func NewGlobalChecker(loader *internalconfig.KoanfLoader) *GlobalChecker {
	return &GlobalChecker{loader: loader}
}

// Name returns the name of the check
func (*GlobalChecker) Name() string {
	return globalCheckName
}

// Category returns the category of the check
func (*GlobalChecker) Category() doctor.Category {
	return doctor.CategoryConfig
}

// Check performs the global config validity check
func (c *GlobalChecker) Check(_ context.Context) doctor.CheckResult {
	cfg, err := c.loader.LoadWithoutValidation(nil)
	if err != nil {
		if errors.Is(err, internalconfig.ErrInvalidPermissions) {
			// Reported by PermissionsChecker.
			return doctor.Skip(globalCheckName, "Not loaded: insecure permissions")
		}

		if errors.Is(err, internalconfig.ErrConfigNotFound) {
			return doctor.FailError(globalCheckName, "Config file passed with --config not found").
				WithDetails(fmt.Sprintf("Error: %v", err))
		}

		return doctor.FailError(globalCheckName, "Failed to load configuration").
			WithDetails(
				"File: "+c.loader.GlobalConfigPath(),
				fmt.Sprintf("Error: %v", err),
			)
	}

	if err := internalconfig.NewValidator().Validate(cfg); err != nil {
		return doctor.FailError(globalCheckName, "Configuration validation failed").
			WithDetails(
				"File: "+c.loader.GlobalConfigPath(),
				fmt.Sprintf("Error: %+v", err),
			)
	}

	if !c.loader.HasGlobalConfig() {
		return doctor.FailWarning(globalCheckName, "Config file not found (defaults in use)").
			WithDetails(
				"Expected at: "+c.loader.GlobalConfigPath(),
				"Create with: realms-launcher config init",
			).
			WithFixID(FixCreateGlobalConfig)
	}

	return doctor.Pass(globalCheckName, "Valid")
}

// PermissionsChecker checks that the global config is not world-writable
type PermissionsChecker struct {
	loader *internalconfig.KoanfLoader
}

// NewPermissionsChecker creates a new permissions checker
func NewPermissionsChecker(loader *internalconfig.KoanfLoader) *PermissionsChecker {
	return &PermissionsChecker{loader: loader}
}

// Name returns the name of the check
func (*PermissionsChecker) Name() string {
	return permissionsCheckName
}

// Category returns the category of the check
func (*PermissionsChecker) Category() doctor.Category {
	return doctor.CategoryConfig
}

// Check performs the permissions check
func (c *PermissionsChecker) Check(_ context.Context) doctor.CheckResult {
	if !c.loader.HasGlobalConfig() {
		return doctor.Skip(permissionsCheckName, "No config file found")
	}

	_, err := c.loader.LoadWithoutValidation(nil)
	if err != nil && errors.Is(err, internalconfig.ErrInvalidPermissions) {
		return doctor.FailError(permissionsCheckName, "Config file is world-writable").
			WithDetails(
				fmt.Sprintf("Global config: %v", err),
				"Fix with: chmod 600 "+c.loader.GlobalConfigPath(),
			).
			WithFixID(FixConfigPermissions)
	}

	return doctor.Pass(permissionsCheckName, "Secure")
}
