// Package network provides checkers for the release server.
package network

import (
	"context"
	"fmt"

	"github.com/smykla-skalski/realms-launcher/internal/doctor"
	"github.com/smykla-skalski/realms-launcher/internal/version"
)

const checkName = "Metadata reachable"

// MetadataChecker checks that the version metadata can be fetched
type MetadataChecker struct {
	source version.MetadataSource
	url    string
}

// NewMetadataChecker creates a new metadata checker. url is only used in
// the result details.
func NewMetadataChecker(source version.MetadataSource, url string) *MetadataChecker {
	return &MetadataChecker{source: source, url: url}
}

// Name returns the name of the check
func (*MetadataChecker) Name() string {
	return checkName
}

// Category returns the category of the check
func (*MetadataChecker) Category() doctor.Category {
	return doctor.CategoryNetwork
}

// Check performs the metadata check
func (c *MetadataChecker) Check(ctx context.Context) doctor.CheckResult {
	info, err := c.source.Fetch(ctx)
	if err != nil {
		return doctor.FailError(checkName, "Unreachable").
			WithDetails(
				"URL: "+c.url,
				fmt.Sprintf("Error: %v", err),
			)
	}

	result := doctor.Pass(checkName, fmt.Sprintf("Latest %s (launcher %s)", info.Version, info.LauncherVersion))

	if !info.BaseVersionsMatch() {
		result = result.WithDetails(fmt.Sprintf(
			"Package targets base %s, newest base is %s",
			info.RequiredBaseVersion,
			info.CurrentBaseVersion,
		))
	}

	return result
}
