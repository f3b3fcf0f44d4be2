package config

import (
	"fmt"

	"github.com/Masterminds/semver/v3"
)

// SupportedVersion is the configuration schema version this package reads.
const SupportedVersion = "0.1.0"

// IsCompatible checks if a document's version is compatible with
// SupportedVersion using a caret constraint. For 0.x versions only patch
// releases are compatible, so 0.1.7 is accepted and 0.2.0 is not.
//
// Returns an error if the version string is not valid semver.
func IsCompatible(version string) (bool, error) {
	constraint, err := semver.NewConstraint("^" + SupportedVersion)
	if err != nil {
		return false, fmt.Errorf("invalid supported version: %w", err)
	}

	v, err := semver.NewVersion(version)
	if err != nil {
		return false, fmt.Errorf("invalid version %q: %w", version, err)
	}

	return constraint.Check(v), nil
}
