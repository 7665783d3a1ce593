// Package versioning gates downloaded template bundles against the tool's
// own release version. The check prevents an older tool from applying
// templates that were written for a newer one (forward compatibility);
// a newer tool may always consume older templates within the same major.
package versioning

import (
	"fmt"
	"strings"

	"github.com/Masterminds/semver/v3"
)

// ToolVersion is the semantic version used for template compatibility
// checks. It is independent of the build metadata stamped into the binary
// by the release pipeline.
const ToolVersion = "2.7.0"

// Verdict is the result of a compatibility check.
type Verdict struct {
	// Compatible reports whether the tool may use the template bundle.
	Compatible bool
	// Reason explains an incompatible verdict. Empty when compatible.
	Reason string
}

// Parse parses a semantic version string like "2.7.0".
func Parse(version string) (*semver.Version, error) {
	v, err := semver.NewVersion(strings.TrimSpace(version))
	if err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", version, err)
	}
	return v, nil
}

// Check compares the tool version against a template bundle version.
// Only major and minor components participate; patch releases never
// affect compatibility. The rule:
//
//   - different major versions are always incompatible
//   - template minor greater than tool minor is incompatible
//     (the templates require a newer tool)
//   - template minor less than or equal to tool minor is compatible
//
// An error is returned only for unparseable versions; an incompatible
// pairing is reported through the Verdict, never silently downgraded.
func Check(toolVersion, templateVersion string) (Verdict, error) {
	tool, err := Parse(toolVersion)
	if err != nil {
		return Verdict{}, fmt.Errorf("tool version: %w", err)
	}
	tmpl, err := Parse(templateVersion)
	if err != nil {
		return Verdict{}, fmt.Errorf("template version: %w", err)
	}

	if tool.Major() != tmpl.Major() {
		return Verdict{
			Reason: fmt.Sprintf(
				"template version %s does not match tool major version %s; upgrade whichever side is behind",
				tmpl, tool),
		}, nil
	}

	if tmpl.Minor() > tool.Minor() {
		return Verdict{
			Reason: fmt.Sprintf(
				"template version %s requires a newer tool (running %s); upgrade avatar-deploy",
				tmpl, tool),
		}, nil
	}

	return Verdict{Compatible: true}, nil
}
