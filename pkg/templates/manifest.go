package templates

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Entry categories determine which repository subtree a file is fetched
// from and how missing files are grouped in error reports.
const (
	CategoryTemplate = "template"
	CategoryDocker   = "docker"
)

// Entry is one required file of the template bundle, addressed relative
// to the bundle root.
type Entry struct {
	Category string
	Path     string
}

// requiredFiles is the fixed manifest of files every usable bundle must
// contain. The configurator stays opaque about bundle contents beyond
// this list; verification happens here, at the provider boundary.
var requiredFiles = []Entry{
	{CategoryTemplate, ".env.template"},
	{CategoryTemplate, "nginx.conf.template"},
	{CategoryTemplate, "docker-compose.yml.template"},
	{CategoryTemplate, VersionFileName},
	{CategoryTemplate, "authentik/octopize-avatar-blueprint.yaml"},
	{CategoryDocker, "authentik/custom-templates/email_account_confirmation.html"},
	{CategoryDocker, "authentik/custom-templates/email_account_exists.html"},
	{CategoryDocker, "authentik/custom-templates/email_account_invitation.html"},
	{CategoryDocker, "authentik/custom-templates/email_forgotten_password.html"},
	{CategoryDocker, "authentik/custom-templates/email_password_changed.html"},
	{CategoryDocker, "authentik/custom-templates/email_password_reset.html"},
	{CategoryDocker, "authentik/branding/favicon.ico"},
	{CategoryDocker, "authentik/branding/logo.png"},
	{CategoryDocker, "authentik/branding/background.png"},
}

// RequiredFiles returns the bundle manifest.
func RequiredFiles() []Entry {
	out := make([]Entry, len(requiredFiles))
	copy(out, requiredFiles)
	return out
}

// VerifyRequired checks that every manifest file exists under dir.
// Missing files are reported in one SourceInvalidError, grouped by
// category, so the operator sees the full shortfall at once.
func VerifyRequired(dir string) error {
	missingByCategory := make(map[string][]string)
	var order []string

	for _, entry := range requiredFiles {
		if _, err := os.Stat(filepath.Join(dir, entry.Path)); err != nil {
			if _, seen := missingByCategory[entry.Category]; !seen {
				order = append(order, entry.Category)
			}
			missingByCategory[entry.Category] = append(missingByCategory[entry.Category], entry.Path)
		}
	}

	if len(missingByCategory) == 0 {
		return nil
	}

	var missing []string
	for _, category := range order {
		missing = append(missing, fmt.Sprintf("%s: %s",
			category, strings.Join(missingByCategory[category], ", ")))
	}
	return &SourceInvalidError{Source: dir, Missing: missing}
}

// CheckCached reports whether dir already holds a complete bundle.
func CheckCached(dir string) bool {
	for _, entry := range requiredFiles {
		if _, err := os.Stat(filepath.Join(dir, entry.Path)); err != nil {
			return false
		}
	}
	return true
}
