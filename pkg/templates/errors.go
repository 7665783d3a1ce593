package templates

import (
	"errors"
	"fmt"
	"strings"
)

// FetchError reports a failed remote retrieval. Transient causes
// (network faults, 5xx, 429) are retried up to the configured budget;
// definitive causes (404, auth rejection) fail fast.
type FetchError struct {
	// URL is the request that failed.
	URL string
	// Status is the HTTP status code, or 0 for transport-level failures.
	Status int
	// Hint names the remediating action when one is known.
	Hint string
	// Transient reports whether retrying could succeed.
	Transient bool
	// Err is the underlying cause.
	Err error
}

func (e *FetchError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "fetching %s: ", e.URL)
	if e.Err != nil {
		b.WriteString(e.Err.Error())
	} else {
		fmt.Fprintf(&b, "unexpected status %d", e.Status)
	}
	if e.Hint != "" {
		fmt.Fprintf(&b, " (%s)", e.Hint)
	}
	return b.String()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether err is a FetchError worth retrying.
func IsTransient(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe) && fe.Transient
}

// SourceInvalidError reports a template source that cannot produce a
// usable bundle: a missing or empty local directory, or a materialized
// bundle lacking required files.
type SourceInvalidError struct {
	// Source is the offending path or location.
	Source string
	// Missing lists required bundle paths that were absent, grouped as
	// "category: path" entries. Empty when the source itself is invalid.
	Missing []string
	// Reason describes the problem when Missing is empty.
	Reason string
}

func (e *SourceInvalidError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("template source %s is missing required files: %s",
			e.Source, strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("template source %s: %s", e.Source, e.Reason)
}

// IncompatibleError reports a bundle whose declared version fails the
// compatibility gate against the running tool.
type IncompatibleError struct {
	// ToolVersion is the version of the running tool.
	ToolVersion string
	// TemplateVersion is the bundle's declared version.
	TemplateVersion string
	// Reason is the verdict explanation from the compatibility check.
	Reason string
}

func (e *IncompatibleError) Error() string {
	return e.Reason
}
