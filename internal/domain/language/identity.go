// Package language holds the immutable language/script/country registry and
// the resolver that maps free-form user tokens onto registry identities.
package language

import (
	"fmt"
	"strings"
)

// Sentinel preferred codes used throughout request processing.
const (
	CodeUnknown  = "unknown"
	CodeMultiple = "multiple"
	CodeGeneric  = "generic"
	CodeEnglish  = "en"
)

// Identity is one row of the registry: a language, a script, or one of the
// bookkeeping sentinels (unknown, multiple, generic). Identities are loaded
// once from the embedded dataset and never mutated; the Country qualifier is
// the only field set at resolution time, always on a copy.
type Identity struct {
	Name       string   `yaml:"name"`
	Alternates []string `yaml:"alternates,omitempty"`
	Code1      string   `yaml:"code1,omitempty"`
	Code3      string   `yaml:"code3,omitempty"`
	Code2B     string   `yaml:"code2b,omitempty"`
	Script     string   `yaml:"script,omitempty"`
	Mistake    string   `yaml:"mistake,omitempty"`
	Supported  bool     `yaml:"supported,omitempty"`

	// DefaultCountries lists country codes whose mention alone implies this
	// language (e.g. BR for Portuguese).
	DefaultCountries []string `yaml:"default_countries,omitempty"`

	// Country is an ISO 3166-1 alpha-2 qualifier attached by the resolver
	// for requests like "German (Austria)". Empty for plain resolutions.
	Country string `yaml:"-"`
}

// IsScript reports whether the identity denotes a writing system rather
// than a language.
func (i Identity) IsScript() bool {
	return i.Script != "" && i.Code1 == "" && i.Code3 == ""
}

// IsSentinel reports whether the identity is one of the bookkeeping rows.
func (i Identity) IsSentinel() bool {
	switch i.Code3 {
	case CodeUnknown, CodeMultiple, CodeGeneric:
		return true
	}
	return false
}

// PreferredCode returns the canonical short code for the identity: the ISO
// 639-1 code when one exists, otherwise ISO 639-3, otherwise the lowercased
// script code, otherwise "unknown".
func (i Identity) PreferredCode() string {
	if i.Code1 != "" {
		return i.Code1
	}
	if i.Code3 != "" && i.Code3 != CodeUnknown {
		return i.Code3
	}
	if i.Script != "" {
		return strings.ToLower(i.Script)
	}
	return CodeUnknown
}

// DisplayName returns the name with any country qualifier attached.
func (i Identity) DisplayName() string {
	if i.Country == "" {
		return i.Name
	}
	return fmt.Sprintf("%s {%s}", i.Name, i.Country)
}

// WithCountry returns a copy of the identity carrying a country qualifier.
func (i Identity) WithCountry(code string) Identity {
	i.Country = strings.ToUpper(code)
	return i
}

// SameAs reports whether two identities denote the same registry row,
// ignoring country qualifiers.
func (i Identity) SameAs(other Identity) bool {
	return i.PreferredCode() == other.PreferredCode()
}
