// Package validation provides custom validation rules for the application.
package validation

import (
	"regexp"
	"strings"

	validation "github.com/jellydator/validation"

	apperrors "github.com/keywarden/keywarden/internal/errors"
)

var (
	// dekNameRegex restricts DEK names to a safe, lowercase identifier set.
	dekNameRegex = regexp.MustCompile(`^[a-z0-9_-]{1,100}$`)
)

// WrapValidationError wraps validation errors as domain ErrInvalidInput.
func WrapValidationError(err error) error {
	if err == nil {
		return nil
	}
	return apperrors.Wrap(apperrors.ErrInvalidInput, err.Error())
}

// DekName validates a DEK name against [a-z0-9_-]{1,100}.
var DekName = validation.NewStringRuleWithError(
	func(s string) bool {
		return dekNameRegex.MatchString(s)
	},
	validation.NewError(
		"validation_dek_name",
		"name must match [a-z0-9_-]{1,100}",
	),
)

// SecretName validates a secret name: at least 3 characters, at most 100,
// no spaces and no '@'.
var SecretName = validation.NewStringRuleWithError(
	func(s string) bool {
		if len(s) < 3 || len(s) > 100 {
			return false
		}
		return !strings.ContainsAny(s, " @")
	},
	validation.NewError(
		"validation_secret_name",
		"name must be 3-100 characters and must not contain spaces or '@'",
	),
)

// SecretValue validates a secret value: at least 8 bytes.
var SecretValue = validation.NewStringRuleWithError(
	func(s string) bool {
		return len(s) >= 8
	},
	validation.NewError(
		"validation_secret_value",
		"value must be at least 8 bytes",
	),
)

// FolderName validates a folder name: 1 to 100 characters, no '/'.
var FolderName = validation.NewStringRuleWithError(
	func(s string) bool {
		if len(s) < 1 || len(s) > 100 {
			return false
		}
		return !strings.Contains(s, "/")
	},
	validation.NewError(
		"validation_folder_name",
		"name must be 1-100 characters and must not contain '/'",
	),
)

// ClientName validates a client name: 3 to 100 characters, no spaces.
var ClientName = validation.NewStringRuleWithError(
	func(s string) bool {
		if len(s) < 3 || len(s) > 100 {
			return false
		}
		return !strings.Contains(s, " ")
	},
	validation.NewError(
		"validation_client_name",
		"name must be 3-100 characters and must not contain spaces",
	),
)
