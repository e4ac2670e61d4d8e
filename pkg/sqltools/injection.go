package sqltools

import (
	libinjection "github.com/corazawaf/libinjection-go"

	"github.com/nsxbet/sql-assistant/pkg/types"
)

// CheckInjection reports whether input looks like a SQL injection payload.
// It is meant for user-supplied fragments (request text, literal values),
// not for whole statements, which it usually flags.
//
// Example:
//
//	CheckInjection("1' OR '1'='1").IsSQLi // true
//	CheckInjection("customers in Berlin").IsSQLi // false
func CheckInjection(input string) *types.InjectionResult {
	isSQLi, fingerprint := libinjection.IsSQLi(input)
	if !isSQLi {
		return &types.InjectionResult{}
	}
	return &types.InjectionResult{
		IsSQLi:      true,
		Fingerprint: string(fingerprint),
	}
}
