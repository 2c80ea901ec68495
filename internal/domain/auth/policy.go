package auth

import (
	"gatepass-server-go/internal/models"
	"gatepass-server-go/internal/platform/errors"
)

// anyRole marks operations open to every authenticated caller.
const anyRole = ""

// policies maps "METHOD path-template" to the role required for the
// operation. A single middleware consults this table; handlers never compare
// roles inline. Drift notes: some upstream variants left GET /users open to
// any token and others gated it by admin — the stricter gate is used here.
// PUT /users/:id deliberately stays open to any token to match the published
// surface, which is inconsistent with the delete gate.
var policies = map[string]string{
	"GET /check-admin":         anyRole,
	"POST /visitor-pass":       anyRole,
	"GET /visitor-pass/:id/qr": anyRole,
	"GET /users":               models.RoleAdmin,
	"GET /users/:username":     anyRole,
	"PUT /users/:id":           anyRole,
	"DELETE /users/:id":        models.RoleAdmin,
	"POST /departments":        models.RoleAdmin,
	"GET /departments":         anyRole,
	"DELETE /departments/:id":  models.RoleAdmin,
	"GET /visitors":            anyRole,
}

// RequiredRole returns the role an operation demands. The second result is
// false for operations outside the protected surface.
func RequiredRole(method, pathTemplate string) (string, bool) {
	role, ok := policies[method+" "+pathTemplate]
	return role, ok
}

// Authorize checks a verified token's role against the policy table.
func Authorize(claims *Claims, method, pathTemplate string) error {
	required, ok := RequiredRole(method, pathTemplate)
	if !ok {
		// operations missing from the table fail closed
		return errors.New(errors.KindForbidden, "auth.authorize", "operation not in policy table")
	}
	if required == anyRole {
		return nil
	}
	if claims == nil || claims.Role != required {
		return errors.New(errors.KindForbidden, "auth.authorize", "insufficient role")
	}
	return nil
}
