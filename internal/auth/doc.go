// Package auth resolves the caller of a request.
//
// LocalProvider checks employee credentials against the Argon2id hash stored
// on the employee. Service opens a session for a successful login and turns
// the session token of later requests back into an rbac.Actor.
//
// # Middleware
//
// Fiber middleware functions are provided for route protection:
//   - Authenticate: resolve the bearer token or session cookie into the locals
//   - RequirePermission: protect routes requiring a specific permission
//   - RequireAnyPermission: protect routes requiring any of several permissions
//
// Example usage:
//
//	authService := auth.NewService(rbacService, sessions)
//
//	api := app.Group("/api", auth.Authenticate(authService))
//	api.Get("/rbac/roles",
//	    auth.RequirePermission(rbac.PermRBACView),
//	    handler,
//	)
//
// Failures are returned as apperr errors and rendered by the web error handler.
package auth
