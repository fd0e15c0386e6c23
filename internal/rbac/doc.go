// Package rbac implements the data driven authorization engine.
//
// Permissions are atomic capabilities, roles bundle permissions with a hierarchy
// level and an approval scope, and role assignments bind employees to roles,
// optionally narrowed to a department or program and bounded in time.
//
// The Service resolves an employee's effective permissions, highest level and
// broadest approval scope from all currently valid assignments, and decides
// whether one employee may act on another's leave requests (CanAct).
// Catalog and assignment mutations are transactional and recorded in the
// RBAC change log.
package rbac
