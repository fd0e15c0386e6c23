package rbac

// Permission codes of the default catalog that the core and the REST adapter refer to.
const (
	PermLeaveViewOwn        = "leave_view_own"
	PermLeaveCreate         = "leave_create"
	PermLeaveCancelOwn      = "leave_cancel_own"
	PermLeaveViewAll        = "leave_view_all"
	PermLeaveFinalApproval  = "leave_final_approval"
	PermLeaveReject         = "leave_reject"
	PermLeaveManageCredits  = "leave_manage_credits"
	PermLeaveManagePolicies = "leave_manage_policies"

	PermSettingsView = "settings_view"
	PermSettingsEdit = "settings_edit"

	PermRBACView              = "rbac_view"
	PermRBACManageRoles       = "rbac_manage_roles"
	PermRBACManagePermissions = "rbac_manage_permissions"
	PermRBACAssignRoles       = "rbac_assign_roles"

	PermAuditView = "audit_view"

	// PermHRFullAccess marks HR. Holders may give final leave approval and bypass supervisors.
	PermHRFullAccess = "hr_full_access"
)

// approvePrefixes mark permission codes that grant some kind of approval right.
var approvePrefixes = []string{"can_approve", "leave_approve"} //nolint:gochecknoglobals
