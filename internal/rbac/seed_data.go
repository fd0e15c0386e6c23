package rbac

import "github.com/univhr/hrcore/internal/db/models"

// allPermissions grants every catalog permission.
const allPermissions = "*"

//nolint:gochecknoglobals,lll
var defaultPermissions = []models.Permission{
	{Code: "leave_view_own", Name: "View Own Leave Requests", Category: models.CategoryLeave, Description: "Can view their own leave requests and balances"},
	{Code: "leave_create", Name: "Create Leave Requests", Category: models.CategoryLeave, Description: "Can submit new leave requests"},
	{Code: "leave_cancel_own", Name: "Cancel Own Leave Requests", Category: models.CategoryLeave, Description: "Can cancel their own pending leave requests"},
	{Code: "leave_view_team", Name: "View Team Leave Requests", Category: models.CategoryLeave, Description: "Can view leave requests of team members"},
	{Code: "leave_view_department", Name: "View Department Leave Requests", Category: models.CategoryLeave, Description: "Can view all leave requests in their department"},
	{Code: "leave_view_all", Name: "View All Leave Requests", Category: models.CategoryLeave, Description: "Can view all leave requests across the organization"},
	{Code: "leave_approve_program", Name: "Approve Leave (Program)", Category: models.CategoryLeave, Description: "Can pre-approve leave requests within their program"},
	{Code: "leave_approve_department", Name: "Approve Leave (Department)", Category: models.CategoryLeave, Description: "Can pre-approve leave requests within their department"},
	{Code: "leave_approve_all", Name: "Approve Leave (Organization)", Category: models.CategoryLeave, Description: "Can pre-approve any leave request in the organization"},
	{Code: "leave_final_approval", Name: "Final Leave Approval (HR)", Category: models.CategoryLeave, Description: "Can give final HR approval on pre-approved leave requests"},
	{Code: "leave_reject", Name: "Reject Leave Requests", Category: models.CategoryLeave, Description: "Can reject leave requests"},
	{Code: "leave_manage_credits", Name: "Manage Leave Credits", Category: models.CategoryLeave, Description: "Can adjust leave credit balances for employees"},
	{Code: "leave_manage_policies", Name: "Manage Leave Policies", Category: models.CategoryLeave, Description: "Can create and modify leave policies"},
	{Code: "leave_force_approve", Name: "Force Approve Leave", Category: models.CategoryLeave, Description: "Can approve leave requests even without sufficient credits"},

	{Code: "employee_view_own", Name: "View Own Profile", Category: models.CategoryEmployee, Description: "Can view their own employee profile"},
	{Code: "employee_edit_own", Name: "Edit Own Profile", Category: models.CategoryEmployee, Description: "Can edit certain fields of their own profile"},
	{Code: "employee_view_team", Name: "View Team Profiles", Category: models.CategoryEmployee, Description: "Can view profiles of team members"},
	{Code: "employee_view_department", Name: "View Department Profiles", Category: models.CategoryEmployee, Description: "Can view all employee profiles in their department"},
	{Code: "employee_view_all", Name: "View All Employees", Category: models.CategoryEmployee, Description: "Can view all employee profiles"},
	{Code: "employee_create", Name: "Create Employees", Category: models.CategoryEmployee, Description: "Can create new employee records"},
	{Code: "employee_edit_all", Name: "Edit All Employees", Category: models.CategoryEmployee, Description: "Can edit any employee profile"},
	{Code: "employee_delete", Name: "Delete Employees", Category: models.CategoryEmployee, Description: "Can delete employee records"},
	{Code: "employee_manage_schedule", Name: "Manage Schedules", Category: models.CategoryEmployee, Description: "Can manage employee work schedules"},

	{Code: "reports_view_team", Name: "View Team Reports", Category: models.CategoryReports, Description: "Can view reports for their team"},
	{Code: "reports_view_department", Name: "View Department Reports", Category: models.CategoryReports, Description: "Can view department-level reports"},
	{Code: "reports_view_all", Name: "View All Reports", Category: models.CategoryReports, Description: "Can view all organizational reports"},
	{Code: "reports_export", Name: "Export Reports", Category: models.CategoryReports, Description: "Can export reports to various formats"},
	{Code: "reports_analytics", Name: "View Analytics Dashboard", Category: models.CategoryReports, Description: "Can access the analytics dashboard"},

	{Code: "org_view", Name: "View Organization Structure", Category: models.CategoryOrganization, Description: "Can view organizational structure"},
	{Code: "org_manage_departments", Name: "Manage Departments", Category: models.CategoryOrganization, Description: "Can create and modify departments"},
	{Code: "org_manage_programs", Name: "Manage Programs", Category: models.CategoryOrganization, Description: "Can create and modify programs"},
	{Code: "org_manage_positions", Name: "Manage Positions", Category: models.CategoryOrganization, Description: "Can create and modify positions"},

	{Code: "settings_view", Name: "View System Settings", Category: models.CategorySettings, Description: "Can view system configuration"},
	{Code: "settings_edit", Name: "Edit System Settings", Category: models.CategorySettings, Description: "Can modify system configuration"},
	{Code: "rbac_view", Name: "View RBAC Settings", Category: models.CategorySettings, Description: "Can view roles and permissions"},
	{Code: "rbac_manage_roles", Name: "Manage Roles", Category: models.CategorySettings, Description: "Can create, edit, and delete roles"},
	{Code: "rbac_manage_permissions", Name: "Manage Permissions", Category: models.CategorySettings, Description: "Can create custom permissions"},
	{Code: "rbac_assign_roles", Name: "Assign Roles to Employees", Category: models.CategorySettings, Description: "Can assign roles to employees"},

	{Code: "audit_view", Name: "View Audit Logs", Category: models.CategoryAudit, Description: "Can view system audit logs"},
	{Code: "audit_export", Name: "Export Audit Logs", Category: models.CategoryAudit, Description: "Can export audit logs"},

	{Code: "hr_full_access", Name: "HR Full Access", Category: models.CategorySettings, Description: "Complete administrative access - HR only"},
}

var basicGrants = []string{ //nolint:gochecknoglobals
	"leave_view_own", "leave_create", "leave_cancel_own",
	"employee_view_own", "employee_edit_own",
	"org_view",
}

type seedRole struct {
	role   models.Role
	grants []string
}

//nolint:gochecknoglobals
var defaultRoles = []seedRole{
	{
		role: models.Role{
			Code: "HR_ADMIN", Name: "HR Administrator", Level: models.LevelSuperAdmin, ApprovalScope: models.ScopeAll,
			Description: "Full administrative access to all HR functions including final leave approval",
		},
		grants: []string{allPermissions},
	},
	{
		role: models.Role{
			Code: "VPAA", Name: "Vice President for Academic Affairs", Level: models.LevelExecutive, ApprovalScope: models.ScopeAll,
			Description: "Top academic authority with organization-wide approval rights",
		},
		grants: []string{
			"leave_view_own", "leave_create", "leave_cancel_own", "leave_view_all",
			"leave_approve_all", "leave_reject", "leave_manage_credits", "leave_manage_policies",
			"employee_view_own", "employee_edit_own", "employee_view_all", "employee_create",
			"employee_edit_all", "employee_manage_schedule",
			"reports_view_all", "reports_export", "reports_analytics",
			"org_view", "org_manage_departments", "org_manage_programs", "org_manage_positions",
			"settings_view", "rbac_view", "audit_view",
		},
	},
	{
		role: models.Role{
			Code: "DEAN", Name: "Dean", Level: models.LevelDean, ApprovalScope: models.ScopeDepartment,
			Description: "Department head with department-level approval rights",
		},
		grants: []string{
			"leave_view_own", "leave_create", "leave_cancel_own", "leave_view_department",
			"leave_approve_department", "leave_reject", "leave_manage_credits",
			"employee_view_own", "employee_edit_own", "employee_view_department",
			"reports_view_department", "reports_export",
			"org_view", "rbac_view",
		},
	},
	{
		role: models.Role{
			Code: "PROGRAM_CHAIR", Name: "Program Chair", Level: models.LevelProgramChair, ApprovalScope: models.ScopeProgram,
			Description: "Program head with program-level approval rights",
		},
		grants: []string{
			"leave_view_own", "leave_create", "leave_cancel_own", "leave_view_team",
			"leave_approve_program", "leave_reject",
			"employee_view_own", "employee_edit_own", "employee_view_team",
			"reports_view_team",
			"org_view",
		},
	},
	{
		role: models.Role{
			Code: "REGULAR_FACULTY", Name: "Regular Faculty", Level: models.LevelSeniorStaff, ApprovalScope: models.ScopeNone,
			Description: "Full-time faculty member",
		},
		grants: basicGrants,
	},
	{
		role: models.Role{
			Code: "PART_TIME_FACULTY", Name: "Part-Time Faculty", Level: models.LevelStaff, ApprovalScope: models.ScopeNone,
			Description: "Part-time faculty member",
		},
		grants: basicGrants,
	},
	{
		role: models.Role{
			Code: "SECRETARY", Name: "Secretary", Level: models.LevelBasic, ApprovalScope: models.ScopeNone,
			Description: "Administrative support staff",
		},
		grants: basicGrants,
	},
	{
		role: models.Role{
			Code: "EMPLOYEE", Name: "Basic Employee", Level: models.LevelBasic, ApprovalScope: models.ScopeNone,
			Description: "Standard employee with basic access",
		},
		grants: basicGrants,
	},
}

type seedModule struct {
	module models.PermissionModule
	codes  []string
}

//nolint:gochecknoglobals
var defaultModules = []seedModule{
	{
		module: models.PermissionModule{Code: "LEAVE", Name: "Leave Management", Icon: "calendar", SortOrder: 1, Description: "Leave request and approval management"},
		codes: []string{
			"leave_view_own", "leave_create", "leave_cancel_own", "leave_view_team",
			"leave_view_department", "leave_view_all", "leave_approve_program",
			"leave_approve_department", "leave_approve_all", "leave_final_approval",
			"leave_reject", "leave_manage_credits", "leave_manage_policies", "leave_force_approve",
		},
	},
	{
		module: models.PermissionModule{Code: "EMPLOYEE", Name: "Employee Management", Icon: "people", SortOrder: 2, Description: "Employee profiles and records management"}, //nolint:lll
		codes: []string{
			"employee_view_own", "employee_edit_own", "employee_view_team",
			"employee_view_department", "employee_view_all", "employee_create",
			"employee_edit_all", "employee_delete", "employee_manage_schedule",
		},
	},
	{
		module: models.PermissionModule{Code: "REPORTS", Name: "Reports & Analytics", Icon: "analytics", SortOrder: 3, Description: "Reporting and analytics access"},
		codes:  []string{"reports_view_team", "reports_view_department", "reports_view_all", "reports_export", "reports_analytics"},
	},
	{
		module: models.PermissionModule{Code: "ORGANIZATION", Name: "Organization", Icon: "business", SortOrder: 4, Description: "Organization structure management"},
		codes:  []string{"org_view", "org_manage_departments", "org_manage_programs", "org_manage_positions"},
	},
	{
		module: models.PermissionModule{Code: "RBAC", Name: "Access Control", Icon: "key", SortOrder: 5, Description: "Role and permission management"},
		codes:  []string{"rbac_view", "rbac_manage_roles", "rbac_manage_permissions", "rbac_assign_roles"},
	},
	{
		module: models.PermissionModule{Code: "SETTINGS", Name: "System Settings", Icon: "settings", SortOrder: 6, Description: "System configuration and settings"},
		codes:  []string{"settings_view", "settings_edit", "hr_full_access"},
	},
	{
		module: models.PermissionModule{Code: "AUDIT", Name: "Audit & Compliance", Icon: "shield", SortOrder: 7, Description: "Audit logs and compliance tracking"},
		codes:  []string{"audit_view", "audit_export"},
	},
}
