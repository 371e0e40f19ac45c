package rbac

import permissionstore "github.com/dalemusser/agendapro/internal/app/store/permissions"

// System role names created in every group.
const (
	RoleAdmin  = "Admin"
	RoleEditor = "Editor"
	RoleViewer = "Viewer"
)

// Permission keys.
const (
	PermGroupsView          = "groups.view"
	PermGroupsEdit          = "groups.edit"
	PermGroupsDelete        = "groups.delete"
	PermMembersView         = "members.view"
	PermMembersInvite       = "members.invite"
	PermMembersRemove       = "members.remove"
	PermMembersManageRoles  = "members.manage_roles"
	PermRolesView           = "roles.view"
	PermRolesManage         = "roles.manage"
	PermCalendarsView       = "calendars.view"
	PermCalendarsCreate     = "calendars.create"
	PermCalendarsEdit       = "calendars.edit"
	PermCalendarsDelete     = "calendars.delete"
	PermEventsView          = "events.view"
	PermEventsCreate        = "events.create"
	PermEventsEdit          = "events.edit"
	PermEventsDelete        = "events.delete"
	PermNotificationsView   = "notifications.view"
	PermNotificationsManage = "notifications.manage"
	PermAuditView           = "audit.view"
)

// Catalog is the global permission catalog, seeded at startup and ensured
// again by every group provisioning.
var Catalog = []permissionstore.Entry{
	{Key: PermGroupsView, Description: "View group details"},
	{Key: PermGroupsEdit, Description: "Edit group name, description and logo"},
	{Key: PermGroupsDelete, Description: "Delete the group"},
	{Key: PermMembersView, Description: "View group members"},
	{Key: PermMembersInvite, Description: "Invite people to the group"},
	{Key: PermMembersRemove, Description: "Remove members from the group"},
	{Key: PermMembersManageRoles, Description: "Assign roles to members"},
	{Key: PermRolesView, Description: "View group roles"},
	{Key: PermRolesManage, Description: "Create, edit and delete roles"},
	{Key: PermCalendarsView, Description: "View group calendars"},
	{Key: PermCalendarsCreate, Description: "Create calendars"},
	{Key: PermCalendarsEdit, Description: "Edit calendars"},
	{Key: PermCalendarsDelete, Description: "Delete calendars"},
	{Key: PermEventsView, Description: "View events"},
	{Key: PermEventsCreate, Description: "Create events"},
	{Key: PermEventsEdit, Description: "Edit events"},
	{Key: PermEventsDelete, Description: "Delete events"},
	{Key: PermNotificationsView, Description: "View notifications"},
	{Key: PermNotificationsManage, Description: "Manage notification settings"},
	{Key: PermAuditView, Description: "View the audit log"},
}

// SystemRole is a role created in every group with its permission set.
type SystemRole struct {
	Name        string
	Description string
	Permissions []string
}

// SystemRoles lists the default roles in creation order.
var SystemRoles = []SystemRole{
	{
		Name:        RoleAdmin,
		Description: "Full control of the group",
		Permissions: CatalogKeys(),
	},
	{
		Name:        RoleEditor,
		Description: "Manage calendars and events",
		Permissions: []string{
			PermGroupsView,
			PermMembersView,
			PermRolesView,
			PermCalendarsView,
			PermCalendarsCreate,
			PermCalendarsEdit,
			PermEventsView,
			PermEventsCreate,
			PermEventsEdit,
			PermEventsDelete,
			PermNotificationsView,
		},
	},
	{
		Name:        RoleViewer,
		Description: "Read-only access",
		Permissions: []string{
			PermGroupsView,
			PermMembersView,
			PermCalendarsView,
			PermEventsView,
			PermNotificationsView,
		},
	},
}

// CatalogKeys returns the keys of Catalog in order.
func CatalogKeys() []string {
	keys := make([]string, len(Catalog))
	for i, e := range Catalog {
		keys[i] = e.Key
	}
	return keys
}

// LinksPerGroup is the number of role-permission links a provisioned group carries.
func LinksPerGroup() int {
	n := 0
	for _, r := range SystemRoles {
		n += len(r.Permissions)
	}
	return n
}
