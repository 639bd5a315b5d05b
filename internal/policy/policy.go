// Package policy holds the single role-based allow list consulted by every
// mutating endpoint.
package policy

import "github.com/yukikurage/taskhub-api/internal/models"

type Action string

const (
	ActionCreateTask       Action = "task:create"
	ActionReadTask         Action = "task:read"
	ActionUpdateTask       Action = "task:update"
	ActionDeleteTask       Action = "task:delete"
	ActionCreateComment    Action = "comment:create"
	ActionSubmitRating     Action = "rating:submit"
	ActionCreateUser       Action = "user:create"
	ActionUpdateUser       Action = "user:update"
	ActionDeleteUser       Action = "user:delete"
	ActionToggleUserActive Action = "user:toggle-active"
	ActionGrantAdmin       Action = "user:grant-admin"
	ActionSetAdminPassword Action = "user:set-admin-password"
	ActionExportReport     Action = "report:export"
)

var (
	everyone   = roleSet(models.RoleAdmin, models.RoleCoordinator, models.RoleDepartmentManager, models.RoleEmployee)
	managers   = roleSet(models.RoleAdmin, models.RoleCoordinator, models.RoleDepartmentManager)
	adminsOnly = roleSet(models.RoleAdmin)
)

// Task updates are open to every role: no creator/assignee ownership check.
var rules = map[Action]map[models.Role]struct{}{
	ActionCreateTask:       everyone,
	ActionReadTask:         everyone,
	ActionUpdateTask:       everyone,
	ActionDeleteTask:       managers,
	ActionCreateComment:    everyone,
	ActionSubmitRating:     everyone,
	ActionCreateUser:       managers,
	ActionUpdateUser:       managers,
	ActionDeleteUser:       adminsOnly,
	ActionToggleUserActive: adminsOnly,
	ActionGrantAdmin:       adminsOnly,
	ActionSetAdminPassword: adminsOnly,
	ActionExportReport:     managers,
}

// Allowed reports whether role may perform action. Unknown actions and roles
// are denied.
func Allowed(action Action, role models.Role) bool {
	allowed, ok := rules[action]
	if !ok {
		return false
	}
	_, ok = allowed[role]
	return ok
}

// Actions returns every action known to the policy.
func Actions() []Action {
	actions := make([]Action, 0, len(rules))
	for a := range rules {
		actions = append(actions, a)
	}
	return actions
}

func roleSet(roles ...models.Role) map[models.Role]struct{} {
	set := make(map[models.Role]struct{}, len(roles))
	for _, r := range roles {
		set[r] = struct{}{}
	}
	return set
}
