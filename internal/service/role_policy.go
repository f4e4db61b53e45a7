package service

import "github.com/noah-isme/schedmate-api/internal/models"

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uint
	Role models.Role
}

// rolePolicy captures what each role may do. The task type a role creates is
// fixed here and never taken from the request.
type rolePolicy struct {
	taskType      models.TaskType
	createsClass  bool
	seesJoinCodes bool
}

var rolePolicies = map[models.Role]rolePolicy{
	models.RoleTeacher: {
		taskType:      models.TaskTypeClass,
		createsClass:  true,
		seesJoinCodes: true,
	},
	models.RoleStudent: {
		taskType: models.TaskTypeIndividual,
	},
}

func policyFor(role models.Role) (rolePolicy, error) {
	policy, ok := rolePolicies[role]
	if !ok {
		return rolePolicy{}, ErrRoleNotAllowed
	}
	return policy, nil
}
