package domain

// Role is the plant role an actor holds, taken from the identity context.
type Role string

const (
	RoleOperator      Role = "OPERATOR"
	RoleSupervisor    Role = "SUPERVISOR"
	RoleMaintenance   Role = "MAINTENANCE"
	RoleQuality       Role = "QUALITY"
	RoleEHS           Role = "EHS"
	RoleSafetyManager Role = "SAFETY_MANAGER"
	RolePlantManager  Role = "PLANT_MANAGER"
	RoleSystem        Role = "SYSTEM"
)

// IsValid checks if the role is one of the allowed values.
func (r Role) IsValid() bool {
	switch r {
	case RoleOperator, RoleSupervisor, RoleMaintenance, RoleQuality,
		RoleEHS, RoleSafetyManager, RolePlantManager, RoleSystem:
		return true
	default:
		return false
	}
}

// Actor is the authenticated caller of an operation.
type Actor struct {
	ID   string
	Name string
	Role Role
}
