package constants

import "fmt"

// Role dari klaim JWT ("role")
const (
	RoleAdmin      = "admin"
	RoleSupervisor = "supervisor"
	RoleRegistrar  = "registrar"
)

// Template pesan error role
const (
	ErrOnlyAdminsCanAccess      = "❌ Hanya admin yang boleh mengakses fitur %s."
	ErrOnlySupervisorsCanAccess = "❌ Hanya admin atau supervisor yang boleh mengakses fitur %s."
	ErrOnlyStaffCanAccess       = "❌ Hanya admin, supervisor, atau registrar yang boleh mengakses fitur %s."
)

func RoleErrorAdmin(feature string) string {
	return fmt.Sprintf(ErrOnlyAdminsCanAccess, feature)
}

func RoleErrorSupervisor(feature string) string {
	return fmt.Sprintf(ErrOnlySupervisorsCanAccess, feature)
}

func RoleErrorStaff(feature string) string {
	return fmt.Sprintf(ErrOnlyStaffCanAccess, feature)
}

// ==========================
// ✅ Grouped Role Slices
// ==========================
var (
	AllRoles = []string{
		RoleAdmin,
		RoleSupervisor,
		RoleRegistrar,
	}

	SupervisorAndAbove = []string{
		RoleAdmin,
		RoleSupervisor,
	}

	AdminOnly = []string{
		RoleAdmin,
	}
)
