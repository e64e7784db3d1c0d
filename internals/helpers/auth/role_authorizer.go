package helper

import (
	"strings"

	"absensi_backend/internals/constants"
	"absensi_backend/internals/features/attendance/model"
)

// RoleAuthorizer: role → operasi yang boleh. Dibuat sekali di route, di-inject ke service.
type RoleAuthorizer struct {
	grants map[string]map[model.Operation]struct{}
}

func NewRoleAuthorizer(grants map[string][]model.Operation) *RoleAuthorizer {
	ra := &RoleAuthorizer{grants: make(map[string]map[model.Operation]struct{}, len(grants))}
	for role, ops := range grants {
		set := make(map[model.Operation]struct{}, len(ops))
		for _, op := range ops {
			set[op] = struct{}{}
		}
		ra.grants[strings.ToLower(role)] = set
	}
	return ra
}

// DefaultRoleAuthorizer:
//   - admin: semua
//   - supervisor: excuse, histori, laporan, status
//   - registrar: scan/manual, lookup, status
func DefaultRoleAuthorizer() *RoleAuthorizer {
	return NewRoleAuthorizer(map[string][]model.Operation{
		constants.RoleAdmin: {
			model.OpSubmitPresence, model.OpSubmitExcuse, model.OpAmendExcuse,
			model.OpLookupPerson, model.OpReadStatus, model.OpReadHistory, model.OpReadReport,
		},
		constants.RoleSupervisor: {
			model.OpSubmitExcuse, model.OpLookupPerson, model.OpReadStatus,
			model.OpReadHistory, model.OpReadReport,
		},
		constants.RoleRegistrar: {
			model.OpSubmitPresence, model.OpLookupPerson, model.OpReadStatus,
		},
	})
}

func (r *RoleAuthorizer) Can(actor model.Actor, op model.Operation) bool {
	set, ok := r.grants[strings.ToLower(actor.Role)]
	if !ok {
		return false
	}
	_, ok = set[op]
	return ok
}
