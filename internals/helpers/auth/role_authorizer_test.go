package helper

import (
	"testing"

	"absensi_backend/internals/constants"
	"absensi_backend/internals/features/attendance/model"
)

func TestDefaultRoleAuthorizer(t *testing.T) {
	ra := DefaultRoleAuthorizer()
	cases := []struct {
		role string
		op   model.Operation
		want bool
	}{
		{constants.RoleAdmin, model.OpAmendExcuse, true},
		{"ADMIN", model.OpReadReport, true},
		{constants.RoleSupervisor, model.OpSubmitExcuse, true},
		{constants.RoleSupervisor, model.OpAmendExcuse, false},
		{constants.RoleSupervisor, model.OpSubmitPresence, false},
		{constants.RoleRegistrar, model.OpSubmitPresence, true},
		{constants.RoleRegistrar, model.OpReadHistory, false},
		{"", model.OpReadStatus, false},
		{"guest", model.OpLookupPerson, false},
	}
	for _, tc := range cases {
		if got := ra.Can(model.Actor{Role: tc.role}, tc.op); got != tc.want {
			t.Fatalf("%s/%s: want %v, got %v", tc.role, tc.op, tc.want, got)
		}
	}
}
