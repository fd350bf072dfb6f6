package user

import "testing"

func TestUser_Owns(t *testing.T) {
	admin := User{ID: "a1", Role: RoleSuperAdmin}
	teacher := User{ID: "t1", Role: RoleTeacher}
	student := User{ID: "s1", Role: RoleStudent}

	tests := []struct {
		name      string
		usr       User
		teacherID string
		want      bool
	}{
		{name: "admin owns any subject", usr: admin, teacherID: "t1", want: true},
		{name: "teacher owns own subject", usr: teacher, teacherID: "t1", want: true},
		{name: "teacher does not own another's subject", usr: teacher, teacherID: "t2", want: false},
		{name: "student owns nothing", usr: student, teacherID: "t1", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.usr.Owns(tt.teacherID); got != tt.want {
				t.Errorf("Owns() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUser_CanTeach(t *testing.T) {
	tests := []struct {
		role Role
		want bool
	}{
		{role: RoleSuperAdmin, want: true},
		{role: RoleTeacher, want: true},
		{role: RoleStudent, want: false},
		{role: "GUEST", want: false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := (User{Role: tt.role}).CanTeach(); got != tt.want {
				t.Errorf("CanTeach() = %v, want %v", got, tt.want)
			}
		})
	}
}
