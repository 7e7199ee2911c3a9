package models

import "testing"

// TestUserIsAdmin verifies that IsAdmin returns true only for the admin role.
func TestUserIsAdmin(t *testing.T) {
	tests := []struct {
		name string
		role Role
		want bool
	}{
		{name: "admin role", role: RoleAdmin, want: true},
		{name: "author role", role: RoleAuthor, want: false},
		{name: "empty role", role: Role(""), want: false},
		{name: "unknown role", role: Role("superadmin"), want: false},
		{name: "uppercase ADMIN", role: Role("ADMIN"), want: false},
		{name: "mixed case Admin", role: Role("Admin"), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{Role: tt.role}
			got := u.IsAdmin()
			if got != tt.want {
				t.Errorf("User{Role: %q}.IsAdmin() = %v, want %v", tt.role, got, tt.want)
			}
		})
	}
}

// TestUserNeeds2FASetup verifies 2FA enrollment detection.
func TestUserNeeds2FASetup(t *testing.T) {
	secret := "JBSWY3DPEHPK3PXP"

	tests := []struct {
		name        string
		totpSecret  *string
		totpEnabled bool
		want        bool
	}{
		{
			name:        "no secret and not enabled",
			totpSecret:  nil,
			totpEnabled: false,
			want:        true,
		},
		{
			name:        "secret set but not verified",
			totpSecret:  &secret,
			totpEnabled: false,
			want:        true,
		},
		{
			name:        "fully enrolled",
			totpSecret:  &secret,
			totpEnabled: true,
			want:        false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u := &User{TOTPSecret: tt.totpSecret, TOTPEnabled: tt.totpEnabled}
			got := u.Needs2FASetup()
			if got != tt.want {
				t.Errorf("Needs2FASetup() = %v, want %v", got, tt.want)
			}
		})
	}
}
