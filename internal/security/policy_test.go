package security

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"mescore/api/internal/models"
)

func TestAllow(t *testing.T) {
	tests := []struct {
		name     string
		role     models.UserRole
		callerID string
		ownerID  string
		allowed  []models.UserRole
		want     bool
	}{
		{
			name: "admin always passes",
			role: models.UserRoleAdmin,
			want: true,
		},
		{
			name:     "owner passes without role",
			role:     models.UserRoleGeneral,
			callerID: "u1",
			ownerID:  "u1",
			want:     true,
		},
		{
			name:     "non-owner general denied",
			role:     models.UserRoleGeneral,
			callerID: "u1",
			ownerID:  "u2",
			want:     false,
		},
		{
			name:    "manager passes when manager allowed",
			role:    models.UserRoleManager,
			allowed: []models.UserRole{models.UserRoleManager},
			want:    true,
		},
		{
			name:    "general denied when only manager allowed",
			role:    models.UserRoleGeneral,
			allowed: []models.UserRole{models.UserRoleManager},
			want:    false,
		},
		{
			name:     "manager non-owner passes via role",
			role:     models.UserRoleManager,
			callerID: "u1",
			ownerID:  "u2",
			allowed:  []models.UserRole{models.UserRoleManager},
			want:     true,
		},
		{
			name: "general with no grants denied",
			role: models.UserRoleGeneral,
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Allow(tt.role, tt.callerID, tt.ownerID, tt.allowed...)
			assert.Equal(t, tt.want, got)
		})
	}
}
