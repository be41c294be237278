package auth

import (
	"testing"

	"franchise-backend/internal/apperr"
	"franchise-backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uintPtr(v uint) *uint { return &v }

func TestAuthorize(t *testing.T) {
	allRoles := []models.UserRole{
		models.RoleFranchisor, models.RoleBranchOwner, models.RoleManager, models.RoleStaff,
	}

	tests := []struct {
		name         string
		sess         Session
		allowedRoles []models.UserRole
		targetBranch uint
		wantErr      apperr.Kind
	}{
		{
			name:         "franchisor passes any branch",
			sess:         Session{Role: models.RoleFranchisor},
			allowedRoles: allRoles,
			targetBranch: 42,
		},
		{
			name:         "owner passes own branch",
			sess:         Session{Role: models.RoleBranchOwner, BranchID: uintPtr(7)},
			allowedRoles: allRoles,
			targetBranch: 7,
		},
		{
			name:         "owner refused on foreign branch",
			sess:         Session{Role: models.RoleBranchOwner, BranchID: uintPtr(7)},
			allowedRoles: allRoles,
			targetBranch: 8,
			wantErr:      apperr.KindForbidden,
		},
		{
			name:         "manager refused on foreign branch",
			sess:         Session{Role: models.RoleManager, BranchID: uintPtr(3)},
			allowedRoles: allRoles,
			targetBranch: 4,
			wantErr:      apperr.KindForbidden,
		},
		{
			name:         "staff passes own branch",
			sess:         Session{Role: models.RoleStaff, BranchID: uintPtr(5)},
			allowedRoles: allRoles,
			targetBranch: 5,
		},
		{
			name:         "role not in allowed list",
			sess:         Session{Role: models.RoleStaff, BranchID: uintPtr(5)},
			allowedRoles: []models.UserRole{models.RoleFranchisor, models.RoleBranchOwner},
			targetBranch: 5,
			wantErr:      apperr.KindForbidden,
		},
		{
			name:         "branch user without scope refused",
			sess:         Session{Role: models.RoleManager},
			allowedRoles: allRoles,
			targetBranch: 1,
			wantErr:      apperr.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Authorize(tt.sess, tt.allowedRoles, tt.targetBranch)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, apperr.IsKind(err, tt.wantErr))
		})
	}
}

func TestResolveBranchID(t *testing.T) {
	tests := []struct {
		name     string
		sess     Session
		explicit *uint
		want     uint
		wantErr  apperr.Kind
	}{
		{
			name: "branch user defaults to own branch",
			sess: Session{Role: models.RoleBranchOwner, BranchID: uintPtr(9)},
			want: 9,
		},
		{
			name:     "branch user matching explicit is fine",
			sess:     Session{Role: models.RoleManager, BranchID: uintPtr(9)},
			explicit: uintPtr(9),
			want:     9,
		},
		{
			name:     "branch user mismatching explicit refused",
			sess:     Session{Role: models.RoleStaff, BranchID: uintPtr(9)},
			explicit: uintPtr(10),
			wantErr:  apperr.KindForbidden,
		},
		{
			name:     "franchisor with explicit branch",
			sess:     Session{Role: models.RoleFranchisor},
			explicit: uintPtr(4),
			want:     4,
		},
		{
			name:    "franchisor without explicit branch refused",
			sess:    Session{Role: models.RoleFranchisor},
			wantErr: apperr.KindValidation,
		},
		{
			name:    "branch user without scope refused",
			sess:    Session{Role: models.RoleBranchOwner},
			wantErr: apperr.KindForbidden,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ResolveBranchID(tt.sess, tt.explicit)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, apperr.IsKind(err, tt.wantErr))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
