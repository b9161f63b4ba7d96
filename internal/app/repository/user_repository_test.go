package repository

import (
	"testing"
	"time"

	"github.com/oboteam/guarantor-backend/internal/app/model"
	"github.com/oboteam/guarantor-backend/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupUserTest(t *testing.T) (*gorm.DB, UserRepository) {
	testDB, err := db.SetupTestDB(t)
	require.NoError(t, err)

	repo := NewUserRepository(testDB)
	return testDB, repo
}

func TestUserRepository_Create(t *testing.T) {
	_, repo := setupUserTest(t)

	tests := []struct {
		name    string
		user    *model.User
		wantErr bool
	}{
		{
			name: "Valid user",
			user: &model.User{
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				FirstName:    "Test",
				LastName:     "User",
				IsActive:     true,
			},
			wantErr: false,
		},
		{
			name: "Duplicate email",
			user: &model.User{
				Email:        "test@example.com",
				PasswordHash: "hashedpassword",
				FirstName:    "Another",
				LastName:     "User",
				IsActive:     true,
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.Create(tt.user)

			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.NotZero(t, tt.user.ID)
			}
		})
	}
}

func TestUserRepository_FindByEmail(t *testing.T) {
	_, repo := setupUserTest(t)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(user))

	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "Existing email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "Unknown email",
			email:   "missing@example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			found, err := repo.FindByEmail(tt.email)

			if tt.wantErr {
				assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
				assert.Nil(t, found)
			} else {
				require.NoError(t, err)
				assert.Equal(t, user.ID, found.ID)
				assert.Equal(t, tt.email, found.Email)
			}
		})
	}
}

func TestUserRepository_List(t *testing.T) {
	_, repo := setupUserTest(t)

	emails := []string{"a@example.com", "b@example.com", "c@example.com"}
	for _, email := range emails {
		require.NoError(t, repo.Create(&model.User{
			Email:        email,
			PasswordHash: "hashedpassword",
			IsActive:     true,
		}))
	}

	users, err := repo.List()
	require.NoError(t, err)
	require.Len(t, users, 3)

	// Ordered by id
	assert.Equal(t, "a@example.com", users[0].Email)
	assert.Equal(t, "c@example.com", users[2].Email)
}

func TestUserRepository_Update(t *testing.T) {
	_, repo := setupUserTest(t)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(user))

	user.FirstName = "Updated"
	user.IsSuperuser = true
	require.NoError(t, repo.Update(user))

	found, err := repo.FindByID(user.ID)
	require.NoError(t, err)
	assert.Equal(t, "Updated", found.FirstName)
	assert.True(t, found.IsSuperuser)
}

func TestUserRepository_Delete(t *testing.T) {
	_, repo := setupUserTest(t)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(user))

	require.NoError(t, repo.Delete(user.ID))

	// Soft deleted: invisible to normal queries
	_, err := repo.FindByID(user.ID)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepository_PurgeDeletedBefore(t *testing.T) {
	testDB, repo := setupUserTest(t)

	user := &model.User{
		Email:        "test@example.com",
		PasswordHash: "hashedpassword",
		IsActive:     true,
	}
	require.NoError(t, repo.Create(user))
	require.NoError(t, repo.Delete(user.ID))

	// Freshly deleted user is within the retention window
	count, err := repo.PurgeDeletedBefore(time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, count)

	count, err = repo.PurgeDeletedBefore(time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	// Gone even for unscoped queries
	var remaining int64
	require.NoError(t, testDB.Unscoped().Model(&model.User{}).Count(&remaining).Error)
	assert.Zero(t, remaining)
}
