package auth

import (
	"fmt"
	"testing"

	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
	"github.com/whi-0404/TopCV-sub000/internal/utilities"
)

// GetAccessToken logs a seeded test user in and returns a signed access
// token for use in handler tests.
func GetAccessToken(
	t *testing.T,
	db *database.DBinstanceStruct,
	username string,
	password string,
) (string, error) {
	t.Helper()

	var user model.User
	if err := db.Where("username = ?", username).First(&user).Error; err != nil {
		return "", fmt.Errorf("test user %q not found: %w", username, err)
	}

	if !utilities.CheckPassword(user.Password, password) {
		return "", fmt.Errorf("wrong password for test user %q", username)
	}

	return generateToken(user.ID)
}
