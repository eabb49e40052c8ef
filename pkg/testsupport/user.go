package testsupport

import (
	_ "embed"
	"encoding/json"
	"testing"
)

// User is the sample model shared by package tests.
type User struct {
	ID    string `bun:"id,pk" json:"id" msgpack:"id"`
	Name  string `bun:"name" json:"name" msgpack:"name"`
	Email string `bun:"email" json:"email" msgpack:"email"`
}

// UserID extracts the repository key of a User.
func UserID(u User) string { return u.ID }

//go:embed testdata/users.json
var usersFixture []byte

// Users returns the three sample users from testdata/users.json.
func Users(t testing.TB) []User {
	t.Helper()

	var users []User
	if err := json.Unmarshal(usersFixture, &users); err != nil {
		t.Fatalf("failed to decode users fixture: %v", err)
	}
	return users
}

// NewUserRepository returns a MemoryRepository seeded with Users.
func NewUserRepository(t testing.TB) *MemoryRepository[User] {
	t.Helper()
	return NewMemoryRepository(UserID, Users(t)...)
}
