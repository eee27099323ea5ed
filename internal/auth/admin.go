package auth

import (
	"crypto/subtle"

	"golang.org/x/crypto/bcrypt"
)

// AdminGate guards the admin dashboard.
type AdminGate struct {
	username     string
	passwordHash []byte
}

// NewAdminGate takes the admin username and the bcrypt hash of its password.
func NewAdminGate(username, passwordHash string) *AdminGate {
	return &AdminGate{username: username, passwordHash: []byte(passwordHash)}
}

func (g *AdminGate) Check(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(g.username)) == 1
	passOK := bcrypt.CompareHashAndPassword(g.passwordHash, []byte(password)) == nil
	return userOK && passOK
}
