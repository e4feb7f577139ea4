package auth

import (
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"facultyportal/pkg/domain"
)

// ErrInvalidCredentials is returned for any email/password pair that does
// not match a known account.
var ErrInvalidCredentials = errors.New("invalid login credentials")

// CredentialVerifier checks a credential pair and resolves the identity it
// belongs to. The demo verifier below is the only provider today; a real
// identity provider can replace it behind this interface.
type CredentialVerifier interface {
	Verify(email, password string) (domain.Session, error)
}

// DemoVerifier holds a fixed in-memory account table. Demo-grade only:
// one shared password, three accounts, no lockout, no expiry.
type DemoVerifier struct {
	accounts     map[string]domain.Session
	passwordHash []byte
}

const demoPassword = "password123"

// NewDemoVerifier builds the fixed demo account table.
func NewDemoVerifier() *DemoVerifier {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		// bcrypt only fails on invalid cost; the default cost is valid.
		panic(err)
	}
	return &DemoVerifier{
		passwordHash: hash,
		accounts: map[string]domain.Session{
			"admin@uni.com":   {ID: "1", Email: "admin@uni.com", Role: domain.RoleAdmin},
			"faculty@uni.com": {ID: "2", Email: "faculty@uni.com", Role: domain.RoleFaculty},
			"student@uni.com": {ID: "3", Email: "student@uni.com", Role: domain.RoleStudent},
		},
	}
}

// Verify resolves the session identity for a valid credential pair.
func (v *DemoVerifier) Verify(email, password string) (domain.Session, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	account, ok := v.accounts[email]
	if !ok {
		// Burn a comparison anyway so unknown emails cost the same.
		_ = bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password))
		return domain.Session{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(v.passwordHash, []byte(password)); err != nil {
		return domain.Session{}, ErrInvalidCredentials
	}
	return account, nil
}
