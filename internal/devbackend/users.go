package devbackend

import (
	"errors"
	"fmt"
	"sync"

	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUserExists         = errors.New("user already exists")
)

// User is an account of the development backend.
type User struct {
	UID      string
	Username string
	FullName string
	Email    string
	// Role is sent verbatim, so legacy spellings such as "Administrator"
	// can be seeded.
	Role string

	passwordHash []byte
}

// Directory holds users in memory with bcrypt password hashes.
type Directory struct {
	mu     sync.RWMutex
	cost   int
	byName map[string]User
}

// NewDirectory returns an empty directory hashing with the given bcrypt cost.
func NewDirectory(cost int) *Directory {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Directory{cost: cost, byName: make(map[string]User)}
}

// Add registers u with the given password.
func (d *Directory) Add(u User, password string) error {
	if u.UID == "" || u.Username == "" || password == "" {
		return fmt.Errorf("add user %q: uid, username and password are required", u.Username)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), d.cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.passwordHash = hash

	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.byName[u.Username]; exists {
		return ErrUserExists
	}
	d.byName[u.Username] = u
	return nil
}

// Authenticate checks the password of username. Unknown users and wrong
// passwords are indistinguishable.
func (d *Directory) Authenticate(username, password string) (User, error) {
	u, ok := d.Lookup(username)
	if !ok {
		return User{}, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword(u.passwordHash, []byte(password)) != nil {
		return User{}, ErrInvalidCredentials
	}
	return u, nil
}

func (d *Directory) Lookup(username string) (User, bool) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	u, ok := d.byName[username]
	return u, ok
}

// SeedUsers is one account per dashboard role plus a legacy admin.
var SeedUsers = []User{
	{UID: "u-admin", Username: "admin", FullName: "Ada Admin", Email: "admin@pls.dev", Role: "admin"},
	{UID: "u-moderator", Username: "moderator", FullName: "Mona Moderator", Email: "moderator@pls.dev", Role: "moderator"},
	{UID: "u-client", Username: "client", FullName: "Carl Client", Email: "client@pls.dev", Role: "client"},
	{UID: "u-freelancer", Username: "freelancer", FullName: "Fay Freelancer", Email: "freelancer@pls.dev", Role: "freelancer"},
	{UID: "u-legacy", Username: "legacy", FullName: "Lee Legacy", Email: "legacy@pls.dev", Role: "Administrator"},
}

// Seed returns a directory holding SeedUsers, all sharing password.
func Seed(password string, cost int) (*Directory, error) {
	d := NewDirectory(cost)
	for _, u := range SeedUsers {
		if err := d.Add(u, password); err != nil {
			return nil, err
		}
	}
	return d, nil
}
