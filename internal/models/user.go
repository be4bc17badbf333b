package models

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/carpenike/fitcoach/internal/profile"
)

// ErrNotFound is returned when a query finds no matching row.
var ErrNotFound = errors.New("not found")

// ErrDuplicateUsername is returned when a username already exists.
var ErrDuplicateUsername = errors.New("duplicate username")

// ErrInvalidCredentials is returned when a password does not match an
// existing user, or when the username or password is blank.
var ErrInvalidCredentials = errors.New("invalid credentials")

// User is a login account together with its coaching profile.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Age          sql.NullInt64
	Sex          sql.NullString
	Location     sql.NullString
	RunLevel     sql.NullString
	SquatLevel   sql.NullString
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Profile converts the nullable columns into a profile.Profile.
func (u *User) Profile() profile.Profile {
	p := profile.Profile{
		Sex:        profile.ParseSex(u.Sex.String),
		Location:   u.Location.String,
		RunLevel:   u.RunLevel.String,
		SquatLevel: u.SquatLevel.String,
	}
	if u.Age.Valid {
		p.Age = profile.IntPtr(int(u.Age.Int64))
	}
	return p
}

// HashPassword generates a bcrypt hash of the given plaintext password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("models: hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a plaintext password against a bcrypt hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

const userColumns = `id, username, password_hash, age, sex, location, run_level, squat_level, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*User, error) {
	u := &User{}
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Age, &u.Sex, &u.Location,
		&u.RunLevel, &u.SquatLevel, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

// CreateUser inserts a new user with an empty profile. Returns
// ErrDuplicateUsername if the username is already taken.
func CreateUser(db *sql.DB, username, password string) (*User, error) {
	hash, err := HashPassword(password)
	if err != nil {
		return nil, err
	}

	result, err := db.Exec(
		`INSERT INTO users (username, password_hash) VALUES (?, ?)`,
		username, hash,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("models: create user %q: %w", username, err)
	}

	id, _ := result.LastInsertId()
	return GetUserByID(db, id)
}

// GetUserByID retrieves a user by primary key.
func GetUserByID(db *sql.DB, id int64) (*User, error) {
	u, err := scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get user %d: %w", id, err)
	}
	return u, nil
}

// GetUserByUsername retrieves a user by username.
func GetUserByUsername(db *sql.DB, username string) (*User, error) {
	u, err := scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE username = ?`, username))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("models: get user by username %q: %w", username, err)
	}
	return u, nil
}

// Authenticate verifies a username/password combination. It returns
// ErrNotFound for an unknown username and ErrInvalidCredentials for a
// wrong password.
func Authenticate(db *sql.DB, username, password string) (*User, error) {
	u, err := GetUserByUsername(db, username)
	if err != nil {
		return nil, err
	}
	if !CheckPassword(u.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// LoginOrRegister authenticates an existing user or creates a new one on
// first login. created reports whether the account was just made. A wrong
// password for an existing username yields ErrInvalidCredentials and writes
// nothing.
func LoginOrRegister(db *sql.DB, username, password string) (u *User, created bool, err error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return nil, false, ErrInvalidCredentials
	}

	u, err = Authenticate(db, username, password)
	if err == nil {
		return u, false, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}

	u, err = CreateUser(db, username, password)
	if errors.Is(err, ErrDuplicateUsername) {
		// Lost a race with a concurrent first login for the same name.
		u, err = Authenticate(db, username, password)
		return u, false, err
	}
	if err != nil {
		return nil, false, err
	}
	return u, true, nil
}

// UpdateProfile writes all tracked profile fields for a user. Empty fields
// are stored as NULL.
func UpdateProfile(db *sql.DB, id int64, p profile.Profile) (*User, error) {
	var age sql.NullInt64
	if p.Age != nil {
		age = sql.NullInt64{Int64: int64(*p.Age), Valid: true}
	}

	result, err := db.Exec(
		`UPDATE users
		 SET age = ?, sex = ?, location = ?, run_level = ?, squat_level = ?, updated_at = ?
		 WHERE id = ?`,
		age, nullString(string(p.Sex)), nullString(p.Location),
		nullString(p.RunLevel), nullString(p.SquatLevel), time.Now().UTC(), id,
	)
	if err != nil {
		return nil, fmt.Errorf("models: update profile for user %d: %w", id, err)
	}
	if n, _ := result.RowsAffected(); n == 0 {
		return nil, ErrNotFound
	}
	return GetUserByID(db, id)
}

// CountUsers returns the total number of users in the database.
func CountUsers(db *sql.DB) (int, error) {
	var count int
	err := db.QueryRow(`SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("models: count users: %w", err)
	}
	return count, nil
}
