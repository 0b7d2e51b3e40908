package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode"
)

// User status values.
const (
	UserStatusActive   = "Aktif"
	UserStatusInactive = "Tidak Aktif"
)

// FlexibleID accepts both numeric and string ids on the wire.
type FlexibleID string

func (id *FlexibleID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = FlexibleID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = FlexibleID(n.String())
	return nil
}

// User is an account with its roles and effective permissions.
type User struct {
	ID              FlexibleID `json:"id"`
	Name            string     `json:"name"`
	Email           string     `json:"email"`
	Status          string     `json:"status"`
	EmailVerifiedAt *time.Time `json:"email_verified_at"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	Roles           []string   `json:"roles"`
	Permissions     []string   `json:"permissions"`
}

func (u *User) HasRole(name string) bool {
	for _, r := range u.Roles {
		if r == name {
			return true
		}
	}
	return false
}

// DisplayName title-cases every word of the name.
func (u *User) DisplayName() string {
	words := strings.Fields(u.Name)
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}

// LoginRequest is the body of POST /api/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse is the body returned by POST /api/login.
type LoginResponse struct {
	User    User   `json:"user"`
	Token   string `json:"token"`
	Message string `json:"message"`
}
