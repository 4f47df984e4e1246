package models

import (
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCreator  Role = "creator"
	RoleFollower Role = "follower"
)

func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleCreator, RoleFollower:
		return true
	}

	return false
}

type User struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	Email     string    `db:"email" json:"email"`
	Password  []byte    `db:"password" json:"-"`
	Role      Role      `db:"role" json:"role"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	LastLogin time.Time `db:"last_login,omitempty" json:"lastLogin,omitempty"`
}

type CreatorStatus string

const (
	CreatorPending  CreatorStatus = "pending"
	CreatorApproved CreatorStatus = "approved"
	CreatorRejected CreatorStatus = "rejected"
)

func (s CreatorStatus) Valid() bool {
	switch s {
	case CreatorPending, CreatorApproved, CreatorRejected:
		return true
	}

	return false
}

// CreatorProfile holds the role-specific data of a user allowed to upload.
// One profile per user.
type CreatorProfile struct {
	ID          int64         `db:"id" json:"id"`
	UserID      uuid.UUID     `db:"user_id" json:"userId"`
	DisplayName string        `db:"display_name" json:"displayName"`
	Bio         *string       `db:"bio" json:"bio"`
	PhotoURL    *string       `db:"photo_url" json:"photoUrl"`
	Categories  []string      `db:"categories" json:"categories"`
	Status      CreatorStatus `db:"status" json:"status"`
	CreatedAt   time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time     `db:"updated_at" json:"updatedAt"`
}

type FollowerProfile struct {
	ID          int64     `db:"id" json:"id"`
	UserID      uuid.UUID `db:"user_id" json:"userId"`
	DisplayName string    `db:"display_name" json:"displayName"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}
