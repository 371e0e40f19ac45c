// internal/domain/models/rbac.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Role is a named bundle of permissions scoped to one group.
// System roles (Admin, Editor, Viewer) are created at provisioning time.
type Role struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID     primitive.ObjectID `bson:"group_id" json:"groupId"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	IsSystem    bool               `bson:"is_system" json:"isSystem"`
	Enabled     bool               `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// Permission is a global capability identified by a unique key (e.g. "events.edit").
type Permission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Key         string             `bson:"key" json:"key"`
	Description string             `bson:"description" json:"description"`
	Enabled     bool               `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
	UpdatedAt time.Time `bson:"updated_at" json:"updatedAt"`
}

// RolePermission links one role to one permission within a group.
type RolePermission struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID      primitive.ObjectID `bson:"group_id" json:"groupId"`
	RoleID       primitive.ObjectID `bson:"role_id" json:"roleId"`
	PermissionID primitive.ObjectID `bson:"permission_id" json:"permissionId"`
	Enabled      bool               `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}

// UserRole assigns a role to a profile within a group.
type UserRole struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	GroupID    primitive.ObjectID `bson:"group_id" json:"groupId"`
	ProfileID  primitive.ObjectID `bson:"profile_id" json:"profileId"`
	RoleID     primitive.ObjectID `bson:"role_id" json:"roleId"`
	AssignedAt time.Time          `bson:"assigned_at" json:"assignedAt"`
	Enabled    bool               `bson:"enabled" json:"enabled"`

	CreatedAt time.Time `bson:"created_at" json:"createdAt"`
}
