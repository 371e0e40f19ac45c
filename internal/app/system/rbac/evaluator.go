// Package rbac evaluates group-scoped permissions: a profile holds roles in a
// group via user roles, and roles grant catalog permissions via role-permission
// links. Group owners bypass the lookup.
package rbac

import (
	"context"
	"errors"
	"fmt"

	membershipstore "github.com/dalemusser/agendapro/internal/app/store/memberships"
	permissionstore "github.com/dalemusser/agendapro/internal/app/store/permissions"
	rolepermstore "github.com/dalemusser/agendapro/internal/app/store/rolepermissions"
	userrolestore "github.com/dalemusser/agendapro/internal/app/store/userroles"
	"github.com/dalemusser/agendapro/internal/app/system/metrics"
	"github.com/dalemusser/agendapro/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// Lookup caps. A profile with more roles, or a permission with more links,
// is evaluated against the first N only.
const (
	MaxUserRoles       = 10
	MaxRolePermissions = 100
)

// Evaluator answers permission questions against the stores.
type Evaluator struct {
	Members   *membershipstore.Store
	UserRoles *userrolestore.Store
	Perms     *permissionstore.Store
	RolePerms *rolepermstore.Store
}

func NewEvaluator(db *mongo.Database) *Evaluator {
	return &Evaluator{
		Members:   membershipstore.New(db),
		UserRoles: userrolestore.New(db),
		Perms:     permissionstore.New(db),
		RolePerms: rolepermstore.New(db),
	}
}

// HasPermission reports whether profileID holds key in groupID through any
// enabled role. Unknown permission keys are denied.
func (e *Evaluator) HasPermission(ctx context.Context, groupID, profileID primitive.ObjectID, key string) (bool, error) {
	urs, err := e.UserRoles.ListEnabled(ctx, groupID, profileID, MaxUserRoles)
	if err != nil {
		return false, fmt.Errorf("list user roles: %w", err)
	}
	if len(urs) == 0 {
		metrics.RecordPermissionCheck("denied")
		return false, nil
	}

	perm, err := e.Perms.GetByKey(ctx, key)
	if errors.Is(err, mongo.ErrNoDocuments) {
		metrics.RecordPermissionCheck("denied")
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("get permission %q: %w", key, err)
	}

	links, err := e.RolePerms.ListEnabledByPermission(ctx, groupID, perm.ID, MaxRolePermissions)
	if err != nil {
		return false, fmt.Errorf("list role permissions: %w", err)
	}

	held := make(map[primitive.ObjectID]struct{}, len(urs))
	for _, ur := range urs {
		held[ur.RoleID] = struct{}{}
	}
	for _, l := range links {
		if _, ok := held[l.RoleID]; ok {
			metrics.RecordPermissionCheck("allowed")
			return true, nil
		}
	}
	metrics.RecordPermissionCheck("denied")
	return false, nil
}

// IsOwnerOrAdmin reports whether profileID holds an enabled OWNER membership in groupID.
func (e *Evaluator) IsOwnerOrAdmin(ctx context.Context, groupID, profileID primitive.ObjectID) (bool, error) {
	m, err := e.Members.FindEnabled(ctx, groupID, profileID)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("find membership: %w", err)
	}
	return m.MembershipRole == models.MembershipOwner, nil
}

// Can combines both checks: owners pass without a permission lookup.
func (e *Evaluator) Can(ctx context.Context, groupID, profileID primitive.ObjectID, key string) (bool, error) {
	owner, err := e.IsOwnerOrAdmin(ctx, groupID, profileID)
	if err != nil {
		return false, err
	}
	if owner {
		metrics.RecordPermissionCheck("owner")
		return true, nil
	}
	return e.HasPermission(ctx, groupID, profileID, key)
}
