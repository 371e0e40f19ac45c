// internal/app/system/indexes/indexes.go
package indexes

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

/*
EnsureAll is called at startup. Each ensure* function is idempotent.
We aggregate errors so any problem is visible and startup can fail fast.

Several of these indexes carry invariants the workflows rely on:
  - uniq_perm_key: permission keys are global and created at most once
  - uniq_gm_group_profile_enabled: one enabled membership per (group, profile)
  - uniq_inv_pending_enabled_group_email: one enabled PENDING invitation per (group, email)
  - uniq_inv_token: invitation tokens are unique
*/
func EnsureAll(ctx context.Context, db *mongo.Database) error {
	sets := []struct {
		name   string
		models []mongo.IndexModel
	}{
		{"users", usersIndexes()},
		{"profiles", profilesIndexes()},
		{"groups", groupsIndexes()},
		{"group_members", groupMembersIndexes()},
		{"roles", rolesIndexes()},
		{"permissions", permissionsIndexes()},
		{"role_permissions", rolePermissionsIndexes()},
		{"user_roles", userRolesIndexes()},
		{"calendars", calendarsIndexes()},
		{"group_invitations", invitationsIndexes()},
		{"notifications", notificationsIndexes()},
		{"push_subscriptions", pushSubscriptionsIndexes()},
		{"user_settings", userSettingsIndexes()},
		{"audit_logs", auditLogsIndexes()},
	}

	var problems []string
	for _, s := range sets {
		if err := ensureIndexSet(ctx, db.Collection(s.name), s.models); err != nil {
			problems = append(problems, s.name+": "+err.Error())
		}
	}
	if len(problems) > 0 {
		return errors.New(strings.Join(problems, "; "))
	}
	return nil
}

/* -------------------------------------------------------------------------- */
/* Core helper: reconcile a set of desired indexes for one collection         */
/* -------------------------------------------------------------------------- */

type existingIndex struct {
	Name   string `bson:"name"`
	Key    bson.D `bson:"key"`
	Unique *bool  `bson:"unique,omitempty"`
}

func keySig(keys bson.D) string {
	parts := make([]string, 0, len(keys))
	for _, kv := range keys {
		parts = append(parts, fmt.Sprintf("%s:%v", kv.Key, kv.Value))
	}
	return strings.Join(parts, ", ")
}

func sameBoolPtr(a, b *bool) bool {
	av, bv := false, false
	if a != nil {
		av = *a
	}
	if b != nil {
		bv = *b
	}
	return av == bv
}

func listExisting(ctx context.Context, coll *mongo.Collection) (map[string]existingIndex, error) {
	cur, err := coll.Indexes().List(ctx)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	existing := map[string]existingIndex{} // sig -> index
	for cur.Next(ctx) {
		var idx existingIndex
		if err := cur.Decode(&idx); err != nil {
			zap.L().Warn("failed to decode existing index",
				zap.String("collection", coll.Name()),
				zap.Error(err))
			continue
		}
		existing[keySig(idx.Key)] = idx
	}
	return existing, cur.Err()
}

// ensureIndexSet creates missing indexes and drops/recreates ones whose
// uniqueness or name drifted from what we want.
func ensureIndexSet(ctx context.Context, coll *mongo.Collection, models []mongo.IndexModel) error {
	existing, err := listExisting(ctx, coll)
	if err != nil {
		// The collection may not exist yet; CreateOne below will create it.
		existing = map[string]existingIndex{}
	}

	var errs []string
	for _, m := range models {
		var desiredName string
		var desiredUnique *bool
		if m.Options != nil {
			if m.Options.Name != nil {
				desiredName = *m.Options.Name
			}
			desiredUnique = m.Options.Unique
		}
		sig := keySig(m.Keys.(bson.D))
		start := time.Now()

		if ex, ok := existing[sig]; ok {
			if sameBoolPtr(desiredUnique, ex.Unique) && (desiredName == "" || ex.Name == desiredName) {
				zap.L().Debug("reusing existing index",
					zap.String("collection", coll.Name()),
					zap.String("name", ex.Name),
					zap.String("keys", sig))
				continue
			}
			// Name or uniqueness drifted: drop and recreate.
			if _, err := coll.Indexes().DropOne(ctx, ex.Name); err != nil {
				errs = append(errs, fmt.Sprintf("%s(%s): drop failed: %v", coll.Name(), desiredName, err))
				continue
			}
		}

		if _, err := coll.Indexes().CreateOne(ctx, m); err != nil {
			if isDuplicateKeyErr(err) {
				errs = append(errs, fmt.Sprintf("%s(%s): cannot create unique index (duplicates present)", coll.Name(), desiredName))
			} else {
				errs = append(errs, fmt.Sprintf("%s(%s): %v", coll.Name(), desiredName, err))
			}
			continue
		}
		zap.L().Info("index ensured",
			zap.String("collection", coll.Name()),
			zap.String("name", desiredName),
			zap.String("keys", sig),
			zap.Bool("unique", desiredUnique != nil && *desiredUnique),
			zap.String("took", time.Since(start).String()))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}
	return nil
}

// Best-effort duplicate-detector (works cross-vendors)
func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	var ce mongo.CommandError
	if errors.As(err, &ce) && ce.Code == 11000 {
		return true
	}
	s := err.Error()
	return strings.Contains(s, "E11000") || strings.Contains(strings.ToLower(s), "duplicate key")
}

/* -------------------------------------------------------------------------- */
/* Collection-specific index sets                                              */
/* -------------------------------------------------------------------------- */

func usersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_users_emailci"),
		},
	}
}

func profilesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email_ci", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_profiles_emailci"),
		},
		{
			Keys:    bson.D{{Key: "user_id", Value: 1}},
			Options: options.Index().SetName("idx_profiles_user"),
		},
	}
}

func groupsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_profile_id", Value: 1}, {Key: "enabled", Value: 1}},
			Options: options.Index().SetName("idx_groups_owner_enabled"),
		},
	}
}

func groupMembersIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		// One enabled membership per (group, profile); disabled rows are history.
		{
			Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "profile_id", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"enabled": true}).
				SetName("uniq_gm_group_profile_enabled"),
		},
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "enabled", Value: 1}},
			Options: options.Index().SetName("idx_gm_profile_enabled"),
		},
	}
}

func rolesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "name", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_roles_group_name"),
		},
	}
}

func permissionsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "key", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_perm_key"),
		},
	}
}

func rolePermissionsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "role_id", Value: 1}, {Key: "permission_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_rp_role_perm"),
		},
		// Permission evaluator step 3: links for a permission within a group.
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "permission_id", Value: 1}, {Key: "enabled", Value: 1}},
			Options: options.Index().SetName("idx_rp_group_perm_enabled"),
		},
	}
}

func userRolesIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "profile_id", Value: 1}, {Key: "role_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_ur_group_profile_role"),
		},
	}
}

func calendarsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "owner_profile_id", Value: 1}, {Key: "group_id", Value: 1}},
			Options: options.Index().SetName("idx_cal_owner_group"),
		},
	}
}

func invitationsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_inv_token"),
		},
		{
			Keys: bson.D{{Key: "group_id", Value: 1}, {Key: "invited_email_ci", Value: 1}},
			Options: options.Index().
				SetUnique(true).
				SetPartialFilterExpression(bson.M{"status": "PENDING", "enabled": true}).
				SetName("uniq_inv_pending_enabled_group_email"),
		},
		// Expiry sweep: PENDING + enabled, ordered by expires_at.
		{
			Keys:    bson.D{{Key: "status", Value: 1}, {Key: "enabled", Value: 1}, {Key: "expires_at", Value: 1}},
			Options: options.Index().SetName("idx_inv_status_enabled_expires"),
		},
	}
}

func notificationsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_notif_profile_created"),
		},
	}
}

func pushSubscriptionsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "endpoint", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_push_profile_endpoint"),
		},
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}, {Key: "is_active", Value: 1}, {Key: "enabled", Value: 1}},
			Options: options.Index().SetName("idx_push_profile_active"),
		},
	}
}

func userSettingsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "profile_id", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_settings_profile"),
		},
	}
}

func auditLogsIndexes() []mongo.IndexModel {
	return []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_created"),
		},
		{
			Keys:    bson.D{{Key: "group_id", Value: 1}, {Key: "created_at", Value: -1}},
			Options: options.Index().SetName("idx_audit_group_created"),
		},
		{
			Keys:    bson.D{{Key: "entity_type", Value: 1}, {Key: "entity_id", Value: 1}},
			Options: options.Index().SetName("idx_audit_entity"),
		},
	}
}
