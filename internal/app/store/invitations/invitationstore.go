// internal/app/store/invitations/invitationstore.go
package invitationstore

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/dalemusser/agendapro/internal/domain/models"
	wafflemongo "github.com/dalemusser/waffle/pantry/mongo"
	"github.com/dalemusser/waffle/pantry/text"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

var (
	// ErrDuplicatePending is returned when a PENDING invitation already exists
	// for the (group, email) pair.
	ErrDuplicatePending = errors.New("a pending invitation already exists for this email")
	// ErrDuplicateToken is returned on the (astronomically unlikely) token collision.
	ErrDuplicateToken = errors.New("invitation token collision")
)

type Store struct {
	c *mongo.Collection
}

func New(db *mongo.Database) *Store {
	return &Store{c: db.Collection("group_invitations")}
}

// Create inserts a PENDING invitation. The caller supplies the token and expiry.
func (s *Store) Create(ctx context.Context, inv models.GroupInvitation) (models.GroupInvitation, error) {
	now := time.Now().UTC()
	inv.ID = primitive.NewObjectID()
	inv.InvitedEmail = strings.TrimSpace(inv.InvitedEmail)
	inv.InvitedEmailCI = text.Fold(inv.InvitedEmail)
	inv.Status = models.InvitationPending
	if inv.MembershipRole == "" {
		inv.MembershipRole = models.MembershipMember
	}
	inv.Enabled = true
	inv.CreatedAt = now
	inv.UpdatedAt = now
	if _, err := s.c.InsertOne(ctx, inv); err != nil {
		if wafflemongo.IsDup(err) {
			if strings.Contains(err.Error(), "uniq_inv_token") {
				return models.GroupInvitation{}, ErrDuplicateToken
			}
			return models.GroupInvitation{}, ErrDuplicatePending
		}
		return models.GroupInvitation{}, err
	}
	return inv, nil
}

func (s *Store) GetByID(ctx context.Context, id primitive.ObjectID) (models.GroupInvitation, error) {
	var inv models.GroupInvitation
	if err := s.c.FindOne(ctx, bson.M{"_id": id}).Decode(&inv); err != nil {
		return models.GroupInvitation{}, err
	}
	return inv, nil
}

// GetByToken resolves an invitation by its token or returns mongo.ErrNoDocuments.
func (s *Store) GetByToken(ctx context.Context, token string) (models.GroupInvitation, error) {
	var inv models.GroupInvitation
	if err := s.c.FindOne(ctx, bson.M{"token": token}).Decode(&inv); err != nil {
		return models.GroupInvitation{}, err
	}
	return inv, nil
}

// HasPending reports whether a PENDING, enabled invitation exists for the email in the group.
func (s *Store) HasPending(ctx context.Context, groupID primitive.ObjectID, email string) (bool, error) {
	err := s.c.FindOne(ctx, bson.M{
		"group_id":         groupID,
		"invited_email_ci": text.Fold(strings.TrimSpace(email)),
		"status":           models.InvitationPending,
		"enabled":          true,
	}).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Transition moves a PENDING invitation to a terminal status. The update is
// conditional on status=PENDING, so each invitation transitions at most once;
// ok is false when another caller got there first.
// extra fields are $set alongside status and updated_at.
func (s *Store) Transition(ctx context.Context, id primitive.ObjectID, to string, extra bson.M) (ok bool, err error) {
	set := bson.M{
		"status":     to,
		"updated_at": time.Now().UTC(),
	}
	for k, v := range extra {
		set[k] = v
	}
	res, err := s.c.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.InvitationPending},
		bson.M{"$set": set},
	)
	if err != nil {
		return false, err
	}
	return res.ModifiedCount == 1, nil
}

// ListExpiredPending returns up to limit enabled PENDING invitations whose
// expires_at is before now, oldest first.
func (s *Store) ListExpiredPending(ctx context.Context, now time.Time, limit int64) ([]models.GroupInvitation, error) {
	cur, err := s.c.Find(ctx,
		bson.M{
			"status":     models.InvitationPending,
			"enabled":    true,
			"expires_at": bson.M{"$lt": now},
		},
		options.Find().
			SetSort(bson.D{{Key: "expires_at", Value: 1}}).
			SetLimit(limit),
	)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var out []models.GroupInvitation
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
