// Package services – UserManager
//
// UserManager registers accounts, reports plan usage, and answers whether a
// user may perform another metered action. Authentication is out of scope:
// a user is whoever sends its id.
package services

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/tbourn/ai-content-studio/internal/domain"
	"github.com/tbourn/ai-content-studio/internal/repo"
	"github.com/tbourn/ai-content-studio/internal/sysutil"
)

const defaultPlan = "free"

// Profile is the public view of a registered user.
type Profile struct {
	UserID      string            `json:"user_id"`
	Email       string            `json:"email"`
	Name        string            `json:"name"`
	Plan        string            `json:"subscription_plan"`
	PlanDetails domain.Plan       `json:"plan_details"`
	CreatedAt   time.Time         `json:"created_at"`
	Usage       domain.UsageStats `json:"usage_stats"`
	Limits      domain.PlanLimits `json:"usage_limits"`
	Features    []string          `json:"features"`
}

// PlanChange is returned after a successful plan switch.
type PlanChange struct {
	UserID      string      `json:"user_id"`
	OldPlan     string      `json:"old_plan"`
	NewPlan     string      `json:"new_plan"`
	PlanDetails domain.Plan `json:"plan_details"`
	ChangedAt   time.Time   `json:"changed_at"`
}

// UsagePercentage is consumption relative to the plan limits.
type UsagePercentage struct {
	Scripts  float64 `json:"scripts"`
	Videos   float64 `json:"videos"`
	APICalls float64 `json:"api_calls"`
}

// UserStats is the usage summary of a user.
type UserStats struct {
	UserID          string            `json:"user_id"`
	Plan            string            `json:"subscription_plan"`
	Usage           domain.UsageStats `json:"usage_stats"`
	Limits          domain.PlanLimits `json:"usage_limits"`
	UsagePercentage UsagePercentage   `json:"usage_percentage"`
}

// UserManager owns the user lifecycle.
type UserManager struct {
	Store UserStore
	Now   func() time.Time
}

// NewUserManager returns a UserManager over st.
func NewUserManager(st UserStore) *UserManager {
	return &UserManager{Store: st, Now: func() time.Time { return time.Now().UTC() }}
}

func (m *UserManager) now() time.Time {
	if m.Now == nil {
		return time.Now().UTC()
	}
	return m.Now()
}

// planOrDefault maps unknown plans to the free tier.
func planOrDefault(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	if _, ok := domain.Plans[p]; ok {
		return p
	}
	return defaultPlan
}

// Register creates a user. The id is the first 16 hex chars of
// sha256(email_timestamp_uuid).
func (m *UserManager) Register(ctx context.Context, email, name, plan string) (*domain.User, error) {
	tr := otel.Tracer("services/UserManager")
	ctx, span := tr.Start(ctx, "Register", trace.WithAttributes(attribute.String("user.plan", plan)))
	defer span.End()

	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return nil, invalid("email", "must be a valid email address")
	}
	if name == "" {
		return nil, invalid("name", "is required")
	}

	now := m.now()
	sum := sha256.Sum256([]byte(email + "_" + now.Format(time.RFC3339Nano) + "_" + uuid.NewString()))
	u := &domain.User{
		ID:        hex.EncodeToString(sum[:])[:16],
		Email:     email,
		Name:      name,
		Plan:      planOrDefault(plan),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := m.Store.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return u, nil
}

func (m *UserManager) get(ctx context.Context, id string) (*domain.User, error) {
	u, err := m.Store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return u, nil
}

// Profile returns the user together with the details of their plan.
func (m *UserManager) Profile(ctx context.Context, id string) (*Profile, error) {
	u, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}
	plan := domain.Plans[planOrDefault(u.Plan)]
	return &Profile{
		UserID:      u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Plan:        u.Plan,
		PlanDetails: plan,
		CreatedAt:   u.CreatedAt,
		Usage:       u.Usage,
		Limits:      plan.Limits,
		Features:    plan.Features,
	}, nil
}

// ChangePlan switches the subscription of a user. Unknown plans are rejected.
func (m *UserManager) ChangePlan(ctx context.Context, id, plan string) (*PlanChange, error) {
	tr := otel.Tracer("services/UserManager")
	ctx, span := tr.Start(ctx, "ChangePlan", trace.WithAttributes(
		attribute.String("user.id", id),
		attribute.String("user.plan", plan),
	))
	defer span.End()

	plan = strings.ToLower(strings.TrimSpace(plan))
	details, ok := domain.Plans[plan]
	if !ok {
		return nil, invalid("plan", "unknown plan %q", plan)
	}
	u, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}
	now := m.now()
	if err := m.Store.UpdateUserPlan(ctx, id, plan, now); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &PlanChange{UserID: id, OldPlan: u.Plan, NewPlan: plan, PlanDetails: details, ChangedAt: now}, nil
}

// Stats returns usage against the plan limits, in percent.
func (m *UserManager) Stats(ctx context.Context, id string) (*UserStats, error) {
	u, err := m.get(ctx, id)
	if err != nil {
		return nil, err
	}
	lim := domain.Plans[planOrDefault(u.Plan)].Limits
	pct := func(used, limit int) float64 {
		return sysutil.Round(float64(used)/float64(max(1, limit))*100, 2)
	}
	return &UserStats{
		UserID: u.ID,
		Plan:   u.Plan,
		Usage:  u.Usage,
		Limits: lim,
		UsagePercentage: UsagePercentage{
			Scripts:  pct(u.Usage.ScriptsGenerated, lim.ScriptsPerMonth),
			Videos:   pct(u.Usage.VideosCreated, lim.VideosPerMonth),
			APICalls: pct(u.Usage.APICallsMade, lim.APICallsPerDay),
		},
	}, nil
}

// CheckLimit reports whether id may perform another action of kind.
// Unregistered users are never limited.
func (m *UserManager) CheckLimit(ctx context.Context, id string, kind domain.UsageKind) (bool, error) {
	if id == "" {
		return true, nil
	}
	u, err := m.Store.GetUser(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return true, nil
		}
		return false, err
	}
	lim := domain.Plans[planOrDefault(u.Plan)].Limits
	switch kind {
	case domain.UsageScriptGeneration:
		return u.Usage.ScriptsGenerated < lim.ScriptsPerMonth, nil
	case domain.UsageVideoCreation:
		return u.Usage.VideosCreated < lim.VideosPerMonth, nil
	case domain.UsageAPICall:
		return u.Usage.APICallsMade < lim.APICallsPerDay, nil
	default:
		return true, nil
	}
}

// RecordUsage bumps the usage counter of a registered user. Unknown users
// are ignored.
func (m *UserManager) RecordUsage(ctx context.Context, id string, kind domain.UsageKind) error {
	if id == "" {
		return nil
	}
	err := m.Store.IncrementUsage(ctx, id, kind)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	return err
}

// Count returns the number of registered users.
func (m *UserManager) Count(ctx context.Context) (int64, error) {
	return m.Store.CountUsers(ctx)
}
