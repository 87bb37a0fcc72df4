package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/smartcampus/portal/backend/internal/apperrors"
	"github.com/smartcampus/portal/backend/internal/models"
	"github.com/smartcampus/portal/backend/internal/oidc"
	"github.com/smartcampus/portal/backend/internal/sessions"
	"github.com/smartcampus/portal/backend/internal/users"
	"github.com/smartcampus/portal/backend/pkg/logger"
	"github.com/smartcampus/portal/backend/pkg/metrics"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor for stored password hashes.
const BcryptCost = 10

// DefaultVerifyTimeout bounds one external ID-token verification.
const DefaultVerifyTimeout = 10 * time.Second

var (
	dummyOnce sync.Once
	dummyHash []byte
)

// dummy returns a hash compared against when the email is unknown, so unknown
// and known accounts take the same time to reject.
func dummy() []byte {
	dummyOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("no-such-account"), BcryptCost)
	})
	return dummyHash
}

// EmailPolicy restricts external sign-in to one domain plus explicit addresses.
type EmailPolicy struct {
	Domain  string
	Allowed []string
}

// Allows compares case-insensitively.
func (p EmailPolicy) Allows(email string) bool {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return false
	}
	for _, a := range p.Allowed {
		if strings.ToLower(strings.TrimSpace(a)) == email {
			return true
		}
	}
	domain := strings.ToLower(strings.TrimPrefix(p.Domain, "@"))
	at := strings.LastIndex(email, "@")
	return domain != "" && at >= 0 && email[at+1:] == domain
}

// RegisterInput carries a self-registration request.
type RegisterInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	StudentID string `json:"studentId"`
}

// Login is the outcome of a successful sign-in.
type Login struct {
	User   *models.User
	Issued *sessions.Issued
}

// Authenticator turns credentials into sessions.
type Authenticator struct {
	users    *users.Service
	sessions *sessions.Service
	verifier oidc.Verifier
	policy   EmailPolicy
	timeout  time.Duration
}

func NewAuthenticator(u *users.Service, s *sessions.Service, v oidc.Verifier, p EmailPolicy) *Authenticator {
	return &Authenticator{users: u, sessions: s, verifier: v, policy: p, timeout: DefaultVerifyTimeout}
}

// WithVerifyTimeout replaces the ID-token verification deadline. Values <= 0
// keep the default.
func (a *Authenticator) WithVerifyTimeout(d time.Duration) *Authenticator {
	if d > 0 {
		a.timeout = d
	}
	return a
}

// RegisterLocal creates a password account and returns its id.
func (a *Authenticator) RegisterLocal(ctx context.Context, in RegisterInput) (primitive.ObjectID, error) {
	if strings.TrimSpace(in.Name) == "" || strings.TrimSpace(in.Email) == "" || in.Password == "" {
		return primitive.NilObjectID, apperrors.New(apperrors.ErrValidation, "Name, email and password are required")
	}
	if in.Role != "" && !models.ValidRole(in.Role) {
		return primitive.NilObjectID, apperrors.New(apperrors.ErrValidation, "Invalid role")
	}
	existing, err := a.users.FindByEmail(ctx, in.Email)
	if err != nil {
		return primitive.NilObjectID, err
	}
	if existing != nil {
		return primitive.NilObjectID, apperrors.ErrDuplicateEmail
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), BcryptCost)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("hash password: %w", err)
	}
	u := &models.User{
		Name:         in.Name,
		Email:        in.Email,
		Role:         in.Role,
		StudentID:    in.StudentID,
		PasswordHash: string(hash),
	}
	if err := a.users.Create(ctx, u); err != nil {
		return primitive.NilObjectID, err
	}
	metrics.AuthAttempts.WithLabelValues("register", "success").Inc()
	return u.ID, nil
}

// LoginLocal checks an email/password pair. Unknown emails and wrong
// passwords fail identically.
func (a *Authenticator) LoginLocal(ctx context.Context, email, password string) (*Login, error) {
	u, err := a.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if u == nil || u.PasswordHash == "" {
		_ = bcrypt.CompareHashAndPassword(dummy(), []byte(password))
		metrics.AuthAttempts.WithLabelValues("password", "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		metrics.AuthAttempts.WithLabelValues("password", "failure").Inc()
		return nil, apperrors.ErrInvalidCredentials
	}
	return a.issue(ctx, u, "password")
}

// LoginExternal signs in with a Google ID token, creating a student account on
// first use. Verification is bounded by the verify timeout. Unverified emails
// and the email policy are rejected before any lookup or write.
func (a *Authenticator) LoginExternal(ctx context.Context, idToken string) (*Login, error) {
	if a.verifier == nil {
		return nil, apperrors.ErrUpstreamAuth
	}
	vctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	claims, err := a.verifier.Verify(vctx, idToken)
	if err != nil {
		logger.Warnf("ID token rejected: %v", err)
		metrics.AuthAttempts.WithLabelValues("google", "failure").Inc()
		return nil, fmt.Errorf("%w: %v", apperrors.ErrUpstreamAuth, err)
	}
	if !claims.EmailVerified {
		metrics.AuthAttempts.WithLabelValues("google", "denied").Inc()
		return nil, apperrors.New(apperrors.ErrDomainNotAllowed, "Email is not verified")
	}
	if !a.policy.Allows(claims.Email) {
		metrics.AuthAttempts.WithLabelValues("google", "denied").Inc()
		return nil, apperrors.Newf(apperrors.ErrDomainNotAllowed, "Email must be a @%s address", a.policy.Domain)
	}

	u, err := a.users.FindByEmail(ctx, claims.Email)
	if err != nil {
		return nil, err
	}
	if u == nil {
		name := claims.Name
		if name == "" {
			name = claims.Email
		}
		u = &models.User{Name: name, Email: claims.Email, Role: models.RoleStudent}
		if err := a.users.Create(ctx, u); err != nil {
			if !errors.Is(err, apperrors.ErrDuplicateEmail) {
				return nil, err
			}
			// created concurrently by another sign-in
			if u, err = a.users.FindByEmail(ctx, claims.Email); err != nil {
				return nil, err
			}
			if u == nil {
				return nil, errors.New("user missing after duplicate insert")
			}
		} else {
			logger.Infof("created account %s from Google sign-in", u.ID.Hex())
		}
	}
	return a.issue(ctx, u, "google")
}

func (a *Authenticator) issue(ctx context.Context, u *models.User, method string) (*Login, error) {
	iss, err := a.sessions.Issue(ctx, u.ID.Hex(), u.Role)
	if err != nil {
		return nil, fmt.Errorf("issue session: %w", err)
	}
	metrics.AuthAttempts.WithLabelValues(method, "success").Inc()
	return &Login{User: u, Issued: iss}, nil
}

// Logout revokes the caller's session. A nil principal is a no-op.
func (a *Authenticator) Logout(ctx context.Context, p *Principal) error {
	if p == nil {
		return nil
	}
	return a.sessions.Revoke(ctx, p.Session())
}

// Sessions exposes the session service for middleware wiring.
func (a *Authenticator) Sessions() *sessions.Service { return a.sessions }
