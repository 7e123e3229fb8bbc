package usecase

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"course-platform/internal/data/entity"
	"course-platform/internal/data/repository"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

// SessionService owns the bearer-token lifecycle: issued(active) -> revoked,
// terminal once revoked. Expired and surplus tokens are swept lazily on the
// issue and validate paths, there is no background job.
type SessionService interface {
	Issue(ctx context.Context, userID int64, ip string) (string, error)
	// Validate resolves the request's credential to a principal. A nil user
	// with a nil error means unauthenticated; the error is reserved for
	// storage failures. The second return is the raw token, for revocation.
	Validate(ctx context.Context, r *http.Request) (*entity.User, string, error)
	Revoke(ctx context.Context, userID int64, token string) error
}

type sessionService struct {
	users  repository.UserRepository
	tokens repository.UserTokenRepository
	config *utils.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewSessionService(
	users repository.UserRepository,
	tokens repository.UserTokenRepository,
	config *utils.Config,
	log *zap.Logger,
) SessionService {
	return &sessionService{
		users:  users,
		tokens: tokens,
		config: config,
		log:    log,
		now:    time.Now,
	}
}

func (s *sessionService) Issue(ctx context.Context, userID int64, ip string) (string, error) {
	// Claims carry unix seconds, so the whole issuance works at second
	// precision. Truncating here also makes the same-second dedupe exact.
	now := s.now().UTC().Truncate(time.Second)

	// 1. Lazy sweep: retire this user's tokens that ran out
	if err := s.tokens.RevokeExpired(ctx, userID, now); err != nil {
		return "", fmt.Errorf("sweep expired tokens: %w", err)
	}

	// 2. Rapid repeated logins inside one second reuse the existing token
	if existing, err := s.tokens.FindSameSecond(ctx, userID, now); err != nil {
		return "", fmt.Errorf("check same-second token: %w", err)
	} else if existing != nil && existing.ValidTill.After(now) {
		return existing.Token, nil
	}

	ttl := time.Duration(s.config.JWT.ExpireSeconds) * time.Second
	token, err := utils.IssueToken(s.config.JWT.Secret, userID, now, ttl)
	if err != nil {
		s.log.Error("Failed to sign token", zap.Error(err), zap.Int64("user_id", userID))
		return "", fmt.Errorf("issue token: %w", err)
	}

	row := &entity.UserToken{
		Base:      entity.Base{CreatedAt: now, UpdatedAt: now},
		UserID:    userID,
		Token:     token,
		ValidTill: now.Add(ttl),
		Active:    true,
	}
	if ip != "" {
		row.IP = &ip
	}

	inserted, err := s.tokens.Create(ctx, row)
	if err != nil {
		return "", fmt.Errorf("persist token: %w", err)
	}
	if !inserted {
		// Lost the same-second race. The winner's row holds a byte-identical
		// token (same claims, same secret), so ours is just as good.
		return token, nil
	}

	// 3. Soft cap on concurrent sessions: log out the oldest device.
	// Count and eviction are separate statements, so parallel issuance can
	// overshoot by one briefly; the next issuance corrects it.
	count, err := s.tokens.CountActive(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("count active tokens: %w", err)
	}
	if count > s.config.JWT.MaxActive {
		if err := s.tokens.DeactivateOldest(ctx, userID, row.ID); err != nil {
			return "", fmt.Errorf("enforce token cap: %w", err)
		}
		s.log.Info("Active token cap enforced",
			zap.Int64("user_id", userID),
			zap.Int("max_active", s.config.JWT.MaxActive),
		)
	}

	return token, nil
}

func (s *sessionService) Validate(ctx context.Context, r *http.Request) (*entity.User, string, error) {
	raw, ok := utils.ExtractToken(r, s.config.JWT.CookieName)
	if !ok {
		return nil, "", nil
	}

	// A bad signature or unlisted algorithm is unauthenticated, not an error
	claims, err := utils.VerifyToken(s.config.JWT.Secret, raw)
	if err != nil {
		s.log.Debug("Token verification failed", zap.Error(err))
		return nil, "", nil
	}

	row, err := s.tokens.FindActive(ctx, claims.UserID, raw)
	if err != nil {
		return nil, "", err
	}
	if row == nil {
		return nil, "", nil
	}

	// Expiry-on-read: the signature may still be fine, the row decides
	if !row.ValidTill.After(s.now()) {
		if err := s.tokens.Deactivate(ctx, row.ID); err != nil {
			s.log.Warn("Failed to retire expired token",
				zap.Error(err),
				zap.Int64("token_id", row.ID),
			)
		}
		return nil, "", nil
	}

	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return nil, "", err
	}
	if user == nil || !user.Active {
		return nil, "", nil
	}

	return user, raw, nil
}

func (s *sessionService) Revoke(ctx context.Context, userID int64, token string) error {
	return s.tokens.DeactivateToken(ctx, userID, token)
}
