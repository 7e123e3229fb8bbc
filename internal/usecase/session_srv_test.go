package usecase

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"course-platform/internal/data/entity"
	"course-platform/pkg/utils"

	"go.uber.org/zap"
)

type mockUserRepo struct {
	createFn         func(ctx context.Context, user *entity.User) error
	findByIDFn       func(ctx context.Context, id int64) (*entity.User, error)
	findByEmailFn    func(ctx context.Context, email string) (*entity.User, error)
	findByUsernameFn func(ctx context.Context, username string) (*entity.User, error)
	updateFn         func(ctx context.Context, user *entity.User) error
}

func (m *mockUserRepo) Create(ctx context.Context, user *entity.User) error {
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	user.ID = 1
	return nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*entity.User, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.findByEmailFn != nil {
		return m.findByEmailFn(ctx, email)
	}
	return nil, nil
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	if m.findByUsernameFn != nil {
		return m.findByUsernameFn(ctx, username)
	}
	return nil, nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *entity.User) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, user)
	}
	return nil
}

type mockTokenRepo struct {
	createFn           func(ctx context.Context, token *entity.UserToken) (bool, error)
	findActiveFn       func(ctx context.Context, userID int64, token string) (*entity.UserToken, error)
	findSameSecondFn   func(ctx context.Context, userID int64, createdAt time.Time) (*entity.UserToken, error)
	revokeExpiredFn    func(ctx context.Context, userID int64, now time.Time) error
	deactivateFn       func(ctx context.Context, id int64) error
	deactivateTokenFn  func(ctx context.Context, userID int64, token string) error
	countActiveFn      func(ctx context.Context, userID int64) (int, error)
	deactivateOldestFn func(ctx context.Context, userID int64, exceptID int64) error
}

func (m *mockTokenRepo) Create(ctx context.Context, token *entity.UserToken) (bool, error) {
	if m.createFn != nil {
		return m.createFn(ctx, token)
	}
	token.ID = 1
	return true, nil
}

func (m *mockTokenRepo) FindActive(ctx context.Context, userID int64, token string) (*entity.UserToken, error) {
	if m.findActiveFn != nil {
		return m.findActiveFn(ctx, userID, token)
	}
	return nil, nil
}

func (m *mockTokenRepo) FindSameSecond(ctx context.Context, userID int64, createdAt time.Time) (*entity.UserToken, error) {
	if m.findSameSecondFn != nil {
		return m.findSameSecondFn(ctx, userID, createdAt)
	}
	return nil, nil
}

func (m *mockTokenRepo) RevokeExpired(ctx context.Context, userID int64, now time.Time) error {
	if m.revokeExpiredFn != nil {
		return m.revokeExpiredFn(ctx, userID, now)
	}
	return nil
}

func (m *mockTokenRepo) Deactivate(ctx context.Context, id int64) error {
	if m.deactivateFn != nil {
		return m.deactivateFn(ctx, id)
	}
	return nil
}

func (m *mockTokenRepo) DeactivateToken(ctx context.Context, userID int64, token string) error {
	if m.deactivateTokenFn != nil {
		return m.deactivateTokenFn(ctx, userID, token)
	}
	return nil
}

func (m *mockTokenRepo) CountActive(ctx context.Context, userID int64) (int, error) {
	if m.countActiveFn != nil {
		return m.countActiveFn(ctx, userID)
	}
	return 1, nil
}

func (m *mockTokenRepo) DeactivateOldest(ctx context.Context, userID int64, exceptID int64) error {
	if m.deactivateOldestFn != nil {
		return m.deactivateOldestFn(ctx, userID, exceptID)
	}
	return nil
}

const testSecret = "test-secret"

func testConfig(maxActive int) *utils.Config {
	return &utils.Config{
		JWT: utils.JWTConfig{
			Secret:        testSecret,
			ExpireSeconds: 3600,
			MaxActive:     maxActive,
		},
	}
}

func newTestSessionService(users *mockUserRepo, tokens *mockTokenRepo, maxActive int, now time.Time) *sessionService {
	svc := NewSessionService(users, tokens, testConfig(maxActive), zap.NewNop()).(*sessionService)
	svc.now = func() time.Time { return now }
	return svc
}

func TestSessionService_Issue_NewToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var swept bool
	var created *entity.UserToken
	tokens := &mockTokenRepo{
		revokeExpiredFn: func(ctx context.Context, userID int64, at time.Time) error {
			swept = true
			if userID != 7 {
				t.Errorf("expected sweep for user 7, got %d", userID)
			}
			return nil
		},
		createFn: func(ctx context.Context, token *entity.UserToken) (bool, error) {
			created = token
			token.ID = 11
			return true, nil
		},
	}

	svc := newTestSessionService(&mockUserRepo{}, tokens, 10, now)

	token, err := svc.Issue(ctx, 7, "10.0.0.1")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if !swept {
		t.Error("expected expired tokens to be swept on issue")
	}
	if created == nil {
		t.Fatal("expected a token row to be persisted")
	}
	if created.Token != token {
		t.Error("persisted token string differs from returned one")
	}
	if want := now.Add(time.Hour); !created.ValidTill.Equal(want) {
		t.Errorf("expected valid_till %v, got %v", want, created.ValidTill)
	}
	if created.IP == nil || *created.IP != "10.0.0.1" {
		t.Error("expected client ip on the token row")
	}

	claims, err := utils.VerifyToken(testSecret, token)
	if err != nil {
		t.Fatalf("issued token does not verify: %v", err)
	}
	if claims.UserID != 7 {
		t.Errorf("expected subject 7, got %d", claims.UserID)
	}
}

func TestSessionService_Issue_SameSecondReturnsExistingToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var createCalled bool
	tokens := &mockTokenRepo{
		findSameSecondFn: func(ctx context.Context, userID int64, createdAt time.Time) (*entity.UserToken, error) {
			if !createdAt.Equal(now) {
				t.Errorf("expected same-second lookup at %v, got %v", now, createdAt)
			}
			return &entity.UserToken{
				Base:      entity.Base{ID: 5, CreatedAt: now, UpdatedAt: now},
				UserID:    userID,
				Token:     "existing-token",
				ValidTill: now.Add(time.Hour),
				Active:    true,
			}, nil
		},
		createFn: func(ctx context.Context, token *entity.UserToken) (bool, error) {
			createCalled = true
			return true, nil
		},
	}

	svc := newTestSessionService(&mockUserRepo{}, tokens, 10, now)

	first, err := svc.Issue(ctx, 7, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.Issue(ctx, 7, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first != "existing-token" || second != "existing-token" {
		t.Errorf("expected both calls to reuse the existing token, got %q and %q", first, second)
	}
	if createCalled {
		t.Error("expected no new row for a same-second reissue")
	}
}

func TestSessionService_Issue_EnforcesActiveCap(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var evictedExcept int64 = -1
	tokens := &mockTokenRepo{
		createFn: func(ctx context.Context, token *entity.UserToken) (bool, error) {
			token.ID = 42
			return true, nil
		},
		countActiveFn: func(ctx context.Context, userID int64) (int, error) {
			// 2 existing + the fresh one, cap is 2
			return 3, nil
		},
		deactivateOldestFn: func(ctx context.Context, userID int64, exceptID int64) error {
			evictedExcept = exceptID
			return nil
		},
	}

	svc := newTestSessionService(&mockUserRepo{}, tokens, 2, now)

	if _, err := svc.Issue(ctx, 7, ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if evictedExcept == -1 {
		t.Fatal("expected the oldest token to be deactivated")
	}
	if evictedExcept != 42 {
		t.Errorf("eviction must spare the fresh token, got except id %d", evictedExcept)
	}
}

func TestSessionService_Issue_UnderCapNoEviction(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var evicted bool
	tokens := &mockTokenRepo{
		countActiveFn: func(ctx context.Context, userID int64) (int, error) {
			return 2, nil
		},
		deactivateOldestFn: func(ctx context.Context, userID int64, exceptID int64) error {
			evicted = true
			return nil
		},
	}

	svc := newTestSessionService(&mockUserRepo{}, tokens, 2, now)

	if _, err := svc.Issue(ctx, 7, ""); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if evicted {
		t.Error("expected no eviction at the cap")
	}
}

func TestSessionService_Issue_LostInsertRace(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	var counted bool
	tokens := &mockTokenRepo{
		createFn: func(ctx context.Context, token *entity.UserToken) (bool, error) {
			// unique (user_id, token) conflict: the twin request inserted first
			return false, nil
		},
		countActiveFn: func(ctx context.Context, userID int64) (int, error) {
			counted = true
			return 1, nil
		},
	}

	svc := newTestSessionService(&mockUserRepo{}, tokens, 10, now)

	token, err := svc.Issue(ctx, 7, "")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	claims, err := utils.VerifyToken(testSecret, token)
	if err != nil || claims.UserID != 7 {
		t.Errorf("expected a usable token after losing the race, got %v", err)
	}
	if counted {
		t.Error("expected cap check to be skipped when no row was inserted")
	}
}

func TestSessionService_Validate_Success(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	token, err := utils.IssueToken(testSecret, 7, now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tokens := &mockTokenRepo{
		findActiveFn: func(ctx context.Context, userID int64, raw string) (*entity.UserToken, error) {
			if userID != 7 || raw != token {
				t.Errorf("unexpected lookup: user %d", userID)
			}
			return &entity.UserToken{
				Base:      entity.Base{ID: 3, CreatedAt: now, UpdatedAt: now},
				UserID:    7,
				Token:     raw,
				ValidTill: now.Add(time.Hour),
				Active:    true,
			}, nil
		},
	}
	users := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{Base: entity.Base{ID: id}, Username: "student", Active: true}, nil
		},
	}

	svc := newTestSessionService(users, tokens, 10, now)

	r := httptest.NewRequest("GET", "/api/profile", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	user, raw, err := svc.Validate(ctx, r)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if user == nil || user.ID != 7 {
		t.Fatal("expected principal with id 7")
	}
	if raw != token {
		t.Error("expected the raw token back for revocation use")
	}
}

func TestSessionService_Validate_NoCredentialIsUnauthenticated(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	svc := newTestSessionService(&mockUserRepo{}, &mockTokenRepo{}, 10, now)

	user, _, err := svc.Validate(ctx, httptest.NewRequest("GET", "/", nil))
	if err != nil {
		t.Fatalf("missing credential must not be an error, got %v", err)
	}
	if user != nil {
		t.Error("expected unauthenticated")
	}
}

func TestSessionService_Validate_ForgedSignature(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	forged, err := utils.IssueToken("other-secret", 7, now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var lookedUp bool
	tokens := &mockTokenRepo{
		findActiveFn: func(ctx context.Context, userID int64, raw string) (*entity.UserToken, error) {
			lookedUp = true
			return nil, nil
		},
	}

	svc := newTestSessionService(&mockUserRepo{}, tokens, 10, now)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+forged)

	user, _, err := svc.Validate(ctx, r)
	if err != nil || user != nil {
		t.Error("expected unauthenticated for a forged token")
	}
	if lookedUp {
		t.Error("expected no store lookup for a forged token")
	}
}

func TestSessionService_Validate_RevokedTokenStaysRevoked(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	token, err := utils.IssueToken(testSecret, 7, now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Active lookup misses because the row was revoked
	svc := newTestSessionService(&mockUserRepo{}, &mockTokenRepo{}, 10, now)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	for i := 0; i < 3; i++ {
		user, _, err := svc.Validate(ctx, r)
		if err != nil || user != nil {
			t.Fatal("revoked token must stay unauthenticated")
		}
	}
}

func TestSessionService_Validate_ExpiredRowIsDeactivated(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	issuedAt := now.Add(-2 * time.Hour)

	// Claims are expired but the row is still active: validation must retire
	// the row as a side effect
	token, err := utils.IssueToken(testSecret, 7, issuedAt, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var deactivated int64
	tokens := &mockTokenRepo{
		findActiveFn: func(ctx context.Context, userID int64, raw string) (*entity.UserToken, error) {
			return &entity.UserToken{
				Base:      entity.Base{ID: 9, CreatedAt: issuedAt, UpdatedAt: issuedAt},
				UserID:    7,
				Token:     raw,
				ValidTill: issuedAt.Add(time.Hour),
				Active:    true,
			}, nil
		},
		deactivateFn: func(ctx context.Context, id int64) error {
			deactivated = id
			return nil
		},
	}
	users := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*entity.User, error) {
			t.Error("principal must not be loaded for an expired token")
			return nil, nil
		},
	}

	svc := newTestSessionService(users, tokens, 10, now)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	user, _, err := svc.Validate(ctx, r)
	if err != nil || user != nil {
		t.Error("expected unauthenticated for an expired token")
	}
	if deactivated != 9 {
		t.Errorf("expected row 9 deactivated on read, got %d", deactivated)
	}
}

func TestSessionService_Validate_DisabledAccount(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	token, err := utils.IssueToken(testSecret, 7, now, time.Hour)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	tokens := &mockTokenRepo{
		findActiveFn: func(ctx context.Context, userID int64, raw string) (*entity.UserToken, error) {
			return &entity.UserToken{
				Base:      entity.Base{ID: 3},
				UserID:    7,
				Token:     raw,
				ValidTill: now.Add(time.Hour),
				Active:    true,
			}, nil
		},
	}
	users := &mockUserRepo{
		findByIDFn: func(ctx context.Context, id int64) (*entity.User, error) {
			return &entity.User{Base: entity.Base{ID: id}, Active: false}, nil
		},
	}

	svc := newTestSessionService(users, tokens, 10, now)

	r := httptest.NewRequest("GET", "/", nil)
	r.Header.Set("Authorization", "Bearer "+token)

	user, _, err := svc.Validate(ctx, r)
	if err != nil || user != nil {
		t.Error("expected unauthenticated for a disabled account")
	}
}

func TestSessionService_Revoke_Idempotent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	calls := 0
	tokens := &mockTokenRepo{
		deactivateTokenFn: func(ctx context.Context, userID int64, token string) error {
			calls++
			// zero rows affected is not an error
			return nil
		},
	}

	svc := newTestSessionService(&mockUserRepo{}, tokens, 10, now)

	if err := svc.Revoke(ctx, 7, "gone-token"); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Revoke(ctx, 7, "gone-token"); err != nil {
		t.Fatalf("second revoke must also succeed, got %v", err)
	}
	if calls != 2 {
		t.Errorf("expected 2 revoke calls, got %d", calls)
	}
}
