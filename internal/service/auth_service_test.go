package service

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/internal/repository"
	"github.com/Hverma1206/saan-candles-backend/pkg/utils"
)

type fakeUserRepo struct {
	nextID int64
	users  map[int64]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextID: 1, users: make(map[int64]*domain.User)}
}

func (r *fakeUserRepo) Create(_ context.Context, user *domain.User) error {
	for _, u := range r.users {
		if u.Email == user.Email {
			return repository.ErrEmailTaken
		}
	}
	user.ID = r.nextID
	r.nextID++
	r.users[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	return u, nil
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) GetByIdentifier(_ context.Context, identifier string) (*domain.User, error) {
	for _, u := range r.users {
		if u.Email == identifier || u.PhoneNumber == identifier {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (r *fakeUserRepo) SetOTP(ctx context.Context, email, name, code string, expires time.Time) (*domain.User, error) {
	u, err := r.GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrUserNotFound) {
		u = &domain.User{Name: name, Email: email, Role: domain.RoleCustomer}
		if err := r.Create(ctx, u); err != nil {
			return nil, err
		}
	}
	u.OTPCode = code
	u.OTPExpires = &expires
	return u, nil
}

func (r *fakeUserRepo) MarkVerified(_ context.Context, id int64) error {
	u, ok := r.users[id]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.Verified = true
	u.OTPCode = ""
	u.OTPExpires = nil
	return nil
}

func (r *fakeUserRepo) UpdateProfile(_ context.Context, id int64, name, phoneNumber string) (*domain.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	u.Name = name
	u.PhoneNumber = phoneNumber
	return u, nil
}

type fakeMailer struct {
	sentTo   []string
	lastCode string
	fail     bool
}

func (m *fakeMailer) SendOTP(_ context.Context, email, _ string, code string) error {
	if m.fail {
		return errors.New("smtp unreachable")
	}
	m.sentTo = append(m.sentTo, email)
	m.lastCode = code
	return nil
}

const testSecret = "test-secret"

func newAuthFixture() (AuthService, *fakeUserRepo, *fakeMailer) {
	repo := newFakeUserRepo()
	mailer := &fakeMailer{}
	svc := NewAuthService(repo, mailer, testSecret, time.Hour, 5*time.Minute, zap.NewNop())
	return svc, repo, mailer
}

func TestSignup(t *testing.T) {
	svc, repo, _ := newAuthFixture()

	result, err := svc.Signup(context.Background(), &SignupInput{
		Name:        "Jane",
		Email:       "jane@example.com",
		PhoneNumber: "9876543210",
		Password:    "hunter22",
	})

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, domain.RoleCustomer, result.User.Role)

	stored := repo.users[result.User.ID]
	assert.NotEqual(t, "hunter22", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("hunter22")))

	claims, err := utils.ValidateToken(testSecret, result.Token)
	require.NoError(t, err)
	assert.Equal(t, result.User.ID, claims.UserID)

	_, err = svc.Signup(context.Background(), &SignupInput{
		Name:        "Other Jane",
		Email:       "jane@example.com",
		PhoneNumber: "1234567890",
		Password:    "different",
	})
	assert.ErrorIs(t, err, repository.ErrEmailTaken)
}

func TestLogin(t *testing.T) {
	svc, repo, _ := newAuthFixture()

	_, err := svc.Signup(context.Background(), &SignupInput{
		Name:        "Jane",
		Email:       "jane@example.com",
		PhoneNumber: "9876543210",
		Password:    "hunter22",
	})
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "jane@example.com", "hunter22")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	// Phone number works as identifier too.
	result, err = svc.Login(context.Background(), "9876543210", "hunter22")
	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", result.User.Email)

	_, err = svc.Login(context.Background(), "jane@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "hunter22")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	// OTP-only accounts have no password to check.
	otpUser := &domain.User{Email: "otp@example.com", Role: domain.RoleCustomer}
	require.NoError(t, repo.Create(context.Background(), otpUser))

	_, err = svc.Login(context.Background(), "otp@example.com", "anything")
	assert.ErrorIs(t, err, ErrNoPasswordSet)
}

func TestSendOTP(t *testing.T) {
	svc, repo, mailer := newAuthFixture()

	err := svc.SendOTP(context.Background(), "new@example.com", "Newcomer")
	require.NoError(t, err)

	require.Len(t, mailer.sentTo, 1)
	assert.Equal(t, "new@example.com", mailer.sentTo[0])
	assert.Regexp(t, regexp.MustCompile(`^\d{6}$`), mailer.lastCode)

	user, err := repo.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.Equal(t, mailer.lastCode, user.OTPCode)
	assert.False(t, user.Verified)

	mailer.fail = true
	err = svc.SendOTP(context.Background(), "new@example.com", "Newcomer")
	assert.Error(t, err)
}

func TestVerifyOTP(t *testing.T) {
	svc, repo, mailer := newAuthFixture()

	require.NoError(t, svc.SendOTP(context.Background(), "new@example.com", "Newcomer"))

	_, err := svc.VerifyOTP(context.Background(), "new@example.com", "000000")
	assert.ErrorIs(t, err, ErrInvalidOTP)

	_, err = svc.VerifyOTP(context.Background(), "nobody@example.com", mailer.lastCode)
	assert.ErrorIs(t, err, ErrInvalidOTP)

	result, err := svc.VerifyOTP(context.Background(), "new@example.com", mailer.lastCode)
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.True(t, result.User.Verified)

	user, err := repo.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)
	assert.True(t, user.Verified)
	assert.Empty(t, user.OTPCode)
}

func TestVerifyOTP_Expired(t *testing.T) {
	svc, repo, mailer := newAuthFixture()

	require.NoError(t, svc.SendOTP(context.Background(), "new@example.com", "Newcomer"))

	user, err := repo.GetByEmail(context.Background(), "new@example.com")
	require.NoError(t, err)

	expired := time.Now().Add(-time.Minute)
	user.OTPExpires = &expired

	_, err = svc.VerifyOTP(context.Background(), "new@example.com", mailer.lastCode)
	assert.ErrorIs(t, err, ErrInvalidOTP)
}

func TestRegister(t *testing.T) {
	svc, _, mailer := newAuthFixture()

	require.NoError(t, svc.SendOTP(context.Background(), "new@example.com", "Newcomer"))

	_, err := svc.Register(context.Background(), "new@example.com", "Jane Doe", "9876543210")
	assert.ErrorIs(t, err, ErrNotVerified)

	_, err = svc.VerifyOTP(context.Background(), "new@example.com", mailer.lastCode)
	require.NoError(t, err)

	user, err := svc.Register(context.Background(), "new@example.com", "Jane Doe", "9876543210")
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", user.Name)
	assert.Equal(t, "9876543210", user.PhoneNumber)

	_, err = svc.Register(context.Background(), "ghost@example.com", "Ghost", "1234567890")
	assert.ErrorIs(t, err, repository.ErrUserNotFound)
}
