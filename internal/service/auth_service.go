package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Hverma1206/saan-candles-backend/internal/domain"
	"github.com/Hverma1206/saan-candles-backend/internal/repository"
	"github.com/Hverma1206/saan-candles-backend/pkg/mylogger"
	"github.com/Hverma1206/saan-candles-backend/pkg/utils"
)

const bcryptCost = 10

// OTPMailer sends the one-time code. Unlike order notifications this is
// synchronous, the caller must know whether the code went out.
type OTPMailer interface {
	SendOTP(ctx context.Context, email, name, code string) error
}

type SignupInput struct {
	Name        string
	Email       string
	PhoneNumber string
	Password    string
}

type AuthResult struct {
	User  *domain.User
	Token string
}

type AuthService interface {
	Signup(ctx context.Context, input *SignupInput) (*AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*AuthResult, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	SendOTP(ctx context.Context, email, name string) error
	VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error)
	Register(ctx context.Context, email, name, phoneNumber string) (*domain.User, error)
}

type authService struct {
	userRepo  repository.UserRepository
	mailer    OTPMailer
	jwtSecret string
	tokenTTL  time.Duration
	otpExpiry time.Duration
	logger    *zap.Logger
	tracer    trace.Tracer
}

func NewAuthService(
	userRepo repository.UserRepository,
	mailer OTPMailer,
	jwtSecret string,
	tokenTTL time.Duration,
	otpExpiry time.Duration,
	logger *zap.Logger,
) AuthService {
	return &authService{
		userRepo:  userRepo,
		mailer:    mailer,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
		otpExpiry: otpExpiry,
		logger:    logger,
		tracer:    otel.Tracer("auth_service"),
	}
}

func (s *authService) Signup(ctx context.Context, input *SignupInput) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Signup")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", input.Email),
	)

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		Name:         input.Name,
		Email:        input.Email,
		PhoneNumber:  input.PhoneNumber,
		PasswordHash: string(hash),
		Role:         domain.RoleCustomer,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	mylogger.Info(
		ctx,
		s.logger,
		"User signed up",
		zap.Int64("user_id", user.ID),
	)

	return s.issueToken(user)
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Login")
	defer span.End()

	user, err := s.userRepo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}

		return nil, err
	}

	if user.PasswordHash == "" {
		return nil, ErrNoPasswordSet
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		mylogger.Warn(
			ctx,
			s.logger,
			"Failed login attempt",
			zap.Int64("user_id", user.ID),
		)

		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *authService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// SendOTP stores a fresh six digit code and mails it. Delivery is
// synchronous here, a code the user never receives is worthless.
func (s *authService) SendOTP(ctx context.Context, email, name string) error {
	ctx, span := s.tracer.Start(ctx, "AuthService.SendOTP")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", email),
	)

	code, err := generateOTP()
	if err != nil {
		return fmt.Errorf("failed to generate otp: %w", err)
	}

	user, err := s.userRepo.SetOTP(ctx, email, name, code, time.Now().Add(s.otpExpiry))
	if err != nil {
		return err
	}

	if err := s.mailer.SendOTP(ctx, user.Email, user.Name, code); err != nil {
		mylogger.Error(
			ctx,
			s.logger,
			"Failed to send OTP email",
			zap.String("email", email),
			zap.Error(err),
		)

		return fmt.Errorf("failed to send otp email: %w", err)
	}

	mylogger.Info(
		ctx,
		s.logger,
		"OTP sent",
		zap.String("email", email),
	)

	return nil
}

func (s *authService) VerifyOTP(ctx context.Context, email, code string) (*AuthResult, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.VerifyOTP")
	defer span.End()

	span.SetAttributes(
		attribute.String("email", email),
	)

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidOTP
		}

		return nil, err
	}

	if user.OTPCode == "" || user.OTPCode != code {
		return nil, ErrInvalidOTP
	}

	if user.OTPExpires == nil || time.Now().After(*user.OTPExpires) {
		return nil, ErrInvalidOTP
	}

	if err := s.userRepo.MarkVerified(ctx, user.ID); err != nil {
		return nil, err
	}

	user.Verified = true

	mylogger.Info(
		ctx,
		s.logger,
		"OTP verified",
		zap.Int64("user_id", user.ID),
	)

	return s.issueToken(user)
}

// Register completes an OTP signup by filling in the profile. The email
// must have been verified first.
func (s *authService) Register(ctx context.Context, email, name, phoneNumber string) (*domain.User, error) {
	ctx, span := s.tracer.Start(ctx, "AuthService.Register")
	defer span.End()

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	if !user.Verified {
		return nil, ErrNotVerified
	}

	return s.userRepo.UpdateProfile(ctx, user.ID, name, phoneNumber)
}

func (s *authService) issueToken(user *domain.User) (*AuthResult, error) {
	token, err := utils.GenerateToken(s.jwtSecret, user.ID, user.Email, user.Role, s.tokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	return &AuthResult{User: user, Token: token}, nil
}

func generateOTP() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
