package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"sharesphere-backend/internal/domain"
	"sharesphere-backend/internal/errors"
	"sharesphere-backend/internal/logger"
	"sharesphere-backend/internal/repository"
	"sharesphere-backend/internal/security"
)

type authService struct {
	userRepo       repository.UserRepository
	ledgerRepo     repository.LedgerRepository
	reviewRepo     repository.ReviewRepository
	tokens         security.TokenManager
	startingTokens int32
}

func NewAuthService(
	userRepo repository.UserRepository,
	ledgerRepo repository.LedgerRepository,
	reviewRepo repository.ReviewRepository,
	tokens security.TokenManager,
	startingTokens int32,
) AuthService {
	return &authService{
		userRepo:       userRepo,
		ledgerRepo:     ledgerRepo,
		reviewRepo:     reviewRepo,
		tokens:         tokens,
		startingTokens: startingTokens,
	}
}

func (s *authService) Register(ctx context.Context, in RegisterInput) (*domain.User, TokenPair, error) {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return nil, TokenPair{}, errors.Validation("a valid email address is required")
	}
	if len(in.Username) < 3 {
		return nil, TokenPair{}, errors.Validation("username must be at least 3 characters")
	}
	if len(in.Password) < 8 {
		return nil, TokenPair{}, errors.Validation("password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, TokenPair{}, err
	}

	user := &domain.User{
		Email:        in.Email,
		Username:     in.Username,
		FullName:     in.FullName,
		Location:     in.Location,
		Phone:        in.Phone,
		PasswordHash: string(hash),
		IsActive:     true,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, TokenPair{}, err
	}

	// The signup grant is a ledger entry like any other credit, so the
	// balance invariant holds from the very first token.
	grant := &domain.LedgerEntry{
		UserID:      user.ID,
		Amount:      s.startingTokens,
		Type:        domain.LedgerTypeGrant,
		Description: "Welcome grant",
	}
	if err := s.ledgerRepo.Append(ctx, grant); err != nil {
		return nil, TokenPair{}, err
	}
	user.Tokens = s.startingTokens

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "username", user.Username)

	pair, err := s.issueTokens(user)
	return user, pair, err
}

func (s *authService) Login(ctx context.Context, identifier, password string) (*domain.User, TokenPair, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, strings.TrimSpace(identifier))
	if err != nil {
		return nil, TokenPair{}, errors.Authorization("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, TokenPair{}, errors.Authorization("invalid credentials")
	}
	if !user.IsActive {
		return nil, TokenPair{}, errors.Authorization("account is deactivated")
	}

	pair, err := s.issueTokens(user)
	return user, pair, err
}

func (s *authService) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	claims, err := s.tokens.ValidateToken(refreshToken)
	if err != nil {
		return TokenPair{}, errors.Authorization("invalid refresh token")
	}
	if claims.Type != security.TokenTypeRefresh {
		return TokenPair{}, errors.Authorization("wrong token type")
	}
	user, err := s.userRepo.GetByID(ctx, claims.UserID)
	if err != nil {
		return TokenPair{}, errors.Authorization("invalid refresh token")
	}
	return s.issueTokens(user)
}

func (s *authService) GetProfile(ctx context.Context, userID string) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, userID)
}

func (s *authService) GetPublicProfile(ctx context.Context, userID string) (*domain.UserProfile, []domain.Review, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, nil, err
	}
	reviews, err := s.reviewRepo.ListByReviewee(ctx, userID, 20)
	if err != nil {
		return nil, nil, err
	}
	profile := user.Profile()
	return &profile, reviews, nil
}

func (s *authService) issueTokens(user *domain.User) (TokenPair, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, user.Email, user.IsAdmin)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.tokens.GenerateRefreshToken(user.ID, user.Email)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}
