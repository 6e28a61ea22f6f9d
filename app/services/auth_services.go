package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/tiffinbox/tiffin/app/jobs"
	"github.com/tiffinbox/tiffin/app/models"
	"github.com/tiffinbox/tiffin/app/repositories"
	"github.com/tiffinbox/tiffin/app/requests"
	"github.com/tiffinbox/tiffin/pkg/apperr"
	"github.com/tiffinbox/tiffin/pkg/auth"
	"github.com/tiffinbox/tiffin/pkg/crypt"
	"gorm.io/gorm"
)

// AuthService owns accounts, their tokens and delivery addresses.
type AuthService struct {
	users     *repositories.UserRepository
	addresses *repositories.AddressRepository
	dispatch  Dispatcher
}

func NewAuthService(db *gorm.DB, dispatch Dispatcher) *AuthService {
	return &AuthService{
		users:     repositories.NewUserRepository(db),
		addresses: repositories.NewAddressRepository(db),
		dispatch:  dispatcherOr(dispatch),
	}
}

// pendingUser travels sealed inside the activation token.
type pendingUser struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetRequest struct {
	Email string `json:"email"`
}

func normalizeEmail(e string) string { return strings.ToLower(strings.TrimSpace(e)) }

// SignUp mails an activation code and returns the token it is bound to.
// No account exists until Activate succeeds.
func (s *AuthService) SignUp(ctx context.Context, in requests.SignUp) (string, error) {
	email := normalizeEmail(in.Email)
	taken, err := s.users.EmailTaken(ctx, email)
	if err != nil {
		return "", fmt.Errorf("sign-up lookup: %w", err)
	}
	if taken {
		return "", apperr.BadRequest("Email already exist")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	token, code, err := auth.IssueCodeToken(auth.PurposeActivation, pendingUser{Name: in.Name, Email: email, Password: hash})
	if err != nil {
		return "", err
	}
	if err := s.dispatch(jobs.Activation(email, code)); err != nil {
		return "", fmt.Errorf("queue activation mail: %w", err)
	}
	return token, nil
}

// Activate creates the account sealed in an activation token.
func (s *AuthService) Activate(ctx context.Context, in requests.ActivateUser) (models.User, error) {
	var pending pendingUser
	if err := auth.VerifyCodeToken(in.ActivationToken, auth.PurposeActivation, in.ActivationCode, &pending); err != nil {
		if errors.Is(err, auth.ErrCodeMismatch) {
			return models.User{}, apperr.BadRequest("Invalid activation code")
		}
		return models.User{}, apperr.BadRequest("Invalid activation token")
	}

	taken, err := s.users.EmailTaken(ctx, pending.Email)
	if err != nil {
		return models.User{}, fmt.Errorf("activate lookup: %w", err)
	}
	if taken {
		return models.User{}, apperr.BadRequest("Email already exist")
	}

	user := models.User{
		Name:     pending.Name,
		Email:    pending.Email,
		Password: pending.Password,
		UserType: models.RoleCustomer,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return models.User{}, fmt.Errorf("create user: %w", err)
	}
	return user, nil
}

// SignIn checks credentials and issues a token pair. The refresh token's
// digest is stored so it can be redeemed once.
func (s *AuthService) SignIn(ctx context.Context, in requests.SignIn) (models.User, auth.TokenPair, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(in.Email))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, auth.TokenPair{}, apperr.NotFound("Invalid email or password")
	}
	if err != nil {
		return models.User{}, auth.TokenPair{}, fmt.Errorf("sign-in lookup: %w", err)
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return models.User{}, auth.TokenPair{}, apperr.BadRequest("Invalid email or password")
	}

	pair, err := auth.GeneratePair(user.ID, user.UserType)
	if err != nil {
		return models.User{}, auth.TokenPair{}, err
	}
	if err := s.users.Update(ctx, user.ID, map[string]any{"refresh_token": auth.Digest(pair.Refresh)}); err != nil {
		return models.User{}, auth.TokenPair{}, fmt.Errorf("store refresh digest: %w", err)
	}
	return user, pair, nil
}

// SignOut forgets the stored refresh digest.
func (s *AuthService) SignOut(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return nil
	}
	return s.users.Update(ctx, userID, map[string]any{"refresh_token": ""})
}

// Refresh redeems a refresh token for a new pair.
func (s *AuthService) Refresh(ctx context.Context, token string) (auth.TokenPair, error) {
	denied := apperr.Unauthorized("Could not refresh token")
	if token == "" {
		return auth.TokenPair{}, denied
	}
	claims, err := auth.ValidateRefreshToken(token)
	if err != nil {
		return auth.TokenPair{}, denied
	}
	user, err := s.users.FindByID(ctx, claims.UserID)
	if err != nil {
		return auth.TokenPair{}, denied.Wrap(err)
	}
	digest := auth.Digest(token)
	if !crypt.Equal(user.RefreshToken, digest) {
		return auth.TokenPair{}, denied
	}

	pair, err := auth.GeneratePair(user.ID, user.UserType)
	if err != nil {
		return auth.TokenPair{}, err
	}
	ok, err := s.users.RotateRefresh(ctx, user.ID, digest, auth.Digest(pair.Refresh))
	if err != nil {
		return auth.TokenPair{}, fmt.Errorf("rotate refresh digest: %w", err)
	}
	if !ok {
		return auth.TokenPair{}, denied
	}
	return pair, nil
}

// Role resolves a user's current role for the auth middleware.
func (s *AuthService) Role(ctx context.Context, userID uint64) (string, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.UserType, nil
}

func (s *AuthService) Me(ctx context.Context, userID uint64) (models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, apperr.NotFound("User not found")
	}
	return user, err
}

func (s *AuthService) UpdateUser(ctx context.Context, userID uint64, in requests.UpdateUser) (models.User, error) {
	fields := map[string]any{}
	if in.Name != nil {
		fields["name"] = strings.TrimSpace(*in.Name)
	}
	if in.PhoneNumber != nil {
		fields["phone_number"] = strings.TrimSpace(*in.PhoneNumber)
	}
	if len(fields) > 0 {
		if err := s.users.Update(ctx, userID, fields); err != nil {
			return models.User{}, fmt.Errorf("update user: %w", err)
		}
	}
	return s.Me(ctx, userID)
}

func (s *AuthService) UpdatePassword(ctx context.Context, userID uint64, in requests.UpdatePassword) error {
	user, err := s.Me(ctx, userID)
	if err != nil {
		return err
	}
	if !auth.CheckPassword(user.Password, in.Password) {
		return apperr.BadRequest("Invalid old password")
	}
	if in.NewPassword != in.ConfirmPassword {
		return apperr.BadRequest("Password and confirm password do not match")
	}
	hash, err := auth.HashPassword(in.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.Update(ctx, userID, map[string]any{"password": hash})
}

// ForgetPassword mails a reset code and returns the token it is bound to.
func (s *AuthService) ForgetPassword(ctx context.Context, in requests.ForgetPassword) (string, error) {
	email := normalizeEmail(in.Email)
	if _, err := s.users.FindByEmail(ctx, email); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperr.NotFound("User not found")
		}
		return "", fmt.Errorf("forget-password lookup: %w", err)
	}

	token, code, err := auth.IssueCodeToken(auth.PurposeReset, resetRequest{Email: email})
	if err != nil {
		return "", err
	}
	if err := s.dispatch(jobs.PasswordReset(email, code)); err != nil {
		return "", fmt.Errorf("queue reset mail: %w", err)
	}
	return token, nil
}

// ResetPassword sets a new password and signs the user out everywhere.
func (s *AuthService) ResetPassword(ctx context.Context, in requests.ResetPassword) error {
	var req resetRequest
	if err := auth.VerifyCodeToken(in.ResetToken, auth.PurposeReset, in.Code, &req); err != nil {
		if errors.Is(err, auth.ErrCodeMismatch) {
			return apperr.BadRequest("Invalid reset code")
		}
		return apperr.BadRequest("Invalid reset token")
	}
	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound("User not found")
	}
	if err != nil {
		return fmt.Errorf("reset lookup: %w", err)
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.Update(ctx, user.ID, map[string]any{"password": hash, "refresh_token": ""})
}

func (s *AuthService) AllUsers(ctx context.Context) ([]models.User, error) {
	return s.users.All(ctx)
}

// CreateAddress saves a delivery address owned by userID.
func (s *AuthService) CreateAddress(ctx context.Context, userID uint64, in requests.Address) (models.Address, error) {
	a := addressFrom(in)
	a.UserID = &userID
	if err := s.addresses.Create(ctx, &a); err != nil {
		return models.Address{}, fmt.Errorf("create address: %w", err)
	}
	return a, nil
}

func (s *AuthService) Addresses(ctx context.Context, userID uint64) ([]models.Address, error) {
	return s.addresses.ListByUser(ctx, userID)
}

func addressFrom(in requests.Address) models.Address {
	country := strings.TrimSpace(in.Country)
	if country == "" {
		country = "India"
	}
	return models.Address{
		Street:     strings.TrimSpace(in.Street),
		City:       strings.TrimSpace(in.City),
		State:      strings.TrimSpace(in.State),
		PostalCode: strings.TrimSpace(in.PostalCode),
		Country:    country,
		Latitude:   in.Latitude,
		Longitude:  in.Longitude,
	}
}
