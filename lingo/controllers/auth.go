// lingo/controllers/auth.go
package controllers

import (
	"context"
	"fmt"
	"math/rand"
	"regexp"
	"strings"

	"lingo/lingo/config"
	"lingo/lingo/middlewares"
	"lingo/lingo/services/languages"
	"lingo/lingo/sources/psql/dao"
	"lingo/lingo/sources/psql/models"
	"lingo/lingo/utils/logging"
	"lingo/lingo/utils/types"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

const minPasswordLen = 6

type AuthResult struct {
	User  *models.User `json:"user"`
	Token string       `json:"token"`
}

type AuthController struct {
	userDAO      *dao.UserDAO
	catalog      *languages.Catalog
	cfg          config.Config
	passwordCost int
}

func NewAuthController(userDAO *dao.UserDAO, catalog *languages.Catalog, cfg config.Config) *AuthController {
	return &AuthController{
		userDAO:      userDAO,
		catalog:      catalog,
		cfg:          cfg,
		passwordCost: bcrypt.DefaultCost,
	}
}

func randomAvatar() string {
	return fmt.Sprintf("https://avatar.iran.liara.run/public/%d.png", rand.Intn(100)+1)
}

func (c *AuthController) issue(user *models.User) (*AuthResult, error) {
	token, err := middlewares.SignToken(c.cfg.JWTSecret, user.ID, c.cfg.JWTTTL)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (c *AuthController) Signup(ctx context.Context, req types.SignupRequest) (*AuthResult, error) {
	defer logging.LogDuration(ctx, "auth_signup")()

	email := strings.ToLower(strings.TrimSpace(req.Email))
	fullName := strings.TrimSpace(req.FullName)
	if email == "" || req.Password == "" || fullName == "" {
		return nil, newError(ErrInvalidInput, "All fields are required")
	}
	if len(req.Password) < minPasswordLen {
		return nil, newError(ErrInvalidInput, "Password must be at least 6 characters")
	}
	if !emailRegex.MatchString(email) {
		return nil, newError(ErrInvalidInput, "Invalid email format")
	}

	existing, err := c.userDAO.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, newError(ErrConflict, "Email already exists, please use a different one")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), c.passwordCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		ProfilePic:   randomAvatar(),
	}
	if err := c.userDAO.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}
	logging.AppLogger.Info("user signed up", zap.Int("user_id", user.ID))
	return c.issue(user)
}

func (c *AuthController) Login(ctx context.Context, req types.LoginRequest) (*AuthResult, error) {
	defer logging.LogDuration(ctx, "auth_login")()

	if strings.TrimSpace(req.Email) == "" || req.Password == "" {
		return nil, newError(ErrInvalidInput, "All fields are required")
	}
	user, err := c.userDAO.GetUserByEmail(ctx, req.Email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, newError(ErrUnauthorized, "Invalid email or password")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, newError(ErrUnauthorized, "Invalid email or password")
	}
	return c.issue(user)
}

func (c *AuthController) Me(ctx context.Context, userID int) (*models.User, error) {
	user, err := c.userDAO.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, newError(ErrUnauthorized, "User not found")
	}
	return user, nil
}

func (c *AuthController) Onboard(ctx context.Context, userID int, req types.OnboardingRequest) (*models.User, error) {
	defer logging.LogDuration(ctx, "auth_onboard")()

	fields := []struct{ name, value string }{
		{"fullName", req.FullName},
		{"bio", req.Bio},
		{"nativeLanguage", req.NativeLanguage},
		{"learningLanguage", req.LearningLanguage},
		{"location", req.Location},
	}
	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return nil, newError(ErrInvalidInput, "All fields are required: "+strings.Join(missing, ", "))
	}

	native, ok := c.catalog.Lookup(req.NativeLanguage)
	if !ok {
		return nil, newError(ErrInvalidInput, "Unsupported native language: "+req.NativeLanguage)
	}
	learning, ok := c.catalog.Lookup(req.LearningLanguage)
	if !ok {
		return nil, newError(ErrInvalidInput, "Unsupported learning language: "+req.LearningLanguage)
	}

	user, err := c.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.FullName = strings.TrimSpace(req.FullName)
	user.Bio = strings.TrimSpace(req.Bio)
	user.NativeLanguage = native.Name
	user.LearningLanguage = learning.Name
	user.Location = strings.TrimSpace(req.Location)
	user.IsOnboarded = true
	if err := c.userDAO.UpdateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}
