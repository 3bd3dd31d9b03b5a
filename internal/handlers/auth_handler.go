package handlers

import (
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/api/middleware"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/events"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/models"
	"github.com/arashioz/man-haghighi-mono-repo-sub001/internal/utils/logger"
)

type AuthHandler struct {
	db        *gorm.DB
	jwtSecret string
	log       *logger.Logger
}

func NewAuthHandler(db *gorm.DB, jwtSecret string) *AuthHandler {
	return &AuthHandler{db: db, jwtSecret: jwtSecret, log: logger.New("AuthHandler")}
}

type RegisterRequest struct {
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8"`
	FirstName string `json:"first_name" validate:"required"`
	LastName  string `json:"last_name" validate:"required"`
	Phone     string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Register creates a plain USER account. Sales roles are only ever assigned
// by an admin through the user management routes.
// @Summary Register a new user
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration details"
// @Success 201 {object} map[string]string "User registered successfully"
// @Failure 400 {object} map[string]string "Validation error or email exists"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	var existing models.User
	if err := h.db.Where("email = ? AND is_deleted = false", req.Email).First(&existing).Error; err == nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email already exists"})
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to hash password"})
	}

	user := models.User{
		Email:     req.Email,
		Password:  string(hashedPassword),
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Phone:     req.Phone,
		Role:      models.UserRoleUser,
		IsActive:  true,
	}

	if err := h.db.Create(&user).Error; err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Email already exists"})
	}

	events.Emit("user.registered", &user)
	h.log.Success("User registered: %s", user.Email)

	return c.JSON(http.StatusCreated, map[string]string{
		"message": "User registered successfully",
		"id":      user.ID,
	})
}

// Login verifies credentials and issues a signed JWT.
// @Summary Log in
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Credentials"
// @Success 200 {object} map[string]string "Token"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("email = ? AND is_deleted = false", req.Email).First(&user).Error; err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid credentials"})
	}

	if !user.IsActive {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Account is deactivated"})
	}

	claims := &middleware.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(h.jwtSecret))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to sign token"})
	}

	return c.JSON(http.StatusOK, map[string]string{"token": signed})
}

// GetMe returns the authenticated user's profile.
// @Summary Get current user
// @Tags auth
// @Produce json
// @Success 200 {object} models.User
// @Failure 404 {object} map[string]string "User not found"
// @Router /users/me [get]
func (h *AuthHandler) GetMe(c echo.Context) error {
	userID := middleware.GetUserID(c)

	var user models.User
	if err := h.db.Where("id = ? AND is_deleted = false", userID).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}

	return c.JSON(http.StatusOK, user)
}

type UpdateRoleRequest struct {
	Role string `json:"role" validate:"required,user_role"`
}

// UpdateUserRole lets an admin move a user between the closed set of roles.
func (h *AuthHandler) UpdateUserRole(c echo.Context) error {
	var req UpdateRoleRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	var user models.User
	if err := h.db.Where("id = ? AND is_deleted = false", c.Param("id")).First(&user).Error; err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "User not found"})
	}

	user.Role = models.UserRole(req.Role)
	if err := h.db.Save(&user).Error; err != nil {
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Failed to update role"})
	}

	return c.JSON(http.StatusOK, user)
}
