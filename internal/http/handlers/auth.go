package handlers

import (
	"net/http"
	"strings"
	"time"

	"villabook/internal/domain"
	"villabook/internal/domain/models"
	"villabook/internal/repositories"
	"villabook/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type registerRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone"`
	Password string `json:"password" binding:"required,min=8"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// POST /api/auth/register
func (d Deps) Register(c *gin.Context) {
	var req registerRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}

	user := models.User{
		ID:        uuid.NewString(),
		Name:      strings.TrimSpace(req.Name),
		Email:     strings.ToLower(strings.TrimSpace(req.Email)),
		Phone:     strings.TrimSpace(req.Phone),
		Role:      domain.RoleGuest,
		CreatedAt: utils.NowUTC(),
	}

	repo := repositories.UserRepository{DB: d.db()}
	if err := repo.Create(user, string(hash)); err != nil {
		RespondDomainError(c, err)
		return
	}

	token, err := d.issueToken(user)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"token": token, "user": user})
}

// POST /api/auth/login
func (d Deps) Login(c *gin.Context) {
	var req loginRequest
	if !BindJSONOrError(c, &req) {
		return
	}

	repo := repositories.UserRepository{DB: d.db()}
	user, hash, err := repo.GetByEmail(strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if domain.IsNotFound(err) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
			return
		}
		RespondDomainError(c, err)
		return
	}

	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "wrong email or password"})
		return
	}

	token, err := d.issueToken(user)
	if err != nil {
		RespondDomainError(c, domain.InternalError{Err: err})
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": user})
}

func (d Deps) issueToken(user models.User) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": user.ID,
		"role":    user.Role,
		"exp":     time.Now().Add(24 * time.Hour).Unix(),
	})
	return token.SignedString([]byte(d.Env.JWTSecret))
}
