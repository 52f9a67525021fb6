package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"

	"taskapi/internal/auth"
	"taskapi/internal/storage/sqlite"
)

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// handleRegister creates a new account.
func (s *Server) handleRegister(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	if fields := validateCredentials(req); len(fields) > 0 {
		respondValidation(c, fields)
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, fmt.Errorf("hash password: %w", err))
		return
	}

	user, err := s.store.CreateUser(c.Request.Context(), req.Username, hash)
	if err != nil {
		if errors.Is(err, sqlite.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusCreated, gin.H{"user": user})
}

// handleLogin verifies credentials and issues a token pair.
func (s *Server) handleLogin(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := s.store.GetUserByUsername(c.Request.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, sqlite.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid username or password"})
		return
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, pair)
}

// handleRefresh exchanges a valid refresh token for a new pair.
func (s *Server) handleRefresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	claims, err := s.tokens.ValidateRefresh(req.RefreshToken)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
		return
	}

	// The account may have been removed since the token was issued.
	user, err := s.store.GetUserByID(c.Request.Context(), claims.UserID)
	if err != nil {
		if errors.Is(err, sqlite.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid refresh token"})
			return
		}
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}

	pair, err := s.tokens.IssuePair(user.ID, user.Username)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	respondSuccess(c, http.StatusOK, pair)
}

func validateCredentials(req credentialsRequest) map[string]string {
	fields := map[string]string{}

	username := strings.TrimSpace(req.Username)
	if n := utf8.RuneCountInString(username); n < 3 || n > 150 {
		fields["username"] = "username must be between 3 and 150 characters"
	}

	// bcrypt truncates input beyond 72 bytes.
	if len(req.Password) < 8 {
		fields["password"] = "password must be at least 8 characters"
	} else if len(req.Password) > 72 {
		fields["password"] = "password must be at most 72 characters"
	}

	return fields
}
