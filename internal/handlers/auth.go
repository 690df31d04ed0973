package handlers

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/reverie-app/reverie-backend/internal/database"
	"github.com/reverie-app/reverie-backend/internal/services"
	"github.com/reverie-app/reverie-backend/pkg/utils"
)

type SignupRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type AuthResponse struct {
	Success bool                   `json:"success"`
	Message string                 `json:"message"`
	User    map[string]interface{} `json:"user,omitempty"`
	Token   string                 `json:"token,omitempty"`
}

// Signup handles user registration
func Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := utils.ValidateEmail(req.Email); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := utils.ValidatePassword(req.Password); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	email := utils.NormalizeEmail(req.Email)

	// Check if user already exists
	var existingEmail string
	err := database.PostgresDB.QueryRow("SELECT email FROM users WHERE LOWER(email) = $1", email).Scan(&existingEmail)
	if err == nil {
		writeError(w, http.StatusConflict, "An account with this email already exists. Try logging in.")
		return
	} else if err != sql.ErrNoRows {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	userID := uuid.New()
	now := time.Now()

	_, err = database.PostgresDB.Exec(`
		INSERT INTO users (id, email, password_hash, created_at, is_active)
		VALUES ($1, $2, $3, $4, TRUE)
	`, userID, email, hashedPassword, now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create user")
		return
	}

	writeJSON(w, http.StatusCreated, AuthResponse{
		Success: true,
		Message: "Account created! You can now sign in.",
		User: map[string]interface{}{
			"id":         userID.String(),
			"email":      email,
			"created_at": now,
		},
	})
}

// Signin handles user login and issues a session token
func Signin(w http.ResponseWriter, r *http.Request) {
	var req SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" || req.Password == "" {
		writeError(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	email := utils.NormalizeEmail(req.Email)

	var userID uuid.UUID
	var passwordHash string
	var isActive bool
	var createdAt time.Time

	err := database.PostgresDB.QueryRow(`
		SELECT id, password_hash, created_at, is_active
		FROM users
		WHERE LOWER(email) = $1
	`, email).Scan(&userID, &passwordHash, &createdAt, &isActive)
	if err != nil {
		if err == sql.ErrNoRows {
			writeError(w, http.StatusUnauthorized, "Invalid email or password")
		} else {
			writeError(w, http.StatusInternalServerError, "Database error")
		}
		return
	}

	if !isActive {
		writeError(w, http.StatusForbidden, "Account is inactive")
		return
	}

	valid, err := utils.VerifyPassword(req.Password, passwordHash)
	if err != nil || !valid {
		writeError(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	token, err := services.CreateSession(userID)
	if err != nil {
		log.Printf("Failed to create session for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Failed to create session")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Welcome back!",
		Token:   token,
		User: map[string]interface{}{
			"id":         userID.String(),
			"email":      email,
			"created_at": createdAt,
		},
	})
}

// Signout invalidates the current session
func Signout(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r.Header.Get("Authorization"))
	if token != "" {
		if err := services.InvalidateSession(token); err != nil {
			log.Printf("Failed to invalidate session: %v", err)
		}
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "Signed out",
	})
}

// GetMe returns the authenticated user's profile
func GetMe(w http.ResponseWriter, r *http.Request) {
	userID, ok := requireAuth(r)
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	var email string
	var createdAt time.Time
	err := database.PostgresDB.QueryRow(`
		SELECT email, created_at FROM users WHERE id = $1
	`, userID).Scan(&email, &createdAt)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Database error")
		return
	}

	writeJSON(w, http.StatusOK, AuthResponse{
		Success: true,
		Message: "OK",
		User: map[string]interface{}{
			"id":         userID,
			"email":      email,
			"created_at": createdAt,
		},
	})
}

// ForgotPassword creates a reset token for the account, if it exists.
// Always responds with success so the endpoint can't be used to probe
// which emails are registered.
func ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Email == "" {
		writeError(w, http.StatusBadRequest, "Email is required")
		return
	}

	email := utils.NormalizeEmail(req.Email)

	var userID uuid.UUID
	err := database.PostgresDB.QueryRow("SELECT id FROM users WHERE LOWER(email) = $1", email).Scan(&userID)
	if err == nil {
		token := generateResetToken()
		_, err = database.PostgresDB.Exec(`
			INSERT INTO password_reset_tokens (id, user_id, token, expires_at)
			VALUES (gen_random_uuid(), $1, $2, $3)
		`, userID, token, time.Now().Add(1*time.Hour))
		if err != nil {
			log.Printf("Failed to store reset token: %v", err)
		}
		// In production the token is delivered by email, never in the response
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "If an account exists with this email, you will receive a password reset link.",
	})
}

// ResetPassword consumes a reset token and sets a new password
func ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.Token == "" {
		writeError(w, http.StatusBadRequest, "Reset token is required")
		return
	}
	if err := utils.ValidatePassword(req.NewPassword); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var tokenID, userID uuid.UUID
	var expiresAt time.Time
	var used bool
	err := database.PostgresDB.QueryRow(`
		SELECT id, user_id, expires_at, used
		FROM password_reset_tokens
		WHERE token = $1
	`, req.Token).Scan(&tokenID, &userID, &expiresAt, &used)
	if err != nil || used || time.Now().After(expiresAt) {
		writeError(w, http.StatusBadRequest, "Invalid or expired reset token")
		return
	}

	hashedPassword, err := utils.HashPassword(req.NewPassword)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to hash password")
		return
	}

	_, err = database.PostgresDB.Exec("UPDATE users SET password_hash = $1 WHERE id = $2", hashedPassword, userID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to update password")
		return
	}

	if _, err := database.PostgresDB.Exec("UPDATE password_reset_tokens SET used = TRUE WHERE id = $1", tokenID); err != nil {
		log.Printf("Failed to mark reset token used: %v", err)
	}

	// Force re-login everywhere after a password change
	services.InvalidateUserSessions(userID)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Password updated. You can now sign in.",
	})
}

func generateResetToken() string {
	b := make([]byte, 32)
	rand.Read(b)
	return base64.URLEncoding.EncodeToString(b)
}
