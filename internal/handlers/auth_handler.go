package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/prescripto/prescripto-api/internal/audit"
	"github.com/prescripto/prescripto-api/internal/domain/status"
	"github.com/prescripto/prescripto-api/internal/httperr"
	"github.com/prescripto/prescripto-api/internal/models"
	"github.com/prescripto/prescripto-api/internal/validators"
)

const tokenTTL = 24 * time.Hour

type AuthHandler struct {
	db         *gorm.DB
	secret     string
	audit      audit.Recorder
	checkEmail func(string) bool
}

func NewAuthHandler(db *gorm.DB, secret string, audit audit.Recorder) *AuthHandler {
	return &AuthHandler{
		db:         db,
		secret:     secret,
		audit:      audit,
		checkEmail: validators.IsEmailDomainValid,
	}
}

// --------- Requests ---------

type RegisterDoctorRequest struct {
	Name            string  `json:"name" binding:"required"`
	Email           string  `json:"email" binding:"required,email"`
	Password        string  `json:"password" binding:"required,min=6"`
	Phone           string  `json:"phone"`
	Specialization  string  `json:"specialization" binding:"required"`
	Degree          string  `json:"degree"`
	ExperienceYears int     `json:"experience" binding:"min=0"`
	About           string  `json:"about"`
	Fees            float64 `json:"fees" binding:"min=0"`
	Address         string  `json:"address"`
	City            string  `json:"city"`
}

type RegisterPatientRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	Phone    string `json:"phone"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// --------- Handlers ---------

func (h *AuthHandler) RegisterDoctor(c *gin.Context) {
	var req RegisterDoctorRequest
	if !bindJSON(c, &req) {
		return
	}

	email, hash, ok := h.credentials(c, req.Email, req.Password, &models.Doctor{})
	if !ok {
		return
	}

	doc := models.Doctor{
		Name:            req.Name,
		Email:           email,
		PasswordHash:    hash,
		Phone:           req.Phone,
		Specialization:  req.Specialization,
		Degree:          req.Degree,
		ExperienceYears: req.ExperienceYears,
		About:           req.About,
		Fees:            req.Fees,
		Address:         req.Address,
		City:            req.City,
		Available:       true,
	}
	if err := h.db.Create(&doc).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.issue(c, http.StatusCreated, doc.ID, status.RoleDoctor, doc)
}

func (h *AuthHandler) RegisterPatient(c *gin.Context) {
	var req RegisterPatientRequest
	if !bindJSON(c, &req) {
		return
	}

	email, hash, ok := h.credentials(c, req.Email, req.Password, &models.Patient{})
	if !ok {
		return
	}

	p := models.Patient{
		Name:         req.Name,
		Email:        email,
		PasswordHash: hash,
		Phone:        req.Phone,
	}
	if err := h.db.Create(&p).Error; err != nil {
		httperr.Respond(c, err)
		return
	}

	h.issue(c, http.StatusCreated, p.ID, status.RolePatient, p)
}

func (h *AuthHandler) LoginDoctor(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var doc models.Doctor
	if !h.lookup(c, req, &doc) || !checkPassword(c, doc.PasswordHash, req.Password) {
		return
	}

	h.issue(c, http.StatusOK, doc.ID, status.RoleDoctor, doc)
}

func (h *AuthHandler) LoginPatient(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	var p models.Patient
	if !h.lookup(c, req, &p) || !checkPassword(c, p.PasswordHash, req.Password) {
		return
	}

	h.issue(c, http.StatusOK, p.ID, status.RolePatient, p)
}

// --------- Helpers ---------

// credentials normalizes the email, rejects duplicates within the role's
// table and hashes the password.
func (h *AuthHandler) credentials(c *gin.Context, rawEmail, password string, table any) (string, string, bool) {
	email := strings.ToLower(strings.TrimSpace(rawEmail))

	if !h.checkEmail(email) {
		httperr.BadRequest(c, "invalid_email_domain", "The email domain does not look valid.")
		return "", "", false
	}

	var count int64
	if err := h.db.Model(table).Where("email = ?", email).Count(&count).Error; err != nil {
		httperr.Respond(c, err)
		return "", "", false
	}
	if count > 0 {
		httperr.BadRequest(c, "email_already_registered", "This email is already registered.")
		return "", "", false
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		httperr.Respond(c, err)
		return "", "", false
	}
	return email, string(hashed), true
}

func (h *AuthHandler) lookup(c *gin.Context, req LoginRequest, dest any) bool {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := h.db.Where("email = ?", email).First(dest).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
			return false
		}
		httperr.Respond(c, err)
		return false
	}
	return true
}

func checkPassword(c *gin.Context, hash, password string) bool {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		httperr.Unauthorized(c, "invalid_credentials", "Invalid email or password.")
		return false
	}
	return true
}

func (h *AuthHandler) issue(c *gin.Context, code int, userID uint, role status.Role, user any) {
	token, err := GenerateToken(h.secret, userID, role, time.Now())
	if err != nil {
		httperr.Respond(c, err)
		return
	}

	h.audit.Dispatch(audit.Event{
		ActorID:   userID,
		ActorRole: string(role),
		Action:    "login",
		Entity:    string(role),
		EntityID:  &userID,
	})

	c.JSON(code, gin.H{
		"token": token,
		"role":  role,
		"user":  user,
	})
}

// --------- JWT ---------

func GenerateToken(secret string, userID uint, role status.Role, now time.Time) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": string(role),
		"exp":  now.Add(tokenTTL).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}
