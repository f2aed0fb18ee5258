package handlers

import (
	"mime/multipart"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/farmrakshaa/backend/internal/middleware"
	"github.com/farmrakshaa/backend/internal/models"
	"github.com/farmrakshaa/backend/internal/services"
)

// AuthHandler exposes the credential-lifecycle flows over HTTP.
type AuthHandler struct {
	svc           *services.AuthService
	secureCookies bool
}

func NewAuthHandler(svc *services.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{svc: svc, secureCookies: secureCookies}
}

// setTokenCookie attaches the bearer token as an HTTP-only cookie scoped to
// the token's own lifetime.
func (h *AuthHandler) setTokenCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(services.TokenTTL),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

// Register handles farmer signup.
func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req services.RegisterFarmerRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, token, err := h.svc.RegisterFarmer(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	h.setTokenCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": user, "token": token})
}

// RegisterVet handles vet signup from a multipart form carrying the three
// proof documents.
func (h *AuthHandler) RegisterVet(c *fiber.Ctx) error {
	req := services.RegisterVetRequest{
		Name:           c.FormValue("name"),
		Email:          c.FormValue("email"),
		Phone:          c.FormValue("phone"),
		FlatNo:         c.FormValue("flatNo"),
		Street:         c.FormValue("street"),
		District:       c.FormValue("district"),
		State:          c.FormValue("state"),
		AadhaarNumber:  c.FormValue("aadhaarNumber"),
		Village:        c.FormValue("village"),
		Qualification:  c.FormValue("qualification"),
		Specialization: c.FormValue("specialization"),
		Experience:     c.FormValue("experience"),
		LicenseNumber:  c.FormValue("licenseNumber"),
		Organization:   c.FormValue("organization"),
		Password:       c.FormValue("password"),
	}
	docs := services.VetDocuments{
		License: formFile(c, "license"),
		Degree:  formFile(c, "degree"),
		IDProof: formFile(c, "idProof"),
	}

	user, err := h.svc.RegisterVet(c.Context(), req, docs)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":    user,
		"message": "Registration submitted successfully",
	})
}

func formFile(c *fiber.Ctx, name string) *multipart.FileHeader {
	file, err := c.FormFile(name)
	if err != nil {
		return nil
	}
	return file
}

// Login handles credential verification and cookie issuance.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, token, err := h.svc.Login(c.Context(), req)
	if err != nil {
		return respondError(c, err)
	}

	h.setTokenCookie(c, token)
	return c.JSON(fiber.Map{"user": user, "token": token})
}

// Logout clears the token cookie.
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     "token",
		Value:    "",
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   h.secureCookies,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
	return c.JSON(fiber.Map{"message": "Logged out successfully"})
}

// Profile returns the sanitized record for the authenticated user.
func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	user, err := h.svc.Profile(c.Context(), middleware.UserID(c))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// UpdateFarmData overwrites the authenticated user's farm data.
func (h *AuthHandler) UpdateFarmData(c *fiber.Ctx) error {
	var req struct {
		FarmData models.FarmData `json:"farmData"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	user, err := h.svc.UpdateFarmData(c.Context(), middleware.UserID(c), req.FarmData)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"user": user})
}

// ForgotPassword changes the password after re-authenticating with the
// current one.
func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req services.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request body"})
	}

	if err := h.svc.ChangePassword(c.Context(), req); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"message": "Password updated successfully"})
}
