package services

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/farmrakshaa/backend/internal/apperr"
	"github.com/farmrakshaa/backend/internal/models"
	"github.com/farmrakshaa/backend/internal/repository"
)

// DocumentSaver stores an uploaded file and returns the object path recorded
// on the user. The MinIO-backed implementation lives in internal/storage.
type DocumentSaver interface {
	Save(ctx context.Context, kind string, file *multipart.FileHeader) (string, error)
}

// AuthService implements the credential lifecycle: registration, login,
// password change, profile retrieval and farm-data updates.
type AuthService struct {
	users          repository.UserStore
	tokens         *TokenIssuer
	documents      DocumentSaver
	autoApproveVet bool
}

func NewAuthService(users repository.UserStore, tokens *TokenIssuer, documents DocumentSaver, autoApproveVet bool) *AuthService {
	return &AuthService{
		users:          users,
		tokens:         tokens,
		documents:      documents,
		autoApproveVet: autoApproveVet,
	}
}

// RegisterFarmerRequest carries the farmer signup form. The four address
// components are joined verbatim into a single address string.
type RegisterFarmerRequest struct {
	Name          string `json:"name" validate:"required,max=50"`
	Email         string `json:"email" validate:"required,email"`
	Phone         string `json:"phone" validate:"required,phone"`
	FlatNo        string `json:"flatNo" validate:"required"`
	Street        string `json:"street" validate:"required"`
	District      string `json:"district" validate:"required"`
	State         string `json:"state" validate:"required"`
	AadhaarNumber string `json:"aadhaarNumber" validate:"required,aadhaar"`
	Village       string `json:"village" validate:"required"`
	FarmSize      string `json:"farmSize" validate:"required"`
	LivestockType string `json:"livestockType" validate:"required,oneof=cattle poultry pigs goats sheep mixed other"`
	Password      string `json:"password" validate:"required,min=6"`
	Role          string `json:"role" validate:"omitempty,oneof=farmer vet"`
}

// RegisterVetRequest carries the vet signup form fields; the three document
// files arrive separately as multipart file headers.
type RegisterVetRequest struct {
	Name           string `json:"name" validate:"required,max=50"`
	Email          string `json:"email" validate:"required,email"`
	Phone          string `json:"phone" validate:"required,phone"`
	FlatNo         string `json:"flatNo" validate:"required"`
	Street         string `json:"street" validate:"required"`
	District       string `json:"district" validate:"required"`
	State          string `json:"state" validate:"required"`
	AadhaarNumber  string `json:"aadhaarNumber" validate:"required,aadhaar"`
	Village        string `json:"village" validate:"required"`
	Qualification  string `json:"qualification" validate:"required"`
	Specialization string `json:"specialization" validate:"required,oneof=large-animal small-animal poultry surgery pathology preventive emergency other"`
	Experience     string `json:"experience" validate:"required"`
	LicenseNumber  string `json:"licenseNumber" validate:"required"`
	Organization   string `json:"organization" validate:"required"`
	Password       string `json:"password" validate:"required,min=6"`
}

// VetDocuments bundles the three required upload fields.
type VetDocuments struct {
	License *multipart.FileHeader
	Degree  *multipart.FileHeader
	IDProof *multipart.FileHeader
}

// LoginRequest carries login credentials. Role is optional; when present the
// stored role must match, enforced here rather than in the client.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role" validate:"omitempty,oneof=farmer vet"`
}

// ChangePasswordRequest re-authenticates with the current password before
// accepting the new one. No out-of-band token is involved.
type ChangePasswordRequest struct {
	Email       string `json:"email" validate:"required,email"`
	OldPassword string `json:"oldPassword" validate:"required"`
	NewPassword string `json:"newPassword" validate:"required,min=6"`
}

func composeAddress(flatNo, street, district, state string) string {
	return fmt.Sprintf("%s, %s, %s, %s", flatNo, street, district, state)
}

// normalizeEmail lowercases the address once at intake, so storage, the
// unique index and every lookup see one canonical form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// checkUnique runs the pre-insert duplicate checks. The unique indexes still
// back these up; under a race the insert itself reports the duplicate.
func (s *AuthService) checkUnique(ctx context.Context, email, aadhaar, license string) error {
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return &apperr.DuplicateError{Field: "email"}
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if _, err := s.users.FindByAadhaar(ctx, aadhaar); err == nil {
		return &apperr.DuplicateError{Field: "aadhaarNumber"}
	} else if !errors.Is(err, apperr.ErrNotFound) {
		return err
	}
	if license != "" {
		if _, err := s.users.FindByLicense(ctx, license); err == nil {
			return &apperr.DuplicateError{Field: "licenseNumber"}
		} else if !errors.Is(err, apperr.ErrNotFound) {
			return err
		}
	}
	return nil
}

// RegisterFarmer creates a farmer account and returns the sanitized user
// together with a freshly issued token.
func (s *AuthService) RegisterFarmer(ctx context.Context, req RegisterFarmerRequest) (*models.User, string, error) {
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}
	req.Email = normalizeEmail(req.Email)
	if err := s.checkUnique(ctx, req.Email, req.AadhaarNumber, ""); err != nil {
		return nil, "", err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleFarmer
	}
	// Farmers are self-approved; a vet registered through this endpoint
	// follows the same approval policy as /register-vet.
	isApproved := true
	if role == models.RoleVet {
		isApproved = s.autoApproveVet
	}
	user := &models.User{
		Name:          req.Name,
		Email:         req.Email,
		Phone:         req.Phone,
		Address:       composeAddress(req.FlatNo, req.Street, req.District, req.State),
		AadhaarNumber: req.AadhaarNumber,
		Village:       req.Village,
		Password:      hash,
		Role:          role,
		IsApproved:    isApproved,
		FarmSize:      req.FarmSize,
		LivestockType: req.LivestockType,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, "", err
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}
	sanitized := user.Sanitized()
	return &sanitized, token, nil
}

// RegisterVet creates a vet account. The three proof documents are uploaded
// to object storage concurrently and their paths recorded on the record.
// Approval follows the configured policy.
func (s *AuthService) RegisterVet(ctx context.Context, req RegisterVetRequest, docs VetDocuments) (*models.User, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	var missing []apperr.FieldError
	for _, d := range []struct {
		name string
		file *multipart.FileHeader
	}{
		{"license", docs.License},
		{"degree", docs.Degree},
		{"idProof", docs.IDProof},
	} {
		if d.file == nil {
			missing = append(missing, apperr.FieldError{Field: d.name, Message: "document is required"})
		}
	}
	if len(missing) > 0 {
		return nil, &apperr.ValidationError{Fields: missing}
	}

	req.Email = normalizeEmail(req.Email)
	if err := s.checkUnique(ctx, req.Email, req.AadhaarNumber, req.LicenseNumber); err != nil {
		return nil, err
	}

	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	var (
		mu    sync.Mutex
		paths = map[string]string{}
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range []struct {
		kind string
		file *multipart.FileHeader
	}{
		{"license", docs.License},
		{"degree", docs.Degree},
		{"idProof", docs.IDProof},
	} {
		d := d
		g.Go(func() error {
			path, err := s.documents.Save(gctx, d.kind, d.file)
			if err != nil {
				return err
			}
			mu.Lock()
			paths[d.kind] = path
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	user := &models.User{
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		Address:        composeAddress(req.FlatNo, req.Street, req.District, req.State),
		AadhaarNumber:  req.AadhaarNumber,
		Village:        req.Village,
		Password:       hash,
		Role:           models.RoleVet,
		Qualification:  req.Qualification,
		Specialization: req.Specialization,
		Experience:     req.Experience,
		LicenseNumber:  req.LicenseNumber,
		Organization:   req.Organization,
		IsApproved:     s.autoApproveVet,
		Documents: models.Documents{
			License: paths["license"],
			Degree:  paths["degree"],
			IDProof: paths["idProof"],
		},
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// Login verifies credentials and issues a token. Unknown email and wrong
// password are indistinguishable to the caller. A supplied role claim must
// match the stored role; unapproved vets are refused.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*models.User, string, error) {
	if err := validateStruct(req); err != nil {
		return nil, "", err
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, "", apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, "", err
	}
	if !VerifyPassword(req.Password, user.Password) {
		return nil, "", apperr.ErrInvalidCredentials
	}
	if req.Role != "" && req.Role != user.Role {
		return nil, "", apperr.ErrInvalidCredentials
	}
	if user.Role == models.RoleVet && !user.IsApproved {
		return nil, "", apperr.ErrPendingApproval
	}

	token, err := s.tokens.Issue(user.ID.Hex())
	if err != nil {
		return nil, "", err
	}
	sanitized := user.Sanitized()
	return &sanitized, token, nil
}

// ChangePassword re-authenticates with the current password, then re-hashes
// and persists the new one. No token is reissued.
func (s *AuthService) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if err := validateStruct(req); err != nil {
		return err
	}

	user, err := s.users.FindByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return apperr.ErrEmailNotFound
	}
	if err != nil {
		return err
	}
	if !VerifyPassword(req.OldPassword, user.Password) {
		return apperr.ErrInvalidCurrentPassword
	}

	hash, err := HashPassword(req.NewPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// Profile resolves an authenticated user id to the sanitized record.
func (s *AuthService) Profile(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// UpdateFarmData validates and overwrites the user's farmData subdocument,
// returning the updated sanitized profile.
func (s *AuthService) UpdateFarmData(ctx context.Context, userID string, data models.FarmData) (*models.User, error) {
	if userID == "" {
		return nil, apperr.ErrNotAuthenticated
	}
	if err := validateFarmData(data); err != nil {
		return nil, err
	}
	user, err := s.users.UpdateFarmData(ctx, userID, data)
	if err != nil {
		return nil, err
	}
	sanitized := user.Sanitized()
	return &sanitized, nil
}

// validateFarmData collects every violated field instead of stopping at the
// first, so the client can highlight all of them at once.
func validateFarmData(data models.FarmData) error {
	var fields []apperr.FieldError
	if data.TotalAcres < 0 {
		fields = append(fields, apperr.FieldError{Field: "totalAcres", Message: "must not be negative"})
	}
	species := []struct {
		name  string
		count models.LivestockCount
	}{
		{"pigs", data.Livestock.Pigs},
		{"poultry", data.Livestock.Poultry},
		{"cattle", data.Livestock.Cattle},
		{"goats", data.Livestock.Goats},
	}
	for _, sp := range species {
		if sp.count.Total < 0 {
			fields = append(fields, apperr.FieldError{Field: sp.name + ".total", Message: "must not be negative"})
		}
		if sp.count.Vaccinated < 0 {
			fields = append(fields, apperr.FieldError{Field: sp.name + ".vaccinated", Message: "must not be negative"})
		}
		if sp.count.Vaccinated > sp.count.Total {
			fields = append(fields, apperr.FieldError{Field: sp.name + ".vaccinated", Message: "must not exceed total"})
		}
	}
	if len(fields) > 0 {
		return &apperr.ValidationError{Fields: fields}
	}
	return nil
}
