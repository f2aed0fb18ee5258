package services

import (
	"context"
	"mime/multipart"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/farmrakshaa/backend/internal/apperr"
	"github.com/farmrakshaa/backend/internal/models"
)

// fakeUserStore is an in-memory UserStore that enforces the same uniqueness
// rules as the Mongo indexes.
type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*models.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: map[string]*models.User{}}
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return &apperr.DuplicateError{Field: "email"}
		}
		if existing.AadhaarNumber == user.AadhaarNumber {
			return &apperr.DuplicateError{Field: "aadhaarNumber"}
		}
		if user.LicenseNumber != "" && existing.LicenseNumber == user.LicenseNumber {
			return &apperr.DuplicateError{Field: "licenseNumber"}
		}
	}
	if user.ID.IsZero() {
		user.ID = primitive.NewObjectID()
	}
	clone := *user
	s.users[user.ID.Hex()] = &clone
	return nil
}

func (s *fakeUserStore) findBy(match func(*models.User) bool) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if match(u) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperr.ErrNotFound
}

func (s *fakeUserStore) FindByEmail(_ context.Context, email string) (*models.User, error) {
	return s.findBy(func(u *models.User) bool { return u.Email == email })
}

func (s *fakeUserStore) FindByAadhaar(_ context.Context, aadhaar string) (*models.User, error) {
	return s.findBy(func(u *models.User) bool { return u.AadhaarNumber == aadhaar })
}

func (s *fakeUserStore) FindByLicense(_ context.Context, license string) (*models.User, error) {
	return s.findBy(func(u *models.User) bool { return u.LicenseNumber == license })
}

func (s *fakeUserStore) FindByID(_ context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	clone := *u
	return &clone, nil
}

func (s *fakeUserStore) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id.Hex()]
	if !ok {
		return apperr.ErrNotFound
	}
	u.Password = hash
	return nil
}

func (s *fakeUserStore) UpdateFarmData(_ context.Context, id string, data models.FarmData) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, apperr.ErrNotFound
	}
	u.FarmData = data
	clone := *u
	return &clone, nil
}

// fakeDocumentSaver records uploads without touching object storage.
type fakeDocumentSaver struct {
	mu    sync.Mutex
	saved map[string]string
}

func newFakeDocumentSaver() *fakeDocumentSaver {
	return &fakeDocumentSaver{saved: map[string]string{}}
}

func (f *fakeDocumentSaver) Save(_ context.Context, kind string, file *multipart.FileHeader) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	path := "documents/" + kind + "-" + file.Filename
	f.saved[kind] = path
	return path, nil
}

func newTestService(t *testing.T) (*AuthService, *fakeUserStore) {
	t.Helper()
	store := newFakeUserStore()
	tokens, err := NewTokenIssuer("test-secret")
	require.NoError(t, err)
	return NewAuthService(store, tokens, newFakeDocumentSaver(), true), store
}

func farmerRequest() RegisterFarmerRequest {
	return RegisterFarmerRequest{
		Name:          "Asha Devi",
		Email:         "a@x.com",
		Phone:         "9876543210",
		FlatNo:        "12",
		Street:        "MG Road",
		District:      "Pune",
		State:         "Maharashtra",
		AadhaarNumber: "234512345678",
		Village:       "Wagholi",
		FarmSize:      "5 acres",
		LivestockType: "poultry",
		Password:      "Abc123",
	}
}

func vetRequest() RegisterVetRequest {
	return RegisterVetRequest{
		Name:           "Dr. Rao",
		Email:          "vet@x.com",
		Phone:          "9123456780",
		FlatNo:         "4",
		Street:         "Station Road",
		District:       "Nashik",
		State:          "Maharashtra",
		AadhaarNumber:  "345612345678",
		Village:        "Ozar",
		Qualification:  "BVSc",
		Specialization: "large-animal",
		Experience:     "8 years",
		LicenseNumber:  "VET-1234",
		Organization:   "District Veterinary Hospital",
		Password:       "Secret9",
	}
}

func vetDocuments() VetDocuments {
	return VetDocuments{
		License: &multipart.FileHeader{Filename: "license.pdf"},
		Degree:  &multipart.FileHeader{Filename: "degree.pdf"},
		IDProof: &multipart.FileHeader{Filename: "id.png"},
	}
}

func TestRegisterFarmer(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, token, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)
	require.NotEmpty(t, token)

	assert.Equal(t, models.RoleFarmer, user.Role)
	assert.Equal(t, "12, MG Road, Pune, Maharashtra", user.Address)
	assert.Empty(t, user.Password, "sanitized user must not carry the hash")
	assert.False(t, user.ID.IsZero())
}

func TestRegisterWithVetRoleFollowsApprovalPolicy(t *testing.T) {
	// With auto-approve on (the default), a vet created through the plain
	// register endpoint must be usable immediately.
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := farmerRequest()
	req.Role = models.RoleVet
	user, _, err := svc.RegisterFarmer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, models.RoleVet, user.Role)
	assert.True(t, user.IsApproved)

	_, _, err = svc.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
	assert.NoError(t, err)

	// With auto-approve off the same registration is held for review.
	store := newFakeUserStore()
	tokens, err := NewTokenIssuer("test-secret")
	require.NoError(t, err)
	gated := NewAuthService(store, tokens, newFakeDocumentSaver(), false)

	user, _, err = gated.RegisterFarmer(ctx, req)
	require.NoError(t, err)
	assert.False(t, user.IsApproved)

	_, _, err = gated.Login(ctx, LoginRequest{Email: req.Email, Password: req.Password})
	assert.ErrorIs(t, err, apperr.ErrPendingApproval)
}

func TestEmailCaseNormalization(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	req := farmerRequest()
	req.Email = "Asha@X.com"
	user, _, err := svc.RegisterFarmer(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "asha@x.com", user.Email, "email is stored case-normalized")

	// Any case variant reaches the same account.
	_, _, err = svc.Login(ctx, LoginRequest{Email: "ASHA@x.com", Password: "Abc123"})
	assert.NoError(t, err)

	// A case-variant re-registration is a duplicate, not a second account.
	again := farmerRequest()
	again.Email = "aShA@x.CoM"
	again.AadhaarNumber = "987612345678"
	_, _, err = svc.RegisterFarmer(ctx, again)
	var dup *apperr.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)

	// Password change finds the account through a case variant too.
	err = svc.ChangePassword(ctx, ChangePasswordRequest{
		Email: "Asha@x.com", OldPassword: "Abc123", NewPassword: "NewPass1",
	})
	assert.NoError(t, err)
}

func TestRegisterFarmerDuplicateEmail(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	// Same email, everything else varied.
	req := farmerRequest()
	req.Name = "Someone Else"
	req.AadhaarNumber = "987612345678"
	req.Phone = "9000000000"
	_, _, err = svc.RegisterFarmer(ctx, req)

	var dup *apperr.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

func TestRegisterFarmerDuplicateAadhaar(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	req := farmerRequest()
	req.Email = "other@x.com"
	_, _, err = svc.RegisterFarmer(ctx, req)

	var dup *apperr.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "aadhaarNumber", dup.Field)
}

func TestRegisterFarmerValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		mutate func(*RegisterFarmerRequest)
		field  string
	}{
		{"bad email", func(r *RegisterFarmerRequest) { r.Email = "not-an-email" }, "Email"},
		{"short password", func(r *RegisterFarmerRequest) { r.Password = "abc" }, "Password"},
		{"bad aadhaar", func(r *RegisterFarmerRequest) { r.AadhaarNumber = "123" }, "AadhaarNumber"},
		{"aadhaar starting with 1", func(r *RegisterFarmerRequest) { r.AadhaarNumber = "134512345678" }, "AadhaarNumber"},
		{"bad phone", func(r *RegisterFarmerRequest) { r.Phone = "12ab" }, "Phone"},
		{"bad livestock type", func(r *RegisterFarmerRequest) { r.LivestockType = "elephants" }, "LivestockType"},
		{"missing village", func(r *RegisterFarmerRequest) { r.Village = "" }, "Village"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := farmerRequest()
			tt.mutate(&req)
			_, _, err := svc.RegisterFarmer(ctx, req)

			var verr *apperr.ValidationError
			require.ErrorAs(t, err, &verr)
			found := false
			for _, f := range verr.Fields {
				if f.Field == tt.field {
					found = true
				}
			}
			assert.True(t, found, "expected a violation on %s, got %v", tt.field, verr.Fields)
		})
	}
}

func TestRegisterVet(t *testing.T) {
	store := newFakeUserStore()
	tokens, err := NewTokenIssuer("test-secret")
	require.NoError(t, err)
	docs := newFakeDocumentSaver()
	svc := NewAuthService(store, tokens, docs, true)

	user, err := svc.RegisterVet(context.Background(), vetRequest(), vetDocuments())
	require.NoError(t, err)

	assert.Equal(t, models.RoleVet, user.Role)
	assert.True(t, user.IsApproved)
	assert.Empty(t, user.Password)
	assert.Equal(t, docs.saved["license"], user.Documents.License)
	assert.Equal(t, docs.saved["degree"], user.Documents.Degree)
	assert.Equal(t, docs.saved["idProof"], user.Documents.IDProof)
}

func TestRegisterVetMissingDocuments(t *testing.T) {
	svc, _ := newTestService(t)

	docs := vetDocuments()
	docs.Degree = nil
	_, err := svc.RegisterVet(context.Background(), vetRequest(), docs)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "degree", verr.Fields[0].Field)
}

func TestRegisterVetDuplicateLicense(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.RegisterVet(ctx, vetRequest(), vetDocuments())
	require.NoError(t, err)

	req := vetRequest()
	req.Email = "other-vet@x.com"
	req.AadhaarNumber = "456712345678"
	_, err = svc.RegisterVet(ctx, req, vetDocuments())

	var dup *apperr.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "licenseNumber", dup.Field)
}

func TestVetApprovalGate(t *testing.T) {
	store := newFakeUserStore()
	tokens, err := NewTokenIssuer("test-secret")
	require.NoError(t, err)
	svc := NewAuthService(store, tokens, newFakeDocumentSaver(), false)
	ctx := context.Background()

	user, err := svc.RegisterVet(ctx, vetRequest(), vetDocuments())
	require.NoError(t, err)
	assert.False(t, user.IsApproved)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "vet@x.com", Password: "Secret9"})
	assert.ErrorIs(t, err, apperr.ErrPendingApproval)
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	registered, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	user, token, err := svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "Abc123"})
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)
	assert.Empty(t, user.Password)

	// The issued token must round-trip to the same user id.
	tokens, err := NewTokenIssuer("test-secret")
	require.NoError(t, err)
	userID, err := tokens.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, registered.ID.Hex(), userID)
}

func TestLoginFailuresAreUniform(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "nobody@x.com", Password: "Abc123"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestLoginRoleMismatch(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "Abc123", Role: models.RoleVet})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)

	_, _, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "Abc123", Role: models.RoleFarmer})
	assert.NoError(t, err)
}

func TestChangePassword(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	// Wrong current password is rejected even with a valid new one.
	err = svc.ChangePassword(ctx, ChangePasswordRequest{
		Email: "a@x.com", OldPassword: "wrong", NewPassword: "NewPass1",
	})
	assert.ErrorIs(t, err, apperr.ErrInvalidCurrentPassword)

	err = svc.ChangePassword(ctx, ChangePasswordRequest{
		Email: "nobody@x.com", OldPassword: "Abc123", NewPassword: "NewPass1",
	})
	assert.ErrorIs(t, err, apperr.ErrEmailNotFound)

	err = svc.ChangePassword(ctx, ChangePasswordRequest{
		Email: "a@x.com", OldPassword: "Abc123", NewPassword: "NewPass1",
	})
	require.NoError(t, err)

	// The new password works, the old one no longer does.
	_, _, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "NewPass1"})
	assert.NoError(t, err)
	_, _, err = svc.Login(ctx, LoginRequest{Email: "a@x.com", Password: "Abc123"})
	assert.ErrorIs(t, err, apperr.ErrInvalidCredentials)
}

func TestProfile(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	got, err := svc.Profile(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)
	assert.Empty(t, got.Password)

	_, err = svc.Profile(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrNotAuthenticated)

	_, err = svc.Profile(ctx, primitive.NewObjectID().Hex())
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestUpdateFarmData(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	data := models.FarmData{
		TotalAcres: 12.5,
		Livestock: models.Livestock{
			Pigs:    models.LivestockCount{Total: 10, Vaccinated: 8},
			Poultry: models.LivestockCount{Total: 200, Vaccinated: 200},
		},
	}
	updated, err := svc.UpdateFarmData(ctx, user.ID.Hex(), data)
	require.NoError(t, err)
	assert.Equal(t, data, updated.FarmData)

	// Visible on the next profile fetch.
	profile, err := svc.Profile(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, data, profile.FarmData)
}

func TestUpdateFarmDataValidation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	user, _, err := svc.RegisterFarmer(ctx, farmerRequest())
	require.NoError(t, err)

	data := models.FarmData{
		TotalAcres: -1,
		Livestock: models.Livestock{
			Pigs:    models.LivestockCount{Total: 5, Vaccinated: 9},
			Poultry: models.LivestockCount{Total: -3, Vaccinated: 0},
			Goats:   models.LivestockCount{Total: 4, Vaccinated: -1},
		},
	}
	_, err = svc.UpdateFarmData(ctx, user.ID.Hex(), data)

	var verr *apperr.ValidationError
	require.ErrorAs(t, err, &verr)

	violated := map[string]bool{}
	for _, f := range verr.Fields {
		violated[f.Field] = true
	}
	// Every violation is reported, not just the first.
	assert.True(t, violated["totalAcres"])
	assert.True(t, violated["pigs.vaccinated"])
	assert.True(t, violated["poultry.total"])
	assert.True(t, violated["goats.vaccinated"])
	assert.False(t, violated["cattle.total"])

	// Nothing was persisted.
	profile, err := svc.Profile(ctx, user.ID.Hex())
	require.NoError(t, err)
	assert.Equal(t, models.FarmData{}, profile.FarmData)
}

func TestRegisterRaceSurfacesDuplicateField(t *testing.T) {
	// Simulate losing the insert race: the store rejects even though the
	// pre-check passed.
	store := newFakeUserStore()
	tokens, err := NewTokenIssuer("test-secret")
	require.NoError(t, err)
	svc := NewAuthService(&racingStore{fakeUserStore: store}, tokens, newFakeDocumentSaver(), true)

	_, _, err = svc.RegisterFarmer(context.Background(), farmerRequest())

	var dup *apperr.DuplicateError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "email", dup.Field)
}

// racingStore passes lookups but fails the insert with a duplicate-key
// rejection, like Mongo does when a concurrent registration wins.
type racingStore struct {
	*fakeUserStore
}

func (s *racingStore) Create(context.Context, *models.User) error {
	return &apperr.DuplicateError{Field: "email"}
}
