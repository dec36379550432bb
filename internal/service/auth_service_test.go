package service

import (
	"errors"
	"testing"

	"shade_control/internal/models"

	"golang.org/x/crypto/bcrypt"
)

type stubAuthRepo struct {
	users  map[string]*models.User // by email
	byID   map[int]*models.User
	nextID int

	lastCreatedRole string
	lastCreatedHash string
}

func newStubAuthRepo() *stubAuthRepo {
	return &stubAuthRepo{
		users:  make(map[string]*models.User),
		byID:   make(map[int]*models.User),
		nextID: 1,
	}
}

func (r *stubAuthRepo) add(email, password, role string) *models.User {
	hash, _ := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	u := &models.User{
		ID:           r.nextID,
		Name:         "Test User",
		Email:        email,
		Role:         role,
		PasswordHash: string(hash),
	}
	r.nextID++
	r.users[email] = u
	r.byID[u.ID] = u
	return u
}

func (r *stubAuthRepo) Create(name, email, role, hash string) (int, error) {
	r.lastCreatedRole = role
	r.lastCreatedHash = hash
	id := r.nextID
	r.nextID++
	return id, nil
}

func (r *stubAuthRepo) GetByEmail(email string) (*models.User, error) {
	return r.users[email], nil
}

func (r *stubAuthRepo) GetByID(id int) (*models.User, error) {
	return r.byID[id], nil
}

func (r *stubAuthRepo) List() ([]models.User, error) { return nil, nil }

func TestAuthService_TokenRoundTrip(t *testing.T) {
	repo := newStubAuthRepo()
	u := repo.add("op@example.com", "secret", models.RoleMaintenance)
	svc := NewAuthService(repo, "test-signing-key")

	token, err := svc.GenerateToken("op@example.com", "secret")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if token == "" {
		t.Fatalf("GenerateToken() returned empty token")
	}

	claims, err := svc.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken() error = %v", err)
	}
	if claims.UserID != u.ID || claims.Email != u.Email || claims.Role != models.RoleMaintenance {
		t.Fatalf("claims mismatch: %+v", claims)
	}
}

func TestAuthService_GenerateToken_RejectsBadCredentials(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add("op@example.com", "secret", models.RolePlanner)
	svc := NewAuthService(repo, "test-signing-key")

	if _, err := svc.GenerateToken("op@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("wrong password: error = %v, want ErrInvalidCredentials", err)
	}
	if _, err := svc.GenerateToken("nobody@example.com", "secret"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown email: error = %v, want ErrInvalidCredentials", err)
	}
}

func TestAuthService_ParseToken_RejectsForeignSignature(t *testing.T) {
	repo := newStubAuthRepo()
	repo.add("op@example.com", "secret", models.RoleAdmin)

	issuer := NewAuthService(repo, "key-one")
	verifier := NewAuthService(repo, "key-two")

	token, err := issuer.GenerateToken("op@example.com", "secret")
	if err != nil {
		t.Fatalf("GenerateToken() error = %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatalf("ParseToken() should reject a token signed with another key")
	}
}

func TestAuthService_CreateUser_Validation(t *testing.T) {
	repo := newStubAuthRepo()
	svc := NewAuthService(repo, "test-signing-key")

	if _, err := svc.CreateUser(CreateUserParams{
		Name: "Op", Email: "op@example.com", Role: "superuser", Password: "secret",
	}); !errors.Is(err, ErrInvalidRole) {
		t.Fatalf("bad role: error = %v, want ErrInvalidRole", err)
	}

	if _, err := svc.CreateUser(CreateUserParams{
		Name: "Op", Email: "op@example.com", Role: models.RolePlanner,
	}); err == nil {
		t.Fatalf("empty password must be rejected")
	}

	if _, err := svc.CreateUser(CreateUserParams{
		Name: "Op", Email: "op@example.com", Role: models.RolePlanner, Password: "secret",
	}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	// The stored credential is a bcrypt hash, never the raw password.
	if err := bcrypt.CompareHashAndPassword([]byte(repo.lastCreatedHash), []byte("secret")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
}
