package services

import (
	"net/http"
	"sync"

	"auth_core_ms/apperrors"
	"auth_core_ms/domain"

	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"
)

// In-memory stand-ins for the gorm-backed repositories and external
// collaborators so flow logic can be tested without a database.

type fakeUserRepo struct {
	mu     sync.Mutex
	nextId uint
	users  map[uint]*domain.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{nextId: 1, users: make(map[uint]*domain.User)}
}

func (f *fakeUserRepo) GetByID(_ *gorm.DB, id uint) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return nil, apperrors.Wrap("user lookup", apperrors.ErrNotFound)
	}
	cp := *u
	return &cp, nil
}

func (f *fakeUserRepo) GetByIDWithCredentials(db *gorm.DB, id uint) (*domain.User, error) {
	return f.GetByID(db, id)
}

func (f *fakeUserRepo) GetByUsername(_ *gorm.DB, username string) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperrors.Wrap("user lookup", apperrors.ErrNotFound)
}

func (f *fakeUserRepo) GetByUsernameWithCredentials(db *gorm.DB, username string) (*domain.User, error) {
	return f.GetByUsername(db, username)
}

func (f *fakeUserRepo) ExistsByUsernameOrEmail(_ *gorm.DB, username string, email string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Username == username || u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Create(_ *gorm.DB, entity *domain.User) (*domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	entity.Id = f.nextId
	f.nextId++
	cp := *entity
	f.users[entity.Id] = &cp
	return entity, nil
}

func (f *fakeUserRepo) Update(_ *gorm.DB, entity *domain.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := *entity
	f.users[entity.Id] = &cp
	return nil
}

type fakeRedis struct {
	mu     sync.Mutex
	tokens map[uint]string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{tokens: make(map[uint]string)}
}

func (f *fakeRedis) SetRefreshToken(userId uint, refreshToken string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tokens[userId] = refreshToken
	return nil
}

func (f *fakeRedis) GetRefreshToken(userId uint) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	token, ok := f.tokens[userId]
	if !ok {
		return "", apperrors.Wrap("refresh lookup", apperrors.ErrNotFound)
	}
	return token, nil
}

func (f *fakeRedis) DelRefreshToken(userId uint) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.tokens, userId)
}

type fakeEvents struct {
	mu        sync.Mutex
	published []string
}

func (f *fakeEvents) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, name)
}

func (f *fakeEvents) PublishUserRegistered(uint, string)           { f.record("user_registered") }
func (f *fakeEvents) PublishMfaEnabled(uint)                       { f.record("mfa_enabled") }
func (f *fakeEvents) PublishCredentialEnrolled(uint, string)       { f.record("credential_enrolled") }
func (f *fakeEvents) PublishCredentialLoginSucceeded(uint, string) { f.record("credential_login") }
func (f *fakeEvents) Close()                                       {}

// fakeVerifier returns a canned credential instead of checking a real
// attestation or assertion signature.
type fakeVerifier struct {
	credential *webauthn.Credential
	err        error
}

func (f *fakeVerifier) VerifyAttestation(user webauthn.User, session webauthn.SessionData, r *http.Request) (*webauthn.Credential, error) {
	return f.credential, f.err
}

func (f *fakeVerifier) VerifyAssertion(user webauthn.User, session webauthn.SessionData, r *http.Request) (*webauthn.Credential, error) {
	return f.credential, f.err
}
