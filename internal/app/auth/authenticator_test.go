package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/app/repositories"
	"github.com/yigit/studentms/internal/pkg/apperrors"
)

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

// fakeUserRepo is an in-memory identity store keyed by username.
type fakeUserRepo struct {
	users       map[string]*models.User
	nextID      int64
	createCalls int
	createErr   error
	// preCreate runs before Create applies, to simulate a concurrent
	// promotion winning the race.
	preCreate func()
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: map[string]*models.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	f.createCalls++
	if f.preCreate != nil {
		f.preCreate()
		f.preCreate = nil
	}
	if f.createErr != nil {
		return 0, f.createErr
	}
	if _, ok := f.users[user.Username]; ok {
		return 0, apperrors.ErrUsernameTaken
	}
	id := f.nextID
	f.nextID++
	stored := *user
	stored.ID = id
	f.users[user.Username] = &stored
	return id, nil
}

func (f *fakeUserRepo) CreateTx(ctx context.Context, _ pgx.Tx, user *models.User) (int64, error) {
	return f.Create(ctx, user)
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := f.users[username]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (f *fakeUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	_, ok := f.users[username]
	return ok, nil
}

func (f *fakeUserRepo) UpdateRole(_ context.Context, userID int64, role models.Role) error {
	for _, u := range f.users {
		if u.ID == userID {
			u.Role = role
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateLastLogin(_ context.Context, userID int64) error {
	return nil
}

func (f *fakeUserRepo) Delete(_ context.Context, id int64) error {
	for name, u := range f.users {
		if u.ID == id {
			delete(f.users, name)
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func (f *fakeUserRepo) DeleteByUsername(_ context.Context, username string) error {
	delete(f.users, username)
	return nil
}

// fakeAdminRepo is an in-memory admins table.
type fakeAdminRepo struct {
	admins  map[string]*models.Admin
	findErr error
}

func newFakeAdminRepo() *fakeAdminRepo {
	return &fakeAdminRepo{admins: map[string]*models.Admin{}}
}

func (f *fakeAdminRepo) Create(_ context.Context, admin *models.Admin) (int64, error) {
	f.admins[admin.Username] = admin
	return int64(len(f.admins)), nil
}

func (f *fakeAdminRepo) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	if a, ok := f.admins[username]; ok {
		return a, nil
	}
	return nil, apperrors.ErrAccountNotFound
}

func (f *fakeAdminRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	_, ok := f.admins[username]
	return ok, nil
}

// fakeStudentRepo is an in-memory students table; only the lookup paths
// used by the credential chain are meaningful here.
type fakeStudentRepo struct {
	students map[string]*models.Student
}

func newFakeStudentRepo() *fakeStudentRepo {
	return &fakeStudentRepo{students: map[string]*models.Student{}}
}

func (f *fakeStudentRepo) Create(_ context.Context, student *models.Student) (int64, error) {
	f.students[student.Username] = student
	return int64(len(f.students)), nil
}

func (f *fakeStudentRepo) CreateTx(ctx context.Context, _ pgx.Tx, student *models.Student) (int64, error) {
	return f.Create(ctx, student)
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id int64) (*models.Student, error) {
	for _, s := range f.students {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentRepo) GetByUsername(_ context.Context, username string) (*models.Student, error) {
	if s, ok := f.students[username]; ok {
		return s, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (f *fakeStudentRepo) GetAll(_ context.Context, _ repositories.StudentFilter) ([]*models.Student, error) {
	return nil, nil
}

func (f *fakeStudentRepo) Count(_ context.Context) (int, error) {
	return len(f.students), nil
}

func (f *fakeStudentRepo) Update(_ context.Context, _ *models.Student) error { return nil }

func (f *fakeStudentRepo) Delete(_ context.Context, _ int64) error { return nil }

func (f *fakeStudentRepo) UsernameExists(_ context.Context, username string, _ int64) (bool, error) {
	_, ok := f.students[username]
	return ok, nil
}

func newTestStudent(username, name, hash string) *models.Student {
	return &models.Student{
		Name:         name,
		Username:     username,
		Role:         models.RoleStudent,
		Course:       "B.Tech CSE",
		Semester:     4,
		CGPA:         decimal.RequireFromString("3.50"),
		DOB:          time.Date(2003, 6, 15, 0, 0, 0, 0, time.UTC),
		Hometown:     "Pune",
		PhoneNumber:  "+911234567890",
		Password:     hash,
		DepartmentID: 1,
	}
}

func TestAuthenticator_IdentityFirst(t *testing.T) {
	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	students := newFakeStudentRepo()

	hash := hashFor(t, "secret123")
	_, err := users.Create(context.Background(), &models.User{
		Username: "janedoe",
		Email:    "janedoe@studentms.edu",
		Password: hash,
		Name:     "Jane Doe",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	// A stale legacy row with a different password must not shadow the
	// identity account.
	students.students["janedoe"] = newTestStudent("janedoe", "Jane Doe", hashFor(t, "oldpassword"))

	a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

	user, err := a.Authenticate(context.Background(), "janedoe", "secret123")
	require.NoError(t, err)
	assert.Equal(t, "janedoe", user.Username)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, 1, users.createCalls, "no promotion expected for identity matches")
}

func TestAuthenticator_PromotesLegacyAdmin(t *testing.T) {
	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	students := newFakeStudentRepo()

	hash := hashFor(t, "admin123")
	admins.admins["admin"] = &models.Admin{
		ID:       1,
		Name:     "Site Admin",
		Username: "admin",
		Password: hash,
		Role:     "Admin",
	}

	a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

	user, err := a.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, "admin", user.Username)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "admin@admin.studentms.edu", user.Email)

	// The identity row now exists, so the next login resolves there
	// without another promotion.
	user2, err := a.Authenticate(context.Background(), "admin", "admin123")
	require.NoError(t, err)
	assert.Equal(t, user.ID, user2.ID)
	assert.Equal(t, 1, users.createCalls)
}

func TestAuthenticator_AdminWinsOverStudent(t *testing.T) {
	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	students := newFakeStudentRepo()

	hash := hashFor(t, "shared")
	admins.admins["sam"] = &models.Admin{Name: "Sam A", Username: "sam", Password: hash, Role: "Admin"}
	students.students["sam"] = newTestStudent("sam", "Sam S", hash)

	a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

	user, err := a.Authenticate(context.Background(), "sam", "shared")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)
	assert.Equal(t, "sam@admin.studentms.edu", user.Email)
}

func TestAuthenticator_PromotesLegacyStudent(t *testing.T) {
	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	students := newFakeStudentRepo()

	hash := hashFor(t, "secret123")
	students.students["janedoe"] = newTestStudent("janedoe", "Jane Doe", hash)

	a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

	user, err := a.Authenticate(context.Background(), "janedoe", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleStudent, user.Role)
	assert.Equal(t, "janedoe@studentms.edu", user.Email)
	assert.Equal(t, hash, user.Password, "promotion reuses the stored hash")
}

func TestAuthenticator_PromotesStudentWithAdminRole(t *testing.T) {
	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	students := newFakeStudentRepo()

	// A student record bumped to Admin by hand keeps that role through
	// promotion.
	hash := hashFor(t, "secret123")
	elevated := newTestStudent("headboy", "Head Boy", hash)
	elevated.Role = models.RoleAdmin
	students.students["headboy"] = elevated

	a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

	user, err := a.Authenticate(context.Background(), "headboy", "secret123")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role)

	promoted, err := users.GetByUsername(context.Background(), "headboy")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, promoted.Role, "identity row records the stored role")
}

func TestAuthenticator_FallbackFlag(t *testing.T) {
	setup := func(t *testing.T) (*fakeUserRepo, *fakeAdminRepo, *fakeStudentRepo) {
		users := newFakeUserRepo()
		_, err := users.Create(context.Background(), &models.User{
			Username: "admin",
			Email:    "admin@admin.studentms.edu",
			Password: hashFor(t, "newpassword"),
			Name:     "Site Admin",
			Role:     models.RoleAdmin,
		})
		require.NoError(t, err)

		admins := newFakeAdminRepo()
		admins.admins["admin"] = &models.Admin{
			Name: "Site Admin", Username: "admin",
			Password: hashFor(t, "oldpassword"), Role: "Admin",
		}
		return users, admins, newFakeStudentRepo()
	}

	t.Run("enabled falls through to the legacy hash", func(t *testing.T) {
		users, admins, students := setup(t)
		a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

		user, err := a.Authenticate(context.Background(), "admin", "oldpassword")
		require.NoError(t, err)
		assert.Equal(t, "admin", user.Username)
	})

	t.Run("disabled fails on the identity mismatch", func(t *testing.T) {
		users, admins, students := setup(t)
		a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: false})

		_, err := a.Authenticate(context.Background(), "admin", "oldpassword")
		assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	})
}

func TestAuthenticator_PromotionRace(t *testing.T) {
	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	students := newFakeStudentRepo()

	hash := hashFor(t, "secret123")
	students.students["janedoe"] = newTestStudent("janedoe", "Jane Doe", hash)

	// Another request promotes the same account between our lookup and
	// our insert.
	users.preCreate = func() {
		users.users["janedoe"] = &models.User{
			ID:       99,
			Username: "janedoe",
			Email:    "janedoe@studentms.edu",
			Password: hash,
			Name:     "Jane Doe",
			Role:     models.RoleStudent,
		}
	}

	a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

	user, err := a.Authenticate(context.Background(), "janedoe", "secret123")
	require.NoError(t, err)
	assert.Equal(t, int64(99), user.ID, "loser of the race signs in as the winner's row")
}

func TestAuthenticator_Failures(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
	}{
		{"unknown username", "ghost", "whatever"},
		{"wrong password everywhere", "janedoe", "wrong"},
	}

	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	students := newFakeStudentRepo()
	students.students["janedoe"] = newTestStudent("janedoe", "Jane Doe", hashFor(t, "secret123"))

	a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
		})
	}
}

func TestAuthenticator_EmptyInput(t *testing.T) {
	a := newChain(newFakeUserRepo(), newFakeAdminRepo(), newFakeStudentRepo(),
		Options{LegacyFallbackOnMismatch: true})

	tests := []struct {
		name     string
		username string
		password string
	}{
		{"empty username", "", "secret123"},
		{"empty password", "janedoe", ""},
		{"both empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.Authenticate(context.Background(), tt.username, tt.password)
			assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
			assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
		})
	}
}

func TestAuthenticator_StorageFault(t *testing.T) {
	users := newFakeUserRepo()
	admins := newFakeAdminRepo()
	admins.findErr = errors.New("connection refused")
	students := newFakeStudentRepo()

	a := newChain(users, admins, students, Options{LegacyFallbackOnMismatch: true})

	_, err := a.Authenticate(context.Background(), "admin", "admin123")
	assert.ErrorIs(t, err, apperrors.ErrStorage)
	assert.NotErrorIs(t, err, apperrors.ErrInvalidCredentials)
}

func TestAuthenticator_ProvisioningFault(t *testing.T) {
	users := newFakeUserRepo()
	users.createErr = errors.New("disk full")
	admins := newFakeAdminRepo()
	admins.admins["admin"] = &models.Admin{
		Name: "Site Admin", Username: "admin",
		Password: hashFor(t, "admin123"), Role: "Admin",
	}

	a := newChain(users, admins, newFakeStudentRepo(), Options{LegacyFallbackOnMismatch: true})

	_, err := a.Authenticate(context.Background(), "admin", "admin123")
	assert.ErrorIs(t, err, apperrors.ErrProvisioning)
}

// newChain wires the fakes through the same constructor production uses.
func newChain(users *fakeUserRepo, admins *fakeAdminRepo, students *fakeStudentRepo, opts Options) *Authenticator {
	return NewAuthenticatorWithProviders(users, []CredentialProvider{
		NewIdentityProvider(users),
		NewLegacyAdminProvider(admins),
		NewLegacyStudentProvider(students),
	}, opts)
}
