package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/yigit/studentms/internal/app/models"
	"github.com/yigit/studentms/internal/app/models/dto"
	"github.com/yigit/studentms/internal/app/repositories"
	"github.com/yigit/studentms/internal/pkg/apperrors"
)

type memStudentRepo struct {
	students map[int64]*models.Student
	nextID   int64
}

func newMemStudentRepo() *memStudentRepo {
	return &memStudentRepo{students: map[int64]*models.Student{}, nextID: 1}
}

func (m *memStudentRepo) Create(_ context.Context, student *models.Student) (int64, error) {
	for _, s := range m.students {
		if s.Username == student.Username {
			return 0, apperrors.ErrUsernameTaken
		}
	}
	id := m.nextID
	m.nextID++
	stored := *student
	stored.ID = id
	m.students[id] = &stored
	return id, nil
}

func (m *memStudentRepo) CreateTx(ctx context.Context, _ pgx.Tx, student *models.Student) (int64, error) {
	return m.Create(ctx, student)
}

func (m *memStudentRepo) GetByID(_ context.Context, id int64) (*models.Student, error) {
	if s, ok := m.students[id]; ok {
		copied := *s
		if copied.Department == nil {
			copied.Department = &models.Department{ID: s.DepartmentID, Name: "Computer Science"}
		}
		return &copied, nil
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *memStudentRepo) GetByUsername(_ context.Context, username string) (*models.Student, error) {
	for _, s := range m.students {
		if s.Username == username {
			copied := *s
			if copied.Department == nil {
				copied.Department = &models.Department{ID: s.DepartmentID, Name: "Computer Science"}
			}
			return &copied, nil
		}
	}
	return nil, apperrors.ErrStudentNotFound
}

func (m *memStudentRepo) GetAll(_ context.Context, filter repositories.StudentFilter) ([]*models.Student, error) {
	out := []*models.Student{}
	for _, s := range m.students {
		if filter.DepartmentID > 0 && s.DepartmentID != filter.DepartmentID {
			continue
		}
		// Every fake record sits in the Computer Science department.
		if filter.DepartmentName != "" && !strings.EqualFold(filter.DepartmentName, "Computer Science") {
			continue
		}
		if filter.Semester > 0 && s.Semester != filter.Semester {
			continue
		}
		if filter.MinCGPA != nil && s.CGPA.LessThan(*filter.MinCGPA) {
			continue
		}
		copied := *s
		copied.Department = &models.Department{ID: s.DepartmentID, Name: "Computer Science"}
		out = append(out, &copied)
	}
	return out, nil
}

func (m *memStudentRepo) Count(_ context.Context) (int, error) {
	return len(m.students), nil
}

func (m *memStudentRepo) Update(_ context.Context, student *models.Student) error {
	if _, ok := m.students[student.ID]; !ok {
		return apperrors.ErrStudentNotFound
	}
	for _, s := range m.students {
		if s.ID != student.ID && s.Username == student.Username {
			return apperrors.ErrUsernameTaken
		}
	}
	stored := *student
	m.students[student.ID] = &stored
	return nil
}

func (m *memStudentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.students[id]; !ok {
		return apperrors.ErrStudentNotFound
	}
	delete(m.students, id)
	return nil
}

func (m *memStudentRepo) UsernameExists(_ context.Context, username string, excludeID int64) (bool, error) {
	for _, s := range m.students {
		if s.Username == username && s.ID != excludeID {
			return true, nil
		}
	}
	return false, nil
}

type memUserRepo struct {
	users  map[string]*models.User
	nextID int64
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*models.User{}, nextID: 1}
}

func (m *memUserRepo) Create(_ context.Context, user *models.User) (int64, error) {
	if _, ok := m.users[user.Username]; ok {
		return 0, apperrors.ErrUsernameTaken
	}
	id := m.nextID
	m.nextID++
	stored := *user
	stored.ID = id
	m.users[user.Username] = &stored
	return id, nil
}

func (m *memUserRepo) CreateTx(ctx context.Context, _ pgx.Tx, user *models.User) (int64, error) {
	return m.Create(ctx, user)
}

func (m *memUserRepo) GetByID(_ context.Context, id int64) (*models.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUserRepo) GetByUsername(_ context.Context, username string) (*models.User, error) {
	if u, ok := m.users[username]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

func (m *memUserRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	_, ok := m.users[username]
	return ok, nil
}

func (m *memUserRepo) UpdateRole(_ context.Context, userID int64, role models.Role) error {
	for _, u := range m.users {
		if u.ID == userID {
			u.Role = role
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func (m *memUserRepo) UpdateLastLogin(_ context.Context, _ int64) error { return nil }

func (m *memUserRepo) Delete(_ context.Context, id int64) error {
	for name, u := range m.users {
		if u.ID == id {
			delete(m.users, name)
			return nil
		}
	}
	return apperrors.ErrUserNotFound
}

func (m *memUserRepo) DeleteByUsername(_ context.Context, username string) error {
	delete(m.users, username)
	return nil
}

type memAdminRepo struct {
	usernames map[string]bool
}

func (m *memAdminRepo) Create(_ context.Context, admin *models.Admin) (int64, error) {
	m.usernames[admin.Username] = true
	return 1, nil
}

func (m *memAdminRepo) GetByUsername(_ context.Context, username string) (*models.Admin, error) {
	if m.usernames[username] {
		return &models.Admin{Username: username}, nil
	}
	return nil, apperrors.ErrAccountNotFound
}

func (m *memAdminRepo) UsernameExists(_ context.Context, username string) (bool, error) {
	return m.usernames[username], nil
}

type memDepartmentRepo struct {
	departments map[int64]*models.Department
	counts      map[int64]int
}

func newMemDepartmentRepo() *memDepartmentRepo {
	return &memDepartmentRepo{
		departments: map[int64]*models.Department{
			1: {ID: 1, Name: "Computer Science"},
			2: {ID: 2, Name: "Electrical Engineering"},
		},
		counts: map[int64]int{},
	}
}

func (m *memDepartmentRepo) Create(_ context.Context, department *models.Department) (int64, error) {
	for _, d := range m.departments {
		if d.Name == department.Name {
			return 0, apperrors.ErrDepartmentAlreadyExists
		}
	}
	id := int64(len(m.departments) + 1)
	m.departments[id] = &models.Department{ID: id, Name: department.Name}
	return id, nil
}

func (m *memDepartmentRepo) GetByID(_ context.Context, id int64) (*models.Department, error) {
	if d, ok := m.departments[id]; ok {
		return d, nil
	}
	return nil, apperrors.ErrDepartmentNotFound
}

func (m *memDepartmentRepo) GetAll(_ context.Context) ([]*models.Department, error) {
	out := []*models.Department{}
	for _, d := range m.departments {
		out = append(out, d)
	}
	return out, nil
}

func (m *memDepartmentRepo) Count(_ context.Context) (int, error) {
	return len(m.departments), nil
}

func (m *memDepartmentRepo) Update(_ context.Context, department *models.Department) error {
	if _, ok := m.departments[department.ID]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	m.departments[department.ID] = department
	return nil
}

func (m *memDepartmentRepo) Delete(_ context.Context, id int64) error {
	if _, ok := m.departments[id]; !ok {
		return apperrors.ErrDepartmentNotFound
	}
	if m.counts[id] > 0 {
		return apperrors.ErrDepartmentHasStudents
	}
	delete(m.departments, id)
	return nil
}

func (m *memDepartmentRepo) StudentCount(_ context.Context, departmentID int64) (int, error) {
	return m.counts[departmentID], nil
}

func newStudentService(t *testing.T) (*StudentService, *memStudentRepo, *memUserRepo) {
	t.Helper()
	studentRepo := newMemStudentRepo()
	userRepo := newMemUserRepo()
	adminRepo := &memAdminRepo{usernames: map[string]bool{"admin": true}}
	return NewStudentService(studentRepo, userRepo, adminRepo, newMemDepartmentRepo(), zerolog.Nop()), studentRepo, userRepo
}

func seedStudent(t *testing.T, repo *memStudentRepo, username string, role models.Role) int64 {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	require.NoError(t, err)
	id, err := repo.Create(context.Background(), &models.Student{
		Name:         "Jane Doe",
		Username:     username,
		Role:         role,
		Course:       "B.Tech CSE",
		Semester:     4,
		CGPA:         decimal.RequireFromString("3.50"),
		DOB:          time.Date(2003, 6, 15, 0, 0, 0, 0, time.UTC),
		Hometown:     "Pune",
		PhoneNumber:  "+911234567890",
		Password:     string(hash),
		DepartmentID: 1,
	})
	require.NoError(t, err)
	return id
}

func updateRequestFor(username, role string) *dto.UpdateStudentRequest {
	return &dto.UpdateStudentRequest{
		Name:         "Jane Doe",
		Username:     username,
		Role:         role,
		Course:       "B.Tech CSE",
		Semester:     4,
		CGPA:         "3.50",
		DOB:          "2003-06-15",
		Hometown:     "Pune",
		PhoneNumber:  "+911234567890",
		DepartmentID: 1,
	}
}

func TestStudentService_CreateStudent(t *testing.T) {
	svc, _, userRepo := newStudentService(t)

	req := &dto.CreateStudentRequest{
		Name:         "Jane Doe",
		Username:     "janedoe",
		Course:       "B.Tech CSE",
		Semester:     4,
		CGPA:         "3.75",
		DOB:          "2003-06-15",
		Hometown:     "Pune",
		PhoneNumber:  "+911234567890",
		Password:     "secret123",
		DepartmentID: 1,
	}

	resp, err := svc.CreateStudent(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "janedoe", resp.Username)
	assert.Equal(t, "3.75", resp.CGPA)
	assert.Equal(t, "Student", resp.Role)

	// No identity account until the student signs in.
	exists, err := userRepo.UsernameExists(context.Background(), "janedoe")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestStudentService_CreateStudent_Validation(t *testing.T) {
	svc, repo, _ := newStudentService(t)
	seedStudent(t, repo, "taken", models.RoleStudent)

	base := func() *dto.CreateStudentRequest {
		return &dto.CreateStudentRequest{
			Name: "Jane Doe", Username: "janedoe", Course: "B.Tech CSE",
			Semester: 4, CGPA: "3.75", DOB: "2003-06-15", Hometown: "Pune",
			PhoneNumber: "+911234567890", Password: "secret123", DepartmentID: 1,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*dto.CreateStudentRequest)
		field   string
		wantErr error
	}{
		{"cgpa above range", func(r *dto.CreateStudentRequest) { r.CGPA = "4.01" }, "cgpa", apperrors.ErrValidationFailed},
		{"cgpa not a number", func(r *dto.CreateStudentRequest) { r.CGPA = "high" }, "cgpa", apperrors.ErrValidationFailed},
		{"semester out of range", func(r *dto.CreateStudentRequest) { r.Semester = 9 }, "semester", apperrors.ErrValidationFailed},
		{"bad phone", func(r *dto.CreateStudentRequest) { r.PhoneNumber = "phone" }, "phoneNumber", apperrors.ErrValidationFailed},
		{"bad dob", func(r *dto.CreateStudentRequest) { r.DOB = "15/06/2003" }, "dob", apperrors.ErrValidationFailed},
		{"short password", func(r *dto.CreateStudentRequest) { r.Password = "abc" }, "password", apperrors.ErrValidationFailed},
		{"unknown department", func(r *dto.CreateStudentRequest) { r.DepartmentID = 99 }, "departmentId", apperrors.ErrValidationFailed},
		{"username taken by student", func(r *dto.CreateStudentRequest) { r.Username = "taken" }, "username", apperrors.ErrConflict},
		{"username taken by admin", func(r *dto.CreateStudentRequest) { r.Username = "admin" }, "username", apperrors.ErrConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := base()
			tt.mutate(req)
			_, err := svc.CreateStudent(context.Background(), req)
			require.ErrorIs(t, err, tt.wantErr)

			var customErr *apperrors.CustomError
			require.ErrorAs(t, err, &customErr)
			assert.Equal(t, tt.field, customErr.Field)
		})
	}
}

func TestStudentService_UpdateStudent_RolePropagation(t *testing.T) {
	svc, studentRepo, userRepo := newStudentService(t)
	id := seedStudent(t, studentRepo, "janedoe", models.RoleStudent)

	// The student has signed in before, so an identity account exists.
	_, err := userRepo.Create(context.Background(), &models.User{
		Username: "janedoe",
		Email:    "janedoe@studentms.edu",
		Name:     "Jane Doe",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	resp, err := svc.UpdateStudent(context.Background(), id, updateRequestFor("janedoe", "Admin"))
	require.NoError(t, err)
	assert.Equal(t, "Admin", resp.Role)

	user, err := userRepo.GetByUsername(context.Background(), "janedoe")
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, user.Role, "role change follows through to the identity account")
}

func TestStudentService_UpdateStudent_NoIdentityAccount(t *testing.T) {
	svc, studentRepo, userRepo := newStudentService(t)
	id := seedStudent(t, studentRepo, "janedoe", models.RoleStudent)

	// Never signed in: update succeeds without touching the identity store.
	_, err := svc.UpdateStudent(context.Background(), id, updateRequestFor("janedoe", "Admin"))
	require.NoError(t, err)

	_, err = userRepo.GetByUsername(context.Background(), "janedoe")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestStudentService_UpdateStudent_UsernameChange(t *testing.T) {
	svc, studentRepo, userRepo := newStudentService(t)
	id := seedStudent(t, studentRepo, "janedoe", models.RoleStudent)

	_, err := userRepo.Create(context.Background(), &models.User{
		Username: "janedoe",
		Email:    "janedoe@studentms.edu",
		Name:     "Jane Doe",
		Role:     models.RoleStudent,
	})
	require.NoError(t, err)

	resp, err := svc.UpdateStudent(context.Background(), id, updateRequestFor("jdoe", "Student"))
	require.NoError(t, err)
	assert.Equal(t, "jdoe", resp.Username)

	// The identity row keyed by the old username is dropped; the next
	// sign-in re-promotes under the new name.
	_, err = userRepo.GetByUsername(context.Background(), "janedoe")
	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
}

func TestStudentService_UpdateStudent_UsernameConflict(t *testing.T) {
	svc, studentRepo, _ := newStudentService(t)
	seedStudent(t, studentRepo, "first", models.RoleStudent)
	secondID := seedStudent(t, studentRepo, "second", models.RoleStudent)

	_, err := svc.UpdateStudent(context.Background(), secondID, updateRequestFor("first", "Student"))
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestStudentService_UpdateStudent_KeepsPasswordWhenEmpty(t *testing.T) {
	svc, studentRepo, _ := newStudentService(t)
	id := seedStudent(t, studentRepo, "janedoe", models.RoleStudent)
	original := studentRepo.students[id].Password

	_, err := svc.UpdateStudent(context.Background(), id, updateRequestFor("janedoe", "Student"))
	require.NoError(t, err)

	assert.Equal(t, original, studentRepo.students[id].Password)
}

func TestStudentService_DeleteStudent(t *testing.T) {
	t.Run("deleting another student keeps the identity account", func(t *testing.T) {
		svc, studentRepo, userRepo := newStudentService(t)
		id := seedStudent(t, studentRepo, "janedoe", models.RoleStudent)
		_, err := userRepo.Create(context.Background(), &models.User{Username: "janedoe", Role: models.RoleStudent})
		require.NoError(t, err)

		selfDeleted, err := svc.DeleteStudent(context.Background(), id, "admin")
		require.NoError(t, err)
		assert.False(t, selfDeleted)

		_, err = studentRepo.GetByID(context.Background(), id)
		assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
		_, err = userRepo.GetByUsername(context.Background(), "janedoe")
		assert.NoError(t, err, "only a self-delete removes the identity row")
	})

	t.Run("deleting own record cascades to the identity account", func(t *testing.T) {
		svc, studentRepo, userRepo := newStudentService(t)
		id := seedStudent(t, studentRepo, "janedoe", models.RoleAdmin)
		_, err := userRepo.Create(context.Background(), &models.User{Username: "janedoe", Role: models.RoleAdmin})
		require.NoError(t, err)

		selfDeleted, err := svc.DeleteStudent(context.Background(), id, "janedoe")
		require.NoError(t, err)
		assert.True(t, selfDeleted)

		_, err = userRepo.GetByUsername(context.Background(), "janedoe")
		assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	})

	t.Run("missing record", func(t *testing.T) {
		svc, _, _ := newStudentService(t)
		_, err := svc.DeleteStudent(context.Background(), 42, "admin")
		assert.ErrorIs(t, err, apperrors.ErrStudentNotFound)
	})
}

func TestStudentService_GetStudents_Filters(t *testing.T) {
	svc, studentRepo, _ := newStudentService(t)
	seedStudent(t, studentRepo, "low", models.RoleStudent)
	highID := seedStudent(t, studentRepo, "high", models.RoleStudent)
	studentRepo.students[highID].CGPA = decimal.RequireFromString("3.90")

	resp, err := svc.GetStudents(context.Background(), &dto.StudentFilterRequest{MinCGPA: "3.80"})
	require.NoError(t, err)
	require.Len(t, resp.Students, 1)
	assert.Equal(t, "high", resp.Students[0].Username)

	_, err = svc.GetStudents(context.Background(), &dto.StudentFilterRequest{MinCGPA: "banana"})
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStudentService_SearchByDepartment(t *testing.T) {
	svc, studentRepo, _ := newStudentService(t)
	seedStudent(t, studentRepo, "janedoe", models.RoleStudent)
	seedStudent(t, studentRepo, "johndoe", models.RoleStudent)

	resp, err := svc.SearchByDepartment(context.Background(), "computer science")
	require.NoError(t, err)
	assert.Equal(t, 2, resp.Total)

	resp, err = svc.SearchByDepartment(context.Background(), "History")
	require.NoError(t, err)
	assert.Empty(t, resp.Students)

	_, err = svc.SearchByDepartment(context.Background(), "  ")
	assert.ErrorIs(t, err, apperrors.ErrValidationFailed)
}

func TestStudentService_GetDashboard(t *testing.T) {
	svc, studentRepo, _ := newStudentService(t)
	seedStudent(t, studentRepo, "janedoe", models.RoleStudent)

	resp, err := svc.GetDashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, resp.TotalStudents)
	assert.Equal(t, 2, resp.TotalDepartments)
	require.Len(t, resp.Students, 1)
}
