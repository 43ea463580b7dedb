package core

import (
	"context"
	"errors"
	"path"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"

	"ems/internal/domain/auth"
	"ems/internal/platform/apperr"
	"ems/internal/platform/storage"
)

var allowedPhotoExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

type RegisterInput struct {
	Code        string
	Name        string
	Email       string
	Mobile      string
	Gender      string
	DateOfBirth *time.Time
	RoleID      int64
	Password    string
}

type ProfileInput struct {
	Name        string
	Mobile      string
	Gender      string
	DateOfBirth *time.Time
	RoleID      int64
}

type Service struct {
	store  StoreAPI
	photos storage.Store
}

func NewService(store StoreAPI, photos storage.Store) *Service {
	return &Service{store: store, photos: photos}
}

func (s *Service) Register(ctx context.Context, in RegisterInput, actorID int64) (int64, error) {
	gender, err := ParseGender(in.Gender)
	if err != nil {
		return 0, apperr.Invalid("gender", "must be one of male, female, other")
	}
	if err := ValidatePassword(in.Password); err != nil {
		return 0, apperr.Invalid("password", err.Error())
	}
	if err := validateDOB(in.DateOfBirth); err != nil {
		return 0, err
	}
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return 0, apperr.Internal("password hashing failed", err)
	}
	return s.store.CreateEmployee(ctx, NewEmployee{
		Code:        strings.TrimSpace(in.Code),
		Name:        strings.TrimSpace(in.Name),
		Email:       strings.TrimSpace(in.Email),
		Mobile:      strings.TrimSpace(in.Mobile),
		Gender:      gender,
		DateOfBirth: in.DateOfBirth,
		RoleID:      in.RoleID,
	}, hash, actorID)
}

func (s *Service) GetEmployee(ctx context.Context, id int64) (Employee, error) {
	return s.store.GetEmployee(ctx, id)
}

func (s *Service) ListEmployees(ctx context.Context, filter EmployeeFilter) ([]Employee, int, error) {
	return s.store.ListEmployees(ctx, filter)
}

func (s *Service) UpdateProfile(ctx context.Context, id int64, in ProfileInput, actorID int64) error {
	gender, err := ParseGender(in.Gender)
	if err != nil {
		return apperr.Invalid("gender", "must be one of male, female, other")
	}
	if err := validateDOB(in.DateOfBirth); err != nil {
		return err
	}
	return s.store.UpdateProfile(ctx, id, ProfileUpdate{
		Name:        strings.TrimSpace(in.Name),
		Mobile:      strings.TrimSpace(in.Mobile),
		Gender:      gender,
		DateOfBirth: in.DateOfBirth,
		RoleID:      in.RoleID,
	}, actorID)
}

func (s *Service) ChangePassword(ctx context.Context, id int64, current, next string, actorID int64) error {
	hash, err := s.store.PasswordHash(ctx, id)
	if err != nil {
		return err
	}
	if err := auth.CheckPassword(hash, current); err != nil {
		return ErrWrongPassword
	}
	if err := ValidatePassword(next); err != nil {
		return apperr.Invalid("newPassword", err.Error())
	}
	newHash, err := auth.HashPassword(next)
	if err != nil {
		return apperr.Internal("password hashing failed", err)
	}
	return s.store.UpdatePassword(ctx, id, newHash, actorID)
}

// UploadPhoto stores the image as employees/{uuid}{ext} and records the key.
func (s *Service) UploadPhoto(ctx context.Context, id int64, fileName string, data []byte, actorID int64) (string, error) {
	ext := strings.ToLower(path.Ext(fileName))
	if _, ok := allowedPhotoExt[ext]; !ok {
		return "", apperr.Invalid("photo", "must be a .jpg, .jpeg or .png file")
	}
	if len(data) == 0 {
		return "", apperr.Invalid("photo", "must not be empty")
	}
	if _, err := s.store.GetEmployee(ctx, id); err != nil {
		return "", err
	}
	key := storage.Key("employees", uuid.NewString()+ext)
	if err := s.photos.Put(ctx, key, data); err != nil {
		return "", apperr.Storage("photo upload failed", err)
	}
	if err := s.store.UpdatePhotoPath(ctx, id, key, actorID); err != nil {
		_ = s.photos.Delete(ctx, key)
		return "", err
	}
	return key, nil
}

func (s *Service) Deactivate(ctx context.Context, id, actorID int64) error {
	return s.store.DeactivateEmployee(ctx, id, actorID)
}

func (s *Service) ListDepartments(ctx context.Context, activeOnly bool, limit, offset int) ([]Department, int, error) {
	return s.store.ListDepartments(ctx, activeOnly, limit, offset)
}

func (s *Service) GetDepartment(ctx context.Context, id int64) (Department, error) {
	return s.store.GetDepartment(ctx, id)
}

func (s *Service) CreateDepartment(ctx context.Context, name string, actorID int64) (int64, error) {
	return s.store.CreateDepartment(ctx, strings.TrimSpace(name), actorID)
}

func (s *Service) UpdateDepartment(ctx context.Context, id int64, name string, active bool, actorID int64) error {
	return s.store.UpdateDepartment(ctx, id, strings.TrimSpace(name), active, actorID)
}

func (s *Service) DeactivateDepartment(ctx context.Context, id, actorID int64) error {
	return s.store.DeactivateDepartment(ctx, id, actorID)
}

func (s *Service) ListRoles(ctx context.Context, activeOnly bool, limit, offset int) ([]Role, int, error) {
	return s.store.ListRoles(ctx, activeOnly, limit, offset)
}

func (s *Service) GetRole(ctx context.Context, id int64) (Role, error) {
	return s.store.GetRole(ctx, id)
}

func (s *Service) CreateRole(ctx context.Context, name string, actorID int64) (int64, error) {
	return s.store.CreateRole(ctx, strings.TrimSpace(name), actorID)
}

func (s *Service) UpdateRole(ctx context.Context, id int64, name string, active bool, actorID int64) error {
	return s.store.UpdateRole(ctx, id, strings.TrimSpace(name), active, actorID)
}

func (s *Service) DeactivateRole(ctx context.Context, id, actorID int64) error {
	return s.store.DeactivateRole(ctx, id, actorID)
}

func (s *Service) AssignDepartments(ctx context.Context, employeeID int64, departmentIDs []int64, actorID int64) ([]Assignment, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	if err := s.store.AssignDepartments(ctx, employeeID, dedupeIDs(departmentIDs), actorID); err != nil {
		return nil, err
	}
	return s.store.ListEmployeeDepartments(ctx, employeeID)
}

func (s *Service) ListAssignments(ctx context.Context, employeeID int64) ([]Assignment, error) {
	if _, err := s.store.GetEmployee(ctx, employeeID); err != nil {
		return nil, err
	}
	return s.store.ListEmployeeDepartments(ctx, employeeID)
}

func (s *Service) ListAllAssignments(ctx context.Context, limit, offset int) ([]Assignment, int, error) {
	return s.store.ListAllAssignments(ctx, limit, offset)
}

func (s *Service) RemoveAssignment(ctx context.Context, employeeID, departmentID, actorID int64) error {
	return s.store.RemoveAssignment(ctx, employeeID, departmentID, actorID)
}

func validateDOB(dob *time.Time) error {
	if dob != nil && dob.After(time.Now()) {
		return apperr.Invalid("dateOfBirth", "must be in the past")
	}
	return nil
}

// maxPasswordBytes is the longest input bcrypt will hash.
const maxPasswordBytes = 72

// ValidatePassword requires 8 to 72 bytes with upper, lower and digit.
func ValidatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("must be at least 8 characters")
	}
	if len(password) > maxPasswordBytes {
		return errors.New("must be at most 72 bytes")
	}
	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasUpper || !hasLower || !hasDigit {
		return errors.New("must contain upper case, lower case and a number")
	}
	return nil
}

func dedupeIDs(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
