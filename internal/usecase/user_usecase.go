package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/DRSN-tech/pos-backend/internal/domain"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"golang.org/x/crypto/bcrypt"
)

const (
	passwordHashCost = 10
	userImagesPrefix = "users"
	defaultImageMime = "image/png"
)

// UserUseCase реализует регистрацию, вход и управление учётными записями.
type UserUseCase struct {
	userRepo    UserRepository
	imagesInfra ImagesInfra
	logger      logger.Logger
	now         func() time.Time
}

func NewUserUC(userRepo UserRepository, imagesInfra ImagesInfra, logger logger.Logger) *UserUseCase {
	return &UserUseCase{
		userRepo:    userRepo,
		imagesInfra: imagesInfra,
		logger:      logger,
		now:         time.Now,
	}
}

// Signup создаёт пользователя с bcrypt-хэшем пароля и, если передано, изображением профиля в S3.
func (u *UserUseCase) Signup(ctx context.Context, req *SignupReq) (err error) {
	const op = "UserUseCase.Signup"

	username := strings.TrimSpace(req.Username)
	role := strings.TrimSpace(req.Role)
	if username == "" || req.Password == "" || role == "" {
		return e.Wrap(op, e.ErrMissingSignupFields)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return e.Wrap(op, err)
	}

	user := domain.NewUser(username, string(hash), role)
	user.Age = req.Age
	user.Gender = req.Gender
	user.Shift = req.Shift
	user.Date = u.now().UTC()
	if req.Date != nil {
		user.Date = *req.Date
	}

	var imageKeys []string
	// Если пользователь не сохранился, загруженное изображение становится мусором
	defer func() {
		if err != nil && len(imageKeys) > 0 {
			u.logger.Warnf("Cleaning up orphaned images after signup failure. username: %s, error: %v", username, err)
			u.imagesInfra.CleanupImages(imageKeys)
		}
	}()

	if req.Image != nil && len(req.Image.Data) > 0 {
		image := *req.Image
		if image.MimeType == "" {
			image.MimeType = defaultImageMime
		}

		res, err := u.imagesInfra.UploadImages(ctx, NewUploadImagesReq(userImagesPrefix+"/"+username, []UserImage{image}))
		if err != nil {
			return e.Wrap(op, err)
		}
		imageKeys = res.ImagesKeys
		user.Image = &domain.Image{ObjectKey: imageKeys[0], ContentType: image.MimeType, Size: int64(len(image.Data))}
	}

	if _, err = u.userRepo.Create(ctx, user); err != nil {
		return e.Wrap(op, err)
	}

	u.logger.Infof("user %s created with role %s", username, role)
	return nil
}

// Login проверяет пароль. Неизвестный пользователь и неверный пароль неразличимы для клиента.
func (u *UserUseCase) Login(ctx context.Context, req *LoginReq) (*UserInfo, error) {
	const op = "UserUseCase.Login"

	user, err := u.userRepo.FindByUsername(ctx, strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, e.ErrUserNotFound) {
			return nil, e.Wrap(op, e.ErrInvalidCredentials)
		}
		return nil, e.Wrap(op, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, e.Wrap(op, e.ErrInvalidCredentials)
	}

	info := ToUserInfo(user)
	return &info, nil
}

// ListUsers возвращает всех пользователей без хэшей паролей.
func (u *UserUseCase) ListUsers(ctx context.Context) ([]UserInfo, error) {
	const op = "UserUseCase.ListUsers"

	users, err := u.userRepo.List(ctx)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	result := make([]UserInfo, 0, len(users))
	for i := range users {
		result = append(result, ToUserInfo(&users[i]))
	}

	return result, nil
}

// DeleteUser удаляет пользователя и в фоне — его изображение.
func (u *UserUseCase) DeleteUser(ctx context.Context, id int64) error {
	const op = "UserUseCase.DeleteUser"

	if id <= 0 {
		return e.Wrap(op, e.ErrInvalidID)
	}

	user, err := u.userRepo.Delete(ctx, id)
	if err != nil {
		return e.Wrap(op, err)
	}

	if user.Image != nil && user.Image.ObjectKey != "" {
		u.imagesInfra.CleanupImages([]string{user.Image.ObjectKey})
	}

	return nil
}

// OpenImage открывает сохранённое изображение профиля.
func (u *UserUseCase) OpenImage(ctx context.Context, key string) (*ImageObject, error) {
	const op = "UserUseCase.OpenImage"

	if key == "" || strings.Contains(key, "..") {
		return nil, e.Wrap(op, e.ErrImageNotFound)
	}

	obj, err := u.imagesInfra.OpenImage(ctx, key)
	if err != nil {
		return nil, e.Wrap(op, err)
	}

	return obj, nil
}
