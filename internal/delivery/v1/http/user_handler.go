package http

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/DRSN-tech/pos-backend/internal/usecase"
	"github.com/DRSN-tech/pos-backend/pkg/e"
	"github.com/DRSN-tech/pos-backend/pkg/logger"
	"github.com/go-chi/chi/v5"
)

const (
	maxSignupMemory = 8 << 20
	// запас сверх изображения на текстовые поля формы
	signupFormOverhead = 1 << 20
)

type UserHandler struct {
	userUsecase  usecase.UserUC
	logger       logger.Logger
	maxImageSize int64
}

func NewUserHandler(userUsecase usecase.UserUC, logger logger.Logger, maxImageSize int64) *UserHandler {
	return &UserHandler{userUsecase: userUsecase, logger: logger, maxImageSize: maxImageSize}
}

// signup
//
//	@Summary		Регистрация пользователя
//	@Description	Создаёт пользователя. Пароль хранится в виде bcrypt-хэша, изображение уходит в S3
//	@Tags			users
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			username	formData	string			true	"Логин"
//	@Param			password	formData	string			true	"Пароль"
//	@Param			role		formData	string			true	"Роль"
//	@Param			age			formData	string			false	"Возраст"
//	@Param			gender		formData	string			false	"Пол"
//	@Param			date		formData	string			false	"Дата (RFC3339 или 2006-01-02)"
//	@Param			shift		formData	string			false	"Смена"
//	@Param			image		formData	file			false	"Изображение профиля"
//	@Success		201			{object}	MessageResponse	"Пользователь создан"
//	@Failure		400			{object}	ErrorResponse	"Не заполнены поля или логин занят"
//	@Failure		413			{object}	ErrorResponse	"Слишком большое изображение"
//	@Failure		415			{object}	ErrorResponse	"Неподдерживаемый формат изображения"
//	@Failure		500			{object}	ErrorResponse
//	@Router			/signup [post]
func (u *UserHandler) signup(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, u.maxImageSize+signupFormOverhead)

	req, err := u.parseSignup(r)
	if err != nil {
		u.logger.Warnf("signup rejected: %v", err)
		WriteError(w, err)
		return
	}

	if err := u.userUsecase.Signup(r.Context(), req); err != nil {
		u.writeUCError(w, err)
		return
	}

	WriteSuccess(w, http.StatusCreated, NewMessageResponse("User created successfully"))
}

// parseSignup принимает multipart/form-data, urlencoded форму или JSON.
func (u *UserHandler) parseSignup(r *http.Request) (*usecase.SignupReq, error) {
	contentType := r.Header.Get("Content-Type")

	if strings.HasPrefix(contentType, "application/json") {
		var body signupJSON
		if err := decodeJSON(r, &body); err != nil {
			return nil, err
		}
		return &usecase.SignupReq{
			Username: body.Username,
			Password: body.Password,
			Role:     body.Role,
			Age:      body.Age,
			Gender:   body.Gender,
			Date:     body.Date.Ptr(),
			Shift:    body.Shift,
		}, nil
	}

	if strings.HasPrefix(contentType, "multipart/form-data") {
		if err := ensureMultipartForm(r, maxSignupMemory); err != nil {
			return nil, err
		}
	} else if err := r.ParseForm(); err != nil {
		return nil, e.Wrap(err.Error(), e.ErrStatusBadRequest)
	}

	req := &usecase.SignupReq{
		Username: r.FormValue("username"),
		Password: r.FormValue("password"),
		Role:     r.FormValue("role"),
		Age:      r.FormValue("age"),
		Gender:   r.FormValue("gender"),
		Shift:    r.FormValue("shift"),
	}

	if raw := strings.TrimSpace(r.FormValue("date")); raw != "" {
		date, err := parseDate(raw)
		if err != nil {
			return nil, e.Wrap(err.Error(), e.ErrStatusBadRequest)
		}
		req.Date = &date
	}

	if r.MultipartForm != nil {
		if files := r.MultipartForm.File["image"]; len(files) > 0 {
			data, mimeType, err := readFile(files[0], u.maxImageSize)
			if err != nil {
				return nil, err
			}
			req.Image = &usecase.UserImage{Data: data, MimeType: mimeType, Name: files[0].Filename}
		}
	}

	return req, nil
}

// login
//
//	@Summary	Вход
//	@Tags		users
//	@Accept		json
//	@Produce	json
//	@Param		credentials	body		LoginRequest	true	"Логин и пароль"
//	@Success	200			{object}	UserResponse
//	@Failure	401			{object}	ErrorResponse	"Неверный логин или пароль"
//	@Failure	500			{object}	ErrorResponse
//	@Router		/login [post]
func (u *UserHandler) login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	info, err := u.userUsecase.Login(r.Context(), &usecase.LoginReq{Username: req.Username, Password: req.Password})
	if err != nil {
		u.writeUCError(w, err)
		return
	}

	res := toUserResponse(*info)
	res.ID = 0
	WriteSuccess(w, http.StatusOK, res)
}

// listUsers
//
//	@Summary	Список пользователей
//	@Tags		users
//	@Produce	json
//	@Success	200	{object}	UsersResponse
//	@Failure	500	{object}	ErrorResponse
//	@Router		/users [get]
func (u *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := u.userUsecase.ListUsers(r.Context())
	if err != nil {
		u.writeUCError(w, err)
		return
	}

	res := UsersResponse{Users: make([]UserResponse, 0, len(users))}
	for _, user := range users {
		res.Users = append(res.Users, toUserResponse(user))
	}

	WriteSuccess(w, http.StatusOK, res)
}

// deleteUser
//
//	@Summary	Удаление пользователя
//	@Tags		users
//	@Produce	json
//	@Param		id	path		int	true	"ID пользователя"
//	@Success	200	{object}	MessageResponse
//	@Failure	400	{object}	ErrorResponse
//	@Failure	404	{object}	ErrorResponse	"Пользователь не найден"
//	@Failure	500	{object}	ErrorResponse
//	@Router		/users/{id} [delete]
func (u *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		WriteError(w, e.Wrap(chi.URLParam(r, "id"), e.ErrInvalidID))
		return
	}

	if err := u.userUsecase.DeleteUser(r.Context(), id); err != nil {
		u.writeUCError(w, err)
		return
	}

	WriteSuccess(w, http.StatusOK, NewMessageResponse("User deleted successfully"))
}

// serveImage отдаёт изображение профиля из S3 по ключу из пути /uploads/*.
//
//	@Summary	Изображение профиля
//	@Tags		users
//	@Produce	octet-stream
//	@Param		key	path	string	true	"Ключ объекта"
//	@Success	200	{file}	binary
//	@Failure	404	{string}	string	"404 - Not Found"
//	@Router		/uploads/{key} [get]
func (u *UserHandler) serveImage(w http.ResponseWriter, r *http.Request) {
	obj, err := u.userUsecase.OpenImage(r.Context(), chi.URLParam(r, "*"))
	if err != nil {
		if code, _ := ToHTTPResponse(err); code != http.StatusNotFound {
			u.logger.Errorf(err, "open image failed")
		}
		writeText(w, http.StatusNotFound, notFoundBody)
		return
	}
	defer obj.Body.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	if obj.Size > 0 {
		w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	}
	w.WriteHeader(http.StatusOK)

	if _, err := io.Copy(w, obj.Body); err != nil {
		u.logger.Warnf("image stream interrupted: %v", err)
	}
}

func (u *UserHandler) writeUCError(w http.ResponseWriter, err error) {
	code, _ := ToHTTPResponse(err)
	if code >= http.StatusInternalServerError {
		u.logger.Errorf(err, "user request failed")
	} else {
		u.logger.Warnf("%d %s", code, err.Error())
	}
	WriteError(w, err)
}
