package handler

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"go-gin-marketplace/internal/domain"
	"go-gin-marketplace/internal/service"
	httpez "go-gin-marketplace/internal/transport/http/ez"
	resp "go-gin-marketplace/internal/transport/http/response"
)

type UserHandler struct {
	users UserStore
	authn gin.HandlerFunc
}

func NewUserHandler(users UserStore, authn gin.HandlerFunc) *UserHandler {
	return &UserHandler{users: users, authn: authn}
}

func (h *UserHandler) Priority() int { return 10 }

type signupReq struct {
	UID         string `json:"uid"         binding:"required"`
	FirstName   string `json:"firstName"   binding:"required"`
	LastName    string `json:"lastName"    binding:"required"`
	Email       string `json:"email"       binding:"required"`
	City        string `json:"city"        binding:"required"`
	Province    string `json:"province"    binding:"required"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

// updateUserReq uid 只允许原样回传，不能改；时间戳由服务端维护，回传的值直接丢弃
type updateUserReq struct {
	UID       *string         `json:"uid"`
	CreatedAt json.RawMessage `json:"createdAt"`
	UpdatedAt json.RawMessage `json:"updatedAt"`
	domain.UserPatch
}

type userOut struct {
	Message string       `json:"message"`
	User    *domain.User `json:"user"`
}

func (h *UserHandler) MountAPI(api *gin.RouterGroup) {
	ez := httpez.New(api)

	httpez.RegisterAction(ez, httpez.Action[signupReq, resp.MessageResp]{
		Method:   http.MethodPost,
		Path:     "/signup",
		Binder:   httpez.BindStrictJSON,
		Status:   http.StatusCreated,
		Messages: map[int]string{http.StatusInternalServerError: "Failed to save user"},
		Handler: func(c *gin.Context, in *signupReq) (resp.MessageResp, error) {
			if err := authorize(c, in.UID); err != nil {
				return resp.MessageResp{}, err
			}
			_, err := h.users.CreateUser(c.Request.Context(), service.CreateUserInput{
				UID:         in.UID,
				FirstName:   in.FirstName,
				LastName:    in.LastName,
				Email:       in.Email,
				City:        in.City,
				Province:    in.Province,
				PhoneNumber: in.PhoneNumber,
			})
			if err != nil {
				return resp.MessageResp{}, err
			}
			return resp.Message("User created successfully"), nil
		},
	}, h.authn)

	httpez.RegisterAction(ez, httpez.Action[struct{}, *domain.User]{
		Method: http.MethodGet,
		Path:   "/user/:uid",
		Binder: httpez.BindNone,
		Messages: map[int]string{
			http.StatusNotFound:            "User not found",
			http.StatusInternalServerError: "Failed to fetch user",
		},
		Handler: func(c *gin.Context, _ *struct{}) (*domain.User, error) {
			return h.users.GetUser(c.Request.Context(), c.Param("uid"))
		},
	})

	httpez.RegisterAction(ez, httpez.Action[updateUserReq, userOut]{
		Method: http.MethodPut,
		Path:   "/user/:uid",
		Binder: httpez.BindStrictJSON,
		Messages: map[int]string{
			http.StatusNotFound:            "User not found",
			http.StatusInternalServerError: "Failed to update user",
		},
		Handler: func(c *gin.Context, in *updateUserReq) (userOut, error) {
			uid := c.Param("uid")
			if in.UID != nil && *in.UID != uid {
				return userOut{}, domain.Invalid("uid", "cannot be changed")
			}
			if err := authorize(c, uid); err != nil {
				return userOut{}, err
			}
			u, err := h.users.UpdateUser(c.Request.Context(), uid, in.UserPatch)
			if err != nil {
				return userOut{}, err
			}
			return userOut{Message: "User updated successfully", User: u}, nil
		},
	}, h.authn)
}
