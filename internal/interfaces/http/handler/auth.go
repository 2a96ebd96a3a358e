package handler

import (
	"time"

	"github.com/gin-gonic/gin"

	identityapp "github.com/tutorcenter/backend/internal/application/identity"
	"github.com/tutorcenter/backend/internal/domain/identity"
	"github.com/tutorcenter/backend/internal/interfaces/http/middleware"
)

// AuthHandler handles registration, login and session endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *identityapp.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

// RegisterRequest is the teacher self-registration body
type RegisterRequest struct {
	Name     string `json:"name" binding:"required,max=200" example:"Amina Belkacem"`
	Email    string `json:"email" binding:"required,email" example:"amina@example.com"`
	Password string `json:"password" binding:"required,min=8,max=128" example:"s3cret-pass"`
	Subject  string `json:"subject" binding:"max=100" example:"Mathematics"`
	Phone    string `json:"phone" binding:"max=30" example:"+213555000111"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"admin@tutorcenter.example"`
	Password string `json:"password" binding:"required" example:"s3cret-pass"`
}

// LoginResponse carries the issued access token and the user profile
type LoginResponse struct {
	AccessToken string               `json:"accessToken"`
	TokenType   string               `json:"tokenType" example:"Bearer"`
	ExpiresAt   time.Time            `json:"expiresAt"`
	User        identityapp.UserInfo `json:"user"`
}

// Register godoc
// @Summary      Register a teacher account
// @Description  Creates a teacher account awaiting admin approval
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body RegisterRequest true "Registration details"
// @Success      201 {object} dto.Response{data=identityapp.UserInfo}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      409 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/register [post]
func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	info, err := h.authService.Register(c.Request.Context(), identityapp.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Subject:  req.Subject,
		Phone:    req.Phone,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, info)
}

// Login godoc
// @Summary      Log in
// @Description  Authenticates with email and password and returns a bearer token
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} dto.Response{data=LoginResponse}
// @Failure      400 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      429 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginInput{
		Email:    req.Email,
		Password: req.Password,
		IP:       c.ClientIP(),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, LoginResponse{
		AccessToken: result.AccessToken,
		TokenType:   result.TokenType,
		ExpiresAt:   result.ExpiresAt,
		User:        result.User,
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Revokes the presented access token
// @Tags         auth
// @Security     BearerAuth
// @Success      204
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	in := identityapp.LogoutInput{UserID: actor.UserID}
	if claims := middleware.GetJWTClaims(c); claims != nil {
		in.TokenJTI = claims.ID
		in.TTL = claims.GetRemainingTTL()
	}
	if err := h.authService.Logout(c.Request.Context(), in); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Me godoc
// @Summary      Current user
// @Description  Returns the profile of the authenticated user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} dto.Response{data=identityapp.UserInfo}
// @Failure      401 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /auth/me [get]
func (h *AuthHandler) Me(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	info, err := h.authService.GetCurrentUser(c.Request.Context(), actor)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, info)
}

// UserHandler handles teacher account administration
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// TeacherListQuery filters the teacher listing
type TeacherListQuery struct {
	Status string `form:"status" binding:"omitempty,oneof=pending approved suspended" example:"pending"`
}

// ListTeachers godoc
// @Summary      List teachers
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        status query string false "Approval status" Enums(pending, approved, suspended)
// @Success      200 {object} dto.Response{data=[]identityapp.UserInfo}
// @Failure      403 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /users/teachers [get]
func (h *UserHandler) ListTeachers(c *gin.Context) {
	actor, ok := h.principal(c)
	if !ok {
		return
	}
	var q TeacherListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	var status *identity.ApprovalStatus
	if q.Status != "" {
		s := identity.ApprovalStatus(q.Status)
		status = &s
	}

	teachers, err := h.userService.ListTeachers(c.Request.Context(), actor, status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, teachers)
}

// Approve godoc
// @Summary      Approve a teacher
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identityapp.UserInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /users/{id}/approve [post]
func (h *UserHandler) Approve(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.userService.Approve, identityView)
}

// Suspend godoc
// @Summary      Suspend a teacher
// @Description  Suspends the account and revokes its outstanding tokens
// @Tags         users
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID" format(uuid)
// @Success      200 {object} dto.Response{data=identityapp.UserInfo}
// @Failure      404 {object} dto.Response{error=dto.ErrorInfo}
// @Failure      422 {object} dto.Response{error=dto.ErrorInfo}
// @Router       /users/{id}/suspend [post]
func (h *UserHandler) Suspend(c *gin.Context) {
	idAction(&h.BaseHandler, c, h.userService.Suspend, identityView)
}

func identityView(u *identityapp.UserInfo) any { return u }
