package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/oauth2"

	"github.com/whi-0404/TopCV-sub000/internal/database"
	"github.com/whi-0404/TopCV-sub000/internal/model"
	"github.com/whi-0404/TopCV-sub000/internal/utilities"
)

// OauthLoginHandler exchanges a Google authorization code for an account.
// New users are created as applicants; employer accounts must register
// locally so a company profile gets attached.
type OauthLoginHandler struct {
	DB          *database.DBinstanceStruct
	Config      *oauth2.Config
	UserInfoURL string
}

// NewOauthLoginHandler creates a new instance of OauthLoginHandler
func NewOauthLoginHandler(db *database.DBinstanceStruct, config *oauth2.Config, userInfoURL string) *OauthLoginHandler {
	return &OauthLoginHandler{DB: db, Config: config, UserInfoURL: userInfoURL}
}

type googleUserInfo struct {
	GID   string `json:"sub"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

func (h *OauthLoginHandler) exchangeUserInfo(ctx context.Context, code string) (googleUserInfo, error) {
	var info googleUserInfo

	token, err := h.Config.Exchange(ctx, code)
	if err != nil {
		return info, fmt.Errorf("failed to exchange authorization code: %w", err)
	}

	resp, err := h.Config.Client(ctx, token).Get(h.UserInfoURL)
	if err != nil {
		return info, fmt.Errorf("failed to fetch user info: %w", err)
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return info, fmt.Errorf("failed to decode user info: %w", err)
	}
	return info, nil
}

// GoogleLoginHandler handles sign-in with a Google authorization code.
// @Summary Login or register through Google
// @Tags Auth
// @Accept json
// @Produce json
// @Success 200 {object} map[string]interface{} "User and access token"
// @Failure 400 {object} utilities.ErrorResponse "No or invalid authorization code"
// @Failure 500 {object} utilities.ErrorResponse "Database error"
// @Router /auth/google [post]
func (h *OauthLoginHandler) GoogleLoginHandler(c *gin.Context) {
	var body struct {
		Code string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{
			Error: fmt.Sprintf("No authorization code provided: %s", err.Error()),
		})
		return
	}

	info, err := h.exchangeUserInfo(c.Request.Context(), body.Code)
	if err != nil {
		c.JSON(http.StatusBadRequest, utilities.ErrorResponse{Error: err.Error()})
		return
	}

	var user model.User
	err = h.DB.Where("google_id = ?", info.GID).First(&user).Error
	if err != nil {
		user = model.User{
			Username: info.Email,
			Email:    info.Email,
			GoogleID: info.GID,
			Role:     model.RoleApplicant,
		}
		if err := h.DB.Create(&user).Error; err != nil {
			c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
				Error: fmt.Sprintf("Failed to create user: %s", err.Error()),
			})
			return
		}
	}

	accessToken, err := generateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, utilities.ErrorResponse{
			Error: fmt.Sprintf("Failed to generate access token: %s", err.Error()),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user":         user,
		"access_token": accessToken,
	})
}
