package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/internal/webserver"
	"github.com/smartstore/smartstore/pkg/common"
)

func registerAuthRoutes() {
	webserver.PubPOST("/api/login", login)
	webserver.ApiPOST("/logout", logout)
	webserver.ApiGET("/me", currentUser)
}

type loginPayload struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", nil)
	}
	payload.Username = strings.TrimSpace(payload.Username)
	if payload.Username == "" || payload.Password == "" {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required", nil)
	}

	appCtx := webserver.GetApp(c)
	var staff domain.Staff
	err := appCtx.DB().Preload("Type").Where("username = ?", payload.Username).First(&staff).Error
	if err != nil ||
		!strings.EqualFold(staff.Status, common.ENABLED) ||
		bcrypt.CompareHashAndPassword([]byte(staff.Password), []byte(payload.Password)) != nil {
		return fail(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials", nil)
	}

	if err := webserver.BindSession(c, staff.ID); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to create session", nil)
	}
	token, err := webserver.IssueToken(appCtx, &staff)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", nil)
	}

	appCtx.DB().Model(&domain.Staff{}).Where("id = ?", staff.ID).Update("last_login", time.Now())
	zap.L().Info("staff login", zap.String("username", staff.Username), zap.String("ip", c.RealIP()))

	return ok(c, echo.Map{
		"username": staff.Username,
		"realname": staff.Realname,
		"role":     domain.ParseRole(staff.Type.Name),
		"is_admin": staff.IsAdmin,
		"token":    token,
	})
}

func logout(c echo.Context) error {
	if err := webserver.DropSession(c); err != nil {
		return fail(c, http.StatusInternalServerError, "SESSION_ERROR", "Failed to end session", nil)
	}
	return ok(c, echo.Map{"message": "logged out"})
}

func currentUser(c echo.Context) error {
	return ok(c, webserver.GetIdentity(c))
}
