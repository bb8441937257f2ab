package webserver

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/gorilla/sessions"
	"github.com/labstack/echo-contrib/session"
	"github.com/labstack/echo/v4"

	"github.com/smartstore/smartstore/internal/app"
	"github.com/smartstore/smartstore/internal/domain"
	"github.com/smartstore/smartstore/pkg/common"
)

// Identity is the authenticated staff member attached to the request.
type Identity struct {
	ID       int64       `json:"id,string"`
	Username string      `json:"username"`
	Realname string      `json:"realname"`
	Email    string      `json:"email"`
	Role     domain.Role `json:"role"`
	IsAdmin  bool        `json:"is_admin"`
}

// authMiddleware resolves identity from a bearer token or the session cookie
// and loads the staff record. Requests with neither are rejected.
func authMiddleware(appCtx app.AppContext) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			staffID, err := identify(c, appCtx)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "authentication required")
			}

			var staff domain.Staff
			err = appCtx.DB().Preload("Type").Where("id = ?", staffID).First(&staff).Error
			if err != nil || !strings.EqualFold(staff.Status, common.ENABLED) {
				return echo.NewHTTPError(http.StatusUnauthorized, "account disabled or missing")
			}

			c.Set(IdentityKey, &Identity{
				ID:       staff.ID,
				Username: staff.Username,
				Realname: staff.Realname,
				Email:    staff.Email,
				Role:     domain.ParseRole(staff.Type.Name),
				IsAdmin:  staff.IsAdmin,
			})
			return next(c)
		}
	}
}

func identify(c echo.Context, appCtx app.AppContext) (int64, error) {
	if auth := c.Request().Header.Get(echo.HeaderAuthorization); strings.HasPrefix(auth, "Bearer ") {
		return parseToken(strings.TrimPrefix(auth, "Bearer "), appCtx.Config().Web.Secret)
	}

	sess, err := session.Get(SessionName, c)
	if err != nil {
		return 0, err
	}
	uid, ok := sess.Values["uid"].(int64)
	if !ok || uid == 0 {
		return 0, errors.New("no session identity")
	}
	return uid, nil
}

type tokenClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// IssueToken signs a bearer token for the staff account.
func IssueToken(appCtx app.AppContext, staff *domain.Staff) (string, error) {
	days := appCtx.Config().Web.JwtDays
	if days <= 0 {
		days = 7
	}
	claims := tokenClaims{
		Username: staff.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(staff.ID, 10),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Duration(days) * 24 * time.Hour)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(appCtx.Config().Web.Secret))
}

func parseToken(raw, secret string) (int64, error) {
	var claims tokenClaims
	token, err := jwt.ParseWithClaims(raw, &claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return 0, errors.New("invalid token")
	}
	return strconv.ParseInt(claims.Subject, 10, 64)
}

// BindSession writes the staff id into the session cookie.
func BindSession(c echo.Context, staffID int64) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
	}
	sess.Values["uid"] = staffID
	return sess.Save(c.Request(), c.Response())
}

// DropSession ends the caller's session.
func DropSession(c echo.Context) error {
	sess, err := session.Get(SessionName, c)
	if err != nil {
		return err
	}
	sess.Options = &sessions.Options{Path: "/", MaxAge: -1}
	delete(sess.Values, "uid")
	return sess.Save(c.Request(), c.Response())
}
