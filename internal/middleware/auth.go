package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"example.com/socialfeed/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

// UserCtxKey holds the *models.User of the logged-in caller, absent for anonymous requests.
const UserCtxKey = contextKey("current_user")

const loginRequiredMessage = "Please log in to access this page."

// UserLoader resolves session subjects to accounts.
type UserLoader interface {
	GetUserByID(ctx context.Context, id uint) (models.User, error)
}

// Sessions issues and verifies the signed session cookie.
type Sessions struct {
	Secret     []byte
	CookieName string
	TTL        time.Duration
	Secure     bool
}

// Issue sets a session cookie for userID.
func (s *Sessions) Issue(c *gin.Context, userID uint) error {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   strconv.FormatUint(uint64(userID), 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.TTL)),
	})
	tokenStr, err := token.SignedString(s.Secret)
	if err != nil {
		return err
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.CookieName, tokenStr, int(s.TTL.Seconds()), "/", "", s.Secure, true)
	return nil
}

// Clear removes the session cookie.
func (s *Sessions) Clear(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(s.CookieName, "", -1, "/", "", s.Secure, true)
}

// Parse verifies tokenStr and returns the user id it was issued for.
func (s *Sessions) Parse(tokenStr string) (uint, error) {
	var claims jwt.RegisteredClaims
	token, err := jwt.ParseWithClaims(tokenStr, &claims, func(token *jwt.Token) (interface{}, error) {
		return s.Secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return 0, errors.New("invalid session token")
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid session subject")
	}
	return uint(id), nil
}

// Authenticate resolves the caller once per request. Missing, invalid or
// stale sessions leave the request anonymous; a bad cookie is cleared.
func (s *Sessions) Authenticate(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr, err := c.Cookie(s.CookieName)
		if err != nil || tokenStr == "" {
			c.Next()
			return
		}

		userID, err := s.Parse(tokenStr)
		if err != nil {
			s.Clear(c)
			c.Next()
			return
		}

		user, err := users.GetUserByID(c.Request.Context(), userID)
		if err != nil {
			s.Clear(c)
			c.Next()
			return
		}

		c.Set(string(UserCtxKey), &user)
		c.Next()
	}
}

// RequireLogin redirects anonymous callers to loginPath, remembering where they were going.
func RequireLogin(loginPath string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentUser(c); ok {
			c.Next()
			return
		}

		AddFlash(c, loginRequiredMessage)
		target := loginPath + "?next=" + url.QueryEscape(c.Request.URL.RequestURI())
		c.Redirect(http.StatusFound, target)
		c.Abort()
	}
}

// CurrentUser returns the logged-in caller, if any.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(string(UserCtxKey))
	if !ok {
		return nil, false
	}
	u, ok := v.(*models.User)
	return u, ok && u != nil
}
