package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskwell/internal/core/apperror"
	"taskwell/internal/core/appctx"
	"taskwell/internal/core/id"
	"taskwell/internal/domain/auth"
)

func principalRequest(p *appctx.Principal) (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req := httptest.NewRequest("POST", "/api/v1/files", nil)
	if p != nil {
		req = req.WithContext(appctx.WithPrincipal(req.Context(), p))
	}
	c.Request = req
	return c, w
}

func TestRequireAuthority_Granted(t *testing.T) {
	c, _ := principalRequest(&appctx.Principal{
		AccountID:   id.New(),
		Authorities: []string{auth.RolePrefix + auth.DefaultRoleCode, auth.PermissionFileUpload},
	})

	RequireAuthority(auth.PermissionFileUpload)(c)

	assert.False(t, c.IsAborted())
	assert.Empty(t, c.Errors)
}

func TestRequireAuthority_MissingAuthority(t *testing.T) {
	c, _ := principalRequest(&appctx.Principal{
		AccountID:   id.New(),
		Authorities: []string{auth.RolePrefix + auth.DefaultRoleCode},
	})

	RequireAuthority(auth.PermissionFileUpload)(c)

	require.True(t, c.IsAborted())
	require.Len(t, c.Errors, 1)
	appErr, ok := apperror.AsAppError(c.Errors[0].Err)
	require.True(t, ok)
	assert.Equal(t, apperror.CodeForbidden, appErr.Code)
}

func TestRequireAuthority_Unauthenticated(t *testing.T) {
	c, _ := principalRequest(nil)

	RequireAuthority(auth.PermissionFileUpload)(c)

	require.True(t, c.IsAborted())
	require.Len(t, c.Errors, 1)
	assert.True(t, apperror.IsUnauthorized(c.Errors[0].Err))
}

func TestAuth_RejectsRefreshToken(t *testing.T) {
	codec := auth.NewTokenCodec(auth.DefaultTokenConfig("test-secret"))
	refresh, _, err := codec.IssueRefresh(id.New())
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/api/v1/auth/me", nil)
	c.Request.Header.Set("Authorization", "Bearer "+refresh)

	Auth(codec)(c)

	require.True(t, c.IsAborted())
	require.Len(t, c.Errors, 1)
	assert.True(t, apperror.IsUnauthorized(c.Errors[0].Err))
}
