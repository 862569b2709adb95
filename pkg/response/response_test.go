package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"pre-exam/internal/model"
	"pre-exam/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func run(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)

	var resp Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return w, resp
}

func TestFailMapsKinds(t *testing.T) {
	cases := []struct {
		err  error
		code int
		kind string
	}{
		{apperr.New(apperr.KindInvalidTarget, "cannot add yourself"), http.StatusBadRequest, "InvalidTarget"},
		{apperr.New(apperr.KindAlreadyExists, "exists"), http.StatusConflict, "AlreadyExists"},
		{apperr.New(apperr.KindNotFound, "missing"), http.StatusNotFound, "NotFound"},
		{apperr.New(apperr.KindUnauthorized, "who"), http.StatusUnauthorized, "Unauthorized"},
		{errors.New("db exploded"), http.StatusInternalServerError, "Internal"},
	}
	for _, tc := range cases {
		w, resp := run(t, func(c *gin.Context) { Fail(c, tc.err) })
		assert.Equal(t, tc.code, w.Code)
		assert.Equal(t, tc.code, resp.Code)
		assert.Equal(t, tc.kind, resp.Kind)
		assert.NotContains(t, resp.Message, "db exploded")
	}
}

func TestSuccessEnvelope(t *testing.T) {
	w, resp := run(t, func(c *gin.Context) { SuccessWithMessage(c, "ok", gin.H{"n": 1}) })
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 0, resp.Code)
	assert.Equal(t, "ok", resp.Message)
	assert.Empty(t, resp.Kind)
}

func TestFilterUserInfoHidesPassword(t *testing.T) {
	info := FilterUserInfo(&model.User{ID: 1, Username: "alice", PasswordHash: "secret"})
	raw, err := json.Marshal(info)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "secret")
	assert.Empty(t, info.LastSeen)
	assert.Nil(t, FilterUserInfo(nil))
}
