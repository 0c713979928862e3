package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testKey    = "test-key"
	testIssuer = "dayflow"
)

func TestIssueAndParse(t *testing.T) {
	pair, err := Issue("U1", "", testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)
	assert.True(t, pair.RefreshExp.After(pair.AccessExp))

	claims, err := Parse(pair.AccessToken, testKey, testIssuer)
	require.NoError(t, err)
	assert.Equal(t, "U1", claims.Subject)
	assert.Equal(t, DefaultRole, claims.Role)

	_, err = Parse(pair.AccessToken, "other-key", testIssuer)
	assert.Error(t, err)
	_, err = Parse(pair.AccessToken, testKey, "someone-else")
	assert.Error(t, err)
}

func TestIssueRequiresOwner(t *testing.T) {
	_, err := Issue("", "", testIssuer, testKey, time.Minute, time.Hour)
	assert.Error(t, err)
}

func TestParseExpired(t *testing.T) {
	pair, err := Issue("U1", "admin", testIssuer, testKey, -time.Minute, time.Hour)
	require.NoError(t, err)
	_, err = Parse(pair.AccessToken, testKey, testIssuer)
	assert.Error(t, err)
}

func TestOwnerAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	pair, err := Issue("U42", "employee", testIssuer, testKey, time.Minute, time.Hour)
	require.NoError(t, err)

	r := gin.New()
	r.GET("/me", OwnerAuth(testKey, testIssuer), func(c *gin.Context) {
		claims, ok := ClaimsFrom(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"owner": OwnerFrom(c), "role": claims.Role})
	})

	tests := []struct {
		name   string
		header string
		code   int
		body   string
	}{
		{"valid", "Bearer " + pair.AccessToken, http.StatusOK, `{"owner":"U42","role":"employee"}`},
		{"lowercase scheme", "bearer " + pair.AccessToken, http.StatusOK, `{"owner":"U42","role":"employee"}`},
		{"missing", "", http.StatusUnauthorized, `{"msg":"missing bearer token"}`},
		{"basic scheme", "Basic abc", http.StatusUnauthorized, `{"msg":"missing bearer token"}`},
		{"garbage", "Bearer nope", http.StatusUnauthorized, `{"msg":"invalid token"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			assert.Equal(t, tt.code, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}

func TestWithOwner(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/", WithOwner("U7"), func(c *gin.Context) { c.String(http.StatusOK, OwnerFrom(c)) })
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "U7", w.Body.String())
}
