package cloudinary

import (
	"context"
	"crypto/sha1"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedClient(baseURL string) *Client {
	c := New("demo", "key", "secret", "dayflow/avatars")
	c.BaseURL = baseURL
	c.Now = func() time.Time { return time.Unix(1700000000, 0) }
	return c
}

func TestSign(t *testing.T) {
	c := fixedClient("")
	got := c.sign(map[string]string{
		"timestamp": "1700000000",
		"api_key":   "key",
		"folder":    "dayflow/avatars",
		"public_id": "avatar_U1",
	})
	want := fmt.Sprintf("%x", sha1.Sum([]byte("folder=dayflow/avatars&public_id=avatar_U1&timestamp=1700000000secret")))
	assert.Equal(t, want, got)
}

func TestUploadAvatar(t *testing.T) {
	var fields map[string][]string
	var fileBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/demo/image/upload", r.URL.Path)
		if !assert.NoError(t, r.ParseMultipartForm(1<<20)) {
			return
		}
		fields = r.MultipartForm.Value
		f, _, err := r.FormFile("file")
		if !assert.NoError(t, err) {
			return
		}
		b, _ := io.ReadAll(f)
		fileBody = string(b)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"public_id":"dayflow/avatars/avatar_U1","secure_url":"https://res.example/avatar_U1.png"}`))
	}))
	defer srv.Close()

	url, err := fixedClient(srv.URL).UploadAvatar(context.Background(), "U1", []byte("PNGDATA"), "me.png")
	require.NoError(t, err)
	assert.Equal(t, "https://res.example/avatar_U1.png", url)
	assert.Equal(t, "PNGDATA", fileBody)
	assert.Equal(t, []string{"avatar_U1"}, fields["public_id"])
	assert.Equal(t, []string{"true"}, fields["overwrite"])
	assert.Equal(t, []string{"1700000000"}, fields["timestamp"])
	assert.Len(t, fields["signature"], 1)
}

func TestUploadAvatarRemoteError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"Invalid Signature"}}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := fixedClient(srv.URL).UploadAvatar(context.Background(), "U1", []byte("x"), "x.png")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
}

func TestUploadAvatarNotConfigured(t *testing.T) {
	c := New("", "", "", "")
	_, err := c.UploadAvatar(context.Background(), "U1", []byte("x"), "x.png")
	assert.ErrorIs(t, err, ErrNotConfigured)
}
