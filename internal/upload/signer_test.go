package upload

import (
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedUploadURLRoundTrip(t *testing.T) {
	s := NewHMACSigner("http://localhost:8080/uploads", "test-secret")

	signed, err := s.SignedUploadURL("menu.jpg", 15*time.Minute)
	require.NoError(t, err)

	u, err := url.Parse(signed)
	require.NoError(t, err)
	q := u.Query()
	assert.Equal(t, "menu.jpg", q.Get("filename"))

	expires, err := strconv.ParseInt(q.Get("expires"), 10, 64)
	require.NoError(t, err)

	assert.True(t, s.Verify("menu.jpg", expires, q.Get("signature")))
}

func TestVerifyRejectsTampering(t *testing.T) {
	s := NewHMACSigner("http://localhost:8080/uploads", "test-secret")

	signed, err := s.SignedUploadURL("menu.jpg", 15*time.Minute)
	require.NoError(t, err)

	u, _ := url.Parse(signed)
	q := u.Query()
	expires, _ := strconv.ParseInt(q.Get("expires"), 10, 64)

	assert.False(t, s.Verify("other.jpg", expires, q.Get("signature")))
	assert.False(t, s.Verify("menu.jpg", expires+1, q.Get("signature")))

	other := NewHMACSigner("http://localhost:8080/uploads", "different-secret")
	assert.False(t, other.Verify("menu.jpg", expires, q.Get("signature")))
}

func TestVerifyRejectsExpired(t *testing.T) {
	s := NewHMACSigner("http://localhost:8080/uploads", "test-secret")

	expires := time.Now().Add(-time.Minute).Unix()
	sig := s.sign("menu.jpg", expires)

	assert.False(t, s.Verify("menu.jpg", expires, sig))
}

func TestSignedUploadURLEmptyFilename(t *testing.T) {
	s := NewHMACSigner("http://localhost:8080/uploads", "test-secret")

	_, err := s.SignedUploadURL("", time.Minute)
	assert.Error(t, err)
}
