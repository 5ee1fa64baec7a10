package minio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsContentTypeMatch(t *testing.T) {
	assert.True(t, isContentTypeMatch("image/jpg", "image/jpeg"))
	assert.True(t, isContentTypeMatch("text/plain", "text/plain; charset=utf-8"))
	assert.False(t, isContentTypeMatch("image/png", "application/pdf"))
}

func TestValidateFileExtension(t *testing.T) {
	t.Run("matching_extension", func(t *testing.T) {
		assert.True(t, validateFileExtension("photo.PNG", "image/png"))
	})
	t.Run("disguised_file", func(t *testing.T) {
		assert.False(t, validateFileExtension("photo.png", "application/pdf"))
	})
	t.Run("unknown_type_is_not_restricted", func(t *testing.T) {
		assert.True(t, validateFileExtension("notes.md", "text/plain; charset=utf-8"))
	})
}
