package validation

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		email string
		want  error
	}{
		{"reader@example.com", nil},
		{"", ErrEmailRequired},
		{"not-an-email", ErrEmailInvalid},
		{"Reader <reader@example.com>", ErrEmailInvalid},
		{strings.Repeat("a", 250) + "@x.io", ErrEmailTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			assert.ErrorIs(t, ValidateEmail(tt.email), tt.want)
		})
	}
}

func TestNormalizeEmailAndLocalPart(t *testing.T) {
	assert.Equal(t, "reader@example.com", NormalizeEmail("  Reader@Example.COM "))
	assert.Equal(t, "reader", LocalPart("reader@example.com"))
	assert.Equal(t, "nobody", LocalPart("nobody"))
}

func TestValidatePassword(t *testing.T) {
	assert.NoError(t, ValidatePassword("correct horse battery"))
	assert.ErrorIs(t, ValidatePassword(""), ErrPasswordRequired)
	assert.ErrorIs(t, ValidatePassword("short"), ErrPasswordTooShort)
	assert.ErrorIs(t, ValidatePassword(strings.Repeat("x", 73)), ErrPasswordTooLong)
	assert.ErrorIs(t, ValidatePassword("Password"), ErrPasswordCommon)
}

func TestValidateText(t *testing.T) {
	assert.NoError(t, ValidateText("name", "Summer reads", 100))
	assert.EqualError(t, ValidateText("name", "   ", 100), "name is required")
	assert.EqualError(t, ValidateText("title", "abcdef", 5), "title is too long (max 5 characters)")
}

func TestSniffContentType(t *testing.T) {
	png := append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)
	ct, err := SniffContentType(bytes.NewReader(png), CoverConstraints)
	require.NoError(t, err)
	assert.Equal(t, "image/png", ct)

	_, err = SniffContentType(strings.NewReader("plain text, not an image"), CoverConstraints)
	assert.Error(t, err)
}

func TestValidateTextReturnsFieldError(t *testing.T) {
	var fe *FieldError
	require.ErrorAs(t, ValidateText("note", "", 10), &fe)
	assert.Equal(t, "note", fe.Field)
}
