package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidVideoID(t *testing.T) {
	valid := []string{"dQw4w9WgXcQ", "abc_DEF-123", "___________"}
	for _, id := range valid {
		assert.True(t, ValidVideoID(id), id)
	}

	invalid := []string{
		"",
		"short",
		"dQw4w9WgXcQQ",  // 12 chars
		"dQw4w9WgXc",    // 10 chars
		"dQw4w9WgXc!",   // bad char
		"dQw4w9 WgXc",   // space
		"https://yt/v1", // not an id at all
	}
	for _, id := range invalid {
		assert.False(t, ValidVideoID(id), id)
	}
}
