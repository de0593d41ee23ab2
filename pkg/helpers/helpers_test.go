package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContains(t *testing.T) {
	assert.True(t, Contains([]string{"text", "json"}, "json"))
	assert.False(t, Contains([]string{"text", "json"}, "JSON"))
	assert.False(t, Contains(nil, "text"))
}

func TestNormalizeURL(t *testing.T) {
	assert.Equal(t, "http://example.com/api", NormalizeURL("  HTTP://Example.COM/Api \n"))
	assert.Equal(t, "", NormalizeURL("   "))
}
