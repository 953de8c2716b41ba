package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidURL(t *testing.T) {
	assert.True(t, IsValidURL("http://localhost:8080"))
	assert.True(t, IsValidURL("https://photos.example.com/app"))
	assert.False(t, IsValidURL("localhost:8080"))
	assert.False(t, IsValidURL("file:///var/lib/photogallery"))
	assert.False(t, IsValidURL("http://"))
	assert.False(t, IsValidURL("://"))
}
