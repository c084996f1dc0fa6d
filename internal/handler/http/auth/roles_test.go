package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermitted(t *testing.T) {
	tests := []struct {
		role, method, path string
		want               bool
	}{
		{RoleAdmin, "POST", "/v1/analyze/url", true},
		{RoleAdmin, "GET", "/v1/analyses/abc", true},
		{RoleViewer, "GET", "/v1/analyses", true},
		{RoleViewer, "HEAD", "/v1/analyses/abc", true},
		{RoleViewer, "OPTIONS", "/v1/analyses", true},
		{RoleViewer, "GET", "/swagger/index.html", true},
		{RoleViewer, "POST", "/v1/analyze/image", false},
		{RoleViewer, "GET", "/v1/analyze/text", false},
		{RoleViewer, "GET", "/v1/analysesx", false},
		{"", "GET", "/v1/analyses", false},
		{"unknown", "GET", "/v1/analyses", false},
	}
	for _, tt := range tests {
		t.Run(tt.role+" "+tt.method+" "+tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, permitted(tt.role, tt.method, tt.path))
		})
	}
}

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"/health", true},
		{"/health/", true},
		{"/health/detail", false},
		{"/healthcheck", false},
		{"/metrics", true},
		{"/swagger/", true},
		{"/swagger/doc.json", true},
		{"/swagger", false},
		{"/v1/analyses", false},
		{"/", false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPublicEndpoint(tt.path))
		})
	}
}

func TestValidRole(t *testing.T) {
	assert.True(t, ValidRole(RoleAdmin))
	assert.True(t, ValidRole(RoleViewer))
	assert.False(t, ValidRole("Admin"))
	assert.False(t, ValidRole(""))
}
