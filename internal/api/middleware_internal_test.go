package api

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRouteLabel(t *testing.T) {
	assert.Equal(t, "unmatched", routeLabel(""))
	assert.Equal(t, "/api/chat", routeLabel("POST /api/chat"))
	assert.Equal(t, "/mcp", routeLabel("/mcp"))
	assert.Equal(t, "/{$}", routeLabel("GET /{$}"))
}
