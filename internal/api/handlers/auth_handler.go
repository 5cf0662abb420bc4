package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/invclose/backend-go/internal/config"
	"github.com/andresuchdata/invclose/backend-go/internal/graph"
)

type AuthHandler struct {
	authenticator *graph.Authenticator
	graphConfig   config.GraphConfig
}

func NewAuthHandler(authenticator *graph.Authenticator, graphConfig config.GraphConfig) *AuthHandler {
	return &AuthHandler{authenticator: authenticator, graphConfig: graphConfig}
}

// Token exchanges the "code" query parameter for an access token.
func (h *AuthHandler) Token(c *gin.Context) {
	tok, err := h.authenticator.Exchange(c.Request.Context(), c.Query("code"), c.Query("redirect_uri"))
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, tok)
}

// ConfigJS serves the public application settings to the browser picker.
func (h *AuthHandler) ConfigJS(c *gin.Context) {
	js, err := graph.ConfigJS(h.graphConfig)
	if err != nil {
		fail(c, err)
		return
	}

	c.Data(http.StatusOK, "application/javascript", []byte(js))
}
