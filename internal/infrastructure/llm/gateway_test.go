package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"uistudio/internal/domain/entity"
)

func TestGatewayCollaboratorSendsImageAsDataURL(t *testing.T) {
	var body map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer secret", r.Header.Get("X-Auth-Token"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"choices": []interface{}{
				map[string]interface{}{"message": map[string]interface{}{"content": "  <p>hi</p>  "}},
			},
		})
	}))
	defer srv.Close()

	g, err := NewGatewayCollaborator("secret", srv.URL, "gpt-x", "X-Auth-Token")
	require.NoError(t, err)

	out, err := g.Generate(context.Background(), "draw", &entity.Image{Data: []byte("png"), MimeType: "image/png"})
	require.NoError(t, err)
	assert.Equal(t, "<p>hi</p>", out)

	messages := body["messages"].([]interface{})
	content := messages[0].(map[string]interface{})["content"].([]interface{})
	require.Len(t, content, 2)
	imagePart := content[1].(map[string]interface{})
	url := imagePart["image_url"].(map[string]interface{})["url"].(string)
	assert.Equal(t, "data:image/png;base64,cG5n", url)
}

func TestGatewayCollaboratorStatusErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	g, err := NewGatewayCollaborator("secret", srv.URL, "gpt-x", "")
	require.NoError(t, err)

	_, err = g.Generate(context.Background(), "draw", nil)
	require.Error(t, err)
	assert.Equal(t, entity.ErrorKindQuotaExceeded, entity.KindOf(Classify("scaffold", err)))
}

func TestNewRequiresCredentials(t *testing.T) {
	_, err := New(context.Background(), Settings{Provider: "openai"})
	assert.ErrorIs(t, err, entity.ErrMissingCredential)

	c, err := New(context.Background(), Settings{Provider: "mock"})
	require.NoError(t, err)
	assert.Equal(t, "mock", c.Name())

	_, err = New(context.Background(), Settings{Provider: "carrier-pigeon"})
	assert.Error(t, err)
}
