package whatsapp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var got sendRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v18.0/12345/messages", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"messages":[{"id":"wamid.ABC"}]}`))
	}))
	defer srv.Close()

	client := NewClient(Config{
		APIURL:        srv.URL + "/v18.0/",
		PhoneNumberID: "12345",
		AccessToken:   "secret",
		Timeout:       time.Second,
	})

	id, err := client.Send(context.Background(), "+254712345678", "Your order is ready")
	require.NoError(t, err)

	assert.Equal(t, "wamid.ABC", id)
	assert.Equal(t, "whatsapp", got.MessagingProduct)
	assert.Equal(t, "254712345678", got.To)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "Your order is ready", got.Text.Body)
}

func TestSendAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid OAuth access token","code":190}}`))
	}))
	defer srv.Close()

	client := NewClient(Config{APIURL: srv.URL, PhoneNumberID: "1", AccessToken: "bad", Timeout: time.Second})

	_, err := client.Send(context.Background(), "+254712345678", "hi")

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Equal(t, "Invalid OAuth access token", apiErr.Message)
}

func TestSendNotConfigured(t *testing.T) {
	_, err := NewClient(Config{}).Send(context.Background(), "+254712345678", "hi")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestSendRespectsContext(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		<-release
	}))
	defer srv.Close()
	defer close(release)

	client := NewClient(Config{APIURL: srv.URL, PhoneNumberID: "1", AccessToken: "t", Timeout: 5 * time.Second})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := client.Send(ctx, "+254712345678", "hi")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
