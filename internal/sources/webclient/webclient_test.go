package webclient

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rentscan/lib/telemetry"

	"github.com/stretchr/testify/require"
)

func TestUserAgentsRoundRobin(t *testing.T) {
	agents := NewUserAgents([]string{"a", "b"})
	require.Equal(t, "a", agents.Next())
	require.Equal(t, "b", agents.Next())
	require.Equal(t, "a", agents.Next())

	require.Equal(t, defaultUserAgents[0], NewUserAgents(nil).Next())
}

func TestNewSetsCookiesAndHeaders(t *testing.T) {
	var cookies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if c, err := r.Cookie("session"); err == nil {
			cookies = append(cookies, c.Value)
		}
		http.SetCookie(w, &http.Cookie{Name: "session", Value: "s1", Path: "/"})
		w.Write([]byte(r.Header.Get("accept-language")))
	}))
	defer srv.Close()

	client, err := New(srv.URL, Options{RatePerSecond: 50}, "test-agent", "test", &telemetry.Recorder{})
	require.NoError(t, err)

	for i := 0; i < 2; i++ {
		res, err := client.R().SetContext(context.Background()).Get("/")
		require.NoError(t, err)
		require.Equal(t, http.StatusOK, res.StatusCode())
		require.Contains(t, res.String(), "pt-BR")
	}
	require.Equal(t, []string{"s1"}, cookies, "the jar replays cookies set by the server")
}
