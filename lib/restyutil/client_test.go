package restyutil

import (
	"alfred/internal/components/telemetry"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientDumpsMessages(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("pong"))
	}))
	defer server.Close()

	dir := filepath.Join(t.TempDir(), "dump")
	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)

	rec := telemetry.NewRecorder()
	client, err := NewClient(ClientOptions{
		BaseUrl:           server.URL,
		RequestsPerSecond: 10,
		Output:            output,
	}, rec)
	require.NoError(t, err)

	res, err := client.R().
		SetHeader("Authorization", "Bearer secret").
		SetBody("ping").
		Post("/ping")
	require.NoError(t, err)
	require.Equal(t, "pong", res.String())

	dump, err := os.ReadFile(filepath.Join(dir, "1"))
	require.NoError(t, err)
	require.Contains(t, string(dump), "POST")
	require.Contains(t, string(dump), "pong")
	require.Contains(t, string(dump), "Authorization: <redacted>")
	require.NotContains(t, string(dump), "secret")

	require.NotEmpty(t, rec.Reports(telemetry.KindDebug, "resty.response"))
}

func TestNewClientRejectsBadBaseUrl(t *testing.T) {
	_, err := NewClient(ClientOptions{BaseUrl: "not a url"}, telemetry.NewRecorder())
	require.Error(t, err)
}
