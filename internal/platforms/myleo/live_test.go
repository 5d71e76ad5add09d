package myleo

import (
	devenv "alfred/dev/env"
	"alfred/internal/browser"
	"alfred/internal/components/telemetry"
	"alfred/lib/restyutil"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLiveLogin(t *testing.T) {
	config := devenv.RequireLiveConfig(t, "myleo.json5")
	if config.BaseUrl == "" {
		config.BaseUrl = DefaultBaseURL
	}

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Minute)
	defer cancel()
	tel := telemetry.SlogAPI{}

	session, err := browser.Login(
		ctx,
		NewFlow(config.BaseUrl),
		browser.Credentials{
			Username: NormalizeUsername(config.Username, DefaultUsernameSuffix),
			Password: config.Password,
		},
		browser.Options{Headless: config.Headless, ExecPath: config.ExecPath},
		tel,
	)
	require.NoError(t, err)

	httpClient, err := restyutil.NewClient(restyutil.ClientOptions{
		BaseUrl: config.BaseUrl,
		Timeout: 30 * time.Second,
	}, tel)
	require.NoError(t, err)
	session.Apply(httpClient)

	loggedIn, err := NewClient(httpClient, tel).LoggedIn(ctx)
	require.NoError(t, err)
	require.True(t, loggedIn)
}
