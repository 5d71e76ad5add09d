package commands

import (
	"alfred/internal/browser"
	"alfred/lib/restyutil"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-resty/resty/v2"
	"github.com/tcnksm/go-input"
	"go.opentelemetry.io/otel"
)

const passwordEnv = "ALFRED_PASSWORD"

var tracer = otel.Tracer("alfred/cmd/alfred")

// promptCredentials asks for whatever was not given with --username or ALFRED_PASSWORD.
func promptCredentials(site string, normalize func(string) string) (browser.Credentials, error) {
	ui := input.DefaultUI()
	creds := browser.Credentials{
		Username: username,
		Password: os.Getenv(passwordEnv),
	}

	var err error
	if creds.Username == "" {
		creds.Username, err = ui.Ask(fmt.Sprintf("%s username:", site), &input.Options{
			Required: true,
			Loop:     true,
		})
		if err != nil {
			return browser.Credentials{}, err
		}
	}
	if creds.Password == "" {
		creds.Password, err = ui.Ask(fmt.Sprintf("%s password:", site), &input.Options{
			Required:    true,
			Loop:        true,
			Mask:        true,
			MaskDefault: true,
		})
		if err != nil {
			return browser.Credentials{}, err
		}
	}
	if normalize != nil {
		creds.Username = normalize(creds.Username)
	}
	return creds, nil
}

func browserOptions(g *globals) browser.Options {
	return browser.Options{
		Headless:    g.config.Browser.Headless,
		ExecPath:    g.config.Browser.ExecPath,
		UserDataDir: g.config.Browser.UserDataDir,
		Timeout:     g.config.Browser.LoginTimeout(),
	}
}

// login opens a browser session on a site, reusing the browser profile's login
// when there is one.
func login(ctx context.Context, g *globals, flow browser.Flow, normalize func(string) string) (browser.Session, error) {
	ctx, span := tracer.Start(ctx, "login:"+flow.Name)
	defer span.End()

	opts := browserOptions(g)
	if opts.UserDataDir != "" {
		loggedIn, err := browser.IsLoggedIn(ctx, flow, opts, g.tel)
		if err == nil && loggedIn {
			slog.Info("reusing browser login", "site", flow.Name)
			return browser.Login(ctx, flow, browser.Credentials{}, opts, g.tel)
		}
	}

	creds, err := promptCredentials(flow.Name, normalize)
	if err != nil {
		return browser.Session{}, err
	}
	slog.Info("logging in", "site", flow.Name, "username", creds.Username)
	session, err := browser.Login(ctx, flow, creds, opts, g.tel)
	if err != nil {
		span.RecordError(err)
		return browser.Session{}, err
	}
	return session, nil
}

// newHttpClient creates the client that acts on behalf of a browser session.
func newHttpClient(g *globals, name, baseUrl string, requestsPerSecond float64, session browser.Session) (*resty.Client, error) {
	opts := restyutil.ClientOptions{
		BaseUrl:           baseUrl,
		Timeout:           g.config.Http.Timeout(),
		RequestsPerSecond: requestsPerSecond,
		CloudflareBypass:  g.config.Http.CloudflareBypass,
		Tracer:            otel.Tracer("alfred/" + name),
	}
	if dumpHttp != "" {
		output, err := restyutil.NewFilesystemOutput(filepath.Join(dumpHttp, name))
		if err != nil {
			return nil, err
		}
		opts.Output = output
	}

	client, err := restyutil.NewClient(opts, g.tel)
	if err != nil {
		return nil, err
	}
	session.Apply(client)
	return client, nil
}
