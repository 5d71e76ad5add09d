package browser

import (
	"alfred/internal/components/telemetry"
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
)

const (
	report_login         = "login"
	report_login_session = "login.session"
	report_is_logged_in  = "is-logged-in"

	defaultTimeout         = time.Minute
	defaultPollingInterval = 250 * time.Millisecond

	// bearerTimeout bounds the wait for the page's first authorized request.
	bearerTimeout = 10 * time.Second
)

var (
	ErrMissingCredentials = errors.New("username and password are required")
	ErrInvalidCredentials = errors.New("incorrect username or password")
	ErrLoginTimeout       = errors.New("login page did not finish loading in time")
)

// Flow describes how to log into a site.
type Flow struct {
	Name string
	// HomeURL is visited first to find out if the browser profile is already logged in.
	HomeURL string
	// LoginURL is the page with the login form.
	LoginURL string

	UsernameSelector string
	PasswordSelector string
	SubmitSelector   string

	// ReadyExpression is javascript polled after submitting until it is truthy.
	ReadyExpression string
	// LoggedInExpression is javascript that is truthy only on a logged in page.
	LoggedInExpression string

	// CaptureBearer keeps the first "Authorization: Bearer" header the page sends.
	CaptureBearer bool
}

type Credentials struct {
	Username string
	Password string
}

type Options struct {
	Headless bool
	// ExecPath of chrome, found automatically when empty.
	ExecPath string
	// UserDataDir keeps the browser profile (and so the login) between runs.
	UserDataDir string
	Timeout     time.Duration
}

func newBrowser(ctx context.Context, opts Options) (context.Context, context.CancelFunc) {
	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", opts.Headless),
	)
	if opts.ExecPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(opts.ExecPath))
	}
	if opts.UserDataDir != "" {
		allocOpts = append(allocOpts, chromedp.UserDataDir(opts.UserDataDir))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, allocOpts...)
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx)
	return browserCtx, func() {
		cancelBrowser()
		cancelAlloc()
	}
}

func timeout(opts Options) time.Duration {
	if opts.Timeout <= 0 {
		return defaultTimeout
	}
	return opts.Timeout
}

// IsLoggedIn visits the home page with the configured browser profile and reports
// if it is already logged in.
func IsLoggedIn(ctx context.Context, flow Flow, opts Options, tel telemetry.API) (bool, error) {
	tel = telemetry.NewScopedAPI("browser", tel)

	browserCtx, cancel := newBrowser(ctx, opts)
	defer cancel()
	browserCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout(opts))
	defer cancelTimeout()

	var loggedIn bool
	err := chromedp.Run(
		browserCtx,
		chromedp.Navigate(flow.HomeURL),
		chromedp.Evaluate(flow.LoggedInExpression, &loggedIn),
	)
	if err != nil {
		tel.ReportBroken(report_is_logged_in, fmt.Errorf("%s: %w", flow.Name, err))
		return false, err
	}
	tel.ReportDebug(report_is_logged_in, flow.Name, loggedIn)
	return loggedIn, nil
}

// Login drives a browser through the login form and returns the logged in session.
// If the browser profile is already logged in, the form is skipped.
func Login(ctx context.Context, flow Flow, creds Credentials, opts Options, tel telemetry.API) (Session, error) {
	tel = telemetry.NewScopedAPI("browser", tel)

	browserCtx, cancel := newBrowser(ctx, opts)
	defer cancel()

	var mu sync.Mutex
	var bearer string
	if flow.CaptureBearer {
		capture := func(headers network.Headers) {
			token := bearerFromHeaders(headers)
			if token == "" {
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if bearer == "" {
				bearer = token
			}
		}
		chromedp.ListenTarget(browserCtx, func(ev any) {
			switch ev := ev.(type) {
			case *network.EventRequestWillBeSent:
				capture(ev.Request.Headers)
			case *network.EventRequestWillBeSentExtraInfo:
				capture(ev.Headers)
			}
		})
	}

	runCtx, cancelTimeout := context.WithTimeout(browserCtx, timeout(opts))
	defer cancelTimeout()

	alreadyLoggedIn := false
	if flow.HomeURL != "" {
		err := chromedp.Run(
			runCtx,
			network.Enable(),
			chromedp.Navigate(flow.HomeURL),
			chromedp.Evaluate(flow.LoggedInExpression, &alreadyLoggedIn),
		)
		if err != nil {
			tel.ReportBroken(report_login, fmt.Errorf("%s: visit home page: %w", flow.Name, err))
			return Session{}, err
		}
	}

	if alreadyLoggedIn {
		tel.ReportDebug("already logged in", flow.Name)
		if err := waitReady(runCtx, flow); err != nil {
			tel.ReportBroken(report_login, fmt.Errorf("%s: wait for home page: %w", flow.Name, err))
			return Session{}, err
		}
	} else {
		if creds.Username == "" || creds.Password == "" {
			return Session{}, ErrMissingCredentials
		}
		err := chromedp.Run(
			runCtx,
			network.Enable(),
			chromedp.Navigate(flow.LoginURL),
			chromedp.WaitVisible(flow.UsernameSelector, chromedp.ByQuery),
			chromedp.SendKeys(flow.UsernameSelector, creds.Username, chromedp.ByQuery),
			chromedp.SendKeys(flow.PasswordSelector, creds.Password, chromedp.ByQuery),
			chromedp.Click(flow.SubmitSelector, chromedp.ByQuery),
		)
		if err != nil {
			tel.ReportBroken(report_login, fmt.Errorf("%s: fill login form: %w", flow.Name, err))
			return Session{}, err
		}

		err = waitReady(runCtx, flow)
		if errors.Is(err, ErrLoginTimeout) {
			return Session{}, err
		}
		if err != nil {
			tel.ReportBroken(report_login, fmt.Errorf("%s: wait for page: %w", flow.Name, err))
			return Session{}, err
		}

		var loggedIn bool
		err = chromedp.Run(runCtx, chromedp.Evaluate(flow.LoggedInExpression, &loggedIn))
		if err != nil {
			tel.ReportBroken(report_login, fmt.Errorf("%s: check login: %w", flow.Name, err))
			return Session{}, err
		}
		if !loggedIn {
			tel.ReportWarning(report_login, flow.Name, ErrInvalidCredentials)
			return Session{}, fmt.Errorf("%s: %w", flow.Name, ErrInvalidCredentials)
		}
	}

	if flow.CaptureBearer {
		bearerCtx, cancelBearer := context.WithTimeout(runCtx, bearerTimeout)
		err := waitFor(bearerCtx, defaultPollingInterval, func() bool {
			mu.Lock()
			defer mu.Unlock()
			return bearer != ""
		})
		cancelBearer()
		if err != nil && runCtx.Err() != nil {
			return Session{}, fmt.Errorf("%s: %w", flow.Name, ErrLoginTimeout)
		}
	}

	var session Session
	err := chromedp.Run(
		runCtx,
		chromedp.Evaluate(`navigator.userAgent`, &session.UserAgent),
		chromedp.ActionFunc(func(ctx context.Context) error {
			cookies, err := network.GetCookies().Do(ctx)
			if err != nil {
				return err
			}
			session.Cookies = convertCookies(cookies)
			return nil
		}),
	)
	if err != nil {
		tel.ReportBroken(report_login_session, fmt.Errorf("%s: %w", flow.Name, err))
		return Session{}, err
	}

	mu.Lock()
	session.Authorization = bearer
	mu.Unlock()
	if flow.CaptureBearer && session.Authorization == "" {
		tel.ReportWarning(report_login_session, flow.Name, "no bearer token was seen")
	}

	tel.ReportDebug("logged in", flow.Name, len(session.Cookies))
	return session, nil
}

// waitReady polls the flow's ReadyExpression until it is truthy.
func waitReady(ctx context.Context, flow Flow) error {
	if flow.ReadyExpression == "" {
		return nil
	}
	var ready bool
	err := chromedp.Run(
		ctx,
		chromedp.Poll(flow.ReadyExpression, &ready, chromedp.WithPollingInterval(defaultPollingInterval)),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%s: %w", flow.Name, ErrLoginTimeout)
	}
	return err
}

// waitFor checks ready every interval until it returns true or ctx is done.
func waitFor(ctx context.Context, interval time.Duration, ready func() bool) error {
	if ready() {
		return nil
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if ready() {
				return nil
			}
		}
	}
}

func convertCookies(cookies []*network.Cookie) []*http.Cookie {
	out := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		out = append(out, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			HttpOnly: c.HTTPOnly,
			Secure:   c.Secure,
		})
	}
	return out
}
