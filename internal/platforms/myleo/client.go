package myleo

import (
	"alfred/internal/browser"
	"alfred/internal/components/assert"
	"alfred/internal/components/telemetry"
	"alfred/lib/htmlutil"
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
)

const (
	report_client_logged_in       = "client.logged-in"
	report_client_create_question = "client.create-question"
)

const (
	DefaultBaseURL        = "https://myleo.rp.edu.sg"
	DefaultUsernameSuffix = "@rp.edu.sg"
	questionListPath      = "/Quiz/QuestionBank/QuestionList"
	createQuestionAPI     = "/Quiz/api/Question/CreateQuestion"
	usernameInputSelector = "#userNameInput"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// NewFlow describes the MyLEO single sign on page, which any page of the site
// redirects to when logged out.
func NewFlow(baseURL string) browser.Flow {
	return browser.Flow{
		Name:             "myleo",
		HomeURL:          baseURL + questionListPath,
		LoginURL:         baseURL,
		UsernameSelector: usernameInputSelector,
		PasswordSelector: "#passwordInput",
		SubmitSelector:   "#submitButton",
		ReadyExpression: `document.readyState === "complete" && (
			!document.getElementById("userNameInput") ||
			!!(document.getElementById("errorText") && document.getElementById("errorText").textContent.trim())
		)`,
		LoggedInExpression: `!document.getElementById("userNameInput")`,
	}
}

// NormalizeUsername appends the domain suffix when the user only typed their id.
func NormalizeUsername(username, suffix string) string {
	username = strings.TrimSpace(username)
	if username == "" || suffix == "" || strings.Contains(username, "@") {
		return username
	}
	return username + suffix
}

type Client struct {
	http *resty.Client
	tel  telemetry.API
}

// NewClient wraps an http client that already carries a logged in session,
// see browser.Session.Apply.
func NewClient(httpClient *resty.Client, tel telemetry.API) Client {
	assert.NotNil(httpClient)
	return Client{
		http: httpClient,
		tel:  telemetry.NewScopedAPI("myleo", tel),
	}
}

// LoggedIn reports if the session can open the question bank, a logged out
// session gets redirected to the login form.
func (c Client) LoggedIn(ctx context.Context) (bool, error) {
	res, err := c.http.R().
		SetContext(ctx).
		Get(questionListPath)
	if res != nil && res.StatusCode() >= 300 && res.StatusCode() < 400 {
		return false, nil
	}
	if err != nil {
		c.tel.ReportBroken(report_client_logged_in, err)
		return false, err
	}
	if res.StatusCode() == http.StatusUnauthorized || res.StatusCode() == http.StatusForbidden {
		return false, nil
	}
	if res.StatusCode() != http.StatusOK {
		return false, fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, res.StatusCode(), htmlutil.ErrorText(res.Body()))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
	if err != nil {
		c.tel.ReportBroken(report_client_logged_in, err)
		return false, err
	}
	return doc.Find(usernameInputSelector).Length() == 0, nil
}

// CreateQuestion adds a question to the personal question bank.
func (c Client) CreateQuestion(ctx context.Context, payload Payload) error {
	form, err := payload.Form()
	if err != nil {
		return err
	}
	res, err := c.http.R().
		SetContext(ctx).
		SetFormDataFromValues(form).
		Post(createQuestionAPI)
	if err != nil {
		c.tel.ReportBroken(report_client_create_question, err)
		return err
	}
	if res.StatusCode() != http.StatusOK {
		return fmt.Errorf("%w %d: %s", ErrUnexpectedStatus, res.StatusCode(), htmlutil.ErrorText(res.Body()))
	}
	return nil
}
