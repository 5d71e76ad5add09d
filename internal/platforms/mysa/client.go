package mysa

import (
	"alfred/internal/browser"
	"alfred/internal/components/assert"
	"alfred/internal/components/telemetry"
	"alfred/lib/htmlutil"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

const (
	report_client_assessment_filter = "client.assessment-filter"
	report_client_create_question   = "client.create-question"
)

const (
	DefaultBaseURL    = "https://mysa.rp.edu.sg"
	DefaultLoginPath  = "/account/account/login"
	DefaultPageLimit  = 100
	defaultMaxPages   = 1000
	filterPath        = "/authoring/api/assessments/filter"
	createQuestionAPI = "/authoring/api/questions"
)

var ErrUnexpectedStatus = errors.New("unexpected status")

// NewFlow describes the MySA login page. The bearer token the page obtains is
// what authorizes the authoring api.
func NewFlow(baseURL, loginPath string) browser.Flow {
	return browser.Flow{
		Name:               "mysa",
		HomeURL:            baseURL,
		LoginURL:           baseURL + loginPath,
		UsernameSelector:   "#userId",
		PasswordSelector:   "#password",
		SubmitSelector:     "#submitForm",
		ReadyExpression:    `!!document.getElementById("favoriteLinksContainerId") || !!document.querySelector(".validation-summary-errors")`,
		LoggedInExpression: `!!document.getElementById("userinfo")`,
		CaptureBearer:      true,
	}
}

// FilterRequest is the body of the assessment filter endpoint, the empty lists
// mean "everything".
type FilterRequest struct {
	QualificationTypes []string `json:"qualificationTypes"`
	ModuleCodes        []string `json:"moduleCodes"`
	Cohorts            []string `json:"cohorts"`
	Assessments        []string `json:"assessments"`
	// Offset is a page number starting from 1.
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type ClientOptions struct {
	// PageLimit is the number of groups requested per page, DefaultPageLimit when 0.
	PageLimit int
	// MaxPages bounds the number of filter requests made.
	MaxPages int
}

type Client struct {
	http *resty.Client
	opts ClientOptions
	tel  telemetry.API
}

// NewClient wraps an http client that already carries a logged in session,
// see browser.Session.Apply.
func NewClient(httpClient *resty.Client, opts ClientOptions, tel telemetry.API) Client {
	assert.NotNil(httpClient)
	if opts.PageLimit <= 0 {
		opts.PageLimit = DefaultPageLimit
	}
	if opts.MaxPages <= 0 {
		opts.MaxPages = defaultMaxPages
	}
	return Client{
		http: httpClient,
		opts: opts,
		tel:  telemetry.NewScopedAPI("mysa", tel),
	}
}

func statusError(res *resty.Response) error {
	return fmt.Errorf(
		"%w %d: %s",
		ErrUnexpectedStatus,
		res.StatusCode(),
		htmlutil.ErrorText(res.Body()),
	)
}

// AssessmentFilter lists every qualification group the user can see, page by page.
func (c Client) AssessmentFilter(ctx context.Context) ([]QualificationGroup, error) {
	var groups []QualificationGroup
	for page := 1; page <= c.opts.MaxPages; page++ {
		var body FilterResponse
		res, err := c.http.R().
			SetContext(ctx).
			SetBody(FilterRequest{
				QualificationTypes: []string{},
				ModuleCodes:        []string{},
				Cohorts:            []string{},
				Assessments:        []string{},
				Offset:             page,
				Limit:              c.opts.PageLimit,
			}).
			SetResult(&body).
			Post(filterPath)
		if err != nil {
			c.tel.ReportBroken(report_client_assessment_filter, err)
			return nil, err
		}
		if res.StatusCode() != http.StatusOK {
			err = statusError(res)
			c.tel.ReportBroken(report_client_assessment_filter, err)
			return nil, err
		}

		groups = append(groups, body.Data...)
		c.tel.ReportDebug("assessment filter page", page, len(body.Data), body.Total)

		if len(body.Data) < c.opts.PageLimit {
			return groups, nil
		}
		if body.Total > 0 && len(groups) >= body.Total {
			return groups, nil
		}
	}

	c.tel.ReportWarning(report_client_assessment_filter, "stopped after max pages", c.opts.MaxPages)
	return groups, nil
}

// CreateQuestion posts a question to an assessment's question bank.
func (c Client) CreateQuestion(ctx context.Context, payload Payload) error {
	res, err := c.http.R().
		SetContext(ctx).
		SetBody(payload).
		Post(createQuestionAPI)
	if err != nil {
		c.tel.ReportBroken(report_client_create_question, err)
		return err
	}
	if res.StatusCode() != http.StatusCreated {
		return statusError(res)
	}
	return nil
}
