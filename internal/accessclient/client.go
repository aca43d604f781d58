package accessclient

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/dimitrije/fleetdesk/internal/models"
	"github.com/dimitrije/fleetdesk/pkg/dto"
	jsoniter "github.com/json-iterator/go"
	"github.com/sirupsen/logrus"
	"gopkg.in/resty.v1"
)

// ErrTransport marks failures where no HTTP answer was received.
var ErrTransport = errors.New("could not reach the server")

// APIError is a non-2xx answer from the team API.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("team api answered %d", e.Status)
	}
	return fmt.Sprintf("team api answered %d: %s", e.Status, e.Detail)
}

// detailText accepts a string detail and ignores any other shape, such as
// structured validation errors.
type detailText string

func (d *detailText) UnmarshalJSON(data []byte) error {
	var s string
	if err := jsoniter.Unmarshal(data, &s); err != nil {
		*d = ""
		return nil
	}
	*d = detailText(s)
	return nil
}

type errorBody struct {
	Detail detailText `json:"detail"`
}

type Option func(*HTTPClient)

func WithTimeout(timeout time.Duration) Option {
	return func(c *HTTPClient) {
		c.resty.SetTimeout(timeout)
	}
}

// WithDebug dumps requests and responses to the client logger.
func WithDebug(debug bool) Option {
	return func(c *HTTPClient) {
		c.resty.SetDebug(debug)
	}
}

// HTTPClient talks to the team API over HTTP. Every call authenticates with
// the token passed in; the client holds no credentials of its own.
type HTTPClient struct {
	resty *resty.Client
	log   *logrus.Entry
}

func NewHTTPClient(baseURL string, opts ...Option) *HTTPClient {
	log := logrus.WithField("component", "access_client")

	client := resty.New().
		SetHostURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetLogger(log.WriterLevel(logrus.DebugLevel))
	client.JSONMarshal = jsoniter.Marshal
	client.JSONUnmarshal = jsoniter.Unmarshal

	c := &HTTPClient{resty: client, log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *HTTPClient) ListMembers(ctx context.Context, token string) ([]models.Member, error) {
	var result dto.MembersResponse
	if err := c.do(c.authed(ctx, token).SetResult(&result), resty.MethodGet, "/api/team/members"); err != nil {
		return nil, err
	}
	if result.Members == nil {
		return []models.Member{}, nil
	}
	return result.Members, nil
}

func (c *HTTPClient) RegisterMember(ctx context.Context, token, email, fullName, password string) error {
	req := c.authed(ctx, token).SetBody(dto.RegisterMemberRequest{
		Email:    email,
		FullName: fullName,
		Password: password,
	})
	return c.do(req, resty.MethodPost, "/api/team/register")
}

func (c *HTTPClient) RemoveMember(ctx context.Context, token, email string) error {
	return c.do(c.authed(ctx, token), resty.MethodDelete, "/api/team/members/"+escapeEmail(email))
}

func (c *HTTPClient) UpdatePrivileges(ctx context.Context, token, email string, privileges models.PrivilegeSet) error {
	req := c.authed(ctx, token).SetBody(dto.UpdatePrivilegesRequest{Privileges: privileges.Strings()})
	return c.do(req, resty.MethodPut, "/api/team/members/"+escapeEmail(email)+"/privileges")
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	var result dto.TokenResponse
	req := c.resty.R().
		SetContext(ctx).
		SetResult(&result).
		SetBody(dto.LoginRequest{Email: email, Password: password})
	if err := c.do(req, resty.MethodPost, "/api/auth/login"); err != nil {
		return nil, err
	}
	return &result, nil
}

// authed carries the token both as the query parameter the dashboard API
// expects and as a bearer header.
func (c *HTTPClient) authed(ctx context.Context, token string) *resty.Request {
	return c.resty.R().
		SetContext(ctx).
		SetQueryParam("token", token).
		SetAuthToken(token)
}

func (c *HTTPClient) do(req *resty.Request, method, path string) error {
	var body errorBody
	resp, err := req.SetError(&body).Execute(method, path)
	if err != nil {
		if resp != nil && resp.RawResponse != nil {
			return fmt.Errorf("failed to decode team api response: %w", err)
		}
		c.log.WithError(err).WithField("path", path).Debug("request failed")
		return fmt.Errorf("%w: %w", ErrTransport, err)
	}
	if resp.IsError() || resp.StatusCode() < 200 || resp.StatusCode() > 299 {
		c.log.WithFields(logrus.Fields{
			"path":   path,
			"status": resp.StatusCode(),
		}).Debug("team api rejected request")
		return &APIError{Status: resp.StatusCode(), Detail: string(body.Detail)}
	}
	return nil
}

// escapeEmail percent-encodes an email for use as one path segment. '@' is
// legal in a path but the API expects it encoded.
func escapeEmail(email string) string {
	return strings.ReplaceAll(url.PathEscape(email), "@", "%40")
}
