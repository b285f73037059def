package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// StatusSessionInvalidated is returned by the API when the session was
// invalidated server side and the page must be reloaded.
const StatusSessionInvalidated = 279

const contentTypeJSON = "application/json;charset=utf-8"

// Client is the PayMyBuddy API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	navigation *Navigation
	tokens     TokenSource
	reload     func()
	logger     *slog.Logger
}

// Request describes a single API call.
type Request struct {
	// AuthToken is sent as is when set. Ignored when Anonymous is true.
	AuthToken string
	// Anonymous forces the anonymous token.
	Anonymous bool
	// Method defaults to POST when Body is set and GET otherwise.
	Method string
	// URL is relative to the client's base URL.
	URL  string
	Body any
	// NeverCancel detaches the request from navigation aborts.
	NeverCancel bool
}

// New creates a new API client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the URL requests are resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Navigation returns the navigation the client is attached to, or nil.
func (c *Client) Navigation() *Navigation {
	return c.navigation
}

// Do performs req and leaves the result undecoded.
func (c *Client) Do(ctx context.Context, req Request) (Response[json.RawMessage], error) {
	return Fetch[json.RawMessage](ctx, c, req)
}

// Fetch performs req and decodes a successful result into T.
//
// Well-formed 2xx responses and SERVICE errors are returned as a Response
// with a nil error. A request aborted by a navigation (or by ctx) yields the
// _ABORTED response, also with a nil error. Everything else is an error.
func Fetch[T any](ctx context.Context, c *Client, req Request) (Response[T], error) {
	token, err := c.resolveToken(ctx, req)
	if err != nil {
		return Response[T]{}, err
	}

	reqCtx, cancel := c.requestContext(ctx, req.NeverCancel)
	defer cancel()

	httpReq, err := c.newRequest(reqCtx, req, token)
	if err != nil {
		return Response[T]{}, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		if isAborted(reqCtx) {
			return aborted[T](), nil
		}
		return Response[T]{}, newException(ErrTransport, fmt.Sprintf("Request failed: %s %s", httpReq.Method, req.URL), nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		if isAborted(reqCtx) {
			return aborted[T](), nil
		}
		return Response[T]{}, newException(ErrTransport, "Failed to read response body", nil, err)
	}

	res, err := classify[T](resp.StatusCode, body)
	if errors.Is(err, errSessionInvalidated) {
		return awaitReload[T](reqCtx, c)
	}
	return res, err
}

var errSessionInvalidated = errors.New("session invalidated")

func classify[T any](status int, body []byte) (Response[T], error) {
	switch status / 100 {
	case 2:
		switch status {
		case http.StatusNoContent:
			var zero T
			return succeeded(zero), nil
		case StatusSessionInvalidated:
			return Response[T]{}, errSessionInvalidated
		}
		var result T
		if err := json.Unmarshal(body, &result); err != nil {
			return Response[T]{}, newException(ErrInvalidJSON, "Unsupported server response: invalid json", nil, err)
		}
		return succeeded(result), nil

	case 4:
		apiErr, err := ParseAPIError(body)
		if err != nil {
			return Response[T]{}, err
		}
		if apiErr.Type != ErrorTypeService {
			switch apiErr.Code {
			case CodeServerException:
				return Response[T]{}, newException(ErrServerException, fmt.Sprintf("Server-side exception (%s)", apiErr.Code), &apiErr, nil)
			case CodeAccessDenied:
				return Response[T]{}, newAccessDenied(apiErr)
			default:
				return Response[T]{}, newException(ErrClientException, fmt.Sprintf("Client-side exception (%s)", apiErr.Code), &apiErr, nil)
			}
		}
		return failed[T](apiErr), nil

	case 5:
		return Response[T]{}, newException(ErrServerException, fmt.Sprintf("Server exception: HTTP %d", status), nil, nil)

	default:
		return Response[T]{}, newException(ErrUnsupportedResponse, fmt.Sprintf("Unsupported server response: HTTP %d", status), nil, nil)
	}
}

// awaitReload asks the runtime to reload and then waits for the request to be
// torn down, the reload being the only way forward.
func awaitReload[T any](ctx context.Context, c *Client) (Response[T], error) {
	if c.reload == nil {
		return Response[T]{}, newException(ErrReloadRequired, "Session invalidated by the server", nil, nil)
	}

	c.logger.InfoContext(ctx, "session invalidated by the server, reloading")
	c.reload()

	<-ctx.Done()
	if isAborted(ctx) {
		return aborted[T](), nil
	}
	return Response[T]{}, newException(ErrTransport, "Request interrupted while reloading", nil, context.Cause(ctx))
}

func (c *Client) resolveToken(ctx context.Context, req Request) (string, error) {
	if req.Anonymous {
		return AnonymousToken, nil
	}

	token := req.AuthToken
	if token == "" {
		src := c.tokens
		if src == nil {
			var ok bool
			if src, ok = TokenSourceFromContext(ctx); !ok {
				return "", ErrNoTokenSource
			}
		}
		token = src.Token()
	}

	if token == "" {
		return AnonymousToken, nil
	}
	return token, nil
}

// requestContext joins ctx with the abort signal of the current navigation.
func (c *Client) requestContext(ctx context.Context, neverCancel bool) (context.Context, context.CancelFunc) {
	if neverCancel || c.navigation == nil {
		return context.WithCancel(ctx)
	}

	signal := c.navigation.Signal()
	reqCtx, cancel := context.WithCancelCause(ctx)
	stop := context.AfterFunc(signal, func() {
		cancel(context.Cause(signal))
	})

	return reqCtx, func() {
		stop()
		cancel(context.Canceled)
	}
}

func (c *Client) newRequest(ctx context.Context, req Request, token string) (*http.Request, error) {
	method := req.Method

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, newException(ErrClientException, "Failed to encode request body", nil, err)
		}
		body = bytes.NewReader(data)
		if method == "" {
			method = http.MethodPost
		}
	}
	if method == "" {
		method = http.MethodGet
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.resolveURL(req.URL), body)
	if err != nil {
		return nil, newException(ErrClientException, "Failed to create request", nil, err)
	}

	httpReq.Header.Set(HeaderAuthToken, token)
	if body != nil {
		httpReq.Header.Set("Content-Type", contentTypeJSON)
	}
	httpReq.Header.Set("Accept", "application/json")

	return httpReq, nil
}

func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if strings.HasSuffix(c.baseURL, "/") && strings.HasPrefix(path, "/") {
		return c.baseURL + path[1:]
	}
	if c.baseURL != "" && !strings.HasSuffix(c.baseURL, "/") && !strings.HasPrefix(path, "/") {
		return c.baseURL + "/" + path
	}
	return c.baseURL + path
}

// isAborted reports whether ctx was cancelled, as opposed to timing out.
func isAborted(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.Canceled)
}
