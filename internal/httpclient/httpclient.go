package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// errBadHTTPStatus is returned when a server replies with a non-OK status.
var errBadHTTPStatus = errors.New("bad HTTP status")

// Client is a thin wrapper over http.Client that stamps every request
// with the same User-Agent and timeout.
type Client struct {
	httpClient *http.Client
	userAgent  string
}

// New returns a client whose requests time out after the given duration.
func New(timeout time.Duration, userAgent string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		userAgent:  userAgent,
	}
}

// Get issues a GET request and returns the response.
// The caller owns the body and must close it.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}

	request.Header.Set("User-Agent", c.userAgent)

	response, err := c.httpClient.Do(request)
	if err != nil {
		return nil, err
	}

	if response.StatusCode != http.StatusOK {
		closeErr := response.Body.Close()
		if closeErr != nil {
			return nil, errors.Join(fmt.Errorf("%s, %s: %w", url, response.Status, errBadHTTPStatus), closeErr)
		}

		return nil, fmt.Errorf("%s, %s: %w", url, response.Status, errBadHTTPStatus)
	}

	return response, nil
}

// Text issues a GET request and returns the whole response body as a string.
func (c *Client) Text(ctx context.Context, url string) (result string, err error) {
	response, err := c.Get(ctx, url)
	if err != nil {
		return "", err
	}

	defer func() {
		closeErr := response.Body.Close()
		if closeErr != nil {
			err = errors.Join(err, closeErr)
		}
	}()

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return "", fmt.Errorf("read response from %s: %w", url, err)
	}

	return string(body), nil
}
