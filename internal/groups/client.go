// Package groups is a typed REST client for the groups service. Every call
// classifies the server's response into either the declared result type or
// one of the apperr kinds; see classify for the rules. The client holds no
// state beyond its base URL, credential, and HTTP client, and it never
// retries or logs.
package groups

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/dinerozz/orgs-console/pkg/apperr"
)

// Client issues calls against a single groups service base URL with a bearer
// credential attached to every request.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewClient returns a client for the service at baseURL. A trailing slash on
// baseURL is ignored. If httpClient is nil, http.DefaultClient is used.
func NewClient(baseURL, token string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    httpClient,
	}
}

func (c *Client) endpoint(path []string, query url.Values) string {
	parts := make([]string, 0, len(path)+1)
	parts = append(parts, c.baseURL)
	for _, p := range path {
		parts = append(parts, url.PathEscape(p))
	}
	endpoint := strings.Join(parts, "/")
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}
	return endpoint
}

func (c *Client) newRequest(ctx context.Context, method string, path []string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// classify maps a non-200/204/404 response to an apperr kind. A 500 is
// classified strictly by media type: application/json carries the service's
// structured error envelope (DomainError), text/plain an opaque fault
// (ServerError); anything else breaks the contract (TransportError). All
// other statuses are TransportErrors.
func classify(resp *http.Response) error {
	if resp.StatusCode == http.StatusInternalServerError {
		mediaType, _, err := mime.ParseMediaType(resp.Header.Get("Content-Type"))
		if err != nil {
			mediaType = ""
		}
		switch mediaType {
		case "application/json":
			var envelope apperr.ErrorEnvelope
			if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
				return &apperr.TransportError{
					StatusCode: resp.StatusCode,
					Status:     resp.Status,
					Reason:     "malformed error payload",
				}
			}
			return &apperr.DomainError{Info: envelope.Error}
		case "text/plain":
			detail, err := io.ReadAll(resp.Body)
			if err != nil {
				return &apperr.TransportError{
					StatusCode: resp.StatusCode,
					Status:     resp.Status,
					Reason:     "unreadable error payload",
				}
			}
			return &apperr.ServerError{Detail: string(detail)}
		default:
			return &apperr.TransportError{
				StatusCode: resp.StatusCode,
				Status:     resp.Status,
				Reason:     "unexpected content type: " + resp.Header.Get("Content-Type"),
			}
		}
	}

	return &apperr.TransportError{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Reason:     "unexpected response",
	}
}

func decode(resp *http.Response, out any) error {
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &apperr.TransportError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Reason:     "malformed response body: " + err.Error(),
		}
	}
	return nil
}

// get performs a GET expecting 200 with a JSON body decoded into out.
func (c *Client) get(ctx context.Context, path []string, query url.Values, out any) error {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("groups service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classify(resp)
	}
	return decode(resp, out)
}

// getOrNil performs a GET where 404 is a legitimate application value
// (absence). It reports found=false for a 404 and decodes into out on 200.
// This is only used for lookup-by-id / exists style operations.
func (c *Client) getOrNil(ctx context.Context, path []string, out any) (bool, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("groups service call failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return true, decode(resp, out)
	case http.StatusNotFound:
		return false, nil
	default:
		return false, classify(resp)
	}
}

// post performs a POST expecting 200 with a JSON body, or 204 for a void
// success (out left untouched).
func (c *Client) post(ctx context.Context, path []string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("groups service call failed: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		return decode(resp, out)
	case http.StatusNoContent:
		return nil
	default:
		return classify(resp)
	}
}

// put performs a PUT expecting 200 with a JSON body decoded into out.
func (c *Client) put(ctx context.Context, path []string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("groups service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return classify(resp)
	}
	return decode(resp, out)
}

// putNoContent performs a PUT expecting 204.
func (c *Client) putNoContent(ctx context.Context, path []string, body any) error {
	req, err := c.newRequest(ctx, http.MethodPut, path, nil, body)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("groups service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return classify(resp)
	}
	return nil
}

// delete performs a DELETE expecting 204.
func (c *Client) delete(ctx context.Context, path []string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("groups service call failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return classify(resp)
	}
	return nil
}
