package registry

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/docker/distribution/manifest/schema2"
	"github.com/pkg/errors"
)

// APIError is a client error (4xx) reported by the registry.
type APIError struct {
	URL        string
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("registry returned %s for %s: %s", e.Status, e.URL, e.Body)
}

// IsNotFound reports whether err is an APIError with status 404.
func IsNotFound(err error) bool {
	apiErr, ok := errors.Cause(err).(*APIError)
	return ok && apiErr.StatusCode == http.StatusNotFound
}

// do executes method against the V2 endpoint identified by path. path is
// relative to "<address>/v2/" and must already be escaped.
//
// 2xx responses return the raw body and the response headers. 4xx responses
// return an APIError. Every other outcome, connection failures and 5xx
// included, is returned as an unspecific error.
func (r *Registry) do(method string, path string) ([]byte, http.Header, error) {
	u := r.address + "/v2/" + path
	req, err := http.NewRequest(method, u, nil)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "creating request %s %s", method, u)
	}

	req.Header.Set("Accept", schema2.MediaTypeManifest)
	r.log.Debugf("sending request %s %s", method, u)
	resp, err := r.client.Do(req)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "sending request %s %s", method, u)
	}

	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading response of %s %s", method, u)
	}

	r.log.Debugf("received %s for %s %s", resp.Status, method, u)
	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return body, resp.Header, nil
	case resp.StatusCode >= 400 && resp.StatusCode < 500:
		return nil, nil, &APIError{
			URL:        u,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	default:
		return nil, nil, errors.Errorf("unexpected status %q for %s %s", resp.Status, method, u)
	}
}

// decode unmarshals a response body into v. An empty body leaves v untouched.
func decode(body []byte, v interface{}) error {
	if len(body) == 0 {
		return nil
	}

	err := json.Unmarshal(body, v)
	if err != nil {
		return errors.Wrap(err, "unmarshalling registry response")
	}

	return nil
}
