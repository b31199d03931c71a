package remote

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"
)

// ErrRemoteAPI marks every failure returned by the hosted service.
var ErrRemoteAPI = errors.New("remote api")

// ErrNotFound marks lookups the service answered with no matching row.
var ErrNotFound = errors.New("not found")

// APIError describes the JSON body the hosted service responds with when a
// call fails.
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// toErrorFromResponse turns a non-2xx response into an error wrapping
// ErrRemoteAPI, keeping the service's own message when the body parses.
func toErrorFromResponse(resp *resty.Response) error {
	if resp.StatusCode() == http.StatusNotFound || resp.StatusCode() == http.StatusNotAcceptable {
		return fmt.Errorf("%w (HTTP status %d)", ErrNotFound, resp.StatusCode())
	}
	var apiErr APIError
	if err := json.Unmarshal(resp.Body(), &apiErr); err != nil {
		return errors.Join(ErrRemoteAPI, fmt.Errorf("(HTTP status %d) unable to parse error response: %s", resp.StatusCode(), err))
	}
	return errors.Join(ErrRemoteAPI, fmt.Errorf("(HTTP status %d) %s: %s", resp.StatusCode(), apiErr.Code, apiErr.Message))
}
