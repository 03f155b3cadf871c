package youtube

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"yt-network-go/internal/crawler"

	json "github.com/goccy/go-json"
)

var (
	ErrNoCredentials = errors.New("youtube: no API key configured")
	ErrKeysExhausted = errors.New("youtube: every API key is out of quota")
)

// APIError is the decoded error envelope of a non-200 answer.
type APIError struct {
	Status  int
	Reason  string
	Message string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("http status=%d reason=%s: %s", e.Status, e.Reason, e.Message)
	}
	return fmt.Sprintf("http status=%d: %s", e.Status, e.Message)
}

type errorEnvelope struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason  string `json:"reason"`
			Message string `json:"message"`
			Domain  string `json:"domain"`
		} `json:"errors"`
	} `json:"error"`
}

// quotaReasons end a credential for the day.
var quotaReasons = map[string]struct{}{
	"quotaExceeded":      {},
	"dailyLimitExceeded": {},
}

// rateLimitReasons are short-term throttles; the key stays usable.
var rateLimitReasons = map[string]struct{}{
	"rateLimitExceeded":     {},
	"userRateLimitExceeded": {},
}

func parseAPIError(status int, body []byte) *APIError {
	ae := &APIError{Status: status}
	var env errorEnvelope
	if err := json.Unmarshal(body, &env); err == nil {
		ae.Message = env.Error.Message
		for _, e := range env.Error.Errors {
			if e.Reason != "" {
				ae.Reason = e.Reason
				break
			}
		}
	}
	if ae.Message == "" {
		ae.Message = strings.TrimSpace(http.StatusText(status))
	}
	return ae
}

// classify turns a non-200 answer into a crawler.Error. Quota reasons on
// 403/429 become quota_exhausted, which triggers credential rotation;
// throttling reasons become rate_limited and get the single retry.
func classify(endpoint string, status int, body []byte) error {
	ae := parseAPIError(status, body)
	kind := crawler.ErrorKindHTTP
	if status == http.StatusForbidden || status == http.StatusTooManyRequests {
		if _, ok := quotaReasons[ae.Reason]; ok {
			return crawler.NewQuotaError(platform, endpoint, ae.Reason, ae)
		}
		if _, ok := rateLimitReasons[ae.Reason]; ok {
			return crawler.Error{Kind: crawler.ErrorKindRateLimited, Platform: platform, URL: endpoint, Msg: ae.Error(), Err: ae}
		}
	}
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		kind = crawler.ErrorKindForbidden
	case http.StatusTooManyRequests:
		kind = crawler.ErrorKindRateLimited
	case http.StatusBadRequest, http.StatusNotFound:
		kind = crawler.ErrorKindInvalidInput
	}
	return crawler.Error{Kind: kind, Platform: platform, URL: endpoint, Msg: ae.Error(), Err: ae}
}
