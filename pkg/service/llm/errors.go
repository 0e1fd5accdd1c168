package llm

import (
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	// ErrAllProvidersFailed is returned when every configured provider was
	// skipped or exhausted its retries
	ErrAllProvidersFailed = goerr.New("all LLM providers failed")

	// ErrEmptyResponse is returned when a backend answered with no content
	ErrEmptyResponse = goerr.New("empty response from LLM backend")
)

// notFoundSignatures are error substrings that indicate a permanently
// missing model or endpoint. Retrying these is pointless.
var notFoundSignatures = []string{
	"not found",
	"not_found",
	"404",
	"no such model",
	"model_not_found",
	"unknown model",
}

// isNotFoundError reports whether the error looks like a missing model or
// endpoint rather than a transient failure
func isNotFoundError(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	for _, sig := range notFoundSignatures {
		if strings.Contains(msg, sig) {
			return true
		}
	}
	return false
}
