package core

import "net/http"

// codeClasses is the static mapping from documented venue codes to a
// classification. Codes absent from the table fall through to the
// HTTP status, then to ClassUnknown, which is fatal.
var codeClasses = map[string]Classification{
	// Rate limiting. "429" appears as a body code on some gateways.
	"43011": ClassTransient,
	"429":   ClassTransient,
	// Temporary venue unavailability.
	"40200": ClassTransient,

	// Signature, timestamp and credential rejections.
	"40001": ClassAuthFailure, // ACCESS_KEY header missing
	"40002": ClassAuthFailure, // ACCESS_SIGN header missing
	"40003": ClassAuthFailure, // ACCESS_TIMESTAMP header missing
	"40005": ClassAuthFailure, // invalid ACCESS_TIMESTAMP
	"40006": ClassAuthFailure, // invalid ACCESS_KEY
	"40008": ClassAuthFailure, // request timestamp expired
	"40009": ClassAuthFailure, // signature error
	"40011": ClassAuthFailure, // invalid ACCESS_PASSPHRASE
	"40012": ClassAuthFailure, // apikey/password incorrect
	"40037": ClassAuthFailure, // apikey does not exist

	// Caller bugs.
	"40019": ClassClientError, // parameter error
	"40034": ClassClientError, // parameter does not exist
	"40109": ClassClientError, // order data does not exist
	"40762": ClassClientError, // order amount exceeds the balance
	"40774": ClassClientError, // unilateral position order mismatch
	"43012": ClassClientError, // insufficient balance
	"45110": ClassClientError, // below minimum order amount

	// Venue-internal failures.
	"50001": ClassServerError,
	"50002": ClassServerError,
}

// Classify maps a (HTTP status, venue code) pair to a classification.
// The code takes precedence over the status: the venue reports
// application errors with HTTP 200.
func Classify(statusCode int, code string) Classification {
	if code != "" && code != CodeOK {
		if class, ok := codeClasses[code]; ok {
			return class
		}
	}

	switch {
	case statusCode >= http.StatusInternalServerError:
		return ClassTransient
	case statusCode == http.StatusTooManyRequests:
		return ClassTransient
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ClassAuthFailure
	case statusCode == http.StatusBadRequest && code == "":
		return ClassClientError
	case statusCode == http.StatusNotFound:
		return ClassClientError
	}

	return ClassUnknown
}

// Retryable reports whether a failure with the given classification
// may be attempted again, given how many attempts already ran.
// Transient failures retry up to the dispatcher's budget, venue
// internal errors retry once, everything else fails fast.
func Retryable(class Classification, attempt int) bool {
	switch class {
	case ClassTransient:
		return true
	case ClassServerError:
		return attempt == 0
	default:
		return false
	}
}
