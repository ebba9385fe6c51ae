package analysis

import "errors"

// Contract errors returned by the engine. Conditions with a sensible neutral
// default (empty series, zero variance, short history) are not errors.
var (
	ErrNoPredictors        = errors.New("regression requires at least one predictor")
	ErrInsufficientSamples = errors.New("insufficient samples: need more records than predictors")
	ErrInvalidClusterCount = errors.New("cluster count out of range")
	ErrInvalidHorizon      = errors.New("forecast horizon out of range")
	ErrUnknownMethod       = errors.New("unknown forecast method")
)

// IsContractError reports whether err is a caller-side contract violation
// (bad parameters) rather than an internal failure.
func IsContractError(err error) bool {
	for _, target := range []error{
		ErrNoPredictors, ErrInsufficientSamples, ErrInvalidClusterCount,
		ErrInvalidHorizon, ErrUnknownMethod,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
