package pricing

import "errors"

var (
	// ErrInvalidConfiguration signals a priced item or engine input that cannot produce a price,
	// such as a non-positive base cost when a markup percent is requested.
	ErrInvalidConfiguration = errors.New("pricing: invalid configuration")
	// ErrUnsupportedFinancingTerm is returned when a lease term and escalator pair has no payment factor.
	ErrUnsupportedFinancingTerm = errors.New("pricing: unsupported financing term")
	// ErrInvalidTerm is returned for non-positive loan terms or bundle lengths.
	ErrInvalidTerm = errors.New("pricing: invalid term")
)
