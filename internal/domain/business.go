package domain

import "errors"

// BusinessKey selects which configured Wave business a request applies to.
// The set is closed; adding a business means adding a constant here and the
// matching environment entries.
type BusinessKey string

const (
	BusinessBakery    BusinessKey = "bakery"
	BusinessCatering  BusinessKey = "catering"
	BusinessWorkshops BusinessKey = "workshops"
)

// ErrUnknownBusinessKey is returned when a key is not a member of the closed set.
var ErrUnknownBusinessKey = errors.New("unknown business key")

// BusinessKeys returns every valid key, in declaration order.
func BusinessKeys() []BusinessKey {
	return []BusinessKey{BusinessBakery, BusinessCatering, BusinessWorkshops}
}

// ParseBusinessKey validates a caller-supplied key against the closed set.
func ParseBusinessKey(s string) (BusinessKey, error) {
	switch BusinessKey(s) {
	case BusinessBakery, BusinessCatering, BusinessWorkshops:
		return BusinessKey(s), nil
	default:
		return "", ErrUnknownBusinessKey
	}
}

// EnvSuffix returns the upper-cased suffix used for this key's environment entries.
func (k BusinessKey) EnvSuffix() string {
	switch k {
	case BusinessBakery:
		return "BAKERY"
	case BusinessCatering:
		return "CATERING"
	case BusinessWorkshops:
		return "WORKSHOPS"
	default:
		return ""
	}
}

func (k BusinessKey) String() string { return string(k) }
