package core

import (
	"errors"
	"strings"
)

type Gender string

const (
	GenderMale   Gender = "Male"
	GenderFemale Gender = "Female"
	GenderOther  Gender = "Other"
)

var ErrInvalidGender = errors.New("gender must be Male, Female or Other")

// ParseGender normalizes case-insensitive input ("m", "FEMALE", " other ")
// to the canonical value.
func ParseGender(raw string) (Gender, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "male", "m":
		return GenderMale, nil
	case "female", "f":
		return GenderFemale, nil
	case "other", "o":
		return GenderOther, nil
	default:
		return "", ErrInvalidGender
	}
}
