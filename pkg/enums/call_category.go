package enums

import "fmt"

// CallCategory is the outcome an agent assigns to a call attempt.
type CallCategory string

const (
	CallCategorySwitchedOff   CallCategory = "switched_off"
	CallCategoryBusy          CallCategory = "busy"
	CallCategoryNoAnswer      CallCategory = "no_answer"
	CallCategoryNotInterested CallCategory = "not_interested"
	CallCategoryInterested    CallCategory = "interested"
)

var validCallCategories = []CallCategory{
	CallCategorySwitchedOff,
	CallCategoryBusy,
	CallCategoryNoAnswer,
	CallCategoryNotInterested,
	CallCategoryInterested,
}

// String implements fmt.Stringer.
func (c CallCategory) String() string {
	return string(c)
}

// IsValid reports whether the value is a known CallCategory.
func (c CallCategory) IsValid() bool {
	for _, candidate := range validCallCategories {
		if candidate == c {
			return true
		}
	}
	return false
}

// ParseCallCategory converts raw input into a CallCategory.
func ParseCallCategory(value string) (CallCategory, error) {
	for _, candidate := range validCallCategories {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid call category %q", value)
}
