package intake

import (
	"errors"
	"strings"
)

// PatientIntake is the snapshot of every form field taken at submission time.
// It is passed by value and never retained once the submission completes.
type PatientIntake struct {
	Name             string
	PhoneNumber      string
	NationalID       string
	Age              int
	OxygenSaturation int // SpO2, percent
	FEV1Percent      int // spirometry FEV1, percent of predicted
	PeakFlowLPM      int // litres per minute
	Symptoms         string
}

var (
	// ErrMissingRequiredFields is returned when name, symptoms, phone or national id is blank.
	ErrMissingRequiredFields = errors.New("please fill in all required fields before submitting")
	// ErrInvalidIdentifierFormat is returned when the phone number or national id has the wrong shape.
	ErrInvalidIdentifierFormat = errors.New("invalid phone number or national ID format")
)

const (
	phoneLength      = 11
	nationalIDLength = 14
)

// ValidatePhone reports whether phone is exactly 11 decimal digits starting with '0'.
func ValidatePhone(phone string) bool {
	return len(phone) == phoneLength && phone[0] == '0' && isDigits(phone)
}

// ValidateNationalID reports whether id is exactly 14 decimal digits starting with '2' or '3'.
func ValidateNationalID(id string) bool {
	if len(id) != nationalIDLength || !isDigits(id) {
		return false
	}
	return id[0] == '2' || id[0] == '3'
}

// IsSubmittable is the single gate a submission must pass before it is stored.
func IsSubmittable(in PatientIntake) bool {
	return strings.TrimSpace(in.Name) != "" &&
		strings.TrimSpace(in.Symptoms) != "" &&
		ValidatePhone(in.PhoneNumber) &&
		ValidateNationalID(in.NationalID)
}

// Check makes the same decision as IsSubmittable and reports why a submission was
// rejected. Blank required fields take precedence over identifier format problems.
func Check(in PatientIntake) error {
	if strings.TrimSpace(in.Name) == "" ||
		strings.TrimSpace(in.Symptoms) == "" ||
		strings.TrimSpace(in.PhoneNumber) == "" ||
		strings.TrimSpace(in.NationalID) == "" {
		return ErrMissingRequiredFields
	}
	if !ValidatePhone(in.PhoneNumber) || !ValidateNationalID(in.NationalID) {
		return ErrInvalidIdentifierFormat
	}
	return nil
}

// FieldErrors returns per-field feedback keyed by the form field name.
// An empty map does not replace the submission-time check.
func FieldErrors(in PatientIntake) map[string]string {
	errs := make(map[string]string)
	if strings.TrimSpace(in.Name) == "" {
		errs["name"] = "name is required"
	}
	if strings.TrimSpace(in.Symptoms) == "" {
		errs["symptoms"] = "symptoms are required"
	}
	switch {
	case in.PhoneNumber == "":
		errs["phone_number"] = "phone number is required"
	case !ValidatePhone(in.PhoneNumber):
		errs["phone_number"] = "phone number must be 11 digits starting with 0"
	}
	switch {
	case in.NationalID == "":
		errs["national_id"] = "national ID is required"
	case !ValidateNationalID(in.NationalID):
		errs["national_id"] = "national ID must be 14 digits starting with 2 or 3"
	}
	return errs
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
