package registry

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ocumatch/platform/pkg/common/models"
)

type ValidationError struct {
	reason error
}

func (e ValidationError) Error() string {
	return e.reason.Error()
}

func (e ValidationError) Unwrap() error {
	return e.reason
}

func IsValidationError(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve)
}

func invalid(format string, args ...interface{}) error {
	return ValidationError{reason: fmt.Errorf(format, args...)}
}

// Documented clinical ranges. A present value outside its range is a
// validation failure at the intake boundary; a missing value is not (it
// surfaces later as an incomplete composite of 0).
type scoreRange struct {
	min, max float64
}

var donorRanges = map[string]scoreRange{
	"clarityScore":  {0, 10},
	"opacityScore":  {0, 10},
	"hla_a":         {0.5, 2.0},
	"hla_b":         {0.5, 2.5},
	"hla_c":         {0.3, 1.5},
	"hla_dr":        {0.2, 1.2},
	"hla_dq":        {0.1, 1.0},
	"tissueQuality": {0, 1},
	"storageDays":   {0, 100},
}

var recipientRanges = map[string]scoreRange{
	"visionScore":           {0, 10},
	"bloodMatchScore":       {0, 10},
	"hlaMatchScore":         {0, 10},
	"tissueQualityScore":    {0, 10},
	"recipientUrgencyScore": {0, 10},
}

func ValidateDonorIntake(in models.DonorIntake) error {
	if err := validateDemographics(in.Name, in.Age, in.Gender, in.Contact, in.BloodGroup); err != nil {
		return err
	}

	fields := map[string]*float64{
		"clarityScore":  in.ClarityScore,
		"opacityScore":  in.OpacityScore,
		"hla_a":         in.HLAA,
		"hla_b":         in.HLAB,
		"hla_c":         in.HLAC,
		"hla_dr":        in.HLADR,
		"hla_dq":        in.HLADQ,
		"tissueQuality": in.TissueQuality,
		"storageDays":   in.StorageDays,
	}
	return validateRanges(fields, donorRanges)
}

func ValidateRecipientIntake(in models.RecipientIntake) error {
	if err := validateDemographics(in.Name, in.Age, in.Gender, in.Contact, in.BloodGroup); err != nil {
		return err
	}

	fields := map[string]*float64{
		"visionScore":           in.VisionScore,
		"bloodMatchScore":       in.BloodMatchScore,
		"hlaMatchScore":         in.HLAMatchScore,
		"tissueQualityScore":    in.TissueQualityScore,
		"recipientUrgencyScore": in.RecipientUrgencyScore,
	}
	return validateRanges(fields, recipientRanges)
}

func validateDemographics(name string, age int, gender, contact, bloodGroup string) error {
	if strings.TrimSpace(name) == "" {
		return invalid("name is required")
	}
	if age <= 0 || age > 120 {
		return invalid("age must be between 1 and 120")
	}
	if strings.TrimSpace(gender) == "" {
		return invalid("gender is required")
	}
	if strings.TrimSpace(contact) == "" {
		return invalid("contact is required")
	}
	if !models.BloodGroup(bloodGroup).Valid() {
		return invalid("blood group '%s' is not recognised", bloodGroup)
	}
	return nil
}

func validateRanges(fields map[string]*float64, ranges map[string]scoreRange) error {
	for name, value := range fields {
		if value == nil {
			continue
		}
		bounds := ranges[name]
		if *value < bounds.min || *value > bounds.max {
			return invalid("%s must be between %v and %v", name, bounds.min, bounds.max)
		}
	}
	return nil
}
