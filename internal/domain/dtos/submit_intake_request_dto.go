package dtos

// SubmitIntakeRequest is the raw form payload for one COPD intake submission.
// It binds from JSON and from url-encoded or multipart form bodies.
// The classified vitals are pointers so an omitted reading is told apart from a zero.
type SubmitIntakeRequest struct {
	Name             string `json:"name" form:"name"`
	PhoneNumber      string `json:"phone_number" form:"phone_number"`
	NationalID       string `json:"national_id" form:"national_id"`
	Age              int    `json:"age" form:"age"`
	OxygenSaturation *int   `json:"oxygen_saturation" form:"oxygen_saturation"` // SpO2 %
	FEV1Percent      *int   `json:"fev1_percent" form:"fev1_percent"`           // FEV1 % predicted
	PeakFlowLPM      int    `json:"peak_flow_lpm" form:"peak_flow_lpm"`
	Symptoms         string `json:"symptoms" form:"symptoms"`
}

// MissingVitals returns a message per classified reading that was not supplied.
func (r SubmitIntakeRequest) MissingVitals() map[string]string {
	missing := make(map[string]string)
	if r.OxygenSaturation == nil {
		missing["oxygen_saturation"] = "oxygen saturation is required"
	}
	if r.FEV1Percent == nil {
		missing["fev1_percent"] = "FEV1 % predicted is required"
	}
	return missing
}
