package dtos

// ValidationResponse carries per-field feedback for the intake form.
type ValidationResponse struct {
	Submittable bool              `json:"submittable"`
	FieldErrors map[string]string `json:"field_errors,omitempty"`
}

// SeverityResponse is the classification of a pair of vital-sign readings.
type SeverityResponse struct {
	OxygenSaturation int    `json:"oxygen_saturation"`
	FEV1Percent      int    `json:"fev1_percent"`
	Severity         string `json:"severity"`
	SeverityLabel    string `json:"severity_label"`
	Recommendation   string `json:"recommendation"`
}
