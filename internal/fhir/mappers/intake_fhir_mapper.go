package mappers

import (
	"encoding/json"
	"fmt"
	"strings"

	"copd-intake-service/internal/domain/entities"
	"copd-intake-service/internal/domain/intake"
)

// Supported FHIR versions.
const (
	FHIRVersionSTU3  = "STU3"
	FHIRVersionDSTU2 = "DSTU2"
)

const (
	loincSystem      = "http://loinc.org"
	ucumSystem       = "http://unitsofmeasure.org"
	nationalIDSystem = "urn:oid:national-id"
)

// FHIRHumanName represents a FHIR HumanName data type. Only the free-text form is
// emitted since family is a string in STU3 and a list in DSTU2.
type FHIRHumanName struct {
	Use  string `json:"use,omitempty"`
	Text string `json:"text,omitempty"`
}

type FHIRIdentifier struct {
	System string `json:"system,omitempty"`
	Value  string `json:"value,omitempty"`
}

type FHIRContactPoint struct {
	System string `json:"system,omitempty"` // phone | email | ...
	Value  string `json:"value,omitempty"`
	Use    string `json:"use,omitempty"`
}

type FHIRCoding struct {
	System  string `json:"system,omitempty"`
	Code    string `json:"code,omitempty"`
	Display string `json:"display,omitempty"`
}

type FHIRCodeableConcept struct {
	Coding []FHIRCoding `json:"coding,omitempty"`
	Text   string       `json:"text,omitempty"`
}

type FHIRQuantity struct {
	Value  int    `json:"value"`
	Unit   string `json:"unit,omitempty"`
	System string `json:"system,omitempty"`
	Code   string `json:"code,omitempty"`
}

type FHIRReference struct {
	Reference string `json:"reference"`
}

// FHIRPatientResource is the subject of every intake bundle.
type FHIRPatientResource struct {
	ResourceType string             `json:"resourceType"`
	ID           string             `json:"id,omitempty"`
	Identifier   []FHIRIdentifier   `json:"identifier,omitempty"`
	Name         []FHIRHumanName    `json:"name,omitempty"`
	Telecom      []FHIRContactPoint `json:"telecom,omitempty"`
}

// FHIRObservationResource carries one vital-sign reading.
type FHIRObservationResource struct {
	ResourceType      string              `json:"resourceType"`
	ID                string              `json:"id,omitempty"`
	Status            string              `json:"status"`
	Code              FHIRCodeableConcept `json:"code"`
	Subject           FHIRReference       `json:"subject"`
	EffectiveDateTime string              `json:"effectiveDateTime,omitempty"`
	ValueQuantity     FHIRQuantity        `json:"valueQuantity"`
}

// FHIRRiskAssessmentResource carries the computed severity and the reviewer's notes.
// STU3 fills Status, OccurrenceDateTime and Comment; DSTU2 has none of them and
// dates the assessment with Date instead.
type FHIRRiskAssessmentResource struct {
	ResourceType       string               `json:"resourceType"`
	ID                 string               `json:"id,omitempty"`
	Status             string               `json:"status,omitempty"`
	Subject            FHIRReference        `json:"subject"`
	OccurrenceDateTime string               `json:"occurrenceDateTime,omitempty"`
	Date               string               `json:"date,omitempty"`
	Basis              []FHIRReference      `json:"basis,omitempty"`
	Prediction         []FHIRRiskPrediction `json:"prediction,omitempty"`
	Mitigation         string               `json:"mitigation,omitempty"`
	Comment            string               `json:"comment,omitempty"`
}

// FHIRRiskPrediction holds the tier as qualitativeRisk (STU3) or
// probabilityCodeableConcept (DSTU2).
type FHIRRiskPrediction struct {
	Outcome                    FHIRCodeableConcept  `json:"outcome"`
	QualitativeRisk            *FHIRCodeableConcept `json:"qualitativeRisk,omitempty"`
	ProbabilityCodeableConcept *FHIRCodeableConcept `json:"probabilityCodeableConcept,omitempty"`
}

type FHIRBundleEntry struct {
	FullURL  string `json:"fullUrl,omitempty"`
	Resource any    `json:"resource"`
}

// FHIRBundle is a collection of the resources exported for one intake.
type FHIRBundle struct {
	ResourceType string            `json:"resourceType"`
	ID           string            `json:"id,omitempty"`
	Type         string            `json:"type"`
	Timestamp    string            `json:"timestamp,omitempty"` // STU3 and later
	Entry        []FHIRBundleEntry `json:"entry"`
}

// MapIntakeToFHIRBundle converts a stored intake into a FHIR collection bundle with
// a Patient, three vital-sign Observations and a RiskAssessment.
// fhirVersion is "STU3" or "DSTU2". The two differ only in the RiskAssessment and
// the bundle timestamp; reviewer notes have no home in a DSTU2 RiskAssessment and are dropped.
func MapIntakeToFHIRBundle(record entities.IntakeRecord, fhirVersion string) (json.RawMessage, error) {
	if strings.TrimSpace(record.PatientName) == "" {
		return nil, fmt.Errorf("patient name is required for FHIR mapping")
	}
	if fhirVersion != FHIRVersionSTU3 && fhirVersion != FHIRVersionDSTU2 {
		return nil, fmt.Errorf("unsupported FHIR version %q", fhirVersion)
	}

	id := record.ID.String()
	effective := record.SubmittedAt.Format("2006-01-02T15:04:05Z07:00")
	patientRef := FHIRReference{Reference: "Patient/" + id}

	patient := FHIRPatientResource{
		ResourceType: "Patient",
		ID:           id,
		Identifier:   []FHIRIdentifier{{System: nationalIDSystem, Value: record.NationalID}},
		Name:         []FHIRHumanName{{Use: "official", Text: record.PatientName}},
		Telecom:      []FHIRContactPoint{{System: "phone", Value: record.PhoneNumber, Use: "mobile"}},
	}

	observations := []FHIRObservationResource{
		vitalObservation(id+"-spo2", patientRef, effective,
			FHIRCodeableConcept{
				Coding: []FHIRCoding{{System: loincSystem, Code: "59408-5", Display: "Oxygen saturation in Arterial blood by Pulse oximetry"}},
				Text:   "SpO2",
			},
			FHIRQuantity{Value: record.OxygenSaturation, Unit: "%", System: ucumSystem, Code: "%"}),
		vitalObservation(id+"-fev1", patientRef, effective,
			FHIRCodeableConcept{Text: "FEV1 % predicted"},
			FHIRQuantity{Value: record.FEV1Percent, Unit: "%", System: ucumSystem, Code: "%"}),
		vitalObservation(id+"-peakflow", patientRef, effective,
			FHIRCodeableConcept{
				Coding: []FHIRCoding{{System: loincSystem, Code: "19935-6", Display: "Maximum expiratory gas flow Respiratory system airway by Peak flow meter"}},
				Text:   "Peak expiratory flow",
			},
			FHIRQuantity{Value: record.PeakFlowLPM, Unit: "L/min", System: ucumSystem, Code: "L/min"}),
	}

	tier := &FHIRCodeableConcept{Text: record.SeverityLabel}
	risk := FHIRRiskAssessmentResource{
		ResourceType: "RiskAssessment",
		ID:           id + "-risk",
		Subject:      patientRef,
		Mitigation:   intake.Severity(record.Severity).Recommendation(),
	}
	prediction := FHIRRiskPrediction{Outcome: FHIRCodeableConcept{Text: "COPD exacerbation"}}

	bundle := FHIRBundle{
		ResourceType: "Bundle",
		ID:           id,
		Type:         "collection",
		Entry:        []FHIRBundleEntry{{FullURL: "urn:uuid:" + id, Resource: patient}},
	}

	switch fhirVersion {
	case FHIRVersionSTU3:
		risk.Status = "final"
		risk.OccurrenceDateTime = effective
		risk.Comment = record.ReviewerNotes
		prediction.QualitativeRisk = tier
		bundle.Timestamp = effective
	case FHIRVersionDSTU2:
		risk.Date = effective
		prediction.ProbabilityCodeableConcept = tier
	}
	risk.Prediction = []FHIRRiskPrediction{prediction}

	for _, obs := range observations {
		risk.Basis = append(risk.Basis, FHIRReference{Reference: "Observation/" + obs.ID})
		bundle.Entry = append(bundle.Entry, FHIRBundleEntry{Resource: obs})
	}
	bundle.Entry = append(bundle.Entry, FHIRBundleEntry{Resource: risk})

	rawJSON, err := json.MarshalIndent(bundle, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("error marshalling FHIR bundle to JSON: %w", err)
	}
	return rawJSON, nil
}

func vitalObservation(id string, subject FHIRReference, effective string, code FHIRCodeableConcept, value FHIRQuantity) FHIRObservationResource {
	return FHIRObservationResource{
		ResourceType:      "Observation",
		ID:                id,
		Status:            "final",
		Code:              code,
		Subject:           subject,
		EffectiveDateTime: effective,
		ValueQuantity:     value,
	}
}
