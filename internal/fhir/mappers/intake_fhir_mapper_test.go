package mappers

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"copd-intake-service/internal/domain/entities"

	"github.com/google/uuid"
)

type bundleEnvelope struct {
	ResourceType string `json:"resourceType"`
	Type         string `json:"type"`
	Timestamp    string `json:"timestamp"`
	Entry        []struct {
		Resource json.RawMessage `json:"resource"`
	} `json:"entry"`
}

func sampleIntake() entities.IntakeRecord {
	return entities.IntakeRecord{
		ID:               uuid.New(),
		PatientName:      "Amira Hassan",
		PhoneNumber:      "01012345678",
		NationalID:       "29901011234567",
		Age:              64,
		OxygenSaturation: 88,
		FEV1Percent:      45,
		PeakFlowLPM:      210,
		Symptoms:         "Breathlessness at rest",
		Severity:         "HIGH_RISK",
		SeverityLabel:    "High Risk",
		SubmittedAt:      time.Date(2026, 4, 12, 10, 15, 30, 0, time.UTC),
		ReviewStatus:     entities.ReviewStatusEscalated,
		ReviewerNotes:    "Refer to pulmonology",
	}
}

func TestMapIntakeToFHIRBundle_Success(t *testing.T) {
	record := sampleIntake()

	raw, err := MapIntakeToFHIRBundle(record, "STU3")
	if err != nil {
		t.Fatalf("MapIntakeToFHIRBundle returned an unexpected error: %v", err)
	}

	var bundle bundleEnvelope
	if err := json.Unmarshal(raw, &bundle); err != nil {
		t.Fatalf("Error unmarshalling bundle: %v. JSON: %s", err, string(raw))
	}
	if bundle.ResourceType != "Bundle" || bundle.Type != "collection" {
		t.Errorf("Expected collection Bundle, got %s/%s", bundle.ResourceType, bundle.Type)
	}
	if bundle.Timestamp != "2026-04-12T10:15:30Z" {
		t.Errorf("Expected bundle timestamp, got %q", bundle.Timestamp)
	}
	if len(bundle.Entry) != 5 {
		t.Fatalf("Expected 5 entries (patient, 3 observations, risk), got %d", len(bundle.Entry))
	}

	var patient FHIRPatientResource
	if err := json.Unmarshal(bundle.Entry[0].Resource, &patient); err != nil {
		t.Fatalf("Error unmarshalling patient: %v", err)
	}
	if patient.ResourceType != "Patient" || patient.ID != record.ID.String() {
		t.Errorf("Unexpected patient resource: %+v", patient)
	}
	if len(patient.Identifier) != 1 || patient.Identifier[0].Value != "29901011234567" {
		t.Errorf("Expected national ID identifier, got %+v", patient.Identifier)
	}
	if len(patient.Telecom) != 1 || patient.Telecom[0].Value != "01012345678" {
		t.Errorf("Expected phone telecom with leading zero, got %+v", patient.Telecom)
	}

	wantValues := []int{88, 45, 210}
	for i, want := range wantValues {
		var obs FHIRObservationResource
		if err := json.Unmarshal(bundle.Entry[i+1].Resource, &obs); err != nil {
			t.Fatalf("Error unmarshalling observation %d: %v", i, err)
		}
		if obs.ResourceType != "Observation" {
			t.Errorf("Entry %d: expected Observation, got %s", i+1, obs.ResourceType)
		}
		if obs.ValueQuantity.Value != want {
			t.Errorf("Entry %d: expected value %d, got %d", i+1, want, obs.ValueQuantity.Value)
		}
		if obs.Subject.Reference != "Patient/"+record.ID.String() {
			t.Errorf("Entry %d: unexpected subject %s", i+1, obs.Subject.Reference)
		}
	}

	var risk FHIRRiskAssessmentResource
	if err := json.Unmarshal(bundle.Entry[4].Resource, &risk); err != nil {
		t.Fatalf("Error unmarshalling risk assessment: %v", err)
	}
	if risk.ResourceType != "RiskAssessment" {
		t.Errorf("Expected RiskAssessment, got %s", risk.ResourceType)
	}
	if risk.Status != "final" || risk.OccurrenceDateTime != "2026-04-12T10:15:30Z" {
		t.Errorf("Expected final assessment dated at submission, got %q/%q", risk.Status, risk.OccurrenceDateTime)
	}
	if len(risk.Prediction) != 1 || risk.Prediction[0].QualitativeRisk == nil || risk.Prediction[0].QualitativeRisk.Text != "High Risk" {
		t.Errorf("Expected High Risk prediction, got %+v", risk.Prediction)
	}
	if !strings.Contains(risk.Mitigation, "Immediate intervention") {
		t.Errorf("Expected high risk mitigation, got %q", risk.Mitigation)
	}
	if len(risk.Basis) != 3 {
		t.Errorf("Expected 3 basis references, got %d", len(risk.Basis))
	}
	if risk.Comment != "Refer to pulmonology" {
		t.Errorf("Expected reviewer notes as comment, got %q", risk.Comment)
	}
}

func TestMapIntakeToFHIRBundle_NoNotesOmitsComment(t *testing.T) {
	record := sampleIntake()
	record.ReviewerNotes = ""

	raw, err := MapIntakeToFHIRBundle(record, "STU3")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(string(raw), `"comment"`) {
		t.Errorf("Expected no comment field, got %s", string(raw))
	}
}

func TestMapIntakeToFHIRBundle_DSTU2Shape(t *testing.T) {
	record := sampleIntake()

	raw, err := MapIntakeToFHIRBundle(record, "DSTU2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, field := range []string{`"timestamp"`, `"occurrenceDateTime"`, `"qualitativeRisk"`, `"comment"`, `"meta"`} {
		if strings.Contains(string(raw), field) {
			t.Errorf("DSTU2 bundle must not carry %s, got %s", field, string(raw))
		}
	}

	var bundle bundleEnvelope
	if err := json.Unmarshal(raw, &bundle); err != nil {
		t.Fatalf("Error unmarshalling bundle: %v", err)
	}
	if len(bundle.Entry) != 5 {
		t.Fatalf("Expected 5 entries, got %d", len(bundle.Entry))
	}

	var risk map[string]json.RawMessage
	if err := json.Unmarshal(bundle.Entry[4].Resource, &risk); err != nil {
		t.Fatalf("Error unmarshalling risk assessment: %v", err)
	}
	if _, ok := risk["status"]; ok {
		t.Errorf("DSTU2 RiskAssessment has no status element")
	}
	if string(risk["date"]) != `"2026-04-12T10:15:30Z"` {
		t.Errorf("Expected date element, got %s", risk["date"])
	}

	var typed FHIRRiskAssessmentResource
	if err := json.Unmarshal(bundle.Entry[4].Resource, &typed); err != nil {
		t.Fatalf("Error unmarshalling risk assessment: %v", err)
	}
	if len(typed.Prediction) != 1 || typed.Prediction[0].ProbabilityCodeableConcept == nil ||
		typed.Prediction[0].ProbabilityCodeableConcept.Text != "High Risk" {
		t.Errorf("Expected High Risk probabilityCodeableConcept, got %+v", typed.Prediction)
	}
	if typed.Mitigation == "" {
		t.Errorf("Expected mitigation text")
	}
}

func TestMapIntakeToFHIRBundle_NameRequired(t *testing.T) {
	record := sampleIntake()
	record.PatientName = "   "

	_, err := MapIntakeToFHIRBundle(record, "STU3")
	if err == nil {
		t.Fatalf("MapIntakeToFHIRBundle expected an error for missing name, but got nil")
	}
	if !strings.Contains(err.Error(), "patient name is required") {
		t.Errorf("Expected error message to contain 'patient name is required', got: %v", err)
	}
}

func TestMapIntakeToFHIRBundle_UnsupportedVersion(t *testing.T) {
	_, err := MapIntakeToFHIRBundle(sampleIntake(), "R4")
	if err == nil || !strings.Contains(err.Error(), "unsupported FHIR version") {
		t.Errorf("Expected unsupported version error, got %v", err)
	}
}
