// Package extraction defines the structured facts the AI service pulls from
// source documents and the merge semantics for combining per-document results
// into a single aggregate for a letter.
package extraction

// Confidence is a categorical assessment of extraction certainty.
type Confidence string

// Confidence levels reported by the AI service.
const (
	ConfidenceHigh      Confidence = "high"
	ConfidenceMedium    Confidence = "medium"
	ConfidenceLow       Confidence = "low"
	ConfidenceUncertain Confidence = "uncertain"
)

// Party is a person or organization involved in the case.
type Party struct {
	Name             string     `json:"name"`
	PartyType        string     `json:"party_type"`
	ContactInfo      *string    `json:"contact_info,omitempty"`
	InsuranceCompany *string    `json:"insurance_company,omitempty"`
	PolicyNumber     *string    `json:"policy_number,omitempty"`
	Confidence       Confidence `json:"confidence"`
	SourceText       *string    `json:"source_text,omitempty"`
}

// Damage is a loss claimed or identified in a document.
type Damage struct {
	DamageType       string     `json:"damage_type"`
	Description      string     `json:"description"`
	Amount           *float64   `json:"amount,omitempty"`
	AmountIsEstimate bool       `json:"amount_is_estimate"`
	Provider         *string    `json:"provider,omitempty"`
	Confidence       Confidence `json:"confidence"`
	SourceText       *string    `json:"source_text,omitempty"`
}

// TimelineEvent is a dated factual statement relevant to the case.
type TimelineEvent struct {
	Date        *string    `json:"date,omitempty"`
	Description string     `json:"description"`
	Category    *string    `json:"category,omitempty"`
	Confidence  Confidence `json:"confidence"`
	SourceText  *string    `json:"source_text,omitempty"`
}

// Claim is a legal theory supported by the documents.
type Claim struct {
	Theory      string     `json:"theory"`
	Description string     `json:"description"`
	Confidence  Confidence `json:"confidence"`
	SourceText  *string    `json:"source_text,omitempty"`
}

// Incident describes the primary event giving rise to the claim.
type Incident struct {
	Date               *string    `json:"date,omitempty"`
	Location           *string    `json:"location,omitempty"`
	Description        string     `json:"description"`
	IncidentType       *string    `json:"incident_type,omitempty"`
	PoliceReportNumber *string    `json:"police_report_number,omitempty"`
	Confidence         Confidence `json:"confidence"`
	SourceText         *string    `json:"source_text,omitempty"`
}

// Empty reports whether the incident carries no information.
func (i *Incident) Empty() bool {
	return i == nil || (i.Description == "" && i.Date == nil && i.Location == nil)
}

// ExtractedData is the mergeable aggregate of facts extracted from one or
// more documents. List fields are independent; Incident is singular.
type ExtractedData struct {
	Parties  []Party         `json:"parties"`
	Damages  []Damage        `json:"damages"`
	Timeline []TimelineEvent `json:"timeline"`
	Claims   []Claim         `json:"claims"`
	Incident *Incident       `json:"incident,omitempty"`
}

// Empty reports whether no facts have been extracted.
func (d *ExtractedData) Empty() bool {
	return len(d.Parties) == 0 &&
		len(d.Damages) == 0 &&
		len(d.Timeline) == 0 &&
		len(d.Claims) == 0 &&
		d.Incident.Empty()
}
