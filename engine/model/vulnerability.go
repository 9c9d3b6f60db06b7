package model

import "time"

type VulnerabilitySource struct {
	Name string
	URL  string `validate:"omitempty,url"`
}

type VulnerabilityReference struct {
	ID     string `validate:"required"`
	Source VulnerabilitySource
}

type VulnerabilityRating struct {
	Source        *VulnerabilitySource
	Score         *float64
	Severity      Severity
	Method        RatingMethod
	Vector        string
	Justification string
}

type Advisory struct {
	Title string
	URL   string `validate:"required,url"`
}

type VulnerabilityAnalysis struct {
	State         AnalysisState
	Justification AnalysisJustification
	Responses     []AnalysisResponse
	Detail        string
}

type AffectedVersion struct {
	Version string
	Range   string
	Status  AffectedStatus
}

// VulnerabilityAffect points at an affected component or service through its BomRef.
type VulnerabilityAffect struct {
	Ref      *BomRef
	Versions []AffectedVersion
}

type Vulnerability struct {
	BomRef         BomRef
	ID             string
	Source         *VulnerabilitySource
	References     []VulnerabilityReference `validate:"dive"`
	Ratings        []VulnerabilityRating
	CWEs           []int `validate:"dive,gte=1"`
	Description    string
	Detail         string
	Recommendation string
	Advisories     []Advisory `validate:"dive"`
	Created        *time.Time
	Published      *time.Time
	Updated        *time.Time
	Analysis       *VulnerabilityAnalysis
	Affects        []VulnerabilityAffect
	Properties     []Property `validate:"dive"`
}

func (v *Vulnerability) Ref() *BomRef {
	return &v.BomRef
}

// Affect appends an affects entry for target.
func (v *Vulnerability) Affect(target Referenceable, versions ...AffectedVersion) {
	v.Affects = append(v.Affects, VulnerabilityAffect{Ref: target.Ref(), Versions: versions})
}
