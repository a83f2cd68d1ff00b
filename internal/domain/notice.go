package domain

import "time"

// NormalizedNotice represents one WARN layoff event from any source
type NormalizedNotice struct {
	ID           string    `json:"id"`
	Jurisdiction StateCode `json:"jurisdiction"`

	EmployerName string `json:"employerName"`
	ParentSystem string `json:"parentSystem,omitempty"`
	City         string `json:"city,omitempty"`
	County       string `json:"county,omitempty"`
	Address      string `json:"address,omitempty"`

	NoticeDate    *Date `json:"noticeDate,omitempty"`
	EffectiveDate *Date `json:"effectiveDate,omitempty"`

	// nil means "not stated"; zero is a reported count
	EmployeesAffected *int `json:"employeesAffected,omitempty"`

	IndustryCode string `json:"industryCode,omitempty"` // NAICS-like
	Reason       string `json:"reason,omitempty"`
	RawText      string `json:"rawText,omitempty"`

	Provenance  Provenance     `json:"provenance"`
	Attachments []Attachment   `json:"attachments,omitempty"`
	Impact      *NursingImpact `json:"impact,omitempty"`
}

// Provenance identifies the single source record governing a notice
type Provenance struct {
	ProviderName     string    `json:"providerName"`
	ProviderURL      string    `json:"providerUrl"`
	ProviderRecordID string    `json:"providerRecordId,omitempty"`
	RetrievedAt      time.Time `json:"retrievedAt"`
}

// Attachment is a document linked from a notice (PDF letter, spreadsheet row export)
type Attachment struct {
	URL      string `json:"url"`
	Label    string `json:"label,omitempty"`
	MimeType string `json:"mimeType,omitempty"`
}

// ImpactLabel buckets the nursing-impact score
type ImpactLabel string

const (
	LabelLikely   ImpactLabel = "Likely"
	LabelPossible ImpactLabel = "Possible"
	LabelUnclear  ImpactLabel = "Unclear"
)

// CareSetting is the inferred care environment of the affected workforce
type CareSetting string

const (
	SettingAcute        CareSetting = "acute"
	SettingSNF          CareSetting = "snf"
	SettingOutpatient   CareSetting = "outpatient"
	SettingHome         CareSetting = "home"
	SettingBehavioral   CareSetting = "behavioral"
	SettingOccupational CareSetting = "occupational"
	SettingUnknown      CareSetting = "unknown"
)

// RoleMix holds RN/LPN/CNA percentages that sum to 100
type RoleMix struct {
	RN  int `json:"rn"`
	LPN int `json:"lpn"`
	CNA int `json:"cna"`
}

// NursingImpact is derived from a notice's own fields and is never edited by hand.
// Signals and Explanations always hold the same tags.
type NursingImpact struct {
	Score         int         `json:"score"`
	Label         ImpactLabel `json:"label"`
	Signals       []string    `json:"signals"`
	Explanations  []string    `json:"explanations"`
	KeywordsFound []string    `json:"keywordsFound"`
	RoleMix       *RoleMix    `json:"roleMix,omitempty"`
	CareSetting   CareSetting `json:"careSetting"`
	Specialties   []string    `json:"specialties"`
}
