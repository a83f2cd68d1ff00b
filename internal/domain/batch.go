package domain

import "time"

// AdapterResult is what a jurisdiction adapter hands back after one fetch cycle
type AdapterResult struct {
	Jurisdiction StateCode          `json:"jurisdiction"`
	FetchedAt    time.Time          `json:"fetchedAt"`
	Notices      []NormalizedNotice `json:"notices"`
	Provider     string             `json:"provider,omitempty"` // provider whose result set was kept
	Attempts     []ProviderAttempt  `json:"attempts,omitempty"`
}

// ProviderAttempt records a single provider call inside a fallback chain
type ProviderAttempt struct {
	Provider string        `json:"provider"`
	Count    int           `json:"count"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"durationNs"`
}

// RunStatus is the outcome of one adapter inside a batch run
type RunStatus string

const (
	StatusOK      RunStatus = "ok"
	StatusEmpty   RunStatus = "empty"
	StatusTimeout RunStatus = "timeout"
	StatusPanic   RunStatus = "panic"
)

// ManifestEntry reports how one adapter fared during a batch run
type ManifestEntry struct {
	Jurisdiction StateCode         `json:"jurisdiction"`
	Status       RunStatus         `json:"status"`
	Error        string            `json:"error,omitempty"`
	Count        int               `json:"count"`
	Duration     time.Duration     `json:"durationNs"`
	Attempts     []ProviderAttempt `json:"attempts,omitempty"`
}

// Failed reports whether the adapter errored or timed out
func (m ManifestEntry) Failed() bool {
	return m.Status == StatusTimeout || m.Status == StatusPanic
}

// Batch is the unit handed to sinks: merged notices plus run metadata
type Batch struct {
	BatchID   string             `json:"batchId"`
	FetchedAt time.Time          `json:"fetchedAt"`
	Notices   []NormalizedNotice `json:"notices"`
	Manifest  []ManifestEntry    `json:"manifest,omitempty"`
}
