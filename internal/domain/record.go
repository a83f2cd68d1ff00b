package domain

// Field is a recognized semantic column of a WARN listing
type Field string

const (
	FieldEmployer      Field = "employer"
	FieldParentSystem  Field = "parentSystem"
	FieldAddress       Field = "address"
	FieldCity          Field = "city"
	FieldCounty        Field = "county"
	FieldState         Field = "state"
	FieldNoticeDate    Field = "noticeDate"
	FieldEffectiveDate Field = "effectiveDate"
	FieldEmployees     Field = "employees"
	FieldIndustry      Field = "industry"
	FieldReason        Field = "reason"
	FieldRecordID      Field = "recordId"
	FieldLink          Field = "link"
	FieldRawText       Field = "rawText"
)

// RawRecord maps recognized fields to the raw cell text of a single source row.
// Unmatched columns are not carried.
type RawRecord map[Field]string

// Get returns the raw value for f, or "" when the column was not present
func (r RawRecord) Get(f Field) string {
	if r == nil {
		return ""
	}
	return r[f]
}
