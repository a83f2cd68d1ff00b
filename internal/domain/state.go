package domain

import "strings"

// StateCode is a two-letter US jurisdiction code
type StateCode string

const (
	StateAL StateCode = "AL"
	StateAK StateCode = "AK"
	StateAZ StateCode = "AZ"
	StateAR StateCode = "AR"
	StateCA StateCode = "CA"
	StateCO StateCode = "CO"
	StateCT StateCode = "CT"
	StateDE StateCode = "DE"
	StateDC StateCode = "DC"
	StateFL StateCode = "FL"
	StateGA StateCode = "GA"
	StateHI StateCode = "HI"
	StateID StateCode = "ID"
	StateIL StateCode = "IL"
	StateIN StateCode = "IN"
	StateIA StateCode = "IA"
	StateKS StateCode = "KS"
	StateKY StateCode = "KY"
	StateLA StateCode = "LA"
	StateME StateCode = "ME"
	StateMD StateCode = "MD"
	StateMA StateCode = "MA"
	StateMI StateCode = "MI"
	StateMN StateCode = "MN"
	StateMS StateCode = "MS"
	StateMO StateCode = "MO"
	StateMT StateCode = "MT"
	StateNE StateCode = "NE"
	StateNV StateCode = "NV"
	StateNH StateCode = "NH"
	StateNJ StateCode = "NJ"
	StateNM StateCode = "NM"
	StateNY StateCode = "NY"
	StateNC StateCode = "NC"
	StateND StateCode = "ND"
	StateOH StateCode = "OH"
	StateOK StateCode = "OK"
	StateOR StateCode = "OR"
	StatePA StateCode = "PA"
	StateRI StateCode = "RI"
	StateSC StateCode = "SC"
	StateSD StateCode = "SD"
	StateTN StateCode = "TN"
	StateTX StateCode = "TX"
	StateUT StateCode = "UT"
	StateVT StateCode = "VT"
	StateVA StateCode = "VA"
	StateWA StateCode = "WA"
	StateWV StateCode = "WV"
	StateWI StateCode = "WI"
	StateWY StateCode = "WY"
)

var stateNames = map[StateCode]string{
	StateAL: "Alabama", StateAK: "Alaska", StateAZ: "Arizona", StateAR: "Arkansas",
	StateCA: "California", StateCO: "Colorado", StateCT: "Connecticut", StateDE: "Delaware",
	StateDC: "District of Columbia", StateFL: "Florida", StateGA: "Georgia", StateHI: "Hawaii",
	StateID: "Idaho", StateIL: "Illinois", StateIN: "Indiana", StateIA: "Iowa",
	StateKS: "Kansas", StateKY: "Kentucky", StateLA: "Louisiana", StateME: "Maine",
	StateMD: "Maryland", StateMA: "Massachusetts", StateMI: "Michigan", StateMN: "Minnesota",
	StateMS: "Mississippi", StateMO: "Missouri", StateMT: "Montana", StateNE: "Nebraska",
	StateNV: "Nevada", StateNH: "New Hampshire", StateNJ: "New Jersey", StateNM: "New Mexico",
	StateNY: "New York", StateNC: "North Carolina", StateND: "North Dakota", StateOH: "Ohio",
	StateOK: "Oklahoma", StateOR: "Oregon", StatePA: "Pennsylvania", StateRI: "Rhode Island",
	StateSC: "South Carolina", StateSD: "South Dakota", StateTN: "Tennessee", StateTX: "Texas",
	StateUT: "Utah", StateVT: "Vermont", StateVA: "Virginia", StateWA: "Washington",
	StateWV: "West Virginia", StateWI: "Wisconsin", StateWY: "Wyoming",
}

// Name returns the full jurisdiction name, or the code itself when unknown
func (s StateCode) Name() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return string(s)
}

func (s StateCode) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// ParseStateCode accepts a two-letter code or a full name, case-insensitively
func ParseStateCode(v string) (StateCode, bool) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", false
	}
	if code := StateCode(strings.ToUpper(v)); code.Valid() {
		return code, true
	}
	for code, name := range stateNames {
		if strings.EqualFold(name, v) {
			return code, true
		}
	}
	return "", false
}
