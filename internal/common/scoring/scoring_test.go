package scoring

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(n int) *int { return &n }

func TestScore_SkilledNursingClosure(t *testing.T) {
	impact := Score(&domain.NormalizedNotice{
		Jurisdiction: domain.StateCA,
		EmployerName: "Sunrise Skilled Nursing Facility",
		Reason:       "unit closure",
		IndustryCode: "6231",
	})

	assert.GreaterOrEqual(t, impact.Score, 80)
	assert.Equal(t, domain.LabelLikely, impact.Label)
	assert.Equal(t, domain.SettingSNF, impact.CareSetting)
	assert.Contains(t, impact.Signals, "healthcare:naics")
	assert.Contains(t, impact.KeywordsFound, "nursing")
	assert.Contains(t, impact.KeywordsFound, "unit closure")
	assert.Equal(t, impact.Signals, impact.Explanations)

	require.NotNil(t, impact.RoleMix)
	assert.Equal(t, 100, impact.RoleMix.RN+impact.RoleMix.LPN+impact.RoleMix.CNA)
	assert.Greater(t, impact.RoleMix.CNA, impact.RoleMix.RN)
}

func TestScore_NonHealthcare(t *testing.T) {
	impact := Score(&domain.NormalizedNotice{
		EmployerName:      "Midwest Steel Fabrication",
		Reason:            "plant closure",
		IndustryCode:      "331110",
		EmployeesAffected: intPtr(300),
	})

	assert.Equal(t, 10, impact.Score)
	assert.Equal(t, domain.LabelUnclear, impact.Label)
	assert.Equal(t, domain.SettingUnknown, impact.CareSetting)
	assert.Nil(t, impact.RoleMix)
	assert.Empty(t, impact.Specialties)
	assert.Equal(t, []string{"magnitude:200+"}, impact.Signals)
}

func TestScore_AcuteWithSpecialties(t *testing.T) {
	impact := Score(&domain.NormalizedNotice{
		EmployerName:      "Riverside Medical Center",
		Reason:            "Closing ICU and labor and delivery; 40 registered nurses affected",
		EmployeesAffected: intPtr(75),
	})

	assert.Equal(t, domain.SettingAcute, impact.CareSetting)
	assert.Equal(t, []string{"ICU", "OB"}, impact.Specialties)
	assert.Contains(t, impact.Signals, "magnitude:50+")
	require.NotNil(t, impact.RoleMix)
	assert.Greater(t, impact.RoleMix.RN, impact.RoleMix.LPN)
	// gate 30 + keywords (nurses, registered nurses) 20 + setting 10 + magnitude 5
	assert.Equal(t, 65, impact.Score)
	assert.Equal(t, domain.LabelPossible, impact.Label)
}

func TestScore_Occupational(t *testing.T) {
	impact := Score(&domain.NormalizedNotice{
		EmployerName: "Gulf Refining Co",
		Reason:       "Closure of employee health services staffed by occupational health nurses",
	})

	assert.Equal(t, domain.SettingOccupational, impact.CareSetting)
	require.NotNil(t, impact.RoleMix)
	assert.Equal(t, domain.RoleMix{RN: 100}, *impact.RoleMix)
}

func TestScore_HyphenTolerance(t *testing.T) {
	a := Score(&domain.NormalizedNotice{EmployerName: "Acme", Reason: "on-site clinic"})
	b := Score(&domain.NormalizedNotice{EmployerName: "Acme", Reason: "on site clinic"})
	assert.Equal(t, a.KeywordsFound, b.KeywordsFound)
	assert.Contains(t, a.KeywordsFound, "on-site clinic")
}

func TestScore_KeywordCap(t *testing.T) {
	impact := Score(&domain.NormalizedNotice{
		EmployerName: "Staffing Partners",
		Reason:       "RN, LPN, CNA, nurse aide, charge nurse and bedside patient care roles",
	})
	assert.Greater(t, len(impact.KeywordsFound), 4)
	// no gate, no setting: only the capped keyword points
	assert.Equal(t, 40, impact.Score)
}

func TestLargestRemainder(t *testing.T) {
	assert.Equal(t, [3]int{34, 33, 33}, largestRemainder([3]int{30, 30, 30}))
	assert.Equal(t, [3]int{26, 35, 39}, largestRemainder([3]int{30, 40, 45}))
}

var vocabulary = []string{
	"hospital", "nursing", "skilled", "facility", "unit", "closure", "RN", "LPN", "CNA", "ICU",
	"clinic", "steel", "plant", "hospice", "home", "health", "behavioral", "on-site", "occupational",
	"cardiac", "oncology", "emergency", "department", "Inc", "layoff", "&", "-", "the",
}

func words(idx []int) string {
	parts := make([]string, len(idx))
	for i, j := range idx {
		parts[i] = vocabulary[j]
	}
	return strings.Join(parts, " ")
}

func genNotice(employer, reason []int, naics int, count int) *domain.NormalizedNotice {
	codes := []string{"", "62", "6231", "622110", "6216", "621111", "6222", "331110", "44"}
	n := &domain.NormalizedNotice{
		EmployerName: words(employer),
		Reason:       words(reason),
		IndustryCode: codes[naics%len(codes)],
	}
	if count >= 0 {
		n.EmployeesAffected = &count
	}
	return n
}

func TestScoreProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	wordGen := gen.SliceOf(gen.IntRange(0, len(vocabulary)-1))

	properties.Property("score is deterministic", prop.ForAll(
		func(employer, reason []int, naics, count int) bool {
			n := genNotice(employer, reason, naics, count)
			return reflect.DeepEqual(Score(n), Score(n))
		},
		wordGen, wordGen, gen.IntRange(0, 100), gen.IntRange(-1, 5000),
	))

	properties.Property("score is bounded and role mix sums to 100", prop.ForAll(
		func(employer, reason []int, naics, count int) bool {
			impact := Score(genNotice(employer, reason, naics, count))
			if impact.Score < 0 || impact.Score > 100 {
				return false
			}
			if impact.RoleMix != nil {
				rm := impact.RoleMix
				if rm.RN+rm.LPN+rm.CNA != 100 || rm.RN < 0 || rm.LPN < 0 || rm.CNA < 0 {
					return false
				}
			}
			return reflect.DeepEqual(impact.Signals, impact.Explanations)
		},
		wordGen, wordGen, gen.IntRange(0, 100), gen.IntRange(-1, 5000),
	))

	properties.TestingRun(t)
}
