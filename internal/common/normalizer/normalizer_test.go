package normalizer

import (
	"testing"
	"time"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "acme health", NormalizeName("ACME Health, Inc."))
	assert.Equal(t, "acme health", NormalizeName("Acme  Health L.L.C."))
	assert.Equal(t, "clinica mendez", NormalizeName("Clínica Méndez Corp"))
	assert.Equal(t, "smith and sons", NormalizeName("Smith & Sons Co."))
	assert.Equal(t, "inc", NormalizeName("Inc."))
	assert.Equal(t, "", NormalizeName("  ...  "))
}

func TestNormalize(t *testing.T) {
	n := NewNormalizer()
	retrieved := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	notice, err := n.Normalize(domain.RawRecord{
		domain.FieldEmployer:   "<b>Sunrise Skilled Nursing Facility</b>",
		domain.FieldCity:       " Fresno ",
		domain.FieldNoticeDate: "03/04/2025",
		domain.FieldEmployees:  "1,204",
		domain.FieldIndustry:   "623110 - Nursing Care Facilities",
		domain.FieldReason:     "unit &amp; wing closure",
		domain.FieldLink:       "https://edd.ca.gov/warn/123.PDF",
		domain.FieldRecordID:   "WARN-123",
	}, Source{
		Jurisdiction: domain.StateCA,
		ProviderName: "ca-edd",
		ProviderURL:  "https://edd.ca.gov/warn",
		RetrievedAt:  retrieved,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.StateCA, notice.Jurisdiction)
	assert.Equal(t, "Sunrise Skilled Nursing Facility", notice.EmployerName)
	assert.Equal(t, "Fresno", notice.City)
	require.NotNil(t, notice.NoticeDate)
	assert.Equal(t, "2025-03-04", notice.NoticeDate.String())
	assert.Nil(t, notice.EffectiveDate)
	require.NotNil(t, notice.EmployeesAffected)
	assert.Equal(t, 1204, *notice.EmployeesAffected)
	assert.Equal(t, "623110", notice.IndustryCode)
	assert.Equal(t, "unit & wing closure", notice.Reason)
	assert.Equal(t, "WARN-123", notice.Provenance.ProviderRecordID)
	assert.Equal(t, retrieved, notice.Provenance.RetrievedAt)
	require.Len(t, notice.Attachments, 1)
	assert.Equal(t, "application/pdf", notice.Attachments[0].MimeType)
	assert.Empty(t, notice.ID)
	assert.Nil(t, notice.Impact)
}

func TestNormalize_MissingEmployer(t *testing.T) {
	_, err := NewNormalizer().Normalize(domain.RawRecord{domain.FieldCity: "Austin"}, Source{})
	assert.ErrorIs(t, err, ErrMissingEmployer)
}

func TestNormalize_StateColumnFallback(t *testing.T) {
	notice, err := NewNormalizer().Normalize(domain.RawRecord{
		domain.FieldEmployer: "Valley Clinic",
		domain.FieldState:    "Texas",
	}, Source{ProviderName: "aggregator"})
	require.NoError(t, err)
	assert.Equal(t, domain.StateTX, notice.Jurisdiction)
}
