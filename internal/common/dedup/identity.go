package dedup

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/normalizer"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// ComputeID derives the content identity of a notice from jurisdiction,
// normalized employer name, notice date, city and address. Equal inputs
// always give the same id, so sinks can upsert by it.
func ComputeID(n *domain.NormalizedNotice) string {
	date := ""
	if n.NoticeDate != nil {
		date = n.NoticeDate.String()
	}
	return hashContent(strings.Join([]string{
		string(n.Jurisdiction),
		normalizer.NormalizeName(n.EmployerName),
		date,
		normalizer.NormalizeText(n.City),
		normalizer.NormalizeText(n.Address),
	}, "|"))
}

// Fingerprint hashes everything a reader would see change: all fields
// except retrieval time and the derived impact
func Fingerprint(n *domain.NormalizedNotice) string {
	c := *n
	c.Impact = nil
	c.Provenance.RetrievedAt = time.Time{}
	b, err := json.Marshal(c)
	if err != nil {
		return ""
	}
	return hashContent(string(b))
}

func hashContent(content string) string {
	h := sha256.Sum256([]byte(content))
	return hex.EncodeToString(h[:16]) // First 16 bytes (32 hex chars)
}
