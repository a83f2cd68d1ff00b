package extractor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func listingPage(employer, next string) string {
	nextLink := ""
	if next != "" {
		nextLink = fmt.Sprintf(`<a class="next" href="%s">Next</a>`, next)
	}
	return fmt.Sprintf(`<html><body><table>
<tr><th>Company</th><th>City</th></tr>
<tr><td>%s</td><td>Springfield</td></tr>
</table>%s</body></html>`, employer, nextLink)
}

func TestCollyExtractor_FollowsNextAndStopsOnLoop(t *testing.T) {
	var hits int32
	mux := http.NewServeMux()
	mux.HandleFunc("/warn", func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		switch r.URL.Query().Get("page") {
		case "", "1":
			fmt.Fprint(w, listingPage("Alpha Clinic", "/warn?page=2"))
		case "2":
			fmt.Fprint(w, listingPage("Beta Hospital", "/warn?page=3"))
		default:
			// last page links back to the start
			fmt.Fprint(w, listingPage("Gamma Hospice", "/warn"))
		}
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	e := NewCollyExtractor(Selectors{NextLink: "a.next"}, ExtractorConfig{UserAgent: "test", MaxPages: 10})
	recs, pages, err := e.ExtractList(context.Background(), srv.URL+"/warn")
	require.NoError(t, err)

	assert.Equal(t, 3, pages)
	assert.EqualValues(t, 3, atomic.LoadInt32(&hits))
	require.Len(t, recs, 3)
	assert.Equal(t, "Alpha Clinic", recs[0][domain.FieldEmployer])
	assert.Equal(t, "Gamma Hospice", recs[2][domain.FieldEmployer])
}

func TestCollyExtractor_PageCeiling(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := 0
		fmt.Sscanf(r.URL.Query().Get("page"), "%d", &n)
		fmt.Fprint(w, listingPage(fmt.Sprintf("Employer %d Clinic", n), fmt.Sprintf("/?page=%d", n+1)))
	}))
	defer srv.Close()

	e := NewCollyExtractor(Selectors{NextLink: "a.next"}, ExtractorConfig{MaxPages: 4})
	recs, pages, err := e.ExtractList(context.Background(), srv.URL+"/?page=0")
	require.NoError(t, err)
	assert.Equal(t, 4, pages)
	assert.Len(t, recs, 4)
}

func TestCollyExtractor_NoNextLink(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage("Solo Medical Group", ""))
	}))
	defer srv.Close()

	e := NewCollyExtractor(Selectors{NextLink: "a.next"}, ExtractorConfig{})
	recs, pages, err := e.ExtractList(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, 1, pages)
	assert.Len(t, recs, 1)
}

func TestCollyExtractor_FirstPageFails(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	e := NewCollyExtractor(Selectors{}, ExtractorConfig{MaxRetries: 1, Backoff: 1})
	_, _, err := e.ExtractList(context.Background(), srv.URL)
	require.Error(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(&hits))
}
