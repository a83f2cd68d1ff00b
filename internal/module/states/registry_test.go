package states

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/project-tktt/warn-crawler/internal/common/fetcher"
	"github.com/project-tktt/warn-crawler/internal/domain"
	"github.com/project-tktt/warn-crawler/internal/module"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testFetcher() *fetcher.Fetcher {
	return fetcher.New(fetcher.Config{UserAgent: "warn-test", Attempts: 1, Timeout: 5 * time.Second})
}

func TestSources_CoverEveryJurisdiction(t *testing.T) {
	srcs := Sources()
	require.Len(t, srcs, 51)

	seen := map[domain.StateCode]bool{}
	for _, s := range srcs {
		assert.True(t, s.Jurisdiction.Valid(), s.Jurisdiction)
		assert.False(t, seen[s.Jurisdiction], "duplicate %s", s.Jurisdiction)
		seen[s.Jurisdiction] = true
		assert.NotEmpty(t, s.URL, s.Jurisdiction)
		if s.Format == FormatPaged {
			assert.NotEmpty(t, s.Selectors.NextLink, s.Jurisdiction)
		}
	}
}

func TestNewRegistry_ChainsAndThresholds(t *testing.T) {
	r, err := NewRegistry(Sources(), Options{
		Fetcher:            testFetcher(),
		AggregatorCSVURL:   "https://aggregator.example/warn.csv",
		AggregatorTableURL: "https://tracker.example/",
		NewsFeedURL:        "https://news.example/rss/search",
		Thresholds:         map[domain.StateCode]int{domain.StateVT: 3},
	})
	require.NoError(t, err)
	assert.Equal(t, 51, r.Len())

	ca, ok := r.Get(domain.StateCA)
	require.True(t, ok)
	assert.Equal(t, 10, ca.Policy().MinCount)
	assert.Equal(t, []string{"ca-edd", "aggregator-csv", "aggregator-table", "news-search"}, ca.Providers())

	vt, ok := r.Get(domain.StateVT)
	require.True(t, ok)
	assert.Equal(t, 3, vt.Policy().MinCount)

	oh, _ := r.Get(domain.StateOH)
	assert.Equal(t, module.StopOnFirstNonEmpty().String(), oh.Policy().String())
}

func TestNewRegistry_OptionalTiers(t *testing.T) {
	r, err := NewRegistry([]Source{{Jurisdiction: domain.StateRI, URL: "https://dlt.ri.gov/warn"}}, Options{Fetcher: testFetcher()})
	require.NoError(t, err)

	ri, ok := r.Get(domain.StateRI)
	require.True(t, ok)
	assert.Equal(t, []string{"ri-official"}, ri.Providers())
}

func TestNewRegistry_Errors(t *testing.T) {
	_, err := NewRegistry(Sources(), Options{})
	assert.Error(t, err)

	_, err = NewRegistry([]Source{
		{Jurisdiction: domain.StateCA, URL: "a"},
		{Jurisdiction: domain.StateCA, URL: "b"},
	}, Options{Fetcher: testFetcher()})
	assert.ErrorContains(t, err, "duplicate jurisdiction CA")

	_, err = NewRegistry([]Source{{Jurisdiction: domain.StateCA, URL: "a", Format: "pdf"}}, Options{Fetcher: testFetcher()})
	assert.ErrorContains(t, err, `unknown format "pdf"`)
}

func TestNewRegistry_EveryFormatBuilds(t *testing.T) {
	formats := []Format{FormatHTML, FormatCSV, FormatXLSX, FormatJSON, FormatPaged, FormatMarkdown}
	codes := []domain.StateCode{domain.StateAL, domain.StateAK, domain.StateAZ, domain.StateAR, domain.StateCO, domain.StateCT}

	var srcs []Source
	for i, f := range formats {
		srcs = append(srcs, Source{Jurisdiction: codes[i], URL: "https://example.gov/" + string(f), Format: f, Selectors: vosSelectors})
	}
	r, err := NewRegistry(srcs, Options{Fetcher: testFetcher()})
	require.NoError(t, err)
	assert.Equal(t, len(formats), r.Len())
}

func TestFilterAndParseList(t *testing.T) {
	r, err := NewRegistry(Sources(), Options{Fetcher: testFetcher()})
	require.NoError(t, err)

	codes, err := ParseList("CA, ny,Texas")
	require.NoError(t, err)
	assert.Equal(t, []domain.StateCode{domain.StateCA, domain.StateNY, domain.StateTX}, codes)

	filtered := r.Filter(codes)
	require.Equal(t, 3, filtered.Len())
	var got []domain.StateCode
	for _, a := range filtered.Adapters() {
		got = append(got, a.Jurisdiction())
	}
	assert.ElementsMatch(t, codes, got)

	assert.Same(t, r, r.Filter(nil))

	_, err = ParseList("CA,Atlantis")
	assert.ErrorContains(t, err, "Atlantis")
}

func TestRegistry_EscalatesToAggregator(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/official", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<table>
<tr><th>Company</th><th>City</th><th>Notice Date</th></tr>
<tr><td>Valley Rehab Center</td><td>Fresno</td><td>03/04/2025</td></tr>
</table>`)
	})
	mux.HandleFunc("/warn.csv", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "Company,City,State,Notice Date,Employees\n"+
			"Mercy Hospital,Redding,CA,2025-02-01,120\n"+
			"Mercy Hospital,Redding,CA,2025-02-01,120\n"+
			"Bay Clinic,Oakland,California,2025-02-03,40\n"+
			"Gulf Hospice,Houston,TX,2025-02-05,22\n")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	r, err := NewRegistry([]Source{{Jurisdiction: domain.StateCA, Name: "ca-edd", URL: srv.URL + "/official", MinCount: 3}}, Options{
		Fetcher:          testFetcher(),
		AggregatorCSVURL: srv.URL + "/warn.csv",
	})
	require.NoError(t, err)

	res := r.Adapters()[0].FetchLatest(context.Background())

	require.Len(t, res.Attempts, 2)
	assert.Equal(t, 1, res.Attempts[0].Count)
	assert.Equal(t, 3, res.Attempts[1].Count)
	assert.Equal(t, "aggregator-csv", res.Provider)
	require.Len(t, res.Notices, 3)
	for _, n := range res.Notices {
		assert.Equal(t, domain.StateCA, n.Jurisdiction)
	}
}
