package states

import (
	"github.com/project-tktt/warn-crawler/internal/common/extractor"
	"github.com/project-tktt/warn-crawler/internal/domain"
)

// Format selects the official provider implementation for a source
type Format string

const (
	FormatHTML     Format = "html"
	FormatCSV      Format = "csv"
	FormatXLSX     Format = "xlsx"
	FormatJSON     Format = "json"
	FormatPaged    Format = "paged"
	FormatMarkdown Format = "markdown-proxy" // PDF or script-rendered, read through the text proxy
)

// Source is the official WARN listing of one jurisdiction
type Source struct {
	Jurisdiction domain.StateCode
	Name         string
	URL          string
	Format       Format
	// Table selector for html, sheet name for xlsx, wrapper key for json
	Selector  string
	Selectors extractor.Selectors
	// Minimum result count before the chain stops escalating
	MinCount int
}

// Virtual OneStop job boards share one paginated WARN lookup layout
var vosSelectors = extractor.Selectors{
	Table:    "table",
	NextLink: "a[rel='next'], a.next_page, li.next a",
}

var sources = []Source{
	{Jurisdiction: domain.StateAL, Name: "al-commerce", URL: "https://www.madeinalabama.com/warn-list/", Format: FormatHTML},
	{Jurisdiction: domain.StateAK, Name: "ak-dolwd", URL: "https://jobs.alaska.gov/RR/WARN_notices.htm", Format: FormatHTML},
	{Jurisdiction: domain.StateAZ, Name: "az-jobconnection", URL: "https://www.azjobconnection.gov/search/warn_lookups", Format: FormatPaged, Selectors: vosSelectors},
	{Jurisdiction: domain.StateAR, Name: "ar-dws", URL: "https://dws.arkansas.gov/workforce-services/employers/warn-notices/", Format: FormatMarkdown},
	{Jurisdiction: domain.StateCA, Name: "ca-edd", URL: "https://edd.ca.gov/siteassets/files/jobs_and_training/warn/warn_report1.xlsx", Format: FormatXLSX, MinCount: 10},
	{Jurisdiction: domain.StateCO, Name: "co-cdle", URL: "https://cdle.colorado.gov/employers/layoff-separations/layoff-warn-list", Format: FormatHTML},
	{Jurisdiction: domain.StateCT, Name: "ct-dol", URL: "https://www.ctdol.state.ct.us/progsupt/bussrvce/warnreports/warnreports.htm", Format: FormatHTML},
	{Jurisdiction: domain.StateDE, Name: "de-joblink", URL: "https://joblink.delaware.gov/search/warn_lookups", Format: FormatPaged, Selectors: vosSelectors},
	{Jurisdiction: domain.StateDC, Name: "dc-does", URL: "https://does.dc.gov/page/industry-closings-and-layoffs-warn-notifications-closure%20", Format: FormatHTML},
	{Jurisdiction: domain.StateFL, Name: "fl-deo", URL: "https://reactwarn.floridajobs.org/WarnList/Records", Format: FormatPaged, Selectors: extractor.Selectors{Table: "table", NextLink: ".PagedList-skipToNext a"}, MinCount: 5},
	{Jurisdiction: domain.StateGA, Name: "ga-tcsg", URL: "https://www.tcsg.edu/warn-public-view/", Format: FormatHTML},
	{Jurisdiction: domain.StateHI, Name: "hi-dlir", URL: "https://labor.hawaii.gov/wdc/real-time-warn-updates/", Format: FormatHTML},
	{Jurisdiction: domain.StateID, Name: "id-labor", URL: "https://www.labor.idaho.gov/warnnotice/", Format: FormatMarkdown},
	{Jurisdiction: domain.StateIL, Name: "il-ides", URL: "https://ides.illinois.gov/employer-resources/warn.html", Format: FormatMarkdown},
	{Jurisdiction: domain.StateIN, Name: "in-dwd", URL: "https://www.in.gov/dwd/warn-notices/", Format: FormatHTML},
	{Jurisdiction: domain.StateIA, Name: "ia-iwd", URL: "https://www.iowaworkforcedevelopment.gov/worker-adjustment-and-retraining-notification-act", Format: FormatHTML},
	{Jurisdiction: domain.StateKS, Name: "ks-kansasworks", URL: "https://www.kansasworks.com/search/warn_lookups", Format: FormatPaged, Selectors: vosSelectors},
	{Jurisdiction: domain.StateKY, Name: "ky-kcc", URL: "https://kcc.ky.gov/employer/Pages/WARN-Notices.aspx", Format: FormatMarkdown},
	{Jurisdiction: domain.StateLA, Name: "la-lwc", URL: "https://www.laworks.net/Downloads/Downloads_WFD.asp", Format: FormatMarkdown},
	{Jurisdiction: domain.StateME, Name: "me-joblink", URL: "https://joblink.maine.gov/search/warn_lookups", Format: FormatPaged, Selectors: vosSelectors},
	{Jurisdiction: domain.StateMD, Name: "md-labor", URL: "https://www.labor.maryland.gov/employment/warn.shtml", Format: FormatHTML},
	{Jurisdiction: domain.StateMA, Name: "ma-eolwd", URL: "https://www.mass.gov/info-details/worker-adjustment-and-retraining-act-warn-weekly-report", Format: FormatMarkdown},
	{Jurisdiction: domain.StateMI, Name: "mi-leo", URL: "https://www.michigan.gov/leo/bureaus-agencies/wd/data-public-notices/warn-notices", Format: FormatHTML},
	{Jurisdiction: domain.StateMN, Name: "mn-deed", URL: "https://mn.gov/deed/programs-services/dislocated-worker/reports/", Format: FormatMarkdown},
	{Jurisdiction: domain.StateMS, Name: "ms-mdes", URL: "https://mdes.ms.gov/information-center/warn-information/", Format: FormatMarkdown},
	{Jurisdiction: domain.StateMO, Name: "mo-jobs", URL: "https://jobs.mo.gov/warn", Format: FormatMarkdown},
	{Jurisdiction: domain.StateMT, Name: "mt-dli", URL: "https://wsd.dli.mt.gov/job-seeker/layoff-and-closure-resources/warn-notices", Format: FormatHTML},
	{Jurisdiction: domain.StateNE, Name: "ne-dol", URL: "https://dol.nebraska.gov/ReemploymentServices/LayoffServices/LayoffsAndDownsizing/WARNNotices", Format: FormatHTML},
	{Jurisdiction: domain.StateNV, Name: "nv-detr", URL: "https://detr.nv.gov/Page/WARN", Format: FormatMarkdown},
	{Jurisdiction: domain.StateNH, Name: "nh-nhes", URL: "https://www.nhes.nh.gov/services/employers/warn.htm", Format: FormatMarkdown},
	{Jurisdiction: domain.StateNJ, Name: "nj-dol", URL: "https://www.nj.gov/labor/employer-services/warn/", Format: FormatMarkdown},
	{Jurisdiction: domain.StateNM, Name: "nm-dws", URL: "https://www.dws.state.nm.us/Rapid-Response", Format: FormatMarkdown},
	{Jurisdiction: domain.StateNY, Name: "ny-dol", URL: "https://dol.ny.gov/warn-notices", Format: FormatMarkdown, MinCount: 10},
	{Jurisdiction: domain.StateNC, Name: "nc-commerce", URL: "https://www.commerce.nc.gov/data-tools-reports/labor-market-data-tools/warn-report", Format: FormatMarkdown},
	{Jurisdiction: domain.StateND, Name: "nd-jobsnd", URL: "https://www.jobsnd.com/warn-notices", Format: FormatHTML},
	{Jurisdiction: domain.StateOH, Name: "oh-jfs", URL: "https://jfs.ohio.gov/warn/current.stm", Format: FormatHTML},
	{Jurisdiction: domain.StateOK, Name: "ok-oesc", URL: "https://www.employoklahoma.gov/search/warn_lookups", Format: FormatPaged, Selectors: vosSelectors},
	{Jurisdiction: domain.StateOR, Name: "or-hecc", URL: "https://ccwd.hecc.oregon.gov/Layoff/WARN", Format: FormatHTML},
	{Jurisdiction: domain.StatePA, Name: "pa-dli", URL: "https://www.pa.gov/agencies/dli/resources/warn-notices", Format: FormatHTML},
	{Jurisdiction: domain.StateRI, Name: "ri-dlt", URL: "https://dlt.ri.gov/employers/worker-adjustment-and-retraining-notification-warn", Format: FormatHTML},
	{Jurisdiction: domain.StateSC, Name: "sc-dew", URL: "https://scworks.org/employer/employer-programs/risk-closing/warn-notices", Format: FormatMarkdown},
	{Jurisdiction: domain.StateSD, Name: "sd-dlr", URL: "https://dlr.sd.gov/workforce_services/businesses/warn_notices.aspx", Format: FormatHTML},
	{Jurisdiction: domain.StateTN, Name: "tn-lwd", URL: "https://www.tn.gov/workforce/general-resources/major-publications0/major-publications-redirect/reports.html", Format: FormatHTML},
	{Jurisdiction: domain.StateTX, Name: "tx-twc", URL: "https://www.twc.texas.gov/sites/default/files/ur/docs/warn-act-listings-twc.xlsx", Format: FormatXLSX, MinCount: 5},
	{Jurisdiction: domain.StateUT, Name: "ut-dws", URL: "https://jobs.utah.gov/employer/business/warnnotices.html", Format: FormatHTML},
	{Jurisdiction: domain.StateVT, Name: "vt-dol", URL: "https://labor.vermont.gov/workforce-development/warn-notices", Format: FormatHTML},
	{Jurisdiction: domain.StateVA, Name: "va-works", URL: "https://virginiaworks.gov/warn-notices/", Format: FormatHTML},
	{Jurisdiction: domain.StateWA, Name: "wa-esd", URL: "https://esd.wa.gov/about-employees/WARN", Format: FormatMarkdown},
	{Jurisdiction: domain.StateWV, Name: "wv-workforce", URL: "https://workforcewv.org/public-information/warn-notices/", Format: FormatHTML},
	{Jurisdiction: domain.StateWI, Name: "wi-dwd", URL: "https://dwd.wisconsin.gov/dislocatedworker/warn/", Format: FormatHTML},
	{Jurisdiction: domain.StateWY, Name: "wy-dws", URL: "https://dws.wyo.gov/dws-division/workforce-center-program-operations/programs/warn-notices/", Format: FormatMarkdown},
}

// Sources returns a copy of the official source table
func Sources() []Source {
	out := make([]Source, len(sources))
	copy(out, sources)
	return out
}
