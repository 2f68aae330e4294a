package predict

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/PuerkitoBio/goquery"
	"github.com/gmorley/scorecast/internal/logger"
	"github.com/gmorley/scorecast/pkg/transport"
	"github.com/gmorley/scorecast/pkg/util"
)

// Datasource fetches historical match CSVs from football-data.co.uk. Raw
// download and caching live here; the Ledger only ever sees RawRows and is
// free to drop whatever this source could not clean up
type Datasource struct {
	BaseURL    string
	IndexURL   string
	LeagueCode string
	seasons    []string // season list resolved for the current run
}

var (
	datasourceInstance *Datasource
	datasourceOnce     sync.Once
)

// GetDatasourceInstance returns the singleton instance of Datasource
func GetDatasourceInstance() *Datasource {
	datasourceOnce.Do(func() {
		datasourceInstance = &Datasource{
			BaseURL:    Config.BaseDataURL,
			IndexURL:   Config.IndexURL,
			LeagueCode: Config.LeagueCode,
		}
	})
	return datasourceInstance
}

var seasonPattern = regexp.MustCompile(`^\d{4}$`)

// validateSeason checks the native season token, e.g. "1415" for 2014-15
func validateSeason(season string) error {
	if !seasonPattern.MatchString(season) {
		return fmt.Errorf("season must be in the native 'yyyy' form, got %q", season)
	}
	if _, err := util.GetAsInteger(season); err != nil {
		return fmt.Errorf("season is not numeric: %w", err)
	}
	return nil
}

// FetchSeasonCSV returns the raw CSV text for one season, from the on-disk
// cache when present. The most recent configured season is always refetched
// since its file grows while the season runs
func (d *Datasource) FetchSeasonCSV(season string) (string, error) {
	if err := validateSeason(season); err != nil {
		return "", err
	}

	if err := os.MkdirAll(Config.CachePath, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cacheFilename := fmt.Sprintf("%sraw-%s-%s.csv", Config.CachePath, d.LeagueCode, season)

	if d.isCurrentSeason(season) {
		if _, err := os.Stat(cacheFilename); err == nil {
			logger.Info("Deleting stale cache file for current season:", cacheFilename)
			os.Remove(cacheFilename)
		}
	}

	if cacheData, err := os.ReadFile(cacheFilename); err == nil {
		logger.Debug("Returning cached CSV for season", season)
		return string(cacheData), nil
	}

	url := fmt.Sprintf(d.BaseURL, season, d.LeagueCode)
	logger.Info("Fetching historical data from football-data.co.uk for season", season)
	response, err := transport.GetHtml(url)
	if err != nil {
		return "", fmt.Errorf("failed to fetch data from external source: %w", err)
	}
	csvData := string(response)

	if err := os.WriteFile(cacheFilename, []byte(csvData), 0644); err != nil {
		logger.Warn("Failed to write cache file", cacheFilename, err)
		// Continue processing even if caching fails
	}
	return csvData, nil
}

// isCurrentSeason reports whether this is the last season of the run, either
// as configured or as discovered from the index page
func (d *Datasource) isCurrentSeason(season string) bool {
	seasons := d.seasons
	if len(seasons) == 0 {
		seasons = Config.Seasons
	}
	if len(seasons) == 0 {
		return false
	}
	return season == seasons[len(seasons)-1]
}

// ParseCSV turns one season's CSV text into raw rows keyed by header name.
// Dates are normalized to the ledger's fixed layout; everything else is left
// for ingestion to validate
func (d *Datasource) ParseCSV(csvData string, season string) ([]RawRow, error) {
	reader := csv.NewReader(strings.NewReader(csvData))
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}

	if len(records) == 0 {
		return []RawRow{}, nil
	}

	headers := records[0]
	if len(headers) > 0 {
		headers[0] = strings.TrimPrefix(headers[0], "\uFEFF")
	}

	var rows []RawRow
	for _, record := range records[1:] {
		row := make(RawRow, len(headers)+1)
		for j, value := range record {
			if j < len(headers) {
				row[headers[j]] = strings.TrimSpace(value)
			}
		}
		if row["HomeTeam"] == "" && row["AwayTeam"] == "" {
			continue // trailing blank line
		}
		row["Date"] = normalizeDate(row["Date"])
		row["Season"] = season
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeDate collapses football-data's occasional dd/mm/yyyy dates to the
// ledger's single dd/mm/yy layout. Anything else passes through untouched and
// is the ledger's problem
func normalizeDate(s string) string {
	parts := strings.Split(s, "/")
	if len(parts) == 3 && len(parts[2]) == 4 {
		return parts[0] + "/" + parts[1] + "/" + parts[2][2:]
	}
	return s
}

// DiscoverSeasons scrapes the download index page for season CSV links of the
// configured league, returning the native season tokens sorted ascending
func (d *Datasource) DiscoverSeasons() ([]string, error) {
	body, err := transport.GetHtml(d.IndexURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch index page: %w", err)
	}
	seasons, err := d.parseSeasonIndex(strings.NewReader(string(body)))
	if err != nil {
		return nil, err
	}
	logger.Info("Discovered", len(seasons), "downloadable seasons")
	return seasons, nil
}

// parseSeasonIndex extracts season tokens from index page markup
func (d *Datasource) parseSeasonIndex(r io.Reader) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("error parsing index HTML: %w", err)
	}

	linkPattern := regexp.MustCompile(`mmz4281/(\d{4})/` + d.LeagueCode + `\.csv$`)
	seen := make(map[string]bool)
	doc.Find("a").Each(func(i int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		if m := linkPattern.FindStringSubmatch(href); m != nil {
			seen[m[1]] = true
		}
	})

	if len(seen) == 0 {
		return nil, fmt.Errorf("no season links found on %s", d.IndexURL)
	}

	seasons := make([]string, 0, len(seen))
	for s := range seen {
		seasons = append(seasons, s)
	}
	sort.Strings(seasons)
	return seasons, nil
}

// Update downloads every season of the run, rebuilds the snapshot from
// scratch and persists the ledger, registry and corpus. With no seasons
// configured the list is discovered from the index page. A failed season
// download aborts the run; a rebuild either completes or leaves the previous
// artifacts untouched
func (d *Datasource) Update() (*Snapshot, error) {
	if err := ValidateConfig(Config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := CreateTables(); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	seasons := Config.Seasons
	if len(seasons) == 0 {
		logger.Info("No seasons configured, discovering from the index page")
		discovered, err := d.DiscoverSeasons()
		if err != nil {
			return nil, fmt.Errorf("failed to discover seasons: %w", err)
		}
		seasons = discovered
	}
	d.seasons = seasons

	var raw []RawRow
	for _, season := range seasons {
		csvData, err := d.FetchSeasonCSV(season)
		if err != nil {
			return nil, fmt.Errorf("season %s: %w", season, err)
		}
		rows, err := d.ParseCSV(csvData, season)
		if err != nil {
			return nil, fmt.Errorf("season %s: %w", season, err)
		}
		logger.Info("Season", season, "contributed", len(rows), "raw rows")
		raw = append(raw, rows...)
	}

	snap, err := BuildSnapshot(raw)
	if err != nil {
		return nil, err
	}

	if err := SaveMatches(snap.Ledger.Rows()); err != nil {
		return nil, fmt.Errorf("failed to save matches: %w", err)
	}
	if err := SaveRegistry(snap.Registry); err != nil {
		return nil, fmt.Errorf("failed to save registry: %w", err)
	}
	if err := SaveCorpus(snap); err != nil {
		return nil, fmt.Errorf("failed to save corpus: %w", err)
	}

	logger.Info("Bulk data load completed")
	return snap, nil
}
