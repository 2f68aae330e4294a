package predict

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = "\uFEFFDiv,Date,HomeTeam,AwayTeam,FTHG,FTAG,HST,AST,HC,AC,HF,AF,HY,AY,HR,AR\r\n" +
	"E0,01/01/2020,Arsenal,Chelsea,2,0,5,3,6,4,10,12,1,2,0,0\r\n" +
	"E0,08/01/20,Burnley,Arsenal,1,1,2,4,3,7,11,9,2,1,0,0\r\n" +
	",,,,,,,,,,,,,,,\r\n"

func TestParseCSV(t *testing.T) {
	d := &Datasource{LeagueCode: "E0"}
	rows, err := d.ParseCSV(sampleCSV, "1920")
	require.NoError(t, err)
	require.Len(t, rows, 2, "Trailing blank line should be skipped")

	first := rows[0]
	assert.Equal(t, "01/01/20", first["Date"], "Four-digit years collapse to the fixed layout")
	assert.Equal(t, "Arsenal", first["HomeTeam"], "BOM on the first header must not corrupt keys")
	assert.Equal(t, "2", first["FTHG"])
	assert.Equal(t, "1920", first["Season"])

	assert.Equal(t, "08/01/20", rows[1]["Date"], "Two-digit years pass through")

	// The parsed rows must ingest cleanly
	ledger, err := Ingest(rows)
	require.NoError(t, err)
	assert.Equal(t, 2, ledger.Len())
}

func TestParseCSVEmpty(t *testing.T) {
	d := &Datasource{LeagueCode: "E0"}
	rows, err := d.ParseCSV("", "1920")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestNormalizeDate(t *testing.T) {
	assert.Equal(t, "01/01/20", normalizeDate("01/01/2020"))
	assert.Equal(t, "01/01/20", normalizeDate("01/01/20"))
	assert.Equal(t, "garbage", normalizeDate("garbage"))
}

func TestValidateSeason(t *testing.T) {
	assert.NoError(t, validateSeason("1415"))
	assert.NoError(t, validateSeason("2223"))
	assert.Error(t, validateSeason("14/15"))
	assert.Error(t, validateSeason("201415"))
	assert.Error(t, validateSeason(""))
}

func TestIsCurrentSeason(t *testing.T) {
	d := &Datasource{}
	last := Config.Seasons[len(Config.Seasons)-1]
	assert.True(t, d.isCurrentSeason(last))
	assert.False(t, d.isCurrentSeason(Config.Seasons[0]))

	// A discovered season list takes precedence over the configured one
	d.seasons = []string{"9596", "9697"}
	assert.True(t, d.isCurrentSeason("9697"))
	assert.False(t, d.isCurrentSeason(last))
}

const sampleIndexHTML = `<html><body>
<p><a href="mmz4281/2223/E0.csv">Premier League</a></p>
<p><a href="mmz4281/2223/E1.csv">Championship</a></p>
<p><a href="mmz4281/2122/E0.csv">Premier League</a></p>
<p><a href="mmz4281/2021/E0.csv">Premier League</a></p>
<p><a href="notes.txt">Notes</a></p>
<p><a>no href</a></p>
</body></html>`

func TestParseSeasonIndex(t *testing.T) {
	d := &Datasource{LeagueCode: "E0"}
	seasons, err := d.parseSeasonIndex(strings.NewReader(sampleIndexHTML))
	require.NoError(t, err)
	assert.Equal(t, []string{"2021", "2122", "2223"}, seasons,
		"Only this league's season links count, sorted ascending")
}

func TestParseSeasonIndexNoLinks(t *testing.T) {
	d := &Datasource{LeagueCode: "SP1", IndexURL: "http://example.invalid/index"}
	_, err := d.parseSeasonIndex(strings.NewReader(sampleIndexHTML))
	assert.Error(t, err, "An index page with no matching links is a hard failure")
}

func TestFetchSeasonCSVUsesCache(t *testing.T) {
	oldCache := Config.CachePath
	Config.CachePath = t.TempDir() + "/"
	defer func() { Config.CachePath = oldCache }()

	// Pre-seed the cache for a non-current season; no network should be
	// touched
	cacheFile := filepath.Join(Config.CachePath, "raw-E0-1415.csv")
	require.NoError(t, os.WriteFile(cacheFile, []byte(sampleCSV), 0644))

	d := &Datasource{BaseURL: Config.BaseDataURL, LeagueCode: "E0"}
	data, err := d.FetchSeasonCSV("1415")
	require.NoError(t, err)
	assert.Equal(t, sampleCSV, data)
}

func TestFetchSeasonCSVRejectsBadSeason(t *testing.T) {
	d := &Datasource{LeagueCode: "E0"}
	_, err := d.FetchSeasonCSV("14-15")
	assert.Error(t, err)
}
