package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/primevalai/onyx-metrics/internal/models"
)

func sampleSeries(base time.Time) map[string][]models.MetricPoint {
	return map[string][]models.MetricPoint{
		"cpu_usage_percent": {
			{Value: 10.5, Timestamp: base, Labels: map[string]string{"host": "a"}},
			{Value: 11.25, Timestamp: base.Add(time.Minute), Labels: map[string]string{"host": "b"}},
		},
		"error_rate": {
			{Value: 0.01, Timestamp: base.Add(30 * time.Second)},
		},
	}
}

func TestExport_JSONRoundTrip(t *testing.T) {
	base := time.Now().UTC().Truncate(time.Millisecond)
	series := sampleSeries(base)

	out, err := Export(FormatJSON, series, nil)
	require.NoError(t, err)

	var parsed map[string][]struct {
		Timestamp time.Time         `json:"timestamp"`
		Value     float64           `json:"value"`
		Labels    map[string]string `json:"labels"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	require.Len(t, parsed, 2)

	for name, points := range series {
		require.Len(t, parsed[name], len(points))
		for i, p := range points {
			assert.True(t, p.Timestamp.Equal(parsed[name][i].Timestamp))
			assert.Equal(t, p.Value, parsed[name][i].Value)
			assert.Equal(t, len(p.Labels), len(parsed[name][i].Labels))
			for k, v := range p.Labels {
				assert.Equal(t, v, parsed[name][i].Labels[k])
			}
		}
	}
}

func TestExport_CSV(t *testing.T) {
	base := time.Now().UTC()
	out, err := Export(FormatCSV, sampleSeries(base), nil)
	require.NoError(t, err)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 4, "header plus one row per point")
	assert.Equal(t, []string{"metric_name", "timestamp", "value", "labels"}, records[0])

	// Metrics are emitted in sorted name order.
	assert.Equal(t, "cpu_usage_percent", records[1][0])
	assert.Equal(t, "host=a", records[1][3])
	assert.Equal(t, "error_rate", records[3][0])
	assert.Equal(t, "", records[3][3], "unlabelled point has an empty labels cell")
}

func TestExport_CSVLabelsSorted(t *testing.T) {
	base := time.Now()
	series := map[string][]models.MetricPoint{
		"m": {{Value: 1, Timestamp: base, Labels: map[string]string{"z": "1", "a": "2"}}},
	}
	out, err := Export(FormatCSV, series, nil)
	require.NoError(t, err)
	assert.Contains(t, out, "a=2;z=1")
}

func TestExport_PrometheusLatestPointOnly(t *testing.T) {
	base := time.Now()
	out, err := Export(FormatPrometheus, sampleSeries(base), nil)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2, "one line per metric, latest point only")
	assert.Equal(t, `cpu_usage_percent{host="b"} 11.25`, lines[0])
	assert.Equal(t, "error_rate 0.01", lines[1])
}

func TestExport_PrometheusNormalizesNames(t *testing.T) {
	series := map[string][]models.MetricPoint{
		"api-request rate.5m": {{Value: 3, Timestamp: time.Now()}},
	}
	out, err := Export(FormatPrometheus, series, nil)
	require.NoError(t, err)
	assert.Equal(t, "api_request_rate_5m 3\n", out)
}

func TestExport_RangeRestrictsJSONAndCSV(t *testing.T) {
	base := time.Now().UTC()
	series := sampleSeries(base)
	r := &Range{Start: base.Add(20 * time.Second), End: base.Add(2 * time.Minute)}

	out, err := Export(FormatCSV, series, r)
	require.NoError(t, err)
	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, records, 3, "the first cpu point falls before the range")

	jsonOut, err := Export(FormatJSON, series, r)
	require.NoError(t, err)
	var parsed map[string][]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(jsonOut), &parsed))
	assert.Len(t, parsed["cpu_usage_percent"], 1)
}

func TestExport_UnsupportedFormat(t *testing.T) {
	_, err := Export(Format("xml"), nil, nil)
	var ufe *models.UnsupportedFormatError
	require.ErrorAs(t, err, &ufe)
	assert.Equal(t, "xml", ufe.Format)
}
