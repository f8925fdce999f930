package observability

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	dto "github.com/prometheus/client_model/go"
)

func TestRunCollectorRecordsCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	collector.SetLoaded(12)
	collector.SetClassification(5, 2)
	collector.SetOverlay(3, 2)
	collector.CountRun("overlay", "ok")

	checks := map[string]struct {
		got  float64
		want float64
	}{
		"satcov_records_loaded":   {testutil.ToFloat64(collector.RecordsLoaded), 12},
		"satcov_slice_records":    {testutil.ToFloat64(collector.SliceRecords), 5},
		"satcov_accepted_records": {testutil.ToFloat64(collector.AcceptedRecords), 2},
		"satcov_rejected_records": {testutil.ToFloat64(collector.RejectedRecords), 3},
		"satcov_regions":          {testutil.ToFloat64(collector.Regions), 3},
		"satcov_markers":          {testutil.ToFloat64(collector.Markers), 2},
		"satcov_runs_total":       {testutil.ToFloat64(collector.Runs.WithLabelValues("overlay", "ok")), 1},
	}
	for name, c := range checks {
		if c.got != c.want {
			t.Fatalf("%s = %v, want %v", name, c.got, c.want)
		}
	}
}

func TestObservePhase(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}

	collector.ObservePhase(PhaseClassify, 3*time.Millisecond)
	collector.ObservePhase(PhaseClassify, time.Millisecond)
	collector.ObservePhase(PhaseLoad, time.Millisecond)

	if count := histogramSampleCount(t, reg, "satcov_phase_duration_seconds", map[string]string{"phase": PhaseClassify}); count != 2 {
		t.Fatalf("classify sample_count = %d, want 2", count)
	}
	if count := histogramSampleCount(t, reg, "satcov_phase_duration_seconds", map[string]string{"phase": PhaseLoad}); count != 1 {
		t.Fatalf("load sample_count = %d, want 1", count)
	}
}

func TestNewRunCollectorReusesRegisteredCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("first NewRunCollector: %v", err)
	}
	second, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("second NewRunCollector: %v", err)
	}
	second.SetLoaded(7)
	if got := testutil.ToFloat64(first.RecordsLoaded); got != 7 {
		t.Fatalf("shared gauge = %v, want 7", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	reg := prometheus.NewRegistry()
	collector, err := NewRunCollector(reg)
	if err != nil {
		t.Fatalf("NewRunCollector: %v", err)
	}
	collector.SetClassification(4, 1)

	path := filepath.Join(t.TempDir(), "satcov.prom")
	if err := collector.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	body := string(data)
	for _, want := range []string{"satcov_slice_records 4", "satcov_accepted_records 1", "satcov_rejected_records 3"} {
		if !strings.Contains(body, want) {
			t.Fatalf("textfile missing %q:\n%s", want, body)
		}
	}

	if err := collector.WriteTextfile(""); err != nil {
		t.Fatalf("WriteTextfile with empty path: %v", err)
	}
}

func TestNilCollectorIsSafe(t *testing.T) {
	var c *RunCollector
	c.SetLoaded(1)
	c.SetClassification(1, 1)
	c.SetOverlay(1, 1)
	c.ObservePhase(PhaseRender, time.Second)
	c.CountRun("filter", "ok")
	if err := c.WriteTextfile("ignored"); err != nil {
		t.Fatalf("nil WriteTextfile: %v", err)
	}
}

func histogramSampleCount(t *testing.T, gatherer prometheus.Gatherer, name string, labels map[string]string) uint64 {
	t.Helper()

	metrics, err := gatherer.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range metrics {
		if mf.GetName() != name {
			continue
		}
		for _, m := range mf.Metric {
			if matchLabels(m.GetLabel(), labels) && m.GetHistogram() != nil {
				return m.GetHistogram().GetSampleCount()
			}
		}
	}
	return 0
}

func matchLabels(got []*dto.LabelPair, want map[string]string) bool {
	if len(got) < len(want) {
		return false
	}
	matched := 0
	for _, lp := range got {
		if val, ok := want[lp.GetName()]; ok && val == lp.GetValue() {
			matched++
		}
	}
	return matched == len(want)
}
