package telemetry

import (
	"strings"
	"sync"
)

// Report is one call recorded by Recorder.
type Report struct {
	Kind   string
	Id     string
	Params []any
	Count  int64
}

// Recorder is an API that keeps every report in memory, it is meant for tests
// that assert a component reported what it should have.
type Recorder struct {
	mu      sync.Mutex
	reports []Report
}

func (r *Recorder) add(rep Report) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reports = append(r.reports, rep)
}

func (r *Recorder) ReportBroken(id string, params ...any) {
	r.add(Report{Kind: "broken", Id: id, Params: params})
}

func (r *Recorder) ReportWarning(id string, params ...any) {
	r.add(Report{Kind: "warning", Id: id, Params: params})
}

func (r *Recorder) ReportDebug(msg string, params ...any) {
	r.add(Report{Kind: "debug", Id: msg, Params: params})
}

func (r *Recorder) ReportCount(id string, count int64) {
	r.add(Report{Kind: "count", Id: id, Count: count})
}

// Reports returns a copy of every report whose kind matches (all kinds if empty)
// and whose id ends with suffix.
func (r *Recorder) Reports(kind, suffix string) []Report {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []Report
	for _, rep := range r.reports {
		if kind != "" && rep.Kind != kind {
			continue
		}
		if !strings.HasSuffix(rep.Id, suffix) {
			continue
		}
		out = append(out, rep)
	}
	return out
}

// LastCount returns the most recent count reported under an id ending with suffix.
func (r *Recorder) LastCount(suffix string) (int64, bool) {
	counts := r.Reports("count", suffix)
	if len(counts) == 0 {
		return 0, false
	}
	return counts[len(counts)-1].Count, true
}
