package telemetry

import (
	"fmt"
)

// API is how components report problems and counts. Components take an API
// instead of logging directly so tests can assert on what was reported.
type API interface {
	// ReportBroken reports a failure that needs fixing. id names the component
	// and method, e.g. "session.fetch"; details go into params.
	// ids are lowercase, with dashes between words.
	ReportBroken(id string, params ...any)

	// ReportWarning reports something worth a look that is not a bug, such as a
	// skipped window.
	ReportWarning(id string, params ...any)

	// ReportDebug is dropped unless debug logging is enabled.
	ReportDebug(msg string, params ...any)

	// ReportCount reports the current value of a counter. Values are points over
	// time, not deltas.
	ReportCount(id string, count int64)
}

// ScopedAPI prefixes every id reported through it with a namespace.
type ScopedAPI struct {
	namespace string
	inner     API
}

func NewScopedAPI(namespace string, inner API) ScopedAPI {
	return ScopedAPI{namespace: namespace, inner: inner}
}

func (s ScopedAPI) ReportBroken(id string, params ...any) {
	s.inner.ReportBroken(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportWarning(id string, params ...any) {
	s.inner.ReportWarning(fmt.Sprintf("%s: %s", s.namespace, id), params...)
}

func (s ScopedAPI) ReportDebug(msg string, params ...any) {
	s.inner.ReportDebug(fmt.Sprintf("%s: %s", s.namespace, msg), params...)
}

func (s ScopedAPI) ReportCount(id string, count int64) {
	s.inner.ReportCount(fmt.Sprintf("%s: %s", s.namespace, id), count)
}
