package catalog

import "fmt"

// ConfigurationError reports a missing or malformed reference table. It is
// fatal: no window may be processed against a partial catalog.
type ConfigurationError struct {
	Table string
	Path  string
	Err   error
}

func (e *ConfigurationError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("catalog %s table: %s", e.Table, e.Err.Error())
	}
	return fmt.Sprintf("catalog %s table (%s): %s", e.Table, e.Path, e.Err.Error())
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
