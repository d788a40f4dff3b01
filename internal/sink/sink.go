// Package sink serializes a campaign's result set. A failed write leaves the
// result set untouched so the caller can retry just the write.
package sink

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rentscan/internal/offer"
)

// Batch is everything a sink needs to serialize one campaign.
type Batch struct {
	CampaignId string
	Source     string
	Offers     []offer.ResolvedOffer
}

type Sink interface {
	Name() string
	Write(ctx context.Context, batch Batch) error
}

// SerializationError wraps a failure to write the final artifact.
type SerializationError struct {
	Sink string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("write %s: %s", e.Sink, e.Err.Error())
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// WriteAll writes batch to every sink, it does not stop at the first failure.
func WriteAll(ctx context.Context, sinks []Sink, batch Batch) error {
	var errs []error
	for _, s := range sinks {
		err := s.Write(ctx, batch)
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// DefaultFileName is the spreadsheet name used when none is configured,
// e.g. viajanet_rec_20250601_formatado.xlsx.
func DefaultFileName(source, city string, start time.Time) string {
	name := fmt.Sprintf("%s_%s_%s_formatado.xlsx", source, city, start.Format("20060102"))
	return sanitizeFileName(name)
}

func sanitizeFileName(name string) string {
	out := []rune(name)
	for i, c := range out {
		switch {
		case c >= 'a' && c <= 'z', c >= '0' && c <= '9', c == '_', c == '-', c == '.':
		case c >= 'A' && c <= 'Z':
			out[i] = c - 'A' + 'a'
		default:
			out[i] = '_'
		}
	}
	return string(out)
}
