package viajanet

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"rentscan/internal/campaign"
	"rentscan/internal/sources/replay"
)

// capture is a /chapu/results exchange recorded by an intercepting proxy,
// the response body is kept as text next to the request url.
type capture struct {
	Url      string `json:"url"`
	Response string `json:"response"`
}

// ParseCapture unwraps a proxy capture. The window is recovered from the
// pickup_date and dropoff_date query parameters of the request url, read in
// loc.
func ParseCapture(body []byte, loc *time.Location) (campaign.RequestWindow, []byte, error) {
	var c capture
	err := json.Unmarshal(body, &c)
	if err != nil {
		return campaign.RequestWindow{}, nil, fmt.Errorf("decode capture: %w", err)
	}
	if c.Url == "" {
		return campaign.RequestWindow{}, nil, fmt.Errorf("not a capture: missing url")
	}

	u, err := url.Parse(c.Url)
	if err != nil {
		return campaign.RequestWindow{}, nil, fmt.Errorf("parse capture url: %w", err)
	}
	query := u.Query()
	pickup, err := time.ParseInLocation(dateTimeLayout, query.Get("pickup_date"), loc)
	if err != nil {
		return campaign.RequestWindow{}, nil, fmt.Errorf("pickup_date: %w", err)
	}
	dropoff, err := time.ParseInLocation(dateTimeLayout, query.Get("dropoff_date"), loc)
	if err != nil {
		return campaign.RequestWindow{}, nil, fmt.Errorf("dropoff_date: %w", err)
	}

	pickupDay := time.Date(pickup.Year(), pickup.Month(), pickup.Day(), 0, 0, 0, 0, time.UTC)
	dropoffDay := time.Date(dropoff.Year(), dropoff.Month(), dropoff.Day(), 0, 0, 0, 0, time.UTC)
	tier := int(dropoffDay.Sub(pickupDay).Hours() / 24)
	if tier < 1 {
		return campaign.RequestWindow{}, nil, fmt.Errorf("dropoff %s is not after pickup %s", dropoff, pickup)
	}
	return campaign.NewRequestWindow(0, pickup, tier), []byte(c.Response), nil
}

// ImportCaptures converts every capture in dir into a replay file under
// replayDir. Files that cannot be converted are skipped, their errors are
// joined into the returned error.
func ImportCaptures(dir, replayDir, prefix string, loc *time.Location) (int, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.json"))
	if err != nil {
		return 0, err
	}

	imported := 0
	var errs []error
	for _, path := range paths {
		body, err := os.ReadFile(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		w, response, err := ParseCapture(body, loc)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		err = replay.Save(replayDir, prefix, w, response)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		imported++
	}
	return imported, errors.Join(errs...)
}
