// Package replay serves offers from response bodies saved to disk, so that a
// past collection can be reconciled again without touching the network.
//
// Files are named <PREFIX>_<yyyymmdd>_<yyyymmdd>.json after the pickup and
// dropoff dates of the window they were fetched for.
package replay

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"rentscan/internal/campaign"
	"rentscan/internal/offer"
	"rentscan/lib/telemetry"
)

const fileDateLayout = "20060102"

const (
	report_session_read = "session.read"
)

var fileNameRegex = regexp.MustCompile(`^([A-Za-z0-9-]+)_(\d{8})_(\d{8})\.json$`)

// Parser decodes one saved response body.
type Parser func(body []byte) ([]offer.RawOffer, error)

func FileName(prefix string, w campaign.RequestWindow) string {
	return fmt.Sprintf(
		"%s_%s_%s.json",
		prefix,
		w.PickupAt.Format(fileDateLayout),
		w.DropoffAt.Format(fileDateLayout),
	)
}

// Save writes body as the replay file of w, creating dir if needed.
func Save(dir, prefix string, w campaign.RequestWindow, body []byte) error {
	if prefix == "" {
		prefix = "OFFERS"
	}
	err := os.MkdirAll(dir, 0777)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, FileName(prefix, w)), body, 0666)
}

// File is a replay file found on disk and the window it was saved for.
type File struct {
	Path   string
	Prefix string
	Window campaign.RequestWindow
}

// ListWindows recovers windows from the replay files in dir, ordered by
// pickup date then tier. Pickup times are not part of file names, windows
// start at midnight in loc. Files whose names do not follow the naming
// scheme, or whose prefix differs from a non-empty prefix, are ignored.
func ListWindows(dir, prefix string, loc *time.Location) ([]File, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var files []File
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		groups := fileNameRegex.FindStringSubmatch(entry.Name())
		if groups == nil {
			continue
		}
		if prefix != "" && groups[1] != prefix {
			continue
		}

		pickup, err := time.ParseInLocation(fileDateLayout, groups[2], loc)
		if err != nil {
			continue
		}
		dropoff, err := time.ParseInLocation(fileDateLayout, groups[3], loc)
		if err != nil {
			continue
		}
		tier := daysBetween(pickup, dropoff)
		if tier < 1 {
			continue
		}

		files = append(files, File{
			Path:   filepath.Join(dir, entry.Name()),
			Prefix: groups[1],
			Window: campaign.NewRequestWindow(0, pickup, tier),
		})
	}

	slices.SortStableFunc(files, func(a, b File) int {
		if c := a.Window.PickupAt.Compare(b.Window.PickupAt); c != 0 {
			return c
		}
		return a.Window.TierDays - b.Window.TierDays
	})
	for i := range files {
		files[i].Window.Index = i
	}
	return files, nil
}

func daysBetween(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}

type Source struct {
	dir    string
	prefix string
	parse  Parser
	tel    telemetry.API
	// files maps window indexes to the file ListWindows found for them.
	files map[int]File
}

// New creates a source reading from dir. An empty prefix matches any prefix.
func New(dir, prefix string, parse Parser, tel telemetry.API) *Source {
	return &Source{
		dir:    dir,
		prefix: prefix,
		parse:  parse,
		tel:    telemetry.NewScopedAPI("replay", tel),
	}
}

// WithFiles makes sessions read the listed file of a window instead of
// looking it up by name, so files that differ only by prefix are each read.
func (s *Source) WithFiles(files []File) *Source {
	s.files = make(map[int]File, len(files))
	for _, f := range files {
		s.files[f.Window.Index] = f
	}
	return s
}

func (s *Source) Name() string {
	return "replay"
}

func (s *Source) OpenSession(ctx context.Context) (campaign.Session, error) {
	info, err := os.Stat(s.dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", s.dir)
	}
	return session{source: s}, nil
}

type session struct {
	source *Source
}

func sameDates(a, b campaign.RequestWindow) bool {
	return FileName("", a) == FileName("", b)
}

func (s session) path(w campaign.RequestWindow) (string, error) {
	f, ok := s.source.files[w.Index]
	if ok && sameDates(f.Window, w) {
		return f.Path, nil
	}
	if s.source.prefix != "" {
		return filepath.Join(s.source.dir, FileName(s.source.prefix, w)), nil
	}
	matches, err := filepath.Glob(filepath.Join(s.source.dir, FileName("*", w)))
	if err != nil {
		return "", err
	}
	switch len(matches) {
	case 0:
		return "", fmt.Errorf("no replay file for %s: %w", FileName("*", w), fs.ErrNotExist)
	case 1:
		return matches[0], nil
	}
	slices.Sort(matches)
	return "", fmt.Errorf("%d replay files match %s, set a prefix: %v", len(matches), FileName("*", w), matches)
}

func (s session) Fetch(ctx context.Context, w campaign.RequestWindow) ([]offer.RawOffer, error) {
	path, err := s.path(w)
	if err != nil {
		return nil, campaign.NewSourceFailure(campaign.FailureTransport, err)
	}
	body, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			s.source.tel.ReportBroken(report_session_read, err, path)
		}
		return nil, campaign.NewSourceFailure(campaign.FailureTransport, err)
	}
	return s.source.parse(body)
}

func (s session) Close() error {
	return nil
}
