// Package rentcars fetches car rental offers from rentcars listing pages.
package rentcars

import (
	"bytes"
	"context"
	"fmt"
	"strconv"

	"rentscan/internal/campaign"
	"rentscan/internal/offer"
	"rentscan/internal/sources/webclient"
	"rentscan/lib/telemetry"

	"github.com/go-resty/resty/v2"
)

const DefaultBaseUrl = "https://www.rentcars.com"

const (
	report_session_fetch = "session.fetch"
)

// known city codes
const (
	CityFortaleza = 110
	CityRecife    = 178
)

type Options struct {
	BaseUrl  string
	CityCode int
	HTTP     webclient.Options
}

type Source struct {
	opts   Options
	agents *webclient.UserAgents
	tel    telemetry.API
}

func New(opts Options, tel telemetry.API) (*Source, error) {
	if opts.CityCode <= 0 {
		return nil, fmt.Errorf("rentcars: city code is required")
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	return &Source{
		opts:   opts,
		agents: webclient.NewUserAgents(opts.HTTP.UserAgents),
		tel:    telemetry.NewScopedAPI("rentcars", tel),
	}, nil
}

// ParseCity accepts a numeric city code or a known city name.
func ParseCity(value string) (int, error) {
	switch value {
	case "fortaleza", "Fortaleza", "FOR":
		return CityFortaleza, nil
	case "recife", "Recife", "REC":
		return CityRecife, nil
	}
	code, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("unknown rentcars city %q", value)
	}
	return code, nil
}

func (s *Source) Name() string {
	return "rentcars"
}

func (s *Source) OpenSession(ctx context.Context) (campaign.Session, error) {
	client, err := webclient.New(s.opts.BaseUrl, s.opts.HTTP, s.agents.Next(), "rentscan/rentcars", s.tel)
	if err != nil {
		return nil, err
	}
	client.SetHeader("accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	return &session{source: s, client: client}, nil
}

// ListingPath is the listing page of a window, pickup and dropoff encoded as
// unix timestamps.
func ListingPath(cityCode int, w campaign.RequestWindow) string {
	return fmt.Sprintf(
		"/pt-br/reserva/listar/%d-%d-%d-%d-0-0-0-0-0-0-0-0",
		cityCode, w.PickupAt.Unix(),
		cityCode, w.DropoffAt.Unix(),
	)
}

type session struct {
	source *Source
	client *resty.Client
}

func (s *session) Fetch(ctx context.Context, w campaign.RequestWindow) ([]offer.RawOffer, error) {
	res, err := s.client.R().
		SetContext(ctx).
		Get(ListingPath(s.source.opts.CityCode, w))
	if err != nil {
		s.source.tel.ReportBroken(report_session_fetch, err, w.String())
		return nil, campaign.NewSourceFailure(campaign.FailureTransport, err)
	}
	if res.StatusCode() != 200 {
		return nil, campaign.NewSourceFailure(
			campaign.FailureStatus,
			fmt.Errorf("unexpected status %s", res.Status()),
		)
	}
	return ParsePage(bytes.NewReader(res.Body()))
}

func (s *session) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}
