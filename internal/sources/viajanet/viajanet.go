// Package viajanet fetches car rental offers from the viajanet results api.
package viajanet

import (
	"context"
	"errors"
	"fmt"

	"rentscan/internal/campaign"
	"rentscan/internal/offer"
	"rentscan/internal/sources/replay"
	"rentscan/internal/sources/webclient"
	"rentscan/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const DefaultBaseUrl = "https://www.viajanet.com.br"

const (
	report_session_fetch = "session.fetch"
	report_session_dump  = "session.dump"
)

const dateTimeLayout = "2006-01-02T15:04"

type Options struct {
	BaseUrl string
	// City is the short city code used in referer urls and dump file names.
	City       string
	PickupGid  string
	DropoffGid string
	HTTP       webclient.Options
	// DumpDir, when set, keeps every successful response body as a replay file.
	DumpDir string
}

type Source struct {
	opts   Options
	agents *webclient.UserAgents
	tel    telemetry.API
}

func New(opts Options, tel telemetry.API) (*Source, error) {
	if opts.PickupGid == "" {
		return nil, fmt.Errorf("viajanet: pickup gid is required")
	}
	if opts.DropoffGid == "" {
		opts.DropoffGid = opts.PickupGid
	}
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	return &Source{
		opts:   opts,
		agents: webclient.NewUserAgents(opts.HTTP.UserAgents),
		tel:    telemetry.NewScopedAPI("viajanet", tel),
	}, nil
}

func (s *Source) Name() string {
	return "viajanet"
}

// OpenSession creates a fresh client with new cookies, user agent and
// tracker ids.
func (s *Source) OpenSession(ctx context.Context) (campaign.Session, error) {
	client, err := webclient.New(s.opts.BaseUrl, s.opts.HTTP, s.agents.Next(), "rentscan/viajanet", s.tel)
	if err != nil {
		return nil, err
	}

	trackerId := uuid.NewString()
	pageviewId := fmt.Sprintf("cars-gui-%s", uuid.NewString())
	client.SetHeaders(map[string]string{
		"accept":           "application/json, text/javascript, */*; q=0.01",
		"x-requested-with": "XMLHttpRequest",
		"x-uow":            pageviewId,
	})

	return &session{
		source:     s,
		client:     client,
		trackerId:  trackerId,
		pageviewId: pageviewId,
	}, nil
}

type session struct {
	source     *Source
	client     *resty.Client
	trackerId  string
	pageviewId string
}

func (s *session) query(w campaign.RequestWindow) map[string]string {
	return map[string]string{
		"site":               "BR",
		"channel":            "viajanet-site",
		"channelType":        "WHITE_LABEL",
		"language":           "PT",
		"trackerid":          s.trackerId,
		"pickupGid":          s.source.opts.PickupGid,
		"dropoffGid":         s.source.opts.DropoffGid,
		"pickup_date":        w.PickupAt.Format(dateTimeLayout),
		"dropoff_date":       w.DropoffAt.Format(dateTimeLayout),
		"filtersCameEncoded": "false",
		"webview":            "false",
		"useNewFilters":      "false",
		"pageviewId":         s.pageviewId,
		"incomeType":         "UNKNOWN",
		"searchMode":         "FIRST_SEARCH",
		"page":               "1",
		"pageSize":           "15",
		"providerDespegar":   "false",
		"categoryLimit":      "3",
	}
}

func (s *session) referer(w campaign.RequestWindow) string {
	city := s.source.opts.City
	return fmt.Sprintf(
		"%s/cars/shop/city/%s/%s/city/%s/%s",
		s.source.opts.BaseUrl,
		city, w.PickupAt.Format(dateTimeLayout),
		city, w.DropoffAt.Format(dateTimeLayout),
	)
}

func (s *session) Fetch(ctx context.Context, w campaign.RequestWindow) ([]offer.RawOffer, error) {
	tel := s.source.tel

	res, err := s.client.R().
		SetContext(ctx).
		SetQueryParams(s.query(w)).
		SetHeader("referer", s.referer(w)).
		Get("/chapu/results")
	if err != nil {
		tel.ReportBroken(report_session_fetch, err, w.String())
		return nil, campaign.NewSourceFailure(campaign.FailureTransport, err)
	}
	if res.IsError() || res.StatusCode() != 200 {
		return nil, campaign.NewSourceFailure(
			campaign.FailureStatus,
			fmt.Errorf("unexpected status %s", res.Status()),
		)
	}

	offers, err := ParsePayload(res.Body())
	if err != nil {
		if !errors.Is(err, campaign.ErrNoOffers) {
			tel.ReportBroken(report_session_fetch, err, w.String())
		}
		return nil, err
	}

	if s.source.opts.DumpDir != "" {
		err = replay.Save(s.source.opts.DumpDir, s.source.opts.City, w, res.Body())
		if err != nil {
			tel.ReportWarning(report_session_dump, err, w.String())
		}
	}
	return offers, nil
}

func (s *session) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}
