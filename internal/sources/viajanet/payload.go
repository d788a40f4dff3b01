package viajanet

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"rentscan/internal/campaign"
	"rentscan/internal/offer"

	"github.com/shopspring/decimal"
)

type resultsPayload struct {
	Offers []offerPayload `json:"offers"`
}

type offerPayload struct {
	Vehicle *struct {
		Model         *string `json:"model"`
		Specification *struct {
			Transmission *struct {
				Text *string `json:"text"`
			} `json:"transmission"`
			AirConditioning *struct {
				Value json.RawMessage `json:"value"`
			} `json:"airConditioning"`
		} `json:"specification"`
	} `json:"vehicle"`
	CarProviderCode *string `json:"carProviderCode"`
	CategoryCode    *string `json:"categoryCode"`
	PricesDetail    *struct {
		BRL *struct {
			Daily *struct {
				Amount *decimal.Decimal `json:"amount"`
			} `json:"daily"`
		} `json:"BRL"`
	} `json:"pricesDetail"`
}

func optional(value *string) offer.Field {
	if value == nil {
		return offer.None()
	}
	return offer.Some(strings.TrimSpace(*value))
}

// rawScalar renders a json scalar (bool, number or string) as text.
func rawScalar(raw json.RawMessage) offer.Field {
	if len(raw) == 0 || string(raw) == "null" {
		return offer.None()
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return offer.Some(strconv.FormatBool(b))
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return offer.Some(s)
	}
	return offer.Some(string(raw))
}

func (p offerPayload) raw() offer.RawOffer {
	out := offer.RawOffer{
		VendorCode:   optional(p.CarProviderCode),
		CategoryCode: optional(p.CategoryCode),
	}
	if p.Vehicle != nil {
		out.VehicleName = optional(p.Vehicle.Model)
		if spec := p.Vehicle.Specification; spec != nil {
			if spec.Transmission != nil {
				out.Transmission = optional(spec.Transmission.Text)
			}
			if spec.AirConditioning != nil {
				out.HasAC = rawScalar(spec.AirConditioning.Value)
			}
		}
	}
	if p.PricesDetail != nil && p.PricesDetail.BRL != nil && p.PricesDetail.BRL.Daily != nil &&
		p.PricesDetail.BRL.Daily.Amount != nil {
		out.DailyPrice = offer.Some(p.PricesDetail.BRL.Daily.Amount.String())
	}
	return out
}

// ParsePayload decodes a /chapu/results response body. A body that is not
// valid json is a payload failure; a body without offers is ErrNoOffers.
func ParsePayload(body []byte) ([]offer.RawOffer, error) {
	var payload resultsPayload
	err := json.Unmarshal(body, &payload)
	if err != nil {
		return nil, campaign.NewSourceFailure(campaign.FailurePayload, fmt.Errorf("decode results: %w", err))
	}
	if len(payload.Offers) == 0 {
		return nil, campaign.ErrNoOffers
	}

	out := make([]offer.RawOffer, len(payload.Offers))
	for i, p := range payload.Offers {
		out[i] = p.raw()
	}
	return out, nil
}
