package rentcars

import (
	"fmt"
	"io"
	"strings"

	"rentscan/internal/campaign"
	"rentscan/internal/offer"
	"rentscan/lib/htmlutil"
	"rentscan/lib/textutil"

	"github.com/PuerkitoBio/goquery"
)

// class names carry a build hash suffix (card-vehicle-container_1eavC5yY),
// only the stable prefix is matched.
const (
	selectorCard     = `[class*="card-vehicle-container_"]`
	selectorTitle    = `[class*="card-vehicle-title_"]`
	selectorCategory = `[class*="card-vehicle-title-complementary_"]`
	selectorPrice    = `[class*="total-daily_"]`
	selectorVendor   = `[class*="rental-company-evaluation-img_"] img`
	selectorRating   = `[class*="evaluation-value_"]`
	selectorConfig   = `.booking-configurations__item--description`
)

// VendorUnknown is reported as the vendor of cards without a vendor logo.
const VendorUnknown = "Não informado"

func optional(value string, ok bool) offer.Field {
	if !ok {
		return offer.None()
	}
	return offer.Some(value)
}

func parseCard(card *goquery.Selection) offer.RawOffer {
	var out offer.RawOffer

	out.VehicleName = optional(htmlutil.CleanText(card.Find(selectorTitle)))

	priceText, ok := htmlutil.CleanText(card.Find(selectorPrice))
	if ok {
		out.DailyPrice = optional(textutil.ParseBRL(priceText))
	}

	vendor, ok := htmlutil.AttrOf(card.Find(selectorVendor), "alt")
	if !ok || vendor == "" {
		vendor = VendorUnknown
	}
	out.VendorCode = offer.Some(vendor)

	out.Rating = optional(htmlutil.CleanText(card.Find(selectorRating)))

	card.Find(selectorConfig).Each(func(_ int, item *goquery.Selection) {
		text, _ := htmlutil.CleanText(item)
		lower := strings.ToLower(text)
		if strings.Contains(lower, "automático") || strings.Contains(lower, "manual") {
			out.Transmission = offer.Some(text)
		}
		if strings.Contains(lower, "ar-condicionado") || strings.Contains(lower, "ar condicionado") {
			out.HasAC = offer.Some("true")
		}
	})

	category, ok := htmlutil.CleanText(card.Find(selectorCategory))
	if ok {
		out.CategoryCode = offer.Some(textutil.CategoryLabel(category))
	}
	return out
}

// ParsePage extracts one offer per vehicle card of a listing page. A page
// without cards is ErrNoOffers.
func ParsePage(r io.Reader) ([]offer.RawOffer, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, campaign.NewSourceFailure(campaign.FailurePayload, fmt.Errorf("parse listing: %w", err))
	}

	var out []offer.RawOffer
	doc.Find(selectorCard).Each(func(_ int, card *goquery.Selection) {
		out = append(out, parseCard(card))
	})
	if len(out) == 0 {
		return nil, campaign.ErrNoOffers
	}
	return out, nil
}
