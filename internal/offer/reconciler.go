package offer

import (
	"rentscan/internal/resolve"
	"rentscan/lib/telemetry"
)

const (
	report_reconciler_unresolved = "reconciler.unresolved"
)

// Reconciler turns raw offers into resolved offers. Every source shares the
// same reconciler so that resolution rules cannot drift between them.
type Reconciler struct {
	resolver resolve.Resolver
	tel      telemetry.API
}

func NewReconciler(resolver resolve.Resolver, tel telemetry.API) Reconciler {
	return Reconciler{
		resolver: resolver,
		tel:      telemetry.NewScopedAPI("offer", tel),
	}
}

func (r Reconciler) resolveOne(raw RawOffer, meta WindowMeta, match resolve.Match) ResolvedOffer {
	out := ResolvedOffer{
		Raw:             raw,
		Window:          meta,
		Vehicle:         match.Vehicle,
		VehicleResolved: match.Resolved,
		MatchConfidence: match.Confidence,
	}
	if raw.VendorCode.Ok {
		out.VendorName, out.VendorResolved = r.resolver.ResolveVendor(raw.VendorCode.Value)
	}
	if raw.CategoryCode.Ok {
		out.CategoryName, out.CategoryResolved = r.resolver.ResolveCategory(raw.CategoryCode.Value)
	}
	return out
}

// Reconcile resolves a single offer.
func (r Reconciler) Reconcile(raw RawOffer, meta WindowMeta) ResolvedOffer {
	match := r.resolver.Resolve(raw.VehicleName.Or(""))
	return r.resolveOne(raw, meta, match)
}

// WindowSummary counts what happened to the offers of one window.
type WindowSummary struct {
	Offers     int
	Unresolved int
}

// ReconcileWindow resolves every offer of one window and appends them to out
// in their original order. No offer is dropped: len(raws) offers are always
// appended. Vehicle names repeated within the window are only scored once.
func (r Reconciler) ReconcileWindow(raws []RawOffer, meta WindowMeta, out *ResultSet) WindowSummary {
	resolved := r.ResolveWindow(raws, meta)
	out.Append(resolved...)

	summary := WindowSummary{Offers: len(resolved)}
	for _, o := range resolved {
		if !o.VehicleResolved {
			summary.Unresolved++
		}
	}
	return summary
}

// ResolveWindow is ReconcileWindow without the append, for callers that
// order windows themselves before appending.
func (r Reconciler) ResolveWindow(raws []RawOffer, meta WindowMeta) []ResolvedOffer {
	memo := make(map[string]resolve.Match)
	resolved := make([]ResolvedOffer, 0, len(raws))
	for _, raw := range raws {
		name := raw.VehicleName.Or("")
		match, ok := memo[name]
		if !ok {
			match = r.resolver.Resolve(name)
			memo[name] = match
			if !match.Resolved && name != "" {
				r.tel.ReportDebug(report_reconciler_unresolved, name, match.Confidence)
			}
		}
		resolved = append(resolved, r.resolveOne(raw, meta, match))
	}
	return resolved
}
