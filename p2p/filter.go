package p2p

// FilterConfig is the ad acceptance configuration.
// Zero amount bounds disable the respective check
type FilterConfig struct {
	// MinAmount and MaxAmount bound the caller's target trade size.
	// An ad is kept only if its own amount range intersects them
	MinAmount float64
	MaxAmount float64

	// Accept is an optional extra predicate (payment method,
	// country restrictions and the like)
	Accept func(Ad) bool
}

// Filter validates raw ads against the acceptance configuration,
// preserving relative order. Deterministic and side-effect free
func Filter(ads []Ad, cfg FilterConfig) []Ad {
	filtered := make([]Ad, 0, len(ads))

	for _, ad := range ads {
		if !validAd(ad) {
			continue
		}

		if !amountsIntersect(ad, cfg) {
			continue
		}

		if cfg.Accept != nil && !cfg.Accept(ad) {
			continue
		}

		filtered = append(filtered, ad)
	}

	return filtered
}

// validAd checks the ad's own internal consistency
func validAd(ad Ad) bool {
	if ad.Price <= 0 {
		return false
	}

	if ad.MinAmount < 0 || ad.MaxAmount < 0 {
		return false
	}

	if ad.MinAmount > 0 && ad.MaxAmount > 0 && ad.MinAmount > ad.MaxAmount {
		return false
	}

	return true
}

// amountsIntersect checks that the ad's trade-amount range overlaps
// the configured target range. Unset bounds are treated as open
func amountsIntersect(ad Ad, cfg FilterConfig) bool {
	if cfg.MaxAmount > 0 && ad.MinAmount > 0 && ad.MinAmount > cfg.MaxAmount {
		return false
	}

	if cfg.MinAmount > 0 && ad.MaxAmount > 0 && ad.MaxAmount < cfg.MinAmount {
		return false
	}

	return true
}
