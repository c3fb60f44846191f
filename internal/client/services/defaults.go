package services

import (
	"math"
	"regexp"
	"strconv"

	"github.com/dmitrijs2005/antiquary/internal/client/models"
	"github.com/dmitrijs2005/antiquary/internal/common"
	rmodels "github.com/dmitrijs2005/antiquary/internal/remote/models"
)

// Defaults used for attributes absent from a scan snapshot.
const (
	DefaultPeriodStart       = 1800
	DefaultPeriodEnd         = 1900
	DefaultCategory          = "Uncategorized"
	DefaultCondition         = "Unknown"
	DefaultOrigin            = "Unknown"
	DefaultAcquisitionSource = "Scan"
	DefaultCurrency          = "USD"
)

var yearRe = regexp.MustCompile(`\b(1[0-9]{3}|20[0-9]{2})\b`)

// ApplyDefaults builds complete item attributes from a partial snapshot.
// Both snake_case and camelCase keys are accepted. imageURL is passed through.
func ApplyDefaults(snapshot models.Payload, imageURL *string) rmodels.ItemAttributes {
	p := snapshot
	if p == nil {
		p = models.Payload{}
	}

	a := rmodels.ItemAttributes{
		Name:              str(p, common.UnknownItemName, "name", "title"),
		Description:       str(p, "", "description", "summary"),
		ImageURL:          imageURL,
		Origin:            str(p, DefaultOrigin, "origin", "country", "region"),
		Condition:         str(p, DefaultCondition, "condition"),
		ConditionNotes:    str(p, "", "condition_notes", "conditionNotes"),
		Provenance:        str(p, "", "provenance"),
		AcquisitionSource: str(p, DefaultAcquisitionSource, "acquisition_source", "acquisitionSource"),
		Currency:          str(p, DefaultCurrency, "currency"),
	}

	a.Categories, _ = p.Strings("categories", "category")
	if len(a.Categories) == 0 {
		a.Categories = []string{DefaultCategory}
	}

	a.Specification = map[string]any{}
	if spec, ok := p.Map("specification", "specifications", "specs"); ok {
		for k, v := range spec {
			a.Specification[k] = v
		}
	}

	a.PeriodStart, a.PeriodEnd = period(p)
	a.PriceMin, a.PriceMax = price(p, &a.Currency)
	return a
}

func str(p models.Payload, def string, keys ...string) string {
	if s, ok := p.String(keys...); ok {
		return s
	}
	return def
}

func period(p models.Payload) (int, int) {
	start, okStart := p.Number("period_start", "periodStart", "era_start", "eraStart", "year_from")
	end, okEnd := p.Number("period_end", "periodEnd", "era_end", "eraEnd", "year_to")

	if !okStart && !okEnd {
		// free text such as "c. 1850-1870" or "Victorian (1837 to 1901)"
		if s, ok := p.String("period", "era", "date"); ok {
			years := yearRe.FindAllString(s, 2)
			if len(years) > 0 {
				start, _ = strconv.ParseFloat(years[0], 64)
				end = start
				okStart, okEnd = true, true
				if len(years) > 1 {
					end, _ = strconv.ParseFloat(years[1], 64)
				}
			}
		}
	}

	switch {
	case !okStart && !okEnd:
		return DefaultPeriodStart, DefaultPeriodEnd
	case !okStart:
		start = end
	case !okEnd:
		end = start
	}
	start, end = clampYear(start), clampYear(end)
	if start > end {
		start, end = end, start
	}
	return int(start), int(end)
}

// Bounds for a period year taken from a snapshot.
const (
	minYear = -10000
	maxYear = 9999
)

func clampYear(y float64) float64 {
	switch {
	case math.IsNaN(y):
		return DefaultPeriodStart
	case y < minYear:
		return minYear
	case y > maxYear:
		return maxYear
	}
	return y
}

func price(p models.Payload, currency *string) (float64, float64) {
	lo, okLo := p.Number("price_min", "priceMin", "value_min", "estimated_value_min", "low")
	hi, okHi := p.Number("price_max", "priceMax", "value_max", "estimated_value_max", "high")

	if !okLo && !okHi {
		if mv, ok := p.Map("market_value", "marketValue", "price", "estimated_value"); ok {
			nested := models.Payload(mv)
			lo, okLo = nested.Number("min", "low")
			hi, okHi = nested.Number("max", "high")
			if !okLo && !okHi {
				lo, okLo = nested.Number("value", "amount")
			}
			if c, ok := nested.String("currency"); ok {
				*currency = c
			}
		} else if v, ok := p.Number("price", "estimated_value", "value"); ok {
			lo, okLo = v, true
		}
	}

	switch {
	case !okLo && !okHi:
		return 0, 0
	case !okLo:
		lo = hi
	case !okHi:
		hi = lo
	}
	if hi < lo {
		lo, hi = hi, lo
	}
	return max(lo, 0), max(hi, 0)
}
