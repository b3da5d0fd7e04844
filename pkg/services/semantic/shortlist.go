package semantic

import (
	"sort"
	"strings"

	"github.com/de-tools/trade-sentinel/pkg/models/domain"
)

// chapterKeywords maps two-digit HS chapters to description tokens that make
// the pairing obviously consistent. A match skips the classifier call.
var chapterKeywords = map[string][]string{
	"39": {"plastic", "polymer"},
	"40": {"rubber", "tyre", "tire"},
	"52": {"cotton"},
	"61": {"apparel", "garment", "shirt", "knit"},
	"62": {"apparel", "garment", "suit", "trousers"},
	"64": {"footwear", "shoe", "boot"},
	"72": {"iron", "steel", "alloy"},
	"73": {"steel", "iron", "pipe", "tube", "wire"},
	"84": {"machine", "machinery", "engine", "pump", "turbine"},
	"85": {"electric", "electronic", "cable", "battery", "transformer"},
	"87": {"vehicle", "car", "tractor", "chassis"},
	"90": {"instrument", "optical", "medical", "measuring"},
	"94": {"furniture", "lamp", "mattress", "seat"},
}

// shortlist picks the records worth an external call: syntactically valid
// HS code, non-empty description, highest declared values first, capped at
// ShortlistFraction of the eligible set (never less than one). Records whose
// description already names the chapter are dropped from the list.
func (v *Validator) shortlist(batch []domain.Shipment) []domain.Shipment {
	var eligible []domain.Shipment
	for _, s := range batch {
		if domain.ValidHSCode(s.HSCode) && strings.TrimSpace(s.ProductDescription) != "" {
			eligible = append(eligible, s)
		}
	}
	if len(eligible) == 0 {
		return nil
	}

	sort.SliceStable(eligible, func(i, j int) bool {
		if eligible[i].TotalFOB != eligible[j].TotalFOB {
			return eligible[i].TotalFOB > eligible[j].TotalFOB
		}
		return eligible[i].ID < eligible[j].ID
	})

	n := int(v.settings.ShortlistFraction * float64(len(eligible)))
	if n < 1 {
		n = 1
	}
	if n > len(eligible) {
		n = len(eligible)
	}

	var out []domain.Shipment
	for _, s := range eligible[:n] {
		if obviousMatch(s.ProductDescription, s.HSCode) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func obviousMatch(description, code string) bool {
	keywords, ok := chapterKeywords[code[:2]]
	if !ok {
		return false
	}
	desc := strings.ToLower(description)
	for _, kw := range keywords {
		if strings.Contains(desc, kw) {
			return true
		}
	}
	return false
}
