package service

import (
	"sort"
	"strings"

	"github.com/iwapim/catalog-backend/internal/app/model"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// VariantCombination is one cell of the variant matrix: a (color, size,
// custom) triple tagged with whether a published variant already occupies it.
// Locked rows are rendered pre-checked and disabled; their axis values cannot
// be removed from the parent's option set.
type VariantCombination struct {
	Color      string `json:"color"`
	ColorLabel string `json:"color_label,omitempty"`
	Size       string `json:"size"`
	SizeLabel  string `json:"size_label,omitempty"`
	Custom     string `json:"custom,omitempty"` // empty = no custom value
	Locked     bool   `json:"locked"`
}

// MatrixResult is the ordered matrix plus an optional user-facing validation
// message. A non-empty message means the input was incomplete and no matrix
// was generated; it is not an error.
type MatrixResult struct {
	Combinations      []VariantCombination `json:"combinations"`
	ValidationMessage string               `json:"validation_message,omitempty"`
}

// NormalizeCustom collapses the "no custom value" spellings (null upstream,
// empty string, whitespace) into the single empty-string sentinel.
func NormalizeCustom(custom string) string {
	return strings.TrimSpace(custom)
}

func combinationKey(color, size, custom string) string {
	return strings.TrimSpace(color) + "|" + strings.TrimSpace(size) + "|" + NormalizeCustom(custom)
}

// variantTripleKey builds the same key from a persisted variant.
func variantTripleKey(v *model.Product) string {
	color := ""
	if v.VariationColor != nil {
		color = v.VariationColor.Name
	}
	return combinationKey(color, v.VariationSize, v.CustomField)
}

// sizeRanks is the fixed display order for apparel-style size labels.
// Unranked labels sort after ranked ones.
var sizeRanks = map[string]int{
	"XS": 0, "S": 1, "M": 2, "L": 3, "XL": 4,
	"2XL": 5, "3XL": 6, "4XL": 7, "5XL": 8, "6XL": 9,
}

func sortSizeOptions(sizes []model.AxisOption) []model.AxisOption {
	sorted := make([]model.AxisOption, len(sizes))
	copy(sorted, sizes)
	// Size labels come from Turkish product templates; a collator keeps
	// unranked labels in the order an operator would expect. Collators are
	// not safe for concurrent use, so one is built per call.
	coll := collate.New(language.Turkish, collate.IgnoreCase)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, iRanked := sizeRanks[strings.ToUpper(strings.TrimSpace(sorted[i].Value))]
		rj, jRanked := sizeRanks[strings.ToUpper(strings.TrimSpace(sorted[j].Value))]
		switch {
		case iRanked && jRanked:
			return ri < rj
		case iRanked:
			return true
		case jRanked:
			return false
		default:
			return coll.CompareString(sorted[i].Value, sorted[j].Value) < 0
		}
	})
	return sorted
}

// BuildVariantMatrix expands the full size x color x custom combination space,
// deduplicates it, and tags each combination that an existing published
// sibling variant occupies. Pure: it only reads the axes and the existing
// variant rows handed to it.
//
// Empty size or color axes yield an empty matrix with a validation message;
// an empty custom axis expands against the single "no custom value" sentinel.
func BuildVariantMatrix(sizeAxis, colorAxis, customAxis []model.AxisOption, existing []model.Product) MatrixResult {
	if len(sizeAxis) == 0 || len(colorAxis) == 0 {
		return MatrixResult{
			ValidationMessage: "select at least one color and one size",
		}
	}

	// Published occupants lock their combination; unpublished ones are
	// re-activatable and stay unlocked.
	published := make(map[string]bool, len(existing))
	for i := range existing {
		if existing[i].Published {
			published[variantTripleKey(&existing[i])] = true
		}
	}

	customs := customAxis
	if len(customs) == 0 {
		customs = []model.AxisOption{{}}
	}

	seen := make(map[string]bool)
	var combinations []VariantCombination

	for _, size := range sortSizeOptions(sizeAxis) {
		for _, color := range colorAxis {
			for _, custom := range customs {
				key := combinationKey(color.Value, size.Value, custom.Value)
				if seen[key] {
					continue // duplicate axis entry upstream, first occurrence wins
				}
				seen[key] = true

				combinations = append(combinations, VariantCombination{
					Color:      strings.TrimSpace(color.Value),
					ColorLabel: color.Label,
					Size:       strings.TrimSpace(size.Value),
					SizeLabel:  size.Label,
					Custom:     NormalizeCustom(custom.Value),
					Locked:     published[key],
				})
			}
		}
	}

	return MatrixResult{Combinations: combinations}
}
