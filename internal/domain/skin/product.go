package skin

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// ProductType is a closed enumeration; anything a collaborator invents that
// we do not recognize collapses to TypeUnknown rather than failing.
type ProductType string

const (
	TypeCleanser    ProductType = "CLEANSER"
	TypeToner       ProductType = "TONER"
	TypeSerum       ProductType = "SERUM"
	TypeMoisturizer ProductType = "MOISTURIZER"
	TypeSPF         ProductType = "SPF"
	TypeTreatment   ProductType = "TREATMENT"
	TypeMakeup      ProductType = "MAKEUP"
	TypeFragrance   ProductType = "FRAGRANCE"
	TypeUnknown     ProductType = "UNKNOWN"
)

// ParseProductType coerces a free-form type string. Unrecognized values map
// to TypeUnknown, never an error.
func ParseProductType(raw string) ProductType {
	switch ProductType(strings.ToUpper(strings.TrimSpace(raw))) {
	case TypeCleanser:
		return TypeCleanser
	case TypeToner:
		return TypeToner
	case TypeSerum:
		return TypeSerum
	case TypeMoisturizer:
		return TypeMoisturizer
	case TypeSPF:
		return TypeSPF
	case TypeTreatment:
		return TypeTreatment
	case TypeMakeup:
		return TypeMakeup
	case TypeFragrance:
		return TypeFragrance
	}
	return TypeUnknown
}

// Product is immutable once scanned; audits adjust the score on read and
// never persist the adjustment back.
type Product struct {
	ID          uuid.UUID   `json:"id"`
	OwnerID     int64       `json:"ownerId"`
	Name        string      `json:"name"`
	Brand       string      `json:"brand"`
	Type        ProductType `json:"type"`
	Ingredients []string    `json:"ingredients"`
	BaseScore   int         `json:"baseScore"`
	Risks       []string    `json:"risks,omitempty"`
	Benefits    []string    `json:"benefits,omitempty"`
	ScannedAt   time.Time   `json:"scannedAt"`
}

// ContainsIngredient reports whether any ingredient contains the fragment,
// case-insensitively. All ingredient matching in the system goes through
// this predicate.
func (p Product) ContainsIngredient(fragment string) bool {
	needle := strings.ToLower(fragment)
	for _, ing := range p.Ingredients {
		if strings.Contains(strings.ToLower(ing), needle) {
			return true
		}
	}
	return false
}

// IngredientText flattens the ingredient list for cross-product substring
// checks (conflict and synergy detection).
func (p Product) IngredientText() string {
	return strings.ToLower(strings.Join(p.Ingredients, ", "))
}
