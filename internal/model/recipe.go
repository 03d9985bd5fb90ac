package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// NamedResource is the shared shape of tags and ingredients.
type NamedResource struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	OwnerID   string    `json:"-"`
	CreatedAt time.Time `json:"-"`
}

// Resource returns the embedded NamedResource.
func (n *NamedResource) Resource() *NamedResource {
	return n
}

// Tag is an owner-scoped label attached to recipes.
type Tag struct {
	NamedResource
}

// Ingredient is an owner-scoped ingredient attached to recipes.
type Ingredient struct {
	NamedResource
}

// Recipe represents a recipe owned by a single user.
type Recipe struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	IngredientIDs []string  `json:"ingredient"`
	TagIDs        []string  `json:"tags"`
	TimeMinutes   int       `json:"time_minutes"`
	Price         Price     `json:"price"`
	Link          string    `json:"link"`
	OwnerID       string    `json:"-"`
	CreatedAt     time.Time `json:"-"`
}

// MaxPriceCents is the largest accepted price (999.99).
const MaxPriceCents = 99999

// ErrInvalidPrice indicates a price that is not a non-negative amount with at most two decimals.
var ErrInvalidPrice = errors.New("invalid price")

// Price is a monetary amount stored in cents.
// It is rendered as a decimal string ("5.00").
type Price int64

// String formats the price with two decimals.
func (p Price) String() string {
	sign := ""
	v := int64(p)
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%d.%02d", sign, v/100, v%100)
}

// MarshalJSON renders the price as a decimal string.
func (p Price) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

// UnmarshalJSON accepts both JSON numbers and numeric strings.
func (p *Price) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return ErrInvalidPrice
	}
	if strings.HasPrefix(raw, `"`) {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return ErrInvalidPrice
		}
		raw = s
	}
	parsed, err := ParsePrice(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// ParsePrice parses a decimal amount such as "5", "5.5" or "5.00".
// Well-formed amounts above 999.99 parse as a value greater than MaxPriceCents.
func ParsePrice(s string) (Price, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, ErrInvalidPrice
	}

	whole, frac, hasFrac := strings.Cut(s, ".")
	if hasFrac && (len(frac) == 0 || len(frac) > 2) {
		return 0, ErrInvalidPrice
	}
	if whole == "" {
		whole = "0"
	}
	for _, part := range []string{whole, frac} {
		for _, r := range part {
			if r < '0' || r > '9' {
				return 0, ErrInvalidPrice
			}
		}
	}

	// Amounts past the accepted range saturate, so validation reports
	// them as too many digits instead of a malformed number.
	units, err := strconv.ParseInt(whole, 10, 64)
	if err != nil || units > MaxPriceCents/100 {
		return Price(math.MaxInt64), nil
	}
	cents := int64(0)
	if hasFrac {
		for len(frac) < 2 {
			frac += "0"
		}
		cents, _ = strconv.ParseInt(frac, 10, 64)
	}

	return Price(units*100 + cents), nil
}
