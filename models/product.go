package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

type Category struct {
	ID   int64  `json:"id" gorm:"primaryKey"`
	Name string `json:"name" gorm:"not null"`
}

// Rating is the aggregate review score of a product.
type Rating struct {
	Rate  float64 `json:"rate"`
	Count int     `json:"count"`
}

type ratingFields Rating

// UnmarshalJSON accepts the structured form as well as the serialized-text
// form some hosted backends return (`"{\"rate\":4.1,\"count\":120}"`).
func (r *Rating) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Rating{}
		return nil
	}
	if data[0] == '"' {
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		parsed, err := ParseRating(text)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	}
	var f ratingFields
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("invalid rating: %w", err)
	}
	*r = Rating(f)
	return nil
}

// ParseRating decodes a rating stored as JSON text. Empty text is a zero rating.
func ParseRating(text string) (Rating, error) {
	if len(bytes.TrimSpace([]byte(text))) == 0 {
		return Rating{}, nil
	}
	var f ratingFields
	if err := json.Unmarshal([]byte(text), &f); err != nil {
		return Rating{}, fmt.Errorf("invalid rating text: %w", err)
	}
	return Rating(f), nil
}

// Scan implements sql.Scanner for ratings stored in a text/json column.
func (r *Rating) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*r = Rating{}
		return nil
	case string:
		parsed, err := ParseRating(v)
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	case []byte:
		parsed, err := ParseRating(string(v))
		if err != nil {
			return err
		}
		*r = parsed
		return nil
	default:
		return fmt.Errorf("unsupported rating column type %T", value)
	}
}

// Value implements driver.Valuer.
func (r Rating) Value() (driver.Value, error) {
	b, err := json.Marshal(ratingFields(r))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

type Product struct {
	ID          int64           `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"not null"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price" gorm:"type:numeric(10,2);not null"`
	Image       string          `json:"image"`
	CategoryID  int64           `json:"-"`
	Category    Category        `json:"category" gorm:"foreignKey:CategoryID"`
	Rating      Rating          `json:"rating" gorm:"type:text"`
}

// Validate enforces the invariants every product must satisfy before it
// enters the catalog.
func (p Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("product id must be positive, got %d", p.ID)
	}
	if p.Title == "" {
		return fmt.Errorf("product %d has no title", p.ID)
	}
	if p.Price.IsNegative() {
		return fmt.Errorf("product %d has negative price %s", p.ID, p.Price)
	}
	return nil
}
