package lifecycle

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"listing-review/internal/domain"

	"github.com/shopspring/decimal"
)

// Field names an editable product field
type Field string

const (
	FieldProductName        Field = "productName"
	FieldPrice              Field = "price"
	FieldProductDescription Field = "productDescription"
	FieldDepartment         Field = "department"
	FieldImage              Field = "image"
)

// Fields lists every editable field in display order
var Fields = []Field{FieldProductName, FieldPrice, FieldProductDescription, FieldDepartment, FieldImage}

// ParseField accepts a field name as shown by Fields
func ParseField(s string) (Field, error) {
	for _, f := range Fields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: unknown field %q", domain.ErrValidation, s)
}

// ErrDraftDiscarded is returned by a draft after Discard
var ErrDraftDiscarded = errors.New("draft discarded")

// maxPrice is the largest price the product store can hold
var maxPrice = decimal.RequireFromString("9999999999.99")

// Draft is a local edit buffer for one product. Nothing in it reaches the
// backend until it is snapshotted and submitted or saved. Price is kept as
// the raw text the user typed and only coerced when snapshotting.
type Draft struct {
	productID   string
	name        string
	price       string
	description string
	department  string
	image       string
	discarded   bool
}

// NewDraft seeds a draft from the live product
func NewDraft(p *domain.Product) *Draft {
	return &Draft{
		productID:   p.ID,
		name:        p.ProductName,
		price:       decimal.NewFromFloat(p.Price).String(),
		description: p.ProductDescription,
		department:  p.Department,
		image:       p.Image,
	}
}

// ProductID returns the product the draft edits
func (d *Draft) ProductID() string { return d.productID }

// Set stages value for field
func (d *Draft) Set(field Field, value string) error {
	if d.discarded {
		return ErrDraftDiscarded
	}
	switch field {
	case FieldProductName:
		d.name = value
	case FieldPrice:
		d.price = value
	case FieldProductDescription:
		d.description = value
	case FieldDepartment:
		d.department = value
	case FieldImage:
		d.image = value
	default:
		return fmt.Errorf("%w: unknown field %q", domain.ErrValidation, field)
	}
	return nil
}

// Get returns the staged text of field
func (d *Draft) Get(field Field) string {
	switch field {
	case FieldProductName:
		return d.name
	case FieldPrice:
		return d.price
	case FieldProductDescription:
		return d.description
	case FieldDepartment:
		return d.department
	case FieldImage:
		return d.image
	}
	return ""
}

// Snapshot validates the draft and freezes it into the full set of
// reviewable fields, including the product id. Text fields are kept as typed;
// only price is coerced.
func (d *Draft) Snapshot() (domain.ProductDetails, error) {
	if d.discarded {
		return domain.ProductDetails{}, ErrDraftDiscarded
	}

	var errs domain.ValidationErrors
	if msg := checkName(d.name); msg != "" {
		errs = append(errs, domain.FieldError{Field: string(FieldProductName), Message: msg})
	}
	price, msg := parsePrice(d.price)
	if msg != "" {
		errs = append(errs, domain.FieldError{Field: string(FieldPrice), Message: msg})
	}
	if len(errs) > 0 {
		return domain.ProductDetails{}, errs
	}

	return domain.ProductDetails{
		ID:                 d.productID,
		ProductName:        d.name,
		Price:              price,
		ProductDescription: d.description,
		Department:         d.department,
		Image:              d.image,
	}, nil
}

// Discard drops the staged edits; the draft is unusable afterwards
func (d *Draft) Discard() {
	*d = Draft{productID: d.productID, discarded: true}
}

// CheckField validates a single value for field without a draft, so edits can
// be refused before anything is fetched or uploaded
func CheckField(field Field, value string) error {
	var msg string
	switch field {
	case FieldProductName:
		msg = checkName(value)
	case FieldPrice:
		_, msg = parsePrice(value)
	case FieldProductDescription, FieldDepartment, FieldImage:
	default:
		return fmt.Errorf("%w: unknown field %q", domain.ErrValidation, field)
	}
	if msg != "" {
		return domain.ValidationErrors{{Field: string(field), Message: msg}}
	}
	return nil
}

func checkName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "is required"
	}
	return ""
}

func parsePrice(raw string) (float64, string) {
	value, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return 0, "must be a number"
	}
	if value.IsNegative() {
		return 0, "must not be negative"
	}
	if value.GreaterThan(maxPrice) {
		return 0, "is too large"
	}
	if !value.Equal(value.Truncate(2)) {
		return 0, "must have at most 2 decimal places"
	}
	f, _ := value.Float64()
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, "must be a finite number"
	}
	return f, ""
}
