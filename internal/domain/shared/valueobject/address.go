package valueobject

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Address is a value object representing a shipping address
// It is immutable - construct a new one instead of mutating
type Address struct {
	line1      string
	line2      string
	city       string
	region     string
	postalCode string
	country    string
}

// AddressOption is a functional option for configuring Address
type AddressOption func(*Address)

// WithLine2 sets the secondary address line
func WithLine2(line2 string) AddressOption {
	return func(a *Address) {
		a.line2 = strings.TrimSpace(line2)
	}
}

// WithRegion sets the state or province
func WithRegion(region string) AddressOption {
	return func(a *Address) {
		a.region = strings.TrimSpace(region)
	}
}

// WithCountry sets the country code
func WithCountry(country string) AddressOption {
	return func(a *Address) {
		a.country = strings.ToUpper(strings.TrimSpace(country))
	}
}

// NewAddress creates a new Address
// Line1, city and postal code are required; line2, region and country are optional
func NewAddress(line1, city, postalCode string, opts ...AddressOption) (Address, error) {
	line1 = strings.TrimSpace(line1)
	city = strings.TrimSpace(city)
	postalCode = strings.TrimSpace(postalCode)

	if line1 == "" {
		return Address{}, errors.New("address line cannot be empty")
	}
	if len(line1) > 200 {
		return Address{}, errors.New("address line cannot exceed 200 characters")
	}
	if city == "" {
		return Address{}, errors.New("city cannot be empty")
	}
	if postalCode == "" {
		return Address{}, errors.New("postal code cannot be empty")
	}
	if len(postalCode) > 20 {
		return Address{}, errors.New("postal code cannot exceed 20 characters")
	}

	addr := Address{
		line1:      line1,
		city:       city,
		postalCode: postalCode,
		country:    "US",
	}
	for _, opt := range opts {
		opt(&addr)
	}

	if addr.country != "" && len(addr.country) != 2 {
		return Address{}, fmt.Errorf("country must be a 2-letter ISO code, got %q", addr.country)
	}

	return addr, nil
}

// EmptyAddress returns an empty address (for optional address fields)
func EmptyAddress() Address {
	return Address{}
}

// Line1 returns the primary address line
func (a Address) Line1() string { return a.line1 }

// Line2 returns the secondary address line
func (a Address) Line2() string { return a.line2 }

// City returns the city
func (a Address) City() string { return a.city }

// Region returns the state or province
func (a Address) Region() string { return a.region }

// PostalCode returns the postal code
func (a Address) PostalCode() string { return a.postalCode }

// Country returns the country code
func (a Address) Country() string { return a.country }

// IsEmpty returns true if the address has no content
func (a Address) IsEmpty() bool {
	return a.line1 == "" && a.city == "" && a.postalCode == ""
}

// String returns a single-line representation suitable for labels
func (a Address) String() string {
	parts := make([]string, 0, 6)
	for _, p := range []string{a.line1, a.line2, a.city, a.region, a.postalCode, a.country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}

type addressJSON struct {
	Line1      string `json:"line1"`
	Line2      string `json:"line2,omitempty"`
	City       string `json:"city"`
	Region     string `json:"region,omitempty"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

// MarshalJSON implements json.Marshaler
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(addressJSON{
		Line1:      a.line1,
		Line2:      a.line2,
		City:       a.city,
		Region:     a.region,
		PostalCode: a.postalCode,
		Country:    a.country,
	})
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Address) UnmarshalJSON(data []byte) error {
	var v addressJSON
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	a.line1 = v.Line1
	a.line2 = v.Line2
	a.city = v.City
	a.region = v.Region
	a.postalCode = v.PostalCode
	a.country = v.Country
	return nil
}

// Value implements driver.Valuer so GORM can persist the address as JSON
func (a Address) Value() (driver.Value, error) {
	if a.IsEmpty() {
		return nil, nil
	}
	return json.Marshal(a)
}

// Scan implements sql.Scanner
func (a *Address) Scan(value interface{}) error {
	if value == nil {
		*a = Address{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("cannot scan %T into Address", value)
	}
}
