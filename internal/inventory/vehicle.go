// Package inventory looks up dealership vehicles and their make/model
// catalog.
package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
)

// slugLocality is folded into every vehicle slug for local search.
const slugLocality = "Verona NJ"

const maxSlugLength = 200

// Vehicle is a stocked vehicle.
type Vehicle struct {
	ID            int64
	IsNew         bool
	StockNumber   string
	VIN           string
	Year          int
	MakeID        int64
	Make          string
	ModelID       int64
	Model         string
	Trim          string
	ExteriorColor string
	InteriorColor string
	Miles         int
	SellingPrice  int
	MSRP          int
	Certified     bool
	DateInStock   time.Time
}

// Slug is the URL segment for the vehicle detail page, e.g.
// "vehicle-acura-mdx-2017-verona-nj-a1234".
func (v *Vehicle) Slug() string {
	s := slug.Make(fmt.Sprintf("vehicle %s %s %d %s %s", v.Make, v.Model, v.Year, slugLocality, v.StockNumber))
	if len(s) > maxSlugLength {
		s = strings.TrimRight(s[:maxSlugLength], "-")
	}
	return s
}

// Path is the site-relative detail page path.
func (v *Vehicle) Path() string {
	return fmt.Sprintf("/inventory/%s/%s/", v.StockNumber, v.Slug())
}

// CanonicalURL joins Path onto siteURL.
func (v *Vehicle) CanonicalURL(siteURL string) string {
	return strings.TrimRight(siteURL, "/") + v.Path()
}
