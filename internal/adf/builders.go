package adf

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
)

// Vehicle interest values.
const (
	InterestBuy       = "buy"
	InterestTestDrive = "test-drive"
)

// RequestDateLayout is the ISO-8601 layout used for requestdate and
// earliestdate values.
const RequestDateLayout = "2006-01-02T15:04:05-07:00"

// Contact is the person block used for both customers and the vendor.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Street    string
	City      string
	State     string
	Zip       string
}

// Provider identifies the party that generated the lead.
type Provider struct {
	Name string
	URL  string
}

// Vendor identifies the dealership receiving the lead.
type Vendor struct {
	Name    string
	URL     string
	Contact Contact
}

// Vehicle is the vehicle reference carried on a lead.
type Vehicle struct {
	Year  int
	Make  string
	Model string
	Stock string
	VIN   string
}

// FormatTimestamp renders t at whole-second precision with a numeric offset.
func FormatTimestamp(t time.Time) string {
	return t.Truncate(time.Second).Format(RequestDateLayout)
}

// ContactNode builds a contact block. Empty values still produce their
// element so downstream CRMs always see the full shape.
func ContactNode(c Contact) *etree.Element {
	phone := TextElement("phone", c.Phone, "time", "nopreference", "type", "phone")
	address := Element("address",
		TextElement("street", c.Street),
		TextElement("city", c.City),
		TextElement("regioncode", c.State),
		TextElement("postalcode", c.Zip),
	)
	return Element("contact",
		TextElement("name", c.FirstName, "part", "first"),
		TextElement("name", c.LastName, "part", "last"),
		TextElement("email", c.Email),
		phone,
		address,
	)
}

func ProviderNode(p Provider) *etree.Element {
	return Element("provider",
		TextElement("name", p.Name, "part", "full"),
		TextElement("url", p.URL),
	)
}

func VendorNode(v Vendor) *etree.Element {
	return Element("vendor",
		TextElement("vendorname", v.Name),
		TextElement("url", v.URL),
		ContactNode(v.Contact),
	)
}

func RequestDateNode(t time.Time) *etree.Element {
	return TextElement("requestdate", FormatTimestamp(t))
}

// VehicleNode builds a vehicle block. An empty interest omits the attribute.
func VehicleNode(v Vehicle, interest string) *etree.Element {
	n := Element("vehicle",
		TextElement("year", strconv.Itoa(v.Year)),
		TextElement("make", v.Make),
		TextElement("model", v.Model),
		TextElement("stock", v.Stock),
		TextElement("vin", v.VIN),
	)
	if interest != "" {
		n.CreateAttr("interest", interest)
	}
	return n
}

func TimeframeNode(description string, earliest time.Time) *etree.Element {
	return Element("timeframe",
		TextElement("description", description),
		TextElement("earliestdate", FormatTimestamp(earliest)),
	)
}

func CommentsNode(text string) *etree.Element {
	return TextElement("comments", text)
}

// CustomerNode wraps a contact with optional trailing nodes such as comments
// and timeframe.
func CustomerNode(c Contact, extra ...*etree.Element) *etree.Element {
	return Append(Element("customer", ContactNode(c)), extra...)
}
