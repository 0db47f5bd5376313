// Package leadforms validates and normalizes shopper form submissions.
package leadforms

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/autolead-platform/internal/inventory"
)

// Kind selects the field set a submission is checked against.
type Kind int

const (
	// KindContact is the general contact form.
	KindContact Kind = iota + 1
	// KindVehicleEnquiry covers quote, info, availability and finance enquiries.
	KindVehicleEnquiry
	// KindTestDrive is a vehicle enquiry plus a schedule.
	KindTestDrive
	// KindSendToMobile carries a vehicle reference and a mandatory phone.
	KindSendToMobile
)

func (k Kind) String() string {
	switch k {
	case KindContact:
		return "contact"
	case KindVehicleEnquiry:
		return "vehicle_enquiry"
	case KindTestDrive:
		return "test_drive"
	case KindSendToMobile:
		return "send_to_mobile"
	default:
		return "unknown"
	}
}

// Catalog resolves make and model ids submitted by vehicle forms.
type Catalog interface {
	MakeName(ctx context.Context, id int64) (string, error)
	ModelName(ctx context.Context, id int64) (string, error)
}

// Contact is the normalized person block of a submission.
type Contact struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string // 10 bare digits
	Address   string
	City      string
	State     string
	Zip       string
}

// VehicleRef identifies the vehicle a shopper asked about.
type VehicleRef struct {
	StockNumber string
	VIN         string
	Year        int
	MakeID      int64
	Make        string
	ModelID     int64
	Model       string
}

// Schedule is a resolved test-drive booking.
type Schedule struct {
	Date      time.Time
	DateLabel string
	Slot      Slot
	Earliest  time.Time
}

// Description renders the booking as "{slot} on {date}".
func (s Schedule) Description() string {
	return s.Slot.Label + " on " + s.DateLabel
}

// Submission is a fully validated form.
type Submission struct {
	Kind     Kind
	Contact  Contact
	Vehicle  *VehicleRef
	Schedule *Schedule
	Message  string
}

type contactFields struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"required,max=100"`
	Email     string `form:"email" validate:"omitempty,mailbox"`
	Phone     string `form:"phone" validate:"omitempty,us_phone"`
	Address   string `form:"address"`
	City      string `form:"city" validate:"required,max=100"`
	State     string `form:"state" validate:"required,us_state"`
	Zip       string `form:"zip_code" validate:"required,us_zip"`
	Message   string `form:"message" validate:"required"`
}

type vehicleFields struct {
	StockNumber string `form:"stock_number" validate:"required,max=20"`
	VIN         string `form:"vin" validate:"required,max=20"`
	Year        string `form:"year_mfd" validate:"required,whole_number,positive_int"`
	Make        string `form:"make" validate:"required"`
	Model       string `form:"model" validate:"required"`
}

type mobileFields struct {
	FirstName string `form:"first_name" validate:"required,max=100"`
	LastName  string `form:"last_name" validate:"required,max=100"`
	Phone     string `form:"phone" validate:"required,us_phone"`
}

// Validator checks submissions. It is safe for concurrent use.
type Validator struct {
	catalog  Catalog
	loc      *time.Location
	validate *validator.Validate
}

// NewValidator builds a validator resolving vehicle choices through catalog
// and test-drive dates in loc.
func NewValidator(catalog Catalog, loc *time.Location) *Validator {
	if loc == nil {
		loc = time.UTC
	}
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("form")
	})
	registerUSFields(v)
	return &Validator{catalog: catalog, loc: loc, validate: v}
}

// Location is the timezone schedule dates are offered in.
func (v *Validator) Location() *time.Location {
	return v.loc
}

// Validate checks values against the field set of kind. On failure the error
// is a FieldErrors and no Submission is returned.
func (v *Validator) Validate(ctx context.Context, kind Kind, values url.Values, now time.Time) (*Submission, error) {
	errs := FieldErrors{}
	sub := &Submission{Kind: kind}

	switch kind {
	case KindContact:
		sub.Contact, sub.Message = v.checkContact(values, errs)
	case KindVehicleEnquiry, KindTestDrive:
		vehicle, err := v.checkVehicle(ctx, values, errs)
		if err != nil {
			return nil, err
		}
		sub.Vehicle = vehicle
		sub.Contact, sub.Message = v.checkContact(values, errs)
		if kind == KindTestDrive {
			schedule, schedErrs := resolveSchedule(field(values, "schedule_date"), field(values, "scheduled_slot"), now, v.loc)
			errs.merge(schedErrs)
			sub.Schedule = schedule
		}
	case KindSendToMobile:
		vehicle, err := v.checkVehicle(ctx, values, errs)
		if err != nil {
			return nil, err
		}
		sub.Vehicle = vehicle
		sub.Contact = v.checkMobile(values, errs)
	default:
		return nil, fmt.Errorf("leadforms: unknown form kind %d", kind)
	}

	if len(errs) > 0 {
		return nil, errs
	}
	return sub, nil
}

func (v *Validator) checkContact(values url.Values, errs FieldErrors) (Contact, string) {
	f := contactFields{
		FirstName: field(values, "first_name"),
		LastName:  field(values, "last_name"),
		Email:     field(values, "email"),
		Phone:     field(values, "phone"),
		Address:   field(values, "address"),
		City:      field(values, "city"),
		State:     field(values, "state"),
		Zip:       field(values, "zip_code"),
		Message:   field(values, "message"),
	}
	v.collect(f, errs)

	if (f.Email == "" || errs.Has("email")) && (f.Phone == "" || errs.Has("phone")) {
		errs.Add("email", EmailOrPhoneRequired)
		errs.Add("phone", EmailOrPhoneRequired)
	}

	c := Contact{
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Email:     f.Email,
		Address:   f.Address,
		City:      f.City,
	}
	c.Phone, _ = NormalizePhone(f.Phone)
	c.State, _ = NormalizeState(f.State)
	c.Zip, _ = NormalizeZip(f.Zip)
	return c, f.Message
}

func (v *Validator) checkMobile(values url.Values, errs FieldErrors) Contact {
	f := mobileFields{
		FirstName: field(values, "first_name"),
		LastName:  field(values, "last_name"),
		Phone:     field(values, "phone"),
	}
	v.collect(f, errs)
	phone, _ := NormalizePhone(f.Phone)
	return Contact{FirstName: f.FirstName, LastName: f.LastName, Phone: phone}
}

// checkVehicle validates the vehicle quintuple. Only catalog failures other
// than an unknown id are returned as errors.
func (v *Validator) checkVehicle(ctx context.Context, values url.Values, errs FieldErrors) (*VehicleRef, error) {
	f := vehicleFields{
		StockNumber: field(values, "stock_number"),
		VIN:         field(values, "vin"),
		Year:        field(values, "year_mfd"),
		Make:        field(values, "make"),
		Model:       field(values, "model"),
	}
	v.collect(f, errs)

	ref := &VehicleRef{StockNumber: f.StockNumber, VIN: f.VIN}
	ref.Year, _ = strconv.Atoi(f.Year)

	if !errs.Has("make") {
		id, name, err := v.resolve(ctx, f.Make, v.catalogMake)
		if err != nil {
			return nil, err
		}
		if name == "" {
			errs.Add("make", invalidModelChoice)
		}
		ref.MakeID, ref.Make = id, name
	}
	if !errs.Has("model") {
		id, name, err := v.resolve(ctx, f.Model, v.catalogModel)
		if err != nil {
			return nil, err
		}
		if name == "" {
			errs.Add("model", invalidModelChoice)
		}
		ref.ModelID, ref.Model = id, name
	}
	return ref, nil
}

const invalidModelChoice = "Select a valid choice. That choice is not one of the available choices."

func (v *Validator) catalogMake(ctx context.Context, id int64) (string, error) {
	return v.catalog.MakeName(ctx, id)
}

func (v *Validator) catalogModel(ctx context.Context, id int64) (string, error) {
	return v.catalog.ModelName(ctx, id)
}

// resolve looks a choice id up. An empty name with a nil error means the id
// is not a valid choice.
func (v *Validator) resolve(ctx context.Context, raw string, lookup func(context.Context, int64) (string, error)) (int64, string, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 || v.catalog == nil {
		return 0, "", nil
	}
	name, err := lookup(ctx, id)
	switch {
	case errors.Is(err, inventory.ErrMakeNotFound), errors.Is(err, inventory.ErrModelNotFound):
		return 0, "", nil
	case err != nil:
		return 0, "", fmt.Errorf("leadforms: resolve choice %d: %w", id, err)
	}
	return id, name, nil
}

func (v *Validator) collect(s any, errs FieldErrors) {
	err := v.validate.Struct(s)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		errs.Add("__all__", err.Error())
		return
	}
	for _, fe := range verrs {
		errs.Add(fe.Field(), message(fe))
	}
}

// field returns the trimmed first value for key.
func field(values url.Values, key string) string {
	return strings.TrimSpace(values.Get(key))
}
