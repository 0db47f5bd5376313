package leads

import (
	"fmt"
	"time"

	"github.com/beevik/etree"

	"github.com/wolfman30/autolead-platform/internal/adf"
	"github.com/wolfman30/autolead-platform/internal/leadforms"
)

// Assemble builds the lead document for a validated submission. It is pure:
// the same inputs always produce the same tree.
func Assemble(w Workflow, sub *leadforms.Submission, b adf.Boilerplate, requestTime time.Time) (*etree.Element, error) {
	def, ok := definitions[w]
	if !ok || def.comments == nil {
		return nil, fmt.Errorf("%w: no assembler for %q", ErrConfiguration, w)
	}
	if sub == nil {
		return nil, fmt.Errorf("leads: assemble %s: nil submission", w)
	}
	if def.vehicle && sub.Vehicle == nil {
		return nil, fmt.Errorf("leads: assemble %s: submission has no vehicle", w)
	}
	if def.timeframe && sub.Schedule == nil {
		return nil, fmt.Errorf("leads: assemble %s: submission has no schedule", w)
	}

	prospect := adf.NewProspect(requestTime, b)
	if def.vehicle {
		adf.Append(prospect, adf.VehicleNode(vehicleOf(sub.Vehicle), def.interest))
	}

	extra := []*etree.Element{adf.CommentsNode(def.comments(sub))}
	if def.timeframe {
		extra = append(extra, adf.TimeframeNode(sub.Schedule.Description(), sub.Schedule.Earliest))
	}
	adf.Append(prospect, adf.CustomerNode(contactOf(sub.Contact), extra...))

	return adf.NewDocument(prospect), nil
}

func vehicleOf(v *leadforms.VehicleRef) adf.Vehicle {
	return adf.Vehicle{
		Year:  v.Year,
		Make:  v.Make,
		Model: v.Model,
		Stock: v.StockNumber,
		VIN:   v.VIN,
	}
}

func contactOf(c leadforms.Contact) adf.Contact {
	return adf.Contact{
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
		Street:    c.Address,
		City:      c.City,
		State:     c.State,
		Zip:       c.Zip,
	}
}
