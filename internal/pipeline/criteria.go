package pipeline

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"ticketdash/internal/config"
)

const DayLayout = "2006-01-02"

// CriteriaFromValues reads filter selections from query parameters: from,
// to, repeated client/vehicle/product/driver, one repeated key per custom
// field, and q.
func CriteriaFromValues(values url.Values, schema config.Schema, loc *time.Location) (FilterCriteria, error) {
	if loc == nil {
		loc = time.Local
	}
	c := FilterCriteria{
		Clients:  nonEmpty(values["client"]),
		Vehicles: nonEmpty(values["vehicle"]),
		Products: nonEmpty(values["product"]),
		Drivers:  nonEmpty(values["driver"]),
		Query:    strings.TrimSpace(values.Get("q")),
	}

	for _, bound := range []struct {
		name string
		dst  **time.Time
	}{{"from", &c.From}, {"to", &c.To}} {
		raw := strings.TrimSpace(values.Get(bound.name))
		if raw == "" {
			continue
		}
		day, err := time.ParseInLocation(DayLayout, raw, loc)
		if err != nil {
			return FilterCriteria{}, fmt.Errorf("invalid %s date %q: %w", bound.name, raw, err)
		}
		*bound.dst = &day
	}

	for _, f := range schema.Custom {
		if selected := nonEmpty(values[f.Key]); len(selected) > 0 {
			if c.Custom == nil {
				c.Custom = map[string][]string{}
			}
			c.Custom[f.Key] = selected
		}
	}

	return c, nil
}

// Values is the inverse of CriteriaFromValues.
func (c FilterCriteria) Values() url.Values {
	v := url.Values{}
	if c.From != nil {
		v.Set("from", c.From.Format(DayLayout))
	}
	if c.To != nil {
		v.Set("to", c.To.Format(DayLayout))
	}
	for _, s := range c.Clients {
		v.Add("client", s)
	}
	for _, s := range c.Vehicles {
		v.Add("vehicle", s)
	}
	for _, s := range c.Products {
		v.Add("product", s)
	}
	for _, s := range c.Drivers {
		v.Add("driver", s)
	}
	for key, values := range c.Custom {
		for _, s := range values {
			v.Add(key, s)
		}
	}
	if c.Query != "" {
		v.Set("q", c.Query)
	}
	return v
}

func nonEmpty(values []string) []string {
	var out []string
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			out = append(out, v)
		}
	}
	return out
}
