package production

import (
	"github.com/tidwall/gjson"

	"cityanalysis/internal/city"
)

// Option is one selectable production recipe within an era.
type Option struct {
	Name string
	// Time is the cycle length in seconds; HasTime is false when the
	// source had no integral time.
	Time              int
	HasTime           bool
	OnlyWhenMotivated bool
	Products          []Product
}

// ParseOptions reads production.options from an era component. Options or
// products with an unexpected shape are dropped.
func ParseOptions(component gjson.Result) []Option {
	prod, ok := city.Object(component, "production")
	if !ok {
		return nil
	}
	opts, ok := city.Array(prod, "options")
	if !ok {
		return nil
	}
	var out []Option
	city.Each(opts, func(o gjson.Result) {
		if !o.IsObject() {
			return
		}
		products, ok := city.Array(o, "products")
		if !ok {
			return
		}
		opt := Option{OnlyWhenMotivated: city.Flag(o, "onlyWhenMotivated")}
		opt.Name, _ = city.String(o, "name")
		opt.Time, opt.HasTime = city.Int(o, "time")
		city.Each(products, func(p gjson.Result) {
			if prod, ok := ParseProduct(p); ok {
				opt.Products = append(opt.Products, prod)
			}
		})
		out = append(out, opt)
	})
	return out
}
