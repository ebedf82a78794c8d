// Package validation validates configuration structs with
// go-playground/validator tags and converts failures into *errors.AppError
// values carrying per-field details.
//
//	type Config struct {
//	    Options []string `yaml:"options" validate:"dive,required"`
//	}
//	err := validation.Validate(cfg)
//
// Besides the built-in tags it registers "resolve", which accepts a strict
// resolve entry of the form host:port:ip.
package validation
