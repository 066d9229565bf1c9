// Package validation checks configuration structs and command-line input.
//
// Struct tag validation backs config loading:
//
//	type PipelineConfig struct {
//	    BufferSize int `mapstructure:"buffer_size" validate:"gte=0"`
//	}
//	err := validation.Validate(cfg)
//
// Programmatic validation collects field errors from flags:
//
//	v := validation.New()
//	v.Positive("size", size).FileExists("input", path)
//	if err := v.Validate(); err != nil { ... }
//
// Both report an errors.AppError with code INVALID_ARGUMENT whose "fields"
// detail lists every failing field.
package validation
