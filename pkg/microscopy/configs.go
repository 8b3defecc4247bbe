package microscopy

import "github.com/go-playground/validator/v10"

var validate = validator.New()

// STMConfig configures a scanning tunneling microscopy simulation.
// Zero-valued fields are filled from the documented defaults, then the
// whole config is validated; explicit values always win over defaults.
type STMConfig struct {
	// Bias is the sample bias voltage in volts.
	Bias float64 `json:"bias" validate:"required,ne=0"`

	// Height is the constant-height scan distance above the surface in
	// Angstrom.
	Height float64 `json:"height" validate:"gt=0"`

	// Resolution is the number of grid points per lateral axis.
	Resolution int `json:"resolution" validate:"gt=0,lte=1024"`
}

// ApplyDefaults fills unset fields and validates the result.
func (c *STMConfig) ApplyDefaults() error {
	if c.Bias == 0 {
		c.Bias = -1.0
	}
	if c.Height == 0 {
		c.Height = 4.0
	}
	if c.Resolution == 0 {
		c.Resolution = 128
	}
	return validate.Struct(c)
}

// AFMConfig configures an atomic force microscopy simulation.
type AFMConfig struct {
	// Amplitude is the tip oscillation amplitude in Angstrom.
	Amplitude float64 `json:"amplitude" validate:"gt=0"`

	// MinHeight and MaxHeight bound the scanned height range in Angstrom.
	MinHeight float64 `json:"min_height" validate:"gt=0"`
	MaxHeight float64 `json:"max_height" validate:"gtfield=MinHeight"`

	// Resolution is the number of grid points per lateral axis.
	Resolution int `json:"resolution" validate:"gt=0,lte=1024"`
}

// ApplyDefaults fills unset fields and validates the result.
func (c *AFMConfig) ApplyDefaults() error {
	if c.Amplitude == 0 {
		c.Amplitude = 1.0
	}
	if c.MinHeight == 0 {
		c.MinHeight = 3.0
	}
	if c.MaxHeight == 0 {
		c.MaxHeight = 6.0
	}
	if c.Resolution == 0 {
		c.Resolution = 128
	}
	return validate.Struct(c)
}

// IETSConfig configures an inelastic tunneling spectroscopy simulation.
type IETSConfig struct {
	// Bias is the sample bias voltage in volts.
	Bias float64 `json:"bias" validate:"required,ne=0"`

	// Modulation is the bias modulation amplitude in volts.
	Modulation float64 `json:"modulation" validate:"gt=0"`

	// Height is the tip height above the surface in Angstrom.
	Height float64 `json:"height" validate:"gt=0"`
}

// ApplyDefaults fills unset fields and validates the result.
func (c *IETSConfig) ApplyDefaults() error {
	if c.Bias == 0 {
		c.Bias = -0.5
	}
	if c.Modulation == 0 {
		c.Modulation = 0.02
	}
	if c.Height == 0 {
		c.Height = 4.0
	}
	return validate.Struct(c)
}

// ConfigFor returns a fresh config for a technique with defaults applied,
// or nil for unknown techniques.
func ConfigFor(technique Technique) interface{} {
	switch technique {
	case STM:
		c := &STMConfig{}
		_ = c.ApplyDefaults()
		return c
	case AFM:
		c := &AFMConfig{}
		_ = c.ApplyDefaults()
		return c
	case IETS:
		c := &IETSConfig{}
		_ = c.ApplyDefaults()
		return c
	default:
		return nil
	}
}
