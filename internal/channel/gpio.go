package channel

import (
	"fmt"
	"strconv"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"
)

// GPIODriver drives real host GPIO pins through periph.io.
//
// Pins are resolved once at construction; an unresolvable pin is a
// configuration error and fails startup rather than surfacing later as a
// per-command failure.
type GPIODriver struct {
	pins map[Pin]gpio.PinIO
}

// NewGPIODriver initialises the periph host and resolves every pin in the
// channel table.
//
// Parameters:
//   - defs: Channel definitions from config (only the pins are used)
//
// Returns:
//   - *GPIODriver: Driver with all pins resolved
//   - error: If host initialisation fails or a pin cannot be found
func NewGPIODriver(defs []Definition) (*GPIODriver, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("initialising gpio host: %w", err)
	}

	pins := make(map[Pin]gpio.PinIO, len(defs))
	for _, def := range defs {
		p := gpioreg.ByName(strconv.Itoa(int(def.Pin)))
		if p == nil {
			return nil, fmt.Errorf("%w: pin %d for channel %q", ErrPinNotFound, def.Pin, def.Name)
		}
		pins[def.Pin] = p
	}

	return &GPIODriver{pins: pins}, nil
}

// Assert drives the pin high.
func (d *GPIODriver) Assert(pin Pin) error {
	p, ok := d.pins[pin]
	if !ok {
		return fmt.Errorf("%w: pin %d", ErrPinNotFound, pin)
	}
	if err := p.Out(gpio.High); err != nil {
		return fmt.Errorf("asserting pin %d: %w", pin, err)
	}
	return nil
}

// Deassert drives the pin low.
func (d *GPIODriver) Deassert(pin Pin) error {
	p, ok := d.pins[pin]
	if !ok {
		return fmt.Errorf("%w: pin %d", ErrPinNotFound, pin)
	}
	if err := p.Out(gpio.Low); err != nil {
		return fmt.Errorf("deasserting pin %d: %w", pin, err)
	}
	return nil
}

// IsAsserted reads the current pin level.
func (d *GPIODriver) IsAsserted(pin Pin) (bool, error) {
	p, ok := d.pins[pin]
	if !ok {
		return false, fmt.Errorf("%w: pin %d", ErrPinNotFound, pin)
	}
	return p.Read() == gpio.High, nil
}
