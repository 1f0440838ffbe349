package channel

// Driver is the capability interface for the physical outputs behind the
// registry. The driver's pin levels are the only record of channel state:
// the registry keeps no shadow copy, so a read always reflects the actual
// output level and cannot drift from it.
//
// Implementations are not required to be safe for concurrent use; the
// registry is the single owner of all pins it was constructed with.
type Driver interface {
	// Assert switches the output on (drives the pin high).
	Assert(pin Pin) error

	// Deassert switches the output off (drives the pin low).
	Deassert(pin Pin) error

	// IsAsserted reports the current output level of the pin.
	IsAsserted(pin Pin) (bool, error)
}

// MemoryDriver is an in-memory Driver for tests and dry runs. Pins that
// have never been written read as deasserted.
type MemoryDriver struct {
	levels map[Pin]bool
}

// NewMemoryDriver creates an empty in-memory driver.
func NewMemoryDriver() *MemoryDriver {
	return &MemoryDriver{
		levels: make(map[Pin]bool),
	}
}

// Assert switches the simulated output on.
func (d *MemoryDriver) Assert(pin Pin) error {
	d.levels[pin] = true
	return nil
}

// Deassert switches the simulated output off.
func (d *MemoryDriver) Deassert(pin Pin) error {
	d.levels[pin] = false
	return nil
}

// IsAsserted reports the simulated output level.
func (d *MemoryDriver) IsAsserted(pin Pin) (bool, error) {
	return d.levels[pin], nil
}
