// Package channel provides the channel registry for Switchboard.
//
// A channel is a named, independently controllable binary output. The
// registry holds the fixed name→pin table and is the exclusive owner of
// all output state; every write goes through Registry.Set and every read
// queries the driver's actual pin level, so reported state cannot drift
// from the physical output.
//
// # Key Types
//
//   - Registry: ordered channel table with case-insensitive name lookup
//   - Driver: capability interface over the physical outputs
//   - GPIODriver: periph.io-backed driver for real hardware
//   - MemoryDriver: in-memory driver for tests and dry runs
//
// # Usage
//
//	driver := channel.NewMemoryDriver()
//	reg, err := channel.New(driver, []channel.Definition{
//	    {Name: "d0", Pin: 16},
//	    {Name: "d1", Pin: 5},
//	})
//	if err != nil {
//	    return err
//	}
//	if err := reg.Initialize(); err != nil { // all outputs off
//	    return err
//	}
//	reg.Set("D0", channel.ParseToken("ON")) // names and tokens are case-insensitive
//
// # Thread Safety
//
// The registry is deliberately unsynchronised. The connection manager owns
// it from a single goroutine; see internal/controller.
package channel
