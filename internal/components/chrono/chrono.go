package chrono

import "time"

// DefaultLocation is the timezone every batch is stamped in.
const DefaultLocation = "America/Sao_Paulo"

type API interface {
	Now() time.Time
	Location() *time.Location
}

// StandardImpl reads the wall clock and converts it into a fixed location,
// so that records don't depend on the timezone of the machine running the job.
type StandardImpl struct {
	location *time.Location
}

func NewStandardImpl(name string) (StandardImpl, error) {
	if name == "" {
		name = DefaultLocation
	}
	location, err := time.LoadLocation(name)
	if err != nil {
		return StandardImpl{}, err
	}
	return StandardImpl{location: location}, nil
}

func (s StandardImpl) Now() time.Time {
	return time.Now().In(s.location)
}

func (s StandardImpl) Location() *time.Location {
	return s.location
}

// FixedImpl always returns the same instant, used by tests.
type FixedImpl struct {
	At time.Time
}

func (f FixedImpl) Now() time.Time {
	return f.At
}

func (f FixedImpl) Location() *time.Location {
	return f.At.Location()
}
