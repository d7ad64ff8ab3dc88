package iplocate

import (
	"github.com/stretchr/testify/mock"
)

// MockLocator is a Locator for tests of code built on top of the table.
type MockLocator struct {
	mock.Mock
}

func (m *MockLocator) Lookup(ip string) (*Record, error) {
	args := m.Mock.Called(ip)

	if v := args.Get(0); v != nil {
		return v.(*Record), args.Error(1)
	}

	return nil, args.Error(1)
}
