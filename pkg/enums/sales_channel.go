package enums

import "fmt"

// SalesChannel identifies where an invoice originated.
type SalesChannel string

const (
	SalesChannelStore       SalesChannel = "STORE"
	SalesChannelOnline      SalesChannel = "ONLINE"
	SalesChannelMarketplace SalesChannel = "MARKETPLACE"
)

var validSalesChannels = []SalesChannel{
	SalesChannelStore,
	SalesChannelOnline,
	SalesChannelMarketplace,
}

// String implements fmt.Stringer.
func (s SalesChannel) String() string {
	return string(s)
}

// IsValid reports whether the value is a known SalesChannel.
func (s SalesChannel) IsValid() bool {
	for _, candidate := range validSalesChannels {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSalesChannel converts raw input into a SalesChannel.
func ParseSalesChannel(value string) (SalesChannel, error) {
	for _, candidate := range validSalesChannels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid sales channel %q", value)
}
