package model

// Credential is the persisted bridge address and the username the bridge
// issued to this application. It is created once during enrollment and
// never mutated afterwards.
type Credential struct {
	Address string
	Token   string
}

func (c Credential) Valid() bool {
	return c.Address != "" && c.Token != ""
}

type DiscoverySource string

const (
	DiscoverySourceMDNS   DiscoverySource = "mdns"
	DiscoverySourceSSDP   DiscoverySource = "ssdp"
	DiscoverySourceCloud  DiscoverySource = "cloud"
	DiscoverySourceManual DiscoverySource = "manual"
	DiscoverySourceNone   DiscoverySource = "none"
)

// DiscoveryResult names the strategy that located the bridge. A result with
// DiscoverySourceNone carries no address.
type DiscoveryResult struct {
	Source  DiscoverySource
	Address string
}

func NotFound() DiscoveryResult {
	return DiscoveryResult{Source: DiscoverySourceNone}
}

func (r DiscoveryResult) Found() bool {
	return r.Source != DiscoverySourceNone && r.Address != ""
}
