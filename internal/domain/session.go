package domain

import "time"

// DeviceIdentity is the stable identity of this client install. The device id
// is generated once on first use and never changes afterwards.
type DeviceIdentity struct {
	DeviceID string
}

type SessionInfo struct {
	ID             string
	DeviceName     string
	Platform       string
	CurrentProject string
	LastActivity   time.Time
}

type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
)

// ConnectionState is written only by the connection state machine; everyone
// else reads a copy.
type ConnectionState struct {
	Status          ConnectionStatus
	Host            string
	Port            int
	Attempts        int
	LastConnectedAt time.Time
	LastError       string
}

func (s ConnectionState) Connected() bool {
	return s.Status == StatusConnected
}
