package flightsql

import "encoding"

// typeURLPrefix is the authority prefix prepended to every command and action
// message name to form the Any envelope's type identifier.
const typeURLPrefix = "type.googleapis.com/arrow.flight.protocol.sql."

// Action type names for the prepared statement and transaction lifecycle.
// These are fixed protocol constants.
const (
	ActionTypeCreatePreparedStatement = "CreatePreparedStatement"
	ActionTypeClosePreparedStatement  = "ClosePreparedStatement"
	ActionTypeBeginTransaction        = "BeginTransaction"
	ActionTypeEndTransaction          = "EndTransaction"
)

// commandMessage is what every command/action codec implements.
type commandMessage interface {
	encoding.BinaryMarshaler
	encoding.BinaryUnmarshaler
}

// packCommand envelopes an encoded message under its Flight SQL type URL.
func packCommand(msgName string, msg commandMessage) ([]byte, error) {
	encoded, err := msg.MarshalBinary()
	if err != nil {
		return nil, err
	}
	return PackAny(typeURLPrefix+msgName, encoded), nil
}

// commandDescriptor builds the CMD-type FlightDescriptor for one logical
// command. Descriptors are built fresh per call and never reused.
func commandDescriptor(msgName string, msg commandMessage) (*FlightDescriptor, error) {
	cmd, err := packCommand(msgName, msg)
	if err != nil {
		return nil, err
	}
	return &FlightDescriptor{Type: DescriptorCmd, Cmd: cmd}, nil
}
