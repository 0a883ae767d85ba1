package payload

import (
	"encoding/json"
	"fmt"
	"time"
)

// Kind identifies one monitored resource kind. The set is closed: every kind
// has exactly one stream endpoint, one sampler, and one hub.
type Kind string

const (
	KindCPU     Kind = "cpu"
	KindMemory  Kind = "memory"
	KindDisk    Kind = "disk"
	KindNetwork Kind = "network"
	KindGPU     Kind = "gpu"
	KindProcess Kind = "processes"
)

// Kinds returns all resource kinds in stable display order.
func Kinds() []Kind {
	return []Kind{KindCPU, KindMemory, KindDisk, KindNetwork, KindGPU, KindProcess}
}

// ParseKind converts a string to a Kind, accepting exactly the wire names.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("unknown resource kind %q", s)
}

// String returns the wire name of the kind.
func (k Kind) String() string {
	return string(k)
}

// Meta carries the per-message envelope fields shared by every kind.
// Seq is the per-kind monotonically increasing snapshot sequence number.
type Meta struct {
	Seq uint64    `json:"seq"`
	At  time.Time `json:"at"`
}

// SetMeta stamps the envelope fields. Called once by the sampler before
// publish; messages are immutable afterwards.
func (m *Meta) SetMeta(seq uint64, at time.Time) {
	m.Seq = seq
	m.At = at
}

// Sequence returns the snapshot sequence number.
func (m *Meta) Sequence() uint64 {
	return m.Seq
}

// Taken returns the snapshot timestamp.
func (m *Meta) Taken() time.Time {
	return m.At
}

// Message is one kind's wire payload.
//
// WithoutDetails returns a rendering of the message with connect-time detail
// sections omitted; kinds whose sections are all per-tick return themselves.
type Message interface {
	Kind() Kind
	SetMeta(seq uint64, at time.Time)
	Sequence() uint64
	Taken() time.Time
	WithoutDetails() Message
}

// Decode unmarshals data into the message type for the given kind.
func Decode(kind Kind, data []byte) (Message, error) {
	var msg Message
	switch kind {
	case KindCPU:
		msg = &CPU{}
	case KindMemory:
		msg = &Memory{}
	case KindDisk:
		msg = &Disk{}
	case KindNetwork:
		msg = &Network{}
	case KindGPU:
		msg = &GPU{}
	case KindProcess:
		msg = &Process{}
	default:
		return nil, fmt.Errorf("unknown resource kind %q", kind)
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("decode %s message: %w", kind, err)
	}
	return msg, nil
}
