package emitter

import "fmt"

type MessageType byte

// Values match the websocket opcodes.
const (
	DataMessage   MessageType = 1
	BinaryMessage MessageType = 2
	CloseError    MessageType = 8
	PingMessage   MessageType = 9
	PongMessage   MessageType = 10
)

func (t MessageType) Is(other MessageType) bool {
	return t == other
}

func (t MessageType) IsData() bool {
	return t.Is(DataMessage) || t.Is(BinaryMessage)
}

func (t MessageType) IsPing() bool {
	return t.Is(PingMessage)
}

func (t MessageType) IsPong() bool {
	return t.Is(PongMessage)
}

func (t MessageType) IsClose() bool {
	return t.Is(CloseError)
}

func (t MessageType) String() string {
	switch t {
	case DataMessage:
		return "data"
	case BinaryMessage:
		return "binary"
	case CloseError:
		return "close"
	case PingMessage:
		return "ping"
	case PongMessage:
		return "pong"
	default:
		return fmt.Sprintf("unknown(%d)", byte(t))
	}
}

type Message interface {
	Type() MessageType
	Data() []byte
	String() string
}

// ErrorMessage is a close frame, carrying the close code sent by the peer.
type ErrorMessage interface {
	Message
	Error() string
	Code() int
}

type message struct {
	messageType MessageType
	data        []byte
}

func (m message) Type() MessageType {
	return m.messageType
}

func (m message) Data() []byte {
	return m.data
}

func (m message) String() string {
	return fmt.Sprintf("Message{type=%s,data=%s}", m.messageType, m.data)
}

type closeMessage struct {
	message
	code int
}

func (m closeMessage) Code() int {
	return m.code
}

func (m closeMessage) String() string {
	return fmt.Sprintf("Message{type=%s,code=%d,data=%s}", m.messageType, m.code, m.data)
}

func (m closeMessage) Error() string {
	return m.String()
}

func NewMessage(mt MessageType, data []byte) Message {
	return message{messageType: mt, data: data}
}

func NewDataMessage(data []byte) Message {
	return NewMessage(DataMessage, data)
}

func NewBinaryMessage(data []byte) Message {
	return NewMessage(BinaryMessage, data)
}

func NewPingMessage(data []byte) Message {
	return NewMessage(PingMessage, data)
}

func NewPongMessage(data []byte) Message {
	return NewMessage(PongMessage, data)
}

func NewCloseMessage(code int, data []byte) ErrorMessage {
	return closeMessage{
		message: message{messageType: CloseError, data: data},
		code:    code,
	}
}
