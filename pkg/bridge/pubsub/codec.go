package pubsub

import (
	"encoding/json"

	"github.com/redis/go-redis/v9"
)

// Payload is a Decoder returning the raw message payload.
func Payload(msg *redis.Message) (string, error) {
	return msg.Payload, nil
}

// DecodeJSON is a Decoder that unmarshals the payload as JSON into a T.
func DecodeJSON[T any](msg *redis.Message) (T, error) {
	var value T
	err := json.Unmarshal([]byte(msg.Payload), &value)
	return value, err
}

// EncodeString is an Encoder publishing strings unchanged.
func EncodeString(value string) (string, error) {
	return value, nil
}

// EncodeJSON is an Encoder that publishes value marshalled as JSON.
func EncodeJSON[T any](value T) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
