package kafka

import (
	kafkago "github.com/segmentio/kafka-go"
)

type MessageReader = messageReader
type MessageWriter = messageWriter

func NewConsumerWithReader(reader MessageReader, groupID string) *Consumer {
	return &Consumer{reader: reader, groupID: groupID}
}

func NewProducerWithWriter(writer MessageWriter, topic string) *Producer {
	return &Producer{writer: writer, topic: topic}
}

var (
	_ MessageReader = (*kafkago.Reader)(nil)
	_ MessageWriter = (*kafkago.Writer)(nil)
)
