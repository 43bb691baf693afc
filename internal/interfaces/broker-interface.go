package interfaces

type ProducerHandler interface {
	PublishMessage(key, value []byte) error
}

type ConsumerHandler interface {
	HandleMessage(key, value []byte) error
}
