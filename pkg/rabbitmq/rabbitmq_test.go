package rabbitmq

import (
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
)

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient(Config{URL: "http://localhost:5672"})
	assert.Error(t, err)
}

func TestClient_WithoutChannel(t *testing.T) {
	c := &Client{}

	assert.EqualError(t, c.Publish(DefaultExchange, "product.created", []byte(`{}`)), "RabbitMQ channel is not available")
	assert.Error(t, c.ConsumeProductEvents(func(amqp.Delivery) error { return nil }))
	assert.NoError(t, c.Close())
}
