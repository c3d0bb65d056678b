package events

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/ignite/order-tracker/internal/config"
	"github.com/ignite/order-tracker/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func brokerConfig(addr string) config.BrokerConfig {
	return config.BrokerConfig{
		Addr:           addr,
		Stream:         "orders:events",
		Group:          "order-notifiers",
		TimeoutSeconds: 1,
	}
}

func TestProducerPublish(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := brokerConfig(mr.Addr())
	producer := NewProducer(client, cfg)

	producer.Publish(context.Background(), domain.OrderCreated{
		UserID: 1,
		Order:  domain.Order{ID: 3, Title: "Test", Status: domain.StatusPending, UserID: 1, Price: 1.0},
	})

	msgs, err := client.XRange(context.Background(), cfg.Stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	payload, ok := msgs[0].Values[payloadField].(string)
	require.True(t, ok)

	event, err := Decode([]byte(payload))
	require.NoError(t, err)
	require.Equal(t, domain.EventCreate, event.Type())

	created := event.(domain.OrderCreated)
	require.EqualValues(t, 1, created.UserID)
	require.EqualValues(t, 3, created.Order.ID)
}

func TestProducerPreservesPerOrderPublishOrder(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	cfg := brokerConfig(mr.Addr())
	producer := NewProducer(client, cfg)

	producer.Publish(context.Background(), domain.OrderStatusChanged{
		UserID: 1, OrderID: 3,
		Status: domain.StatusInProgress, PreviousStatus: domain.StatusPending,
	})
	producer.Publish(context.Background(), domain.OrderStatusChanged{
		UserID: 1, OrderID: 3,
		Status: domain.StatusDone, PreviousStatus: domain.StatusInProgress,
	})

	msgs, err := client.XRange(context.Background(), cfg.Stream, "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	first, err := Decode([]byte(msgs[0].Values[payloadField].(string)))
	require.NoError(t, err)
	second, err := Decode([]byte(msgs[1].Values[payloadField].(string)))
	require.NoError(t, err)

	require.Equal(t, domain.StatusInProgress, first.(domain.OrderStatusChanged).Status)
	require.Equal(t, domain.StatusDone, second.(domain.OrderStatusChanged).Status)
}

// A broker that is down must not surface an error to the request path.
func TestProducerSwallowsBrokerFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	producer := NewProducer(client, brokerConfig(mr.Addr()))
	mr.Close()

	producer.Publish(context.Background(), domain.OrderCreated{
		UserID: 1,
		Order:  domain.Order{ID: 3, Title: "Test", Status: domain.StatusPending, UserID: 1, Price: 1.0},
	})
}
