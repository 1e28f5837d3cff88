package orders

import (
	"context"
	"encoding/json"
	"testing"

	pubsub "cloud.google.com/go/pubsub/v2"
	"cloud.google.com/go/pubsub/v2/apiv1/pubsubpb"
	"cloud.google.com/go/pubsub/v2/pstest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

func TestPubSubEventsPublishOrderCreated(t *testing.T) {
	ctx := context.Background()
	srv := pstest.NewServer()
	t.Cleanup(func() { _ = srv.Close() })

	conn, err := grpc.NewClient(srv.Addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	client, err := pubsub.NewClient(ctx, "atelier-test", option.WithGRPCConn(conn))
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	topic := "projects/atelier-test/topics/orders"
	_, err = client.TopicAdminClient.CreateTopic(ctx, &pubsubpb.Topic{Name: topic})
	require.NoError(t, err)

	publisher := client.Publisher(topic)
	t.Cleanup(publisher.Stop)
	events, err := NewPubSubEvents(publisher)
	require.NoError(t, err)

	require.NoError(t, events.PublishOrderCreated(ctx, Order{ID: 77, TotalCents: 500, Status: StatusNew}))

	msgs := srv.Messages()
	require.Len(t, msgs, 1)
	assert.Equal(t, EventOrderCreated, msgs[0].Attributes["event_type"])
	assert.Equal(t, "77", msgs[0].Attributes["order_id"])

	var evt orderEvent
	require.NoError(t, json.Unmarshal(msgs[0].Data, &evt))
	assert.Equal(t, int64(77), evt.Order.ID)
	assert.NotEmpty(t, evt.EventID)
}

func TestNewPubSubEventsRequiresPublisher(t *testing.T) {
	_, err := NewPubSubEvents(nil)
	assert.Error(t, err)
}
