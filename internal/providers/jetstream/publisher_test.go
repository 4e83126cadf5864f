package jetstream_test

import (
	"context"
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	js "github.com/nats-io/nats.go/jetstream"
	"github.com/stretchr/testify/assert"

	"github.com/sproutfund/protocol-core/internal/domain"
	"github.com/sproutfund/protocol-core/internal/logger"
	"github.com/sproutfund/protocol-core/internal/messaging"
	"github.com/sproutfund/protocol-core/internal/mocks"
	"github.com/sproutfund/protocol-core/internal/providers/jetstream"
)

func TestMain(m *testing.M) {
	// Initialize logger for tests
	err := logger.Initialize(logger.Config{
		Debug: false,
	})
	if err != nil {
		panic(err)
	}

	code := m.Run()
	os.Exit(code)
}

type testPublisherMocks struct {
	ctrl      *gomock.Controller
	natsJS    *mocks.MockNatsJetStream
	conn      *mocks.MockNatsConn
	jetstream *mocks.MockJetStream
	json      *mocks.MockJSON
}

func setupTestPublisher(t *testing.T) (*testPublisherMocks, messaging.Publisher) {
	ctrl := gomock.NewController(t)

	m := &testPublisherMocks{
		ctrl:      ctrl,
		natsJS:    mocks.NewMockNatsJetStream(ctrl),
		conn:      mocks.NewMockNatsConn(ctrl),
		jetstream: mocks.NewMockJetStream(ctrl),
		json:      mocks.NewMockJSON(ctrl),
	}

	m.natsJS.EXPECT().
		Connect("nats://localhost:4222", gomock.Any()).
		Return(m.conn, m.jetstream, nil)

	pub, err := jetstream.NewPublisher(jetstream.Config{
		URL:            "nats://localhost:4222",
		StreamName:     "PROTOCOL_EVENTS",
		MaxReconnects:  5,
		ReconnectWait:  time.Second,
		ConnectionName: "protocol-node-test",
	}, m.natsJS, m.json)
	assert.NoError(t, err)
	return m, pub
}

func TestNewPublisher_ConnectFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	natsJS := mocks.NewMockNatsJetStream(ctrl)
	natsJS.EXPECT().
		Connect(gomock.Any(), gomock.Any()).
		Return(nil, nil, assert.AnError).
		AnyTimes()

	_, err := jetstream.NewPublisher(jetstream.Config{
		URL:            "nats://localhost:4222",
		ConnectTimeout: time.Millisecond,
	}, natsJS, mocks.NewMockJSON(ctrl))
	assert.ErrorContains(t, err, "failed to connect to NATS")
}

func TestPublishEvent(t *testing.T) {
	ctx := context.Background()
	event := &domain.Event{
		Type:   domain.EventTypeContribution,
		Actor:  "0x5555555555555555555555555555555555555555",
		Amount: "25000000",
	}

	tests := []struct {
		name        string
		setupMocks  func(m *testPublisherMocks)
		expectedErr string
	}{
		{
			name: "publishes on the event-type subject",
			setupMocks: func(m *testPublisherMocks) {
				gomock.InOrder(
					m.json.EXPECT().Marshal(event).DoAndReturn(json.Marshal),
					m.jetstream.EXPECT().
						Publish(gomock.Any(), "protocol.events.contribution", gomock.Any()).
						DoAndReturn(func(_ context.Context, _ string, data []byte, _ ...js.PublishOpt) (*js.PubAck, error) {
							var got domain.Event
							if err := json.Unmarshal(data, &got); err != nil {
								return nil, err
							}
							assert.Equal(t, event.Amount, got.Amount)
							return &js.PubAck{Stream: "PROTOCOL_EVENTS"}, nil
						}),
				)
			},
		},
		{
			name: "marshal failure",
			setupMocks: func(m *testPublisherMocks) {
				m.json.EXPECT().Marshal(event).Return(nil, assert.AnError)
			},
			expectedErr: "failed to marshal event",
		},
		{
			name: "publish failure",
			setupMocks: func(m *testPublisherMocks) {
				m.json.EXPECT().Marshal(event).DoAndReturn(json.Marshal)
				m.jetstream.EXPECT().
					Publish(gomock.Any(), gomock.Any(), gomock.Any()).
					Return(nil, assert.AnError)
			},
			expectedErr: "failed to publish event",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, pub := setupTestPublisher(t)
			tt.setupMocks(m)

			err := pub.PublishEvent(ctx, event)
			if tt.expectedErr != "" {
				assert.ErrorContains(t, err, tt.expectedErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestClose(t *testing.T) {
	m, pub := setupTestPublisher(t)
	m.conn.EXPECT().Close().Times(1)

	pub.Close()
	// Close is idempotent; the connection closes once.
	pub.Close()

	select {
	case <-pub.CloseChan():
	default:
		t.Fatal("close channel not closed")
	}
}
