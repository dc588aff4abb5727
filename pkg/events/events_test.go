package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type recordingConn struct {
	subjects []string
	payloads [][]byte
	err      error
}

func (r *recordingConn) Publish(subject string, data []byte) error {
	r.subjects = append(r.subjects, subject)
	r.payloads = append(r.payloads, data)
	return r.err
}

func TestNATSPublisherPrefixesSubject(t *testing.T) {
	conn := &recordingConn{}
	publisher := newNATSPublisher(conn, " interviews.events. ")

	err := publisher.Publish(context.Background(), Event{Type: TypeInterviewCompleted, InterviewID: "iv-1", UserID: 3, Payload: map[string]interface{}{"overallScore": 7.0}})
	require.NoError(t, err)
	require.Equal(t, []string{"interviews.events.interview.completed"}, conn.subjects)

	var decoded Event
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	require.Equal(t, "iv-1", decoded.InterviewID)
	require.Equal(t, uint(3), decoded.UserID)
	require.False(t, decoded.OccurredAt.IsZero())
	require.Equal(t, 7.0, decoded.Payload["overallScore"])
}

func TestNATSPublisherKeepsExplicitTimestamp(t *testing.T) {
	conn := &recordingConn{}
	publisher := newNATSPublisher(conn, "")
	at := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

	require.NoError(t, publisher.Publish(context.Background(), Event{Type: TypeInterviewCreated, OccurredAt: at}))
	require.Equal(t, []string{TypeInterviewCreated}, conn.subjects)

	var decoded Event
	require.NoError(t, json.Unmarshal(conn.payloads[0], &decoded))
	require.True(t, at.Equal(decoded.OccurredAt))
}

func TestNATSPublisherWrapsErrors(t *testing.T) {
	brokerErr := errors.New("connection closed")
	publisher := newNATSPublisher(&recordingConn{err: brokerErr}, "interviews")

	err := publisher.Publish(context.Background(), Event{Type: TypeAnswerSubmitted})
	require.ErrorIs(t, err, brokerErr)
}

func TestDisabledPublishers(t *testing.T) {
	var publisher *NATSPublisher
	require.NoError(t, publisher.Publish(context.Background(), Event{Type: TypeInterviewCreated}))
	require.NoError(t, NopPublisher{}.Publish(context.Background(), Event{Type: TypeInterviewCreated}))

	conn, err := Connect("", "mock-interview-api")
	require.NoError(t, err)
	require.Nil(t, conn)
}
