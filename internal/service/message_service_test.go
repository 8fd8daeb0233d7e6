package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/repository/postgres"
	"github.com/jortiz/teammatch/internal/service"
	"github.com/jortiz/teammatch/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingDeliverer captures live-channel deliveries without a real hub.
type recordingDeliverer struct {
	mu     sync.Mutex
	events []recordedEvent
}

type recordedEvent struct {
	userID  uuid.UUID
	event   string
	payload interface{}
}

func (d *recordingDeliverer) Deliver(userID uuid.UUID, event string, payload interface{}) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, recordedEvent{userID: userID, event: event, payload: payload})
}

func (d *recordingDeliverer) recorded() []recordedEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]recordedEvent, len(d.events))
	copy(out, d.events)
	return out
}

func newMessageService(t *testing.T) (*service.MessageService, *recordingDeliverer, *testutil.TestDB) {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	notifications := service.NewNotificationService(repos.Notification, testutil.TestLogger())
	svc := service.NewMessageService(repos.Message, repos.User, notifications, testutil.TestLogger())

	deliverer := &recordingDeliverer{}
	svc.BindDeliverer(deliverer)
	notifications.BindDeliverer(deliverer)
	return svc, deliverer, testDB
}

func TestMessageService_SendMessage(t *testing.T) {
	svc, deliverer, testDB := newMessageService(t)
	ctx := context.Background()

	sender, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	receiver, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	msg, err := svc.SendMessage(ctx, sender.ID, receiver.ID, "  hello there  ")
	require.NoError(t, err)
	assert.Equal(t, "hello there", msg.Content)
	assert.False(t, msg.IsRead)

	var stored domain.Message
	require.NoError(t, testDB.DB.First(&stored, "id = ?", msg.ID).Error)
	assert.Equal(t, sender.ID, stored.SenderID)
	assert.Equal(t, receiver.ID, stored.ReceiverID)

	events := deliverer.recorded()
	require.NotEmpty(t, events)
	assert.Equal(t, receiver.ID, events[0].userID)
	assert.Equal(t, "newMessage", events[0].event)
}

func TestMessageService_SendMessage_Validation(t *testing.T) {
	svc, _, testDB := newMessageService(t)
	ctx := context.Background()

	sender, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	receiver, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	_, err := svc.SendMessage(ctx, sender.ID, receiver.ID, "   ")
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.SendMessage(ctx, sender.ID, uuid.New(), "hi")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMessageService_SendMessage_QueuesNotification(t *testing.T) {
	svc, _, testDB := newMessageService(t)
	repos := postgres.NewRepositories(testDB.DB)
	ctx := context.Background()

	sender, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	receiver, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	_, err := svc.SendMessage(ctx, sender.ID, receiver.ID, "hi")
	require.NoError(t, err)

	// The notification is written asynchronously.
	require.Eventually(t, func() bool {
		count, err := repos.Notification.CountUnread(ctx, receiver.ID)
		return err == nil && count == 1
	}, 2*time.Second, 20*time.Millisecond)
}

func TestMessageService_MarkRead(t *testing.T) {
	svc, deliverer, testDB := newMessageService(t)
	ctx := context.Background()

	sender, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	receiver, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	msg, err := svc.SendMessage(ctx, sender.ID, receiver.ID, "hi")
	require.NoError(t, err)

	read, err := svc.MarkRead(ctx, msg.ID, receiver.ID)
	require.NoError(t, err)
	assert.True(t, read.IsRead)

	// Only the receiver can mark a message read.
	_, err = svc.MarkRead(ctx, msg.ID, sender.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// The sender gets the read receipt.
	events := deliverer.recorded()
	found := false
	for _, e := range events {
		if e.event == "messageRead" && e.userID == sender.ID {
			found = true
		}
	}
	assert.True(t, found, "expected a messageRead delivery to the sender")
}

func TestMessageService_ConversationAndUnread(t *testing.T) {
	svc, _, testDB := newMessageService(t)
	ctx := context.Background()

	alice, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, testDB.DB)
	carol, _ := testutil.NewUserBuilder().Build(t, testDB.DB)

	_, err := svc.SendMessage(ctx, alice.ID, bob.ID, "one")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, bob.ID, alice.ID, "two")
	require.NoError(t, err)
	_, err = svc.SendMessage(ctx, alice.ID, carol.ID, "other thread")
	require.NoError(t, err)

	conversation, err := svc.Conversation(ctx, alice.ID, bob.ID, 50, 0)
	require.NoError(t, err)
	require.Len(t, conversation, 2)

	unread, err := svc.UnreadCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}
