package websocket_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jortiz/teammatch/internal/domain"
	"github.com/jortiz/teammatch/internal/testutil"
	"github.com/jortiz/teammatch/internal/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func connectAuthenticated(t *testing.T, ts *testutil.TestServer, user *domain.User) *testutil.WSClient {
	t.Helper()

	token, err := ts.Verifier.Mint(user.ID, user.DisplayName)
	require.NoError(t, err)

	client := testutil.NewWSClient(t, ts.WebSocketURL())
	client.Authenticate(token)

	msg := client.WaitFor(websocket.EventAuthenticated, 5*time.Second)
	var payload websocket.AuthenticatedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	require.Equal(t, user.ID, payload.UserID)
	return client
}

func TestHub_AuthenticateAndPresence(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	aliceConn := connectAuthenticated(t, ts, alice)
	assert.True(t, ts.Hub.IsOnline(alice.ID))

	// Alice sees Bob come online.
	connectAuthenticated(t, ts, bob)
	msg := aliceConn.WaitFor(websocket.EventUserOnline, 5*time.Second)
	var presence websocket.PresencePayload
	require.NoError(t, json.Unmarshal(msg.Payload, &presence))
	assert.Equal(t, bob.ID, presence.UserID)
}

func TestHub_RejectsBadToken(t *testing.T) {
	ts := testutil.NewTestServer(t)

	client := testutil.NewWSClient(t, ts.WebSocketURL())
	client.Authenticate("not-a-token")

	msg := client.WaitFor(websocket.EventError, 5*time.Second)
	var payload websocket.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "AUTH_FAILED", payload.Code)
}

func TestHub_RequiresAuthenticationFirst(t *testing.T) {
	ts := testutil.NewTestServer(t)

	user, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	client := testutil.NewWSClient(t, ts.WebSocketURL())
	client.IsOnline(user.ID)

	msg := client.WaitFor(websocket.EventError, 5*time.Second)
	var payload websocket.ErrorPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &payload))
	assert.Equal(t, "NOT_AUTHENTICATED", payload.Code)
}

func TestHub_MessageDelivery(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	aliceConn := connectAuthenticated(t, ts, alice)
	bobConn := connectAuthenticated(t, ts, bob)

	aliceConn.SendMessage(bob.ID, "hello bob")

	// Sender gets the ack with the persisted message.
	ack := aliceConn.WaitFor(websocket.EventMessageSent, 5*time.Second)
	var sent domain.Message
	require.NoError(t, json.Unmarshal(ack.Payload, &sent))
	assert.Equal(t, "hello bob", sent.Content)

	// Receiver gets the live push.
	delivery := bobConn.WaitFor(websocket.EventNewMessage, 5*time.Second)
	var received domain.Message
	require.NoError(t, json.Unmarshal(delivery.Payload, &received))
	assert.Equal(t, sent.ID, received.ID)
	assert.Equal(t, alice.ID, received.SenderID)

	// The message survived independently of the live push.
	var stored domain.Message
	require.NoError(t, ts.DB.DB.First(&stored, "id = ?", sent.ID).Error)
}

func TestHub_ReadReceipt(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	aliceConn := connectAuthenticated(t, ts, alice)
	bobConn := connectAuthenticated(t, ts, bob)

	aliceConn.SendMessage(bob.ID, "read me")
	delivery := bobConn.WaitFor(websocket.EventNewMessage, 5*time.Second)
	var received domain.Message
	require.NoError(t, json.Unmarshal(delivery.Payload, &received))

	bobConn.MarkAsRead(received.ID)

	receipt := aliceConn.WaitFor(websocket.EventMessageRead, 5*time.Second)
	var payload struct {
		MessageID uuid.UUID `json:"messageId"`
		ReadBy    uuid.UUID `json:"readBy"`
	}
	require.NoError(t, json.Unmarshal(receipt.Payload, &payload))
	assert.Equal(t, received.ID, payload.MessageID)
	assert.Equal(t, bob.ID, payload.ReadBy)
}

func TestHub_OfflineDeliveryIsDropped(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	aliceConn := connectAuthenticated(t, ts, alice)
	bobConn := connectAuthenticated(t, ts, bob)

	bobConn.Close()
	aliceConn.WaitFor(websocket.EventUserOffline, 5*time.Second)
	require.Eventually(t, func() bool {
		return !ts.Hub.IsOnline(bob.ID)
	}, 2*time.Second, 20*time.Millisecond)

	// The message still persists; only the live push is skipped.
	aliceConn.SendMessage(bob.ID, "are you there?")
	aliceConn.WaitFor(websocket.EventMessageSent, 5*time.Second)

	var count int64
	require.NoError(t, ts.DB.DB.Model(&domain.Message{}).
		Where("receiver_id = ?", bob.ID).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestHub_LastConnectionWins(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	first := connectAuthenticated(t, ts, bob)
	second := connectAuthenticated(t, ts, bob)
	_ = first

	aliceConn := connectAuthenticated(t, ts, alice)
	aliceConn.SendMessage(bob.ID, "to the fresh connection")

	// Only the most recent connection receives deliveries.
	second.WaitFor(websocket.EventNewMessage, 5*time.Second)
	assert.True(t, ts.Hub.IsOnline(bob.ID))
}

func TestHub_ReauthenticateAsDifferentUser(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	sender, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	conn := connectAuthenticated(t, ts, alice)

	// Same connection switches identity to Bob.
	bobToken, err := ts.Verifier.Mint(bob.ID, bob.DisplayName)
	require.NoError(t, err)
	conn.Authenticate(bobToken)
	msg := conn.WaitFor(websocket.EventAuthenticated, 5*time.Second)
	var auth websocket.AuthenticatedPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &auth))
	require.Equal(t, bob.ID, auth.UserID)

	// The old identity must not keep a live registration.
	assert.False(t, ts.Hub.IsOnline(alice.ID))
	assert.True(t, ts.Hub.IsOnline(bob.ID))

	senderConn := connectAuthenticated(t, ts, sender)

	// Alice's private messages no longer reach this connection.
	senderConn.SendMessage(alice.ID, "for alice only")
	senderConn.WaitFor(websocket.EventMessageSent, 5*time.Second)
	conn.ExpectSilence(websocket.EventNewMessage, 500*time.Millisecond)

	// Deliveries for the new identity do.
	senderConn.SendMessage(bob.ID, "for bob")
	conn.WaitFor(websocket.EventNewMessage, 5*time.Second)

	// Disconnecting clears the only remaining registration.
	conn.Close()
	require.Eventually(t, func() bool {
		return !ts.Hub.IsOnline(bob.ID) && !ts.Hub.IsOnline(alice.ID)
	}, 2*time.Second, 20*time.Millisecond)
}

func TestHub_ReauthenticateBroadcastsOldIdentityOffline(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	watcher, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	watcherConn := connectAuthenticated(t, ts, watcher)

	conn := connectAuthenticated(t, ts, alice)
	watcherConn.WaitFor(websocket.EventUserOnline, 5*time.Second)

	bobToken, err := ts.Verifier.Mint(bob.ID, bob.DisplayName)
	require.NoError(t, err)
	conn.Authenticate(bobToken)

	offline := watcherConn.WaitFor(websocket.EventUserOffline, 5*time.Second)
	var presence websocket.PresencePayload
	require.NoError(t, json.Unmarshal(offline.Payload, &presence))
	assert.Equal(t, alice.ID, presence.UserID)

	online := watcherConn.WaitFor(websocket.EventUserOnline, 5*time.Second)
	require.NoError(t, json.Unmarshal(online.Payload, &presence))
	assert.Equal(t, bob.ID, presence.UserID)
}

func TestHub_TypingIndicator(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	aliceConn := connectAuthenticated(t, ts, alice)
	bobConn := connectAuthenticated(t, ts, bob)

	aliceConn.Typing(bob.ID, true)
	msg := bobConn.WaitFor(websocket.EventUserTyping, 5*time.Second)
	var typing websocket.UserTypingPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &typing))
	assert.Equal(t, alice.ID, typing.UserID)
	assert.True(t, typing.IsTyping)

	aliceConn.Typing(bob.ID, false)
	msg = bobConn.WaitFor(websocket.EventUserTyping, 5*time.Second)
	require.NoError(t, json.Unmarshal(msg.Payload, &typing))
	assert.False(t, typing.IsTyping)
}

func TestHub_OnlineStatusQuery(t *testing.T) {
	ts := testutil.NewTestServer(t)

	alice, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)
	bob, _ := testutil.NewUserBuilder().Build(t, ts.DB.DB)

	aliceConn := connectAuthenticated(t, ts, alice)

	aliceConn.IsOnline(bob.ID)
	msg := aliceConn.WaitFor(websocket.EventOnlineStatus, 5*time.Second)
	var status websocket.OnlineStatusPayload
	require.NoError(t, json.Unmarshal(msg.Payload, &status))
	assert.Equal(t, bob.ID, status.UserID)
	assert.False(t, status.IsOnline)

	connectAuthenticated(t, ts, bob)
	aliceConn.WaitFor(websocket.EventUserOnline, 5*time.Second)

	aliceConn.IsOnline(bob.ID)
	msg = aliceConn.WaitFor(websocket.EventOnlineStatus, 5*time.Second)
	require.NoError(t, json.Unmarshal(msg.Payload, &status))
	assert.True(t, status.IsOnline)
}
