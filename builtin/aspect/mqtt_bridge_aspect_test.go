package aspect

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/noodles-run/noodles-server/types"
)

// MQTTBridge.After and NewMQTTBridge both require a live broker connection,
// which testify alone cannot stand up - so only the pieces that don't touch
// the network are exercised here. Order/PointCut/New need no client at all.
func TestMQTTBridgeOrderAndPointCut(t *testing.T) {
	b := &MQTTBridge{topic: "noodles/signals"}
	assert.Equal(t, 800, b.Order())
	assert.True(t, b.PointCut(types.Operation{Action: "invoke_signal"}))
	assert.False(t, b.PointCut(types.Operation{Action: "create"}))
	assert.False(t, b.PointCut(types.Operation{Action: "update"}))
	assert.False(t, b.PointCut(types.Operation{Action: "delete"}))
}

func TestMQTTBridgeNewSharesClient(t *testing.T) {
	b := &MQTTBridge{topic: "noodles/signals"}
	other := b.New()
	assert.Same(t, b, other, "MQTTBridge deliberately shares its single client across every Scene, unlike other aspects")
}

func TestSignalMessageShape(t *testing.T) {
	msg := signalMessage{SignalKind: "Signal"}
	assert.Empty(t, msg.Error)
	msg.Error = "boom"
	assert.Equal(t, "boom", msg.Error)
}
