package aspect

import (
	"encoding/json"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/noodles-run/noodles-server/types"
)

var _ types.AfterOperationAspect = (*MQTTBridge)(nil)

// MQTTBridge republishes every invoke_signal operation onto an MQTT topic,
// a SPEC_FULL addition (§B) pairing NOODLES' own signal fan-out with an
// external pub/sub bus for telemetry consumers that aren't NOODLES clients.
// It only reacts to invoke_signal; create/update/delete pass through
// untouched (PointCut returns false for them).
type MQTTBridge struct {
	client mqtt.Client
	topic  string
	qos    byte
}

// NewMQTTBridge connects to an MQTT broker at brokerURL (e.g.
// "tcp://localhost:1883") and returns a bridge that publishes to topic at
// the given QoS.
func NewMQTTBridge(brokerURL, topic string, qos byte) (*MQTTBridge, error) {
	opts := mqtt.NewClientOptions().AddBroker(brokerURL).SetClientID("noodlesd-signal-bridge")
	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTBridge{client: client, topic: topic, qos: qos}, nil
}

func (b *MQTTBridge) Order() int { return 800 }

// New returns the bridge unchanged: the underlying mqtt.Client is safe for
// concurrent use and shared across every Scene this bridge is attached to,
// unlike the per-Scene isolation the teacher's New() usually performs.
func (b *MQTTBridge) New() types.Aspect { return b }

func (b *MQTTBridge) PointCut(op types.Operation) bool {
	return op.Action == "invoke_signal"
}

// signalMessage is the JSON shape published to the bridge topic.
type signalMessage struct {
	SignalKind string `json:"signal_kind"`
	Error      string `json:"error,omitempty"`
}

func (b *MQTTBridge) After(op types.Operation, opErr error) {
	msg := signalMessage{SignalKind: op.Kind.String()}
	if opErr != nil {
		msg.Error = opErr.Error()
	}
	payload, err := json.Marshal(msg)
	if err != nil {
		return
	}
	b.client.Publish(b.topic, b.qos, false, payload)
}
