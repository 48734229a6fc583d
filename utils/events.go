package utils

import (
	"encoding/json"
	"os"
	"time"

	"github.com/nats-io/nats.go"
)

// Event subjects published for downstream consumers (notification workers,
// analytics). Publishing is best-effort: the API never fails a request
// because an event could not be published.
const (
	SubjectRechargeCompleted = "wallet.recharge.completed"
	SubjectOrderPlaced       = "orders.placed"
	SubjectOrderCancelled    = "orders.cancelled"
	SubjectOrderCompleted    = "orders.completed"
	SubjectCouponApplied     = "coupons.applied"
	SubjectKYCDecided        = "vendors.kyc.decided"
)

var natsConn *nats.Conn

// InitEvents connects to NATS when NATS_URL is configured. Without it the
// publisher is a no-op, which keeps local development self-contained.
func InitEvents() error {
	url := os.Getenv("NATS_URL")
	if url == "" {
		LogInfo("NATS_URL not set, event publishing disabled")
		return nil
	}

	nc, err := nats.Connect(url,
		nats.Name("kabaadwala-api"),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
	)
	if err != nil {
		return err
	}
	natsConn = nc
	LogInfo("Connected to NATS at %s", url)
	return nil
}

// CloseEvents drains the NATS connection
func CloseEvents() {
	if natsConn != nil {
		_ = natsConn.Drain()
	}
}

// PublishEvent publishes a JSON event on the given subject
func PublishEvent(subject string, payload interface{}) {
	if natsConn == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		LogError("Failed to marshal event for subject %s: %v", subject, err)
		return
	}
	if err := natsConn.Publish(subject, data); err != nil {
		LogError("Failed to publish event on subject %s: %v", subject, err)
	}
}
