package notification

import "context"

// PushClient abstracts the mobile push delivery transport. The service
// persists Notification rows and hands them to this sink; actual
// delivery (FCM, SMS relay) is the sink's problem.
type PushClient interface {
	Push(ctx context.Context, userIDs []uint, title, description string, extras map[string]interface{}) error
}

type Push struct {
	cli PushClient
}

func NewPush(cli PushClient) *Push { return &Push{cli: cli} }

// Send is a no-op when no transport is configured; persisting the
// Notification row is the durable part of fanout.
func (p *Push) Send(ctx context.Context, userIDs []uint, title, description string, extras map[string]interface{}) error {
	if p.cli == nil || len(userIDs) == 0 {
		return nil
	}
	return p.cli.Push(ctx, userIDs, title, description, extras)
}
