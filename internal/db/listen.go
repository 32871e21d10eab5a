package db

import (
	"context"
	"fmt"
)

// ChangeChannel is the NOTIFY channel the collection triggers publish on. The payload
// is the name of the changed table.
const ChangeChannel = "collection_changes"

// Listen holds a dedicated connection LISTENing on channel and calls handle with each
// payload. ready is called once the LISTEN is in effect. Listen returns nil when ctx
// is cancelled and an error when the connection fails.
func (d *DB) Listen(ctx context.Context, channel string, ready func(), handle func(payload string)) error {
	conn, err := d.Pool.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquire listener connection: %w", err)
	}
	// A LISTENing connection must not go back to the pool.
	pgConn := conn.Hijack()
	defer pgConn.Close(context.Background())

	if _, err := pgConn.Exec(ctx, "LISTEN "+ident(channel)); err != nil {
		return fmt.Errorf("listen %s: %w", channel, err)
	}
	if ready != nil {
		ready()
	}

	for {
		n, err := pgConn.WaitForNotification(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("wait for notification: %w", err)
		}
		handle(n.Payload)
	}
}
