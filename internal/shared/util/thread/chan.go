// Copyright (c) 2025 Justin Cranford
//
//

// Package thread provides small goroutine/channel fan-out helpers used by
// the module's concurrent test harnesses.
package thread

import (
	"context"
	"sync"
)

// runSendersReceivers starts senderCount goroutines each pushing values
// from sender onto a shared channel of the given buffer size, and
// receiverCount goroutines draining it through receiver, until ctx is
// done. The returned function waits for senders to finish, closes the
// channel, then waits for receivers to return. Receivers also return as
// soon as ctx is done, so values still buffered then may go unreceived.
func runSendersReceivers(ctx context.Context, senderCount int, receiverCount int, bufferSize int, sender func() any, receiver func(any)) func() {
	ch := make(chan any, bufferSize)

	var wgSenders sync.WaitGroup

	wgSenders.Add(senderCount)

	for range senderCount {
		go func() {
			defer wgSenders.Done()

			for {
				select {
				case <-ctx.Done():
					return
				case ch <- sender():
				}
			}
		}()
	}

	var wgReceivers sync.WaitGroup

	wgReceivers.Add(receiverCount)

	for range receiverCount {
		go func() {
			defer wgReceivers.Done()

			for {
				select {
				case <-ctx.Done():
					return
				case value, ok := <-ch:
					if !ok {
						return
					}

					receiver(value)
				}
			}
		}()
	}

	return func() {
		wgSenders.Wait()
		close(ch)
		wgReceivers.Wait()
	}
}
