// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"io"
	"time"

	nettlsEndpoint "nettls/internal/nettls/endpoint"
	nettlsErrtrans "nettls/internal/nettls/errtrans"
)

// driveUntilNotBlocking retries op until it stops returning an EAGAIN_RD /
// EAGAIN_WR suspension signal, pacing retries with a short sleep so the
// loop doesn't spin the CPU while the transport's deadline-based Recv/Send
// are the real source of backpressure.
func driveUntilNotBlocking(op func() error) error {
	for {
		err := op()
		if err == nil {
			return nil
		}

		if errors.Is(err, nettlsErrtrans.ErrEAGAINRead) || errors.Is(err, nettlsErrtrans.ErrEAGAINWrite) {
			time.Sleep(time.Millisecond)

			continue
		}

		return err
	}
}

// runEchoSession drives a handshake, optional verification, and an
// application-data echo loop (server role echoes, client role sends one
// line and reads the echo back), then a graceful shutdown.
func runEchoSession(ep *nettlsEndpoint.Endpoint, role string, line string) (string, error) {
	if err := driveUntilNotBlocking(ep.Hello); err != nil {
		return "", fmt.Errorf("handshake failed: %w", err)
	}

	if err := ep.Verify(); err != nil {
		return "", fmt.Errorf("peer verification failed: %w", err)
	}

	switch role {
	case "server":
		buf := make([]byte, 4096)

		var n int

		err := driveUntilNotBlocking(func() error {
			var readErr error

			n, readErr = ep.Recv(buf)

			return readErr
		})
		if err != nil {
			return "", fmt.Errorf("recv failed: %w", err)
		}

		if err := driveUntilNotBlocking(func() error {
			_, sendErr := ep.Send(buf[:n])

			return sendErr
		}); err != nil {
			return "", fmt.Errorf("send failed: %w", err)
		}

		if err := driveUntilNotBlocking(func() error { return ep.Bye(nettlsEndpoint.DirectionSend) }); err != nil {
			return "", fmt.Errorf("bye failed: %w", err)
		}

		return string(buf[:n]), nil
	case "client":
		if err := driveUntilNotBlocking(func() error {
			_, sendErr := ep.Send([]byte(line))

			return sendErr
		}); err != nil {
			return "", fmt.Errorf("send failed: %w", err)
		}

		buf := make([]byte, 4096)

		var n int

		err := driveUntilNotBlocking(func() error {
			var readErr error

			n, readErr = ep.Recv(buf)
			if readErr == nil && n == 0 {
				return io.EOF
			}

			return readErr
		})
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("recv failed: %w", err)
		}

		if err := driveUntilNotBlocking(func() error { return ep.Bye(nettlsEndpoint.DirectionSend) }); err != nil {
			return "", fmt.Errorf("bye failed: %w", err)
		}

		return string(buf[:n]), nil
	default:
		return "", fmt.Errorf("unknown role: %s", role)
	}
}
