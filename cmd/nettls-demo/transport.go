// Copyright (c) 2025 Justin Cranford
//
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"net"
	"os"
	"time"

	nettlsEndpoint "nettls/internal/nettls/endpoint"
	nettlsEngine "nettls/internal/nettls/engine"
)

// pollTimeout bounds how long each probe against the real socket may block
// before being reported as would-block; the endpoint's retry loop drives the
// cadence, so this just needs to be short enough not to stall it noticeably.
const pollTimeout = 20 * time.Millisecond

// NewConnTransport adapts a blocking net.Conn into the non-blocking
// endpoint.Transport contract (SPEC_FULL §6) using short read/write
// deadlines: a deadline timeout is reported as engine.ErrWouldBlock, letting
// the endpoint's normal retry loop carry the connection forward.
func NewConnTransport(conn net.Conn) nettlsEndpoint.Transport {
	return nettlsEndpoint.Transport{
		Recv: func(buf []byte) (int, error) {
			if err := conn.SetReadDeadline(time.Now().Add(pollTimeout)); err != nil {
				return 0, err
			}

			n, err := conn.Read(buf)
			if err != nil {
				if errors.Is(err, os.ErrDeadlineExceeded) {
					return 0, nettlsEngine.ErrWouldBlock
				}

				return n, err
			}

			return n, nil
		},
		Send: func(data []byte) (int, error) {
			if err := conn.SetWriteDeadline(time.Now().Add(pollTimeout)); err != nil {
				return 0, err
			}

			n, err := conn.Write(data)
			if err != nil {
				if errors.Is(err, os.ErrDeadlineExceeded) {
					return n, nettlsEngine.ErrWouldBlock
				}

				return n, err
			}

			return n, nil
		},
	}
}
