// Copyright (c) 2025 Justin Cranford
//
//

// Package network provides small net.IP parsing and normalization helpers
// shared by certificate SAN construction and endpoint configuration.
package network

import (
	"fmt"
	"net"
)

// ParseIPAddresses parses each address string with net.ParseIP, failing on
// the first one that doesn't parse.
func ParseIPAddresses(addresses []string) ([]net.IP, error) {
	result := make([]net.IP, 0, len(addresses))

	for _, address := range addresses {
		ip := net.ParseIP(address)
		if ip == nil {
			return nil, fmt.Errorf("failed to parse IP address: %s", address)
		}

		result = append(result, ip)
	}

	return result, nil
}

// NormalizeIPv4Addresses rewrites any IPv4-mapped IPv6 address in ips to
// its 4-byte IPv4 form, leaving pure IPv4 and IPv6 addresses unchanged.
func NormalizeIPv4Addresses(ips []net.IP) []net.IP {
	result := make([]net.IP, 0, len(ips))

	for _, ip := range ips {
		if v4 := ip.To4(); v4 != nil {
			result = append(result, v4)
			continue
		}

		result = append(result, ip)
	}

	return result
}
