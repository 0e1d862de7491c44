//go:build !windows

package arp

import (
	"bufio"
	"fmt"
	"net"
	"os"
	"os/exec"
	"strings"

	osutils "github.com/projectdiscovery/utils/os"
	"github.com/tidwall/gjson"
)

// readNeighbourTable reads the local neighbour table (Linux and macOS).
func readNeighbourTable() ([]Entry, error) {
	if osutils.IsLinux() {
		if entries, err := readIPNeighTable(); err == nil {
			return entries, nil
		}
		return readProcARPTable()
	} else if osutils.IsOSX() {
		return readDarwinARPTable()
	}
	return nil, fmt.Errorf("unsupported OS")
}

// readIPNeighTable reads the neighbour table from 'ip -j neigh show' JSON
// output on Linux.
func readIPNeighTable() ([]Entry, error) {
	cmd := exec.Command("ip", "-j", "neigh", "show")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute ip neigh: %w", err)
	}
	return parseIPNeighTable(output), nil
}

func parseIPNeighTable(output []byte) []Entry {
	var entries []Entry
	gjson.ParseBytes(output).ForEach(func(_, row gjson.Result) bool {
		// Rows without lladdr are FAILED or INCOMPLETE resolutions.
		macStr := row.Get("lladdr").String()
		if macStr == "" {
			return true
		}
		state := row.Get("state.0").String()
		if strings.EqualFold(state, "FAILED") || strings.EqualFold(state, "INCOMPLETE") {
			return true
		}

		ip := net.ParseIP(row.Get("dst").String())
		if ip == nil || ip.To4() == nil {
			return true
		}
		mac, err := net.ParseMAC(macStr)
		if err != nil {
			return true
		}

		entries = append(entries, Entry{IP: ip, MAC: mac})
		return true
	})

	return entries
}

// readProcARPTable reads the neighbour table from /proc/net/arp, used when
// the ip tool is unavailable.
func readProcARPTable() ([]Entry, error) {
	data, err := os.ReadFile("/proc/net/arp")
	if err != nil {
		return nil, err
	}
	return parseProcARPTable(string(data))
}

func parseProcARPTable(data string) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(data))

	// Skip header line
	if !scanner.Scan() {
		return entries, nil
	}

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 6 {
			continue
		}

		// Format: IP address HW type Flags HW address Mask Device
		ipStr := fields[0]
		macStr := fields[3]

		// Skip incomplete entries
		if macStr == "00:00:00:00:00:00" || macStr == "<incomplete>" {
			continue
		}

		ip := net.ParseIP(ipStr)
		if ip == nil || ip.To4() == nil {
			continue
		}

		mac, err := net.ParseMAC(macStr)
		if err != nil {
			continue
		}

		entries = append(entries, Entry{IP: ip, MAC: mac})
	}

	return entries, scanner.Err()
}

// readDarwinARPTable reads the neighbour table using 'arp -a' on macOS.
func readDarwinARPTable() ([]Entry, error) {
	cmd := exec.Command("arp", "-a")
	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to execute arp -a: %w", err)
	}
	return parseDarwinARPTable(string(output)), nil
}

func parseDarwinARPTable(output string) []Entry {
	var entries []Entry
	scanner := bufio.NewScanner(strings.NewReader(output))

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		// macOS arp -a format: "hostname (192.168.1.1) at aa:bb:cc:dd:ee:ff [ethernet] on en0"
		// or: "? (192.168.1.1) at aa:bb:cc:dd:ee:ff [ethernet] on en0"
		ipStart := strings.Index(line, "(")
		ipEnd := strings.Index(line, ")")
		if ipStart == -1 || ipEnd == -1 || ipStart >= ipEnd {
			continue
		}
		ipStr := line[ipStart+1 : ipEnd]

		atIndex := strings.Index(line, " at ")
		if atIndex == -1 {
			continue
		}
		macStart := atIndex + 4
		macEnd := strings.Index(line[macStart:], " ")
		if macEnd == -1 {
			macEnd = strings.Index(line[macStart:], "[")
		}
		if macEnd == -1 {
			macEnd = len(line) - macStart
		}
		macStr := strings.TrimSpace(line[macStart : macStart+macEnd])

		if macStr == "(incomplete)" || macStr == "" {
			continue
		}

		ip := net.ParseIP(ipStr)
		if ip == nil || ip.To4() == nil {
			continue
		}

		mac, err := net.ParseMAC(macStr)
		if err != nil {
			continue
		}

		entries = append(entries, Entry{IP: ip, MAC: mac})
	}

	return entries
}
