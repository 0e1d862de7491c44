//go:build !windows

package arp

import (
	"testing"
)

func entryStrings(entries []Entry) map[string]string {
	out := make(map[string]string, len(entries))
	for _, e := range entries {
		out[e.IP.String()] = e.MAC.String()
	}
	return out
}

func TestParseIPNeighTable(t *testing.T) {
	output := []byte(`[
		{"dst":"192.168.1.1","dev":"eth0","lladdr":"aa:bb:cc:dd:ee:01","state":["REACHABLE"]},
		{"dst":"192.168.1.20","dev":"eth0","lladdr":"aa:bb:cc:dd:ee:14","state":["STALE"]},
		{"dst":"192.168.1.99","dev":"eth0","state":["FAILED"]},
		{"dst":"192.168.1.50","dev":"eth0","lladdr":"aa:bb:cc:dd:ee:32","state":["FAILED"]},
		{"dst":"fe80::1","dev":"eth0","lladdr":"aa:bb:cc:dd:ee:ff","state":["REACHABLE"]},
		{"dst":"192.168.1.7","dev":"eth0","lladdr":"not-a-mac","state":["REACHABLE"]}
	]`)

	got := entryStrings(parseIPNeighTable(output))
	want := map[string]string{
		"192.168.1.1":  "aa:bb:cc:dd:ee:01",
		"192.168.1.20": "aa:bb:cc:dd:ee:14",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for ip, mac := range want {
		if got[ip] != mac {
			t.Errorf("entry %s: expected %s, got %s", ip, mac, got[ip])
		}
	}
}

func TestParseIPNeighTableMalformed(t *testing.T) {
	for _, output := range []string{"", "not json", "{}", "[]"} {
		if entries := parseIPNeighTable([]byte(output)); len(entries) != 0 {
			t.Errorf("input %q: expected no entries, got %v", output, entries)
		}
	}
}

func TestParseProcARPTable(t *testing.T) {
	data := `IP address       HW type     Flags       HW address            Mask     Device
192.168.1.1      0x1         0x2         aa:bb:cc:dd:ee:01     *        eth0
192.168.1.20     0x1         0x2         aa:bb:cc:dd:ee:14     *        eth0
192.168.1.99     0x1         0x0         00:00:00:00:00:00     *        eth0
192.168.1.50     0x1         0x0         <incomplete>          *        eth0
`
	entries, err := parseProcARPTable(data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := entryStrings(entries)
	want := map[string]string{
		"192.168.1.1":  "aa:bb:cc:dd:ee:01",
		"192.168.1.20": "aa:bb:cc:dd:ee:14",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for ip, mac := range want {
		if got[ip] != mac {
			t.Errorf("entry %s: expected %s, got %s", ip, mac, got[ip])
		}
	}
}

func TestParseProcARPTableEmpty(t *testing.T) {
	entries, err := parseProcARPTable("IP address       HW type     Flags       HW address            Mask     Device\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("expected no entries, got %v", entries)
	}
}

func TestParseDarwinARPTable(t *testing.T) {
	output := `router.lan (192.168.1.1) at aa:bb:cc:dd:ee:01 on en0 ifscope [ethernet]
? (192.168.1.20) at aa:bb:cc:dd:ee:14 on en0 ifscope [ethernet]
? (192.168.1.99) at (incomplete) on en0 ifscope [ethernet]
? (192.168.1.255) at ff:ff:ff:ff:ff:ff on en0 ifscope [ethernet]
`
	got := entryStrings(parseDarwinARPTable(output))
	want := map[string]string{
		"192.168.1.1":   "aa:bb:cc:dd:ee:01",
		"192.168.1.20":  "aa:bb:cc:dd:ee:14",
		"192.168.1.255": "ff:ff:ff:ff:ff:ff",
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %v", len(want), len(got), got)
	}
	for ip, mac := range want {
		if got[ip] != mac {
			t.Errorf("entry %s: expected %s, got %s", ip, mac, got[ip])
		}
	}
}
