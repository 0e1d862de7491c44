package runner

import (
	"context"
	"encoding/json"
	"os"
	"time"

	"github.com/projectdiscovery/gologger"
	errorutil "github.com/projectdiscovery/utils/errors"

	"lanscout/pkg/discovery/arp"
	"lanscout/pkg/liveness"
	"lanscout/pkg/netinfo"
	"lanscout/pkg/output"
	"lanscout/pkg/resolve"
	"lanscout/pkg/scan"
	"lanscout/pkg/types"
)

// Runner contains the internal logic of the program
type Runner struct {
	options *Options
	iface   *netinfo.Interface
}

// NewRunner instance
func NewRunner(options *Options) (*Runner, error) {
	if err := netinfo.CheckPrivileges(); err != nil {
		return nil, err
	}

	var iface *netinfo.Interface
	var err error
	if options.Interface != "" {
		iface, err = netinfo.ByName(options.Interface)
	} else {
		iface, err = netinfo.Default()
	}
	if err != nil {
		return nil, err
	}
	if options.CIDR != "" {
		iface.CIDR = options.CIDR
	}
	if err := iface.Validate(); err != nil {
		return nil, err
	}

	return &Runner{options: options, iface: iface}, nil
}

// Run executes one hybrid scan and prints the resulting inventory.
func (r *Runner) Run(ctx context.Context) error {
	var writer *output.Writer
	if r.options.Output != "" {
		var err error
		writer, err = output.NewWriter(r.options.Output)
		if err != nil {
			return errorutil.NewWithErr(err).Msgf("could not open output file %s", r.options.Output)
		}
		defer func() {
			if err := writer.Close(); err != nil {
				gologger.Warning().Msgf("could not close output file: %s\n", err)
			}
		}()
	}

	orchestrator := scan.New(
		arp.NewMechanism(),
		func() (scan.ProbeSession, error) {
			session, err := liveness.NewSession()
			if err != nil {
				return nil, err
			}
			return session, nil
		},
		resolve.NewResolver(),
	)

	cfg := scan.Config{
		Interface: r.iface,
		Timeout:   time.Duration(r.options.TimeoutMs) * time.Millisecond,
		Interval:  time.Duration(r.options.IntervalMs) * time.Millisecond,
		OnEvent: func(ev scan.Event) {
			switch ev.Kind {
			case scan.EventDiscoveryResponse:
				gologger.Verbose().Msgf("discovered %s (%s)\n", ev.Device.Addr, ev.Device.HardwareAddr)
			case scan.EventDiscoveryComplete:
				gologger.Info().Msgf("discovery finished: %d hosts in %dms\n", ev.Report.Count, ev.Report.ElapsedMs)
			case scan.EventDeviceResolved:
				if writer != nil {
					writer.Write(*ev.Device)
				}
			case scan.EventScanComplete:
				gologger.Info().Msgf("scan finished: %d devices in %dms\n", ev.Report.Count, ev.Report.ElapsedMs)
			}
		},
	}

	devices, err := orchestrator.Run(ctx, cfg)
	if err != nil {
		return err
	}

	if r.options.JSON {
		return printJSON(devices)
	}
	printInventory(devices)
	return nil
}

func printJSON(devices []types.Device) error {
	encoder := json.NewEncoder(os.Stdout)
	for _, device := range devices {
		if err := encoder.Encode(device); err != nil {
			return err
		}
	}
	return nil
}

func printInventory(devices []types.Device) {
	for _, device := range devices {
		name := device.Hostname
		if name == "" {
			name = "-"
		}
		hw := device.HardwareAddr
		if hw == "" {
			hw = "-"
		}
		if device.Reachable {
			gologger.Silent().Msgf("%-16s %-18s %s %s\n", device.Addr, hw, name, au.Green("up").String())
		} else {
			gologger.Silent().Msgf("%-16s %-18s %s %s\n", device.Addr, hw, name, au.Faint("down").String())
		}
	}
}
