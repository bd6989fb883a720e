package serial

import (
	"fmt"
	"sort"

	"go.bug.st/serial/enumerator"
)

// PortInfo describes a serial device found on the host.
type PortInfo struct {
	Name         string
	IsUSB        bool
	VID          string
	PID          string
	SerialNumber string
}

// allow tests to override enumeration
var detailedPorts = enumerator.GetDetailedPortsList

// ListPorts returns the serial ports present on the host, sorted by name.
func ListPorts() ([]PortInfo, error) {
	details, err := detailedPorts()
	if err != nil {
		return nil, fmt.Errorf("enumerate serial ports: %w", err)
	}

	out := make([]PortInfo, 0, len(details))
	for _, d := range details {
		if d == nil {
			continue
		}
		out = append(out, PortInfo{
			Name:         d.Name,
			IsUSB:        d.IsUSB,
			VID:          d.VID,
			PID:          d.PID,
			SerialNumber: d.SerialNumber,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// String renders the port as "name [VID:PID serial]" for USB devices.
func (p PortInfo) String() string {
	if !p.IsUSB {
		return p.Name
	}
	if p.SerialNumber != "" {
		return fmt.Sprintf("%s [%s:%s %s]", p.Name, p.VID, p.PID, p.SerialNumber)
	}
	return fmt.Sprintf("%s [%s:%s]", p.Name, p.VID, p.PID)
}
