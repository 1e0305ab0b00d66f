// Package format renders sizes for humans.
package format

import "fmt"

var units = []string{"B", "KB", "MB", "GB", "TB", "PB"}

// Size converts a byte count to a 1024-based unit string with two decimals.
// Values beyond the PB range are reported in EB without further scaling.
func Size(bytes float64) string {
	value := bytes
	for _, unit := range units {
		if value < 1024 {
			return fmt.Sprintf("%.2f %s", value, unit)
		}
		value /= 1024
	}
	return fmt.Sprintf("%.2f EB", value)
}
