package utils

import (
	"fmt"
	"strconv"
	"strings"
)

func FormatNumber(n int64) string {
	str := strconv.FormatInt(n, 10)
	if n < 0 {
		str = str[1:] // Remove minus sign for processing
	}

	var result []byte
	for i := len(str) - 1; i >= 0; i-- {
		if (len(str)-i-1)%3 == 0 && i != len(str)-1 {
			result = append([]byte{','}, result...)
		}
		result = append([]byte{str[i]}, result...)
	}

	if n < 0 {
		return "-" + string(result)
	}
	return string(result)
}

// ProgressBar renders a fixed-width bar for a 0-100 percentage.
func ProgressBar(percent float64) string {
	const barLength = 10

	if percent > 100 {
		percent = 100
	} else if percent < 0 {
		percent = 0
	}
	filled := int(percent / 100 * barLength)

	var bar strings.Builder
	bar.WriteString("[")
	for i := 0; i < barLength; i++ {
		if i < filled {
			bar.WriteString("■")
		} else {
			bar.WriteString("□")
		}
	}
	bar.WriteString(fmt.Sprintf("] %.1f%%", percent))

	return bar.String()
}
