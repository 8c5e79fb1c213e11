package checker

import (
    "math"
    "strconv"
    "strings"
)

// maxRetries caps absurd inputs such as "1e300".
const maxRetries = math.MaxInt32

// NormalizeRetries turns a user supplied retry count into a retry budget.
// The value is read as a number (decimal, exponent or 0x/0o/0b integer
// forms); anything unparsable or non-finite counts as 0. The result is
// floored and clamped to [0, MaxInt32]. An empty string is 0.
func NormalizeRetries(raw string) int {
    s := strings.TrimSpace(raw)
    if s == "" { return 0 }
    f, err := strconv.ParseFloat(s, 64)
    if err != nil {
        i, ierr := strconv.ParseInt(s, 0, 64)
        if ierr != nil || strings.Contains(s, "_") { return 0 }
        f = float64(i)
    }
    if math.IsNaN(f) || math.IsInf(f, 0) { return 0 }
    return ClampRetries(math.Floor(f))
}

// ClampRetries clamps an already numeric budget to [0, MaxInt32].
func ClampRetries(f float64) int {
    if f <= 0 { return 0 }
    if f >= maxRetries { return maxRetries }
    return int(f)
}
