package alarmcli

import (
	"context"
	"fmt"
	"io"
	"os"
)

// VersionCheckEnv suppresses version mismatch warnings when set to any
// non-empty value.
const VersionCheckEnv = "WARPALARM_SUPPRESS_VERSION_CHECK"

// CheckVersionMismatch warns on w when the daemon runs a different version
// than expected. It never fails the caller.
func (c *Client) CheckVersionMismatch(ctx context.Context, w io.Writer, expected string) {
	if expected == "" || os.Getenv(VersionCheckEnv) != "" {
		return
	}
	v, err := c.Version(ctx)
	if err != nil {
		fmt.Fprintf(w, "warning: could not check daemon version: %v\n", err)
		return
	}
	if v.Version != expected {
		fmt.Fprintf(w, "warning: daemon version %s differs from client version %s; restart the daemon\n", v.Version, expected)
	}
}
