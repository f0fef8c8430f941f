//go:build linux || darwin

package engineadapter

import (
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// setProcessGroup puts the engine subprocess in its own process group so
// killProcessGroup can take down any helper processes it spawns (NNUE
// probers, tablebase workers) along with it, grounded in the process
// lifecycle conventions RenWild-combusken pulls golang.org/x/sys in for.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = unix.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
