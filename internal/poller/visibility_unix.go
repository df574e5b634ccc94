//go:build linux || darwin

package poller

import (
	"os"

	"golang.org/x/sys/unix"
)

type terminalVisibility struct {
	fd int
}

// TerminalVisibility: видимо, пока группа процесса владеет терминалом.
// Фоновый запуск (ctrl+z, bg) опрос приостанавливает. Без терминала всегда видимо.
func TerminalVisibility(f *os.File) Visibility {
	return terminalVisibility{fd: int(f.Fd())}
}

func (t terminalVisibility) Visible() bool {
	pgrp, err := unix.IoctlGetInt(t.fd, unix.TIOCGPGRP)
	if err != nil {
		return true
	}
	return pgrp == unix.Getpgrp()
}
