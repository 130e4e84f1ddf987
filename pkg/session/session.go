// pkg/session/session.go - console session probing: logged-on user and idle time.
//
// ServiceUI can only surface toolkit UI inside an active user session, so the
// invoker asks this package whether anyone is logged on before wrapping the
// toolkit call. Idle time is attached to deferral log lines for diagnostics.

package session

import (
	"strings"
	"syscall"
	"time"
	"unsafe"

	"github.com/yusufpapurcu/wmi"

	"github.com/windowsadmins/deploywrap/pkg/logging"
)

// win32ComputerSystem maps the WMI Win32_ComputerSystem class. UserName is a
// pointer because it is NULL when nobody is logged on to the console.
type win32ComputerSystem struct {
	UserName *string
}

// ConsoleUser returns the DOMAIN\user logged on to the console, or an empty
// string when no interactive session exists.
func ConsoleUser() (string, error) {
	var systems []win32ComputerSystem
	err := wmi.Query("SELECT UserName FROM Win32_ComputerSystem", &systems)
	if err != nil {
		return "", err
	}
	if len(systems) == 0 || systems[0].UserName == nil {
		return "", nil
	}
	return strings.TrimSpace(*systems[0].UserName), nil
}

// HasActiveUser reports whether a user is logged on to the console. Query
// failures are treated as "no session" so the caller falls back to a direct
// toolkit launch.
func HasActiveUser() bool {
	user, err := ConsoleUser()
	if err != nil {
		logging.Warn("Failed to query console session", "error", err)
		return false
	}
	if user == "" {
		logging.Debug("No user logged on to the console")
		return false
	}
	logging.Debug("Console session found", "user", user)
	return true
}

// LASTINPUTINFO is used to track user idle time.
type LASTINPUTINFO struct {
	CbSize uint32
	DwTime uint32
}

// IdleTime returns how long the console user has been idle. Returns zero on
// any Win32 failure.
func IdleTime() time.Duration {
	lastInput := LASTINPUTINFO{
		CbSize: uint32(unsafe.Sizeof(LASTINPUTINFO{})),
	}
	ret, _, _ := syscall.NewLazyDLL("user32.dll").NewProc("GetLastInputInfo").Call(uintptr(unsafe.Pointer(&lastInput)))
	if ret == 0 {
		return 0
	}
	tickCount, _, _ := syscall.NewLazyDLL("kernel32.dll").NewProc("GetTickCount").Call()
	if tickCount == 0 {
		return 0
	}
	idleMillis := uint32(tickCount) - lastInput.DwTime
	return time.Duration(idleMillis) * time.Millisecond
}
