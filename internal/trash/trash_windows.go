//go:build windows

package trash

import (
	"fmt"
	"path/filepath"
	"syscall"
	"unsafe"
)

// Windows uses the Recycle Bin via shell32.dll SHFileOperationW.
// The Recycle Bin stores files in hidden $Recycle.Bin folders on each
// drive; the Shell API is the supported way to interact with it.

var (
	shell32              = syscall.NewLazyDLL("shell32.dll")
	procSHFileOperationW = shell32.NewProc("SHFileOperationW")
)

// SHFILEOPSTRUCTW for SHFileOperationW
type shFileOpStruct struct {
	hwnd                  uintptr
	wFunc                 uint32
	pFrom                 *uint16
	pTo                   *uint16
	fFlags                uint16
	fAnyOperationsAborted int32
	hNameMappings         uintptr
	lpszProgressTitle     *uint16
}

const (
	FO_DELETE          = 0x0003
	FOF_ALLOWUNDO      = 0x0040
	FOF_NOCONFIRMATION = 0x0010
	FOF_NOERRORUI      = 0x0400
	FOF_SILENT         = 0x0004
)

func isAvailable() bool {
	// Recycle Bin is always available on Windows
	return true
}

func moveToTrash(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return err
	}

	// SHFileOperationW requires a double-null-terminated string
	from, err := syscall.UTF16PtrFromString(absPath + "\x00")
	if err != nil {
		return err
	}

	op := shFileOpStruct{
		wFunc:  FO_DELETE,
		pFrom:  from,
		fFlags: FOF_ALLOWUNDO | FOF_NOCONFIRMATION | FOF_NOERRORUI | FOF_SILENT,
	}

	ret, _, _ := procSHFileOperationW.Call(uintptr(unsafe.Pointer(&op)))
	if ret != 0 {
		return fmt.Errorf("SHFileOperationW failed with code %d", ret)
	}
	if op.fAnyOperationsAborted != 0 {
		return fmt.Errorf("operation was aborted")
	}
	return nil
}

func displayName() string {
	return "Recycle Bin"
}
