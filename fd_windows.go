//go:build windows

package xio

import "syscall"

// readFD reads from a file descriptor on Windows.
func readFD(fd int, buf []byte) (int, error) {
	return syscall.Read(syscall.Handle(fd), buf)
}

// writeFD writes to a file descriptor on Windows.
func writeFD(fd int, buf []byte) (int, error) {
	return syscall.Write(syscall.Handle(fd), buf)
}
