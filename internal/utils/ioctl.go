//go:build linux

// Package utils は Linux の入力デバイスを扱うための低レベルな補助関数を提供する
package utils

import (
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// ioctl 番号の構成（Linux の _IOC マクロ）
const (
	iocNRBits   = 8
	iocTypeBits = 8
	iocSizeBits = 14

	iocNRShift   = 0
	iocTypeShift = iocNRShift + iocNRBits
	iocSizeShift = iocTypeShift + iocTypeBits
	iocDirShift  = iocSizeShift + iocSizeBits

	IOCNone  = 0
	IOCWrite = 1
	IOCRead  = 2
)

// IOC は ioctl のリクエスト番号を組み立てる
func IOC(dir, typ, nr, size uint32) uintptr {
	return uintptr(dir<<iocDirShift | typ<<iocTypeShift | nr<<iocNRShift | size<<iocSizeShift)
}

// IOCtl は値を引数に取る ioctl を発行する
func IOCtl(f *os.File, cmd, arg uintptr) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), cmd, arg)
	if errno != 0 {
		return errno
	}
	return nil
}

// IOCtlPtr はポインタを引数に取る ioctl を発行する
func IOCtlPtr(f *os.File, cmd uintptr, ptr unsafe.Pointer) error {
	_, _, errno := unix.Syscall(unix.SYS_IOCTL, f.Fd(), cmd, uintptr(ptr))
	if errno != 0 {
		return errno
	}
	return nil
}
